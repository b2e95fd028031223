// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/pdiddy/copycheck/internal/convert"
	"github.com/pdiddy/copycheck/internal/store"
	"github.com/pdiddy/copycheck/pkg/types"
)

type corpusItem struct {
	ID           string `json:"id"`
	SubmissionID string `json:"submissionId"`
	Text         string `json:"text"`
}

// checkRequest uses pointers for the required fields so an absent key is
// told apart from an empty value.
type checkRequest struct {
	TargetText *string       `json:"target_text"`
	Corpus     *[]corpusItem `json:"corpus"`
	Label      string        `json:"label,omitempty"`
	Save       bool          `json:"save,omitempty"`
}

type checkResponse struct {
	types.CheckResult
	ReportID string `json:"report_id,omitempty"`
}

type extractResponse struct {
	Filename      string `json:"filename"`
	ExtractedText string `json:"extracted_text"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, status int, msg string) {
	render.Status(r, status)
	render.JSON(w, r, errorResponse{Detail: msg})
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]string{"message": "copycheck is running"})
}

func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)

	var req checkRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.fail(w, r, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		s.fail(w, r, http.StatusBadRequest, "invalid json: "+err.Error())
		return
	}

	switch {
	case req.TargetText == nil:
		s.fail(w, r, http.StatusBadRequest, "target_text is required")
		return
	case req.Corpus == nil:
		s.fail(w, r, http.StatusBadRequest, "corpus is required")
		return
	}

	corpus := make([]types.CorpusDocument, len(*req.Corpus))
	for i, item := range *req.Corpus {
		if item.ID == "" || item.SubmissionID == "" {
			s.fail(w, r, http.StatusBadRequest, fmt.Sprintf("corpus[%d]: id and submissionId are required", i))
			return
		}
		corpus[i] = types.CorpusDocument{ID: item.ID, SubmissionID: item.SubmissionID, Text: item.Text}
	}

	resp := checkResponse{CheckResult: s.checker.Evaluate(r.Context(), *req.TargetText, corpus)}

	if req.Save {
		if s.reports == nil {
			s.log.Warn("save requested but no report store is configured")
		} else if rep, err := s.reports.Save(r.Context(), req.Label, resp.CheckResult); err != nil {
			s.log.Error("failed to save report", "err", err)
		} else {
			resp.ReportID = rep.ID
		}
	}

	render.JSON(w, r, resp)
}

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.fail(w, r, http.StatusRequestEntityTooLarge, "upload too large")
			return
		}
		s.fail(w, r, http.StatusBadRequest, "multipart field \"file\" is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		s.fail(w, r, http.StatusBadRequest, "reading upload: "+err.Error())
		return
	}

	text, err := s.extractor.WithPageHeaders().WithLang(r.FormValue("lang")).Convert(r.Context(), data, header.Filename)
	if err != nil {
		if errors.Is(err, convert.ErrUnsupported) {
			s.fail(w, r, http.StatusUnsupportedMediaType, err.Error())
			return
		}
		s.log.Error("text extraction failed", "filename", header.Filename, "err", err)
		s.fail(w, r, http.StatusInternalServerError, err.Error())
		return
	}

	render.JSON(w, r, extractResponse{Filename: header.Filename, ExtractedText: text})
}

func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	if s.reports == nil {
		s.fail(w, r, http.StatusNotFound, "report history is not enabled")
		return
	}

	var opts store.ListOptions
	if v := r.URL.Query().Get("risk"); v != "" {
		level, ok := types.ParseRiskLevel(v)
		if !ok {
			s.fail(w, r, http.StatusBadRequest, fmt.Sprintf("unknown risk level %q", v))
			return
		}
		opts.RiskLevel = level
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			s.fail(w, r, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		opts.Limit = n
	}

	reports, err := s.reports.List(r.Context(), opts)
	if err != nil {
		s.log.Error("failed to list reports", "err", err)
		s.fail(w, r, http.StatusInternalServerError, "internal server error")
		return
	}
	render.JSON(w, r, reports)
}

func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	if s.reports == nil {
		s.fail(w, r, http.StatusNotFound, "report history is not enabled")
		return
	}

	id := chi.URLParam(r, "id")
	rep, err := s.reports.Get(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		s.fail(w, r, http.StatusNotFound, "Not Found")
		return
	}
	if err != nil {
		s.log.Error("failed to get report", "id", id, "err", err)
		s.fail(w, r, http.StatusInternalServerError, "internal server error")
		return
	}
	render.JSON(w, r, rep)
}
