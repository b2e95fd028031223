// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert turns uploaded documents (PDF, images, plain text) into
// plain text ready for comparison. Backends are pluggable behind Converter;
// the Dispatcher routes by filename extension.
package convert

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrUnsupported is returned for file types no configured backend handles.
var ErrUnsupported = errors.New("unsupported file type")

// Converter extracts plain text from a document's bytes. filename is a hint
// used only for its extension and in error messages.
type Converter interface {
	Convert(ctx context.Context, data []byte, filename string) (string, error)
}

var imageExts = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".bmp": true, ".tif": true, ".tiff": true,
}

// Dispatcher selects a backend by extension and normalizes its output.
type Dispatcher struct {
	pdf  Converter
	text Converter
	ocr  *OCRConverter
}

// NewDispatcher creates a dispatcher. ocr may be nil when no container
// runtime is available, in which case images are unsupported. PDF pages are
// joined without headers, which is what the scorer expects.
func NewDispatcher(ocr *OCRConverter) *Dispatcher {
	return &Dispatcher{pdf: PDFConverter{}, text: TextConverter{}, ocr: ocr}
}

// WithPageHeaders returns a dispatcher that marks each PDF page with a
// "--- Page N ---" line, for output shown to people rather than scored.
func (d *Dispatcher) WithPageHeaders() *Dispatcher {
	cp := *d
	cp.pdf = PDFConverter{PageHeaders: true}
	return &cp
}

// WithLang returns a dispatcher whose OCR backend uses lang. An empty lang
// returns d unchanged.
func (d *Dispatcher) WithLang(lang string) *Dispatcher {
	if lang == "" || d.ocr == nil {
		return d
	}
	cp := *d
	cp.ocr = d.ocr.WithLang(lang)
	return &cp
}

// OCRAvailable reports whether image files can be converted.
func (d *Dispatcher) OCRAvailable() bool { return d.ocr != nil }

// Convert routes data to the backend for filename's extension.
func (d *Dispatcher) Convert(ctx context.Context, data []byte, filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))

	var c Converter
	switch {
	case ext == ".pdf":
		c = d.pdf
	case imageExts[ext]:
		if d.ocr == nil {
			return "", fmt.Errorf("%s: %w (no OCR backend available)", filename, ErrUnsupported)
		}
		c = d.ocr
	case ext == "" || ext == ".txt" || ext == ".md":
		c = d.text
	default:
		return "", fmt.Errorf("%s: %w %q", filename, ErrUnsupported, ext)
	}

	text, err := c.Convert(ctx, data, filename)
	if err != nil {
		return "", err
	}
	return NormalizeWhitespace(text), nil
}

// ConvertFile reads path and converts it.
func ConvertFile(ctx context.Context, c Converter, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return c.Convert(ctx, data, filepath.Base(path))
}

// NormalizeWhitespace trims each line, collapses inner runs of whitespace,
// and drops blank lines.
func NormalizeWhitespace(text string) string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if f := strings.Fields(line); len(f) > 0 {
			out = append(out, strings.Join(f, " "))
		}
	}
	return strings.Join(out, "\n")
}

// Document is one successfully converted file.
type Document struct {
	Path string
	Name string // base name without extension
	Text string
}

// BatchResult holds the outcome of a batch conversion run.
type BatchResult struct {
	Converted int
	Skipped   int
	Failed    int
}

// Total returns the total number of files processed.
func (r BatchResult) Total() int {
	return r.Converted + r.Skipped + r.Failed
}

// HasFailures reports whether any file failed conversion.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// ConvertBatch converts each path, printing per-file status to w. Files
// whose type is unsupported are skipped; files yielding no text fail.
func ConvertBatch(ctx context.Context, c Converter, paths []string, w io.Writer) ([]Document, BatchResult) {
	var (
		docs   []Document
		result BatchResult
	)
	for _, p := range paths {
		base := filepath.Base(p)
		text, err := ConvertFile(ctx, c, p)
		switch {
		case errors.Is(err, ErrUnsupported):
			fmt.Fprintf(w, "skipped:   %s (unsupported)\n", base)
			result.Skipped++
		case err != nil:
			fmt.Fprintf(w, "failed:    %s (%v)\n", base, err)
			result.Failed++
		case strings.TrimSpace(text) == "":
			fmt.Fprintf(w, "failed:    %s (no text)\n", base)
			result.Failed++
		default:
			fmt.Fprintf(w, "converted: %s\n", base)
			docs = append(docs, Document{
				Path: p,
				Name: strings.TrimSuffix(base, filepath.Ext(base)),
				Text: text,
			})
			result.Converted++
		}
	}
	fmt.Fprintf(w, "\nBatch summary: %d converted, %d skipped, %d failed (total: %d)\n",
		result.Converted, result.Skipped, result.Failed, result.Total())
	return docs, result
}
