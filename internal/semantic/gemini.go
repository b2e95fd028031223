// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package semantic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/pdiddy/copycheck/internal/httputil"
	"github.com/pdiddy/copycheck/pkg/types"
)

// geminiAPIBase is the Gemini models endpoint. Package-level var for test substitution.
var geminiAPIBase = "https://generativelanguage.googleapis.com/v1beta/models"

const defaultGeminiModel = "gemini-2.5-flash"

// GeminiBackend calls the Gemini generateContent API.
type GeminiBackend struct {
	Keys      httputil.KeySource
	Model     string
	Client    *http.Client
	MaxChars  int
	UserAgent string
}

type geminiRequest struct {
	Contents         []geminiContent        `json:"contents"`
	GenerationConfig geminiGenerationConfig `json:"generationConfig"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenerationConfig struct {
	Temperature      float64 `json:"temperature"`
	ResponseMimeType string  `json:"responseMimeType,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// Verify sends both excerpts to Gemini and parses the returned judgment.
func (g *GeminiBackend) Verify(ctx context.Context, target, source string) (types.SemanticVerdict, error) {
	if !hasKeys(g.Keys) {
		return types.SemanticVerdict{}, ErrNoCredential
	}

	prompt, err := renderPrompt(target, source, g.MaxChars)
	if err != nil {
		return types.SemanticVerdict{}, fmt.Errorf("rendering prompt: %w", err)
	}

	body, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{Role: "user", Parts: []geminiPart{{Text: prompt}}}},
		GenerationConfig: geminiGenerationConfig{
			Temperature:      0,
			ResponseMimeType: "application/json",
		},
	})
	if err != nil {
		return types.SemanticVerdict{}, fmt.Errorf("marshaling request: %w", err)
	}

	model := g.Model
	if model == "" {
		model = defaultGeminiModel
	}
	endpoint := fmt.Sprintf("%s/%s:generateContent", geminiAPIBase, url.PathEscape(model))

	resp, err := httputil.DoWithRotation(ctx, g.Client, g.Keys, func(ctx context.Context, key string) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("x-goog-api-key", key)
		if g.UserAgent != "" {
			req.Header.Set("User-Agent", g.UserAgent)
		}
		return req, nil
	})
	if err != nil {
		return types.SemanticVerdict{}, fmt.Errorf("calling Gemini API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return types.SemanticVerdict{}, fmt.Errorf("Gemini API returned %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var gResp geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&gResp); err != nil {
		return types.SemanticVerdict{}, &ParseError{Reason: fmt.Sprintf("decoding Gemini response: %v", err)}
	}

	var text strings.Builder
	for _, c := range gResp.Candidates {
		for _, p := range c.Content.Parts {
			text.WriteString(p.Text)
		}
		if text.Len() > 0 {
			break
		}
	}
	if text.Len() == 0 {
		return types.SemanticVerdict{}, &ParseError{Reason: "Gemini API returned no text"}
	}

	return ParseVerdict(text.String())
}
