// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package semantic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/pdiddy/copycheck/internal/httputil"
	"github.com/pdiddy/copycheck/pkg/types"
)

// claudeAPIURL is the Claude API endpoint. Package-level var for test substitution.
var claudeAPIURL = "https://api.anthropic.com/v1/messages"

const defaultClaudeModel = "claude-sonnet-4-5-20250929"

// ClaudeBackend calls the Claude Messages API.
type ClaudeBackend struct {
	Keys      httputil.KeySource
	Model     string
	Client    *http.Client
	MaxChars  int
	UserAgent string
}

// claudeRequest is the request body for the Claude Messages API.
type claudeRequest struct {
	Model     string          `json:"model"`
	MaxTokens int             `json:"max_tokens"`
	Messages  []claudeMessage `json:"messages"`
}

// claudeMessage is a single message in the Claude API conversation.
type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// claudeResponse is the response body from the Claude Messages API.
type claudeResponse struct {
	Content []claudeContent `json:"content"`
}

// claudeContent is a content block in the Claude API response.
type claudeContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Verify sends both excerpts to Claude and parses the returned judgment.
func (c *ClaudeBackend) Verify(ctx context.Context, target, source string) (types.SemanticVerdict, error) {
	if !hasKeys(c.Keys) {
		return types.SemanticVerdict{}, ErrNoCredential
	}

	prompt, err := renderPrompt(target, source, c.MaxChars)
	if err != nil {
		return types.SemanticVerdict{}, fmt.Errorf("rendering prompt: %w", err)
	}

	model := c.Model
	if model == "" {
		model = defaultClaudeModel
	}

	body, err := json.Marshal(claudeRequest{
		Model:     model,
		MaxTokens: 1024,
		Messages:  []claudeMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return types.SemanticVerdict{}, fmt.Errorf("marshaling request: %w", err)
	}

	resp, err := httputil.DoWithRotation(ctx, c.Client, c.Keys, func(ctx context.Context, key string) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, claudeAPIURL, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("x-api-key", key)
		req.Header.Set("anthropic-version", "2023-06-01")
		if c.UserAgent != "" {
			req.Header.Set("User-Agent", c.UserAgent)
		}
		return req, nil
	})
	if err != nil {
		return types.SemanticVerdict{}, fmt.Errorf("calling Claude API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return types.SemanticVerdict{}, fmt.Errorf("Claude API returned %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var cResp claudeResponse
	if err := json.NewDecoder(resp.Body).Decode(&cResp); err != nil {
		return types.SemanticVerdict{}, &ParseError{Reason: fmt.Sprintf("decoding Claude response: %v", err)}
	}

	for _, block := range cResp.Content {
		if block.Type != "text" {
			continue
		}
		return ParseVerdict(block.Text)
	}

	return types.SemanticVerdict{}, &ParseError{Reason: "no text content in Claude API response"}
}
