// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package semantic asks an external text-understanding service whether a
// submission copies, paraphrases, or is independent of a source text, and
// parses the service's free-form answer into a strict verdict.
//
// Backends make exactly one logical call per Verify. Key rotation on quota
// exhaustion is delegated to the credential layer (httputil.DoWithRotation).
package semantic

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/pdiddy/copycheck/internal/httputil"
	"github.com/pdiddy/copycheck/pkg/types"
)

// ErrNoCredential is returned when no API key is configured for the backend.
var ErrNoCredential = errors.New("no API credential configured for semantic verification")

// ErrMalformedResponse is the sentinel wrapped by every ParseError.
var ErrMalformedResponse = errors.New("malformed semantic verification response")

// ParseError describes why a service response could not be turned into a verdict.
type ParseError struct {
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%v: %s", ErrMalformedResponse, e.Reason)
}

func (e *ParseError) Unwrap() error { return ErrMalformedResponse }

// Verifier judges the semantic relationship between a target and a source
// text. Implementations are safe for concurrent use.
type Verifier interface {
	Verify(ctx context.Context, target, source string) (types.SemanticVerdict, error)
}

const defaultMaxChars = 3000

// New builds the backend named by cfg.Provider. keys may be nil, in which
// case every Verify fails with ErrNoCredential.
func New(cfg types.SemanticConfig, keys httputil.KeySource, client *http.Client) (Verifier, error) {
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	switch cfg.Provider {
	case types.ProviderGemini, "":
		return &GeminiBackend{
			Keys:      keys,
			Model:     cfg.Model,
			Client:    client,
			MaxChars:  cfg.MaxChars,
			UserAgent: cfg.UserAgent,
		}, nil
	case types.ProviderClaude:
		return &ClaudeBackend{
			Keys:      keys,
			Model:     cfg.Model,
			Client:    client,
			MaxChars:  cfg.MaxChars,
			UserAgent: cfg.UserAgent,
		}, nil
	default:
		return nil, fmt.Errorf("unknown semantic provider %q: use gemini or claude", cfg.Provider)
	}
}

func hasKeys(ks httputil.KeySource) bool {
	return ks != nil && ks.Len() > 0
}
