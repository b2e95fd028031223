// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides outbound HTTP helpers for API-key backed services.
package httputil

import (
	"context"
	"io"
	"log/slog"
	"net/http"
)

// KeySource yields the API key to use for the next request and advances
// to another key when the current one is exhausted.
type KeySource interface {
	Len() int
	Current() string
	Next() string
}

// RequestBuilder creates a request authenticated with key.
type RequestBuilder func(ctx context.Context, key string) (*http.Request, error)

// DoWithRotation sends a request built for the current key. When the
// service answers 429 (quota exhausted) or 5xx, or the transport fails, it
// rotates to the next key and tries again, making at most one attempt per
// key. There is no backoff between attempts.
//
// After the last attempt the final response (or transport error) is
// returned as-is so the caller can inspect it. A cancelled context stops
// rotation immediately and returns ctx.Err().
func DoWithRotation(ctx context.Context, client *http.Client, keys KeySource, build RequestBuilder) (*http.Response, error) {
	if client == nil {
		client = http.DefaultClient
	}
	attempts := keys.Len()
	if attempts < 1 {
		attempts = 1
	}

	for attempt := 1; ; attempt++ {
		req, err := build(ctx, keys.Current())
		if err != nil {
			return nil, err
		}

		resp, err := client.Do(req)
		if ctxErr := ctx.Err(); ctxErr != nil {
			if resp != nil {
				resp.Body.Close()
			}
			return nil, ctxErr
		}
		if err == nil && !shouldRotate(resp.StatusCode) {
			return resp, nil
		}

		if attempt >= attempts {
			return resp, err
		}

		status := 0
		if resp != nil {
			status = resp.StatusCode
			// Drain and close the body before moving on.
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
		}
		slog.Debug("rotating API key", "attempt", attempt, "of", attempts, "status", status, "err", err)
		keys.Next()
	}
}

func shouldRotate(status int) bool {
	return status == http.StatusTooManyRequests || status >= http.StatusInternalServerError
}
