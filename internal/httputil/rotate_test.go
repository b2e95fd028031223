// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// staticKeys is a minimal KeySource for tests.
type staticKeys struct {
	mu   sync.Mutex
	keys []string
	idx  int
}

func (s *staticKeys) Len() int { return len(s.keys) }

func (s *staticKeys) Current() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.keys[s.idx%len(s.keys)]
}

func (s *staticKeys) Next() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.idx++
	return s.keys[s.idx%len(s.keys)]
}

func keyHeaderBuilder(url string) RequestBuilder {
	return func(ctx context.Context, key string) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("x-api-key", key)
		return req, nil
	}
}

func TestDoWithRotation_ImmediateSuccess(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	keys := &staticKeys{keys: []string{"k1", "k2"}}
	resp, err := DoWithRotation(context.Background(), ts.Client(), keys, keyHeaderBuilder(ts.URL))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Equal(t, "k1", keys.Current())
}

func TestDoWithRotation_RotatesOnQuota(t *testing.T) {
	var seen []string
	var mu sync.Mutex
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get("x-api-key")
		mu.Lock()
		seen = append(seen, key)
		mu.Unlock()
		if key == "k3" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer ts.Close()

	keys := &staticKeys{keys: []string{"k1", "k2", "k3"}}
	resp, err := DoWithRotation(context.Background(), ts.Client(), keys, keyHeaderBuilder(ts.URL))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{"k1", "k2", "k3"}, seen)
	// The working key stays current for the next request.
	assert.Equal(t, "k3", keys.Current())
}

func TestDoWithRotation_OneAttemptPerKey(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	keys := &staticKeys{keys: []string{"k1", "k2"}}
	resp, err := DoWithRotation(context.Background(), ts.Client(), keys, keyHeaderBuilder(ts.URL))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestDoWithRotation_SingleKeyNoRetry(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer ts.Close()

	keys := &staticKeys{keys: []string{"only"}}
	resp, err := DoWithRotation(context.Background(), ts.Client(), keys, keyHeaderBuilder(ts.URL))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestDoWithRotation_ClientErrorPassesThrough(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer ts.Close()

	keys := &staticKeys{keys: []string{"k1", "k2"}}
	resp, err := DoWithRotation(context.Background(), ts.Client(), keys, keyHeaderBuilder(ts.URL))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestDoWithRotation_BuildError(t *testing.T) {
	keys := &staticKeys{keys: []string{"k1"}}
	boom := errors.New("boom")
	_, err := DoWithRotation(context.Background(), nil, keys, func(context.Context, string) (*http.Request, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)
}

func TestDoWithRotation_ContextCancelled(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	keys := &staticKeys{keys: []string{"k1", "k2"}}
	_, err := DoWithRotation(ctx, ts.Client(), keys, keyHeaderBuilder(ts.URL))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, "k1", keys.Current())
}
