// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package credentials

import (
	"errors"
	"strings"
	"sync/atomic"

	"github.com/pdiddy/copycheck/pkg/types"
)

// ErrNoKeys is returned when a rotator is built from an empty key list.
var ErrNoKeys = errors.New("no API keys configured")

// keySources lists, per provider, the secret files then environment
// variables consulted in order. The first non-empty source wins.
var keySources = map[types.SemanticProvider]struct {
	files []string
	env   []string
}{
	types.ProviderGemini: {
		files: []string{"gemini-api-keys", "gemini-api-key"},
		env:   []string{"GEMINI_API_KEYS", "GEMINI_API_KEY"},
	},
	types.ProviderClaude: {
		files: []string{"anthropic-api-keys", "anthropic-api-key"},
		env:   []string{"ANTHROPIC_API_KEYS", "ANTHROPIC_API_KEY"},
	},
}

// Resolve returns the key list for provider. getenv is usually os.Getenv.
func Resolve(provider types.SemanticProvider, secrets Secrets, getenv func(string) string) []string {
	src, ok := keySources[provider]
	if !ok {
		return nil
	}
	for _, name := range src.files {
		if keys := SplitKeys(secrets[name]); len(keys) > 0 {
			return keys
		}
	}
	for _, name := range src.env {
		if keys := SplitKeys(getenv(name)); len(keys) > 0 {
			return keys
		}
	}
	return nil
}

// SplitKeys parses a comma- or newline-separated key list, trimming
// whitespace and dropping empty entries and duplicates.
func SplitKeys(raw string) []string {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == '\n' || r == '\r'
	})
	seen := make(map[string]bool)
	var keys []string
	for _, f := range fields {
		k := strings.TrimSpace(f)
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		keys = append(keys, k)
	}
	return keys
}

// Rotator hands out API keys round-robin. The key list is fixed at
// construction; only the index changes, atomically, so a Rotator is safe
// to share between concurrent requests.
type Rotator struct {
	keys []string
	idx  atomic.Uint64
}

// NewRotator creates a rotator over keys. It returns ErrNoKeys when keys is empty.
func NewRotator(keys []string) (*Rotator, error) {
	if len(keys) == 0 {
		return nil, ErrNoKeys
	}
	cp := make([]string, len(keys))
	copy(cp, keys)
	return &Rotator{keys: cp}, nil
}

// Len returns the number of keys. A nil Rotator has none.
func (r *Rotator) Len() int {
	if r == nil {
		return 0
	}
	return len(r.keys)
}

// Current returns the key at the current position.
func (r *Rotator) Current() string {
	return r.keys[r.idx.Load()%uint64(len(r.keys))]
}

// Next advances to the following key and returns it.
func (r *Rotator) Next() string {
	return r.keys[r.idx.Add(1)%uint64(len(r.keys))]
}
