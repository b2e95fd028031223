// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package semantic

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/copycheck/internal/credentials"
	"github.com/pdiddy/copycheck/pkg/types"
)

// --- ParseVerdict ---

func TestParseVerdict(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    types.SemanticVerdict
		wantErr string
	}{
		{
			name: "bare object",
			raw:  `{"score": 87.5, "verdict": "copied", "reason": "Same sentences."}`,
			want: types.SemanticVerdict{Score: 87.5, Verdict: types.VerdictCopied, Reason: "Same sentences."},
		},
		{
			name: "code fence and prose",
			raw:  "Here is my assessment:\n```json\n{\"score\": 40, \"verdict\": \"Paraphrased\", \"reason\": \" Reworded. \"}\n```\nHope this helps.",
			want: types.SemanticVerdict{Score: 40, Verdict: types.VerdictParaphrased, Reason: "Reworded."},
		},
		{
			name: "skips stray braces before the object",
			raw:  `Use {curly} style. {"score": 5, "verdict": "different", "reason": "Unrelated."}`,
			want: types.SemanticVerdict{Score: 5, Verdict: types.VerdictDifferent, Reason: "Unrelated."},
		},
		{
			name: "first object wins",
			raw:  `{"score": 10, "verdict": "different", "reason": "a"} {"score": 90, "verdict": "copied", "reason": "b"}`,
			want: types.SemanticVerdict{Score: 10, Verdict: types.VerdictDifferent, Reason: "a"},
		},
		{
			name:    "no object",
			raw:     "I cannot determine this.",
			wantErr: "no JSON object",
		},
		{
			name:    "truncated object",
			raw:     `{"score": 10, "verdict": "copied"`,
			wantErr: "no JSON object",
		},
		{
			name:    "missing score",
			raw:     `{"verdict": "copied", "reason": "x"}`,
			wantErr: `missing field "score"`,
		},
		{
			name:    "missing verdict",
			raw:     `{"score": 1, "reason": "x"}`,
			wantErr: `missing field "verdict"`,
		},
		{
			name:    "missing reason",
			raw:     `{"score": 1, "verdict": "copied"}`,
			wantErr: `missing field "reason"`,
		},
		{
			name:    "score out of range",
			raw:     `{"score": 140, "verdict": "copied", "reason": "x"}`,
			wantErr: "out of range",
		},
		{
			name:    "score as string",
			raw:     `{"score": "80", "verdict": "copied", "reason": "x"}`,
			wantErr: "decoding verdict",
		},
		{
			name:    "unknown verdict",
			raw:     `{"score": 50, "verdict": "maybe", "reason": "x"}`,
			wantErr: "invalid verdict",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseVerdict(tt.raw)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrMalformedResponse)
				var pe *ParseError
				require.ErrorAs(t, err, &pe)
				assert.Contains(t, pe.Reason, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "", Truncate("abc", 0))
	assert.Equal(t, "ab", Truncate("abc", 2))
	assert.Equal(t, "abc", Truncate("abc", 10))
	assert.Equal(t, "жё", Truncate("жёлтый", 2))
}

func TestRenderPromptBoundsExcerpts(t *testing.T) {
	target := strings.Repeat("t", 50)
	source := strings.Repeat("s", 50)
	prompt, err := renderPrompt(target, source, 10)
	require.NoError(t, err)
	assert.Contains(t, prompt, strings.Repeat("t", 10)+"\n")
	assert.NotContains(t, prompt, strings.Repeat("t", 11))
	assert.NotContains(t, prompt, strings.Repeat("s", 11))
}

// --- New ---

func TestNew(t *testing.T) {
	cfg := types.DefaultCheckConfig().Semantic

	v, err := New(cfg, nil, nil)
	require.NoError(t, err)
	assert.IsType(t, &GeminiBackend{}, v)

	cfg.Provider = types.ProviderClaude
	v, err = New(cfg, nil, nil)
	require.NoError(t, err)
	assert.IsType(t, &ClaudeBackend{}, v)

	cfg.Provider = "other"
	_, err = New(cfg, nil, nil)
	assert.Error(t, err)
}

func TestVerify_NoCredential(t *testing.T) {
	var nilRotator *credentials.Rotator
	for _, v := range []Verifier{
		&GeminiBackend{},
		&ClaudeBackend{},
		&GeminiBackend{Keys: nilRotator},
	} {
		_, err := v.Verify(context.Background(), "a", "b")
		assert.ErrorIs(t, err, ErrNoCredential)
	}
}

// --- Gemini ---

func geminiReply(text string) string {
	b, _ := json.Marshal(map[string]any{
		"candidates": []any{
			map[string]any{"content": map[string]any{"parts": []any{map[string]any{"text": text}}}},
		},
	})
	return string(b)
}

func withGeminiServer(t *testing.T, h http.HandlerFunc) {
	t.Helper()
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)
	old := geminiAPIBase
	geminiAPIBase = ts.URL + "/models"
	t.Cleanup(func() { geminiAPIBase = old })
}

func rotator(t *testing.T, keys ...string) *credentials.Rotator {
	t.Helper()
	r, err := credentials.NewRotator(keys)
	require.NoError(t, err)
	return r
}

func TestGeminiVerify(t *testing.T) {
	var gotPath, gotKey string
	var gotBody geminiRequest
	withGeminiServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-goog-api-key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		io.WriteString(w, geminiReply("```json\n{\"score\": 92, \"verdict\": \"copied\", \"reason\": \"Verbatim.\"}\n```"))
	})

	g := &GeminiBackend{Keys: rotator(t, "g-key"), MaxChars: 5}
	v, err := g.Verify(context.Background(), "target text here", "source text here")
	require.NoError(t, err)

	assert.Equal(t, types.SemanticVerdict{Score: 92, Verdict: types.VerdictCopied, Reason: "Verbatim."}, v)
	assert.Equal(t, "/models/gemini-2.5-flash:generateContent", gotPath)
	assert.Equal(t, "g-key", gotKey)
	require.Len(t, gotBody.Contents, 1)
	prompt := gotBody.Contents[0].Parts[0].Text
	assert.Contains(t, prompt, "targe")
	assert.NotContains(t, prompt, "target text")
}

func TestGeminiVerify_RotatesKeyOnQuota(t *testing.T) {
	var calls int32
	withGeminiServer(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		if r.Header.Get("x-goog-api-key") == "exhausted" {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		io.WriteString(w, geminiReply(`{"score": 30, "verdict": "paraphrased", "reason": "ok"}`))
	})

	keys := rotator(t, "exhausted", "fresh")
	g := &GeminiBackend{Keys: keys}
	v, err := g.Verify(context.Background(), "a", "b")
	require.NoError(t, err)
	assert.Equal(t, types.VerdictParaphrased, v.Verdict)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	assert.Equal(t, "fresh", keys.Current())
}

func TestGeminiVerify_Failures(t *testing.T) {
	tests := []struct {
		name      string
		handler   http.HandlerFunc
		malformed bool
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				http.Error(w, "boom", http.StatusInternalServerError)
			},
		},
		{
			name: "bad request",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				http.Error(w, "bad", http.StatusBadRequest)
			},
		},
		{
			name: "not json envelope",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				io.WriteString(w, "<html>")
			},
			malformed: true,
		},
		{
			name: "no candidates",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				io.WriteString(w, `{"candidates": []}`)
			},
			malformed: true,
		},
		{
			name: "prose only",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				io.WriteString(w, geminiReply("They look similar to me."))
			},
			malformed: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withGeminiServer(t, tt.handler)
			_, err := (&GeminiBackend{Keys: rotator(t, "k")}).Verify(context.Background(), "a", "b")
			require.Error(t, err)
			assert.Equal(t, tt.malformed, errors.Is(err, ErrMalformedResponse))
		})
	}
}

// --- Claude ---

func TestClaudeVerify(t *testing.T) {
	var gotKey, gotVersion string
	var gotBody claudeRequest
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("x-api-key")
		gotVersion = r.Header.Get("anthropic-version")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		io.WriteString(w, `{"content": [{"type": "text", "text": "Assessment: {\"score\": 12, \"verdict\": \"different\", \"reason\": \"Independent.\"}"}]}`)
	}))
	defer ts.Close()
	old := claudeAPIURL
	claudeAPIURL = ts.URL
	defer func() { claudeAPIURL = old }()

	c := &ClaudeBackend{Keys: rotator(t, "c-key")}
	v, err := c.Verify(context.Background(), "target", "source")
	require.NoError(t, err)

	assert.Equal(t, types.SemanticVerdict{Score: 12, Verdict: types.VerdictDifferent, Reason: "Independent."}, v)
	assert.Equal(t, "c-key", gotKey)
	assert.Equal(t, "2023-06-01", gotVersion)
	assert.Equal(t, defaultClaudeModel, gotBody.Model)
}

func TestClaudeVerify_NoTextBlock(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		io.WriteString(w, `{"content": [{"type": "tool_use"}]}`)
	}))
	defer ts.Close()
	old := claudeAPIURL
	claudeAPIURL = ts.URL
	defer func() { claudeAPIURL = old }()

	_, err := (&ClaudeBackend{Keys: rotator(t, "k")}).Verify(context.Background(), "a", "b")
	assert.ErrorIs(t, err, ErrMalformedResponse)
}
