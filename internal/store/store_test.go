// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/copycheck/pkg/types"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(types.StoreConfig{Path: filepath.Join(t.TempDir(), "nested", "reports.db")})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	// Deterministic, strictly increasing clock.
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	var n int
	s.now = func() time.Time {
		n++
		return base.Add(time.Duration(n) * time.Minute)
	}
	return s
}

func highRisk() types.CheckResult {
	return types.CheckResult{
		HighestSimilarity: 91.5,
		RiskLevel:         types.RiskHigh,
		Matches: []types.SimilarityMatch{
			{StudentID: "s1", SubmissionID: "sub1", Similarity: 72.25, Snippet: "The cat sat..."},
		},
		IsAIVerified: true,
		AIVerdict:    &types.SemanticVerdict{Score: 91.5, Verdict: types.VerdictCopied, Reason: "Verbatim."},
	}
}

func TestSaveAndGet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	saved, err := s.Save(ctx, "  essay 1  ", highRisk())
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID)
	assert.Equal(t, "essay 1", saved.Label)

	got, err := s.Get(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, saved.ID, got.ID)
	assert.Equal(t, "essay 1", got.Label)
	assert.True(t, saved.CreatedAt.Equal(got.CreatedAt))
	assert.Equal(t, highRisk(), got.CheckResult)
}

func TestSave_NilMatchesAndNoVerdict(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	saved, err := s.Save(ctx, "", types.CheckResult{RiskLevel: types.RiskNone})
	require.NoError(t, err)

	got, err := s.Get(ctx, saved.ID)
	require.NoError(t, err)
	assert.NotNil(t, got.Matches)
	assert.Empty(t, got.Matches)
	assert.Nil(t, got.AIVerdict)
	assert.False(t, got.IsAIVerified)
}

func TestGet_NotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestList(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first, err := s.Save(ctx, "first", highRisk())
	require.NoError(t, err)
	_, err = s.Save(ctx, "second", types.EmptyResult())
	require.NoError(t, err)
	third, err := s.Save(ctx, "third", highRisk())
	require.NoError(t, err)

	all, err := s.List(ctx, ListOptions{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"third", "second", "first"}, []string{all[0].Label, all[1].Label, all[2].Label})

	high, err := s.List(ctx, ListOptions{RiskLevel: types.RiskHigh})
	require.NoError(t, err)
	require.Len(t, high, 2)
	assert.Equal(t, third.ID, high[0].ID)
	assert.Equal(t, first.ID, high[1].ID)

	limited, err := s.List(ctx, ListOptions{Limit: 1})
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, third.ID, limited[0].ID)

	none, err := s.List(ctx, ListOptions{RiskLevel: types.RiskError})
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	r, err := s.Save(ctx, "x", highRisk())
	require.NoError(t, err)
	require.NoError(t, s.Delete(ctx, r.ID))

	_, err = s.Get(ctx, r.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, r.ID), ErrNotFound)
}

func TestReopenKeepsReports(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports.db")
	s, err := New(types.StoreConfig{Path: path})
	require.NoError(t, err)
	r, err := s.Save(context.Background(), "kept", highRisk())
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s2, err := New(types.StoreConfig{Path: path})
	require.NoError(t, err)
	defer s2.Close()
	got, err := s2.Get(context.Background(), r.ID)
	require.NoError(t, err)
	assert.Equal(t, "kept", got.Label)
}

func TestExport(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Save(ctx, "high", highRisk())
	require.NoError(t, err)
	_, err = s.Save(ctx, "none", types.EmptyResult())
	require.NoError(t, err)

	var yb bytes.Buffer
	require.NoError(t, s.ExportYAML(ctx, &yb, ListOptions{RiskLevel: types.RiskHigh}))
	var fromYAML []map[string]any
	require.NoError(t, yaml.Unmarshal(yb.Bytes(), &fromYAML))
	require.Len(t, fromYAML, 1)
	assert.Equal(t, "high", fromYAML[0]["label"])
	assert.Equal(t, "High Risk", fromYAML[0]["risk_level"])
	assert.Equal(t, true, fromYAML[0]["is_ai_verified"])

	var jb bytes.Buffer
	require.NoError(t, s.ExportJSON(ctx, &jb, ListOptions{}))
	var fromJSON []types.Report
	require.NoError(t, json.Unmarshal(jb.Bytes(), &fromJSON))
	require.Len(t, fromJSON, 2)
	assert.Equal(t, "none", fromJSON[0].Label)
	assert.Equal(t, types.RiskNone, fromJSON[0].RiskLevel)
}

func TestExport_IgnoresListLimits(t *testing.T) {
	s := newTestStore(t)
	s.maxResults = 2
	ctx := context.Background()

	for _, label := range []string{"a", "b", "c"} {
		_, err := s.Save(ctx, label, types.EmptyResult())
		require.NoError(t, err)
	}

	listed, err := s.List(ctx, ListOptions{})
	require.NoError(t, err)
	assert.Len(t, listed, 2)

	var jb bytes.Buffer
	require.NoError(t, s.ExportJSON(ctx, &jb, ListOptions{Limit: 1}))
	var exported []types.Report
	require.NoError(t, json.Unmarshal(jb.Bytes(), &exported))
	require.Len(t, exported, 3)
	assert.Equal(t, []string{"c", "b", "a"}, []string{exported[0].Label, exported[1].Label, exported[2].Label})
}
