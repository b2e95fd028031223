// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package match turns raw similarity scores into a ranked, truncated list
// of matches and classifies the headline score into a risk tier.
package match

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/pdiddy/copycheck/pkg/types"
)

const defaultMaxMatches = 5

// Selection is the provisional outcome of lexical scoring.
type Selection struct {
	// HighestSimilarity is the maximum percentage over every document,
	// taken before the inclusion filter.
	HighestSimilarity float64

	// Matches holds documents above the inclusion threshold, best first.
	Matches []types.SimilarityMatch

	// Indices[i] is the corpus position of Matches[i].
	Indices []int

	// RiskLevel classifies HighestSimilarity.
	RiskLevel types.RiskLevel
}

// Select converts scores in [0, 1] to percentages, filters, sorts, truncates,
// and classifies. scores and corpus must have the same length.
func Select(scores []float64, corpus []types.CorpusDocument, cfg types.MatchConfig, risk types.RiskThresholds) (Selection, error) {
	if len(scores) != len(corpus) {
		return Selection{}, fmt.Errorf("score count %d does not match corpus size %d", len(scores), len(corpus))
	}

	maxMatches := cfg.MaxMatches
	if maxMatches <= 0 {
		maxMatches = defaultMaxMatches
	}

	var highest float64
	var included []int
	pcts := make([]float64, len(scores))
	for i, score := range scores {
		pct := Percent(score)
		pcts[i] = pct
		if pct > highest {
			highest = pct
		}
		if pct > cfg.InclusionThreshold {
			included = append(included, i)
		}
	}

	// Stable so equal scores keep corpus order.
	sort.SliceStable(included, func(a, b int) bool {
		return pcts[included[a]] > pcts[included[b]]
	})
	if len(included) > maxMatches {
		included = included[:maxMatches]
	}

	matches := make([]types.SimilarityMatch, 0, len(included))
	for _, i := range included {
		matches = append(matches, types.SimilarityMatch{
			StudentID:    corpus[i].ID,
			SubmissionID: corpus[i].SubmissionID,
			Similarity:   pcts[i],
			Snippet:      Snippet(corpus[i].Text, cfg.SnippetLength),
		})
	}

	return Selection{
		HighestSimilarity: highest,
		Matches:           matches,
		Indices:           included,
		RiskLevel:         Classify(highest, risk),
	}, nil
}

// Percent converts a [0, 1] score to a percentage rounded to 2 decimals.
func Percent(score float64) float64 {
	return math.Round(score*100*100) / 100
}

// Classify maps a percentage to a risk tier. It is a pure function of its
// arguments.
func Classify(similarity float64, t types.RiskThresholds) types.RiskLevel {
	switch {
	case similarity > t.High:
		return types.RiskHigh
	case similarity > t.Low:
		return types.RiskLow
	case similarity > t.Safe:
		return types.RiskSafe
	default:
		return types.RiskNone
	}
}

// Snippet returns the first n runes of text with whitespace collapsed,
// followed by "..." when truncated. n <= 0 yields "".
func Snippet(text string, n int) string {
	if n <= 0 {
		return ""
	}
	collapsed := strings.Join(strings.Fields(text), " ")
	if utf8.RuneCountInString(collapsed) <= n {
		return collapsed
	}
	runes := []rune(collapsed)
	return strings.TrimSpace(string(runes[:n])) + "..."
}
