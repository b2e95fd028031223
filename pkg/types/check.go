// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the copycheck pipeline:
// the corpus input, ranked matches, the check result, and the semantic
// verdict returned by the verification service.
package types

import "strings"

// CorpusDocument is one candidate source document the target is compared against.
type CorpusDocument struct {
	// ID identifies the author of the document (a student ID).
	ID string `json:"id" yaml:"id"`

	// SubmissionID identifies the submission the text came from.
	SubmissionID string `json:"submissionId" yaml:"submissionId"`

	// Text is the extracted plain text of the submission.
	Text string `json:"text" yaml:"text"`
}

// SimilarityMatch is one corpus document that scored above the inclusion threshold.
type SimilarityMatch struct {
	StudentID    string  `json:"studentId" yaml:"studentId"`
	SubmissionID string  `json:"submissionId" yaml:"submissionId"`
	Similarity   float64 `json:"similarity" yaml:"similarity"`
	Snippet      string  `json:"text_snippet,omitempty" yaml:"text_snippet,omitempty"`
}

// RiskLevel is the discrete tier a check result is classified into.
type RiskLevel string

const (
	RiskNone  RiskLevel = "No Risk"
	RiskSafe  RiskLevel = "Safe"
	RiskLow   RiskLevel = "Low Risk"
	RiskHigh  RiskLevel = "High Risk"
	RiskError RiskLevel = "Error"
)

// ParseRiskLevel accepts either the display form ("High Risk") or a
// compact form ("high", "high-risk", "no_risk") and returns the tier.
func ParseRiskLevel(s string) (RiskLevel, bool) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.NewReplacer(" ", "", "-", "", "_", "").Replace(key)
	switch key {
	case "norisk", "none":
		return RiskNone, true
	case "safe":
		return RiskSafe, true
	case "lowrisk", "low":
		return RiskLow, true
	case "highrisk", "high":
		return RiskHigh, true
	case "error":
		return RiskError, true
	}
	return "", false
}

// Verdict is the categorical judgment returned by semantic verification.
type Verdict string

const (
	VerdictCopied      Verdict = "copied"
	VerdictParaphrased Verdict = "paraphrased"
	VerdictDifferent   Verdict = "different"
)

// SemanticVerdict is the parsed judgment of the external verification service.
type SemanticVerdict struct {
	// Score is the service's similarity estimate in [0, 100].
	Score float64 `json:"score" yaml:"score"`

	Verdict Verdict `json:"verdict" yaml:"verdict"`

	// Reason is the short justification the service gave.
	Reason string `json:"reason" yaml:"reason"`
}

// CheckResult is the sole output of an evaluation. It is rebuilt from
// scratch on every call.
type CheckResult struct {
	// HighestSimilarity is the best lexical match percentage, or the
	// semantic score when IsAIVerified is true.
	HighestSimilarity float64 `json:"highest_similarity" yaml:"highest_similarity"`

	RiskLevel RiskLevel `json:"risk_level" yaml:"risk_level"`

	// Matches holds at most five entries sorted by similarity descending.
	Matches []SimilarityMatch `json:"matches" yaml:"matches"`

	IsAIVerified bool `json:"is_ai_verified" yaml:"is_ai_verified"`

	// AIVerdict is set only when IsAIVerified is true.
	AIVerdict *SemanticVerdict `json:"ai_verdict,omitempty" yaml:"ai_verdict,omitempty"`
}

// EmptyResult returns the zero result used when there is nothing to compare.
func EmptyResult() CheckResult {
	return CheckResult{RiskLevel: RiskNone, Matches: []SimilarityMatch{}}
}

// ErrorResult returns the result reported when the lexical model could not be built.
func ErrorResult() CheckResult {
	return CheckResult{RiskLevel: RiskError, Matches: []SimilarityMatch{}}
}
