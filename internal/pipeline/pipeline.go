// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline sequences lexical scoring, match selection, and the
// optional semantic verification step into a single CheckResult.
//
// Evaluate never returns an error. Failure outcomes are encoded in the
// result: an unbuildable vocabulary yields RiskError, and any failure of
// semantic verification falls back to the lexical result.
package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/pdiddy/copycheck/internal/lexical"
	"github.com/pdiddy/copycheck/internal/match"
	"github.com/pdiddy/copycheck/internal/semantic"
	"github.com/pdiddy/copycheck/pkg/types"
)

// Scorer computes per-document lexical similarity in [0, 1].
type Scorer interface {
	Score(target string, corpus []string) ([]float64, error)
}

// Checker evaluates targets against corpora. It holds only immutable
// configuration and is safe for concurrent use.
type Checker struct {
	cfg      types.CheckConfig
	scorer   Scorer
	verifier semantic.Verifier
	log      *slog.Logger
}

// Option configures a Checker.
type Option func(*Checker)

// WithVerifier enables semantic verification through v.
func WithVerifier(v semantic.Verifier) Option {
	return func(c *Checker) { c.verifier = v }
}

// WithScorer replaces the default TF-IDF scorer.
func WithScorer(s Scorer) Option {
	return func(c *Checker) { c.scorer = s }
}

// WithLogger sets the logger used for degradation warnings.
func WithLogger(l *slog.Logger) Option {
	return func(c *Checker) { c.log = l }
}

// New creates a Checker. Without WithVerifier only lexical scoring runs.
// Zero-valued lexical, risk, and match sections take the values of
// types.DefaultCheckConfig; non-zero sections are used as given and should
// already be validated.
func New(cfg types.CheckConfig, opts ...Option) *Checker {
	cfg = withDefaults(cfg)
	c := &Checker{
		cfg:    cfg,
		scorer: lexical.NewScorer(cfg.Lexical),
		log:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Evaluate compares target against corpus and returns a freshly built result.
func (c *Checker) Evaluate(ctx context.Context, target string, corpus []types.CorpusDocument) types.CheckResult {
	// A whitespace-only target still reaches vectorization: against a corpus
	// with vocabulary it scores zero everywhere, against an empty one it is
	// reported as RiskError.
	if len(corpus) == 0 || target == "" {
		return types.EmptyResult()
	}

	texts := make([]string, len(corpus))
	for i, doc := range corpus {
		texts[i] = doc.Text
	}

	scores, err := c.scorer.Score(target, texts)
	if err != nil {
		if errors.Is(err, lexical.ErrVectorization) {
			c.log.Warn("lexical scoring could not build a vocabulary", "corpus_size", len(corpus), "err", err)
		} else {
			c.log.Error("lexical scoring failed", "corpus_size", len(corpus), "err", err)
		}
		return types.ErrorResult()
	}

	sel, err := match.Select(scores, corpus, c.cfg.Match, c.cfg.Risk)
	if err != nil {
		c.log.Error("match selection failed", "err", err)
		return types.ErrorResult()
	}

	result := types.CheckResult{
		HighestSimilarity: sel.HighestSimilarity,
		RiskLevel:         sel.RiskLevel,
		Matches:           sel.Matches,
	}

	if !c.shouldVerify(result) {
		return result
	}

	top := result.Matches[0]
	source := corpus[sel.Indices[0]].Text

	start := time.Now()
	verdict, err := c.verifier.Verify(ctx, target, source)
	if err != nil {
		c.log.Warn("semantic verification failed; keeping lexical score",
			"submission_id", top.SubmissionID,
			"lexical_score", result.HighestSimilarity,
			"elapsed", time.Since(start),
			"err", err)
		return result
	}

	c.log.Debug("semantic verification complete",
		"submission_id", top.SubmissionID,
		"lexical_score", result.HighestSimilarity,
		"ai_score", verdict.Score,
		"verdict", verdict.Verdict,
		"elapsed", time.Since(start))

	result.HighestSimilarity = verdict.Score
	result.RiskLevel = match.Classify(verdict.Score, c.cfg.Risk)
	result.IsAIVerified = true
	result.AIVerdict = &verdict
	return result
}

// shouldVerify reports whether the semantic trigger holds for a provisional result.
func (c *Checker) shouldVerify(r types.CheckResult) bool {
	if c.verifier == nil || !c.cfg.Semantic.Enabled {
		return false
	}
	return r.HighestSimilarity > c.cfg.Semantic.TriggerThreshold && len(r.Matches) > 0
}

func withDefaults(cfg types.CheckConfig) types.CheckConfig {
	def := types.DefaultCheckConfig()
	if cfg.Lexical == (types.LexicalConfig{}) {
		cfg.Lexical = def.Lexical
	}
	if cfg.Risk == (types.RiskThresholds{}) {
		cfg.Risk = def.Risk
	}
	if cfg.Match == (types.MatchConfig{}) {
		cfg.Match = def.Match
	}
	return cfg
}
