// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"time"
)

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// LexicalConfig controls tokenization for the term-weight model.
type LexicalConfig struct {
	// StopWords drops common English function words from the vocabulary.
	StopWords bool `json:"stop_words" yaml:"stop_words" mapstructure:"stop_words"`

	// MinTokenLength is the shortest token (in runes) kept in the vocabulary.
	MinTokenLength int `json:"min_token_length" yaml:"min_token_length" mapstructure:"min_token_length"`
}

// RiskThresholds are the breakpoints of the risk table. A score strictly
// greater than High is HighRisk, greater than Low is LowRisk, greater than
// Safe is Safe, and anything else is NoRisk.
type RiskThresholds struct {
	High float64 `json:"high" yaml:"high" mapstructure:"high"`
	Low  float64 `json:"low" yaml:"low" mapstructure:"low"`
	Safe float64 `json:"safe" yaml:"safe" mapstructure:"safe"`
}

// Validate rejects tables whose breakpoints are not strictly descending
// or fall outside [0, 100].
func (t RiskThresholds) Validate() error {
	for _, v := range []float64{t.High, t.Low, t.Safe} {
		if v < 0 || v > 100 {
			return fmt.Errorf("risk threshold %v out of range [0,100]", v)
		}
	}
	if !(t.High > t.Low && t.Low > t.Safe) {
		return fmt.Errorf("risk thresholds must be descending: high=%v low=%v safe=%v", t.High, t.Low, t.Safe)
	}
	return nil
}

// MatchConfig controls which matches are reported and how.
type MatchConfig struct {
	// InclusionThreshold is the percentage a document must exceed to be listed.
	InclusionThreshold float64 `json:"inclusion_threshold" yaml:"inclusion_threshold" mapstructure:"inclusion_threshold"`

	// MaxMatches caps the reported list (default 5).
	MaxMatches int `json:"max_matches" yaml:"max_matches" mapstructure:"max_matches"`

	// SnippetLength is the number of runes of source text attached to each
	// match. Zero disables snippets.
	SnippetLength int `json:"snippet_length" yaml:"snippet_length" mapstructure:"snippet_length"`
}

// SemanticProvider names the external text-understanding service.
type SemanticProvider string

const (
	ProviderGemini SemanticProvider = "gemini"
	ProviderClaude SemanticProvider = "claude"
)

// AIConfig holds shared settings for stages that call a Generative AI API.
type AIConfig struct {
	// Provider selects the backend: gemini or claude.
	Provider SemanticProvider `json:"provider" yaml:"provider" mapstructure:"provider"`

	// Model is the AI model identifier (e.g. "gemini-2.5-flash"). Empty
	// selects the provider's default.
	Model string `json:"model" yaml:"model" mapstructure:"model"`
}

// SemanticConfig holds settings for the semantic verification step.
type SemanticConfig struct {
	AIConfig   `yaml:",inline" mapstructure:",squash"`
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// Enabled turns the step on. When false only lexical scoring runs.
	Enabled bool `json:"enabled" yaml:"enabled" mapstructure:"enabled"`

	// TriggerThreshold is the lexical percentage that must be exceeded
	// before the service is consulted (default 20).
	TriggerThreshold float64 `json:"trigger_threshold" yaml:"trigger_threshold" mapstructure:"trigger_threshold"`

	// MaxChars bounds each text excerpt sent to the service, in runes.
	MaxChars int `json:"max_chars" yaml:"max_chars" mapstructure:"max_chars"`
}

// CheckConfig groups everything the orchestrator needs.
type CheckConfig struct {
	Lexical  LexicalConfig  `json:"lexical" yaml:"lexical" mapstructure:"lexical"`
	Risk     RiskThresholds `json:"risk" yaml:"risk" mapstructure:"risk"`
	Match    MatchConfig    `json:"match" yaml:"match" mapstructure:"match"`
	Semantic SemanticConfig `json:"semantic" yaml:"semantic" mapstructure:"semantic"`
}

// ConvertConfig holds settings for the text extraction collaborator.
type ConvertConfig struct {
	// OCRImage is the container image used for image OCR (reads stdin, writes stdout).
	OCRImage string `json:"ocr_image" yaml:"ocr_image" mapstructure:"ocr_image"`

	// OCRLang is the default OCR language code.
	OCRLang string `json:"ocr_lang" yaml:"ocr_lang" mapstructure:"ocr_lang"`
}

// StoreConfig holds settings for the report history database.
type StoreConfig struct {
	// Path is the SQLite database file.
	Path string `json:"path" yaml:"path" mapstructure:"path"`

	// MaxResults is the default list size (default 20).
	MaxResults int `json:"max_results" yaml:"max_results" mapstructure:"max_results"`
}

// ServerConfig holds settings for the HTTP surface.
type ServerConfig struct {
	Address        string        `json:"address" yaml:"address" mapstructure:"address"`
	ReadTimeout    time.Duration `json:"read_timeout" yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `json:"write_timeout" yaml:"write_timeout" mapstructure:"write_timeout"`
	MaxUploadBytes int64         `json:"max_upload_bytes" yaml:"max_upload_bytes" mapstructure:"max_upload_bytes"`

	// CORSOrigins lists the origins allowed to call the API from a browser.
	CORSOrigins []string `json:"cors_origins" yaml:"cors_origins" mapstructure:"cors_origins"`
}

// DefaultCheckConfig returns the canonical thresholds and limits.
func DefaultCheckConfig() CheckConfig {
	return CheckConfig{
		Lexical: LexicalConfig{
			StopWords:      true,
			MinTokenLength: 2,
		},
		Risk: RiskThresholds{High: 50, Low: 25, Safe: 0},
		Match: MatchConfig{
			InclusionThreshold: 10,
			MaxMatches:         5,
			SnippetLength:      200,
		},
		Semantic: SemanticConfig{
			AIConfig: AIConfig{
				Provider: ProviderGemini,
			},
			HTTPConfig: HTTPConfig{
				Timeout:   30 * time.Second,
				UserAgent: "copycheck/0.1",
			},
			Enabled:          true,
			TriggerThreshold: 20,
			MaxChars:         3000,
		},
	}
}

// DefaultConvertConfig returns the default extraction settings.
func DefaultConvertConfig() ConvertConfig {
	return ConvertConfig{OCRImage: "tesseract:latest", OCRLang: "eng"}
}

// DefaultStoreConfig returns the default report store settings.
func DefaultStoreConfig() StoreConfig {
	return StoreConfig{Path: "data/copycheck.db", MaxResults: 20}
}

// DefaultServerConfig returns the default HTTP settings.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Address:        "127.0.0.1:8001",
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   90 * time.Second,
		MaxUploadBytes: 20 << 20,
		CORSOrigins:    []string{"*"},
	}
}
