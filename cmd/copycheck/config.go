// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/pdiddy/copycheck/internal/container"
	"github.com/pdiddy/copycheck/internal/convert"
	"github.com/pdiddy/copycheck/internal/credentials"
	"github.com/pdiddy/copycheck/internal/logger"
	"github.com/pdiddy/copycheck/internal/pipeline"
	"github.com/pdiddy/copycheck/internal/semantic"
	"github.com/pdiddy/copycheck/internal/store"
	"github.com/pdiddy/copycheck/pkg/types"
)

// appConfig is the full resolved configuration.
type appConfig struct {
	Env string `mapstructure:"env"`

	types.CheckConfig `mapstructure:",squash"`

	Convert types.ConvertConfig `mapstructure:"convert"`
	Store   types.StoreConfig   `mapstructure:"store"`
	Server  types.ServerConfig  `mapstructure:"server"`
}

// setDefaults registers every key so environment overrides apply to it.
func setDefaults(v *viper.Viper) {
	check := types.DefaultCheckConfig()
	conv := types.DefaultConvertConfig()
	st := types.DefaultStoreConfig()
	srv := types.DefaultServerConfig()

	v.SetDefault("env", logger.EnvLocal)

	v.SetDefault("lexical.stop_words", check.Lexical.StopWords)
	v.SetDefault("lexical.min_token_length", check.Lexical.MinTokenLength)

	v.SetDefault("risk.high", check.Risk.High)
	v.SetDefault("risk.low", check.Risk.Low)
	v.SetDefault("risk.safe", check.Risk.Safe)

	v.SetDefault("match.inclusion_threshold", check.Match.InclusionThreshold)
	v.SetDefault("match.max_matches", check.Match.MaxMatches)
	v.SetDefault("match.snippet_length", check.Match.SnippetLength)

	v.SetDefault("semantic.enabled", check.Semantic.Enabled)
	v.SetDefault("semantic.provider", string(check.Semantic.Provider))
	v.SetDefault("semantic.model", check.Semantic.Model)
	v.SetDefault("semantic.trigger_threshold", check.Semantic.TriggerThreshold)
	v.SetDefault("semantic.max_chars", check.Semantic.MaxChars)
	v.SetDefault("semantic.timeout", check.Semantic.Timeout)
	v.SetDefault("semantic.user_agent", check.Semantic.UserAgent)

	v.SetDefault("convert.ocr_image", conv.OCRImage)
	v.SetDefault("convert.ocr_lang", conv.OCRLang)

	v.SetDefault("store.path", st.Path)
	v.SetDefault("store.max_results", st.MaxResults)

	v.SetDefault("server.address", srv.Address)
	v.SetDefault("server.read_timeout", srv.ReadTimeout)
	v.SetDefault("server.write_timeout", srv.WriteTimeout)
	v.SetDefault("server.max_upload_bytes", srv.MaxUploadBytes)
	v.SetDefault("server.cors_origins", srv.CORSOrigins)
}

// loadConfig decodes v into an appConfig and validates it.
func loadConfig(v *viper.Viper) (appConfig, error) {
	var cfg appConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return appConfig{}, fmt.Errorf("decoding configuration: %w", err)
	}
	if err := cfg.Risk.Validate(); err != nil {
		return appConfig{}, fmt.Errorf("invalid configuration: %w", err)
	}
	if cfg.Match.MaxMatches < 1 {
		return appConfig{}, fmt.Errorf("invalid configuration: match.max_matches must be at least 1")
	}
	switch cfg.Semantic.Provider {
	case types.ProviderGemini, types.ProviderClaude:
	case "":
		cfg.Semantic.Provider = types.ProviderGemini
	default:
		return appConfig{}, fmt.Errorf("invalid configuration: unknown semantic.provider %q", cfg.Semantic.Provider)
	}
	return cfg, nil
}

// bindFlag ties a flag to a viper key so it overrides env and file values.
func bindFlag(f *pflag.Flag, key string) {
	if err := viper.BindPFlag(key, f); err != nil {
		panic(fmt.Sprintf("binding flag %s: %v", f.Name, err))
	}
}

// buildChecker assembles the orchestrator. Semantic verification is wired
// only when enabled and at least one API key is available.
func buildChecker(cfg appConfig, log *slog.Logger) (*pipeline.Checker, error) {
	opts := []pipeline.Option{pipeline.WithLogger(log)}

	if cfg.Semantic.Enabled {
		keys := credentials.Resolve(cfg.Semantic.Provider, loadedSecrets, os.Getenv)
		rot, err := credentials.NewRotator(keys)
		if err != nil {
			log.Warn("semantic verification disabled", "provider", cfg.Semantic.Provider, "err", err)
		} else {
			v, err := semantic.New(cfg.Semantic, rot, nil)
			if err != nil {
				return nil, err
			}
			log.Debug("semantic verification enabled", "provider", cfg.Semantic.Provider, "keys", rot.Len())
			opts = append(opts, pipeline.WithVerifier(v))
		}
	}

	return pipeline.New(cfg.CheckConfig, opts...), nil
}

// buildExtractor wires OCR when a container runtime and the OCR image are
// present; otherwise images are reported as unsupported.
func buildExtractor(cfg types.ConvertConfig, log *slog.Logger) *convert.Dispatcher {
	rt, err := container.DetectRuntime()
	if err != nil {
		log.Debug("OCR unavailable", "err", err)
		return convert.NewDispatcher(nil)
	}
	ocr, err := convert.NewOCRConverter(rt, cfg.OCRImage, cfg.OCRLang)
	if err != nil {
		log.Debug("OCR unavailable", "err", err)
		return convert.NewDispatcher(nil)
	}
	log.Debug("OCR enabled", "runtime", rt.Name(), "image", cfg.OCRImage, "lang", ocr.Lang())
	return convert.NewDispatcher(ocr)
}

func openStore(cfg types.StoreConfig) (*store.Store, error) {
	st, err := store.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("opening report store %s: %w", cfg.Path, err)
	}
	return st, nil
}
