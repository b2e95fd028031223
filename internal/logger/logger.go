// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package logger builds the process-wide slog logger for a deployment
// environment.
package logger

import (
	"io"
	"log/slog"
)

const (
	EnvLocal = "local"
	EnvDev   = "development"
	EnvTest  = "test"
	EnvProd  = "production"
)

// Setup returns a text/debug logger for local runs, JSON/debug for
// development and test, and JSON/info for production. Unknown values are
// treated as local.
func Setup(env string, w io.Writer) *slog.Logger {
	switch env {
	case EnvTest, EnvDev:
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case EnvProd:
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
}
