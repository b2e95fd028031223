// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/copycheck/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Serve exposes the checker over HTTP:

  GET  /                   health message
  POST /plagiarism/check   {target_text, corpus, label?, save?} -> result
  POST /ocr/extract        multipart file (+ lang) -> extracted text
  GET  /reports            saved reports (?risk=, ?limit=)
  GET  /reports/{id}       one saved report

The server shuts down gracefully on SIGINT or SIGTERM.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default: server.address)")
	serveCmd.Flags().Bool("no-history", false, "disable the report history endpoints")
	bindFlag(serveCmd.Flags().Lookup("addr"), "server.address")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}
	log := slog.Default()

	log.Info("config loaded",
		"env", cfg.Env,
		"addr", cfg.Server.Address,
		"provider", cfg.Semantic.Provider,
		"semantic_enabled", cfg.Semantic.Enabled,
		"store", cfg.Store.Path,
	)

	checker, err := buildChecker(cfg, log)
	if err != nil {
		return err
	}

	opts := []server.Option{server.WithLogger(log)}
	if noHistory, _ := cmd.Flags().GetBool("no-history"); !noHistory {
		st, err := openStore(cfg.Store)
		if err != nil {
			return err
		}
		defer st.Close()
		opts = append(opts, server.WithReports(st))
	}

	srv := server.New(cfg.Server, checker, buildExtractor(cfg.Convert, log), opts...)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	return srv.ListenAndServe(ctx)
}
