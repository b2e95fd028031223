// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the copycheck CLI.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/copycheck/internal/credentials"
	"github.com/pdiddy/copycheck/internal/logger"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from the secrets directory at startup.
var loadedSecrets credentials.Secrets

// rootCmd is the base command for the copycheck CLI.
var rootCmd = &cobra.Command{
	Use:   "copycheck",
	Short: "Near-duplicate and plagiarism screening for student submissions",
	Long: `copycheck compares a submission against a corpus of earlier submissions
using TF-IDF cosine similarity, ranks the closest matches, and assigns a
risk tier. When lexical overlap is high enough, the top match is sent to a
language model (Gemini or Claude) for a semantic copied/paraphrased/different
judgment that replaces the headline score.

Run a one-off check with "check", extract text from PDFs and images with
"extract", or start the HTTP API with "serve".`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		log := logger.Setup(viper.GetString("env"), os.Stderr)
		slog.SetDefault(log)

		dir, _ := cmd.Flags().GetString("secrets-dir")
		s, err := credentials.Load(dir)
		if err != nil {
			return err
		}
		loadedSecrets = s
		if names := s.Names(); len(names) > 0 {
			slog.Debug("loaded secrets", "names", names)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./copycheck.yaml or ~/.config/copycheck/config.yaml)")
	pf.String("secrets-dir", ".secrets/", "directory of API key files")
	pf.String("env", "", "logging environment: local, development, test, production")
	pf.String("store", "", "report history database path")
	pf.String("provider", "", "semantic verification provider: gemini or claude")
	pf.String("model", "", "semantic verification model (default: provider's default)")

	bindFlag(pf.Lookup("env"), "env")
	bindFlag(pf.Lookup("store"), "store.path")
	bindFlag(pf.Lookup("provider"), "semantic.provider")
	bindFlag(pf.Lookup("model"), "semantic.model")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("copycheck")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "copycheck"))
		}
	}

	viper.SetEnvPrefix("COPYCHECK")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()
	setDefaults(viper.GetViper())

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
