// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/copycheck/internal/store"
	"github.com/pdiddy/copycheck/pkg/types"
)

var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "Inspect the saved report history (list, show, export, delete)",
	Long: `Reports manages the local SQLite history of checks saved with
"check --save" or the API's "save" field.`,
}

// --- list subcommand ---

var reportsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved reports, newest first",
	RunE:  runReportsList,
}

func runReportsList(cmd *cobra.Command, args []string) error {
	opts, err := listOptsFromFlags(cmd)
	if err != nil {
		return err
	}
	st, err := reportStore()
	if err != nil {
		return err
	}
	defer st.Close()

	reports, err := st.List(context.Background(), opts)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatReportList(os.Stdout, reports, jsonOutput)
}

func formatReportList(w io.Writer, reports []types.Report, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(reports)
	}

	if len(reports) == 0 {
		fmt.Fprintln(w, "No reports found.")
		return nil
	}

	fmt.Fprintf(w, "%-36s  %-20s  %-10s  %10s  %-3s  %s\n",
		"ID", "Created", "Risk", "Similarity", "AI", "Label")
	fmt.Fprintln(w, strings.Repeat("-", 110))
	for _, r := range reports {
		ai := "no"
		if r.IsAIVerified {
			ai = "yes"
		}
		fmt.Fprintf(w, "%-36s  %-20s  %-10s  %9.2f%%  %-3s  %s\n",
			r.ID, r.CreatedAt.Format("2006-01-02 15:04:05"), r.RiskLevel,
			r.HighestSimilarity, ai, clip(r.Label, 30))
	}
	fmt.Fprintf(w, "\n%d reports\n", len(reports))
	return nil
}

// --- show subcommand ---

var reportsShowCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Show one saved report",
	Args:  cobra.ExactArgs(1),
	RunE:  runReportsShow,
}

func runReportsShow(cmd *cobra.Command, args []string) error {
	st, err := reportStore()
	if err != nil {
		return err
	}
	defer st.Close()

	rep, err := st.Get(context.Background(), args[0])
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	}

	fmt.Printf("Report:             %s\n", rep.ID)
	if rep.Label != "" {
		fmt.Printf("Label:              %s\n", rep.Label)
	}
	fmt.Printf("Created:            %s\n", rep.CreatedAt.Format("2006-01-02 15:04:05 MST"))
	return formatCheckOutput(os.Stdout, rep.CheckResult, "", false)
}

// --- export subcommand ---

var reportsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export saved reports to YAML or JSON on stdout",
	RunE:  runReportsExport,
}

func runReportsExport(cmd *cobra.Command, args []string) error {
	opts, err := listOptsFromFlags(cmd)
	if err != nil {
		return err
	}
	st, err := reportStore()
	if err != nil {
		return err
	}
	defer st.Close()

	format, _ := cmd.Flags().GetString("format")
	switch format {
	case "yaml", "":
		return st.ExportYAML(context.Background(), os.Stdout, opts)
	case "json":
		return st.ExportJSON(context.Background(), os.Stdout, opts)
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}
}

// --- delete subcommand ---

var reportsDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete one saved report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := reportStore()
		if err != nil {
			return err
		}
		defer st.Close()
		if err := st.Delete(context.Background(), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "deleted %s\n", args[0])
		return nil
	},
}

// --- shared helpers ---

func reportStore() (*store.Store, error) {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return nil, err
	}
	return openStore(cfg.Store)
}

func listOptsFromFlags(cmd *cobra.Command) (store.ListOptions, error) {
	var opts store.ListOptions
	if v, _ := cmd.Flags().GetString("risk"); v != "" {
		level, ok := types.ParseRiskLevel(v)
		if !ok {
			return opts, fmt.Errorf("unknown risk level %q: use none, safe, low, high or error", v)
		}
		opts.RiskLevel = level
	}
	if cmd.Flags().Lookup("limit") != nil {
		opts.Limit, _ = cmd.Flags().GetInt("limit")
	}
	return opts, nil
}

func init() {
	reportsListCmd.Flags().String("risk", "", "filter by risk level (none, safe, low, high, error)")
	reportsListCmd.Flags().Int("limit", 0, "maximum reports (default: store.max_results)")
	reportsListCmd.Flags().Bool("json", false, "print reports as JSON")

	reportsShowCmd.Flags().Bool("json", false, "print the report as JSON")

	reportsExportCmd.Flags().String("risk", "", "filter by risk level")
	reportsExportCmd.Flags().String("format", "yaml", "output format: yaml or json")

	reportsCmd.AddCommand(reportsListCmd)
	reportsCmd.AddCommand(reportsShowCmd)
	reportsCmd.AddCommand(reportsExportCmd)
	reportsCmd.AddCommand(reportsDeleteCmd)
	rootCmd.AddCommand(reportsCmd)
}
