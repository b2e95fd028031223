// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/copycheck/internal/convert"
	"github.com/pdiddy/copycheck/pkg/types"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Compare one submission against a corpus",
	Long: `Check scores a target text against every document in a corpus, lists the
closest matches, and classifies the risk. The target is given inline with
--text or as a file with --target (PDF, image, or plain text). The corpus is
a YAML or JSON list of {id, submissionId, text} entries (--corpus), a
directory of documents (--corpus-dir), or both.

The exit status reflects only usage and I/O errors, never the risk tier.`,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().String("target", "", "file containing the submission to check")
	checkCmd.Flags().String("text", "", "submission text to check")
	checkCmd.Flags().String("corpus", "", "YAML or JSON corpus file")
	checkCmd.Flags().String("corpus-dir", "", "directory of corpus documents, one per file")
	checkCmd.Flags().Bool("no-ai", false, "skip semantic verification")
	checkCmd.Flags().Bool("json", false, "print the result as JSON")
	checkCmd.Flags().Bool("save", false, "save the result to the report history")
	checkCmd.Flags().String("label", "", "label stored with a saved report")
	checkCmd.MarkFlagsMutuallyExclusive("target", "text")
	checkCmd.MarkFlagsOneRequired("corpus", "corpus-dir")

	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}
	if noAI, _ := cmd.Flags().GetBool("no-ai"); noAI {
		cfg.Semantic.Enabled = false
	}
	log := slog.Default()

	targetPath, _ := cmd.Flags().GetString("target")
	text, _ := cmd.Flags().GetString("text")
	corpusPath, _ := cmd.Flags().GetString("corpus")
	corpusDir, _ := cmd.Flags().GetString("corpus-dir")

	if targetPath == "" && text == "" {
		return fmt.Errorf("a submission is required: use --target FILE or --text STRING")
	}

	var extractor *convert.Dispatcher
	if targetPath != "" || corpusDir != "" {
		extractor = buildExtractor(cfg.Convert, log)
	}

	target := text
	if targetPath != "" {
		target, err = convert.ConvertFile(ctx, extractor, targetPath)
		if err != nil {
			return err
		}
	}

	var corpus []types.CorpusDocument
	if corpusPath != "" {
		docs, err := loadCorpusFile(corpusPath)
		if err != nil {
			return err
		}
		corpus = append(corpus, docs...)
	}
	if corpusDir != "" {
		docs, err := loadCorpusDir(ctx, extractor, corpusDir, os.Stderr)
		if err != nil {
			return err
		}
		corpus = append(corpus, docs...)
	}

	checker, err := buildChecker(cfg, log)
	if err != nil {
		return err
	}
	result := checker.Evaluate(ctx, target, corpus)

	reportID := ""
	if save, _ := cmd.Flags().GetBool("save"); save {
		st, err := openStore(cfg.Store)
		if err != nil {
			return err
		}
		defer st.Close()
		label, _ := cmd.Flags().GetString("label")
		rep, err := st.Save(ctx, label, result)
		if err != nil {
			return err
		}
		reportID = rep.ID
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatCheckOutput(os.Stdout, result, reportID, jsonOutput)
}

func formatCheckOutput(w io.Writer, result types.CheckResult, reportID string, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			types.CheckResult
			ReportID string `json:"report_id,omitempty"`
		}{result, reportID})
	}

	fmt.Fprintf(w, "Risk level:         %s\n", result.RiskLevel)
	fmt.Fprintf(w, "Highest similarity: %.2f%%\n", result.HighestSimilarity)
	if result.IsAIVerified && result.AIVerdict != nil {
		fmt.Fprintf(w, "AI verdict:         %s (%s)\n", result.AIVerdict.Verdict, result.AIVerdict.Reason)
	} else {
		fmt.Fprintln(w, "AI verdict:         not verified")
	}
	if reportID != "" {
		fmt.Fprintf(w, "Saved report:       %s\n", reportID)
	}

	if len(result.Matches) == 0 {
		fmt.Fprintln(w, "\nNo matches above the inclusion threshold.")
		return nil
	}

	fmt.Fprintf(w, "\n%-4s  %-16s  %-16s  %10s  %s\n", "Rank", "Student", "Submission", "Similarity", "Snippet")
	fmt.Fprintln(w, strings.Repeat("-", 100))
	for i, m := range result.Matches {
		fmt.Fprintf(w, "%-4d  %-16s  %-16s  %9.2f%%  %s\n",
			i+1, clip(m.StudentID, 16), clip(m.SubmissionID, 16), m.Similarity, clip(m.Snippet, 40))
	}
	return nil
}

// clip shortens s to n runes, marking truncation with "...".
func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}
