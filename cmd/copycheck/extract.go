// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/copycheck/internal/convert"
)

var extractCmd = &cobra.Command{
	Use:   "extract FILE",
	Short: "Extract plain text from a PDF, image, or text file",
	Long: `Extract prints the plain text of a document. PDFs are read from their text
layer with one "--- Page N ---" header per page. Images are recognized with
OCR through a tesseract container run by docker or podman (see
convert.ocr_image). Plain text files are passed through.`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().String("lang", "", "OCR language code (default: convert.ocr_lang)")
	bindFlag(extractCmd.Flags().Lookup("lang"), "convert.ocr_lang")

	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}

	extractor := buildExtractor(cfg.Convert, slog.Default()).WithPageHeaders()
	text, err := convert.ConvertFile(ctx, extractor, args[0])
	if err != nil {
		return err
	}
	fmt.Println(text)
	return nil
}
