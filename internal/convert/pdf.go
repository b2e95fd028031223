// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// errNoText is returned when a PDF has no extractable text layer, typically
// a scanned document.
var errNoText = errors.New("no extractable text found in pdf")

// PDFConverter reads the text layer of a PDF.
type PDFConverter struct {
	// PageHeaders puts a "--- Page N ---" line before each page. Leave it
	// off for text that will be scored, since the header words would be
	// shared by every document.
	PageHeaders bool
}

// Convert extracts each page's plain text. Pages that are empty or fail to
// decode are skipped.
func (c PDFConverter) Convert(ctx context.Context, data []byte, filename string) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("opening pdf %s: %w", filename, err)
	}

	pages := make([]string, r.NumPage())
	for i := 1; i <= r.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		content, err := p.GetPlainText(nil)
		if err != nil {
			continue
		}
		pages[i-1] = content
	}

	text := joinPages(pages, c.PageHeaders)
	if text == "" {
		return "", fmt.Errorf("%s: %w", filename, errNoText)
	}
	return text, nil
}

// joinPages concatenates non-blank pages. With headers, each page is
// numbered by its original position.
func joinPages(pages []string, headers bool) string {
	var b strings.Builder
	for i, p := range pages {
		if strings.TrimSpace(p) == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		if headers {
			fmt.Fprintf(&b, "--- Page %d ---\n", i+1)
		}
		b.WriteString(p)
	}
	return b.String()
}
