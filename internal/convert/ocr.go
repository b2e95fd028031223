// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"context"
	"fmt"

	"github.com/pdiddy/copycheck/internal/container"
)

// OCRConverter recognizes text in images by piping them through a container
// image whose entrypoint is tesseract. It depends on a container.Runtime
// (docker or podman) injected at construction time.
type OCRConverter struct {
	runtime container.Runtime
	image   string
	lang    string
}

// NewOCRConverter creates a converter that runs image through rt. It
// verifies that the image exists locally before returning.
func NewOCRConverter(rt container.Runtime, image, lang string) (*OCRConverter, error) {
	if err := rt.ImageExists(image); err != nil {
		return nil, fmt.Errorf("OCR image not available in %s: %w", rt.Name(), err)
	}
	if lang == "" {
		lang = "eng"
	}
	return &OCRConverter{runtime: rt, image: image, lang: lang}, nil
}

// WithLang returns a copy of o that recognizes lang.
func (o *OCRConverter) WithLang(lang string) *OCRConverter {
	cp := *o
	cp.lang = lang
	return &cp
}

// Lang returns the recognition language.
func (o *OCRConverter) Lang() string { return o.lang }

// Convert pipes the image bytes through the OCR container and returns the
// recognized text.
func (o *OCRConverter) Convert(ctx context.Context, data []byte, filename string) (string, error) {
	var out bytes.Buffer
	args := []string{"stdin", "stdout", "-l", o.lang}
	if err := o.runtime.Run(ctx, o.image, args, bytes.NewReader(data), &out); err != nil {
		return "", fmt.Errorf("recognizing %s: %w", filename, err)
	}
	return out.String(), nil
}
