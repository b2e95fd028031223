// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"context"
	"fmt"
	"unicode/utf8"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// TextConverter accepts UTF-8 text as-is.
type TextConverter struct{}

// Convert strips a leading byte-order mark and rejects invalid UTF-8.
func (TextConverter) Convert(_ context.Context, data []byte, filename string) (string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%s: %w (not valid UTF-8)", filename, ErrUnsupported)
	}
	return string(data), nil
}
