// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup(t *testing.T) {
	tests := []struct {
		env     string
		json    bool
		debugOn bool
	}{
		{EnvLocal, false, true},
		{"", false, true},
		{EnvDev, true, true},
		{EnvTest, true, true},
		{EnvProd, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			var buf bytes.Buffer
			log := Setup(tt.env, &buf)

			assert.Equal(t, tt.debugOn, log.Enabled(context.Background(), slog.LevelDebug))
			log.Info("hello", "k", "v")

			line := strings.TrimSpace(buf.String())
			if tt.json {
				var rec map[string]any
				require.NoError(t, json.Unmarshal([]byte(line), &rec))
				assert.Equal(t, "hello", rec["msg"])
				assert.Equal(t, "v", rec["k"])
			} else {
				assert.Contains(t, line, "msg=hello")
				assert.Contains(t, line, "k=v")
			}
		})
	}
}
