// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package credentials resolves API keys for the semantic verification
// service and rotates among them. Keys come from a directory of plain-text
// files (the filename is the key name, the trimmed contents the value) and
// from environment variables.
//
// Recognized key files: gemini-api-keys, gemini-api-key, anthropic-api-keys and
// anthropic-api-key.
package credentials

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Secrets maps a key-file name to its trimmed contents.
type Secrets map[string]string

// Load reads all files in dir and returns a map of filename to trimmed contents.
// A missing directory is not an error; Load returns an empty map.
// Unreadable files are logged and skipped.
func Load(dir string) (Secrets, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return Secrets{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(Secrets)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			slog.Warn("could not read secret", "name", name, "err", err)
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}

// Names returns the loaded key names without their values.
func (s Secrets) Names() []string {
	names := make([]string, 0, len(s))
	for k := range s {
		names = append(names, k)
	}
	return names
}
