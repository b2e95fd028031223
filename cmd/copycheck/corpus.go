// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/copycheck/internal/convert"
	"github.com/pdiddy/copycheck/pkg/types"
)

// loadCorpusFile reads a YAML or JSON list of {id, submissionId, text}.
func loadCorpusFile(path string) ([]types.CorpusDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading corpus %s: %w", path, err)
	}

	var docs []types.CorpusDocument
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(data, &docs)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &docs)
	default:
		return nil, fmt.Errorf("corpus %s: unsupported format (use .yaml, .yml or .json)", path)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing corpus %s: %w", path, err)
	}

	for i, d := range docs {
		if d.ID == "" || d.SubmissionID == "" {
			return nil, fmt.Errorf("corpus %s: entry %d: id and submissionId are required", path, i)
		}
	}
	return docs, nil
}

// loadCorpusDir converts every regular file in dir into a corpus document.
// The file's base name serves as both student and submission ID.
func loadCorpusDir(ctx context.Context, c convert.Converter, dir string, w io.Writer) ([]types.CorpusDocument, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading corpus directory %s: %w", dir, err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)

	converted, _ := convert.ConvertBatch(ctx, c, paths, w)
	docs := make([]types.CorpusDocument, len(converted))
	for i, d := range converted {
		docs[i] = types.CorpusDocument{ID: d.Name, SubmissionID: d.Name, Text: d.Text}
	}
	return docs, nil
}
