// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/copycheck/pkg/types"
)

// ExportYAML writes every report matching opts.RiskLevel to w as a YAML
// list, newest first. opts.Limit is ignored.
func (s *Store) ExportYAML(ctx context.Context, w io.Writer, opts ListOptions) error {
	reports, err := s.exportReports(ctx, opts)
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(reports); err != nil {
		return fmt.Errorf("encoding YAML: %w", err)
	}
	return enc.Close()
}

// ExportJSON writes the same selection as ExportYAML as an indented JSON array.
func (s *Store) ExportJSON(ctx context.Context, w io.Writer, opts ListOptions) error {
	reports, err := s.exportReports(ctx, opts)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(reports); err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	return nil
}

func (s *Store) exportReports(ctx context.Context, opts ListOptions) ([]types.Report, error) {
	reports, err := s.query(ctx, opts.RiskLevel, 0)
	if err != nil {
		return nil, fmt.Errorf("querying for export: %w", err)
	}
	return reports, nil
}
