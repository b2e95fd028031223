// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Report is a persisted CheckResult with identifying metadata.
type Report struct {
	ID        string    `json:"id" yaml:"id"`
	Label     string    `json:"label,omitempty" yaml:"label,omitempty"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`

	CheckResult `yaml:",inline"`
}
