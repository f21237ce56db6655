/*
Copyright © 2025 Applied Computing Research Labs
SPDX-License-Identifier: MIT
*/

package packager

import (
	"fmt"
	"time"

	"github.com/acrlabs/skpack/pkg/target"
)

// Result describes one group of files written by a packaging run.
type Result struct {
	// Type identifies what was written ("graph-stream", "overlay-base",
	// "overlay-prod", "overlay-sim", "checksums").
	Type string `json:"type" yaml:"type"`

	// Files are the written paths, relative to the output directory.
	Files []string `json:"files" yaml:"files"`

	// Size is the total bytes written.
	Size int64 `json:"size_bytes" yaml:"size_bytes"`
}

// Output is the aggregated summary of one packaging run. It exists in
// memory only; nothing volatile in it (run id, durations) is ever written
// to the generated artifacts, which stay byte-stable across identical runs.
type Output struct {
	// RunID uniquely identifies this run in logs.
	RunID string `json:"run_id" yaml:"run_id"`

	// Mode is the packaging mode the run used.
	Mode target.PackagingMode `json:"mode" yaml:"mode"`

	// Version is the skpack build version that produced the run.
	Version string `json:"version,omitempty" yaml:"version,omitempty"`

	// Results are the per-group write results.
	Results []*Result `json:"results" yaml:"results"`

	// TotalFiles is the count of written files.
	TotalFiles int `json:"total_files" yaml:"total_files"`

	// TotalSize is the total bytes written.
	TotalSize int64 `json:"total_size_bytes" yaml:"total_size_bytes"`

	// TotalDuration is the wall-clock duration of the run.
	TotalDuration time.Duration `json:"total_duration" yaml:"total_duration"`

	// OutputDir is where artifacts were written.
	OutputDir string `json:"output_dir" yaml:"output_dir"`
}

// add folds one result into the totals.
func (o *Output) add(r *Result) {
	o.Results = append(o.Results, r)
	o.TotalFiles += len(r.Files)
	o.TotalSize += r.Size
}

// Summary returns a human-readable one-line summary.
func (o *Output) Summary() string {
	return fmt.Sprintf("Generated %d %s files (%s) in %v under %s.",
		o.TotalFiles,
		o.Mode,
		formatBytes(o.TotalSize),
		o.TotalDuration.Round(time.Millisecond),
		o.OutputDir,
	)
}

// formatBytes formats bytes into human-readable form.
func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
