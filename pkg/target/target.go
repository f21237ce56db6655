/*
Copyright © 2025 Applied Computing Research Labs
SPDX-License-Identifier: MIT
*/

// Package target maps a packaging mode to the output shape and security
// posture of a generation run. Selection happens exactly once per invocation
// and is never re-evaluated.
package target

import "fmt"

// PackagingMode identifies how generated manifests are packaged.
type PackagingMode string

const (
	// ModeDevGraph emits a single dependency-ordered manifest stream plus a
	// dependency diagram and a manifest diff. Intended for local kind
	// clusters during development.
	ModeDevGraph PackagingMode = "dev"

	// ModeReleaseKustomize emits base/prod/sim kustomize overlay trees for
	// release packaging.
	ModeReleaseKustomize PackagingMode = "kustomize"
)

// ParseMode converts a string to a PackagingMode.
func ParseMode(s string) (PackagingMode, error) {
	switch s {
	case string(ModeDevGraph):
		return ModeDevGraph, nil
	case string(ModeReleaseKustomize):
		return ModeReleaseKustomize, nil
	default:
		return "", fmt.Errorf("unknown packaging mode: %s (supported: %v)", s, SupportedModes())
	}
}

// SupportedModes returns all packaging modes.
func SupportedModes() []PackagingMode {
	return []PackagingMode{ModeDevGraph, ModeReleaseKustomize}
}

// OutputShape identifies the filesystem layout of generated output.
type OutputShape string

const (
	// ShapeGraphStream is a single ordered YAML stream plus diagram and
	// diff artifacts.
	ShapeGraphStream OutputShape = "graph-stream"

	// ShapeKustomizeOverlays is a set of per-environment overlay directory
	// trees sharing one base.
	ShapeKustomizeOverlays OutputShape = "kustomize-overlays"
)

// Target describes the output shape and container posture for one run.
type Target struct {
	// OutputShape selects the filesystem layout.
	OutputShape OutputShape

	// DebugCapabilities controls whether containers receive the elevated
	// debug capability (SYS_PTRACE). Only development output gets it.
	DebugCapabilities bool

	// ApplyNodeSelectors controls whether kind-cluster node selectors are
	// stamped onto workloads. Release manifests are not guaranteed to
	// target a local multi-node test cluster, so they never get them.
	ApplyNodeSelectors bool
}

// Select returns the Target for the given mode.
func Select(mode PackagingMode) Target {
	if mode == ModeReleaseKustomize {
		return Target{
			OutputShape:        ShapeKustomizeOverlays,
			DebugCapabilities:  false,
			ApplyNodeSelectors: false,
		}
	}
	return Target{
		OutputShape:        ShapeGraphStream,
		DebugCapabilities:  true,
		ApplyNodeSelectors: true,
	}
}
