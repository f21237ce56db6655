/*
Copyright © 2025 Applied Computing Research Labs
SPDX-License-Identifier: MIT
*/

package packager

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/acrlabs/skpack/pkg/errors"
	"github.com/acrlabs/skpack/pkg/image"
	"github.com/acrlabs/skpack/pkg/target"
)

func TestNewConfigDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, target.ModeDevGraph, cfg.Mode())
	assert.Equal(t, ".", cfg.OutputDir())
	assert.Equal(t, DefaultNamespace, cfg.Namespace())
	assert.Equal(t, image.DefaultRegistryPrefix, cfg.RegistryPrefix())
	assert.False(t, cfg.IncludeChecksums())
}

func TestNewConfigOptions(t *testing.T) {
	t.Parallel()

	cfg, err := NewConfig(
		WithMode(target.ModeReleaseKustomize),
		WithBuildDir("/tmp/build"),
		WithOutputDir("/tmp/out"),
		WithNamespace("sandbox"),
		WithImageVersion("2.0.0"),
		WithRegistryPrefix("registry.example.com/sim"),
		WithChecksums(true),
		WithVersion("v0.3.0"),
	)
	require.NoError(t, err)

	assert.Equal(t, target.ModeReleaseKustomize, cfg.Mode())
	assert.Equal(t, "/tmp/build", cfg.BuildDir())
	assert.Equal(t, "/tmp/out", cfg.OutputDir())
	assert.Equal(t, "sandbox", cfg.Namespace())
	assert.Equal(t, "2.0.0", cfg.ImageVersion())
	assert.Equal(t, "registry.example.com/sim", cfg.RegistryPrefix())
	assert.True(t, cfg.IncludeChecksums())
	assert.Equal(t, "v0.3.0", cfg.Version())
}

func TestNewConfigReleaseRequiresVersion(t *testing.T) {
	t.Parallel()

	_, err := NewConfig(WithMode(target.ModeReleaseKustomize))

	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeMissingConfig, apperrors.CodeOf(err))
	assert.Contains(t, err.Error(), image.VersionEnvVar)
}

func TestNewConfigRejectsBogusMode(t *testing.T) {
	t.Parallel()

	_, err := NewConfig(WithMode(target.PackagingMode("helm")))
	require.Error(t, err)
}

func TestOutputSummary(t *testing.T) {
	t.Parallel()

	out := &Output{OutputDir: "./out", Mode: target.ModeDevGraph}
	out.add(&Result{Type: "graph-stream", Files: []string{"a", "b"}, Size: 2048})

	assert.Equal(t, 2, out.TotalFiles)
	assert.Contains(t, out.Summary(), "2 dev files")
	assert.Contains(t, out.Summary(), "2.0 KB")
}
