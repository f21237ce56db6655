/*
Copyright © 2025 Applied Computing Research Labs
SPDX-License-Identifier: MIT
*/

package image

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/acrlabs/skpack/pkg/errors"
	"github.com/acrlabs/skpack/pkg/target"
)

func TestResolveDevFromFile(t *testing.T) {
	t.Parallel()

	buildDir := t.TempDir()
	path := filepath.Join(buildDir, "sk-cloudprov-image")
	require.NoError(t, os.WriteFile(path, []byte("localhost:5000/sk-cloudprov:abc123\n"), 0o644))

	r := NewResolver(target.ModeDevGraph, buildDir, "")
	got, err := r.Resolve("sk-cloudprov")

	require.NoError(t, err)
	assert.Equal(t, "localhost:5000/sk-cloudprov:abc123", got.Reference)
	assert.Equal(t, "file", got.Source)
}

func TestResolveDevMissingFileUsesPlaceholder(t *testing.T) {
	t.Parallel()

	r := NewResolver(target.ModeDevGraph, t.TempDir(), "")
	got, err := r.Resolve("sk-vnode")

	require.NoError(t, err)
	assert.Equal(t, Placeholder, got.Reference)
	assert.Equal(t, "placeholder", got.Source)
}

func TestResolveDevReadErrorIsFatal(t *testing.T) {
	t.Parallel()

	// A directory at the image-file path fails the read with something
	// other than not-found; that must propagate, not default.
	buildDir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(buildDir, "sk-tracer-image"), 0o755))

	r := NewResolver(target.ModeDevGraph, buildDir, "")
	_, err := r.Resolve("sk-tracer")

	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeInternal, apperrors.CodeOf(err))
}

func TestResolveRelease(t *testing.T) {
	t.Parallel()

	r := NewResolver(target.ModeReleaseKustomize, "", "1.2.3")
	got, err := r.Resolve("sk-ctrl")

	require.NoError(t, err)
	assert.Equal(t, DefaultRegistryPrefix+"/sk-ctrl:v1.2.3", got.Reference)
	assert.Equal(t, "registry", got.Source)
}

func TestResolveReleaseMissingVersion(t *testing.T) {
	t.Parallel()

	r := NewResolver(target.ModeReleaseKustomize, "", "")
	_, err := r.Resolve("sk-ctrl")

	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeMissingConfig, apperrors.CodeOf(err))
	assert.Contains(t, err.Error(), VersionEnvVar)
}

func TestResolveReleaseCustomPrefix(t *testing.T) {
	t.Parallel()

	r := NewResolver(target.ModeReleaseKustomize, "", "0.9.0",
		WithRegistryPrefix("registry.example.com/sim/"))
	got, err := r.Resolve("sk-tracer")

	require.NoError(t, err)
	assert.Equal(t, "registry.example.com/sim/sk-tracer:v0.9.0", got.Reference)
}

func TestResolveReleaseInvalidReference(t *testing.T) {
	t.Parallel()

	r := NewResolver(target.ModeReleaseKustomize, "", "not a version")
	_, err := r.Resolve("sk-ctrl")

	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeInvalidRequest, apperrors.CodeOf(err))
}
