/*
Copyright © 2025 Applied Computing Research Labs
SPDX-License-Identifier: MIT
*/

package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var buf bytes.Buffer
	cmd := New()
	cmd.Writer = &buf

	err := cmd.Run(context.Background(), append([]string{name}, args...))
	return buf.String(), err
}

func TestGenerateDevDefaults(t *testing.T) {
	buildDir := t.TempDir()
	outDir := t.TempDir()

	out, err := runCLI(t, "generate", "--build-dir", buildDir, "--output", outDir)
	require.NoError(t, err)
	assert.Contains(t, out, "dev")

	data, err := os.ReadFile(filepath.Join(outDir, "simkube.k8s.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "PLACEHOLDER")

	_, err = os.Stat(filepath.Join(outDir, "dag.mermaid"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(outDir, "manifest.diff"))
	require.NoError(t, err)
}

func TestGenerateBuildDirFromEnv(t *testing.T) {
	buildDir := t.TempDir()
	outDir := t.TempDir()
	require.NoError(t, os.WriteFile(
		filepath.Join(buildDir, "sk-ctrl-image"),
		[]byte("localhost:5000/sk-ctrl:abc123\n"), 0o644))

	t.Setenv("BUILD_DIR", buildDir)

	_, err := runCLI(t, "generate", "--output", outDir)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(outDir, "simkube.k8s.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "localhost:5000/sk-ctrl:abc123")
}

func TestGenerateKustomize(t *testing.T) {
	outDir := t.TempDir()

	out, err := runCLI(t,
		"generate", "--kustomize", "--image-version", "2.5.1", "--output", outDir)
	require.NoError(t, err)
	assert.Contains(t, out, "kustomize")

	for _, overlay := range []string{"base", "prod", "sim"} {
		_, statErr := os.Stat(filepath.Join(outDir, overlay, "kustomization.yaml"))
		require.NoError(t, statErr, overlay)
	}
}

func TestGenerateKustomizeRequiresImageVersion(t *testing.T) {
	outDir := t.TempDir()

	_, err := runCLI(t, "generate", "--kustomize", "--output", outDir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "IMAGE_VERSION")

	entries, readErr := os.ReadDir(outDir)
	require.NoError(t, readErr)
	assert.Empty(t, entries)
}

func TestGenerateImageVersionFromEnv(t *testing.T) {
	outDir := t.TempDir()
	t.Setenv("IMAGE_VERSION", "3.0.0")

	_, err := runCLI(t, "generate", "--kustomize", "--output", outDir)
	require.NoError(t, err)

	entries, err := os.ReadDir(filepath.Join(outDir, "base"))
	require.NoError(t, err)

	var data []byte
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), "-sk-ctrl.yaml") {
			data, err = os.ReadFile(filepath.Join(outDir, "base", e.Name()))
			require.NoError(t, err)
		}
	}
	require.NotNil(t, data, "no sk-ctrl manifest in base overlay")
	assert.Contains(t, string(data), "quay.io/appliedcomputing/sk-ctrl:v3.0.0")
}

func TestGenerateChecksums(t *testing.T) {
	buildDir := t.TempDir()
	outDir := t.TempDir()

	_, err := runCLI(t,
		"generate", "--build-dir", buildDir, "--output", outDir, "--checksums")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(outDir, "checksums.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "simkube.k8s.yaml")
}

func TestGenerateBadLogLevel(t *testing.T) {
	buildDir := t.TempDir()
	outDir := t.TempDir()

	// unknown levels fall back to info rather than failing the run
	_, err := runCLI(t,
		"--log-level", "noisy",
		"generate", "--build-dir", buildDir, "--output", outDir)
	require.NoError(t, err)
}
