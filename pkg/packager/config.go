/*
Copyright © 2025 Applied Computing Research Labs
SPDX-License-Identifier: MIT
*/

package packager

import (
	"fmt"

	apperrors "github.com/acrlabs/skpack/pkg/errors"
	"github.com/acrlabs/skpack/pkg/image"
	"github.com/acrlabs/skpack/pkg/target"
)

// DefaultNamespace is the namespace platform components deploy into.
const DefaultNamespace = "simkube"

// Config provides immutable configuration for one packaging run. All
// environment values are read at the CLI boundary and passed in here; no
// component below this point reads the environment (LOG_LEVEL excepted, at
// logger setup).
type Config struct {
	// mode selects the packaging mode for the run.
	mode target.PackagingMode

	// buildDir is where dev builds drop per-application image files.
	buildDir string

	// outputDir is where generated artifacts are written.
	outputDir string

	// namespace is the deployment namespace for all components.
	namespace string

	// imageVersion is the release image version (IMAGE_VERSION).
	imageVersion string

	// registryPrefix is the release image registry prefix.
	registryPrefix string

	// includeChecksums adds a checksums.txt alongside generated artifacts.
	includeChecksums bool

	// version is the skpack build version, for logs and summaries.
	version string
}

// ConfigOption configures a Config.
type ConfigOption func(*Config)

// WithMode sets the packaging mode.
func WithMode(mode target.PackagingMode) ConfigOption {
	return func(c *Config) { c.mode = mode }
}

// WithBuildDir sets the build directory consulted in dev mode.
func WithBuildDir(dir string) ConfigOption {
	return func(c *Config) { c.buildDir = dir }
}

// WithOutputDir sets the artifact output directory.
func WithOutputDir(dir string) ConfigOption {
	return func(c *Config) {
		if dir != "" {
			c.outputDir = dir
		}
	}
}

// WithNamespace sets the deployment namespace.
func WithNamespace(ns string) ConfigOption {
	return func(c *Config) {
		if ns != "" {
			c.namespace = ns
		}
	}
}

// WithImageVersion sets the release image version.
func WithImageVersion(v string) ConfigOption {
	return func(c *Config) { c.imageVersion = v }
}

// WithRegistryPrefix overrides the release registry prefix.
func WithRegistryPrefix(prefix string) ConfigOption {
	return func(c *Config) {
		if prefix != "" {
			c.registryPrefix = prefix
		}
	}
}

// WithChecksums toggles checksums.txt generation.
func WithChecksums(enabled bool) ConfigOption {
	return func(c *Config) { c.includeChecksums = enabled }
}

// WithVersion records the skpack build version.
func WithVersion(v string) ConfigOption {
	return func(c *Config) { c.version = v }
}

// NewConfig builds and validates a Config. Release mode without an image
// version fails here, before any work happens.
func NewConfig(opts ...ConfigOption) (*Config, error) {
	c := &Config{
		mode:           target.ModeDevGraph,
		outputDir:      ".",
		namespace:      DefaultNamespace,
		registryPrefix: image.DefaultRegistryPrefix,
	}
	for _, opt := range opts {
		opt(c)
	}

	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) validate() error {
	if _, err := target.ParseMode(string(c.mode)); err != nil {
		return apperrors.Wrap(apperrors.ErrCodeInvalidRequest, "invalid packaging mode", err)
	}
	if c.namespace == "" {
		return apperrors.New(apperrors.ErrCodeInvalidRequest, "namespace cannot be empty")
	}
	if c.mode == target.ModeReleaseKustomize && c.imageVersion == "" {
		return apperrors.New(apperrors.ErrCodeMissingConfig,
			fmt.Sprintf("release packaging requires the %s environment variable", image.VersionEnvVar))
	}
	return nil
}

// Mode returns the packaging mode.
func (c *Config) Mode() target.PackagingMode { return c.mode }

// BuildDir returns the build directory.
func (c *Config) BuildDir() string { return c.buildDir }

// OutputDir returns the output directory.
func (c *Config) OutputDir() string { return c.outputDir }

// Namespace returns the deployment namespace.
func (c *Config) Namespace() string { return c.namespace }

// ImageVersion returns the release image version.
func (c *Config) ImageVersion() string { return c.imageVersion }

// RegistryPrefix returns the release registry prefix.
func (c *Config) RegistryPrefix() string { return c.registryPrefix }

// IncludeChecksums reports whether a checksums file is generated.
func (c *Config) IncludeChecksums() bool { return c.includeChecksums }

// Version returns the skpack build version.
func (c *Config) Version() string { return c.version }
