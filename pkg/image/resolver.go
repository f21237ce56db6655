/*
Copyright © 2025 Applied Computing Research Labs
SPDX-License-Identifier: MIT
*/

// Package image resolves container image references for registered
// applications. Development builds read per-application image files written
// by the build pipeline; release builds compose versioned registry paths.
package image

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/distribution/reference"

	apperrors "github.com/acrlabs/skpack/pkg/errors"
	"github.com/acrlabs/skpack/pkg/target"
)

const (
	// Placeholder is substituted when a per-application image file does not
	// exist yet. Partial builds still produce a syntactically valid manifest
	// set; the placeholder is rejected by the cluster rather than by us.
	Placeholder = "PLACEHOLDER"

	// DefaultRegistryPrefix is the release registry all versioned images
	// are published under.
	DefaultRegistryPrefix = "quay.io/appliedcomputing"

	// VersionEnvVar names the environment variable the release version is
	// read from at the CLI boundary. Referenced here only for error text.
	VersionEnvVar = "IMAGE_VERSION"
)

// ResolvedImage is the outcome of image resolution for one application.
// Computed once per packaging run and never mutated afterward.
type ResolvedImage struct {
	// Reference is the image reference to stamp into the manifest.
	Reference string

	// Source records where the reference came from: "file", "registry", or
	// "placeholder".
	Source string
}

// Resolver determines container image references for application ids.
// All inputs are fixed at construction; Resolve performs no environment
// reads of its own.
type Resolver struct {
	buildDir       string
	registryPrefix string
	version        string
	mode           target.PackagingMode
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithRegistryPrefix overrides the release registry prefix.
func WithRegistryPrefix(prefix string) Option {
	return func(r *Resolver) {
		if prefix != "" {
			r.registryPrefix = strings.TrimSuffix(prefix, "/")
		}
	}
}

// NewResolver creates a Resolver for the given mode. buildDir is consulted
// only in dev mode; version only in release mode.
func NewResolver(mode target.PackagingMode, buildDir, version string, opts ...Option) *Resolver {
	r := &Resolver{
		buildDir:       buildDir,
		registryPrefix: DefaultRegistryPrefix,
		version:        version,
		mode:           mode,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the image reference for the given application id.
//
// Release mode composes <prefix>/<appID>:v<version> and fails when no
// version was provided, naming the offending environment variable. Dev mode
// reads {buildDir}/{appID}-image; a missing file yields Placeholder, while
// any other read error is fatal.
func (r *Resolver) Resolve(appID string) (ResolvedImage, error) {
	if r.mode == target.ModeReleaseKustomize {
		return r.resolveRelease(appID)
	}
	return r.resolveDev(appID)
}

func (r *Resolver) resolveRelease(appID string) (ResolvedImage, error) {
	if r.version == "" {
		return ResolvedImage{}, apperrors.New(apperrors.ErrCodeMissingConfig,
			fmt.Sprintf("release builds require the %s environment variable", VersionEnvVar))
	}

	ref := fmt.Sprintf("%s/%s:v%s", r.registryPrefix, appID, r.version)
	if _, err := reference.ParseNormalizedNamed(ref); err != nil {
		return ResolvedImage{}, apperrors.Wrap(apperrors.ErrCodeInvalidRequest,
			fmt.Sprintf("composed image reference %q is not valid", ref), err)
	}

	return ResolvedImage{Reference: ref, Source: "registry"}, nil
}

func (r *Resolver) resolveDev(appID string) (ResolvedImage, error) {
	path := filepath.Join(r.buildDir, appID+"-image")

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return ResolvedImage{Reference: Placeholder, Source: "placeholder"}, nil
		}
		// Anything below not-found (permissions, EISDIR) is a broken build
		// directory, not an incremental build.
		return ResolvedImage{}, apperrors.Wrap(apperrors.ErrCodeInternal,
			fmt.Sprintf("failed to read image file for %s", appID), err)
	}

	return ResolvedImage{Reference: strings.TrimSpace(string(data)), Source: "file"}, nil
}
