/*
Copyright © 2025 Applied Computing Research Labs
SPDX-License-Identifier: MIT
*/

// Package packager orchestrates one packaging run: enumerate the
// application registry, resolve images, select the manifest target, compile
// manifests, and write the artifacts for the chosen packaging mode.
//
// Runs are single-threaded, one-shot, and idempotent: identical environment
// and filesystem inputs produce byte-identical artifacts, and any fatal
// error aborts the run rather than leaving a partial manifest set behind.
package packager

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/acrlabs/skpack/pkg/assembly"
	apperrors "github.com/acrlabs/skpack/pkg/errors"
	"github.com/acrlabs/skpack/pkg/image"
	"github.com/acrlabs/skpack/pkg/registry"
	"github.com/acrlabs/skpack/pkg/target"
)

// Dev-mode artifact names.
const (
	diagramFileName = "dag.mermaid"
	diffFileName    = "manifest.diff"
	streamSuffix    = ".k8s.yaml"
)

// Packager runs manifest generation for a fixed configuration.
type Packager struct {
	cfg      *Config
	reg      *registry.Registry
	resolver *image.Resolver
}

// New creates a Packager over the default application registry.
func New(cfg *Config) (*Packager, error) {
	reg, err := registry.Default(cfg.Namespace())
	if err != nil {
		return nil, err
	}
	return NewWithRegistry(cfg, reg), nil
}

// NewWithRegistry creates a Packager over an explicit registry.
func NewWithRegistry(cfg *Config, reg *registry.Registry) *Packager {
	return &Packager{
		cfg: cfg,
		reg: reg,
		resolver: image.NewResolver(
			cfg.Mode(),
			cfg.BuildDir(),
			cfg.ImageVersion(),
			image.WithRegistryPrefix(cfg.RegistryPrefix()),
		),
	}
}

// Run executes one packaging run and returns its summary.
func (p *Packager) Run(ctx context.Context) (*Output, error) {
	start := time.Now()
	tgt := target.Select(p.cfg.Mode())

	output := &Output{
		RunID:     uuid.NewString(),
		Mode:      p.cfg.Mode(),
		Version:   p.cfg.Version(),
		OutputDir: p.cfg.OutputDir(),
	}

	slog.Info("starting packaging run",
		"run_id", output.RunID,
		"version", p.cfg.Version(),
		"mode", p.cfg.Mode(),
		"output_shape", tgt.OutputShape,
		"apps", p.reg.Len(),
		"output_dir", p.cfg.OutputDir(),
	)

	images, err := p.resolveImages(ctx)
	if err != nil {
		recordError("resolve")
		return nil, err
	}

	bundle, err := assembly.Compile(assembly.Input{
		Namespace: p.cfg.Namespace(),
		Apps:      p.reg.List(),
		Images:    images,
		Target:    tgt,
	})
	if err != nil {
		recordError("compile")
		return nil, err
	}

	if err := os.MkdirAll(p.cfg.OutputDir(), 0o755); err != nil {
		recordError("write")
		return nil, apperrors.Wrap(apperrors.ErrCodeInternal,
			"failed to create output directory", err)
	}

	results, err := p.write(bundle, tgt)
	if err != nil {
		recordError("write")
		return nil, err
	}
	for _, r := range results {
		output.add(r)
	}

	if p.cfg.IncludeChecksums() {
		sumResult := &Result{Type: "checksums"}
		var files []string
		for _, r := range results {
			files = append(files, r.Files...)
		}
		name, err := writeChecksums(p.cfg.OutputDir(), files)
		if err != nil {
			recordError("write")
			return nil, apperrors.Wrap(apperrors.ErrCodeInternal,
				"failed to write checksums", err)
		}
		sumResult.Files = []string{name}
		output.add(sumResult)
	}

	output.TotalDuration = time.Since(start)
	recordGenerate(output.TotalDuration.Seconds(), len(bundle.Docs))

	slog.Info("packaging run complete",
		"run_id", output.RunID,
		"files", output.TotalFiles,
		"size_bytes", output.TotalSize,
		"duration", output.TotalDuration.Round(time.Millisecond),
	)

	return output, nil
}

// resolveImages computes the image reference for every registered
// application. Pinned images bypass the resolver.
func (p *Packager) resolveImages(ctx context.Context) (map[string]string, error) {
	images := make(map[string]string, p.reg.Len())

	for _, spec := range p.reg.List() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if spec.Image != "" {
			images[spec.ID] = spec.Image
			continue
		}

		resolved, err := p.resolver.Resolve(spec.ID)
		if err != nil {
			return nil, err
		}
		images[spec.ID] = resolved.Reference

		slog.Debug("resolved image",
			"app", spec.ID,
			"reference", resolved.Reference,
			"source", resolved.Source,
		)
	}

	return images, nil
}

// write dispatches on the target's output shape.
func (p *Packager) write(bundle *assembly.Bundle, tgt target.Target) ([]*Result, error) {
	if tgt.OutputShape == target.ShapeKustomizeOverlays {
		apps := make(map[string]registry.ApplicationSpec, p.reg.Len())
		for _, spec := range p.reg.List() {
			apps[spec.ID] = spec
		}
		return p.writeKustomize(bundle, apps)
	}
	return p.writeGraphStream(bundle)
}

// writeGraphStream writes the single ordered manifest stream plus the two
// dev artifacts: the dependency diagram and the diff against the previous
// stream at the same path.
func (p *Packager) writeGraphStream(bundle *assembly.Bundle) ([]*Result, error) {
	result := &Result{Type: "graph-stream"}

	streamName := p.cfg.Namespace() + streamSuffix
	streamPath := filepath.Join(p.cfg.OutputDir(), streamName)

	previous, err := os.ReadFile(streamPath)
	if err != nil && !os.IsNotExist(err) {
		return nil, apperrors.Wrap(apperrors.ErrCodeInternal,
			"failed to read previous manifest stream", err)
	}

	stream := bundle.Stream()
	if err := p.writeFile(streamName, stream, result); err != nil {
		return nil, err
	}

	diagram := assembly.Diagram(p.reg.List())
	if err := p.writeFile(diagramFileName, []byte(diagram), result); err != nil {
		return nil, err
	}

	diff := assembly.Diff(string(previous), string(stream))
	if err := p.writeFile(diffFileName, []byte(diff), result); err != nil {
		return nil, err
	}

	return []*Result{result}, nil
}

// writeFile writes one artifact relative to the output directory and folds
// it into the result.
func (p *Packager) writeFile(rel string, data []byte, result *Result) error {
	path := filepath.Join(p.cfg.OutputDir(), rel)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return apperrors.Wrap(apperrors.ErrCodeInternal,
			fmt.Sprintf("failed to write %s", rel), err)
	}

	result.Files = append(result.Files, rel)
	result.Size += int64(len(data))

	slog.Debug("wrote artifact", "path", path, "size_bytes", len(data))
	return nil
}
