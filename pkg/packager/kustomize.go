/*
Copyright © 2025 Applied Computing Research Labs
SPDX-License-Identifier: MIT
*/

package packager

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/acrlabs/skpack/pkg/assembly"
	apperrors "github.com/acrlabs/skpack/pkg/errors"
	"github.com/acrlabs/skpack/pkg/registry"
)

// Overlay directory names for release packaging.
const (
	overlayBase = "base"
	overlayProd = "prod"
	overlaySim  = "sim"
)

const kustomizationFileName = "kustomization.yaml"

// kustomization is the subset of the kustomize file format we emit.
type kustomization struct {
	APIVersion   string            `yaml:"apiVersion"`
	Kind         string            `yaml:"kind"`
	Resources    []string          `yaml:"resources"`
	CommonLabels map[string]string `yaml:"commonLabels,omitempty"`
}

func newKustomization(resources []string, labels map[string]string) kustomization {
	return kustomization{
		APIVersion:   "kustomize.config.k8s.io/v1beta1",
		Kind:         "Kustomization",
		Resources:    resources,
		CommonLabels: labels,
	}
}

// writeKustomize lays out the release overlay trees: a shared base holding
// the numbered per-application manifests, and prod/sim overlays referencing
// it. Sim-only workloads land in the sim overlay instead of the base.
func (p *Packager) writeKustomize(bundle *assembly.Bundle, apps map[string]registry.ApplicationSpec) ([]*Result, error) {
	dir := p.cfg.OutputDir()
	for _, sub := range []string{overlayBase, overlayProd, overlaySim} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0o755); err != nil {
			return nil, apperrors.Wrap(apperrors.ErrCodeInternal,
				fmt.Sprintf("failed to create overlay directory %s", sub), err)
		}
	}

	baseResult := &Result{Type: "overlay-" + overlayBase}
	prodResult := &Result{Type: "overlay-" + overlayProd}
	simResult := &Result{Type: "overlay-" + overlaySim}

	var baseResources, simResources []string

	// Manifest files keep their dependency-order number so the apply order
	// stays obvious after the move into overlay directories.
	for i, appID := range bundle.Order {
		name := fmt.Sprintf("%04d-%s.yaml", i, appID)

		sub, result, resources := overlayBase, baseResult, &baseResources
		if apps[appID].SimOnly {
			sub, result, resources = overlaySim, simResult, &simResources
		}

		rel := filepath.Join(sub, name)
		if err := p.writeFile(rel, bundle.StreamFor(appID), result); err != nil {
			return nil, err
		}
		*resources = append(*resources, name)
	}

	sharedBase := filepath.Join("..", overlayBase)
	overlays := []struct {
		sub    string
		result *Result
		kust   kustomization
	}{
		{overlayBase, baseResult, newKustomization(baseResources, nil)},
		{overlayProd, prodResult, newKustomization(
			[]string{sharedBase}, map[string]string{"env": overlayProd})},
		{overlaySim, simResult, newKustomization(
			append([]string{sharedBase}, simResources...), map[string]string{"env": overlaySim})},
	}

	for _, o := range overlays {
		data, err := yaml.Marshal(o.kust)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrCodeInternal,
				fmt.Sprintf("failed to render kustomization for %s", o.sub), err)
		}
		if err := p.writeFile(filepath.Join(o.sub, kustomizationFileName), data, o.result); err != nil {
			return nil, err
		}
	}

	return []*Result{baseResult, prodResult, simResult}, nil
}
