/*
Copyright © 2025 Applied Computing Research Labs
SPDX-License-Identifier: MIT
*/

// Package assembly turns application specs into Kubernetes manifest
// documents. It owns all object-shape knowledge (Deployments, Services,
// ConfigMaps, RBAC) and the dependency ordering of the emitted stream; it
// never touches the filesystem or the environment.
package assembly

import (
	"bytes"
	"fmt"

	"sigs.k8s.io/yaml"

	apperrors "github.com/acrlabs/skpack/pkg/errors"
	"github.com/acrlabs/skpack/pkg/registry"
	"github.com/acrlabs/skpack/pkg/target"
)

// Input carries everything one compilation needs. All fields are fixed
// before the call; Compile performs no I/O.
type Input struct {
	// Namespace is the namespace stamped onto every namespaced object.
	Namespace string

	// Apps are the application specs in registration order.
	Apps []registry.ApplicationSpec

	// Images maps application id to its resolved image reference. Every
	// app id must be present.
	Images map[string]string

	// Target controls debug capabilities and node-selector application.
	Target target.Target
}

// Doc is one rendered manifest document.
type Doc struct {
	// AppID is the application the document belongs to.
	AppID string

	// Kind is the Kubernetes kind rendered.
	Kind string

	// Name is the object name.
	Name string

	// Data is the YAML document body, newline terminated.
	Data []byte
}

// Bundle is the result of one compilation: manifest documents in dependency
// order.
type Bundle struct {
	// Order lists application ids in emission order (dependencies first).
	Order []string

	// Docs are all rendered documents, grouped by application in Order.
	Docs []Doc
}

// Compile renders manifest documents for every application, ordered so that
// each application's documents appear after those of its dependencies.
func Compile(in Input) (*Bundle, error) {
	ordered, err := topoOrder(in.Apps)
	if err != nil {
		return nil, err
	}

	bundle := &Bundle{Order: make([]string, 0, len(ordered))}
	for _, spec := range ordered {
		imageRef, ok := in.Images[spec.ID]
		if !ok || imageRef == "" {
			return nil, apperrors.New(apperrors.ErrCodeInternal,
				fmt.Sprintf("no resolved image for application %s", spec.ID))
		}

		objects := buildObjects(spec, imageRef, in.Namespace, in.Target)
		for _, obj := range objects {
			data, err := yaml.Marshal(obj.object)
			if err != nil {
				return nil, apperrors.Wrap(apperrors.ErrCodeInternal,
					fmt.Sprintf("failed to render %s for %s", obj.kind, spec.ID), err)
			}
			bundle.Docs = append(bundle.Docs, Doc{
				AppID: spec.ID,
				Kind:  obj.kind,
				Name:  obj.name,
				Data:  data,
			})
		}
		bundle.Order = append(bundle.Order, spec.ID)
	}

	return bundle, nil
}

// Stream renders the bundle as a single multi-document YAML stream.
func (b *Bundle) Stream() []byte {
	var buf bytes.Buffer
	for _, doc := range b.Docs {
		buf.WriteString("---\n")
		buf.Write(doc.Data)
	}
	return buf.Bytes()
}

// DocsFor returns the documents belonging to one application.
func (b *Bundle) DocsFor(appID string) []Doc {
	var docs []Doc
	for _, doc := range b.Docs {
		if doc.AppID == appID {
			docs = append(docs, doc)
		}
	}
	return docs
}

// StreamFor renders a multi-document stream for one application.
func (b *Bundle) StreamFor(appID string) []byte {
	var buf bytes.Buffer
	for _, doc := range b.DocsFor(appID) {
		buf.WriteString("---\n")
		buf.Write(doc.Data)
	}
	return buf.Bytes()
}

// topoOrder sorts specs so dependencies precede dependents, breaking ties by
// input order. The registry has already validated the graph, so a cycle here
// is an internal error.
func topoOrder(apps []registry.ApplicationSpec) ([]registry.ApplicationSpec, error) {
	indegree := make(map[string]int, len(apps))
	for _, app := range apps {
		indegree[app.ID] = len(app.DependsOn)
	}

	placed := make(map[string]bool, len(apps))
	ordered := make([]registry.ApplicationSpec, 0, len(apps))

	for len(ordered) < len(apps) {
		progressed := false
		for _, app := range apps {
			if placed[app.ID] || indegree[app.ID] != 0 {
				continue
			}
			placed[app.ID] = true
			ordered = append(ordered, app)
			for _, other := range apps {
				for _, dep := range other.DependsOn {
					if dep == app.ID {
						indegree[other.ID]--
					}
				}
			}
			progressed = true
			break
		}
		if !progressed {
			return nil, apperrors.New(apperrors.ErrCodeInternal,
				"dependency graph is not acyclic")
		}
	}

	return ordered, nil
}
