/*
Copyright © 2025 Applied Computing Research Labs
SPDX-License-Identifier: MIT
*/

// Package registry holds the fixed, ordered collection of application specs
// the packaging run operates over. Construction validates the collection so
// every downstream consumer can assume unique ids and an acyclic dependency
// graph.
package registry

import (
	"fmt"

	apperrors "github.com/acrlabs/skpack/pkg/errors"
)

// Registry is an immutable, ordered collection of application specs.
type Registry struct {
	specs []ApplicationSpec
	index map[string]int
}

// New builds a Registry from the given specs, in order.
//
// Validation failures are fatal before any output is produced: duplicate
// ids, dependencies on unknown ids, and dependency cycles all reject the
// whole collection.
func New(specs ...ApplicationSpec) (*Registry, error) {
	index := make(map[string]int, len(specs))

	for i, spec := range specs {
		if spec.ID == "" {
			return nil, apperrors.New(apperrors.ErrCodeInvalidRequest,
				fmt.Sprintf("application spec at position %d has no id", i))
		}
		if _, ok := index[spec.ID]; ok {
			return nil, apperrors.NewWithContext(apperrors.ErrCodeDuplicateID,
				fmt.Sprintf("duplicate application id: %s", spec.ID),
				map[string]any{"id": spec.ID, "position": i})
		}
		index[spec.ID] = i
	}

	for _, spec := range specs {
		for _, dep := range spec.DependsOn {
			if _, ok := index[dep]; !ok {
				return nil, apperrors.New(apperrors.ErrCodeInvalidRequest,
					fmt.Sprintf("application %s depends on unknown id %s", spec.ID, dep))
			}
			if dep == spec.ID {
				return nil, apperrors.New(apperrors.ErrCodeInvalidRequest,
					fmt.Sprintf("application %s depends on itself", spec.ID))
			}
		}
	}

	r := &Registry{specs: specs, index: index}
	if cycle := r.findCycle(); cycle != "" {
		return nil, apperrors.New(apperrors.ErrCodeInvalidRequest,
			fmt.Sprintf("dependency cycle involving application %s", cycle))
	}

	return r, nil
}

// List returns the application specs in registration order.
func (r *Registry) List() []ApplicationSpec {
	out := make([]ApplicationSpec, len(r.specs))
	copy(out, r.specs)
	return out
}

// Get returns the spec for the given id.
func (r *Registry) Get(id string) (ApplicationSpec, bool) {
	i, ok := r.index[id]
	if !ok {
		return ApplicationSpec{}, false
	}
	return r.specs[i], true
}

// Len returns the number of registered applications.
func (r *Registry) Len() int {
	return len(r.specs)
}

// IDs returns all application ids in registration order.
func (r *Registry) IDs() []string {
	ids := make([]string, len(r.specs))
	for i, spec := range r.specs {
		ids[i] = spec.ID
	}
	return ids
}

// findCycle walks the dependency graph depth-first and returns an id on a
// cycle, or "" when the graph is a DAG.
func (r *Registry) findCycle() string {
	const (
		unvisited = 0
		visiting  = 1
		done      = 2
	)
	state := make(map[string]int, len(r.specs))

	var visit func(id string) string
	visit = func(id string) string {
		switch state[id] {
		case visiting:
			return id
		case done:
			return ""
		}
		state[id] = visiting
		spec := r.specs[r.index[id]]
		for _, dep := range spec.DependsOn {
			if hit := visit(dep); hit != "" {
				return hit
			}
		}
		state[id] = done
		return ""
	}

	for _, spec := range r.specs {
		if hit := visit(spec.ID); hit != "" {
			return hit
		}
	}
	return ""
}
