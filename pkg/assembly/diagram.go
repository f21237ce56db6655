/*
Copyright © 2025 Applied Computing Research Labs
SPDX-License-Identifier: MIT
*/

package assembly

import (
	"fmt"
	"strings"

	"github.com/acrlabs/skpack/pkg/registry"
)

// Diagram renders the application dependency graph as a Mermaid document.
// Nodes appear in registration order and edges point from dependent to
// dependency, so rendering is deterministic.
func Diagram(apps []registry.ApplicationSpec) string {
	var b strings.Builder
	b.WriteString("graph LR\n")

	for _, app := range apps {
		fmt.Fprintf(&b, "  %s\n", app.ID)
	}
	for _, app := range apps {
		for _, dep := range app.DependsOn {
			fmt.Fprintf(&b, "  %s --> %s\n", app.ID, dep)
		}
	}

	return b.String()
}
