/*
Copyright © 2025 Applied Computing Research Labs
SPDX-License-Identifier: MIT
*/

package assembly

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	"sigs.k8s.io/yaml"

	"github.com/acrlabs/skpack/pkg/registry"
	"github.com/acrlabs/skpack/pkg/target"
)

func testApps(t *testing.T) []registry.ApplicationSpec {
	t.Helper()

	reg, err := registry.New(
		registry.ApplicationSpec{
			ID:      "b",
			Ports:   []int32{8086},
			Service: true,
			NodeSelector: map[string]string{
				"type": "kind-worker",
			},
			ServiceAccount: true,
		},
		registry.ApplicationSpec{
			ID:        "a",
			DependsOn: []string{"b"},
			Volumes: []registry.Volume{{
				Name:      "a-config",
				MountPath: "/config",
				Files:     []registry.ConfigFile{{Key: "c.yml", Content: "x: 1\n"}},
			}},
		},
	)
	require.NoError(t, err)
	return reg.List()
}

func testImages() map[string]string {
	return map[string]string{"a": "img-a:latest", "b": "img-b:latest"}
}

func TestCompileOrdersDependenciesFirst(t *testing.T) {
	t.Parallel()

	// "a" registers after "b" but also depends on it; either way b first.
	bundle, err := Compile(Input{
		Namespace: "simkube",
		Apps:      testApps(t),
		Images:    testImages(),
		Target:    target.Select(target.ModeDevGraph),
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"b", "a"}, bundle.Order)
}

func TestCompileOrdersDependenciesFirstRegardlessOfRegistration(t *testing.T) {
	t.Parallel()

	reg, err := registry.New(
		registry.ApplicationSpec{ID: "a", DependsOn: []string{"b"}},
		registry.ApplicationSpec{ID: "b"},
	)
	require.NoError(t, err)

	bundle, err := Compile(Input{
		Namespace: "simkube",
		Apps:      reg.List(),
		Images:    testImages(),
		Target:    target.Select(target.ModeDevGraph),
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"b", "a"}, bundle.Order)
}

func TestCompileRendersExpectedDocs(t *testing.T) {
	t.Parallel()

	bundle, err := Compile(Input{
		Namespace: "simkube",
		Apps:      testApps(t),
		Images:    testImages(),
		Target:    target.Select(target.ModeDevGraph),
	})
	require.NoError(t, err)

	kindsB := make([]string, 0)
	for _, doc := range bundle.DocsFor("b") {
		kindsB = append(kindsB, doc.Kind)
	}
	assert.Equal(t, []string{"ServiceAccount", "ClusterRoleBinding", "Deployment", "Service"}, kindsB)

	kindsA := make([]string, 0)
	for _, doc := range bundle.DocsFor("a") {
		kindsA = append(kindsA, doc.Kind)
	}
	assert.Equal(t, []string{"ConfigMap", "Deployment"}, kindsA)
}

func findDeployment(t *testing.T, bundle *Bundle, appID string) *appsv1.Deployment {
	t.Helper()

	for _, doc := range bundle.DocsFor(appID) {
		if doc.Kind != "Deployment" {
			continue
		}
		var depl appsv1.Deployment
		require.NoError(t, yaml.Unmarshal(doc.Data, &depl))
		return &depl
	}
	t.Fatalf("no Deployment rendered for %s", appID)
	return nil
}

func TestCompileDevTargetPosture(t *testing.T) {
	t.Parallel()

	bundle, err := Compile(Input{
		Namespace: "simkube",
		Apps:      testApps(t),
		Images:    testImages(),
		Target:    target.Select(target.ModeDevGraph),
	})
	require.NoError(t, err)

	depl := findDeployment(t, bundle, "b")
	container := depl.Spec.Template.Spec.Containers[0]

	require.NotNil(t, container.SecurityContext)
	assert.Contains(t, container.SecurityContext.Capabilities.Add, debugCapability)
	assert.Equal(t, map[string]string{"type": "kind-worker"}, depl.Spec.Template.Spec.NodeSelector)
	assert.Equal(t, "b", depl.Spec.Template.Spec.ServiceAccountName)
	assert.Equal(t, "img-b:latest", container.Image)
}

func TestCompileReleaseTargetPosture(t *testing.T) {
	t.Parallel()

	bundle, err := Compile(Input{
		Namespace: "simkube",
		Apps:      testApps(t),
		Images:    testImages(),
		Target:    target.Select(target.ModeReleaseKustomize),
	})
	require.NoError(t, err)

	depl := findDeployment(t, bundle, "b")
	container := depl.Spec.Template.Spec.Containers[0]

	assert.Nil(t, container.SecurityContext)
	assert.Empty(t, depl.Spec.Template.Spec.NodeSelector)
}

func TestCompileRendersLiteralEnv(t *testing.T) {
	t.Parallel()

	reg, err := registry.New(registry.ApplicationSpec{
		ID:  "a",
		Env: []registry.EnvVar{registry.EnvValue("RUST_BACKTRACE", "1")},
	})
	require.NoError(t, err)

	bundle, err := Compile(Input{
		Namespace: "simkube",
		Apps:      reg.List(),
		Images:    map[string]string{"a": "img-a:latest"},
		Target:    target.Select(target.ModeDevGraph),
	})
	require.NoError(t, err)

	container := findDeployment(t, bundle, "a").Spec.Template.Spec.Containers[0]
	assert.Contains(t, container.Env, corev1.EnvVar{Name: "RUST_BACKTRACE", Value: "1"})
}

func TestCompileMissingImageFails(t *testing.T) {
	t.Parallel()

	_, err := Compile(Input{
		Namespace: "simkube",
		Apps:      testApps(t),
		Images:    map[string]string{"b": "img-b:latest"},
		Target:    target.Select(target.ModeDevGraph),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no resolved image")
}

func TestStream(t *testing.T) {
	t.Parallel()

	bundle, err := Compile(Input{
		Namespace: "simkube",
		Apps:      testApps(t),
		Images:    testImages(),
		Target:    target.Select(target.ModeDevGraph),
	})
	require.NoError(t, err)

	stream := string(bundle.Stream())
	assert.True(t, strings.HasPrefix(stream, "---\n"))
	assert.Equal(t, len(bundle.Docs), strings.Count(stream, "---\n"))
}

func TestDefaultRegistryCompiles(t *testing.T) {
	t.Parallel()

	reg, err := registry.Default("simkube")
	require.NoError(t, err)

	images := make(map[string]string)
	for _, spec := range reg.List() {
		if spec.Image != "" {
			images[spec.ID] = spec.Image
		} else {
			images[spec.ID] = "PLACEHOLDER"
		}
	}

	bundle, err := Compile(Input{
		Namespace: "simkube",
		Apps:      reg.List(),
		Images:    images,
		Target:    target.Select(target.ModeDevGraph),
	})
	require.NoError(t, err)

	// cloudprov is the autoscaler's dependency and precedes it.
	idx := func(id string) int {
		for i, v := range bundle.Order {
			if v == id {
				return i
			}
		}
		return -1
	}
	assert.Less(t, idx(registry.AppCloudProv), idx(registry.AppAutoscaler))
	assert.Len(t, bundle.Order, reg.Len())
}
