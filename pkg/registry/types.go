/*
Copyright © 2025 Applied Computing Research Labs
SPDX-License-Identifier: MIT
*/

package registry

import (
	corev1 "k8s.io/api/core/v1"
)

// Downward-API field paths injectable into container environments.
const (
	FieldPathPodName        = "metadata.name"
	FieldPathPodNamespace   = "metadata.namespace"
	FieldPathServiceAccount = "spec.serviceAccountName"
)

// EnvVar declares one container environment variable. Exactly one of Value
// and FieldPath should be set; FieldPath wins when both are.
//
// Env vars are an ordered slice rather than a map so rendered manifests are
// byte-stable across runs.
type EnvVar struct {
	// Name is the environment variable name.
	Name string

	// Value is a literal value.
	Value string

	// FieldPath is a downward-API field reference (see the FieldPath
	// constants above).
	FieldPath string
}

// EnvValue builds a literal EnvVar.
func EnvValue(name, value string) EnvVar {
	return EnvVar{Name: name, Value: value}
}

// EnvFieldRef builds a downward-API EnvVar.
func EnvFieldRef(name, fieldPath string) EnvVar {
	return EnvVar{Name: name, FieldPath: fieldPath}
}

// ConfigFile is one key in a config-map-backed volume.
type ConfigFile struct {
	// Key is the file name within the mount.
	Key string

	// Content is the full file content.
	Content string
}

// Volume declares a config-map-backed volume and its mount point. The
// backing ConfigMap is generated from Files and named after the volume.
type Volume struct {
	// Name is both the volume name and the generated ConfigMap name.
	Name string

	// MountPath is the directory the volume is mounted at.
	MountPath string

	// Files are the config files projected into the mount.
	Files []ConfigFile
}

// Path returns the in-container path of the named file.
func (v Volume) Path(key string) string {
	return v.MountPath + "/" + key
}

// ApplicationSpec describes one deployable unit of the simulation platform.
// Specs are plain immutable data; all Kubernetes-object knowledge lives in
// the assembly package.
type ApplicationSpec struct {
	// ID is the unique stable identifier (e.g. "sk-ctrl"). Used as the
	// workload name, app label, and image-file stem.
	ID string

	// Image pins a fixed image reference. When empty, the image resolver
	// determines the reference per packaging mode.
	Image string

	// Args is the full container command line.
	Args []string

	// Env declares container environment variables in render order.
	Env []EnvVar

	// Volumes declares config-map-backed volumes.
	Volumes []Volume

	// Ports lists container ports to expose.
	Ports []int32

	// Service exposes Ports through a ClusterIP Service named after ID.
	Service bool

	// ServiceAccount creates a ServiceAccount named after ID with a
	// cluster-admin ClusterRoleBinding, and runs the workload under it.
	ServiceAccount bool

	// ResourceRequests are container resource requests, if any.
	ResourceRequests corev1.ResourceList

	// NodeSelector constrains scheduling to matching nodes. Only applied
	// when the manifest target says so.
	NodeSelector map[string]string

	// Tolerations are scheduling tolerations, always applied.
	Tolerations []corev1.Toleration

	// DependsOn lists application ids that must be realized first. The
	// registry validates these form a DAG; the assembly step orders the
	// output accordingly.
	DependsOn []string

	// SimOnly marks workloads that only exist to exercise simulated nodes.
	// Release packaging places them in the sim overlay instead of the
	// shared base.
	SimOnly bool
}
