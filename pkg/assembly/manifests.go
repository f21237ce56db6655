/*
Copyright © 2025 Applied Computing Research Labs
SPDX-License-Identifier: MIT
*/

package assembly

import (
	"fmt"

	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	rbacv1 "k8s.io/api/rbac/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/utils/ptr"

	"github.com/acrlabs/skpack/pkg/registry"
	"github.com/acrlabs/skpack/pkg/target"
)

const (
	appLabelKey = "app"

	// clusterAdminRole is bound to every component service account. The
	// platform components mutate nodes, pods, and arbitrary tracked
	// objects, so they run with full permissions in the test cluster.
	clusterAdminRole = "cluster-admin"

	// debugCapability is added to containers in development mode.
	debugCapability corev1.Capability = "SYS_PTRACE"
)

// typedObject pairs a manifest object with its identifying metadata, so
// callers can name files and report results without re-inspecting YAML.
type typedObject struct {
	kind   string
	name   string
	object any
}

// buildObjects renders the manifest objects for one application, in apply
// order: ConfigMaps, ServiceAccount, ClusterRoleBinding, Deployment,
// Service.
func buildObjects(spec registry.ApplicationSpec, imageRef, namespace string, tgt target.Target) []typedObject {
	var objects []typedObject

	for _, vol := range spec.Volumes {
		objects = append(objects, typedObject{
			kind:   "ConfigMap",
			name:   vol.Name,
			object: buildConfigMap(vol, namespace),
		})
	}

	if spec.ServiceAccount {
		objects = append(objects,
			typedObject{
				kind:   "ServiceAccount",
				name:   spec.ID,
				object: buildServiceAccount(spec, namespace),
			},
			typedObject{
				kind:   "ClusterRoleBinding",
				name:   bindingName(spec.ID),
				object: buildClusterRoleBinding(spec, namespace),
			},
		)
	}

	objects = append(objects, typedObject{
		kind:   "Deployment",
		name:   spec.ID,
		object: buildDeployment(spec, imageRef, namespace, tgt),
	})

	if spec.Service {
		objects = append(objects, typedObject{
			kind:   "Service",
			name:   spec.ID,
			object: buildService(spec, namespace),
		})
	}

	return objects
}

func appLabels(id string) map[string]string {
	return map[string]string{appLabelKey: id}
}

func bindingName(id string) string {
	return fmt.Sprintf("%s-crb", id)
}

func buildConfigMap(vol registry.Volume, namespace string) *corev1.ConfigMap {
	data := make(map[string]string, len(vol.Files))
	for _, f := range vol.Files {
		data[f.Key] = f.Content
	}

	return &corev1.ConfigMap{
		TypeMeta: metav1.TypeMeta{APIVersion: "v1", Kind: "ConfigMap"},
		ObjectMeta: metav1.ObjectMeta{
			Name:      vol.Name,
			Namespace: namespace,
		},
		Data: data,
	}
}

func buildServiceAccount(spec registry.ApplicationSpec, namespace string) *corev1.ServiceAccount {
	return &corev1.ServiceAccount{
		TypeMeta: metav1.TypeMeta{APIVersion: "v1", Kind: "ServiceAccount"},
		ObjectMeta: metav1.ObjectMeta{
			Name:      spec.ID,
			Namespace: namespace,
			Labels:    appLabels(spec.ID),
		},
	}
}

func buildClusterRoleBinding(spec registry.ApplicationSpec, namespace string) *rbacv1.ClusterRoleBinding {
	return &rbacv1.ClusterRoleBinding{
		TypeMeta: metav1.TypeMeta{APIVersion: "rbac.authorization.k8s.io/v1", Kind: "ClusterRoleBinding"},
		ObjectMeta: metav1.ObjectMeta{
			Name:   bindingName(spec.ID),
			Labels: appLabels(spec.ID),
		},
		RoleRef: rbacv1.RoleRef{
			APIGroup: rbacv1.GroupName,
			Kind:     "ClusterRole",
			Name:     clusterAdminRole,
		},
		Subjects: []rbacv1.Subject{{
			Kind:      rbacv1.ServiceAccountKind,
			Name:      spec.ID,
			Namespace: namespace,
		}},
	}
}

func buildDeployment(spec registry.ApplicationSpec, imageRef, namespace string, tgt target.Target) *appsv1.Deployment {
	podSpec := corev1.PodSpec{
		Containers:  []corev1.Container{buildContainer(spec, imageRef, tgt)},
		Tolerations: spec.Tolerations,
	}

	if spec.ServiceAccount {
		podSpec.ServiceAccountName = spec.ID
	}
	if tgt.ApplyNodeSelectors && len(spec.NodeSelector) > 0 {
		podSpec.NodeSelector = spec.NodeSelector
	}

	for _, vol := range spec.Volumes {
		podSpec.Volumes = append(podSpec.Volumes, corev1.Volume{
			Name: vol.Name,
			VolumeSource: corev1.VolumeSource{
				ConfigMap: &corev1.ConfigMapVolumeSource{
					LocalObjectReference: corev1.LocalObjectReference{Name: vol.Name},
				},
			},
		})
	}

	return &appsv1.Deployment{
		TypeMeta: metav1.TypeMeta{APIVersion: "apps/v1", Kind: "Deployment"},
		ObjectMeta: metav1.ObjectMeta{
			Name:      spec.ID,
			Namespace: namespace,
			Labels:    appLabels(spec.ID),
		},
		Spec: appsv1.DeploymentSpec{
			Replicas: ptr.To(int32(1)),
			Selector: &metav1.LabelSelector{MatchLabels: appLabels(spec.ID)},
			Template: corev1.PodTemplateSpec{
				ObjectMeta: metav1.ObjectMeta{Labels: appLabels(spec.ID)},
				Spec:       podSpec,
			},
		},
	}
}

func buildContainer(spec registry.ApplicationSpec, imageRef string, tgt target.Target) corev1.Container {
	container := corev1.Container{
		Name:  spec.ID,
		Image: imageRef,
		Args:  spec.Args,
	}

	for _, env := range spec.Env {
		container.Env = append(container.Env, buildEnvVar(env))
	}

	for _, port := range spec.Ports {
		container.Ports = append(container.Ports, corev1.ContainerPort{
			ContainerPort: port,
			Protocol:      corev1.ProtocolTCP,
		})
	}

	for _, vol := range spec.Volumes {
		container.VolumeMounts = append(container.VolumeMounts, corev1.VolumeMount{
			Name:      vol.Name,
			MountPath: vol.MountPath,
		})
	}

	if len(spec.ResourceRequests) > 0 {
		container.Resources = corev1.ResourceRequirements{Requests: spec.ResourceRequests}
	}

	if tgt.DebugCapabilities {
		container.SecurityContext = &corev1.SecurityContext{
			Capabilities: &corev1.Capabilities{Add: []corev1.Capability{debugCapability}},
		}
	}

	return container
}

func buildEnvVar(env registry.EnvVar) corev1.EnvVar {
	if env.FieldPath != "" {
		return corev1.EnvVar{
			Name: env.Name,
			ValueFrom: &corev1.EnvVarSource{
				FieldRef: &corev1.ObjectFieldSelector{FieldPath: env.FieldPath},
			},
		}
	}
	return corev1.EnvVar{Name: env.Name, Value: env.Value}
}

func buildService(spec registry.ApplicationSpec, namespace string) *corev1.Service {
	ports := make([]corev1.ServicePort, 0, len(spec.Ports))
	for _, port := range spec.Ports {
		ports = append(ports, corev1.ServicePort{
			Name:     fmt.Sprintf("port-%d", port),
			Port:     port,
			Protocol: corev1.ProtocolTCP,
		})
	}

	return &corev1.Service{
		TypeMeta: metav1.TypeMeta{APIVersion: "v1", Kind: "Service"},
		ObjectMeta: metav1.ObjectMeta{
			Name:      spec.ID,
			Namespace: namespace,
			Labels:    appLabels(spec.ID),
		},
		Spec: corev1.ServiceSpec{
			Selector: appLabels(spec.ID),
			Ports:    ports,
		},
	}
}
