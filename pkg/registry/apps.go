/*
Copyright © 2025 Applied Computing Research Labs
SPDX-License-Identifier: MIT
*/

package registry

import (
	"fmt"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/resource"
)

// Application ids for the simulation platform components.
const (
	AppCloudProv  = "sk-cloudprov"
	AppAutoscaler = "cluster-autoscaler"
	AppVnode      = "sk-vnode"
	AppTracer     = "sk-tracer"
	AppController = "sk-ctrl"
	AppTestDepl   = "test"
)

const (
	// GRPCPort is the port the external cloud-provider shim serves on.
	GRPCPort int32 = 8086

	// TracerPort is the tracer's HTTP server port.
	TracerPort int32 = 7777
)

// Node-selector values for the local kind test cluster.
const (
	nodeTypeKey      = "type"
	nodeTypeWorker   = "kind-worker"
	nodeTypeCtrl     = "kind-control-plane"
	nodeTypeVirtual  = "virtual"
	autoscalerImage  = "localhost:5000/cluster-autoscaler:latest"
	testWorkloadImg  = "nginx:latest"
	downwardEnvName  = "POD_NAME"
	downwardEnvNS    = "POD_NAMESPACE"
	ctrlEnvSvcAcct   = "POD_SVC_ACCOUNT"
	ctrlEnvNamespace = "CTRL_NAMESPACE"
	backtraceEnvName = "RUST_BACKTRACE"
)

const autoscalerConfigTmpl = `---
address: %s:%d
`

const tracerConfig = `---
trackedObjects:
  apps/v1.Deployment:
    podSpecTemplatePath: /spec/template
  v1.ServiceAccount: {}
  v1.ConfigMap: {}
`

const nodeSkeleton = `---
apiVersion: v1
kind: Node
status:
  allocatable:
    cpu: "16"
    memory: "32Gi"
  capacity:
    cpu: "16"
    memory: "32Gi"
`

// Default returns the registry of simulation platform applications.
// namespace is the namespace every component deploys into; it also names the
// driver secret handed to the controller.
func Default(namespace string) (*Registry, error) {
	caConfig := Volume{
		Name:      "cluster-autoscaler-config",
		MountPath: "/config",
		Files: []ConfigFile{{
			Key: "config.yml",
			// The autoscaler reaches the cloud-provider shim through its
			// Service, which shares the application id.
			Content: fmt.Sprintf(autoscalerConfigTmpl, AppCloudProv, GRPCPort),
		}},
	}

	tracerVol := Volume{
		Name:      "tracer-config",
		MountPath: "/config",
		Files:     []ConfigFile{{Key: "tracer-config.yml", Content: tracerConfig}},
	}

	vnodeVol := Volume{
		Name:      "node-skeleton",
		MountPath: "/config",
		Files:     []ConfigFile{{Key: "node.yml", Content: nodeSkeleton}},
	}

	return New(
		ApplicationSpec{
			ID:             AppCloudProv,
			Args:           []string{"/sk-cloudprov"},
			Ports:          []int32{GRPCPort},
			Service:        true,
			ServiceAccount: true,
			NodeSelector:   map[string]string{nodeTypeKey: nodeTypeWorker},
		},
		ApplicationSpec{
			ID:    AppAutoscaler,
			Image: autoscalerImage,
			Args: []string{
				"/cluster-autoscaler",
				"--cloud-provider", "externalgrpc",
				"--cloud-config", caConfig.Path("config.yml"),
				"--scale-down-delay-after-add", "1m",
				"--scale-down-unneeded-time", "1m",
				"--v", "4",
			},
			Volumes:        []Volume{caConfig},
			ServiceAccount: true,
			NodeSelector:   map[string]string{nodeTypeKey: nodeTypeCtrl},
			Tolerations: []corev1.Toleration{{
				Key:    "node-role.kubernetes.io/control-plane",
				Effect: corev1.TaintEffectNoSchedule,
			}},
			DependsOn: []string{AppCloudProv},
		},
		ApplicationSpec{
			ID:   AppVnode,
			Args: []string{"/sk-vnode", "--node-skeleton", vnodeVol.Path("node.yml")},
			Env: []EnvVar{
				EnvFieldRef(downwardEnvName, FieldPathPodName),
				EnvFieldRef(downwardEnvNS, FieldPathPodNamespace),
			},
			Volumes:        []Volume{vnodeVol},
			ServiceAccount: true,
			NodeSelector:   map[string]string{nodeTypeKey: nodeTypeWorker},
		},
		ApplicationSpec{
			ID: AppTracer,
			Args: []string{
				"/sk-tracer",
				"--server-port", fmt.Sprintf("%d", TracerPort),
				"-c", tracerVol.Path("tracer-config.yml"),
			},
			Env:            []EnvVar{EnvValue(backtraceEnvName, "1")},
			Ports:          []int32{TracerPort},
			Volumes:        []Volume{tracerVol},
			Service:        true,
			ServiceAccount: true,
			NodeSelector:   map[string]string{nodeTypeKey: nodeTypeWorker},
		},
		ApplicationSpec{
			ID: AppController,
			Args: []string{
				"/sk-ctrl",
				"--driver-secrets", namespace,
				"--use-cert-manager",
				"--cert-manager-issuer", "selfsigned",
			},
			Env: []EnvVar{
				EnvValue(backtraceEnvName, "1"),
				EnvFieldRef(ctrlEnvSvcAcct, FieldPathServiceAccount),
				EnvFieldRef(ctrlEnvNamespace, FieldPathPodNamespace),
			},
			ServiceAccount: true,
			NodeSelector:   map[string]string{nodeTypeKey: nodeTypeWorker},
		},
		ApplicationSpec{
			ID:    AppTestDepl,
			Image: testWorkloadImg,
			ResourceRequests: corev1.ResourceList{
				corev1.ResourceCPU: resource.MustParse("1"),
			},
			NodeSelector: map[string]string{nodeTypeKey: nodeTypeVirtual},
			Tolerations: []corev1.Toleration{{
				Key:    "kwok-provider",
				Value:  "true",
				Effect: corev1.TaintEffectNoSchedule,
			}},
			SimOnly: true,
		},
	)
}
