package helpers

import (
	"context"
	"fmt"
	"strings"
	"time"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/apimachinery/pkg/util/wait"
	"k8s.io/client-go/dynamic"

	"github.com/moolen/meshprobe/internal/fixture"
)

var crdResource = schema.GroupVersionResource{
	Group:    "apiextensions.k8s.io",
	Version:  "v1",
	Resource: "customresourcedefinitions",
}

// InstallMeshCRDs registers schemaless CRDs for every mesh kind so that
// fixtures can be created in a cluster without a mesh installed.
// CRDs that already exist are left untouched.
func InstallMeshCRDs(ctx context.Context, dyn dynamic.Interface) error {
	for _, kind := range fixture.MeshKinds() {
		gv := fixture.DefaultGroupVersions[kind]
		plural, err := fixture.Plural(kind)
		if err != nil {
			return err
		}
		crd := meshCRD(gv, kind, plural)

		_, err = dyn.Resource(crdResource).Create(ctx, crd, metav1.CreateOptions{})
		if err != nil && !apierrors.IsAlreadyExists(err) {
			return fmt.Errorf("failed to create CRD %s: %w", crd.GetName(), err)
		}
		if err := waitForEstablished(ctx, dyn, crd.GetName()); err != nil {
			return err
		}
	}
	return nil
}

func meshCRD(gv schema.GroupVersion, kind, plural string) *unstructured.Unstructured {
	return &unstructured.Unstructured{Object: map[string]interface{}{
		"apiVersion": "apiextensions.k8s.io/v1",
		"kind":       "CustomResourceDefinition",
		"metadata": map[string]interface{}{
			"name": plural + "." + gv.Group,
		},
		"spec": map[string]interface{}{
			"group": gv.Group,
			"scope": "Namespaced",
			"names": map[string]interface{}{
				"kind":     kind,
				"listKind": kind + "List",
				"plural":   plural,
				"singular": strings.ToLower(kind),
			},
			"versions": []interface{}{
				map[string]interface{}{
					"name":    gv.Version,
					"served":  true,
					"storage": true,
					"schema": map[string]interface{}{
						"openAPIV3Schema": map[string]interface{}{
							"type":                                 "object",
							"x-kubernetes-preserve-unknown-fields": true,
						},
					},
				},
			},
		},
	}}
}

func waitForEstablished(ctx context.Context, dyn dynamic.Interface, name string) error {
	err := wait.PollUntilContextTimeout(ctx, 500*time.Millisecond, 30*time.Second, true, func(ctx context.Context) (bool, error) {
		crd, err := dyn.Resource(crdResource).Get(ctx, name, metav1.GetOptions{})
		if err != nil {
			return false, nil
		}
		conditions, _, _ := unstructured.NestedSlice(crd.Object, "status", "conditions")
		for _, c := range conditions {
			cond, ok := c.(map[string]interface{})
			if ok && cond["type"] == "Established" && cond["status"] == "True" {
				return true, nil
			}
		}
		return false, nil
	})
	if err != nil {
		return fmt.Errorf("CRD %s not established: %w", name, err)
	}
	return nil
}
