package fixture

import (
	"embed"
	"fmt"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
	"sigs.k8s.io/yaml"
)

//go:embed manifests/*.yaml
var manifests embed.FS

// Manifest file names shipped with the package.
const (
	NamespaceManifest           = "namespace.yaml"
	AuthorizationPolicyManifest = "authorizationPolicy.yaml"
	HttpbinSleepPodManifest     = "httpbin-sleep-pod.yaml"
	ServiceManifest             = "service.yaml"
)

// LoadManifest reads an embedded manifest and sets its name and namespace.
// An empty namespace leaves metadata.namespace untouched (cluster scoped kinds).
func LoadManifest(file, namespace, name string) (*unstructured.Unstructured, error) {
	raw, err := manifests.ReadFile("manifests/" + file)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest %s: %w", file, err)
	}

	jsonBytes, err := yaml.YAMLToJSON(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to convert manifest %s: %w", file, err)
	}

	obj := &unstructured.Unstructured{}
	if err := obj.UnmarshalJSON(jsonBytes); err != nil {
		return nil, fmt.Errorf("failed to decode manifest %s: %w", file, err)
	}

	obj.SetName(name)
	if namespace != "" {
		obj.SetNamespace(namespace)
	}
	return obj, nil
}

// loadTyped loads a manifest and converts it into a typed API object.
func loadTyped(file, namespace, name string, into runtime.Object) error {
	obj, err := LoadManifest(file, namespace, name)
	if err != nil {
		return err
	}
	if err := runtime.DefaultUnstructuredConverter.FromUnstructured(obj.Object, into); err != nil {
		return fmt.Errorf("failed to convert manifest %s to %T: %w", file, into, err)
	}
	return nil
}
