// Package helpers provides reusable utilities for e2e testing.
package helpers

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/tools/clientcmd"
	"sigs.k8s.io/kind/pkg/apis/config/v1alpha4"
	"sigs.k8s.io/kind/pkg/cluster"
)

// TestCluster represents the cluster fixtures are created in. Provider is nil
// when an existing cluster is used.
type TestCluster struct {
	Provider   *cluster.Provider
	Name       string
	Context    string
	Kubeconfig string
	t          *testing.T
}

// SetupTestCluster reuses the cluster of the current kubeconfig when
// USE_EXISTING_CLUSTER=true and otherwise gets or creates a Kind cluster.
// The Kind cluster is deleted at the end of the test unless KEEP_CLUSTER=true.
func SetupTestCluster(t *testing.T, clusterName string) *TestCluster {
	t.Helper()

	if os.Getenv("USE_EXISTING_CLUSTER") == "true" {
		kubeconfig := os.Getenv("KUBECONFIG")
		if kubeconfig == "" {
			kubeconfig = clientcmd.RecommendedHomeFile
		}
		raw, err := clientcmd.LoadFromFile(kubeconfig)
		if err != nil {
			t.Fatalf("failed to read kubeconfig %s: %v", kubeconfig, err)
		}
		t.Logf("✓ Using existing cluster, context %s", raw.CurrentContext)
		return &TestCluster{Name: raw.CurrentContext, Context: raw.CurrentContext, Kubeconfig: kubeconfig, t: t}
	}

	tc, err := GetOrCreateKindCluster(t, clusterName)
	if err != nil {
		t.Fatalf("failed to set up Kind cluster: %v", err)
	}
	if os.Getenv("KEEP_CLUSTER") != "true" {
		t.Cleanup(func() {
			if err := tc.Delete(); err != nil {
				t.Logf("Warning: failed to delete cluster: %v", err)
			}
		})
	}
	return tc
}

// CreateKindCluster creates a new Kind cluster with a unique name.
// If a cluster with the same name already exists, it will be deleted first.
// The kubeconfig is written to a file of its own so it can be uploaded to the console.
func CreateKindCluster(t *testing.T, clusterName string) (*TestCluster, error) {
	t.Logf("Creating Kind cluster: %s", clusterName)

	provider := cluster.NewProvider()

	clusters, err := provider.List()
	if err != nil {
		return nil, fmt.Errorf("failed to list existing clusters: %w", err)
	}

	for _, existingCluster := range clusters {
		if existingCluster == clusterName {
			t.Logf("Found existing cluster %s, deleting it first...", clusterName)
			if err := provider.Delete(clusterName, ""); err != nil {
				if !strings.Contains(err.Error(), "does not exist") {
					t.Logf("Warning: failed to delete existing cluster: %v", err)
				}
			} else {
				t.Logf("✓ Deleted existing cluster: %s", clusterName)
			}
			break
		}
	}

	cfg := &v1alpha4.Cluster{
		TypeMeta: v1alpha4.TypeMeta{
			APIVersion: "kind.x-k8s.io/v1alpha4",
			Kind:       "Cluster",
		},
		Name: clusterName,
		Nodes: []v1alpha4.Node{
			{
				Role: v1alpha4.ControlPlaneRole,
			},
		},
	}

	kubeconfig := kubeconfigPath(clusterName)
	if err := provider.Create(clusterName,
		cluster.CreateWithV1Alpha4Config(cfg),
		cluster.CreateWithKubeconfigPath(kubeconfig),
		cluster.CreateWithWaitForReady(2*time.Minute),
	); err != nil {
		return nil, fmt.Errorf("failed to create Kind cluster: %w", err)
	}

	t.Logf("✓ Kind cluster created: %s", clusterName)

	return &TestCluster{
		Provider:   provider,
		Name:       clusterName,
		Context:    fmt.Sprintf("kind-%s", clusterName),
		Kubeconfig: kubeconfig,
		t:          t,
	}, nil
}

// Delete removes the Kind cluster. Existing clusters are left alone.
func (tc *TestCluster) Delete() error {
	if tc.Provider == nil {
		return nil
	}
	tc.t.Logf("Deleting Kind cluster: %s", tc.Name)

	if err := tc.Provider.Delete(tc.Name, tc.Kubeconfig); err != nil {
		if !strings.Contains(err.Error(), "does not exist") {
			return fmt.Errorf("failed to delete cluster: %w", err)
		}
	}

	tc.t.Logf("✓ Kind cluster deleted: %s", tc.Name)
	return nil
}

// GetOrCreateKindCluster gets an existing Kind cluster or creates a new one.
// A healthy cluster with the given name is reused across test invocations.
func GetOrCreateKindCluster(t *testing.T, clusterName string) (*TestCluster, error) {
	t.Logf("Getting or creating Kind cluster: %s", clusterName)

	provider := cluster.NewProvider()

	clusters, err := provider.List()
	if err != nil {
		return nil, fmt.Errorf("failed to list existing clusters: %w", err)
	}

	for _, existingCluster := range clusters {
		if existingCluster != clusterName {
			continue
		}
		t.Logf("Found existing cluster %s, checking health...", clusterName)

		kubeconfig := kubeconfigPath(clusterName)
		if err := provider.ExportKubeConfig(clusterName, kubeconfig, false); err != nil {
			t.Logf("Failed to export kubeconfig: %v", err)
			break
		}
		tc := &TestCluster{
			Provider:   provider,
			Name:       clusterName,
			Context:    fmt.Sprintf("kind-%s", clusterName),
			Kubeconfig: kubeconfig,
			t:          t,
		}
		if isClusterHealthy(t, tc) {
			t.Logf("✓ Reusing existing healthy cluster: %s", clusterName)
			return tc, nil
		}
		t.Logf("Cluster %s is unhealthy, recreating...", clusterName)
		break
	}

	return CreateKindCluster(t, clusterName)
}

func kubeconfigPath(clusterName string) string {
	return filepath.Join(os.TempDir(), "meshprobe-"+clusterName+".kubeconfig")
}

// isClusterHealthy checks that every node of the cluster reports Ready.
func isClusterHealthy(t *testing.T, tc *TestCluster) bool {
	clientConfig := clientcmd.NewNonInteractiveDeferredLoadingClientConfig(
		&clientcmd.ClientConfigLoadingRules{ExplicitPath: tc.Kubeconfig},
		&clientcmd.ConfigOverrides{CurrentContext: tc.Context},
	)

	restConfig, err := clientConfig.ClientConfig()
	if err != nil {
		t.Logf("Failed to get REST config: %v", err)
		return false
	}

	clientset, err := kubernetes.NewForConfig(restConfig)
	if err != nil {
		t.Logf("Failed to create clientset: %v", err)
		return false
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	nodes, err := clientset.CoreV1().Nodes().List(ctx, metav1.ListOptions{})
	if err != nil {
		t.Logf("Failed to list nodes: %v", err)
		return false
	}
	if len(nodes.Items) == 0 {
		t.Logf("No nodes found in cluster")
		return false
	}

	for _, node := range nodes.Items {
		ready := false
		for _, condition := range node.Status.Conditions {
			if condition.Type == corev1.NodeReady && condition.Status == corev1.ConditionTrue {
				ready = true
				break
			}
		}
		if !ready {
			t.Logf("Node %s is not ready", node.Name)
			return false
		}
	}

	t.Logf("Cluster %s is healthy with %d ready node(s)", tc.Name, len(nodes.Items))
	return true
}
