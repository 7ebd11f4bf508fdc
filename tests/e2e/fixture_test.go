package e2e

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

	"github.com/moolen/meshprobe/internal/fixture"
	"github.com/moolen/meshprobe/tests/e2e/helpers"
)

// TestFixtureLifecycle runs the fixture client against a real API server:
// namespace, seeded policy, pod and service, then namespace teardown.
func TestFixtureLifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping e2e test in short mode")
	}

	testCluster := helpers.SetupTestCluster(t, "meshprobe-e2e")

	client, err := fixture.NewClient(testCluster.Kubeconfig, testCluster.Context)
	require.NoError(t, err, "failed to create fixture client")
	assert.Equal(t, testCluster.Context, client.CurrentContext())

	ctx, cancel := context.WithTimeout(t.Context(), 5*time.Minute)
	defer cancel()

	installed, err := helpers.InstallIstioBase(t, testCluster)
	require.NoError(t, err, "failed to install Istio base chart")
	if !installed {
		require.NoError(t, helpers.InstallMeshCRDs(ctx, client.Dynamic), "failed to install mesh CRDs")
	}

	namespace := fixture.NamespaceName()
	require.NoError(t, client.CreateNamespace(ctx, namespace))
	t.Cleanup(func() {
		_ = client.DeleteNamespace(context.Background(), namespace)
	})

	apName := fixture.RandomName("test-ap")
	require.NoError(t, client.CreateAuthorizationPolicy(ctx, namespace, apName))

	ap, err := client.GetResource(ctx, fixture.KindAuthorizationPolicy, namespace, apName)
	require.NoError(t, err)
	action, _, err := unstructured.NestedString(ap.Object, "spec", "action")
	require.NoError(t, err)
	assert.Equal(t, "DENY", action)

	err = client.CreateAuthorizationPolicy(ctx, namespace, apName)
	require.Error(t, err)
	assert.True(t, apierrors.IsAlreadyExists(err), "expected AlreadyExists, got %v", err)

	podName := fixture.RandomName("reqauth-pod")
	pod, err := client.CreateHttpbinSleepPod(ctx, podName, namespace)
	require.NoError(t, err)
	assert.Equal(t, podName, pod.Labels["app"])

	svc, err := client.CreateService(ctx, podName, namespace)
	require.NoError(t, err)
	assert.Equal(t, podName, svc.Spec.Selector["app"])

	require.NoError(t, client.DeleteNamespace(ctx, namespace))
	require.NoError(t, client.WaitForNamespaceDeleted(ctx, namespace, 3*time.Minute))
}
