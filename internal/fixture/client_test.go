package fixture

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/runtime/schema"
	dynamicfake "k8s.io/client-go/dynamic/fake"
	"k8s.io/client-go/kubernetes/fake"
	k8stesting "k8s.io/client-go/testing"
)

func newFakeClient(t *testing.T) *Client {
	t.Helper()

	listKinds := map[schema.GroupVersionResource]string{}
	for _, kind := range MeshKinds() {
		gvr, err := ResourceFor(DefaultGroupVersions[kind].WithKind(kind))
		require.NoError(t, err)
		listKinds[gvr] = kind + "List"
	}

	clientset := fake.NewClientset()
	// the fake tracker stores namespaces without a phase; the API server
	// reports new ones as Active
	clientset.PrependReactor("create", "namespaces", func(action k8stesting.Action) (bool, runtime.Object, error) {
		if ns, ok := action.(k8stesting.CreateAction).GetObject().(*corev1.Namespace); ok {
			ns.Status.Phase = corev1.NamespaceActive
		}
		return false, nil, nil
	})

	c := NewClientFromInterfaces(
		clientset,
		dynamicfake.NewSimpleDynamicClientWithCustomListKinds(runtime.NewScheme(), listKinds),
		"kind-meshprobe",
	)
	c.pollInterval = 10 * time.Millisecond
	return c
}

func TestCreateNamespace(t *testing.T) {
	c := newFakeClient(t)
	ctx := context.Background()

	require.NoError(t, c.CreateNamespace(ctx, "test-ns"))

	ns, err := c.Clientset.CoreV1().Namespaces().Get(ctx, "test-ns", metav1.GetOptions{})
	require.NoError(t, err)
	assert.Equal(t, "true", ns.Labels[fixtureLabel])
}

func TestCreateNamespace_AlreadyExists(t *testing.T) {
	c := newFakeClient(t)
	ctx := context.Background()

	require.NoError(t, c.CreateNamespace(ctx, "dup"))
	err := c.CreateNamespace(ctx, "dup")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create namespace dup")
}

func TestCreateNamespace_WaitsForActivePhase(t *testing.T) {
	c := NewClientFromInterfaces(fake.NewClientset(), nil, "kind-meshprobe")
	c.pollInterval = 10 * time.Millisecond
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	err := c.CreateNamespace(ctx, "no-phase")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "namespace no-phase did not become active")
}

func TestDeleteNamespace(t *testing.T) {
	c := newFakeClient(t)
	ctx := context.Background()

	require.NoError(t, c.CreateNamespace(ctx, "to-delete"))
	require.NoError(t, c.DeleteNamespace(ctx, "to-delete"))
	require.NoError(t, c.WaitForNamespaceDeleted(ctx, "to-delete", time.Second))
}

func TestDeleteNamespace_NotFoundIsSuccess(t *testing.T) {
	c := newFakeClient(t)
	assert.NoError(t, c.DeleteNamespace(context.Background(), "never-existed"))
}

func TestWaitForNamespaceDeleted_Timeout(t *testing.T) {
	c := newFakeClient(t)
	ctx := context.Background()
	require.NoError(t, c.CreateNamespace(ctx, "stays"))

	err := c.WaitForNamespaceDeleted(ctx, "stays", 50*time.Millisecond)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stays")
}

func TestCreateAuthorizationPolicy(t *testing.T) {
	c := newFakeClient(t)
	ctx := context.Background()

	require.NoError(t, c.CreateAuthorizationPolicy(ctx, "ns-1", "test-ap"))

	got, err := c.GetResource(ctx, KindAuthorizationPolicy, "ns-1", "test-ap")
	require.NoError(t, err)
	assert.Equal(t, "security.istio.io/v1", got.GetAPIVersion())
	assert.Equal(t, "true", got.GetLabels()[fixtureLabel])

	action, found, err := unstructured.NestedString(got.Object, "spec", "action")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "DENY", action)
}

func TestCreateResource_DefaultsAPIVersion(t *testing.T) {
	c := newFakeClient(t)
	ctx := context.Background()

	gw := &unstructured.Unstructured{Object: map[string]interface{}{
		"kind": KindGateway,
		"metadata": map[string]interface{}{
			"name":      "gw",
			"namespace": "ns-1",
		},
		"spec": map[string]interface{}{
			"selector": map[string]interface{}{"istio": "ingressgateway"},
		},
	}}

	created, err := c.CreateResource(ctx, gw)
	require.NoError(t, err)
	assert.Equal(t, "networking.istio.io/v1", created.GetAPIVersion())

	_, err = c.GetResource(ctx, KindGateway, "ns-1", "gw")
	assert.NoError(t, err)
}

func TestCreateResource_Errors(t *testing.T) {
	c := newFakeClient(t)
	ctx := context.Background()

	unknown := &unstructured.Unstructured{}
	unknown.SetKind("ConfigMap")
	unknown.SetNamespace("ns-1")
	unknown.SetName("cm")
	_, err := c.CreateResource(ctx, unknown)
	assert.ErrorContains(t, err, "unsupported mesh kind")

	noNamespace := &unstructured.Unstructured{}
	noNamespace.SetKind(KindSidecar)
	noNamespace.SetName("sc")
	_, err = c.CreateResource(ctx, noNamespace)
	assert.ErrorContains(t, err, "has no namespace")
}

func TestCreateHttpbinSleepPod(t *testing.T) {
	c := newFakeClient(t)
	ctx := context.Background()

	pod, err := c.CreateHttpbinSleepPod(ctx, "reqauth-pod-abc", "ns-1")
	require.NoError(t, err)
	assert.Equal(t, "reqauth-pod-abc", pod.Labels["app"])
	assert.Equal(t, "ns-1", pod.Namespace)
	require.Len(t, pod.Spec.Containers, 1)
	assert.Equal(t, "sleep", pod.Spec.Containers[0].Name)
}

func TestCreateService(t *testing.T) {
	c := newFakeClient(t)
	ctx := context.Background()

	svc, err := c.CreateService(ctx, "test-service", "ns-1")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"app": "test-service"}, svc.Spec.Selector)
	require.Len(t, svc.Spec.Ports, 1)
	assert.EqualValues(t, 8000, svc.Spec.Ports[0].Port)
}

func TestWaitForPodReady(t *testing.T) {
	c := newFakeClient(t)
	ctx := context.Background()

	pod := &corev1.Pod{
		ObjectMeta: metav1.ObjectMeta{Name: "ready", Namespace: "ns-1"},
		Status: corev1.PodStatus{Conditions: []corev1.PodCondition{
			{Type: corev1.PodReady, Status: corev1.ConditionTrue},
		}},
	}
	_, err := c.Clientset.CoreV1().Pods("ns-1").Create(ctx, pod, metav1.CreateOptions{})
	require.NoError(t, err)

	assert.NoError(t, c.WaitForPodReady(ctx, "ns-1", "ready", time.Second))
	assert.Error(t, c.WaitForPodReady(ctx, "ns-1", "missing", 50*time.Millisecond))
}

func TestCurrentContext(t *testing.T) {
	assert.Equal(t, "kind-meshprobe", newFakeClient(t).CurrentContext())
}
