// Package fixture sets up and tears down cluster state for console scenarios:
// namespaces, seeded mesh resources, pods and services.
package fixture

import (
	"context"
	"fmt"
	"time"

	"github.com/moolen/meshprobe/internal/logging"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/util/wait"
	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/tools/clientcmd"
	"k8s.io/utils/ptr"
)

const (
	defaultPollInterval    = 500 * time.Millisecond
	namespaceActiveTimeout = 30 * time.Second
	fixtureLabel           = "meshprobe.io/fixture"
)

// Client issues fixture calls against the cluster API.
type Client struct {
	Clientset kubernetes.Interface
	Dynamic   dynamic.Interface

	contextName  string
	pollInterval time.Duration
	logger       *logging.Logger
}

// NewClient builds a client from a kubeconfig. An empty kubeconfigPath falls
// back to $KUBECONFIG and ~/.kube/config, an empty contextName to the
// kubeconfig's current-context.
func NewClient(kubeconfigPath, contextName string) (*Client, error) {
	rules := clientcmd.NewDefaultClientConfigLoadingRules()
	if kubeconfigPath != "" {
		rules.ExplicitPath = kubeconfigPath
	}
	overrides := &clientcmd.ConfigOverrides{CurrentContext: contextName}
	clientConfig := clientcmd.NewNonInteractiveDeferredLoadingClientConfig(rules, overrides)

	raw, err := clientConfig.RawConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to read kubeconfig %s: %w", kubeconfigPath, err)
	}
	if contextName == "" {
		contextName = raw.CurrentContext
	}

	restConfig, err := clientConfig.ClientConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to build kube config: %w", err)
	}
	restConfig.QPS = -1
	restConfig.Burst = 200

	clientset, err := kubernetes.NewForConfig(restConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create clientset: %w", err)
	}
	dyn, err := dynamic.NewForConfig(restConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create dynamic client: %w", err)
	}

	return NewClientFromInterfaces(clientset, dyn, contextName), nil
}

// NewClientFromInterfaces wraps existing clients, e.g. fakes in tests.
func NewClientFromInterfaces(clientset kubernetes.Interface, dyn dynamic.Interface, contextName string) *Client {
	return &Client{
		Clientset:    clientset,
		Dynamic:      dyn,
		contextName:  contextName,
		pollInterval: defaultPollInterval,
		logger:       logging.GetLogger("fixture"),
	}
}

// CurrentContext is the kube context the console addresses the cluster by.
func (c *Client) CurrentContext() string {
	return c.contextName
}

// CreateNamespace creates a namespace from the namespace fixture and waits
// until it is usable. The console cannot recover from navigating to a
// namespace that does not exist yet.
func (c *Client) CreateNamespace(ctx context.Context, name string) error {
	ns := &corev1.Namespace{}
	if err := loadTyped(NamespaceManifest, "", name, ns); err != nil {
		return err
	}

	if _, err := c.Clientset.CoreV1().Namespaces().Create(ctx, ns, metav1.CreateOptions{}); err != nil {
		return fmt.Errorf("failed to create namespace %s: %w", name, err)
	}

	err := wait.PollUntilContextTimeout(ctx, c.pollInterval, namespaceActiveTimeout, true, func(ctx context.Context) (bool, error) {
		got, err := c.Clientset.CoreV1().Namespaces().Get(ctx, name, metav1.GetOptions{})
		if err != nil {
			if apierrors.IsNotFound(err) {
				return false, nil
			}
			return false, err
		}
		return got.Status.Phase == corev1.NamespaceActive, nil
	})
	if err != nil {
		return fmt.Errorf("namespace %s did not become active: %w", name, err)
	}

	c.logger.InfoWithFields("namespace created", logging.Field("namespace", name))
	return nil
}

// DeleteNamespace deletes a namespace. A namespace that is already gone is not an error.
func (c *Client) DeleteNamespace(ctx context.Context, name string) error {
	err := c.Clientset.CoreV1().Namespaces().Delete(ctx, name, metav1.DeleteOptions{
		PropagationPolicy: ptr.To(metav1.DeletePropagationBackground),
	})
	if err != nil && !apierrors.IsNotFound(err) {
		return fmt.Errorf("failed to delete namespace %s: %w", name, err)
	}
	c.logger.InfoWithFields("namespace deleted", logging.Field("namespace", name))
	return nil
}

// WaitForNamespaceDeleted blocks until the namespace no longer exists.
func (c *Client) WaitForNamespaceDeleted(ctx context.Context, name string, timeout time.Duration) error {
	err := wait.PollUntilContextTimeout(ctx, c.pollInterval, timeout, true, func(ctx context.Context) (bool, error) {
		_, err := c.Clientset.CoreV1().Namespaces().Get(ctx, name, metav1.GetOptions{})
		if apierrors.IsNotFound(err) {
			return true, nil
		}
		return false, nil
	})
	if err != nil {
		return fmt.Errorf("timeout waiting for namespace %s to be deleted: %w", name, err)
	}
	return nil
}

// CreateAuthorizationPolicy seeds an AuthorizationPolicy from the fixture.
func (c *Client) CreateAuthorizationPolicy(ctx context.Context, namespace, name string) error {
	obj, err := LoadManifest(AuthorizationPolicyManifest, namespace, name)
	if err != nil {
		return err
	}
	_, err = c.CreateResource(ctx, obj)
	return err
}

// CreateResource creates any supported mesh custom resource in the object's namespace.
func (c *Client) CreateResource(ctx context.Context, obj *unstructured.Unstructured) (*unstructured.Unstructured, error) {
	gvr, err := ResourceFor(obj.GroupVersionKind())
	if err != nil {
		return nil, err
	}
	if obj.GetNamespace() == "" {
		return nil, fmt.Errorf("%s %s has no namespace", obj.GetKind(), obj.GetName())
	}
	if obj.GetAPIVersion() == "" {
		obj.SetAPIVersion(gvr.GroupVersion().String())
	}

	labels := obj.GetLabels()
	if labels == nil {
		labels = map[string]string{}
	}
	labels[fixtureLabel] = "true"
	obj.SetLabels(labels)

	created, err := c.Dynamic.Resource(gvr).Namespace(obj.GetNamespace()).Create(ctx, obj, metav1.CreateOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to create %s %s/%s: %w", obj.GetKind(), obj.GetNamespace(), obj.GetName(), err)
	}

	c.logger.InfoWithFields("resource created",
		logging.Field("kind", obj.GetKind()),
		logging.Field("namespace", obj.GetNamespace()),
		logging.Field("name", obj.GetName()),
	)
	return created, nil
}

// GetResource reads back a mesh custom resource.
func (c *Client) GetResource(ctx context.Context, kind, namespace, name string) (*unstructured.Unstructured, error) {
	gvr, err := ResourceFor(DefaultGroupVersions[kind].WithKind(kind))
	if err != nil {
		return nil, err
	}
	return c.Dynamic.Resource(gvr).Namespace(namespace).Get(ctx, name, metav1.GetOptions{})
}

// CreateHttpbinSleepPod starts a sleeping pod labelled app=<name>, used as a
// workload selector target.
func (c *Client) CreateHttpbinSleepPod(ctx context.Context, name, namespace string) (*corev1.Pod, error) {
	pod := &corev1.Pod{}
	if err := loadTyped(HttpbinSleepPodManifest, namespace, name, pod); err != nil {
		return nil, err
	}
	pod.Labels["app"] = name
	pod.Labels[fixtureLabel] = "true"

	created, err := c.Clientset.CoreV1().Pods(namespace).Create(ctx, pod, metav1.CreateOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to create pod %s/%s: %w", namespace, name, err)
	}
	c.logger.InfoWithFields("pod created", logging.Field("namespace", namespace), logging.Field("name", name))
	return created, nil
}

// CreateService creates a ClusterIP service selecting app=<name>.
func (c *Client) CreateService(ctx context.Context, name, namespace string) (*corev1.Service, error) {
	svc := &corev1.Service{}
	if err := loadTyped(ServiceManifest, namespace, name, svc); err != nil {
		return nil, err
	}
	svc.Labels["app"] = name
	svc.Labels[fixtureLabel] = "true"
	svc.Spec.Selector = map[string]string{"app": name}

	created, err := c.Clientset.CoreV1().Services(namespace).Create(ctx, svc, metav1.CreateOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to create service %s/%s: %w", namespace, name, err)
	}
	c.logger.InfoWithFields("service created", logging.Field("namespace", namespace), logging.Field("name", name))
	return created, nil
}

// WaitForPodReady waits for a pod to report the Ready condition.
func (c *Client) WaitForPodReady(ctx context.Context, namespace, name string, timeout time.Duration) error {
	err := wait.PollUntilContextTimeout(ctx, c.pollInterval, timeout, true, func(ctx context.Context) (bool, error) {
		pod, err := c.Clientset.CoreV1().Pods(namespace).Get(ctx, name, metav1.GetOptions{})
		if err != nil {
			return false, nil
		}
		for _, condition := range pod.Status.Conditions {
			if condition.Type == corev1.PodReady && condition.Status == corev1.ConditionTrue {
				return true, nil
			}
		}
		return false, nil
	})
	if err != nil {
		return fmt.Errorf("timeout waiting for pod %s/%s to be ready: %w", namespace, name, err)
	}
	return nil
}
