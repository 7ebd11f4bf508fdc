package helpers

import (
	"fmt"
	"os"
	"testing"
	"time"

	"helm.sh/helm/v3/pkg/action"
	"helm.sh/helm/v3/pkg/chart/loader"
	"helm.sh/helm/v3/pkg/cli"
)

// IstioBaseChartEnv optionally points at the Istio "base" chart (directory or
// .tgz). When set, the real mesh CRDs are installed instead of schemaless ones.
const IstioBaseChartEnv = "ISTIO_BASE_CHART"

const (
	istioNamespace   = "istio-system"
	istioBaseRelease = "istio-base"
)

// HelmDeployer manages Helm chart deployments.
type HelmDeployer struct {
	Config    *action.Configuration
	namespace string
	t         *testing.T
}

// NewHelmDeployer creates a new Helm deployer for a kubeconfig context.
func NewHelmDeployer(t *testing.T, kubeConfig, kubeContext, namespace string) (*HelmDeployer, error) {
	t.Logf("Creating Helm deployer for namespace %s", namespace)

	settings := cli.New()
	settings.KubeConfig = kubeConfig
	settings.KubeContext = kubeContext
	settings.SetNamespace(namespace)

	cfg := new(action.Configuration)
	if err := cfg.Init(settings.RESTClientGetter(), namespace, os.Getenv("HELM_DRIVER"), func(format string, v ...interface{}) {
		t.Logf(format, v...)
	}); err != nil {
		return nil, fmt.Errorf("failed to initialize Helm config: %w", err)
	}

	return &HelmDeployer{Config: cfg, namespace: namespace, t: t}, nil
}

// InstallChart installs a chart, or leaves an already deployed release alone.
func (hd *HelmDeployer) InstallChart(releaseName, chartPath string, values map[string]interface{}) error {
	if rel, err := action.NewGet(hd.Config).Run(releaseName); err == nil {
		hd.t.Logf("✓ Release %s already installed (revision %d)", rel.Name, rel.Version)
		return nil
	}

	hd.t.Logf("Installing Helm chart %s as %s", chartPath, releaseName)

	chart, err := loader.Load(chartPath)
	if err != nil {
		return fmt.Errorf("failed to load chart: %w", err)
	}

	install := action.NewInstall(hd.Config)
	install.ReleaseName = releaseName
	install.Namespace = hd.namespace
	install.CreateNamespace = true
	install.Wait = true
	install.Timeout = 3 * time.Minute

	rel, err := install.Run(chart, values)
	if err != nil {
		return fmt.Errorf("failed to install chart: %w", err)
	}

	hd.t.Logf("✓ Chart installed: %s (revision %d)", rel.Name, rel.Version)
	return nil
}

// InstallIstioBase installs the Istio base chart named by ISTIO_BASE_CHART.
// It reports false when the variable is not set.
func InstallIstioBase(t *testing.T, tc *TestCluster) (bool, error) {
	chartPath := os.Getenv(IstioBaseChartEnv)
	if chartPath == "" {
		return false, nil
	}
	hd, err := NewHelmDeployer(t, tc.Kubeconfig, tc.Context, istioNamespace)
	if err != nil {
		return false, err
	}
	return true, hd.InstallChart(istioBaseRelease, chartPath, nil)
}
