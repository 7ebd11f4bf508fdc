package console

import (
	"fmt"
	"os"
)

// Login connects the cluster described by kubeconfigPath through the
// console's connect wizard and leaves the browser on the cluster overview.
func Login(d Driver, nav *Navigator, kubeconfigPath string) error {
	if _, err := os.Stat(kubeconfigPath); err != nil {
		return fmt.Errorf("kubeconfig %s: %w", kubeconfigPath, err)
	}

	f := newForm(d)
	f.do(func() error { return d.Visit(nav.ClustersURL()) })
	f.do(func() error { return d.ClickButton("Connect cluster") })
	f.do(func() error { return d.UploadFile(`input[type="file"]`, kubeconfigPath) })
	f.do(func() error { return d.ClickButton("Next") })
	f.do(func() error { return d.ClickButton("Connect cluster") })
	return f.result("login")
}
