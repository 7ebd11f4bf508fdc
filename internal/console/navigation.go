package console

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/moolen/meshprobe/internal/fixture"
)

// Navigator builds console URLs for one cluster.
type Navigator struct {
	baseURL string
	context string
}

// NewNavigator returns a navigator for the console at baseURL showing the
// cluster registered under the kube context name.
func NewNavigator(baseURL, context string) (*Navigator, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("console url %q is not absolute", baseURL)
	}
	if context == "" {
		return nil, fmt.Errorf("kube context must not be empty")
	}
	return &Navigator{
		baseURL: strings.TrimRight(baseURL, "/"),
		context: context,
	}, nil
}

// URL returns the list view of kind in namespace, or the detail view when
// name is set.
func (n *Navigator) URL(kind, namespace, name string) (string, error) {
	plural, err := fixture.Plural(kind)
	if err != nil {
		return "", err
	}
	if namespace == "" {
		return "", fmt.Errorf("namespace must not be empty")
	}
	u := fmt.Sprintf("%s/cluster/%s/namespaces/%s/%s",
		n.baseURL, url.PathEscape(n.context), url.PathEscape(namespace), plural)
	if name != "" {
		u += "/" + url.PathEscape(name)
	}
	return u, nil
}

// Open visits the list or detail view of kind.
func (n *Navigator) Open(d Driver, kind, namespace, name string) error {
	u, err := n.URL(kind, namespace, name)
	if err != nil {
		return err
	}
	if err := d.Visit(u); err != nil {
		return fmt.Errorf("failed to open %s: %w", u, err)
	}
	return nil
}

// ClustersURL is the cluster overview where new clusters are connected.
func (n *Navigator) ClustersURL() string {
	return n.baseURL + "/clusters"
}
