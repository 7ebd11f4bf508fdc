package fixture

import (
	"fmt"

	"k8s.io/apimachinery/pkg/runtime/schema"
)

// Kind names of the mesh resources the console manages.
const (
	KindAuthorizationPolicy   = "AuthorizationPolicy"
	KindGateway               = "Gateway"
	KindVirtualService        = "VirtualService"
	KindDestinationRule       = "DestinationRule"
	KindServiceEntry          = "ServiceEntry"
	KindSidecar               = "Sidecar"
	KindRequestAuthentication = "RequestAuthentication"
	KindTelemetry             = "Telemetry"
)

var meshPlurals = map[string]string{
	KindAuthorizationPolicy:   "authorizationpolicies",
	KindGateway:               "gateways",
	KindVirtualService:        "virtualservices",
	KindDestinationRule:       "destinationrules",
	KindServiceEntry:          "serviceentries",
	KindSidecar:               "sidecars",
	KindRequestAuthentication: "requestauthentications",
	KindTelemetry:             "telemetries",
}

// DefaultGroupVersions are the served versions used when an object does not
// carry its own apiVersion.
var DefaultGroupVersions = map[string]schema.GroupVersion{
	KindAuthorizationPolicy:   {Group: "security.istio.io", Version: "v1"},
	KindRequestAuthentication: {Group: "security.istio.io", Version: "v1"},
	KindGateway:               {Group: "networking.istio.io", Version: "v1"},
	KindVirtualService:        {Group: "networking.istio.io", Version: "v1"},
	KindDestinationRule:       {Group: "networking.istio.io", Version: "v1"},
	KindServiceEntry:          {Group: "networking.istio.io", Version: "v1"},
	KindSidecar:               {Group: "networking.istio.io", Version: "v1"},
	KindTelemetry:             {Group: "telemetry.istio.io", Version: "v1"},
}

// MeshKinds lists the supported kinds in a stable order.
func MeshKinds() []string {
	return []string{
		KindAuthorizationPolicy,
		KindGateway,
		KindVirtualService,
		KindDestinationRule,
		KindServiceEntry,
		KindSidecar,
		KindRequestAuthentication,
		KindTelemetry,
	}
}

// Plural returns the lower-case resource name of a mesh kind.
func Plural(kind string) (string, error) {
	plural, ok := meshPlurals[kind]
	if !ok {
		return "", fmt.Errorf("unsupported mesh kind %q", kind)
	}
	return plural, nil
}

// ResourceFor maps a GroupVersionKind onto its GroupVersionResource.
// An empty group/version falls back to DefaultGroupVersions.
func ResourceFor(gvk schema.GroupVersionKind) (schema.GroupVersionResource, error) {
	plural, err := Plural(gvk.Kind)
	if err != nil {
		return schema.GroupVersionResource{}, err
	}
	gv := gvk.GroupVersion()
	if gv.Empty() {
		gv = DefaultGroupVersions[gvk.Kind]
	}
	return gv.WithResource(plural), nil
}
