package console

import (
	"github.com/moolen/meshprobe/internal/fixture"
)

// URIMatch kinds offered by the string match dropdown.
const (
	URIMatchExact  = "exact"
	URIMatchPrefix = "prefix"
	URIMatchRegex  = "regex"
)

// HTTPRoute is the first entry of spec.http with one match and a redirect.
type HTTPRoute struct {
	MatchName string
	URI       URIMatch
	Redirect  Redirect
}

type URIMatch struct {
	Kind  string
	Value string
}

type Redirect struct {
	URI       string
	Authority string
}

// VirtualServiceForm fills the virtual service create form.
type VirtualServiceForm struct {
	d Driver
}

func NewVirtualServiceForm(d Driver) *VirtualServiceForm {
	return &VirtualServiceForm{d: d}
}

func (v *VirtualServiceForm) TypeName(name string) error {
	f := newForm(v.d)
	f.clearAndType(nameInput(fixture.KindVirtualService), name)
	return f.result("type name")
}

func (v *VirtualServiceForm) AddHTTPRoute(route HTTPRoute) error {
	switch route.URI.Kind {
	case URIMatchExact, URIMatchPrefix, URIMatchRegex:
	default:
		return invalid("uri match %q", route.URI.Kind)
	}

	f := newForm(v.d)
	f.addItem(expand("HTTP"))
	f.addItem(expand("Matches"))
	f.clearAndType(testID("spec.http.0.match.0.name"), route.MatchName)

	f.click(expand("URI"))
	f.chooseFixed(testID("select-dropdown"), route.URI.Kind)
	f.typeFirstEmpty(`[placeholder="Enter value"]:visible`, route.URI.Value)

	f.clickNth(`[aria-label="expand Redirect"]`, 0)
	f.clearAndType(testID("spec.http.0.redirect.uri"), route.Redirect.URI)
	f.clearAndType(testID("spec.http.0.redirect.authority"), route.Redirect.Authority)
	return f.result("add http route")
}
