package console

import (
	"strconv"

	"github.com/moolen/meshprobe/internal/fixture"
)

// SidecarIngress is the first entry of spec.ingress.
type SidecarIngress struct {
	Name            string
	Port            int
	Protocol        Protocol
	DefaultEndpoint string
}

// SidecarForm fills the sidecar create form.
type SidecarForm struct {
	d Driver
}

func NewSidecarForm(d Driver) *SidecarForm {
	return &SidecarForm{d: d}
}

func (s *SidecarForm) TypeName(name string) error {
	f := newForm(s.d)
	f.clearAndType(nameInput(fixture.KindSidecar), name)
	return f.result("type name")
}

func (s *SidecarForm) AddIngress(ingress SidecarIngress) error {
	if err := validatePort(ingress.Port); err != nil {
		return err
	}
	if err := validateProtocol(ingress.Protocol); err != nil {
		return err
	}

	f := newForm(s.d)
	f.addItem(expand("Ingress"))
	f.click(expand("Port"))
	f.clearAndType(testID("spec.ingress.0.port.number"), strconv.Itoa(ingress.Port))
	f.choose(testID("spec.ingress.0.port.protocol"), string(ingress.Protocol))
	// the port name shares the "Sidecar name" label with the resource name,
	// which is already filled at this point
	f.clearAndTypeEmpty(`[aria-label="Sidecar name"]`, ingress.Name)
	f.clearAndType(testID("spec.ingress.0.defaultEndpoint"), ingress.DefaultEndpoint)
	return f.result("add ingress")
}
