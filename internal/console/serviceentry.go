package console

import (
	"github.com/moolen/meshprobe/internal/fixture"
)

// ServiceEntryForm fills the service entry create form.
type ServiceEntryForm struct {
	d Driver
}

func NewServiceEntryForm(d Driver) *ServiceEntryForm {
	return &ServiceEntryForm{d: d}
}

func (s *ServiceEntryForm) TypeName(name string) error {
	f := newForm(s.d)
	f.clearAndType(nameInput(fixture.KindServiceEntry), name)
	return f.result("type name")
}

func (s *ServiceEntryForm) TypeHost(host string) error {
	f := newForm(s.d)
	f.click(expand("Hosts"))
	f.clearAndType(testID("spec.hosts.0")+":visible", host)
	return f.result("type host")
}

// SelectResolution picks NONE, STATIC, DNS or DNS_ROUND_ROBIN.
func (s *ServiceEntryForm) SelectResolution(resolution string) error {
	f := newForm(s.d)
	f.choose(testID("spec.resolution"), resolution)
	return f.result("select resolution")
}

// SelectLocation picks MESH_EXTERNAL or MESH_INTERNAL.
func (s *ServiceEntryForm) SelectLocation(location string) error {
	f := newForm(s.d)
	f.choose(testID("spec.location"), location)
	return f.result("select location")
}

func (s *ServiceEntryForm) TypeAddress(address string) error {
	f := newForm(s.d)
	f.click(expand("Addresses"))
	f.clearAndType(testID("spec.addresses.0"), address)
	return f.result("type address")
}
