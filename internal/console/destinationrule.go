package console

import (
	"github.com/moolen/meshprobe/internal/fixture"
)

// DestinationRuleForm fills the destination rule create form.
type DestinationRuleForm struct {
	d Driver
}

func NewDestinationRuleForm(d Driver) *DestinationRuleForm {
	return &DestinationRuleForm{d: d}
}

func (r *DestinationRuleForm) TypeName(name string) error {
	f := newForm(r.d)
	f.clearAndType(nameInput(fixture.KindDestinationRule), name)
	return f.result("type name")
}

func (r *DestinationRuleForm) TypeHost(host string) error {
	if host == "" {
		return invalid("host must not be empty")
	}
	f := newForm(r.d)
	f.clearAndType(inputTestID("spec.host"), host)
	return f.result("type host")
}
