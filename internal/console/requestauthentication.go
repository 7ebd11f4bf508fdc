package console

import (
	"github.com/moolen/meshprobe/internal/fixture"
)

// JWTRule is one entry of spec.jwtRules.
type JWTRule struct {
	Issuer      string
	JwksURI     string
	Audiences   []string
	FromParams  []string
	FromCookies []string
	FromHeaders []JWTHeader
}

// JWTHeader is a header the token is read from.
type JWTHeader struct {
	Name   string
	Prefix string
}

// RequestAuthenticationForm fills the request authentication create form.
type RequestAuthenticationForm struct {
	d Driver
}

func NewRequestAuthenticationForm(d Driver) *RequestAuthenticationForm {
	return &RequestAuthenticationForm{d: d}
}

func (r *RequestAuthenticationForm) TypeName(name string) error {
	f := newForm(r.d)
	f.clearAndType(nameInput(fixture.KindRequestAuthentication), name)
	return f.result("type name")
}

// AddJWTRule adds rule as entry index of spec.jwtRules and collapses it again
// so the next rule's fields are the only visible ones.
func (r *RequestAuthenticationForm) AddJWTRule(rule JWTRule, index int) error {
	if index < 0 {
		return invalid("jwt rule index %d", index)
	}
	if rule.Issuer == "" {
		return invalid("jwt rule issuer must not be empty")
	}

	f := newForm(r.d)
	f.addItem(expand("JWT Rules"))
	f.clearAndType(inputTestID("spec.jwtRules.%d.issuer", index), rule.Issuer)
	f.clearAndType(inputTestID("spec.jwtRules.%d.jwksUri", index), rule.JwksURI)

	f.click(expand("Audiences"))
	for i, audience := range rule.Audiences {
		f.clearAndType(inputTestID("spec.jwtRules.%d.audiences.%d", index, i), audience)
	}

	f.click(expand("From Params"))
	for i, param := range rule.FromParams {
		f.clearAndType(inputTestID("spec.jwtRules.%d.fromParams.%d", index, i), param)
	}

	f.click(expand("From Cookies"))
	for i, cookie := range rule.FromCookies {
		f.clearAndType(inputTestID("spec.jwtRules.%d.fromCookies.%d", index, i), cookie)
	}

	for i, header := range rule.FromHeaders {
		f.addItem(expand("From Headers"))
		f.clearAndType(inputTestID("spec.jwtRules.%d.fromHeaders.%d.name", index, i), header.Name)
		f.clearAndType(inputTestID("spec.jwtRules.%d.fromHeaders.%d.prefix", index, i), header.Prefix)
	}

	f.clickNth(expand("JWT Rule"), index)
	return f.result("add jwt rule")
}

// AddJWTRules adds the rules in order.
func (r *RequestAuthenticationForm) AddJWTRules(rules []JWTRule) error {
	for i, rule := range rules {
		if err := r.AddJWTRule(rule, i); err != nil {
			return err
		}
	}
	return nil
}

// AddMatchLabel fills the workload selector.
func (r *RequestAuthenticationForm) AddMatchLabel(label Label) error {
	if err := validateLabel(label); err != nil {
		return err
	}
	f := newForm(r.d)
	f.clearAndType(`ui5-input[placeholder="Enter key"]:visible`, label.Key)
	f.clearAndType(`ui5-input[placeholder="Enter value"]:visible`, label.Value)
	return f.result("add match label")
}
