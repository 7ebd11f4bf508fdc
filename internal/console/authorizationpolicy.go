package console

import (
	"github.com/moolen/meshprobe/internal/fixture"
)

// AuthorizationPolicyAction is the value of spec.action.
type AuthorizationPolicyAction string

const (
	ActionAllow  AuthorizationPolicyAction = "ALLOW"
	ActionDeny   AuthorizationPolicyAction = "DENY"
	ActionAudit  AuthorizationPolicyAction = "AUDIT"
	ActionCustom AuthorizationPolicyAction = "CUSTOM"
)

var httpMethods = map[string]bool{
	"GET": true, "POST": true, "PUT": true, "DELETE": true, "PATCH": true,
	"HEAD": true, "OPTIONS": true, "CONNECT": true, "TRACE": true,
}

// AuthorizationPolicyRule is a single rule with one condition and one operation.
type AuthorizationPolicyRule struct {
	When RuleCondition
	To   RuleOperation
}

// RuleCondition matches a request attribute against a value.
type RuleCondition struct {
	Key   string
	Value string
}

// RuleOperation matches the HTTP method and path of a request.
type RuleOperation struct {
	Method string
	Path   string
}

// AuthorizationPolicyForm fills the authorization policy create/edit form.
type AuthorizationPolicyForm struct {
	d Driver
}

func NewAuthorizationPolicyForm(d Driver) *AuthorizationPolicyForm {
	return &AuthorizationPolicyForm{d: d}
}

func (p *AuthorizationPolicyForm) SelectAction(action AuthorizationPolicyAction) error {
	switch action {
	case ActionAllow, ActionDeny, ActionAudit, ActionCustom:
	default:
		return invalid("authorization policy action %q", action)
	}
	f := newForm(p.d)
	f.choose(testID("spec.action"), string(action))
	return f.result("select action")
}

func (p *AuthorizationPolicyForm) TypeName(name string) error {
	f := newForm(p.d)
	f.clearAndType(nameInput(fixture.KindAuthorizationPolicy), name)
	return f.result("type name")
}

// AddRule adds the first rule with a when condition and a to operation.
func (p *AuthorizationPolicyForm) AddRule(rule AuthorizationPolicyRule) error {
	if !httpMethods[rule.To.Method] {
		return invalid("http method %q", rule.To.Method)
	}
	if rule.When.Key == "" {
		return invalid("rule condition key must not be empty")
	}

	f := newForm(p.d)
	f.addItem(expand("Rules"))
	f.addItem(expand("When"))
	f.clearAndType(testID("spec.rules.0.when.0.key"), rule.When.Key)
	f.click(expand("Values"))
	f.clearAndType(testID("spec.rules.0.when.0.values.0"), rule.When.Value)

	f.addItem(expand("To"))
	f.click(expand("Methods"))
	f.clearAndType(testID("spec.rules.0.to.0.operation.methods.0"), rule.To.Method)
	f.click(expand("Paths"))
	f.clearAndType(testID("spec.rules.0.to.0.operation.paths.0"), rule.To.Path)
	return f.result("add rule")
}

// AddSelector restricts the policy to workloads carrying the label.
func (p *AuthorizationPolicyForm) AddSelector(label Label) error {
	if err := validateLabel(label); err != nil {
		return err
	}
	f := newForm(p.d)
	addMatchLabel(f, label)
	return f.result("add selector")
}
