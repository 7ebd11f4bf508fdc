package e2e

import (
	"testing"

	"github.com/moolen/meshprobe/internal/console"
	"github.com/moolen/meshprobe/internal/fixture"
)

func (s *MeshStage) authorization_policy_form_is_filled(action console.AuthorizationPolicyAction, rule console.AuthorizationPolicyRule) *MeshStage {
	form := console.NewAuthorizationPolicyForm(s.session)
	s.require.NoError(form.SelectAction(action))
	s.require.NoError(form.TypeName(s.name))
	s.require.NoError(form.AddRule(rule))
	return s
}

func (s *MeshStage) authorization_policy_action_is_changed(action console.AuthorizationPolicyAction) *MeshStage {
	s.require.NoError(console.NewAuthorizationPolicyForm(s.session).SelectAction(action))
	return s
}

// TestAuthorizationPolicyCreate creates an AUDIT policy with one rule and
// checks the rendered details.
func TestAuthorizationPolicyCreate(t *testing.T) {
	given, when, then := NewMeshStage(t)

	given.a_console_environment().and().
		a_resource_name("test-ap").and().
		a_fresh_namespace().and().
		a_logged_in_browser()

	when.resource_list_is_opened(fixture.KindAuthorizationPolicy).and().
		create_dialog_is_opened().and().
		authorization_policy_form_is_filled(console.ActionAudit, console.AuthorizationPolicyRule{
			When: console.RuleCondition{Key: "request.auth.claims[iss]", Value: "https://test-value.com"},
			To:   console.RuleOperation{Method: "GET", Path: "/user/profile/*"},
		}).and().
		resource_is_created()

	then.resource_name_is_visible().and().
		texts_are_visible("AUDIT", "Matches all Pods in the Namespace").and().
		text_is_clicked("Rule #1 to when").and().
		text_is_clicked("To #1 methods paths").and().
		texts_are_visible(
			"/user/profile/*",
			"request.auth.claims[iss]",
			"https://test-value.com",
			"Operation",
			"GET",
		)
}

// TestAuthorizationPolicyUpdateAction edits the action of a policy seeded
// through the cluster API.
func TestAuthorizationPolicyUpdateAction(t *testing.T) {
	given, when, then := NewMeshStage(t)

	given.a_console_environment().and().
		a_resource_name("test-ap").and().
		a_fresh_namespace().and().
		an_authorization_policy_exists().and().
		a_logged_in_browser()

	when.resource_details_are_opened(fixture.KindAuthorizationPolicy).and().
		edit_tab_is_opened().and().
		authorization_policy_action_is_changed(console.ActionAllow).and().
		changes_are_saved()

	then.texts_are_visible("ALLOW")
}
