package e2e

import (
	"testing"

	"github.com/moolen/meshprobe/internal/console"
	"github.com/moolen/meshprobe/internal/fixture"
)

const destinationRuleHost = "ratings.prod.svc.cluster.local"

func (s *MeshStage) destination_rule_form_is_filled(host string) *MeshStage {
	form := console.NewDestinationRuleForm(s.session)
	s.require.NoError(form.TypeName(s.name))
	s.require.NoError(form.TypeHost(host))
	return s
}

// TestDestinationRuleCreate checks that optional sections stay hidden for a
// rule with only a host.
func TestDestinationRuleCreate(t *testing.T) {
	given, when, then := NewMeshStage(t)

	given.a_console_environment().and().
		a_resource_name("test-dr").and().
		a_fresh_namespace().and().
		a_logged_in_browser()

	when.resource_list_is_opened(fixture.KindDestinationRule).and().
		create_dialog_is_opened().and().
		destination_rule_form_is_filled(destinationRuleHost).and().
		resource_is_created()

	then.resource_name_is_visible().and().
		texts_are_visible(destinationRuleHost).and().
		texts_are_absent("Subsets", "Workload Selector")
}
