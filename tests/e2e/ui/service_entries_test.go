package e2e

import (
	"testing"

	"github.com/moolen/meshprobe/internal/console"
	"github.com/moolen/meshprobe/internal/fixture"
)

func (s *MeshStage) service_entry_form_is_filled(host, resolution, location, address string) *MeshStage {
	form := console.NewServiceEntryForm(s.session)
	s.require.NoError(form.TypeName(s.name))
	s.require.NoError(form.TypeHost(host))
	s.require.NoError(form.SelectResolution(resolution))
	s.require.NoError(form.SelectLocation(location))
	s.require.NoError(form.TypeAddress(address))
	return s
}

func TestServiceEntryCreate(t *testing.T) {
	given, when, then := NewMeshStage(t)

	given.a_console_environment().and().
		a_resource_name("test-se").and().
		a_fresh_namespace().and().
		a_logged_in_browser()

	when.resource_list_is_opened(fixture.KindServiceEntry).and().
		create_dialog_is_opened().and().
		service_entry_form_is_filled("test.com", "STATIC", "MESH_EXTERNAL", "192.192.192.192/24").and().
		resource_is_created()

	then.resource_name_is_visible().and().
		content_contains("#content-wrap", "STATIC", "MESH_EXTERNAL", "test.com", "192.192.192.192/24")
}
