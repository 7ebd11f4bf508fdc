package e2e

import (
	"testing"

	"github.com/moolen/meshprobe/internal/console"
	"github.com/moolen/meshprobe/internal/fixture"
)

func (s *MeshStage) virtual_service_form_is_filled(route console.HTTPRoute) *MeshStage {
	form := console.NewVirtualServiceForm(s.session)
	s.require.NoError(form.TypeName(s.name))
	s.require.NoError(form.AddHTTPRoute(route))
	return s
}

func (s *MeshStage) details_are_collapsed() *MeshStage {
	s.require.NoError(s.session.Click(`[data-testid="collapse-button-close"]`))
	return s
}

func TestVirtualServiceCreate(t *testing.T) {
	given, when, then := NewMeshStage(t)

	given.a_console_environment().and().
		a_resource_name("test-vs").and().
		a_fresh_namespace().and().
		a_logged_in_browser()

	when.resource_list_is_opened(fixture.KindVirtualService).and().
		create_dialog_is_opened().and().
		virtual_service_form_is_filled(console.HTTPRoute{
			MatchName: "test-match",
			URI:       console.URIMatch{Kind: console.URIMatchPrefix, Value: "/wpcatalog"},
			Redirect: console.Redirect{
				URI:       "/v1/bookRatings",
				Authority: "newratings.default.svc.cluster.local",
			},
		}).and().
		resource_is_created()

	then.resource_name_is_visible().and().
		details_are_collapsed().and().
		texts_are_visible(
			"test-match",
			"prefix=/wpcatalog",
			"/v1/bookRatings",
			"newratings.default.svc.cluster.local",
		)
}
