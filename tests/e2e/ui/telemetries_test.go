package e2e

import (
	"testing"

	"github.com/moolen/meshprobe/internal/console"
	"github.com/moolen/meshprobe/internal/fixture"
)

func (s *MeshStage) telemetry_form_is_filled(logging console.AccessLogging, tracing console.Tracing) *MeshStage {
	form := console.NewTelemetryForm(s.session)
	s.require.NoError(form.TypeName(s.name))
	s.require.NoError(form.AddAccessLogging(logging))
	s.require.NoError(form.AddTracing(tracing))
	return s
}

func TestTelemetryCreate(t *testing.T) {
	given, when, then := NewMeshStage(t)

	given.a_console_environment().and().
		a_resource_name("test-telemetry").and().
		a_fresh_namespace().and().
		a_logged_in_browser()

	when.resource_list_is_opened(fixture.KindTelemetry).and().
		create_dialog_is_opened().and().
		telemetry_form_is_filled(
			console.AccessLogging{Mode: console.ModeServer, FilterExpression: "response.code >= 400"},
			console.Tracing{RandomSamplingPercentage: 100, ProviderName: "test-provider"},
		).and().
		resource_is_created()

	then.resource_name_is_visible().and().
		text_is_clicked("AccessLogging #1").and().
		text_is_clicked("Tracing #1").and().
		texts_are_visible("SERVER", "response.code >= 400", "100", "test-provider")
}
