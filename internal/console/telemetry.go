package console

import (
	"strconv"

	"github.com/moolen/meshprobe/internal/fixture"
)

// Access logging modes.
const (
	ModeClientAndServer = "CLIENT_AND_SERVER"
	ModeClient          = "CLIENT"
	ModeServer          = "SERVER"
)

// AccessLogging is the first entry of spec.accessLogging.
type AccessLogging struct {
	Mode             string
	FilterExpression string
}

// Tracing is the first entry of spec.tracing with a single provider.
type Tracing struct {
	RandomSamplingPercentage float64
	ProviderName             string
}

// TelemetryForm fills the telemetry create form.
type TelemetryForm struct {
	d Driver
}

func NewTelemetryForm(d Driver) *TelemetryForm {
	return &TelemetryForm{d: d}
}

func (t *TelemetryForm) TypeName(name string) error {
	f := newForm(t.d)
	f.clearAndType(nameInput(fixture.KindTelemetry), name)
	return f.result("type name")
}

func (t *TelemetryForm) AddAccessLogging(log AccessLogging) error {
	switch log.Mode {
	case ModeClientAndServer, ModeClient, ModeServer:
	default:
		return invalid("access logging mode %q", log.Mode)
	}

	f := newForm(t.d)
	f.addItem(expand("Access logging configuration"))
	f.choose(testID("spec.accessLogging.0.match.mode"), log.Mode)
	f.clearAndType(inputTestID("spec.accessLogging.0.filter.expression"), log.FilterExpression)
	return f.result("add access logging")
}

func (t *TelemetryForm) AddTracing(tracing Tracing) error {
	if tracing.RandomSamplingPercentage < 0 || tracing.RandomSamplingPercentage > 100 {
		return invalid("sampling percentage %v out of range 0-100", tracing.RandomSamplingPercentage)
	}

	f := newForm(t.d)
	f.addItem(expand("Tracing configuration"))
	f.clearAndType(inputTestID("spec.tracing.0.randomSamplingPercentage"),
		strconv.FormatFloat(tracing.RandomSamplingPercentage, 'f', -1, 64))
	f.addItem(expand("Providers"))
	f.clearAndType(inputTestID("spec.tracing.0.providers.0.name"), tracing.ProviderName)
	return f.result("add tracing")
}
