package console

import (
	"strconv"

	"github.com/moolen/meshprobe/internal/fixture"
)

// GatewayServer is the first entry of spec.servers.
type GatewayServer struct {
	Port     int
	Protocol Protocol
	Name     string
	Host     string
}

// GatewayTLS switches the first server to TLS termination.
type GatewayTLS struct {
	Port       int
	Protocol   Protocol
	SecretName string
	Mode       string
}

var tlsModes = map[string]bool{
	"PASSTHROUGH":      true,
	"SIMPLE":           true,
	"MUTUAL":           true,
	"AUTO_PASSTHROUGH": true,
	"ISTIO_MUTUAL":     true,
	"OPTIONAL_MUTUAL":  true,
}

// GatewayForm fills the gateway create/edit form.
type GatewayForm struct {
	d Driver
}

func NewGatewayForm(d Driver) *GatewayForm {
	return &GatewayForm{d: d}
}

func (g *GatewayForm) TypeName(name string) error {
	f := newForm(g.d)
	f.clearAndType(nameInput(fixture.KindGateway), name)
	return f.result("type name")
}

// AddServer adds a server with one port and one host.
func (g *GatewayForm) AddServer(server GatewayServer) error {
	if err := validatePort(server.Port); err != nil {
		return err
	}
	if err := validateProtocol(server.Protocol); err != nil {
		return err
	}

	f := newForm(g.d)
	f.addItem(expand("Servers"))
	f.clearAndType(testID("spec.servers.0.port.number"), strconv.Itoa(server.Port))
	f.choose(testID("spec.servers.0.port.protocol"), string(server.Protocol))
	// the second input labelled "Gateway name..." is the server name
	f.typeNth(`[aria-label^="Gateway name"]:visible`, 1, server.Name)
	f.click(expand("Hosts"))
	f.clearAndType(testID("spec.servers.0.hosts.0"), server.Host)
	return f.result("add server")
}

// EditServerTLS changes port and protocol of the first server and configures
// its TLS credential. Used from the edit tab of an existing gateway.
func (g *GatewayForm) EditServerTLS(tls GatewayTLS) error {
	if err := validatePort(tls.Port); err != nil {
		return err
	}
	if err := validateProtocol(tls.Protocol); err != nil {
		return err
	}
	if !tlsModes[tls.Mode] {
		return invalid("tls mode %q", tls.Mode)
	}
	if tls.SecretName == "" {
		return invalid("tls credential secret must not be empty")
	}

	f := newForm(g.d)
	f.click(expand("Servers"))
	f.choose(testID("spec.servers.0.port.protocol"), string(tls.Protocol))
	f.clearAndType(testID("spec.servers.0.port.number")+":visible", strconv.Itoa(tls.Port))
	f.click(expand("Port"))
	f.click(expand("TLS"))
	f.typeNth(`[aria-label="Choose Secret"]:visible`, 0, tls.SecretName)
	f.choose(testID("spec.servers.0.tls.mode"), tls.Mode)
	return f.result("edit server tls")
}

// AddSelector sets a workload selector label on the gateway.
func (g *GatewayForm) AddSelector(label Label) error {
	if err := validateLabel(label); err != nil {
		return err
	}
	f := newForm(g.d)
	addMatchLabel(f, label)
	return f.result("add selector")
}
