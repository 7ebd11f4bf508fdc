package console

// Protocol is a port protocol offered by the gateway and sidecar forms.
type Protocol string

const (
	ProtocolHTTP  Protocol = "HTTP"
	ProtocolHTTPS Protocol = "HTTPS"
	ProtocolGRPC  Protocol = "GRPC"
	ProtocolHTTP2 Protocol = "HTTP2"
	ProtocolTCP   Protocol = "TCP"
)

func (p Protocol) valid() bool {
	switch p {
	case ProtocolHTTP, ProtocolHTTPS, ProtocolGRPC, ProtocolHTTP2, ProtocolTCP:
		return true
	}
	return false
}

// Label is a key/value pair entered in a match labels editor.
type Label struct {
	Key   string
	Value string
}

func validatePort(port int) error {
	if port < 1 || port > 65535 {
		return invalid("port %d out of range 1-65535", port)
	}
	return nil
}

func validateProtocol(p Protocol) error {
	if !p.valid() {
		return invalid("protocol %q", p)
	}
	return nil
}

func validateLabel(l Label) error {
	if l.Key == "" {
		return invalid("label key must not be empty")
	}
	return nil
}

// addMatchLabel fills the first empty key/value row of a labels editor.
func addMatchLabel(f *form, l Label) {
	f.typeFirstEmpty(`[placeholder="Enter key"]:visible`, l.Key)
	f.typeFirstEmpty(`[placeholder="Enter value"]:visible`, l.Value)
}
