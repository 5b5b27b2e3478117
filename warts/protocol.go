package warts

import (
	"github.com/dioptra-io/iris-converters/trace"
	"github.com/dioptra-io/iris-converters/warts/wire"
)

// Protocol returns the canonical protocol probed by a trace type.
func Protocol(t wire.TraceType) (trace.Protocol, error) {
	switch t {
	case wire.TraceTypeICMPEcho, wire.TraceTypeICMPEchoParis:
		return trace.ICMP, nil
	case wire.TraceTypeUDP, wire.TraceTypeUDPParis:
		return trace.UDP, nil
	case wire.TraceTypeTCP, wire.TraceTypeTCPAck:
		return trace.TCP, nil
	}
	return 0, &trace.UnknownProtocolError{Name: t.String()}
}

// TraceType returns the trace type written for a canonical protocol. ICMP
// and UDP traceroutes are written as their Paris variants, since canonical
// flows keep a fixed port pair.
func TraceType(p trace.Protocol) (wire.TraceType, error) {
	switch p {
	case trace.ICMP:
		return wire.TraceTypeICMPEchoParis, nil
	case trace.UDP:
		return wire.TraceTypeUDPParis, nil
	case trace.TCP:
		return wire.TraceTypeTCP, nil
	}
	return 0, &trace.UnknownProtocolError{Name: p.String()}
}
