package atlas

import (
	"crypto/sha256"
	"encoding/binary"

	"github.com/dioptra-io/iris-converters/trace"
)

// IDFromString derives a numeric Atlas identifier from an opaque string id:
// the first 8 bytes of its SHA-256 digest, read as a little-endian integer.
func IDFromString(s string) uint64 {
	sum := sha256.Sum256([]byte(s))
	return binary.LittleEndian.Uint64(sum[:8])
}

// ProtocolName returns the Atlas protocol name of an IANA protocol number.
func ProtocolName(n uint8) (string, error) {
	switch n {
	case trace.IANAICMPv4:
		return "icmp", nil
	case trace.IANAUDP:
		return "udp", nil
	case trace.IANAICMPv6:
		return "icmp6", nil
	}
	return "", &trace.UnknownProtocolError{Number: int(n)}
}

// NewICMPExtensions builds the extension list of a reply carrying the given
// MPLS label stack: no extension for an empty stack, otherwise one
// extension holding one MPLS object.
func NewICMPExtensions(entries []trace.MPLSEntry) ICMPExtensions {
	if len(entries) == 0 {
		return ICMPExtensions{}
	}
	mpls := make([]MPLSData, len(entries))
	for i, e := range entries {
		mpls[i] = MPLSData{Label: e.Label, Exp: e.Exp, TTL: e.TTL}
		if e.BottomOfStack {
			mpls[i].S = 1
		}
	}
	return ICMPExtensions{{
		Version: 2,
		RFC4884: 1,
		Obj:     []ICMPExtObject{{Class: 1, Type: 1, MPLS: mpls}},
	}}
}

// MPLSEntries returns the label stack carried by the extensions. Only the
// first object of each extension is read.
func (e ICMPExtensions) MPLSEntries() []trace.MPLSEntry {
	var out []trace.MPLSEntry
	for _, ext := range e {
		if len(ext.Obj) == 0 {
			continue
		}
		for _, d := range ext.Obj[0].MPLS {
			out = append(out, trace.MPLSEntry{
				Label:         d.Label,
				Exp:           d.Exp,
				BottomOfStack: d.S != 0,
				TTL:           d.TTL,
			})
		}
	}
	return out
}
