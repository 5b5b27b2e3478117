// Package wire encodes and decodes the objects of scamper's warts format.
//
// A warts file is a sequence of objects, each framed by an 8-byte header
// (magic, object type, body length). Object bodies hold fixed fields
// followed by a parameter block: a variable-length flag set, where each
// byte carries 7 flags and sets its high bit when another byte follows, the
// total length of the parameters, then the parameters themselves in flag
// order. All integers are big-endian.
package wire

import (
	"fmt"
	"time"
)

const (
	Magic     uint16 = 0x1205
	headerLen        = 8
)

type ObjectType uint16

const (
	TypeList            ObjectType = 0x0001
	TypeCycleStart      ObjectType = 0x0002
	TypeCycleDefinition ObjectType = 0x0003
	TypeCycleStop       ObjectType = 0x0004
	TypeAddress         ObjectType = 0x0005
	TypeTraceroute      ObjectType = 0x0006
)

func (t ObjectType) String() string {
	switch t {
	case TypeList:
		return "list"
	case TypeCycleStart:
		return "cycle start"
	case TypeCycleDefinition:
		return "cycle definition"
	case TypeCycleStop:
		return "cycle stop"
	case TypeAddress:
		return "address"
	case TypeTraceroute:
		return "traceroute"
	}
	return fmt.Sprintf("object type %#06x", uint16(t))
}

// Object is one decoded warts object.
type Object interface {
	Type() ObjectType
}

// Unknown keeps the body of objects this package does not decode.
type Unknown struct {
	Kind ObjectType
	Data []byte
}

func (u *Unknown) Type() ObjectType { return u.Kind }

// Timeval is a timestamp with microsecond precision. The zero Timeval
// stands for an absent timestamp.
type Timeval struct {
	Sec  uint32
	Usec uint32
}

func TimevalFromTime(t time.Time) Timeval {
	if t.IsZero() || t.Unix() <= 0 {
		return Timeval{}
	}
	return Timeval{Sec: uint32(t.Unix()), Usec: uint32(t.Nanosecond() / 1000)}
}

func (tv Timeval) IsZero() bool {
	return tv.Sec == 0 && tv.Usec == 0
}

func (tv Timeval) Time() time.Time {
	return time.Unix(int64(tv.Sec), int64(tv.Usec)*1000).UTC()
}

// TraceType is the probing method of a traceroute.
type TraceType uint8

const (
	TraceTypeICMPEcho      TraceType = 0x01
	TraceTypeUDP           TraceType = 0x02
	TraceTypeTCP           TraceType = 0x03
	TraceTypeICMPEchoParis TraceType = 0x04
	TraceTypeUDPParis      TraceType = 0x05
	TraceTypeTCPAck        TraceType = 0x06
)

func (t TraceType) String() string {
	switch t {
	case TraceTypeICMPEcho:
		return "icmp-echo"
	case TraceTypeUDP:
		return "udp"
	case TraceTypeTCP:
		return "tcp"
	case TraceTypeICMPEchoParis:
		return "icmp-echo-paris"
	case TraceTypeUDPParis:
		return "udp-paris"
	case TraceTypeTCPAck:
		return "tcp-ack"
	}
	return fmt.Sprintf("trace type %d", uint8(t))
}
