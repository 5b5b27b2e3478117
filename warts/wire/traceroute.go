package wire

import (
	"encoding/binary"
	"math"
)

// Traceroute is a scamper traceroute object. Zero values stand for absent
// parameters, except for the address parameters and the legacy address
// ids, which are nil when absent.
type Traceroute struct {
	ListID     uint32
	CycleID    uint32
	SrcAddrID  *uint32 // legacy global table id
	DstAddrID  *uint32 // legacy global table id
	Start      Timeval
	StopReason uint8
	StopData   uint8
	Flags      uint8
	Attempts   uint8
	HopLimit   uint8
	TraceType  TraceType
	ProbeSize  uint16
	SrcPort    uint16
	DstPort    uint16
	FirstTTL   uint8
	TOS        uint8
	Timeout    uint8
	Loops      uint8
	ProbeHop   uint16
	GapLimit   uint8
	GapAction  uint8
	LoopAction uint8
	ProbesSent uint16
	MinWait    uint8
	Confidence uint8
	SrcAddr    *Address
	DstAddr    *Address
	UserID     uint32
	Offset     uint16
	RouterAddr *Address // router the probes were sent through
	Hops       []Hop
}

func (t *Traceroute) Type() ObjectType { return TypeTraceroute }

// Hop is one reply to a traceroute probe.
type Hop struct {
	AddrID      *uint32 // legacy global table id
	ProbeTTL    uint8
	ReplyTTL    uint8
	Flags       uint8
	ProbeID     uint8
	RTT         uint32 // microseconds
	ICMPType    uint8
	ICMPCode    uint8
	ProbeSize   uint16
	ReplySize   uint16
	IPID        uint16
	TOS         uint8
	NextHopMTU  uint16
	QuotedIPLen uint16
	QuotedTTL   uint8
	TCPFlags    uint8
	QuotedTOS   uint8
	ICMPExt     []ICMPExtension
	Addr        *Address
	Tx          Timeval
}

const (
	traceParamCount = 30
	hopParamCount   = 19
)

func decodeTraceroute(r *reader) *Traceroute {
	t := &Traceroute{}
	r.params(traceParamCount, func(flag int) {
		switch flag {
		case 1:
			t.ListID = r.u32()
		case 2:
			t.CycleID = r.u32()
		case 3:
			id := r.u32()
			t.SrcAddrID = &id
		case 4:
			id := r.u32()
			t.DstAddrID = &id
		case 5:
			t.Start = r.timeval()
		case 6:
			t.StopReason = r.u8()
		case 7:
			t.StopData = r.u8()
		case 8:
			t.Flags = r.u8()
		case 9:
			t.Attempts = r.u8()
		case 10:
			t.HopLimit = r.u8()
		case 11:
			t.TraceType = TraceType(r.u8())
		case 12:
			t.ProbeSize = r.u16()
		case 13:
			t.SrcPort = r.u16()
		case 14:
			t.DstPort = r.u16()
		case 15:
			t.FirstTTL = r.u8()
		case 16:
			t.TOS = r.u8()
		case 17:
			t.Timeout = r.u8()
		case 18:
			t.Loops = r.u8()
		case 19:
			t.ProbeHop = r.u16()
		case 20:
			t.GapLimit = r.u8()
		case 21:
			t.GapAction = r.u8()
		case 22:
			t.LoopAction = r.u8()
		case 23:
			t.ProbesSent = r.u16()
		case 24:
			t.MinWait = r.u8()
		case 25:
			t.Confidence = r.u8()
		case 26:
			t.SrcAddr = r.address()
		case 27:
			t.DstAddr = r.address()
		case 28:
			t.UserID = r.u32()
		case 29:
			t.Offset = r.u16()
		case 30:
			t.RouterAddr = r.address()
		}
	})

	n := int(r.u16())
	if r.err != nil {
		return t
	}
	t.Hops = make([]Hop, 0, min(n, r.remaining()))
	for i := 0; i < n && r.err == nil; i++ {
		t.Hops = append(t.Hops, decodeHop(r))
	}
	// Trailing attributes (path MTU, last ditch probes) end with a zero
	// marker; they are bounded by the object length and ignored here.
	if r.err == nil && r.remaining() >= 2 {
		r.u16()
	}
	return t
}

func decodeHop(r *reader) Hop {
	var h Hop
	r.params(hopParamCount, func(flag int) {
		switch flag {
		case 1:
			id := r.u32()
			h.AddrID = &id
		case 2:
			h.ProbeTTL = r.u8()
		case 3:
			h.ReplyTTL = r.u8()
		case 4:
			h.Flags = r.u8()
		case 5:
			h.ProbeID = r.u8()
		case 6:
			h.RTT = r.u32()
		case 7:
			v := r.u16()
			h.ICMPType, h.ICMPCode = uint8(v>>8), uint8(v)
		case 8:
			h.ProbeSize = r.u16()
		case 9:
			h.ReplySize = r.u16()
		case 10:
			h.IPID = r.u16()
		case 11:
			h.TOS = r.u8()
		case 12:
			h.NextHopMTU = r.u16()
		case 13:
			h.QuotedIPLen = r.u16()
		case 14:
			h.QuotedTTL = r.u8()
		case 15:
			h.TCPFlags = r.u8()
		case 16:
			h.QuotedTOS = r.u8()
		case 17:
			h.ICMPExt = r.icmpExtensions()
		case 18:
			h.Addr = r.address()
		case 19:
			h.Tx = r.timeval()
		}
	})
	return h
}

func (t *Traceroute) appendBody(dst []byte) ([]byte, error) {
	var p params
	if t.ListID != 0 {
		p.u32(1, t.ListID)
	}
	if t.CycleID != 0 {
		p.u32(2, t.CycleID)
	}
	if t.SrcAddrID != nil {
		p.u32(3, *t.SrcAddrID)
	}
	if t.DstAddrID != nil {
		p.u32(4, *t.DstAddrID)
	}
	if !t.Start.IsZero() {
		p.timeval(5, t.Start)
	}
	p.u8(6, t.StopReason)
	p.u8(7, t.StopData)
	if t.Flags != 0 {
		p.u8(8, t.Flags)
	}
	if t.Attempts != 0 {
		p.u8(9, t.Attempts)
	}
	if t.HopLimit != 0 {
		p.u8(10, t.HopLimit)
	}
	if t.TraceType != 0 {
		p.u8(11, uint8(t.TraceType))
	}
	if t.ProbeSize != 0 {
		p.u16(12, t.ProbeSize)
	}
	if t.SrcPort != 0 {
		p.u16(13, t.SrcPort)
	}
	if t.DstPort != 0 {
		p.u16(14, t.DstPort)
	}
	if t.FirstTTL != 0 {
		p.u8(15, t.FirstTTL)
	}
	if t.TOS != 0 {
		p.u8(16, t.TOS)
	}
	if t.Timeout != 0 {
		p.u8(17, t.Timeout)
	}
	if t.Loops != 0 {
		p.u8(18, t.Loops)
	}
	if t.ProbeHop != 0 {
		p.u16(19, t.ProbeHop)
	}
	if t.GapLimit != 0 {
		p.u8(20, t.GapLimit)
	}
	if t.GapAction != 0 {
		p.u8(21, t.GapAction)
	}
	if t.LoopAction != 0 {
		p.u8(22, t.LoopAction)
	}
	if t.ProbesSent != 0 {
		p.u16(23, t.ProbesSent)
	}
	if t.MinWait != 0 {
		p.u8(24, t.MinWait)
	}
	if t.Confidence != 0 {
		p.u8(25, t.Confidence)
	}
	if t.SrcAddr != nil {
		p.address(26, t.SrcAddr)
	}
	if t.DstAddr != nil {
		p.address(27, t.DstAddr)
	}
	if t.UserID != 0 {
		p.u32(28, t.UserID)
	}
	if t.Offset != 0 {
		p.u16(29, t.Offset)
	}
	if t.RouterAddr != nil {
		p.address(30, t.RouterAddr)
	}
	dst, err := p.appendTo(dst)
	if err != nil {
		return nil, err
	}

	if len(t.Hops) > math.MaxUint16 {
		return nil, ErrTooManyHops
	}
	dst = binary.BigEndian.AppendUint16(dst, uint16(len(t.Hops)))
	for i := range t.Hops {
		if dst, err = t.Hops[i].appendTo(dst); err != nil {
			return nil, err
		}
	}
	return binary.BigEndian.AppendUint16(dst, 0), nil
}

func (h *Hop) appendTo(dst []byte) ([]byte, error) {
	var p params
	if h.AddrID != nil {
		p.u32(1, *h.AddrID)
	}
	p.u8(2, h.ProbeTTL)
	p.u8(3, h.ReplyTTL)
	if h.Flags != 0 {
		p.u8(4, h.Flags)
	}
	if h.ProbeID != 0 {
		p.u8(5, h.ProbeID)
	}
	p.u32(6, h.RTT)
	p.u16(7, uint16(h.ICMPType)<<8|uint16(h.ICMPCode))
	if h.ProbeSize != 0 {
		p.u16(8, h.ProbeSize)
	}
	if h.ReplySize != 0 {
		p.u16(9, h.ReplySize)
	}
	if h.IPID != 0 {
		p.u16(10, h.IPID)
	}
	if h.TOS != 0 {
		p.u8(11, h.TOS)
	}
	if h.NextHopMTU != 0 {
		p.u16(12, h.NextHopMTU)
	}
	if h.QuotedIPLen != 0 {
		p.u16(13, h.QuotedIPLen)
	}
	if h.QuotedTTL != 0 {
		p.u8(14, h.QuotedTTL)
	}
	if h.TCPFlags != 0 {
		p.u8(15, h.TCPFlags)
	}
	if h.QuotedTOS != 0 {
		p.u8(16, h.QuotedTOS)
	}
	if len(h.ICMPExt) > 0 {
		p.icmpExtensions(17, h.ICMPExt)
	}
	if h.Addr != nil {
		p.address(18, h.Addr)
	}
	if !h.Tx.IsZero() {
		p.timeval(19, h.Tx)
	}
	return p.appendTo(dst)
}
