package warts

import (
	"net/netip"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"github.com/dioptra-io/iris-converters/trace"
	"github.com/dioptra-io/iris-converters/warts/wire"
)

// toCanonical converts a dereferenced traceroute object. The measurement is
// identified by the cycle id and the agent by the monitor name.
func toCanonical(t *wire.Traceroute, cycleID uint32, monitor string) (trace.Traceroute, error) {
	proto, err := Protocol(t.TraceType)
	if err != nil {
		return trace.Traceroute{}, err
	}
	start := trace.Epoch
	if !t.Start.IsZero() {
		start = t.Start.Time()
	}

	flow := trace.Flow{
		SrcPort: t.SrcPort,
		DstPort: t.DstPort,
		Replies: make([]trace.Reply, 0, len(t.Hops)),
	}
	for i := range t.Hops {
		r, err := hopReply(&t.Hops[i])
		if err != nil {
			return trace.Traceroute{}, errors.Wrapf(err, "hop %d", i)
		}
		flow.Replies = append(flow.Replies, r)
	}
	end := start
	if len(flow.Replies) > 0 {
		_, end, _ = flow.TimeRange()
	}

	return trace.Traceroute{
		MeasurementID: strconv.FormatUint(uint64(cycleID), 10),
		AgentID:       monitor,
		StartTime:     start,
		EndTime:       end,
		Protocol:      proto,
		SrcAddr:       literal(t.SrcAddr),
		DstAddr:       literal(t.DstAddr),
		Flows:         []trace.Flow{flow},
	}, nil
}

func hopReply(h *wire.Hop) (trace.Reply, error) {
	ts := trace.Epoch
	if !h.Tx.IsZero() {
		ts = h.Tx.Time().Add(time.Duration(h.RTT) * time.Microsecond)
	}
	var mpls []trace.MPLSEntry
	for _, ext := range h.ICMPExt {
		if !ext.IsMPLS() {
			continue
		}
		labels, err := ext.MPLSLabels()
		if err != nil {
			return trace.Reply{}, err
		}
		for _, l := range labels {
			mpls = append(mpls, trace.MPLSEntry{Label: l.Label, Exp: l.Exp, BottomOfStack: l.BottomOfStack, TTL: l.TTL})
		}
	}
	return trace.Reply{
		Timestamp:  ts,
		ProbeTTL:   h.ProbeTTL,
		QuotedTTL:  h.QuotedTTL,
		TTL:        h.ReplyTTL,
		Size:       h.ReplySize,
		MPLSLabels: mpls,
		Addr:       literal(h.Addr),
		ICMPType:   h.ICMPType,
		ICMPCode:   h.ICMPCode,
		RTT:        trace.RTTFromMicros(h.RTT),
	}, nil
}

// literal returns the address of a dereferenced address parameter.
func literal(a *wire.Address) netip.Addr {
	if a == nil || a.Ref {
		return trace.Unspecified
	}
	return trace.To128(a.IP)
}

// fromCanonical builds the traceroute object of one flow. Addresses are
// written literally on first use within the object and as references to
// the object's own table afterwards.
func fromCanonical(t *trace.Traceroute, f *trace.Flow, tt wire.TraceType, listID, cycleID uint32) (*wire.Traceroute, error) {
	var tbl addressTable
	rec := &wire.Traceroute{
		ListID:    listID,
		CycleID:   cycleID,
		Start:     wire.TimevalFromTime(t.StartTime),
		TraceType: tt,
		SrcPort:   f.SrcPort,
		DstPort:   f.DstPort,
		SrcAddr:   tbl.address(t.SrcAddr),
		DstAddr:   tbl.address(t.DstAddr),
		Hops:      make([]wire.Hop, 0, len(f.Replies)),
	}
	for i := range f.Replies {
		h, err := replyHop(&f.Replies[i], &tbl)
		if err != nil {
			return nil, errors.Wrapf(err, "reply %d", i)
		}
		rec.Hops = append(rec.Hops, h)
	}
	return rec, nil
}

func replyHop(r *trace.Reply, tbl *addressTable) (wire.Hop, error) {
	rtt := trace.RTTToMicros(r.RTT)
	h := wire.Hop{
		ProbeTTL:  r.ProbeTTL,
		ReplyTTL:  r.TTL,
		RTT:       rtt,
		ICMPType:  r.ICMPType,
		ICMPCode:  r.ICMPCode,
		ReplySize: r.Size,
		QuotedTTL: r.QuotedTTL,
		Addr:      tbl.address(r.Addr),
	}
	if !r.Timestamp.IsZero() && !r.Timestamp.Equal(trace.Epoch) {
		h.Tx = wire.TimevalFromTime(r.Timestamp.Add(-time.Duration(rtt) * time.Microsecond))
	}
	if len(r.MPLSLabels) > 0 {
		labels := make([]wire.MPLSLabel, len(r.MPLSLabels))
		for i, e := range r.MPLSLabels {
			labels[i] = wire.MPLSLabel{Label: e.Label, Exp: e.Exp, BottomOfStack: e.BottomOfStack, TTL: e.TTL}
		}
		ext, err := wire.NewMPLSExtension(labels)
		if err != nil {
			return wire.Hop{}, err
		}
		h.ICMPExt = []wire.ICMPExtension{ext}
	}
	return h, nil
}

type addressTable struct {
	ids map[netip.Addr]uint32
}

// address returns the address parameter for ip, nil when ip is unspecified.
func (t *addressTable) address(ip netip.Addr) *wire.Address {
	ip = trace.To128(ip)
	if ip == trace.Unspecified {
		return nil
	}
	if id, ok := t.ids[ip]; ok {
		return wire.AddressRef(id)
	}
	if t.ids == nil {
		t.ids = make(map[netip.Addr]uint32)
	}
	t.ids[ip] = uint32(len(t.ids))
	return wire.AddressOf(ip)
}
