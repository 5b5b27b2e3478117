package iris

import (
	"errors"
	"fmt"

	"github.com/dioptra-io/iris-converters/atlas"
	"github.com/dioptra-io/iris-converters/trace"
)

// Canonical converts the reply. Iris does not keep the quoted TTL nor the
// ICMP type and code.
func (r *Reply) Canonical() trace.Reply {
	return trace.Reply{
		Timestamp:  r.CaptureTimestamp,
		ProbeTTL:   r.ProbeTTL,
		TTL:        r.ReplyTTL,
		Size:       r.ReplySize,
		MPLSLabels: r.mplsEntries(),
		Addr:       trace.To128(r.ReplySrcAddr),
		RTT:        r.RTT,
	}
}

// AtlasHop wraps the reply into a single-reply Atlas hop.
func (r *Reply) AtlasHop() atlas.Hop {
	reply := atlas.Reply{
		RTT:     r.RTT,
		Size:    r.ReplySize,
		TTL:     r.ReplyTTL,
		ICMPExt: atlas.NewICMPExtensions(r.mplsEntries()),
	}
	if r.ReplySrcAddr.IsValid() && !r.ReplySrcAddr.IsUnspecified() {
		addr := r.ReplySrcAddr.Unmap()
		reply.From = &addr
	}
	return atlas.Hop{Hop: r.ProbeTTL, Result: []atlas.Reply{reply}}
}

func (r *Reply) mplsEntries() []trace.MPLSEntry {
	if len(r.MPLSLabels) == 0 {
		return nil
	}
	out := make([]trace.MPLSEntry, len(r.MPLSLabels))
	for i, l := range r.MPLSLabels {
		out[i] = trace.MPLSEntry{Label: l.Label, Exp: l.Exp, BottomOfStack: l.BottomOfStack, TTL: l.TTL}
	}
	return out
}

func (t *Traceroute) flow() trace.Flow {
	f := trace.Flow{
		SrcPort: t.ProbeSrcPort,
		DstPort: t.ProbeDstPort,
		Replies: make([]trace.Reply, len(t.Replies)),
	}
	for i := range t.Replies {
		f.Replies[i] = t.Replies[i].Canonical()
	}
	return f
}

// Canonical converts the flow into a single-flow canonical traceroute. The
// start and end times are the earliest and latest capture timestamps, or the
// epoch for a flow without replies.
func (t *Traceroute) Canonical(measurementUUID, agentUUID string) (trace.Traceroute, error) {
	proto, err := trace.ProtocolFromIANA(t.ProbeProtocol)
	if err != nil {
		return trace.Traceroute{}, err
	}
	flow := t.flow()
	start, end, err := flow.TimeRange()
	if errors.Is(err, trace.ErrEmptyFlow) {
		start, end = trace.Epoch, trace.Epoch
	}
	return trace.Traceroute{
		MeasurementID: measurementUUID,
		AgentID:       agentUUID,
		StartTime:     start,
		EndTime:       end,
		Protocol:      proto,
		SrcAddr:       trace.To128(t.ProbeSrcAddr),
		DstAddr:       trace.To128(t.ProbeDstAddr),
		Flows:         []trace.Flow{flow},
	}, nil
}

// Atlas converts the flow into an Atlas result.
func (t *Traceroute) Atlas(measurementUUID, agentUUID string) (atlas.Traceroute, error) {
	proto, err := atlas.ProtocolName(t.ProbeProtocol)
	if err != nil {
		return atlas.Traceroute{}, err
	}
	flow := t.flow()
	start, end, err := flow.TimeRange()
	if err != nil {
		return atlas.Traceroute{}, fmt.Errorf("iris flow to %s: %w", t.ProbeDstAddr, err)
	}
	hops := make([]atlas.Hop, len(t.Replies))
	for i := range t.Replies {
		hops[i] = t.Replies[i].AtlasHop()
	}

	src := t.ProbeSrcAddr.Unmap()
	dst := t.ProbeDstAddr.Unmap()
	af := uint8(6)
	if dst.Is4() {
		af = 4
	}
	res := atlas.Traceroute{
		AF:        af,
		DstAddr:   &dst,
		DstName:   dst.String(),
		EndTime:   end.Unix(),
		MsmID:     atlas.IDFromString(measurementUUID),
		MsmName:   measurementUUID,
		ParisID:   t.ProbeSrcPort,
		PrbID:     atlas.IDFromString(agentUUID),
		Proto:     proto,
		Result:    hops,
		Timestamp: start.Unix(),
		Type:      "traceroute",
	}
	if src.IsValid() && !src.IsUnspecified() {
		res.From = &src
		res.SrcAddr = &src
	}
	return res, nil
}
