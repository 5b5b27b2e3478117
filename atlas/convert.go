package atlas

import (
	"fmt"
	"net/netip"
	"strconv"
	"time"

	"github.com/dioptra-io/iris-converters/trace"
)

const typeTraceroute = "traceroute"

// ToTraceroute converts an Atlas result into a canonical traceroute. All
// hops are flattened into a single flow identified by the Paris id.
func ToTraceroute(t *Traceroute) (trace.Traceroute, error) {
	proto, err := trace.ProtocolFromString(t.Proto)
	if err != nil {
		return trace.Traceroute{}, fmt.Errorf("atlas msm %d: %w", t.MsmID, err)
	}
	dst := addrOrUnspecified(t.DstAddr)

	var replies []trace.Reply
	for _, hop := range t.Result {
		for i := range hop.Result {
			replies = append(replies, hop.Result[i].canonical(hop.Hop, proto, dst))
		}
	}

	return trace.Traceroute{
		MeasurementID: strconv.FormatUint(t.MsmID, 10),
		AgentID:       strconv.FormatUint(t.PrbID, 10),
		StartTime:     time.Unix(t.Timestamp, 0).UTC(),
		EndTime:       time.Unix(t.EndTime, 0).UTC(),
		Protocol:      proto,
		SrcAddr:       addrOrUnspecified(t.SrcAddr),
		DstAddr:       dst,
		Flows: []trace.Flow{{
			SrcPort: t.ParisID,
			Replies: replies,
		}},
	}, nil
}

func (r *Reply) canonical(hop uint8, proto trace.Protocol, dst netip.Addr) trace.Reply {
	typ, code := icmpTypeCode(r, proto, dst)
	return trace.Reply{
		// Atlas stores neither the capture time nor the quoted TTL.
		Timestamp:  trace.Epoch,
		ProbeTTL:   hop,
		TTL:        r.TTL,
		Size:       r.Size,
		MPLSLabels: r.ICMPExt.MPLSEntries(),
		Addr:       addrOrUnspecified(r.From),
		ICMPType:   typ,
		ICMPCode:   code,
		RTT:        r.RTT,
	}
}

// FromTraceroute converts a canonical traceroute into Atlas results, one per
// flow. Identifiers are derived from the measurement and agent ids with
// IDFromString.
func FromTraceroute(t *trace.Traceroute) ([]Traceroute, error) {
	v6 := !trace.IsIPv4(t.DstAddr)
	proto, err := ProtocolName(t.Protocol.IANA(v6))
	if err != nil {
		return nil, err
	}
	af := uint8(4)
	if v6 {
		af = 6
	}
	dst := t.DstAddr.Unmap()

	out := make([]Traceroute, 0, len(t.Flows))
	for i := range t.Flows {
		flow := &t.Flows[i]
		start, end, err := flow.TimeRange()
		if err != nil {
			return nil, fmt.Errorf("flow %d/%d: %w", flow.SrcPort, flow.DstPort, err)
		}
		hops := make([]Hop, len(flow.Replies))
		for j := range flow.Replies {
			hops[j] = HopFromReply(&flow.Replies[j], v6)
		}
		out = append(out, Traceroute{
			AF:        af,
			DstAddr:   addrPtr(dst),
			DstName:   dst.String(),
			EndTime:   end.Unix(),
			From:      addrPtr(t.SrcAddr),
			MsmID:     IDFromString(t.MeasurementID),
			MsmName:   t.MeasurementID,
			ParisID:   flow.SrcPort,
			PrbID:     IDFromString(t.AgentID),
			Proto:     proto,
			Result:    hops,
			SrcAddr:   addrPtr(t.SrcAddr),
			Timestamp: start.Unix(),
			Type:      typeTraceroute,
		})
	}
	return out, nil
}

// HopFromReply wraps a canonical reply into a single-reply Atlas hop.
func HopFromReply(r *trace.Reply, v6 bool) Hop {
	return Hop{
		Hop: r.ProbeTTL,
		Result: []Reply{{
			From:    addrPtr(r.Addr),
			RTT:     r.RTT,
			Size:    r.Size,
			TTL:     r.TTL,
			Err:     replyError(r.ICMPType, r.ICMPCode, v6),
			ICMPExt: NewICMPExtensions(r.MPLSLabels),
		}},
	}
}

func addrOrUnspecified(a *netip.Addr) netip.Addr {
	if a == nil {
		return trace.Unspecified
	}
	return trace.To128(*a)
}

func addrPtr(a netip.Addr) *netip.Addr {
	if !a.IsValid() || a.IsUnspecified() {
		return nil
	}
	u := a.Unmap()
	return &u
}
