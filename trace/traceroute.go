package trace

import (
	"math"
	"net/netip"
	"time"
)

// Epoch is the capture time of replies whose source format has none.
var Epoch = time.Unix(0, 0).UTC()

type Traceroute struct {
	MeasurementID string
	AgentID       string
	StartTime     time.Time
	EndTime       time.Time
	Protocol      Protocol
	SrcAddr       netip.Addr
	DstAddr       netip.Addr
	Flows         []Flow
}

// Flow is one path instance, identified by its probe ports. Replies are kept
// in decode order.
type Flow struct {
	SrcPort uint16
	DstPort uint16
	Replies []Reply
}

type Reply struct {
	Timestamp  time.Time
	ProbeTTL   uint8
	QuotedTTL  uint8
	TTL        uint8
	Size       uint16
	MPLSLabels []MPLSEntry
	Addr       netip.Addr
	ICMPType   uint8
	ICMPCode   uint8
	// RTT in milliseconds.
	RTT float64
}

type MPLSEntry struct {
	Label         uint32
	Exp           uint8
	BottomOfStack bool
	TTL           uint8
}

// TimeRange returns the earliest and latest reply timestamps of the flow.
func (f *Flow) TimeRange() (time.Time, time.Time, error) {
	if len(f.Replies) == 0 {
		return time.Time{}, time.Time{}, ErrEmptyFlow
	}
	start, end := f.Replies[0].Timestamp, f.Replies[0].Timestamp
	for _, r := range f.Replies[1:] {
		if r.Timestamp.Before(start) {
			start = r.Timestamp
		}
		if r.Timestamp.After(end) {
			end = r.Timestamp
		}
	}
	return start, end, nil
}

// ReplyCount returns the number of replies across all flows.
func (t *Traceroute) ReplyCount() int {
	n := 0
	for _, f := range t.Flows {
		n += len(f.Replies)
	}
	return n
}

// CloneMPLS copies an MPLS label stack, keeping nil for empty stacks.
func CloneMPLS(entries []MPLSEntry) []MPLSEntry {
	if len(entries) == 0 {
		return nil
	}
	out := make([]MPLSEntry, len(entries))
	copy(out, entries)
	return out
}

// RTTFromMicros converts a microsecond round-trip time to milliseconds.
func RTTFromMicros(us uint32) float64 {
	return float64(us) / 1000
}

// RTTToMicros converts a millisecond round-trip time to microseconds,
// rounded to the nearest microsecond and clamped to the uint32 range.
func RTTToMicros(ms float64) uint32 {
	us := math.Round(ms * 1000)
	switch {
	case us <= 0 || math.IsNaN(us):
		return 0
	case us >= math.MaxUint32:
		return math.MaxUint32
	}
	return uint32(us)
}
