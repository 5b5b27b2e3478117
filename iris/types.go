// Package iris reads Iris traceroute flows, whose replies are stored as
// positional tuples, and converts them to the canonical model and to Atlas
// results.
package iris

import (
	"fmt"
	"net/netip"
	"time"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Traceroute is one Iris flow with its replies.
type Traceroute struct {
	ProbeProtocol uint8      `json:"probe_protocol"`
	ProbeSrcAddr  netip.Addr `json:"probe_src_addr"`
	ProbeDstAddr  netip.Addr `json:"probe_dst_addr"`
	ProbeSrcPort  uint16     `json:"probe_src_port"`
	ProbeDstPort  uint16     `json:"probe_dst_port,omitempty"`
	Replies       []Reply    `json:"replies"`
}

// Reply is encoded as the tuple
// [capture_timestamp, probe_ttl, reply_ttl, reply_size, mpls_labels, reply_src_addr, rtt].
type Reply struct {
	CaptureTimestamp time.Time
	ProbeTTL         uint8
	ReplyTTL         uint8
	ReplySize        uint16
	MPLSLabels       []MPLSLabel
	ReplySrcAddr     netip.Addr
	// RTT in milliseconds.
	RTT float64
}

// MPLSLabel is encoded as the tuple [label, exp, bottom_of_stack, ttl].
type MPLSLabel struct {
	Label         uint32
	Exp           uint8
	BottomOfStack bool
	TTL           uint8
}

const replyFields = 7

func (r *Reply) UnmarshalJSON(b []byte) error {
	var fields []jsoniter.RawMessage
	if err := json.Unmarshal(b, &fields); err != nil {
		return err
	}
	if len(fields) != replyFields {
		return fmt.Errorf("iris reply: expected %d fields, got %d", replyFields, len(fields))
	}
	targets := []interface{}{
		&r.CaptureTimestamp, &r.ProbeTTL, &r.ReplyTTL, &r.ReplySize,
		&r.MPLSLabels, &r.ReplySrcAddr, &r.RTT,
	}
	for i, f := range fields {
		if err := json.Unmarshal(f, targets[i]); err != nil {
			return fmt.Errorf("iris reply field %d: %w", i, err)
		}
	}
	return nil
}

func (r Reply) MarshalJSON() ([]byte, error) {
	labels := r.MPLSLabels
	if labels == nil {
		labels = []MPLSLabel{}
	}
	return json.Marshal([]interface{}{
		r.CaptureTimestamp, r.ProbeTTL, r.ReplyTTL, r.ReplySize,
		labels, r.ReplySrcAddr, r.RTT,
	})
}

func (l *MPLSLabel) UnmarshalJSON(b []byte) error {
	var fields []jsoniter.RawMessage
	if err := json.Unmarshal(b, &fields); err != nil {
		return err
	}
	if len(fields) != 4 {
		return fmt.Errorf("iris mpls label: expected 4 fields, got %d", len(fields))
	}
	if err := json.Unmarshal(fields[0], &l.Label); err != nil {
		return err
	}
	if err := json.Unmarshal(fields[1], &l.Exp); err != nil {
		return err
	}
	// bottom of stack is stored either as a boolean or as 0/1
	var s uint8
	if err := json.Unmarshal(fields[2], &s); err != nil {
		if err := json.Unmarshal(fields[2], &l.BottomOfStack); err != nil {
			return err
		}
	} else {
		l.BottomOfStack = s != 0
	}
	return json.Unmarshal(fields[3], &l.TTL)
}

func (l MPLSLabel) MarshalJSON() ([]byte, error) {
	var s uint8
	if l.BottomOfStack {
		s = 1
	}
	return json.Marshal([]interface{}{l.Label, l.Exp, s, l.TTL})
}
