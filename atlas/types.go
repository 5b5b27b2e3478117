// Package atlas maps RIPE Atlas traceroute results to and from the
// canonical traceroute model.
package atlas

import (
	"bytes"
	"net/netip"
	"strconv"
)

type Traceroute struct {
	AF        uint8       `json:"af"`
	DstAddr   *netip.Addr `json:"dst_addr,omitempty"`
	DstName   string      `json:"dst_name"`
	EndTime   int64       `json:"endtime"`
	From      *netip.Addr `json:"from,omitempty"`
	MsmID     uint64      `json:"msm_id"`
	MsmName   string      `json:"msm_name,omitempty"`
	ParisID   uint16      `json:"paris_id"`
	PrbID     uint64      `json:"prb_id"`
	Proto     string      `json:"proto"`
	Result    []Hop       `json:"result"`
	Size      uint16      `json:"size"`
	SrcAddr   *netip.Addr `json:"src_addr,omitempty"`
	Timestamp int64       `json:"timestamp"`
	Type      string      `json:"type"`
}

type Hop struct {
	Hop    uint8   `json:"hop"`
	Result []Reply `json:"result"`
}

// Reply is one probe result of a hop. Timed out probes only carry X ("*").
type Reply struct {
	From    *netip.Addr    `json:"from,omitempty"`
	RTT     float64        `json:"rtt"`
	Size    uint16         `json:"size"`
	TTL     uint8          `json:"ttl"`
	Err     ReplyError     `json:"err,omitempty"`
	X       string         `json:"x,omitempty"`
	ICMPExt ICMPExtensions `json:"icmpext"`
}

// MarshalJSON writes a timed out probe as {"x":"*"} alone. Any other reply
// keeps its rtt, size and ttl even when they are zero.
func (r Reply) MarshalJSON() ([]byte, error) {
	if r.X != "" {
		return json.Marshal(struct {
			X string `json:"x"`
		}{r.X})
	}
	type reply Reply
	return json.Marshal(reply(r))
}

type ICMPExtension struct {
	Version uint8           `json:"version"`
	RFC4884 uint8           `json:"rfc4884"`
	Obj     []ICMPExtObject `json:"obj"`
}

type ICMPExtObject struct {
	Class uint8      `json:"class"`
	Type  uint8      `json:"type"`
	MPLS  []MPLSData `json:"mpls,omitempty"`
}

// MPLSData is one label stack entry. S is the bottom of stack bit (0 or 1).
type MPLSData struct {
	Label uint32 `json:"label"`
	Exp   uint8  `json:"exp"`
	S     uint8  `json:"s"`
	TTL   uint8  `json:"ttl"`
}

// ICMPExtensions accepts both a single extension object, as published by
// Atlas, and a list of them. It always encodes as a list.
type ICMPExtensions []ICMPExtension

func (e *ICMPExtensions) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*e = nil
		return nil
	case len(b) > 0 && b[0] == '{':
		var ext ICMPExtension
		if err := json.Unmarshal(b, &ext); err != nil {
			return err
		}
		*e = ICMPExtensions{ext}
		return nil
	}
	var exts []ICMPExtension
	if err := json.Unmarshal(b, &exts); err != nil {
		return err
	}
	*e = exts
	return nil
}

// ReplyError is the Atlas "err" field: a letter (N, H, A, P, p) or the
// numeric code of an ICMP destination unreachable message.
type ReplyError string

func (e *ReplyError) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		s, err := strconv.Unquote(string(b))
		if err != nil {
			return err
		}
		*e = ReplyError(s)
		return nil
	}
	if bytes.Equal(b, []byte("null")) {
		*e = ""
		return nil
	}
	if _, err := strconv.ParseUint(string(b), 10, 8); err != nil {
		return err
	}
	*e = ReplyError(b)
	return nil
}

func (e ReplyError) MarshalJSON() ([]byte, error) {
	if _, err := strconv.ParseUint(string(e), 10, 8); err == nil {
		return []byte(e), nil
	}
	return []byte(strconv.Quote(string(e))), nil
}
