package warts

import (
	"bytes"
	"errors"
	"io"
	"net/netip"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dioptra-io/iris-converters/trace"
	"github.com/dioptra-io/iris-converters/warts/wire"
)

var addrOpt = cmpopts.EquateComparable(netip.Addr{})

func ip(s string) netip.Addr { return netip.MustParseAddr(s) }

func u32p(v uint32) *uint32 { return &v }

func marshalAll(t *testing.T, objs ...wire.Object) []byte {
	t.Helper()
	var buf []byte
	for _, obj := range objs {
		b, err := wire.Marshal(obj)
		require.NoError(t, err)
		buf = append(buf, b...)
	}
	return buf
}

func TestWriterRoundTrip(t *testing.T) {
	start := time.Date(2023, 3, 1, 12, 0, 0, 0, time.UTC)
	src := trace.To128(ip("10.0.0.2"))
	dst := trace.To128(ip("192.0.2.10"))
	hop := trace.To128(ip("10.0.0.1"))
	in := trace.Traceroute{
		MeasurementID: "m",
		AgentID:       "a",
		StartTime:     start,
		EndTime:       start.Add(2 * time.Second),
		Protocol:      trace.UDP,
		SrcAddr:       src,
		DstAddr:       dst,
		Flows: []trace.Flow{
			{SrcPort: 24000, DstPort: 33434, Replies: []trace.Reply{
				{Timestamp: start.Add(1250 * time.Microsecond), ProbeTTL: 1, QuotedTTL: 1, TTL: 255, Size: 56, Addr: hop, ICMPType: 11, RTT: 1.25},
				{
					Timestamp: start.Add(time.Second + 5500*time.Microsecond), ProbeTTL: 2, QuotedTTL: 1, TTL: 250, Size: 140,
					Addr: dst, ICMPType: 3, ICMPCode: 3, RTT: 5.5,
					MPLSLabels: []trace.MPLSEntry{{Label: 16, Exp: 1, BottomOfStack: true, TTL: 1}},
				},
			}},
			{SrcPort: 24001, DstPort: 33434, Replies: []trace.Reply{
				{Timestamp: trace.Epoch, ProbeTTL: 1, TTL: 255, Addr: hop, ICMPType: 11, RTT: 0.8},
			}},
		},
	}

	var buf bytes.Buffer
	cfg := WriterConfig{Hostname: "ams-nl", ListName: "targets", ListID: 3, CycleID: 7}
	w := NewWriter(&buf, cfg, WithClock(func() time.Time { return start.Add(time.Hour) }))
	require.NoError(t, w.WritePreamble())
	require.NoError(t, w.WriteTraceroute(&in))
	require.NoError(t, w.WriteEpilogue())
	assert.Equal(t, 2, w.Records())

	objs, err := wire.Decode(buf.Bytes())
	require.NoError(t, err)
	var types []wire.ObjectType
	for _, obj := range objs {
		types = append(types, obj.Type())
	}
	assert.Equal(t, []wire.ObjectType{
		wire.TypeList, wire.TypeCycleStart, wire.TypeTraceroute, wire.TypeTraceroute, wire.TypeCycleStop,
	}, types)

	cycle := objs[1].(*wire.Cycle)
	assert.Equal(t, uint32(start.Add(time.Hour).Unix()), cycle.StartTime)
	assert.Equal(t, "ams-nl", cycle.Hostname)
	first := objs[2].(*wire.Traceroute)
	assert.Equal(t, wire.TraceTypeUDPParis, first.TraceType)
	// the destination replies to the second probe
	assert.Equal(t, wire.AddressRef(1), first.Hops[1].Addr)
	assert.Equal(t, wire.TimevalFromTime(start), first.Hops[0].Tx)
	assert.True(t, objs[3].(*wire.Traceroute).Hops[0].Tx.IsZero())

	r, err := NewReader(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, LocalTables, r.Mode)
	assert.Equal(t, 2, r.Len())

	got, err := r.NextTraceroute()
	require.NoError(t, err)
	want := trace.Traceroute{
		MeasurementID: "7",
		AgentID:       "ams-nl",
		StartTime:     start,
		EndTime:       in.Flows[0].Replies[1].Timestamp,
		Protocol:      trace.UDP,
		SrcAddr:       src,
		DstAddr:       dst,
		Flows:         in.Flows[:1],
	}
	if diff := cmp.Diff(want, got, addrOpt); diff != "" {
		t.Errorf("first traceroute mismatch (-want +got):\n%s", diff)
	}

	replies, err := r.Next()
	require.NoError(t, err)
	if diff := cmp.Diff(in.Flows[1].Replies, replies, addrOpt); diff != "" {
		t.Errorf("second flow mismatch (-want +got):\n%s", diff)
	}

	_, err = r.Next()
	assert.Equal(t, io.EOF, err)
	_, err = r.NextTraceroute()
	assert.Equal(t, io.EOF, err)
}

func TestWriterEmptyFlow(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, WriterConfig{Hostname: "h", ListID: 1, CycleID: 1})
	tr := trace.Traceroute{
		Protocol: trace.ICMP,
		SrcAddr:  trace.Unspecified,
		DstAddr:  trace.To128(ip("2001:db8::1")),
		Flows:    []trace.Flow{{}},
	}
	require.NoError(t, w.WriteTraceroute(&tr))

	objs, err := wire.Decode(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, objs, 1)
	rec := objs[0].(*wire.Traceroute)
	assert.Nil(t, rec.SrcAddr)
	assert.Equal(t, ip("2001:db8::1"), rec.DstAddr.IP)
	assert.Equal(t, wire.TraceTypeICMPEchoParis, rec.TraceType)
	assert.Empty(t, rec.Hops)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestWriterErrors(t *testing.T) {
	w := NewWriter(failingWriter{}, WriterConfig{})
	assert.ErrorContains(t, w.WritePreamble(), "disk full")

	tr := trace.Traceroute{Protocol: trace.Protocol(9), Flows: []trace.Flow{{}}}
	var perr *trace.UnknownProtocolError
	assert.ErrorAs(t, NewWriter(io.Discard, WriterConfig{}).WriteTraceroute(&tr), &perr)
}

func TestDereferenceLocalTables(t *testing.T) {
	tr := &wire.Traceroute{
		SrcAddr: wire.AddressOf(ip("10.0.0.2")),
		DstAddr: wire.AddressOf(ip("192.0.2.10")),
		Hops: []wire.Hop{
			{Addr: wire.AddressOf(ip("10.0.0.1"))},
			{Addr: wire.AddressRef(2)},
			{Addr: wire.AddressRef(1)},
			{},
		},
	}
	mode, err := Dereference([]wire.Object{&wire.List{}, tr})
	require.NoError(t, err)
	assert.Equal(t, LocalTables, mode)
	assert.Equal(t, ip("10.0.0.1"), tr.Hops[1].Addr.IP)
	assert.Equal(t, ip("192.0.2.10"), tr.Hops[2].Addr.IP)
	assert.False(t, tr.Hops[2].Addr.Ref)
	assert.Nil(t, tr.Hops[3].Addr)
}

func TestDereferenceRouterAddress(t *testing.T) {
	// the router literal takes the slot after the destination
	tr := &wire.Traceroute{
		TraceType:  wire.TraceTypeICMPEchoParis,
		SrcAddr:    wire.AddressOf(ip("10.0.0.2")),
		DstAddr:    wire.AddressOf(ip("192.0.2.10")),
		RouterAddr: wire.AddressOf(ip("10.0.0.254")),
		Hops: []wire.Hop{
			{ProbeTTL: 1, Addr: wire.AddressOf(ip("10.0.0.1"))},
			{ProbeTTL: 2, Addr: wire.AddressRef(3)},
			{ProbeTTL: 3, Addr: wire.AddressRef(2)},
			{ProbeTTL: 4, Addr: wire.AddressRef(1)},
		},
	}
	r, err := NewReader(marshalAll(t, tr))
	require.NoError(t, err)
	got, err := r.NextTraceroute()
	require.NoError(t, err)

	var addrs []netip.Addr
	for _, reply := range got.Flows[0].Replies {
		addrs = append(addrs, reply.Addr)
	}
	assert.Equal(t, []netip.Addr{
		trace.To128(ip("10.0.0.1")),
		trace.To128(ip("10.0.0.1")),
		trace.To128(ip("10.0.0.254")),
		trace.To128(ip("192.0.2.10")),
	}, addrs)

	_, err = Dereference([]wire.Object{&wire.Traceroute{RouterAddr: wire.AddressRef(0)}})
	var derr *DereferenceError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, "rtr", derr.Field)
}

func TestWriterEarlyBottomOfStack(t *testing.T) {
	ts := time.Date(2023, 3, 1, 12, 0, 0, 0, time.UTC)
	mpls := []trace.MPLSEntry{
		{Label: 24001, BottomOfStack: true, TTL: 1},
		{Label: 16, Exp: 2, BottomOfStack: false, TTL: 1},
	}
	in := trace.Traceroute{
		Protocol: trace.ICMP,
		SrcAddr:  trace.To128(ip("10.0.0.2")),
		DstAddr:  trace.To128(ip("192.0.2.10")),
		Flows: []trace.Flow{{Replies: []trace.Reply{{
			Timestamp: ts, ProbeTTL: 3, TTL: 252, Addr: trace.To128(ip("10.0.0.3")),
			ICMPType: 11, RTT: 2, MPLSLabels: mpls,
		}}}},
	}
	var buf bytes.Buffer
	require.NoError(t, NewWriter(&buf, WriterConfig{ListID: 1, CycleID: 1}).WriteTraceroute(&in))

	r, err := NewReader(buf.Bytes())
	require.NoError(t, err)
	got, err := r.NextTraceroute()
	require.NoError(t, err)
	assert.Equal(t, mpls, got.Flows[0].Replies[0].MPLSLabels)
}

func TestDereferenceGlobalTable(t *testing.T) {
	tr := &wire.Traceroute{
		SrcAddrID: u32p(0),
		DstAddrID: u32p(1),
		Hops: []wire.Hop{
			// a literal does not start a local table in a global file
			{Addr: wire.AddressOf(ip("10.9.9.9"))},
			{Addr: wire.AddressRef(0)},
			{AddrID: u32p(1)},
		},
	}
	objs := []wire.Object{
		&wire.GlobalAddress{IP: ip("10.0.0.2")},
		&wire.GlobalAddress{IP: ip("192.0.2.10")},
		tr,
	}
	mode, err := Dereference(objs)
	require.NoError(t, err)
	assert.Equal(t, GlobalTable, mode)
	assert.Equal(t, ip("10.0.0.2"), tr.SrcAddr.IP)
	assert.Equal(t, ip("192.0.2.10"), tr.DstAddr.IP)
	assert.Nil(t, tr.SrcAddrID)
	assert.Equal(t, ip("10.9.9.9"), tr.Hops[0].Addr.IP)
	assert.Equal(t, ip("10.0.0.2"), tr.Hops[1].Addr.IP)
	assert.Equal(t, ip("192.0.2.10"), tr.Hops[2].Addr.IP)
	assert.Nil(t, tr.Hops[2].AddrID)
}

func TestDereferenceErrors(t *testing.T) {
	tests := []struct {
		name   string
		objs   []wire.Object
		field  string
		legacy bool
	}{
		{
			name: "local out of range",
			objs: []wire.Object{&wire.Traceroute{
				SrcAddr: wire.AddressOf(ip("10.0.0.2")),
				Hops:    []wire.Hop{{Addr: wire.AddressRef(1)}},
			}},
			field: "hop 0",
		},
		{
			name: "global out of range",
			objs: []wire.Object{
				&wire.GlobalAddress{IP: ip("10.0.0.2")},
				&wire.Traceroute{DstAddr: wire.AddressRef(4)},
			},
			field: "dst",
		},
		{
			name:   "legacy id without global table",
			objs:   []wire.Object{&wire.Traceroute{SrcAddrID: u32p(0)}},
			field:  "src",
			legacy: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Dereference(tt.objs)
			var derr *DereferenceError
			require.ErrorAs(t, err, &derr)
			assert.Equal(t, tt.field, derr.Field)
			assert.Equal(t, tt.legacy, derr.Legacy)
			assert.Equal(t, len(tt.objs)-1, derr.Object)
		})
	}
}

func TestReaderDefaultsAndOrder(t *testing.T) {
	var objs []wire.Object
	for port := uint16(1); port <= 3; port++ {
		objs = append(objs, &wire.Traceroute{
			TraceType: wire.TraceTypeICMPEcho,
			DstPort:   port,
			Hops:      []wire.Hop{{ProbeTTL: uint8(port), RTT: 1500}},
		})
	}
	r, err := NewReader(marshalAll(t, objs...))
	require.NoError(t, err)
	assert.Equal(t, uint32(0), r.CycleID)
	assert.Equal(t, UnknownMonitor, r.Monitor)

	for port := uint16(1); port <= 3; port++ {
		tr, err := r.NextTraceroute()
		require.NoError(t, err)
		assert.Equal(t, "0", tr.MeasurementID)
		assert.Equal(t, UnknownMonitor, tr.AgentID)
		assert.Equal(t, trace.ICMP, tr.Protocol)
		assert.Equal(t, trace.Unspecified, tr.SrcAddr)
		assert.Equal(t, port, tr.Flows[0].DstPort)
		assert.Equal(t, trace.Epoch, tr.StartTime)
		require.Len(t, tr.Flows[0].Replies, 1)
		assert.Equal(t, 1.5, tr.Flows[0].Replies[0].RTT)
		assert.Equal(t, trace.Epoch, tr.Flows[0].Replies[0].Timestamp)
	}
	_, err = r.NextTraceroute()
	assert.Equal(t, io.EOF, err)
}

func TestReaderCycleMetadata(t *testing.T) {
	data := marshalAll(t,
		&wire.Cycle{Definition: true, CycleID: 12},
		&wire.Cycle{CycleID: 13, Hostname: "later"},
		&wire.Traceroute{TraceType: wire.TraceTypeTCPAck},
	)
	r, err := NewReader(data)
	require.NoError(t, err)
	assert.Equal(t, uint32(12), r.CycleID)
	assert.Equal(t, UnknownMonitor, r.Monitor)

	tr, err := r.NextTraceroute()
	require.NoError(t, err)
	assert.Equal(t, trace.TCP, tr.Protocol)
	assert.Equal(t, "12", tr.MeasurementID)
	assert.Empty(t, tr.Flows[0].Replies)
	assert.Equal(t, tr.StartTime, tr.EndTime)
}

func TestReaderErrors(t *testing.T) {
	t.Run("decode", func(t *testing.T) {
		data := marshalAll(t, &wire.CycleStop{CycleID: 1})
		_, err := NewReader(data[:len(data)-1])
		var derr *wire.DecodeError
		assert.ErrorAs(t, err, &derr)
	})

	t.Run("dereference", func(t *testing.T) {
		data := marshalAll(t, &wire.Traceroute{DstAddr: wire.AddressRef(0)})
		_, err := NewReader(data)
		var derr *DereferenceError
		assert.ErrorAs(t, err, &derr)
	})

	t.Run("trace type", func(t *testing.T) {
		r, err := NewReader(marshalAll(t, &wire.Traceroute{}))
		require.NoError(t, err)
		_, err = r.NextTraceroute()
		var perr *trace.UnknownProtocolError
		assert.ErrorAs(t, err, &perr)
	})
}

func TestProtocolMapping(t *testing.T) {
	for tt, want := range map[wire.TraceType]trace.Protocol{
		wire.TraceTypeICMPEcho:      trace.ICMP,
		wire.TraceTypeICMPEchoParis: trace.ICMP,
		wire.TraceTypeUDP:           trace.UDP,
		wire.TraceTypeUDPParis:      trace.UDP,
		wire.TraceTypeTCP:           trace.TCP,
		wire.TraceTypeTCPAck:        trace.TCP,
	} {
		got, err := Protocol(tt)
		require.NoError(t, err)
		assert.Equal(t, want, got, tt.String())
	}
	_, err := Protocol(0)
	assert.Error(t, err)

	got, err := TraceType(trace.TCP)
	require.NoError(t, err)
	assert.Equal(t, wire.TraceTypeTCP, got)
}
