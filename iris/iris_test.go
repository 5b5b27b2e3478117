package iris

import (
	"errors"
	"io"
	"net/netip"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dioptra-io/iris-converters/atlas"
	"github.com/dioptra-io/iris-converters/trace"
)

const sampleFlow = `{"probe_protocol":17,"probe_src_addr":"::ffff:10.0.0.2","probe_dst_addr":"::ffff:192.0.2.10",` +
	`"probe_src_port":24000,"probe_dst_port":33434,"replies":[` +
	`["2023-03-01T12:00:02Z",2,250,56,[[24001,0,0,1],[16,1,true,1]],"::ffff:203.0.113.1",4.5],` +
	`["2023-03-01T12:00:01Z",1,255,56,[],"::ffff:10.0.0.1",1.25]]}`

func decodeSample(t *testing.T) Traceroute {
	t.Helper()
	dec := NewDecoder(strings.NewReader(sampleFlow + "\n"))
	tr, err := dec.Next()
	require.NoError(t, err)
	_, err = dec.Next()
	require.ErrorIs(t, err, io.EOF)
	return tr
}

func TestDecode(t *testing.T) {
	tr := decodeSample(t)
	assert.Equal(t, uint8(17), tr.ProbeProtocol)
	assert.Equal(t, uint16(24000), tr.ProbeSrcPort)
	assert.Equal(t, uint16(33434), tr.ProbeDstPort)
	require.Len(t, tr.Replies, 2)

	r := tr.Replies[0]
	assert.Equal(t, time.Date(2023, 3, 1, 12, 0, 2, 0, time.UTC), r.CaptureTimestamp.UTC())
	assert.Equal(t, uint8(2), r.ProbeTTL)
	assert.Equal(t, uint8(250), r.ReplyTTL)
	assert.Equal(t, uint16(56), r.ReplySize)
	assert.Equal(t, []MPLSLabel{
		{Label: 24001, TTL: 1},
		{Label: 16, Exp: 1, BottomOfStack: true, TTL: 1},
	}, r.MPLSLabels)
	assert.Equal(t, netip.MustParseAddr("::ffff:203.0.113.1"), r.ReplySrcAddr)
	assert.Equal(t, 4.5, r.RTT)
}

func TestReplyTupleErrors(t *testing.T) {
	var r Reply
	assert.Error(t, json.Unmarshal([]byte(`["2023-03-01T12:00:02Z",2,250]`), &r))
	assert.Error(t, json.Unmarshal([]byte(`{"ttl":2}`), &r))
	assert.Error(t, json.Unmarshal([]byte(`["2023-03-01T12:00:02Z",2,250,56,[[1,2]],"::1",1]`), &r))
}

func TestReplyTupleRoundTrip(t *testing.T) {
	in := Reply{
		CaptureTimestamp: time.Date(2023, 3, 1, 12, 0, 2, 500, time.UTC),
		ProbeTTL:         9,
		ReplyTTL:         52,
		ReplySize:        84,
		ReplySrcAddr:     netip.MustParseAddr("2001:db8::1"),
		RTT:              33.125,
	}
	b, err := json.Marshal(in)
	require.NoError(t, err)
	assert.Contains(t, string(b), `,[],"2001:db8::1",33.125]`)

	var out Reply
	require.NoError(t, json.Unmarshal(b, &out))
	assert.True(t, in.CaptureTimestamp.Equal(out.CaptureTimestamp))
	assert.Equal(t, in.ReplySrcAddr, out.ReplySrcAddr)
	assert.Equal(t, in.RTT, out.RTT)
	assert.Empty(t, out.MPLSLabels)
}

func TestAtlasHop(t *testing.T) {
	addr := netip.MustParseAddr("192.0.2.33")
	r := Reply{ProbeTTL: 5, ReplyTTL: 58, ReplySize: 52, ReplySrcAddr: addr, RTT: 12.3}

	got := r.AtlasHop()
	want := atlas.Hop{
		Hop: 5,
		Result: []atlas.Reply{{
			From:    &addr,
			RTT:     12.3,
			Size:    52,
			TTL:     58,
			ICMPExt: atlas.ICMPExtensions{},
		}},
	}
	if diff := cmp.Diff(got, want, cmp.Comparer(func(a, b netip.Addr) bool { return a == b })); diff != "" {
		t.Errorf("AtlasHop() mismatch (-got +want):\n%s", diff)
	}

	b, err := json.Marshal(got)
	require.NoError(t, err)
	assert.JSONEq(t, `{"hop":5,"result":[{"from":"192.0.2.33","rtt":12.3,"size":52,"ttl":58,"icmpext":[]}]}`, string(b))
}

func TestAtlasHopMPLS(t *testing.T) {
	r := Reply{ProbeTTL: 3, MPLSLabels: []MPLSLabel{{Label: 100, Exp: 2, BottomOfStack: true, TTL: 7}}}
	hop := r.AtlasHop()
	require.Len(t, hop.Result, 1)
	assert.Nil(t, hop.Result[0].From)
	exts := hop.Result[0].ICMPExt
	require.Len(t, exts, 1)
	require.Len(t, exts[0].Obj, 1)
	assert.Equal(t, []atlas.MPLSData{{Label: 100, Exp: 2, S: 1, TTL: 7}}, exts[0].Obj[0].MPLS)
}

func TestCanonical(t *testing.T) {
	tr := decodeSample(t)
	got, err := tr.Canonical("msm-uuid", "agent-uuid")
	require.NoError(t, err)

	assert.Equal(t, "msm-uuid", got.MeasurementID)
	assert.Equal(t, "agent-uuid", got.AgentID)
	assert.Equal(t, trace.UDP, got.Protocol)
	assert.True(t, got.StartTime.Equal(time.Date(2023, 3, 1, 12, 0, 1, 0, time.UTC)))
	assert.True(t, got.EndTime.Equal(time.Date(2023, 3, 1, 12, 0, 2, 0, time.UTC)))
	assert.Equal(t, trace.To128(netip.MustParseAddr("192.0.2.10")), got.DstAddr)
	require.Len(t, got.Flows, 1)
	flow := got.Flows[0]
	assert.Equal(t, uint16(24000), flow.SrcPort)
	assert.Equal(t, uint16(33434), flow.DstPort)
	require.Len(t, flow.Replies, 2)
	assert.Equal(t, uint8(2), flow.Replies[0].ProbeTTL)
	assert.Equal(t, uint8(250), flow.Replies[0].TTL)
	assert.Equal(t, uint8(0), flow.Replies[0].QuotedTTL)
	assert.Len(t, flow.Replies[0].MPLSLabels, 2)
	assert.Nil(t, flow.Replies[1].MPLSLabels)
	assert.Equal(t, 1.25, flow.Replies[1].RTT)
}

func TestCanonicalEmptyFlow(t *testing.T) {
	tr := Traceroute{ProbeProtocol: 1, ProbeSrcPort: 24000, ProbeDstPort: 33434}
	got, err := tr.Canonical("m", "a")
	require.NoError(t, err)
	assert.Equal(t, trace.Epoch, got.StartTime)
	assert.Equal(t, trace.Epoch, got.EndTime)
	require.Len(t, got.Flows, 1)
	assert.Empty(t, got.Flows[0].Replies)
	assert.Equal(t, uint16(24000), got.Flows[0].SrcPort)
}

func TestCanonicalErrors(t *testing.T) {
	t.Run("unknown protocol", func(t *testing.T) {
		tr := Traceroute{ProbeProtocol: 132, Replies: []Reply{{}}}
		_, err := tr.Canonical("m", "a")
		var perr *trace.UnknownProtocolError
		assert.ErrorAs(t, err, &perr)
	})
}

func TestAtlas(t *testing.T) {
	tr := decodeSample(t)
	got, err := tr.Atlas("msm-uuid", "agent-uuid")
	require.NoError(t, err)

	assert.Equal(t, uint8(4), got.AF)
	assert.Equal(t, "udp", got.Proto)
	assert.Equal(t, atlas.IDFromString("msm-uuid"), got.MsmID)
	assert.Equal(t, atlas.IDFromString("agent-uuid"), got.PrbID)
	assert.Equal(t, "msm-uuid", got.MsmName)
	assert.Equal(t, uint16(24000), got.ParisID)
	assert.Equal(t, time.Date(2023, 3, 1, 12, 0, 1, 0, time.UTC).Unix(), got.Timestamp)
	assert.Equal(t, time.Date(2023, 3, 1, 12, 0, 2, 0, time.UTC).Unix(), got.EndTime)
	require.NotNil(t, got.From)
	assert.Equal(t, "10.0.0.2", got.From.String())
	assert.Equal(t, "192.0.2.10", got.DstName)
	require.Len(t, got.Result, 2)
	assert.Equal(t, uint8(2), got.Result[0].Hop)
	assert.Len(t, got.Result[0].Result[0].ICMPExt, 1)
	assert.Len(t, got.Result[1].Result[0].ICMPExt, 0)
}

func TestAtlasErrors(t *testing.T) {
	t.Run("empty flow", func(t *testing.T) {
		tr := Traceroute{ProbeProtocol: 1}
		_, err := tr.Atlas("m", "a")
		assert.True(t, errors.Is(err, trace.ErrEmptyFlow))
	})
	t.Run("unknown protocol", func(t *testing.T) {
		tr := Traceroute{ProbeProtocol: 6, Replies: []Reply{{}}}
		_, err := tr.Atlas("m", "a")
		var perr *trace.UnknownProtocolError
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, 6, perr.Number)
	})
}
