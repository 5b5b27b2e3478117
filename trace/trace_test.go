package trace

import (
	"errors"
	"net/netip"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProtocolFromString(t *testing.T) {
	tests := []struct {
		in   string
		want Protocol
	}{
		{"icmp", ICMP},
		{"udp", UDP},
		{"icmp6", ICMP},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ProtocolFromString(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, in := range []string{"", "tcp", "ICMP", "icmp4", "gre"} {
		t.Run("unknown "+in, func(t *testing.T) {
			_, err := ProtocolFromString(in)
			var perr *UnknownProtocolError
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, in, perr.Name)
		})
	}
}

func TestProtocolFromIANA(t *testing.T) {
	for n, want := range map[uint8]Protocol{1: ICMP, 58: ICMP, 17: UDP, 6: TCP} {
		got, err := ProtocolFromIANA(n)
		require.NoError(t, err)
		assert.Equal(t, want, got, "protocol %d", n)
	}

	_, err := ProtocolFromIANA(47)
	var perr *UnknownProtocolError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, 47, perr.Number)
	assert.Contains(t, err.Error(), "47")
}

func TestProtocolIANA(t *testing.T) {
	assert.Equal(t, uint8(1), ICMP.IANA(false))
	assert.Equal(t, uint8(58), ICMP.IANA(true))
	assert.Equal(t, uint8(17), UDP.IANA(true))
	assert.Equal(t, uint8(6), TCP.IANA(false))
}

func TestTo128(t *testing.T) {
	v4 := To128(netip.MustParseAddr("192.0.2.1"))
	assert.True(t, v4.Is6())
	assert.True(t, v4.Is4In6())
	assert.True(t, IsIPv4(v4))
	assert.Equal(t, "192.0.2.1", v4.Unmap().String())

	v6 := To128(netip.MustParseAddr("2001:db8::1"))
	assert.Equal(t, netip.MustParseAddr("2001:db8::1"), v6)
	assert.False(t, IsIPv4(v6))

	assert.Equal(t, Unspecified, To128(netip.Addr{}))
	assert.True(t, Unspecified.IsUnspecified())
}

func TestFlowTimeRange(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		f := Flow{}
		_, _, err := f.TimeRange()
		assert.True(t, errors.Is(err, ErrEmptyFlow))
	})

	t.Run("min max", func(t *testing.T) {
		base := time.Date(2023, 3, 1, 12, 0, 0, 0, time.UTC)
		f := Flow{Replies: []Reply{
			{Timestamp: base.Add(2 * time.Second)},
			{Timestamp: base},
			{Timestamp: base.Add(5 * time.Second)},
			{Timestamp: base.Add(time.Second)},
		}}
		start, end, err := f.TimeRange()
		require.NoError(t, err)
		assert.Equal(t, base, start)
		assert.Equal(t, base.Add(5*time.Second), end)
	})
}

func TestRTTConversions(t *testing.T) {
	assert.Equal(t, 12.345, RTTFromMicros(12345))
	assert.Equal(t, uint32(12345), RTTToMicros(12.345))
	assert.Equal(t, uint32(1), RTTToMicros(0.0006))
	assert.Equal(t, uint32(0), RTTToMicros(-3))
	for _, us := range []uint32{0, 1, 999, 1000, 123456789} {
		assert.Equal(t, us, RTTToMicros(RTTFromMicros(us)))
	}
}

func TestCloneMPLS(t *testing.T) {
	assert.Nil(t, CloneMPLS(nil))
	assert.Nil(t, CloneMPLS([]MPLSEntry{}))

	in := []MPLSEntry{{Label: 16, Exp: 1, BottomOfStack: true, TTL: 255}}
	out := CloneMPLS(in)
	require.Equal(t, in, out)
	out[0].Label = 17
	assert.Equal(t, uint32(16), in[0].Label)
}

func TestReplyCount(t *testing.T) {
	tr := Traceroute{Flows: []Flow{{Replies: make([]Reply, 3)}, {}, {Replies: make([]Reply, 2)}}}
	assert.Equal(t, 5, tr.ReplyCount())
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "*", FormatAddr(Unspecified))
	assert.Equal(t, "*", FormatAddr(netip.Addr{}))
	assert.Equal(t, "192.0.2.1", FormatAddr(To128(netip.MustParseAddr("192.0.2.1"))))
	assert.Equal(t, "2001:db8::1", FormatAddr(netip.MustParseAddr("2001:db8::1")))

	assert.Equal(t, "", FormatMPLS(nil))
	assert.Equal(t, "24001:0:0:1 16:1:1:1", FormatMPLS([]MPLSEntry{
		{Label: 24001, TTL: 1},
		{Label: 16, Exp: 1, BottomOfStack: true, TTL: 1},
	}))
}
