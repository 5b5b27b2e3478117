package console

import (
	"bytes"
	"net/netip"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dioptra-io/iris-converters/trace"
)

func TestWrite(t *testing.T) {
	dst := trace.To128(netip.MustParseAddr("192.0.2.10"))
	tr := trace.Traceroute{
		MeasurementID: "7",
		AgentID:       "ams-nl",
		StartTime:     time.Date(2023, 3, 1, 12, 0, 0, 0, time.UTC),
		Protocol:      trace.UDP,
		SrcAddr:       trace.To128(netip.MustParseAddr("10.0.0.2")),
		DstAddr:       dst,
		Flows: []trace.Flow{{SrcPort: 24000, DstPort: 33434, Replies: []trace.Reply{
			{ProbeTTL: 1, Addr: trace.To128(netip.MustParseAddr("10.0.0.1")), RTT: 1.25, ICMPType: 11, Size: 56},
			{ProbeTTL: 2, Addr: trace.Unspecified},
			{ProbeTTL: 10, Addr: dst, RTT: 25, ICMPType: 3, ICMPCode: 3, Size: 140},
		}}},
	}

	var buf bytes.Buffer
	require.NoError(t, NewWriter(&buf).Write(&tr))
	lines := strings.Split(buf.String(), "\n")
	require.Len(t, lines, 7)
	assert.Equal(t, "10.0.0.2 → 192.0.2.10 (UDP), measurement 7, agent ams-nl, 2023-03-01T12:00:00Z", lines[0])
	assert.Equal(t, "  Flow         TTL  Address          RTT  ICMP                       Size  MPLS", lines[1])
	assert.Equal(t, "  24000:33434    1  10.0.0.1     1.250ms  time exceeded                56", lines[2])
	assert.Equal(t, "  24000:33434    2  *            0.000ns  echo reply                    0", lines[3])
	assert.Equal(t, "  24000:33434   10  192.0.2.10  25.000ms  destination unreachable/3   140", lines[4])
	assert.Equal(t, "", lines[5])
}
