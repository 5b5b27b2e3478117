package ui

import (
	"fmt"
	"strconv"
	"time"

	"golang.org/x/net/ipv4"
	"golang.org/x/net/ipv6"

	"github.com/dioptra-io/iris-converters/trace"
)

// ReplyHeader names the columns of ReplyRow.
var ReplyHeader = []string{"Flow", "TTL", "Address", "RTT", "ICMP", "Size", "MPLS"}

// ReplyRow formats one reply of flow f. v6 selects the ICMPv6 type names.
func ReplyRow(f *trace.Flow, r *trace.Reply, v6 bool) []string {
	return []string{
		fmt.Sprintf("%d:%d", f.SrcPort, f.DstPort),
		strconv.Itoa(int(r.ProbeTTL)),
		trace.FormatAddr(r.Addr),
		RTTToString(r.RTT),
		ICMPToString(r.ICMPType, r.ICMPCode, v6),
		strconv.Itoa(int(r.Size)),
		trace.FormatMPLS(r.MPLSLabels),
	}
}

func RTTToString(ms float64) string {
	return DurationToString(time.Duration(ms * float64(time.Millisecond)))
}

func ICMPToString(typ, code uint8, v6 bool) string {
	var name string
	if v6 {
		name = ipv6.ICMPType(typ).String()
	} else {
		name = ipv4.ICMPType(typ).String()
	}
	if name == "<nil>" {
		name = "type " + strconv.Itoa(int(typ))
	}
	if code != 0 {
		name += "/" + strconv.Itoa(int(code))
	}
	return name
}

// TracerouteTitle summarizes a traceroute on one line.
func TracerouteTitle(t *trace.Traceroute) string {
	return fmt.Sprintf("%s → %s (%s), measurement %s, agent %s, %s",
		trace.FormatAddr(t.SrcAddr), trace.FormatAddr(t.DstAddr), t.Protocol,
		t.MeasurementID, t.AgentID, t.StartTime.UTC().Format(time.RFC3339))
}

func DurationToString(d time.Duration) string {
	if d < 0 {
		return d.String()
	}
	ud := uint64(d)
	val := float64(ud)
	unit := ""
	if ud < uint64(60*time.Second) {
		switch {
		case ud < uint64(time.Microsecond):
			unit = "ns"
		case ud < uint64(time.Millisecond):
			val = val / 1000
			unit = "us"
		case ud < uint64(time.Second):
			val = val / (1000 * 1000)
			unit = "ms"
		default:
			val = val / (1000 * 1000 * 1000)
			unit = "s"
		}

		result := strconv.FormatFloat(val, 'f', 3, 64)
		return result + unit
	}

	return d.String()
}

func TruncateStringFromEnd(str string, num int) string {
	s := str
	l := len(str)
	if l > num {
		if num > 3 {
			s = str[0:num-3] + "..."
		} else {
			s = str[0:num]
		}
	}
	return s
}
