package atlas

import (
	"net/netip"
	"strconv"

	"golang.org/x/net/ipv4"
	"golang.org/x/net/ipv6"

	"github.com/dioptra-io/iris-converters/trace"
)

// Destination unreachable codes behind the Atlas error letters.
var (
	unreachableCodesV4 = map[ReplyError]uint8{"N": 0, "H": 1, "P": 2, "p": 3, "A": 13}
	unreachableCodesV6 = map[ReplyError]uint8{"N": 0, "A": 1, "H": 3, "p": 4}
)

// icmpTypeCode infers the ICMP type and code of a reply. Atlas only records
// unreachable errors, every other reply is either the final answer of the
// destination or a time exceeded message from a router.
func icmpTypeCode(r *Reply, proto trace.Protocol, dst netip.Addr) (uint8, uint8) {
	v6 := dst.IsValid() && !trace.IsIPv4(dst)
	if r.Err != "" {
		return unreachable(r.Err, v6)
	}
	if r.From != nil && dst.IsValid() && r.From.Unmap() == dst.Unmap() {
		switch {
		case proto == trace.ICMP && v6:
			return uint8(ipv6.ICMPTypeEchoReply), 0
		case proto == trace.ICMP:
			return uint8(ipv4.ICMPTypeEchoReply), 0
		case v6:
			return uint8(ipv6.ICMPTypeDestinationUnreachable), 4
		default:
			return uint8(ipv4.ICMPTypeDestinationUnreachable), 3
		}
	}
	if r.From == nil {
		return 0, 0
	}
	if v6 {
		return uint8(ipv6.ICMPTypeTimeExceeded), 0
	}
	return uint8(ipv4.ICMPTypeTimeExceeded), 0
}

func unreachable(e ReplyError, v6 bool) (uint8, uint8) {
	if v6 {
		if e == "P" {
			// unrecognized next header
			return uint8(ipv6.ICMPTypeParameterProblem), 1
		}
		typ := uint8(ipv6.ICMPTypeDestinationUnreachable)
		if code, ok := unreachableCodesV6[e]; ok {
			return typ, code
		}
		n, _ := strconv.ParseUint(string(e), 10, 8)
		return typ, uint8(n)
	}
	typ := uint8(ipv4.ICMPTypeDestinationUnreachable)
	if code, ok := unreachableCodesV4[e]; ok {
		return typ, code
	}
	n, _ := strconv.ParseUint(string(e), 10, 8)
	return typ, uint8(n)
}

// replyError is the inverse of icmpTypeCode. Port unreachable messages are
// the normal end of UDP traces and carry no error.
func replyError(typ, code uint8, v6 bool) ReplyError {
	if v6 {
		switch typ {
		case uint8(ipv6.ICMPTypeParameterProblem):
			if code == 1 {
				return "P"
			}
		case uint8(ipv6.ICMPTypeDestinationUnreachable):
			if code == 4 {
				return ""
			}
			for e, c := range unreachableCodesV6 {
				if c == code {
					return e
				}
			}
			return ReplyError(strconv.Itoa(int(code)))
		}
		return ""
	}
	if typ != uint8(ipv4.ICMPTypeDestinationUnreachable) || code == 3 {
		return ""
	}
	for e, c := range unreachableCodesV4 {
		if c == code {
			return e
		}
	}
	return ReplyError(strconv.Itoa(int(code)))
}
