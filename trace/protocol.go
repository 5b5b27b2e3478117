package trace

type Protocol uint32

const (
	ICMP Protocol = iota
	UDP
	TCP
)

// IANA protocol numbers.
const (
	IANAICMPv4 = 1  // ICMP for IPv4
	IANATCP    = 6  // TCP
	IANAUDP    = 17 // UDP
	IANAICMPv6 = 58 // ICMP for IPv6
)

func (p Protocol) String() string {
	switch p {
	case ICMP:
		return "ICMP"
	case UDP:
		return "UDP"
	case TCP:
		return "TCP"
	}
	return "UNKNOWN"
}

// ProtocolFromString maps a probe protocol name to its canonical protocol.
// ICMPv6 is folded into ICMP; the address family of the destination keeps
// the distinction.
func ProtocolFromString(s string) (Protocol, error) {
	switch s {
	case "icmp", "icmp6":
		return ICMP, nil
	case "udp":
		return UDP, nil
	}
	return 0, &UnknownProtocolError{Name: s}
}

// ProtocolFromIANA maps an IANA protocol number to its canonical protocol.
func ProtocolFromIANA(n uint8) (Protocol, error) {
	switch n {
	case IANAICMPv4, IANAICMPv6:
		return ICMP, nil
	case IANAUDP:
		return UDP, nil
	case IANATCP:
		return TCP, nil
	}
	return 0, &UnknownProtocolError{Number: int(n)}
}

// IANA returns the protocol number of p for the given address family.
func (p Protocol) IANA(v6 bool) uint8 {
	switch p {
	case ICMP:
		if v6 {
			return IANAICMPv6
		}
		return IANAICMPv4
	case UDP:
		return IANAUDP
	}
	return IANATCP
}
