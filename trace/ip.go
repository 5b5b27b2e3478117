package trace

import "net/netip"

// Unspecified stands in for every absent address.
var Unspecified = netip.IPv6Unspecified()

// To128 returns a in its 16-byte form, IPv4 addresses being IPv4-mapped.
// The zero Addr becomes Unspecified.
func To128(a netip.Addr) netip.Addr {
	if !a.IsValid() {
		return Unspecified
	}
	return netip.AddrFrom16(a.As16())
}

// IsIPv4 reports whether a is an IPv4 or IPv4-mapped address.
func IsIPv4(a netip.Addr) bool {
	return a.Is4() || a.Is4In6()
}

