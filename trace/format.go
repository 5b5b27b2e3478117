package trace

import (
	"fmt"
	"net/netip"
	"strings"
)

// FormatAddr renders a canonical address unmapped, and "*" when it is
// unspecified.
func FormatAddr(a netip.Addr) string {
	if !a.IsValid() || a == Unspecified {
		return "*"
	}
	return a.Unmap().String()
}

// String renders the entry as "label:exp:s:ttl".
func (e MPLSEntry) String() string {
	s := 0
	if e.BottomOfStack {
		s = 1
	}
	return fmt.Sprintf("%d:%d:%d:%d", e.Label, e.Exp, s, e.TTL)
}

// FormatMPLS renders a label stack, top entry first, separated by spaces.
func FormatMPLS(entries []MPLSEntry) string {
	parts := make([]string, len(entries))
	for i, e := range entries {
		parts[i] = e.String()
	}
	return strings.Join(parts, " ")
}
