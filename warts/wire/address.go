package wire

import (
	"encoding/binary"
	"net/netip"
)

const (
	addrTypeIPv4 = 0x01
	addrTypeIPv6 = 0x02
)

// Address is an address parameter: either a literal address, or a
// reference (Ref) to an entry of an address table.
type Address struct {
	Ref bool
	ID  uint32
	IP  netip.Addr
}

func AddressOf(ip netip.Addr) *Address {
	return &Address{IP: ip}
}

func AddressRef(id uint32) *Address {
	return &Address{Ref: true, ID: id}
}

// Encoded as a length byte. A zero length is followed by a 4-byte table
// reference, any other length by the address type and the address bytes.
func (r *reader) address() *Address {
	n := int(r.u8())
	if r.err != nil {
		return nil
	}
	if n == 0 {
		return &Address{Ref: true, ID: r.u32()}
	}
	ip := r.addr(n)
	if r.err != nil {
		return nil
	}
	return &Address{IP: ip}
}

// addr reads an address type byte and n address bytes.
func (r *reader) addr(n int) netip.Addr {
	typ := r.u8()
	b := r.bytes(n)
	if r.err != nil {
		return netip.Addr{}
	}
	switch {
	case typ == addrTypeIPv4 && n == 4:
		return netip.AddrFrom4([4]byte(b))
	case typ == addrTypeIPv6 && n == 16:
		return netip.AddrFrom16([16]byte(b))
	case typ != addrTypeIPv4 && typ != addrTypeIPv6:
		r.err = ErrAddressType
	default:
		r.err = ErrAddressLength
	}
	return netip.Addr{}
}

func appendAddr(dst []byte, ip netip.Addr) []byte {
	ip = ip.Unmap()
	if ip.Is4() {
		b := ip.As4()
		dst = append(dst, 4, addrTypeIPv4)
		return append(dst, b[:]...)
	}
	b := ip.As16()
	dst = append(dst, 16, addrTypeIPv6)
	return append(dst, b[:]...)
}

func (p *params) address(flag int, a *Address) {
	p.set(flag)
	if a.Ref {
		p.buf = append(p.buf, 0)
		p.buf = binary.BigEndian.AppendUint32(p.buf, a.ID)
		return
	}
	p.buf = appendAddr(p.buf, a.IP)
}

// GlobalAddress is a file-level address table entry, found in files written
// by older scamper versions. Entries are numbered from 0 in file order.
type GlobalAddress struct {
	IP netip.Addr
}

func (a *GlobalAddress) Type() ObjectType { return TypeAddress }

func decodeGlobalAddress(r *reader) *GlobalAddress {
	n := int(r.u8())
	return &GlobalAddress{IP: r.addr(n)}
}

func (a *GlobalAddress) appendBody(dst []byte) []byte {
	return appendAddr(dst, a.IP)
}
