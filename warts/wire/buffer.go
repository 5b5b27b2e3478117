package wire

import (
	"bytes"
	"encoding/binary"
	"math"
	"math/bits"
)

// reader decodes one object body. The first error sticks and turns every
// later read into a no-op returning zero values.
type reader struct {
	b   []byte
	off int
	err error
}

func (r *reader) need(n int) bool {
	if r.err != nil {
		return false
	}
	if n < 0 || len(r.b)-r.off < n {
		r.err = ErrTruncated
		return false
	}
	return true
}

func (r *reader) remaining() int {
	return len(r.b) - r.off
}

func (r *reader) u8() uint8 {
	if !r.need(1) {
		return 0
	}
	v := r.b[r.off]
	r.off++
	return v
}

func (r *reader) u16() uint16 {
	if !r.need(2) {
		return 0
	}
	v := binary.BigEndian.Uint16(r.b[r.off:])
	r.off += 2
	return v
}

func (r *reader) u32() uint32 {
	if !r.need(4) {
		return 0
	}
	v := binary.BigEndian.Uint32(r.b[r.off:])
	r.off += 4
	return v
}

// bytes returns a copy of the next n bytes.
func (r *reader) bytes(n int) []byte {
	if !r.need(n) {
		return nil
	}
	out := make([]byte, n)
	copy(out, r.b[r.off:r.off+n])
	r.off += n
	return out
}

func (r *reader) cstring() string {
	if r.err != nil {
		return ""
	}
	i := bytes.IndexByte(r.b[r.off:], 0)
	if i < 0 {
		r.err = ErrTruncated
		return ""
	}
	s := string(r.b[r.off : r.off+i])
	r.off += i + 1
	return s
}

func (r *reader) timeval() Timeval {
	return Timeval{Sec: r.u32(), Usec: r.u32()}
}

// flagSet holds flags 1 to 63; flag n is bit n-1. Higher flags only
// mark the set as carrying parameters this package does not know.
type flagSet struct {
	bits     uint64
	overflow bool
}

func (f flagSet) has(n int) bool {
	return f.bits&(1<<(n-1)) != 0
}

func (f flagSet) empty() bool {
	return f.bits == 0 && !f.overflow
}

func (r *reader) flags() flagSet {
	var fs flagSet
	for i := 0; ; i++ {
		b := r.u8()
		if r.err != nil {
			return flagSet{}
		}
		if i < 9 {
			fs.bits |= uint64(b&0x7f) << (7 * i)
		} else if b&0x7f != 0 {
			fs.overflow = true
		}
		if b&0x80 == 0 {
			return fs
		}
	}
}

// params reads a flag set and its parameter block, calling fn for every
// known flag up to max in order. Unknown flags are skipped using the
// parameter length.
func (r *reader) params(max int, fn func(flag int)) {
	fs := r.flags()
	if r.err != nil || fs.empty() {
		return
	}
	plen := int(r.u16())
	if !r.need(plen) {
		return
	}
	end := r.off + plen
	for f := 1; f <= max && r.err == nil; f++ {
		if fs.has(f) {
			fn(f)
		}
	}
	if r.err != nil {
		return
	}
	if r.off > end {
		r.err = ErrParamOverrun
		return
	}
	r.off = end
}

// params accumulates a parameter block. Parameters must be added in
// increasing flag order.
type params struct {
	flags uint64
	buf   []byte
}

func (p *params) set(flag int) {
	p.flags |= 1 << (flag - 1)
}

func (p *params) u8(flag int, v uint8) {
	p.set(flag)
	p.buf = append(p.buf, v)
}

func (p *params) u16(flag int, v uint16) {
	p.set(flag)
	p.buf = binary.BigEndian.AppendUint16(p.buf, v)
}

func (p *params) u32(flag int, v uint32) {
	p.set(flag)
	p.buf = binary.BigEndian.AppendUint32(p.buf, v)
}

func (p *params) cstring(flag int, s string) {
	p.set(flag)
	p.buf = append(p.buf, s...)
	p.buf = append(p.buf, 0)
}

func (p *params) timeval(flag int, tv Timeval) {
	p.set(flag)
	p.buf = binary.BigEndian.AppendUint32(p.buf, tv.Sec)
	p.buf = binary.BigEndian.AppendUint32(p.buf, tv.Usec)
}

// appendTo appends the flag set, and the parameter block when at least one
// flag is set.
func (p *params) appendTo(dst []byte) ([]byte, error) {
	dst = appendFlags(dst, p.flags)
	if p.flags == 0 {
		return dst, nil
	}
	if len(p.buf) > math.MaxUint16 {
		return nil, ErrParamsTooLong
	}
	dst = binary.BigEndian.AppendUint16(dst, uint16(len(p.buf)))
	return append(dst, p.buf...), nil
}

func appendFlags(dst []byte, flags uint64) []byte {
	if flags == 0 {
		return append(dst, 0)
	}
	n := (bits.Len64(flags) + 6) / 7
	for i := 0; i < n; i++ {
		b := byte(flags>>(7*i)) & 0x7f
		if i < n-1 {
			b |= 0x80
		}
		dst = append(dst, b)
	}
	return dst
}
