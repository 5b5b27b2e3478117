package wire

import (
	"encoding/binary"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/pkg/errors"
	"golang.org/x/net/icmp"
)

// RFC 4950 incoming MPLS label stack object.
const (
	classMPLSLabelStack        = 1
	typeIncomingMPLSLabelStack = 1

	protoICMP = 1
)

// ICMPExtension is one RFC 4884 extension object of an ICMP reply.
type ICMPExtension struct {
	Class uint8
	Type  uint8
	Data  []byte
}

type MPLSLabel struct {
	Label         uint32
	Exp           uint8
	BottomOfStack bool
	TTL           uint8
}

// NewMPLSExtension builds an incoming MPLS label stack extension.
func NewMPLSExtension(labels []MPLSLabel) (ICMPExtension, error) {
	stack := icmp.MPLSLabelStack{
		Class:  classMPLSLabelStack,
		Type:   typeIncomingMPLSLabelStack,
		Labels: make([]icmp.MPLSLabel, len(labels)),
	}
	for i, l := range labels {
		stack.Labels[i] = icmp.MPLSLabel{Label: int(l.Label), TC: int(l.Exp), S: l.BottomOfStack, TTL: int(l.TTL)}
	}
	b, err := stack.Marshal(protoICMP)
	if err != nil {
		return ICMPExtension{}, errors.Wrap(err, "NewMPLSExtension: could not marshal label stack")
	}
	// b starts with the 4-byte object header
	return ICMPExtension{Class: b[2], Type: b[3], Data: b[4:]}, nil
}

func (e ICMPExtension) IsMPLS() bool {
	return e.Class == classMPLSLabelStack && e.Type == typeIncomingMPLSLabelStack
}

// MPLSLabels decodes the label stack entries of an MPLS extension.
func (e ICMPExtension) MPLSLabels() ([]MPLSLabel, error) {
	if !e.IsMPLS() {
		return nil, errors.Wrapf(ErrMalformedMPLS, "class %d type %d", e.Class, e.Type)
	}
	if len(e.Data)%4 != 0 {
		return nil, errors.Wrapf(ErrMalformedMPLS, "%d bytes", len(e.Data))
	}
	if len(e.Data) == 0 {
		return nil, nil
	}
	// Each entry is decoded on its own: chained decoding stops at the first
	// bottom of stack bit, which routers do not always set on the last entry.
	labels := make([]MPLSLabel, 0, len(e.Data)/4)
	for off := 0; off < len(e.Data); off += 4 {
		pkt := gopacket.NewPacket(e.Data[off:off+4], layers.LayerTypeMPLS, gopacket.DecodeOptions{NoCopy: true})
		m, ok := pkt.Layer(layers.LayerTypeMPLS).(*layers.MPLS)
		if !ok {
			return nil, errors.Wrapf(ErrMalformedMPLS, "entry %d", off/4)
		}
		labels = append(labels, MPLSLabel{
			Label:         m.Label,
			Exp:           m.TrafficClass,
			BottomOfStack: m.StackBottom,
			TTL:           m.TTL,
		})
	}
	return labels, nil
}

// Encoded as the total length of the extensions, then for each extension
// its data length, class, type and data.
func (r *reader) icmpExtensions() []ICMPExtension {
	total := int(r.u16())
	if !r.need(total) {
		return nil
	}
	end := r.off + total
	var exts []ICMPExtension
	for r.off < end && r.err == nil {
		n := int(r.u16())
		ext := ICMPExtension{Class: r.u8(), Type: r.u8()}
		ext.Data = r.bytes(n)
		exts = append(exts, ext)
	}
	if r.err == nil && r.off != end {
		r.err = ErrParamOverrun
	}
	return exts
}

func (p *params) icmpExtensions(flag int, exts []ICMPExtension) {
	p.set(flag)
	total := 0
	for _, e := range exts {
		total += 4 + len(e.Data)
	}
	p.buf = binary.BigEndian.AppendUint16(p.buf, uint16(total))
	for _, e := range exts {
		p.buf = binary.BigEndian.AppendUint16(p.buf, uint16(len(e.Data)))
		p.buf = append(p.buf, e.Class, e.Type)
		p.buf = append(p.buf, e.Data...)
	}
}
