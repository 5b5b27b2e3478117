package wire

import (
	"encoding/binary"
	"math"

	"github.com/pkg/errors"
)

// Decode decodes every object of a warts buffer, in file order. Objects of
// unknown types are returned as *Unknown. Any malformed or truncated object
// fails the whole decode with a *DecodeError.
func Decode(b []byte) ([]Object, error) {
	var objs []Object
	for off := 0; off < len(b); {
		if len(b)-off < headerLen {
			return nil, &DecodeError{Offset: off, Err: ErrTruncated}
		}
		magic := binary.BigEndian.Uint16(b[off:])
		typ := ObjectType(binary.BigEndian.Uint16(b[off+2:]))
		length := uint64(binary.BigEndian.Uint32(b[off+4:]))
		if magic != Magic {
			return nil, &DecodeError{Offset: off, Err: errors.Wrapf(ErrBadMagic, "%#06x", magic)}
		}
		start := off + headerLen
		if length > uint64(len(b)-start) {
			return nil, &DecodeError{Offset: off, Type: typ, Err: ErrTruncated}
		}
		end := start + int(length)

		r := &reader{b: b[start:end]}
		obj := decodeObject(typ, r)
		if r.err != nil {
			return nil, &DecodeError{Offset: start + r.off, Type: typ, Err: r.err}
		}
		objs = append(objs, obj)
		off = end
	}
	return objs, nil
}

func decodeObject(typ ObjectType, r *reader) Object {
	switch typ {
	case TypeList:
		return decodeList(r)
	case TypeCycleStart:
		return decodeCycle(r, false)
	case TypeCycleDefinition:
		return decodeCycle(r, true)
	case TypeCycleStop:
		return decodeCycleStop(r)
	case TypeAddress:
		return decodeGlobalAddress(r)
	case TypeTraceroute:
		return decodeTraceroute(r)
	}
	return &Unknown{Kind: typ, Data: r.bytes(r.remaining())}
}

// Marshal encodes one object with its header.
func Marshal(obj Object) ([]byte, error) {
	body := make([]byte, headerLen, 256)
	var err error
	switch o := obj.(type) {
	case *List:
		body, err = o.appendBody(body)
	case *Cycle:
		body, err = o.appendBody(body)
	case *CycleStop:
		body, err = o.appendBody(body)
	case *GlobalAddress:
		body = o.appendBody(body)
	case *Traceroute:
		body, err = o.appendBody(body)
	case *Unknown:
		body = append(body, o.Data...)
	default:
		return nil, errors.Wrapf(ErrUnsupportedType, "Marshal: %T", obj)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "Marshal: %s", obj.Type())
	}
	if uint64(len(body)-headerLen) > math.MaxUint32 {
		return nil, errors.Errorf("Marshal: %s body too long", obj.Type())
	}
	binary.BigEndian.PutUint16(body[0:], Magic)
	binary.BigEndian.PutUint16(body[2:], uint16(obj.Type()))
	binary.BigEndian.PutUint32(body[4:], uint32(len(body)-headerLen))
	return body, nil
}
