package wire

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrBadMagic        = errors.New("bad magic")
	ErrTruncated       = errors.New("truncated data")
	ErrParamOverrun    = errors.New("parameters overrun their block")
	ErrAddressType     = errors.New("unsupported address type")
	ErrAddressLength   = errors.New("address length does not match its type")
	ErrMalformedMPLS   = errors.New("malformed mpls label stack")
	ErrParamsTooLong   = errors.New("parameter block longer than 65535 bytes")
	ErrTooManyHops     = errors.New("more than 65535 hops")
	ErrUnsupportedType = errors.New("unsupported object")
)

// DecodeError reports where decoding stopped. Offset is relative to the
// start of the buffer.
type DecodeError struct {
	Offset int
	Type   ObjectType
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Type == 0 {
		return fmt.Sprintf("warts: offset %d: %v", e.Offset, e.Err)
	}
	return fmt.Sprintf("warts: %s at offset %d: %v", e.Type, e.Offset, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
