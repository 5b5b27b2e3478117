package trace

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyFlow = errors.New("flow has no replies")
)

// UnknownProtocolError is returned when a protocol name, number or trace
// type has no canonical protocol.
type UnknownProtocolError struct {
	Name   string
	Number int
}

func (e *UnknownProtocolError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("unknown protocol: %q", e.Name)
	}
	return fmt.Sprintf("unknown protocol number: %d", e.Number)
}
