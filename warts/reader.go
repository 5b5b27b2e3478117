package warts

import (
	"io"

	"github.com/dioptra-io/iris-converters/log"
	"github.com/dioptra-io/iris-converters/trace"
	"github.com/dioptra-io/iris-converters/warts/wire"
)

// UnknownMonitor names the agent of files without a cycle hostname.
const UnknownMonitor = "unknown"

type ReaderOption func(*Reader)

func WithReaderLogger(l log.Logger) ReaderOption {
	return func(r *Reader) {
		r.logger = l
	}
}

// Reader yields the traceroutes of a warts file in file order. A Reader is
// not safe for concurrent use.
type Reader struct {
	CycleID uint32
	Monitor string
	Mode    AddressMode

	traceroutes []*wire.Traceroute
	next        int
	logger      log.Logger
}

// NewReader decodes data and resolves its address references. Decoding
// errors are *wire.DecodeError values, unresolvable references
// *DereferenceError values.
func NewReader(data []byte, opts ...ReaderOption) (*Reader, error) {
	r := &Reader{Monitor: UnknownMonitor, logger: log.Nop}
	for _, opt := range opts {
		opt(r)
	}

	objs, err := wire.Decode(data)
	if err != nil {
		return nil, err
	}
	r.Mode, err = Dereference(objs)
	if err != nil {
		return nil, err
	}

	found := false
	for _, obj := range objs {
		switch o := obj.(type) {
		case *wire.Cycle:
			if found {
				continue
			}
			found = true
			r.CycleID = o.CycleID
			if o.Hostname != "" {
				r.Monitor = o.Hostname
			} else {
				r.logger.Debug("cycle %d has no hostname, using %q", o.CycleID, UnknownMonitor)
			}
		case *wire.Traceroute:
			r.traceroutes = append(r.traceroutes, o)
		}
	}
	if !found {
		r.logger.Debug("no cycle object, using cycle 0 and monitor %q", UnknownMonitor)
	}
	r.logger.Debug("decoded %d objects, %d traceroutes, %s", len(objs), len(r.traceroutes), r.Mode)
	return r, nil
}

// Len returns the number of traceroutes not read yet.
func (r *Reader) Len() int {
	return len(r.traceroutes) - r.next
}

// NextTraceroute returns the next traceroute, or io.EOF after the last one.
func (r *Reader) NextTraceroute() (trace.Traceroute, error) {
	if r.next >= len(r.traceroutes) {
		return trace.Traceroute{}, io.EOF
	}
	t := r.traceroutes[r.next]
	r.next++
	return toCanonical(t, r.CycleID, r.Monitor)
}

// Next returns the replies of the next traceroute, or io.EOF after the last
// one.
func (r *Reader) Next() ([]trace.Reply, error) {
	t, err := r.NextTraceroute()
	if err != nil {
		return nil, err
	}
	return t.Flows[0].Replies, nil
}
