package iris

import (
	"bufio"
	"io"

	jsoniter "github.com/json-iterator/go"
)

// Decoder reads Iris flows from a stream of JSON documents.
type Decoder struct {
	dec *jsoniter.Decoder
}

func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{dec: json.NewDecoder(bufio.NewReader(r))}
}

// Next returns the next flow, or io.EOF once the stream is exhausted.
func (d *Decoder) Next() (Traceroute, error) {
	var t Traceroute
	if !d.dec.More() {
		return t, io.EOF
	}
	err := d.dec.Decode(&t)
	return t, err
}
