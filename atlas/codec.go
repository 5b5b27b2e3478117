package atlas

import (
	"bufio"
	"io"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Decoder reads Atlas results from a stream of JSON documents, usually one
// per line.
type Decoder struct {
	dec *jsoniter.Decoder
}

func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{dec: json.NewDecoder(bufio.NewReader(r))}
}

// Next returns the next result, or io.EOF once the stream is exhausted.
func (d *Decoder) Next() (Traceroute, error) {
	var t Traceroute
	if !d.dec.More() {
		return t, io.EOF
	}
	if err := d.dec.Decode(&t); err != nil {
		return t, err
	}
	return t, nil
}

// Encoder writes Atlas results as JSON lines.
type Encoder struct {
	enc *jsoniter.Encoder
}

func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{enc: json.NewEncoder(w)}
}

func (e *Encoder) Encode(t *Traceroute) error {
	return e.enc.Encode(t)
}
