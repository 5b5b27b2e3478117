package main

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

var (
	gzipMagic = []byte{0x1f, 0x8b}
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
)

type input struct {
	data    []byte
	release func() error
}

// loadInput reads the whole input, from stdin when path is empty. Files are
// mapped in memory where the platform allows it. gzip and zstd inputs are
// decompressed. Inputs larger than maxSize are rejected.
func loadInput(path string, maxSize uint64) (*input, error) {
	var in *input
	if path == "" || path == "-" {
		data, err := readAll(os.Stdin, maxSize)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		in = &input{data: data, release: func() error { return nil }}
	} else {
		var err error
		if in, err = mapFile(path, maxSize); err != nil {
			return nil, err
		}
	}

	data, err := decompress(in.data, maxSize)
	if err != nil {
		in.release()
		return nil, err
	}
	if data != nil {
		if err := in.release(); err != nil {
			return nil, err
		}
		in = &input{data: data, release: func() error { return nil }}
	}
	return in, nil
}

// decompress returns the decompressed content of b, or nil when b is not
// compressed.
func decompress(b []byte, maxSize uint64) ([]byte, error) {
	switch {
	case bytes.HasPrefix(b, gzipMagic):
		r, err := gzip.NewReader(bytes.NewReader(b))
		if err != nil {
			return nil, fmt.Errorf("gzip: %w", err)
		}
		defer r.Close()
		data, err := readAll(r, maxSize)
		if err != nil {
			return nil, fmt.Errorf("gzip: %w", err)
		}
		return data, nil
	case bytes.HasPrefix(b, zstdMagic):
		d, err := zstd.NewReader(bytes.NewReader(b), zstd.WithDecoderMaxMemory(min(maxSize, 1<<63)))
		if err != nil {
			return nil, fmt.Errorf("zstd: %w", err)
		}
		defer d.Close()
		data, err := readAll(d, maxSize)
		if err != nil {
			return nil, fmt.Errorf("zstd: %w", err)
		}
		return data, nil
	}
	return nil, nil
}

func readAll(r io.Reader, maxSize uint64) ([]byte, error) {
	limit := int64(math.MaxInt64)
	if maxSize < math.MaxInt64 {
		limit = int64(maxSize) + 1
	}
	b, err := io.ReadAll(io.LimitReader(r, limit))
	if err != nil {
		return nil, err
	}
	if uint64(len(b)) > maxSize {
		return nil, tooLarge(maxSize)
	}
	return b, nil
}

func tooLarge(maxSize uint64) error {
	return fmt.Errorf("input larger than %s", humanize.Bytes(maxSize))
}
