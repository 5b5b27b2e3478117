//go:build unix

package main

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// mapFile maps a file read-only. The mapping stays valid until release.
func mapFile(path string, maxSize uint64) (*input, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, err
	}
	size := fi.Size()
	if uint64(size) > maxSize {
		return nil, tooLarge(maxSize)
	}
	if size == 0 || !fi.Mode().IsRegular() {
		// empty files cannot be mapped, pipes and devices are read instead
		data, err := readAll(f, maxSize)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		return &input{data: data, release: func() error { return nil }}, nil
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("mmap %s: %w", path, err)
	}
	return &input{data: data, release: func() error { return unix.Munmap(data) }}, nil
}
