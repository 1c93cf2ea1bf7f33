// Package blobfile opens stage files as read-only byte slices, memory-mapped
// where the platform supports it.
package blobfile

import (
	"errors"
	"io"
	"os"
)

// ErrTooLarge is returned for files that cannot be indexed as a []byte.
var ErrTooLarge = errors.New("blobfile: file too large")

// File is an opened blob. Bytes is valid until Close.
type File struct {
	data    []byte
	mmapped bool
}

// Open maps path read-only. If mmap is unavailable it falls back to reading
// the whole file. The returned file must be closed to release any mapping.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	stat, err := f.Stat()
	if err != nil {
		return nil, err
	}
	size64 := stat.Size()
	if size64 < 0 || size64 > int64(int(^uint(0)>>1)) {
		return nil, ErrTooLarge
	}
	size := int(size64)

	if size > 0 {
		if data, err := mmap(f, size); err == nil {
			return &File{data: data, mmapped: true}, nil
		}
	}

	data, err := readAllAt(f, size)
	if err != nil {
		return nil, err
	}
	return &File{data: data}, nil
}

// Bytes returns the file contents.
func (f *File) Bytes() []byte {
	if f == nil {
		return nil
	}
	return f.data
}

// Mapped reports whether the contents are memory-mapped.
func (f *File) Mapped() bool {
	return f != nil && f.mmapped
}

// Close releases the mapping, if any.
func (f *File) Close() error {
	if f == nil || f.data == nil {
		return nil
	}
	var err error
	if f.mmapped {
		err = munmap(f.data)
	}
	f.data = nil
	f.mmapped = false
	return err
}

func readAllAt(r io.ReaderAt, size int) ([]byte, error) {
	if size == 0 {
		return []byte{}, nil
	}
	out := make([]byte, size)
	var off int64
	for off < int64(size) {
		n, err := r.ReadAt(out[off:], off)
		off += int64(n)
		if err == nil {
			continue
		}
		if err == io.EOF && off == int64(size) {
			break
		}
		return nil, err
	}
	return out, nil
}
