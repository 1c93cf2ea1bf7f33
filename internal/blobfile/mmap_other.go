//go:build !unix

package blobfile

import (
	"errors"
	"os"
)

func mmap(*os.File, int) ([]byte, error) {
	return nil, errors.ErrUnsupported
}

func munmap([]byte) error {
	return nil
}
