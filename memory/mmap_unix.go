//go:build unix

package memory

import (
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

func allocate(size int) ([]byte, func([]byte) error, error) {
	b, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "mapping %d bytes", size)
	}
	return b, unix.Munmap, nil
}
