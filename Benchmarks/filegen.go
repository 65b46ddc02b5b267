package Benchmarks

import (
	"bufio"
	"math/rand"
	"os"

	"github.com/pkg/errors"
)

// GenerateFile writes n random digits from 0 to 8 to path.
func GenerateFile(path string, n int, r *rand.Rand) error {
	if n <= 0 {
		return errors.Wrap(ErrInvalid, "number of characters")
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating %s", path)
	}
	w := bufio.NewWriter(f)
	for i := 0; i < n; i++ {
		w.WriteByte(byte('0' + r.Intn(9)))
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return errors.Wrapf(err, "writing %s", path)
	}
	return errors.Wrapf(f.Close(), "closing %s", path)
}
