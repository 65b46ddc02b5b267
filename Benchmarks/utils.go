package Benchmarks

import (
	"DSB-project/mpi-api"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/exp/constraints"
)

const master = 0

var (
	ErrInvalid      = errors.New("invalid argument")
	ErrNotDivisible = errors.New("number of processes does not divide the work")
	ErrCorrupted    = errors.New("data corrupted")
	ErrNotSorted    = errors.New("output not sorted")
)

// gather collects v from every rank on the master, indexed by rank. The other
// ranks get nil.
func gather[T any](comm mpi_api.CommInterface, tag int, v T) ([]T, error) {
	if comm.GetId() != master {
		return nil, comm.Send(master, tag, v)
	}
	res := make([]T, comm.GetSize())
	res[master] = v
	for source := 1; source < comm.GetSize(); source++ {
		if err := comm.Receive(source, tag, &res[source]); err != nil {
			return nil, errors.WithMessage(err, fmt.Sprintf("gathering from %d", source))
		}
	}
	return res, nil
}

// writeOrdered writes data to path after the data of every lower rank, the way
// an ordered shared file write does. Rank 0 truncates the file and returns only
// once the last rank has written.
func writeOrdered(comm mpi_api.CommInterface, tag int, path string, data []byte) error {
	rank, procs := comm.GetId(), comm.GetSize()
	var offset int64
	if rank > 0 {
		if err := comm.Receive(rank-1, tag, &offset); err != nil {
			return err
		}
	}
	flag := os.O_WRONLY | os.O_CREATE
	if rank == 0 {
		flag |= os.O_TRUNC
	}
	f, err := os.OpenFile(path, flag, 0644)
	if err != nil {
		return errors.Wrapf(err, "process %d opening %s", rank, path)
	}
	_, err = f.WriteAt(data, offset)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return errors.Wrapf(err, "process %d writing %s", rank, path)
	}
	if procs == 1 {
		return nil
	}
	if err := comm.Send((rank+1)%procs, tag, offset+int64(len(data))); err != nil {
		return err
	}
	if rank == 0 {
		return comm.Receive(procs-1, tag, &offset)
	}
	return nil
}

func mergeArrays[T constraints.Ordered](a, b []T) []T {
	res := make([]T, len(a)+len(b))
	aHeadIndex := 0
	bHeadIndex := 0
	for i := range res {
		if aHeadIndex >= len(a) {
			res[i] = b[bHeadIndex]
			bHeadIndex++
			continue
		}
		if bHeadIndex >= len(b) {
			res[i] = a[aHeadIndex]
			aHeadIndex++
			continue
		}
		aHead := a[aHeadIndex]
		bHead := b[bHeadIndex]
		if aHead <= bHead {
			res[i] = aHead
			aHeadIndex++
		} else {
			res[i] = bHead
			bHeadIndex++
		}
	}
	return res
}

func isSorted[T constraints.Ordered](s []T) bool {
	for i := 0; i+1 < len(s); i++ {
		if s[i] > s[i+1] {
			return false
		}
	}
	return true
}

// Random is the linear congruential generator of the NAS parallel benchmarks.
// Every rank seeded alike draws the same sequence.
type Random struct {
	x float64
}

func NewRandom() *Random {
	r := Random{x: 314159265}
	return &r
}

// Next returns the next value in [0, 1).
func (r *Random) Next() float64 {
	result := r.x * math.Pow(2, -46)
	r.x = math.Mod(r.x*1220703125, 70368744177664)
	return result
}

func banner(w io.Writer, title string) {
	line := strings.Repeat("=", 70)
	fmt.Fprintln(w, line)
	fmt.Fprintf(w, "== %-64s ==\n", title)
	fmt.Fprintln(w, line)
	fmt.Fprintln(w)
}
