package gridsort

import (
	"DSB-project/matrix"
	"DSB-project/mpi-api"
	"io"
	"time"
)

type Options struct {
	// Seed for the initial matrix. Zero seeds from the clock.
	Seed int64
	// Matrix replaces the random initial matrix on the coordinator.
	Matrix *matrix.Matrix
	// MaxPasses stops an unbounded strategy after that many passes. Zero
	// means no limit.
	MaxPasses int
	// Verbose writes the initial and final matrix to Out.
	Verbose bool
	Out     io.Writer
}

type Result struct {
	Procs     int
	N         int
	Passes    int
	RowPasses int
	// Sorted is set on the coordinator once the final check passed, and on
	// workers once the coordinator announced it.
	Sorted  bool
	Elapsed time.Duration
	// Matrix is only set on the coordinator.
	Matrix *matrix.Matrix
}

type role interface {
	run() (*Result, error)
}

// Run sorts an n x n matrix with the ranks of comm. Rank 0 coordinates, every
// other rank works on the shards it is sent.
func Run(comm mpi_api.CommInterface, s Strategy, n int, opts Options) (*Result, error) {
	return RunWith(NewCommTransport(comm), comm.GetId(), comm.GetSize(), s, n, opts)
}

func RunWith(t ShardTransport, rank, procs int, s Strategy, n int, opts Options) (*Result, error) {
	if err := s.Validate(n, procs); err != nil {
		return nil, err
	}
	var r role
	if rank == 0 {
		c, err := newCoordinator(t, procs, s, n, opts)
		if err != nil {
			return nil, err
		}
		r = c
	} else {
		r = newWorker(t, rank, procs, s, n)
	}
	return r.run()
}
