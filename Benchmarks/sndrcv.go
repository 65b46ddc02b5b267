package Benchmarks

import (
	"DSB-project/mpi-api"
	"fmt"
	"io"
	"math/rand"
	"time"

	"github.com/pkg/errors"
	"github.com/toolkits/pkg/logger"
)

const (
	ringHeadTag = iota + 60
	ringArrayTag
	ringDoneTag
	ringRuntimeTag
)

type RingParams struct {
	Size int
	Runs int
	Seed int64
}

func (p RingParams) Validate() error {
	if p.Size <= 0 {
		return errors.Wrap(ErrInvalid, "size of array")
	}
	if p.Runs <= 0 {
		return errors.Wrap(ErrInvalid, "number of runs")
	}
	return nil
}

type RingResult struct {
	// Heads and Times are only set on the master.
	Heads []int
	Times []float64
	// Received counts the arrays this rank got from its predecessor.
	Received int
	Elapsed  time.Duration
}

/*
	RingBenchmark passes an array around the ring of ranks, starting at a head
	the master draws for every run. The head times the trip until the tail, its
	predecessor, has the array, and reports the time to the master.
*/
func RingBenchmark(comm mpi_api.CommInterface, p RingParams, out io.Writer) (*RingResult, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	rank, procs := comm.GetId(), comm.GetSize()
	seed := p.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	r := rand.New(rand.NewSource(seed))
	res := new(RingResult)
	start := time.Now()
	for run := 0; run < p.Runs; run++ {
		var head int32
		if rank == master {
			head = int32(r.Intn(procs))
			for destination := 1; destination < procs; destination++ {
				if err := comm.Send(destination, ringHeadTag, head); err != nil {
					return nil, err
				}
			}
		} else if err := comm.Receive(master, ringHeadTag, &head); err != nil {
			return nil, err
		}

		runtime, err := ringBroadcast(comm, int(head), p.Size, res)
		if err != nil {
			return nil, errors.WithMessage(err, fmt.Sprintf("run %d", run))
		}
		switch {
		case rank == master && int(head) == master:
			res.Heads, res.Times = append(res.Heads, master), append(res.Times, runtime)
		case rank == master:
			if err := comm.Receive(int(head), ringRuntimeTag, &runtime); err != nil {
				return nil, err
			}
			res.Heads, res.Times = append(res.Heads, int(head)), append(res.Times, runtime)
		case rank == int(head):
			if err := comm.Send(master, ringRuntimeTag, runtime); err != nil {
				return nil, err
			}
		}
	}
	if err := comm.Barrier(); err != nil {
		return nil, err
	}
	res.Elapsed = time.Since(start)
	if rank == master {
		writeRingReport(out, p, procs, res)
	}
	return res, nil
}

// ringBroadcast sends an array of size bytes from head around the ring. Every
// other rank checks what it got before passing it on. The head returns the
// seconds until the tail acknowledged.
func ringBroadcast(comm mpi_api.CommInterface, head, size int, res *RingResult) (float64, error) {
	rank, procs := comm.GetId(), comm.GetSize()
	successor := (rank + 1) % procs
	predecessor := (rank - 1 + procs) % procs
	if procs == 1 {
		return 0, nil
	}
	if rank == head {
		array := make([]byte, size)
		for i := range array {
			array[i] = fillValue
		}
		start := time.Now()
		if err := comm.Send(successor, ringArrayTag, array); err != nil {
			return 0, err
		}
		var done bool
		if err := comm.Receive(predecessor, ringDoneTag, &done); err != nil {
			return 0, err
		}
		return time.Since(start).Seconds(), nil
	}

	var array []byte
	if err := comm.Receive(predecessor, ringArrayTag, &array); err != nil {
		return 0, err
	}
	res.Received++
	if len(array) != size {
		return 0, errors.Wrapf(ErrCorrupted, "process %d got %d bytes from %d, want %d", rank, len(array), predecessor, size)
	}
	for _, c := range array {
		if c != fillValue {
			return 0, errors.Wrapf(ErrCorrupted, "process %d got a changed array from %d", rank, predecessor)
		}
	}
	logger.Debugf("process %d received array from process %d", rank, predecessor)
	if successor == head {
		return 0, comm.Send(head, ringDoneTag, true)
	}
	return 0, comm.Send(successor, ringArrayTag, array)
}

func writeRingReport(out io.Writer, p RingParams, procs int, res *RingResult) {
	fmt.Fprintln(out)
	banner(out, "Run Information")
	fmt.Fprintf(out, "Total number of runs: %d\n\n", p.Runs)
	fmt.Fprintf(out, "Notes:\n")
	fmt.Fprintf(out, "-- Head is the process that sent the array first.\n")
	fmt.Fprintf(out, "-- Tail is the process that received the array last.\n")
	fmt.Fprintf(out, "-- Runtime is measured in seconds.\n\n")
	fmt.Fprintf(out, "Process\t\tHead\t\tTail\t\t    Runtime\n")
	fmt.Fprintf(out, "-------\t\t----\t\t----\t\t    -------\n")
	total := 0.0
	for run, head := range res.Heads {
		tail := (head - 1 + procs) % procs
		fmt.Fprintf(out, "%7d\t\t%4d\t\t%4d\t\t    %7.2f\n", run, head, tail, res.Times[run])
		total += res.Times[run]
	}
	fmt.Fprintln(out)
	banner(out, "Summary")
	fmt.Fprintf(out, "Total number of processes:                    %10d\n\n", procs)
	fmt.Fprintf(out, "Array size:                                   %10d\n\n", p.Size)
	fmt.Fprintf(out, "Average time to send array from head to tail:    %10.2f seconds\n\n", total/float64(p.Runs))
	fmt.Fprintf(out, "Total runtime:                                   %10.2f seconds\n\n", res.Elapsed.Seconds())
}
