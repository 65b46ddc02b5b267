package Benchmarks

import (
	"DSB-project/memory"
	"DSB-project/mpi-api"
	"fmt"
	"io"
	"math"
	"math/rand"
	"time"

	"github.com/exascience/pargo/parallel"
	"github.com/pkg/errors"
	"github.com/toolkits/pkg/logger"
)

const (
	cpuTimesTag = iota
	memTimesTag

	fillValue = 'B'
)

type CPUMemParams struct {
	Threads  int
	CPURuns  int
	MinSize  int
	MaxSize  int
	Sleep    time.Duration
	MemRuns  int
	PageSize int
	Seed     int64
}

func (p CPUMemParams) Validate() error {
	switch {
	case p.Threads <= 0:
		return errors.Wrap(ErrInvalid, "number of threads for CPU test")
	case p.CPURuns <= 0:
		return errors.Wrap(ErrInvalid, "number of times to repeat CPU test")
	case p.MinSize <= 0:
		return errors.Wrap(ErrInvalid, "minimum size of array for memory test")
	case p.MaxSize <= p.MinSize:
		return errors.Wrap(ErrInvalid, "maximum size of array must be greater than minimum size of array")
	case p.Sleep < 0:
		return errors.Wrap(ErrInvalid, "seconds to sleep during memory test")
	case p.MemRuns <= 0:
		return errors.Wrap(ErrInvalid, "number of times to repeat memory test")
	}
	return nil
}

type CPUMemResult struct {
	// ThreadTimes holds the CPU test seconds per thread, indexed by rank.
	ThreadTimes [][]float64
	// MemTimes holds the total memory test seconds, indexed by rank.
	MemTimes []float64
	Elapsed  time.Duration
}

/*
	CPUMemBenchmark runs the CPU test on p.Threads goroutines of every rank, then
	the memory test p.MemRuns times. Each memory run fills an allocation of random
	size, sleeps, and checks nothing changed. The master prints the report.
*/
func CPUMemBenchmark(comm mpi_api.CommInterface, p CPUMemParams, out io.Writer) (*CPUMemResult, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if p.PageSize <= 0 {
		p.PageSize = 4096
	}
	seed := p.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rank := comm.GetId()
	r := rand.New(rand.NewSource(seed + int64(rank)))
	start := time.Now()

	if rank == master {
		fmt.Fprintf(out, "\nCreating %d threads for each of the %d processes for CPU test... ", p.Threads, comm.GetSize())
	}
	threadTimes, err := gather(comm, cpuTimesTag, cpuTest(p.Threads, p.CPURuns, r.Int63()))
	if err != nil {
		return nil, err
	}
	if rank == master {
		fmt.Fprintf(out, "Success!\n\n")
		fmt.Fprintf(out, "Now executing memory test with all %d processes using various array sizes... ", comm.GetSize())
	}

	size := (p.MaxSize + p.PageSize - 1) / p.PageSize * p.PageSize
	mem, err := memory.NewVmem(size, p.PageSize)
	if err != nil {
		return nil, errors.WithMessage(err, fmt.Sprintf("process %d", rank))
	}
	defer mem.Close()
	var memTime time.Duration
	for run := 1; run <= p.MemRuns; run++ {
		length := r.Intn(p.MaxSize-p.MinSize+1) + p.MinSize
		logger.Debugf("process %d: memory test with array size %d, run %d of %d", rank, length, run, p.MemRuns)
		runStart := time.Now()
		corrupt, err := memTest(mem, length, p.Sleep)
		memTime += time.Since(runStart)
		if err != nil {
			return nil, errors.WithMessage(err, fmt.Sprintf("process %d", rank))
		}
		if len(corrupt) > 0 {
			logger.Errorf("process %d: corrupted pages %v", rank, corrupt)
			return nil, errors.Wrapf(ErrCorrupted, "Memory corrupted on process %d", rank)
		}
	}
	memTimes, err := gather(comm, memTimesTag, memTime.Seconds())
	if err != nil {
		return nil, err
	}
	if err := comm.Barrier(); err != nil {
		return nil, err
	}
	res := &CPUMemResult{ThreadTimes: threadTimes, MemTimes: memTimes, Elapsed: time.Since(start)}
	if rank == master {
		fmt.Fprintf(out, "Success!\n\n")
		writeCPUMemReport(out, p, res)
	}
	return res, nil
}

// cpuTest takes square roots of random numbers on threads goroutines and
// returns the seconds each goroutine took.
func cpuTest(threads, runs int, seed int64) []float64 {
	times := make([]float64, threads)
	thunks := make([]func(), threads)
	for i := range thunks {
		i := i
		thunks[i] = func() {
			r := rand.New(rand.NewSource(seed + int64(i)))
			start := time.Now()
			sum := 0.0
			for count := 0; count < runs; count++ {
				sum += math.Sqrt(float64(r.Int31()))
			}
			times[i] = time.Since(start).Seconds()
			logger.Debugf("thread %d: %d square roots summing to %g", i, runs, sum)
		}
	}
	parallel.Do(thunks...)
	return times
}

// memTest fills length bytes, sleeps, and returns the pages that no longer
// hold the fill value.
func memTest(mem memory.VirtualMemory, length int, sleep time.Duration) ([]int, error) {
	addr, err := mem.Malloc(length)
	if err != nil {
		return nil, err
	}
	defer mem.Free(addr, length)
	if err := mem.Fill(addr, length, fillValue); err != nil {
		return nil, err
	}
	time.Sleep(sleep)
	return mem.Verify(addr, length, fillValue)
}

func writeCPUMemReport(out io.Writer, p CPUMemParams, res *CPUMemResult) {
	procs := len(res.MemTimes)
	banner(out, "CPU test results")
	fmt.Fprintf(out, "The CPU test consists of taking the square root of a random number\n")
	fmt.Fprintf(out, "between 0 and %d, inclusive, and repeating this process\n%d times. ", math.MaxInt32, p.CPURuns)
	fmt.Fprintf(out, "The results are shown below.\n\n")
	fmt.Fprintf(out, "Total number of processes:                   %10d\n", procs)
	fmt.Fprintf(out, "Number of threads per process:               %10d\n\n", p.Threads)
	fmt.Fprintf(out, "Total number of threads:                     %10d\n\n", p.Threads*procs)
	fmt.Fprintf(out, "Process summary\n---------------\n\n")
	total := 0.0
	for source, times := range res.ThreadTimes {
		fmt.Fprintf(out, "Process %5d:\n", source)
		for thread, t := range times {
			fmt.Fprintf(out, "\t\tThread %10d:   %10.2f seconds\n", thread, t)
			total += t
		}
		fmt.Fprintln(out)
	}
	fmt.Fprintf(out, "Average runtime:                     %10.2f seconds\n\n", total/float64(procs*p.Threads))

	banner(out, "Memory test results")
	fmt.Fprintf(out, "In the memory test, each process allocates an array whose size is\n")
	fmt.Fprintf(out, "between %d and %d, fills the elements in it with\n", p.MinSize, p.MaxSize)
	fmt.Fprintf(out, "the same value, sleeps for %.0f seconds, and then checks to see\n", p.Sleep.Seconds())
	fmt.Fprintf(out, "if the array is not corrupted after the process wakes up. The test\n")
	fmt.Fprintf(out, "is repeated %d times. The results are shown below.\n\n", p.MemRuns)
	fmt.Fprintf(out, "Total number of processes:                   %10d\n\n", procs)
	fmt.Fprintf(out, "Process summary\n---------------\n\n")
	total = 0.0
	for source, t := range res.MemTimes {
		fmt.Fprintf(out, "Process %5d:\n", source)
		fmt.Fprintf(out, "\t\tAverage runtime:     %10.2f seconds\n", t/float64(p.MemRuns))
		fmt.Fprintf(out, "\t\tTotal runtime:       %10.2f seconds\n\n", t)
		total += t
	}
	fmt.Fprintf(out, "\nAverage runtime:                     %10.2f seconds\n\n", total/float64(procs))

	banner(out, "Summary")
	fmt.Fprintf(out, "Total number of processes:                   %10d\n", procs)
	fmt.Fprintf(out, "Number of threads per process:               %10d\n\n", p.Threads)
	fmt.Fprintf(out, "Total number of threads used for CPU test:   %10d\n\n", p.Threads*procs)
	fmt.Fprintf(out, "Total runtime:                                  %10.2f seconds\n\n", res.Elapsed.Seconds())
}
