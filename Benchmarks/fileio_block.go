package Benchmarks

import (
	"DSB-project/mpi-api"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"github.com/toolkits/pkg/logger"
)

const (
	blockSizesTag = iota + 20
	blockReadTag
	blockWriteTag
	blockTokenTag

	BlocksFile = "blocks.txt"
)

type BlockIOParams struct {
	MinSize int
	MaxSize int
	Blocks  int
	Runs    int
	Seed    int64
	Dir     string
}

func (p BlockIOParams) Validate() error {
	switch {
	case p.MinSize <= 0:
		return errors.Wrap(ErrInvalid, "minimum block size")
	case p.MaxSize <= 0:
		return errors.Wrap(ErrInvalid, "maximum block size")
	case p.MaxSize <= p.MinSize:
		return errors.Wrap(ErrInvalid, "maximum block size must be greater than minimum block size")
	case p.Blocks <= 0:
		return errors.Wrap(ErrInvalid, "number of blocks")
	case p.Runs <= 0:
		return errors.Wrap(ErrInvalid, "number of runs")
	}
	return nil
}

type BlockIOResult struct {
	// BlockSizes, ReadTimes and WriteTimes hold Runs*Blocks entries per rank,
	// indexed by rank.
	BlockSizes [][]int32
	ReadTimes  [][]float64
	WriteTimes [][]float64
	Elapsed    time.Duration
}

/*
	BlockIOBenchmark reads a block of random size from the start of the input
	file and writes it, ordered by rank, to a shared file which is removed after
	every block. The master prints the times of every rank.
*/
func BlockIOBenchmark(comm mpi_api.CommInterface, p BlockIOParams, out io.Writer) (*BlockIOResult, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	rank := comm.GetId()
	seed := p.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	r := rand.New(rand.NewSource(seed + int64(rank)))
	input := filepath.Join(p.Dir, UnsortedFile)
	output := filepath.Join(p.Dir, BlocksFile)

	total := p.Blocks * p.Runs
	sizes := make([]int32, 0, total)
	readTimes := make([]float64, 0, total)
	writeTimes := make([]float64, 0, total)
	start := time.Now()
	for run := 0; run < p.Runs; run++ {
		for block := 0; block < p.Blocks; block++ {
			size := r.Intn(p.MaxSize-p.MinSize+1) + p.MinSize
			readStart := time.Now()
			characters, err := readSegment(input, 0, size)
			if err != nil {
				return nil, errors.WithMessage(err, fmt.Sprintf("process %d", rank))
			}
			readTimes = append(readTimes, time.Since(readStart).Seconds())

			writeStart := time.Now()
			if err := writeOrdered(comm, blockTokenTag, output, characters); err != nil {
				return nil, err
			}
			if rank == master {
				if err := os.Remove(output); err != nil {
					return nil, errors.Wrapf(err, "removing %s", output)
				}
			}
			writeTimes = append(writeTimes, time.Since(writeStart).Seconds())
			sizes = append(sizes, int32(size))
			logger.Debugf("process %d: run %d block %d of %d bytes", rank, run, block, size)
		}
	}
	res := &BlockIOResult{Elapsed: time.Since(start)}

	var err error
	if res.BlockSizes, err = gather(comm, blockSizesTag, sizes); err != nil {
		return nil, err
	}
	if res.ReadTimes, err = gather(comm, blockReadTag, readTimes); err != nil {
		return nil, err
	}
	if res.WriteTimes, err = gather(comm, blockWriteTag, writeTimes); err != nil {
		return nil, err
	}
	if rank == master {
		writeBlockIOReport(out, p, res)
	}
	return res, nil
}

func writeBlockIOReport(out io.Writer, p BlockIOParams, res *BlockIOResult) {
	for source := range res.BlockSizes {
		fmt.Fprintln(out)
		banner(out, fmt.Sprintf("Process %5d", source))
		fmt.Fprintf(out, "Block size\tRead time (seconds)\tWrite time (seconds)\n")
		fmt.Fprintf(out, "----------\t-------------------\t--------------------\n")
		position := 0
		for run := 0; run < p.Runs; run++ {
			fmt.Fprintf(out, "\nRun  %5d\n----------\n", run+1)
			readTotal, writeTotal := 0.0, 0.0
			for block := 0; block < p.Blocks; block, position = block+1, position+1 {
				read, write := res.ReadTimes[source][position], res.WriteTimes[source][position]
				fmt.Fprintf(out, "%10d\t%19.2f\t%20.2f\n", res.BlockSizes[source][position], read, write)
				readTotal += read
				writeTotal += write
			}
			fmt.Fprintf(out, "\nAverage read time:\t %10.2f seconds\n", readTotal/float64(p.Blocks))
			fmt.Fprintf(out, "\nAverage write time:\t %10.2f seconds\n", writeTotal/float64(p.Blocks))
		}
	}
	fmt.Fprintln(out)
	banner(out, "Summary")
	fmt.Fprintf(out, "Total number of processes:           %10d\n\n", len(res.BlockSizes))
	fmt.Fprintf(out, "Minimum block size:                  %10d\n", p.MinSize)
	fmt.Fprintf(out, "Maximum block size:                  %10d\n\n", p.MaxSize)
	fmt.Fprintf(out, "Size of array (maximum block size):  %10d\n\n", p.MaxSize)
	fmt.Fprintf(out, "Total runtime:                          %10.2f seconds\n\n", res.Elapsed.Seconds())
}
