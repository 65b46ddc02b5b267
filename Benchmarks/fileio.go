package Benchmarks

import (
	"DSB-project/mpi-api"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/exp/constraints"
)

const (
	arrayTag = iota + 10
	readTimeTag
	sortTimeTag
	writeTimeTag
	writeTokenTag

	UnsortedFile = "unsorted.txt"
	SortedFile   = "sorted.txt"
)

var ciuraIntervals = []int{701, 301, 132, 57, 23, 10, 4, 1}

type FileIOParams struct {
	Size int
	// Dir holds the input and output files.
	Dir string
}

func (p FileIOParams) Validate(procs int) error {
	if p.Size <= 0 {
		return errors.Wrap(ErrInvalid, "size of array")
	}
	if p.Size%procs != 0 {
		return errors.Wrapf(ErrNotDivisible, "array size = %d, number of processes = %d", p.Size, procs)
	}
	return nil
}

type FileIOResult struct {
	ReadTimes  []float64
	SortTimes  []float64
	WriteTimes []float64
	// MergeTime is the master's time to merge the sorted parts.
	MergeTime float64
	Sorted    bool
	Elapsed   time.Duration
}

/*
	FileIOBenchmark has every rank read its part of the input file and sort it.
	The master merges the parts and hands them back, then every rank writes its
	part of the sorted array, in rank order, to the output file. The master reads
	the output back and checks it is sorted before the file is removed.
*/
func FileIOBenchmark(comm mpi_api.CommInterface, p FileIOParams, out io.Writer) (*FileIOResult, error) {
	rank, procs := comm.GetId(), comm.GetSize()
	if err := p.Validate(procs); err != nil {
		return nil, err
	}
	mySize := p.Size / procs
	input := filepath.Join(p.Dir, UnsortedFile)
	output := filepath.Join(p.Dir, SortedFile)
	res := new(FileIOResult)
	start := time.Now()

	if rank == master {
		fmt.Fprintf(out, "\nReading in file... ")
	}
	readStart := time.Now()
	myChars, err := readSegment(input, int64(rank*mySize), mySize)
	if err != nil {
		return nil, errors.WithMessage(err, fmt.Sprintf("process %d", rank))
	}
	if res.ReadTimes, err = gather(comm, readTimeTag, time.Since(readStart).Seconds()); err != nil {
		return nil, err
	}

	if rank == master {
		fmt.Fprintf(out, "Success!\n")
		fmt.Fprintf(out, "\nSorting %d subarrays of size %d each with %d processes... ", procs, mySize, procs)
	}
	sortStart := time.Now()
	shellSort(myChars)
	if res.SortTimes, err = gather(comm, sortTimeTag, time.Since(sortStart).Seconds()); err != nil {
		return nil, err
	}

	if rank == master {
		fmt.Fprintf(out, "Done!\n")
		if myChars, res.MergeTime, err = mergeParts(comm, myChars); err != nil {
			return nil, err
		}
		fmt.Fprintf(out, "\nReceived %d subarrays from workers. Process %d merged the array.\n", procs-1, rank)
		fmt.Fprintf(out, "\n%d processes now writing different parts of sorted array to file... ", procs)
	} else {
		if err := comm.Send(master, arrayTag, myChars); err != nil {
			return nil, err
		}
		if err := comm.Receive(master, arrayTag, &myChars); err != nil {
			return nil, err
		}
	}

	writeStart := time.Now()
	if err := writeOrdered(comm, writeTokenTag, output, myChars); err != nil {
		return nil, err
	}
	if res.WriteTimes, err = gather(comm, writeTimeTag, time.Since(writeStart).Seconds()); err != nil {
		return nil, err
	}

	if rank == master {
		fmt.Fprintf(out, "Success!\n")
		fmt.Fprintf(out, "\nNow reading in output file and checking to see if it was written to correctly... ")
		written, err := readSegment(output, 0, p.Size)
		if err != nil {
			return nil, err
		}
		res.Sorted = isSorted(written)
	}
	if err := comm.Barrier(); err != nil {
		return nil, err
	}
	if rank == master {
		if err := os.Remove(output); err != nil {
			return nil, errors.Wrapf(err, "removing %s", output)
		}
		if !res.Sorted {
			fmt.Fprintf(out, "\n\nThe contents of the file were NOT sorted. Aborting...\n\n")
			return res, errors.Wrap(ErrNotSorted, output)
		}
		res.Elapsed = time.Since(start)
		fmt.Fprintf(out, "Success!\n\nThe contents of the output file were sorted. Displaying results...\n\n")
		writeFileIOReport(out, p, res)
	}
	return res, nil
}

// mergeParts collects the sorted part of every worker, merges them into one
// sorted array and sends each worker its part of the result.
func mergeParts(comm mpi_api.CommInterface, mine []byte) ([]byte, float64, error) {
	parts := [][]byte{mine}
	for source := 1; source < comm.GetSize(); source++ {
		var part []byte
		if err := comm.Receive(source, arrayTag, &part); err != nil {
			return nil, 0, err
		}
		parts = append(parts, part)
	}
	start := time.Now()
	merged := parts[0]
	for _, part := range parts[1:] {
		merged = mergeArrays(merged, part)
	}
	elapsed := time.Since(start).Seconds()

	mySize := len(mine)
	for destination := 1; destination < comm.GetSize(); destination++ {
		if err := comm.Send(destination, arrayTag, merged[destination*mySize:(destination+1)*mySize]); err != nil {
			return nil, 0, err
		}
	}
	return merged[:mySize], elapsed, nil
}

func readSegment(path string, offset int64, size int) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading in file")
	}
	defer f.Close()
	buf := make([]byte, size)
	if _, err := f.ReadAt(buf, offset); err != nil {
		return nil, errors.Wrapf(err, "reading %d characters at %d from %s", size, offset, path)
	}
	return buf, nil
}

// shellSort sorts s ascending with Ciura's gap sequence, extended by a factor
// of 2.3 for long inputs.
func shellSort[T constraints.Ordered](s []T) {
	gaps := ciuraIntervals
	for gaps[0] < len(s) {
		gaps = append([]int{int(float64(gaps[0]) * 2.3)}, gaps...)
	}
	for _, gap := range gaps {
		if gap >= len(s) {
			continue
		}
		for i := gap; i < len(s); i++ {
			v := s[i]
			j := i
			for ; j >= gap && s[j-gap] > v; j -= gap {
				s[j] = s[j-gap]
			}
			s[j] = v
		}
	}
}

func writeFileIOReport(out io.Writer, p FileIOParams, res *FileIOResult) {
	procs := len(res.ReadTimes)
	mySize := p.Size / procs
	banner(out, "Read times")
	fmt.Fprintf(out, "Note: Each process reads in %d characters from a file.\n\n", mySize)
	fmt.Fprintf(out, "Process\t\tNumber of characters\t\tSeconds\n")
	fmt.Fprintf(out, "-------\t\t--------------------\t\t-------\n")
	for rank, t := range res.ReadTimes {
		fmt.Fprintf(out, "%7d\t\t%20d\t\t%7.2f\n", rank, mySize, t)
	}
	fmt.Fprintln(out)

	banner(out, "Sort times")
	fmt.Fprintf(out, "Process\t\t          Array size\t\tSeconds\n")
	fmt.Fprintf(out, "-------\t\t          ----------\t\t-------\n")
	for rank, t := range res.SortTimes {
		fmt.Fprintf(out, "%7d\t\t%20d\t\t%7.2f\n", rank, mySize, t)
	}
	fmt.Fprintln(out)

	banner(out, "Write times")
	fmt.Fprintf(out, "Process\t\tNumber of characters\t\tSeconds\n")
	fmt.Fprintf(out, "-------\t\t--------------------\t\t-------\n")
	for rank, t := range res.WriteTimes {
		fmt.Fprintf(out, "%7d\t\t%20d\t\t%7.2f\n", rank, mySize, t)
	}
	fmt.Fprintln(out)

	banner(out, "Summary")
	fmt.Fprintf(out, "Total number of processes:                %10d\n\n", procs)
	fmt.Fprintf(out, "Array size:                               %10d\n", p.Size)
	fmt.Fprintf(out, "Size of each subarray\n")
	fmt.Fprintf(out, "     (array size / number of processes):  %10d\n\n", mySize)
	fmt.Fprintf(out, "Time for process %d to merge entire array:    %10.2f seconds\n\n", master, res.MergeTime)
	fmt.Fprintf(out, "Total runtime:                               %10.2f seconds\n\n", res.Elapsed.Seconds())
}
