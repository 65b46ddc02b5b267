package Benchmarks

import (
	"DSB-project/mpi-api"
	"DSB-project/utils"
	"fmt"
	"io"
	"time"

	"github.com/pkg/errors"
)

const (
	primeCountTag = iota + 50
	primeRuntimeTag
)

type PrimeResult struct {
	Counts   []int64
	Runtimes []float64
	Total    int64
	Elapsed  time.Duration
}

// PrimeBenchmark counts the primes up to highest. Every rank tests its own
// contiguous range of numbers by trial division.
func PrimeBenchmark(comm mpi_api.CommInterface, highest int, out io.Writer) (*PrimeResult, error) {
	if highest <= 0 {
		return nil, errors.Wrap(ErrInvalid, "highest number to test for primality")
	}
	start := time.Now()
	low, high := utils.SplitRange(highest, comm.GetSize(), comm.GetId())
	count := countPrimes(low+1, high)
	runtime := time.Since(start).Seconds()

	counts, err := gather(comm, primeCountTag, count)
	if err != nil {
		return nil, err
	}
	runtimes, err := gather(comm, primeRuntimeTag, runtime)
	if err != nil {
		return nil, err
	}
	if err := comm.Barrier(); err != nil {
		return nil, err
	}
	res := &PrimeResult{Counts: counts, Runtimes: runtimes, Elapsed: time.Since(start)}
	if comm.GetId() == master {
		for _, c := range counts {
			res.Total += c
		}
		writePrimeReport(out, highest, res)
	}
	return res, nil
}

// countPrimes counts the primes in [from, to].
func countPrimes(from, to int) int64 {
	var count int64
	if from <= 2 && to >= 2 {
		count++
	}
	n := utils.Max(from, 3)
	if n%2 == 0 {
		n++
	}
	for ; n <= to; n += 2 {
		isPrime := true
		for divisor := 3; divisor*divisor <= n; divisor += 2 {
			if n%divisor == 0 {
				isPrime = false
				break
			}
		}
		if isPrime {
			count++
		}
	}
	return count
}

func writePrimeReport(out io.Writer, highest int, res *PrimeResult) {
	fmt.Fprintf(out, "\nThis program found prime numbers up to %d.\nThe results are displayed below.\n\n", highest)
	fmt.Fprintf(out, "Process          Total found          Runtime (seconds)\n")
	fmt.Fprintf(out, "-------          -----------          -----------------\n\n")
	for source := range res.Counts {
		fmt.Fprintf(out, "%7d          %11d          %17.2f\n", source, res.Counts[source], res.Runtimes[source])
	}
	fmt.Fprintln(out)
	banner(out, "Summary")
	fmt.Fprintf(out, "Total number of processes:           %10d\n\n", len(res.Counts))
	fmt.Fprintf(out, "Prime numbers found: %26d\n\n", res.Total)
	fmt.Fprintf(out, "Total runtime:                          %10.2f seconds\n\n", res.Elapsed.Seconds())
}
