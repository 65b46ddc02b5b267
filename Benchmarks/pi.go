package Benchmarks

import (
	"DSB-project/mpi-api"
	"DSB-project/utils"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/pkg/errors"
)

const (
	piSumTag = iota + 40
	piRuntimeTag
	piRangeTag
)

type PiMethod int

const (
	BaileyBorweinPlouffe PiMethod = 1
	GregoryLeibniz       PiMethod = 2
)

func (m PiMethod) String() string {
	switch m {
	case BaileyBorweinPlouffe:
		return "Bailey-Borwein-Plouffe"
	case GregoryLeibniz:
		return "Gregory-Leibniz"
	}
	return fmt.Sprintf("method %d", int(m))
}

type PiParams struct {
	Iterations int
	Method     PiMethod
}

func (p PiParams) Validate() error {
	if p.Iterations <= 0 {
		return errors.Wrap(ErrInvalid, "number of iterations")
	}
	if p.Method != BaileyBorweinPlouffe && p.Method != GregoryLeibniz {
		return errors.Wrap(ErrInvalid, "choice of method for calculating pi")
	}
	return nil
}

type PiResult struct {
	Pi       float64
	Ranges   []int64
	Runtimes []float64
	Elapsed  time.Duration
}

// PiBenchmark sums the terms of a pi series, split into contiguous ranges of
// iterations, one per rank. The master adds up the partial sums.
func PiBenchmark(comm mpi_api.CommInterface, p PiParams, out io.Writer) (*PiResult, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	start := time.Now()
	low, high := utils.SplitRange(p.Iterations, comm.GetSize(), comm.GetId())
	sum := piTerms(p.Method, low, high)
	runtime := time.Since(start).Seconds()

	sums, err := gather(comm, piSumTag, sum)
	if err != nil {
		return nil, err
	}
	runtimes, err := gather(comm, piRuntimeTag, runtime)
	if err != nil {
		return nil, err
	}
	ranges, err := gather(comm, piRangeTag, int64(high-low))
	if err != nil {
		return nil, err
	}
	if err := comm.Barrier(); err != nil {
		return nil, err
	}
	res := &PiResult{Ranges: ranges, Runtimes: runtimes, Elapsed: time.Since(start)}
	if comm.GetId() == master {
		for _, s := range sums {
			res.Pi += s
		}
		writePiReport(out, p, res)
	}
	return res, nil
}

// piTerms sums the terms k in [low, high) of the series.
func piTerms(method PiMethod, low, high int) float64 {
	sum := 0.0
	switch method {
	case BaileyBorweinPlouffe:
		for k := low; k < high; k++ {
			fk := float64(k)
			sum += 1 / math.Pow(16, fk) * (4/(8*fk+1) - 2/(8*fk+4) - 1/(8*fk+5) - 1/(8*fk+6))
		}
	case GregoryLeibniz:
		for k := low; k < high; k++ {
			term := 1 / (2*float64(k) + 1)
			if k%2 == 1 {
				term = -term
			}
			sum += term
		}
		sum *= 4
	}
	return sum
}

func writePiReport(out io.Writer, p PiParams, res *PiResult) {
	fmt.Fprintf(out, "\nThe value of pi is %.48f.\n\n", res.Pi)
	banner(out, "Runtimes (seconds)")
	fmt.Fprintf(out, "Process          Number of iterations          Runtime\n")
	fmt.Fprintf(out, "-------          --------------------          -------\n\n")
	for source := range res.Ranges {
		fmt.Fprintf(out, "%7d          %20d          %7.2f\n", source, res.Ranges[source], res.Runtimes[source])
	}
	fmt.Fprintln(out)
	banner(out, "Summary")
	fmt.Fprintf(out, "Total number of processes:                    %10d\n\n", len(res.Ranges))
	fmt.Fprintf(out, "Method used for calculating pi: %24s\n\n", p.Method)
	fmt.Fprintf(out, "Total number of iterations:         %20d\n\n", p.Iterations)
	fmt.Fprintf(out, "Total runtime:                                   %10.2f seconds\n\n", res.Elapsed.Seconds())
}
