package gridsort

import (
	"fmt"
	"io"
)

func WriteSummary(w io.Writer, r *Result) {
	fmt.Fprintf(w, "Total number of processes: %d\n", r.Procs)
	fmt.Fprintf(w, "Length and width of square matrix: %d\n", r.N)
	fmt.Fprintf(w, "Number of elements in matrix: %d\n", r.N*r.N)
	fmt.Fprintf(w, "Number of passes: %d\n", r.Passes)
	fmt.Fprintf(w, "Total runtime: %.2f seconds\n", r.Elapsed.Seconds())
}
