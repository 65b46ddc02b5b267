package Benchmarks

import (
	"DSB-project/mpi-api"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

const (
	mmRowTag = iota + 30
	mmMatrixTag
)

var ErrShape = errors.New("column length of matrix A does not equal row length of matrix B")

type MMParams struct {
	ARows, ACols int
	BRows, BCols int
}

func (p MMParams) Validate(procs int) error {
	switch {
	case p.ARows <= 0:
		return errors.Wrap(ErrInvalid, "number of rows in matrix A")
	case p.ACols <= 0:
		return errors.Wrap(ErrInvalid, "number of columns in matrix A")
	case p.BRows <= 0:
		return errors.Wrap(ErrInvalid, "number of rows in matrix B")
	case p.BCols <= 0:
		return errors.Wrap(ErrInvalid, "number of columns in matrix B")
	case p.ACols != p.BRows:
		return ErrShape
	case p.ARows%procs != 0:
		return errors.Wrapf(ErrNotDivisible, "number of rows in matrix A = %d, number of processes = %d", p.ARows, procs)
	}
	return nil
}

// RowMessage carries one row of A to a worker, or one row of C back.
type RowMessage struct {
	Index  int32
	Values []float64
}

// MatrixMessage carries B to the workers in row-major order.
type MatrixMessage struct {
	Rows, Cols int32
	Data       []float64
}

type MMResult struct {
	// A, B and C are only set on the master.
	A, B, C  *mat.Dense
	Verified bool
	Elapsed  time.Duration
}

/*
	MMBenchmark multiplies A by B row by row. In every round the master keeps
	one row of A and sends the next one to each worker; B goes to the workers
	once, with their first row. The master checks the gathered product against
	a single-process one.
*/
func MMBenchmark(comm mpi_api.CommInterface, p MMParams, out io.Writer) (*MMResult, error) {
	procs := comm.GetSize()
	if err := p.Validate(procs); err != nil {
		return nil, err
	}
	if comm.GetId() != master {
		return new(MMResult), mmWorker(comm, p)
	}

	r := NewRandom()
	a, b := randomDense(r, p.ARows, p.ACols), randomDense(r, p.BRows, p.BCols)
	c := mat.NewDense(p.ARows, p.BCols, nil)
	start := time.Now()
	for round := 0; round < p.ARows/procs; round++ {
		current := round * procs
		c.SetRow(current, rowProduct(a.RawRowView(current), b))
		for destination := 1; destination < procs; destination++ {
			row := RowMessage{Index: int32(current + destination), Values: a.RawRowView(current + destination)}
			if err := comm.Send(destination, mmRowTag, row); err != nil {
				return nil, err
			}
			if round == 0 {
				if err := comm.Send(destination, mmMatrixTag, MatrixMessage{Rows: int32(p.BRows), Cols: int32(p.BCols), Data: denseData(b)}); err != nil {
					return nil, err
				}
			}
		}
		for source := 1; source < procs; source++ {
			var row RowMessage
			if err := comm.Receive(source, mmRowTag, &row); err != nil {
				return nil, err
			}
			if int(row.Index) != current+source || len(row.Values) != p.BCols {
				return nil, errors.Errorf("process %d returned row %d of length %d, want row %d of length %d",
					source, row.Index, len(row.Values), current+source, p.BCols)
			}
			c.SetRow(int(row.Index), row.Values)
		}
	}
	res := &MMResult{A: a, B: b, C: c, Elapsed: time.Since(start)}
	if err := comm.Barrier(); err != nil {
		return nil, err
	}

	var want mat.Dense
	want.Mul(a, b)
	res.Verified = mat.EqualApprox(c, &want, 1e-9)
	writeMMReport(out, p, procs, res)
	if !res.Verified {
		return res, errors.Wrap(ErrCorrupted, "product differs from the single-process product")
	}
	return res, nil
}

func mmWorker(comm mpi_api.CommInterface, p MMParams) error {
	var b *mat.Dense
	for round := 0; round < p.ARows/comm.GetSize(); round++ {
		var row RowMessage
		if err := comm.Receive(master, mmRowTag, &row); err != nil {
			return err
		}
		if round == 0 {
			var m MatrixMessage
			if err := comm.Receive(master, mmMatrixTag, &m); err != nil {
				return err
			}
			b = mat.NewDense(int(m.Rows), int(m.Cols), m.Data)
		}
		if len(row.Values) != p.ACols {
			return errors.Errorf("process %d got row %d of length %d, want %d", comm.GetId(), row.Index, len(row.Values), p.ACols)
		}
		result := RowMessage{Index: row.Index, Values: rowProduct(row.Values, b)}
		if err := comm.Send(master, mmRowTag, result); err != nil {
			return err
		}
	}
	return comm.Barrier()
}

func rowProduct(row []float64, b *mat.Dense) []float64 {
	var prod mat.Dense
	prod.Mul(mat.NewDense(1, len(row), row), b)
	return mat.Row(nil, 0, &prod)
}

// randomDense fills a matrix with whole numbers from 0 to 9.
func randomDense(r *Random, rows, cols int) *mat.Dense {
	data := make([]float64, rows*cols)
	for i := range data {
		data[i] = math.Floor(r.Next() * 10)
	}
	return mat.NewDense(rows, cols, data)
}

func denseData(d *mat.Dense) []float64 {
	rows, cols := d.Dims()
	data := make([]float64, 0, rows*cols)
	for i := 0; i < rows; i++ {
		data = append(data, d.RawRowView(i)...)
	}
	return data
}

func writeMMReport(out io.Writer, p MMParams, procs int, res *MMResult) {
	banner(out, "Summary")
	fmt.Fprintf(out, "Total number of processes:                  %10d\n\n", procs)
	fmt.Fprintf(out, "Matrix A\n")
	fmt.Fprintf(out, "   Number of rows:                          %10d\n", p.ARows)
	fmt.Fprintf(out, "   Number of columns:                       %10d\n", p.ACols)
	fmt.Fprintf(out, "   Number of elements in matrix A\n")
	fmt.Fprintf(out, "      (number of rows * number of columns): %10d\n\n", p.ARows*p.ACols)
	fmt.Fprintf(out, "Matrix B\n")
	fmt.Fprintf(out, "   Number of rows:                          %10d\n", p.BRows)
	fmt.Fprintf(out, "   Number of columns:                       %10d\n", p.BCols)
	fmt.Fprintf(out, "   Number of elements in matrix B:          %10d\n\n", p.BRows*p.BCols)
	fmt.Fprintf(out, "Matrix C (results)\n")
	fmt.Fprintf(out, "   Number of rows:                          %10d\n", p.ARows)
	fmt.Fprintf(out, "   Number of columns:                       %10d\n", p.BCols)
	fmt.Fprintf(out, "   Number of elements in matrix C:          %10d\n\n", p.ARows*p.BCols)
	fmt.Fprintf(out, "Total runtime:                              %13.2f seconds\n\n", res.Elapsed.Seconds())
}
