package main

import (
	"DSB-project/Benchmarks"
	"DSB-project/config"
	"DSB-project/mpi-api"
	"DSB-project/runner"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/toolkits/pkg/logger"
)

var program = runner.Program{
	Name: "mm",
	Params: []string{
		"number of rows in matrix A",
		"number of columns in matrix A",
		"number of rows in matrix B",
		"number of columns in matrix B",
	},
	Prepare: prepare,
}

func main() {
	code := runner.Main(program, os.Args[1:], os.Stdout)
	logger.Close()
	os.Exit(code)
}

func prepare(args []int, cfg *config.Config) (runner.Body, error) {
	p := Benchmarks.MMParams{ARows: args[0], ACols: args[1], BRows: args[2], BCols: args[3]}
	if err := p.Validate(cfg.Size); err != nil {
		switch errors.Cause(err) {
		case Benchmarks.ErrShape:
			return nil, runner.Reject("Error: Column length of Matrix A does not equal row length of Matrix B.\n")
		case Benchmarks.ErrNotDivisible:
			return nil, runner.Reject("Number of rows in matrix A = %d\tNumber of processes = %d\n"+
				"Number of processes does NOT divide number of rows in matrix A. Please try again.\n"+
				"[For example: Number of rows in matrix A = 24. Number of processes = 8.]\n", p.ARows, cfg.Size)
		}
		return nil, err
	}
	return func(comm mpi_api.CommInterface, out io.Writer) error {
		_, err := Benchmarks.MMBenchmark(comm, p, out)
		return err
	}, nil
}
