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
	Name:    "fileio",
	Params:  []string{"size of array"},
	Prepare: prepare,
}

func main() {
	code := runner.Main(program, os.Args[1:], os.Stdout)
	logger.Close()
	os.Exit(code)
}

func prepare(args []int, cfg *config.Config) (runner.Body, error) {
	p := Benchmarks.FileIOParams{Size: args[0], Dir: cfg.Dir}
	if err := p.Validate(cfg.Size); err != nil {
		if errors.Cause(err) == Benchmarks.ErrNotDivisible {
			return nil, runner.Reject("Array size = %d\tNumber of processes = %d\n"+
				"Number of processes does NOT divide array size. Please try again.\n"+
				"[For example: Array size = 24. Number of processes = 8.]\n", p.Size, cfg.Size)
		}
		return nil, err
	}
	return func(comm mpi_api.CommInterface, out io.Writer) error {
		_, err := Benchmarks.FileIOBenchmark(comm, p, out)
		return err
	}, nil
}
