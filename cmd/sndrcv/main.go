package main

import (
	"DSB-project/Benchmarks"
	"DSB-project/config"
	"DSB-project/mpi-api"
	"DSB-project/runner"
	"io"
	"os"

	"github.com/toolkits/pkg/logger"
)

var program = runner.Program{
	Name:    "sndrcv",
	Params:  []string{"size of array", "number of runs"},
	Prepare: prepare,
}

func main() {
	code := runner.Main(program, os.Args[1:], os.Stdout)
	logger.Close()
	os.Exit(code)
}

func prepare(args []int, cfg *config.Config) (runner.Body, error) {
	p := Benchmarks.RingParams{Size: args[0], Runs: args[1], Seed: cfg.Seed}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return func(comm mpi_api.CommInterface, out io.Writer) error {
		_, err := Benchmarks.RingBenchmark(comm, p, out)
		return err
	}, nil
}
