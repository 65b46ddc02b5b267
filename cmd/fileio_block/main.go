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
	Name:    "fileio_block",
	Params:  []string{"minimum block size", "maximum block size", "number of blocks", "number of runs"},
	Prepare: prepare,
}

func main() {
	code := runner.Main(program, os.Args[1:], os.Stdout)
	logger.Close()
	os.Exit(code)
}

func prepare(args []int, cfg *config.Config) (runner.Body, error) {
	p := Benchmarks.BlockIOParams{
		MinSize: args[0],
		MaxSize: args[1],
		Blocks:  args[2],
		Runs:    args[3],
		Seed:    cfg.Seed,
		Dir:     cfg.Dir,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return func(comm mpi_api.CommInterface, out io.Writer) error {
		_, err := Benchmarks.BlockIOBenchmark(comm, p, out)
		return err
	}, nil
}
