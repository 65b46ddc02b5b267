package main

import (
	"DSB-project/Benchmarks"
	"DSB-project/config"
	"DSB-project/mpi-api"
	"DSB-project/runner"
	"io"
	"os"
	"time"

	"github.com/toolkits/pkg/logger"
)

var program = runner.Program{
	Name: "cpumem",
	Params: []string{
		"number of threads to use for CPU test",
		"number of times to repeat CPU test",
		"minimum size of array for memory test",
		"maximum size of array for memory test",
		"seconds to sleep during memory test",
		"number of times to repeat memory test",
	},
	Prepare: prepare,
}

func main() {
	code := runner.Main(program, os.Args[1:], os.Stdout)
	logger.Close()
	os.Exit(code)
}

func prepare(args []int, cfg *config.Config) (runner.Body, error) {
	p := Benchmarks.CPUMemParams{
		Threads: args[0],
		CPURuns: args[1],
		MinSize: args[2],
		MaxSize: args[3],
		Sleep:   time.Duration(args[4]) * time.Second,
		MemRuns: args[5],
		Seed:    cfg.Seed,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return func(comm mpi_api.CommInterface, out io.Writer) error {
		_, err := Benchmarks.CPUMemBenchmark(comm, p, out)
		return err
	}, nil
}
