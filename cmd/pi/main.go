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
	Name:    "pi",
	Params:  []string{"number of iterations", "1 = Bailey-Borwein-Plouffe, 2 = Gregory-Leibniz"},
	Prepare: prepare,
}

func main() {
	code := runner.Main(program, os.Args[1:], os.Stdout)
	logger.Close()
	os.Exit(code)
}

func prepare(args []int, cfg *config.Config) (runner.Body, error) {
	p := Benchmarks.PiParams{Iterations: args[0], Method: Benchmarks.PiMethod(args[1])}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return func(comm mpi_api.CommInterface, out io.Writer) error {
		_, err := Benchmarks.PiBenchmark(comm, p, out)
		return err
	}, nil
}
