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
	Name:    "prime",
	Params:  []string{"highest number to test for primality"},
	Prepare: prepare,
}

func main() {
	code := runner.Main(program, os.Args[1:], os.Stdout)
	logger.Close()
	os.Exit(code)
}

func prepare(args []int, cfg *config.Config) (runner.Body, error) {
	highest := args[0]
	return func(comm mpi_api.CommInterface, out io.Writer) error {
		_, err := Benchmarks.PrimeBenchmark(comm, highest, out)
		return err
	}, nil
}
