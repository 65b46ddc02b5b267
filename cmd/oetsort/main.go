package main

import (
	"DSB-project/config"
	"DSB-project/gridsort"
	"DSB-project/mpi-api"
	"DSB-project/runner"
	"io"
	"os"
	"strings"

	"github.com/toolkits/pkg/logger"
)

var program = runner.Program{
	Name:    "oetsort",
	Params:  []string{"dimension of square matrix"},
	Prepare: prepare,
}

func main() {
	code := runner.Main(program, os.Args[1:], os.Stdout)
	logger.Close()
	os.Exit(code)
}

func prepare(args []int, cfg *config.Config) (runner.Body, error) {
	n := args[0]
	if err := (gridsort.OddEven{}).Validate(n, cfg.Size); err != nil {
		return nil, runner.Reject("Dimension of square matrix = %d\tNumber of processes = %d\n"+
			"Number of processes does NOT divide dimension of square matrix. Please try again.\n"+
			"[For example: Dimension of square matrix = 24. Number of processes = 8.]\n", n, cfg.Size)
	}
	return func(comm mpi_api.CommInterface, out io.Writer) error {
		opts := gridsort.Options{Seed: cfg.Seed, Verbose: strings.EqualFold(cfg.LogLevel, "DEBUG"), Out: out}
		res, err := gridsort.Run(comm, gridsort.OddEven{}, n, opts)
		if err != nil {
			return err
		}
		if comm.GetId() == 0 {
			gridsort.WriteSummary(out, res)
		}
		return nil
	}, nil
}
