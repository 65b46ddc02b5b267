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
	Name:    "shearsort",
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
	if err := (gridsort.Shear{}).Validate(n, cfg.Size); err != nil {
		return nil, runner.Reject("Dimension of square matrix = %d\tNumber of processes = %d\n"+
			"Number of processes does NOT equal dimension of square matrix. Please try again.\n", n, cfg.Size)
	}
	return func(comm mpi_api.CommInterface, out io.Writer) error {
		if comm.GetId() == 0 {
			io.WriteString(out, "\nInitializing matrix...\n\n")
		}
		opts := gridsort.Options{Seed: cfg.Seed, Verbose: strings.EqualFold(cfg.LogLevel, "DEBUG"), Out: out}
		res, err := gridsort.Run(comm, gridsort.Shear{}, n, opts)
		if err != nil {
			return err
		}
		if comm.GetId() == 0 {
			gridsort.WriteSummary(out, res)
		}
		return nil
	}, nil
}
