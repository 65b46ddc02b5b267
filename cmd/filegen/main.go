package main

import (
	"DSB-project/Benchmarks"
	"DSB-project/config"
	"DSB-project/mpi-api"
	"DSB-project/runner"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/toolkits/pkg/logger"
)

var program = runner.Program{
	Name:       "filegen",
	Params:     []string{"number of characters"},
	Standalone: true,
	Prepare:    prepare,
}

func main() {
	code := runner.Main(program, os.Args[1:], os.Stdout)
	logger.Close()
	os.Exit(code)
}

func prepare(args []int, cfg *config.Config) (runner.Body, error) {
	n := args[0]
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return func(_ mpi_api.CommInterface, out io.Writer) error {
		path := filepath.Join(cfg.Dir, Benchmarks.UnsortedFile)
		logger.Infof("writing %d characters to %s", n, path)
		return Benchmarks.GenerateFile(path, n, rand.New(rand.NewSource(seed)))
	}, nil
}
