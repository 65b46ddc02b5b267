package utils

import (
	"os"
	"runtime"
	"runtime/pprof"

	"github.com/pkg/errors"
)

// StartCPUProfile profiles the process into filename until the returned
// function is called. An empty filename disables profiling.
func StartCPUProfile(filename string) (func(), error) {
	if filename == "" {
		return func() {}, nil
	}
	f, err := os.Create(filename)
	if err != nil {
		return nil, errors.Wrap(err, "could not create CPU profile")
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		f.Close()
		return nil, errors.Wrap(err, "could not start CPU profile")
	}
	return func() {
		pprof.StopCPUProfile()
		f.Close()
	}, nil
}

func WriteMemProfile(filename string) error {
	if filename == "" {
		return nil
	}
	f, err := os.Create(filename)
	if err != nil {
		return errors.Wrap(err, "could not create memory profile")
	}
	defer f.Close()
	runtime.GC() // get up-to-date statistics
	if err := pprof.WriteHeapProfile(f); err != nil {
		return errors.Wrap(err, "could not write memory profile")
	}
	return nil
}
