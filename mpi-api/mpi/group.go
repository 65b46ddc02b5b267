package mpi

import (
	"DSB-project/mpi-api"
	"sync"

	"golang.org/x/sync/errgroup"
)

// RunLocal runs fn once per rank of an in-memory group of n hosts and returns
// the first error. When a rank fails every host is torn down, so ranks
// blocked on it return too.
func RunLocal(n int, fn func(comm mpi_api.CommInterface) error) error {
	hosts := NewLocalGroup(n)
	var (
		g     errgroup.Group
		once  sync.Once
		first error
	)
	fail := func(err error) error {
		once.Do(func() {
			first = err
			for _, h := range hosts {
				go h.close()
			}
		})
		return err
	}
	for _, h := range hosts {
		h := h
		g.Go(func() error {
			if err := fn(h); err != nil {
				return fail(err)
			}
			if err := h.Shutdown(); err != nil {
				return fail(err)
			}
			return nil
		})
	}
	g.Wait()
	return first
}
