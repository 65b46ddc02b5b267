package gridsort

import (
	"DSB-project/matrix"
	"fmt"
	"math/rand"
	"time"

	"github.com/Workiva/go-datastructures/bitarray"
	"github.com/pkg/errors"
	"github.com/toolkits/pkg/logger"
)

// Coordinator owns the matrix. It hands rows and columns to the workers,
// sorts its own share, and decides when to stop.
type Coordinator struct {
	transport ShardTransport
	strategy  Strategy
	procs, n  int
	m         *matrix.Matrix
	machine   *passMachine
	conv      Convergence
	returned  bitarray.BitArray
	opts      Options
	result    Result
}

var _ role = new(Coordinator)

func newCoordinator(t ShardTransport, procs int, s Strategy, n int, opts Options) (*Coordinator, error) {
	c := &Coordinator{
		transport: t,
		strategy:  s,
		procs:     procs,
		n:         n,
		machine:   newPassMachine(0),
		returned:  bitarray.NewBitArray(uint64(n)),
		opts:      opts,
	}
	if opts.Matrix != nil {
		if opts.Matrix.N() != n {
			return nil, errors.Wrapf(ErrMatrixSize, "initial matrix is %dx%d, want %dx%d", opts.Matrix.N(), opts.Matrix.N(), n, n)
		}
		c.m = opts.Matrix.Clone()
	} else {
		m, err := matrix.New(n)
		if err != nil {
			return nil, err
		}
		seed := opts.Seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		m.Fill(rand.New(rand.NewSource(seed)))
		c.m = m
	}
	c.result = Result{Procs: procs, N: n}
	return c, nil
}

func (c *Coordinator) run() (*Result, error) {
	start := time.Now()
	c.dump("Initial matrix")

	count, bounded := c.strategy.Passes(c.n)
	for pass := 0; !bounded || pass < count; pass++ {
		if err := c.runPhase(PhaseRow, pass); err != nil {
			return nil, err
		}
		if err := c.runPhase(PhaseColumn, pass); err != nil {
			return nil, err
		}
		c.result.Passes++
		c.result.RowPasses++
		if bounded {
			continue
		}

		sorted := c.m.DiagonalsSorted()
		stop := !sorted && c.opts.MaxPasses > 0 && pass+1 >= c.opts.MaxPasses
		logger.Debugf("%s pass %d: sorted=%t", c.strategy.Name(), pass, sorted)
		if err := c.broadcastFlag(FlagMessage{Pass: int32(pass), Sorted: sorted, Stop: stop}); err != nil {
			return nil, err
		}
		if sorted {
			if err := c.conv.To(Sorted); err != nil {
				return nil, err
			}
			c.result.Sorted = true
			break
		}
		if stop {
			c.conv.To(Fatal)
			return c.finish(start), errors.Wrapf(ErrPassLimit, "%d passes", pass+1)
		}
		if err := c.conv.To(Sorting); err != nil {
			return nil, err
		}
	}

	if c.strategy.FinalRowPass() {
		if err := c.runPhase(PhaseFinalRow, count); err != nil {
			return nil, err
		}
		c.result.RowPasses++
		if err := c.conv.To(FinalCheck); err != nil {
			return nil, err
		}
		if !c.m.DiagonalsSorted() {
			c.conv.To(Fatal)
			return c.finish(start), errors.Wrapf(ErrNotSorted, "after %d passes", c.result.Passes)
		}
		if err := c.conv.To(Done); err != nil {
			return nil, err
		}
		c.result.Sorted = true
	}
	if err := c.machine.enter(StepDone); err != nil {
		return nil, err
	}
	c.dump("Sorted matrix")
	res := c.finish(start)
	logger.Infof("%s sorted %dx%d on %d ranks in %d passes", c.strategy.Name(), c.n, c.n, c.procs, res.Passes)
	return res, nil
}

func (c *Coordinator) finish(start time.Time) *Result {
	res := c.result
	res.Elapsed = time.Since(start)
	res.Matrix = c.m
	return &res
}

/*
	runPhase sorts every row, or every column, once. The shards go out in batches
	of one per rank: index b*procs+k goes to rank k and the coordinator keeps b*procs.
*/
func (c *Coordinator) runPhase(phase Phase, pass int) error {
	distribute, collect := phaseSteps(phase)
	c.returned.Reset()
	for b := 0; b < c.n/c.procs; b++ {
		if err := c.machine.enter(distribute); err != nil {
			return err
		}
		for k := 1; k < c.procs; k++ {
			if err := sendLayout(c.transport, k, phase, pass, b*c.procs+k, c.m); err != nil {
				return errors.WithMessage(err, fmt.Sprintf("sending %s %d", phase, b*c.procs+k))
			}
		}
		if err := c.sortOwn(phase, b*c.procs); err != nil {
			return err
		}

		if err := c.machine.enter(collect); err != nil {
			return err
		}
		for k := 1; k < c.procs; k++ {
			if err := c.collect(k, phase, pass, b*c.procs+k); err != nil {
				return err
			}
		}
	}
	for i := 0; i < c.n; i++ {
		if ok, _ := c.returned.GetBit(uint64(i)); !ok {
			return c.machine.violation("%s %d never came back in pass %d", phase, i, pass)
		}
	}
	return nil
}

func (c *Coordinator) sortOwn(phase Phase, index int) error {
	layout := phase.layout(c.n, index)
	shard, err := c.m.Gather(layout, nil)
	if err != nil {
		return err
	}
	sortShard(c.strategy, phase, 0, shard)
	if err := c.m.Scatter(layout, shard); err != nil {
		return err
	}
	return c.returned.SetBit(uint64(index))
}

func (c *Coordinator) collect(from int, phase Phase, pass, index int) error {
	msg, err := c.transport.RecvShard(from, phase)
	if err != nil {
		return errors.WithMessage(err, fmt.Sprintf("receiving %s %d from %d", phase, index, from))
	}
	if Phase(msg.Phase) != phase || int(msg.Pass) != pass || int(msg.Index) != index {
		return c.machine.violation("rank %d returned %s %d of pass %d, want %s %d of pass %d",
			from, Phase(msg.Phase), msg.Index, msg.Pass, phase, index, pass)
	}
	if seen, _ := c.returned.GetBit(uint64(index)); seen {
		return c.machine.violation("%s %d returned twice in pass %d", phase, index, pass)
	}
	if err := c.m.Scatter(phase.layout(c.n, index), msg.Values); err != nil {
		return c.machine.violation("%s %d from rank %d: %v", phase, index, from, err)
	}
	return c.returned.SetBit(uint64(index))
}

func (c *Coordinator) broadcastFlag(flag FlagMessage) error {
	if err := c.machine.enter(StepFlag); err != nil {
		return err
	}
	for k := 1; k < c.procs; k++ {
		if err := c.transport.SendFlag(k, flag); err != nil {
			return errors.WithMessage(err, fmt.Sprintf("sending flag to %d", k))
		}
	}
	return nil
}

func (c *Coordinator) dump(title string) {
	if !c.opts.Verbose || c.opts.Out == nil {
		return
	}
	fmt.Fprintf(c.opts.Out, "%s:\n", title)
	c.m.Print(c.opts.Out)
	fmt.Fprintf(c.opts.Out, "Diagonals:\n")
	c.m.PrintDiagonals(c.opts.Out)
}
