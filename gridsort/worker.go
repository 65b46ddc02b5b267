package gridsort

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/toolkits/pkg/logger"
)

// Worker sorts the shards the coordinator sends it and returns them. It keeps
// no data between shards.
type Worker struct {
	transport ShardTransport
	strategy  Strategy
	rank      int
	procs, n  int
	machine   *passMachine
	conv      Convergence
	result    Result
}

var _ role = new(Worker)

func newWorker(t ShardTransport, rank, procs int, s Strategy, n int) *Worker {
	return &Worker{
		transport: t,
		strategy:  s,
		rank:      rank,
		procs:     procs,
		n:         n,
		machine:   newPassMachine(rank),
		result:    Result{Procs: procs, N: n},
	}
}

func (w *Worker) run() (*Result, error) {
	count, bounded := w.strategy.Passes(w.n)
	for pass := 0; !bounded || pass < count; pass++ {
		if err := w.runPhase(PhaseRow, pass); err != nil {
			return nil, err
		}
		if err := w.runPhase(PhaseColumn, pass); err != nil {
			return nil, err
		}
		w.result.Passes++
		w.result.RowPasses++
		if bounded {
			continue
		}

		if err := w.machine.enter(StepFlag); err != nil {
			return nil, err
		}
		flag, err := w.transport.RecvFlag(0)
		if err != nil {
			return nil, errors.WithMessage(err, "receiving flag")
		}
		if int(flag.Pass) != pass {
			return nil, w.machine.violation("flag for pass %d during pass %d", flag.Pass, pass)
		}
		if flag.Sorted {
			if err := w.conv.To(Sorted); err != nil {
				return nil, err
			}
			w.result.Sorted = true
			break
		}
		if flag.Stop {
			w.conv.To(Fatal)
			return nil, errors.Wrapf(ErrPassLimit, "%d passes", pass+1)
		}
		if err := w.conv.To(Sorting); err != nil {
			return nil, err
		}
	}

	if w.strategy.FinalRowPass() {
		if err := w.runPhase(PhaseFinalRow, count); err != nil {
			return nil, err
		}
		w.result.RowPasses++
		if err := w.conv.To(FinalCheck); err != nil {
			return nil, err
		}
		if err := w.conv.To(Done); err != nil {
			return nil, err
		}
	}
	if err := w.machine.enter(StepDone); err != nil {
		return nil, err
	}
	logger.Debugf("rank %d finished after %d passes", w.rank, w.result.Passes)
	res := w.result
	return &res, nil
}

func (w *Worker) runPhase(phase Phase, pass int) error {
	distribute, collect := phaseSteps(phase)
	for b := 0; b < w.n/w.procs; b++ {
		if err := w.machine.enter(distribute); err != nil {
			return err
		}
		index := b*w.procs + w.rank
		msg, err := w.transport.RecvShard(0, phase)
		if err != nil {
			return errors.WithMessage(err, fmt.Sprintf("receiving %s %d", phase, index))
		}
		if Phase(msg.Phase) != phase || int(msg.Pass) != pass || int(msg.Index) != index {
			return w.machine.violation("got %s %d of pass %d, want %s %d of pass %d",
				Phase(msg.Phase), msg.Index, msg.Pass, phase, index, pass)
		}
		if len(msg.Values) != w.n {
			return w.machine.violation("%s %d has %d elements, want %d", phase, index, len(msg.Values), w.n)
		}
		sortShard(w.strategy, phase, w.rank, msg.Values)

		if err := w.machine.enter(collect); err != nil {
			return err
		}
		if err := w.transport.SendShard(0, msg); err != nil {
			return errors.WithMessage(err, fmt.Sprintf("returning %s %d", phase, index))
		}
	}
	return nil
}
