package gridsort

import (
	"fmt"

	"github.com/pkg/errors"
)

// Step is where a rank is within a pass.
type Step int

const (
	StepIdle Step = iota
	StepRowDistribute
	StepRowCollect
	StepColumnDistribute
	StepColumnCollect
	StepFlag
	StepFinalRowDistribute
	StepFinalRowCollect
	StepDone
)

var stepNames = map[Step]string{
	StepIdle:               "idle",
	StepRowDistribute:      "row distribution",
	StepRowCollect:         "row collection",
	StepColumnDistribute:   "column distribution",
	StepColumnCollect:      "column collection",
	StepFlag:               "flag broadcast",
	StepFinalRowDistribute: "final row distribution",
	StepFinalRowCollect:    "final row collection",
	StepDone:               "done",
}

func (s Step) String() string {
	if name, ok := stepNames[s]; ok {
		return name
	}
	return fmt.Sprintf("step(%d)", int(s))
}

var stepTransitions = map[Step][]Step{
	StepIdle:               {StepRowDistribute, StepFinalRowDistribute},
	StepRowDistribute:      {StepRowCollect},
	StepRowCollect:         {StepRowDistribute, StepColumnDistribute},
	StepColumnDistribute:   {StepColumnCollect},
	StepColumnCollect:      {StepColumnDistribute, StepFlag, StepRowDistribute, StepFinalRowDistribute},
	StepFlag:               {StepRowDistribute, StepDone},
	StepFinalRowDistribute: {StepFinalRowCollect},
	StepFinalRowCollect:    {StepFinalRowDistribute, StepDone},
}

func phaseSteps(phase Phase) (distribute, collect Step) {
	switch phase {
	case PhaseColumn:
		return StepColumnDistribute, StepColumnCollect
	case PhaseFinalRow:
		return StepFinalRowDistribute, StepFinalRowCollect
	}
	return StepRowDistribute, StepRowCollect
}

// passMachine enforces the order rows, columns, flag within every pass.
type passMachine struct {
	rank int
	step Step
}

func newPassMachine(rank int) *passMachine {
	return &passMachine{rank: rank, step: StepIdle}
}

func (p *passMachine) enter(next Step) error {
	for _, allowed := range stepTransitions[p.step] {
		if allowed == next {
			p.step = next
			return nil
		}
	}
	return &ProtocolError{Rank: p.rank, Step: p.step, Detail: fmt.Sprintf("cannot move to %s", next)}
}

func (p *passMachine) violation(format string, args ...interface{}) error {
	return &ProtocolError{Rank: p.rank, Step: p.step, Detail: fmt.Sprintf(format, args...)}
}

// State is the convergence state of a run.
type State int

const (
	Sorting State = iota
	Sorted
	FinalCheck
	Done
	Fatal
)

func (s State) String() string {
	switch s {
	case Sorting:
		return "sorting"
	case Sorted:
		return "sorted"
	case FinalCheck:
		return "final check"
	case Done:
		return "done"
	case Fatal:
		return "fatal"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Sorted, Done and Fatal are terminal.
var stateTransitions = map[State][]State{
	Sorting:    {Sorting, Sorted, FinalCheck, Fatal},
	FinalCheck: {Done, Fatal},
}

type Convergence struct {
	state State
}

func (c *Convergence) State() State {
	return c.state
}

func (c *Convergence) To(next State) error {
	for _, allowed := range stateTransitions[c.state] {
		if allowed == next {
			c.state = next
			return nil
		}
	}
	return errors.Wrapf(ErrTransition, "%s to %s", c.state, next)
}
