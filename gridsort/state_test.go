package gridsort

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPassMachine_oddEvenPass(t *testing.T) {
	p := newPassMachine(0)
	for _, s := range []Step{
		StepRowDistribute, StepRowCollect, StepRowDistribute, StepRowCollect,
		StepColumnDistribute, StepColumnCollect, StepFlag,
		StepRowDistribute, StepRowCollect, StepColumnDistribute, StepColumnCollect, StepFlag,
		StepDone,
	} {
		require.NoError(t, p.enter(s), "entering %s", s)
	}
}

func TestPassMachine_shearPasses(t *testing.T) {
	p := newPassMachine(3)
	for _, s := range []Step{
		StepRowDistribute, StepRowCollect, StepColumnDistribute, StepColumnCollect,
		StepRowDistribute, StepRowCollect, StepColumnDistribute, StepColumnCollect,
		StepFinalRowDistribute, StepFinalRowCollect, StepDone,
	} {
		require.NoError(t, p.enter(s), "entering %s", s)
	}

	single := newPassMachine(0)
	require.NoError(t, single.enter(StepFinalRowDistribute))
}

func TestPassMachine_rejectsOutOfOrderSteps(t *testing.T) {
	p := newPassMachine(2)
	err := p.enter(StepColumnDistribute)
	var pe *ProtocolError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, 2, pe.Rank)
	assert.Equal(t, StepIdle, pe.Step)

	require.NoError(t, p.enter(StepRowDistribute))
	assert.Error(t, p.enter(StepFlag), "columns must follow rows")
	require.NoError(t, p.enter(StepRowCollect))
	assert.Error(t, p.enter(StepDone))
	assert.Contains(t, p.violation("index %d", 4).Error(), "row collection: index 4")
}

func TestConvergence(t *testing.T) {
	var c Convergence
	assert.Equal(t, Sorting, c.State())
	require.NoError(t, c.To(Sorting))
	require.NoError(t, c.To(Sorted))
	for _, s := range []State{Sorting, Sorted, FinalCheck, Done, Fatal} {
		assert.Equal(t, ErrTransition, errors.Cause(c.To(s)), "leaving sorted for %s", s)
	}

	var shear Convergence
	require.NoError(t, shear.To(FinalCheck))
	assert.Error(t, shear.To(Sorting))
	require.NoError(t, shear.To(Fatal))
	assert.Error(t, shear.To(Done))
	assert.Equal(t, "fatal", shear.State().String())
}
