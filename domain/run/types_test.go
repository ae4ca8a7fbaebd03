package run

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"idsampler/domain/core"
	"idsampler/domain/sampling"
)

func TestStateTransitions(t *testing.T) {
	tests := []struct {
		from  State
		to    State
		legal bool
	}{
		{StateIdle, StateInputsLoaded, true},
		{StateIdle, StateValidating, false},
		{StateIdle, StateSampled, false},
		{StateInputsLoaded, StateValidating, true},
		{StateInputsLoaded, StateSampled, false},
		{StateValidating, StateRejected, true},
		{StateValidating, StateSampled, true},
		{StateValidating, StateInputsLoaded, false},
		{StateRejected, StateValidating, true},
		{StateSampled, StateInputsLoaded, true},
		{StateSampled, StateIdle, true},
		{StateRejected, StateIdle, true},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.legal, tt.from.CanTransition(tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestContextTransition(t *testing.T) {
	c := NewContext()
	require.Equal(t, StateIdle, c.State)

	err := c.Transition(StateSampled)
	require.Error(t, err)
	assert.Equal(t, StateIdle, c.State)

	require.NoError(t, c.Transition(StateInputsLoaded))
	require.NoError(t, c.Transition(StateValidating))
	require.NoError(t, c.Transition(StateRejected))
	assert.True(t, c.State.Terminal())
}

func TestParamsValidate(t *testing.T) {
	zero := int64(0)
	one := int64(1)

	assert.NoError(t, Params{SampleSize: 1}.Validate())
	assert.NoError(t, Params{SampleSize: 5, Seed: &one}.Validate())

	err := Params{SampleSize: 0}.Validate()
	require.Error(t, err)
	assert.True(t, core.IsParamError(err))

	err = Params{SampleSize: 3, Seed: &zero}.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "seed")
}

func TestContextCloneIsDeep(t *testing.T) {
	seed := int64(9)
	c := NewContext()
	c.Inputs = Inputs{Pool: sampling.IdentifierPool{1, 2, 3}}
	c.Params = Params{SampleSize: 1, Seed: &seed, Range: sampling.RangeFilter{Min: sampling.Bound(1)}}
	c.Sample = sampling.Sample{2}
	c.Dataset = sampling.FinalDataset{{ID: 2, Source: sampling.ProvenanceNew}}

	cp := c.Clone()
	cp.Inputs.Pool[0] = 100
	*cp.Params.Seed = 10
	*cp.Params.Range.Min = 50
	cp.Sample[0] = 7
	cp.Dataset[0].ID = 7

	assert.Equal(t, int64(1), c.Inputs.Pool[0])
	assert.Equal(t, int64(9), *c.Params.Seed)
	assert.Equal(t, int64(1), *c.Params.Range.Min)
	assert.Equal(t, int64(2), c.Sample[0])
	assert.Equal(t, int64(2), c.Dataset[0].ID)

	var nilCtx *Context
	assert.Nil(t, nilCtx.Clone())
}
