package run

import (
	"fmt"
	"slices"
	"time"

	"idsampler/domain/core"
	"idsampler/domain/sampling"
)

// State is a step in the run lifecycle
type State string

const (
	StateIdle         State = "idle"
	StateInputsLoaded State = "inputs_loaded"
	StateValidating   State = "validating"
	StateRejected     State = "rejected"
	StateSampled      State = "sampled"
)

// transitions lists the legal next states for each state. Reset to Idle is
// always legal and handled separately.
var transitions = map[State][]State{
	StateIdle:         {StateInputsLoaded},
	StateInputsLoaded: {StateInputsLoaded, StateValidating},
	StateValidating:   {StateRejected, StateSampled},
	StateRejected:     {StateInputsLoaded, StateValidating},
	StateSampled:      {StateInputsLoaded, StateValidating},
}

// CanTransition reports whether moving from s to next is legal
func (s State) CanTransition(next State) bool {
	if next == StateIdle {
		return true
	}
	return slices.Contains(transitions[s], next)
}

// Terminal reports whether the state ends a run
func (s State) Terminal() bool {
	return s == StateRejected || s == StateSampled
}

// Params are the operator-supplied knobs for one run
type Params struct {
	SampleSize int                  `json:"sample_size" yaml:"sample_size"`
	Seed       *int64               `json:"seed,omitempty" yaml:"seed,omitempty"`
	Range      sampling.RangeFilter `json:"range" yaml:"range"`
}

// DefaultSampleSize is used when an operator does not choose one
const DefaultSampleSize = 10

// Validate checks the parameter boundary: sample size at least 1 and, when
// present, seed at least 1.
func (p Params) Validate() error {
	if p.SampleSize < 1 {
		return core.NewParamError("sample_size", fmt.Sprintf("must be a positive integer, got %d", p.SampleSize))
	}
	if p.Seed != nil && *p.Seed < 1 {
		return core.NewParamError("seed", fmt.Sprintf("must be a positive integer, got %d", *p.Seed))
	}
	return nil
}

// Inputs are the three identifier lists loaded for a run
type Inputs struct {
	Pool     sampling.IdentifierPool `json:"pool"`
	Retained sampling.RetainedSet    `json:"retained"`
	Excluded sampling.ExcludedSet    `json:"excluded"`
}

// Clone deep-copies the inputs
func (in Inputs) Clone() Inputs {
	return Inputs{
		Pool:     slices.Clone(in.Pool),
		Retained: slices.Clone(in.Retained),
		Excluded: slices.Clone(in.Excluded),
	}
}

// Context is everything one run knows: inputs, parameters and derived
// artifacts. A context is owned by a single run until it is committed, after
// which it is only read.
type Context struct {
	RunID       core.RunID                `json:"run_id,omitempty"`
	State       State                     `json:"state"`
	Inputs      Inputs                    `json:"inputs"`
	Params      Params                    `json:"params"`
	Eligible    sampling.EligibleSet      `json:"eligible,omitempty"`
	Errors      sampling.ValidationErrors `json:"errors,omitempty"`
	Sample      sampling.Sample           `json:"sample,omitempty"`
	Dataset     sampling.FinalDataset     `json:"dataset,omitempty"`
	Fingerprint Fingerprint               `json:"fingerprint,omitempty"`
	StartedAt   time.Time                 `json:"started_at,omitempty"`
	FinishedAt  time.Time                 `json:"finished_at,omitempty"`
}

// NewContext returns an empty context in the Idle state
func NewContext() *Context {
	return &Context{State: StateIdle}
}

// Transition moves the context to next or reports an illegal move
func (c *Context) Transition(next State) error {
	if !c.State.CanTransition(next) {
		return fmt.Errorf("illegal run transition %s -> %s", c.State, next)
	}
	c.State = next
	return nil
}

// Clone deep-copies the context so readers can hold it without locking
func (c *Context) Clone() *Context {
	if c == nil {
		return nil
	}
	out := *c
	out.Inputs = c.Inputs.Clone()
	if c.Params.Seed != nil {
		seed := *c.Params.Seed
		out.Params.Seed = &seed
	}
	if c.Params.Range.Min != nil {
		out.Params.Range.Min = sampling.Bound(*c.Params.Range.Min)
	}
	if c.Params.Range.Max != nil {
		out.Params.Range.Max = sampling.Bound(*c.Params.Range.Max)
	}
	out.Eligible = slices.Clone(c.Eligible)
	out.Errors = slices.Clone(c.Errors)
	out.Sample = slices.Clone(c.Sample)
	out.Dataset = slices.Clone(c.Dataset)
	return &out
}

// Duration is how long the run took, zero if it has not finished
func (c *Context) Duration() time.Duration {
	if c.FinishedAt.IsZero() || c.StartedAt.IsZero() {
		return 0
	}
	return c.FinishedAt.Sub(c.StartedAt)
}
