package run

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"idsampler/domain/core"
	"idsampler/domain/sampling"
)

// Fingerprint identifies a run by its inputs and parameters. Two runs with
// the same fingerprint and a seed produce the same dataset.
type Fingerprint struct {
	PoolHash     core.Hash `json:"pool_hash"`
	RetainedHash core.Hash `json:"retained_hash"`
	ExcludedHash core.Hash `json:"excluded_hash"`
	ParamsHash   core.Hash `json:"params_hash"`
	Fingerprint  core.Hash `json:"fingerprint"`
}

// IsEmpty reports whether the fingerprint has been computed
func (f Fingerprint) IsEmpty() bool {
	return f.Fingerprint.IsEmpty()
}

// NewFingerprint hashes the inputs as sets (sorted) plus the parameters
func NewFingerprint(in Inputs, p Params) Fingerprint {
	fp := Fingerprint{
		PoolHash:     hashSet(in.Pool),
		RetainedHash: hashSet(in.Retained),
		ExcludedHash: hashSet(in.Excluded),
		ParamsHash:   core.NewHash([]byte(paramsKey(p))),
	}
	data := fmt.Sprintf("pool:%s|retained:%s|excluded:%s|params:%s",
		fp.PoolHash, fp.RetainedHash, fp.ExcludedHash, fp.ParamsHash)
	fp.Fingerprint = core.NewHash([]byte(data))
	return fp
}

func hashSet[S ~[]sampling.Identifier](ids S) core.Hash {
	sorted := slices.Clone([]sampling.Identifier(ids))
	slices.Sort(sorted)
	return core.HashInts(sorted)
}

func paramsKey(p Params) string {
	return fmt.Sprintf("size:%d|seed:%s|min:%s|max:%s",
		p.SampleSize, optional(p.Seed), optional(p.Range.Min), optional(p.Range.Max))
}

func optional(v *int64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *v)
}

// Manifest is the audit record of a finished run. It carries counts and
// hashes only, never identifiers.
type Manifest struct {
	RunID         core.RunID `json:"run_id" db:"run_id"`
	Fingerprint   core.Hash  `json:"fingerprint" db:"fingerprint"`
	State         State      `json:"state" db:"state"`
	SampleSize    int        `json:"sample_size" db:"sample_size"`
	Seed          *int64     `json:"seed,omitempty" db:"seed"`
	MinID         *int64     `json:"min_id,omitempty" db:"min_id"`
	MaxID         *int64     `json:"max_id,omitempty" db:"max_id"`
	PoolCount     int        `json:"pool_count" db:"pool_count"`
	RetainedCount int        `json:"retained_count" db:"retained_count"`
	ExcludedCount int        `json:"excluded_count" db:"excluded_count"`
	EligibleCount int        `json:"eligible_count" db:"eligible_count"`
	NewCount      int        `json:"new_count" db:"new_count"`
	ErrorCount    int        `json:"error_count" db:"error_count"`
	CodeVersion   string     `json:"code_version" db:"code_version"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
}

// NewManifest summarises a terminal context
func NewManifest(c *Context, codeVersion string) *Manifest {
	return &Manifest{
		RunID:         c.RunID,
		Fingerprint:   c.Fingerprint.Fingerprint,
		State:         c.State,
		SampleSize:    c.Params.SampleSize,
		Seed:          c.Params.Seed,
		MinID:         c.Params.Range.Min,
		MaxID:         c.Params.Range.Max,
		PoolCount:     len(c.Inputs.Pool),
		RetainedCount: len(c.Inputs.Retained),
		ExcludedCount: len(c.Inputs.Excluded),
		EligibleCount: len(c.Eligible),
		NewCount:      len(c.Sample),
		ErrorCount:    len(c.Errors),
		CodeVersion:   codeVersion,
		CreatedAt:     c.FinishedAt,
	}
}

// Validate checks if the manifest is complete
func (m *Manifest) Validate() error {
	if core.ID(m.RunID).IsEmpty() {
		return errors.New("run manifest: run_id cannot be empty")
	}
	if m.Fingerprint.IsEmpty() {
		return errors.New("run manifest: fingerprint cannot be empty")
	}
	if !m.State.Terminal() {
		return fmt.Errorf("run manifest: state %s is not terminal", m.State)
	}
	if m.CodeVersion == "" {
		return errors.New("run manifest: code_version cannot be empty")
	}
	return nil
}
