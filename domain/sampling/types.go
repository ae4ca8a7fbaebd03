package sampling

import "sort"

// Identifier is a single numeric ID drawn from a pool
type Identifier = int64

// IdentifierPool is the full candidate universe, in extraction order
type IdentifierPool []Identifier

// RetainedSet holds identifiers that are already committed and always kept
type RetainedSet []Identifier

// ExcludedSet holds identifiers that must never be sampled
type ExcludedSet []Identifier

// EligibleSet is the pool minus retained and excluded, after range filtering
type EligibleSet []Identifier

// Sample is the newly drawn subset of an EligibleSet
type Sample []Identifier

// RangeFilter bounds the pool inclusively. A nil bound is not applied.
type RangeFilter struct {
	Min *Identifier `json:"min_id,omitempty" yaml:"min_id,omitempty"`
	Max *Identifier `json:"max_id,omitempty" yaml:"max_id,omitempty"`
}

// Contains reports whether id satisfies every present bound
func (r RangeFilter) Contains(id Identifier) bool {
	if r.Min != nil && id < *r.Min {
		return false
	}
	if r.Max != nil && id > *r.Max {
		return false
	}
	return true
}

// IsSet reports whether at least one bound is present
func (r RangeFilter) IsSet() bool {
	return r.Min != nil || r.Max != nil
}

// Bound is a convenience for building optional bounds
func Bound(v Identifier) *Identifier {
	return &v
}

// Provenance tags where a final dataset entry came from
type Provenance string

const (
	ProvenanceCurrent Provenance = "Current"
	ProvenanceNew     Provenance = "New"
)

// Entry is one row of the final dataset
type Entry struct {
	ID     Identifier `json:"id"`
	Source Provenance `json:"source"`
}

// FinalDataset is the sorted union of retained and sampled identifiers
type FinalDataset []Entry

// IDs returns the identifiers in dataset order
func (d FinalDataset) IDs() []Identifier {
	ids := make([]Identifier, len(d))
	for i, e := range d {
		ids[i] = e.ID
	}
	return ids
}

// Count returns how many entries carry the given provenance
func (d FinalDataset) Count(source Provenance) int {
	n := 0
	for _, e := range d {
		if e.Source == source {
			n++
		}
	}
	return n
}

// IsSorted reports whether the dataset is in ascending ID order
func (d FinalDataset) IsSorted() bool {
	return sort.SliceIsSorted(d, func(i, j int) bool { return d[i].ID < d[j].ID })
}

// ValidationErrors is an ordered list of human-readable violations. A
// non-empty list blocks sampling for the run.
type ValidationErrors []string

// OK reports whether sampling may proceed
func (v ValidationErrors) OK() bool {
	return len(v) == 0
}
