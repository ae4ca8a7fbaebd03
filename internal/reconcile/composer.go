package reconcile

import (
	"sort"

	"idsampler/domain/sampling"
)

// Compose merges retained and sample into one dataset sorted by ID. Entries
// that belong to retained are tagged Current, the rest New. Nothing is
// deduplicated, so the result always has len(retained)+len(sample) rows.
func Compose(retained sampling.RetainedSet, sample sampling.Sample) sampling.FinalDataset {
	current := make(map[sampling.Identifier]struct{}, len(retained))
	for _, id := range retained {
		current[id] = struct{}{}
	}

	dataset := make(sampling.FinalDataset, 0, len(retained)+len(sample))
	for _, id := range retained {
		dataset = append(dataset, sampling.Entry{ID: id, Source: sampling.ProvenanceCurrent})
	}
	for _, id := range sample {
		source := sampling.ProvenanceNew
		if _, ok := current[id]; ok {
			source = sampling.ProvenanceCurrent
		}
		dataset = append(dataset, sampling.Entry{ID: id, Source: source})
	}

	sort.SliceStable(dataset, func(i, j int) bool {
		return dataset[i].ID < dataset[j].ID
	})
	return dataset
}
