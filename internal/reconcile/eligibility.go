package reconcile

import "idsampler/domain/sampling"

// ComputeEligible returns the pool filtered to the inclusive range, minus every
// retained or excluded identifier. Pool order is preserved and nothing is
// re-sorted. A nil pool yields an empty set.
func ComputeEligible(pool sampling.IdentifierPool, retained sampling.RetainedSet, excluded sampling.ExcludedSet, bounds sampling.RangeFilter) sampling.EligibleSet {
	if len(pool) == 0 {
		return sampling.EligibleSet{}
	}

	removed := make(map[sampling.Identifier]struct{}, len(retained)+len(excluded))
	for _, id := range retained {
		removed[id] = struct{}{}
	}
	for _, id := range excluded {
		removed[id] = struct{}{}
	}

	eligible := make(sampling.EligibleSet, 0, len(pool))
	for _, id := range pool {
		if !bounds.Contains(id) {
			continue
		}
		if _, skip := removed[id]; skip {
			continue
		}
		eligible = append(eligible, id)
	}
	return eligible
}
