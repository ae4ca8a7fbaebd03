package reconcile

import (
	"fmt"
	"strconv"
	"strings"

	"idsampler/domain/sampling"
)

// maxOverlapListed caps how many conflicting IDs a validation message names
const maxOverlapListed = 5

// Validate runs every integrity check and returns all violations in a fixed
// order. Checks never short-circuit so the operator can fix everything in one
// pass. The sample size check needs a pool to be meaningful and is skipped
// without one.
func Validate(pool sampling.IdentifierPool, retained sampling.RetainedSet, excluded sampling.ExcludedSet, eligible sampling.EligibleSet, requestedSampleSize int) sampling.ValidationErrors {
	errs := sampling.ValidationErrors{}

	if len(pool) == 0 {
		errs = append(errs, "Please upload a Full ID Pool file.")
	}

	if hasDuplicates(pool) {
		errs = append(errs, "Full ID Pool contains duplicate values.")
	}

	if len(retained) > 0 && hasDuplicates(retained) {
		errs = append(errs, "Current Selections contains duplicate values.")
	}

	if len(excluded) > 0 && hasDuplicates(excluded) {
		errs = append(errs, "Excluded IDs contains duplicate values.")
	}

	if overlap := intersect(retained, excluded); len(overlap) > 0 {
		errs = append(errs, "IDs appear in both Current Selections and Excluded IDs: "+formatOverlap(overlap))
	}

	if len(pool) > 0 && requestedSampleSize > len(eligible) {
		errs = append(errs, fmt.Sprintf("Requested sample size (%d) exceeds available eligible IDs (%d).",
			requestedSampleSize, len(eligible)))
	}

	return errs
}

func hasDuplicates[S ~[]sampling.Identifier](ids S) bool {
	seen := make(map[sampling.Identifier]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			return true
		}
		seen[id] = struct{}{}
	}
	return false
}

// intersect returns the distinct values of retained that also appear in
// excluded, in retained order.
func intersect(retained sampling.RetainedSet, excluded sampling.ExcludedSet) []sampling.Identifier {
	if len(retained) == 0 || len(excluded) == 0 {
		return nil
	}
	banned := make(map[sampling.Identifier]struct{}, len(excluded))
	for _, id := range excluded {
		banned[id] = struct{}{}
	}

	var overlap []sampling.Identifier
	listed := make(map[sampling.Identifier]struct{})
	for _, id := range retained {
		if _, ok := banned[id]; !ok {
			continue
		}
		if _, dup := listed[id]; dup {
			continue
		}
		listed[id] = struct{}{}
		overlap = append(overlap, id)
	}
	return overlap
}

func formatOverlap(overlap []sampling.Identifier) string {
	n := len(overlap)
	if n > maxOverlapListed {
		n = maxOverlapListed
	}
	parts := make([]string, n)
	for i := 0; i < n; i++ {
		parts[i] = strconv.FormatInt(overlap[i], 10)
	}
	out := strings.Join(parts, ", ")
	if len(overlap) > maxOverlapListed {
		out += "... and more"
	}
	return out
}
