package posters

import "sort"

// DiffTagIDs computes the attach and detach sets that reconcile a poster's
// current tag associations with the desired set submitted by the user:
//
//	toAdd    = desired − current
//	toRemove = current − desired
//
// Both arguments are treated as sets; duplicates collapse. The function is
// pure — applying the result is the repository's job — and the output is
// sorted so callers and tests get deterministic slices.
//
// Computing a diff instead of detach-all/attach-all means unchanged
// associations are never touched and there is no window where a poster has
// zero tags.
func DiffTagIDs(current, desired []int64) (toAdd, toRemove []int64) {
	currentSet := toSet(current)
	desiredSet := toSet(desired)

	for id := range desiredSet {
		if _, ok := currentSet[id]; !ok {
			toAdd = append(toAdd, id)
		}
	}
	for id := range currentSet {
		if _, ok := desiredSet[id]; !ok {
			toRemove = append(toRemove, id)
		}
	}

	sort.Slice(toAdd, func(i, j int) bool { return toAdd[i] < toAdd[j] })
	sort.Slice(toRemove, func(i, j int) bool { return toRemove[i] < toRemove[j] })
	return toAdd, toRemove
}

func toSet(ids []int64) map[int64]struct{} {
	set := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
