package posters

import (
	"reflect"
	"testing"
)

func TestDiffTagIDs(t *testing.T) {
	tests := []struct {
		name       string
		current    []int64
		desired    []int64
		wantAdd    []int64
		wantRemove []int64
	}{
		{
			name:       "disjoint overlap",
			current:    []int64{1, 2},
			desired:    []int64{2, 3},
			wantAdd:    []int64{3},
			wantRemove: []int64{1},
		},
		{
			name:       "identical sets produce no writes",
			current:    []int64{1, 2, 3},
			desired:    []int64{1, 2, 3},
			wantAdd:    nil,
			wantRemove: nil,
		},
		{
			name:       "empty desired removes everything",
			current:    []int64{4, 5},
			desired:    nil,
			wantAdd:    nil,
			wantRemove: []int64{4, 5},
		},
		{
			name:       "empty current adds everything",
			current:    nil,
			desired:    []int64{7, 8},
			wantAdd:    []int64{7, 8},
			wantRemove: nil,
		},
		{
			name:       "both empty",
			current:    nil,
			desired:    nil,
			wantAdd:    nil,
			wantRemove: nil,
		},
		{
			name:       "duplicates collapse",
			current:    []int64{1, 1, 2},
			desired:    []int64{2, 2, 3, 3},
			wantAdd:    []int64{3},
			wantRemove: []int64{1},
		},
		{
			name:       "output is sorted",
			current:    []int64{9, 3, 6},
			desired:    []int64{10, 1, 5},
			wantAdd:    []int64{1, 5, 10},
			wantRemove: []int64{3, 6, 9},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotAdd, gotRemove := DiffTagIDs(tt.current, tt.desired)
			if !reflect.DeepEqual(gotAdd, tt.wantAdd) {
				t.Errorf("toAdd = %v, want %v", gotAdd, tt.wantAdd)
			}
			if !reflect.DeepEqual(gotRemove, tt.wantRemove) {
				t.Errorf("toRemove = %v, want %v", gotRemove, tt.wantRemove)
			}
		})
	}
}

// Applying the diff to the current set must reproduce the desired set, and
// calling the differ again with the result must be a no-op.
func TestDiffTagIDsReconstruction(t *testing.T) {
	current := []int64{1, 2, 4}
	desired := []int64{2, 3, 4, 6}

	toAdd, toRemove := DiffTagIDs(current, desired)

	next := map[int64]struct{}{}
	for _, id := range current {
		next[id] = struct{}{}
	}
	for _, id := range toRemove {
		delete(next, id)
	}
	for _, id := range toAdd {
		next[id] = struct{}{}
	}

	if len(next) != len(desired) {
		t.Fatalf("reconstructed set has %d elements, want %d", len(next), len(desired))
	}
	for _, id := range desired {
		if _, ok := next[id]; !ok {
			t.Errorf("reconstructed set missing %d", id)
		}
	}

	// Idempotence: diffing the reconstructed state against the same desired
	// set yields empty add/remove sets.
	reconstructed := make([]int64, 0, len(next))
	for id := range next {
		reconstructed = append(reconstructed, id)
	}
	again, gone := DiffTagIDs(reconstructed, desired)
	if len(again) != 0 || len(gone) != 0 {
		t.Errorf("second diff not empty: toAdd=%v toRemove=%v", again, gone)
	}
}

func TestDiffTagIDsDisjointOutput(t *testing.T) {
	toAdd, toRemove := DiffTagIDs([]int64{1, 2, 3}, []int64{3, 4, 5})

	seen := map[int64]struct{}{}
	for _, id := range toAdd {
		seen[id] = struct{}{}
	}
	for _, id := range toRemove {
		if _, ok := seen[id]; ok {
			t.Errorf("id %d appears in both toAdd and toRemove", id)
		}
	}
}
