// Package coalesce implements the range coalescer (C6): repeated two-way
// absorption of cliques that witness overlapping or adjacent ranges across
// the same pair of files, run to fixpoint. It generalizes the original
// duplicate finder's "bubble a match up to its parent, repeat until
// nothing changes" merging loop from directory trees to line ranges.
package coalesce

import (
	"context"
	"sort"

	"github.com/meisterluk/shredtrees/internal/model"
)

// Coalesce merges cliques until no further absorption is possible, then
// returns the result sorted by first location. Passing an already
// coalesced list back in is a no-op (idempotence).
func Coalesce(ctx context.Context, cliques []model.Clique) ([]model.Clique, error) {
	list := append([]model.Clique(nil), cliques...)

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		var changed bool
		list, changed = onePass(list)
		if !changed {
			break
		}
	}

	sortCliques(list)
	return list, nil
}

// onePass partitions candidates by the file_id of every location of a
// clique, so only cliques that share at least one file are ever compared,
// then tries to absorb every clique it can into its lowest-index survivor.
func onePass(list []model.Clique) ([]model.Clique, bool) {
	buckets := make(map[string][]int)
	for i, c := range list {
		for _, loc := range c.Locations {
			buckets[loc.FileID] = append(buckets[loc.FileID], i)
		}
	}

	absorbed := make([]bool, len(list))
	result := make([]model.Clique, 0, len(list))
	changed := false

	for i := range list {
		if absorbed[i] {
			continue
		}
		current := list[i]

		candidates := map[int]bool{}
		for _, loc := range current.Locations {
			for _, j := range buckets[loc.FileID] {
				if j != i {
					candidates[j] = true
				}
			}
		}

		for j := range candidates {
			if absorbed[j] {
				continue
			}
			if ok, _ := canAbsorb(current, list[j]); ok {
				current = mergeCliqueInto(current, list[j])
				absorbed[j] = true
				changed = true
			}
		}

		result = append(result, current)
	}

	return result, changed
}

// commonFiles returns the file_ids present in both a and b, sorted for a
// deterministic choice of "first" and "second" witnessed file.
func commonFiles(a, b model.Clique) []string {
	inA := map[string]bool{}
	for _, loc := range a.Locations {
		inA[loc.FileID] = true
	}
	seen := map[string]bool{}
	var common []string
	for _, loc := range b.Locations {
		if inA[loc.FileID] && !seen[loc.FileID] {
			common = append(common, loc.FileID)
			seen[loc.FileID] = true
		}
	}
	sort.Strings(common)
	return common
}

func locationsInFile(c model.Clique, fileID string) []model.Location {
	var out []model.Location
	for _, loc := range c.Locations {
		if loc.FileID == fileID {
			out = append(out, loc)
		}
	}
	return out
}

// overlapsOrAdjacent is true when two ranges intersect or are exactly
// stride-1 apart, covering both triggers spec §4.6 names: strict
// intersection, and the stride-1 adjacency that collapses sequential
// shred offsets of a repeated run into a single range.
func overlapsOrAdjacent(a, b model.Location) bool {
	if a.Start <= b.End && b.Start <= a.End {
		return true
	}
	return a.End+1 == b.Start || b.End+1 == a.Start
}

func union(a, b model.Location) model.Location {
	start, end := a.Start, a.End
	if b.Start < start {
		start = b.Start
	}
	if b.End > end {
		end = b.End
	}
	return model.Location{FileID: a.FileID, Start: start, End: end}
}

// canAbsorb reports whether clique b should be absorbed into a: they must
// share at least two files, and in the first two (sorted) common files
// each must have a pair of overlapping or adjacent ranges.
func canAbsorb(a, b model.Clique) (bool, [2]string) {
	common := commonFiles(a, b)
	if len(common) < 2 {
		return false, [2]string{}
	}
	f1, f2 := common[0], common[1]

	if anyOverlap(locationsInFile(a, f1), locationsInFile(b, f1)) &&
		anyOverlap(locationsInFile(a, f2), locationsInFile(b, f2)) {
		return true, [2]string{f1, f2}
	}
	return false, [2]string{}
}

func anyOverlap(as, bs []model.Location) bool {
	for _, a := range as {
		for _, b := range bs {
			if overlapsOrAdjacent(a, b) {
				return true
			}
		}
	}
	return false
}

// mergeCliqueInto folds b's locations into a: a location sharing a file
// with an existing one that overlaps or touches it is unioned in place;
// everything else is simply appended.
func mergeCliqueInto(a, b model.Clique) model.Clique {
	merged := append([]model.Location{}, a.Locations...)

	for _, bl := range b.Locations {
		absorbed := false
		for i, ml := range merged {
			if ml.FileID == bl.FileID && overlapsOrAdjacent(ml, bl) {
				merged[i] = union(ml, bl)
				absorbed = true
				break
			}
		}
		if !absorbed {
			merged = append(merged, bl)
		}
	}

	return model.Clique{Locations: merged}
}

func sortCliques(list []model.Clique) {
	for i := range list {
		locs := list[i].Locations
		sort.Slice(locs, func(a, b int) bool { return locs[a].Less(locs[b]) })
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].First().Less(list[j].First())
	})
}
