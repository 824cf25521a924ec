// Package clique implements the clique builder (C5): it groups shreds
// sharing the same hash into cliques, drops singletons, and optionally
// restricts to cross-tree matches. The in-memory path generalizes the
// original file-hasher's bucketed digest map; the out-of-core path is new,
// backed by bbolt, for working sets too large to hold in memory (spec
// §4.5's on-disk scaling strategy).
package clique

import (
	"context"
	"sort"

	"github.com/meisterluk/shredtrees/internal/model"
	"github.com/meisterluk/shredtrees/internal/shifa"
	"github.com/meisterluk/shredtrees/internal/shredtreeserr"
)

// Options configures a clique-building run.
type Options struct {
	CrossTreeOnly bool
	DiskIndex     bool
	IndexPath     string
}

// CheckCompatible verifies that every header describes the same shredding
// configuration. Cliques can only be built across inputs that agree on
// normalization, shred size, and hash method.
func CheckCompatible(headers []shifa.Header) error {
	if len(headers) == 0 {
		return nil
	}
	ref := headers[0]
	for _, h := range headers[1:] {
		if h.Normalization.String() != ref.Normalization.String() ||
			h.ShredSize != ref.ShredSize ||
			h.HashMethod != ref.HashMethod {
			return shredtreeserr.New(shredtreeserr.Incompatible, "shred inputs disagree on normalization, shred size, or hash method")
		}
	}
	return nil
}

// Build ingests one or more SHIF-A file-block streams and returns the
// surviving cliques, sorted by their first location.
func Build(ctx context.Context, streams [][]shifa.FileBlock, opts Options) ([]model.Clique, error) {
	var cliques []model.Clique
	var err error
	if opts.DiskIndex {
		cliques, err = buildDisk(ctx, streams, opts)
	} else {
		cliques, err = buildMemory(ctx, streams, opts)
	}
	if err != nil {
		return nil, err
	}

	sort.Slice(cliques, func(i, j int) bool {
		return cliques[i].First().Less(cliques[j].First())
	})
	return cliques, nil
}

func buildMemory(ctx context.Context, streams [][]shifa.FileBlock, opts Options) ([]model.Clique, error) {
	multimap := make(map[string][]model.Location)

	for _, stream := range streams {
		for _, fb := range stream {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			default:
			}
			for _, s := range fb.Shreds {
				key := string(s.Hash)
				multimap[key] = append(multimap[key], s.Location)
			}
		}
	}

	cliques := make([]model.Clique, 0, len(multimap))
	for _, locs := range multimap {
		if len(locs) < 2 {
			continue
		}
		sort.Slice(locs, func(i, j int) bool { return locs[i].Less(locs[j]) })
		c := model.Clique{Locations: locs}
		if opts.CrossTreeOnly && !c.CrossTree() {
			continue
		}
		cliques = append(cliques, c)
	}
	return cliques, nil
}
