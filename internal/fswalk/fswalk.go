// Package fswalk walks one rooted tree and yields the files eligible for
// shredding, generalized from the original depth-first directory walker
// down to a flat "give me this tree's eligible files" contract: everything
// beyond that (DFS vs BFS ordering, exclusion lists) is a CLI-layer concern
// in this design.
package fswalk

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/meisterluk/shredtrees/internal/eligibility"
)

// FileRef names one eligible file: FileID is its tree-prefixed identity
// ("left/src/main.c"), AbsPath is where to actually read it from.
type FileRef struct {
	FileID  string
	AbsPath string
}

// Walk traverses root, returning every eligible file under it prefixed
// with treeName, in deterministic (lexicographic) FileID order.
func Walk(ctx context.Context, root, treeName string, cOnly bool) ([]FileRef, error) {
	var refs []FileRef

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if d.IsDir() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		if info.Mode()&os.ModeSymlink != 0 {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if !eligibility.FileEligible(rel, info.Size(), cOnly) {
			return nil
		}

		refs = append(refs, FileRef{FileID: treeName + "/" + rel, AbsPath: path})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(refs, func(i, j int) bool { return refs[i].FileID < refs[j].FileID })
	return refs, nil
}
