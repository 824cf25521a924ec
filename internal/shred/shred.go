// Package shred implements the content-defined shredding algorithm (C3):
// a rolling window of N relevant lines per file, fingerprinted with a
// pluggable digest.Algorithm. The worker pool generalizes the original
// file-hasher's hand-rolled channel/WaitGroup pipeline into an
// errgroup-based fan-out, the ecosystem-idiomatic equivalent.
package shred

import (
	"bufio"
	"context"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/meisterluk/shredtrees/internal/digest"
	"github.com/meisterluk/shredtrees/internal/eligibility"
	"github.com/meisterluk/shredtrees/internal/fswalk"
	"github.com/meisterluk/shredtrees/internal/model"
	"github.com/meisterluk/shredtrees/internal/normalize"
)

// Shred is one fingerprinted window of normalized lines.
type Shred struct {
	model.Location
	Hash []byte
}

// Options configures a shredding run.
type Options struct {
	Size          int
	Normalization normalize.Set
	Algorithm     digest.Algorithm
	Workers       int
}

// FileResult is one file's shreds plus its total physical line count, the
// unit the shredder's worker pool produces and the SHIF-A writer consumes.
type FileResult struct {
	FileID    string
	Shreds    []Shred
	LineCount uint64
}

// File shreds a single eligible file. It reports the file's shreds in
// ascending Start order plus its total physical line count.
func File(fileID, absPath string, opts Options) (FileResult, error) {
	fd, err := os.Open(absPath)
	if err != nil {
		return FileResult{}, err
	}
	defer fd.Close()

	type bufLine struct {
		lineno uint32
		text   string
	}

	scanner := bufio.NewScanner(fd)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	window := make([]bufLine, 0, opts.Size)
	var shreds []Shred
	var lineno uint32

	emit := func() {
		h := opts.Algorithm.New()
		for i, wl := range window {
			if i > 0 {
				h.Write([]byte{'\n'})
			}
			h.Write([]byte(wl.text))
		}
		shreds = append(shreds, Shred{
			Location: model.Location{FileID: fileID, Start: window[0].lineno, End: window[len(window)-1].lineno},
			Hash:     h.Sum(nil),
		})
	}

	for scanner.Scan() {
		lineno++
		normalized := opts.Normalization.Line(scanner.Text())
		if !eligibility.LineRelevant(normalized) {
			continue
		}
		window = append(window, bufLine{lineno: lineno, text: normalized})
		if len(window) == opts.Size {
			emit()
			window = window[1:]
		}
	}
	if err := scanner.Err(); err != nil {
		return FileResult{}, err
	}

	if len(shreds) == 0 && len(window) > 0 {
		emit()
	}

	return FileResult{FileID: fileID, Shreds: shreds, LineCount: uint64(lineno)}, nil
}

// Tree shreds every eligible file of refs concurrently, bounded by
// opts.Workers, and returns results in the same deterministic order refs
// was given in (fswalk.Walk already sorts by FileID).
func Tree(ctx context.Context, refs []fswalk.FileRef, opts Options) ([]FileResult, error) {
	results := make([]FileResult, len(refs))

	g, ctx := errgroup.WithContext(ctx)
	if opts.Workers > 0 {
		g.SetLimit(opts.Workers)
	}

	for i, ref := range refs {
		i, ref := i, ref
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			res, err := File(ref.FileID, ref.AbsPath, opts)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
