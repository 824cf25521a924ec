package clique

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.etcd.io/bbolt"

	"github.com/meisterluk/shredtrees/internal/model"
	"github.com/meisterluk/shredtrees/internal/shifa"
)

var hashesBucket = []byte("hashes")

// fieldSep separates the three fields of an encoded location record,
// reusing the unit-separator convention the original hasher used to join
// a basename and its content in basename mode.
const fieldSep = '\x1f'

// buildDisk builds cliques using a bbolt-backed multimap instead of an
// in-process map, for working sets too large to hold in memory. The index
// is opened at opts.IndexPath, or at a process-unique temp path when that
// is empty, and removed on every exit path.
func buildDisk(ctx context.Context, streams [][]shifa.FileBlock, opts Options) ([]model.Clique, error) {
	path := opts.IndexPath
	if path == "" {
		path = filepath.Join(os.TempDir(), "shredtrees-"+uuid.NewString()+".idx")
	}

	db, err := bbolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		db.Close()
		os.Remove(path)
	}()

	if err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(hashesBucket)
		return err
	}); err != nil {
		return nil, err
	}

	for _, stream := range streams {
		for _, fb := range stream {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			default:
			}
			if err := indexFileBlock(db, fb); err != nil {
				return nil, err
			}
		}
	}

	if err := pruneUnique(db); err != nil {
		return nil, err
	}

	return collectCliques(db, opts)
}

func indexFileBlock(db *bbolt.DB, fb shifa.FileBlock) error {
	return db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(hashesBucket)
		for _, s := range fb.Shreds {
			key := s.Hash
			record := append(encodeLocation(s.Location), '\n')

			existing := b.Get(key)
			var updated []byte
			if existing == nil {
				updated = record
			} else {
				updated = append(append([]byte{}, existing...), record...)
			}
			if err := b.Put(append([]byte{}, key...), updated); err != nil {
				return err
			}
		}
		return nil
	})
}

// pruneUnique deletes every bucket entry whose value contains exactly one
// embedded newline, i.e. a hash witnessed by only one location.
func pruneUnique(db *bbolt.DB) error {
	return db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(hashesBucket)
		c := b.Cursor()

		var toDelete [][]byte
		for k, v := c.First(); k != nil; k, v = c.Next() {
			if bytes.Count(v, []byte{'\n'}) == 1 {
				toDelete = append(toDelete, append([]byte{}, k...))
			}
		}
		for _, k := range toDelete {
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
}

func collectCliques(db *bbolt.DB, opts Options) ([]model.Clique, error) {
	var cliques []model.Clique

	err := db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(hashesBucket)
		c := b.Cursor()

		for k, v := c.First(); k != nil; k, v = c.Next() {
			lines := strings.Split(strings.TrimRight(string(v), "\n"), "\n")
			locs := make([]model.Location, 0, len(lines))
			for _, line := range lines {
				loc, err := decodeLocation([]byte(line))
				if err != nil {
					return err
				}
				locs = append(locs, loc)
			}
			sort.Slice(locs, func(i, j int) bool { return locs[i].Less(locs[j]) })

			clq := model.Clique{Locations: locs}
			if opts.CrossTreeOnly && !clq.CrossTree() {
				continue
			}
			cliques = append(cliques, clq)
		}
		return nil
	})
	return cliques, err
}

func encodeLocation(l model.Location) []byte {
	return []byte(fmt.Sprintf("%s%c%d%c%d", l.FileID, fieldSep, l.Start, fieldSep, l.End))
}

func decodeLocation(b []byte) (model.Location, error) {
	parts := strings.Split(string(b), string(rune(fieldSep)))
	if len(parts) != 3 {
		return model.Location{}, fmt.Errorf("corrupt disk-index location record: %q", b)
	}
	start, err := strconv.ParseUint(parts[1], 10, 32)
	if err != nil {
		return model.Location{}, err
	}
	end, err := strconv.ParseUint(parts[2], 10, 32)
	if err != nil {
		return model.Location{}, err
	}
	return model.Location{FileID: parts[0], Start: uint32(start), End: uint32(end)}, nil
}
