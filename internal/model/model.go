// Package model holds the data types shared by the clique builder, the
// range coalescer, and the report writer/reader: a Location identifies a
// line range within one file, and a Clique groups the locations that share
// a common segment of text.
package model

import "strings"

// Location identifies a line range [Start, End] (inclusive, 1-indexed) in
// one file. FileID is the tree-prefixed path produced by fswalk, e.g.
// "left/src/main.c".
type Location struct {
	FileID string
	Start  uint32
	End    uint32
}

// Tree returns the first path segment of FileID, the name of the tree this
// location belongs to.
func (l Location) Tree() string {
	if i := strings.IndexByte(l.FileID, '/'); i >= 0 {
		return l.FileID[:i]
	}
	return l.FileID
}

// Len returns the number of lines spanned by this location.
func (l Location) Len() uint32 {
	if l.End < l.Start {
		return 0
	}
	return l.End - l.Start + 1
}

// Less orders locations by FileID, then Start, then End, giving every
// clique a deterministic first location.
func (l Location) Less(o Location) bool {
	if l.FileID != o.FileID {
		return l.FileID < o.FileID
	}
	if l.Start != o.Start {
		return l.Start < o.Start
	}
	return l.End < o.End
}

// Clique is an ordered set of locations that all contain the same
// normalized text, discovered by the shared hash of their shreds.
type Clique struct {
	Locations []Location
}

// CrossTree reports whether this clique's locations span more than one
// tree, i.e. not every location shares the same first path segment.
func (c Clique) CrossTree() bool {
	if len(c.Locations) == 0 {
		return false
	}
	first := c.Locations[0].Tree()
	for _, loc := range c.Locations[1:] {
		if loc.Tree() != first {
			return true
		}
	}
	return false
}

// First returns the clique's deterministic first location. Callers must
// ensure Locations is sorted (see coalesce.sortCliques) before relying on
// this for ordering decisions.
func (c Clique) First() Location {
	return c.Locations[0]
}

// TreeProperty holds the per-tree bookkeeping kept in a report, in the
// order the trees were registered (never a map, see DESIGN.md's "ad-hoc
// dynamism" decision).
type TreeProperty struct {
	Name       string
	Files      uint64
	Lines      uint64
	Matches    uint64
	MatchLines uint64
}
