// Package report implements the report writer/reader (C7): the SCF-B
// interchange format a clique report is serialized to and read back from,
// generalizing the original report's head/tail line split into a
// three-section, %%-terminated grammar (header, tree properties, clique
// blocks).
package report

import (
	"github.com/meisterluk/shredtrees/internal/model"
	"github.com/meisterluk/shredtrees/internal/normalize"
)

// Header carries the metadata an SCF-B report opens with.
type Header struct {
	HashMethod    string
	Normalization normalize.Set
	ShredSize     int
	MergeProgram  string
	FilterProgram string
	Filtering     string
}

// Report is the in-memory form of an SCF-B document: its header, the
// per-tree bookkeeping, the file_id → physical-line-count table, the
// surviving cliques, and the base directory clique text extraction is
// relative to.
type Report struct {
	Header  Header
	Trees   []model.TreeProperty
	Files   map[string]uint64
	Cliques []model.Clique
	BaseDir string
}

// TreeIndex returns the index of the tree named name in r.Trees, or -1.
func (r *Report) TreeIndex(name string) int {
	for i, t := range r.Trees {
		if t.Name == name {
			return i
		}
	}
	return -1
}
