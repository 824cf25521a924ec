// Package shifa implements the SHIF-A interchange format (C4): the
// text/binary framing a shredder writes its per-file shred lists to and a
// clique builder reads them back from. The header grammar generalizes the
// original report's "Key: Value" head line parsing to a multi-line,
// %%-terminated header block.
package shifa

import (
	"github.com/meisterluk/shredtrees/internal/normalize"
	"github.com/meisterluk/shredtrees/internal/shred"
)

// Header carries the metadata every SHIF-A stream opens with.
type Header struct {
	Normalization normalize.Set
	ShredSize     int
	HashMethod    string
	Generator     string
	Comments      []string
	Binary        bool
}

// FileBlock is one file's shred list as stored in a SHIF-A stream.
// LineCount is the file's total physical line count, carried alongside
// its shreds so a downstream report can populate its file_id → line_count
// table without re-reading the original file.
type FileBlock struct {
	FileID    string
	LineCount uint64
	Shreds    []shred.Shred
}
