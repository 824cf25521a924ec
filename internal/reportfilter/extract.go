// Package reportfilter implements the report filters (C9): clique text
// extraction, the size/filename/significance filters, and preen, which
// recomputes per-tree match bookkeeping after any filter mutates
// r.Cliques. Extraction's chdir-and-restore discipline mirrors the
// original report generator's filepath.Abs-then-defer-restore habit.
package reportfilter

import (
	"bufio"
	"os"
	"strings"

	"github.com/meisterluk/shredtrees/internal/model"
	"github.com/meisterluk/shredtrees/internal/report"
	"github.com/meisterluk/shredtrees/internal/shredtreeserr"
)

// Extract returns the raw (unnormalized) text spanned by a clique's first
// location, read relative to r.BaseDir. Lines that literally begin with
// "%" are escaped the same way SCF-B escapes them, for symmetry with the
// format's own "%"→"%%" convention. A file that cannot be opened returns
// a MissingFile error.
func Extract(r *report.Report, c model.Clique) (string, error) {
	if len(c.Locations) == 0 {
		return "", shredtreeserr.New(shredtreeserr.MalformedInput, "clique has no locations")
	}
	loc := c.Locations[0]

	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	if err := os.Chdir(r.BaseDir); err != nil {
		return "", err
	}
	defer os.Chdir(cwd)

	fd, err := os.Open(loc.FileID)
	if err != nil {
		return "", shredtreeserr.Wrap(shredtreeserr.MissingFile, err)
	}
	defer fd.Close()

	scanner := bufio.NewScanner(fd)
	var lineno uint32
	var b strings.Builder
	for scanner.Scan() {
		lineno++
		if lineno < loc.Start {
			continue
		}
		if lineno > loc.End {
			break
		}
		text := scanner.Text()
		if strings.HasPrefix(text, "%") {
			text = "%" + text
		}
		b.WriteString(text)
		b.WriteByte('\n')
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}

	return b.String(), nil
}
