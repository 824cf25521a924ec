package report

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

const magic = "#SCF-B 2.0"

var treePropertyKeys = []string{"files", "lines", "matches", "matchlines"}

// Write serializes r to w in SCF-B framing. The top-level Matches count is
// always derived from len(r.Cliques), never taken from a stale field.
func Write(w io.Writer, r *Report) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "%s\n", magic)
	fmt.Fprintf(bw, "Hash-Method: %s\n", r.Header.HashMethod)
	fmt.Fprintf(bw, "Normalization: %s\n", r.Header.Normalization.String())
	fmt.Fprintf(bw, "Shred-Size: %d\n", r.Header.ShredSize)
	fmt.Fprintf(bw, "Matches: %d\n", len(r.Cliques))
	if r.Header.MergeProgram != "" {
		fmt.Fprintf(bw, "Merge-Program: %s\n", r.Header.MergeProgram)
	}
	if r.Header.FilterProgram != "" {
		fmt.Fprintf(bw, "Filter-Program: %s\n", r.Header.FilterProgram)
	}
	if r.Header.Filtering != "" {
		fmt.Fprintf(bw, "Filtering: %s\n", r.Header.Filtering)
	}
	fmt.Fprint(bw, "%%\n")

	for _, t := range r.Trees {
		values := map[string]uint64{
			"files":      t.Files,
			"lines":      t.Lines,
			"matches":    t.Matches,
			"matchlines": t.MatchLines,
		}
		parts := make([]string, 0, len(treePropertyKeys))
		for _, key := range treePropertyKeys {
			parts = append(parts, fmt.Sprintf("%s=%d", key, values[key]))
		}
		fmt.Fprintf(bw, "%s: %s\n", escapePercent(t.Name), strings.Join(parts, ", "))
	}
	fmt.Fprint(bw, "%%\n")

	for _, c := range r.Cliques {
		for _, loc := range c.Locations {
			fmt.Fprintf(bw, "%s:%d:%d:%d\n", escapePercent(loc.FileID), loc.Start, loc.End, r.Files[loc.FileID])
		}
		fmt.Fprint(bw, "%%\n")
	}

	return bw.Flush()
}

func escapePercent(s string) string {
	if strings.HasPrefix(s, "%") {
		return "%" + s
	}
	return s
}
