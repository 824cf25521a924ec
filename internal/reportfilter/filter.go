package reportfilter

import (
	"regexp"

	"github.com/meisterluk/shredtrees/internal/model"
	"github.com/meisterluk/shredtrees/internal/report"
	"github.com/meisterluk/shredtrees/internal/triviality"
)

// Preen recomputes every tree's Matches and MatchLines counters from
// r.Cliques. It must run after any filter mutates r.Cliques, and is safe
// to run redundantly: preening twice in a row is a no-op.
func Preen(r *report.Report) {
	counts := map[string]uint64{}
	lineSums := map[string]uint64{}

	for _, c := range r.Cliques {
		touched := map[string]uint32{}
		for _, loc := range c.Locations {
			tree := loc.Tree()
			if loc.Len() > touched[tree] {
				touched[tree] = loc.Len()
			}
		}
		for tree, length := range touched {
			counts[tree]++
			lineSums[tree] += uint64(length)
		}
	}

	for i := range r.Trees {
		name := r.Trees[i].Name
		r.Trees[i].Matches = counts[name]
		r.Trees[i].MatchLines = lineSums[name]
	}
}

// FilterBySize keeps only cliques with at least one location spanning
// min lines or more.
func FilterBySize(r *report.Report, min uint32) {
	kept := r.Cliques[:0]
	for _, c := range r.Cliques {
		for _, loc := range c.Locations {
			if loc.Len() >= min {
				kept = append(kept, c)
				break
			}
		}
	}
	r.Cliques = kept
	Preen(r)
}

// FilterByFilename keeps only cliques with at least one location whose
// file_id matches pattern.
func FilterByFilename(r *report.Report, pattern *regexp.Regexp) {
	kept := r.Cliques[:0]
	for _, c := range r.Cliques {
		for _, loc := range c.Locations {
			if pattern.MatchString(loc.FileID) {
				kept = append(kept, c)
				break
			}
		}
	}
	r.Cliques = kept
	Preen(r)
}

// FilterBySignificance keeps only cliques whose extracted text is
// classified as significant by the triviality classifier. It returns the
// first extraction error encountered (typically MissingFile), leaving
// r.Cliques unmodified in that case.
func FilterBySignificance(r *report.Report) error {
	kept := make([]model.Clique, 0, len(r.Cliques))
	for _, c := range r.Cliques {
		text, err := Extract(r, c)
		if err != nil {
			return err
		}
		if triviality.IsSignificant(text, c.Locations[0].FileID) {
			kept = append(kept, c)
		}
	}
	r.Cliques = kept
	Preen(r)
	return nil
}
