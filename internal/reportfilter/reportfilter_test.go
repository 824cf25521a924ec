package reportfilter

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/meisterluk/shredtrees/internal/model"
	"github.com/meisterluk/shredtrees/internal/report"
)

func writeTree(t *testing.T, dir, rel, content string) {
	t.Helper()
	full := filepath.Join(dir, rel)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestExtractReadsSpannedLines(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, "left/a.c", "one\ntwo\nthree\nfour\n")

	rep := &report.Report{BaseDir: dir}
	clq := model.Clique{Locations: []model.Location{{FileID: "left/a.c", Start: 2, End: 3}}}

	text, err := Extract(rep, clq)
	if err != nil {
		t.Fatal(err)
	}
	if text != "two\nthree\n" {
		t.Errorf("Extract() = %q, want %q", text, "two\nthree\n")
	}
}

func TestExtractRestoresWorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, "a.c", "x\n")

	cwd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	rep := &report.Report{BaseDir: dir}
	clq := model.Clique{Locations: []model.Location{{FileID: "a.c", Start: 1, End: 1}}}
	if _, err := Extract(rep, clq); err != nil {
		t.Fatal(err)
	}

	after, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if after != cwd {
		t.Errorf("working directory not restored: got %q, want %q", after, cwd)
	}
}

func TestExtractMissingFile(t *testing.T) {
	dir := t.TempDir()
	rep := &report.Report{BaseDir: dir}
	clq := model.Clique{Locations: []model.Location{{FileID: "nope.c", Start: 1, End: 1}}}
	if _, err := Extract(rep, clq); err == nil {
		t.Error("expected Extract to fail for a missing file")
	}
}

func sampleReport() *report.Report {
	return &report.Report{
		Trees: []model.TreeProperty{{Name: "left"}, {Name: "right"}},
		Files: map[string]uint64{"left/a.c": 10, "right/b.c": 10},
		Cliques: []model.Clique{
			{Locations: []model.Location{{FileID: "left/a.c", Start: 1, End: 2}, {FileID: "right/b.c", Start: 1, End: 2}}},
			{Locations: []model.Location{{FileID: "left/a.c", Start: 5, End: 5}, {FileID: "right/b.c", Start: 5, End: 5}}},
		},
	}
}

func TestFilterBySize(t *testing.T) {
	rep := sampleReport()
	FilterBySize(rep, 2)
	if len(rep.Cliques) != 1 {
		t.Fatalf("FilterBySize(2) left %d cliques, want 1", len(rep.Cliques))
	}
}

func TestFilterByFilename(t *testing.T) {
	rep := sampleReport()
	FilterByFilename(rep, regexp.MustCompile(`^left/`))
	if len(rep.Cliques) != 2 {
		t.Fatalf("FilterByFilename(^left/) left %d cliques, want 2 (both cliques touch left/)", len(rep.Cliques))
	}

	rep2 := sampleReport()
	FilterByFilename(rep2, regexp.MustCompile(`^nonexistent/`))
	if len(rep2.Cliques) != 0 {
		t.Fatalf("FilterByFilename(nonexistent) left %d cliques, want 0", len(rep2.Cliques))
	}
}

func TestFilterBySignificance(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, "left/a.c", "#include <stdio.h>\ncompute_checksum(buffer);\n")
	writeTree(t, dir, "right/b.c", "#include <stdio.h>\ncompute_checksum(buffer);\n")

	rep := &report.Report{
		BaseDir: dir,
		Trees:   []model.TreeProperty{{Name: "left"}, {Name: "right"}},
		Files:   map[string]uint64{"left/a.c": 2, "right/b.c": 2},
		Cliques: []model.Clique{
			{Locations: []model.Location{{FileID: "left/a.c", Start: 1, End: 1}, {FileID: "right/b.c", Start: 1, End: 1}}},
			{Locations: []model.Location{{FileID: "left/a.c", Start: 2, End: 2}, {FileID: "right/b.c", Start: 2, End: 2}}},
		},
	}

	if err := FilterBySignificance(rep); err != nil {
		t.Fatal(err)
	}
	if len(rep.Cliques) != 1 {
		t.Fatalf("FilterBySignificance left %d cliques, want 1 (the #include-only clique should drop)", len(rep.Cliques))
	}
	if rep.Cliques[0].Locations[0].Start != 2 {
		t.Errorf("expected the surviving clique to be the compute_checksum one, got %+v", rep.Cliques[0])
	}
}

func TestPreenRecomputesMatchCounts(t *testing.T) {
	rep := sampleReport()
	Preen(rep)
	if rep.Trees[0].Matches != 2 || rep.Trees[1].Matches != 2 {
		t.Errorf("Preen() produced Matches %d/%d, want 2/2", rep.Trees[0].Matches, rep.Trees[1].Matches)
	}

	FilterBySize(rep, 2)
	if rep.Trees[0].Matches != 1 {
		t.Errorf("after FilterBySize, Trees[0].Matches = %d, want 1 (Preen must run after every filter)", rep.Trees[0].Matches)
	}
}
