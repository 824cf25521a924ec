package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/meisterluk/shredtrees/internal/cliutil"
	"github.com/meisterluk/shredtrees/internal/model"
	"github.com/meisterluk/shredtrees/internal/normalize"
	"github.com/meisterluk/shredtrees/internal/report"
)

func captureStdout(t *testing.T, fn func()) []byte {
	t.Helper()
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	orig := os.Stdout
	os.Stdout = w
	defer func() { os.Stdout = orig }()

	fn()

	w.Close()
	buf, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	return buf
}

func writeScfb(t *testing.T, path, dir string) {
	t.Helper()
	none, _ := normalize.ParseSet(nil)
	rep := &report.Report{
		Header: report.Header{HashMethod: "md5", Normalization: none, ShredSize: 2},
		Trees:  []model.TreeProperty{{Name: "left"}, {Name: "right"}},
		Files:  map[string]uint64{"left/a.c": 4, "right/b.c": 4},
		Cliques: []model.Clique{
			{Locations: []model.Location{{FileID: "left/a.c", Start: 1, End: 1}, {FileID: "right/b.c", Start: 1, End: 1}}},
			{Locations: []model.Location{{FileID: "left/a.c", Start: 3, End: 4}, {FileID: "right/b.c", Start: 3, End: 4}}},
		},
	}
	fd, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer fd.Close()
	if err := report.Write(fd, rep); err != nil {
		t.Fatal(err)
	}

	if err := os.MkdirAll(filepath.Join(dir, "left"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(dir, "right"), 0o755); err != nil {
		t.Fatal(err)
	}
	content := "a\nb\nc\nd\n"
	if err := os.WriteFile(filepath.Join(dir, "left", "a.c"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "right", "b.c"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestRunFiltersBySize(t *testing.T) {
	dir := t.TempDir()
	scfbPath := filepath.Join(dir, "in.scfb")
	writeScfb(t, scfbPath, dir)

	c := &ShredfilterCommand{Input: scfbPath, MinSize: 2, BaseDir: dir}
	log := &cliutil.PlainOutput{Device: &bytes.Buffer{}}

	var code int
	var runErr error
	stdout := captureStdout(t, func() {
		code, runErr = c.Run(&cliutil.PlainOutput{Device: os.Stdout}, log)
	})
	if runErr != nil {
		t.Fatal(runErr)
	}
	if code != 0 {
		t.Fatalf("Run() exit code = %d, want 0", code)
	}
	if !bytes.Contains(stdout, []byte("Matches: 1")) {
		t.Errorf("expected only the two-line clique to survive --min-size 2, stdout was %q", stdout)
	}
}

func TestRunExtract(t *testing.T) {
	dir := t.TempDir()
	scfbPath := filepath.Join(dir, "in.scfb")
	writeScfb(t, scfbPath, dir)

	c := &ShredfilterCommand{Input: scfbPath, BaseDir: dir, Extract: true}
	log := &cliutil.PlainOutput{Device: &bytes.Buffer{}}
	var outBuf bytes.Buffer
	w := &cliutil.PlainOutput{Device: &outBuf}

	code, err := c.Run(w, log)
	if err != nil {
		t.Fatal(err)
	}
	if code != 0 {
		t.Fatalf("Run() exit code = %d, want 0", code)
	}
	if !bytes.Contains(outBuf.Bytes(), []byte("a\n")) {
		t.Errorf("expected extracted text to contain the first clique's line, got %q", outBuf.String())
	}
}

func TestRunRejectsMissingInput(t *testing.T) {
	c := &ShredfilterCommand{Input: "/nonexistent/in.scfb"}
	_, err := c.Run(&cliutil.PlainOutput{Device: &bytes.Buffer{}}, &cliutil.PlainOutput{Device: &bytes.Buffer{}})
	if err == nil {
		t.Error("expected Run to fail for a missing input file")
	}
}
