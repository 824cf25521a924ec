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
	"github.com/meisterluk/shredtrees/internal/shifa"
	"github.com/meisterluk/shredtrees/internal/shred"
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

func writeSHIFA(t *testing.T, path, treePrefix string, hash []byte) {
	t.Helper()
	none, _ := normalize.ParseSet(nil)
	header := shifa.Header{Normalization: none, ShredSize: 2, HashMethod: "md5", Generator: "test"}
	files := []shifa.FileBlock{
		{
			FileID:    treePrefix + "/a.c",
			LineCount: 4,
			Shreds: []shred.Shred{
				{Location: model.Location{FileID: treePrefix + "/a.c", Start: 1, End: 2}, Hash: hash},
			},
		},
	}
	fd, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer fd.Close()
	if err := shifa.Write(fd, header, files); err != nil {
		t.Fatal(err)
	}
}

func TestRunProducesSCFBForMatchingShreds(t *testing.T) {
	dir := t.TempDir()
	leftPath := filepath.Join(dir, "left.shifa")
	rightPath := filepath.Join(dir, "right.shifa")
	sharedHash := bytes.Repeat([]byte{0x42}, 16)
	writeSHIFA(t, leftPath, "left", sharedHash)
	writeSHIFA(t, rightPath, "right", sharedHash)

	c := &ShredcompareCommand{Files: []string{leftPath, rightPath}, CrossTreeOnly: true, BaseDir: "."}
	var log cliutil.Output = &cliutil.PlainOutput{Device: &bytes.Buffer{}}

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
	if !bytes.Contains(stdout, []byte("#SCF-B")) {
		t.Error("expected output to contain the SCF-B magic line")
	}
	if !bytes.Contains(stdout, []byte("Matches: 1")) {
		t.Errorf("expected exactly one clique, stdout was %q", stdout)
	}
}

func TestRunRejectsTooFewFiles(t *testing.T) {
	c := &ShredcompareCommand{Files: []string{"only-one.shifa"}}
	_, err := c.Run(&cliutil.PlainOutput{Device: &bytes.Buffer{}}, &cliutil.PlainOutput{Device: &bytes.Buffer{}})
	if err == nil {
		t.Error("expected Run to reject fewer than two input files")
	}
}

func TestRunRejectsIncompatibleInputs(t *testing.T) {
	dir := t.TempDir()
	leftPath := filepath.Join(dir, "left.shifa")
	rightPath := filepath.Join(dir, "right.shifa")
	writeSHIFA(t, leftPath, "left", bytes.Repeat([]byte{0x1}, 16))

	none, _ := normalize.ParseSet(nil)
	header := shifa.Header{Normalization: none, ShredSize: 99, HashMethod: "md5"}
	fd, err := os.Create(rightPath)
	if err != nil {
		t.Fatal(err)
	}
	if err := shifa.Write(fd, header, nil); err != nil {
		t.Fatal(err)
	}
	fd.Close()

	c := &ShredcompareCommand{Files: []string{leftPath, rightPath}}
	_, err = c.Run(&cliutil.PlainOutput{Device: &bytes.Buffer{}}, &cliutil.PlainOutput{Device: &bytes.Buffer{}})
	if err == nil {
		t.Error("expected Run to reject SHIF-A inputs with mismatched shred sizes")
	}
}

func TestFirstPathSegment(t *testing.T) {
	if got := firstPathSegment("left/src/a.c"); got != "left" {
		t.Errorf("firstPathSegment() = %q, want left", got)
	}
	if got := firstPathSegment("noslash"); got != "noslash" {
		t.Errorf("firstPathSegment() = %q, want noslash", got)
	}
}
