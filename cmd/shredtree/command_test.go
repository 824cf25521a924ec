package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/meisterluk/shredtrees/internal/cliutil"
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

func writeSource(t *testing.T, dir, rel, content string) {
	t.Helper()
	full := filepath.Join(dir, rel)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestRunWritesSHIFA(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "a.c", "int x;\nint y;\nint z;\n")

	var out, errOut bytes.Buffer
	w := &cliutil.PlainOutput{Device: &out}
	log := &cliutil.PlainOutput{Device: &errOut}

	c := &ShredtreeCommand{
		Tree:       dir,
		TreeName:   "left",
		ShredSize:  2,
		HashMethod: "md5",
		Workers:    countCPUs(),
	}

	var code int
	var runErr error
	stdout := captureStdout(t, func() {
		code, runErr = c.Run(w, log)
	})
	if runErr != nil {
		t.Fatal(runErr)
	}
	if code != 0 {
		t.Fatalf("Run() exit code = %d, want 0", code)
	}
	if !bytes.Contains(stdout, []byte("#SHIF-A")) {
		t.Error("expected output to contain the SHIF-A magic line")
	}
	if !bytes.Contains(stdout, []byte("left/a.c")) {
		t.Error("expected output to mention left/a.c")
	}
}

func TestRunConfigOutput(t *testing.T) {
	var out, errOut bytes.Buffer
	w := &cliutil.PlainOutput{Device: &out}
	log := &cliutil.PlainOutput{Device: &errOut}

	c := &ShredtreeCommand{ConfigOutput: true, Tree: ".", HashMethod: "md5"}
	code, err := c.Run(w, log)
	if err != nil {
		t.Fatal(err)
	}
	if code != 0 {
		t.Fatalf("Run() exit code = %d, want 0", code)
	}
	if !bytes.Contains(out.Bytes(), []byte(`"tree"`)) {
		t.Error("expected --config output to be the JSON-serialized command struct")
	}
}

func TestRunRejectsUnknownHashMethod(t *testing.T) {
	var out, errOut bytes.Buffer
	w := &cliutil.PlainOutput{Device: &out}
	log := &cliutil.PlainOutput{Device: &errOut}

	c := &ShredtreeCommand{Tree: ".", TreeName: "t", HashMethod: "bogus", ShredSize: 1, Workers: runtime.NumCPU()}
	if _, err := c.Run(w, log); err == nil {
		t.Error("expected Run to reject an unknown hash method")
	}
}

func TestDefaultTreeName(t *testing.T) {
	tests := map[string]string{
		"/a/b/c": "c",
		"/":      "tree",
		".":      "tree",
	}
	for in, want := range tests {
		if got := defaultTreeName(in); got != want {
			t.Errorf("defaultTreeName(%q) = %q, want %q", in, got, want)
		}
	}
}
