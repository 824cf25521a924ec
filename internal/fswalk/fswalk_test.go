package fswalk

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestWalkDeterministicOrderAndPrefix(t *testing.T) {
	root := t.TempDir()
	write(t, filepath.Join(root, "b.c"), "int x;\n")
	write(t, filepath.Join(root, "a.c"), "int y;\n")
	if err := os.Mkdir(filepath.Join(root, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}
	write(t, filepath.Join(root, "sub", "c.h"), "void f();\n")

	refs, err := Walk(context.Background(), root, "left", false)
	if err != nil {
		t.Fatal(err)
	}
	if len(refs) != 3 {
		t.Fatalf("Walk() returned %d refs, want 3", len(refs))
	}
	want := []string{"left/a.c", "left/b.c", "left/sub/c.h"}
	for i, w := range want {
		if refs[i].FileID != w {
			t.Errorf("refs[%d].FileID = %q, want %q", i, refs[i].FileID, w)
		}
	}
}

func TestWalkSkipsEmptyFiles(t *testing.T) {
	root := t.TempDir()
	write(t, filepath.Join(root, "empty.c"), "")
	write(t, filepath.Join(root, "full.c"), "x\n")

	refs, err := Walk(context.Background(), root, "t", false)
	if err != nil {
		t.Fatal(err)
	}
	if len(refs) != 1 || refs[0].FileID != "t/full.c" {
		t.Errorf("expected only t/full.c, got %v", refs)
	}
}

func TestWalkCOnlyFiltersExtensions(t *testing.T) {
	root := t.TempDir()
	write(t, filepath.Join(root, "a.c"), "x\n")
	write(t, filepath.Join(root, "a.go"), "x\n")

	refs, err := Walk(context.Background(), root, "t", true)
	if err != nil {
		t.Fatal(err)
	}
	if len(refs) != 1 || refs[0].FileID != "t/a.c" {
		t.Errorf("expected only t/a.c under cOnly, got %v", refs)
	}
}

func TestWalkContextCancellation(t *testing.T) {
	root := t.TempDir()
	write(t, filepath.Join(root, "a.c"), "x\n")

	ctx, cancel := context.Background(), func() {}
	_ = cancel
	cctx, cancelNow := context.WithCancel(ctx)
	cancelNow()

	if _, err := Walk(cctx, root, "t", false); err == nil {
		t.Error("expected Walk to report an error for an already-cancelled context")
	}
}

func write(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}
