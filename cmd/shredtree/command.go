package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/meisterluk/shredtrees/internal/cliutil"
	"github.com/meisterluk/shredtrees/internal/digest"
	"github.com/meisterluk/shredtrees/internal/fswalk"
	"github.com/meisterluk/shredtrees/internal/normalize"
	"github.com/meisterluk/shredtrees/internal/shifa"
	"github.com/meisterluk/shredtrees/internal/shred"
)

// ShredtreeCommand defines the shredtree CLI command's resolved
// parameters, mirroring the flag-struct-plus-Run shape every dupfiles
// subcommand used.
type ShredtreeCommand struct {
	Tree          string `json:"tree"`
	TreeName      string `json:"tree-name"`
	ChdirDir      string `json:"chdir"`
	ShredSize     int    `json:"shred-size"`
	Whitespace    bool   `json:"whitespace"`
	ContentOnly   bool   `json:"content-only"`
	Binary        bool   `json:"binary"`
	Debug         bool   `json:"debug"`
	HashMethod    string `json:"hash-method"`
	Workers       int    `json:"workers"`
	ConfigOutput  bool   `json:"config"`
	JSONOutput    bool   `json:"json"`
}

// resultJSON is the JSON shape printed on success with --json.
type resultJSON struct {
	Message string `json:"message"`
}

// Run executes the shredtree command, writing SHIF-A to w and milestone
// diagnostics to log. It returns the process exit code and any error.
func (c *ShredtreeCommand) Run(w cliutil.Output, log cliutil.Output) (int, error) {
	if c.ConfigOutput {
		b, err := json.Marshal(c)
		if err != nil {
			return 1, fmt.Errorf("could not serialize config JSON: %s", err)
		}
		w.Println(string(b))
		return 0, nil
	}

	if c.ChdirDir != "" {
		cwd, err := os.Getwd()
		if err != nil {
			return 1, err
		}
		if err := os.Chdir(c.ChdirDir); err != nil {
			return 1, err
		}
		defer os.Chdir(cwd)
	}

	normSet, err := normalize.ParseSet(normalizationFlags(c.Whitespace))
	if err != nil {
		return 2, err
	}

	algo, err := digest.FromName(c.HashMethod)
	if err != nil {
		return 2, err
	}

	absTree, err := filepath.Abs(c.Tree)
	if err != nil {
		return 1, err
	}

	ctx := context.Background()
	log.Printfln("walking tree %q", absTree)
	refs, err := fswalk.Walk(ctx, absTree, c.TreeName, c.ContentOnly)
	if err != nil {
		return 1, err
	}
	if c.Debug {
		log.Printfln("debug: normalization=%s hash-method=%s shred-size=%d workers=%d", normSet, algo.Name(), c.ShredSize, c.Workers)
		for _, ref := range refs {
			log.Printfln("debug: eligible file %s -> %s", ref.FileID, ref.AbsPath)
		}
	}

	log.Printfln("shredding %d eligible files", len(refs))
	results, err := shred.Tree(ctx, refs, shred.Options{
		Size:          c.ShredSize,
		Normalization: normSet,
		Algorithm:     algo,
		Workers:       c.Workers,
	})
	if err != nil {
		return 1, err
	}

	files := make([]shifa.FileBlock, len(results))
	for i, res := range results {
		files[i] = shifa.FileBlock{FileID: res.FileID, LineCount: res.LineCount, Shreds: res.Shreds}
		if c.Debug {
			log.Printfln("debug: file %s lines=%d shreds=%d", res.FileID, res.LineCount, len(res.Shreds))
		}
	}

	header := shifa.Header{
		Normalization: normSet,
		ShredSize:     c.ShredSize,
		HashMethod:    algo.Name(),
		Generator:     "shredtree",
		Binary:        c.Binary,
	}
	if err := shifa.Write(os.Stdout, header, files); err != nil {
		return 1, err
	}

	if c.JSONOutput {
		msg := fmt.Sprintf("wrote %d file blocks for tree %q", len(files), c.TreeName)
		b, err := json.Marshal(resultJSON{Message: msg})
		if err != nil {
			return 1, err
		}
		log.Println(string(b))
	}

	return 0, nil
}

func normalizationFlags(whitespace bool) []string {
	if whitespace {
		return []string{string(normalize.RemoveWhitespace)}
	}
	return []string{string(normalize.None)}
}

func countCPUs() int {
	return runtime.NumCPU()
}

func defaultTreeName(path string) string {
	name := filepath.Base(filepath.Clean(path))
	name = strings.Trim(name, "/\\")
	if name == "" || name == "." {
		return "tree"
	}
	return name
}
