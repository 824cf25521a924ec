package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/meisterluk/shredtrees/internal/clique"
	"github.com/meisterluk/shredtrees/internal/cliutil"
	"github.com/meisterluk/shredtrees/internal/coalesce"
	"github.com/meisterluk/shredtrees/internal/model"
	"github.com/meisterluk/shredtrees/internal/report"
	"github.com/meisterluk/shredtrees/internal/reportfilter"
	"github.com/meisterluk/shredtrees/internal/shifa"
)

// ShredcompareCommand defines the shredcompare CLI command's resolved
// parameters.
type ShredcompareCommand struct {
	Files         []string `json:"files"`
	CrossTreeOnly bool     `json:"cross-tree-only"`
	DiskIndex     bool     `json:"disk-index"`
	IndexPath     string   `json:"index-path"`
	BaseDir       string   `json:"basedir"`
	ConfigOutput  bool     `json:"config"`
	JSONOutput    bool     `json:"json"`
}

// Run executes the shredcompare command: it reads every SHIF-A file,
// verifies they describe compatible shredding runs, builds cliques,
// coalesces them, and writes the resulting SCF-B report to stdout.
func (c *ShredcompareCommand) Run(w cliutil.Output, log cliutil.Output) (int, error) {
	if c.ConfigOutput {
		b, err := json.Marshal(c)
		if err != nil {
			return 1, fmt.Errorf("could not serialize config JSON: %s", err)
		}
		w.Println(string(b))
		return 0, nil
	}

	if len(c.Files) < 2 {
		return 2, fmt.Errorf("expected at least two SHIF-A files to compare, got %d", len(c.Files))
	}

	var headers []shifa.Header
	var streams [][]shifa.FileBlock
	lineCounts := map[string]uint64{}
	trees := []model.TreeProperty{}

	for _, path := range c.Files {
		fd, err := os.Open(path)
		if err != nil {
			return 6, err
		}
		header, files, err := shifa.Read(fd)
		fd.Close()
		if err != nil {
			return 3, err
		}

		headers = append(headers, header)
		streams = append(streams, files)

		var treeName string
		var totalLines uint64
		for _, fb := range files {
			lineCounts[fb.FileID] = fb.LineCount
			totalLines += fb.LineCount
			if treeName == "" {
				treeName = firstPathSegment(fb.FileID)
			}
		}
		trees = append(trees, model.TreeProperty{Name: treeName, Files: uint64(len(files)), Lines: totalLines})
	}

	if err := clique.CheckCompatible(headers); err != nil {
		return 4, err
	}

	ctx := context.Background()
	log.Printfln("building cliques across %d inputs", len(streams))
	cliques, err := clique.Build(ctx, streams, clique.Options{
		CrossTreeOnly: c.CrossTreeOnly,
		DiskIndex:     c.DiskIndex,
		IndexPath:     c.IndexPath,
	})
	if err != nil {
		return 1, err
	}

	log.Printfln("coalescing %d cliques", len(cliques))
	cliques, err = coalesce.Coalesce(ctx, cliques)
	if err != nil {
		return 1, err
	}

	rep := &report.Report{
		Header: report.Header{
			HashMethod:    headers[0].HashMethod,
			Normalization: headers[0].Normalization,
			ShredSize:     headers[0].ShredSize,
		},
		Trees:   trees,
		Files:   lineCounts,
		Cliques: cliques,
		BaseDir: c.BaseDir,
	}
	reportfilter.Preen(rep)

	if err := report.Write(os.Stdout, rep); err != nil {
		return 1, err
	}

	return 0, nil
}

func firstPathSegment(fileID string) string {
	for i, r := range fileID {
		if r == '/' {
			return fileID[:i]
		}
	}
	return fileID
}
