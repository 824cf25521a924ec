package main

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"

	"github.com/meisterluk/shredtrees/internal/cliutil"
	"github.com/meisterluk/shredtrees/internal/report"
	"github.com/meisterluk/shredtrees/internal/reportfilter"
)

// ShredfilterCommand defines the shredfilter CLI command's resolved
// parameters. Filters that were set are applied in a fixed order: minimum
// size, then filename pattern, then significance.
type ShredfilterCommand struct {
	Input           string `json:"input"`
	MinSize         uint32 `json:"min-size"`
	FilenameRegex   string `json:"filename-regex"`
	SignificantOnly bool   `json:"significant-only"`
	BaseDir         string `json:"basedir"`
	Extract         bool   `json:"extract"`
	ConfigOutput    bool   `json:"config"`
	JSONOutput      bool   `json:"json"`
}

// Run executes the shredfilter command: it reads an SCF-B report,
// applies the requested filters and preens, then writes the result back
// out, or with --extract dumps the text of every surviving clique's first
// witness location instead.
func (c *ShredfilterCommand) Run(w cliutil.Output, log cliutil.Output) (int, error) {
	if c.ConfigOutput {
		b, err := json.Marshal(c)
		if err != nil {
			return 1, fmt.Errorf("could not serialize config JSON: %s", err)
		}
		w.Println(string(b))
		return 0, nil
	}

	fd, err := os.Open(c.Input)
	if err != nil {
		return 6, err
	}
	defer fd.Close()

	rep, err := report.Read(fd, c.BaseDir)
	if err != nil {
		return 3, err
	}

	before := len(rep.Cliques)

	if c.MinSize > 0 {
		reportfilter.FilterBySize(rep, c.MinSize)
	}
	if c.FilenameRegex != "" {
		pattern, err := regexp.Compile(c.FilenameRegex)
		if err != nil {
			return 2, err
		}
		reportfilter.FilterByFilename(rep, pattern)
	}
	if c.SignificantOnly {
		if err := reportfilter.FilterBySignificance(rep); err != nil {
			return 6, err
		}
	}

	log.Printfln("kept %d of %d cliques", len(rep.Cliques), before)

	if c.Extract {
		for _, clq := range rep.Cliques {
			text, err := reportfilter.Extract(rep, clq)
			if err != nil {
				return 6, err
			}
			w.Print(text)
		}
		return 0, nil
	}

	if err := report.Write(os.Stdout, rep); err != nil {
		return 1, err
	}
	return 0, nil
}
