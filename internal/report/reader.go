package report

import (
	"bufio"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/meisterluk/shredtrees/internal/model"
	"github.com/meisterluk/shredtrees/internal/normalize"
	"github.com/meisterluk/shredtrees/internal/shredtreeserr"
)

var cliqueLineRegex = regexp.MustCompile(`^(.*):([0-9]+):([0-9]+):([0-9]+)$`)

// Read parses an SCF-B stream into a Report rooted at baseDir (used only
// for later text extraction; Read itself never touches the filesystem).
func Read(r io.Reader, baseDir string) (*Report, error) {
	br := bufio.NewReader(r)

	magicLine, err := br.ReadString('\n')
	if err != nil {
		return nil, shredtreeserr.New(shredtreeserr.MalformedInput, "empty stream")
	}
	if !strings.HasPrefix(strings.TrimRight(magicLine, "\r\n"), "#SCF-B ") {
		return nil, shredtreeserr.New(shredtreeserr.MalformedInput, "missing SCF-B magic line")
	}

	rep := &Report{BaseDir: baseDir, Files: map[string]uint64{}}

	declaredMatches, err := readHeader(br, rep)
	if err != nil {
		return nil, err
	}
	if err := readTreeProperties(br, rep); err != nil {
		return nil, err
	}
	if err := readCliqueBlocks(br, rep); err != nil {
		return nil, err
	}

	if declaredMatches != nil && *declaredMatches != len(rep.Cliques) {
		return nil, shredtreeserr.Newf(shredtreeserr.MatchesMismatch,
			"header declares %d matches, found %d clique blocks", *declaredMatches, len(rep.Cliques))
	}

	return rep, nil
}

func readHeader(br *bufio.Reader, rep *Report) (*int, error) {
	seen := map[string]bool{}
	var declaredMatches *int

	for {
		line, err := br.ReadString('\n')
		if err != nil && err != io.EOF {
			return nil, err
		}
		trimmed := strings.TrimRight(line, "\r\n")
		if trimmed == "%%" {
			break
		}
		if err == io.EOF {
			return nil, shredtreeserr.New(shredtreeserr.MalformedInput, "unterminated header")
		}

		idx := strings.Index(trimmed, ":")
		if idx < 0 {
			return nil, shredtreeserr.New(shredtreeserr.MalformedInput, "malformed header line: "+trimmed)
		}
		key := strings.TrimSpace(trimmed[:idx])
		val := strings.TrimSpace(trimmed[idx+1:])
		seen[key] = true

		switch key {
		case "Hash-Method":
			rep.Header.HashMethod = val
		case "Normalization":
			set, err := normalize.ParseSet(strings.Split(val, ","))
			if err != nil {
				return nil, shredtreeserr.Wrap(shredtreeserr.MalformedInput, err)
			}
			rep.Header.Normalization = set
		case "Shred-Size":
			n, err := strconv.Atoi(val)
			if err != nil {
				return nil, shredtreeserr.Wrap(shredtreeserr.MalformedInput, err)
			}
			rep.Header.ShredSize = n
		case "Matches":
			n, err := strconv.Atoi(val)
			if err != nil {
				return nil, shredtreeserr.Wrap(shredtreeserr.MalformedInput, err)
			}
			declaredMatches = &n
		case "Merge-Program":
			rep.Header.MergeProgram = val
		case "Filter-Program":
			rep.Header.FilterProgram = val
		case "Filtering":
			rep.Header.Filtering = val
		}
	}

	for _, required := range []string{"Hash-Method", "Normalization", "Shred-Size", "Matches"} {
		if !seen[required] {
			return nil, shredtreeserr.New(shredtreeserr.MalformedInput, "missing required header key "+required)
		}
	}
	return declaredMatches, nil
}

func readTreeProperties(br *bufio.Reader, rep *Report) error {
	for {
		line, err := br.ReadString('\n')
		if err != nil && err != io.EOF {
			return err
		}
		trimmed := strings.TrimRight(line, "\r\n")
		if trimmed == "%%" {
			return nil
		}
		if trimmed != "" {
			tp, err := parseTreeLine(unescapePercent(trimmed))
			if err != nil {
				return err
			}
			rep.Trees = append(rep.Trees, tp)
		}
		if err == io.EOF {
			return nil
		}
	}
}

func parseTreeLine(line string) (model.TreeProperty, error) {
	idx := strings.Index(line, ":")
	if idx < 0 {
		return model.TreeProperty{}, shredtreeserr.New(shredtreeserr.MalformedInput, "malformed tree property line: "+line)
	}
	tp := model.TreeProperty{Name: line[:idx]}
	rest := strings.TrimSpace(line[idx+1:])

	for _, kv := range strings.Split(rest, ",") {
		kv = strings.TrimSpace(kv)
		if kv == "" {
			continue
		}
		parts := strings.SplitN(kv, "=", 2)
		if len(parts) != 2 {
			return model.TreeProperty{}, shredtreeserr.New(shredtreeserr.MalformedInput, "malformed tree property pair: "+kv)
		}
		val, err := strconv.ParseUint(parts[1], 10, 64)
		if err != nil {
			return model.TreeProperty{}, shredtreeserr.Wrap(shredtreeserr.MalformedInput, err)
		}
		switch parts[0] {
		case "files":
			tp.Files = val
		case "lines":
			tp.Lines = val
		case "matches":
			tp.Matches = val
		case "matchlines":
			tp.MatchLines = val
		}
	}
	return tp, nil
}

func readCliqueBlocks(br *bufio.Reader, rep *Report) error {
	var current []model.Location

	for {
		line, err := br.ReadString('\n')
		if err != nil && err != io.EOF {
			return err
		}
		trimmed := strings.TrimRight(line, "\r\n")

		switch {
		case trimmed == "%%":
			rep.Cliques = append(rep.Cliques, model.Clique{Locations: current})
			current = nil
		case trimmed == "":
			// tolerate a trailing blank line before EOF
		default:
			m := cliqueLineRegex.FindStringSubmatch(unescapePercent(trimmed))
			if m == nil {
				return shredtreeserr.New(shredtreeserr.MalformedInput, "malformed clique record: "+trimmed)
			}
			start, serr := strconv.ParseUint(m[2], 10, 32)
			end, eerr := strconv.ParseUint(m[3], 10, 32)
			lineCount, lerr := strconv.ParseUint(m[4], 10, 64)
			if serr != nil || eerr != nil || lerr != nil {
				return shredtreeserr.New(shredtreeserr.MalformedInput, "malformed clique record: "+trimmed)
			}
			fileID := m[1]
			current = append(current, model.Location{FileID: fileID, Start: uint32(start), End: uint32(end)})
			rep.Files[fileID] = lineCount
		}

		if err == io.EOF {
			if current != nil {
				return shredtreeserr.New(shredtreeserr.MalformedInput, "clique block missing its %% terminator")
			}
			return nil
		}
	}
}

func unescapePercent(s string) string {
	if strings.HasPrefix(s, "%%") {
		return s[1:]
	}
	return s
}
