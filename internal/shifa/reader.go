package shifa

import (
	"bufio"
	"encoding/binary"
	"encoding/hex"
	"io"
	"strconv"
	"strings"

	"github.com/meisterluk/shredtrees/internal/model"
	"github.com/meisterluk/shredtrees/internal/normalize"
	"github.com/meisterluk/shredtrees/internal/shred"
	"github.com/meisterluk/shredtrees/internal/shredtreeserr"
)

// Read parses a SHIF-A stream, returning its header and file blocks in
// the order they appear.
func Read(r io.Reader) (Header, []FileBlock, error) {
	br := bufio.NewReader(r)

	line, err := br.ReadString('\n')
	if err != nil {
		return Header{}, nil, shredtreeserr.New(shredtreeserr.MalformedInput, "empty stream")
	}
	if !strings.HasPrefix(strings.TrimRight(line, "\r\n"), "#SHIF-A ") {
		return Header{}, nil, shredtreeserr.New(shredtreeserr.MalformedInput, "missing SHIF-A magic line")
	}

	header, framing, err := readHeader(br)
	if err != nil {
		return Header{}, nil, err
	}

	if framing == "binary" {
		header.Binary = true
		files, err := readBinaryBody(br)
		return header, files, err
	}
	files, err := readTextBody(br)
	return header, files, err
}

func readHeader(br *bufio.Reader) (Header, string, error) {
	header := Header{}
	framing := "text"
	seen := map[string]bool{}

	for {
		line, err := br.ReadString('\n')
		if err != nil && err != io.EOF {
			return header, framing, err
		}
		trimmed := strings.TrimRight(line, "\r\n")
		if trimmed == "%%" {
			break
		}
		if err == io.EOF {
			return header, framing, shredtreeserr.New(shredtreeserr.MalformedInput, "unterminated header")
		}

		idx := strings.Index(trimmed, ":")
		if idx < 0 {
			return header, framing, shredtreeserr.New(shredtreeserr.MalformedInput, "malformed header line: "+trimmed)
		}
		key := strings.TrimSpace(trimmed[:idx])
		val := strings.TrimSpace(trimmed[idx+1:])
		seen[key] = true

		switch key {
		case "Normalization":
			set, err := normalize.ParseSet(strings.Split(val, ","))
			if err != nil {
				return header, framing, shredtreeserr.Wrap(shredtreeserr.MalformedInput, err)
			}
			header.Normalization = set
		case "Shred-Size":
			n, err := strconv.Atoi(val)
			if err != nil {
				return header, framing, shredtreeserr.Wrap(shredtreeserr.MalformedInput, err)
			}
			header.ShredSize = n
		case "Hash-Method":
			header.HashMethod = val
		case "Generator-Program":
			header.Generator = val
		case "Comment":
			header.Comments = append(header.Comments, val)
		case "Framing":
			framing = val
		}
	}

	for _, required := range []string{"Normalization", "Shred-Size", "Hash-Method", "Generator-Program"} {
		if !seen[required] {
			return header, framing, shredtreeserr.New(shredtreeserr.MalformedInput, "missing required header key "+required)
		}
	}
	return header, framing, nil
}

func readTextBody(br *bufio.Reader) ([]FileBlock, error) {
	var files []FileBlock

	for {
		pathLine, err := br.ReadString('\n')
		if err != nil && err != io.EOF {
			return nil, err
		}
		path := strings.TrimRight(pathLine, "\r\n")
		if path == "" {
			if err == io.EOF {
				break
			}
			continue
		}
		path = unescapePercent(path)

		lineCountLine, err := br.ReadString('\n')
		if err != nil && err != io.EOF {
			return nil, err
		}
		lineCount, lcErr := parseLinesHeader(strings.TrimRight(lineCountLine, "\r\n"))
		if lcErr != nil {
			return nil, lcErr
		}

		var shreds []shred.Shred
		for {
			recLine, rerr := br.ReadString('\n')
			if rerr != nil && rerr != io.EOF {
				return nil, rerr
			}
			trimmed := strings.TrimRight(recLine, "\r\n")
			if trimmed == "" {
				break
			}
			fields := strings.Fields(trimmed)
			if len(fields) != 3 {
				return nil, shredtreeserr.New(shredtreeserr.MalformedInput, "malformed shred record: "+trimmed)
			}
			start, serr := strconv.ParseUint(fields[0], 10, 32)
			end, eerr := strconv.ParseUint(fields[1], 10, 32)
			hashBytes, herr := hex.DecodeString(fields[2])
			if serr != nil || eerr != nil || herr != nil {
				return nil, shredtreeserr.New(shredtreeserr.MalformedInput, "malformed shred record: "+trimmed)
			}
			shreds = append(shreds, shred.Shred{
				Location: model.Location{FileID: path, Start: uint32(start), End: uint32(end)},
				Hash:     hashBytes,
			})
			if rerr == io.EOF {
				break
			}
		}

		files = append(files, FileBlock{FileID: path, LineCount: lineCount, Shreds: shreds})
		if err == io.EOF {
			break
		}
	}

	return files, nil
}

func parseLinesHeader(line string) (uint64, error) {
	const prefix = "Lines: "
	if !strings.HasPrefix(line, prefix) {
		return 0, shredtreeserr.New(shredtreeserr.MalformedInput, "expected Lines: header, got: "+line)
	}
	n, err := strconv.ParseUint(strings.TrimPrefix(line, prefix), 10, 64)
	if err != nil {
		return 0, shredtreeserr.Wrap(shredtreeserr.MalformedInput, err)
	}
	return n, nil
}

func readBinaryBody(br *bufio.Reader) ([]FileBlock, error) {
	var countBuf [4]byte
	if _, err := io.ReadFull(br, countBuf[:]); err != nil {
		return nil, shredtreeserr.Wrap(shredtreeserr.MalformedInput, err)
	}
	count := binary.BigEndian.Uint32(countBuf[:])

	files := make([]FileBlock, 0, count)
	for i := uint32(0); i < count; i++ {
		pathLine, err := br.ReadString('\n')
		if err != nil {
			return nil, shredtreeserr.Wrap(shredtreeserr.MalformedInput, err)
		}
		path := unescapePercent(strings.TrimRight(pathLine, "\r\n"))

		var lineCountBuf [4]byte
		if _, err := io.ReadFull(br, lineCountBuf[:]); err != nil {
			return nil, shredtreeserr.Wrap(shredtreeserr.MalformedInput, err)
		}
		lineCount := binary.BigEndian.Uint32(lineCountBuf[:])

		var recCountBuf [2]byte
		if _, err := io.ReadFull(br, recCountBuf[:]); err != nil {
			return nil, shredtreeserr.Wrap(shredtreeserr.MalformedInput, err)
		}
		recCount := binary.BigEndian.Uint16(recCountBuf[:])

		shreds := make([]shred.Shred, 0, recCount)
		for j := uint16(0); j < recCount; j++ {
			var rec [20]byte
			if _, err := io.ReadFull(br, rec[:]); err != nil {
				return nil, shredtreeserr.Wrap(shredtreeserr.MalformedInput, err)
			}
			start := binary.BigEndian.Uint16(rec[0:2])
			end := binary.BigEndian.Uint16(rec[2:4])
			hashBytes := append([]byte(nil), rec[4:20]...)
			shreds = append(shreds, shred.Shred{
				Location: model.Location{FileID: path, Start: uint32(start), End: uint32(end)},
				Hash:     hashBytes,
			})
		}

		files = append(files, FileBlock{FileID: path, LineCount: uint64(lineCount), Shreds: shreds})
	}

	return files, nil
}

func unescapePercent(s string) string {
	if strings.HasPrefix(s, "%%") {
		return s[1:]
	}
	return s
}
