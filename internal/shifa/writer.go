package shifa

import (
	"bufio"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"github.com/meisterluk/shredtrees/internal/shredtreeserr"
)

// magic is the SHIF-A format's first header line. The version number
// bumps only if the framing grammar itself changes.
const magic = "#SHIF-A 1.0"

// Write serializes header and files to w, in text framing unless
// header.Binary is set. Binary framing requires every shred's hash to be
// exactly 16 bytes wide (MD5); any other width returns an Incompatible
// error rather than silently truncating or padding it.
func Write(w io.Writer, header Header, files []FileBlock) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "%s\n", magic)
	fmt.Fprintf(bw, "Normalization: %s\n", header.Normalization.String())
	fmt.Fprintf(bw, "Shred-Size: %d\n", header.ShredSize)
	fmt.Fprintf(bw, "Hash-Method: %s\n", header.HashMethod)
	fmt.Fprintf(bw, "Generator-Program: %s\n", header.Generator)
	for _, c := range header.Comments {
		fmt.Fprintf(bw, "Comment: %s\n", c)
	}
	if header.Binary {
		fmt.Fprintf(bw, "Framing: binary\n")
	}
	fmt.Fprint(bw, "%%\n")

	if header.Binary {
		if err := writeBinaryBody(bw, files); err != nil {
			return err
		}
	} else {
		writeTextBody(bw, files)
	}

	return bw.Flush()
}

func writeTextBody(bw *bufio.Writer, files []FileBlock) {
	for _, fb := range files {
		fmt.Fprintf(bw, "%s\n", escapePercent(fb.FileID))
		fmt.Fprintf(bw, "Lines: %d\n", fb.LineCount)
		for _, s := range fb.Shreds {
			fmt.Fprintf(bw, "%d %d %s\n", s.Start, s.End, hex.EncodeToString(s.Hash))
		}
		fmt.Fprintf(bw, "\n")
	}
}

func writeBinaryBody(bw *bufio.Writer, files []FileBlock) error {
	var countBuf [4]byte
	binary.BigEndian.PutUint32(countBuf[:], uint32(len(files)))
	if _, err := bw.Write(countBuf[:]); err != nil {
		return err
	}

	for _, fb := range files {
		fmt.Fprintf(bw, "%s\n", escapePercent(fb.FileID))

		var lineCountBuf [4]byte
		binary.BigEndian.PutUint32(lineCountBuf[:], uint32(fb.LineCount))
		if _, err := bw.Write(lineCountBuf[:]); err != nil {
			return err
		}

		var recCountBuf [2]byte
		binary.BigEndian.PutUint16(recCountBuf[:], uint16(len(fb.Shreds)))
		if _, err := bw.Write(recCountBuf[:]); err != nil {
			return err
		}

		for _, s := range fb.Shreds {
			if len(s.Hash) != 16 {
				return shredtreeserr.Newf(shredtreeserr.Incompatible,
					"binary framing requires 16-byte hashes, got %d", len(s.Hash))
			}
			var rec [20]byte
			binary.BigEndian.PutUint16(rec[0:2], uint16(s.Start))
			binary.BigEndian.PutUint16(rec[2:4], uint16(s.End))
			copy(rec[4:20], s.Hash)
			if _, err := bw.Write(rec[:]); err != nil {
				return err
			}
		}
	}
	return nil
}

func escapePercent(s string) string {
	if strings.HasPrefix(s, "%") {
		return "%" + s
	}
	return s
}
