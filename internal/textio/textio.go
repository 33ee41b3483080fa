// Package textio implements the intermediate hash file format: one
// "<fingerprint>\t<path>" line per image. The fingerprint field itself is the
// delimiter-separated decimal word list produced by phash.PHash.Encode and
// parsed by phash.Decode (the same text stored in the SQLite hashes.hash
// column).
package textio

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/imagedupe/phashcluster/pkg/errs"
	"github.com/imagedupe/phashcluster/pkg/phash"
)

// HashLine is one line of an intermediate hash file: a fingerprint paired
// with the path of the image it was computed from.
type HashLine struct {
	Fingerprint phash.PHash
	Path        string
}

// ReadLines parses an intermediate hash file of "<fingerprint>\t<path>"
// lines from r. A malformed line is a fatal ParseError: the store is
// expected to be internally consistent.
func ReadLines(r io.Reader) ([]HashLine, error) {
	var lines []HashLine

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		text := scanner.Text()
		if text == "" {
			continue
		}

		parts := strings.SplitN(text, "\t", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("line %d: %w", lineNo, errs.ErrParseLine)
		}

		fp, err := phash.Decode(parts[0])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}

		lines = append(lines, HashLine{Fingerprint: fp, Path: parts[1]})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading hash file: %w", err)
	}

	return lines, nil
}

// WriteLine writes one "<fingerprint>\t<path>\n" line to w. It does not
// flush; when w is buffered, flushing is left to the caller.
func WriteLine(w io.Writer, fp phash.PHash, path string) error {
	_, err := fmt.Fprintf(w, "%s\t%s\n", fp.Encode(), path)
	return err
}
