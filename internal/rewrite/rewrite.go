// Package rewrite applies positional text edits to source files and writes
// the results to disk.
package rewrite

import (
	"cmp"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/versed/versed/internal/ast"
)

// Edit is an insertion (Start == End, Text set) or a deletion of
// src[Start:End] against the original text. A deletion may absorb the
// spaces and tabs next to it.
type Edit struct {
	Start     int
	End       int
	Text      string
	TrimLeft  bool
	TrimRight bool
}

// Insert returns an edit inserting text at pos.
func Insert(pos int, text string) Edit {
	return Edit{Start: pos, End: pos, Text: text}
}

// Delete returns an edit removing span, widened over horizontal
// whitespace on the requested sides.
func Delete(span ast.Span, trimLeft, trimRight bool) Edit {
	return Edit{Start: span.Start, End: span.End, TrimLeft: trimLeft, TrimRight: trimRight}
}

// IsInsertion reports whether e inserts text.
func (e Edit) IsInsertion() bool { return e.Start == e.End }

func isBlank(b byte) bool { return b == ' ' || b == '\t' }

// expand returns the byte range e removes from src.
func (e Edit) expand(src string) (start, end int) {
	start, end = e.Start, e.End
	if e.TrimLeft {
		for start > 0 && isBlank(src[start-1]) {
			start--
		}
	}
	if e.TrimRight {
		for end < len(src) && isBlank(src[end]) {
			end++
		}
	}
	return start, end
}

// Apply applies edits to src in one left-to-right scan. All offsets refer
// to src as given, so edits never shift one another. Insertions at the
// same offset keep their relative order; an insertion that falls inside a
// deleted range is dropped along with the range.
func Apply(src string, edits []Edit) string {
	sorted := slices.Clone(edits)
	slices.SortStableFunc(sorted, func(a, b Edit) int {
		return cmp.Compare(a.Start, b.Start)
	})

	var sb strings.Builder
	sb.Grow(len(src))
	pos := 0
	for _, e := range sorted {
		if e.IsInsertion() {
			if e.Start < pos {
				continue
			}
			sb.WriteString(src[pos:e.Start])
			sb.WriteString(e.Text)
			pos = e.Start
			continue
		}
		start, end := e.expand(src)
		if start > pos {
			sb.WriteString(src[pos:start])
		}
		pos = max(pos, end)
	}
	sb.WriteString(src[pos:])
	return sb.String()
}

// WriteFile writes content to path atomically, creating parent
// directories as needed.
func WriteFile(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(content), 0644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
