// Package codegen holds what the target printers share: an indenting
// source emitter, the Target interface and the writing of generated files.
package codegen

import (
	"fmt"
	"strings"
)

// Emitter builds source code with proper indentation.
type Emitter struct {
	buf    strings.Builder
	unit   string
	indent int
}

// NewEmitter creates an emitter indenting by unit ("  ", "    " or "\t").
func NewEmitter(unit string) *Emitter {
	return &Emitter{unit: unit}
}

func (e *Emitter) writeIndent() {
	for i := 0; i < e.indent; i++ {
		e.buf.WriteString(e.unit)
	}
}

// Line writes a line of code at the current indentation level. Embedded
// newlines start new lines at the same level.
func (e *Emitter) Line(format string, args ...any) {
	line := fmt.Sprintf(format, args...)
	for _, l := range strings.Split(line, "\n") {
		if l != "" {
			e.writeIndent()
			e.buf.WriteString(l)
		}
		e.buf.WriteByte('\n')
	}
}

// Raw writes a raw string without indentation or newline.
func (e *Emitter) Raw(s string) {
	e.buf.WriteString(s)
}

// Blank writes an empty line.
func (e *Emitter) Blank() {
	e.buf.WriteByte('\n')
}

// Block opens a block (appends " {" to the line and increases indent).
func (e *Emitter) Block(format string, args ...any) {
	e.Line(format+" {", args...)
	e.indent++
}

// EndBlock closes a block (decreases indent and writes "}").
func (e *Emitter) EndBlock() {
	e.EndBlockSuffix("")
}

// EndBlockSuffix closes a block with a suffix (e.g., "} else {" or "};").
func (e *Emitter) EndBlockSuffix(suffix string) {
	e.Dedent()
	e.writeIndent()
	e.buf.WriteString("}")
	e.buf.WriteString(suffix)
	e.buf.WriteByte('\n')
}

// Indent increases the indentation level.
func (e *Emitter) Indent() {
	e.indent++
}

// Dedent decreases the indentation level.
func (e *Emitter) Dedent() {
	if e.indent > 0 {
		e.indent--
	}
}

// String returns the accumulated source code.
func (e *Emitter) String() string {
	return e.buf.String()
}

// Len returns the current byte length.
func (e *Emitter) Len() int {
	return e.buf.Len()
}

// Nest indents every line of s but the first by one unit, for
// multi-line expressions embedded in an enclosing line.
func Nest(s, unit string) string {
	return strings.ReplaceAll(s, "\n", "\n"+unit)
}

// Quote returns s as a double-quoted string literal with backslashes,
// quotes and control characters escaped. The result is valid in Rust,
// TypeScript and Go.
func Quote(s string) string {
	var sb strings.Builder
	sb.WriteByte('"')
	for _, r := range s {
		switch {
		case r == '"' || r == '\\':
			sb.WriteByte('\\')
			sb.WriteRune(r)
		case r == '\n':
			sb.WriteString(`\n`)
		case r == '\t':
			sb.WriteString(`\t`)
		case r < 0x20:
			fmt.Fprintf(&sb, `\u%04x`, r)
		default:
			sb.WriteRune(r)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}
