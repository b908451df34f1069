package diagnostic

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode"

	"github.com/apparentlymart/go-textseg/v15/textseg"
	"github.com/mitchellh/go-wordwrap"
)

// ANSI color constants.
const (
	colorReset  = "\u001b[0m"
	colorRed    = "\u001b[91m"
	colorYellow = "\u001b[93m"
	colorBlue   = "\u001b[94m"
	colorCyan   = "\u001b[96m"
	colorGrey   = "\u001b[90m"
	colorGutter = "\u001b[7m" // reverse video
)

const hintWidth = 80

func severityColor(sev Severity) string {
	switch sev {
	case SeverityError:
		return colorRed
	case SeverityWarning:
		return colorYellow
	case SeverityInfo:
		return colorBlue
	}
	return ""
}

// IsPrettyOutput determines if we should use colored output with code snippets:
// NO_COLOR, FORCE_COLOR, then whether stderr is a terminal.
func IsPrettyOutput() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if os.Getenv("FORCE_COLOR") != "" {
		return true
	}
	fi, err := os.Stderr.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

// Position converts a byte offset into a 1-based line and column. Columns
// count grapheme clusters, so they match what an editor shows.
func Position(src string, offset int) (line, col int) {
	if offset > len(src) {
		offset = len(src)
	}
	lineStart := strings.LastIndexByte(src[:offset], '\n') + 1
	line = strings.Count(src[:lineStart], "\n") + 1
	return line, displayWidth(src[lineStart:offset]) + 1
}

func displayWidth(s string) int {
	n, err := textseg.TokenCount([]byte(s), textseg.ScanGraphemeClusters)
	if err != nil {
		return len(s)
	}
	return n
}

// Reporter writes diagnostics to a terminal.
type Reporter struct {
	w      io.Writer
	cwd    string
	pretty bool
}

// NewReporter returns a reporter writing to w. File names are shown
// relative to cwd when possible.
func NewReporter(w io.Writer, cwd string, pretty bool) *Reporter {
	return &Reporter{w: w, cwd: cwd, pretty: pretty}
}

// Report writes every diagnostic of c, followed by the error summary in
// pretty mode.
func (r *Reporter) Report(c *Collector) {
	for _, d := range c.Diagnostics() {
		src, _ := c.Source(d.File)
		if r.pretty {
			r.writePretty(d, src)
			fmt.Fprint(r.w, "\n")
		} else {
			r.writePlain(d, src)
		}
	}
	if r.pretty {
		r.writeSummary(c)
	}
}

// writePlain writes file:line:col: severity: message, plus a note line for
// the secondary label.
func (r *Reporter) writePlain(d Diagnostic, src string) {
	file := relativePath(d.File, r.cwd)
	if d.File != "" {
		fmt.Fprintf(r.w, "%s:%d:%d: ", file, d.Line, d.Column)
	}
	fmt.Fprintf(r.w, "%s: %s\n", d.Severity, d.Message)
	if d.Secondary != nil && d.File != "" {
		line, col := Position(src, d.Secondary.Span.Start)
		fmt.Fprintf(r.w, "%s:%d:%d: note: %s\n", file, line, col, d.Secondary.Message)
	}
	if d.Hint != "" {
		fmt.Fprintf(r.w, "  hint: %s\n", d.Hint)
	}
}

// writePretty writes
//
//	file:line:col - error: message
//	<snippet for the primary label>
//	<snippet for the secondary label>
func (r *Reporter) writePretty(d Diagnostic, src string) {
	color := severityColor(d.Severity)
	if d.File != "" {
		fmt.Fprintf(r.w, "%s%s%s:%s%d%s:%s%d%s - ",
			colorCyan, relativePath(d.File, r.cwd), colorReset,
			colorYellow, d.Line, colorReset,
			colorYellow, d.Column, colorReset)
	}
	fmt.Fprintf(r.w, "%s%s%s: %s", color, d.Severity, colorReset, d.Message)

	if src != "" {
		fmt.Fprint(r.w, "\n")
		writeSnippet(r.w, src, d.Primary, color)
		if d.Secondary != nil {
			writeSnippet(r.w, src, *d.Secondary, colorCyan)
		}
	}
	if d.Hint != "" {
		hint := wordwrap.WrapString(d.Hint, hintWidth)
		fmt.Fprintf(r.w, "\n%shint:%s %s", colorGrey, colorReset,
			strings.ReplaceAll(hint, "\n", "\n      "))
	}
	fmt.Fprint(r.w, "\n")
}

// writeSnippet writes the lines covered by l with gutter line numbers,
// squiggles under the labelled range and the label's message.
func writeSnippet(w io.Writer, src string, l Label, squiggleColor string) {
	firstLine, firstCol := Position(src, l.Span.Start)
	lastLine, lastCol := Position(src, l.Span.End)
	firstCol--
	lastCol--
	if l.Span.Empty() {
		lastCol = firstCol + 1
	}

	lines := strings.Split(src, "\n")
	hasMoreThanFiveLines := lastLine-firstLine >= 4
	gutterWidth := len(strconv.Itoa(lastLine))
	if hasMoreThanFiveLines && len("...") > gutterWidth {
		gutterWidth = len("...")
	}

	for i := firstLine; i <= lastLine && i <= len(lines); i++ {
		if hasMoreThanFiveLines && firstLine+1 < i && i < lastLine-1 {
			fmt.Fprintf(w, "%s%*s%s\n", colorGutter, gutterWidth, "...", colorReset)
			i = lastLine - 1
		}

		content := strings.TrimRightFunc(lines[i-1], unicode.IsSpace)
		content = strings.ReplaceAll(content, "\t", " ")
		width := displayWidth(content)

		fmt.Fprintf(w, "%s%*d%s %s\n", colorGutter, gutterWidth, i, colorReset, content)
		fmt.Fprintf(w, "%s%*s%s %s", colorGutter, gutterWidth, "", colorReset, squiggleColor)
		switch i {
		case firstLine:
			end := lastCol
			if i != lastLine {
				end = width
			}
			fmt.Fprint(w, strings.Repeat(" ", firstCol))
			fmt.Fprint(w, strings.Repeat("~", max(end-firstCol, 1)))
		case lastLine:
			fmt.Fprint(w, strings.Repeat("~", max(lastCol, 1)))
		default:
			fmt.Fprint(w, strings.Repeat("~", width))
		}
		if i == lastLine && l.Message != "" {
			fmt.Fprintf(w, " %s", l.Message)
		}
		fmt.Fprintf(w, "%s\n", colorReset)
	}
}

// writeSummary writes the "Found N errors" summary.
func (r *Reporter) writeSummary(c *Collector) {
	errorCount := 0
	firstFile, firstLine := "", 0
	files := make(map[string]bool)
	for _, d := range c.Diagnostics() {
		if d.Severity != SeverityError {
			continue
		}
		errorCount++
		if errorCount == 1 {
			firstFile, firstLine = d.File, d.Line
		}
		files[d.File] = true
	}

	switch {
	case errorCount == 0:
		return
	case errorCount == 1 && firstFile != "":
		fmt.Fprintf(r.w, "\nFound 1 error in %s%s:%d%s\n\n",
			relativePath(firstFile, r.cwd), colorGrey, firstLine, colorReset)
	case errorCount == 1:
		fmt.Fprint(r.w, "\nFound 1 error.\n\n")
	case len(files) <= 1 && firstFile != "":
		fmt.Fprintf(r.w, "\nFound %d errors in the same file, starting at: %s%s:%d%s\n\n",
			errorCount, relativePath(firstFile, r.cwd), colorGrey, firstLine, colorReset)
	case len(files) <= 1:
		fmt.Fprintf(r.w, "\nFound %d errors.\n\n", errorCount)
	default:
		fmt.Fprintf(r.w, "\nFound %d errors in %d files.\n\n", errorCount, len(files))
	}
}

// relativePath converts an absolute path to relative if possible.
func relativePath(absPath string, cwd string) string {
	if cwd == "" || !filepath.IsAbs(absPath) {
		return absPath
	}
	rel, err := filepath.Rel(cwd, absPath)
	if err != nil {
		return absPath
	}
	return rel
}
