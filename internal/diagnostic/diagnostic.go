package diagnostic

import (
	"fmt"
	"strings"

	"github.com/versed/versed/internal/ast"
)

// Severity represents the severity level of a diagnostic.
type Severity int

const (
	SeverityWarning Severity = iota
	// SeverityError is fatal: it blocks code generation for the tree.
	SeverityError
	SeverityInfo
)

func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityInfo:
		return "info"
	default:
		return "unknown"
	}
}

// Category classifies diagnostics for filtering.
type Category string

const (
	CategorySyntax        Category = "syntax"
	CategoryName          Category = "name"
	CategoryRecursion     Category = "recursion"
	CategoryNumber        Category = "number"
	CategoryMigration     Category = "migration"
	CategoryConfigInvalid Category = "config-invalid"
)

// Label attaches a message to a span of the source.
type Label struct {
	Span    ast.Span
	Message string
}

// At builds a label.
func At(span ast.Span, format string, args ...any) Label {
	return Label{Span: span, Message: fmt.Sprintf(format, args...)}
}

// Diagnostic represents a structured diagnostic message.
type Diagnostic struct {
	Severity  Severity
	Category  Category
	File      string // source file path
	Line      int    // 1-based line of the primary label (0 = unknown)
	Column    int    // 1-based column of the primary label (0 = unknown)
	Message   string
	Primary   Label
	Secondary *Label // second site for two-site errors
	Hint      string // optional suggestion for fixing the issue
}

// WithSecondary sets the secondary label.
func (d *Diagnostic) WithSecondary(l Label) *Diagnostic {
	d.Secondary = &l
	return d
}

// WithHint sets the hint.
func (d *Diagnostic) WithHint(hint string) *Diagnostic {
	d.Hint = hint
	return d
}

// Fatal reports whether d blocks code generation.
func (d Diagnostic) Fatal() bool { return d.Severity == SeverityError }

// String formats the diagnostic for display.
func (d Diagnostic) String() string {
	var sb strings.Builder

	// File location
	if d.File != "" {
		sb.WriteString(d.File)
		if d.Line > 0 {
			sb.WriteString(fmt.Sprintf(":%d", d.Line))
			if d.Column > 0 {
				sb.WriteString(fmt.Sprintf(":%d", d.Column))
			}
		}
		sb.WriteString(" - ")
	}

	sb.WriteString(d.Severity.String())
	sb.WriteString(": ")

	if d.Category != "" {
		sb.WriteString("[")
		sb.WriteString(string(d.Category))
		sb.WriteString("] ")
	}

	sb.WriteString(d.Message)

	if d.Hint != "" {
		sb.WriteString("\n  hint: ")
		sb.WriteString(d.Hint)
	}

	return sb.String()
}

// Collector collects diagnostics during analysis. Diagnostics are
// attributed to the source registered by the last call to Begin.
type Collector struct {
	diagnostics []*Diagnostic
	sources     map[string]string
	file        string
	strict      bool // if true, warnings become errors
	quiet       bool // if true, suppress warnings
}

// NewCollector creates a new diagnostic collector.
func NewCollector(strict, quiet bool) *Collector {
	return &Collector{
		sources: make(map[string]string),
		strict:  strict,
		quiet:   quiet,
	}
}

// Begin registers the source text of file and attributes subsequent
// diagnostics to it.
func (c *Collector) Begin(file, src string) {
	if c == nil {
		return
	}
	c.file = file
	c.sources[file] = src
}

// Source returns the registered text of file.
func (c *Collector) Source(file string) (string, bool) {
	if c == nil {
		return "", false
	}
	src, ok := c.sources[file]
	return src, ok
}

func (c *Collector) add(sev Severity, category Category, primary Label, message string) *Diagnostic {
	d := &Diagnostic{
		Severity: sev,
		Category: category,
		File:     c.file,
		Message:  message,
		Primary:  primary,
	}
	if src, ok := c.sources[c.file]; ok {
		d.Line, d.Column = Position(src, primary.Span.Start)
	}
	c.diagnostics = append(c.diagnostics, d)
	return d
}

// Error adds a fatal diagnostic.
func (c *Collector) Error(category Category, primary Label, message string) *Diagnostic {
	if c == nil {
		return &Diagnostic{}
	}
	return c.add(SeverityError, category, primary, message)
}

// Warn adds a warning diagnostic.
func (c *Collector) Warn(category Category, primary Label, message string) *Diagnostic {
	if c == nil || c.quiet {
		return &Diagnostic{}
	}
	sev := SeverityWarning
	if c.strict {
		sev = SeverityError
	}
	return c.add(sev, category, primary, message)
}

// Info adds an informational diagnostic.
func (c *Collector) Info(category Category, primary Label, message string) *Diagnostic {
	if c == nil || c.quiet {
		return &Diagnostic{}
	}
	return c.add(SeverityInfo, category, primary, message)
}

// Merge appends the diagnostics and sources of other.
func (c *Collector) Merge(other *Collector) {
	if c == nil || other == nil {
		return
	}
	c.diagnostics = append(c.diagnostics, other.diagnostics...)
	for file, src := range other.sources {
		c.sources[file] = src
	}
}

// Diagnostics returns all collected diagnostics.
func (c *Collector) Diagnostics() []Diagnostic {
	if c == nil {
		return nil
	}
	out := make([]Diagnostic, len(c.diagnostics))
	for i, d := range c.diagnostics {
		out[i] = *d
	}
	return out
}

// HasErrors returns true if any fatal diagnostics exist.
func (c *Collector) HasErrors() bool {
	return c.ErrorCount() > 0
}

// ErrorCount returns the number of error diagnostics.
func (c *Collector) ErrorCount() int {
	return c.count(SeverityError)
}

// WarningCount returns the number of warning diagnostics.
func (c *Collector) WarningCount() int {
	return c.count(SeverityWarning)
}

func (c *Collector) count(sev Severity) int {
	if c == nil {
		return 0
	}
	count := 0
	for _, d := range c.diagnostics {
		if d.Severity == sev {
			count++
		}
	}
	return count
}

// FormatAll formats all diagnostics as a multi-line string.
func (c *Collector) FormatAll() string {
	if c == nil || len(c.diagnostics) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, d := range c.diagnostics {
		sb.WriteString(d.String())
		sb.WriteString("\n")
	}
	return sb.String()
}

// Summary returns a summary line like "2 warning(s), 1 error(s)".
func (c *Collector) Summary() string {
	if c == nil {
		return ""
	}
	warnings := c.WarningCount()
	errors := c.ErrorCount()

	parts := []string{}
	if errors > 0 {
		parts = append(parts, fmt.Sprintf("%d error(s)", errors))
	}
	if warnings > 0 {
		parts = append(parts, fmt.Sprintf("%d warning(s)", warnings))
	}
	if len(parts) == 0 {
		return "no issues"
	}
	return strings.Join(parts, ", ")
}
