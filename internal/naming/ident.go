package naming

import (
	"strconv"
	"strings"
	"unicode"
)

// IdentRules describes the valid identifiers of a target language.
type IdentRules struct {
	// IsStart and IsContinue classify characters. Nil accepts everything,
	// which suits names that end up in string literals.
	IsStart    func(rune) bool
	IsContinue func(rune) bool

	// InvalidStartPrefix is prepended when the first character cannot
	// start an identifier. Defaults to "_".
	InvalidStartPrefix string

	// Reserved words are escaped with ReservedPrefix, or with a "_"
	// suffix when the language has no escape syntax.
	Reserved       map[string]bool
	ReservedPrefix string

	// AlwaysReserved words cannot be escaped and always get a "_" suffix.
	AlwaysReserved map[string]bool
}

func (r IdentRules) isStart(c rune) bool    { return r.IsStart == nil || r.IsStart(c) }
func (r IdentRules) isContinue(c rune) bool { return r.IsContinue == nil || r.IsContinue(c) }

// Make turns s into a valid identifier, dropping characters that cannot
// appear in one.
func (r IdentRules) Make(s string) string {
	prefix := r.InvalidStartPrefix
	if prefix == "" {
		prefix = "_"
	}

	var sb strings.Builder
	for _, c := range s {
		switch {
		case sb.Len() == 0 && r.isStart(c):
			sb.WriteRune(c)
		case sb.Len() == 0 && r.isContinue(c):
			sb.WriteString(prefix)
			sb.WriteRune(c)
		case sb.Len() > 0 && r.isContinue(c):
			sb.WriteRune(c)
		}
	}
	if sb.Len() == 0 {
		sb.WriteString(prefix)
	}

	out := sb.String()
	switch {
	case r.AlwaysReserved[out]:
		return out + "_"
	case r.Reserved[out] && r.ReservedPrefix != "":
		return r.ReservedPrefix + out
	case r.Reserved[out]:
		return out + "_"
	}
	return out
}

// Style is a casing convention plus the identifier rules applied after it.
type Style struct {
	Case  Case
	Ident IdentRules
}

// Apply cases words and makes the result a valid identifier.
func (s Style) Apply(words []string) string {
	return s.Ident.Make(s.Case.Join(words))
}

// Scope hands out identifiers that are unique within it.
type Scope struct {
	used map[string]bool
}

// NewScope returns an empty scope.
func NewScope() *Scope {
	return &Scope{used: make(map[string]bool)}
}

// Claim returns name, or name followed by the smallest number from 2 up
// that is still free, and marks the result as used.
func (s *Scope) Claim(name string) string {
	candidate := name
	for i := 2; s.used[candidate]; i++ {
		candidate = name + strconv.Itoa(i)
	}
	s.used[candidate] = true
	return candidate
}

func isLetterOrUnderscore(c rune) bool {
	return c == '_' || unicode.IsLetter(c)
}

func isIdentContinue(c rune) bool {
	return c == '_' || unicode.IsLetter(c) || unicode.IsDigit(c) ||
		unicode.In(c, unicode.Mn, unicode.Mc, unicode.Pc)
}

func isASCIIStart(c rune) bool {
	return c < unicode.MaxASCII && isLetterOrUnderscore(c)
}

func isASCIIContinue(c rune) bool {
	return c < unicode.MaxASCII && isIdentContinue(c)
}

func set(words ...string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}
