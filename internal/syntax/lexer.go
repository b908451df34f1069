package syntax

import (
	"fmt"
	"strconv"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/versed/versed/internal/ast"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokQuoted
	tokNumber
	tokPunct
)

type token struct {
	kind tokenKind
	text string // identifier name (normalized), punctuation, or number digits
	num  uint64
	span ast.Span
}

func (t token) String() string {
	switch t.kind {
	case tokEOF:
		return "end of file"
	case tokIdent:
		return fmt.Sprintf("'%s'", t.text)
	case tokQuoted:
		return fmt.Sprintf("'\"%s\"'", t.text)
	case tokNumber:
		return fmt.Sprintf("'#%d'", t.num)
	default:
		return fmt.Sprintf("'%s'", t.text)
	}
}

// is reports whether t is the given punctuation or unquoted keyword.
func (t token) is(text string) bool {
	return (t.kind == tokPunct || t.kind == tokIdent) && t.text == text
}

type lexError struct {
	span ast.Span
	msg  string
}

func (e *lexError) Error() string { return e.msg }

type lexer struct {
	src string
	pos int
}

func isIdentStart(b byte) bool {
	return b == '_' || ('a' <= b && b <= 'z') || ('A' <= b && b <= 'Z')
}

func isIdentContinue(b byte) bool {
	return isIdentStart(b) || ('0' <= b && b <= '9')
}

func (l *lexer) skipTrivia() {
	for l.pos < len(l.src) {
		switch c := l.src[l.pos]; {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			l.pos++
		case c == '/' && l.pos+1 < len(l.src) && l.src[l.pos+1] == '/':
			for l.pos < len(l.src) && l.src[l.pos] != '\n' {
				l.pos++
			}
		default:
			return
		}
	}
}

func (l *lexer) next() (token, error) {
	l.skipTrivia()
	start := l.pos
	if l.pos >= len(l.src) {
		return token{kind: tokEOF, span: ast.Span{Start: start, End: start}}, nil
	}

	c := l.src[l.pos]
	switch {
	case isIdentStart(c):
		for l.pos < len(l.src) && isIdentContinue(l.src[l.pos]) {
			l.pos++
		}
		return token{kind: tokIdent, text: l.src[start:l.pos], span: ast.Span{Start: start, End: l.pos}}, nil

	case c == '"':
		l.pos++
		for l.pos < len(l.src) && l.src[l.pos] != '"' && l.src[l.pos] != '\n' {
			l.pos++
		}
		if l.pos >= len(l.src) || l.src[l.pos] != '"' {
			return token{}, &lexError{ast.Span{Start: start, End: l.pos}, "unterminated quoted identifier"}
		}
		text := l.src[start+1 : l.pos]
		l.pos++
		span := ast.Span{Start: start, End: l.pos}
		if text == "" {
			return token{}, &lexError{span, "quoted identifiers cannot be empty"}
		}
		if !utf8.ValidString(text) {
			return token{}, &lexError{span, "quoted identifier is not valid UTF-8"}
		}
		return token{kind: tokQuoted, text: norm.NFC.String(text), span: span}, nil

	case c == '#':
		l.pos++
		digits := l.pos
		for l.pos < len(l.src) && '0' <= l.src[l.pos] && l.src[l.pos] <= '9' {
			l.pos++
		}
		span := ast.Span{Start: start, End: l.pos}
		if digits == l.pos {
			return token{}, &lexError{span, "expected digits after '#'"}
		}
		n, err := strconv.ParseUint(l.src[digits:l.pos], 10, 64)
		if err != nil {
			return token{}, &lexError{span, "type number is too large"}
		}
		return token{kind: tokNumber, text: l.src[digits:l.pos], num: n, span: span}, nil

	case isPunct(c):
		l.pos++
		return token{kind: tokPunct, text: string(c), span: ast.Span{Start: start, End: l.pos}}, nil
	}

	r, size := utf8.DecodeRuneInString(l.src[l.pos:])
	return token{}, &lexError{ast.Span{Start: start, End: start + size}, fmt.Sprintf("unexpected character %q", r)}
}

func isPunct(c byte) bool {
	switch c {
	case '=', ';', ':', ',', '{', '}', '[', ']', '(', ')':
		return true
	}
	return false
}
