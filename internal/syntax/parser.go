// Package syntax parses schema source text into an ast.TypeSet.
//
// A schema starts with a version header followed by declarations:
//
//	version v1;
//
//	User = #1 struct {
//	    name: #2 string,
//	    tags: [string],
//	    admin,             // bare member, implicitly unit
//	};
//
// Numbers ("#N") are optional on every type. Comments run from "//" to the
// end of the line. Identifiers may be quoted ("some name") and are
// NFC-normalized.
package syntax

import (
	"fmt"

	"github.com/versed/versed/internal/ast"
	"github.com/versed/versed/internal/diagnostic"
)

// maxDepth bounds type nesting so that hostile input cannot exhaust the
// stack of the recursive descent.
const maxDepth = 256

var primitives = map[string]ast.PrimitiveKind{
	"int":    ast.Int,
	"string": ast.String,
	"unit":   ast.Unit,
}

type parseError struct {
	span ast.Span
	msg  string
}

func (e *parseError) Error() string { return e.msg }

type parser struct {
	lex     lexer
	tok     token
	nextID  ast.NodeID
	depth   int
	started bool
}

// Parse parses a single schema. Syntax errors are reported to diags as
// fatal diagnostics and Parse returns nil.
func Parse(src string, diags *diagnostic.Collector) *ast.TypeSet {
	p := &parser{lex: lexer{src: src}}
	ts, err := p.parseFile()
	if err == nil && p.tok.kind != tokEOF {
		err = p.unexpected("a declaration")
	}
	if err != nil {
		report(diags, err)
		return nil
	}
	return ts
}

// ParseMigration parses a migration file: the old schema immediately
// followed by the new one. Spans of both schemas are offsets into src.
func ParseMigration(src string, diags *diagnostic.Collector) *ast.Migration {
	p := &parser{lex: lexer{src: src}}
	old, err := p.parseFile()
	if err == nil && p.tok.kind == tokEOF {
		err = &parseError{p.tok.span, "expected the new schema's version header, found end of file"}
	}
	var next *ast.TypeSet
	if err == nil {
		p.nextID = 0
		next, err = p.parseFile()
	}
	if err == nil && p.tok.kind != tokEOF {
		err = p.unexpected("a declaration")
	}
	if err != nil {
		report(diags, err)
		return nil
	}
	return &ast.Migration{Old: old, New: next}
}

func report(diags *diagnostic.Collector, err error) {
	switch err := err.(type) {
	case *parseError:
		diags.Error(diagnostic.CategorySyntax, diagnostic.Label{Span: err.span}, err.msg)
	case *lexError:
		diags.Error(diagnostic.CategorySyntax, diagnostic.Label{Span: err.span}, err.msg)
	default:
		diags.Error(diagnostic.CategorySyntax, diagnostic.Label{}, err.Error())
	}
}

func (p *parser) alloc() ast.NodeID {
	id := p.nextID
	p.nextID++
	return id
}

func (p *parser) advance() error {
	tok, err := p.lex.next()
	if err != nil {
		return err
	}
	p.tok = tok
	return nil
}

func (p *parser) unexpected(what string) error {
	return &parseError{p.tok.span, fmt.Sprintf("expected %s, found %s", what, p.tok)}
}

// expect consumes the punctuation or keyword text.
func (p *parser) expect(text string) (ast.Span, error) {
	if !p.tok.is(text) {
		return ast.Span{}, p.unexpected(fmt.Sprintf("'%s'", text))
	}
	span := p.tok.span
	return span, p.advance()
}

func (p *parser) name() (string, ast.Span, error) {
	if p.tok.kind != tokIdent && p.tok.kind != tokQuoted {
		return "", ast.Span{}, p.unexpected("a name")
	}
	tok := p.tok
	return tok.text, tok.span, p.advance()
}

func (p *parser) parseFile() (*ast.TypeSet, error) {
	if !p.started {
		p.started = true
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	ts := &ast.TypeSet{NodeID: p.alloc()}
	if _, err := p.expect("version"); err != nil {
		return nil, err
	}
	var err error
	if ts.Version, ts.VersionSpan, err = p.name(); err != nil {
		return nil, err
	}
	if _, err := p.expect(";"); err != nil {
		return nil, err
	}

	for p.tok.kind != tokEOF && !p.tok.is("version") {
		nt, err := p.parseNamedType()
		if err != nil {
			return nil, err
		}
		ts.Types = append(ts.Types, nt)
	}
	ts.Count = int(p.nextID)
	return ts, nil
}

func (p *parser) parseNamedType() (*ast.NamedType, error) {
	nt := &ast.NamedType{NodeID: p.alloc()}
	var err error
	if nt.Name, nt.NameSpan, err = p.name(); err != nil {
		return nil, err
	}
	if _, err := p.expect("="); err != nil {
		return nil, err
	}
	if nt.Type, err = p.parseType(); err != nil {
		return nil, err
	}
	if _, err := p.expect(";"); err != nil {
		return nil, err
	}
	return nt, nil
}

func (p *parser) parseType() (ast.Type, error) {
	p.depth++
	defer func() { p.depth-- }()
	if p.depth > maxDepth {
		return nil, &parseError{p.tok.span, "type is nested too deeply"}
	}

	if p.tok.is("(") {
		if err := p.advance(); err != nil {
			return nil, err
		}
		t, err := p.parseType()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(")"); err != nil {
			return nil, err
		}
		return t, nil
	}

	var num *ast.Number
	if p.tok.kind == tokNumber {
		num = &ast.Number{Value: p.tok.num, Span: p.tok.span}
		if err := p.advance(); err != nil {
			return nil, err
		}
	}

	start := p.tok
	base := ast.Base{NodeID: p.alloc(), Loc: start.span, Num: num}
	switch {
	case start.is("struct"), start.is("enum"):
		if err := p.advance(); err != nil {
			return nil, err
		}
		members, end, err := p.parseMembers()
		if err != nil {
			return nil, err
		}
		base.Loc.End = end.End
		if start.text == "struct" {
			return &ast.Struct{Base: base, Fields: members}, nil
		}
		return &ast.Enum{Base: base, Variants: members}, nil

	case start.is("["):
		if err := p.advance(); err != nil {
			return nil, err
		}
		elem, err := p.parseType()
		if err != nil {
			return nil, err
		}
		end, err := p.expect("]")
		if err != nil {
			return nil, err
		}
		base.Loc.End = end.End
		return &ast.List{Base: base, Elem: elem}, nil

	case start.is("int"), start.is("string"), start.is("unit"):
		return &ast.Primitive{Base: base, Kind: primitives[start.text]}, p.advance()

	case start.kind == tokIdent || start.kind == tokQuoted:
		return &ast.Identifier{Base: base, Name: start.text}, p.advance()
	}
	return nil, p.unexpected("a type")
}

// parseMembers parses "{ member, ... }" and returns the closing brace span.
func (p *parser) parseMembers() ([]*ast.Member, ast.Span, error) {
	if _, err := p.expect("{"); err != nil {
		return nil, ast.Span{}, err
	}
	var members []*ast.Member
	for !p.tok.is("}") {
		m, err := p.parseMember()
		if err != nil {
			return nil, ast.Span{}, err
		}
		members = append(members, m)
		if !p.tok.is(",") {
			break
		}
		if err := p.advance(); err != nil {
			return nil, ast.Span{}, err
		}
	}
	end, err := p.expect("}")
	return members, end, err
}

func (p *parser) parseMember() (*ast.Member, error) {
	m := &ast.Member{NodeID: p.alloc()}
	var err error
	if m.Name, m.NameSpan, err = p.name(); err != nil {
		return nil, err
	}

	if p.tok.is(":") {
		if err := p.advance(); err != nil {
			return nil, err
		}
		m.Type, err = p.parseType()
		return m, err
	}

	// A bare member is unit. Its type has an empty span right after the
	// name, so an inserted number reads "name #N".
	at := ast.Span{Start: m.NameSpan.End, End: m.NameSpan.End}
	unit := &ast.Primitive{Base: ast.Base{NodeID: p.alloc(), Loc: at}, Kind: ast.Unit}
	if p.tok.kind == tokNumber {
		unit.Num = &ast.Number{Value: p.tok.num, Span: p.tok.span}
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	m.Type = unit
	return m, nil
}
