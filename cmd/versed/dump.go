package main

import (
	"fmt"
	"path/filepath"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"

	"github.com/versed/versed/internal/analysis"
	"github.com/versed/versed/internal/ast"
	"github.com/versed/versed/internal/diagnostic"
	"github.com/versed/versed/internal/indirect"
	"github.com/versed/versed/internal/pairing"
	"github.com/versed/versed/internal/resolve"
)

// schemaDump is the JSON output of "versed dump" for a schema: the tree
// with the facts the passes attached to it.
type schemaDump struct {
	File    string     `json:"file"`
	Version string     `json:"version"`
	Types   []declDump `json:"types"`
}

type declDump struct {
	Name    string    `json:"name"`
	Depth   string    `json:"depth"`
	Newtype bool      `json:"newtype,omitzero"`
	Type    *typeDump `json:"type"`
}

type typeDump struct {
	ID     ast.NodeID `json:"id"`
	Kind   string     `json:"kind"`
	Number *uint64    `json:"number,omitempty"`

	// Identifiers only.
	Name       string `json:"name,omitempty"`
	ResolvesTo string `json:"resolvesTo,omitempty"`
	Boxed      bool   `json:"boxed,omitzero"`

	Members []memberDump `json:"members,omitempty"`
	Elem    *typeDump    `json:"elem,omitempty"`
}

type memberDump struct {
	Name string    `json:"name"`
	Type *typeDump `json:"type"`
}

// migrationDump is the JSON output of "versed dump" for a migration file.
type migrationDump struct {
	File  string      `json:"file"`
	Old   *schemaDump `json:"old"`
	New   *schemaDump `json:"new"`
	Pairs []pairDump  `json:"pairs"`
}

type pairDump struct {
	Number uint64     `json:"number"`
	Old    ast.NodeID `json:"old"`
	New    ast.NodeID `json:"new"`
}

func runDump(args []string) int {
	fs := newFlagSet("dump", "dump [flags] FILE")
	var common commonFlags
	common.register(fs)
	fs.Parse(args)

	if fs.NArg() != 1 {
		fs.Usage()
		return exitUsage
	}
	cfg, err := common.loadConfig(fs)
	if err != nil {
		return fail(err)
	}

	file := fs.Arg(0)
	diags := diagnostic.NewCollector(cfg.Strict, cfg.Quiet)
	var out any
	if filepath.Ext(file) == migrationExt {
		m, err := analysis.LoadMigration(file, diags)
		if err != nil {
			return fail(err)
		}
		if m != nil {
			out = dumpMigration(m)
		}
	} else {
		s, err := analysis.Load(file, diags)
		if err != nil {
			return fail(err)
		}
		if s != nil {
			out = dumpSchema(s)
		}
	}
	common.report(diags)
	if out == nil {
		return exitError
	}

	if err := json.MarshalWrite(stdout, out, jsontext.WithIndent("  ")); err != nil {
		return fail(fmt.Errorf("failed to write dump: %w", err))
	}
	fmt.Fprintln(stdout)
	return exitOK
}

func dumpMigration(m *analysis.Migration) *migrationDump {
	out := &migrationDump{
		File:  m.File,
		Old:   dumpSchema(m.Old),
		New:   dumpSchema(m.New),
		Pairs: []pairDump{},
	}
	for _, p := range pairing.Pairs(m.Old.Tree, m.New.Tree) {
		out.Pairs = append(out.Pairs, pairDump{Number: p.Number, Old: p.Old.ID(), New: p.New.ID()})
	}
	return out
}

// identifierFacts pairs every node's resolution with whether it is boxed.
func identifierFacts(ts *ast.TypeSet, res ast.Layer[int]) ast.Layer[ast.Pair[int, bool]] {
	return ast.Zip(res, indirect.Boxes(ts, res))
}

// describeIdentifiers turns identifier facts into their JSON form.
func describeIdentifiers(ts *ast.TypeSet, facts ast.Layer[ast.Pair[int, bool]]) ast.Layer[identDump] {
	return ast.Map(facts, func(_ ast.NodeID, f ast.Pair[int, bool]) identDump {
		if f.First == resolve.Invalid {
			return identDump{}
		}
		return identDump{resolvesTo: ts.Types[f.First].Name, boxed: f.Second}
	})
}

var dumpIdentifiers = ast.Then[int, ast.Pair[int, bool], identDump](identifierFacts, describeIdentifiers)

func dumpSchema(s *analysis.Schema) *schemaDump {
	d := &dumper{
		idents:   dumpIdentifiers(s.Tree, s.Resolution),
		newtypes: indirect.Newtypes(s.Tree, s.Resolution),
	}
	out := &schemaDump{File: s.File, Version: s.Tree.Version, Types: []declDump{}}
	for i, nt := range s.Tree.Types {
		out.Types = append(out.Types, declDump{
			Name:    nt.Name,
			Depth:   s.Depths[i].String(),
			Newtype: d.newtypes[i],
			Type:    d.typ(nt.Type),
		})
	}
	return out
}

type identDump struct {
	resolvesTo string
	boxed      bool
}

type dumper struct {
	idents   ast.Layer[identDump]
	newtypes []bool
}

func (d *dumper) typ(t ast.Type) *typeDump {
	out := &typeDump{ID: t.ID()}
	if n := t.Number(); n != nil {
		v := n.Value
		out.Number = &v
	}
	switch t := t.(type) {
	case *ast.Struct:
		out.Kind = "struct"
		out.Members = d.members(t.Fields)
	case *ast.Enum:
		out.Kind = "enum"
		out.Members = d.members(t.Variants)
	case *ast.List:
		out.Kind = "list"
		out.Elem = d.typ(t.Elem)
	case *ast.Primitive:
		out.Kind = t.Kind.String()
	case *ast.Identifier:
		out.Kind = "identifier"
		out.Name = t.Name
		id := d.idents.Of(t)
		out.ResolvesTo, out.Boxed = id.resolvesTo, id.boxed
	}
	return out
}

func (d *dumper) members(ms []*ast.Member) []memberDump {
	out := make([]memberDump, len(ms))
	for i, m := range ms {
		out[i] = memberDump{Name: m.Name, Type: d.typ(m.Type)}
	}
	return out
}
