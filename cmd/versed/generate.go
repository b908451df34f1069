package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/versed/versed/internal/analysis"
	"github.com/versed/versed/internal/codegen"
	"github.com/versed/versed/internal/codegen/golang"
	"github.com/versed/versed/internal/codegen/rust"
	"github.com/versed/versed/internal/codegen/typescript"
	"github.com/versed/versed/internal/config"
	"github.com/versed/versed/internal/diagnostic"
)

// stringList is a repeatable string flag.
type stringList []string

func (l *stringList) String() string { return strings.Join(*l, ",") }

func (l *stringList) Set(v string) error {
	*l = append(*l, v)
	return nil
}

// generateFlags are the flags of "versed TARGET types|migration".
type generateFlags struct {
	commonFlags
	OutDir     string
	OutFile    string
	Force      bool
	Serde      bool
	Derives    stringList
	ImportPath string
}

// newTarget returns the target called name, configured by cfg.
func newTarget(name string, cfg *config.Config) (codegen.Target, error) {
	switch name {
	case "rust":
		return rust.New(rust.Options{Serde: cfg.Rust.Serde, Derives: cfg.Rust.Derives}), nil
	case "typescript":
		return typescript.New(), nil
	case "go":
		return golang.New(golang.Options{ImportPath: cfg.Go.ImportPath}), nil
	}
	return nil, fmt.Errorf("unknown target %q", name)
}

func runGenerate(target string, args []string) int {
	if len(args) == 0 || (args[0] != "types" && args[0] != "migration") {
		fmt.Fprintf(stderr, "Usage: versed %s types|migration [flags] FILE\n", target)
		return exitUsage
	}
	kind := args[0]

	fs := newFlagSet(target+" "+kind, fmt.Sprintf("%s %s [flags] FILE", target, kind))
	var f generateFlags
	f.register(fs)
	fs.StringVar(&f.OutDir, "o", "", "Output directory (default: <output>/"+target+")")
	fs.StringVar(&f.OutFile, "f", "", "Write the generated source to this file only")
	fs.BoolVar(&f.Force, "force", false, "Replace existing generated files")
	switch target {
	case "rust":
		fs.BoolVar(&f.Serde, "serde", false, "Derive serde Serialize and Deserialize")
		fs.Var(&f.Derives, "derive", "Extra trait to derive (repeatable)")
	case "go":
		fs.StringVar(&f.ImportPath, "import-path", "", "Import path of the output directory")
	}
	fs.Parse(args[1:])

	if fs.NArg() != 1 {
		fs.Usage()
		return exitUsage
	}
	cfg, err := f.loadConfig(fs)
	if err != nil {
		return fail(err)
	}
	if f.Serde {
		cfg.Rust.Serde = true
	}
	cfg.Rust.Derives = append(cfg.Rust.Derives, f.Derives...)
	if f.ImportPath != "" {
		cfg.Go.ImportPath = f.ImportPath
	}
	if err := cfg.Validate(); err != nil {
		return fail(err)
	}

	t, err := newTarget(target, cfg)
	if err != nil {
		return fail(err)
	}

	file := fs.Arg(0)
	diags := diagnostic.NewCollector(cfg.Strict, cfg.Quiet)
	var out *codegen.Output
	if kind == "types" {
		out, err = generateTypes(t, file, f.OutFile, diags)
	} else {
		out, err = generateMigration(t, file, f.OutFile, diags)
	}
	f.report(diags)
	if err != nil {
		return fail(err)
	}
	if out == nil {
		return exitError
	}

	dir := f.OutDir
	if f.OutFile != "" {
		dir = filepath.Dir(f.OutFile)
	} else if dir == "" {
		dir = cfg.OutputDir(target)
	}
	written, err := out.Write(dir, f.Force)
	printWritten(written)
	if err != nil {
		return fail(err)
	}
	return exitOK
}

// generateTypes analyses a schema and prints its types. The output is nil
// when the schema has fatal diagnostics.
func generateTypes(t codegen.Target, file, single string, diags *diagnostic.Collector) (*codegen.Output, error) {
	s, err := analysis.Load(file, diags)
	if err != nil || s == nil {
		return nil, err
	}
	side := s.Side(t.Rules())
	if single == "" {
		return t.TypesOutput(side)
	}
	src, err := t.Types(side)
	if err != nil {
		return nil, err
	}
	return singleFile(single, src), nil
}

// generateMigration analyses a migration file and prints its functions.
func generateMigration(t codegen.Target, file, single string, diags *diagnostic.Collector) (*codegen.Output, error) {
	m, err := analysis.LoadMigration(file, diags)
	if err != nil || m == nil {
		return nil, err
	}
	plan := m.Plan(t.Rules())
	if single == "" {
		return t.MigrationsOutput(plan)
	}
	src, err := t.Migrations(plan)
	if err != nil {
		return nil, err
	}
	return singleFile(single, src), nil
}

func singleFile(path, src string) *codegen.Output {
	return &codegen.Output{Files: []codegen.File{{Path: filepath.Base(path), Content: src}}}
}

func printWritten(written []codegen.Written) {
	for _, w := range written {
		verb := "wrote"
		if w.Appended {
			verb = "updated"
		}
		fmt.Fprintf(stderr, "%s %s (%s)\n", verb, w.Path, humanize.Bytes(uint64(w.Size)))
	}
}
