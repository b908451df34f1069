package main

import (
	"fmt"
	"io"
	"os"
)

const version = "0.1.0-dev"

// Output streams. Tests replace them.
var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		printUsage(stderr)
		return exitUsage
	}

	switch args[0] {
	case "check":
		return runCheck(args[1:])
	case "dump":
		return runDump(args[1:])
	case "migration":
		return runMigration(args[1:])
	case "rust", "typescript", "go":
		return runGenerate(args[0], args[1:])
	case "watch":
		return runWatch(args[1:])
	case "version":
		return runVersion(args[1:])
	case "--version", "-v":
		fmt.Fprintln(stdout, "versed", version)
		return exitOK
	case "help", "--help", "-h":
		printUsage(stdout)
		return exitOK
	default:
		fmt.Fprintf(stderr, "unknown command: %s\n", args[0])
		printUsage(stderr)
		return exitUsage
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "versed - versioned schema compiler")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  versed check [flags] [FILE...]                 Check schemas and migrations")
	fmt.Fprintln(w, "  versed dump [flags] FILE                       Print the analysed schema as JSON")
	fmt.Fprintln(w, "  versed migration begin [flags] FILE            Number every type of FILE")
	fmt.Fprintln(w, "  versed migration finish [flags] FILE OUT.vsm   Write the migration file")
	fmt.Fprintln(w, "  versed migration check [flags] FILE.vsm        Check a migration file")
	fmt.Fprintln(w, "  versed rust types|migration [flags] FILE       Generate Rust")
	fmt.Fprintln(w, "  versed typescript types|migration [flags] FILE Generate TypeScript")
	fmt.Fprintln(w, "  versed go types|migration [flags] FILE         Generate Go")
	fmt.Fprintln(w, "  versed watch [flags]                           Check schemas as they change")
	fmt.Fprintln(w, "  versed version [flags] [FILE]                  Print the version of FILE, or of versed")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Global Flags:")
	fmt.Fprintln(w, "  --version, -v          Print version and exit")
	fmt.Fprintln(w, "  --help, -h             Print this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Common Flags:")
	fmt.Fprintln(w, "  -config <path>         Path to versed.json or versed.yaml")
	fmt.Fprintln(w, "  -strict                Treat warnings as errors")
	fmt.Fprintln(w, "  -quiet                 Suppress warnings")
	fmt.Fprintln(w, "  -pretty                Render diagnostics with colours and snippets")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Generate Flags:")
	fmt.Fprintln(w, "  -o <dir>               Output directory (default: <output>/<target>)")
	fmt.Fprintln(w, "  -f <file>              Write the generated source to a single file")
	fmt.Fprintln(w, "  -force                 Replace existing generated files")
	fmt.Fprintln(w, "  -serde                 Derive serde traits (rust)")
	fmt.Fprintln(w, "  -derive <trait>        Extra derive, repeatable (rust)")
	fmt.Fprintln(w, "  -import-path <path>    Import path of the output directory (go)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Exit Codes:")
	fmt.Fprintln(w, "  0  success")
	fmt.Fprintln(w, "  1  invalid schema, migration or config")
	fmt.Fprintln(w, "  2  invalid command line")
	fmt.Fprintln(w, "  3  a file could not be read or written")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Examples:")
	fmt.Fprintln(w, "  versed check schema.vs")
	fmt.Fprintln(w, "  versed migration begin schema.vs")
	fmt.Fprintln(w, "  versed migration finish schema.vs migrations/v2.vsm")
	fmt.Fprintln(w, "  versed rust migration -o src/schema migrations/v2.vsm")
	fmt.Fprintln(w)
}
