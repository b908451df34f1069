package naming

import "unicode"

// Rules select the style of every kind of name for a target language.
type Rules struct {
	Types     Style
	Fields    Style
	Variants  Style
	Version   Style
	Migration Style

	// QualifiedVariants gives every enum variant a type name of its own,
	// for targets that model variants as separate types.
	QualifiedVariants bool
}

var rustIdent = IdentRules{
	IsStart:    isLetterOrUnderscore,
	IsContinue: isIdentContinue,
	Reserved: set(
		"as", "break", "const", "continue", "crate", "else", "enum", "extern",
		"false", "fn", "for", "if", "impl", "in", "let", "loop", "match", "mod",
		"move", "mut", "pub", "ref", "return", "self", "Self", "static", "struct",
		"super", "trait", "true", "type", "unsafe", "use", "where", "while", "async",
		"await", "dyn", "abstract", "become", "box", "do", "final", "macro",
		"override", "priv", "typeof", "unsized", "virtual", "yield", "try", "gen",
	),
	ReservedPrefix: "r#",
	AlwaysReserved: set("crate", "self", "super", "Self", "_"),
}

// Module names become file names, so they are restricted to ASCII.
var rustModIdent = IdentRules{
	IsStart:        isASCIIStart,
	IsContinue:     isASCIIContinue,
	Reserved:       rustIdent.Reserved,
	ReservedPrefix: rustIdent.ReservedPrefix,
	AlwaysReserved: rustIdent.AlwaysReserved,
}

// Rust names types and variants in PascalCase and fields, modules and
// migration functions in snake_case.
var Rust = Rules{
	Types:     Style{Pascal, rustIdent},
	Fields:    Style{Snake, rustIdent},
	Variants:  Style{Pascal, rustIdent},
	Version:   Style{Snake, rustModIdent},
	Migration: Style{Snake, rustIdent},
}

var tsReserved = []string{
	"break", "case", "catch", "class", "const", "continue", "debugger", "default",
	"delete", "do", "else", "enum", "export", "extends", "false", "finally", "for",
	"function", "if", "import", "in", "instanceof", "new", "null", "return",
	"super", "switch", "this", "throw", "true", "try", "typeof", "var", "void",
	"while", "with", "yield", "let", "static", "implements", "interface",
	"package", "private", "protected", "public", "await",
}

func isTSStart(c rune) bool    { return c == '$' || isLetterOrUnderscore(c) }
func isTSContinue(c rune) bool { return c == '$' || isIdentContinue(c) }

var tsIdent = IdentRules{
	IsStart:    isTSStart,
	IsContinue: isTSContinue,
	Reserved:   set(tsReserved...),
}

// Type names additionally must not shadow the builtin types.
var tsTypeIdent = IdentRules{
	IsStart:    isTSStart,
	IsContinue: isTSContinue,
	Reserved: set(append([]string{
		"any", "bigint", "boolean", "never", "number", "object", "string",
		"symbol", "undefined", "unknown", "Array", "Error",
	}, tsReserved...)...),
}

// Property names may be reserved words.
var tsPropertyIdent = IdentRules{
	IsStart:    isTSStart,
	IsContinue: isTSContinue,
}

// TypeScript names types in PascalCase, fields in camelCase and variants
// in kebab-case. Variant names only appear as string literal tags.
var TypeScript = Rules{
	Types:     Style{Pascal, tsTypeIdent},
	Fields:    Style{Camel, tsPropertyIdent},
	Variants:  Style{Kebab, IdentRules{}},
	Version:   Style{Snake, IdentRules{IsStart: isASCIIStart, IsContinue: isASCIIContinue, Reserved: tsIdent.Reserved}},
	Migration: Style{Pascal, tsIdent},
}

var goReserved = set(
	"break", "case", "chan", "const", "continue", "default", "defer", "else",
	"fallthrough", "for", "func", "go", "goto", "if", "import", "interface",
	"map", "package", "range", "return", "select", "struct", "switch", "type", "var",
)

// Exported Go names must start with an upper case letter.
var goExportedIdent = IdentRules{
	IsStart:            unicode.IsUpper,
	IsContinue:         isIdentContinue,
	InvalidStartPrefix: "X",
	Reserved:           goReserved,
}

var goPackageIdent = IdentRules{
	IsStart:            func(c rune) bool { return c < unicode.MaxASCII && unicode.IsLower(c) },
	IsContinue:         func(c rune) bool { return c < unicode.MaxASCII && (unicode.IsLower(c) || unicode.IsDigit(c)) },
	InvalidStartPrefix: "v",
	Reserved:           goReserved,
}

// Go exports every name in PascalCase and gives enum variants their own
// types. Versions become package names.
var Go = Rules{
	Types:             Style{Pascal, goExportedIdent},
	Fields:            Style{Pascal, goExportedIdent},
	Variants:          Style{Pascal, goExportedIdent},
	Version:           Style{Flat, goPackageIdent},
	Migration:         Style{Pascal, goExportedIdent},
	QualifiedVariants: true,
}
