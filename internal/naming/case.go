package naming

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Case is an identifier casing convention.
type Case int

const (
	Pascal         Case = iota // PascalCase
	Camel                      // camelCase
	Snake                      // snake_case
	Kebab                      // kebab-case
	ScreamingSnake             // SCREAMING_SNAKE
	Flat                       // flatcase
)

func (c Case) String() string {
	switch c {
	case Pascal:
		return "PascalCase"
	case Camel:
		return "camelCase"
	case Snake:
		return "snake_case"
	case Kebab:
		return "kebab-case"
	case ScreamingSnake:
		return "SCREAMING_SNAKE_CASE"
	case Flat:
		return "flatcase"
	default:
		return "unknown"
	}
}

// Words splits s into words at punctuation, whitespace, lower-to-upper
// transitions ("fooBar") and the end of acronyms ("HTTPServer").
func Words(s string) []string {
	var (
		words   []string
		current []rune
	)
	flush := func() {
		if len(current) > 0 {
			words = append(words, string(current))
			current = current[:0]
		}
	}

	runes := []rune(s)
	for i, r := range runes {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			flush()
			continue
		}
		if len(current) > 0 && unicode.IsUpper(r) {
			prev := current[len(current)-1]
			lowerToUpper := unicode.IsLower(prev) || unicode.IsDigit(prev)
			acronymEnd := unicode.IsUpper(prev) && i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if lowerToUpper || acronymEnd {
				flush()
			}
		}
		current = append(current, r)
	}
	flush()
	return words
}

// Join combines words according to c.
func (c Case) Join(words []string) string {
	lower := cases.Lower(language.Und)
	title := cases.Title(language.Und)

	parts := make([]string, len(words))
	for i, w := range words {
		switch c {
		case Pascal:
			parts[i] = title.String(w)
		case Camel:
			if i == 0 {
				parts[i] = lower.String(w)
			} else {
				parts[i] = title.String(w)
			}
		case ScreamingSnake:
			parts[i] = cases.Upper(language.Und).String(w)
		default:
			parts[i] = lower.String(w)
		}
	}

	switch c {
	case Snake, ScreamingSnake:
		return strings.Join(parts, "_")
	case Kebab:
		return strings.Join(parts, "-")
	default:
		return strings.Join(parts, "")
	}
}

// Convert re-cases s.
func (c Case) Convert(s string) string {
	return c.Join(Words(s))
}
