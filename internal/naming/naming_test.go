package naming

import (
	"slices"
	"strings"
	"testing"

	"github.com/versed/versed/internal/ast"
	"github.com/versed/versed/internal/diagnostic"
	"github.com/versed/versed/internal/resolve"
	"github.com/versed/versed/internal/testutil"
)

func TestWords(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"user", []string{"user"}},
		{"first name", []string{"first", "name"}},
		{"phone_number", []string{"phone", "number"}},
		{"fooBar", []string{"foo", "Bar"}},
		{"HTTPServer", []string{"HTTP", "Server"}},
		{"v1Beta", []string{"v1", "Beta"}},
		{"--x--", []string{"x"}},
		{"", nil},
	}
	for _, tt := range tests {
		if got := Words(tt.in); !slices.Equal(got, tt.want) {
			t.Errorf("Words(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCase_Convert(t *testing.T) {
	tests := []struct {
		c    Case
		in   string
		want string
	}{
		{Pascal, "first name", "FirstName"},
		{Pascal, "HTTPServer", "HttpServer"},
		{Camel, "first name", "firstName"},
		{Snake, "firstName", "first_name"},
		{Kebab, "phone_number", "phone-number"},
		{ScreamingSnake, "max size", "MAX_SIZE"},
		{Flat, "Version 2", "version2"},
	}
	for _, tt := range tests {
		if got := tt.c.Convert(tt.in); got != tt.want {
			t.Errorf("%v.Convert(%q) = %q, want %q", tt.c, tt.in, got, tt.want)
		}
	}
}

func TestIdentRules_Make(t *testing.T) {
	tests := []struct {
		name  string
		rules IdentRules
		in    string
		want  string
	}{
		{"rust keyword", rustIdent, "type", "r#type"},
		{"rust always reserved", rustIdent, "self", "self_"},
		{"rust Self", rustIdent, "Self", "Self_"},
		{"digit start", rustIdent, "2fa", "_2fa"},
		{"empty", tsIdent, "", "_"},
		{"rust underscore", rustIdent, "", "__"},
		{"ts keyword", tsIdent, "delete", "delete_"},
		{"ts builtin type", tsTypeIdent, "string", "string_"},
		{"ts property keyword", tsPropertyIdent, "delete", "delete"},
		{"go keyword", goPackageIdent, "type", "type_"},
		{"go unexported start", goExportedIdent, "2fa", "X2fa"},
		{"go package digit", goPackageIdent, "2", "v2"},
		{"drops invalid characters", rustModIdent, "café", "caf"},
		{"string literal accepts anything", IdentRules{}, "phone-number", "phone-number"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.rules.Make(tt.in); got != tt.want {
				t.Errorf("Make(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestScope_Claim(t *testing.T) {
	s := NewScope()
	got := []string{s.Claim("a"), s.Claim("a"), s.Claim("a"), s.Claim("a2"), s.Claim("b")}
	want := []string{"a", "a2", "a3", "a22", "b"}
	if !slices.Equal(got, want) {
		t.Errorf("Claim sequence = %v, want %v", got, want)
	}
}

const schema = `version "Version 2";
User = struct {
  "first name": string,
  address: struct { line: string },
  tags: [struct { t: int }],
  type: int,
  Type: int,
  contact: Contact,
};
UserAddress = int;
Contact = enum { email: string, phone_number: int };
`

func TestName(t *testing.T) {
	ts := testutil.MustParse(t, schema)
	res := resolve.Resolve(ts, diagnostic.NewCollector(false, false))

	tests := []struct {
		name    string
		rules   Rules
		version string
		types   map[string]string // path -> type name
		members map[string]string // path -> member name
		migs    map[string]string // path -> migration name
	}{
		{
			name:    "rust",
			rules:   Rust,
			version: "version_2",
			types: map[string]string{
				"User":            "User",
				"UserAddress":     "UserAddress",
				"User.address":    "UserAddress2",
				"User.tags.[]":    "UserTagsElement",
				"User.contact":    "Contact",
				"User.tags":       "",
				"User.first name": "",
				"Contact":         "Contact",
			},
			members: map[string]string{
				"User.first name":      "first_name",
				"User.type":            "r#type",
				"User.Type":            "r#type2",
				"Contact.email":        "Email",
				"Contact.phone_number": "PhoneNumber",
			},
			migs: map[string]string{
				"User":         "user",
				"User.address": "user_address",
				"UserAddress":  "user_address2",
				"User.tags.[]": "user_tags_element",
				"User.type":    "user_type",
				"User.Type":    "user_type2",
			},
		},
		{
			name:    "typescript",
			rules:   TypeScript,
			version: "version_2",
			types: map[string]string{
				"User.address": "UserAddress2",
			},
			members: map[string]string{
				"User.first name":      "firstName",
				"User.type":            "type",
				"User.Type":            "type2",
				"Contact.phone_number": "phone-number",
			},
			migs: map[string]string{
				"User.address": "UserAddress",
			},
		},
		{
			name:    "go",
			rules:   Go,
			version: "version2",
			types: map[string]string{
				"User.address": "UserAddress2",
				"User.tags.[]": "UserTagsElement",
			},
			members: map[string]string{
				"User.first name": "FirstName",
				"User.type":       "Type",
				"User.Type":       "Type2",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			names := Name(ts, res, tt.rules)
			if names.Version != tt.version {
				t.Errorf("Version = %q, want %q", names.Version, tt.version)
			}
			for path, want := range tt.types {
				if got := names.Type(testutil.Find(t, ts, path)); got != want {
					t.Errorf("type name of %s = %q, want %q", path, got, want)
				}
			}
			for path, want := range tt.members {
				if got := names.Member(findMember(t, ts, path)); got != want {
					t.Errorf("member name of %s = %q, want %q", path, got, want)
				}
			}
			for path, want := range tt.migs {
				if got := names.Migration.Of(testutil.Find(t, ts, path)); got != want {
					t.Errorf("migration name of %s = %q, want %q", path, got, want)
				}
			}
		})
	}
}

func TestName_QualifiedVariants(t *testing.T) {
	ts := testutil.MustParse(t, schema)
	res := resolve.Resolve(ts, diagnostic.NewCollector(false, false))
	names := Name(ts, res, Go)

	if got := names.Variants.Of(findMember(t, ts, "Contact.email")); got != "ContactEmail" {
		t.Errorf("variant type = %q, want ContactEmail", got)
	}
	if got := names.Variants.Of(findMember(t, ts, "Contact.phone_number")); got != "ContactPhoneNumber" {
		t.Errorf("variant type = %q, want ContactPhoneNumber", got)
	}
	if got := Name(ts, res, Rust).Variants.Of(findMember(t, ts, "Contact.email")); got != "" {
		t.Errorf("rust has no variant types, got %q", got)
	}
}

func findMember(t *testing.T, ts *ast.TypeSet, path string) *ast.Member {
	t.Helper()
	i := strings.LastIndex(path, ".")
	parent := testutil.Find(t, ts, path[:i])
	for _, m := range ast.Members(parent) {
		if m.Name == path[i+1:] {
			return m
		}
	}
	t.Fatalf("no member %s", path)
	return nil
}
