package golang

import (
	"errors"
	"strings"
	"testing"

	"github.com/versed/versed/internal/codegen/codegentest"
)

// normalize collapses whitespace so that checks do not depend on the
// alignment gofmt chooses.
func normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func assertContains(t *testing.T, src string, want []string) {
	t.Helper()
	norm := normalize(src)
	for _, w := range want {
		if !strings.Contains(norm, normalize(w)) {
			t.Errorf("output missing %q:\n%s", w, src)
		}
	}
}

func TestTypes(t *testing.T) {
	target := New(Options{})
	src, err := target.Types(codegentest.Side(t, target, `version v1;
User = struct {
  "first name": string,
  address: struct { city: string },
  tags: [string],
  contact: Contact,
};
Contact = enum { email: string, none };
Id = int;
Tree = [Tree];
Node = struct { next: Node };`))
	if err != nil {
		t.Fatal(err)
	}
	assertContains(t, src, []string{
		`// Code generated by versed from version "v1". DO NOT EDIT.`,
		"package v1",
		`import "encoding/json"`,
		"type User struct {\n" +
			"FirstName string `json:\"firstName\"`\n" +
			"Address UserAddress `json:\"address\"`\n" +
			"Tags []string `json:\"tags\"`\n" +
			"Contact Contact `json:\"contact\"`\n" +
			"}",
		"type UserAddress struct {\nCity string `json:\"city\"`\n}",
		"type Contact interface {\nisContact()\n}",
		"type ContactEmail struct {\nValue string\n}",
		"func (ContactEmail) isContact() {}",
		`return json.Marshal(variant[string]{Type: "email", Value: v.Value})`,
		"type ContactNone struct {\nValue struct{}\n}",
		`return json.Marshal(variant[any]{Type: "none"})`,
		"type Id = int64",
		"type Tree []Tree",
		"Next *Node `json:\"next\"`",
		"type variant[T any] struct {\nType string `json:\"type\"`\nValue T `json:\"value\"`\n}",
	})
}

func TestTypes_WithoutEnums(t *testing.T) {
	target := New(Options{})
	src, err := target.Types(codegentest.Side(t, target, `version "Version 2"; A = struct { n: int };`))
	if err != nil {
		t.Fatal(err)
	}
	assertContains(t, src, []string{"package version2", "type A struct {"})
	if strings.Contains(src, "encoding/json") || strings.Contains(src, "variant[") {
		t.Errorf("enum support emitted for a schema without enums:\n%s", src)
	}
}

func TestMigrations(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []string
	}{
		{
			name: "fields and variants",
			src: `version v1;
User = #1 struct { name: #2 string, nick: #3 string, contact: #4 Contact };
Contact = #5 enum { email: #6 string, phone: #7 int };
version v2;
User = #1 struct { name: #2 string, contact: #4 Contact, age: int };
Contact = #5 enum { email: #6 string };`,
			want: []string{
				"package v2",
				`v1 "example.com/app/schema/v1"`,
				`v2 "example.com/app/schema/v2"`,
				"func UpgradeUser(value v1.User) v2.User {\n" +
					"return v2.User{\n" +
					"Name: value.Name,\n" +
					"Contact: UpgradeContact(value.Contact),\n" +
					`Age: todo[int64]("the field 'age' has no counterpart"),` + "\n" +
					"}\n}",
				"func UpgradeContact(value v1.Contact) v2.Contact {\n" +
					"return func() v2.Contact {\n" +
					"switch x := value.(type) {\n" +
					"case v1.ContactEmail:\n" +
					"return v2.ContactEmail{Value: x.Value}\n" +
					"case v1.ContactPhone:\n" +
					`return todo[v2.Contact]("the variant 'phone' has no counterpart")` + "\n" +
					"}\n" +
					`panic(fmt.Sprintf("unknown variant %T", value))` + "\n" +
					"}()\n}",
				"func UpgradeContactEmail(value string) string {\nreturn value\n}",
				"func DowngradeUser(value v2.User) v1.User {",
				`Nick: todo[string]("the field 'nick' has no counterpart"),`,
				"func todo[T any](message string) T {",
				"func ptr[T any](v T) *T { return &v }",
			},
		},
		{
			name: "defined slice types",
			src:  `version v1; Tree = #1 [#2 Tree]; version v2; Tree = #1 [#2 Tree];`,
			want: []string{
				"return v2.Tree(func() []v2.Tree {",
				"out := make([]v2.Tree, len([]v1.Tree(value)))",
				"for i, x := range []v1.Tree(value) {",
				"out[i] = UpgradeTree(x)",
				"func UpgradeTreeElement(value v1.Tree) v2.Tree {",
			},
		},
		{
			name: "pointers",
			src: `version v1; Node = #1 struct { next: #2 Node };
			      version v2; Node = #1 struct { next: #2 Node };`,
			want: []string{
				"Next: ptr(UpgradeNode(*value.Next)),",
				"func UpgradeNodeNext(value *v1.Node) *v2.Node {\nreturn ptr(UpgradeNode(*value))\n}",
			},
		},
		{
			name: "unread variants",
			src:  `version v1; E = #1 enum { a: #2 int }; version v2; E = #1 enum { b: #3 int };`,
			want: []string{
				"switch value.(type) {",
				`return todo[v2.E]("the variant 'a' has no counterpart")`,
			},
		},
		{
			name: "unread elements",
			src:  `version v1; L = #1 [#2 int]; version v2; L = #1 [#2 string];`,
			want: []string{
				"for i := range value {",
				`out[i] = todo[string]("changed from int to string")`,
			},
		},
		{
			name: "empty enum",
			src:  `version v1; E = #1 enum {}; version v2; E = #1 enum {};`,
			want: []string{"func UpgradeE(value v1.E) v2.E {\nreturn nil\n}"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := New(Options{ImportPath: "example.com/app/schema/"})
			src, err := target.Migrations(codegentest.Plan(t, target, tt.src))
			if err != nil {
				t.Fatal(err)
			}
			assertContains(t, src, tt.want)
		})
	}
}

func TestMigrations_Errors(t *testing.T) {
	tests := []struct {
		name       string
		importPath string
		src        string
		want       string
	}{
		{
			name: "no import path",
			src:  `version v1; A = int; version v2; A = int;`,
			want: ErrNoImportPath.Error(),
		},
		{
			name:       "same package",
			importPath: "example.com/schema",
			src:        `version V1; A = int; version v1; A = int;`,
			want:       "same Go package",
		},
		{
			name:       "shadowed helper",
			importPath: "example.com/schema",
			src:        `version fmt; A = int; version v2; A = int;`,
			want:       "cannot be named",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := New(Options{ImportPath: tt.importPath})
			_, err := target.Migrations(codegentest.Plan(t, target, tt.src))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want %q", err, tt.want)
			}
		})
	}

	target := New(Options{})
	_, err := target.MigrationsOutput(codegentest.Plan(t, target, `version v1; A = int; version v2; A = int;`))
	if !errors.Is(err, ErrNoImportPath) {
		t.Errorf("MigrationsOutput err = %v, want ErrNoImportPath", err)
	}
}

func TestOutputs(t *testing.T) {
	target := New(Options{ImportPath: "example.com/schema"})
	types, err := target.TypesOutput(codegentest.Side(t, target, `version v1; A = int;`))
	if err != nil {
		t.Fatal(err)
	}
	if types.Files[0].Path != "v1/types.go" || len(types.Appends) != 0 {
		t.Errorf("types output = %+v", types)
	}

	migs, err := target.MigrationsOutput(codegentest.Plan(t, target, `version v1; A = int; version v2; A = int;`))
	if err != nil {
		t.Fatal(err)
	}
	if migs.Files[0].Path != "migrations/v2/migrations.go" {
		t.Errorf("migrations output = %+v", migs)
	}
}
