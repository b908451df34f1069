package codegen

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/versed/versed/internal/migration"
	"github.com/versed/versed/internal/naming"
	"github.com/versed/versed/internal/rewrite"
)

// Target is a language the schema can be printed in.
type Target interface {
	// Name is the command name of the target ("rust", "typescript", "go").
	Name() string

	// Rules are the naming rules the sides passed to the target must be
	// prepared with.
	Rules() naming.Rules

	// Types prints the declarations of one schema as a single file.
	Types(s *migration.Side) (string, error)

	// Migrations prints the upgrade and downgrade functions of a plan as a
	// single file.
	Migrations(p *migration.Plan) (string, error)

	// TypesOutput and MigrationsOutput lay the same content out in an
	// output directory.
	TypesOutput(s *migration.Side) (*Output, error)
	MigrationsOutput(p *migration.Plan) (*Output, error)
}

// File is a generated file. Path is relative to the output directory.
type File struct {
	Path    string
	Content string
}

// Append adds Line to the index file at Path unless it is already there.
type Append struct {
	Path string
	Line string
}

// Output is the set of changes a target makes to an output directory.
type Output struct {
	Files   []File
	Appends []Append
}

// Written describes one file touched by Output.Write.
type Written struct {
	Path     string
	Size     int
	Appended bool
}

// ErrExists is returned by Output.Write when a generated file already
// exists and overwriting was not requested.
var ErrExists = errors.New("file already exists")

// Write applies o below dir. Generated files must not exist yet unless
// overwrite is set; all of them are checked before anything is written.
func (o *Output) Write(dir string, overwrite bool) ([]Written, error) {
	if !overwrite {
		for _, f := range o.Files {
			path := filepath.Join(dir, f.Path)
			if _, err := os.Stat(path); err == nil {
				return nil, fmt.Errorf("%s: %w (use -force to replace it)", path, ErrExists)
			}
		}
	}

	var written []Written
	for _, f := range o.Files {
		path := filepath.Join(dir, f.Path)
		if err := rewrite.WriteFile(path, f.Content); err != nil {
			return written, fmt.Errorf("failed to write %s: %w", path, err)
		}
		written = append(written, Written{Path: path, Size: len(f.Content)})
	}
	for _, a := range o.Appends {
		path := filepath.Join(dir, a.Path)
		added, err := AppendLine(path, a.Line)
		if err != nil {
			return written, fmt.Errorf("failed to update %s: %w", path, err)
		}
		if added {
			written = append(written, Written{Path: path, Size: len(a.Line) + 1, Appended: true})
		}
	}
	return written, nil
}

// AppendLine appends line to the file at path, creating it if needed. It
// inserts a newline first when the file does not end with one and does
// nothing when a line equal to line is already present.
func AppendLine(path, line string) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return false, err
	}
	content := string(data)
	for _, l := range strings.Split(content, "\n") {
		if strings.TrimRight(l, "\r") == line {
			return false, nil
		}
	}
	if content != "" && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	return true, rewrite.WriteFile(path, content+line+"\n")
}
