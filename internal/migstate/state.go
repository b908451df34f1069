// Package migstate records a migration in progress.
//
// "versed migration begin FILE" copies FILE to FILE.old and numbers every
// type of FILE. The state file written next to it remembers which numbers
// the schema already carried, so that "versed migration finish" strips
// only the numbers it added. The state is conservative: when it is
// missing, unreadable, from another format version, or was recorded for
// different .old contents, Load reports a miss and finish strips every
// number.
package migstate

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"

	"github.com/versed/versed/internal/rewrite"
)

// SchemaVersion is bumped when the state format changes.
const SchemaVersion = 1

// State is the on-disk record of a migration in progress.
type State struct {
	// V is the format version. Must match SchemaVersion or the state is
	// ignored.
	V int `json:"v"`

	// OldHash is the SHA-256 hex digest of the .old copy.
	OldHash string `json:"oldHash"`

	// Kept lists the numbers present before the migration began, sorted.
	Kept []uint64 `json:"kept"`

	// Assigned lists the numbers added by begin, sorted.
	Assigned []uint64 `json:"assigned"`

	Began time.Time `json:"began"`
}

// Path returns the state file of schema.
func Path(schema string) string { return schema + ".versed-state.json" }

// OldPath returns the copy of schema taken when the migration began.
func OldPath(schema string) string { return schema + ".old" }

// New creates a state for the given .old contents.
func New(oldSource string, kept, assigned []uint64) *State {
	kept, assigned = slices.Clone(kept), slices.Clone(assigned)
	slices.Sort(kept)
	slices.Sort(assigned)
	return &State{
		V:        SchemaVersion,
		OldHash:  Hash([]byte(oldSource)),
		Kept:     kept,
		Assigned: assigned,
		Began:    time.Now().UTC().Truncate(time.Second),
	}
}

// Keep reports whether number n was present before the migration began.
func (s *State) Keep(n uint64) bool {
	if s == nil {
		return false
	}
	_, found := slices.BinarySearch(s.Kept, n)
	return found
}

// Load reads the state of a migration whose .old copy is at oldPath.
// Returns nil on a miss: no file, invalid JSON, another format version,
// or a hash that does not match the .old copy.
func Load(path, oldPath string) *State {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}

	var s State
	if err := json.Unmarshal(data, &s); err != nil {
		return nil
	}
	if s.V != SchemaVersion || s.OldHash != HashFile(oldPath) {
		return nil
	}
	if !slices.IsSorted(s.Kept) {
		slices.Sort(s.Kept)
	}
	return &s
}

// Save writes the state atomically.
func Save(path string, s *State) error {
	data, err := json.Marshal(s, jsontext.WithIndent("  "))
	if err != nil {
		return fmt.Errorf("marshaling migration state: %w", err)
	}
	if err := rewrite.WriteFile(path, string(data)+"\n"); err != nil {
		return fmt.Errorf("writing migration state %s: %w", path, err)
	}
	return nil
}

// Delete removes the state file. Errors are ignored (the file may not
// exist).
func Delete(path string) {
	os.Remove(path)
}

// Hash returns the SHA-256 hex digest of data.
func Hash(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// HashFile computes the SHA-256 hex digest of a file's contents.
// Returns an empty string if the file can't be read.
func HashFile(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return Hash(data)
}
