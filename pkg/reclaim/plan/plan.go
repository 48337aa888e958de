// Package plan converts detections into a persistable cleanup plan,
// writes it with atomic replace semantics, and reads it back. Plans
// are YAML documents a user may hand-edit between creation and use;
// the system never deletes a plan file.
package plan

import (
	"errors"
	"fmt"
	"time"
)

// Version is the plan format version written to new plans.
const Version = "1.0"

// Sentinel represents the base path itself in an entry path, keeping
// the format unambiguous where a relative path would be empty.
const Sentinel = "."

// Action is the disposition assigned to a plan entry. Only Delete
// entries are ever acted on; Keep and Review document intent.
type Action string

const (
	// ActionDelete marks an entry for removal.
	ActionDelete Action = "delete"

	// ActionKeep marks an entry to be left alone.
	ActionKeep Action = "keep"

	// ActionReview marks an entry for manual review before deciding.
	ActionReview Action = "review"
)

// Valid reports whether the action is one of the known dispositions.
func (a Action) Valid() bool {
	switch a {
	case ActionDelete, ActionKeep, ActionReview:
		return true
	}
	return false
}

// Entry is a single item in a cleanup plan.
type Entry struct {
	// Path is relative to the plan's base path, or Sentinel when the
	// entry is the base path itself. Never empty.
	Path string `yaml:"path"`

	// Size is the recorded size in bytes at plan creation.
	Size int64 `yaml:"size"`

	// Modified is the recorded modification time in RFC 3339 form.
	Modified string `yaml:"modified"`

	// Action is the disposition.
	Action Action `yaml:"action"`

	// RuleName names the detection rule that flagged the entry.
	RuleName string `yaml:"rule_name"`

	// Reason explains why the entry was flagged.
	Reason string `yaml:"reason"`
}

// ModifiedTime parses the recorded modification time.
func (e *Entry) ModifiedTime() (time.Time, error) {
	t, err := time.Parse(time.RFC3339, e.Modified)
	if err != nil {
		return time.Time{}, fmt.Errorf("entry %s: %w", e.Path, err)
	}
	return t, nil
}

// Plan is a persistable cleanup plan.
type Plan struct {
	// Version is the plan format version.
	Version string `yaml:"version"`

	// CreatedAt is when the plan was generated.
	CreatedAt time.Time `yaml:"created_at"`

	// BasePath is the absolute directory that was scanned.
	BasePath string `yaml:"base_path"`

	// Entries is the ordered list of cleanup entries.
	Entries []Entry `yaml:"entries"`
}

// New creates an empty plan for the given base path.
func New(basePath string) *Plan {
	return &Plan{
		Version:   Version,
		CreatedAt: time.Now().UTC(),
		BasePath:  basePath,
	}
}

// TotalSize returns the sum of all entry sizes in bytes.
func (p *Plan) TotalSize() int64 {
	var total int64
	for _, e := range p.Entries {
		total += e.Size
	}
	return total
}

// CountByAction returns how many entries carry the given action.
func (p *Plan) CountByAction(action Action) int {
	n := 0
	for _, e := range p.Entries {
		if e.Action == action {
			n++
		}
	}
	return n
}

// DeleteSize returns the sum of sizes over Delete entries only.
func (p *Plan) DeleteSize() int64 {
	var total int64
	for _, e := range p.Entries {
		if e.Action == ActionDelete {
			total += e.Size
		}
	}
	return total
}

// ErrEmptyBasePath and ErrEmptyEntryPath are validation failures
// reported before any plan I/O occurs.
var (
	ErrEmptyBasePath  = errors.New("plan base path cannot be empty")
	ErrEmptyEntryPath = errors.New("plan entry path cannot be empty")
)

// Validate checks the plan's structural invariants.
func (p *Plan) Validate() error {
	if p.BasePath == "" {
		return ErrEmptyBasePath
	}
	for i, e := range p.Entries {
		if e.Path == "" {
			return fmt.Errorf("%w: entry %d", ErrEmptyEntryPath, i)
		}
	}
	return nil
}
