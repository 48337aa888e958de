// Package output provides formatters for displaying detection results
// in various formats (pretty, plain, json).
//
// The package uses a registry so the format can be selected at runtime:
//
//	formatter, err := output.Get("pretty")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	var buf bytes.Buffer
//	if err := formatter.Format(&buf, report); err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Print(buf.String())
package output

import (
	"bytes"
	"fmt"
	"sort"
	"sync"
	"time"
)

// Finding is one flagged entry prepared for display.
type Finding struct {
	// Path is the path relative to the scan root.
	Path string `json:"path" yaml:"path"`

	// Size is the entry size in bytes.
	Size int64 `json:"size" yaml:"size"`

	// SizeHuman is the human-readable size (e.g. "1.5 GiB").
	SizeHuman string `json:"size_human" yaml:"size_human"`

	// Rule is the name of the rule that flagged the entry.
	Rule string `json:"rule" yaml:"rule"`

	// Reason is the rule's human-readable explanation.
	Reason string `json:"reason" yaml:"reason"`

	// IsDir reports whether the entry is a directory.
	IsDir bool `json:"is_dir" yaml:"is_dir"`

	// Modified is the entry's last modification time.
	Modified time.Time `json:"modified" yaml:"modified"`
}

// Report is the complete output data for formatting.
type Report struct {
	// Source is the root path that was scanned.
	Source string `json:"source" yaml:"source"`

	// Findings contains the flagged entries, sorted by size descending.
	Findings []Finding `json:"findings" yaml:"findings"`

	// EntriesScanned is the number of filesystem entries examined.
	EntriesScanned int `json:"entries_scanned" yaml:"entries_scanned"`

	// Duration is the total scan time.
	Duration time.Duration `json:"duration" yaml:"duration"`

	// DiskFree is the free space on the scanned volume, in bytes.
	// Zero when unavailable.
	DiskFree uint64 `json:"disk_free,omitempty" yaml:"disk_free,omitempty"`

	// Warnings contains non-fatal scan errors.
	Warnings []string `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// TotalSize returns the sum of all finding sizes.
func (r *Report) TotalSize() int64 {
	var total int64
	for _, f := range r.Findings {
		total += f.Size
	}
	return total
}

// Formatter is the interface all output formatters implement.
type Formatter interface {
	Format(w *bytes.Buffer, r *Report) error
}

// FormatterFactory creates a new Formatter instance.
type FormatterFactory func() Formatter

// Registry manages formatter registration and lookup.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]FormatterFactory
}

// NewRegistry creates a new formatter registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]FormatterFactory)}
}

// Register adds a formatter factory, replacing any existing formatter
// with the same name.
func (r *Registry) Register(name string, factory FormatterFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// Get returns a new formatter instance by name.
func (r *Registry) Get(name string) (Formatter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("unknown formatter: %s", name)
	}
	return factory(), nil
}

// Available returns a sorted list of registered formatter names.
func (r *Registry) Available() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry is the global formatter registry.
var DefaultRegistry = NewRegistry()

// Register adds a formatter factory to the default registry.
func Register(name string, factory FormatterFactory) {
	DefaultRegistry.Register(name, factory)
}

// Get returns a new formatter instance from the default registry.
func Get(name string) (Formatter, error) {
	return DefaultRegistry.Get(name)
}

// Available returns all formatter names from the default registry.
func Available() []string {
	return DefaultRegistry.Available()
}
