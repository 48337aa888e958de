// Package types provides the core data types shared by the reclaim
// cleanup pipeline: filesystem entry records produced by the scanner,
// scan error classification, and utilities for parsing and formatting
// byte sizes.
package types

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// Size constants for binary (IEC) units.
const (
	KiB int64 = 1024
	MiB int64 = 1024 * KiB
	GiB int64 = 1024 * MiB
	TiB int64 = 1024 * GiB
)

// EntryType distinguishes files from directories in scan results.
type EntryType int

const (
	// TypeFile is a regular file.
	TypeFile EntryType = iota

	// TypeDirectory is a directory.
	TypeDirectory
)

// String returns the string representation of the entry type.
func (t EntryType) String() string {
	switch t {
	case TypeFile:
		return "file"
	case TypeDirectory:
		return "directory"
	default:
		return "unknown"
	}
}

// FileEntry represents one filesystem object observed during a scan.
// Entries are created once per scan pass and never mutated afterwards.
type FileEntry struct {
	// Path is the absolute path to the entry.
	Path string `json:"path"`

	// Size is the size in bytes. For a directory this is the recursive
	// sum of contained file sizes, not the size of the directory node.
	Size int64 `json:"size"`

	// Modified is the last modification time.
	Modified time.Time `json:"modified"`

	// Type records whether the entry is a file or a directory.
	Type EntryType `json:"type"`

	// FileID is an optional platform-specific stable identifier
	// (inode number on Unix) reserved for rename detection.
	// Zero means unknown.
	FileID uint64 `json:"file_id,omitempty"`
}

// IsDir reports whether the entry is a directory.
func (e *FileEntry) IsDir() bool {
	return e.Type == TypeDirectory
}

// HumanSize returns the entry size formatted as a human-readable string.
func (e *FileEntry) HumanSize() string {
	return FormatSize(e.Size)
}

// ErrorKind classifies a scan error.
type ErrorKind int

const (
	// ErrIO is a generic filesystem I/O failure.
	ErrIO ErrorKind = iota

	// ErrPermission is a permission-denied failure.
	ErrPermission

	// ErrInvalidPath is a path that does not exist or cannot be resolved.
	ErrInvalidPath
)

// String returns the string representation of the error kind.
func (k ErrorKind) String() string {
	switch k {
	case ErrPermission:
		return "permission"
	case ErrInvalidPath:
		return "invalid_path"
	default:
		return "io"
	}
}

// ScanError pairs a path with a classified error encountered while
// scanning. Scan errors are collected as data; they never abort a scan.
type ScanError struct {
	// Path is the file or directory where the error occurred.
	Path string `json:"path"`

	// Kind is the error classification.
	Kind ErrorKind `json:"kind"`

	// Message is the underlying error text.
	Message string `json:"message"`
}

// Error implements the error interface.
func (e ScanError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// ClassifyError maps an underlying filesystem error to an ErrorKind.
func ClassifyError(err error) ErrorKind {
	switch {
	case errors.Is(err, fs.ErrPermission) || errors.Is(err, os.ErrPermission):
		return ErrPermission
	case errors.Is(err, fs.ErrNotExist) || errors.Is(err, os.ErrNotExist):
		return ErrInvalidPath
	default:
		return ErrIO
	}
}

// NewScanError builds a classified ScanError from a raw error.
func NewScanError(path string, err error) ScanError {
	return ScanError{
		Path:    path,
		Kind:    ClassifyError(err),
		Message: err.Error(),
	}
}

// sizePattern matches size strings like "100M", "2G", "500K", "1.5GB", etc.
var sizePattern = regexp.MustCompile(`(?i)^\s*([0-9]+(?:\.[0-9]+)?)\s*([KMGT]?(?:i?B)?)\s*$`)

// ErrInvalidSize indicates that the size string could not be parsed.
var ErrInvalidSize = errors.New("invalid size format")

// ErrNegativeSize indicates that a negative size value was provided.
var ErrNegativeSize = errors.New("size cannot be negative")

// ParseSize parses a human-readable size string and returns the size in
// bytes. It supports plain bytes ("1024"), byte suffixes ("512B"), and
// K/M/G/T units with optional B or iB suffixes ("100K", "50MiB", "2GB").
// Decimal values are supported and truncated to the nearest byte.
//
// Returns ErrInvalidSize if the format is not recognized and
// ErrNegativeSize if the value is negative.
func ParseSize(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty string", ErrInvalidSize)
	}

	if strings.HasPrefix(s, "-") {
		return 0, ErrNegativeSize
	}

	matches := sizePattern.FindStringSubmatch(s)
	if matches == nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSize, s)
	}

	value, err := strconv.ParseFloat(matches[1], 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSize, s)
	}

	suffix := strings.ToUpper(matches[2])
	suffix = strings.TrimSuffix(suffix, "IB")
	suffix = strings.TrimSuffix(suffix, "B")

	var multiplier int64
	switch suffix {
	case "":
		multiplier = 1
	case "K":
		multiplier = KiB
	case "M":
		multiplier = MiB
	case "G":
		multiplier = GiB
	case "T":
		multiplier = TiB
	default:
		return 0, fmt.Errorf("%w: unknown suffix %q", ErrInvalidSize, suffix)
	}

	return int64(value * float64(multiplier)), nil
}

// FormatSize converts a size in bytes to a human-readable string using
// binary (IEC) units for consistency with common filesystem tools.
func FormatSize(bytes int64) string {
	return humanize.IBytes(uint64(bytes))
}
