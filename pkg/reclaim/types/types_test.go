package types

import (
	"errors"
	"io/fs"
	"testing"
)

func TestParseSize(t *testing.T) {
	tests := []struct {
		input   string
		want    int64
		wantErr bool
	}{
		{"100", 100, false},
		{"100B", 100, false},
		{"1KiB", KiB, false},
		{"1K", KiB, false},
		{"100MiB", 100 * MiB, false},
		{"100M", 100 * MiB, false},
		{"1.5GiB", GiB + GiB/2, false},
		{"2TiB", 2 * TiB, false},
		{" 10 MiB ", 10 * MiB, false},
		{"100mib", 100 * MiB, false},
		{"", 0, true},
		{"abc", 0, true},
		{"10XB", 0, true},
		{"-5MiB", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseSize(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseSize(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseSize(%q) = %d, want %d", tt.input, got, tt.want)
		}
	}
}

func TestFormatSize(t *testing.T) {
	tests := []struct {
		bytes int64
		want  string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{KiB, "1.0 KiB"},
		{100 * MiB, "100 MiB"},
	}

	for _, tt := range tests {
		if got := FormatSize(tt.bytes); got != tt.want {
			t.Errorf("FormatSize(%d) = %q, want %q", tt.bytes, got, tt.want)
		}
	}
}

func TestClassifyError(t *testing.T) {
	if got := ClassifyError(fs.ErrPermission); got != ErrPermission {
		t.Errorf("permission error classified as %v", got)
	}
	if got := ClassifyError(fs.ErrNotExist); got != ErrInvalidPath {
		t.Errorf("not-exist error classified as %v", got)
	}
	if got := ClassifyError(errors.New("disk on fire")); got != ErrIO {
		t.Errorf("generic error classified as %v", got)
	}
}

func TestFileEntryHelpers(t *testing.T) {
	dir := FileEntry{Path: "/a", Size: 2 * GiB, Type: TypeDirectory}
	file := FileEntry{Path: "/a/b", Size: 10, Type: TypeFile}

	if !dir.IsDir() || file.IsDir() {
		t.Error("IsDir misclassified entries")
	}
	if dir.HumanSize() != "2.0 GiB" {
		t.Errorf("HumanSize = %q", dir.HumanSize())
	}
	if TypeDirectory.String() != "directory" || TypeFile.String() != "file" {
		t.Error("EntryType String mismatch")
	}
}

func TestScanErrorMessage(t *testing.T) {
	scanErr := NewScanError("/locked", fs.ErrPermission)
	if scanErr.Kind != ErrPermission {
		t.Errorf("kind = %v", scanErr.Kind)
	}
	if scanErr.Error() == "" {
		t.Error("empty error string")
	}
}
