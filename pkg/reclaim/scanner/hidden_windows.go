//go:build windows

package scanner

import (
	"golang.org/x/sys/windows"
)

// isHidden reports whether the entry carries the native hidden
// attribute. Falls back to the dot convention if attributes cannot
// be read.
func isHidden(path, name string) bool {
	p, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return dotHidden(name)
	}

	attrs, err := windows.GetFileAttributes(p)
	if err != nil {
		return dotHidden(name)
	}

	return attrs&windows.FILE_ATTRIBUTE_HIDDEN != 0
}
