//go:build !windows

package scanner

// isHidden reports whether the entry is hidden by the dot convention.
func isHidden(path, name string) bool {
	return dotHidden(name)
}
