package scanner

// dotHidden reports whether a base name starts with a dot, excluding
// the current-directory marker.
func dotHidden(name string) bool {
	return len(name) > 1 && name[0] == '.'
}
