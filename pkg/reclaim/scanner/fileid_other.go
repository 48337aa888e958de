//go:build !unix

package scanner

import (
	"os"
)

// fileID returns a stable identifier for rename detection.
// Not available on this platform.
func fileID(info os.FileInfo) uint64 {
	return 0
}
