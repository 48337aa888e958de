//go:build unix

package scanner

import (
	"os"
	"syscall"
)

// fileID returns the inode number as a stable identifier for rename
// detection. Zero when unavailable.
func fileID(info os.FileInfo) uint64 {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return 0
	}
	return uint64(stat.Ino)
}
