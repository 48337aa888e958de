package output

import "github.com/shirou/gopsutil/v4/disk"

// DiskFree returns the free space in bytes on the volume containing
// path. It returns 0 when usage cannot be determined; the report simply
// omits the free-space line in that case.
func DiskFree(path string) uint64 {
	usage, err := disk.Usage(path)
	if err != nil {
		return 0
	}
	return usage.Free
}
