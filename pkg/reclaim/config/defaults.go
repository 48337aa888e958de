package config

import "runtime"

// Default configuration values.
const (
	// DefaultPath is scanned when no path argument is given.
	DefaultPath = "."

	// DefaultSizeThreshold is the built-in size rule's threshold.
	DefaultSizeThreshold = "100MiB"

	// DefaultBatchSize is the parallel execution batch size.
	DefaultBatchSize = 100

	// DefaultRetentionDays is how long history records are kept.
	DefaultRetentionDays = 90
)

// DefaultWorkers returns the default worker pool size.
func DefaultWorkers() int {
	return runtime.NumCPU()
}
