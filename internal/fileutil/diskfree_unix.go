//go:build !windows

package fileutil

import (
	"math"
	"syscall"
)

// FreeBytes returns the free disk space available at path. When the
// filesystem cannot be queried it reports the maximum, which disables
// the low-disk preflight gate rather than failing every job.
func FreeBytes(path string) uint64 {
	var st syscall.Statfs_t
	if err := syscall.Statfs(path, &st); err != nil {
		return math.MaxUint64
	}
	return st.Bavail * uint64(st.Bsize) //nolint:unconvert // Bsize is int64 on some platforms
}
