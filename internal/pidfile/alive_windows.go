//go:build windows

package pidfile

import "os"

// processAlive reports whether pid refers to a live process. On Windows
// FindProcess fails only for invalid PIDs, so a successful lookup is
// treated as alive. Stale pidfiles may therefore persist until the PID
// is recycled, which only delays self-healing.
func processAlive(pid int) bool {
	_, err := os.FindProcess(pid)
	return err == nil
}
