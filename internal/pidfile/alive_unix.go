//go:build !windows

package pidfile

import (
	"errors"
	"syscall"
)

// processAlive reports whether pid refers to a live process. Signal 0
// performs the existence check without delivering anything; EPERM still
// means the process exists.
func processAlive(pid int) bool {
	err := syscall.Kill(pid, 0)
	if err == nil {
		return true
	}
	return errors.Is(err, syscall.EPERM)
}
