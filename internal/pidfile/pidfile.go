// Package pidfile provides single-instance locking for long-running
// modes. A pidfile holds the owner's PID; acquisition fails while the
// recorded process is still alive and self-heals when it is not.
package pidfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ErrAlreadyRunning indicates another live process holds the pidfile.
var ErrAlreadyRunning = errors.New("another instance is already running")

const filePerm = 0o644

// PidFile is an acquired single-instance lock.
type PidFile struct {
	path string
	pid  int
}

// Acquire claims the pidfile at path for the current process. A stale
// file left by a dead process is replaced silently.
func Acquire(path string) (*PidFile, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("create pidfile directory: %w", err)
	}

	if existing, err := readPid(path); err == nil {
		if processAlive(existing) {
			return nil, fmt.Errorf("%w: pid %d (pidfile %s)", ErrAlreadyRunning, existing, path)
		}
		// Stale entry from a previous run.
		_ = os.Remove(path)
	}

	pid := os.Getpid()
	if err := os.WriteFile(path, []byte(strconv.Itoa(pid)+"\n"), filePerm); err != nil {
		return nil, fmt.Errorf("write pidfile: %w", err)
	}
	return &PidFile{path: path, pid: pid}, nil
}

// Path returns the pidfile location.
func (p *PidFile) Path() string { return p.path }

// Release removes the pidfile if this process still owns it.
func (p *PidFile) Release() error {
	current, err := readPid(p.path)
	if err != nil {
		return nil
	}
	if current != p.pid {
		// Someone else took over; leave their file alone.
		return nil
	}
	return os.Remove(p.path)
}

// ReadRunning returns the live PID recorded at path, or 0 when no
// instance is running.
func ReadRunning(path string) int {
	pid, err := readPid(path)
	if err != nil || !processAlive(pid) {
		return 0
	}
	return pid
}

func readPid(path string) (int, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- fixed runtime path
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, fmt.Errorf("malformed pidfile %s", path)
	}
	return pid, nil
}
