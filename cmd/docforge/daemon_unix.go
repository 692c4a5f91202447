//go:build !windows

package main

import (
	"fmt"
	"os"
	"os/exec"
	"syscall"
)

// daemonEnvMarker distinguishes the detached child from the launching
// parent across the re-exec.
const daemonEnvMarker = "DOCFORGE_DAEMON"

// daemonChild reports whether this process is the detached worker.
func daemonChild() bool {
	return os.Getenv(daemonEnvMarker) == "1"
}

// spawnDaemon re-executes the current binary detached from the
// terminal: its own session, stdio on /dev/null. Returns the child PID.
func spawnDaemon() (int, error) {
	exe, err := os.Executable()
	if err != nil {
		return 0, fmt.Errorf("resolving executable: %w", err)
	}

	devnull, err := os.OpenFile(os.DevNull, os.O_RDWR, 0)
	if err != nil {
		return 0, fmt.Errorf("opening %s: %w", os.DevNull, err)
	}
	defer devnull.Close()

	cmd := exec.Command(exe, os.Args[1:]...) // #nosec G204 -- re-exec of self
	cmd.Env = append(os.Environ(), daemonEnvMarker+"=1")
	cmd.Stdin = devnull
	cmd.Stdout = devnull
	cmd.Stderr = devnull
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}

	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("starting daemon: %w", err)
	}
	pid := cmd.Process.Pid
	// The child outlives the parent; release the handle without waiting.
	_ = cmd.Process.Release()
	return pid, nil
}
