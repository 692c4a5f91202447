package main

import (
	"errors"

	docforge "github.com/alnah/go-docforge"
	"github.com/alnah/go-docforge/internal/pidfile"
)

// Exit codes for the docforge CLI.
const (
	ExitSuccess = 0 // all processed files succeeded, or no work found
	ExitSetup   = 1 // setup failure: bad config, unwritable directories
	ExitFailed  = 2 // at least one file failed
	ExitDaemon  = 3 // daemon failed to start, e.g. already running
)

// exitCodeFor maps a setup-level error to an exit code. Per-file
// failures never travel as errors; they are counted in the batch
// summary and mapped via summaryExitCode.
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}
	if errors.Is(err, pidfile.ErrAlreadyRunning) {
		return ExitDaemon
	}
	return ExitSetup
}

// summaryExitCode maps a batch summary to an exit code.
func summaryExitCode(s docforge.Summary) int {
	if s.Failed > 0 {
		return ExitFailed
	}
	return ExitSuccess
}
