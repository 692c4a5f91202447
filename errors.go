package docforge

import "errors"

// Sentinel errors for pipeline operations.
var (
	// Setup errors abort before any work starts.
	ErrSourceNotFound    = errors.New("source file not found")
	ErrUnsupportedFormat = errors.New("unsupported output format")
	ErrOutputDirCreate   = errors.New("cannot prepare output directory")

	// Preflight errors fail a job without consuming strategy attempts.
	ErrPandocNotFound = errors.New("pandoc binary not found")
	ErrLowDiskSpace   = errors.New("insufficient free disk space")

	// Per-attempt errors.
	ErrRunTimeout = errors.New("command timed out")
	ErrNoArtifact = errors.New("renderer reported success but artifact is missing")

	// Terminal job error.
	ErrAllStrategiesFailed = errors.New("all conversion strategies failed")
)
