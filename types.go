package docforge

import "time"

// Status is the terminal outcome of one conversion job.
type Status string

const (
	// StatusSuccess means the first-choice format, engine, and template
	// combination produced the artifact.
	StatusSuccess Status = "OK"

	// StatusDegraded means an artifact was produced, but only after
	// dropping the template or downgrading the output format.
	StatusDegraded Status = "DEGRADED"

	// StatusSkipped means an identical conversion already ran and its
	// artifact is still on disk.
	StatusSkipped Status = "SKIP"

	// StatusFailed means every strategy was exhausted, or preflight
	// blocked the job before any attempt.
	StatusFailed Status = "FAIL"
)

// Succeeded reports whether the job ended with a usable artifact.
func (s Status) Succeeded() bool {
	return s == StatusSuccess || s == StatusDegraded || s == StatusSkipped
}

// Format is a requested output format.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatDocx Format = "docx"
	FormatHTML Format = "html"
)

// Ext returns the artifact filename extension for the format.
func (f Format) Ext() string { return "." + string(f) }

// Request describes one conversion to perform.
type Request struct {
	// SourcePath is the input document. Read-only to the pipeline.
	SourcePath string

	// OutputDir receives artifacts, job logs, and the file-backed cache.
	OutputDir string

	// Format is the requested output format. Empty means FormatPDF.
	Format Format

	// TemplatePath optionally names a LaTeX template. Read-only.
	TemplatePath string

	// Force bypasses the job cache and reconverts unconditionally.
	Force bool
}

// Result reports the outcome of one conversion job.
type Result struct {
	JobID        string
	SourcePath   string
	Status       Status
	ArtifactPath string
	LogPath      string
	Message      string
	Attempts     int
	Duration     time.Duration
}
