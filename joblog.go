package docforge

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// jobLog is the append-only per-job transcript. Every attempted command,
// its raw output, and its verdict land here so failures stay diagnosable
// without re-running.
type jobLog struct {
	path string
	f    *os.File
}

// newJobLog creates the transcript file logs/<epoch>.<stem>.log.
func newJobLog(logDir, stem string, epoch int64) (*jobLog, error) {
	path := filepath.Join(logDir, fmt.Sprintf("%d.%s.log", epoch, stem))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644) // #nosec G304 -- path built from sanitized stem
	if err != nil {
		return nil, fmt.Errorf("creating job log: %w", err)
	}
	return &jobLog{path: path, f: f}, nil
}

func (l *jobLog) Printf(format string, args ...any) {
	if l.f == nil {
		return
	}
	fmt.Fprintf(l.f, format+"\n", args...)
}

// Attempt opens a command block for one strategy try.
func (l *jobLog) Attempt(n int, s Strategy, cmdline string) {
	l.Printf("=== CMD === attempt %d strategy %s at %s", n, s, time.Now().Format(time.RFC3339))
	l.Printf("$ %s", cmdline)
}

// Output records raw combined renderer output verbatim.
func (l *jobLog) Output(out string) {
	if out == "" {
		return
	}
	l.Printf("%s", strings.TrimRight(out, "\n"))
}

// Verdict closes a command block with its pass/fail line.
func (l *jobLog) Verdict(ok bool, msg string) {
	if ok {
		l.Printf("=== PASS ===")
		return
	}
	l.Printf("=== FAIL === %s", msg)
}

func (l *jobLog) Close() error {
	if l.f == nil {
		return nil
	}
	err := l.f.Close()
	l.f = nil
	return err
}
