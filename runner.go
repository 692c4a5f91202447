package docforge

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"
)

// DefaultTimeout bounds a single renderer invocation.
const DefaultTimeout = 300 * time.Second

// CommandRunner abstracts subprocess execution to enable testing without
// real renderer binaries. Run returns combined stdout and stderr.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) (string, error)
	LookPath(name string) (string, error)
}

// ExecRunner implements CommandRunner using os/exec.
//
// Each invocation runs to its own wall-clock timeout rather than being
// killed by caller cancellation: shutdown is cooperative at job
// boundaries, and killing a typesetting engine mid-run risks leaving a
// half-written artifact. Callers observe cancellation between attempts.
type ExecRunner struct {
	// Timeout bounds each invocation. Zero means DefaultTimeout.
	Timeout time.Duration

	// ExtraEnv entries are appended to the inherited environment,
	// e.g. SOURCE_DATE_EPOCH for reproducible artifacts.
	ExtraEnv []string
}

var _ CommandRunner = (*ExecRunner)(nil)

func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) (string, error) {
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, name, args...)
	cmd.Env = append(os.Environ(), r.ExtraEnv...)

	out, err := cmd.CombinedOutput()
	if runCtx.Err() == context.DeadlineExceeded {
		return string(out), fmt.Errorf("%w: %s after %s", ErrRunTimeout, name, timeout)
	}
	if err != nil {
		return string(out), fmt.Errorf("running %s: %w", name, err)
	}
	return string(out), nil
}

func (r *ExecRunner) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}
