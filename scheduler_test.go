package docforge

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func newTestScheduler(e *Engine, workers int) *Scheduler {
	return NewScheduler(e, workers, log.New(io.Discard))
}

func TestListInputsSortedAndFiltered(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.md", "a.md", "notes.rst", "image.png", "c.pdf"} {
		writeSource(t, dir, name, "x")
	}
	if err := os.Mkdir(filepath.Join(dir, "sub.md"), 0o750); err != nil {
		t.Fatal(err)
	}

	s := newTestScheduler(newTestEngine(newMockRunner()), 1)
	files, err := s.ListInputs(dir)
	if err != nil {
		t.Fatalf("ListInputs: %v", err)
	}

	want := []string{
		filepath.Join(dir, "a.md"),
		filepath.Join(dir, "b.md"),
		filepath.Join(dir, "notes.rst"),
	}
	if len(files) != len(want) {
		t.Fatalf("files = %v, want %v", files, want)
	}
	for i := range want {
		if files[i] != want[i] {
			t.Errorf("files[%d] = %q, want %q", i, files[i], want[i])
		}
	}
}

func TestRunBatchAllSucceed(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.md", "b.md", "c.md"} {
		writeSource(t, dir, name, "# "+name+"\n")
	}
	runner := newMockRunner()
	runner.handler = succeedAlways
	e := newTestEngine(runner)
	s := newTestScheduler(e, 2)

	summary, results, err := s.RunBatch(context.Background(), dir, Request{OutputDir: filepath.Join(dir, "out")})
	if err != nil {
		t.Fatalf("RunBatch: %v", err)
	}
	if summary.Succeeded != 3 || summary.Failed != 0 {
		t.Errorf("summary = %s", summary)
	}
	if len(results) != 3 {
		t.Fatalf("results = %d, want 3", len(results))
	}
	// Results keep enumeration order regardless of completion order.
	for i, name := range []string{"a.md", "b.md", "c.md"} {
		if filepath.Base(results[i].SourcePath) != name {
			t.Errorf("results[%d] = %s, want %s", i, results[i].SourcePath, name)
		}
	}
}

func TestRunBatchSingleFailureDoesNotAbort(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "good.md", "# ok\n")
	writeSource(t, dir, "bad.rst", "broken\n")

	runner := newMockRunner()
	runner.handler = func(args []string) (string, error) {
		for _, a := range args {
			if filepath.Base(a) == "bad.rst" {
				return "! LaTeX Error: kaput\n", os.ErrInvalid
			}
		}
		return succeedAlways(args)
	}
	e := newTestEngine(runner)
	s := newTestScheduler(e, 1)

	summary, results, err := s.RunBatch(context.Background(), dir, Request{OutputDir: filepath.Join(dir, "out")})
	if err != nil {
		t.Fatalf("RunBatch: %v", err)
	}
	// bad.rst exhausts every strategy; good.md still converts. The
	// builtin fallback rejects non-markdown input, so bad.rst fails
	// outright rather than degrading.
	if summary.Failed != 1 {
		t.Errorf("failed = %d, want 1", summary.Failed)
	}
	if summary.Succeeded+summary.Degraded != 1 {
		t.Errorf("summary = %s", summary)
	}
	if len(results) != 2 {
		t.Fatalf("results = %d, want 2", len(results))
	}
}

func TestRunBatchEmptyDirIsNoWork(t *testing.T) {
	s := newTestScheduler(newTestEngine(newMockRunner()), 1)
	summary, results, err := s.RunBatch(context.Background(), t.TempDir(), Request{OutputDir: t.TempDir()})
	if err != nil {
		t.Fatalf("RunBatch: %v", err)
	}
	if summary.Total() != 0 || results != nil {
		t.Errorf("summary = %s, results = %v", summary, results)
	}
}

func TestRunBatchMissingDirIsError(t *testing.T) {
	s := newTestScheduler(newTestEngine(newMockRunner()), 1)
	if _, _, err := s.RunBatch(context.Background(), filepath.Join(t.TempDir(), "absent"), Request{}); err == nil {
		t.Fatal("expected error for missing input directory")
	}
}

func TestWatchStopsOnCancel(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "a.md", "# a\n")
	runner := newMockRunner()
	runner.handler = succeedAlways
	s := newTestScheduler(newTestEngine(runner), 1)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- s.Watch(ctx, dir, Request{OutputDir: filepath.Join(dir, "out")}, time.Hour)
	}()

	// Give the first cycle time to run, then request shutdown. The hour
	// interval must not delay the return.
	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Watch: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Watch did not stop after cancellation")
	}
}

func TestWatchSurvivesMissingInputDir(t *testing.T) {
	s := newTestScheduler(newTestEngine(newMockRunner()), 1)
	absent := filepath.Join(t.TempDir(), "absent")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- s.Watch(ctx, absent, Request{OutputDir: t.TempDir()}, 10*time.Millisecond)
	}()

	// Several failed cycles must pass without Watch giving up.
	time.Sleep(100 * time.Millisecond)
	select {
	case err := <-done:
		t.Fatalf("Watch returned early: %v", err)
	default:
	}
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Watch: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Watch did not stop after cancellation")
	}
}

func TestResolveWorkers(t *testing.T) {
	if got := ResolveWorkers(4); got != 4 {
		t.Errorf("explicit workers = %d, want 4", got)
	}
	auto := ResolveWorkers(0)
	if auto < MinWorkers || auto > MaxWorkers {
		t.Errorf("auto workers = %d outside [%d, %d]", auto, MinWorkers, MaxWorkers)
	}
}
