package docforge

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// Worker pool sizing. Typesetting engines are memory-hungry child
// processes, so the auto-sized pool leaves CPU headroom.
const (
	MinWorkers = 1
	MaxWorkers = 8

	cpuDivisor = 2
)

// ResolveWorkers determines the worker pool size. An explicit positive
// value wins; otherwise the size derives from GOMAXPROCS, which
// automaxprocs has already adjusted for container CPU limits.
func ResolveWorkers(workers int) int {
	if workers > 0 {
		return workers
	}
	n := runtime.GOMAXPROCS(0) / cpuDivisor
	if n < MinWorkers {
		return MinWorkers
	}
	if n > MaxWorkers {
		return MaxWorkers
	}
	return n
}

// Summary counts batch outcomes by status.
type Summary struct {
	Succeeded int
	Degraded  int
	Skipped   int
	Failed    int
}

// Total returns the number of files processed in the batch.
func (s Summary) Total() int {
	return s.Succeeded + s.Degraded + s.Skipped + s.Failed
}

func (s Summary) String() string {
	return fmt.Sprintf("ok=%d degraded=%d skipped=%d failed=%d",
		s.Succeeded, s.Degraded, s.Skipped, s.Failed)
}

// Scheduler drives the engine over batches and watch loops with a
// bounded worker pool.
type Scheduler struct {
	engine  *Engine
	logger  *log.Logger
	workers int
}

// NewScheduler creates a Scheduler running at most workers concurrent
// conversions. workers <= 0 auto-sizes via ResolveWorkers.
func NewScheduler(engine *Engine, workers int, logger *log.Logger) *Scheduler {
	if logger == nil {
		logger = log.New(os.Stderr)
	}
	return &Scheduler{
		engine:  engine,
		logger:  logger,
		workers: ResolveWorkers(workers),
	}
}

// ListInputs enumerates eligible source files directly under dir in
// lexicographic order. Subdirectories and artifacts are ignored.
func (s *Scheduler) ListInputs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading input directory: %w", err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || !EligibleInput(e.Name()) {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}

// RunBatch converts every eligible file under inputDir once. base
// supplies the output directory, format, template, and force flag; its
// SourcePath is ignored. A single file's failure never aborts the batch.
// Results are ordered like the enumerated inputs regardless of
// completion order.
func (s *Scheduler) RunBatch(ctx context.Context, inputDir string, base Request) (Summary, []Result, error) {
	files, err := s.ListInputs(inputDir)
	if err != nil {
		return Summary{}, nil, err
	}
	if len(files) == 0 {
		s.logger.Info("no eligible input files", "dir", inputDir)
		return Summary{}, nil, nil
	}

	workers := s.workers
	if workers > len(files) {
		workers = len(files)
	}
	s.logger.Info("batch starting", "files", len(files), "workers", workers)
	s.engine.Metrics().SetQueueDepth(len(files))
	defer s.engine.Metrics().SetQueueDepth(0)

	type task struct {
		idx  int
		path string
	}
	tasks := make(chan task)
	results := make([]Result, len(files))

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for t := range tasks {
				// Shutdown is observed between jobs, never mid-job.
				if ctx.Err() != nil {
					results[t.idx] = Result{
						SourcePath: t.path,
						Status:     StatusFailed,
						Message:    "shutdown before conversion",
					}
					continue
				}
				req := base
				req.SourcePath = t.path
				results[t.idx] = s.engine.Convert(ctx, req)
			}
		}()
	}
	for i, f := range files {
		tasks <- task{idx: i, path: f}
	}
	close(tasks)
	wg.Wait()

	var summary Summary
	for _, r := range results {
		switch r.Status {
		case StatusSuccess:
			summary.Succeeded++
		case StatusDegraded:
			summary.Degraded++
		case StatusSkipped:
			summary.Skipped++
		default:
			summary.Failed++
		}
	}
	s.logger.Info("batch finished", "summary", summary.String())
	return summary, results, nil
}

// Watch repeats RunBatch every interval until ctx is canceled. The
// inter-cycle sleep is interruptible, so shutdown latency is bounded by
// the in-flight jobs, not the interval.
func (s *Scheduler) Watch(ctx context.Context, inputDir string, base Request, interval time.Duration) error {
	if interval <= 0 {
		interval = time.Minute
	}
	s.logger.Info("watch starting", "dir", inputDir, "interval", interval)
	for {
		if _, _, err := s.RunBatch(ctx, inputDir, base); err != nil {
			// Input dir enumeration can fail transiently, for example
			// a network mount coming and going. Keep polling.
			s.logger.Error("batch cycle failed", "dir", inputDir, "err", err)
		}
		if sleepCtx(ctx, interval) != nil {
			s.logger.Info("watch stopping")
			return nil
		}
	}
}
