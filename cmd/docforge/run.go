package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/log"

	docforge "github.com/alnah/go-docforge"
	"github.com/alnah/go-docforge/internal/httpapi"
	"github.com/alnah/go-docforge/internal/jobcache"
	"github.com/alnah/go-docforge/internal/pidfile"
)

const serverShutdownTimeout = 5 * time.Second

// newLogger builds the process logger from verbosity settings.
func newLogger(s settings) *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true})
	if s.Verbose {
		logger.SetLevel(log.DebugLevel)
	}
	if s.Quiet {
		logger.SetLevel(log.ErrorLevel)
	}
	return logger
}

// buildPipeline assembles the engine and scheduler from settings.
// The returned cleanup releases cache connections and renderers.
func buildPipeline(ctx context.Context, s settings, logger *log.Logger) (*docforge.Engine, *docforge.Scheduler, func(), error) {
	runner := &docforge.ExecRunner{Timeout: s.Timeout}
	if os.Getenv("SOURCE_DATE_EPOCH") == "" {
		// Pin the build date so repeated conversions of identical
		// input produce byte-identical artifacts.
		runner.ExtraEnv = []string{fmt.Sprintf("SOURCE_DATE_EPOCH=%d", time.Now().Unix())}
	}

	opts := []docforge.Option{
		docforge.WithRunner(runner),
		docforge.WithLogger(logger),
		docforge.WithTimeout(s.Timeout),
		docforge.WithMinFreeBytes(s.MinFreeBytes),
	}

	closeStore := func() {}
	if s.RedisAddr != "" {
		store, err := jobcache.NewRedisStore(ctx, s.RedisAddr, "")
		if err != nil {
			return nil, nil, nil, fmt.Errorf("connecting to redis: %w", err)
		}
		opts = append(opts, docforge.WithCache(store))
		closeStore = func() { _ = store.Close() }
	}

	engine := docforge.New(opts...)
	sched := docforge.NewScheduler(engine, s.Workers, logger)
	cleanup := func() {
		_ = engine.Close()
		closeStore()
	}
	return engine, sched, cleanup, nil
}

func baseRequest(s settings) docforge.Request {
	return docforge.Request{
		OutputDir:    s.OutputDir,
		Format:       s.Format,
		TemplatePath: s.TemplatePath,
		Force:        s.Force,
	}
}

// runConvert performs a one-shot conversion: a single file when the
// positional argument names one, otherwise a batch over the input
// directory.
func runConvert(ctx context.Context, s settings, args []string, logger *log.Logger) int {
	engine, sched, cleanup, err := buildPipeline(ctx, s, logger)
	if err != nil {
		logger.Error("setup failed", "err", err)
		return exitCodeFor(err)
	}
	defer cleanup()

	if len(args) == 1 {
		if info, statErr := os.Stat(args[0]); statErr == nil && !info.IsDir() {
			req := baseRequest(s)
			req.SourcePath = args[0]
			res := engine.Convert(ctx, req)
			printResult(os.Stdout, res)
			if res.Status == docforge.StatusFailed {
				return ExitFailed
			}
			return ExitSuccess
		}
		s.InputDir = args[0]
	}

	summary, results, err := sched.RunBatch(ctx, s.InputDir, baseRequest(s))
	if err != nil {
		logger.Error("batch failed", "err", err)
		return exitCodeFor(err)
	}
	for _, res := range results {
		printResult(os.Stdout, res)
	}
	fmt.Fprintf(os.Stdout, "summary: %s\n", summary)
	return summaryExitCode(summary)
}

func printResult(w *os.File, res docforge.Result) {
	switch res.Status {
	case docforge.StatusFailed:
		fmt.Fprintf(w, "[%s] %s: %s (log: %s)\n", res.Status, res.SourcePath, res.Message, res.LogPath)
	default:
		fmt.Fprintf(w, "[%s] %s -> %s\n", res.Status, res.SourcePath, res.ArtifactPath)
	}
}

// runWatch polls the input directory until interrupted.
func runWatch(ctx context.Context, s settings, logger *log.Logger) int {
	engine, sched, cleanup, err := buildPipeline(ctx, s, logger)
	if err != nil {
		logger.Error("setup failed", "err", err)
		return exitCodeFor(err)
	}
	defer cleanup()

	stopServe := startServeIfConfigured(ctx, s, engine, sched, logger)
	defer stopServe()

	if err := sched.Watch(ctx, s.InputDir, baseRequest(s), s.Interval); err != nil {
		logger.Error("watch failed", "err", err)
		return exitCodeFor(err)
	}
	return ExitSuccess
}

// runDaemon detaches from the terminal and runs watch mode guarded by a
// liveness-checked pidfile.
func runDaemon(ctx context.Context, s settings, logger *log.Logger) int {
	if !daemonChild() {
		if pid := pidfile.ReadRunning(s.PidFile); pid != 0 {
			logger.Error("daemon already running", "pid", pid, "pidfile", s.PidFile)
			return ExitDaemon
		}
		pid, err := spawnDaemon()
		if err != nil {
			logger.Error("daemon start failed", "err", err)
			return ExitDaemon
		}
		fmt.Fprintf(os.Stdout, "daemon started, pid %d\n", pid)
		return ExitSuccess
	}

	pf, err := pidfile.Acquire(s.PidFile)
	if err != nil {
		logger.Error("pidfile acquisition failed", "err", err)
		return exitCodeFor(err)
	}
	defer func() { _ = pf.Release() }()

	return runWatch(ctx, s, logger)
}

// runServe exposes the HTTP boundary without a watch loop: jobs arrive
// over POST /job and POST /batch only.
func runServe(ctx context.Context, s settings, logger *log.Logger) int {
	if s.Listen == "" {
		s.Listen = ":8080"
	}
	engine, sched, cleanup, err := buildPipeline(ctx, s, logger)
	if err != nil {
		logger.Error("setup failed", "err", err)
		return exitCodeFor(err)
	}
	defer cleanup()

	if err := serveHTTP(ctx, s, engine, sched, logger); err != nil {
		logger.Error("server failed", "err", err)
		return ExitSetup
	}
	return ExitSuccess
}

// startServeIfConfigured runs the HTTP boundary next to a watch loop
// when a listen address is set. The returned stop function is a no-op
// otherwise.
func startServeIfConfigured(ctx context.Context, s settings, engine *docforge.Engine, sched *docforge.Scheduler, logger *log.Logger) func() {
	if s.Listen == "" {
		return func() {}
	}
	srvCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := serveHTTP(srvCtx, s, engine, sched, logger); err != nil {
			logger.Error("server failed", "err", err)
		}
	}()
	return func() {
		cancel()
		<-done
	}
}

func serveHTTP(ctx context.Context, s settings, engine *docforge.Engine, sched *docforge.Scheduler, logger *log.Logger) error {
	api := httpapi.New(httpapi.Config{
		Engine:    engine,
		Scheduler: sched,
		Logger:    logger,
		InputDir:  s.InputDir,
		Base:      baseRequest(s),
	})
	srv := &http.Server{
		Addr:              s.Listen,
		Handler:           api.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", s.Listen)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), serverShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
