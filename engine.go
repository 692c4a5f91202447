package docforge

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/alnah/go-docforge/internal/chromepdf"
	"github.com/alnah/go-docforge/internal/fileutil"
	"github.com/alnah/go-docforge/internal/hashutil"
	"github.com/alnah/go-docforge/internal/htmlgen"
	"github.com/alnah/go-docforge/internal/jobcache"
	"github.com/alnah/go-docforge/internal/texdeps"
)

// DefaultMinFreeBytes is the disk space preflight threshold.
const DefaultMinFreeBytes = 100 << 20

// logsSubdir and cacheSubdir are resolved relative to each request's
// output directory.
const (
	logsSubdir  = "logs"
	cacheSubdir = "jobcache"
)

// Engine executes the conversion state machine for one job at a time.
// Safe for concurrent use by scheduler workers; all shared state lives
// in the injected cache and metrics.
type Engine struct {
	runner       CommandRunner
	cache        jobcache.Store
	metrics      *Metrics
	logger       *log.Logger
	analyzer     *texdeps.Analyzer
	html         *htmlgen.Renderer
	chrome       *chromepdf.Renderer
	retry        RetryPolicy
	minFreeBytes uint64
	timeout      time.Duration
	now          func() time.Time

	// chromeExplicit suppresses browser auto-detection when the caller
	// injected (or disabled) the renderer themselves.
	chromeExplicit bool
}

// Option customizes an Engine.
type Option func(*Engine)

// WithRunner replaces subprocess execution, e.g. with a mock in tests.
func WithRunner(r CommandRunner) Option {
	return func(e *Engine) { e.runner = r }
}

// WithCache replaces the per-output-directory file cache with an
// explicit store, e.g. a shared Redis instance.
func WithCache(c jobcache.Store) Option {
	return func(e *Engine) { e.cache = c }
}

// WithMetrics injects a shared metrics aggregator.
func WithMetrics(m *Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithLogger injects a structured logger. The default discards output.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithRetry replaces the transient-failure retry policy.
func WithRetry(p RetryPolicy) Option {
	return func(e *Engine) { e.retry = p }
}

// WithMinFreeBytes sets the disk space preflight threshold. Zero
// disables the check.
func WithMinFreeBytes(n uint64) Option {
	return func(e *Engine) { e.minFreeBytes = n }
}

// WithTimeout bounds each renderer invocation.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) { e.timeout = d }
}

// WithChromeRenderer injects a headless-browser renderer. Nil disables
// the chrome-pdf strategy even when a browser is installed.
func WithChromeRenderer(r *chromepdf.Renderer) Option {
	return func(e *Engine) {
		e.chrome = r
		e.chromeExplicit = true
	}
}

// New creates an Engine with production defaults: an ExecRunner bounded
// by DefaultTimeout, a per-output-directory file cache, and a chrome-pdf
// strategy enabled only when a browser binary is already installed.
func New(opts ...Option) *Engine {
	e := &Engine{
		metrics:      NewMetrics(),
		logger:       log.New(os.Stderr),
		html:         htmlgen.NewRenderer(),
		retry:        RetryPolicy{MaxAttempts: DefaultMaxAttempts},
		minFreeBytes: DefaultMinFreeBytes,
		timeout:      DefaultTimeout,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.runner == nil {
		e.runner = &ExecRunner{Timeout: e.timeout}
	}
	if e.analyzer == nil {
		e.analyzer = texdeps.NewAnalyzer(e.runner)
	}
	if !e.chromeExplicit && chromepdf.Available() {
		e.chrome = chromepdf.New(e.timeout)
	}
	return e
}

// Metrics returns the aggregator shared with this engine.
func (e *Engine) Metrics() *Metrics { return e.metrics }

// Close releases renderer resources.
func (e *Engine) Close() error {
	if e.chrome != nil {
		return e.chrome.Close()
	}
	return nil
}

// cacheFor resolves the job cache for a request: the injected store if
// any, otherwise a file store under <output>/logs/jobcache.
func (e *Engine) cacheFor(req Request) (jobcache.Store, error) {
	if e.cache != nil {
		return e.cache, nil
	}
	return jobcache.NewFileStore(filepath.Join(req.OutputDir, logsSubdir, cacheSubdir))
}

// Convert runs the full state machine for one request. All per-job
// errors are absorbed into the Result; nothing panics or propagates.
func (e *Engine) Convert(ctx context.Context, req Request) Result {
	start := e.now()
	res := Result{
		JobID:      uuid.NewString(),
		SourcePath: req.SourcePath,
		Status:     StatusFailed,
	}
	winnerEngine := ""

	e.metrics.JobStarted()
	defer func() {
		res.Duration = e.now().Sub(start)
		e.metrics.JobFinished(res.Status, res.Duration, winnerEngine)
		e.logger.Info("job finished",
			"job", res.JobID,
			"source", res.SourcePath,
			"status", res.Status,
			"attempts", res.Attempts,
			"duration", res.Duration,
		)
	}()

	if req.Format == "" {
		req.Format = FormatPDF
	}
	switch req.Format {
	case FormatPDF, FormatDocx, FormatHTML:
	default:
		res.Message = fmt.Sprintf("%v: %s", ErrUnsupportedFormat, req.Format)
		return res
	}
	if !fileutil.FileExists(req.SourcePath) {
		res.Message = fmt.Sprintf("%v: %s", ErrSourceNotFound, req.SourcePath)
		return res
	}

	logDir := filepath.Join(req.OutputDir, logsSubdir)
	if err := fileutil.EnsureDir(logDir); err != nil {
		res.Message = fmt.Sprintf("%v: %v", ErrOutputDirCreate, err)
		return res
	}

	epoch := start.Unix()
	stem := fileutil.SafeStem(req.SourcePath)
	jl, err := newJobLog(logDir, stem, epoch)
	if err != nil {
		res.Message = fmt.Sprintf("%v: %v", ErrOutputDirCreate, err)
		return res
	}
	defer jl.Close()
	res.LogPath = jl.path

	// Dedup check.
	srcDigest := hashutil.File(req.SourcePath)
	tplDigest := hashutil.NoTemplate
	if req.TemplatePath != "" {
		tplDigest = hashutil.File(req.TemplatePath)
	}
	key := hashutil.Key(srcDigest, tplDigest)
	jl.Printf("[JOB] %s source=%s template=%s key=%s", res.JobID, req.SourcePath, req.TemplatePath, key)

	cache, err := e.cacheFor(req)
	if err != nil {
		res.Message = fmt.Sprintf("%v: %v", ErrOutputDirCreate, err)
		jl.Printf("[ERR] %s", res.Message)
		return res
	}
	// An unreadable source or template hashes to the shared sentinel,
	// so distinct unreadable inputs would collide on one key. Treat
	// either as never cached.
	if !req.Force && hashutil.Available(srcDigest) && hashutil.Available(tplDigest) {
		if artifact, ok := cache.Lookup(ctx, key); ok {
			res.Status = StatusSkipped
			res.ArtifactPath = artifact
			res.Message = "already converted"
			jl.Printf("[CACHE] hit, artifact %s", artifact)
			return res
		}
	}

	// Preflight gate: fail fast before any strategy attempt.
	if _, err := e.runner.LookPath(pandocBinary); err != nil {
		res.Message = ErrPandocNotFound.Error()
		jl.Printf("[PRE] %s, no strategies attempted", res.Message)
		return res
	}
	if e.minFreeBytes > 0 {
		if free := fileutil.FreeBytes(req.OutputDir); free < e.minFreeBytes {
			res.Message = fmt.Sprintf("%v: %d bytes free, need %d", ErrLowDiskSpace, free, e.minFreeBytes)
			jl.Printf("[PRE] %s, no strategies attempted", res.Message)
			return res
		}
	}

	// Template preflight is an optimization, never a gate.
	needsUnicode := false
	if req.TemplatePath != "" {
		report := e.analyzer.Analyze(ctx, req.TemplatePath)
		jl.Printf("%s", report.Summary())
		if !report.SyntaxOK {
			e.metrics.TemplateValidationFailure()
		}
		needsUnicode = report.UsesFontspec || len(report.Fonts) > 0
	}

	chain := buildChain(req, needsUnicode)
	var winner Strategy
	artifact := ""
	for _, s := range chain {
		if ctx.Err() != nil {
			res.Message = ctx.Err().Error()
			jl.Printf("[ERR] shutdown requested, stopping before next strategy")
			return res
		}
		outPath := filepath.Join(req.OutputDir, fmt.Sprintf("%d.%s%s", epoch, stem, s.Format.Ext()))
		if e.attempt(ctx, jl, req, s, outPath, &res.Attempts) {
			winner, artifact = s, outPath
			break
		}
	}
	if artifact == "" {
		res.Message = ErrAllStrategiesFailed.Error()
		jl.Printf("[END] %s after %d attempts", res.Message, res.Attempts)
		return res
	}

	res.Status = classify(req, chain, winner)
	res.ArtifactPath = artifact
	res.Message = fmt.Sprintf("converted via %s", winner)
	winnerEngine = winner.usageName()

	jl.Printf("[ART] %s digest %s", artifact, hashutil.File(artifact))
	if winner.Format == FormatPDF {
		if pages, err := verifyPDF(artifact); err != nil {
			jl.Printf("[ART] advisory: pdf verification failed: %v", err)
		} else {
			jl.Printf("[ART] pdf verified, %d pages", pages)
		}
	}
	if err := cache.Record(ctx, key, artifact); err != nil {
		jl.Printf("[CACHE] record failed: %v", err)
	}
	return res
}

// attempt tries one strategy, retrying transient failures per the retry
// policy. It returns true only when the renderer reported success and
// the artifact exists on disk.
func (e *Engine) attempt(ctx context.Context, jl *jobLog, req Request, s Strategy, outPath string, attempts *int) bool {
	if s.Builtin() {
		*attempts++
		return e.attemptBuiltin(ctx, jl, req, s, outPath, *attempts)
	}

	args := pandocArgs(req, s, outPath)
	cmdline := pandocBinary + " " + strings.Join(args, " ")

	for try := 0; try < e.retry.maxAttempts(); try++ {
		*attempts++
		jl.Attempt(*attempts, s, cmdline)

		out, err := e.runner.Run(ctx, pandocBinary, args...)
		jl.Output(out)

		if err == nil {
			if fileutil.FileExists(outPath) {
				jl.Verdict(true, "")
				return true
			}
			err = ErrNoArtifact
		}
		jl.Verdict(false, err.Error())

		// Exit code is authoritative; a stray artifact from a failed
		// run must not survive to be mistaken for a success later.
		_ = os.Remove(outPath)

		if diagnostic(out) {
			jl.Printf("[RETRY] diagnostic failure, falling through to next strategy")
			return false
		}
		if try+1 < e.retry.maxAttempts() {
			delay := e.retry.delay(try)
			jl.Printf("[RETRY] transient failure, retrying in %s", delay)
			if sleepCtx(ctx, delay) != nil {
				return false
			}
		}
	}
	return false
}

// attemptBuiltin runs an in-process renderer: goldmark HTML, or goldmark
// HTML piped through a headless browser for PDF. Builtins accept only
// markdown input and never retry.
func (e *Engine) attemptBuiltin(ctx context.Context, jl *jobLog, req Request, s Strategy, outPath string, n int) bool {
	jl.Attempt(n, s, "builtin:"+s.Engine)

	if inputFormat(req.SourcePath) != "markdown" {
		jl.Verdict(false, "builtin renderers accept markdown input only")
		return false
	}
	if s.Engine == engineChrome && e.chrome == nil {
		jl.Verdict(false, "chrome renderer unavailable")
		return false
	}

	content, err := os.ReadFile(req.SourcePath) // #nosec G304 -- caller-provided source path
	if err != nil {
		jl.Verdict(false, fmt.Sprintf("reading source: %v", err))
		return false
	}
	htmlDoc, err := e.html.Render(ctx, req.SourcePath, content)
	if err != nil {
		jl.Verdict(false, err.Error())
		return false
	}

	switch s.Engine {
	case engineGoldmark:
		if err := os.WriteFile(outPath, []byte(htmlDoc), fileutil.FilePerm); err != nil {
			jl.Verdict(false, fmt.Sprintf("writing artifact: %v", err))
			return false
		}

	case engineChrome:
		tmpPath, cleanup, err := fileutil.WriteTempFile([]byte(htmlDoc), "html")
		if err != nil {
			jl.Verdict(false, err.Error())
			return false
		}
		defer cleanup()

		pdfBytes, err := e.chrome.RenderFile(ctx, tmpPath)
		if err != nil {
			jl.Verdict(false, err.Error())
			return false
		}
		if err := os.WriteFile(outPath, pdfBytes, fileutil.FilePerm); err != nil {
			jl.Verdict(false, fmt.Sprintf("writing artifact: %v", err))
			return false
		}
	}

	jl.Verdict(true, "")
	return true
}
