// Package httpapi exposes the pipeline over a small HTTP surface:
// health and status probes, Prometheus metrics, and synchronous job and
// batch submission.
package httpapi

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	docforge "github.com/alnah/go-docforge"
	"github.com/alnah/go-docforge/internal/fileutil"
)

const requestTimeout = 10 * time.Minute

// Check is one independent health probe. The service is healthy only
// when every check passes.
type Check struct {
	Name  string
	Probe func(ctx context.Context) error
}

// Config assembles a Server. Engine is required; nil optional fields
// get discard or empty defaults.
type Config struct {
	Engine    *docforge.Engine
	Scheduler *docforge.Scheduler
	Logger    *log.Logger

	// InputDir is the default batch input directory for POST /batch.
	InputDir string

	// Base supplies output directory, format, and template defaults for
	// submitted jobs.
	Base docforge.Request

	// Checks back GET /health. Empty means DefaultChecks.
	Checks []Check
}

// Server handles the HTTP boundary.
type Server struct {
	cfg     Config
	started time.Time
}

// New creates a Server from cfg.
func New(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = log.New(os.Stderr)
	}
	if len(cfg.Checks) == 0 {
		cfg.Checks = DefaultChecks(cfg.Base.OutputDir)
	}
	return &Server{cfg: cfg, started: time.Now()}
}

// Router builds the chi handler tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))

	r.Get("/health", s.handleHealth)
	r.Get("/status", s.handleStatus)
	r.Get("/metrics", s.handleMetrics)
	r.Post("/job", s.handleJob)
	r.Post("/batch", s.handleBatch)
	return r
}

// DefaultChecks probes the concerns a conversion needs: free disk at
// the output location, the renderer binary, a writable output
// directory, and outbound network reachability.
func DefaultChecks(outputDir string) []Check {
	runner := &docforge.ExecRunner{}
	return []Check{
		{Name: "disk_space", Probe: func(context.Context) error {
			if free := fileutil.FreeBytes(outputDir); free < docforge.DefaultMinFreeBytes {
				return docforge.ErrLowDiskSpace
			}
			return nil
		}},
		{Name: "pandoc", Probe: func(context.Context) error {
			_, err := runner.LookPath("pandoc")
			return err
		}},
		{Name: "output_writable", Probe: func(context.Context) error {
			return fileutil.EnsureDir(outputDir)
		}},
		{Name: "network", Probe: func(ctx context.Context) error {
			d := net.Dialer{Timeout: 2 * time.Second}
			conn, err := d.DialContext(ctx, "tcp", "1.1.1.1:53")
			if err != nil {
				return err
			}
			return conn.Close()
		}},
	}
}

type healthResponse struct {
	Healthy bool              `json:"healthy"`
	Checks  map[string]string `json:"checks"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Healthy: true, Checks: make(map[string]string, len(s.cfg.Checks))}
	for _, c := range s.cfg.Checks {
		if err := c.Probe(r.Context()); err != nil {
			resp.Healthy = false
			resp.Checks[c.Name] = err.Error()
			continue
		}
		resp.Checks[c.Name] = "ok"
	}

	code := http.StatusOK
	if !resp.Healthy {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, resp)
}

type statusResponse struct {
	UptimeSeconds float64                  `json:"uptime_seconds"`
	Metrics       docforge.MetricsSnapshot `json:"metrics"`
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, statusResponse{
		UptimeSeconds: time.Since(s.started).Seconds(),
		Metrics:       s.cfg.Engine.Metrics().Snapshot(),
	})
}

func (s *Server) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	if err := s.cfg.Engine.Metrics().WritePrometheus(w); err != nil {
		s.cfg.Logger.Error("writing metrics", "err", err)
	}
}

type jobRequest struct {
	SourcePath   string `json:"source_path"`
	OutputDir    string `json:"output_dir,omitempty"`
	Format       string `json:"format,omitempty"`
	TemplatePath string `json:"template_path,omitempty"`
	Force        bool   `json:"force,omitempty"`
}

type jobResponse struct {
	JobID        string `json:"job_id"`
	Status       string `json:"status"`
	ArtifactPath string `json:"artifact_path,omitempty"`
	LogPath      string `json:"log_path,omitempty"`
	Message      string `json:"message,omitempty"`
}

// mergeRequest overlays a submitted job on the configured defaults.
func (s *Server) mergeRequest(in jobRequest) docforge.Request {
	req := s.cfg.Base
	req.SourcePath = in.SourcePath
	if in.OutputDir != "" {
		req.OutputDir = in.OutputDir
	}
	if in.Format != "" {
		req.Format = docforge.Format(in.Format)
	}
	if in.TemplatePath != "" {
		req.TemplatePath = in.TemplatePath
	}
	req.Force = in.Force
	return req
}

func (s *Server) handleJob(w http.ResponseWriter, r *http.Request) {
	var in jobRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "malformed request body", http.StatusBadRequest)
		return
	}
	if in.SourcePath == "" {
		http.Error(w, "source_path is required", http.StatusBadRequest)
		return
	}

	res := s.cfg.Engine.Convert(r.Context(), s.mergeRequest(in))
	code := http.StatusOK
	if res.Status == docforge.StatusFailed {
		code = http.StatusUnprocessableEntity
	}
	writeJSON(w, code, jobResponse{
		JobID:        res.JobID,
		Status:       string(res.Status),
		ArtifactPath: res.ArtifactPath,
		LogPath:      res.LogPath,
		Message:      res.Message,
	})
}

type batchRequest struct {
	InputDir     string `json:"input_dir,omitempty"`
	OutputDir    string `json:"output_dir,omitempty"`
	Format       string `json:"format,omitempty"`
	TemplatePath string `json:"template_path,omitempty"`
	Force        bool   `json:"force,omitempty"`
}

type batchResponse struct {
	Succeeded int           `json:"succeeded"`
	Degraded  int           `json:"degraded"`
	Skipped   int           `json:"skipped"`
	Failed    int           `json:"failed"`
	Jobs      []jobResponse `json:"jobs"`
}

func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Scheduler == nil {
		http.Error(w, "batch scheduling not configured", http.StatusNotImplemented)
		return
	}

	var in batchRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "malformed request body", http.StatusBadRequest)
		return
	}
	inputDir := in.InputDir
	if inputDir == "" {
		inputDir = s.cfg.InputDir
	}
	if inputDir == "" {
		http.Error(w, "input_dir is required", http.StatusBadRequest)
		return
	}

	base := s.mergeRequest(jobRequest{
		OutputDir:    in.OutputDir,
		Format:       in.Format,
		TemplatePath: in.TemplatePath,
		Force:        in.Force,
	})
	summary, results, err := s.cfg.Scheduler.RunBatch(r.Context(), inputDir, base)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	resp := batchResponse{
		Succeeded: summary.Succeeded,
		Degraded:  summary.Degraded,
		Skipped:   summary.Skipped,
		Failed:    summary.Failed,
		Jobs:      make([]jobResponse, 0, len(results)),
	}
	for _, res := range results {
		resp.Jobs = append(resp.Jobs, jobResponse{
			JobID:        res.JobID,
			Status:       string(res.Status),
			ArtifactPath: res.ArtifactPath,
			LogPath:      res.LogPath,
			Message:      res.Message,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
