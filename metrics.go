package docforge

import (
	"fmt"
	"io"
	"sort"
	"sync"
	"time"
)

// Metrics is a concurrency-safe counter and gauge store shared by the
// strategy engine and the scheduler. Construct one per process and
// thread it through; there is no package-level instance.
type Metrics struct {
	mu sync.Mutex

	processed         uint64
	failed            uint64
	skipped           uint64
	degraded          uint64
	processingSeconds float64
	queueDepth        int64
	activeJobs        int64
	lastProcessed     time.Time

	templateValidationFailures uint64
	engineUsage                map[string]uint64
}

// MetricsSnapshot is a point-in-time copy of all counters and gauges.
// It never aliases live state.
type MetricsSnapshot struct {
	Processed         uint64            `json:"files_processed_total"`
	Failed            uint64            `json:"files_failed_total"`
	Skipped           uint64            `json:"files_skipped_total"`
	Degraded          uint64            `json:"files_degraded_total"`
	ProcessingSeconds float64           `json:"processing_time_seconds_total"`
	QueueDepth        int64             `json:"queue_depth"`
	ActiveJobs        int64             `json:"active_jobs"`
	LastProcessed     time.Time         `json:"last_processing_timestamp"`
	TemplateFailures  uint64            `json:"template_validation_failures_total"`
	EngineUsage       map[string]uint64 `json:"engine_usage"`
}

// NewMetrics creates an empty aggregator.
func NewMetrics() *Metrics {
	return &Metrics{engineUsage: make(map[string]uint64)}
}

// JobStarted marks one job entering the engine.
func (m *Metrics) JobStarted() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.activeJobs++
}

// JobFinished records a terminal job outcome. engine names the winning
// renderer engine and may be empty for skipped or failed jobs.
func (m *Metrics) JobFinished(status Status, d time.Duration, engine string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.activeJobs--
	m.processingSeconds += d.Seconds()
	m.lastProcessed = time.Now()

	switch status {
	case StatusSuccess:
		m.processed++
	case StatusDegraded:
		m.processed++
		m.degraded++
	case StatusSkipped:
		m.skipped++
	case StatusFailed:
		m.failed++
	}
	if engine != "" {
		m.engineUsage[engine]++
	}
}

// SetQueueDepth publishes the number of files waiting in the current
// batch cycle.
func (m *Metrics) SetQueueDepth(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queueDepth = int64(n)
}

// TemplateValidationFailure counts a template that failed syntax checks.
func (m *Metrics) TemplateValidationFailure() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.templateValidationFailures++
}

// Snapshot returns an atomic copy of all counters and gauges.
func (m *Metrics) Snapshot() MetricsSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	usage := make(map[string]uint64, len(m.engineUsage))
	for k, v := range m.engineUsage {
		usage[k] = v
	}
	return MetricsSnapshot{
		Processed:         m.processed,
		Failed:            m.failed,
		Skipped:           m.skipped,
		Degraded:          m.degraded,
		ProcessingSeconds: m.processingSeconds,
		QueueDepth:        m.queueDepth,
		ActiveJobs:        m.activeJobs,
		LastProcessed:     m.lastProcessed,
		TemplateFailures:  m.templateValidationFailures,
		EngineUsage:       usage,
	}
}

// WritePrometheus renders the snapshot in Prometheus text exposition
// format with the docforge_ namespace.
func (m *Metrics) WritePrometheus(w io.Writer) error {
	s := m.Snapshot()

	counters := []struct {
		name  string
		value float64
	}{
		{"docforge_files_processed_total", float64(s.Processed)},
		{"docforge_files_failed_total", float64(s.Failed)},
		{"docforge_files_skipped_total", float64(s.Skipped)},
		{"docforge_files_degraded_total", float64(s.Degraded)},
		{"docforge_processing_time_seconds_total", s.ProcessingSeconds},
		{"docforge_template_validation_failures_total", float64(s.TemplateFailures)},
	}
	for _, c := range counters {
		if _, err := fmt.Fprintf(w, "# TYPE %s counter\n%s %g\n", c.name, c.name, c.value); err != nil {
			return err
		}
	}

	gauges := []struct {
		name  string
		value float64
	}{
		{"docforge_queue_depth", float64(s.QueueDepth)},
		{"docforge_active_jobs", float64(s.ActiveJobs)},
	}
	if !s.LastProcessed.IsZero() {
		gauges = append(gauges, struct {
			name  string
			value float64
		}{"docforge_last_processing_timestamp", float64(s.LastProcessed.Unix())})
	}
	for _, g := range gauges {
		if _, err := fmt.Fprintf(w, "# TYPE %s gauge\n%s %g\n", g.name, g.name, g.value); err != nil {
			return err
		}
	}

	engines := make([]string, 0, len(s.EngineUsage))
	for e := range s.EngineUsage {
		engines = append(engines, e)
	}
	sort.Strings(engines)
	if len(engines) > 0 {
		if _, err := fmt.Fprintf(w, "# TYPE docforge_engine_usage_total counter\n"); err != nil {
			return err
		}
		for _, e := range engines {
			if _, err := fmt.Fprintf(w, "docforge_engine_usage_total{engine=%q} %d\n", e, s.EngineUsage[e]); err != nil {
				return err
			}
		}
	}
	return nil
}
