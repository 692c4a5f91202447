package docforge

import (
	"strings"
	"sync"
	"testing"
	"time"
)

func TestMetricsTally(t *testing.T) {
	m := NewMetrics()
	m.JobStarted()
	m.JobFinished(StatusSuccess, time.Second, EnginePdflatex)
	m.JobStarted()
	m.JobFinished(StatusDegraded, 2*time.Second, engineGoldmark)
	m.JobStarted()
	m.JobFinished(StatusSkipped, 0, "")
	m.JobStarted()
	m.JobFinished(StatusFailed, time.Second, "")
	m.TemplateValidationFailure()
	m.SetQueueDepth(5)

	s := m.Snapshot()
	if s.Processed != 2 || s.Degraded != 1 || s.Skipped != 1 || s.Failed != 1 {
		t.Errorf("snapshot = %+v", s)
	}
	if s.ActiveJobs != 0 {
		t.Errorf("active jobs = %d, want 0", s.ActiveJobs)
	}
	if s.ProcessingSeconds != 4 {
		t.Errorf("processing seconds = %g, want 4", s.ProcessingSeconds)
	}
	if s.QueueDepth != 5 {
		t.Errorf("queue depth = %d, want 5", s.QueueDepth)
	}
	if s.TemplateFailures != 1 {
		t.Errorf("template failures = %d, want 1", s.TemplateFailures)
	}
	if s.EngineUsage[EnginePdflatex] != 1 || s.EngineUsage[engineGoldmark] != 1 {
		t.Errorf("engine usage = %v", s.EngineUsage)
	}
}

func TestSnapshotDoesNotAliasLiveState(t *testing.T) {
	m := NewMetrics()
	m.JobStarted()
	m.JobFinished(StatusSuccess, time.Second, EngineXelatex)

	s := m.Snapshot()
	s.EngineUsage[EngineXelatex] = 99

	if m.Snapshot().EngineUsage[EngineXelatex] != 1 {
		t.Error("mutating a snapshot changed live state")
	}
}

func TestMetricsConcurrentUpdates(t *testing.T) {
	m := NewMetrics()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				m.JobStarted()
				m.JobFinished(StatusSuccess, time.Millisecond, EnginePdflatex)
			}
		}()
	}
	wg.Wait()

	s := m.Snapshot()
	if s.Processed != 1600 {
		t.Errorf("processed = %d, want 1600", s.Processed)
	}
	if s.ActiveJobs != 0 {
		t.Errorf("active jobs = %d, want 0", s.ActiveJobs)
	}
}

func TestWritePrometheus(t *testing.T) {
	m := NewMetrics()
	m.JobStarted()
	m.JobFinished(StatusSuccess, time.Second, EngineXelatex)
	m.SetQueueDepth(3)

	var b strings.Builder
	if err := m.WritePrometheus(&b); err != nil {
		t.Fatalf("WritePrometheus: %v", err)
	}
	out := b.String()

	for _, want := range []string{
		"docforge_files_processed_total 1",
		"docforge_queue_depth 3",
		`docforge_engine_usage_total{engine="xelatex"} 1`,
		"# TYPE docforge_files_failed_total counter",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("exposition missing %q:\n%s", want, out)
		}
	}
}
