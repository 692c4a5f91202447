package docforge

import (
	"context"
	"testing"
	"time"
)

func TestExpBackoffSchedule(t *testing.T) {
	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{0, 1 * time.Second},
		{1, 2 * time.Second},
		{2, 5 * time.Second},
		{3, 10 * time.Second},
		{4, 30 * time.Second},
		{9, 30 * time.Second}, // capped
		{-1, 1 * time.Second},
	}
	for _, tt := range tests {
		if got := ExpBackoff(tt.attempt); got != tt.want {
			t.Errorf("ExpBackoff(%d) = %s, want %s", tt.attempt, got, tt.want)
		}
	}
}

func TestDiagnosticDetection(t *testing.T) {
	tests := []struct {
		name   string
		output string
		want   bool
	}{
		{"latex error", "! LaTeX Error: File `exotic.sty' not found.", true},
		{"undefined control sequence", "! Undefined control sequence.", true},
		{"missing font", "fontspec error: font not found", true},
		{"pandoc format", "Unknown output format foo", true},
		{"empty output", "", false},
		{"generic crash", "segmentation fault", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := diagnostic(tt.output); got != tt.want {
				t.Errorf("diagnostic(%q) = %v, want %v", tt.output, got, tt.want)
			}
		})
	}
}

func TestRetryPolicyDefaults(t *testing.T) {
	var p RetryPolicy
	if p.maxAttempts() != 1 {
		t.Errorf("zero policy maxAttempts = %d, want 1", p.maxAttempts())
	}
	if p.delay(0) != 1*time.Second {
		t.Errorf("zero policy delay(0) = %s, want 1s", p.delay(0))
	}
}

func TestSleepCtxInterruptible(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	start := time.Now()
	if err := sleepCtx(ctx, 10*time.Second); err == nil {
		t.Fatal("expected error for canceled context")
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("sleepCtx blocked %s despite cancellation", elapsed)
	}
}
