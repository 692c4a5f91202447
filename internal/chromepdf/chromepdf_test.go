package chromepdf

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestAvailableWithFakeBin(t *testing.T) {
	t.Setenv("ROD_BROWSER_BIN", "/nonexistent/definitely-not-chrome")
	if Available() {
		t.Error("Available() = true for nonexistent binary")
	}
}

func TestRenderFileCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := New(5 * time.Second)
	defer r.Close()

	if _, err := r.RenderFile(ctx, "/tmp/does-not-matter.html"); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestCloseWithoutLaunch(t *testing.T) {
	r := New(time.Second)
	if err := r.Close(); err != nil {
		t.Fatalf("Close on unlaunched renderer: %v", err)
	}
	// Idempotent.
	if err := r.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}
