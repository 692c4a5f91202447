package pidfile

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"testing"
)

func TestAcquireAndRelease(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run", "app.pid")

	pf, err := Acquire(path)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read pidfile: %v", err)
	}
	if got := string(data); got != strconv.Itoa(os.Getpid())+"\n" {
		t.Errorf("pidfile content = %q", got)
	}

	if err := pf.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("pidfile still present after Release")
	}
}

func TestAcquireRejectsLiveOwner(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.pid")

	first, err := Acquire(path)
	if err != nil {
		t.Fatalf("first Acquire: %v", err)
	}
	defer first.Release()

	// Current process is alive, so a second claim must fail.
	if _, err := Acquire(path); !errors.Is(err, ErrAlreadyRunning) {
		t.Fatalf("second Acquire err = %v, want ErrAlreadyRunning", err)
	}
}

func TestAcquireReplacesStalePidfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.pid")

	// An absurdly high PID that no live process holds.
	if err := os.WriteFile(path, []byte("999999999\n"), 0o644); err != nil {
		t.Fatalf("write stale pidfile: %v", err)
	}

	pf, err := Acquire(path)
	if err != nil {
		t.Fatalf("Acquire over stale pidfile: %v", err)
	}
	defer pf.Release()

	if got := ReadRunning(path); got != os.Getpid() {
		t.Errorf("ReadRunning = %d, want %d", got, os.Getpid())
	}
}

func TestAcquireReplacesMalformedPidfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.pid")
	if err := os.WriteFile(path, []byte("not a pid"), 0o644); err != nil {
		t.Fatalf("write pidfile: %v", err)
	}

	pf, err := Acquire(path)
	if err != nil {
		t.Fatalf("Acquire over malformed pidfile: %v", err)
	}
	pf.Release()
}

func TestReadRunningAbsent(t *testing.T) {
	if got := ReadRunning(filepath.Join(t.TempDir(), "nope.pid")); got != 0 {
		t.Errorf("ReadRunning = %d, want 0", got)
	}
}
