package fileutil

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestFileExists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.md")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	if !FileExists(path) {
		t.Error("existing file reported missing")
	}
	if FileExists(filepath.Join(dir, "nope.md")) {
		t.Error("missing file reported present")
	}
	if FileExists(dir) {
		t.Error("directory reported as file")
	}
}

func TestEnsureDir(t *testing.T) {
	dir := t.TempDir()
	nested := filepath.Join(dir, "out", "logs")

	if err := EnsureDir(nested); err != nil {
		t.Fatalf("EnsureDir: %v", err)
	}
	info, err := os.Stat(nested)
	if err != nil || !info.IsDir() {
		t.Fatalf("directory not created: %v", err)
	}

	// Idempotent on existing directories.
	if err := EnsureDir(nested); err != nil {
		t.Errorf("EnsureDir on existing dir: %v", err)
	}
}

func TestSafeStem(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"report.md", "report"},
		{"/input/2024 q3 report.md", "2024_q3_report"},
		{"notes.final.markdown", "notes.final"},
		{"weird$name!.md", "weird_name_"},
		{"dir/plain", "plain"},
	}

	for _, tt := range tests {
		if got := SafeStem(tt.path); got != tt.want {
			t.Errorf("SafeStem(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestWriteTempFile(t *testing.T) {
	path, cleanup, err := WriteTempFile([]byte("<html></html>"), "html")
	if err != nil {
		t.Fatalf("WriteTempFile: %v", err)
	}
	defer cleanup()

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading temp file: %v", err)
	}
	if string(content) != "<html></html>" {
		t.Errorf("unexpected content %q", content)
	}

	cleanup()
	if FileExists(path) {
		t.Error("cleanup did not remove temp file")
	}
}

func TestWriteTempFile_InvalidExtension(t *testing.T) {
	if _, _, err := WriteTempFile(nil, ""); err == nil {
		t.Error("empty extension accepted")
	}
	if _, _, err := WriteTempFile(nil, "a/b"); err == nil {
		t.Error("path separator in extension accepted")
	}
}

func TestFreeBytes(t *testing.T) {
	if free := FreeBytes(t.TempDir()); free == 0 {
		t.Error("expected nonzero free space in temp dir")
	}
}

func TestFreeBytesUnqueryablePathDisablesGate(t *testing.T) {
	free := FreeBytes(filepath.Join(t.TempDir(), "absent", "deeper"))
	if free != math.MaxUint64 {
		t.Errorf("free = %d, want MaxUint64 for unqueryable path", free)
	}
}
