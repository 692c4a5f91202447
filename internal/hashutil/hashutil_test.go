package hashutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

func TestFile_Deterministic(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.md", "# Hello\n")

	first := File(path)
	second := File(path)

	if first != second {
		t.Errorf("digest not deterministic: %q vs %q", first, second)
	}
	if !strings.HasPrefix(first, Prefix) {
		t.Errorf("digest missing prefix: %q", first)
	}
	if !Available(first) {
		t.Errorf("readable file reported unavailable")
	}
}

func TestFile_ContentSensitive(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.md", "# Hello\n")
	b := writeFile(t, dir, "b.md", "# Hello!\n")

	if File(a) == File(b) {
		t.Error("different content produced identical digests")
	}
}

func TestFile_UnreadableReturnsSentinel(t *testing.T) {
	got := File(filepath.Join(t.TempDir(), "missing.md"))
	if got != Unavailable {
		t.Errorf("expected Unavailable sentinel, got %q", got)
	}
	if Available(got) {
		t.Error("sentinel reported as available")
	}
}

func TestKey_AnyByteChangeChangesKey(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "src.md", "body")
	tpl := writeFile(t, dir, "tpl.tex", "\\documentclass{article}")

	base := Key(File(src), File(tpl))

	if again := Key(File(src), File(tpl)); again != base {
		t.Errorf("key not deterministic: %q vs %q", base, again)
	}

	src2 := writeFile(t, dir, "src2.md", "bodx")
	if Key(File(src2), File(tpl)) == base {
		t.Error("source byte change did not change key")
	}

	tpl2 := writeFile(t, dir, "tpl2.tex", "\\documentclass{report}")
	if Key(File(src), File(tpl2)) == base {
		t.Error("template byte change did not change key")
	}

	if Key(File(src), NoTemplate) == base {
		t.Error("dropping template did not change key")
	}
}
