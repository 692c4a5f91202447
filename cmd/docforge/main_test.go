package main

import (
	"strings"
	"testing"
)

func TestRunHelp(t *testing.T) {
	if got := run([]string{"help"}); got != ExitSuccess {
		t.Errorf("help exit = %d", got)
	}
}

func TestRunUnknownFlag(t *testing.T) {
	if got := run([]string{"convert", "--definitely-not-a-flag"}); got != ExitSetup {
		t.Errorf("unknown flag exit = %d, want %d", got, ExitSetup)
	}
}

func TestParseFlagsPositionals(t *testing.T) {
	f, rest, err := parseFlags("convert", []string{"--force", "notes.md"})
	if err != nil {
		t.Fatalf("parseFlags: %v", err)
	}
	if !f.io.force {
		t.Error("force flag not set")
	}
	if len(rest) != 1 || rest[0] != "notes.md" {
		t.Errorf("positionals = %v", rest)
	}
}

func TestUsageMentionsExitCodes(t *testing.T) {
	var b strings.Builder
	printUsage(&b)
	for _, want := range []string{"convert", "watch", "daemon", "serve", "check", "Exit codes"} {
		if !strings.Contains(b.String(), want) {
			t.Errorf("usage missing %q", want)
		}
	}
}
