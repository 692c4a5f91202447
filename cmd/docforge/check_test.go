package main

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestRunCheckCmdTextOutput(t *testing.T) {
	s := defaultSettings()
	s.OutputDir = t.TempDir()
	s.MinFreeBytes = 1

	var b strings.Builder
	runCheckCmd(s, &b)

	for _, want := range []string{"docforge check:", "pandoc:", "pdflatex:", "output writable:"} {
		if !strings.Contains(b.String(), want) {
			t.Errorf("output missing %q:\n%s", want, b.String())
		}
	}
}

func TestRunCheckCmdJSONOutput(t *testing.T) {
	s := defaultSettings()
	s.OutputDir = t.TempDir()
	s.MinFreeBytes = 1
	s.JSONOut = true

	var b strings.Builder
	runCheckCmd(s, &b)

	var result checkResult
	if err := json.Unmarshal([]byte(b.String()), &result); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, b.String())
	}
	if result.Status == "" || len(result.Engines) != 3 {
		t.Errorf("result = %+v", result)
	}
}

func TestRunCheckUnwritableOutputIsError(t *testing.T) {
	s := defaultSettings()
	s.OutputDir = "/proc/definitely/not/writable"

	result := runCheck(s)
	if result.Status != "errors" {
		t.Errorf("status = %q, want errors", result.Status)
	}
}
