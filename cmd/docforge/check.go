package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os/exec"
	"runtime"
	"strings"

	docforge "github.com/alnah/go-docforge"
	"github.com/alnah/go-docforge/internal/chromepdf"
	"github.com/alnah/go-docforge/internal/fileutil"
)

// checkResult holds all diagnostic information for the check command.
type checkResult struct {
	Status   string       `json:"status"` // "ready", "warnings", "errors"
	Renderer rendererInfo `json:"renderer"`
	Engines  []engineInfo `json:"engines"`
	Chrome   bool         `json:"chrome_available"`
	System   systemInfo   `json:"system"`
	Warnings []string     `json:"warnings,omitempty"`
	Errors   []string     `json:"errors,omitempty"`
}

type rendererInfo struct {
	Found   bool   `json:"found"`
	Path    string `json:"path,omitempty"`
	Version string `json:"version,omitempty"`
}

type engineInfo struct {
	Name  string `json:"name"`
	Found bool   `json:"found"`
}

type systemInfo struct {
	OS             string `json:"os"`
	Arch           string `json:"arch"`
	OutputWritable bool   `json:"output_writable"`
	FreeBytes      uint64 `json:"free_bytes"`
	Kpsewhich      bool   `json:"kpsewhich"`
	Fontconfig     bool   `json:"fontconfig"`
}

// runCheckCmd diagnoses the host toolchain and returns an exit code:
// 0 when ready (warnings allowed), 1 when conversion cannot work.
func runCheckCmd(s settings, w io.Writer) int {
	result := runCheck(s)

	if s.JSONOut {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result)
	} else {
		printCheckResult(w, result)
	}

	if result.Status == "errors" {
		return ExitSetup
	}
	return ExitSuccess
}

func runCheck(s settings) *checkResult {
	result := &checkResult{
		Status: "ready",
		System: systemInfo{OS: runtime.GOOS, Arch: runtime.GOARCH},
	}

	if path, err := exec.LookPath("pandoc"); err == nil {
		result.Renderer = rendererInfo{Found: true, Path: path}
		if out, err := exec.Command(path, "--version").Output(); err == nil { // #nosec G204 -- path from LookPath
			if line, _, ok := strings.Cut(string(out), "\n"); ok {
				result.Renderer.Version = line
			}
		}
	} else {
		result.Errors = append(result.Errors, "pandoc not found; no conversion strategy can run")
	}

	anyEngine := false
	for _, name := range []string{docforge.EnginePdflatex, docforge.EngineXelatex, docforge.EngineLualatex} {
		_, err := exec.LookPath(name)
		result.Engines = append(result.Engines, engineInfo{Name: name, Found: err == nil})
		anyEngine = anyEngine || err == nil
	}
	result.Chrome = chromepdf.Available()
	if !anyEngine && !result.Chrome {
		result.Warnings = append(result.Warnings, "no PDF engine or browser found; pdf requests will degrade to docx/html")
	}

	if _, err := exec.LookPath("kpsewhich"); err == nil {
		result.System.Kpsewhich = true
	} else {
		result.Warnings = append(result.Warnings, "kpsewhich not found; template package checks are advisory only")
	}
	if _, err := exec.LookPath("fc-list"); err == nil {
		result.System.Fontconfig = true
	}

	if err := fileutil.EnsureDir(s.OutputDir); err == nil {
		result.System.OutputWritable = true
		result.System.FreeBytes = fileutil.FreeBytes(s.OutputDir)
		if result.System.FreeBytes < s.MinFreeBytes {
			result.Errors = append(result.Errors, fmt.Sprintf("only %d bytes free at %s", result.System.FreeBytes, s.OutputDir))
		}
	} else {
		result.Errors = append(result.Errors, fmt.Sprintf("output directory not writable: %v", err))
	}

	if len(result.Errors) > 0 {
		result.Status = "errors"
	} else if len(result.Warnings) > 0 {
		result.Status = "warnings"
	}
	return result
}

func printCheckResult(w io.Writer, r *checkResult) {
	mark := func(ok bool) string {
		if ok {
			return "ok"
		}
		return "missing"
	}

	fmt.Fprintf(w, "docforge check: %s\n\n", r.Status)
	fmt.Fprintf(w, "  pandoc: %s", mark(r.Renderer.Found))
	if r.Renderer.Version != "" {
		fmt.Fprintf(w, " (%s)", r.Renderer.Version)
	}
	fmt.Fprintln(w)
	for _, e := range r.Engines {
		fmt.Fprintf(w, "  %s: %s\n", e.Name, mark(e.Found))
	}
	fmt.Fprintf(w, "  chrome: %v\n", r.Chrome)
	fmt.Fprintf(w, "  kpsewhich: %v, fontconfig: %v\n", r.System.Kpsewhich, r.System.Fontconfig)
	fmt.Fprintf(w, "  output writable: %v, free: %d bytes\n", r.System.OutputWritable, r.System.FreeBytes)

	for _, warning := range r.Warnings {
		fmt.Fprintf(w, "\nwarning: %s", warning)
	}
	for _, errMsg := range r.Errors {
		fmt.Fprintf(w, "\nerror: %s", errMsg)
	}
	fmt.Fprintln(w)
}
