// Package texdeps analyzes LaTeX rendering templates before conversion:
// structural syntax validation plus a dependency report of the document
// class, packages, bibliography tooling, and fonts they declare.
//
// Analysis is a preflight optimization, never a gate. Every failure mode
// degrades to a report the strategy chain can ignore; nothing here aborts
// a conversion.
package texdeps

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"
)

// Runner abstracts subprocess execution so host capability queries
// (kpsewhich, fc-list) can be faked in tests.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (string, error)
	LookPath(name string) (string, error)
}

// Declaration scanning is pattern-based, not a TeX parse: templates are
// preflighted, not interpreted.
var (
	packageRE  = regexp.MustCompile(`\\(?:usepackage|RequirePackage)(?:\[[^\]]*\])?\{([^}]+)\}`)
	classRE    = regexp.MustCompile(`\\documentclass(?:\[[^\]]*\])?\{([^}]+)\}`)
	bibstyleRE = regexp.MustCompile(`\\bibliographystyle\{([^}]+)\}`)
	fontRE     = regexp.MustCompile(`\\set(?:main|sans|mono)font(?:\[[^\]]*\])?\{([^}]+)\}`)
)

// Report describes what a template requires and what the host is missing.
// Recomputed on every analysis; never mutated in place.
type Report struct {
	SyntaxOK        bool
	SyntaxIssues    []string
	DocumentClass   string
	Packages        []string
	UsesBiblatex    bool
	UsesBibtexStyle bool
	UsesFontspec    bool
	Fonts           []string

	// Missing lists blocking problems (declared but not installed).
	// Notes lists advisory findings (could not verify, engine hints).
	Missing []string
	Notes   []string
}

// Analyzer preflights templates against the host TeX installation.
type Analyzer struct {
	runner Runner
}

// NewAnalyzer creates an Analyzer using runner for capability queries.
func NewAnalyzer(runner Runner) *Analyzer {
	return &Analyzer{runner: runner}
}

// ValidateSyntax performs cheap structural checks: balanced grouping
// braces, a document-root declaration, and matching document markers.
func (a *Analyzer) ValidateSyntax(path string) (bool, []string) {
	content, err := os.ReadFile(path) // #nosec G304 -- caller-provided template path
	if err != nil {
		return false, []string{fmt.Sprintf("cannot read template: %v", err)}
	}
	return checkSyntax(string(content))
}

func checkSyntax(content string) (bool, []string) {
	var issues []string

	if diff := strings.Count(content, "{") - strings.Count(content, "}"); diff != 0 {
		issues = append(issues, fmt.Sprintf("unbalanced braces (difference: %d)", diff))
	}

	hasClass := strings.Contains(content, `\documentclass`)
	if !hasClass {
		issues = append(issues, `missing \documentclass`)
	}
	if hasClass && !strings.Contains(content, `\begin{document}`) {
		issues = append(issues, `missing \begin{document}`)
	}
	if strings.Contains(content, `\begin{document}`) && !strings.Contains(content, `\end{document}`) {
		issues = append(issues, `missing \end{document}`)
	}

	return len(issues) == 0, issues
}

// Analyze produces a full dependency report for the template at path,
// cross-checking declarations against the host where query tools are
// available. It never fails: an unreadable template yields a report with
// SyntaxOK=false and a note that no preflight information is available.
func (a *Analyzer) Analyze(ctx context.Context, path string) *Report {
	r := &Report{}

	content, err := os.ReadFile(path) // #nosec G304 -- caller-provided template path
	if err != nil {
		r.SyntaxIssues = []string{fmt.Sprintf("cannot read template: %v", err)}
		r.Notes = append(r.Notes, "no preflight information available")
		return r
	}

	r.SyntaxOK, r.SyntaxIssues = checkSyntax(string(content))
	a.scanDeclarations(string(content), r)
	a.crossCheck(ctx, r)
	return r
}

// scanDeclarations extracts declared resources from the template text.
func (a *Analyzer) scanDeclarations(content string, r *Report) {
	seen := map[string]bool{}
	for _, m := range packageRE.FindAllStringSubmatch(content, -1) {
		for _, p := range strings.Split(m[1], ",") {
			p = strings.TrimSpace(p)
			if p != "" && !seen[p] {
				seen[p] = true
				r.Packages = append(r.Packages, p)
			}
		}
	}
	sort.Strings(r.Packages)

	if m := classRE.FindStringSubmatch(content); m != nil {
		r.DocumentClass = strings.TrimSpace(m[1])
	}
	r.UsesBibtexStyle = bibstyleRE.MatchString(content)

	for _, p := range r.Packages {
		switch strings.ToLower(p) {
		case "biblatex":
			r.UsesBiblatex = true
		case "fontspec":
			r.UsesFontspec = true
		}
	}

	if r.UsesFontspec {
		fontSeen := map[string]bool{}
		for _, m := range fontRE.FindAllStringSubmatch(content, -1) {
			f := strings.TrimSpace(m[1])
			if f != "" && !fontSeen[f] {
				fontSeen[f] = true
				r.Fonts = append(r.Fonts, f)
			}
		}
		sort.Strings(r.Fonts)
	}
}

// crossCheck verifies declared requirements against the host. Each check
// that cannot run (tool absent) produces an advisory note, not a miss.
func (a *Analyzer) crossCheck(ctx context.Context, r *Report) {
	if _, err := a.runner.LookPath("kpsewhich"); err != nil {
		r.Notes = append(r.Notes, "kpsewhich unavailable; cannot verify classes or packages")
	} else {
		if r.DocumentClass != "" && !a.kpseExists(ctx, r.DocumentClass+".cls") {
			r.Missing = append(r.Missing, fmt.Sprintf("class:%s (.cls not found)", r.DocumentClass))
		}
		for _, p := range r.Packages {
			if !a.kpseExists(ctx, p+".sty") {
				r.Missing = append(r.Missing, fmt.Sprintf("package:%s (.sty not found)", p))
			}
		}
	}

	if r.UsesBiblatex {
		if _, err := a.runner.LookPath("biber"); err != nil {
			r.Missing = append(r.Missing, "binary:biber required by biblatex")
		}
	}
	if r.UsesBibtexStyle {
		if _, err := a.runner.LookPath("bibtex"); err != nil {
			r.Missing = append(r.Missing, "binary:bibtex required by bibliographystyle")
		}
	}

	if r.UsesFontspec {
		_, xeErr := a.runner.LookPath("xelatex")
		_, luaErr := a.runner.LookPath("lualatex")
		if xeErr != nil && luaErr != nil {
			r.Notes = append(r.Notes, "fontspec present but xelatex/lualatex missing")
		}
		for _, fam := range r.Fonts {
			if !a.hasFont(ctx, fam) {
				r.Notes = append(r.Notes, fmt.Sprintf("font:%s not found via fontconfig", fam))
			}
		}
	}
}

// kpseExists asks kpsewhich whether a TeX resource resolves on this host.
func (a *Analyzer) kpseExists(ctx context.Context, name string) bool {
	out, err := a.runner.Run(ctx, "kpsewhich", name)
	return err == nil && strings.TrimSpace(out) != ""
}

// hasFont checks font availability via fontconfig. When fc-list is
// unavailable or fails, the font is assumed present: preflight must not
// block on what it cannot verify.
func (a *Analyzer) hasFont(ctx context.Context, family string) bool {
	if _, err := a.runner.LookPath("fc-list"); err != nil {
		return true
	}
	out, err := a.runner.Run(ctx, "fc-list", ":", "family")
	if err != nil {
		return true
	}
	target := strings.ToLower(family)
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(strings.ToLower(line), target) {
			return true
		}
	}
	return false
}

// OK reports whether the template passed validation with nothing missing.
func (r *Report) OK() bool {
	return r.SyntaxOK && len(r.Missing) == 0
}

// Summary renders the report as the multi-line [DEP] block appended to
// each job log.
func (r *Report) Summary() string {
	var b strings.Builder
	b.WriteString("[DEP] Template analysis:\n")
	if r.SyntaxOK {
		b.WriteString("  syntax: ok\n")
	} else {
		fmt.Fprintf(&b, "  syntax: %s\n", strings.Join(r.SyntaxIssues, "; "))
	}
	fmt.Fprintf(&b, "  class: %s\n", orDash(r.DocumentClass))
	fmt.Fprintf(&b, "  packages: %s\n", orDash(strings.Join(r.Packages, ", ")))
	if r.UsesBiblatex {
		b.WriteString("  biblatex: yes\n")
	}
	if r.UsesBibtexStyle {
		b.WriteString("  bibtex style: yes\n")
	}
	if r.UsesFontspec {
		fmt.Fprintf(&b, "  fontspec: yes; fonts=%s\n", orDash(strings.Join(r.Fonts, ", ")))
	}
	if len(r.Missing) > 0 {
		b.WriteString("  MISSING:\n")
		for _, m := range r.Missing {
			fmt.Fprintf(&b, "    - %s\n", m)
		}
	}
	if len(r.Notes) > 0 {
		b.WriteString("  NOTES:\n")
		for _, n := range r.Notes {
			fmt.Fprintf(&b, "    - %s\n", n)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
