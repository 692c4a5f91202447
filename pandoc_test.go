package docforge

import (
	"strings"
	"testing"
)

func TestEligibleInput(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"notes.md", true},
		{"NOTES.MD", true},
		{"doc.rst", true},
		{"doc.org", true},
		{"paper.tex", true},
		{"page.html", true},
		{"report.docx", true},
		{"image.png", false},
		{"archive.zip", false},
		{"noextension", false},
	}
	for _, tt := range tests {
		if got := EligibleInput(tt.path); got != tt.want {
			t.Errorf("EligibleInput(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestPandocArgs(t *testing.T) {
	req := Request{SourcePath: "in/a.md", TemplatePath: "tpl/report.tex"}

	t.Run("pdf with template and engine", func(t *testing.T) {
		args := pandocArgs(req, Strategy{Engine: EngineXelatex, UseTemplate: true, Format: FormatPDF}, "out/a.pdf")
		want := "in/a.md -f markdown -t pdf -o out/a.pdf --template tpl/report.tex --pdf-engine xelatex"
		if got := strings.Join(args, " "); got != want {
			t.Errorf("args = %q, want %q", got, want)
		}
	})

	t.Run("docx without template", func(t *testing.T) {
		args := pandocArgs(req, Strategy{Format: FormatDocx}, "out/a.docx")
		joined := strings.Join(args, " ")
		if strings.Contains(joined, "--template") || strings.Contains(joined, "--pdf-engine") {
			t.Errorf("unexpected flags in %q", joined)
		}
		if !strings.Contains(joined, "-t docx") {
			t.Errorf("args = %q", joined)
		}
	})

	t.Run("html writer name", func(t *testing.T) {
		args := pandocArgs(req, Strategy{Format: FormatHTML}, "out/a.html")
		if !strings.Contains(strings.Join(args, " "), "-t html5") {
			t.Errorf("args = %v", args)
		}
	})

	t.Run("rst reader detected", func(t *testing.T) {
		rstReq := Request{SourcePath: "in/b.rst"}
		args := pandocArgs(rstReq, Strategy{Format: FormatPDF}, "out/b.pdf")
		if !strings.Contains(strings.Join(args, " "), "-f rst") {
			t.Errorf("args = %v", args)
		}
	})
}
