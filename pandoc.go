package docforge

import (
	"path/filepath"
	"strings"
)

// pandocBinary is the external renderer driving every non-builtin strategy.
const pandocBinary = "pandoc"

// inputFormats maps source extensions to pandoc reader names. Sources
// with other extensions are not eligible for conversion.
var inputFormats = map[string]string{
	".md":       "markdown",
	".markdown": "markdown",
	".txt":      "markdown",
	".rst":      "rst",
	".org":      "org",
	".tex":      "latex",
	".html":     "html",
	".htm":      "html",
	".ipynb":    "ipynb",
	".docx":     "docx",
	".odt":      "odt",
}

// EligibleInput reports whether path has a recognized source extension.
func EligibleInput(path string) bool {
	_, ok := inputFormats[strings.ToLower(filepath.Ext(path))]
	return ok
}

// inputFormat returns the pandoc reader name for path's extension,
// defaulting to markdown.
func inputFormat(path string) string {
	if f, ok := inputFormats[strings.ToLower(filepath.Ext(path))]; ok {
		return f
	}
	return "markdown"
}

// pandocTarget returns the pandoc writer name for a format.
func pandocTarget(f Format) string {
	if f == FormatHTML {
		return "html5"
	}
	return string(f)
}

// pandocArgs builds the renderer command line for one strategy attempt:
//
//	pandoc <source> -f <reader> -t <writer> -o <output> [--template <path>] [--pdf-engine <engine>]
func pandocArgs(req Request, s Strategy, outputPath string) []string {
	args := []string{
		req.SourcePath,
		"-f", inputFormat(req.SourcePath),
		"-t", pandocTarget(s.Format),
		"-o", outputPath,
	}
	if s.UseTemplate && req.TemplatePath != "" {
		args = append(args, "--template", req.TemplatePath)
	}
	if s.Format == FormatPDF && s.Engine != "" {
		args = append(args, "--pdf-engine", s.Engine)
	}
	return args
}
