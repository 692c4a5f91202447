// Package htmlgen renders Markdown to standalone HTML documents in pure
// Go. It backs the built-in HTML strategy used when pandoc cannot
// produce any richer output, and feeds the headless-browser PDF path.
package htmlgen

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html"
	"path/filepath"
	"strings"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	goldmarkhtml "github.com/yuin/goldmark/renderer/html"
)

// ErrRender indicates Markdown rendering failed.
var ErrRender = errors.New("HTML rendering failed")

// documentShell wraps the rendered fragment in a complete HTML5 document.
// Styling is inlined so artifacts stay self-contained.
const documentShell = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>%s</title>
<style>
body { font-family: serif; max-width: 48rem; margin: 2rem auto; padding: 0 1rem; line-height: 1.5; }
pre { background: #f5f5f5; padding: 0.75rem; overflow-x: auto; }
code { font-family: monospace; }
table { border-collapse: collapse; }
th, td { border: 1px solid #999; padding: 0.25rem 0.5rem; }
blockquote { border-left: 3px solid #ccc; margin-left: 0; padding-left: 1rem; color: #555; }
</style>
</head>
<body>
%s
</body>
</html>`

// Renderer converts Markdown source to a standalone HTML5 document.
type Renderer struct {
	md goldmark.Markdown
}

// NewRenderer creates a Renderer with GFM extensions, footnotes, and
// syntax highlighting.
func NewRenderer() *Renderer {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Footnote,
			highlighting.NewHighlighting(
				highlighting.WithStyle("github"),
				highlighting.WithFormatOptions(
					chromahtml.WithClasses(false),
				),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			goldmarkhtml.WithXHTML(),
		),
	)
	return &Renderer{md: md}
}

// Render converts Markdown content into a standalone HTML5 document.
// The document title derives from sourcePath's stem. Goldmark has no
// native context support, so conversion runs in a goroutine and the
// select honors cancellation.
func (r *Renderer) Render(ctx context.Context, sourcePath string, content []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	type result struct {
		html string
		err  error
	}

	done := make(chan result, 1)

	go func() {
		var buf bytes.Buffer
		if err := r.md.Convert(content, &buf); err != nil {
			done <- result{err: fmt.Errorf("%w: %v", ErrRender, err)}
			return
		}
		title := strings.TrimSuffix(filepath.Base(sourcePath), filepath.Ext(sourcePath))
		done <- result{html: fmt.Sprintf(documentShell, html.EscapeString(title), buf.String())}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-done:
		return res.html, res.err
	}
}
