package docforge

import "fmt"

// PDF engine and builtin renderer names. An empty engine leaves the
// choice to pandoc; builtin renderers run in-process without pandoc.
const (
	EngineXelatex  = "xelatex"
	EngineLualatex = "lualatex"
	EnginePdflatex = "pdflatex"

	engineChrome   = "chrome"
	engineGoldmark = "goldmark"
)

// Strategy is one concrete (engine, template presence, output format)
// combination in the fallback chain.
type Strategy struct {
	Engine      string
	UseTemplate bool
	Format      Format
}

// Builtin reports whether the strategy renders in-process instead of
// invoking pandoc.
func (s Strategy) Builtin() bool {
	return s.Engine == engineChrome || s.Engine == engineGoldmark
}

// usageName identifies the winning renderer for the engine-usage
// counters. Engine-less pandoc downgrades get a fallback label so
// they remain visible in metrics.
func (s Strategy) usageName() string {
	if s.Engine != "" {
		return s.Engine
	}
	return string(s.Format) + "_fallback"
}

func (s Strategy) String() string {
	name := string(s.Format)
	if s.Engine != "" {
		name = fmt.Sprintf("%s/%s", s.Format, s.Engine)
	}
	if s.UseTemplate {
		name += "+template"
	}
	return name
}

// pdfEngineOrder returns the PDF engine priority. Templates that declare
// fontspec or custom fonts need a Unicode-capable engine first;
// otherwise the lighter engine leads.
func pdfEngineOrder(needsUnicode bool) []string {
	if needsUnicode {
		return []string{EngineXelatex, EngineLualatex, EnginePdflatex}
	}
	return []string{EnginePdflatex, EngineXelatex, EngineLualatex}
}

// buildChain returns the ordered fallback chain for a request. The
// canonical ordering is richer-to-leaner engine, then template-present
// before template-absent, then format downgrade last; the chain always
// ends in a builtin strategy requiring no template and no external
// toolchain.
func buildChain(req Request, needsUnicode bool) []Strategy {
	hasTemplate := req.TemplatePath != ""
	var chain []Strategy

	switch req.Format {
	case FormatPDF:
		for _, engine := range pdfEngineOrder(needsUnicode) {
			if hasTemplate {
				chain = append(chain, Strategy{Engine: engine, UseTemplate: true, Format: FormatPDF})
			}
		}
		for _, engine := range pdfEngineOrder(needsUnicode) {
			chain = append(chain, Strategy{Engine: engine, Format: FormatPDF})
		}
		chain = append(chain,
			Strategy{Engine: engineChrome, Format: FormatPDF},
			Strategy{Format: FormatDocx},
			Strategy{Format: FormatHTML},
		)

	case FormatDocx:
		if hasTemplate {
			chain = append(chain, Strategy{UseTemplate: true, Format: FormatDocx})
		}
		chain = append(chain,
			Strategy{Format: FormatDocx},
			Strategy{Format: FormatHTML},
		)

	case FormatHTML:
		if hasTemplate {
			chain = append(chain, Strategy{UseTemplate: true, Format: FormatHTML})
		}
		chain = append(chain, Strategy{Format: FormatHTML})
	}

	chain = append(chain, Strategy{Engine: engineGoldmark, Format: FormatHTML})
	return chain
}

// classify maps the winning strategy to a terminal status. A format
// downgrade or a dropped template degrades the outcome; engine
// substitution alone does not, since the requested format and template
// were both honored.
func classify(req Request, chain []Strategy, winner Strategy) Status {
	if winner.Format != req.Format {
		return StatusDegraded
	}
	if chain[0].UseTemplate && !winner.UseTemplate {
		return StatusDegraded
	}
	return StatusSuccess
}
