// Package docforge converts document sources into rendered artifacts by
// orchestrating pandoc and a chain of typesetting engines, tolerating
// missing dependencies, malformed inputs, and transient failures.
//
// The pipeline is built from explicitly constructed parts: a
// content-addressed job cache deduplicates work, a template analyzer
// preflights LaTeX templates, and the strategy engine walks an ordered
// fallback chain of (engine, template, format) combinations until one
// produces an artifact. A scheduler drives the engine over batches,
// watch loops, or a detached daemon with a bounded worker pool.
//
// Basic usage:
//
//	engine := docforge.New()
//	result := engine.Convert(ctx, docforge.Request{
//		SourcePath: "notes.md",
//		OutputDir:  "output",
//		Format:     docforge.FormatPDF,
//	})
package docforge
