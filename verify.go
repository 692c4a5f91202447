package docforge

import (
	"fmt"

	"github.com/ledongthuc/pdf"
)

// verifyPDF opens a produced PDF artifact and returns its page count.
// The check is advisory: a failure is logged, never escalated, since the
// renderer's exit status already vouched for the artifact.
func verifyPDF(path string) (int, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return 0, fmt.Errorf("opening artifact: %w", err)
	}
	defer f.Close()

	pages := reader.NumPage()
	if pages < 1 {
		return 0, fmt.Errorf("artifact has no pages")
	}
	return pages, nil
}
