// Package chromepdf renders HTML files to PDF through a headless
// browser. It backs the built-in chrome-pdf strategy, used when every
// pandoc-driven PDF attempt has failed but PDF output is still wanted.
//
// The renderer never downloads a browser. It only runs when a Chromium
// binary is already present on the host (or named via ROD_BROWSER_BIN),
// so availability must be checked before dispatching work to it.
package chromepdf

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

var (
	// ErrNoBrowser indicates no Chromium binary was found on the host.
	ErrNoBrowser = errors.New("no chromium binary available")
	// ErrBrowserConnect indicates the browser failed to launch or connect.
	ErrBrowserConnect = errors.New("browser connection failed")
	// ErrPageLoad indicates the page failed to load before the deadline.
	ErrPageLoad = errors.New("page load failed")
	// ErrPDFGeneration indicates Chrome's print-to-PDF call failed.
	ErrPDFGeneration = errors.New("PDF generation failed")
)

// US Letter with half-inch margins.
const (
	paperWidthInches  = 8.5
	paperHeightInches = 11
	marginInches      = 0.5
)

// Renderer drives a lazily launched headless browser. Safe for
// concurrent use; the browser connects once and pages are per-call.
type Renderer struct {
	timeout time.Duration

	mu      sync.Mutex
	browser *rod.Browser
}

// New creates a Renderer. timeout bounds page load per render call when
// the caller's context has no earlier deadline.
func New(timeout time.Duration) *Renderer {
	return &Renderer{timeout: timeout}
}

// Available reports whether a browser binary exists on this host.
// ROD_BROWSER_BIN takes precedence over system discovery.
func Available() bool {
	if bin := os.Getenv("ROD_BROWSER_BIN"); bin != "" {
		_, err := os.Stat(bin)
		return err == nil
	}
	_, found := launcher.LookPath()
	return found
}

// ensureBrowser launches and connects on first use.
func (r *Renderer) ensureBrowser() (*rod.Browser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.browser != nil {
		return r.browser, nil
	}

	l := launcher.New()
	if bin := os.Getenv("ROD_BROWSER_BIN"); bin != "" {
		l = l.Bin(bin).NoSandbox(true)
	} else {
		bin, found := launcher.LookPath()
		if !found {
			return nil, ErrNoBrowser
		}
		l = l.Bin(bin)
	}
	if os.Getenv("CI") == "true" {
		l = l.NoSandbox(true)
	}

	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	r.browser = browser
	return r.browser, nil
}

// Close releases the browser if one was launched.
func (r *Renderer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.browser == nil {
		return nil
	}
	err := r.browser.Close()
	r.browser = nil
	return err
}

// RenderFile loads a local HTML file in the browser and returns the
// printed PDF bytes.
func (r *Renderer) RenderFile(ctx context.Context, htmlPath string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	browser, err := r.ensureBrowser()
	if err != nil {
		return nil, err
	}

	page, err := browser.Page(proto.TargetCreateTarget{URL: "file://" + htmlPath})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}
	defer page.Close()

	timeout := r.timeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
		if timeout <= 0 {
			return nil, context.DeadlineExceeded
		}
	}

	if err := page.Timeout(timeout).WaitLoad(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	reader, err := page.PDF(&proto.PagePrintToPDF{
		PaperWidth:      floatPtr(paperWidthInches),
		PaperHeight:     floatPtr(paperHeightInches),
		MarginTop:       floatPtr(marginInches),
		MarginBottom:    floatPtr(marginInches),
		MarginLeft:      floatPtr(marginInches),
		MarginRight:     floatPtr(marginInches),
		PrintBackground: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPDFGeneration, err)
	}

	pdfBytes, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: reading PDF stream: %v", ErrPDFGeneration, err)
	}
	return pdfBytes, nil
}

func floatPtr(v float64) *float64 {
	return &v
}
