package capture

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/chromedp"
)

// Default capture parameters for the OGP timeline image.
const (
	DefaultWidth      = 1200
	DefaultHeight     = 630
	DefaultTimeoutSec = 30
)

// Options defines parameters for a Chromium-based screenshot capture.
type Options struct {
	// HTMLPath is the local timeline document to rasterize; it is
	// converted into a file:// URL.
	HTMLPath string

	// OutputPath is where the PNG screenshot will be written, e.g.
	// "ogp_image.png".
	OutputPath string

	// Width and Height are the viewport dimensions in pixels. If zero,
	// DefaultWidth / DefaultHeight are used.
	Width  int
	Height int

	// Timeout bounds the entire capture operation. If zero, a sane
	// default (DefaultTimeoutSec) is used.
	Timeout time.Duration
}

// TimelinePNG launches a headless Chromium instance via chromedp, loads
// the rendered timeline HTML, waits for the document to signal that it
// is ready, and captures a PNG screenshot at the canvas resolution.
//
// Rendering-complete condition:
//   - The emitted chart document carries data-ready="true" on <body>;
//     the capture waits until `[data-ready="true"]` is visible.
//
// The output is a full-color PNG of exactly the viewport size, suitable
// as the page's OGP image.
func TimelinePNG(parentCtx context.Context, opts Options) error {
	if opts.HTMLPath == "" {
		return fmt.Errorf("capture: HTMLPath is required")
	}
	if opts.OutputPath == "" {
		return fmt.Errorf("capture: OutputPath is required")
	}
	if opts.Width <= 0 {
		opts.Width = DefaultWidth
	}
	if opts.Height <= 0 {
		opts.Height = DefaultHeight
	}
	if opts.Timeout <= 0 {
		opts.Timeout = time.Duration(DefaultTimeoutSec) * time.Second
	}

	abs, err := filepath.Abs(opts.HTMLPath)
	if err != nil {
		return fmt.Errorf("capture: resolve HTML path: %w", err)
	}
	url := "file://" + abs

	ctx, cancel := chromedp.NewContext(parentCtx)
	defer cancel()

	ctx, timeoutCancel := context.WithTimeout(ctx, opts.Timeout)
	defer timeoutCancel()

	var png []byte
	tasks := chromedp.Tasks{
		chromedp.EmulateViewport(int64(opts.Width), int64(opts.Height)),
		chromedp.Navigate(url),
		chromedp.WaitVisible(`[data-ready="true"]`, chromedp.ByQuery),
		// Small extra delay to allow final paints (web fonts).
		chromedp.Sleep(500 * time.Millisecond),
		chromedp.FullScreenshot(&png, 100),
	}

	if err := chromedp.Run(ctx, tasks); err != nil {
		return fmt.Errorf("capture: chromedp run failed: %w", err)
	}

	if err := os.WriteFile(opts.OutputPath, png, 0o644); err != nil {
		return fmt.Errorf("capture: failed to write PNG: %w", err)
	}

	return nil
}
