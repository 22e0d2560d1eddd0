package chromiumoxide

import (
	"context"

	"github.com/mattsse/chromiumoxide/cdp/page"
)

// ScreenshotOption mutates the underlying capture params.
type ScreenshotOption func(*page.CaptureScreenshotParams) *page.CaptureScreenshotParams

// ScreenshotFormat sets the image format (png, jpeg, webp).
func ScreenshotFormat(format string) ScreenshotOption {
	return func(p *page.CaptureScreenshotParams) *page.CaptureScreenshotParams {
		return p.WithFormat(format)
	}
}

// ScreenshotQuality sets the compression quality for lossy formats.
func ScreenshotQuality(quality int64) ScreenshotOption {
	return func(p *page.CaptureScreenshotParams) *page.CaptureScreenshotParams {
		return p.WithQuality(quality)
	}
}

// FullPage captures content beyond the current viewport.
func FullPage(p *page.CaptureScreenshotParams) *page.CaptureScreenshotParams {
	return p.WithCaptureBeyondViewport(true)
}

// Screenshot captures a screenshot of the page viewport as png, unless
// overridden by options.
func (p *Page) Screenshot(ctx context.Context, opts ...ScreenshotOption) ([]byte, error) {
	params := page.CaptureScreenshot().WithFormat("png")
	for _, o := range opts {
		params = o(params)
	}
	return params.Do(p.ctx(ctx))
}
