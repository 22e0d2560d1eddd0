package chromiumoxide

import (
	"bytes"
	"context"
	"fmt"

	"github.com/ledongthuc/pdf"

	"github.com/mattsse/chromiumoxide/cdp/page"
)

// PDFOption mutates the underlying print params.
type PDFOption func(*page.PrintToPDFParams) *page.PrintToPDFParams

// PDFLandscape prints in landscape orientation.
func PDFLandscape(p *page.PrintToPDFParams) *page.PrintToPDFParams {
	return p.WithLandscape(true)
}

// PDFWithBackground includes background graphics.
func PDFWithBackground(p *page.PrintToPDFParams) *page.PrintToPDFParams {
	return p.WithPrintBackground(true)
}

// PDF renders the page as a paginated PDF document.
func (p *Page) PDF(ctx context.Context, opts ...PDFOption) ([]byte, error) {
	params := page.PrintToPDF()
	for _, o := range opts {
		params = o(params)
	}
	return params.Do(p.ctx(ctx))
}

// PDFInfo is summary data of a rendered PDF document.
type PDFInfo struct {
	// NumPages is the page count.
	NumPages int
}

// ParsePDF sanity-checks rendered PDF bytes and reports summary data. It is
// mainly useful to verify Page.PDF output.
func ParsePDF(data []byte) (*PDFInfo, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("invalid pdf: %w", err)
	}
	return &PDFInfo{NumPages: r.NumPage()}, nil
}
