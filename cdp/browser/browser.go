// Package browser provides the typed commands of the Browser domain.
package browser

import (
	"context"

	"github.com/mattsse/chromiumoxide/cdp"
)

// Browser domain command methods.
const (
	CommandClose      = "Browser.close"
	CommandGetVersion = "Browser.getVersion"
)

// CloseParams closes the browser gracefully.
type CloseParams struct{}

// Close asks the browser to shut down.
func Close() *CloseParams { return &CloseParams{} }

// Do executes Browser.close.
func (p *CloseParams) Do(ctx context.Context) error {
	return cdp.Execute(ctx, CommandClose, nil, nil)
}

// GetVersionParams retrieves browser version information.
type GetVersionParams struct{}

// GetVersion returns version metadata about the connected browser.
func GetVersion() *GetVersionParams { return &GetVersionParams{} }

// GetVersionReturns holds the version metadata.
type GetVersionReturns struct {
	ProtocolVersion string `json:"protocolVersion"`
	Product         string `json:"product"`
	Revision        string `json:"revision"`
	UserAgent       string `json:"userAgent"`
	JsVersion       string `json:"jsVersion"`
}

// Do executes Browser.getVersion.
func (p *GetVersionParams) Do(ctx context.Context) (*GetVersionReturns, error) {
	res := new(GetVersionReturns)
	if err := cdp.Execute(ctx, CommandGetVersion, nil, res); err != nil {
		return nil, err
	}
	return res, nil
}
