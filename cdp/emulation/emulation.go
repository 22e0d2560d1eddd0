// Package emulation provides the typed commands of the Emulation domain used
// for device emulation.
package emulation

import (
	"context"

	"github.com/mattsse/chromiumoxide/cdp"
)

// Emulation domain command methods.
const (
	CommandSetDeviceMetricsOverride   = "Emulation.setDeviceMetricsOverride"
	CommandClearDeviceMetricsOverride = "Emulation.clearDeviceMetricsOverride"
	CommandSetUserAgentOverride       = "Emulation.setUserAgentOverride"
	CommandSetTouchEmulationEnabled   = "Emulation.setTouchEmulationEnabled"
)

// ScreenOrientation describes the emulated screen orientation.
type ScreenOrientation struct {
	Type  string `json:"type"`
	Angle int64  `json:"angle"`
}

// SetDeviceMetricsOverrideParams overrides the device screen dimensions.
type SetDeviceMetricsOverrideParams struct {
	Width             int64              `json:"width"`
	Height            int64              `json:"height"`
	DeviceScaleFactor float64            `json:"deviceScaleFactor"`
	Mobile            bool               `json:"mobile"`
	ScreenOrientation *ScreenOrientation `json:"screenOrientation,omitempty"`
}

// SetDeviceMetricsOverride overrides screen dimensions for the page.
func SetDeviceMetricsOverride(width, height int64, scale float64, mobile bool) *SetDeviceMetricsOverrideParams {
	return &SetDeviceMetricsOverrideParams{
		Width:             width,
		Height:            height,
		DeviceScaleFactor: scale,
		Mobile:            mobile,
	}
}

// WithScreenOrientation sets the emulated orientation.
func (p *SetDeviceMetricsOverrideParams) WithScreenOrientation(o *ScreenOrientation) *SetDeviceMetricsOverrideParams {
	p.ScreenOrientation = o
	return p
}

// Do executes Emulation.setDeviceMetricsOverride.
func (p *SetDeviceMetricsOverrideParams) Do(ctx context.Context) error {
	return cdp.Execute(ctx, CommandSetDeviceMetricsOverride, p, nil)
}

// ClearDeviceMetricsOverrideParams clears the device metrics override.
type ClearDeviceMetricsOverrideParams struct{}

// ClearDeviceMetricsOverride restores the real screen dimensions.
func ClearDeviceMetricsOverride() *ClearDeviceMetricsOverrideParams {
	return &ClearDeviceMetricsOverrideParams{}
}

// Do executes Emulation.clearDeviceMetricsOverride.
func (p *ClearDeviceMetricsOverrideParams) Do(ctx context.Context) error {
	return cdp.Execute(ctx, CommandClearDeviceMetricsOverride, nil, nil)
}

// SetUserAgentOverrideParams overrides the user agent string.
type SetUserAgentOverrideParams struct {
	UserAgent      string `json:"userAgent"`
	AcceptLanguage string `json:"acceptLanguage,omitempty"`
	Platform       string `json:"platform,omitempty"`
}

// SetUserAgentOverride overrides the user agent sent by the page.
func SetUserAgentOverride(userAgent string) *SetUserAgentOverrideParams {
	return &SetUserAgentOverrideParams{UserAgent: userAgent}
}

// WithAcceptLanguage overrides the Accept-Language header.
func (p *SetUserAgentOverrideParams) WithAcceptLanguage(lang string) *SetUserAgentOverrideParams {
	p.AcceptLanguage = lang
	return p
}

// Do executes Emulation.setUserAgentOverride.
func (p *SetUserAgentOverrideParams) Do(ctx context.Context) error {
	return cdp.Execute(ctx, CommandSetUserAgentOverride, p, nil)
}

// SetTouchEmulationEnabledParams toggles touch event emulation.
type SetTouchEmulationEnabledParams struct {
	Enabled        bool  `json:"enabled"`
	MaxTouchPoints int64 `json:"maxTouchPoints,omitempty"`
}

// SetTouchEmulationEnabled enables touch event emulation.
func SetTouchEmulationEnabled(enabled bool) *SetTouchEmulationEnabledParams {
	return &SetTouchEmulationEnabledParams{Enabled: enabled}
}

// Do executes Emulation.setTouchEmulationEnabled.
func (p *SetTouchEmulationEnabledParams) Do(ctx context.Context) error {
	return cdp.Execute(ctx, CommandSetTouchEmulationEnabled, p, nil)
}
