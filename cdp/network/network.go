// Package network provides the typed commands and events of the Network
// domain used by the driver: enabling notifications and cookie management.
package network

import (
	"context"

	"github.com/mattsse/chromiumoxide/cdp"
)

// Network domain command methods.
const (
	CommandEnable              = "Network.enable"
	CommandDisable             = "Network.disable"
	CommandGetCookies          = "Network.getCookies"
	CommandSetCookie           = "Network.setCookie"
	CommandSetCookies          = "Network.setCookies"
	CommandClearBrowserCookies = "Network.clearBrowserCookies"
	CommandSetExtraHTTPHeaders = "Network.setExtraHTTPHeaders"
	CommandSetCacheDisabled    = "Network.setCacheDisabled"
)

// Network domain event methods.
const (
	MethodRequestWillBeSent cdp.MethodType = "Network.requestWillBeSent"
	MethodResponseReceived  cdp.MethodType = "Network.responseReceived"
	MethodLoadingFinished   cdp.MethodType = "Network.loadingFinished"
	MethodLoadingFailed     cdp.MethodType = "Network.loadingFailed"
)

// RequestID uniquely identifies a network request.
type RequestID string

// Cookie is a cookie as reported by the browser.
type Cookie struct {
	Name     string  `json:"name"`
	Value    string  `json:"value"`
	Domain   string  `json:"domain"`
	Path     string  `json:"path"`
	Expires  float64 `json:"expires"`
	Size     int64   `json:"size"`
	HTTPOnly bool    `json:"httpOnly"`
	Secure   bool    `json:"secure"`
	Session  bool    `json:"session"`
	SameSite string  `json:"sameSite,omitempty"`
}

// CookieParam describes a cookie to store.
type CookieParam struct {
	Name     string  `json:"name"`
	Value    string  `json:"value"`
	URL      string  `json:"url,omitempty"`
	Domain   string  `json:"domain,omitempty"`
	Path     string  `json:"path,omitempty"`
	Secure   bool    `json:"secure,omitempty"`
	HTTPOnly bool    `json:"httpOnly,omitempty"`
	SameSite string  `json:"sameSite,omitempty"`
	Expires  float64 `json:"expires,omitempty"`
}

// Request describes an issued HTTP request.
type Request struct {
	URL     string            `json:"url"`
	Method  string            `json:"method"`
	Headers map[string]string `json:"headers"`
}

// Response describes a received HTTP response.
type Response struct {
	URL        string         `json:"url"`
	Status     int64          `json:"status"`
	StatusText string         `json:"statusText"`
	Headers    map[string]any `json:"headers"`
	MimeType   string         `json:"mimeType"`
}

// EnableParams enables network notifications.
type EnableParams struct {
	MaxTotalBufferSize    int64 `json:"maxTotalBufferSize,omitempty"`
	MaxResourceBufferSize int64 `json:"maxResourceBufferSize,omitempty"`
}

// Enable enables network event reporting.
func Enable() *EnableParams { return &EnableParams{} }

// Do executes Network.enable.
func (p *EnableParams) Do(ctx context.Context) error {
	return cdp.Execute(ctx, CommandEnable, p, nil)
}

// DisableParams disables network notifications.
type DisableParams struct{}

// Disable disables network event reporting.
func Disable() *DisableParams { return &DisableParams{} }

// Do executes Network.disable.
func (p *DisableParams) Do(ctx context.Context) error {
	return cdp.Execute(ctx, CommandDisable, nil, nil)
}

// GetCookiesParams retrieves cookies for the given urls.
type GetCookiesParams struct {
	URLs []string `json:"urls,omitempty"`
}

// GetCookies returns cookies for the current page url.
func GetCookies() *GetCookiesParams { return &GetCookiesParams{} }

// WithURLs restricts the lookup to the given urls.
func (p *GetCookiesParams) WithURLs(urls []string) *GetCookiesParams {
	p.URLs = urls
	return p
}

// GetCookiesReturns holds the cookie list.
type GetCookiesReturns struct {
	Cookies []*Cookie `json:"cookies"`
}

// Do executes Network.getCookies.
func (p *GetCookiesParams) Do(ctx context.Context) ([]*Cookie, error) {
	var res GetCookiesReturns
	if err := cdp.Execute(ctx, CommandGetCookies, p, &res); err != nil {
		return nil, err
	}
	return res.Cookies, nil
}

// SetCookiesParams stores multiple cookies.
type SetCookiesParams struct {
	Cookies []*CookieParam `json:"cookies"`
}

// SetCookies stores the given cookies.
func SetCookies(cookies []*CookieParam) *SetCookiesParams {
	return &SetCookiesParams{Cookies: cookies}
}

// Do executes Network.setCookies.
func (p *SetCookiesParams) Do(ctx context.Context) error {
	return cdp.Execute(ctx, CommandSetCookies, p, nil)
}

// ClearBrowserCookiesParams clears all browser cookies.
type ClearBrowserCookiesParams struct{}

// ClearBrowserCookies clears all cookies.
func ClearBrowserCookies() *ClearBrowserCookiesParams {
	return &ClearBrowserCookiesParams{}
}

// Do executes Network.clearBrowserCookies.
func (p *ClearBrowserCookiesParams) Do(ctx context.Context) error {
	return cdp.Execute(ctx, CommandClearBrowserCookies, nil, nil)
}

// SetExtraHTTPHeadersParams attaches extra headers to every request.
type SetExtraHTTPHeadersParams struct {
	Headers map[string]string `json:"headers"`
}

// SetExtraHTTPHeaders sets headers sent with every request from the page.
func SetExtraHTTPHeaders(headers map[string]string) *SetExtraHTTPHeadersParams {
	return &SetExtraHTTPHeadersParams{Headers: headers}
}

// Do executes Network.setExtraHTTPHeaders.
func (p *SetExtraHTTPHeadersParams) Do(ctx context.Context) error {
	return cdp.Execute(ctx, CommandSetExtraHTTPHeaders, p, nil)
}

// SetCacheDisabledParams toggles the browser cache for the session.
type SetCacheDisabledParams struct {
	CacheDisabled bool `json:"cacheDisabled"`
}

// SetCacheDisabled toggles ignoring the cache for each request.
func SetCacheDisabled(disabled bool) *SetCacheDisabledParams {
	return &SetCacheDisabledParams{CacheDisabled: disabled}
}

// Do executes Network.setCacheDisabled.
func (p *SetCacheDisabledParams) Do(ctx context.Context) error {
	return cdp.Execute(ctx, CommandSetCacheDisabled, p, nil)
}

// EventRequestWillBeSent is issued when a request is about to be sent.
type EventRequestWillBeSent struct {
	RequestID   RequestID    `json:"requestId"`
	LoaderID    cdp.LoaderID `json:"loaderId"`
	DocumentURL string       `json:"documentURL"`
	Request     *Request     `json:"request"`
	Timestamp   float64      `json:"timestamp"`
	FrameID     cdp.FrameID  `json:"frameId,omitempty"`
	Type        string       `json:"type,omitempty"`
}

// EventResponseReceived is issued when an HTTP response becomes available.
type EventResponseReceived struct {
	RequestID RequestID   `json:"requestId"`
	LoaderID  cdp.LoaderID `json:"loaderId"`
	Timestamp float64     `json:"timestamp"`
	Type      string      `json:"type,omitempty"`
	Response  *Response   `json:"response"`
	FrameID   cdp.FrameID `json:"frameId,omitempty"`
}

// EventLoadingFinished is issued when a request has finished loading.
type EventLoadingFinished struct {
	RequestID         RequestID `json:"requestId"`
	Timestamp         float64   `json:"timestamp"`
	EncodedDataLength float64   `json:"encodedDataLength"`
}

// EventLoadingFailed is issued when a request has failed to load.
type EventLoadingFailed struct {
	RequestID RequestID `json:"requestId"`
	Timestamp float64   `json:"timestamp"`
	Type      string    `json:"type,omitempty"`
	ErrorText string    `json:"errorText"`
	Canceled  bool      `json:"canceled,omitempty"`
}
