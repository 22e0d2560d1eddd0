// Package page provides the typed commands and events of the Page domain.
package page

import (
	"context"

	"github.com/mattsse/chromiumoxide/cdp"
)

// Page domain command methods.
const (
	CommandEnable                     = "Page.enable"
	CommandDisable                    = "Page.disable"
	CommandNavigate                   = "Page.navigate"
	CommandReload                     = "Page.reload"
	CommandStopLoading                = "Page.stopLoading"
	CommandBringToFront               = "Page.bringToFront"
	CommandCaptureScreenshot          = "Page.captureScreenshot"
	CommandPrintToPDF                 = "Page.printToPDF"
	CommandGetNavigationHistory       = "Page.getNavigationHistory"
	CommandNavigateToHistoryEntry     = "Page.navigateToHistoryEntry"
	CommandSetLifecycleEventsEnabled  = "Page.setLifecycleEventsEnabled"
	CommandGetFrameTree               = "Page.getFrameTree"
	CommandHandleJavaScriptDialog     = "Page.handleJavaScriptDialog"
	CommandAddScriptToEvaluateOnNewDocument = "Page.addScriptToEvaluateOnNewDocument"
)

// Page domain event methods.
const (
	MethodFrameAttached            cdp.MethodType = "Page.frameAttached"
	MethodFrameNavigated           cdp.MethodType = "Page.frameNavigated"
	MethodFrameDetached            cdp.MethodType = "Page.frameDetached"
	MethodFrameStartedLoading      cdp.MethodType = "Page.frameStartedLoading"
	MethodFrameStoppedLoading      cdp.MethodType = "Page.frameStoppedLoading"
	MethodLifecycleEvent           cdp.MethodType = "Page.lifecycleEvent"
	MethodLoadEventFired           cdp.MethodType = "Page.loadEventFired"
	MethodDomContentEventFired     cdp.MethodType = "Page.domContentEventFired"
	MethodNavigatedWithinDocument  cdp.MethodType = "Page.navigatedWithinDocument"
	MethodJavascriptDialogOpening  cdp.MethodType = "Page.javascriptDialogOpening"
)

// Frame describes a frame on the page as reported by the browser.
type Frame struct {
	ID       cdp.FrameID  `json:"id"`
	ParentID cdp.FrameID  `json:"parentId,omitempty"`
	LoaderID cdp.LoaderID `json:"loaderId"`
	Name     string       `json:"name,omitempty"`
	URL      string       `json:"url"`
	MimeType string       `json:"mimeType,omitempty"`
}

// FrameTree is the frame hierarchy of the page.
type FrameTree struct {
	Frame       *Frame       `json:"frame"`
	ChildFrames []*FrameTree `json:"childFrames,omitempty"`
}

// NavigationEntry is one entry of the page's session history.
type NavigationEntry struct {
	ID             int64  `json:"id"`
	URL            string `json:"url"`
	UserTypedURL   string `json:"userTypedURL"`
	Title          string `json:"title"`
	TransitionType string `json:"transitionType"`
}

// Viewport defines a rectangle in CSS pixels, optionally scaled.
type Viewport struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Scale  float64 `json:"scale"`
}

// EnableParams enables page domain notifications.
type EnableParams struct{}

// Enable enables page domain notifications.
func Enable() *EnableParams { return &EnableParams{} }

// Do executes Page.enable.
func (p *EnableParams) Do(ctx context.Context) error {
	return cdp.Execute(ctx, CommandEnable, nil, nil)
}

// DisableParams disables page domain notifications.
type DisableParams struct{}

// Disable disables page domain notifications.
func Disable() *DisableParams { return &DisableParams{} }

// Do executes Page.disable.
func (p *DisableParams) Do(ctx context.Context) error {
	return cdp.Execute(ctx, CommandDisable, nil, nil)
}

// NavigateParams navigates the frame to the given url.
type NavigateParams struct {
	URL            string      `json:"url"`
	Referrer       string      `json:"referrer,omitempty"`
	TransitionType string      `json:"transitionType,omitempty"`
	FrameID        cdp.FrameID `json:"frameId,omitempty"`
}

// Navigate navigates the page's main frame to the given url.
func Navigate(urlstr string) *NavigateParams {
	return &NavigateParams{URL: urlstr}
}

// WithReferrer sets the referrer sent with the navigation.
func (p *NavigateParams) WithReferrer(referrer string) *NavigateParams {
	p.Referrer = referrer
	return p
}

// WithFrameID navigates the given frame instead of the main frame.
func (p *NavigateParams) WithFrameID(id cdp.FrameID) *NavigateParams {
	p.FrameID = id
	return p
}

// NavigateReturns holds the frame and loader of the started navigation.
type NavigateReturns struct {
	FrameID   cdp.FrameID  `json:"frameId"`
	LoaderID  cdp.LoaderID `json:"loaderId,omitempty"`
	ErrorText string       `json:"errorText,omitempty"`
}

// Do executes Page.navigate.
func (p *NavigateParams) Do(ctx context.Context) (cdp.FrameID, cdp.LoaderID, error) {
	var res NavigateReturns
	if err := cdp.Execute(ctx, CommandNavigate, p, &res); err != nil {
		return "", "", err
	}
	return res.FrameID, res.LoaderID, nil
}

// ReloadParams reloads the page.
type ReloadParams struct {
	IgnoreCache bool `json:"ignoreCache,omitempty"`
}

// Reload reloads the page, optionally ignoring the cache.
func Reload() *ReloadParams { return &ReloadParams{} }

// WithIgnoreCache bypasses the browser cache on reload.
func (p *ReloadParams) WithIgnoreCache(ignore bool) *ReloadParams {
	p.IgnoreCache = ignore
	return p
}

// Do executes Page.reload.
func (p *ReloadParams) Do(ctx context.Context) error {
	return cdp.Execute(ctx, CommandReload, p, nil)
}

// StopLoadingParams stops all navigations and pending resource fetches.
type StopLoadingParams struct{}

// StopLoading stops loading the page.
func StopLoading() *StopLoadingParams { return &StopLoadingParams{} }

// Do executes Page.stopLoading.
func (p *StopLoadingParams) Do(ctx context.Context) error {
	return cdp.Execute(ctx, CommandStopLoading, nil, nil)
}

// BringToFrontParams brings the page to front.
type BringToFrontParams struct{}

// BringToFront activates the page.
func BringToFront() *BringToFrontParams { return &BringToFrontParams{} }

// Do executes Page.bringToFront.
func (p *BringToFrontParams) Do(ctx context.Context) error {
	return cdp.Execute(ctx, CommandBringToFront, nil, nil)
}

// CaptureScreenshotParams captures a screenshot of the page.
type CaptureScreenshotParams struct {
	Format                string    `json:"format,omitempty"`
	Quality               int64     `json:"quality,omitempty"`
	Clip                  *Viewport `json:"clip,omitempty"`
	CaptureBeyondViewport bool      `json:"captureBeyondViewport,omitempty"`
}

// CaptureScreenshot captures a png screenshot of the viewport.
func CaptureScreenshot() *CaptureScreenshotParams {
	return &CaptureScreenshotParams{}
}

// WithFormat sets the image compression format (png, jpeg, webp).
func (p *CaptureScreenshotParams) WithFormat(format string) *CaptureScreenshotParams {
	p.Format = format
	return p
}

// WithQuality sets the compression quality for lossy formats.
func (p *CaptureScreenshotParams) WithQuality(quality int64) *CaptureScreenshotParams {
	p.Quality = quality
	return p
}

// WithClip restricts the capture to the given viewport.
func (p *CaptureScreenshotParams) WithClip(clip *Viewport) *CaptureScreenshotParams {
	p.Clip = clip
	return p
}

// WithCaptureBeyondViewport captures content outside the current viewport.
func (p *CaptureScreenshotParams) WithCaptureBeyondViewport(capture bool) *CaptureScreenshotParams {
	p.CaptureBeyondViewport = capture
	return p
}

// CaptureScreenshotReturns holds the base64-encoded image data.
type CaptureScreenshotReturns struct {
	Data []byte `json:"data"`
}

// Do executes Page.captureScreenshot.
func (p *CaptureScreenshotParams) Do(ctx context.Context) ([]byte, error) {
	var res CaptureScreenshotReturns
	if err := cdp.Execute(ctx, CommandCaptureScreenshot, p, &res); err != nil {
		return nil, err
	}
	return res.Data, nil
}

// PrintToPDFParams renders the page as a paginated PDF.
type PrintToPDFParams struct {
	Landscape           bool    `json:"landscape,omitempty"`
	DisplayHeaderFooter bool    `json:"displayHeaderFooter,omitempty"`
	PrintBackground     bool    `json:"printBackground,omitempty"`
	Scale               float64 `json:"scale,omitempty"`
	PaperWidth          float64 `json:"paperWidth,omitempty"`
	PaperHeight         float64 `json:"paperHeight,omitempty"`
	MarginTop           float64 `json:"marginTop,omitempty"`
	MarginBottom        float64 `json:"marginBottom,omitempty"`
	MarginLeft          float64 `json:"marginLeft,omitempty"`
	MarginRight         float64 `json:"marginRight,omitempty"`
	PageRanges          string  `json:"pageRanges,omitempty"`
}

// PrintToPDF prints the page with the default pdf options.
func PrintToPDF() *PrintToPDFParams { return &PrintToPDFParams{} }

// WithLandscape sets landscape orientation.
func (p *PrintToPDFParams) WithLandscape(landscape bool) *PrintToPDFParams {
	p.Landscape = landscape
	return p
}

// WithPrintBackground includes background graphics.
func (p *PrintToPDFParams) WithPrintBackground(print bool) *PrintToPDFParams {
	p.PrintBackground = print
	return p
}

// PrintToPDFReturns holds the base64-encoded pdf data.
type PrintToPDFReturns struct {
	Data []byte `json:"data"`
}

// Do executes Page.printToPDF.
func (p *PrintToPDFParams) Do(ctx context.Context) ([]byte, error) {
	var res PrintToPDFReturns
	if err := cdp.Execute(ctx, CommandPrintToPDF, p, &res); err != nil {
		return nil, err
	}
	return res.Data, nil
}

// GetNavigationHistoryParams retrieves the session history.
type GetNavigationHistoryParams struct{}

// GetNavigationHistory retrieves the page's session history.
func GetNavigationHistory() *GetNavigationHistoryParams {
	return &GetNavigationHistoryParams{}
}

// GetNavigationHistoryReturns holds the history entries.
type GetNavigationHistoryReturns struct {
	CurrentIndex int64              `json:"currentIndex"`
	Entries      []*NavigationEntry `json:"entries"`
}

// Do executes Page.getNavigationHistory.
func (p *GetNavigationHistoryParams) Do(ctx context.Context) (int64, []*NavigationEntry, error) {
	var res GetNavigationHistoryReturns
	if err := cdp.Execute(ctx, CommandGetNavigationHistory, nil, &res); err != nil {
		return 0, nil, err
	}
	return res.CurrentIndex, res.Entries, nil
}

// NavigateToHistoryEntryParams navigates to a history entry.
type NavigateToHistoryEntryParams struct {
	EntryID int64 `json:"entryId"`
}

// NavigateToHistoryEntry navigates the page to the given history entry.
func NavigateToHistoryEntry(entryID int64) *NavigateToHistoryEntryParams {
	return &NavigateToHistoryEntryParams{EntryID: entryID}
}

// Do executes Page.navigateToHistoryEntry.
func (p *NavigateToHistoryEntryParams) Do(ctx context.Context) error {
	return cdp.Execute(ctx, CommandNavigateToHistoryEntry, p, nil)
}

// SetLifecycleEventsEnabledParams toggles lifecycle event emission.
type SetLifecycleEventsEnabledParams struct {
	Enabled bool `json:"enabled"`
}

// SetLifecycleEventsEnabled controls whether the page emits lifecycle events.
func SetLifecycleEventsEnabled(enabled bool) *SetLifecycleEventsEnabledParams {
	return &SetLifecycleEventsEnabledParams{Enabled: enabled}
}

// Do executes Page.setLifecycleEventsEnabled.
func (p *SetLifecycleEventsEnabledParams) Do(ctx context.Context) error {
	return cdp.Execute(ctx, CommandSetLifecycleEventsEnabled, p, nil)
}

// GetFrameTreeParams retrieves the frame tree.
type GetFrameTreeParams struct{}

// GetFrameTree returns the page's frame hierarchy.
func GetFrameTree() *GetFrameTreeParams { return &GetFrameTreeParams{} }

// GetFrameTreeReturns holds the frame tree.
type GetFrameTreeReturns struct {
	FrameTree *FrameTree `json:"frameTree"`
}

// Do executes Page.getFrameTree.
func (p *GetFrameTreeParams) Do(ctx context.Context) (*FrameTree, error) {
	var res GetFrameTreeReturns
	if err := cdp.Execute(ctx, CommandGetFrameTree, nil, &res); err != nil {
		return nil, err
	}
	return res.FrameTree, nil
}

// HandleJavaScriptDialogParams accepts or dismisses a modal dialog.
type HandleJavaScriptDialogParams struct {
	Accept     bool   `json:"accept"`
	PromptText string `json:"promptText,omitempty"`
}

// HandleJavaScriptDialog accepts or dismisses the open dialog.
func HandleJavaScriptDialog(accept bool) *HandleJavaScriptDialogParams {
	return &HandleJavaScriptDialogParams{Accept: accept}
}

// Do executes Page.handleJavaScriptDialog.
func (p *HandleJavaScriptDialogParams) Do(ctx context.Context) error {
	return cdp.Execute(ctx, CommandHandleJavaScriptDialog, p, nil)
}

// AddScriptToEvaluateOnNewDocumentParams registers a script evaluated in
// every new document before any of its own scripts run.
type AddScriptToEvaluateOnNewDocumentParams struct {
	Source string `json:"source"`
}

// AddScriptToEvaluateOnNewDocument registers the given source.
func AddScriptToEvaluateOnNewDocument(source string) *AddScriptToEvaluateOnNewDocumentParams {
	return &AddScriptToEvaluateOnNewDocumentParams{Source: source}
}

// AddScriptToEvaluateOnNewDocumentReturns holds the script identifier.
type AddScriptToEvaluateOnNewDocumentReturns struct {
	Identifier string `json:"identifier"`
}

// Do executes Page.addScriptToEvaluateOnNewDocument.
func (p *AddScriptToEvaluateOnNewDocumentParams) Do(ctx context.Context) (string, error) {
	var res AddScriptToEvaluateOnNewDocumentReturns
	if err := cdp.Execute(ctx, CommandAddScriptToEvaluateOnNewDocument, p, &res); err != nil {
		return "", err
	}
	return res.Identifier, nil
}

// EventFrameAttached is issued when a frame is attached to its parent.
type EventFrameAttached struct {
	FrameID       cdp.FrameID `json:"frameId"`
	ParentFrameID cdp.FrameID `json:"parentFrameId"`
}

// EventFrameNavigated is issued once a frame's navigation has committed.
type EventFrameNavigated struct {
	Frame *Frame `json:"frame"`
	Type  string `json:"type,omitempty"`
}

// EventFrameDetached is issued when a frame is detached from its parent.
type EventFrameDetached struct {
	FrameID cdp.FrameID `json:"frameId"`
	Reason  string      `json:"reason,omitempty"`
}

// EventFrameStartedLoading is issued when a frame starts loading.
type EventFrameStartedLoading struct {
	FrameID cdp.FrameID `json:"frameId"`
}

// EventFrameStoppedLoading is issued when a frame stops loading.
type EventFrameStoppedLoading struct {
	FrameID cdp.FrameID `json:"frameId"`
}

// EventLifecycleEvent is issued for every navigation lifecycle milestone.
type EventLifecycleEvent struct {
	FrameID   cdp.FrameID  `json:"frameId"`
	LoaderID  cdp.LoaderID `json:"loaderId"`
	Name      string       `json:"name"`
	Timestamp float64      `json:"timestamp"`
}

// EventLoadEventFired is issued when the page's load event has fired.
type EventLoadEventFired struct {
	Timestamp float64 `json:"timestamp"`
}

// EventDomContentEventFired is issued when DOMContentLoaded has fired.
type EventDomContentEventFired struct {
	Timestamp float64 `json:"timestamp"`
}

// EventNavigatedWithinDocument is issued on same-document navigations.
type EventNavigatedWithinDocument struct {
	FrameID cdp.FrameID `json:"frameId"`
	URL     string      `json:"url"`
}

// EventJavascriptDialogOpening is issued when a modal dialog is about to
// open.
type EventJavascriptDialogOpening struct {
	URL           string `json:"url"`
	Message       string `json:"message"`
	Type          string `json:"type"`
	DefaultPrompt string `json:"defaultPrompt,omitempty"`
}
