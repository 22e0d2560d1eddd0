// Package target provides the typed commands and events of the Target
// domain: discovery, attachment, and browser context management.
package target

import (
	"context"

	"github.com/mattsse/chromiumoxide/cdp"
)

// Target domain command methods.
const (
	CommandSetDiscoverTargets      = "Target.setDiscoverTargets"
	CommandSetAutoAttach           = "Target.setAutoAttach"
	CommandAttachToTarget          = "Target.attachToTarget"
	CommandDetachFromTarget        = "Target.detachFromTarget"
	CommandCreateTarget            = "Target.createTarget"
	CommandCloseTarget             = "Target.closeTarget"
	CommandActivateTarget          = "Target.activateTarget"
	CommandGetTargets              = "Target.getTargets"
	CommandCreateBrowserContext    = "Target.createBrowserContext"
	CommandDisposeBrowserContext   = "Target.disposeBrowserContext"
	CommandGetBrowserContexts      = "Target.getBrowserContexts"
)

// Target domain event methods.
const (
	MethodTargetCreated      cdp.MethodType = "Target.targetCreated"
	MethodTargetDestroyed    cdp.MethodType = "Target.targetDestroyed"
	MethodTargetInfoChanged  cdp.MethodType = "Target.targetInfoChanged"
	MethodTargetCrashed      cdp.MethodType = "Target.targetCrashed"
	MethodAttachedToTarget   cdp.MethodType = "Target.attachedToTarget"
	MethodDetachedFromTarget cdp.MethodType = "Target.detachedFromTarget"
)

// Info holds the browser's description of a target.
type Info struct {
	TargetID         cdp.TargetID         `json:"targetId"`
	Type             string               `json:"type"`
	Title            string               `json:"title"`
	URL              string               `json:"url"`
	Attached         bool                 `json:"attached"`
	OpenerID         cdp.TargetID         `json:"openerId,omitempty"`
	BrowserContextID cdp.BrowserContextID `json:"browserContextId,omitempty"`
}

// SetDiscoverTargetsParams controls whether discovery of available targets is
// enabled.
type SetDiscoverTargetsParams struct {
	Discover bool `json:"discover"`
}

// SetDiscoverTargets enables or disables target discovery notifications.
func SetDiscoverTargets(discover bool) *SetDiscoverTargetsParams {
	return &SetDiscoverTargetsParams{Discover: discover}
}

// Do executes Target.setDiscoverTargets.
func (p *SetDiscoverTargetsParams) Do(ctx context.Context) error {
	return cdp.Execute(ctx, CommandSetDiscoverTargets, p, nil)
}

// SetAutoAttachParams controls automatic attachment to new targets.
type SetAutoAttachParams struct {
	AutoAttach             bool `json:"autoAttach"`
	WaitForDebuggerOnStart bool `json:"waitForDebuggerOnStart"`
	Flatten                bool `json:"flatten,omitempty"`
}

// SetAutoAttach enables auto-attach with flat session mode.
func SetAutoAttach(autoAttach bool) *SetAutoAttachParams {
	return &SetAutoAttachParams{AutoAttach: autoAttach, Flatten: true}
}

// WithWaitForDebuggerOnStart pauses new targets until the client resumes them.
func (p *SetAutoAttachParams) WithWaitForDebuggerOnStart(wait bool) *SetAutoAttachParams {
	p.WaitForDebuggerOnStart = wait
	return p
}

// Do executes Target.setAutoAttach.
func (p *SetAutoAttachParams) Do(ctx context.Context) error {
	return cdp.Execute(ctx, CommandSetAutoAttach, p, nil)
}

// AttachToTargetParams attaches to the target with the given id.
type AttachToTargetParams struct {
	TargetID cdp.TargetID `json:"targetId"`
	Flatten  bool         `json:"flatten,omitempty"`
}

// AttachToTarget attaches to a target, yielding a session id.
func AttachToTarget(targetID cdp.TargetID) *AttachToTargetParams {
	return &AttachToTargetParams{TargetID: targetID, Flatten: true}
}

// AttachToTargetReturns holds the session created by the attach.
type AttachToTargetReturns struct {
	SessionID cdp.SessionID `json:"sessionId"`
}

// Do executes Target.attachToTarget.
func (p *AttachToTargetParams) Do(ctx context.Context) (cdp.SessionID, error) {
	var res AttachToTargetReturns
	if err := cdp.Execute(ctx, CommandAttachToTarget, p, &res); err != nil {
		return "", err
	}
	return res.SessionID, nil
}

// DetachFromTargetParams detaches the given session.
type DetachFromTargetParams struct {
	SessionID cdp.SessionID `json:"sessionId,omitempty"`
}

// DetachFromTarget detaches from the session.
func DetachFromTarget(sessionID cdp.SessionID) *DetachFromTargetParams {
	return &DetachFromTargetParams{SessionID: sessionID}
}

// Do executes Target.detachFromTarget.
func (p *DetachFromTargetParams) Do(ctx context.Context) error {
	return cdp.Execute(ctx, CommandDetachFromTarget, p, nil)
}

// CreateTargetParams creates a new page target.
type CreateTargetParams struct {
	URL              string               `json:"url"`
	Width            int64                `json:"width,omitempty"`
	Height           int64                `json:"height,omitempty"`
	BrowserContextID cdp.BrowserContextID `json:"browserContextId,omitempty"`
	NewWindow        bool                 `json:"newWindow,omitempty"`
	Background       bool                 `json:"background,omitempty"`
}

// CreateTarget creates a page navigated to the given url.
func CreateTarget(urlstr string) *CreateTargetParams {
	return &CreateTargetParams{URL: urlstr}
}

// WithBrowserContextID places the new target in the given browser context.
func (p *CreateTargetParams) WithBrowserContextID(id cdp.BrowserContextID) *CreateTargetParams {
	p.BrowserContextID = id
	return p
}

// CreateTargetReturns holds the id of the created target.
type CreateTargetReturns struct {
	TargetID cdp.TargetID `json:"targetId"`
}

// Do executes Target.createTarget.
func (p *CreateTargetParams) Do(ctx context.Context) (cdp.TargetID, error) {
	var res CreateTargetReturns
	if err := cdp.Execute(ctx, CommandCreateTarget, p, &res); err != nil {
		return "", err
	}
	return res.TargetID, nil
}

// CloseTargetParams closes the target.
type CloseTargetParams struct {
	TargetID cdp.TargetID `json:"targetId"`
}

// CloseTarget closes the target with the given id.
func CloseTarget(targetID cdp.TargetID) *CloseTargetParams {
	return &CloseTargetParams{TargetID: targetID}
}

// CloseTargetReturns reports whether the close was initiated.
type CloseTargetReturns struct {
	Success bool `json:"success"`
}

// Do executes Target.closeTarget.
func (p *CloseTargetParams) Do(ctx context.Context) error {
	return cdp.Execute(ctx, CommandCloseTarget, p, nil)
}

// ActivateTargetParams brings the target to the foreground.
type ActivateTargetParams struct {
	TargetID cdp.TargetID `json:"targetId"`
}

// ActivateTarget activates (focuses) the target.
func ActivateTarget(targetID cdp.TargetID) *ActivateTargetParams {
	return &ActivateTargetParams{TargetID: targetID}
}

// Do executes Target.activateTarget.
func (p *ActivateTargetParams) Do(ctx context.Context) error {
	return cdp.Execute(ctx, CommandActivateTarget, p, nil)
}

// GetTargetsParams retrieves the list of available targets.
type GetTargetsParams struct{}

// GetTargets retrieves all available targets.
func GetTargets() *GetTargetsParams {
	return &GetTargetsParams{}
}

// GetTargetsReturns holds the target list.
type GetTargetsReturns struct {
	TargetInfos []*Info `json:"targetInfos"`
}

// Do executes Target.getTargets.
func (p *GetTargetsParams) Do(ctx context.Context) ([]*Info, error) {
	var res GetTargetsReturns
	if err := cdp.Execute(ctx, CommandGetTargets, p, &res); err != nil {
		return nil, err
	}
	return res.TargetInfos, nil
}

// CreateBrowserContextParams creates a new isolated browser context.
type CreateBrowserContextParams struct {
	DisposeOnDetach bool `json:"disposeOnDetach,omitempty"`
}

// CreateBrowserContext creates an incognito-like browser context.
func CreateBrowserContext() *CreateBrowserContextParams {
	return &CreateBrowserContextParams{}
}

// CreateBrowserContextReturns holds the created context id.
type CreateBrowserContextReturns struct {
	BrowserContextID cdp.BrowserContextID `json:"browserContextId"`
}

// Do executes Target.createBrowserContext.
func (p *CreateBrowserContextParams) Do(ctx context.Context) (cdp.BrowserContextID, error) {
	var res CreateBrowserContextReturns
	if err := cdp.Execute(ctx, CommandCreateBrowserContext, p, &res); err != nil {
		return "", err
	}
	return res.BrowserContextID, nil
}

// DisposeBrowserContextParams deletes a browser context, closing all its
// targets.
type DisposeBrowserContextParams struct {
	BrowserContextID cdp.BrowserContextID `json:"browserContextId"`
}

// DisposeBrowserContext deletes the browser context.
func DisposeBrowserContext(id cdp.BrowserContextID) *DisposeBrowserContextParams {
	return &DisposeBrowserContextParams{BrowserContextID: id}
}

// Do executes Target.disposeBrowserContext.
func (p *DisposeBrowserContextParams) Do(ctx context.Context) error {
	return cdp.Execute(ctx, CommandDisposeBrowserContext, p, nil)
}

// EventTargetCreated is issued when a possible inspection target is created.
type EventTargetCreated struct {
	TargetInfo *Info `json:"targetInfo"`
}

// EventTargetDestroyed is issued when a target is destroyed.
type EventTargetDestroyed struct {
	TargetID cdp.TargetID `json:"targetId"`
}

// EventTargetInfoChanged is issued when url or title of a target change.
type EventTargetInfoChanged struct {
	TargetInfo *Info `json:"targetInfo"`
}

// EventTargetCrashed is issued when a target has crashed.
type EventTargetCrashed struct {
	TargetID cdp.TargetID `json:"targetId"`
	Status   string       `json:"status"`
	ErrorCode int64       `json:"errorCode"`
}

// EventAttachedToTarget is issued when an attached session is created.
type EventAttachedToTarget struct {
	SessionID          cdp.SessionID `json:"sessionId"`
	TargetInfo         *Info         `json:"targetInfo"`
	WaitingForDebugger bool          `json:"waitingForDebugger"`
}

// EventDetachedFromTarget is issued when a session is detached.
type EventDetachedFromTarget struct {
	SessionID cdp.SessionID `json:"sessionId"`
	TargetID  cdp.TargetID  `json:"targetId,omitempty"`
}
