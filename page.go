package chromiumoxide

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mattsse/chromiumoxide/cdp"
	"github.com/mattsse/chromiumoxide/cdp/dom"
	"github.com/mattsse/chromiumoxide/cdp/emulation"
	"github.com/mattsse/chromiumoxide/cdp/network"
	"github.com/mattsse/chromiumoxide/cdp/page"
	"github.com/mattsse/chromiumoxide/cdp/runtime"
	"github.com/mattsse/chromiumoxide/cdp/target"
	"github.com/mattsse/chromiumoxide/device"
)

// Page is the user-facing handle for an attached page target. It holds the
// owning Browser and the handler's Target record for the page, so the page's
// frame tree stays reachable through it; commands go through the handler's
// request queue.
type Page struct {
	b *Browser
	t *Target
}

// TargetID returns the page's target id.
func (p *Page) TargetID() cdp.TargetID {
	return p.t.ID()
}

// SessionID returns the page's session id, or empty when detached.
func (p *Page) SessionID() cdp.SessionID {
	return p.t.Session()
}

// URL returns the last reported url of the page's target.
func (p *Page) URL() string {
	return p.t.URL()
}

// Title returns the last reported title of the page's target.
func (p *Page) Title() string {
	return p.t.Title()
}

// Execute satisfies cdp.Executor: commands are scoped to the page's session.
func (p *Page) Execute(ctx context.Context, method string, params, res interface{}) error {
	sid := p.t.Session()
	if sid == "" {
		if p.t.State() == TargetDestroyed {
			return ErrTargetGone
		}
		return ErrNotAttached
	}
	return p.b.h.Execute(ctx, sid, method, params, res)
}

// ctx attaches the page as the executor for typed domain commands.
func (p *Page) ctx(ctx context.Context) context.Context {
	return cdp.WithExecutor(ctx, p)
}

// Navigate starts a navigation of the main frame and returns once it has
// been accepted by the browser. Use WaitForNavigation (or NavigateAndWait)
// to wait for the load itself.
func (p *Page) Navigate(ctx context.Context, urlstr string) error {
	p.t.snapshotNavBase()
	_, _, err := page.Navigate(urlstr).Do(p.ctx(ctx))
	return err
}

// NavigationOption configures a navigation wait.
type NavigationOption func(*navConfig)

type navConfig struct {
	frameID   cdp.FrameID
	lifecycle cdp.FrameLifecycle
}

// WithWaitLifecycle waits for the given lifecycle instead of load.
func WithWaitLifecycle(lc cdp.FrameLifecycle) NavigationOption {
	return func(c *navConfig) {
		c.lifecycle = lc
	}
}

// WithWaitFrame waits on the given frame instead of the main frame.
func WithWaitFrame(id cdp.FrameID) NavigationOption {
	return func(c *navConfig) {
		c.frameID = id
	}
}

// WaitForNavigation suspends until the watched frame reaches the requested
// lifecycle under a loader id newer than the one observed at the page's last
// synchronization point. A navigation that completed in between resolves the
// wait immediately.
func (p *Page) WaitForNavigation(ctx context.Context, opts ...NavigationOption) error {
	cfg := navConfig{lifecycle: cdp.LifecycleLoad}
	for _, o := range opts {
		o(&cfg)
	}
	w, err := p.t.installNavWaiter(cfg.frameID, cfg.lifecycle)
	if err != nil {
		return err
	}
	if err := p.t.waitNavigation(ctx, w); err != nil {
		return err
	}
	p.t.snapshotNavBase()
	return nil
}

// NavigateAndWait navigates the main frame and waits for the load to
// complete.
func (p *Page) NavigateAndWait(ctx context.Context, urlstr string, opts ...NavigationOption) error {
	if err := p.Navigate(ctx, urlstr); err != nil {
		return err
	}
	return p.WaitForNavigation(ctx, opts...)
}

// Reload reloads the page.
func (p *Page) Reload(ctx context.Context) error {
	p.t.snapshotNavBase()
	return page.Reload().Do(p.ctx(ctx))
}

// BringToFront activates the page.
func (p *Page) BringToFront(ctx context.Context) error {
	return page.BringToFront().Do(p.ctx(ctx))
}

// NavigateBack navigates the page backwards in its history.
func (p *Page) NavigateBack(ctx context.Context) error {
	cur, entries, err := page.GetNavigationHistory().Do(p.ctx(ctx))
	if err != nil {
		return err
	}
	i := 0
	for ; i < len(entries); i++ {
		if entries[i].ID == cur {
			break
		}
	}
	if i == 0 || i == len(entries) {
		return fmt.Errorf("already on oldest navigation entry")
	}
	p.t.snapshotNavBase()
	return page.NavigateToHistoryEntry(entries[i-1].ID).Do(p.ctx(ctx))
}

// NavigateForward navigates the page forwards in its history.
func (p *Page) NavigateForward(ctx context.Context) error {
	cur, entries, err := page.GetNavigationHistory().Do(p.ctx(ctx))
	if err != nil {
		return err
	}
	i := len(entries) - 1
	for ; i >= 0; i-- {
		if entries[i].ID == cur {
			break
		}
	}
	if i < 0 || i == len(entries)-1 {
		return fmt.Errorf("already on newest navigation entry")
	}
	p.t.snapshotNavBase()
	return page.NavigateToHistoryEntry(entries[i+1].ID).Do(p.ctx(ctx))
}

// Listen returns a stream of this page's session events.
func (p *Page) Listen() (*EventStream, error) {
	sid := p.t.Session()
	if sid == "" {
		return nil, ErrNotAttached
	}
	return p.b.h.subscribeSession(sid), nil
}

// WaitForEvent suspends until the next event of the given method arrives on
// this page's session.
func (p *Page) WaitForEvent(ctx context.Context, method cdp.MethodType) (*Event, error) {
	s, err := p.Listen()
	if err != nil {
		return nil, err
	}
	defer s.Close()
	for {
		ev, err := s.Next(ctx)
		if err != nil {
			return nil, err
		}
		if ev.Method == method {
			return ev, nil
		}
	}
}

// EvaluateOption mutates the underlying Runtime.evaluate params.
type EvaluateOption func(*runtime.EvaluateParams) *runtime.EvaluateParams

// EvalWithAwaitPromise resolves a returned promise before the result is
// reported.
func EvalWithAwaitPromise(p *runtime.EvaluateParams) *runtime.EvaluateParams {
	return p.WithAwaitPromise(true)
}

// EvalIgnoreExceptions suppresses exception reporting during evaluation.
func EvalIgnoreExceptions(p *runtime.EvaluateParams) *runtime.EvaluateParams {
	return p.WithSilent(true)
}

// EvalAsValue reports the result JSON-encoded by value.
func EvalAsValue(p *runtime.EvaluateParams) *runtime.EvaluateParams {
	return p.WithReturnByValue(true)
}

// Evaluate evaluates the JavaScript expression, unmarshaling the result of
// the evaluation into res.
//
// When res is a type other than *[]byte or **runtime.RemoteObject, the
// result is returned by value (JSON-encoded) and unmarshaled into res. A
// *[]byte receives the raw JSON-encoded value, and a **runtime.RemoteObject
// receives the low-level protocol type with no conversion.
//
// A thrown exception is returned as a *runtime.ExceptionDetails error.
func (p *Page) Evaluate(ctx context.Context, expression string, res interface{}, opts ...EvaluateOption) error {
	params := runtime.Evaluate(expression)
	switch res.(type) {
	case **runtime.RemoteObject:
	case nil:
	default:
		params = params.WithReturnByValue(true)
	}
	for _, o := range opts {
		params = o(params)
	}

	v, exp, err := params.Do(p.ctx(ctx))
	if err != nil {
		return err
	}
	if exp != nil {
		return exp
	}
	return unwrapRemoteObject(v, res)
}

// CallFunction calls the JavaScript function declaration in the main frame's
// execution context, with args JSON-encoded, unmarshaling the result into
// res with the same rules as Evaluate.
func (p *Page) CallFunction(ctx context.Context, declaration string, res interface{}, args ...interface{}) error {
	f := p.t.mainFrame()
	if f == nil {
		return ErrNoSuchFrame
	}
	execCtx, ok := p.t.executionContext(f.ID)
	if !ok {
		return ErrNoSuchExecutionContext
	}

	callArgs := make([]*runtime.CallArgument, len(args))
	for i, a := range args {
		buf, err := json.Marshal(a)
		if err != nil {
			return err
		}
		callArgs[i] = &runtime.CallArgument{Value: buf}
	}
	params := runtime.CallFunctionOn(declaration).
		WithExecutionContextID(execCtx).
		WithArguments(callArgs)
	if _, isObj := res.(**runtime.RemoteObject); !isObj && res != nil {
		params = params.WithReturnByValue(true)
	}

	v, exp, err := params.Do(p.ctx(ctx))
	if err != nil {
		return err
	}
	if exp != nil {
		return exp
	}
	return unwrapRemoteObject(v, res)
}

func unwrapRemoteObject(v *runtime.RemoteObject, res interface{}) error {
	switch x := res.(type) {
	case nil:
		return nil
	case **runtime.RemoteObject:
		*x = v
		return nil
	case *[]byte:
		if v == nil {
			*x = nil
			return nil
		}
		*x = []byte(v.Value)
		return nil
	}
	if v == nil || v.Type == "undefined" {
		return fmt.Errorf("%w: undefined value", ErrDeserializeFailed)
	}
	if err := json.Unmarshal(v.Value, res); err != nil {
		return fmt.Errorf("%w: %v", ErrDeserializeFailed, err)
	}
	return nil
}

// document returns the cached document root node id, fetching it lazily.
func (p *Page) document(ctx context.Context) (cdp.NodeID, error) {
	p.t.frameMu.RLock()
	id := p.t.docNodeID
	p.t.frameMu.RUnlock()
	if id != 0 {
		return id, nil
	}
	root, err := dom.GetDocument().Do(p.ctx(ctx))
	if err != nil {
		return 0, err
	}
	if root == nil {
		return 0, ErrNoSuchElement
	}
	p.t.frameMu.Lock()
	p.t.docNodeID = root.NodeID
	p.t.frameMu.Unlock()
	return root.NodeID, nil
}

// FindElement queries the document for the first element matching the CSS
// selector.
func (p *Page) FindElement(ctx context.Context, selector string) (*Element, error) {
	root, err := p.document(ctx)
	if err != nil {
		return nil, err
	}
	nodeID, err := dom.QuerySelector(root, selector).Do(p.ctx(ctx))
	if err != nil {
		return nil, err
	}
	if nodeID == 0 {
		return nil, fmt.Errorf("%w: %q", ErrNoSuchElement, selector)
	}
	return p.elementForNode(ctx, nodeID)
}

// FindElements queries the document for all elements matching the CSS
// selector.
func (p *Page) FindElements(ctx context.Context, selector string) ([]*Element, error) {
	root, err := p.document(ctx)
	if err != nil {
		return nil, err
	}
	nodeIDs, err := dom.QuerySelectorAll(root, selector).Do(p.ctx(ctx))
	if err != nil {
		return nil, err
	}
	els := make([]*Element, 0, len(nodeIDs))
	for _, id := range nodeIDs {
		if id == 0 {
			continue
		}
		el, err := p.elementForNode(ctx, id)
		if err != nil {
			return nil, err
		}
		els = append(els, el)
	}
	return els, nil
}

func (p *Page) elementForNode(ctx context.Context, nodeID cdp.NodeID) (*Element, error) {
	node, err := dom.DescribeNode().WithNodeID(nodeID).Do(p.ctx(ctx))
	if err != nil {
		return nil, err
	}
	el := &Element{p: p, NodeID: nodeID}
	if node != nil {
		el.BackendNodeID = node.BackendNodeID
	}
	return el, nil
}

// Cookies returns the cookies visible to the page.
func (p *Page) Cookies(ctx context.Context, urls ...string) ([]*network.Cookie, error) {
	params := network.GetCookies()
	if len(urls) > 0 {
		params = params.WithURLs(urls)
	}
	return params.Do(p.ctx(ctx))
}

// SetCookies stores the given cookies for the page.
func (p *Page) SetCookies(ctx context.Context, cookies ...*network.CookieParam) error {
	return network.SetCookies(cookies).Do(p.ctx(ctx))
}

// ClearCookies removes all browser cookies.
func (p *Page) ClearCookies(ctx context.Context) error {
	return network.ClearBrowserCookies().Do(p.ctx(ctx))
}

// Emulate applies a device preset: viewport metrics, touch, and user agent.
func (p *Page) Emulate(ctx context.Context, d device.Info) error {
	err := emulation.SetDeviceMetricsOverride(d.Width, d.Height, d.Scale, d.Mobile).
		WithScreenOrientation(&emulation.ScreenOrientation{
			Type:  orientationType(d),
			Angle: 0,
		}).
		Do(p.ctx(ctx))
	if err != nil {
		return err
	}
	if err := emulation.SetTouchEmulationEnabled(d.Touch).Do(p.ctx(ctx)); err != nil {
		return err
	}
	if d.UserAgent != "" {
		return emulation.SetUserAgentOverride(d.UserAgent).Do(p.ctx(ctx))
	}
	return nil
}

func orientationType(d device.Info) string {
	if d.Landscape {
		return "landscapePrimary"
	}
	return "portraitPrimary"
}

// Close closes the page's target.
func (p *Page) Close(ctx context.Context) error {
	return target.CloseTarget(p.t.ID()).Do(cdp.WithExecutor(ctx, p.b))
}
