package chromiumoxide

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"golang.org/x/exp/slices"

	"github.com/mattsse/chromiumoxide/cdp"
	browserdom "github.com/mattsse/chromiumoxide/cdp/browser"
	"github.com/mattsse/chromiumoxide/cdp/target"
)

// BrowserState is the lifecycle state of a Browser handle.
type BrowserState int32

// Browser lifecycle states.
const (
	BrowserLaunching BrowserState = iota
	BrowserReady
	BrowserClosing
	BrowserClosed
)

// String satisfies fmt.Stringer.
func (s BrowserState) String() string {
	switch s {
	case BrowserLaunching:
		return "launching"
	case BrowserReady:
		return "ready"
	case BrowserClosing:
		return "closing"
	case BrowserClosed:
		return "closed"
	}
	return "unknown"
}

// Browser is the root handle: it owns the process supervisor (when
// launched), the websocket transport, and the handler goroutine multiplexing
// it. All state is rooted here; multiple Browsers coexist.
type Browser struct {
	h *Handler

	state atomic.Int32

	process       *os.Process
	processExit   chan error
	userDataDir   string
	removeDataDir bool
	closeTimeout  time.Duration

	// LostConnection is closed when the transport dies.
	LostConnection chan struct{}

	closingGracefully chan struct{}

	cancel context.CancelFunc

	requestTimeout time.Duration
	noAutoAttach   bool

	logf, errf func(string, ...interface{})
	dbgf       func(string, ...interface{})
}

// BrowserOption is a browser option.
type BrowserOption func(*Browser) error

// WithLogf is a browser option to specify a func to receive general logging.
func WithLogf(f func(string, ...interface{})) BrowserOption {
	return func(b *Browser) error {
		b.logf = f
		return nil
	}
}

// WithErrorf is a browser option to specify a func to receive error logging.
func WithErrorf(f func(string, ...interface{})) BrowserOption {
	return func(b *Browser) error {
		b.errf = f
		return nil
	}
}

// WithDebugf is a browser option to receive protocol frame dumps.
func WithDebugf(f func(string, ...interface{})) BrowserOption {
	return func(b *Browser) error {
		b.dbgf = f
		return nil
	}
}

// WithRequestTimeout overrides the default per-command deadline.
func WithRequestTimeout(d time.Duration) BrowserOption {
	return func(b *Browser) error {
		b.requestTimeout = d
		return nil
	}
}

// WithoutAutoAttach disables automatic attachment to discovered targets.
func WithoutAutoAttach() BrowserOption {
	return func(b *Browser) error {
		b.noAutoAttach = true
		return nil
	}
}

// Connect attaches to an already-running browser at the given debugger
// websocket url.
func Connect(ctx context.Context, urlstr string, opts ...BrowserOption) (*Browser, error) {
	b, err := NewBrowser(ctx, urlstr, opts...)
	if err != nil {
		return nil, err
	}
	b.closeTimeout = DefaultCloseTimeout
	return b, nil
}

// NewBrowser dials the websocket url, starts the handler and performs the
// initial discovery handshake.
func NewBrowser(ctx context.Context, urlstr string, opts ...BrowserOption) (*Browser, error) {
	b := &Browser{
		LostConnection:    make(chan struct{}),
		closingGracefully: make(chan struct{}),
		closeTimeout:      DefaultCloseTimeout,
	}
	b.state.Store(int32(BrowserLaunching))

	for _, o := range opts {
		if err := o(b); err != nil {
			return nil, err
		}
	}
	if b.logf == nil {
		b.logf = defaultLogf
	}
	if b.errf == nil {
		b.errf = defaultErrf
	}
	var dialOpts []DialOption
	if b.dbgf != nil {
		dialOpts = append(dialOpts, WithConnDebugf(b.dbgf))
	}

	conn, err := DialContext(ctx, ForceIP(urlstr), dialOpts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWebSocketConnectFailed, err)
	}

	b.h = newHandler(conn)
	b.h.logf, b.h.errf, b.h.dbgf = b.logf, b.errf, b.dbgf
	if b.requestTimeout > 0 {
		b.h.requestTimeout = b.requestTimeout
	}
	if b.noAutoAttach {
		b.h.autoAttach = false
	}

	hctx, cancel := context.WithCancel(context.Background())
	b.cancel = cancel
	go b.h.run(hctx)
	go b.watch()

	// Discovery handshake: mirror targets and auto-attach to new ones.
	cctx := cdp.WithExecutor(ctx, b)
	if err := target.SetDiscoverTargets(true).Do(cctx); err != nil {
		b.cancel()
		return nil, err
	}
	if b.h.autoAttach {
		if err := target.SetAutoAttach(true).Do(cctx); err != nil {
			b.cancel()
			return nil, err
		}
	}

	b.state.Store(int32(BrowserReady))
	return b, nil
}

// watch mirrors handler termination into the browser state.
func (b *Browser) watch() {
	<-b.h.done
	b.state.Store(int32(BrowserClosed))
	close(b.LostConnection)
}

// State returns the browser lifecycle state.
func (b *Browser) State() BrowserState {
	return BrowserState(b.state.Load())
}

// Execute satisfies cdp.Executor for browser-level commands.
func (b *Browser) Execute(ctx context.Context, method string, params, res interface{}) error {
	if b.State() == BrowserClosed {
		return ErrTransportClosed
	}
	return b.h.Execute(ctx, "", method, params, res)
}

// Events returns the catch-all stream carrying every protocol event.
func (b *Browser) Events() *EventStream {
	return b.h.subscribeAll()
}

// Subscribe returns a stream of events of one method, regardless of target.
func (b *Browser) Subscribe(method cdp.MethodType) *EventStream {
	return b.h.subscribeMethod(method)
}

// NewPage creates a page target navigated to the given url (about:blank when
// empty) and waits for its session to attach.
func (b *Browser) NewPage(ctx context.Context, urlstr string) (*Page, error) {
	return b.newPage(ctx, urlstr, "")
}

// NewPageInContext creates a page inside the given browser context.
func (b *Browser) NewPageInContext(ctx context.Context, urlstr string, bctx cdp.BrowserContextID) (*Page, error) {
	return b.newPage(ctx, urlstr, bctx)
}

func (b *Browser) newPage(ctx context.Context, urlstr string, bctx cdp.BrowserContextID) (*Page, error) {
	if urlstr == "" {
		urlstr = "about:blank"
	}
	p := target.CreateTarget(urlstr)
	if bctx != "" {
		p = p.WithBrowserContextID(bctx)
	}
	id, err := p.Do(cdp.WithExecutor(ctx, b))
	if err != nil {
		return nil, err
	}
	actx, cancel := context.WithTimeout(ctx, b.h.requestTimeout)
	defer cancel()
	t, err := b.h.waitAttached(actx, id)
	if err != nil {
		return nil, err
	}
	return &Page{b: b, t: t}, nil
}

// NewIncognitoContext creates an isolated browser context; pages created in
// it share no cookies or cache with the default context.
func (b *Browser) NewIncognitoContext(ctx context.Context) (cdp.BrowserContextID, error) {
	return target.CreateBrowserContext().Do(cdp.WithExecutor(ctx, b))
}

// DisposeContext deletes a browser context and closes all its targets.
func (b *Browser) DisposeContext(ctx context.Context, id cdp.BrowserContextID) error {
	return target.DisposeBrowserContext(id).Do(cdp.WithExecutor(ctx, b))
}

// Pages returns a handle for every attached page target, ordered by target
// id.
func (b *Browser) Pages() []*Page {
	b.h.tmu.RLock()
	var pages []*Page
	for _, t := range b.h.targets {
		if t.isPage() && t.State() == TargetAttached {
			pages = append(pages, &Page{b: b, t: t})
		}
	}
	b.h.tmu.RUnlock()
	slices.SortFunc(pages, func(a, b *Page) bool {
		return a.t.id < b.t.id
	})
	return pages
}

// Targets lists all targets currently mirrored from the browser.
func (b *Browser) Targets(ctx context.Context) ([]*target.Info, error) {
	return target.GetTargets().Do(cdp.WithExecutor(ctx, b))
}

// Version returns version metadata of the connected browser.
func (b *Browser) Version(ctx context.Context) (*browserdom.GetVersionReturns, error) {
	return browserdom.GetVersion().Do(cdp.WithExecutor(ctx, b))
}

// Close shuts the browser down gracefully: Browser.close is sent, the
// process is given closeTimeout to exit, then the process is killed. The
// ephemeral user data directory is removed afterwards.
func (b *Browser) Close(ctx context.Context) error {
	if !b.state.CompareAndSwap(int32(BrowserReady), int32(BrowserClosing)) {
		// Already closing, closed, or never ready; wait for the handler
		// if it is still draining.
		select {
		case <-b.h.done:
		case <-ctx.Done():
			return ctx.Err()
		}
		return nil
	}
	close(b.closingGracefully)

	if err := browserdom.Close().Do(cdp.WithExecutor(ctx, b)); err != nil {
		b.errf("could not close browser: %v", err)
	}

	if b.process != nil {
		select {
		case <-b.processExit:
		case <-time.After(b.closeTimeout):
			b.logf("browser did not exit in %v, killing process", b.closeTimeout)
			b.process.Kill()
			<-b.processExit
		case <-ctx.Done():
			b.process.Kill()
		}
	}

	b.cancel()
	<-b.h.done
	b.state.Store(int32(BrowserClosed))

	if b.removeDataDir {
		if err := os.RemoveAll(b.userDataDir); err != nil {
			b.errf("could not remove user data dir: %v", err)
		}
	}
	return nil
}
