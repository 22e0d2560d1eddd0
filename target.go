package chromiumoxide

import (
	"sync"

	"github.com/mattsse/chromiumoxide/cdp"
	"github.com/mattsse/chromiumoxide/cdp/target"
)

// TargetState is the attachment state of a tracked target.
type TargetState int32

// Target states; Destroyed is terminal and reachable from any state.
const (
	TargetDiscovered TargetState = iota
	TargetAttaching
	TargetAttached
	TargetDetaching
	TargetDetached
	TargetDestroyed
)

// String satisfies fmt.Stringer.
func (s TargetState) String() string {
	switch s {
	case TargetDiscovered:
		return "discovered"
	case TargetAttaching:
		return "attaching"
	case TargetAttached:
		return "attached"
	case TargetDetaching:
		return "detaching"
	case TargetDetached:
		return "detached"
	case TargetDestroyed:
		return "destroyed"
	}
	return "unknown"
}

// validTransitions is the legal edge set of the target state machine.
var validTransitions = map[TargetState][]TargetState{
	TargetDiscovered: {TargetAttaching, TargetAttached, TargetDestroyed},
	TargetAttaching:  {TargetAttached, TargetDestroyed},
	TargetAttached:   {TargetDetaching, TargetDetached, TargetDestroyed},
	TargetDetaching:  {TargetDetached, TargetDestroyed},
	TargetDetached:   {TargetAttaching, TargetAttached, TargetDestroyed},
	TargetDestroyed:  {},
}

// Target mirrors one browser target and its attachment state. The handler
// goroutine applies its state transitions and frame tree updates; page calls
// also update the navigation fence, the navigation waiters and the cached
// document node. Accessors take mu or frameMu.
type Target struct {
	id  cdp.TargetID
	typ string

	h *Handler

	mu               sync.RWMutex
	url              string
	title            string
	browserContextID cdp.BrowserContextID
	state            TargetState
	sessionID        cdp.SessionID

	// frameMu guards the frame tree below.
	frameMu      sync.RWMutex
	frames       map[cdp.FrameID]*cdp.Frame
	cur          cdp.FrameID
	execContexts map[cdp.ExecutionContextID]cdp.FrameID
	docNodeID    cdp.NodeID
	navBase      cdp.LoaderID
	navWaiters   []*navWaiter
}

func newTarget(info *target.Info, h *Handler) *Target {
	return &Target{
		id:               info.TargetID,
		typ:              info.Type,
		h:                h,
		url:              info.URL,
		title:            info.Title,
		browserContextID: info.BrowserContextID,
		state:            TargetDiscovered,
		frames:           make(map[cdp.FrameID]*cdp.Frame),
		execContexts:     make(map[cdp.ExecutionContextID]cdp.FrameID),
	}
}

// ID returns the stable target id.
func (t *Target) ID() cdp.TargetID {
	return t.id
}

// Type returns the target type reported at creation ("page", "worker", ...).
func (t *Target) Type() string {
	return t.typ
}

// State returns the current attachment state.
func (t *Target) State() TargetState {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.state
}

// Session returns the session id, or empty when detached.
func (t *Target) Session() cdp.SessionID {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.sessionID
}

// URL returns the last reported url of the target.
func (t *Target) URL() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.url
}

// Title returns the last reported title of the target.
func (t *Target) Title() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.title
}

func (t *Target) isPage() bool {
	return t.typ == "page" || t.typ == "iframe" || t.typ == "background_page" || t.typ == "webview"
}

// transition moves the state machine to next, logging transitions that are
// not part of the diagram.
func (t *Target) transition(next TargetState) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.transitionLocked(next)
}

func (t *Target) transitionLocked(next TargetState) {
	if t.state == next {
		return
	}
	legal := false
	for _, s := range validTransitions[t.state] {
		if s == next {
			legal = true
			break
		}
	}
	if !legal {
		t.h.errf("target %s: illegal transition %s -> %s", t.id, t.state, next)
		if t.state == TargetDestroyed {
			return
		}
	}
	t.state = next
}

func (t *Target) updateInfo(info *target.Info) {
	t.mu.Lock()
	t.url = info.URL
	t.title = info.Title
	if info.BrowserContextID != "" {
		t.browserContextID = info.BrowserContextID
	}
	t.mu.Unlock()
}

func (t *Target) attach(sessionID cdp.SessionID) {
	t.mu.Lock()
	t.sessionID = sessionID
	t.transitionLocked(TargetAttached)
	t.mu.Unlock()
}

func (t *Target) detach() {
	t.mu.Lock()
	t.sessionID = ""
	t.transitionLocked(TargetDetached)
	t.mu.Unlock()
}

// destroy is terminal: dependent frame and context state is cleared and
// navigation waits fail.
func (t *Target) destroy() {
	t.mu.Lock()
	t.sessionID = ""
	t.state = TargetDestroyed
	t.mu.Unlock()

	t.frameMu.Lock()
	t.frames = make(map[cdp.FrameID]*cdp.Frame)
	t.execContexts = make(map[cdp.ExecutionContextID]cdp.FrameID)
	t.cur = ""
	t.docNodeID = 0
	waiters := t.navWaiters
	t.navWaiters = nil
	t.frameMu.Unlock()
	for _, w := range waiters {
		w.fire(ErrTargetGone)
	}
}
