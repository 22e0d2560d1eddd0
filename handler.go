package chromiumoxide

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/mattsse/chromiumoxide/cdp"
	"github.com/mattsse/chromiumoxide/cdp/dom"
	"github.com/mattsse/chromiumoxide/cdp/network"
	"github.com/mattsse/chromiumoxide/cdp/page"
	"github.com/mattsse/chromiumoxide/cdp/runtime"
	"github.com/mattsse/chromiumoxide/cdp/target"
)

// DefaultRequestTimeout is the deadline applied to every command; a context
// deadline takes its place only when it is earlier.
const DefaultRequestTimeout = 30 * time.Second

type cmdResult struct {
	msg *cdp.Message
	err error
}

// cmdJob is a command submission travelling from a caller to the handler.
type cmdJob struct {
	sessionID cdp.SessionID
	method    string
	params    json.RawMessage
	deadline  time.Time

	// res receives exactly one result; buffered so a cancelled caller
	// never blocks the handler.
	res chan cmdResult
}

// inflight is one registered command awaiting its response.
type inflight struct {
	id       int64
	session  cdp.SessionID
	method   string
	deadline time.Time

	// res is nil for handler-internal commands whose response is
	// discarded.
	res chan cmdResult
}

// Handler is the single goroutine that owns the transport and all protocol
// state: the in-flight command table, the target registry, and the event
// subscriptions. It is the only writer to the websocket.
type Handler struct {
	conn Transport

	cmdQueue chan *cmdJob
	qmsg     chan *cdp.Message

	// next is the id handed to the next outgoing command; ids start at 1.
	next     int64
	inflight map[int64]*inflight

	// deadlines is rearmed to the earliest command deadline.
	deadlines *time.Timer

	// tmu guards targets, sessions and attachWaiters; only the handler
	// goroutine writes targets and sessions, while waitAttached also adds
	// attach waiters from caller goroutines.
	tmu           sync.RWMutex
	targets       map[cdp.TargetID]*Target
	sessions      map[cdp.SessionID]*Target
	attachWaiters map[cdp.TargetID][]chan *Target

	// subsMu guards the subscription lists.
	subsMu   sync.Mutex
	catchAll []*EventStream
	byMethod map[cdp.MethodType][]*EventStream
	byTarget map[cdp.SessionID][]*EventStream

	autoAttach     bool
	requestTimeout time.Duration

	// done is closed once the handler has terminated and drained.
	done    chan struct{}
	doneErr error

	logf, errf, dbgf func(string, ...interface{})
}

func newHandler(conn Transport) *Handler {
	h := &Handler{
		conn:           conn,
		cmdQueue:       make(chan *cmdJob),
		qmsg:           make(chan *cdp.Message, 64),
		next:           1,
		inflight:       make(map[int64]*inflight),
		targets:        make(map[cdp.TargetID]*Target),
		sessions:       make(map[cdp.SessionID]*Target),
		attachWaiters:  make(map[cdp.TargetID][]chan *Target),
		byMethod:       make(map[cdp.MethodType][]*EventStream),
		byTarget:       make(map[cdp.SessionID][]*EventStream),
		autoAttach:     true,
		requestTimeout: DefaultRequestTimeout,
		done:           make(chan struct{}),
	}
	h.deadlines = time.NewTimer(time.Hour)
	h.deadlines.Stop()
	return h
}

// run processes the request queue, the transport receive stream and the
// deadline timer until the context is cancelled or the transport closes.
func (h *Handler) run(ctx context.Context) {
	readErr := make(chan error, 1)
	go func() {
		for {
			msg := new(cdp.Message)
			if err := h.conn.Read(msg); err != nil {
				readErr <- err
				return
			}
			select {
			case h.qmsg <- msg:
			case <-h.done:
				return
			}
		}
	}()

	var err error
loop:
	for {
		select {
		case job := <-h.cmdQueue:
			if err = h.send(job); err != nil {
				break loop
			}

		case msg := <-h.qmsg:
			h.process(msg)

		case <-h.deadlines.C:
			h.expire(time.Now())

		case err = <-readErr:
			break loop

		case <-ctx.Done():
			err = ctx.Err()
			break loop
		}
	}
	h.shutdown(err)
}

// send registers the job in the command table and writes its frame. The
// entry is inserted before the write so the response can never race the
// registration.
func (h *Handler) send(job *cmdJob) error {
	if job.sessionID != "" {
		h.tmu.RLock()
		_, ok := h.sessions[job.sessionID]
		h.tmu.RUnlock()
		if !ok {
			job.res <- cmdResult{err: ErrNotAttached}
			return nil
		}
	}

	id := h.next
	h.next++
	h.inflight[id] = &inflight{
		id:       id,
		session:  job.sessionID,
		method:   job.method,
		deadline: job.deadline,
		res:      job.res,
	}
	h.armDeadline(job.deadline)

	msg := &cdp.Message{
		ID:        id,
		SessionID: job.sessionID,
		Method:    cdp.MethodType(job.method),
		Params:    []byte(job.params),
	}
	if err := h.conn.Write(msg); err != nil {
		delete(h.inflight, id)
		job.res <- cmdResult{err: fmt.Errorf("%w: %v", ErrTransportClosed, err)}
		return err
	}
	return nil
}

// sendInternal issues a handler-originated command whose response is
// discarded (attach requests, domain enables).
func (h *Handler) sendInternal(sessionID cdp.SessionID, method string, params interface{}) {
	var buf json.RawMessage
	if params != nil {
		var err error
		buf, err = json.Marshal(params)
		if err != nil {
			h.errf("could not marshal %s params: %v", method, err)
			return
		}
	}
	id := h.next
	h.next++
	h.inflight[id] = &inflight{id: id, session: sessionID, method: method}
	msg := &cdp.Message{
		ID:        id,
		SessionID: sessionID,
		Method:    cdp.MethodType(method),
		Params:    []byte(buf),
	}
	if err := h.conn.Write(msg); err != nil {
		delete(h.inflight, id)
		h.errf("could not send %s: %v", method, err)
	}
}

// process classifies one incoming frame as a response or an event.
func (h *Handler) process(msg *cdp.Message) {
	switch {
	case msg.ID != 0:
		e, ok := h.inflight[msg.ID]
		if !ok {
			// Either cancelled and already reaped, or never ours;
			// discarded without side effects.
			if h.dbgf != nil {
				h.dbgf("discarding response for unknown id %d", msg.ID)
			}
			return
		}
		delete(h.inflight, msg.ID)
		if e.res == nil {
			if msg.Error != nil {
				h.errf("%s: %v", e.method, msg.Error)
			}
			return
		}
		if msg.Error != nil {
			e.res <- cmdResult{err: msg.Error}
		} else {
			e.res <- cmdResult{msg: msg}
		}

	case msg.Method != "":
		h.onEvent(msg)

	default:
		h.errf("ignoring malformed incoming message (missing id or method): %#v", msg)
	}
}

// expire sweeps commands whose deadline has passed.
func (h *Handler) expire(now time.Time) {
	var next time.Time
	for id, e := range h.inflight {
		if e.deadline.IsZero() {
			continue
		}
		if !e.deadline.After(now) {
			delete(h.inflight, id)
			if e.res != nil {
				e.res <- cmdResult{err: ErrTimeout}
			}
			continue
		}
		if next.IsZero() || e.deadline.Before(next) {
			next = e.deadline
		}
	}
	if !next.IsZero() {
		h.deadlines.Reset(time.Until(next))
	}
}

func (h *Handler) armDeadline(deadline time.Time) {
	if deadline.IsZero() {
		return
	}
	// Rearm to the earliest pending deadline. The timer may fire early for
	// entries removed in the meantime; expire recomputes the next deadline.
	for _, e := range h.inflight {
		if !e.deadline.IsZero() && e.deadline.Before(deadline) {
			deadline = e.deadline
		}
	}
	h.deadlines.Reset(time.Until(deadline))
}

// failSession completes every in-flight command on the session with err.
func (h *Handler) failSession(sessionID cdp.SessionID, err error) {
	for id, e := range h.inflight {
		if e.session != sessionID {
			continue
		}
		delete(h.inflight, id)
		if e.res != nil {
			e.res <- cmdResult{err: err}
		}
	}
}

// shutdown drains the command table and marks the handler dead. Every
// pending command completes exactly once, with ErrTransportClosed.
func (h *Handler) shutdown(cause error) {
	for id, e := range h.inflight {
		delete(h.inflight, id)
		if e.res != nil {
			e.res <- cmdResult{err: ErrTransportClosed}
		}
	}
	h.deadlines.Stop()

	h.tmu.Lock()
	for id, waiters := range h.attachWaiters {
		delete(h.attachWaiters, id)
		for _, ch := range waiters {
			close(ch)
		}
	}
	for _, t := range h.targets {
		t.closeNavWaiters(ErrTransportClosed)
	}
	h.tmu.Unlock()

	h.subsMu.Lock()
	streams := append([]*EventStream{}, h.catchAll...)
	for _, list := range h.byMethod {
		streams = append(streams, list...)
	}
	for _, list := range h.byTarget {
		streams = append(streams, list...)
	}
	h.subsMu.Unlock()
	for _, s := range streams {
		s.closeWith(ErrTransportClosed)
	}

	h.doneErr = cause
	h.conn.Close()
	close(h.done)
}

// Execute submits a command scoped to the given session (empty for
// browser-level) and decodes its result into res. It suspends until the
// response, the command deadline, cancellation, or transport closure.
func (h *Handler) Execute(ctx context.Context, sessionID cdp.SessionID, method string, params, res interface{}) error {
	var buf json.RawMessage
	if params != nil {
		var err error
		buf, err = json.Marshal(params)
		if err != nil {
			return err
		}
	}

	job := &cmdJob{
		sessionID: sessionID,
		method:    method,
		params:    buf,
		deadline:  time.Now().Add(h.requestTimeout),
		res:       make(chan cmdResult, 1),
	}
	if d, ok := ctx.Deadline(); ok && d.Before(job.deadline) {
		job.deadline = d
	}

	select {
	case h.cmdQueue <- job:
	case <-h.done:
		return ErrTransportClosed
	case <-ctx.Done():
		return fmt.Errorf("%w: %v", ErrCancelled, ctx.Err())
	}

	// Cancellation here detaches the caller only: the entry stays in the
	// registry and its late response is discarded via the buffered sink.
	select {
	case r := <-job.res:
		if r.err != nil {
			return r.err
		}
		if res != nil && len(r.msg.Result) > 0 {
			if err := json.Unmarshal(r.msg.Result, res); err != nil {
				return fmt.Errorf("%w: %v", ErrDeserializeFailed, err)
			}
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%w: %v", ErrCancelled, ctx.Err())
	}
}

// waitAttached suspends until the target has an attached session, the
// context ends, or the handler dies.
func (h *Handler) waitAttached(ctx context.Context, id cdp.TargetID) (*Target, error) {
	h.tmu.Lock()
	if t, ok := h.targets[id]; ok && t.State() == TargetAttached {
		h.tmu.Unlock()
		return t, nil
	}
	ch := make(chan *Target, 1)
	h.attachWaiters[id] = append(h.attachWaiters[id], ch)
	h.tmu.Unlock()

	select {
	case t, ok := <-ch:
		if !ok {
			return nil, ErrTransportClosed
		}
		return t, nil
	case <-h.done:
		return nil, ErrTransportClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// targetByID returns the tracked target, if any.
func (h *Handler) targetByID(id cdp.TargetID) *Target {
	h.tmu.RLock()
	defer h.tmu.RUnlock()
	return h.targets[id]
}

// onEvent applies an incoming event to the local state machines, then
// notifies subscribers. State is always updated first so a subscriber
// reacting to the event observes the post-event world.
func (h *Handler) onEvent(msg *cdp.Message) {
	ev, err := decodeEvent(msg.Method, msg.Params)
	if err != nil {
		h.errf("could not decode %s: %v", msg.Method, err)
		return
	}

	switch e := ev.(type) {
	case *target.EventTargetCreated:
		h.targetCreated(e.TargetInfo)
	case *target.EventAttachedToTarget:
		h.attachedToTarget(e)
	case *target.EventDetachedFromTarget:
		h.detachedFromTarget(e)
	case *target.EventTargetInfoChanged:
		h.targetInfoChanged(e.TargetInfo)
	case *target.EventTargetDestroyed:
		h.targetDestroyed(e.TargetID)
	default:
		if msg.SessionID != "" {
			h.tmu.RLock()
			t := h.sessions[msg.SessionID]
			h.tmu.RUnlock()
			if t != nil {
				t.applyEvent(ev)
			}
			// Events for destroyed targets are dropped after state
			// cleanup, but still reach the catch-all stream below.
		}
	}

	h.dispatch(&Event{
		Method:    msg.Method,
		SessionID: msg.SessionID,
		Params:    msg.Params,
		Value:     ev,
	})
}

func (h *Handler) targetCreated(info *target.Info) {
	if info == nil {
		return
	}
	h.tmu.Lock()
	t, ok := h.targets[info.TargetID]
	if !ok {
		t = newTarget(info, h)
		h.targets[info.TargetID] = t
	} else {
		t.updateInfo(info)
	}
	h.tmu.Unlock()

	if h.autoAttach && t.State() == TargetDiscovered && interestingType(info.Type) {
		t.transition(TargetAttaching)
		h.sendInternal("", target.CommandAttachToTarget, &target.AttachToTargetParams{
			TargetID: info.TargetID,
			Flatten:  true,
		})
	}
}

func (h *Handler) attachedToTarget(e *target.EventAttachedToTarget) {
	if e.TargetInfo == nil || e.SessionID == "" {
		return
	}
	h.tmu.Lock()
	t, ok := h.targets[e.TargetInfo.TargetID]
	if !ok {
		t = newTarget(e.TargetInfo, h)
		h.targets[e.TargetInfo.TargetID] = t
	}
	t.attach(e.SessionID)
	h.sessions[e.SessionID] = t
	waiters := h.attachWaiters[t.id]
	delete(h.attachWaiters, t.id)
	h.tmu.Unlock()

	if t.isPage() {
		// Install the frame tree and enable the domains page operations
		// observe.
		h.sendInternal(e.SessionID, page.CommandEnable, nil)
		h.sendInternal(e.SessionID, page.CommandSetLifecycleEventsEnabled, page.SetLifecycleEventsEnabled(true))
		h.sendInternal(e.SessionID, runtime.CommandEnable, nil)
		h.sendInternal(e.SessionID, dom.CommandEnable, nil)
		h.sendInternal(e.SessionID, network.CommandEnable, network.Enable())
	}

	for _, ch := range waiters {
		ch <- t
		close(ch)
	}
}

func (h *Handler) detachedFromTarget(e *target.EventDetachedFromTarget) {
	h.tmu.Lock()
	t := h.sessions[e.SessionID]
	delete(h.sessions, e.SessionID)
	h.tmu.Unlock()
	if t == nil {
		return
	}
	t.detach()
	h.failSession(e.SessionID, ErrNotAttached)
}

func (h *Handler) targetInfoChanged(info *target.Info) {
	if info == nil {
		return
	}
	h.tmu.RLock()
	t := h.targets[info.TargetID]
	h.tmu.RUnlock()
	if t != nil {
		t.updateInfo(info)
	}
}

func (h *Handler) targetDestroyed(id cdp.TargetID) {
	h.tmu.Lock()
	t := h.targets[id]
	delete(h.targets, id)
	var session cdp.SessionID
	if t != nil {
		session = t.Session()
		if session != "" {
			delete(h.sessions, session)
		}
	}
	waiters := h.attachWaiters[id]
	delete(h.attachWaiters, id)
	h.tmu.Unlock()
	if t == nil {
		return
	}
	for _, ch := range waiters {
		close(ch)
	}
	t.destroy()
	if session != "" {
		h.failSession(session, ErrTargetGone)
	}
}

func interestingType(typ string) bool {
	switch typ {
	case "page", "iframe", "worker", "service_worker", "shared_worker":
		return true
	}
	return false
}
