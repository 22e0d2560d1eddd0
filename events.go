package chromiumoxide

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/mailru/easyjson"

	"github.com/mattsse/chromiumoxide/cdp"
	"github.com/mattsse/chromiumoxide/cdp/dom"
	"github.com/mattsse/chromiumoxide/cdp/network"
	"github.com/mattsse/chromiumoxide/cdp/page"
	"github.com/mattsse/chromiumoxide/cdp/runtime"
	"github.com/mattsse/chromiumoxide/cdp/target"
)

// DefaultEventBufferSize is the per-subscription buffer; when it overflows
// the oldest event is dropped and the stream is flagged as lagged.
const DefaultEventBufferSize = 128

// Event is one protocol event as observed by a subscriber. Value carries the
// decoded typed event for known methods and is nil otherwise; Params always
// carries the raw payload.
type Event struct {
	Method    cdp.MethodType
	SessionID cdp.SessionID
	Params    easyjson.RawMessage
	Value     interface{}
}

// EventStream is a bounded subscription to protocol events. Streams never
// block the handler: a slow consumer loses the oldest buffered events and
// observes the loss via Lagged.
type EventStream struct {
	mu       sync.Mutex
	buf      []*Event
	max      int
	lagged   bool
	closed   bool
	closeErr error

	// notify wakes a blocked Next; capacity 1.
	notify chan struct{}

	remove func(*EventStream)
}

func newEventStream(remove func(*EventStream)) *EventStream {
	return &EventStream{
		max:    DefaultEventBufferSize,
		notify: make(chan struct{}, 1),
		remove: remove,
	}
}

// push appends the event, dropping the oldest entry on overflow. It reports
// whether the stream is still alive.
func (s *EventStream) push(ev *Event) bool {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false
	}
	if len(s.buf) >= s.max {
		s.buf = s.buf[1:]
		s.lagged = true
	}
	s.buf = append(s.buf, ev)
	s.mu.Unlock()
	select {
	case s.notify <- struct{}{}:
	default:
	}
	return true
}

// Next returns the next buffered event, suspending until one arrives, the
// context ends, or the stream is closed. After closure, buffered events are
// still drained before the closure error is returned.
func (s *EventStream) Next(ctx context.Context) (*Event, error) {
	for {
		s.mu.Lock()
		if len(s.buf) > 0 {
			ev := s.buf[0]
			s.buf = s.buf[1:]
			s.mu.Unlock()
			return ev, nil
		}
		if s.closed {
			err := s.closeErr
			s.mu.Unlock()
			if err == nil {
				err = ErrChannelClosed
			}
			return nil, err
		}
		s.mu.Unlock()

		select {
		case <-s.notify:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// TryNext returns a buffered event without suspending.
func (s *EventStream) TryNext() (*Event, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.buf) == 0 {
		return nil, false
	}
	ev := s.buf[0]
	s.buf = s.buf[1:]
	return ev, true
}

// Lagged reports and clears the overflow indicator.
func (s *EventStream) Lagged() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	lagged := s.lagged
	s.lagged = false
	return lagged
}

// Close detaches the stream from the handler. Safe to call more than once.
func (s *EventStream) Close() {
	s.closeWith(nil)
	if s.remove != nil {
		s.remove(s)
	}
}

func (s *EventStream) closeWith(err error) {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		s.closeErr = err
	}
	s.mu.Unlock()
	select {
	case s.notify <- struct{}{}:
	default:
	}
}

// subscribeAll registers a catch-all stream receiving every event.
func (h *Handler) subscribeAll() *EventStream {
	s := newEventStream(h.unsubscribe)
	h.subsMu.Lock()
	h.catchAll = append(h.catchAll, s)
	h.subsMu.Unlock()
	return s
}

// subscribeMethod registers a stream receiving events of one method.
func (h *Handler) subscribeMethod(method cdp.MethodType) *EventStream {
	s := newEventStream(h.unsubscribe)
	h.subsMu.Lock()
	h.byMethod[method] = append(h.byMethod[method], s)
	h.subsMu.Unlock()
	return s
}

// subscribeSession registers a stream receiving every event of one session.
func (h *Handler) subscribeSession(id cdp.SessionID) *EventStream {
	s := newEventStream(h.unsubscribe)
	h.subsMu.Lock()
	h.byTarget[id] = append(h.byTarget[id], s)
	h.subsMu.Unlock()
	return s
}

func (h *Handler) unsubscribe(s *EventStream) {
	h.subsMu.Lock()
	defer h.subsMu.Unlock()
	h.catchAll = removeStream(h.catchAll, s)
	for m, list := range h.byMethod {
		h.byMethod[m] = removeStream(list, s)
	}
	for id, list := range h.byTarget {
		h.byTarget[id] = removeStream(list, s)
	}
}

func removeStream(list []*EventStream, s *EventStream) []*EventStream {
	for i, x := range list {
		if x == s {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}

// dispatch fans the event out to the catch-all, per-method and per-target
// subscribers. Dead streams are reaped in place.
func (h *Handler) dispatch(ev *Event) {
	h.subsMu.Lock()
	defer h.subsMu.Unlock()
	h.catchAll = pushAll(h.catchAll, ev)
	if list, ok := h.byMethod[ev.Method]; ok {
		h.byMethod[ev.Method] = pushAll(list, ev)
	}
	if ev.SessionID != "" {
		if list, ok := h.byTarget[ev.SessionID]; ok {
			h.byTarget[ev.SessionID] = pushAll(list, ev)
		}
	}
}

func pushAll(list []*EventStream, ev *Event) []*EventStream {
	for i := 0; i < len(list); {
		if !list[i].push(ev) {
			list = append(list[:i], list[i+1:]...)
			continue
		}
		i++
	}
	return list
}

// decodeEvent unmarshals the params of a known event method into its typed
// struct. Unknown methods yield a nil value and no error, so they still flow
// to catch-all subscribers raw.
func decodeEvent(method cdp.MethodType, params easyjson.RawMessage) (interface{}, error) {
	var ev interface{}
	switch method {
	case target.MethodTargetCreated:
		ev = new(target.EventTargetCreated)
	case target.MethodTargetDestroyed:
		ev = new(target.EventTargetDestroyed)
	case target.MethodTargetInfoChanged:
		ev = new(target.EventTargetInfoChanged)
	case target.MethodTargetCrashed:
		ev = new(target.EventTargetCrashed)
	case target.MethodAttachedToTarget:
		ev = new(target.EventAttachedToTarget)
	case target.MethodDetachedFromTarget:
		ev = new(target.EventDetachedFromTarget)
	case page.MethodFrameAttached:
		ev = new(page.EventFrameAttached)
	case page.MethodFrameNavigated:
		ev = new(page.EventFrameNavigated)
	case page.MethodFrameDetached:
		ev = new(page.EventFrameDetached)
	case page.MethodFrameStartedLoading:
		ev = new(page.EventFrameStartedLoading)
	case page.MethodFrameStoppedLoading:
		ev = new(page.EventFrameStoppedLoading)
	case page.MethodLifecycleEvent:
		ev = new(page.EventLifecycleEvent)
	case page.MethodLoadEventFired:
		ev = new(page.EventLoadEventFired)
	case page.MethodDomContentEventFired:
		ev = new(page.EventDomContentEventFired)
	case page.MethodNavigatedWithinDocument:
		ev = new(page.EventNavigatedWithinDocument)
	case page.MethodJavascriptDialogOpening:
		ev = new(page.EventJavascriptDialogOpening)
	case runtime.MethodExecutionContextCreated:
		ev = new(runtime.EventExecutionContextCreated)
	case runtime.MethodExecutionContextDestroyed:
		ev = new(runtime.EventExecutionContextDestroyed)
	case runtime.MethodExecutionContextsCleared:
		ev = new(runtime.EventExecutionContextsCleared)
	case runtime.MethodConsoleAPICalled:
		ev = new(runtime.EventConsoleAPICalled)
	case runtime.MethodExceptionThrown:
		ev = new(runtime.EventExceptionThrown)
	case dom.MethodDocumentUpdated:
		ev = new(dom.EventDocumentUpdated)
	case dom.MethodSetChildNodes:
		ev = new(dom.EventSetChildNodes)
	case network.MethodRequestWillBeSent:
		ev = new(network.EventRequestWillBeSent)
	case network.MethodResponseReceived:
		ev = new(network.EventResponseReceived)
	case network.MethodLoadingFinished:
		ev = new(network.EventLoadingFinished)
	case network.MethodLoadingFailed:
		ev = new(network.EventLoadingFailed)
	default:
		return nil, nil
	}
	if len(params) > 0 {
		if err := json.Unmarshal(params, ev); err != nil {
			return nil, err
		}
	}
	return ev, nil
}
