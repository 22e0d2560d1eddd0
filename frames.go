package chromiumoxide

import (
	"context"
	"encoding/json"

	"github.com/mattsse/chromiumoxide/cdp"
	"github.com/mattsse/chromiumoxide/cdp/page"
	"github.com/mattsse/chromiumoxide/cdp/runtime"
)

// navWaiter is one installed wait-for-navigation predicate. It resolves when
// its frame reaches the wanted lifecycle under a loader id different from the
// one observed at install time, which covers navigations that complete
// before the waiter exists.
type navWaiter struct {
	frameID    cdp.FrameID
	want       cdp.FrameLifecycle
	baseLoader cdp.LoaderID
	ch         chan error
}

func (w *navWaiter) fire(err error) {
	select {
	case w.ch <- err:
	default:
	}
}

// satisfied reports whether the frame's current loader and lifecycle resolve
// the waiter. Callers hold the frame lock.
func (w *navWaiter) satisfied(f *cdp.Frame) bool {
	return f.Loader != w.baseLoader && f.Lifecycle >= w.want && f.Lifecycle != cdp.LifecycleStopped
}

// applyEvent advances the frame tree and execution context state for one
// session-scoped event. Called only from the handler goroutine.
func (t *Target) applyEvent(ev interface{}) {
	switch e := ev.(type) {
	case *page.EventFrameAttached:
		t.frameAttached(e.FrameID, e.ParentFrameID)
	case *page.EventFrameNavigated:
		t.frameNavigated(e.Frame)
	case *page.EventFrameDetached:
		t.frameDetached(e.FrameID)
	case *page.EventFrameStartedLoading:
		t.frameLifecycle(e.FrameID, "", cdp.LifecycleStarted)
	case *page.EventFrameStoppedLoading:
		t.frameLifecycle(e.FrameID, "", cdp.LifecycleStopped)
	case *page.EventLifecycleEvent:
		t.lifecycleEvent(e)
	case *page.EventNavigatedWithinDocument:
		t.navigatedWithinDocument(e.FrameID, e.URL)
	case *runtime.EventExecutionContextCreated:
		t.executionContextCreated(e.Context)
	case *runtime.EventExecutionContextDestroyed:
		t.executionContextDestroyed(e.ExecutionContextID)
	case *runtime.EventExecutionContextsCleared:
		t.executionContextsCleared()
	}
}

func (t *Target) frameAttached(id, parent cdp.FrameID) {
	t.frameMu.Lock()
	defer t.frameMu.Unlock()
	f := t.frames[id]
	if f == nil {
		f = &cdp.Frame{ID: id, ExecContexts: make(map[cdp.ExecutionContextID]string)}
		t.frames[id] = f
	}
	f.Lock()
	f.ParentID = parent
	f.Unlock()
}

func (t *Target) frameNavigated(info *page.Frame) {
	if info == nil {
		return
	}
	t.frameMu.Lock()
	f := t.frames[info.ID]
	if f == nil {
		f = &cdp.Frame{ID: info.ID, ExecContexts: make(map[cdp.ExecutionContextID]string)}
		t.frames[info.ID] = f
	}
	f.Lock()
	f.ParentID = info.ParentID
	f.URL = info.URL
	f.Loader = info.LoaderID
	f.Lifecycle = cdp.LifecycleStarted
	f.Unlock()
	if info.ParentID == "" {
		// This frame is only the new top-level frame if it has no
		// parent.
		t.cur = info.ID
		t.docNodeID = 0
	}
	t.frameMu.Unlock()
}

func (t *Target) frameDetached(id cdp.FrameID) {
	t.frameMu.Lock()
	delete(t.frames, id)
	var detached []*navWaiter
	t.navWaiters = filterWaiters(t.navWaiters, func(w *navWaiter) bool {
		if w.frameID == id {
			detached = append(detached, w)
			return false
		}
		return true
	})
	t.frameMu.Unlock()
	for _, w := range detached {
		w.fire(ErrNoSuchFrame)
	}
}

func (t *Target) frameLifecycle(id cdp.FrameID, loader cdp.LoaderID, lc cdp.FrameLifecycle) {
	t.frameMu.Lock()
	f := t.frames[id]
	if f == nil {
		// A frame can start loading before it was ever navigated to; we
		// won't have all the frame details just yet.
		f = &cdp.Frame{ID: id, ExecContexts: make(map[cdp.ExecutionContextID]string)}
		t.frames[id] = f
	}
	f.Lock()
	if loader != "" && loader != f.Loader {
		// Stale lifecycle for a previous loader.
		f.Unlock()
		t.frameMu.Unlock()
		return
	}
	switch {
	case lc == cdp.LifecycleStarted, lc == cdp.LifecycleStopped:
		f.Lifecycle = lc
	case lc > f.Lifecycle:
		f.Lifecycle = lc
	}
	f.Unlock()
	fired := t.checkNavWaitersLocked(f)
	t.frameMu.Unlock()
	for _, w := range fired {
		w.fire(nil)
	}
}

func (t *Target) lifecycleEvent(e *page.EventLifecycleEvent) {
	lc, ok := lifecycleByName[e.Name]
	if !ok {
		return
	}
	t.frameMu.Lock()
	f := t.frames[e.FrameID]
	if f == nil {
		f = &cdp.Frame{ID: e.FrameID, ExecContexts: make(map[cdp.ExecutionContextID]string)}
		t.frames[e.FrameID] = f
	}
	f.Lock()
	if f.Loader == "" {
		f.Loader = e.LoaderID
	}
	if e.LoaderID != f.Loader {
		f.Unlock()
		t.frameMu.Unlock()
		return
	}
	if lc == cdp.LifecycleStarted || lc > f.Lifecycle {
		f.Lifecycle = lc
	}
	f.Unlock()
	fired := t.checkNavWaitersLocked(f)
	t.frameMu.Unlock()
	for _, w := range fired {
		w.fire(nil)
	}
}

var lifecycleByName = map[string]cdp.FrameLifecycle{
	"init":             cdp.LifecycleStarted,
	"DOMContentLoaded": cdp.LifecycleDOMContentLoaded,
	"load":             cdp.LifecycleLoad,
	"networkIdle":      cdp.LifecycleNetworkIdle,
}

func (t *Target) navigatedWithinDocument(id cdp.FrameID, url string) {
	t.frameMu.Lock()
	defer t.frameMu.Unlock()
	if f := t.frames[id]; f != nil {
		f.Lock()
		f.URL = url
		f.Unlock()
	}
}

// checkNavWaitersLocked collects the waiters resolved by the frame's current
// state; t.frameMu and no frame lock are held by the caller.
func (t *Target) checkNavWaitersLocked(f *cdp.Frame) []*navWaiter {
	var fired []*navWaiter
	f.RLock()
	t.navWaiters = filterWaiters(t.navWaiters, func(w *navWaiter) bool {
		if w.frameID == f.ID && w.satisfied(f) {
			fired = append(fired, w)
			return false
		}
		return true
	})
	f.RUnlock()
	return fired
}

func filterWaiters(list []*navWaiter, keep func(*navWaiter) bool) []*navWaiter {
	out := list[:0]
	for _, w := range list {
		if keep(w) {
			out = append(out, w)
		}
	}
	return out
}

// closeNavWaiters fails every installed waiter; used on shutdown.
func (t *Target) closeNavWaiters(err error) {
	t.frameMu.Lock()
	waiters := t.navWaiters
	t.navWaiters = nil
	t.frameMu.Unlock()
	for _, w := range waiters {
		w.fire(err)
	}
}

func (t *Target) executionContextCreated(desc *runtime.ExecutionContextDescription) {
	if desc == nil {
		return
	}
	var aux struct {
		FrameID cdp.FrameID `json:"frameId"`
	}
	if len(desc.AuxData) > 0 {
		if err := json.Unmarshal(desc.AuxData, &aux); err != nil {
			t.h.errf("could not decode executionContextCreated auxData %q: %v", desc.AuxData, err)
			return
		}
	}
	if aux.FrameID == "" {
		return
	}
	t.frameMu.Lock()
	defer t.frameMu.Unlock()
	t.execContexts[desc.ID] = aux.FrameID
	if f := t.frames[aux.FrameID]; f != nil {
		f.Lock()
		if f.ExecContexts == nil {
			f.ExecContexts = make(map[cdp.ExecutionContextID]string)
		}
		f.ExecContexts[desc.ID] = desc.Name
		f.Unlock()
	}
}

func (t *Target) executionContextDestroyed(id cdp.ExecutionContextID) {
	t.frameMu.Lock()
	defer t.frameMu.Unlock()
	frameID, ok := t.execContexts[id]
	if !ok {
		return
	}
	delete(t.execContexts, id)
	if f := t.frames[frameID]; f != nil {
		f.Lock()
		delete(f.ExecContexts, id)
		f.Unlock()
	}
}

func (t *Target) executionContextsCleared() {
	t.frameMu.Lock()
	defer t.frameMu.Unlock()
	for id, frameID := range t.execContexts {
		if f := t.frames[frameID]; f != nil {
			f.Lock()
			delete(f.ExecContexts, id)
			f.Unlock()
		}
		delete(t.execContexts, id)
	}
}

// mainFrame returns the current top-level frame, if known.
func (t *Target) mainFrame() *cdp.Frame {
	t.frameMu.RLock()
	defer t.frameMu.RUnlock()
	return t.frames[t.cur]
}

// frameByID returns the tracked frame with the given id.
func (t *Target) frameByID(id cdp.FrameID) *cdp.Frame {
	t.frameMu.RLock()
	defer t.frameMu.RUnlock()
	return t.frames[id]
}

// executionContext returns an execution context id registered for the frame.
func (t *Target) executionContext(frameID cdp.FrameID) (cdp.ExecutionContextID, bool) {
	t.frameMu.RLock()
	defer t.frameMu.RUnlock()
	for id, fid := range t.execContexts {
		if fid == frameID {
			return id, true
		}
	}
	return 0, false
}

// installNavWaiter registers a waiter fenced on the loader observed at the
// page's last synchronization point (creation, Navigate, or a completed
// wait). If a qualifying navigation already finished, the waiter fires
// immediately; the returned channel receives exactly one value either way.
func (t *Target) installNavWaiter(frameID cdp.FrameID, want cdp.FrameLifecycle) (*navWaiter, error) {
	t.frameMu.Lock()
	defer t.frameMu.Unlock()
	if t.State() == TargetDestroyed {
		return nil, ErrTargetGone
	}
	if frameID == "" {
		frameID = t.cur
	}
	w := &navWaiter{
		frameID:    frameID,
		want:       want,
		baseLoader: t.navBase,
		ch:         make(chan error, 1),
	}
	if f := t.frames[frameID]; f != nil {
		f.RLock()
		done := w.satisfied(f)
		f.RUnlock()
		if done {
			w.fire(nil)
			return w, nil
		}
	}
	t.navWaiters = append(t.navWaiters, w)
	return w, nil
}

// snapshotNavBase records the main frame's current loader as the fence for
// subsequent navigation waits.
func (t *Target) snapshotNavBase() {
	t.frameMu.Lock()
	defer t.frameMu.Unlock()
	if f := t.frames[t.cur]; f != nil {
		f.RLock()
		t.navBase = f.Loader
		f.RUnlock()
	}
}

// waitNavigation blocks until the waiter fires or the context ends.
func (t *Target) waitNavigation(ctx context.Context, w *navWaiter) error {
	select {
	case err := <-w.ch:
		return err
	case <-ctx.Done():
		t.frameMu.Lock()
		t.navWaiters = filterWaiters(t.navWaiters, func(x *navWaiter) bool { return x != w })
		t.frameMu.Unlock()
		return ctx.Err()
	}
}
