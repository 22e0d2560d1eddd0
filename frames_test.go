package chromiumoxide

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mattsse/chromiumoxide/cdp"
)

func waitForFrame(t *testing.T, tr *Target, id cdp.FrameID) *cdp.Frame {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		if f := tr.frameByID(id); f != nil {
			return f
		}
		select {
		case <-deadline:
			t.Fatalf("frame %s never tracked", id)
		case <-time.After(time.Millisecond):
		}
	}
}

func TestFrameTreeAttachDetach(t *testing.T) {
	p, fb := testPage(t)

	main := p.t.mainFrame()
	if main == nil {
		t.Fatal("no main frame after initial navigation")
	}

	fb.Emit("Page.frameAttached", string(p.SessionID()), map[string]interface{}{
		"frameId":       "SUB-1",
		"parentFrameId": string(main.ID),
	})
	sub := waitForFrame(t, p.t, "SUB-1")
	sub.RLock()
	parent := sub.ParentID
	sub.RUnlock()
	if parent != main.ID {
		t.Fatalf("parent = %q, want %q", parent, main.ID)
	}

	fb.Emit("Page.frameDetached", string(p.SessionID()), map[string]interface{}{
		"frameId": "SUB-1",
	})
	deadline := time.After(5 * time.Second)
	for p.t.frameByID("SUB-1") != nil {
		select {
		case <-deadline:
			t.Fatal("frame never detached")
		case <-time.After(time.Millisecond):
		}
	}
}

func TestFrameLifecycleAdvances(t *testing.T) {
	p, fb := testPage(t)

	main := p.t.mainFrame()
	main.RLock()
	loader := main.Loader
	main.RUnlock()

	// The fake already drove the initial navigation to networkIdle.
	main.RLock()
	lc := main.Lifecycle
	main.RUnlock()
	if lc < cdp.LifecycleLoad {
		t.Fatalf("lifecycle = %v, want at least load", lc)
	}

	// Lifecycle events for a stale loader are ignored.
	fb.Emit("Page.lifecycleEvent", string(p.SessionID()), map[string]interface{}{
		"frameId":   string(main.ID),
		"loaderId":  "STALE-LOADER",
		"name":      "init",
		"timestamp": 2000.0,
	})
	if _, err := p.b.Version(testContext(t)); err != nil {
		t.Fatal(err)
	}
	main.RLock()
	lc, got := main.Lifecycle, main.Loader
	main.RUnlock()
	if got != loader {
		t.Fatalf("loader = %q, want %q", got, loader)
	}
	if lc < cdp.LifecycleLoad {
		t.Fatalf("stale lifecycle reset the frame to %v", lc)
	}
}

func TestWaitForNavigationNetworkIdle(t *testing.T) {
	p, _ := testPage(t)
	ctx := testContext(t)

	if err := p.WaitForNavigation(ctx, WithWaitLifecycle(cdp.LifecycleNetworkIdle)); err != nil {
		t.Fatalf("WaitForNavigation: %v", err)
	}
}

func TestWaitForNavigationFrameDetached(t *testing.T) {
	p, fb := testPage(t)
	ctx := testContext(t)

	fb.Emit("Page.frameAttached", string(p.SessionID()), map[string]interface{}{
		"frameId":       "SUB-2",
		"parentFrameId": string(p.t.mainFrame().ID),
	})
	waitForFrame(t, p.t, "SUB-2")

	done := make(chan error, 1)
	go func() {
		done <- p.WaitForNavigation(ctx, WithWaitFrame("SUB-2"))
	}()
	time.Sleep(20 * time.Millisecond)
	fb.Emit("Page.frameDetached", string(p.SessionID()), map[string]interface{}{
		"frameId": "SUB-2",
	})

	if err := <-done; !errors.Is(err, ErrNoSuchFrame) {
		t.Fatalf("wait = %v, want %v", err, ErrNoSuchFrame)
	}
}

func TestWaitForNavigationTargetDestroyed(t *testing.T) {
	p, fb := testPage(t)
	ctx := testContext(t)

	done := make(chan error, 1)
	go func() {
		// testPage does not wait for the initial load; the first wait
		// consumes it, so the second one is fenced and still pending.
		if err := p.WaitForNavigation(ctx); err != nil {
			done <- err
			return
		}
		done <- p.WaitForNavigation(ctx)
	}()
	time.Sleep(20 * time.Millisecond)
	fb.Emit("Target.targetDestroyed", "", map[string]interface{}{
		"targetId": string(p.TargetID()),
	})

	if err := <-done; !errors.Is(err, ErrTargetGone) {
		t.Fatalf("wait = %v, want %v", err, ErrTargetGone)
	}
}

func TestInstallNavWaiterOnDestroyedTarget(t *testing.T) {
	p, fb := testPage(t)

	fb.Emit("Target.targetDestroyed", "", map[string]interface{}{
		"targetId": string(p.TargetID()),
	})
	deadline := time.After(5 * time.Second)
	for p.t.State() != TargetDestroyed {
		select {
		case <-deadline:
			t.Fatal("target never destroyed")
		case <-time.After(time.Millisecond):
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := p.WaitForNavigation(ctx); !errors.Is(err, ErrTargetGone) {
		t.Fatalf("wait = %v, want %v", err, ErrTargetGone)
	}
}

func TestNavigatedWithinDocumentUpdatesURL(t *testing.T) {
	p, fb := testPage(t)

	main := p.t.mainFrame()
	fb.Emit("Page.navigatedWithinDocument", string(p.SessionID()), map[string]interface{}{
		"frameId": string(main.ID),
		"url":     "https://example.com/#anchor",
	})
	if _, err := p.b.Version(testContext(t)); err != nil {
		t.Fatal(err)
	}
	main.RLock()
	url := main.URL
	main.RUnlock()
	if url != "https://example.com/#anchor" {
		t.Fatalf("url = %q", url)
	}
}

func TestExecutionContextTracking(t *testing.T) {
	p, fb := testPage(t)

	main := p.t.mainFrame()
	fb.Emit("Runtime.executionContextCreated", string(p.SessionID()), map[string]interface{}{
		"context": map[string]interface{}{
			"id":      7,
			"origin":  "https://example.com",
			"name":    "",
			"auxData": map[string]interface{}{"frameId": string(main.ID), "isDefault": true},
		},
	})
	if _, err := p.b.Version(testContext(t)); err != nil {
		t.Fatal(err)
	}
	id, ok := p.t.executionContext(main.ID)
	if !ok || id != 7 {
		t.Fatalf("execution context = %v %v, want 7 true", id, ok)
	}

	fb.Emit("Runtime.executionContextsCleared", string(p.SessionID()), nil)
	if _, err := p.b.Version(testContext(t)); err != nil {
		t.Fatal(err)
	}
	if _, ok := p.t.executionContext(main.ID); ok {
		t.Fatal("execution context survived the clear")
	}
}
