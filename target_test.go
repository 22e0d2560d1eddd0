package chromiumoxide

import (
	"errors"
	"testing"
	"time"

	"github.com/mattsse/chromiumoxide/cdp/target"
)

func stubHandler() *Handler {
	h := newHandler(nil)
	h.logf = func(string, ...interface{}) {}
	h.errf = func(string, ...interface{}) {}
	return h
}

func TestTargetStateMachinePath(t *testing.T) {
	tr := newTarget(&target.Info{TargetID: "T1", Type: "page"}, stubHandler())

	if got := tr.State(); got != TargetDiscovered {
		t.Fatalf("initial state = %v", got)
	}
	tr.transition(TargetAttaching)
	tr.attach("S1")
	if got := tr.State(); got != TargetAttached {
		t.Fatalf("state = %v, want attached", got)
	}
	if got := tr.Session(); got != "S1" {
		t.Fatalf("session = %q", got)
	}
	tr.detach()
	if got := tr.State(); got != TargetDetached {
		t.Fatalf("state = %v, want detached", got)
	}
	if got := tr.Session(); got != "" {
		t.Fatalf("session = %q, want empty", got)
	}
	tr.destroy()
	if got := tr.State(); got != TargetDestroyed {
		t.Fatalf("state = %v, want destroyed", got)
	}

	// Destroyed is terminal.
	tr.transition(TargetAttached)
	if got := tr.State(); got != TargetDestroyed {
		t.Fatalf("state after illegal transition = %v, want destroyed", got)
	}
}

func TestTargetInfoChanged(t *testing.T) {
	p, fb := testPage(t)

	fb.Emit("Target.targetInfoChanged", "", map[string]interface{}{
		"targetInfo": map[string]interface{}{
			"targetId": string(p.TargetID()),
			"type":     "page",
			"title":    "New Title",
			"url":      "https://example.com/changed",
			"attached": true,
		},
	})

	deadline := time.After(5 * time.Second)
	for p.URL() != "https://example.com/changed" {
		select {
		case <-deadline:
			t.Fatalf("url = %q, info change never applied", p.URL())
		case <-time.After(time.Millisecond):
		}
	}
	if got := p.Title(); got != "New Title" {
		t.Fatalf("title = %q", got)
	}
}

func TestDetachFailsPendingWithNotAttached(t *testing.T) {
	p, fb := testPage(t)
	ctx := testContext(t)

	fb.Stall("Runtime.evaluate")
	done := make(chan error, 1)
	go func() {
		var out float64
		done <- p.Evaluate(ctx, "1+1", &out)
	}()

	waitForCommand(t, fb, "Runtime.evaluate")
	fb.Emit("Target.detachedFromTarget", "", map[string]interface{}{
		"sessionId": string(p.SessionID()),
		"targetId":  string(p.TargetID()),
	})

	if err := <-done; !errors.Is(err, ErrNotAttached) {
		t.Fatalf("pending command = %v, want %v", err, ErrNotAttached)
	}

	// New commands on the detached page fail immediately.
	var out float64
	if err := p.Evaluate(ctx, "1+1", &out); !errors.Is(err, ErrNotAttached) {
		t.Fatalf("evaluate = %v, want %v", err, ErrNotAttached)
	}
	if got := p.t.State(); got != TargetDetached {
		t.Fatalf("state = %v, want detached", got)
	}
}

func TestDestroyFailsPendingWithTargetGone(t *testing.T) {
	p, fb := testPage(t)
	ctx := testContext(t)

	fb.Stall("Runtime.evaluate")
	done := make(chan error, 1)
	go func() {
		var out float64
		done <- p.Evaluate(ctx, "1+1", &out)
	}()

	waitForCommand(t, fb, "Runtime.evaluate")
	fb.Emit("Target.targetDestroyed", "", map[string]interface{}{
		"targetId": string(p.TargetID()),
	})

	if err := <-done; !errors.Is(err, ErrTargetGone) {
		t.Fatalf("pending command = %v, want %v", err, ErrTargetGone)
	}
	var out float64
	if err := p.Evaluate(ctx, "1+1", &out); !errors.Is(err, ErrTargetGone) {
		t.Fatalf("evaluate = %v, want %v", err, ErrTargetGone)
	}
}

// waitForCommand spins until the fake has received the method.
func waitForCommand(t *testing.T, fb *fakeBrowser, method string) {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		for _, m := range fb.MethodsSeen() {
			if m == method {
				return
			}
		}
		select {
		case <-deadline:
			t.Fatalf("command %s never arrived", method)
		case <-time.After(time.Millisecond):
		}
	}
}

func TestAutoAttachOnTargetCreated(t *testing.T) {
	b, fb := testBrowser(t)

	// A target announced by the browser triggers an attach request.
	fb.Emit("Target.targetCreated", "", map[string]interface{}{
		"targetInfo": map[string]interface{}{
			"targetId": "EXTERNAL-1",
			"type":     "page",
			"url":      "https://example.com/popup",
			"attached": false,
		},
	})

	waitForCommand(t, fb, "Target.attachToTarget")
	tr := b.h.targetByID("EXTERNAL-1")
	if tr == nil {
		t.Fatal("target not tracked")
	}
	if got := tr.State(); got != TargetAttaching {
		t.Fatalf("state = %v, want attaching", got)
	}

	fb.Emit("Target.attachedToTarget", "", map[string]interface{}{
		"sessionId": "EXTERNAL-SESSION-1",
		"targetInfo": map[string]interface{}{
			"targetId": "EXTERNAL-1",
			"type":     "page",
			"url":      "https://example.com/popup",
			"attached": true,
		},
	})
	deadline := time.After(5 * time.Second)
	for tr.State() != TargetAttached {
		select {
		case <-deadline:
			t.Fatalf("state = %v, never attached", tr.State())
		case <-time.After(time.Millisecond):
		}
	}
	if got := tr.Session(); got != "EXTERNAL-SESSION-1" {
		t.Fatalf("session = %q", got)
	}
}
