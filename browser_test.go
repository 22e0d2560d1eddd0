package chromiumoxide

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/mattsse/chromiumoxide/cdp"
)

func testContext(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func testBrowser(t *testing.T, opts ...BrowserOption) (*Browser, *fakeBrowser) {
	t.Helper()
	fb := newFakeBrowser(t)
	b, err := Connect(testContext(t), fb.URL(), opts...)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		b.Close(ctx)
	})
	return b, fb
}

func TestConnectHandshake(t *testing.T) {
	b, fb := testBrowser(t)

	if got := b.State(); got != BrowserReady {
		t.Fatalf("state = %v, want %v", got, BrowserReady)
	}
	methods := fb.MethodsSeen()
	if len(methods) < 2 {
		t.Fatalf("methods = %v, want discovery handshake", methods)
	}
	if methods[0] != "Target.setDiscoverTargets" || methods[1] != "Target.setAutoAttach" {
		t.Errorf("handshake methods = %v", methods[:2])
	}
	cmds := fb.Commands()
	if cmds[0].ID != 1 {
		t.Errorf("first command id = %d, want 1", cmds[0].ID)
	}
}

func TestNewPageAndNavigate(t *testing.T) {
	b, fb := testBrowser(t)
	ctx := testContext(t)

	p, err := b.NewPage(ctx, "https://example.com/")
	if err != nil {
		t.Fatalf("NewPage: %v", err)
	}
	if p.SessionID() == "" {
		t.Fatal("page has no session")
	}
	if p.TargetID() == "" {
		t.Fatal("page has no target id")
	}

	// The initial navigation already fired load; the wait resolves on the
	// loader observed since page creation.
	if err := p.WaitForNavigation(ctx); err != nil {
		t.Fatalf("WaitForNavigation: %v", err)
	}

	// A second wait must not resolve against the same loader.
	short, cancel := context.WithTimeout(ctx, 100*time.Millisecond)
	defer cancel()
	if err := p.WaitForNavigation(short); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("stale wait = %v, want deadline exceeded", err)
	}

	// A fresh navigation mints a new loader and resolves the wait.
	if err := p.NavigateAndWait(ctx, "https://example.com/two"); err != nil {
		t.Fatalf("NavigateAndWait: %v", err)
	}

	var seen bool
	for _, c := range fb.Commands() {
		if c.Method == "Page.navigate" && c.SessionID == string(p.SessionID()) {
			seen = true
		}
	}
	if !seen {
		t.Error("Page.navigate never reached the browser on the page session")
	}
}

func TestConcurrentCommands(t *testing.T) {
	b, fb := testBrowser(t)
	ctx := testContext(t)

	p, err := b.NewPage(ctx, "https://example.com/")
	if err != nil {
		t.Fatalf("NewPage: %v", err)
	}

	const n = 100
	var wg sync.WaitGroup
	results := make([]float64, n)
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = p.Evaluate(ctx, "1+1", &results[i])
		}(i)
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		if errs[i] != nil {
			t.Fatalf("evaluate %d: %v", i, errs[i])
		}
		if results[i] != 2 {
			t.Fatalf("evaluate %d = %v, want 2", i, results[i])
		}
	}

	ids := make(map[int64]bool)
	for _, c := range fb.Commands() {
		if ids[c.ID] {
			t.Fatalf("duplicate command id %d", c.ID)
		}
		ids[c.ID] = true
	}
}

func TestTransportDeathMidFlight(t *testing.T) {
	b, fb := testBrowser(t)
	ctx := testContext(t)

	p, err := b.NewPage(ctx, "https://example.com/")
	if err != nil {
		t.Fatalf("NewPage: %v", err)
	}

	fb.Stall("Runtime.evaluate")

	const n = 10
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			var out float64
			errs[i] = p.Evaluate(ctx, "1+1", &out)
		}(i)
	}

	// Give the submissions time to reach the fake, then kill the socket.
	deadline := time.Now().Add(5 * time.Second)
	for {
		stalled := 0
		for _, c := range fb.Commands() {
			if c.Method == "Runtime.evaluate" {
				stalled++
			}
		}
		if stalled == n {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("only %d of %d commands arrived", stalled, n)
		}
		time.Sleep(5 * time.Millisecond)
	}
	fb.CloseConn()
	wg.Wait()

	for i, err := range errs {
		if !errors.Is(err, ErrTransportClosed) {
			t.Fatalf("command %d = %v, want %v", i, err, ErrTransportClosed)
		}
	}

	<-b.LostConnection
	if got := b.State(); got != BrowserClosed {
		t.Fatalf("state = %v, want %v", got, BrowserClosed)
	}
	var out float64
	if err := p.Evaluate(ctx, "1+1", &out); !errors.Is(err, ErrTransportClosed) {
		t.Fatalf("post-close evaluate = %v, want %v", err, ErrTransportClosed)
	}
}

func TestCommandTimeout(t *testing.T) {
	b, fb := testBrowser(t, WithRequestTimeout(150*time.Millisecond))
	ctx := testContext(t)

	p, err := b.NewPage(ctx, "https://example.com/")
	if err != nil {
		t.Fatalf("NewPage: %v", err)
	}

	fb.Stall("Runtime.evaluate")
	var out float64
	if err := p.Evaluate(ctx, "1+1", &out); !errors.Is(err, ErrTimeout) {
		t.Fatalf("evaluate = %v, want %v", err, ErrTimeout)
	}

	// Only the stalled command fails; the loop keeps serving others.
	if _, err := b.Version(ctx); err != nil {
		t.Fatalf("version after timeout: %v", err)
	}
}

func TestCommandCancellation(t *testing.T) {
	b, fb := testBrowser(t)
	ctx := testContext(t)

	p, err := b.NewPage(ctx, "https://example.com/")
	if err != nil {
		t.Fatalf("NewPage: %v", err)
	}

	fb.Stall("Runtime.evaluate")
	cctx, cancel := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() {
		var out float64
		done <- p.Evaluate(cctx, "1+1", &out)
	}()
	time.Sleep(20 * time.Millisecond)
	cancel()
	if err := <-done; !errors.Is(err, ErrCancelled) {
		t.Fatalf("cancelled evaluate = %v, want %v", err, ErrCancelled)
	}

	// The dropped command resolves nothing else and the loop stays
	// healthy.
	if _, err := b.Version(ctx); err != nil {
		t.Fatalf("version after cancel: %v", err)
	}
}

func TestUnknownResponseIDDiscarded(t *testing.T) {
	b, fb := testBrowser(t)
	ctx := testContext(t)

	fb.SendRaw(map[string]interface{}{"id": 99999, "result": map[string]interface{}{}})

	if _, err := b.Version(ctx); err != nil {
		t.Fatalf("version after stray response: %v", err)
	}
}

func TestProtocolErrorSurfacedVerbatim(t *testing.T) {
	b, fb := testBrowser(t)
	ctx := testContext(t)

	p, err := b.NewPage(ctx, "https://example.com/")
	if err != nil {
		t.Fatalf("NewPage: %v", err)
	}

	fb.FailWith("Runtime.evaluate", -32000, "Execution context was destroyed.")
	var out float64
	err = p.Evaluate(ctx, "1+1", &out)
	var perr *cdp.Error
	if !errors.As(err, &perr) {
		t.Fatalf("evaluate = %v, want *cdp.Error", err)
	}
	if perr.Code != -32000 || perr.Message != "Execution context was destroyed." {
		t.Fatalf("protocol error = %+v", perr)
	}
}

func TestBrowserVersion(t *testing.T) {
	b, _ := testBrowser(t)

	v, err := b.Version(testContext(t))
	if err != nil {
		t.Fatalf("Version: %v", err)
	}
	if v.Product != "FakeBrowser/1.0" {
		t.Errorf("product = %q", v.Product)
	}
}

func TestIncognitoContext(t *testing.T) {
	b, fb := testBrowser(t)
	ctx := testContext(t)

	id, err := b.NewIncognitoContext(ctx)
	if err != nil {
		t.Fatalf("NewIncognitoContext: %v", err)
	}
	if id != "CONTEXT-1" {
		t.Fatalf("context id = %q", id)
	}
	p, err := b.NewPageInContext(ctx, "https://example.com/", id)
	if err != nil {
		t.Fatalf("NewPageInContext: %v", err)
	}
	if p.SessionID() == "" {
		t.Fatal("page has no session")
	}
	var seen bool
	for _, c := range fb.Commands() {
		if c.Method == "Target.createTarget" {
			var params struct {
				BrowserContextID string `json:"browserContextId"`
			}
			if err := json.Unmarshal(c.Params, &params); err == nil && params.BrowserContextID == "CONTEXT-1" {
				seen = true
			}
		}
	}
	if !seen {
		t.Error("createTarget without browser context id")
	}
}

func TestBrowserCloseGraceful(t *testing.T) {
	fb := newFakeBrowser(t)
	b, err := Connect(testContext(t), fb.URL())
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}

	if err := b.Close(testContext(t)); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if got := b.State(); got != BrowserClosed {
		t.Fatalf("state = %v, want %v", got, BrowserClosed)
	}
	var seen bool
	for _, m := range fb.MethodsSeen() {
		if m == "Browser.close" {
			seen = true
		}
	}
	if !seen {
		t.Error("Browser.close never sent")
	}

	// Closing again is a no-op.
	if err := b.Close(testContext(t)); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}
