package chromiumoxide

import (
	"testing"

	"github.com/mattsse/chromiumoxide/cdp"
)

func TestForceIP(t *testing.T) {
	for _, tt := range []struct {
		in, want string
	}{
		{
			"ws://localhost:9222/devtools/browser/xyz",
			"ws://127.0.0.1:9222/devtools/browser/xyz",
		},
		{
			"ws://127.0.0.1:9222/devtools/browser/xyz",
			"ws://127.0.0.1:9222/devtools/browser/xyz",
		},
		{
			"no-scheme-at-all",
			"no-scheme-at-all",
		},
	} {
		if got := ForceIP(tt.in); got != tt.want {
			t.Errorf("ForceIP(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestConnRoundTrip(t *testing.T) {
	fb := newFakeBrowser(t)
	ctx := testContext(t)

	conn, err := DialContext(ctx, fb.URL())
	if err != nil {
		t.Fatalf("DialContext: %v", err)
	}
	defer conn.Close()

	if err := conn.Write(&cdp.Message{
		ID:     5,
		Method: "Foo.bar",
		Params: []byte(`{"x":1}`),
	}); err != nil {
		t.Fatalf("Write: %v", err)
	}

	var res cdp.Message
	if err := conn.Read(&res); err != nil {
		t.Fatalf("Read: %v", err)
	}
	if res.ID != 5 {
		t.Fatalf("response id = %d, want 5", res.ID)
	}
	if res.Error != nil {
		t.Fatalf("unexpected error: %v", res.Error)
	}
}

func TestConnReadAfterClose(t *testing.T) {
	fb := newFakeBrowser(t)
	ctx := testContext(t)

	conn, err := DialContext(ctx, fb.URL())
	if err != nil {
		t.Fatalf("DialContext: %v", err)
	}
	fb.CloseConn()

	var res cdp.Message
	if err := conn.Read(&res); err == nil {
		t.Fatal("Read succeeded on closed transport")
	}
}
