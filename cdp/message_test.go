package cdp

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/mailru/easyjson"
)

func TestMessageMarshalRequest(t *testing.T) {
	msg := &Message{
		ID:        7,
		SessionID: "SESSION-1",
		Method:    "Page.navigate",
		Params:    easyjson.RawMessage(`{"url":"https://example.com/"}`),
	}
	buf, err := easyjson.Marshal(msg)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	want := `{"id":7,"sessionId":"SESSION-1","method":"Page.navigate","params":{"url":"https://example.com/"}}`
	if string(buf) != want {
		t.Fatalf("marshal = %s, want %s", buf, want)
	}
}

func TestMessageMarshalOmitsEmpty(t *testing.T) {
	msg := &Message{ID: 1, Method: "Browser.close"}
	buf, err := easyjson.Marshal(msg)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	want := `{"id":1,"method":"Browser.close"}`
	if string(buf) != want {
		t.Fatalf("marshal = %s, want %s", buf, want)
	}
}

func TestMessageUnmarshalResponse(t *testing.T) {
	var msg Message
	err := easyjson.Unmarshal([]byte(`{"id":3,"sessionId":"S","result":{"value":2}}`), &msg)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	want := Message{
		ID:        3,
		SessionID: "S",
		Result:    easyjson.RawMessage(`{"value":2}`),
	}
	if diff := cmp.Diff(want, msg); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestMessageUnmarshalError(t *testing.T) {
	var msg Message
	err := easyjson.Unmarshal([]byte(`{"id":4,"error":{"code":-32601,"message":"method not found","data":"x"}}`), &msg)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if msg.Error == nil {
		t.Fatal("error not decoded")
	}
	if msg.Error.Code != -32601 || msg.Error.Message != "method not found" {
		t.Fatalf("error = %+v", msg.Error)
	}
	if got := msg.Error.Error(); got != "method not found (-32601)" {
		t.Fatalf("Error() = %q", got)
	}
}

func TestMessageUnmarshalEvent(t *testing.T) {
	var msg Message
	err := easyjson.Unmarshal([]byte(`{"method":"Page.loadEventFired","params":{"timestamp":1.5},"sessionId":"S"}`), &msg)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if msg.ID != 0 || msg.Method != "Page.loadEventFired" || msg.SessionID != "S" {
		t.Fatalf("msg = %+v", msg)
	}
	if string(msg.Params) != `{"timestamp":1.5}` {
		t.Fatalf("params = %s", msg.Params)
	}
}

func TestMessageRoundTrip(t *testing.T) {
	in := Message{
		ID:     9,
		Method: "Runtime.evaluate",
		Params: easyjson.RawMessage(`{"expression":"1+1"}`),
		Error:  &Error{Code: 1, Message: "m"},
	}
	buf, err := easyjson.Marshal(in)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var out Message
	if err := easyjson.Unmarshal(buf, &out); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if diff := cmp.Diff(in, out); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestMethodTypeDomain(t *testing.T) {
	if got := MethodType("DOM.getDocument").Domain(); got != "DOM" {
		t.Fatalf("Domain = %q", got)
	}
}

func TestFrameLifecycleOrdering(t *testing.T) {
	order := []FrameLifecycle{
		LifecycleInitial,
		LifecycleStarted,
		LifecycleDOMContentLoaded,
		LifecycleLoad,
		LifecycleNetworkIdle,
	}
	for i := 1; i < len(order); i++ {
		if order[i] <= order[i-1] {
			t.Fatalf("%v not after %v", order[i], order[i-1])
		}
	}
}
