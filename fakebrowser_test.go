package chromiumoxide

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gorilla/websocket"
)

// fakeMsg is the wire shape the fake browser reads and writes.
type fakeMsg struct {
	ID        int64           `json:"id,omitempty"`
	SessionID string          `json:"sessionId,omitempty"`
	Method    string          `json:"method,omitempty"`
	Params    json.RawMessage `json:"params,omitempty"`
	Result    interface{}     `json:"result,omitempty"`
	Error     interface{}     `json:"error,omitempty"`
}

// commandRecord is one command the fake browser received.
type commandRecord struct {
	ID        int64
	SessionID string
	Method    string
	Params    json.RawMessage
}

// fakeBrowser is a scripted devtools endpoint: it implements just enough of
// the protocol to exercise the client against a real websocket.
type fakeBrowser struct {
	t   *testing.T
	srv *httptest.Server

	mu       sync.Mutex
	conn     *websocket.Conn
	connOnce chan struct{}

	nextID   int
	commands []commandRecord

	// stalled methods receive no response.
	stalled map[string]bool

	// errors maps a method to a protocol error {code, message}.
	errors map[string]map[string]interface{}

	// selectors maps known CSS selectors to node ids.
	selectors map[string]int64

	mouseEvents []map[string]interface{}
	keyEvents   []map[string]interface{}
}

func newFakeBrowser(t *testing.T) *fakeBrowser {
	fb := &fakeBrowser{
		t:         t,
		connOnce:  make(chan struct{}),
		stalled:   make(map[string]bool),
		errors:    make(map[string]map[string]interface{}),
		selectors: map[string]int64{"input#q": 42},
	}
	upgrader := websocket.Upgrader{}
	fb.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		fb.mu.Lock()
		fb.conn = conn
		fb.mu.Unlock()
		close(fb.connOnce)
		fb.serve(conn)
	}))
	t.Cleanup(fb.srv.Close)
	return fb
}

// URL returns the websocket url of the fake endpoint.
func (fb *fakeBrowser) URL() string {
	return "ws" + strings.TrimPrefix(fb.srv.URL, "http")
}

// Stall makes the fake swallow commands of the given method.
func (fb *fakeBrowser) Stall(method string) {
	fb.mu.Lock()
	fb.stalled[method] = true
	fb.mu.Unlock()
}

// FailWith makes the fake answer the method with a protocol error.
func (fb *fakeBrowser) FailWith(method string, code int, message string) {
	fb.mu.Lock()
	fb.errors[method] = map[string]interface{}{"code": code, "message": message}
	fb.mu.Unlock()
}

// CloseConn drops the websocket, simulating browser death.
func (fb *fakeBrowser) CloseConn() {
	fb.mu.Lock()
	conn := fb.conn
	fb.mu.Unlock()
	if conn != nil {
		conn.Close()
	}
}

// Commands returns a snapshot of the received commands.
func (fb *fakeBrowser) Commands() []commandRecord {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return append([]commandRecord{}, fb.commands...)
}

// MethodsSeen returns the received method names in order.
func (fb *fakeBrowser) MethodsSeen() []string {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	methods := make([]string, len(fb.commands))
	for i, c := range fb.commands {
		methods[i] = c.Method
	}
	return methods
}

// MouseEvents returns the recorded Input.dispatchMouseEvent params.
func (fb *fakeBrowser) MouseEvents() []map[string]interface{} {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return append([]map[string]interface{}{}, fb.mouseEvents...)
}

// KeyEvents returns the recorded Input.dispatchKeyEvent params.
func (fb *fakeBrowser) KeyEvents() []map[string]interface{} {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return append([]map[string]interface{}{}, fb.keyEvents...)
}

func (fb *fakeBrowser) write(v interface{}) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	if fb.conn == nil {
		return
	}
	fb.conn.WriteJSON(v)
}

// Emit sends a raw event frame.
func (fb *fakeBrowser) Emit(method, sessionID string, params interface{}) {
	msg := map[string]interface{}{"method": method}
	if sessionID != "" {
		msg["sessionId"] = sessionID
	}
	if params != nil {
		msg["params"] = params
	}
	fb.write(msg)
}

// SendRaw sends an arbitrary frame, e.g. a response with an unknown id.
func (fb *fakeBrowser) SendRaw(msg map[string]interface{}) {
	fb.write(msg)
}

func (fb *fakeBrowser) respond(id int64, sessionID string, result interface{}) {
	msg := map[string]interface{}{"id": id}
	if sessionID != "" {
		msg["sessionId"] = sessionID
	}
	if result == nil {
		result = map[string]interface{}{}
	}
	msg["result"] = result
	fb.write(msg)
}

func (fb *fakeBrowser) serve(conn *websocket.Conn) {
	for {
		var msg fakeMsg
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}
		if msg.ID == 0 || msg.Method == "" {
			continue
		}
		fb.mu.Lock()
		fb.commands = append(fb.commands, commandRecord{
			ID:        msg.ID,
			SessionID: msg.SessionID,
			Method:    msg.Method,
			Params:    msg.Params,
		})
		stalled := fb.stalled[msg.Method]
		protoErr := fb.errors[msg.Method]
		fb.mu.Unlock()

		if stalled {
			continue
		}
		if protoErr != nil {
			fb.write(map[string]interface{}{
				"id":    msg.ID,
				"error": protoErr,
			})
			continue
		}
		fb.handle(&msg)
	}
}

// handle answers one command and emits the side-effect events a real browser
// would.
func (fb *fakeBrowser) handle(msg *fakeMsg) {
	switch msg.Method {
	case "Target.createTarget":
		var params struct {
			URL string `json:"url"`
		}
		json.Unmarshal(msg.Params, &params)
		fb.mu.Lock()
		fb.nextID++
		n := fb.nextID
		fb.mu.Unlock()
		targetID := fmt.Sprintf("TARGET-%d", n)
		sessionID := fmt.Sprintf("SESSION-%d", n)
		frameID := fmt.Sprintf("FRAME-%d", n)
		info := map[string]interface{}{
			"targetId": targetID,
			"type":     "page",
			"title":    "",
			"url":      params.URL,
			"attached": false,
		}
		fb.respond(msg.ID, msg.SessionID, map[string]interface{}{"targetId": targetID})
		fb.Emit("Target.targetCreated", "", map[string]interface{}{"targetInfo": info})
		info["attached"] = true
		fb.Emit("Target.attachedToTarget", "", map[string]interface{}{
			"sessionId":          sessionID,
			"targetInfo":         info,
			"waitingForDebugger": false,
		})
		fb.navigated(sessionID, frameID, params.URL, fmt.Sprintf("LOADER-%d-0", n))

	case "Page.navigate":
		var params struct {
			URL string `json:"url"`
		}
		json.Unmarshal(msg.Params, &params)
		fb.mu.Lock()
		fb.nextID++
		n := fb.nextID
		fb.mu.Unlock()
		frameID, loaderID := fb.frameForSession(msg.SessionID), fmt.Sprintf("LOADER-%d", n)
		fb.respond(msg.ID, msg.SessionID, map[string]interface{}{
			"frameId":  frameID,
			"loaderId": loaderID,
		})
		fb.navigated(msg.SessionID, frameID, params.URL, loaderID)

	case "Runtime.evaluate":
		var params struct {
			Expression string `json:"expression"`
		}
		json.Unmarshal(msg.Params, &params)
		result := map[string]interface{}{"type": "undefined"}
		switch params.Expression {
		case "1+1":
			result = map[string]interface{}{"type": "number", "value": 2, "description": "2"}
		case "location.href":
			result = map[string]interface{}{"type": "string", "value": "https://example.com/"}
		case "throw new Error('boom')":
			fb.respond(msg.ID, msg.SessionID, map[string]interface{}{
				"result": map[string]interface{}{"type": "object", "subtype": "error"},
				"exceptionDetails": map[string]interface{}{
					"exceptionId": 1,
					"text":        "Uncaught",
					"lineNumber":  1,
					"exception":   map[string]interface{}{"type": "object", "description": "Error: boom"},
				},
			})
			return
		}
		fb.respond(msg.ID, msg.SessionID, map[string]interface{}{"result": result})

	case "DOM.getDocument":
		fb.respond(msg.ID, msg.SessionID, map[string]interface{}{
			"root": map[string]interface{}{
				"nodeId":        1,
				"backendNodeId": 1,
				"nodeType":      9,
				"nodeName":      "#document",
			},
		})

	case "DOM.querySelector":
		var params struct {
			Selector string `json:"selector"`
		}
		json.Unmarshal(msg.Params, &params)
		fb.mu.Lock()
		nodeID := fb.selectors[params.Selector]
		fb.mu.Unlock()
		fb.respond(msg.ID, msg.SessionID, map[string]interface{}{"nodeId": nodeID})

	case "DOM.describeNode":
		var params struct {
			NodeID int64 `json:"nodeId"`
		}
		json.Unmarshal(msg.Params, &params)
		fb.respond(msg.ID, msg.SessionID, map[string]interface{}{
			"node": map[string]interface{}{
				"nodeId":        params.NodeID,
				"backendNodeId": params.NodeID * 10,
				"nodeType":      1,
				"nodeName":      "INPUT",
			},
		})

	case "DOM.getBoxModel":
		fb.respond(msg.ID, msg.SessionID, map[string]interface{}{
			"model": map[string]interface{}{
				"content": []float64{8, 8, 108, 8, 108, 28, 8, 28},
				"padding": []float64{8, 8, 108, 8, 108, 28, 8, 28},
				"border":  []float64{8, 8, 108, 8, 108, 28, 8, 28},
				"margin":  []float64{8, 8, 108, 8, 108, 28, 8, 28},
				"width":   100,
				"height":  20,
			},
		})

	case "Input.dispatchMouseEvent":
		var params map[string]interface{}
		json.Unmarshal(msg.Params, &params)
		fb.mu.Lock()
		fb.mouseEvents = append(fb.mouseEvents, params)
		fb.mu.Unlock()
		fb.respond(msg.ID, msg.SessionID, nil)

	case "Input.dispatchKeyEvent":
		var params map[string]interface{}
		json.Unmarshal(msg.Params, &params)
		fb.mu.Lock()
		fb.keyEvents = append(fb.keyEvents, params)
		fb.mu.Unlock()
		fb.respond(msg.ID, msg.SessionID, nil)

	case "Target.closeTarget":
		var params struct {
			TargetID string `json:"targetId"`
		}
		json.Unmarshal(msg.Params, &params)
		fb.respond(msg.ID, msg.SessionID, map[string]interface{}{"success": true})
		fb.Emit("Target.targetDestroyed", "", map[string]interface{}{"targetId": params.TargetID})

	case "Browser.getVersion":
		fb.respond(msg.ID, msg.SessionID, map[string]interface{}{
			"protocolVersion": "1.3",
			"product":         "FakeBrowser/1.0",
			"revision":        "deadbeef",
			"userAgent":       "FakeBrowser",
			"jsVersion":       "11.4",
		})

	case "Target.createBrowserContext":
		fb.respond(msg.ID, msg.SessionID, map[string]interface{}{"browserContextId": "CONTEXT-1"})

	case "Network.getCookies":
		fb.respond(msg.ID, msg.SessionID, map[string]interface{}{
			"cookies": []map[string]interface{}{{
				"name": "id", "value": "42", "domain": "example.com",
				"path": "/", "expires": -1, "size": 4,
				"httpOnly": false, "secure": false, "session": true,
			}},
		})

	case "Browser.close":
		fb.respond(msg.ID, msg.SessionID, nil)
		fb.CloseConn()

	default:
		// Enables and other housekeeping succeed with an empty result.
		fb.respond(msg.ID, msg.SessionID, nil)
	}
}

// frameForSession derives the stable frame id the fake uses per session.
func (fb *fakeBrowser) frameForSession(sessionID string) string {
	return strings.Replace(sessionID, "SESSION", "FRAME", 1)
}

// navigated emits the frameNavigated and lifecycle events of a committed
// navigation.
func (fb *fakeBrowser) navigated(sessionID, frameID, url, loaderID string) {
	fb.Emit("Page.frameNavigated", sessionID, map[string]interface{}{
		"frame": map[string]interface{}{
			"id":       frameID,
			"loaderId": loaderID,
			"url":      url,
		},
	})
	for _, name := range []string{"init", "DOMContentLoaded", "load", "networkIdle"} {
		fb.Emit("Page.lifecycleEvent", sessionID, map[string]interface{}{
			"frameId":   frameID,
			"loaderId":  loaderID,
			"name":      name,
			"timestamp": 1000.0,
		})
	}
}
