// Package input provides the typed commands of the Input domain: synthesised
// mouse and keyboard events.
package input

import (
	"context"

	"github.com/mattsse/chromiumoxide/cdp"
)

// Input domain command methods.
const (
	CommandDispatchMouseEvent = "Input.dispatchMouseEvent"
	CommandDispatchKeyEvent   = "Input.dispatchKeyEvent"
)

// MouseType is the type of a dispatched mouse event.
type MouseType string

// Mouse event types.
const (
	MousePressed  MouseType = "mousePressed"
	MouseReleased MouseType = "mouseReleased"
	MouseMoved    MouseType = "mouseMoved"
	MouseWheel    MouseType = "mouseWheel"
)

// ButtonType is a mouse button.
type ButtonType string

// Mouse buttons.
const (
	ButtonNone    ButtonType = "none"
	ButtonLeft    ButtonType = "left"
	ButtonMiddle  ButtonType = "middle"
	ButtonRight   ButtonType = "right"
	ButtonBack    ButtonType = "back"
	ButtonForward ButtonType = "forward"
)

// KeyType is the type of a dispatched key event.
type KeyType string

// Key event types.
const (
	KeyDown    KeyType = "keyDown"
	KeyUp      KeyType = "keyUp"
	KeyRawDown KeyType = "rawKeyDown"
	KeyChar    KeyType = "char"
)

// Modifier is a bit mask of active modifier keys.
type Modifier int64

// Input event modifiers.
const (
	ModifierNone  Modifier = 0
	ModifierAlt   Modifier = 1
	ModifierCtrl  Modifier = 2
	ModifierMeta  Modifier = 4
	ModifierShift Modifier = 8
)

// DispatchMouseEventParams dispatches a synthesised mouse event to the page.
type DispatchMouseEventParams struct {
	Type       MouseType  `json:"type"`
	X          float64    `json:"x"`
	Y          float64    `json:"y"`
	Modifiers  Modifier   `json:"modifiers,omitempty"`
	Button     ButtonType `json:"button,omitempty"`
	Buttons    int64      `json:"buttons,omitempty"`
	ClickCount int64      `json:"clickCount,omitempty"`
	DeltaX     float64    `json:"deltaX,omitempty"`
	DeltaY     float64    `json:"deltaY,omitempty"`
}

// DispatchMouseEvent dispatches a mouse event of the given type at x, y.
func DispatchMouseEvent(typ MouseType, x, y float64) *DispatchMouseEventParams {
	return &DispatchMouseEventParams{Type: typ, X: x, Y: y}
}

// WithButton sets the active mouse button.
func (p *DispatchMouseEventParams) WithButton(button ButtonType) *DispatchMouseEventParams {
	p.Button = button
	return p
}

// WithClickCount sets the click count of the event.
func (p *DispatchMouseEventParams) WithClickCount(n int64) *DispatchMouseEventParams {
	p.ClickCount = n
	return p
}

// WithModifiers ors the given modifiers into the event.
func (p *DispatchMouseEventParams) WithModifiers(mods ...Modifier) *DispatchMouseEventParams {
	for _, m := range mods {
		p.Modifiers |= m
	}
	return p
}

// WithDelta sets the wheel deltas.
func (p *DispatchMouseEventParams) WithDelta(dx, dy float64) *DispatchMouseEventParams {
	p.DeltaX, p.DeltaY = dx, dy
	return p
}

// Do executes Input.dispatchMouseEvent.
func (p *DispatchMouseEventParams) Do(ctx context.Context) error {
	return cdp.Execute(ctx, CommandDispatchMouseEvent, p, nil)
}

// DispatchKeyEventParams dispatches a synthesised key event to the page.
type DispatchKeyEventParams struct {
	Type                  KeyType  `json:"type"`
	Modifiers             Modifier `json:"modifiers,omitempty"`
	Text                  string   `json:"text,omitempty"`
	UnmodifiedText        string   `json:"unmodifiedText,omitempty"`
	Key                   string   `json:"key,omitempty"`
	Code                  string   `json:"code,omitempty"`
	WindowsVirtualKeyCode int64    `json:"windowsVirtualKeyCode,omitempty"`
	NativeVirtualKeyCode  int64    `json:"nativeVirtualKeyCode,omitempty"`
	AutoRepeat            bool     `json:"autoRepeat,omitempty"`
	IsKeypad              bool     `json:"isKeypad,omitempty"`
	Location              int64    `json:"location,omitempty"`
}

// DispatchKeyEvent dispatches a key event of the given type.
func DispatchKeyEvent(typ KeyType) *DispatchKeyEventParams {
	return &DispatchKeyEventParams{Type: typ}
}

// WithModifiers ors the given modifiers into the event.
func (p *DispatchKeyEventParams) WithModifiers(mods ...Modifier) *DispatchKeyEventParams {
	for _, m := range mods {
		p.Modifiers |= m
	}
	return p
}

// Do executes Input.dispatchKeyEvent.
func (p *DispatchKeyEventParams) Do(ctx context.Context) error {
	return cdp.Execute(ctx, CommandDispatchKeyEvent, p, nil)
}
