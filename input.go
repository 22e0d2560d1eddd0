package chromiumoxide

import (
	"context"

	"github.com/mattsse/chromiumoxide/cdp/input"
	"github.com/mattsse/chromiumoxide/kb"
)

// MouseOption mutates a dispatched mouse event.
type MouseOption func(*input.DispatchMouseEventParams) *input.DispatchMouseEventParams

// Button sets the mouse button of the event.
func Button(b input.ButtonType) MouseOption {
	return func(p *input.DispatchMouseEventParams) *input.DispatchMouseEventParams {
		return p.WithButton(b)
	}
}

// ClickCount sets the click count of the event.
func ClickCount(n int) MouseOption {
	return func(p *input.DispatchMouseEventParams) *input.DispatchMouseEventParams {
		return p.WithClickCount(int64(n))
	}
}

// ButtonModifiers adds modifiers to the event.
func ButtonModifiers(mods ...input.Modifier) MouseOption {
	return func(p *input.DispatchMouseEventParams) *input.DispatchMouseEventParams {
		return p.WithModifiers(mods...)
	}
}

// ClickXY dispatches a left mouse button click (press then release) at the
// given viewport coordinates.
func (p *Page) ClickXY(ctx context.Context, x, y float64, opts ...MouseOption) error {
	for _, typ := range []input.MouseType{input.MousePressed, input.MouseReleased} {
		ev := input.DispatchMouseEvent(typ, x, y).
			WithButton(input.ButtonLeft).
			WithClickCount(1)
		for _, o := range opts {
			ev = o(ev)
		}
		if err := ev.Do(p.ctx(ctx)); err != nil {
			return err
		}
	}
	return nil
}

// MoveMouse dispatches a mouse move to the given viewport coordinates.
func (p *Page) MoveMouse(ctx context.Context, x, y float64) error {
	return input.DispatchMouseEvent(input.MouseMoved, x, y).Do(p.ctx(ctx))
}

// Scroll dispatches a mouse wheel event at the given coordinates.
func (p *Page) Scroll(ctx context.Context, x, y, deltaX, deltaY float64) error {
	return input.DispatchMouseEvent(input.MouseWheel, x, y).
		WithDelta(deltaX, deltaY).
		Do(p.ctx(ctx))
}

// TypeStr synthesises keyboard events for every rune of the given strings:
// keyDown, char and keyUp per printable rune, drawn from the key definition
// table.
func (p *Page) TypeStr(ctx context.Context, strs ...string) error {
	for _, s := range strs {
		for _, group := range kb.EncodeString(s) {
			for _, ev := range group {
				if err := ev.Do(p.ctx(ctx)); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// PressKey synthesises the events of a named key press like "Enter",
// "Escape" or "ArrowDown". Single-rune names press that character.
func (p *Page) PressKey(ctx context.Context, name string) error {
	events := kb.EncodeNamed(name)
	if events == nil {
		return Error("unknown key " + name)
	}
	for _, ev := range events {
		if err := ev.Do(p.ctx(ctx)); err != nil {
			return err
		}
	}
	return nil
}
