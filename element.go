package chromiumoxide

import (
	"context"
	"strings"

	"github.com/mattsse/chromiumoxide/cdp"
	"github.com/mattsse/chromiumoxide/cdp/dom"
	"github.com/mattsse/chromiumoxide/cdp/input"
	"github.com/mattsse/chromiumoxide/cdp/page"
	"github.com/mattsse/chromiumoxide/cdp/runtime"
)

// Element is a handle to a DOM node on a page.
type Element struct {
	p *Page

	// NodeID is the front-end node id.
	NodeID cdp.NodeID

	// BackendNodeID is the stable backend node id.
	BackendNodeID cdp.BackendNodeID

	// ObjectID is the remote object reference, resolved lazily.
	ObjectID cdp.RemoteObjectID
}

// ctx attaches the owning page as the executor.
func (e *Element) ctx(ctx context.Context) context.Context {
	return e.p.ctx(ctx)
}

// resolve obtains a remote object reference for the element.
func (e *Element) resolve(ctx context.Context) (cdp.RemoteObjectID, error) {
	if e.ObjectID != "" {
		return e.ObjectID, nil
	}
	obj, err := dom.ResolveNode().WithBackendNodeID(e.BackendNodeID).Do(e.ctx(ctx))
	if err != nil {
		return "", err
	}
	if obj == nil || obj.ObjectID == "" {
		return "", ErrNoSuchElement
	}
	e.ObjectID = obj.ObjectID
	return e.ObjectID, nil
}

// ScrollIntoView scrolls the element into view if needed.
func (e *Element) ScrollIntoView(ctx context.Context) error {
	return dom.ScrollIntoViewIfNeeded().WithBackendNodeID(e.BackendNodeID).Do(e.ctx(ctx))
}

// Focus focuses the element.
func (e *Element) Focus(ctx context.Context) error {
	return dom.Focus().WithBackendNodeID(e.BackendNodeID).Do(e.ctx(ctx))
}

// BoundingBox returns the element's content box.
func (e *Element) BoundingBox(ctx context.Context) (*dom.BoxModel, error) {
	box, err := dom.GetBoxModel().WithBackendNodeID(e.BackendNodeID).Do(e.ctx(ctx))
	if err != nil {
		return nil, err
	}
	if box == nil || len(box.Content) < 2 || len(box.Content)%2 != 0 {
		return nil, ErrInvalidBoxModel
	}
	return box, nil
}

// center returns the centre point of the element's content quad.
func (e *Element) center(ctx context.Context) (x, y float64, _ error) {
	box, err := e.BoundingBox(ctx)
	if err != nil {
		return 0, 0, err
	}
	c := len(box.Content)
	for i := 0; i < c; i += 2 {
		x += box.Content[i]
		y += box.Content[i+1]
	}
	n := float64(c / 2)
	return x / n, y / n, nil
}

// Click scrolls the element into view and dispatches a left mouse click at
// the centre of its content box.
func (e *Element) Click(ctx context.Context) error {
	if err := e.ScrollIntoView(ctx); err != nil {
		return err
	}
	x, y, err := e.center(ctx)
	if err != nil {
		return err
	}
	return e.p.ClickXY(ctx, x, y)
}

// Hover moves the mouse over the centre of the element.
func (e *Element) Hover(ctx context.Context) error {
	if err := e.ScrollIntoView(ctx); err != nil {
		return err
	}
	x, y, err := e.center(ctx)
	if err != nil {
		return err
	}
	return input.DispatchMouseEvent(input.MouseMoved, x, y).Do(e.ctx(ctx))
}

// TypeStr focuses the element and synthesises the key events for each rune
// of the given strings, in order.
func (e *Element) TypeStr(ctx context.Context, strs ...string) error {
	if err := e.Focus(ctx); err != nil {
		return err
	}
	return e.p.TypeStr(ctx, strs...)
}

// PressKey focuses the element and presses a named key like "Enter" or
// "ArrowDown".
func (e *Element) PressKey(ctx context.Context, name string) error {
	if err := e.Focus(ctx); err != nil {
		return err
	}
	return e.p.PressKey(ctx, name)
}

// Text returns the element's innerText.
func (e *Element) Text(ctx context.Context) (string, error) {
	objID, err := e.resolve(ctx)
	if err != nil {
		return "", err
	}
	v, exp, err := runtime.CallFunctionOn(`function() { return this.innerText }`).
		WithObjectID(objID).
		WithReturnByValue(true).
		Do(e.ctx(ctx))
	if err != nil {
		return "", err
	}
	if exp != nil {
		return "", exp
	}
	var text string
	if err := unwrapRemoteObject(v, &text); err != nil {
		return "", err
	}
	return text, nil
}

// OuterHTML returns the element's outer HTML markup.
func (e *Element) OuterHTML(ctx context.Context) (string, error) {
	return dom.GetOuterHTML().WithBackendNodeID(e.BackendNodeID).Do(e.ctx(ctx))
}

// Attribute returns the value of the named attribute, if present.
func (e *Element) Attribute(ctx context.Context, name string) (string, bool, error) {
	attrs, err := dom.GetAttributes(e.NodeID).Do(e.ctx(ctx))
	if err != nil {
		return "", false, err
	}
	for i := 0; i+1 < len(attrs); i += 2 {
		if strings.EqualFold(attrs[i], name) {
			return attrs[i+1], true, nil
		}
	}
	return "", false, nil
}

// SetAttribute sets the named attribute on the element.
func (e *Element) SetAttribute(ctx context.Context, name, value string) error {
	return dom.SetAttributeValue(e.NodeID, name, value).Do(e.ctx(ctx))
}

// Screenshot captures a screenshot of the element clipped to its content
// box.
func (e *Element) Screenshot(ctx context.Context) ([]byte, error) {
	if err := e.ScrollIntoView(ctx); err != nil {
		return nil, err
	}
	box, err := e.BoundingBox(ctx)
	if err != nil {
		return nil, err
	}
	x, y := box.Content[0], box.Content[1]
	return page.CaptureScreenshot().
		WithFormat("png").
		WithClip(&page.Viewport{
			X:      x,
			Y:      y,
			Width:  float64(box.Width),
			Height: float64(box.Height),
			Scale:  1,
		}).
		Do(e.ctx(ctx))
}
