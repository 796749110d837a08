// internal/browser/element.go
package browser

import (
	"context"
	"fmt"
	"strings"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"

	"github.com/xkilldash9x/extjswd/internal/extjs"
)

// liveJSTemplate wraps a function body so it reports {stale: true} instead
// of running once the element has left the document.
const liveJSTemplate = `function(%[1]s) {
	if (!this.isConnected) {
		return {stale: true};
	}
	return {stale: false, value: (function(%[1]s) {
		%[2]s
	}).apply(this, arguments)};
}`

var (
	attributeJS = liveJS("name", `return {value: this.getAttribute(name) || "", present: this.hasAttribute(name)};`)
	valueJS     = liveJS("", `return this.value == null ? "" : String(this.value);`)
	innerHTMLJS = liveJS("", `return this.innerHTML;`)
	displayedJS = liveJS("", `
		const style = window.getComputedStyle(this);
		if (style.display === "none" || style.visibility === "hidden") {
			return false;
		}
		return this.getClientRects().length > 0;`)
	locationJS = liveJS("", `
		const r = this.getBoundingClientRect();
		return {x: r.left, y: r.top};`)
	clearJS = liveJS("", `
		if ("value" in this) {
			this.value = "";
		} else {
			this.textContent = "";
		}
		this.dispatchEvent(new Event("input", {bubbles: true}));
		this.dispatchEvent(new Event("change", {bubbles: true}));
		return true;`)
)

func liveJS(params, body string) string {
	return fmt.Sprintf(liveJSTemplate, params, body)
}

type liveResult[T any] struct {
	Stale bool `json:"stale"`
	Value T    `json:"value"`
}

type attributeResult struct {
	Value   string `json:"value"`
	Present bool   `json:"present"`
}

type locationResult struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Element is a DOM node of a session's page. Every read goes to the browser.
type Element struct {
	session *Session
	node    *cdp.Node
}

var _ extjs.Node = (*Element)(nil)

// CDPNode returns the underlying chromedp node.
func (e *Element) CDPNode() *cdp.Node { return e.node }

func (e *Element) TagName() string {
	if e.node.LocalName != "" {
		return e.node.LocalName
	}
	return strings.ToLower(e.node.NodeName)
}

func (e *Element) Attribute(ctx context.Context, name string) (string, bool, error) {
	res, err := callLive[attributeResult](ctx, e, attributeJS, name)
	return res.Value, res.Present, err
}

func (e *Element) Value(ctx context.Context) (string, error) {
	return callLive[string](ctx, e, valueJS)
}

func (e *Element) InnerHTML(ctx context.Context) (string, error) {
	return callLive[string](ctx, e, innerHTMLJS)
}

func (e *Element) Displayed(ctx context.Context) (bool, error) {
	return callLive[bool](ctx, e, displayedJS)
}

func (e *Element) Location(ctx context.Context) (extjs.Point, error) {
	loc, err := callLive[locationResult](ctx, e, locationJS)
	return extjs.Point{X: loc.X, Y: loc.Y}, err
}

func (e *Element) FindAll(ctx context.Context, by extjs.By) ([]extjs.Node, error) {
	return e.session.queryAll(ctx, e.node, by)
}

// Click performs a native mouse click on the centre of the element.
func (e *Element) Click(ctx context.Context) error {
	return e.session.RunActions(ctx, chromedp.MouseClickNode(e.node))
}

func (e *Element) Clear(ctx context.Context) error {
	_, err := callLive[bool](ctx, e, clearJS)
	return err
}

// SendKeys focuses the element and types keys as key events.
func (e *Element) SendKeys(ctx context.Context, keys string) error {
	return e.session.RunActions(ctx,
		dom.Focus().WithNodeID(e.node.NodeID),
		chromedp.KeyEvent(keys),
	)
}

// Call runs function with the element as this and decodes the result into res.
func (e *Element) Call(ctx context.Context, function string, res interface{}, args ...interface{}) error {
	return e.session.RunActions(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		return callFunctionOnNode(ctx, e.node, function, res, args...)
	}))
}

// callFunctionOnNode resolves node to a remote object, calls function on it
// and releases the object. ctx must carry a CDP executor.
func callFunctionOnNode(ctx context.Context, node *cdp.Node, function string, res interface{}, args ...interface{}) error {
	obj, err := dom.ResolveNode().WithBackendNodeID(node.BackendNodeID).Do(ctx)
	if err != nil {
		return err
	}
	if obj == nil || obj.ObjectID == "" {
		return fmt.Errorf("%w: node %d could not be resolved", extjs.ErrStaleElement, node.BackendNodeID)
	}
	defer func() {
		// The object dies with its execution context anyway.
		_ = runtime.ReleaseObject(obj.ObjectID).Do(ctx)
	}()

	return chromedp.CallFunctionOn(function, res,
		func(p *runtime.CallFunctionOnParams) *runtime.CallFunctionOnParams {
			return p.WithObjectID(obj.ObjectID)
		},
		args...,
	).Do(ctx)
}

func callLive[T any](ctx context.Context, e *Element, function string, args ...interface{}) (T, error) {
	var res liveResult[T]
	if err := e.Call(ctx, function, &res, args...); err != nil {
		return res.Value, err
	}
	return res.unwrap()
}

func (r liveResult[T]) unwrap() (T, error) {
	if r.Stale {
		return r.Value, extjs.ErrStaleElement
	}
	return r.Value, nil
}
