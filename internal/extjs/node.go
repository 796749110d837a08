// internal/extjs/node.go
// Package extjs maps the DOM conventions of the ExtJS toolkit (CSS class
// names, table based checkboxes, bound lists, AJAX activity) onto small
// accessors and actions for browser driven test scripts.
//
// The package never talks to a browser directly. It is written against the
// Node and Page interfaces, which the browser package implements on top of
// chromedp.
package extjs

import (
	"context"
	"errors"
)

var (
	// ErrNoSuchElement is returned when a lookup matches nothing.
	ErrNoSuchElement = errors.New("no such element")
	// ErrStaleElement is returned when an element is no longer attached to the document.
	ErrStaleElement = errors.New("stale element reference")
	// ErrWaitTimeout is returned when a Wait condition is not met in time.
	ErrWaitTimeout = errors.New("wait timed out")
	// ErrUnsupportedFieldType is returned when filling a field that cannot be classified.
	ErrUnsupportedFieldType = errors.New("unsupported form field type")
	// ErrInvalidDate is returned when a date cannot be read from a field.
	ErrInvalidDate = errors.New("invalid date value")
)

// Point is a position in CSS pixels relative to the viewport.
type Point struct {
	X float64
	Y float64
}

// Node is a live DOM element as exposed by the browser driver. Implementations
// must read the document on every call; nothing may be cached.
type Node interface {
	// TagName returns the lower-case tag name.
	TagName() string
	// Attribute returns the named attribute and whether it is present.
	Attribute(ctx context.Context, name string) (string, bool, error)
	// Value returns the element's current value property.
	Value(ctx context.Context) (string, error)
	InnerHTML(ctx context.Context) (string, error)
	// Displayed reports visibility. ErrStaleElement when the node left the document.
	Displayed(ctx context.Context) (bool, error)
	// Location returns the top-left corner of the element's bounding box.
	Location(ctx context.Context) (Point, error)
	// FindAll returns the matches of by relative to this element; empty, not an error, when nothing matches.
	FindAll(ctx context.Context, by By) ([]Node, error)
	Click(ctx context.Context) error
	Clear(ctx context.Context) error
	SendKeys(ctx context.Context, keys string) error
	// Call runs a JavaScript function with this element bound to `this`.
	Call(ctx context.Context, function string, res interface{}, args ...interface{}) error
}

// Page is the driver level surface: document queries, synthesized pointer
// input and script evaluation.
type Page interface {
	FindAll(ctx context.Context, by By) ([]Node, error)
	// MoveTo moves the pointer over the centre of n.
	MoveTo(ctx context.Context, n Node) error
	// ClickNode moves to n and presses the left button count times.
	ClickNode(ctx context.Context, n Node, count int) error
	Evaluate(ctx context.Context, script string, res interface{}) error
}

// RequestCounter exposes the number of in-flight background requests.
// The helpers only ever read it.
type RequestCounter interface {
	Pending() int64
}

// Finder is anything that can search for elements: a Page or an Element.
type Finder interface {
	FindElements(ctx context.Context, by By) ([]*Element, error)
}
