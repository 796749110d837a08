// internal/extjs/element.go
package extjs

import (
	"context"
	"fmt"
	"strings"

	"github.com/chromedp/chromedp/kb"
)

const (
	scrollIntoViewJS = `function() {
		this.scrollIntoView(true);
		return true;
	}`

	setAttributeJS = `function(name, value) {
		this.setAttribute(name, value);
		return true;
	}`

	// clickAtPointJS clicks whatever element sits at the given viewport
	// coordinates, the same way a user landing on that pixel would.
	clickAtPointJS = `(function(x, y) {
		const el = document.elementFromPoint(x, y);
		if (!el) {
			return false;
		}
		el.click();
		return true;
	})(%v, %v)`
)

// Element is a DOM element of the page under test. The ExtJS helpers are its
// methods.
type Element struct {
	node Node
	page Page
	conv Conventions
}

// NewElement binds n to the page it lives on, using the default conventions.
func NewElement(n Node, p Page) *Element {
	return &Element{node: n, page: p, conv: DefaultConventions()}
}

// WithConventions returns a copy of e that uses c.
func (e *Element) WithConventions(c Conventions) *Element {
	cp := *e
	cp.conv = c
	return &cp
}

func (e *Element) Node() Node               { return e.node }
func (e *Element) Page() Page               { return e.page }
func (e *Element) Conventions() Conventions { return e.conv }
func (e *Element) TagName() string          { return e.node.TagName() }

func (e *Element) wrap(n Node) *Element {
	return &Element{node: n, page: e.page, conv: e.conv}
}

// FindElements returns every match of by below e.
func (e *Element) FindElements(ctx context.Context, by By) ([]*Element, error) {
	nodes, err := e.node.FindAll(ctx, by)
	if err != nil {
		return nil, err
	}
	out := make([]*Element, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, e.wrap(n))
	}
	return out, nil
}

// FindElement returns the first match of by below e, or ErrNoSuchElement.
func (e *Element) FindElement(ctx context.Context, by By) (*Element, error) {
	found, err := e.FindElements(ctx, by)
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoSuchElement, by)
	}
	return found[0], nil
}

// Attribute returns the named attribute, "" when it is absent.
func (e *Element) Attribute(ctx context.Context, name string) (string, error) {
	v, _, err := e.node.Attribute(ctx, name)
	return v, err
}

func (e *Element) hasAttribute(ctx context.Context, name string) (bool, error) {
	_, ok, err := e.node.Attribute(ctx, name)
	return ok, err
}

// Checked reports whether the element carries the ExtJS checked class.
func (e *Element) Checked(ctx context.Context) (bool, error) {
	return e.HasClass(ctx, e.conv.CheckedClass)
}

// HasClass reports whether the class attribute contains className as a substring.
func (e *Element) HasClass(ctx context.Context, className string) (bool, error) {
	class, err := e.Attribute(ctx, "class")
	if err != nil {
		return false, err
	}
	return strings.Contains(class, className), nil
}

// IsEnabled is false when the element carries the ExtJS disabled class or a
// readonly or disabled attribute.
func (e *Element) IsEnabled(ctx context.Context) (bool, error) {
	disabledClass, err := e.HasClass(ctx, e.conv.DisabledClass)
	if err != nil {
		return false, err
	}
	readOnly, err := e.hasAttribute(ctx, "readonly")
	if err != nil {
		return false, err
	}
	disabled, err := e.hasAttribute(ctx, "disabled")
	if err != nil {
		return false, err
	}
	return !disabledClass && !readOnly && !disabled, nil
}

// IsRequired reports whether the element, or the input inside it, has the
// ExtJS required-field class token.
func (e *Element) IsRequired(ctx context.Context) (bool, error) {
	input := e
	if e.TagName() != "input" {
		var err error
		if input, err = e.FindElement(ctx, ByTagName("input")); err != nil {
			return false, err
		}
	}

	required, err := e.hasClassToken(ctx, e.conv.RequiredClass)
	if err != nil || required {
		return required, err
	}
	return input.hasClassToken(ctx, e.conv.RequiredClass)
}

func (e *Element) hasClassToken(ctx context.Context, token string) (bool, error) {
	class, err := e.Attribute(ctx, "class")
	if err != nil {
		return false, err
	}
	return hasToken(class, token), nil
}

// hasToken reports whether the space separated list contains token exactly.
func hasToken(list, token string) bool {
	for _, t := range strings.Split(list, " ") {
		if t == token {
			return true
		}
	}
	return false
}

// Value returns aria-valuenow when present (sliders, progress bars) and the
// value property otherwise.
func (e *Element) Value(ctx context.Context) (string, error) {
	v, ok, err := e.node.Attribute(ctx, "aria-valuenow")
	if err != nil {
		return "", err
	}
	if ok {
		return v, nil
	}
	return e.node.Value(ctx)
}

// HTMLContent returns the element's innerHTML.
func (e *Element) HTMLContent(ctx context.Context) (string, error) {
	return e.node.InnerHTML(ctx)
}

// HasHTMLContent reports whether innerHTML holds anything besides whitespace.
func (e *Element) HasHTMLContent(ctx context.Context) (bool, error) {
	contents, err := e.node.InnerHTML(ctx)
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(contents) != "", nil
}

// IsElementPresent reports whether by matches anything below e. Only a
// missing element maps to false; other failures are returned.
func (e *Element) IsElementPresent(ctx context.Context, by By) (bool, error) {
	_, err := e.FindElement(ctx, by)
	if err == nil {
		return true, nil
	}
	if isNoSuchElement(err) {
		return false, nil
	}
	return false, err
}

// Displayed reports whether the element is visible.
func (e *Element) Displayed(ctx context.Context) (bool, error) {
	return e.node.Displayed(ctx)
}

// Click clicks the element through the driver's native element click.
func (e *Element) Click(ctx context.Context) error {
	return e.node.Click(ctx)
}

// ClickUsingAction moves the pointer onto the element and clicks with
// synthesized input events.
func (e *Element) ClickUsingAction(ctx context.Context) error {
	if err := e.page.MoveTo(ctx, e.node); err != nil {
		return fmt.Errorf("move to element: %w", err)
	}
	return e.page.ClickNode(ctx, e.node, 1)
}

// ClickUsingJavascript clicks, from script, whatever element is rendered at
// e's location.
func (e *Element) ClickUsingJavascript(ctx context.Context) error {
	loc, err := e.node.Location(ctx)
	if err != nil {
		return err
	}
	var clicked bool
	if err := e.page.Evaluate(ctx, fmt.Sprintf(clickAtPointJS, loc.X, loc.Y), &clicked); err != nil {
		return fmt.Errorf("javascript click at (%v, %v): %w", loc.X, loc.Y, err)
	}
	if !clicked {
		return fmt.Errorf("%w: nothing rendered at (%v, %v)", ErrNoSuchElement, loc.X, loc.Y)
	}
	return nil
}

// DoubleClick double clicks the element with synthesized input events.
func (e *Element) DoubleClick(ctx context.Context) error {
	return e.page.ClickNode(ctx, e.node, 2)
}

// MoveTo moves the pointer over the element.
func (e *Element) MoveTo(ctx context.Context) error {
	return e.page.MoveTo(ctx, e.node)
}

func (e *Element) ScrollIntoView(ctx context.Context) error {
	return e.node.Call(ctx, scrollIntoViewJS, nil)
}

// SetAttribute sets an attribute from script.
func (e *Element) SetAttribute(ctx context.Context, name, value string) error {
	return e.node.Call(ctx, setAttributeJS, nil, name, value)
}

// SetFieldValue types text into the descendant field named fieldName.
func (e *Element) SetFieldValue(ctx context.Context, fieldName, text string) error {
	field, err := e.FindElement(ctx, ByName(fieldName))
	if err != nil {
		return err
	}
	return field.Type(ctx, text)
}

// Type clears the element, types text and tabs out so ExtJS runs its
// change and validation listeners.
func (e *Element) Type(ctx context.Context, text string) error {
	if err := e.node.Clear(ctx); err != nil {
		return fmt.Errorf("clear: %w", err)
	}
	if err := e.node.SendKeys(ctx, text); err != nil {
		return fmt.Errorf("send keys: %w", err)
	}
	if err := e.node.SendKeys(ctx, kb.Tab); err != nil {
		return fmt.Errorf("send tab: %w", err)
	}
	return nil
}

// clearAndSend is Type without the trailing Tab.
func (e *Element) clearAndSend(ctx context.Context, text string) error {
	if err := e.node.Clear(ctx); err != nil {
		return fmt.Errorf("clear: %w", err)
	}
	return e.node.SendKeys(ctx, text)
}
