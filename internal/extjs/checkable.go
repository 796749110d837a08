// internal/extjs/checkable.go
package extjs

import "context"

// Checkable is a checkbox or radio whose state lives in ExtJS class names on
// a container element, while clicks must land on an inner part.
type Checkable struct {
	*Element
	clickable func(ctx context.Context) (*Element, error)
}

// NewCheckable treats the element itself as the clickable part.
func NewCheckable(el *Element) *Checkable {
	return &Checkable{
		Element:   el,
		clickable: func(context.Context) (*Element, error) { return el, nil },
	}
}

// NewRadio wraps a radio button.
func NewRadio(el *Element) *Checkable {
	return NewCheckable(el)
}

// NewCheckBox wraps an ExtJS checkbox. el is the layout table around the
// input; the click goes to its .x-form-checkbox descendant.
func NewCheckBox(el *Element) *Checkable {
	return &Checkable{
		Element: el,
		clickable: func(ctx context.Context) (*Element, error) {
			return el.FindElement(ctx, ByCSS(el.conv.CheckboxClickableSelector))
		},
	}
}

// Clickable returns the part of the control that receives clicks.
func (c *Checkable) Clickable(ctx context.Context) (*Element, error) {
	return c.clickable(ctx)
}

// IsChecked reads the checked class from the container.
func (c *Checkable) IsChecked(ctx context.Context) (bool, error) {
	return c.Element.Checked(ctx)
}

// Toggle clicks the clickable part once.
func (c *Checkable) Toggle(ctx context.Context) error {
	target, err := c.clickable(ctx)
	if err != nil {
		return err
	}
	return target.Click(ctx)
}

// Check clicks the control unless it is already checked.
func (c *Checkable) Check(ctx context.Context) error {
	return c.setChecked(ctx, true)
}

// Uncheck clicks the control if it is checked.
func (c *Checkable) Uncheck(ctx context.Context) error {
	return c.setChecked(ctx, false)
}

func (c *Checkable) setChecked(ctx context.Context, want bool) error {
	checked, err := c.IsChecked(ctx)
	if err != nil {
		return err
	}
	if checked == want {
		return nil
	}
	return c.Toggle(ctx)
}
