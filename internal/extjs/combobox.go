// internal/extjs/combobox.go
package extjs

import (
	"context"
	"fmt"
	"strings"
)

// triggerFromFieldXPath finds the trigger button rendered next to a combo's
// input, inside the shared trigger wrap.
const triggerFromFieldXPath = `ancestor::*[contains(concat(' ', normalize-space(@class), ' '), ' x-form-trigger-wrap ')][1]` +
	`//*[contains(concat(' ', normalize-space(@class), ' '), ' x-form-trigger ')]`

// ComboBox drives an ExtJS combo box and its drop-down list.
type ComboBox struct {
	*Element
}

func NewComboBox(el *Element) *ComboBox {
	return &ComboBox{Element: el}
}

// Trigger returns the button that expands the list: a trigger inside the
// element, then one beside its input, then the element itself.
func (c *ComboBox) Trigger(ctx context.Context) (*Element, error) {
	for _, by := range []By{ByCSS(c.conv.ComboTriggerSelector), ByXPath(triggerFromFieldXPath)} {
		found, err := c.FindElements(ctx, by)
		if err != nil {
			return nil, err
		}
		if len(found) > 0 {
			return found[0], nil
		}
	}
	return c.Element, nil
}

// Expand clicks the trigger.
func (c *ComboBox) Expand(ctx context.Context) error {
	trigger, err := c.Trigger(ctx)
	if err != nil {
		return err
	}
	return trigger.Click(ctx)
}

// VisibleItems returns the list items currently displayed on the page.
func (c *ComboBox) VisibleItems(ctx context.Context) ([]*Element, error) {
	nodes, err := c.page.FindAll(ctx, ByCSS(c.conv.ComboItemSelector))
	if err != nil {
		return nil, err
	}
	var visible []*Element
	for _, n := range nodes {
		item := c.wrap(n)
		shown, err := NotDisplayedOrGone(ctx, item)
		if err != nil {
			return nil, err
		}
		if !shown {
			visible = append(visible, item)
		}
	}
	return visible, nil
}

// waitForItems expands the list and waits for it to render.
func (c *ComboBox) waitForItems(ctx context.Context) ([]*Element, error) {
	if err := c.Expand(ctx); err != nil {
		return nil, fmt.Errorf("expand combo: %w", err)
	}
	var items []*Element
	w := &Wait{Timeout: c.conv.ComboTimeout, Interval: c.conv.PollInterval}
	err := w.Until(ctx, func(ctx context.Context) (bool, error) {
		var err error
		items, err = c.VisibleItems(ctx)
		return len(items) > 0, err
	})
	if err != nil {
		return nil, fmt.Errorf("waiting for combo list: %w", err)
	}
	return items, nil
}

// SelectFirstItem opens the list and picks its first entry.
func (c *ComboBox) SelectFirstItem(ctx context.Context) error {
	items, err := c.waitForItems(ctx)
	if err != nil {
		return err
	}
	return items[0].Click(ctx)
}

// SelectItem opens the list and picks the entry whose text is text.
func (c *ComboBox) SelectItem(ctx context.Context, text string) error {
	items, err := c.waitForItems(ctx)
	if err != nil {
		return err
	}
	for _, item := range items {
		html, err := item.HTMLContent(ctx)
		if err != nil {
			return err
		}
		if strings.TrimSpace(html) == text {
			return item.Click(ctx)
		}
	}
	return fmt.Errorf("%w: combo item %q", ErrNoSuchElement, text)
}
