// internal/extjs/fieldtype.go
package extjs

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// FormFieldType is the kind of ExtJS form field an element renders.
type FormFieldType int

const (
	FieldUnknown FormFieldType = iota
	FieldCheckBox
	FieldTextArea
	FieldCodeCombobox
	FieldRadioButton
	FieldDateField
	FieldTimeField
)

func (t FormFieldType) String() string {
	switch t {
	case FieldCheckBox:
		return "checkbox"
	case FieldTextArea:
		return "textarea"
	case FieldCodeCombobox:
		return "combobox"
	case FieldRadioButton:
		return "radio"
	case FieldDateField:
		return "datefield"
	case FieldTimeField:
		return "timefield"
	default:
		return "unknown"
	}
}

// MarshalText lets reports carry the readable name.
func (t FormFieldType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// fieldClassRules is checked in order. Radios carry x-form-cb too, so they
// come before checkboxes; time fields extend the combo box, so they come
// before combos.
var fieldClassRules = []struct {
	kind   FormFieldType
	tokens []string
}{
	{FieldTextArea, []string{"x-form-textarea"}},
	{FieldRadioButton, []string{"x-form-radio", "x-form-type-radio"}},
	{FieldCheckBox, []string{"x-form-checkbox", "x-form-type-checkbox", "x-form-cb"}},
	{FieldDateField, []string{"x-form-date", "x-form-datefield", "x-datefield"}},
	{FieldTimeField, []string{"x-form-time", "x-form-timefield", "x-timefield"}},
	{FieldCodeCombobox, []string{"x-form-combo", "x-form-type-combo", "x-combo", "x-form-code-combo"}},
}

// ClassifyFieldType derives the field type from the tag name, the class
// attribute and, for inputs, the type attribute.
func ClassifyFieldType(tagName, class, inputType string) FormFieldType {
	tag := strings.ToLower(tagName)
	if tag == "textarea" {
		return FieldTextArea
	}
	if tag == "input" {
		switch strings.ToLower(inputType) {
		case "radio":
			return FieldRadioButton
		case "checkbox":
			return FieldCheckBox
		}
	}

	tokens := strings.Fields(class)
	for _, rule := range fieldClassRules {
		for _, want := range rule.tokens {
			for _, have := range tokens {
				if have == want {
					return rule.kind
				}
			}
		}
	}
	return FieldUnknown
}

// FormFieldType classifies the element.
func (e *Element) FormFieldType(ctx context.Context) (FormFieldType, error) {
	class, err := e.Attribute(ctx, "class")
	if err != nil {
		return FieldUnknown, err
	}
	inputType, err := e.Attribute(ctx, "type")
	if err != nil {
		return FieldUnknown, err
	}
	return ClassifyFieldType(e.TagName(), class, inputType), nil
}

// FillInRandomValue puts a plausible value into the field according to its type.
func (e *Element) FillInRandomValue(ctx context.Context) error {
	kind, err := e.FormFieldType(ctx)
	if err != nil {
		return err
	}
	return e.fillAs(ctx, kind)
}

func (e *Element) fillAs(ctx context.Context, kind FormFieldType) error {
	switch kind {
	case FieldCheckBox, FieldRadioButton:
		return e.Click(ctx)
	case FieldTextArea:
		return e.clearAndSend(ctx, e.conv.TextAreaValue)
	case FieldCodeCombobox:
		return NewComboBox(e).SelectFirstItem(ctx)
	case FieldDateField:
		return e.clearAndSend(ctx, e.conv.DateValue)
	case FieldTimeField:
		return e.clearAndSend(ctx, e.conv.TimeValue)
	default:
		return fmt.Errorf("%w: <%s>", ErrUnsupportedFieldType, e.TagName())
	}
}

// maxWrapperDepth bounds the walk from a field's input up to its form item.
const maxWrapperDepth = 8

// FieldWrappers returns e followed by its ancestors up to and including the
// nearest form item, nearest first. ExtJS keeps the type and checked classes
// of a field on these wrappers rather than on the input. Without a form item
// the walk stops below the form or body.
func (e *Element) FieldWrappers(ctx context.Context) ([]*Element, error) {
	chain := []*Element{e}
	for cur := e; len(chain) <= maxWrapperDepth; {
		item, err := cur.hasClassToken(ctx, e.conv.FormItemClass)
		if err != nil {
			return nil, err
		}
		if item {
			break
		}
		parent, err := cur.FindElement(ctx, ByXPath(".."))
		if errors.Is(err, ErrNoSuchElement) {
			break
		}
		if err != nil {
			return nil, err
		}
		switch strings.ToLower(parent.TagName()) {
		case "", "form", "body", "html":
			return chain, nil
		}
		chain = append(chain, parent)
		cur = parent
	}
	return chain, nil
}

// ResolveFormFieldType classifies the field e belongs to. The element's own
// tag, type and classes win; otherwise the nearest wrapper with a known type
// decides. The returned element is the one that carried the type.
func (e *Element) ResolveFormFieldType(ctx context.Context) (FormFieldType, *Element, error) {
	wrappers, err := e.FieldWrappers(ctx)
	if err != nil {
		return FieldUnknown, e, err
	}
	for _, w := range wrappers {
		kind, err := w.FormFieldType(ctx)
		if err != nil {
			return FieldUnknown, e, err
		}
		if kind != FieldUnknown {
			return kind, w, nil
		}
	}
	return FieldUnknown, e, nil
}

// FieldChecked reports whether e or one of its wrappers carries the checked class.
func (e *Element) FieldChecked(ctx context.Context) (bool, error) {
	wrappers, err := e.FieldWrappers(ctx)
	if err != nil {
		return false, err
	}
	for _, w := range wrappers {
		checked, err := w.hasClassToken(ctx, e.conv.CheckedClass)
		if err != nil || checked {
			return checked, err
		}
	}
	return false, nil
}

// FillFieldWithRandomValue is FillInRandomValue for the field e belongs to.
// A combo is driven through the wrapper that carried its type, since the
// trigger lives there; everything else is filled on e.
func (e *Element) FillFieldWithRandomValue(ctx context.Context) error {
	kind, carrier, err := e.ResolveFormFieldType(ctx)
	if err != nil {
		return err
	}
	if kind == FieldCodeCombobox {
		return carrier.fillAs(ctx, kind)
	}
	return e.fillAs(ctx, kind)
}
