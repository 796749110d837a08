// internal/extjs/conventions.go
package extjs

import (
	"time"

	"github.com/xkilldash9x/extjswd/internal/config"
)

// Class names and selectors rendered by ExtJS 3.x and 4.x.
const (
	ClassChecked  = "x-form-cb-checked"
	ClassDisabled = "x-item-disabled"
	ClassRequired = "x-form-required-field"
	// ClassFormItem marks the outermost element of a labelled form field.
	ClassFormItem = "x-form-item"

	// SelectorCheckboxClickable is the clickable part of a checkbox; ExtJS
	// renders the checkbox as a layout table around it.
	SelectorCheckboxClickable = ".x-form-checkbox"
	SelectorComboTrigger      = ".x-form-trigger"
	// SelectorComboItem covers both the ExtJS 4 bound list and the ExtJS 3 combo list.
	SelectorComboItem = ".x-boundlist-item, .x-combo-list-item"
)

// Conventions holds the class names, sample values and timings the helpers
// use. The zero value is not useful; start from DefaultConventions.
type Conventions struct {
	CheckedClass              string
	DisabledClass             string
	RequiredClass             string
	FormItemClass             string
	CheckboxClickableSelector string
	ComboTriggerSelector      string
	ComboItemSelector         string

	DateLayout    string
	TextAreaValue string
	DateValue     string
	TimeValue     string

	AjaxTimeout  time.Duration
	AjaxSettle   time.Duration
	PollInterval time.Duration
	ComboTimeout time.Duration
}

// DefaultConventions returns the stock ExtJS conventions.
func DefaultConventions() Conventions {
	return Conventions{
		CheckedClass:              ClassChecked,
		DisabledClass:             ClassDisabled,
		RequiredClass:             ClassRequired,
		FormItemClass:             ClassFormItem,
		CheckboxClickableSelector: SelectorCheckboxClickable,
		ComboTriggerSelector:      SelectorComboTrigger,
		ComboItemSelector:         SelectorComboItem,
		DateLayout:                "02/01/2006",
		TextAreaValue:             "This is a textarea",
		DateValue:                 "27/10/2014",
		TimeValue:                 "10:00",
		AjaxTimeout:               30 * time.Second,
		AjaxSettle:                150 * time.Millisecond,
		PollInterval:              500 * time.Millisecond,
		ComboTimeout:              10 * time.Second,
	}
}

// NewConventions applies the configured timings and sample values on top of
// the defaults. Empty or zero settings keep the default.
func NewConventions(ext config.ExtJSConfig, fill config.FillConfig) Conventions {
	c := DefaultConventions()
	if ext.AjaxTimeout > 0 {
		c.AjaxTimeout = ext.AjaxTimeout
	}
	if ext.AjaxSettle > 0 {
		c.AjaxSettle = ext.AjaxSettle
	}
	if ext.PollInterval > 0 {
		c.PollInterval = ext.PollInterval
	}
	if ext.DateLayout != "" {
		c.DateLayout = ext.DateLayout
	}
	if fill.TextAreaValue != "" {
		c.TextAreaValue = fill.TextAreaValue
	}
	if fill.DateValue != "" {
		c.DateValue = fill.DateValue
	}
	if fill.TimeValue != "" {
		c.TimeValue = fill.TimeValue
	}
	return c
}
