// internal/extjs/date.go
package extjs

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// ParseDateValue reads a date from the trailing len(layout) characters of s.
// Display fields often prefix the date with a label, so only the tail counts.
func ParseDateValue(s, layout string) (time.Time, error) {
	s = strings.TrimSpace(s)
	n := len(layout)
	if len(s) < n {
		return time.Time{}, fmt.Errorf("%w: %q is shorter than %d characters", ErrInvalidDate, s, n)
	}
	t, err := time.Parse(layout, s[len(s)-n:])
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrInvalidDate, err)
	}
	return t, nil
}

// DateValueFromDisplayField parses the date at the end of the element's innerHTML.
func (e *Element) DateValueFromDisplayField(ctx context.Context) (time.Time, error) {
	html, err := e.HTMLContent(ctx)
	if err != nil {
		return time.Time{}, err
	}
	return ParseDateValue(html, e.conv.DateLayout)
}

// DateValueFromTextField parses the date at the end of the field's value.
func (e *Element) DateValueFromTextField(ctx context.Context) (time.Time, error) {
	v, err := e.node.Value(ctx)
	if err != nil {
		return time.Time{}, err
	}
	return ParseDateValue(v, e.conv.DateLayout)
}
