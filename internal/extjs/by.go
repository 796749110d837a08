// internal/extjs/by.go
package extjs

import (
	"fmt"
	"strings"
)

// Strategy identifies how a By locates elements.
type Strategy int

const (
	StrategyCSS Strategy = iota
	StrategyXPath
	StrategyName
	StrategyID
	StrategyClassName
	StrategyTagName
)

func (s Strategy) String() string {
	switch s {
	case StrategyCSS:
		return "css selector"
	case StrategyXPath:
		return "xpath"
	case StrategyName:
		return "name"
	case StrategyID:
		return "id"
	case StrategyClassName:
		return "class name"
	case StrategyTagName:
		return "tag name"
	default:
		return fmt.Sprintf("strategy(%d)", int(s))
	}
}

// By is an element locator.
type By struct {
	Strategy Strategy
	Value    string
}

func ByCSS(selector string) By { return By{Strategy: StrategyCSS, Value: selector} }
func ByXPath(expr string) By { return By{Strategy: StrategyXPath, Value: expr} }
func ByName(name string) By { return By{Strategy: StrategyName, Value: name} }
func ByID(id string) By { return By{Strategy: StrategyID, Value: id} }
func ByClassName(cls string) By { return By{Strategy: StrategyClassName, Value: cls} }
func ByTagName(tag string) By { return By{Strategy: StrategyTagName, Value: tag} }

// IsXPath reports whether the locator must be evaluated as XPath.
func (b By) IsXPath() bool { return b.Strategy == StrategyXPath }

// CSS returns the equivalent CSS selector. It panics for XPath locators;
// callers check IsXPath first.
func (b By) CSS() string {
	switch b.Strategy {
	case StrategyCSS:
		return b.Value
	case StrategyName:
		return "[name=" + cssString(b.Value) + "]"
	case StrategyID:
		return "[id=" + cssString(b.Value) + "]"
	case StrategyClassName:
		return "." + b.Value
	case StrategyTagName:
		return b.Value
	default:
		panic(fmt.Sprintf("extjs: %s locator has no CSS form", b.Strategy))
	}
}

func (b By) String() string {
	return fmt.Sprintf("By(%s: %s)", b.Strategy, b.Value)
}

// cssString serializes s as a double-quoted CSS string. Control characters
// become hex escapes followed by a space; NUL becomes U+FFFD.
func cssString(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for _, r := range s {
		switch {
		case r == 0:
			b.WriteRune('\uFFFD')
		case r < 0x20 || r == 0x7f:
			fmt.Fprintf(&b, "\\%x ", r)
		case r == '"' || r == '\\':
			b.WriteByte('\\')
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}
