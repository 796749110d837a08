// File: cmd/markup_test.go
package cmd

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/antchfx/htmlquery"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/xkilldash9x/extjswd/internal/extjs"
)

// markupPage is an extjs.Page over parsed HTML, for running the commands'
// field logic against realistic ExtJS markup.
type markupPage struct {
	mu     sync.Mutex
	doc    *html.Node
	clicks []string
	// onClick runs, under the page lock, after a click on n.
	onClick func(n *html.Node)
}

func newMarkupPage(t *testing.T, markup string) *markupPage {
	t.Helper()
	doc, err := htmlquery.Parse(strings.NewReader(markup))
	require.NoError(t, err)
	return &markupPage{doc: doc}
}

// fields returns the elements matched by selector, the way loadFields does.
func (p *markupPage) fields(t *testing.T, selector string) []*extjs.Element {
	t.Helper()
	nodes, err := p.FindAll(context.Background(), extjs.ByCSS(selector))
	require.NoError(t, err)
	out := make([]*extjs.Element, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, extjs.NewElement(n, p))
	}
	return out
}

func (p *markupPage) FindAll(_ context.Context, by extjs.By) ([]extjs.Node, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.query(p.doc, by, "")
}

func (p *markupPage) MoveTo(context.Context, extjs.Node) error { return nil }

func (p *markupPage) ClickNode(ctx context.Context, n extjs.Node, _ int) error {
	return n.Click(ctx)
}

func (p *markupPage) Evaluate(context.Context, string, interface{}) error { return nil }

func (p *markupPage) query(top *html.Node, by extjs.By, prefix string) ([]extjs.Node, error) {
	expr := by.Value
	if !by.IsXPath() {
		expr = selectorXPath(by.CSS(), prefix)
	}
	found, err := htmlquery.QueryAll(top, expr)
	if err != nil {
		return nil, err
	}
	out := make([]extjs.Node, 0, len(found))
	for _, n := range found {
		if n.Type == html.ElementNode {
			out = append(out, &markupNode{page: p, n: n})
		}
	}
	return out, nil
}

// selectorXPath covers comma lists, descendant combinators and compound
// steps of a tag and .class tokens.
func selectorXPath(selector, prefix string) string {
	var alts []string
	for _, part := range strings.Split(selector, ",") {
		var b strings.Builder
		b.WriteString(prefix)
		for _, step := range strings.Fields(part) {
			classes := strings.Split(step, ".")
			tag := classes[0]
			if tag == "" {
				tag = "*"
			}
			b.WriteString("//" + tag)
			for _, cls := range classes[1:] {
				fmt.Fprintf(&b, "[contains(concat(' ', normalize-space(@class), ' '), ' %s ')]", cls)
			}
		}
		alts = append(alts, b.String())
	}
	return strings.Join(alts, " | ")
}

type markupNode struct {
	page *markupPage
	n    *html.Node
}

func (m *markupNode) TagName() string { return m.n.Data }

func (m *markupNode) Attribute(_ context.Context, name string) (string, bool, error) {
	m.page.mu.Lock()
	defer m.page.mu.Unlock()
	v, ok := markupAttr(m.n, name)
	return v, ok, nil
}

func (m *markupNode) Value(ctx context.Context) (string, error) {
	v, _, err := m.Attribute(ctx, "value")
	return v, err
}

func (m *markupNode) InnerHTML(context.Context) (string, error) {
	m.page.mu.Lock()
	defer m.page.mu.Unlock()
	return htmlquery.OutputHTML(m.n, false), nil
}

func (m *markupNode) Displayed(context.Context) (bool, error) {
	m.page.mu.Lock()
	defer m.page.mu.Unlock()
	for n := m.n; n != nil; n = n.Parent {
		if style, _ := markupAttr(n, "style"); strings.Contains(style, "display:none") {
			return false, nil
		}
	}
	return true, nil
}

func (m *markupNode) Location(context.Context) (extjs.Point, error) { return extjs.Point{}, nil }

func (m *markupNode) FindAll(_ context.Context, by extjs.By) ([]extjs.Node, error) {
	m.page.mu.Lock()
	defer m.page.mu.Unlock()
	return m.page.query(m.n, by, ".")
}

func (m *markupNode) Click(context.Context) error {
	m.page.mu.Lock()
	defer m.page.mu.Unlock()
	id, _ := markupAttr(m.n, "id")
	m.page.clicks = append(m.page.clicks, id)
	if m.page.onClick != nil {
		m.page.onClick(m.n)
	}
	return nil
}

func (m *markupNode) Clear(context.Context) error {
	m.page.mu.Lock()
	defer m.page.mu.Unlock()
	setMarkupAttr(m.n, "value", "")
	return nil
}

func (m *markupNode) SendKeys(_ context.Context, keys string) error {
	m.page.mu.Lock()
	defer m.page.mu.Unlock()
	v, _ := markupAttr(m.n, "value")
	setMarkupAttr(m.n, "value", v+keys)
	return nil
}

func (m *markupNode) Call(context.Context, string, interface{}, ...interface{}) error { return nil }

func markupAttr(n *html.Node, name string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

func setMarkupAttr(n *html.Node, name, value string) {
	for i, a := range n.Attr {
		if a.Key == name {
			n.Attr[i].Val = value
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: name, Val: value})
}

func removeMarkupAttr(n *html.Node, name string) {
	kept := n.Attr[:0]
	for _, a := range n.Attr {
		if a.Key != name {
			kept = append(kept, a)
		}
	}
	n.Attr = kept
}
