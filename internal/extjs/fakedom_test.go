// internal/extjs/fakedom_test.go
package extjs

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/antchfx/htmlquery"
	"github.com/chromedp/chromedp/kb"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

// fakePage is an in-memory document implementing Page. Nodes read the tree
// on every call, so hooks that mutate it are visible immediately.
type fakePage struct {
	mu  sync.Mutex
	doc *html.Node

	// onClick runs, under the page lock, after a native click on n.
	onClick func(n *html.Node)
	// evaluate answers Page.Evaluate; nil leaves res untouched.
	evaluate func(script string, res interface{}) error

	clicks     []string
	moves      []string
	pointer    []pointerClick
	calls      []string
	keystrokes []string
	scripts    []string
}

type pointerClick struct {
	target string
	count  int
}

func newFakePage(t *testing.T, markup string) *fakePage {
	t.Helper()
	doc, err := htmlquery.Parse(strings.NewReader(markup))
	require.NoError(t, err)
	return &fakePage{doc: doc}
}

// mutate runs fn under the page lock.
func (p *fakePage) mutate(fn func(doc *html.Node)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fn(p.doc)
}

// element returns the single element matched by the XPath expression.
func (p *fakePage) element(t *testing.T, expr string) *Element {
	t.Helper()
	p.mu.Lock()
	n, err := htmlquery.Query(p.doc, expr)
	p.mu.Unlock()
	require.NoError(t, err)
	require.NotNil(t, n, "no element for %s", expr)
	return NewElement(&fakeNode{page: p, n: n}, p)
}

func (p *fakePage) byID(t *testing.T, id string) *Element {
	t.Helper()
	return p.element(t, fmt.Sprintf("//*[@id=%q]", id))
}

func (p *fakePage) FindAll(_ context.Context, by By) ([]Node, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.query(p.doc, by, "")
}

func (p *fakePage) MoveTo(_ context.Context, n Node) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.moves = append(p.moves, label(n.(*fakeNode).n))
	return nil
}

func (p *fakePage) ClickNode(_ context.Context, n Node, count int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pointer = append(p.pointer, pointerClick{target: label(n.(*fakeNode).n), count: count})
	return nil
}

func (p *fakePage) Evaluate(_ context.Context, script string, res interface{}) error {
	p.mu.Lock()
	p.scripts = append(p.scripts, script)
	eval := p.evaluate
	p.mu.Unlock()
	if eval == nil {
		return nil
	}
	return eval(script, res)
}

func (p *fakePage) query(top *html.Node, by By, prefix string) ([]Node, error) {
	expr := by.Value
	if !by.IsXPath() {
		expr = cssToXPath(by.CSS(), prefix)
	}
	found, err := htmlquery.QueryAll(top, expr)
	if err != nil {
		return nil, err
	}
	out := make([]Node, 0, len(found))
	for _, n := range found {
		out = append(out, &fakeNode{page: p, n: n})
	}
	return out, nil
}

// fakeNode is an element of a fakePage.
type fakeNode struct {
	page *fakePage
	n    *html.Node
}

func (f *fakeNode) TagName() string { return f.n.Data }

func (f *fakeNode) Attribute(_ context.Context, name string) (string, bool, error) {
	f.page.mu.Lock()
	defer f.page.mu.Unlock()
	if err := f.attached(); err != nil {
		return "", false, err
	}
	v, ok := attr(f.n, name)
	return v, ok, nil
}

func (f *fakeNode) Value(ctx context.Context) (string, error) {
	v, _, err := f.Attribute(ctx, "value")
	return v, err
}

func (f *fakeNode) InnerHTML(context.Context) (string, error) {
	f.page.mu.Lock()
	defer f.page.mu.Unlock()
	if err := f.attached(); err != nil {
		return "", err
	}
	return htmlquery.OutputHTML(f.n, false), nil
}

func (f *fakeNode) Displayed(context.Context) (bool, error) {
	f.page.mu.Lock()
	defer f.page.mu.Unlock()
	if err := f.attached(); err != nil {
		return false, err
	}
	for n := f.n; n != nil; n = n.Parent {
		style, _ := attr(n, "style")
		if strings.Contains(strings.ReplaceAll(style, " ", ""), "display:none") {
			return false, nil
		}
	}
	return true, nil
}

// Location reads data-x and data-y.
func (f *fakeNode) Location(context.Context) (Point, error) {
	f.page.mu.Lock()
	defer f.page.mu.Unlock()
	x, _ := attr(f.n, "data-x")
	y, _ := attr(f.n, "data-y")
	px, _ := strconv.ParseFloat(x, 64)
	py, _ := strconv.ParseFloat(y, 64)
	return Point{X: px, Y: py}, nil
}

func (f *fakeNode) FindAll(_ context.Context, by By) ([]Node, error) {
	f.page.mu.Lock()
	defer f.page.mu.Unlock()
	if err := f.attached(); err != nil {
		return nil, err
	}
	return f.page.query(f.n, by, ".")
}

func (f *fakeNode) Click(context.Context) error {
	f.page.mu.Lock()
	defer f.page.mu.Unlock()
	if err := f.attached(); err != nil {
		return err
	}
	f.page.clicks = append(f.page.clicks, label(f.n))
	if f.page.onClick != nil {
		f.page.onClick(f.n)
	}
	return nil
}

func (f *fakeNode) Clear(context.Context) error {
	f.page.mu.Lock()
	defer f.page.mu.Unlock()
	setAttr(f.n, "value", "")
	return nil
}

func (f *fakeNode) SendKeys(_ context.Context, keys string) error {
	f.page.mu.Lock()
	defer f.page.mu.Unlock()
	if keys == kb.Tab {
		f.page.keystrokes = append(f.page.keystrokes, "<tab>")
		return nil
	}
	f.page.keystrokes = append(f.page.keystrokes, keys)
	v, _ := attr(f.n, "value")
	setAttr(f.n, "value", v+keys)
	return nil
}

func (f *fakeNode) Call(_ context.Context, function string, _ interface{}, args ...interface{}) error {
	f.page.mu.Lock()
	defer f.page.mu.Unlock()
	f.page.calls = append(f.page.calls, label(f.n))
	if function == setAttributeJS {
		setAttr(f.n, args[0].(string), args[1].(string))
	}
	return nil
}

// attached fails with ErrStaleElement once the node is cut from the tree.
func (f *fakeNode) attached() error {
	n := f.n
	for n.Parent != nil {
		n = n.Parent
	}
	if n != f.page.doc {
		return ErrStaleElement
	}
	return nil
}

func attr(n *html.Node, name string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

func setAttr(n *html.Node, name, value string) {
	for i, a := range n.Attr {
		if a.Key == name {
			n.Attr[i].Val = value
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: name, Val: value})
}

func removeAttr(n *html.Node, name string) {
	kept := n.Attr[:0]
	for _, a := range n.Attr {
		if a.Key != name {
			kept = append(kept, a)
		}
	}
	n.Attr = kept
}

// toggleClass adds or removes a class token.
func toggleClass(n *html.Node, token string) {
	class, _ := attr(n, "class")
	tokens := strings.Fields(class)
	for i, t := range tokens {
		if t == token {
			setAttr(n, "class", strings.Join(append(tokens[:i], tokens[i+1:]...), " "))
			return
		}
	}
	setAttr(n, "class", strings.TrimSpace(class+" "+token))
}

// label identifies a node in recorded interactions by id, else by tag.
func label(n *html.Node) string {
	if id, ok := attr(n, "id"); ok {
		return id
	}
	return n.Data
}

// cssToXPath translates the selector subset the package emits: comma lists,
// descendant combinators, and compound steps of tag, .class and [attr="v"].
func cssToXPath(selector, prefix string) string {
	var alts []string
	for _, part := range strings.Split(selector, ",") {
		var b strings.Builder
		b.WriteString(prefix)
		for _, step := range strings.Fields(part) {
			b.WriteString("//")
			b.WriteString(stepToXPath(step))
		}
		alts = append(alts, b.String())
	}
	return strings.Join(alts, " | ")
}

func stepToXPath(step string) string {
	end := strings.IndexAny(step, ".[")
	if end < 0 {
		end = len(step)
	}
	tag := step[:end]
	if tag == "" {
		tag = "*"
	}
	var preds strings.Builder
	rest := step[end:]
	for rest != "" {
		switch rest[0] {
		case '.':
			next := strings.IndexAny(rest[1:], ".[")
			if next < 0 {
				next = len(rest) - 1
			}
			cls := rest[1 : next+1]
			fmt.Fprintf(&preds, "[contains(concat(' ', normalize-space(@class), ' '), ' %s ')]", cls)
			rest = rest[next+1:]
		case '[':
			rb := strings.IndexByte(rest, ']')
			kv := strings.SplitN(rest[1:rb], "=", 2)
			val := kv[1]
			if unq, err := strconv.Unquote(val); err == nil {
				val = unq
			}
			fmt.Fprintf(&preds, "[@%s=%q]", kv[0], val)
			rest = rest[rb+1:]
		default:
			panic(errors.New("unsupported selector step " + step))
		}
	}
	return tag + preds.String()
}

// scriptedCounter returns its values in order, repeating the last one.
type scriptedCounter struct {
	mu     sync.Mutex
	values []int64
	reads  int
}

func (c *scriptedCounter) Pending() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.reads
	if i >= len(c.values) {
		i = len(c.values) - 1
	}
	c.reads++
	return c.values[i]
}
