// internal/browser/interaction.go
package browser

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/cdproto/input"
	"github.com/chromedp/chromedp"
	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/xkilldash9x/extjswd/internal/extjs"
)

const defaultNavigationTimeout = 90 * time.Second

// xpathMarkerPrefix starts the attribute used to hand XPath matches over to
// a CSS query. Each query appends its own token so concurrent queries in one
// tab never share an attribute.
const xpathMarkerPrefix = "data-extjswd-xpath-"

func xpathMarker(token string) string { return xpathMarkerPrefix + token }

// markXPathJS tags every element matched by expr, evaluated relative to
// root, with the marker attribute.
const markXPathJS = `function(root, expr, marker) {
	const r = document.evaluate(expr, root, null, XPathResult.ORDERED_NODE_SNAPSHOT_TYPE, null);
	let n = 0;
	for (let i = 0; i < r.snapshotLength; i++) {
		const el = r.snapshotItem(i);
		if (el.nodeType === Node.ELEMENT_NODE) {
			el.setAttribute(marker, "");
			n++;
		}
	}
	return n;
}`

const unmarkXPathJS = `(function(marker) {
	document.querySelectorAll('[' + marker + ']').forEach(function(el) {
		el.removeAttribute(marker);
	});
	return true;
})(%s)`

// Navigate loads url and waits for the document body.
func (s *Session) Navigate(ctx context.Context, url string) error {
	s.logger.Debug("Navigating to URL", zap.String("url", url))

	opCtx, opCancel := CombineContext(s.ctx, ctx)
	defer opCancel()

	navTimeout := s.cfg.NavigationTimeout
	if navTimeout <= 0 {
		navTimeout = defaultNavigationTimeout
	}
	navCtx, navCancel := context.WithTimeout(opCtx, navTimeout)
	defer navCancel()

	s.ajax.Reset()
	err := chromedp.Run(navCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
	if err != nil {
		if errors.Is(navCtx.Err(), context.DeadlineExceeded) && opCtx.Err() == nil {
			return fmt.Errorf("navigation timed out after %s: %w", navTimeout, err)
		}
		if opCtx.Err() != nil {
			return fmt.Errorf("navigation canceled: %w", opCtx.Err())
		}
		return fmt.Errorf("navigation failed: %w", err)
	}
	return nil
}

// Sleep pauses for d inside the tab's lifetime.
func (s *Session) Sleep(ctx context.Context, d time.Duration) error {
	runCtx, cancel := CombineContext(s.ctx, ctx)
	defer cancel()
	return s.translateError(ctx, runCtx, chromedp.Run(runCtx, chromedp.Sleep(d)))
}

// Evaluate runs script in the page and decodes its result into res.
func (s *Session) Evaluate(ctx context.Context, script string, res interface{}) error {
	return s.RunActions(ctx, chromedp.Evaluate(script, res))
}

// FindAll returns every element of the document matched by by.
func (s *Session) FindAll(ctx context.Context, by extjs.By) ([]extjs.Node, error) {
	return s.queryAll(ctx, nil, by)
}

// FindElements is FindAll with the ExtJS helpers attached.
func (s *Session) FindElements(ctx context.Context, by extjs.By) ([]*extjs.Element, error) {
	nodes, err := s.FindAll(ctx, by)
	if err != nil {
		return nil, err
	}
	out := make([]*extjs.Element, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, s.wrap(n))
	}
	return out, nil
}

// Find returns the first element matched by by, or extjs.ErrNoSuchElement.
func (s *Session) Find(ctx context.Context, by extjs.By) (*extjs.Element, error) {
	found, err := s.FindElements(ctx, by)
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, fmt.Errorf("%w: %s", extjs.ErrNoSuchElement, by)
	}
	return found[0], nil
}

func (s *Session) wrap(n extjs.Node) *extjs.Element {
	return extjs.NewElement(n, s).WithConventions(s.conv)
}

// MoveTo scrolls n into view and moves the mouse pointer to its centre.
func (s *Session) MoveTo(ctx context.Context, n extjs.Node) error {
	el, err := s.own(n)
	if err != nil {
		return err
	}
	return s.RunActions(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		if err := dom.ScrollIntoViewIfNeeded().WithNodeID(el.node.NodeID).Do(ctx); err != nil {
			return err
		}
		box, err := dom.GetBoxModel().WithNodeID(el.node.NodeID).Do(ctx)
		if err != nil {
			return err
		}
		x, y := quadCenter(box.Content)
		return input.DispatchMouseEvent(input.MouseMoved, x, y).Do(ctx)
	}))
}

// ClickNode presses the left button count times over the centre of n.
func (s *Session) ClickNode(ctx context.Context, n extjs.Node, count int) error {
	el, err := s.own(n)
	if err != nil {
		return err
	}
	return s.RunActions(ctx, chromedp.MouseClickNode(el.node, chromedp.ClickCount(count)))
}

func (s *Session) own(n extjs.Node) (*Element, error) {
	el, ok := n.(*Element)
	if !ok || el.session != s {
		return nil, fmt.Errorf("node %T does not belong to session %s", n, s.id)
	}
	return el, nil
}

// queryAll runs by against the document, or below from when it is set.
func (s *Session) queryAll(ctx context.Context, from *cdp.Node, by extjs.By) ([]extjs.Node, error) {
	if by.IsXPath() {
		return s.queryXPath(ctx, from, by.Value)
	}

	opts := []chromedp.QueryOption{chromedp.ByQueryAll, chromedp.AtLeast(0)}
	if from != nil {
		opts = append(opts, chromedp.FromNode(from))
	}
	var nodes []*cdp.Node
	if err := s.RunActions(ctx, chromedp.Nodes(by.CSS(), &nodes, opts...)); err != nil {
		return nil, err
	}
	return s.elements(nodes), nil
}

// queryXPath evaluates expr in the page, marks the matches and collects them
// with a CSS query, since CDP has no node-relative XPath search.
func (s *Session) queryXPath(ctx context.Context, from *cdp.Node, expr string) ([]extjs.Node, error) {
	marker := xpathMarker(uuid.NewString())
	var marked int

	mark := chromedp.ActionFunc(func(ctx context.Context) error {
		if from != nil {
			fn := "function(expr, marker) { return (" + markXPathJS + ")(this, expr, marker); }"
			return callFunctionOnNode(ctx, from, fn, &marked, expr, marker)
		}
		script, err := jsCall(markXPathJS, rawJS("document"), expr, marker)
		if err != nil {
			return err
		}
		return chromedp.Evaluate(script, &marked).Do(ctx)
	})
	if err := s.RunActions(ctx, mark); err != nil {
		return nil, err
	}
	if marked == 0 {
		return nil, nil
	}
	defer s.unmark(marker)

	var nodes []*cdp.Node
	selector := "[" + marker + "]"
	if err := s.RunActions(ctx, chromedp.Nodes(selector, &nodes, chromedp.ByQueryAll, chromedp.AtLeast(0))); err != nil {
		return nil, err
	}
	return s.elements(nodes), nil
}

// unmark removes the XPath markers even when the caller's context is gone.
func (s *Session) unmark(marker string) {
	script, err := jsCall(unmarkXPathJS, marker)
	if err != nil {
		return
	}
	ctx, cancel := context.WithTimeout(Detach(s.ctx), 5*time.Second)
	defer cancel()
	if err := chromedp.Run(ctx, chromedp.Evaluate(script, nil)); err != nil {
		s.logger.Debug("Could not remove XPath markers.", zap.Error(err))
	}
}

func (s *Session) elements(nodes []*cdp.Node) []extjs.Node {
	out := make([]extjs.Node, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, &Element{session: s, node: n})
	}
	return out
}

// rawJS is inserted into a script verbatim instead of JSON encoded.
type rawJS string

// jsCall formats a script from a function expression, or from a template
// with %s verbs when fn is already an invocation, with JSON encoded arguments.
func jsCall(fn string, args ...interface{}) (string, error) {
	encoded := make([]interface{}, len(args))
	for i, a := range args {
		if raw, ok := a.(rawJS); ok {
			encoded[i] = string(raw)
			continue
		}
		b, err := jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(a)
		if err != nil {
			return "", fmt.Errorf("encode script argument %d: %w", i, err)
		}
		encoded[i] = string(b)
	}
	if len(fn) > 0 && fn[0] == '(' {
		return fmt.Sprintf(fn, encoded...), nil
	}
	params := ""
	for i := range encoded {
		if i > 0 {
			params += ", "
		}
		params += "%s"
	}
	return fmt.Sprintf("("+fn+")("+params+")", encoded...), nil
}

func quadCenter(q dom.Quad) (float64, float64) {
	if len(q) < 8 {
		return 0, 0
	}
	return (q[0] + q[2] + q[4] + q[6]) / 4, (q[1] + q[3] + q[5] + q[7]) / 4
}
