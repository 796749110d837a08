// File: cmd/helpers_test.go
package cmd

import (
	"context"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/xkilldash9x/extjswd/internal/extjs"
	"github.com/xkilldash9x/extjswd/internal/observability"
)

// resetForTest restores package state touched by the root command.
func resetForTest(t *testing.T) {
	t.Helper()
	cfgFile = ""
	observability.ResetForTest()
	t.Cleanup(func() {
		cfgFile = ""
		observability.ResetForTest()
	})
	// Keep godotenv and the config search away from the developer's files.
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())
}

// execute runs a fresh root command and captures its output.
func execute(t *testing.T, args ...string) (*cobra.Command, string, error) {
	t.Helper()
	root := newRootCmd()
	var out strings.Builder
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return root, out.String(), err
}

// stubNode is an extjs.Node with fixed attributes. Parent lookups return
// parent; every other query returns children.
type stubNode struct {
	tag      string
	attrs    map[string]string
	value    string
	parent   *stubNode
	children []extjs.Node
	clicks   int
	clickErr error
	readErr  error
}

func (n *stubNode) TagName() string { return n.tag }

func (n *stubNode) Attribute(ctx context.Context, name string) (string, bool, error) {
	if n.readErr != nil {
		return "", false, n.readErr
	}
	v, ok := n.attrs[name]
	return v, ok, nil
}

func (n *stubNode) Value(ctx context.Context) (string, error)     { return n.value, n.readErr }
func (n *stubNode) InnerHTML(ctx context.Context) (string, error) { return "", nil }
func (n *stubNode) Displayed(ctx context.Context) (bool, error)   { return true, nil }

func (n *stubNode) Location(ctx context.Context) (extjs.Point, error) {
	return extjs.Point{}, nil
}

func (n *stubNode) FindAll(ctx context.Context, by extjs.By) ([]extjs.Node, error) {
	if by.IsXPath() && by.Value == ".." {
		if n.parent == nil {
			return nil, nil
		}
		return []extjs.Node{n.parent}, nil
	}
	return n.children, nil
}

func (n *stubNode) Click(ctx context.Context) error {
	n.clicks++
	return n.clickErr
}

func (n *stubNode) Clear(ctx context.Context) error {
	n.value = ""
	return nil
}

func (n *stubNode) SendKeys(ctx context.Context, keys string) error {
	n.value += keys
	return nil
}

func (n *stubNode) Call(ctx context.Context, function string, res interface{}, args ...interface{}) error {
	return nil
}

func elements(nodes ...*stubNode) []*extjs.Element {
	out := make([]*extjs.Element, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, extjs.NewElement(n, nil))
	}
	return out
}
