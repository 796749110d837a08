// internal/extjs/combobox_test.go
package extjs

import (
	"context"
	"testing"
	"time"

	"github.com/antchfx/htmlquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

const comboMarkup = `<html><body>
<div id="ext4" class="x-form-item">
  <div class="x-form-trigger-wrap">
    <input id="ext4-input" class="x-form-field x-form-combo">
    <div id="ext4-trigger" class="x-form-trigger"></div>
  </div>
</div>
<div id="bare" class="x-form-combo"></div>
<ul id="list" style="display:none">
  <li id="stale" class="x-boundlist-item" style="display:none">Old</li>
  <li id="first" class="x-boundlist-item"> Red </li>
  <li id="second" class="x-boundlist-item">Green</li>
</ul>
</body></html>`

func comboConventions() Conventions {
	c := DefaultConventions()
	c.ComboTimeout = 100 * time.Millisecond
	c.PollInterval = 5 * time.Millisecond
	return c
}

// comboPage opens the list when any trigger is clicked.
func comboPage(t *testing.T) *fakePage {
	t.Helper()
	p := newFakePage(t, comboMarkup)
	p.onClick = func(n *html.Node) {
		if id, _ := attr(n, "id"); id == "ext4-trigger" || id == "bare" {
			removeAttr(htmlquery.FindOne(p.doc, `//*[@id="list"]`), "style")
		}
	}
	return p
}

func TestComboBox_Trigger(t *testing.T) {
	ctx := context.Background()
	p := comboPage(t)

	tests := []struct {
		id      string
		trigger string
	}{
		{"ext4", "ext4-trigger"},
		{"ext4-input", "ext4-trigger"},
		{"bare", "bare"},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			trigger, err := NewComboBox(p.byID(t, tt.id)).Trigger(ctx)
			require.NoError(t, err)
			assert.Equal(t, tt.trigger, label(trigger.Node().(*fakeNode).n))
		})
	}
}

func TestComboBox_SelectFirstItem(t *testing.T) {
	ctx := context.Background()
	p := comboPage(t)
	combo := NewComboBox(p.byID(t, "ext4-input").WithConventions(comboConventions()))

	require.NoError(t, combo.SelectFirstItem(ctx))
	assert.Equal(t, []string{"ext4-trigger", "first"}, p.clicks, "hidden items are skipped")
}

func TestComboBox_SelectItem(t *testing.T) {
	ctx := context.Background()
	p := comboPage(t)
	combo := NewComboBox(p.byID(t, "bare").WithConventions(comboConventions()))

	require.NoError(t, combo.SelectItem(ctx, "Green"))
	assert.Equal(t, []string{"bare", "second"}, p.clicks)

	err := combo.SelectItem(ctx, "Blue")
	assert.ErrorIs(t, err, ErrNoSuchElement)
}

func TestComboBox_ListNeverOpens(t *testing.T) {
	ctx := context.Background()
	p := comboPage(t)
	p.onClick = nil
	combo := NewComboBox(p.byID(t, "ext4").WithConventions(comboConventions()))

	err := combo.SelectFirstItem(ctx)
	assert.ErrorIs(t, err, ErrWaitTimeout)
}
