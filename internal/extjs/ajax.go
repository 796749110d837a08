// internal/extjs/ajax.go
package extjs

import (
	"context"
	"time"
)

// AjaxWait waits for a page's background requests to drain.
type AjaxWait struct {
	Counter  RequestCounter
	Timeout  time.Duration
	Settle   time.Duration
	Interval time.Duration
}

// NewAjaxWait uses the AJAX timings from c.
func NewAjaxWait(counter RequestCounter, c Conventions) *AjaxWait {
	return &AjaxWait{
		Counter:  counter,
		Timeout:  c.AjaxTimeout,
		Settle:   c.AjaxSettle,
		Interval: c.PollInterval,
	}
}

// Done reports whether no request is outstanding, looking twice with the
// settle delay in between so a request chained off a completed one is seen.
func (a *AjaxWait) Done(ctx context.Context) (bool, error) {
	if a.Counter.Pending() != 0 {
		return false, nil
	}
	if err := sleep(ctx, a.Settle); err != nil {
		return false, err
	}
	return a.Counter.Pending() == 0, nil
}

// Wait blocks until Done holds or the timeout elapses.
func (a *AjaxWait) Wait(ctx context.Context) error {
	w := &Wait{Timeout: a.Timeout, Interval: a.Interval}
	return w.Until(ctx, a.Done)
}

// WaitUntilAjaxLoadingDone waits, with the element's conventions, until
// counter reports no outstanding requests.
func (e *Element) WaitUntilAjaxLoadingDone(ctx context.Context, counter RequestCounter) error {
	return NewAjaxWait(counter, e.conv).Wait(ctx)
}
