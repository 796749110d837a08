// internal/extjs/wait.go
package extjs

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// DefaultPollInterval matches the polling cadence of WebDriver waits.
const DefaultPollInterval = 500 * time.Millisecond

// Condition is polled by Wait.Until until it returns true.
type Condition func(ctx context.Context) (bool, error)

// Wait polls a condition until it holds or Timeout elapses.
type Wait struct {
	Timeout  time.Duration
	Interval time.Duration
}

// NewWait returns a Wait with the default poll interval.
func NewWait(timeout time.Duration) *Wait {
	return &Wait{Timeout: timeout, Interval: DefaultPollInterval}
}

// WaitSeconds is NewWait for whole seconds.
func WaitSeconds(seconds int) *Wait {
	return NewWait(time.Duration(seconds) * time.Second)
}

// Until polls cond. ErrNoSuchElement counts as "not yet"; any other error
// ends the wait. ErrWaitTimeout is returned when the timeout elapses.
func (w *Wait) Until(ctx context.Context, cond Condition) error {
	interval := w.Interval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	waitCtx, cancel := context.WithTimeout(ctx, w.Timeout)
	defer cancel()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var lastErr error
	for {
		ok, err := cond(waitCtx)
		switch {
		case err == nil && ok:
			return nil
		case err == nil:
		case waitCtx.Err() != nil:
			// cond was interrupted by our own deadline; handled below.
		case isNoSuchElement(err):
			lastErr = err
		default:
			return err
		}

		select {
		case <-waitCtx.Done():
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if lastErr != nil {
				return fmt.Errorf("%w after %v: %v", ErrWaitTimeout, w.Timeout, lastErr)
			}
			return fmt.Errorf("%w after %v", ErrWaitTimeout, w.Timeout)
		case <-ticker.C:
		}
	}
}

// UntilNotDisplayed waits until every element matching by is hidden or gone
// from the document. No match at all also satisfies the wait.
func (w *Wait) UntilNotDisplayed(ctx context.Context, f Finder, by By) error {
	return w.Until(ctx, func(ctx context.Context) (bool, error) {
		elements, err := f.FindElements(ctx, by)
		if err != nil {
			return false, err
		}
		for _, el := range elements {
			gone, err := NotDisplayedOrGone(ctx, el)
			if err != nil || !gone {
				return false, err
			}
		}
		return true, nil
	})
}

// NotDisplayedOrGone is true when el is hidden or no longer in the document.
func NotDisplayedOrGone(ctx context.Context, el *Element) (bool, error) {
	displayed, err := el.Displayed(ctx)
	if errors.Is(err, ErrStaleElement) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return !displayed, nil
}

func isNoSuchElement(err error) bool {
	return errors.Is(err, ErrNoSuchElement)
}

// sleep pauses for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
