// internal/browser/context_utils.go
package browser

import "context"

// CombineContext returns a context that carries the values and deadline of
// primary and is also canceled when secondary is done. chromedp keeps its
// target in context values, so primary is the session context and secondary
// the caller's operation context.
func CombineContext(primary, secondary context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(primary)
	stop := context.AfterFunc(secondary, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}

// Detach returns a context with the values of ctx that is never canceled.
// Cleanup that must outlive the caller uses it.
func Detach(ctx context.Context) context.Context {
	return context.WithoutCancel(ctx)
}
