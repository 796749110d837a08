// internal/browser/session.go
package browser

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/chromedp/chromedp"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xkilldash9x/extjswd/internal/config"
	"github.com/xkilldash9x/extjswd/internal/extjs"
)

// ErrSessionClosed is returned for operations on a closed or crashed tab.
var ErrSessionClosed = errors.New("browser session closed")

// Session is one browser tab. It implements extjs.Page, so elements found
// through it carry the ExtJS helpers.
type Session struct {
	id     string
	ctx    context.Context
	cancel context.CancelFunc
	logger *zap.Logger
	cfg    config.BrowserConfig
	conv   extjs.Conventions

	ajax    *AjaxMonitor
	onClose func()

	mu       sync.Mutex
	isClosed bool
}

var (
	_ extjs.Page   = (*Session)(nil)
	_ extjs.Finder = (*Session)(nil)
)

// NewSession wraps a chromedp tab context. The tab is not opened until
// Initialize.
func NewSession(
	ctx context.Context,
	cancel context.CancelFunc,
	cfg config.BrowserConfig,
	conv extjs.Conventions,
	logger *zap.Logger,
	onClose func(),
) *Session {
	sessionID := uuid.New().String()
	sessionLogger := logger.With(zap.String("session_id", sessionID))

	return &Session{
		id:      sessionID,
		ctx:     ctx,
		cancel:  cancel,
		logger:  sessionLogger,
		cfg:     cfg,
		conv:    conv,
		ajax:    NewAjaxMonitor(sessionLogger),
		onClose: onClose,
	}
}

// Initialize opens the tab and starts the AJAX monitor.
func (s *Session) Initialize(ctx context.Context) error {
	// The first Run opens the target and ties it to the session context, so
	// it must not carry the caller's deadline.
	if err := chromedp.Run(s.ctx); err != nil {
		return fmt.Errorf("failed to open browser tab: %w", err)
	}
	if err := s.ajax.Start(s.ctx); err != nil {
		return fmt.Errorf("failed to start AJAX monitor: %w", err)
	}
	if w, h, ok := windowSize(s.cfg.Viewport); ok {
		if err := s.RunActions(ctx, chromedp.EmulateViewport(int64(w), int64(h))); err != nil {
			return fmt.Errorf("failed to set viewport: %w", err)
		}
	}
	s.logger.Debug("Session initialized.")
	return nil
}

func (s *Session) ID() string { return s.id }

// Context returns the chromedp context of the tab.
func (s *Session) Context() context.Context { return s.ctx }

// Ajax returns the request counter of the tab.
func (s *Session) Ajax() *AjaxMonitor { return s.ajax }

// Conventions returns the ExtJS conventions applied to found elements.
func (s *Session) Conventions() extjs.Conventions { return s.conv }

// Close closes the tab. It is safe to call more than once.
func (s *Session) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.isClosed {
		s.mu.Unlock()
		return nil
	}
	s.isClosed = true
	s.mu.Unlock()

	s.logger.Debug("Closing browser session.")
	s.ajax.Stop()

	// chromedp.Cancel closes the target and waits for it; bound the wait by ctx.
	done := make(chan error, 1)
	go func() { done <- chromedp.Cancel(s.ctx) }()

	var closeErr error
	select {
	case err := <-done:
		if err != nil && !errors.Is(err, context.Canceled) {
			closeErr = fmt.Errorf("failed to close tab: %w", err)
		}
	case <-ctx.Done():
		closeErr = ctx.Err()
	}
	s.cancel()

	if s.onClose != nil {
		s.onClose()
	}
	return closeErr
}

// RunActions runs actions bounded by both the session and ctx, plus the
// configured action timeout.
func (s *Session) RunActions(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := CombineContext(s.ctx, ctx)
	defer cancel()
	if s.cfg.ActionTimeout > 0 {
		var timeoutCancel context.CancelFunc
		runCtx, timeoutCancel = context.WithTimeout(runCtx, s.cfg.ActionTimeout)
		defer timeoutCancel()
	}
	return s.translateError(ctx, runCtx, chromedp.Run(runCtx, actions...))
}

// translateError reports cancellations by their cause and maps CDP errors
// about vanished nodes to extjs.ErrStaleElement.
func (s *Session) translateError(ctx, runCtx context.Context, err error) error {
	switch {
	case err == nil:
		return nil
	case ctx.Err() != nil:
		return ctx.Err()
	case s.ctx.Err() != nil:
		return fmt.Errorf("%w: %v", ErrSessionClosed, err)
	case errors.Is(runCtx.Err(), context.DeadlineExceeded):
		return fmt.Errorf("action timed out after %s: %w", s.cfg.ActionTimeout, err)
	case isStaleNodeError(err):
		return fmt.Errorf("%w: %v", extjs.ErrStaleElement, err)
	}
	return err
}

var staleNodeMessages = []string{
	"No node with given id",
	"Could not find node with given id",
	"Node is detached",
	"Cannot find context with specified id",
}

func isStaleNodeError(err error) bool {
	msg := err.Error()
	for _, m := range staleNodeMessages {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}
