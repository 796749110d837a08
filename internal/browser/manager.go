// internal/browser/manager.go
package browser

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/xkilldash9x/extjswd/internal/config"
	"github.com/xkilldash9x/extjswd/internal/extjs"
)

const (
	shutdownGracePeriod = 15 * time.Second
	sessionInitTimeout  = 30 * time.Second
)

// Manager owns the Chrome process and hands out tabs as Sessions. The browser
// is started by the first NewSession call.
type Manager struct {
	parent context.Context
	cfg    config.BrowserConfig
	conv   extjs.Conventions
	logger *zap.Logger

	// sem caps the number of open sessions at the configured concurrency.
	sem *semaphore.Weighted

	allocCtx      context.Context
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc

	sessions map[string]*Session
	mu       sync.RWMutex

	initOnce sync.Once
	initErr  error
}

// NewManager prepares a manager; the browser starts lazily. ctx bounds the
// lifetime of the browser process.
func NewManager(ctx context.Context, cfg config.Interface, logger *zap.Logger) *Manager {
	browserCfg := cfg.Browser()
	concurrency := browserCfg.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	m := &Manager{
		parent:   ctx,
		cfg:      browserCfg,
		conv:     extjs.NewConventions(cfg.ExtJS(), cfg.Fill()),
		logger:   logger.Named("browser_manager"),
		sem:      semaphore.NewWeighted(int64(concurrency)),
		sessions: make(map[string]*Session),
	}
	m.logger.Info("Browser manager created (initialization deferred).", zap.Int("concurrency", concurrency))
	return m
}

// initialize launches Chrome. Only the first call does any work.
func (m *Manager) initialize() error {
	m.initOnce.Do(func() {
		m.logger.Info("Launching browser...", zap.Bool("headless", m.cfg.Headless))

		m.allocCtx, m.allocCancel = chromedp.NewExecAllocator(m.parent, DefaultAllocatorOptions(m.cfg)...)
		m.browserCtx, m.browserCancel = chromedp.NewContext(m.allocCtx,
			chromedp.WithLogf(m.logger.Sugar().Debugf),
			chromedp.WithErrorf(m.logger.Sugar().Warnf),
		)

		// Running with no actions starts the browser and its first tab.
		if err := chromedp.Run(m.browserCtx); err != nil {
			m.browserCancel()
			m.allocCancel()
			m.initErr = fmt.Errorf("failed to launch browser: %w", err)
			return
		}
		m.logger.Info("Browser launched.")
	})
	return m.initErr
}

// NewSession opens a new tab. It blocks while the concurrency limit is reached.
func (m *Manager) NewSession(ctx context.Context) (*Session, error) {
	if err := m.initialize(); err != nil {
		return nil, err
	}
	if err := m.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("waiting for a free browser slot: %w", err)
	}

	tabCtx, tabCancel := chromedp.NewContext(m.browserCtx)

	var session *Session
	session = NewSession(tabCtx, tabCancel, m.cfg, m.conv, m.logger, func() {
		m.mu.Lock()
		delete(m.sessions, session.ID())
		m.mu.Unlock()
		m.sem.Release(1)
		m.logger.Debug("Session removed from manager.", zap.String("session_id", session.ID()))
	})

	initCtx, initCancel := context.WithTimeout(ctx, sessionInitTimeout)
	defer initCancel()
	if err := session.Initialize(initCtx); err != nil {
		cleanupCtx, cancel := context.WithTimeout(context.Background(), shutdownGracePeriod)
		defer cancel()
		_ = session.Close(cleanupCtx)
		return nil, fmt.Errorf("failed to initialize session: %w", err)
	}

	m.mu.Lock()
	m.sessions[session.ID()] = session
	m.mu.Unlock()

	m.logger.Info("New session created.", zap.String("session_id", session.ID()))
	return session, nil
}

// Sessions returns the number of open sessions.
func (m *Manager) Sessions() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Shutdown closes every session in parallel, then the browser.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.logger.Info("Shutting down browser manager.")

	m.mu.RLock()
	open := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		open = append(open, s)
	}
	m.mu.RUnlock()

	g, gctx := errgroup.WithContext(ctx)
	for _, s := range open {
		g.Go(func() error {
			if err := s.Close(gctx); err != nil {
				m.logger.Warn("Error during session close in shutdown.", zap.String("session_id", s.ID()), zap.Error(err))
				return err
			}
			return nil
		})
	}
	shutdownErr := g.Wait()

	if m.browserCtx == nil || m.initErr != nil {
		m.logger.Info("Manager not initialized, nothing else to stop.")
		return shutdownErr
	}

	done := make(chan error, 1)
	go func() { done <- chromedp.Cancel(m.browserCtx) }()

	timer := time.NewTimer(shutdownGracePeriod)
	defer timer.Stop()
	select {
	case err := <-done:
		if err != nil && !errors.Is(err, context.Canceled) {
			m.logger.Error("Failed to close browser.", zap.Error(err))
			shutdownErr = errors.Join(shutdownErr, fmt.Errorf("failed to close browser: %w", err))
		}
	case <-timer.C:
		m.logger.Warn("Timed out waiting for the browser to exit. Killing it.")
	}
	m.browserCancel()
	m.allocCancel()

	m.logger.Info("Browser manager shutdown complete.")
	return shutdownErr
}
