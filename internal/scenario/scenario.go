// Package scenario holds the process-wide browser fixture shared by test
// scripts: one Chrome, one tab and the AJAX counter that tab feeds.
package scenario

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/extjswd/internal/browser"
	"github.com/xkilldash9x/extjswd/internal/config"
	"github.com/xkilldash9x/extjswd/internal/extjs"
)

// ErrNotInitialized is returned by Instance before Init has succeeded.
var ErrNotInitialized = errors.New("scenario: not initialized")

// ErrAlreadyInitialized is returned by Init when a scenario is live.
var ErrAlreadyInitialized = errors.New("scenario: already initialized")

var (
	mu      sync.Mutex
	current *Scenario
)

// Scenario bundles the browser session a script drives with the
// configuration and logger it was started with.
type Scenario struct {
	cfg     config.Interface
	logger  *zap.Logger
	manager *browser.Manager
	session *browser.Session
}

// Init launches the browser, opens a tab and installs the result as the
// process-wide scenario.
func Init(ctx context.Context, cfg config.Interface, logger *zap.Logger) (*Scenario, error) {
	mu.Lock()
	defer mu.Unlock()
	if current != nil {
		return nil, ErrAlreadyInitialized
	}

	logger = logger.Named("scenario")
	manager := browser.NewManager(ctx, cfg, logger)
	session, err := manager.NewSession(ctx)
	if err != nil {
		shutdownCtx, cancel := context.WithTimeout(browser.Detach(ctx), 15*time.Second)
		defer cancel()
		if shutdownErr := manager.Shutdown(shutdownCtx); shutdownErr != nil {
			logger.Warn("Browser shutdown after failed start.", zap.Error(shutdownErr))
		}
		return nil, fmt.Errorf("opening scenario session: %w", err)
	}

	current = &Scenario{cfg: cfg, logger: logger, manager: manager, session: session}
	logger.Debug("Scenario started.", zap.String("session_id", session.ID()))
	return current, nil
}

// Instance returns the live scenario.
func Instance() (*Scenario, error) {
	mu.Lock()
	defer mu.Unlock()
	if current == nil {
		return nil, ErrNotInitialized
	}
	return current, nil
}

// Reset forgets the live scenario without closing it. Tests use it to start
// from a clean slate.
func Reset() {
	mu.Lock()
	current = nil
	mu.Unlock()
}

func (s *Scenario) Session() *browser.Session { return s.session }
func (s *Scenario) Config() config.Interface  { return s.cfg }
func (s *Scenario) Logger() *zap.Logger       { return s.logger }

// AjaxRequestsBusy reports whether the tab has background requests in flight.
func (s *Scenario) AjaxRequestsBusy() bool {
	return s.session.Ajax().Pending() > 0
}

// Wait returns a waiter with the given timeout polling at the configured
// interval.
func (s *Scenario) Wait(seconds int) *extjs.Wait {
	w := extjs.WaitSeconds(seconds)
	w.Interval = s.session.Conventions().PollInterval
	return w
}

func (s *Scenario) Navigate(ctx context.Context, url string) error {
	return s.session.Navigate(ctx, url)
}

func (s *Scenario) Find(ctx context.Context, by extjs.By) (*extjs.Element, error) {
	return s.session.Find(ctx, by)
}

func (s *Scenario) FindAll(ctx context.Context, by extjs.By) ([]*extjs.Element, error) {
	return s.session.FindElements(ctx, by)
}

// WaitUntilAjaxLoadingDone blocks until the tab has no requests in flight
// across one settle period, or the configured AJAX timeout passes.
func (s *Scenario) WaitUntilAjaxLoadingDone(ctx context.Context) error {
	return extjs.NewAjaxWait(s.session.Ajax(), s.session.Conventions()).Wait(ctx)
}

// Close shuts the browser down and clears the process-wide scenario if it
// is still s.
func (s *Scenario) Close(ctx context.Context) error {
	mu.Lock()
	if current == s {
		current = nil
	}
	mu.Unlock()

	err := s.manager.Shutdown(ctx)
	if err != nil {
		s.logger.Warn("Scenario shutdown reported errors.", zap.Error(err))
	}
	return err
}
