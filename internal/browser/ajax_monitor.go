// internal/browser/ajax_monitor.go
package browser

import (
	"context"
	"sync"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/xkilldash9x/extjswd/internal/extjs"
)

// AjaxMonitor counts the XHR and fetch requests a tab has in flight. It is fed
// by CDP network events and read by the AJAX waits.
type AjaxMonitor struct {
	logger *zap.Logger

	mu       sync.RWMutex
	inflight map[network.RequestID]struct{}

	startOnce sync.Once
	startErr  error
	cancel    context.CancelFunc
}

var _ extjs.RequestCounter = (*AjaxMonitor)(nil)

func NewAjaxMonitor(logger *zap.Logger) *AjaxMonitor {
	return &AjaxMonitor{
		logger:   logger.Named("ajax_monitor"),
		inflight: make(map[network.RequestID]struct{}),
	}
}

// Start subscribes to the tab behind sessionCtx and enables the network
// domain. Later calls return the first result.
func (m *AjaxMonitor) Start(sessionCtx context.Context) error {
	m.startOnce.Do(func() {
		listenerCtx, cancel := context.WithCancel(sessionCtx)
		chromedp.ListenTarget(listenerCtx, m.handleEvent)

		// The listener runs on chromedp's event loop, so no lock may be held
		// across this Run.
		if err := chromedp.Run(sessionCtx, network.Enable()); err != nil {
			cancel()
			m.startErr = err
			return
		}

		m.mu.Lock()
		m.cancel = cancel
		m.mu.Unlock()
		m.logger.Debug("AJAX monitor started.")
	})
	return m.startErr
}

// Stop detaches the listener. Requests still counted stay counted.
func (m *AjaxMonitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
}

// Pending returns the number of XHR and fetch requests without a final event.
func (m *AjaxMonitor) Pending() int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.inflight))
}

// Reset forgets every counted request. A navigation abandons them without
// always reporting a failure.
func (m *AjaxMonitor) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n := len(m.inflight); n > 0 {
		m.logger.Debug("Dropping in-flight AJAX requests.", zap.Int("count", n))
	}
	m.inflight = make(map[network.RequestID]struct{})
}

func (m *AjaxMonitor) handleEvent(ev interface{}) {
	switch e := ev.(type) {
	case *network.EventRequestWillBeSent:
		m.requestStarted(e.RequestID, e.Type)
	case *network.EventLoadingFinished:
		m.requestDone(e.RequestID)
	case *network.EventLoadingFailed:
		m.requestDone(e.RequestID)
	}
}

func (m *AjaxMonitor) requestStarted(id network.RequestID, typ network.ResourceType) {
	if typ != network.ResourceTypeXHR && typ != network.ResourceTypeFetch {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	// Redirects reuse the request ID, so this stays a single entry.
	m.inflight[id] = struct{}{}
}

func (m *AjaxMonitor) requestDone(id network.RequestID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.inflight, id)
}
