// Package connectivity tracks whether the upstream weather services are
// reachable. State changes are pushed to subscribers.
package connectivity

import (
	"context"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/i474232898/weathervision/internal/metrics"
	"go.uber.org/zap"
)

// Monitor holds the current online/offline state.
type Monitor struct {
	client   *resty.Client
	probeURL string
	metrics  *metrics.Metrics
	log      *zap.Logger

	mu        sync.RWMutex
	online    bool
	forced    bool
	listeners []func(online bool)
}

// NewMonitor starts in the online state. An empty probeURL disables probing.
func NewMonitor(probeURL string, timeout time.Duration, m *metrics.Metrics, log *zap.Logger) *Monitor {
	if log == nil {
		log = zap.NewNop()
	}
	m.SetOnline(true)
	return &Monitor{
		client:   resty.New().SetTimeout(timeout),
		probeURL: probeURL,
		metrics:  m,
		log:      log.Named("connectivity"),
		online:   true,
	}
}

func (m *Monitor) Online() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.online && !m.forced
}

// Subscribe registers fn for state transitions. fn runs on the goroutine
// that observed the change.
func (m *Monitor) Subscribe(fn func(online bool)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, fn)
}

// ForceOffline pins the monitor offline regardless of probes.
func (m *Monitor) ForceOffline(on bool) {
	m.mu.Lock()
	before := m.online && !m.forced
	m.forced = on
	after := m.online && !m.forced
	listeners := m.listeners
	m.mu.Unlock()
	m.notify(before, after, listeners)
}

// Set records an observed state and notifies subscribers on a transition.
func (m *Monitor) Set(online bool) {
	m.mu.Lock()
	before := m.online && !m.forced
	m.online = online
	after := m.online && !m.forced
	listeners := m.listeners
	m.mu.Unlock()
	m.notify(before, after, listeners)
}

func (m *Monitor) notify(before, after bool, listeners []func(bool)) {
	if before == after {
		return
	}
	m.metrics.SetOnline(after)
	m.log.Info("connectivity changed", zap.Bool("online", after))
	for _, fn := range listeners {
		fn(after)
	}
}

// Probe issues a HEAD request to the probe URL and records the result.
// Any HTTP response counts as online; only transport failures mean offline.
func (m *Monitor) Probe(ctx context.Context) bool {
	if m.probeURL == "" {
		return m.Online()
	}
	_, err := m.client.R().SetContext(ctx).Head(m.probeURL)
	if err != nil {
		m.log.Debug("probe failed", zap.String("url", m.probeURL), zap.Error(err))
	}
	m.Set(err == nil)
	return m.Online()
}
