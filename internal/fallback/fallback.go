// Package fallback owns the last-known-good forecast. It keeps one durable
// record, overwritten on every successful fetch, and decides whether a
// refresh goes to the network or to that record.
package fallback

import (
	"context"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/i474232898/weathervision/internal/metrics"
	"github.com/i474232898/weathervision/internal/prefs"
	"github.com/i474232898/weathervision/internal/weather"
	"go.uber.org/zap"
)

// PersistedSnapshot is the durable fallback record.
type PersistedSnapshot struct {
	Place              weather.Place       `json:"place" validate:"required"`
	Snapshot           weather.Snapshot    `json:"snapshot"`
	AirQuality         *weather.AirQuality `json:"airQuality,omitempty"`
	Unit               weather.Unit        `json:"unit" validate:"oneof=metric imperial"`
	SavedAtEpochMillis int64               `json:"savedAtEpochMillis" validate:"gt=0"`
}

// SavedAt returns the save time.
func (p PersistedSnapshot) SavedAt() time.Time {
	return time.UnixMilli(p.SavedAtEpochMillis)
}

// StrategyKind is the outcome of DecideStrategy.
type StrategyKind int

const (
	Live StrategyKind = iota
	Fallback
	Unavailable
)

func (k StrategyKind) String() string {
	switch k {
	case Live:
		return "live"
	case Fallback:
		return "fallback"
	default:
		return "unavailable"
	}
}

// Strategy tells the controller where a cycle gets its data. Snapshot is set
// only for Fallback.
type Strategy struct {
	Kind     StrategyKind
	Snapshot *PersistedSnapshot
}

// Decide is the pure decision rule. Online always goes live; offline uses
// the stored record if there is one, for whatever place it was saved.
func Decide(online bool, stored *PersistedSnapshot) Strategy {
	if online {
		return Strategy{Kind: Live}
	}
	if stored != nil {
		return Strategy{Kind: Fallback, Snapshot: stored}
	}
	return Strategy{Kind: Unavailable}
}

// Manager is the only writer of the durable slot.
type Manager struct {
	prefs    *prefs.Store
	validate *validator.Validate
	metrics  *metrics.Metrics
	log      *zap.Logger
	now      func() time.Time

	mu   sync.RWMutex
	last *PersistedSnapshot
}

func NewManager(p *prefs.Store, m *metrics.Metrics, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{
		prefs:    p,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		metrics:  m,
		log:      log.Named("fallback"),
		now:      time.Now,
	}
}

// Commit records a successful fetch, in memory and then durably. A failed
// durable write is logged and otherwise ignored.
func (m *Manager) Commit(ctx context.Context, place weather.Place, snap weather.Snapshot, aq *weather.AirQuality, unit weather.Unit) PersistedSnapshot {
	rec := PersistedSnapshot{
		Place:              place,
		Snapshot:           snap,
		AirQuality:         aq,
		Unit:               unit,
		SavedAtEpochMillis: m.now().UnixMilli(),
	}

	m.mu.Lock()
	m.last = &rec
	m.mu.Unlock()

	if err := m.prefs.SetJSON(ctx, prefs.KeyLastForecast, rec); err != nil {
		m.metrics.PersistFailed()
		m.log.Warn("fallback not persisted", zap.String("place", place.Title()), zap.Error(err))
	}
	return rec
}

// LoadFallback returns the durable record, or the in-memory one when the
// store is empty or unusable. A record that fails validation is absent.
func (m *Manager) LoadFallback(ctx context.Context) (*PersistedSnapshot, bool) {
	var rec PersistedSnapshot
	if m.prefs.GetJSON(ctx, prefs.KeyLastForecast, &rec) {
		err := m.validate.Struct(rec)
		if err == nil {
			err = rec.Snapshot.Check()
		}
		if err != nil {
			m.log.Warn("discarding invalid fallback record", zap.Error(err))
		} else {
			return &rec, true
		}
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.last == nil {
		return nil, false
	}
	cp := *m.last
	return &cp, true
}

// DecideStrategy reads the durable slot only when offline.
func (m *Manager) DecideStrategy(ctx context.Context, online bool) Strategy {
	if online {
		return Decide(true, nil)
	}
	rec, _ := m.LoadFallback(ctx)
	return Decide(false, rec)
}

// Last returns the most recent commit of this process.
func (m *Manager) Last() (PersistedSnapshot, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.last == nil {
		return PersistedSnapshot{}, false
	}
	return *m.last, true
}
