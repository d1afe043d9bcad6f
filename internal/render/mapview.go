package render

import (
	"fmt"
	"sync"

	"github.com/i474232898/weathervision/internal/controller"
	"github.com/i474232898/weathervision/internal/format"
	"go.uber.org/zap"
)

// MapZoom is the zoom level used for a selected place.
const MapZoom = 10

// MapView is an external map widget. Its internals are opaque; it is only
// told where to look and where to put the marker.
type MapView interface {
	Center(lat, lon float64, zoom int) error
	Mark(lat, lon float64, label string) error
}

// Map drives a MapView. The view is created on the first render with the
// map tab active; until then, and after a failed init, renders are no-ops.
// A failed init is retried on the next map render.
type Map struct {
	init func() (MapView, error)
	log  *zap.Logger

	mu   sync.Mutex
	view MapView
	err  error
}

func NewMap(init func() (MapView, error), log *zap.Logger) *Map {
	if log == nil {
		log = zap.NewNop()
	}
	return &Map{init: init, log: log.Named("map")}
}

func (m *Map) Render(v controller.View) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.view == nil {
		if v.Tab != controller.TabMap {
			return
		}
		mv, err := m.init()
		if err != nil {
			m.err = err
			m.log.Warn("map unavailable", zap.Error(err))
			return
		}
		m.view, m.err = mv, nil
	}

	p := v.Place
	label := p.Title()
	if v.Snapshot != nil {
		label += " " + format.Temp(v.Snapshot.Current.Temperature, v.DisplayUnit)
	}
	if err := m.view.Center(p.Latitude, p.Longitude, MapZoom); err != nil {
		m.log.Warn("map center failed", zap.Error(err))
	}
	if err := m.view.Mark(p.Latitude, p.Longitude, label); err != nil {
		m.log.Warn("map marker failed", zap.Error(err))
	}
}

// View returns the initialised map view, or the last init error.
func (m *Map) View() (MapView, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.view, m.err
}

// TextMap is a MapView that describes the marker as text.
type TextMap struct {
	mu       sync.Mutex
	lat, lon float64
	zoom     int
	label    string
}

func (t *TextMap) Center(lat, lon float64, zoom int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lat, t.lon, t.zoom = lat, lon, zoom
	return nil
}

func (t *TextMap) Mark(lat, lon float64, label string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.label = label
	return nil
}

func (t *TextMap) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.label == "" {
		return format.Unknown
	}
	return fmt.Sprintf("📍 %s at %.4f, %.4f (zoom %d)", t.label, t.lat, t.lon, t.zoom)
}
