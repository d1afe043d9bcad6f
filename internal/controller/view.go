package controller

import (
	"time"

	"github.com/i474232898/weathervision/internal/prefs"
	"github.com/i474232898/weathervision/internal/weather"
)

// NoHour means no hour is selected.
const NoHour = -1

// Tab is the active view.
type Tab string

const (
	TabForecast  Tab = "forecast"
	TabHourly    Tab = "hourly"
	TabDaily     Tab = "daily"
	TabDashboard Tab = "dashboard"
	TabMap       Tab = "map"
)

func validTab(t Tab) bool {
	switch t {
	case TabForecast, TabHourly, TabDaily, TabDashboard, TabMap:
		return true
	}
	return false
}

// NoticeKind classifies a user-facing notice.
type NoticeKind string

const (
	NoticeInfo    NoticeKind = "info"
	NoticeError   NoticeKind = "error"
	NoticeOffline NoticeKind = "offline"
)

// Notice is a transient message. A blocking notice replaces the panels.
type Notice struct {
	Kind     NoticeKind `json:"kind"`
	Message  string     `json:"message"`
	Blocking bool       `json:"blocking"`
}

// DashboardCard is the result of one favorite's mini-fetch. Current is nil
// when the fetch failed or has not run yet.
type DashboardCard struct {
	Place   weather.Place    `json:"place"`
	Current *weather.Current `json:"current,omitempty"`
	Failed  bool             `json:"failed,omitempty"`
}

// View is the read-only state handed to renderers. Pointed-to snapshots and
// slices are never mutated after they are published, so a View may be kept
// and read from any goroutine.
type View struct {
	Seq        uint64 `json:"seq"`
	Generation uint64 `json:"generation"`

	Place weather.Place `json:"place"`
	// Unit is the preference; DisplayUnit is the unit Snapshot was fetched in.
	Unit        weather.Unit        `json:"unit"`
	DisplayUnit weather.Unit        `json:"displayUnit"`
	Snapshot    *weather.Snapshot   `json:"snapshot,omitempty"`
	AirQuality  *weather.AirQuality `json:"airQuality,omitempty"`

	SelectedDay  string `json:"selectedDay"`
	SelectedHour int    `json:"selectedHour"`
	Tab          Tab    `json:"tab"`

	Refreshing   bool      `json:"refreshing"`
	LastOutcome  Outcome   `json:"lastOutcome,omitempty"`
	Offline      bool      `json:"offline"`
	ShowingSaved bool      `json:"showingSaved"`
	SavedAt      time.Time `json:"savedAt,omitempty"`
	Notice       *Notice   `json:"notice,omitempty"`

	Favorites     []weather.Place `json:"favorites"`
	IsFavorite    bool            `json:"isFavorite"`
	Dashboard     []DashboardCard `json:"dashboard"`
	DashboardUnit weather.Unit    `json:"dashboardUnit"`

	Theme prefs.Theme `json:"theme"`
	Flags prefs.Flags `json:"flags"`

	Insights *Insights `json:"insights,omitempty"`
}

// Blocked reports whether panels must be replaced by the notice.
func (v View) Blocked() bool {
	return v.Notice != nil && v.Notice.Blocking
}

// Day returns the selected daily row, if data is present.
func (v View) Day() (weather.Day, bool) {
	if v.Snapshot == nil {
		return weather.Day{}, false
	}
	return v.Snapshot.DayByDate(v.SelectedDay)
}

// Hours returns the hourly rows of the selected day.
func (v View) Hours() []weather.Hour {
	if v.Snapshot == nil {
		return nil
	}
	return v.Snapshot.HoursOn(v.SelectedDay)
}

// Hour returns the selected hour, if any.
func (v View) Hour() (weather.Hour, bool) {
	hours := v.Hours()
	if v.SelectedHour < 0 || v.SelectedHour >= len(hours) {
		return weather.Hour{}, false
	}
	return hours[v.SelectedHour], true
}

// Renderer projects a View onto an output. Implementations must not retain
// or modify shared state.
type Renderer interface {
	Render(v View)
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(v View)

func (f RendererFunc) Render(v View) { f(v) }
