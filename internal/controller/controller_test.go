package controller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/i474232898/weathervision/internal/fallback"
	"github.com/i474232898/weathervision/internal/format"
	"github.com/i474232898/weathervision/internal/prefs"
	"github.com/i474232898/weathervision/internal/store"
	"github.com/i474232898/weathervision/internal/weather"
)

var (
	amsterdam = weather.Place{Name: "Amsterdam", Country: "NL", Latitude: 52.3676, Longitude: 4.9041}
	oslo      = weather.Place{Name: "Oslo", Latitude: 59.9139, Longitude: 10.7522}
	paris     = weather.Place{Name: "Paris", Country: "FR", Latitude: 48.8566, Longitude: 2.3522}
)

type fetchCall struct {
	place weather.Place
	unit  weather.Unit
}

type forecastFunc func(ctx context.Context, n int, p weather.Place, u weather.Unit) (weather.Snapshot, error)

type fakeForecast struct {
	fn      forecastFunc
	current func(p weather.Place, u weather.Unit) (weather.Current, error)

	mu    sync.Mutex
	calls []fetchCall
}

func (f *fakeForecast) Name() string { return "fake" }

func (f *fakeForecast) FetchForecast(ctx context.Context, p weather.Place, u weather.Unit) (weather.Snapshot, error) {
	f.mu.Lock()
	n := len(f.calls)
	f.calls = append(f.calls, fetchCall{p, u})
	f.mu.Unlock()
	return f.fn(ctx, n, p, u)
}

func (f *fakeForecast) FetchCurrent(ctx context.Context, p weather.Place, u weather.Unit) (weather.Current, error) {
	if f.current == nil {
		return weather.Current{}, errors.New("not configured")
	}
	return f.current(p, u)
}

func (f *fakeForecast) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeForecast) call(i int) fetchCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[i]
}

type fakeAir struct {
	aq  *weather.AirQuality
	err error
}

func (a fakeAir) FetchAirQuality(context.Context, weather.Place) (*weather.AirQuality, error) {
	return a.aq, a.err
}

type fakeConn struct{ online atomic.Bool }

func (c *fakeConn) Online() bool { return c.online.Load() }

type recorder struct {
	mu    sync.Mutex
	views []View
}

func (r *recorder) Render(v View) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.views = append(r.views, v)
}

func (r *recorder) all() []View {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]View(nil), r.views...)
}

type harness struct {
	c    *Controller
	fc   *fakeForecast
	mem  *store.MemoryStore
	fb   *fallback.Manager
	conn *fakeConn
	rec  *recorder
}

func newHarness(t *testing.T, fn forecastFunc, opts ...func(*Config)) *harness {
	t.Helper()
	h := &harness{
		fc:   &fakeForecast{fn: fn},
		mem:  store.NewMemoryStore(0),
		conn: &fakeConn{},
		rec:  &recorder{},
	}
	h.conn.online.Store(true)
	p := prefs.New(h.mem, nil)
	h.fb = fallback.NewManager(p, nil, nil)
	cfg := Config{
		Forecast:     h.fc,
		Air:          fakeAir{aq: &weather.AirQuality{Index: 30, Label: "Good"}},
		Fallback:     h.fb,
		Prefs:        p,
		Connectivity: h.conn,
		Timeout:      time.Second,
	}
	for _, o := range opts {
		o(&cfg)
	}
	h.c = New(cfg)
	h.c.AddRenderer(h.rec)
	return h
}

// snapshotOn builds a snapshot covering days, observed at 14:00 on the first.
func snapshotOn(temp float64, days ...string) weather.Snapshot {
	var s weather.Snapshot
	for _, d := range days {
		start, err := time.Parse(weather.DateLayout, d)
		if err != nil {
			panic(err)
		}
		for h := 0; h < 24; h++ {
			s.Hourly = append(s.Hourly, weather.Hour{
				Time:        start.Add(time.Duration(h) * time.Hour),
				Temperature: weather.Float(temp),
				WindSpeed:   weather.Float(3),
			})
		}
		s.Daily = append(s.Daily, weather.Day{Date: d, TempMax: weather.Float(temp + 3), TempMin: weather.Float(temp - 3)})
	}
	obs, _ := time.Parse(weather.DateLayout, days[0])
	s.Current = weather.Current{ObservedAt: obs.Add(14 * time.Hour), Temperature: weather.Float(temp)}
	return s
}

func constant(temp float64) forecastFunc {
	return func(context.Context, int, weather.Place, weather.Unit) (weather.Snapshot, error) {
		return snapshotOn(temp, "2024-01-15", "2024-01-16"), nil
	}
}

func temperature(v View) string {
	if v.Snapshot == nil {
		return format.Temp(nil, v.DisplayUnit)
	}
	return format.Temp(v.Snapshot.Current.Temperature, v.DisplayUnit)
}

func TestRefresh_LiveCommitsAndRenders(t *testing.T) {
	h := newHarness(t, constant(12))

	if out := h.c.SelectPlace(context.Background(), amsterdam); out != OutcomeLive {
		t.Fatalf("outcome = %s, want live", out)
	}

	v := h.c.View()
	if temperature(v) != "12°C" || v.AirQuality == nil || v.Refreshing || v.ShowingSaved {
		t.Errorf("unexpected view: temp=%s aq=%v refreshing=%v saved=%v", temperature(v), v.AirQuality, v.Refreshing, v.ShowingSaved)
	}
	if v.SelectedDay != "2024-01-15" || v.SelectedHour != NoHour {
		t.Errorf("unexpected selection %q/%d", v.SelectedDay, v.SelectedHour)
	}

	rec, ok := h.fb.LoadFallback(context.Background())
	if !ok || !weather.SamePlace(rec.Place, amsterdam) {
		t.Fatalf("expected committed fallback for amsterdam, got %+v", rec)
	}

	views := h.rec.all()
	last := views[len(views)-1]
	if last.Snapshot == nil || last.LastOutcome != OutcomeLive {
		t.Errorf("last rendered view not settled: %+v", last)
	}
	for i := 1; i < len(views); i++ {
		if views[i].Seq <= views[i-1].Seq {
			t.Fatalf("renderers saw views out of order: %d after %d", views[i].Seq, views[i-1].Seq)
		}
	}
}

func TestRefresh_ErrorKeepsLastGoodData(t *testing.T) {
	h := newHarness(t, func(_ context.Context, n int, _ weather.Place, _ weather.Unit) (weather.Snapshot, error) {
		if n == 0 {
			return snapshotOn(12, "2024-01-15"), nil
		}
		return weather.Snapshot{}, fmt.Errorf("%w: 502", weather.ErrTransient)
	})
	ctx := context.Background()
	h.c.SelectPlace(ctx, amsterdam)

	if out := h.c.Refresh(ctx); out != OutcomeError {
		t.Fatalf("outcome = %s, want error", out)
	}
	v := h.c.View()
	if temperature(v) != "12°C" {
		t.Errorf("previous data should stay, got %s", temperature(v))
	}
	if v.Notice == nil || v.Notice.Kind != NoticeError || v.Notice.Blocking {
		t.Errorf("expected non-blocking error notice, got %+v", v.Notice)
	}

	h.c.DismissNotice()
	if h.c.View().Notice != nil {
		t.Error("expected notice dismissed")
	}
}

func TestRefresh_TimeoutSettles(t *testing.T) {
	h := newHarness(t, func(ctx context.Context, _ int, _ weather.Place, _ weather.Unit) (weather.Snapshot, error) {
		<-ctx.Done()
		return weather.Snapshot{}, fmt.Errorf("%w: %w", weather.ErrTransient, ctx.Err())
	}, func(c *Config) { c.Timeout = 20 * time.Millisecond })

	if out := h.c.Refresh(context.Background()); out != OutcomeError {
		t.Fatalf("outcome = %s, want error", out)
	}
	if v := h.c.View(); v.Refreshing {
		t.Error("controller stuck refreshing after timeout")
	}
}

func TestRefresh_AirQualityFailureIsContained(t *testing.T) {
	h := newHarness(t, constant(12), func(c *Config) {
		c.Air = fakeAir{err: errors.New("no coverage")}
	})
	if out := h.c.Refresh(context.Background()); out != OutcomeLive {
		t.Fatalf("outcome = %s, want live", out)
	}
	if v := h.c.View(); v.AirQuality != nil || v.Snapshot == nil {
		t.Errorf("unexpected view aq=%v snapshot=%v", v.AirQuality, v.Snapshot != nil)
	}
}

func TestSelectedDay_ResetInvariant(t *testing.T) {
	var days [][]string
	days = append(days,
		[]string{"2024-01-15", "2024-01-16", "2024-01-17"},
		[]string{"2024-01-16", "2024-01-17", "2024-01-18"},
		[]string{"2024-01-18", "2024-01-19"},
	)
	h := newHarness(t, func(_ context.Context, n int, _ weather.Place, _ weather.Unit) (weather.Snapshot, error) {
		return snapshotOn(10, days[n]...), nil
	})
	ctx := context.Background()

	h.c.Refresh(ctx)
	if got := h.c.SelectDay("2024-01-17"); got != "2024-01-17" {
		t.Fatalf("SelectDay = %q", got)
	}
	if got := h.c.SelectHour(5); got != 5 {
		t.Fatalf("SelectHour = %d", got)
	}

	h.c.Refresh(ctx)
	v := h.c.View()
	if v.SelectedDay != "2024-01-17" || v.SelectedHour != 5 {
		t.Errorf("selection should survive when the day still exists, got %q/%d", v.SelectedDay, v.SelectedHour)
	}

	h.c.Refresh(ctx)
	v = h.c.View()
	if v.SelectedDay != "2024-01-18" {
		t.Errorf("expected reset to observation day 2024-01-18, got %q", v.SelectedDay)
	}
	if v.SelectedHour != NoHour {
		t.Errorf("expected hour reset, got %d", v.SelectedHour)
	}
}

func TestSelectDay_WithoutFetch(t *testing.T) {
	h := newHarness(t, constant(12))
	h.c.Refresh(context.Background())

	if got := h.c.SelectDay("2030-01-01"); got != "2024-01-15" {
		t.Errorf("invalid day should reset to the observation day, got %q", got)
	}
	if got := h.c.SelectHour(99); got != NoHour {
		t.Errorf("out-of-range hour should clear selection, got %d", got)
	}
	if h.fc.count() != 1 {
		t.Errorf("selection must not fetch, got %d fetches", h.fc.count())
	}
}

func TestStaleResponseIsDiscarded(t *testing.T) {
	started := make(chan int, 2)
	releaseA := make(chan struct{})
	h := newHarness(t, func(_ context.Context, n int, p weather.Place, _ weather.Unit) (weather.Snapshot, error) {
		started <- n
		if n == 0 {
			<-releaseA
			return snapshotOn(1, "2024-01-15"), nil
		}
		return snapshotOn(2, "2024-01-15"), nil
	})
	ctx := context.Background()

	doneA := make(chan Outcome, 1)
	go func() { doneA <- h.c.SelectPlace(ctx, paris) }()
	<-started

	if out := h.c.SelectPlace(ctx, oslo); out != OutcomeLive {
		t.Fatalf("cycle B outcome = %s, want live", out)
	}
	<-started
	close(releaseA)

	if out := <-doneA; out != OutcomeStale {
		t.Fatalf("cycle A outcome = %s, want stale", out)
	}

	v := h.c.View()
	if !weather.SamePlace(v.Place, oslo) || temperature(v) != "2°C" {
		t.Errorf("late response overwrote newer state: place=%s temp=%s", v.Place.Name, temperature(v))
	}
	rec, _ := h.fb.LoadFallback(ctx)
	if !weather.SamePlace(rec.Place, oslo) {
		t.Errorf("late response reached the fallback slot: %s", rec.Place.Name)
	}
	for _, rv := range h.rec.all() {
		if rv.Snapshot != nil && weather.SamePlace(rv.Place, paris) {
			t.Error("renderers saw the superseded result")
		}
	}
}

func TestSamePlaceSelectionCoalesces(t *testing.T) {
	started := make(chan int, 4)
	gate := make(chan struct{})
	h := newHarness(t, func(_ context.Context, n int, _ weather.Place, _ weather.Unit) (weather.Snapshot, error) {
		started <- n
		if n == 0 {
			<-gate
		}
		return snapshotOn(float64(n), "2024-01-15"), nil
	})
	ctx := context.Background()

	done := make(chan Outcome, 1)
	go func() { done <- h.c.SelectPlace(ctx, paris) }()
	<-started

	named := paris
	named.Name = "Paris, Île-de-France"
	if out := h.c.SelectPlace(ctx, named); out != OutcomeCoalesced {
		t.Fatalf("same-place selection outcome = %s, want coalesced", out)
	}
	select {
	case n := <-started:
		t.Fatalf("fetch %d started while the first was still running", n)
	default:
	}
	close(gate)

	if out := <-done; out != OutcomeLive {
		t.Fatalf("outcome = %s, want live", out)
	}
	if n := h.fc.count(); n != 2 {
		t.Errorf("expected one follow-up fetch, got %d fetches", n)
	}
	if !weather.SamePlace(h.fc.call(1).place, paris) {
		t.Errorf("follow-up fetched %+v", h.fc.call(1).place)
	}
}

func TestTriggersCoalesce(t *testing.T) {
	started := make(chan int, 4)
	gate := make(chan struct{})
	h := newHarness(t, func(_ context.Context, n int, _ weather.Place, _ weather.Unit) (weather.Snapshot, error) {
		started <- n
		if n == 0 {
			<-gate
		}
		return snapshotOn(float64(n), "2024-01-15"), nil
	})
	ctx := context.Background()

	done := make(chan Outcome, 1)
	go func() { done <- h.c.Refresh(ctx) }()
	<-started

	for _, trigger := range []func(context.Context) Outcome{h.c.Tick, h.c.Refresh, h.c.Retry} {
		if out := trigger(ctx); out != OutcomeCoalesced {
			t.Fatalf("mid-cycle trigger outcome = %s, want coalesced", out)
		}
	}
	close(gate)

	if out := <-done; out != OutcomeLive {
		t.Fatalf("outcome = %s, want live", out)
	}
	if n := h.fc.count(); n != 2 {
		t.Fatalf("expected exactly one follow-up fetch, got %d fetches", n)
	}
	if temperature(h.c.View()) != "1°C" {
		t.Errorf("follow-up result should be displayed, got %s", temperature(h.c.View()))
	}
}

func TestFavoriteRoundTrip(t *testing.T) {
	h := newHarness(t, constant(12))
	ctx := context.Background()

	if !h.c.ToggleFavorite(ctx, oslo) {
		t.Fatal("expected oslo added")
	}
	raw, err := h.mem.Get(ctx, "wv:favorites")
	if err != nil {
		t.Fatal(err)
	}
	var stored []weather.Place
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		t.Fatal(err)
	}
	if len(stored) != 1 || stored[0].Name != "Oslo" || stored[0].Latitude != 59.9139 || stored[0].Longitude != 10.7522 {
		t.Fatalf("unexpected persisted favorites %s", raw)
	}

	if h.c.ToggleFavorite(ctx, oslo) {
		t.Fatal("expected oslo removed")
	}
	raw, _ = h.mem.Get(ctx, "wv:favorites")
	if raw != "[]" {
		t.Errorf("persisted favorites = %s, want []", raw)
	}
	if h.fc.count() != 0 {
		t.Error("toggling favorites must not fetch")
	}
}

func TestOfflineBoot_RendersSavedSnapshot(t *testing.T) {
	h := newHarness(t, constant(30))
	ctx := context.Background()
	h.fb.Commit(ctx, amsterdam, snapshotOn(12, "2024-01-15"), nil, weather.UnitMetric)
	h.conn.online.Store(false)

	// A fresh process over the same storage.
	p := prefs.New(h.mem, nil)
	c := New(Config{Forecast: h.fc, Fallback: fallback.NewManager(p, nil, nil), Prefs: p, Connectivity: h.conn})
	rec := &recorder{}
	c.AddRenderer(rec)

	if out := c.Boot(ctx); out != OutcomeFallback {
		t.Fatalf("outcome = %s, want fallback", out)
	}
	views := rec.all()
	v := views[len(views)-1]
	if temperature(v) != "12°C" {
		t.Errorf("rendered temperature = %s, want 12°C", temperature(v))
	}
	if !v.Offline || !v.ShowingSaved || v.Notice == nil || v.Notice.Kind != NoticeOffline || v.Notice.Blocking {
		t.Errorf("expected offline indicator, got offline=%v saved=%v notice=%+v", v.Offline, v.ShowingSaved, v.Notice)
	}
	if h.fc.count() != 0 {
		t.Errorf("network layer called %d times while offline", h.fc.count())
	}
}

func TestOfflineBoot_RecordWithoutPlaceKeepsSavedPlace(t *testing.T) {
	h := newHarness(t, constant(12))
	ctx := context.Background()
	p := prefs.New(h.mem, nil)
	if err := p.SetLastPlace(ctx, paris); err != nil {
		t.Fatal(err)
	}
	snap, err := json.Marshal(snapshotOn(12, "2024-01-15"))
	if err != nil {
		t.Fatal(err)
	}
	raw := fmt.Sprintf(`{"snapshot":%s,"unit":"metric","savedAtEpochMillis":1}`, snap)
	_ = h.mem.Set(ctx, prefs.Prefix+prefs.KeyLastForecast, raw)
	h.conn.online.Store(false)

	if out := h.c.Boot(ctx); out != OutcomeUnavailable {
		t.Fatalf("outcome = %s, want unavailable", out)
	}
	if v := h.c.View(); !weather.SamePlace(v.Place, paris) {
		t.Errorf("saved place replaced by %+v", v.Place)
	}

	h.conn.online.Store(true)
	if out := h.c.ConnectivityChanged(ctx, true); out != OutcomeLive {
		t.Fatalf("reconnect outcome = %s, want live", out)
	}
	if got := h.fc.call(0).place; !weather.SamePlace(got, paris) {
		t.Errorf("first live fetch after reconnect went to %+v", got)
	}
}

func TestOffline_NoSavedDataIsUnavailable(t *testing.T) {
	h := newHarness(t, constant(12))
	h.conn.online.Store(false)

	if out := h.c.Refresh(context.Background()); out != OutcomeUnavailable {
		t.Fatalf("outcome = %s, want unavailable", out)
	}
	v := h.c.View()
	if !v.Blocked() || v.Snapshot != nil {
		t.Errorf("expected blocking notice without panels, got %+v", v.Notice)
	}
	h.c.DismissNotice()
	if !h.c.View().Blocked() {
		t.Error("blocking notice must not be dismissible")
	}
	if h.fc.count() != 0 {
		t.Error("no fetch expected while offline")
	}
}

func TestUnitSwitch_RefetchesWithoutConversion(t *testing.T) {
	started := make(chan weather.Unit, 2)
	gate := make(chan struct{})
	h := newHarness(t, func(_ context.Context, n int, _ weather.Place, u weather.Unit) (weather.Snapshot, error) {
		started <- u
		if n == 0 {
			return snapshotOn(12, "2024-01-15"), nil
		}
		<-gate
		return snapshotOn(53.6, "2024-01-15"), nil
	})
	ctx := context.Background()
	h.c.SelectPlace(ctx, amsterdam)
	<-started

	done := make(chan Outcome, 1)
	go func() { done <- h.c.SetUnit(ctx, weather.UnitImperial) }()
	if u := <-started; u != weather.UnitImperial {
		t.Fatalf("re-fetch used unit %s", u)
	}

	pending := h.c.View()
	if got := temperature(pending); got != format.Unknown {
		t.Errorf("temperature during unit switch = %s, want %s", got, format.Unknown)
	}
	for _, v := range h.rec.all() {
		if v.Unit == weather.UnitImperial && v.Snapshot != nil && v.DisplayUnit != weather.UnitImperial {
			t.Fatal("rendered metric values under the imperial preference")
		}
	}

	close(gate)
	if out := <-done; out != OutcomeLive {
		t.Fatalf("outcome = %s, want live", out)
	}
	if got := temperature(h.c.View()); got != "54°F" {
		t.Errorf("temperature after switch = %s, want 54°F", got)
	}
	if h.c.SetUnit(ctx, weather.UnitImperial) != OutcomeSkipped {
		t.Error("setting the same unit should not fetch")
	}
	if raw, _ := h.mem.Get(ctx, "wv:unit"); raw != "imperial" {
		t.Errorf("unit not persisted, got %q", raw)
	}
}

func TestTick_RespectsVisibilityAndAutoRefresh(t *testing.T) {
	h := newHarness(t, constant(12))
	ctx := context.Background()

	h.c.SetVisible(ctx, false)
	if out := h.c.Tick(ctx); out != OutcomeSkipped {
		t.Errorf("hidden tick outcome = %s", out)
	}
	if out := h.c.SetVisible(ctx, true); out != OutcomeLive {
		t.Errorf("regaining visibility should refresh, got %s", out)
	}

	h.c.ToggleAutoRefresh(ctx)
	if out := h.c.Tick(ctx); out != OutcomeSkipped {
		t.Errorf("tick with auto-refresh off = %s", out)
	}
	h.c.ToggleAutoRefresh(ctx)
	if out := h.c.Tick(ctx); out != OutcomeLive {
		t.Errorf("tick = %s, want live", out)
	}
	if h.fc.count() != 2 {
		t.Errorf("expected 2 fetches, got %d", h.fc.count())
	}
}

func TestConnectivityChanged(t *testing.T) {
	h := newHarness(t, constant(12))
	ctx := context.Background()

	h.conn.online.Store(false)
	if out := h.c.ConnectivityChanged(ctx, false); out != OutcomeSkipped || !h.c.View().Offline {
		t.Errorf("going offline should only re-render, got %s", out)
	}
	h.conn.online.Store(true)
	if out := h.c.ConnectivityChanged(ctx, true); out != OutcomeLive {
		t.Errorf("coming online should refresh, got %s", out)
	}
}

func TestUseMyLocation(t *testing.T) {
	t.Run("unsupported", func(t *testing.T) {
		h := newHarness(t, constant(12))
		if out := h.c.UseMyLocation(context.Background()); out != OutcomeLive {
			t.Fatalf("outcome = %s", out)
		}
		v := h.c.View()
		if !weather.SamePlace(v.Place, DefaultPlace) || v.Notice == nil || v.Notice.Kind != NoticeInfo {
			t.Errorf("expected default place with notice, got %s %+v", v.Place.Name, v.Notice)
		}
	})

	t.Run("located", func(t *testing.T) {
		h := newHarness(t, constant(12), func(c *Config) {
			c.Locator = fixedLocator{lat: 52.0907, lon: 5.1214}
			c.Reverse = namedReverse("Utrecht")
		})
		h.c.UseMyLocation(context.Background())
		v := h.c.View()
		if v.Place.Name != "Utrecht" || v.Place.Latitude != 52.0907 {
			t.Errorf("unexpected place %+v", v.Place)
		}
		if call := h.fc.call(0); call.place.Longitude != 5.1214 {
			t.Errorf("fetched wrong coordinates %+v", call.place)
		}
	})
}

type fixedLocator struct{ lat, lon float64 }

func (l fixedLocator) Locate(context.Context) (float64, float64, error) { return l.lat, l.lon, nil }

type namedReverse string

func (n namedReverse) Reverse(_ context.Context, lat, lon float64) (weather.Place, error) {
	return weather.Place{Name: string(n), Latitude: lat, Longitude: lon}, nil
}

func TestDashboard_AllSettled(t *testing.T) {
	h := newHarness(t, constant(12))
	h.fc.current = func(p weather.Place, _ weather.Unit) (weather.Current, error) {
		if p.Name == "Paris" {
			return weather.Current{}, weather.ErrTransient
		}
		return weather.Current{Temperature: weather.Float(p.Latitude)}, nil
	}
	ctx := context.Background()
	for _, p := range []weather.Place{amsterdam, paris, oslo} {
		h.c.ToggleFavorite(ctx, p)
	}

	cards := h.c.RefreshDashboard(ctx)
	if len(cards) != 3 {
		t.Fatalf("expected 3 cards, got %d", len(cards))
	}
	v := h.c.View()
	byName := map[string]DashboardCard{}
	for _, c := range v.Dashboard {
		byName[c.Place.Name] = c
	}
	if c := byName["Paris"]; !c.Failed || c.Current != nil {
		t.Errorf("paris card should be failed, got %+v", c)
	}
	if c := byName["Oslo"]; c.Failed || c.Current == nil {
		t.Errorf("oslo card should be filled, got %+v", c)
	}
	if _, ok := h.fb.Last(); ok {
		t.Error("dashboard fetches must not write the fallback slot")
	}
	if h.fc.count() != 0 {
		t.Error("dashboard must not run full forecast fetches")
	}
}

func TestDashboard_CapsAtTwelve(t *testing.T) {
	h := newHarness(t, constant(12))
	var fetched atomic.Int32
	h.fc.current = func(weather.Place, weather.Unit) (weather.Current, error) {
		fetched.Add(1)
		return weather.Current{}, nil
	}
	ctx := context.Background()
	for i := 0; i < 20; i++ {
		h.c.ToggleFavorite(ctx, weather.Place{Latitude: float64(i), Longitude: float64(i)})
	}
	h.c.RefreshDashboard(ctx)
	if fetched.Load() != DashboardSize {
		t.Errorf("expected %d mini-fetches, got %d", DashboardSize, fetched.Load())
	}
	if n := len(h.c.View().Dashboard); n != DashboardSize {
		t.Errorf("expected %d cards, got %d", DashboardSize, n)
	}
}

func TestPreferencesPersist(t *testing.T) {
	h := newHarness(t, constant(12))
	ctx := context.Background()

	if th := h.c.CycleTheme(ctx); th != prefs.ThemeDark {
		t.Errorf("theme = %s, want dark", th)
	}
	if !h.c.ToggleSound(ctx) || !h.c.ToggleA11y(ctx) {
		t.Error("expected flags on")
	}
	for key, want := range map[string]string{"wv:theme": "dark", "wv:sound": "1", "wv:a11y": "1"} {
		if got, _ := h.mem.Get(ctx, key); got != want {
			t.Errorf("%s = %q, want %q", key, got, want)
		}
	}
	if h.fc.count() != 0 {
		t.Error("preference toggles must not fetch")
	}
}

func TestBoot_RestoresState(t *testing.T) {
	h := newHarness(t, constant(12))
	ctx := context.Background()
	p := prefs.New(h.mem, nil)
	_ = p.SetLastPlace(ctx, oslo)
	_ = p.SetUnit(ctx, weather.UnitImperial)
	_ = p.SetFavorites(ctx, []weather.Place{paris})

	if out := h.c.Boot(ctx); out != OutcomeLive {
		t.Fatalf("outcome = %s", out)
	}
	if call := h.fc.call(0); !weather.SamePlace(call.place, oslo) || call.unit != weather.UnitImperial {
		t.Errorf("boot fetched %+v", call)
	}
	views := h.rec.all()
	if len(views[0].Favorites) != 1 || views[0].Snapshot != nil {
		t.Error("favorites should render before the first fetch settles")
	}
}
