package render

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/i474232898/weathervision/internal/controller"
	"github.com/i474232898/weathervision/internal/fallback"
	"github.com/i474232898/weathervision/internal/prefs"
	"github.com/i474232898/weathervision/internal/store"
	"github.com/i474232898/weathervision/internal/weather"
)

var plain = NewStyles(prefs.ThemeAuto, true)

var amsterdam = weather.Place{Name: "Amsterdam", Country: "NL", Latitude: 52.3676, Longitude: 4.9041}

func sampleSnapshot() *weather.Snapshot {
	start := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	s := &weather.Snapshot{
		Current: weather.Current{
			ObservedAt:  start.Add(14*time.Hour + 20*time.Minute),
			Temperature: weather.Float(12),
			WeatherCode: weather.Int(61),
			WindSpeed:   weather.Float(5),
			IsDaytime:   true,
		},
		Daily: []weather.Day{
			{Date: "2024-01-15", TempMax: weather.Float(13), TempMin: weather.Float(6), PrecipitationProbabilityMax: weather.Float(70)},
			{Date: "2024-01-16", TempMax: weather.Float(9), TempMin: weather.Float(2)},
		},
	}
	for h := 0; h < 48; h++ {
		s.Hourly = append(s.Hourly, weather.Hour{
			Time:                     start.Add(time.Duration(h) * time.Hour),
			Temperature:              weather.Float(float64(h % 24)),
			PrecipitationProbability: weather.Float(float64(h)),
		})
	}
	return s
}

func liveView() controller.View {
	return controller.View{
		Place:        amsterdam,
		Unit:         weather.UnitMetric,
		DisplayUnit:  weather.UnitMetric,
		Snapshot:     sampleSnapshot(),
		SelectedDay:  "2024-01-15",
		SelectedHour: controller.NoHour,
		Tab:          controller.TabForecast,
		Flags:        prefs.Flags{A11y: true},
	}
}

type fixedConn bool

func (c fixedConn) Online() bool { return bool(c) }

func TestScreen_OfflineBootShowsSavedTemperature(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemoryStore(0)
	p := prefs.New(mem, nil)
	fallback.NewManager(p, nil, nil).Commit(ctx, amsterdam, *sampleSnapshot(), nil, weather.UnitMetric)

	// Restart over the same storage with no network.
	p = prefs.New(mem, nil)
	c := controller.New(controller.Config{
		Fallback:     fallback.NewManager(p, nil, nil),
		Prefs:        p,
		Connectivity: fixedConn(false),
	})
	var screen string
	c.AddRenderer(controller.RendererFunc(func(v controller.View) {
		screen = Terminal{}.Screen(v)
	}))

	if out := c.Boot(ctx); out != controller.OutcomeFallback {
		t.Fatalf("outcome = %s", out)
	}
	if !strings.Contains(screen, "12°C") || !strings.Contains(screen, "Offline") {
		t.Errorf("expected saved temperature and offline indicator:\n%s", screen)
	}
}

func TestCurrent_PendingUnitSwitchShowsUnknown(t *testing.T) {
	v := liveView()
	v.Unit = weather.UnitImperial
	v.Snapshot = nil
	v.Refreshing = true

	out := Current(v, plain)
	if strings.Contains(out, "°C") || strings.Contains(out, "°F") {
		t.Errorf("no temperature may render before the re-fetch settles:\n%s", out)
	}
	if !strings.Contains(out, "—") || !strings.Contains(out, "Updating") {
		t.Errorf("expected unknown placeholders and refreshing status:\n%s", out)
	}
}

func TestCurrent_AbsentValuesAreUnknown(t *testing.T) {
	out := Current(liveView(), plain)
	for _, want := range []string{"12°C", "Slight rain", "Humidity: —", "Pressure: —", "Air quality: —", "Wind: 5 m/s", "Observed 14:20"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
}

func TestScreen_BlockingNoticeReplacesPanels(t *testing.T) {
	v := liveView()
	v.Snapshot = nil
	v.Notice = &controller.Notice{Kind: controller.NoticeOffline, Message: "no saved forecast", Blocking: true}

	out := Terminal{}.Screen(v)
	if !strings.Contains(out, "no saved forecast") {
		t.Errorf("notice missing:\n%s", out)
	}
	if strings.Contains(out, "Feels like") {
		t.Errorf("panels must not render behind a blocking notice:\n%s", out)
	}
	if Hourly(v, plain) != "" || Daily(v, plain) != "" {
		t.Error("blocked views render no hourly or daily panels")
	}
}

func TestSparkline(t *testing.T) {
	got := Sparkline([]*float64{weather.Float(0), weather.Float(5), weather.Float(10), nil})
	if got != "▁▅█ " {
		t.Errorf("Sparkline = %q", got)
	}
	if got := Sparkline([]*float64{weather.Float(3), weather.Float(3)}); got != "▅▅" {
		t.Errorf("flat Sparkline = %q", got)
	}
}

func TestHourly_SelectedHour(t *testing.T) {
	v := liveView()
	v.SelectedHour = 3

	out := Hourly(v, plain)
	if !strings.Contains(out, "* 03:00") {
		t.Errorf("selected hour not marked:\n%s", out)
	}
	if strings.Count(out, ":00") < 24 {
		t.Errorf("expected 24 hourly rows:\n%s", out)
	}
	if !strings.Contains(out, "Dew point") {
		t.Error("selected hour details missing")
	}
}

func TestDaily_MarksSelectedDay(t *testing.T) {
	v := liveView()
	v.SelectedDay = "2024-01-16"

	out := Daily(v, plain)
	if !strings.Contains(out, "* Tomorrow") || !strings.Contains(out, "  Today") {
		t.Errorf("unexpected daily panel:\n%s", out)
	}
}

func TestDashboard_CardsSettleIndependently(t *testing.T) {
	v := liveView()
	v.DashboardUnit = weather.UnitImperial
	v.Dashboard = []controller.DashboardCard{
		{Place: weather.Place{Name: "Oslo"}, Current: &weather.Current{Temperature: weather.Float(28.4)}},
		{Place: weather.Place{Name: "Paris"}, Failed: true},
		{Place: weather.Place{Name: "Rome"}},
	}

	out := Dashboard(v, plain)
	for _, want := range []string{"Oslo", "28°F", "Paris", "Unavailable", "Rome"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
}

func TestFavorites(t *testing.T) {
	v := liveView()
	if !strings.Contains(Favorites(v, plain), "No favorites yet") {
		t.Error("expected empty-state text")
	}
	v.Favorites = []weather.Place{{Name: "Oslo", Latitude: 59.9}, amsterdam}
	out := Favorites(v, plain)
	if !strings.Contains(out, "  1. Oslo") || !strings.Contains(out, "* 2. Amsterdam, NL") {
		t.Errorf("unexpected favorites:\n%s", out)
	}
}

func TestWidget(t *testing.T) {
	v := liveView()
	v.ShowingSaved = true
	v.SavedAt = time.Date(2024, 1, 15, 14, 5, 0, 0, time.UTC)

	out := Widget(v, plain)
	// Hours 14:00 through 01:00 the next day.
	for _, want := range []string{"Amsterdam 12°C", "next 12h 0°C to 23°C", "precipitation 25%", "offline, saved 14:05"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in %q", want, out)
		}
	}
}

func TestNextHours(t *testing.T) {
	hours := NextHours(*sampleSnapshot(), 12)
	if len(hours) != 12 || hours[0].Time.Hour() != 14 || hours[11].Time.Hour() != 1 {
		t.Errorf("unexpected window %v .. %v", hours[0].Time, hours[len(hours)-1].Time)
	}
}

func TestCompareModal(t *testing.T) {
	cmp, ok := controller.Compare(*sampleSnapshot(), "2024-01-15", "2024-01-16", weather.UnitMetric)
	if !ok {
		t.Fatal("expected comparison")
	}
	out := CompareModal(cmp, "2024-01-15", plain)
	for _, want := range []string{"Today", "Tomorrow", "13°C / 6°C", "9°C / 2°C", "UV index"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
}

func TestProfileFor(t *testing.T) {
	tests := []struct {
		name    string
		code    *int
		enabled bool
		want    Profile
	}{
		{"rain", weather.Int(63), true, Profile{Gain: 0.28, FilterHz: 900}},
		{"storm", weather.Int(95), true, Profile{Gain: 0.28, FilterHz: 900, Thunder: true}},
		{"snow", weather.Int(73), true, Profile{Gain: 0.18, FilterHz: 1500}},
		{"fog", weather.Int(45), true, Profile{Gain: 0.12, FilterHz: 700}},
		{"clear", weather.Int(0), true, Profile{FilterHz: 1200}},
		{"disabled storm", weather.Int(99), false, Profile{FilterHz: 900}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ProfileFor(tt.code, tt.enabled); got != tt.want {
				t.Errorf("ProfileFor = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestSoundscape_NotifiesOnChangeOnly(t *testing.T) {
	var got []Profile
	s := NewSoundscape(func(p Profile) { got = append(got, p) }, nil)

	v := liveView()
	s.Render(v)
	v.Flags.Sound = true
	s.Render(v)
	s.Render(v)

	if len(got) != 2 || got[0].Gain != 0 || got[1].Gain != 0.28 {
		t.Errorf("expected a silent then a rain notification, got %+v", got)
	}
	if s.Profile().FilterHz != 900 {
		t.Errorf("unexpected profile %+v", s.Profile())
	}

	panicky := NewSoundscape(func(Profile) { panic("audio device gone") }, nil)
	panicky.Render(v)
}

func TestMap_DeferredInit(t *testing.T) {
	calls := 0
	fail := true
	tm := &TextMap{}
	m := NewMap(func() (MapView, error) {
		calls++
		if fail {
			return nil, errors.New("tiles unavailable")
		}
		return tm, nil
	}, nil)

	v := liveView()
	m.Render(v)
	if calls != 0 {
		t.Fatal("map initialised before the map tab was shown")
	}

	v.Tab = controller.TabMap
	m.Render(v)
	if _, err := m.View(); err == nil {
		t.Fatal("expected init error")
	}
	if out := (Terminal{Map: m}).Screen(v); !strings.Contains(out, "Map unavailable") {
		t.Errorf("expected unavailable map:\n%s", out)
	}

	fail = false
	m.Render(v)
	if calls != 2 {
		t.Errorf("expected retry, got %d init calls", calls)
	}

	v.Tab = controller.TabForecast
	v.Place = weather.Place{Name: "Oslo", Latitude: 59.9139, Longitude: 10.7522}
	m.Render(v)
	if got := tm.String(); got != "📍 Oslo 12°C at 59.9139, 10.7522 (zoom 10)" {
		t.Errorf("marker = %q", got)
	}
}
