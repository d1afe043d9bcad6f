// Package controller is the single authority over what is fetched and when.
// Every input (place, unit, day, timer, visibility, connectivity) enters
// through a method here, and every settled result is committed to the
// fallback manager before renderers see it.
package controller

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/i474232898/weathervision/internal/fallback"
	"github.com/i474232898/weathervision/internal/metrics"
	"github.com/i474232898/weathervision/internal/prefs"
	"github.com/i474232898/weathervision/internal/weather"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultTimeout bounds one refresh cycle.
const DefaultTimeout = 15 * time.Second

// DefaultPlace is used when nothing was saved and no position is available.
var DefaultPlace = weather.Place{Name: "Amsterdam", Country: "NL", Latitude: 52.3676, Longitude: 4.9041}

// Trigger is the reason a refresh cycle started.
type Trigger string

const (
	TriggerBoot        Trigger = "boot"
	TriggerPlace       Trigger = "place"
	TriggerUnit        Trigger = "unit"
	TriggerGeolocation Trigger = "geolocation"
	TriggerFavorite    Trigger = "favorite"
	TriggerTimer       Trigger = "timer"
	TriggerVisibility  Trigger = "visibility"
	TriggerRetry       Trigger = "retry"
	TriggerOnline      Trigger = "online"
	TriggerManual      Trigger = "manual"
	TriggerFollowUp    Trigger = "follow-up"
)

// supersedes reports whether t changes what is fetched. Such triggers start
// a new cycle immediately; the rest coalesce into a follow-up.
func (t Trigger) supersedes() bool {
	switch t {
	case TriggerBoot, TriggerPlace, TriggerUnit, TriggerGeolocation, TriggerFavorite:
		return true
	}
	return false
}

// Outcome is how a trigger settled.
type Outcome string

const (
	OutcomeLive        Outcome = "live"
	OutcomeFallback    Outcome = "fallback"
	OutcomeUnavailable Outcome = "unavailable"
	OutcomeError       Outcome = "error"
	OutcomeCoalesced   Outcome = "coalesced"
	OutcomeStale       Outcome = "stale"
	OutcomeSkipped     Outcome = "skipped"
)

// Connectivity reports whether the network is usable.
type Connectivity interface {
	Online() bool
}

type alwaysOnline struct{}

func (alwaysOnline) Online() bool { return true }

// Config wires the controller's collaborators. Air, Geocoder, Reverse and
// Locator are optional.
type Config struct {
	Forecast     weather.ForecastProvider
	Air          weather.AirQualityProvider
	Geocoder     weather.Geocoder
	Reverse      weather.ReverseGeocoder
	Locator      weather.Locator
	Fallback     *fallback.Manager
	Prefs        *prefs.Store
	Connectivity Connectivity
	Metrics      *metrics.Metrics
	Log          *zap.Logger
	Timeout      time.Duration
	DefaultPlace weather.Place
}

type state struct {
	place       weather.Place
	unit        weather.Unit
	displayUnit weather.Unit
	snapshot    *weather.Snapshot
	aq          *weather.AirQuality

	day  string
	hour int
	tab  Tab

	lastOutcome  Outcome
	showingSaved bool
	savedAt      time.Time
	notice       *Notice

	favorites     []weather.Place
	dashboard     []DashboardCard
	dashboardUnit weather.Unit

	theme   prefs.Theme
	flags   prefs.Flags
	visible bool
}

type Controller struct {
	forecast     weather.ForecastProvider
	air          weather.AirQualityProvider
	geocoder     weather.Geocoder
	reverse      weather.ReverseGeocoder
	locator      weather.Locator
	fallback     *fallback.Manager
	prefs        *prefs.Store
	conn         Connectivity
	metrics      *metrics.Metrics
	log          *zap.Logger
	timeout      time.Duration
	defaultPlace weather.Place

	mu         sync.Mutex
	st         state
	gen        uint64 // generation of the most recently started cycle
	settledGen uint64
	inflight   int
	pending    bool
	seq        uint64
	dashGen    uint64

	renderMu  sync.Mutex
	renderers []Renderer
	rendered  uint64
}

func New(cfg Config) *Controller {
	if cfg.Log == nil {
		cfg.Log = zap.NewNop()
	}
	if cfg.Connectivity == nil {
		cfg.Connectivity = alwaysOnline{}
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.DefaultPlace == (weather.Place{}) {
		cfg.DefaultPlace = DefaultPlace
	}
	return &Controller{
		forecast:     cfg.Forecast,
		air:          cfg.Air,
		geocoder:     cfg.Geocoder,
		reverse:      cfg.Reverse,
		locator:      cfg.Locator,
		fallback:     cfg.Fallback,
		prefs:        cfg.Prefs,
		conn:         cfg.Connectivity,
		metrics:      cfg.Metrics,
		log:          cfg.Log.Named("controller"),
		timeout:      cfg.Timeout,
		defaultPlace: cfg.DefaultPlace,
		st: state{
			place:       cfg.DefaultPlace,
			unit:        weather.UnitMetric,
			displayUnit: weather.UnitMetric,
			hour:        NoHour,
			tab:         TabForecast,
			theme:       prefs.ThemeAuto,
			flags:       prefs.Flags{AutoRefresh: true},
			favorites:   []weather.Place{},
			visible:     true,
		},
	}
}

// AddRenderer registers r for every published view.
func (c *Controller) AddRenderer(r Renderer) {
	c.renderMu.Lock()
	defer c.renderMu.Unlock()
	c.renderers = append(c.renderers, r)
}

// View returns the current state.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewLocked()
}

func (c *Controller) viewLocked() View {
	st := &c.st
	return View{
		Seq:           c.seq,
		Generation:    c.gen,
		Place:         st.place,
		Unit:          st.unit,
		DisplayUnit:   st.displayUnit,
		Snapshot:      st.snapshot,
		AirQuality:    st.aq,
		SelectedDay:   st.day,
		SelectedHour:  st.hour,
		Tab:           st.tab,
		Refreshing:    c.settledGen < c.gen,
		LastOutcome:   st.lastOutcome,
		Offline:       !c.conn.Online(),
		ShowingSaved:  st.showingSaved,
		SavedAt:       st.savedAt,
		Notice:        st.notice,
		Favorites:     st.favorites,
		IsFavorite:    weather.IsFavorite(st.favorites, st.place),
		Dashboard:     dashboardFor(st.favorites, st.dashboard),
		DashboardUnit: st.dashboardUnit,
		Theme:         st.theme,
		Flags:         st.flags,
		Insights:      buildInsights(st.snapshot, st.day, st.displayUnit),
	}
}

// publishLocked stamps a new view sequence. Callers render the result after
// releasing c.mu.
func (c *Controller) publishLocked() View {
	c.seq++
	return c.viewLocked()
}

// render fans v out to every renderer. Views older than the last rendered
// one are dropped so renderers never go backwards.
func (c *Controller) render(v View) {
	c.renderMu.Lock()
	defer c.renderMu.Unlock()
	if v.Seq <= c.rendered {
		return
	}
	c.rendered = v.Seq
	for _, r := range c.renderers {
		r.Render(v)
	}
}

func (c *Controller) update(fn func(st *state)) View {
	c.mu.Lock()
	fn(&c.st)
	v := c.publishLocked()
	c.mu.Unlock()
	c.render(v)
	return v
}

// run starts (or coalesces) a refresh cycle for trigger t. mutate, if set,
// applies the selection change that caused it. It blocks until the cycle,
// and any follow-up it owes, has settled.
func (c *Controller) run(ctx context.Context, t Trigger, mutate func(st *state)) Outcome {
	c.mu.Lock()
	if c.inflight > 0 && (!t.supersedes() || c.fetchingLocked(mutate)) {
		c.pending = true
		c.mu.Unlock()
		c.metrics.Coalesced()
		c.metrics.CycleSettled(string(t), string(OutcomeCoalesced))
		c.log.Debug("trigger coalesced", zap.String("trigger", string(t)))
		return OutcomeCoalesced
	}
	if mutate != nil {
		mutate(&c.st)
	}
	c.gen++
	gen := c.gen
	c.inflight++
	var early *View
	if mutate != nil {
		v := c.publishLocked()
		early = &v
	}
	c.mu.Unlock()

	if early != nil {
		c.render(*early)
	}

	out := c.cycle(ctx, t, gen)

	for {
		c.mu.Lock()
		c.inflight--
		if !c.pending || c.inflight > 0 {
			c.mu.Unlock()
			return out
		}
		c.pending = false
		c.gen++
		gen = c.gen
		c.inflight++
		c.mu.Unlock()

		c.cycle(ctx, TriggerFollowUp, gen)
	}
}

// fetchingLocked reports whether the latest cycle is still running for the
// place and unit that mutate would select. mutate is applied to a copy.
func (c *Controller) fetchingLocked(mutate func(st *state)) bool {
	if c.settledGen >= c.gen {
		return false
	}
	next := c.st
	if mutate != nil {
		mutate(&next)
	}
	return weather.SamePlace(next.place, c.st.place) && next.unit == c.st.unit
}

func (c *Controller) cycle(ctx context.Context, t Trigger, gen uint64) Outcome {
	started := time.Now()
	c.mu.Lock()
	place, unit := c.st.place, c.st.unit
	c.mu.Unlock()

	log := c.log.With(
		zap.String("cycle", uuid.NewString()),
		zap.String("trigger", string(t)),
		zap.Uint64("generation", gen),
		zap.String("place", place.Title()),
		zap.String("unit", string(unit)),
	)

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var out Outcome
	strategy := c.fallback.DecideStrategy(ctx, c.conn.Online())
	switch strategy.Kind {
	case fallback.Fallback:
		rec := strategy.Snapshot
		out = c.settle(gen, func(st *state) Outcome {
			snap := rec.Snapshot
			st.place = rec.Place
			st.snapshot = &snap
			st.aq = rec.AirQuality
			st.displayUnit = rec.Unit
			st.showingSaved = true
			st.savedAt = rec.SavedAt()
			st.notice = &Notice{Kind: NoticeOffline, Message: "Offline, showing saved data from " + rec.SavedAt().Format("Mon 2 Jan 15:04")}
			reconcileSelection(st)
			return OutcomeFallback
		})

	case fallback.Unavailable:
		out = c.settle(gen, func(st *state) Outcome {
			st.notice = &Notice{Kind: NoticeOffline, Message: "You are offline and no saved forecast is available.", Blocking: true}
			return OutcomeUnavailable
		})

	default:
		snap, aq, err := c.fetch(ctx, log, place, unit)
		if err != nil {
			log.Warn("forecast fetch failed", zap.Error(err))
			out = c.settle(gen, func(st *state) Outcome {
				st.notice = &Notice{Kind: NoticeError, Message: failureMessage(err)}
				return OutcomeError
			})
			break
		}
		out = c.settle(gen, func(st *state) Outcome {
			// Commit before any renderer can observe the snapshot.
			rec := c.fallback.Commit(context.WithoutCancel(ctx), place, snap, aq, unit)
			st.snapshot = &rec.Snapshot
			st.aq = rec.AirQuality
			st.displayUnit = unit
			st.showingSaved = false
			st.savedAt = time.Time{}
			if st.notice != nil && st.notice.Kind != NoticeInfo {
				st.notice = nil
			}
			reconcileSelection(st)
			return OutcomeLive
		})
	}

	if out == OutcomeStale {
		log.Info("discarded superseded result", zap.Duration("took", time.Since(started)))
	} else {
		log.Info("refresh settled", zap.String("outcome", string(out)), zap.Duration("took", time.Since(started)))
	}
	c.metrics.CycleSettled(string(t), string(out))
	return out
}

// fetch issues the forecast and air-quality requests together. Air-quality
// failures are logged and dropped.
func (c *Controller) fetch(ctx context.Context, log *zap.Logger, place weather.Place, unit weather.Unit) (weather.Snapshot, *weather.AirQuality, error) {
	var (
		snap weather.Snapshot
		aq   *weather.AirQuality
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		start := time.Now()
		s, err := c.forecast.FetchForecast(gctx, place, unit)
		c.metrics.ObserveFetch("forecast", start, err)
		if err != nil {
			return err
		}
		snap = s
		return nil
	})
	if c.air != nil {
		g.Go(func() error {
			start := time.Now()
			a, err := c.air.FetchAirQuality(gctx, place)
			c.metrics.ObserveFetch("air_quality", start, err)
			if err != nil {
				log.Warn("air quality unavailable", zap.Error(err))
				return nil
			}
			aq = a
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return weather.Snapshot{}, nil, err
	}
	return snap, aq, nil
}

// settle applies a cycle's result if gen is still the latest generation.
func (c *Controller) settle(gen uint64, apply func(st *state) Outcome) Outcome {
	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		c.metrics.StaleDiscarded()
		return OutcomeStale
	}
	out := apply(&c.st)
	c.st.lastOutcome = out
	c.settledGen = gen
	v := c.publishLocked()
	c.mu.Unlock()

	c.render(v)
	return out
}

// reconcileSelection keeps the selected day if the new data has it and
// otherwise resets to the observation day. The hour resets with the day.
func reconcileSelection(st *state) {
	if st.snapshot == nil {
		return
	}
	prev := st.day
	if st.day == "" || !st.snapshot.HasDay(st.day) {
		st.day = st.snapshot.Current.Day()
	}
	if st.day != prev || st.hour >= len(st.snapshot.HoursOn(st.day)) {
		st.hour = NoHour
	}
}

func failureMessage(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "The forecast service timed out. Showing the last result."
	case errors.Is(err, weather.ErrMalformed), errors.Is(err, weather.ErrTransient):
		return "Could not update the forecast. Showing the last result."
	default:
		return "Something went wrong while updating. Showing the last result."
	}
}
