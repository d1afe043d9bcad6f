package controller

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/i474232898/weathervision/internal/geocode"
	"github.com/i474232898/weathervision/internal/prefs"
	"github.com/i474232898/weathervision/internal/weather"
	"go.uber.org/zap"
)

// Boot restores saved preferences, renders them, then runs the first
// refresh for the saved (or default) place.
func (c *Controller) Boot(ctx context.Context) Outcome {
	place, ok := c.prefs.LastPlace(ctx)
	if !ok {
		place = c.defaultPlace
	}
	unit := c.prefs.Unit(ctx)
	theme := c.prefs.Theme(ctx)
	flags := c.prefs.Flags(ctx)
	favs := c.prefs.Favorites(ctx)

	c.update(func(st *state) {
		st.place = place
		st.unit = unit
		st.displayUnit = unit
		st.theme = theme
		st.flags = flags
		st.favorites = favs
		st.visible = true
	})
	return c.run(ctx, TriggerBoot, nil)
}

// changePlace resets everything tied to the previous place.
func changePlace(st *state, p weather.Place) {
	st.place = p
	st.snapshot = nil
	st.aq = nil
	st.showingSaved = false
	st.day = ""
	st.hour = NoHour
	if st.notice != nil && !st.notice.Blocking {
		st.notice = nil
	}
}

func (c *Controller) selectPlace(ctx context.Context, t Trigger, p weather.Place, notice *Notice) Outcome {
	if err := c.prefs.SetLastPlace(ctx, p); err != nil {
		c.log.Warn("last place not saved", zap.Error(err))
	}
	return c.run(ctx, t, func(st *state) {
		changePlace(st, p)
		if notice != nil {
			st.notice = notice
		}
	})
}

// SelectPlace makes p the current place and refreshes.
func (c *Controller) SelectPlace(ctx context.Context, p weather.Place) Outcome {
	return c.selectPlace(ctx, TriggerPlace, p, nil)
}

// Search returns typeahead candidates. It never changes state.
func (c *Controller) Search(ctx context.Context, query string) ([]weather.Place, error) {
	if c.geocoder == nil {
		return nil, weather.ErrUnsupported
	}
	return c.geocoder.Search(ctx, query)
}

// SelectQuery resolves query and selects the top result. Failures leave the
// current place in place and raise a notice.
func (c *Controller) SelectQuery(ctx context.Context, query string) (Outcome, error) {
	if c.geocoder == nil {
		return OutcomeSkipped, weather.ErrUnsupported
	}
	q := strings.TrimSpace(query)
	if q == "" {
		return OutcomeSkipped, nil
	}
	p, err := c.geocoder.ResolveOne(ctx, q)
	if err != nil {
		msg := "Search is unavailable right now."
		if errors.Is(err, geocode.ErrNotFound) {
			msg = fmt.Sprintf("Nothing found for %q.", q)
		}
		c.log.Info("place not resolved", zap.String("query", q), zap.Error(err))
		c.update(func(st *state) {
			st.notice = &Notice{Kind: NoticeError, Message: msg}
		})
		return OutcomeError, err
	}
	return c.SelectPlace(ctx, p), nil
}

// UseMyLocation selects the device position. Without one it falls back to
// the default place with a notice.
func (c *Controller) UseMyLocation(ctx context.Context) Outcome {
	if c.locator == nil {
		return c.locationUnavailable(ctx, weather.ErrUnsupported)
	}
	lat, lon, err := c.locator.Locate(ctx)
	if err != nil {
		return c.locationUnavailable(ctx, err)
	}

	p := weather.Place{Name: geocode.FallbackName, Latitude: lat, Longitude: lon}
	if c.reverse != nil {
		named, err := c.reverse.Reverse(ctx, lat, lon)
		if err != nil {
			c.log.Warn("reverse geocoding failed", zap.Error(err))
		} else {
			p.Name, p.Country = named.Name, named.Country
		}
	}
	return c.selectPlace(ctx, TriggerGeolocation, p, nil)
}

func (c *Controller) locationUnavailable(ctx context.Context, err error) Outcome {
	c.log.Info("location unavailable", zap.Error(err))
	return c.selectPlace(ctx, TriggerGeolocation, c.defaultPlace, &Notice{
		Kind:    NoticeInfo,
		Message: "Location is unavailable, showing " + c.defaultPlace.Title() + ".",
	})
}

// SetUnit switches the unit system and re-fetches. Displayed magnitudes are
// cleared until the new data arrives.
func (c *Controller) SetUnit(ctx context.Context, u weather.Unit) Outcome {
	c.mu.Lock()
	same := c.st.unit == u
	c.mu.Unlock()
	if same {
		return OutcomeSkipped
	}
	if err := c.prefs.SetUnit(ctx, u); err != nil {
		c.log.Warn("unit not saved", zap.Error(err))
	}
	return c.run(ctx, TriggerUnit, func(st *state) {
		st.unit = u
		st.snapshot = nil
		st.showingSaved = false
		st.dashboard = nil
	})
}

// SelectDay changes the selected day without fetching. A date missing from
// the data resets to the observation day.
func (c *Controller) SelectDay(date string) string {
	v := c.update(func(st *state) {
		st.hour = NoHour
		if st.snapshot == nil {
			st.day = date
			return
		}
		if st.snapshot.HasDay(date) {
			st.day = date
		} else {
			st.day = st.snapshot.Current.Day()
		}
	})
	return v.SelectedDay
}

// SelectHour selects an hour of the selected day; out of range clears it.
func (c *Controller) SelectHour(i int) int {
	v := c.update(func(st *state) {
		if st.snapshot == nil || i < 0 || i >= len(st.snapshot.HoursOn(st.day)) {
			st.hour = NoHour
			return
		}
		st.hour = i
	})
	return v.SelectedHour
}

func (c *Controller) SelectTab(t Tab) Tab {
	v := c.update(func(st *state) {
		if validTab(t) {
			st.tab = t
		}
	})
	return v.Tab
}

// Refresh re-fetches the current place on user request.
func (c *Controller) Refresh(ctx context.Context) Outcome {
	return c.run(ctx, TriggerManual, nil)
}

// Retry is the offline screen's retry action.
func (c *Controller) Retry(ctx context.Context) Outcome {
	return c.run(ctx, TriggerRetry, nil)
}

// Tick is the periodic timer. It only refreshes while visible with
// auto-refresh on.
func (c *Controller) Tick(ctx context.Context) Outcome {
	c.mu.Lock()
	skip := !c.st.visible || !c.st.flags.AutoRefresh
	c.mu.Unlock()
	if skip {
		c.metrics.CycleSettled(string(TriggerTimer), string(OutcomeSkipped))
		return OutcomeSkipped
	}
	return c.run(ctx, TriggerTimer, nil)
}

// SetVisible records visibility. Becoming visible refreshes.
func (c *Controller) SetVisible(ctx context.Context, visible bool) Outcome {
	c.mu.Lock()
	was := c.st.visible
	c.st.visible = visible
	c.mu.Unlock()
	if !visible || was {
		return OutcomeSkipped
	}
	return c.run(ctx, TriggerVisibility, nil)
}

// ConnectivityChanged refreshes when the network returns and re-renders the
// offline indicator when it goes away.
func (c *Controller) ConnectivityChanged(ctx context.Context, online bool) Outcome {
	if online {
		return c.run(ctx, TriggerOnline, nil)
	}
	c.update(func(*state) {})
	return OutcomeSkipped
}

// DismissNotice clears a non-blocking notice.
func (c *Controller) DismissNotice() {
	c.update(func(st *state) {
		if st.notice != nil && !st.notice.Blocking {
			st.notice = nil
		}
	})
}

// ToggleFavorite adds p at the front or removes it, persisting immediately.
func (c *Controller) ToggleFavorite(ctx context.Context, p weather.Place) bool {
	var added bool
	c.update(func(st *state) {
		st.favorites, added = weather.ToggleFavorite(st.favorites, p)
		// Persist under the lock so concurrent toggles are stored in order.
		if err := c.prefs.SetFavorites(ctx, st.favorites); err != nil {
			c.log.Warn("favorites not saved", zap.Error(err))
		}
	})
	return added
}

// ToggleCurrentFavorite toggles the current place.
func (c *Controller) ToggleCurrentFavorite(ctx context.Context) bool {
	c.mu.Lock()
	p := c.st.place
	c.mu.Unlock()
	return c.ToggleFavorite(ctx, p)
}

func (c *Controller) ClearFavorites(ctx context.Context) {
	c.update(func(st *state) {
		st.favorites = []weather.Place{}
		st.dashboard = nil
		if err := c.prefs.SetFavorites(ctx, st.favorites); err != nil {
			c.log.Warn("favorites not saved", zap.Error(err))
		}
	})
}

// SelectFavorite selects the i-th favorite.
func (c *Controller) SelectFavorite(ctx context.Context, i int) Outcome {
	c.mu.Lock()
	if i < 0 || i >= len(c.st.favorites) {
		c.mu.Unlock()
		return OutcomeSkipped
	}
	p := c.st.favorites[i]
	c.mu.Unlock()
	return c.selectPlace(ctx, TriggerFavorite, p, nil)
}

// CycleTheme advances auto → dark → light.
func (c *Controller) CycleTheme(ctx context.Context) prefs.Theme {
	v := c.update(func(st *state) {
		st.theme = st.theme.Next()
		if err := c.prefs.SetTheme(ctx, st.theme); err != nil {
			c.log.Warn("theme not saved", zap.Error(err))
		}
	})
	return v.Theme
}

func (c *Controller) toggleFlag(ctx context.Context, key string, field func(*prefs.Flags) *bool) bool {
	v := c.update(func(st *state) {
		f := field(&st.flags)
		*f = !*f
		if err := c.prefs.SetFlag(ctx, key, *f); err != nil {
			c.log.Warn("preference not saved", zap.String("key", key), zap.Error(err))
		}
	})
	return *field(&v.Flags)
}

func (c *Controller) ToggleSound(ctx context.Context) bool {
	return c.toggleFlag(ctx, prefs.KeySound, func(f *prefs.Flags) *bool { return &f.Sound })
}

func (c *Controller) ToggleA11y(ctx context.Context) bool {
	return c.toggleFlag(ctx, prefs.KeyA11y, func(f *prefs.Flags) *bool { return &f.A11y })
}

func (c *Controller) ToggleAutoRefresh(ctx context.Context) bool {
	return c.toggleFlag(ctx, prefs.KeyAutoRefresh, func(f *prefs.Flags) *bool { return &f.AutoRefresh })
}

// Compare compares two days of the displayed snapshot.
func (c *Controller) Compare(dateA, dateB string) (Comparison, bool) {
	v := c.View()
	if v.Snapshot == nil {
		return Comparison{}, false
	}
	return Compare(*v.Snapshot, dateA, dateB, v.DisplayUnit)
}
