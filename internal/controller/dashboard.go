package controller

import (
	"context"
	"time"

	"github.com/i474232898/weathervision/internal/weather"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	// DashboardSize is how many favorites get a mini card.
	DashboardSize = 12

	dashboardConcurrency = 4
)

// RefreshDashboard fetches current conditions for the first DashboardSize
// favorites. Each fetch settles on its own: a failure marks only its card.
// Results never reach the fallback manager. It is a no-op while offline.
func (c *Controller) RefreshDashboard(ctx context.Context) []DashboardCard {
	if !c.conn.Online() {
		return nil
	}

	c.mu.Lock()
	favs := c.st.favorites
	if len(favs) > DashboardSize {
		favs = favs[:DashboardSize]
	}
	unit := c.st.unit
	c.dashGen++
	gen := c.dashGen
	c.mu.Unlock()

	if len(favs) == 0 {
		return nil
	}

	cards := make([]DashboardCard, len(favs))
	var g errgroup.Group
	g.SetLimit(dashboardConcurrency)
	for i, p := range favs {
		g.Go(func() error {
			fctx, cancel := context.WithTimeout(ctx, c.timeout)
			defer cancel()

			start := time.Now()
			cur, err := c.forecast.FetchCurrent(fctx, p, unit)
			c.metrics.ObserveFetch("current", start, err)
			cards[i] = DashboardCard{Place: p}
			if err != nil {
				c.metrics.DashboardFailed()
				c.log.Warn("dashboard fetch failed", zap.String("place", p.Title()), zap.Error(err))
				cards[i].Failed = true
				return nil
			}
			cards[i].Current = &cur
			return nil
		})
	}
	_ = g.Wait()

	c.mu.Lock()
	if gen != c.dashGen || unit != c.st.unit {
		c.mu.Unlock()
		return cards
	}
	c.st.dashboard = cards
	c.st.dashboardUnit = unit
	v := c.publishLocked()
	c.mu.Unlock()

	c.render(v)
	return cards
}

// dashboardFor lines up fetched cards with the current favorites. Favorites
// without a result get an empty card.
func dashboardFor(favs []weather.Place, cards []DashboardCard) []DashboardCard {
	n := min(len(favs), DashboardSize)
	out := make([]DashboardCard, n)
	for i := 0; i < n; i++ {
		out[i] = DashboardCard{Place: favs[i]}
		for _, card := range cards {
			if weather.SamePlace(card.Place, favs[i]) {
				out[i] = card
				out[i].Place = favs[i]
				break
			}
		}
	}
	return out
}
