package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/i474232898/weathervision/internal/controller"
	"go.uber.org/zap"
)

// Refresher is the part of the controller the timer drives.
type Refresher interface {
	Tick(ctx context.Context) controller.Outcome
	RefreshDashboard(ctx context.Context) []controller.DashboardCard
}

// Prober checks connectivity.
type Prober interface {
	Probe(ctx context.Context) bool
}

// Scheduler runs the auto-refresh tick and the connectivity probe.
type Scheduler struct {
	scheduler     *gocron.Scheduler
	refresher     Refresher
	prober        Prober
	interval      time.Duration
	probeInterval time.Duration
	log           *zap.Logger
}

// New creates a new Scheduler. prober may be nil.
func New(refresher Refresher, prober Prober, interval, probeInterval time.Duration, log *zap.Logger) *Scheduler {
	if log == nil {
		log = zap.NewNop()
	}
	s := gocron.NewScheduler(time.UTC)
	// A slow cycle must not pile up behind the next tick.
	s.SingletonModeAll()
	return &Scheduler{
		scheduler:     s,
		refresher:     refresher,
		prober:        prober,
		interval:      interval,
		probeInterval: probeInterval,
		log:           log.Named("scheduler"),
	}
}

// Start schedules the periodic jobs and starts the underlying scheduler.
// The first tick fires one interval after start; boot does its own refresh.
func (s *Scheduler) Start() error {
	interval := s.interval
	if interval <= 0 {
		interval = 30 * time.Minute
	}

	_, err := s.scheduler.Every(interval).WaitForSchedule().Do(func() {
		ctx := context.Background()
		out := s.refresher.Tick(ctx)
		s.log.Debug("tick", zap.String("outcome", string(out)))
		if out == controller.OutcomeLive {
			cards := s.refresher.RefreshDashboard(ctx)
			s.log.Debug("dashboard refreshed", zap.Int("cards", len(cards)))
		}
	})
	if err != nil {
		return err
	}

	if s.prober != nil && s.probeInterval > 0 {
		_, err = s.scheduler.Every(s.probeInterval).Do(func() {
			ctx, cancel := context.WithTimeout(context.Background(), s.probeInterval)
			defer cancel()
			s.prober.Probe(ctx)
		})
		if err != nil {
			return err
		}
	}

	s.scheduler.StartAsync()
	s.log.Info("scheduler started", zap.Duration("interval", interval), zap.Duration("probe_interval", s.probeInterval))
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
