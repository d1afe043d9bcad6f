package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/i474232898/weathervision/internal/controller"
)

type fakeRefresher struct {
	ticks, dashboards atomic.Int32
	out               controller.Outcome
}

func (f *fakeRefresher) Tick(context.Context) controller.Outcome {
	f.ticks.Add(1)
	return f.out
}

func (f *fakeRefresher) RefreshDashboard(context.Context) []controller.DashboardCard {
	f.dashboards.Add(1)
	return nil
}

type fakeProber struct{ probes atomic.Int32 }

func (p *fakeProber) Probe(context.Context) bool {
	p.probes.Add(1)
	return true
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestScheduler_RunsJobs(t *testing.T) {
	r := &fakeRefresher{out: controller.OutcomeLive}
	p := &fakeProber{}
	s := New(r, p, 50*time.Millisecond, 50*time.Millisecond, nil)
	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer s.Stop()

	waitFor(t, func() bool { return r.ticks.Load() > 0 && p.probes.Load() > 0 })
	waitFor(t, func() bool { return r.dashboards.Load() > 0 })
}

func TestScheduler_SkippedTickLeavesDashboard(t *testing.T) {
	r := &fakeRefresher{out: controller.OutcomeSkipped}
	s := New(r, nil, 50*time.Millisecond, 0, nil)
	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer s.Stop()

	waitFor(t, func() bool { return r.ticks.Load() >= 2 })
	if r.dashboards.Load() != 0 {
		t.Error("dashboard should only refresh after a live tick")
	}
}
