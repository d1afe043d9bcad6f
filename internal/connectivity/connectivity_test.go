package connectivity

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestMonitor_Transitions(t *testing.T) {
	m := NewMonitor("", time.Second, nil, nil)
	var events []bool
	m.Subscribe(func(online bool) { events = append(events, online) })

	m.Set(true) // no change
	m.Set(false)
	m.Set(false)
	m.Set(true)

	if len(events) != 2 || events[0] || !events[1] {
		t.Errorf("unexpected events %v", events)
	}
}

func TestMonitor_ForceOffline(t *testing.T) {
	m := NewMonitor("", time.Second, nil, nil)
	m.ForceOffline(true)
	if m.Online() {
		t.Fatal("expected forced offline")
	}
	m.Set(true)
	if m.Online() {
		t.Error("probe results must not override a forced offline state")
	}
	m.ForceOffline(false)
	if !m.Online() {
		t.Error("expected online after releasing the force")
	}
}

func TestMonitor_Probe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodHead {
			t.Errorf("expected HEAD, got %s", r.Method)
		}
		w.WriteHeader(http.StatusNotFound)
	}))

	m := NewMonitor(srv.URL, time.Second, nil, nil)
	if !m.Probe(context.Background()) {
		t.Error("any HTTP response should count as online")
	}

	srv.Close()
	if m.Probe(context.Background()) {
		t.Error("expected offline once the server is gone")
	}
}
