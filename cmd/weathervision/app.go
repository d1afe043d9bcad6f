package main

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/i474232898/weathervision/internal/config"
	"github.com/i474232898/weathervision/internal/connectivity"
	"github.com/i474232898/weathervision/internal/controller"
	"github.com/i474232898/weathervision/internal/fallback"
	"github.com/i474232898/weathervision/internal/geocode"
	"github.com/i474232898/weathervision/internal/logging"
	"github.com/i474232898/weathervision/internal/metrics"
	"github.com/i474232898/weathervision/internal/prefs"
	"github.com/i474232898/weathervision/internal/render"
	"github.com/i474232898/weathervision/internal/store"
	"github.com/i474232898/weathervision/internal/weather"
	"github.com/i474232898/weathervision/internal/weather/providers"
)

// options are the flags shared by every command.
type options struct {
	offline  bool
	dataPath string
}

// app holds the wired components shared by every command.
type app struct {
	cfg      *config.AppConfig
	log      *zap.Logger
	registry *prometheus.Registry
	monitor  *connectivity.Monitor
	ctrl     *controller.Controller
	sound    *render.Soundscape
	terminal render.Terminal
	closers  []func() error
}

func newApp(ctx context.Context, opts options) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if opts.dataPath != "" {
		cfg.DataPath = opts.dataPath
	}
	log, err := logging.New(cfg.LogLevel, cfg.DevLog)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, log: log, registry: prometheus.NewRegistry()}
	m := metrics.New(a.registry)

	var storage store.Storage
	db, err := store.OpenSQLite(ctx, cfg.DataPath)
	if err != nil {
		// Preferences then live only as long as the process.
		log.Warn("sqlite unavailable, using memory store", zap.String("path", cfg.DataPath), zap.Error(err))
		storage = store.NewMemoryStore(0)
	} else {
		storage = db
		a.closers = append(a.closers, db.Close)
	}
	p := prefs.New(storage, log)

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	forecast := providers.NewOpenMeteoProvider(providers.OpenMeteoConfig{
		ForecastURL:  cfg.ForecastURL,
		AirURL:       cfg.AirURL,
		ForecastDays: cfg.ForecastDays,
		HTTP:         providers.HTTPClientConfig{Client: httpClient},
	}, log)

	var geocoder weather.Geocoder = geocode.NewOpenMeteo(geocode.Options{
		BaseURL: cfg.GeocodeURL,
		Timeout: cfg.HTTPTimeout,
		RPS:     cfg.GeocodeRPS,
	}, log)
	var reverse weather.ReverseGeocoder = geocode.NewNominatim(geocode.Options{
		BaseURL: cfg.ReverseURL,
		Timeout: cfg.HTTPTimeout,
	}, log)
	if cfg.GoogleGeocoderAPIKey != "" {
		g := geocode.NewGoogle(cfg.GoogleGeocoderAPIKey, cfg.GeocodeRPS, log)
		geocoder, reverse = g, g
	}
	var locator weather.Locator
	if cfg.HasHome {
		locator = geocode.Home{Lat: cfg.HomeLat, Lon: cfg.HomeLon}
	}

	a.monitor = connectivity.NewMonitor(cfg.ProbeURL, cfg.HTTPTimeout, m, log)
	if opts.offline {
		a.monitor.ForceOffline(true)
	}

	a.ctrl = controller.New(controller.Config{
		Forecast:     forecast,
		Air:          forecast,
		Geocoder:     geocoder,
		Reverse:      reverse,
		Locator:      locator,
		Fallback:     fallback.NewManager(p, m, log),
		Prefs:        p,
		Connectivity: a.monitor,
		Metrics:      m,
		Log:          log,
		Timeout:      cfg.RefreshTimeout,
	})
	a.monitor.Subscribe(func(online bool) {
		a.ctrl.ConnectivityChanged(context.Background(), online)
	})

	a.sound = render.NewSoundscape(func(pr render.Profile) {
		log.Debug("soundscape", zap.Float64("gain", pr.Gain), zap.Float64("filter_hz", pr.FilterHz), zap.Bool("thunder", pr.Thunder))
	}, log)
	a.terminal = render.Terminal{Map: render.NewMap(func() (render.MapView, error) {
		return &render.TextMap{}, nil
	}, log)}
	a.ctrl.AddRenderer(a.sound)
	a.ctrl.AddRenderer(a.terminal.Map)
	return a, nil
}

func (a *app) Close() {
	for _, c := range a.closers {
		if err := c(); err != nil {
			a.log.Warn("close failed", zap.Error(err))
		}
	}
	_ = a.log.Sync()
}
