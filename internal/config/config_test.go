package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("WV_REFRESH_INTERVAL", "")
	t.Setenv("WV_FORECAST_DAYS", "")
	t.Setenv("WV_HOME_LAT", "")
	t.Setenv("WV_HOME_LON", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.RefreshInterval != 30*time.Minute || cfg.RefreshTimeout != 15*time.Second {
		t.Errorf("unexpected intervals %v / %v", cfg.RefreshInterval, cfg.RefreshTimeout)
	}
	if cfg.ForecastDays != 10 || cfg.HasHome {
		t.Errorf("unexpected defaults %+v", cfg)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name, key, value string
	}{
		{"interval", "WV_REFRESH_INTERVAL", "soon"},
		{"negative timeout", "WV_REFRESH_TIMEOUT", "-1s"},
		{"forecast days", "WV_FORECAST_DAYS", "14"},
		{"home latitude", "WV_HOME_LAT", "91"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if tt.key == "WV_HOME_LAT" {
				t.Setenv("WV_HOME_LON", "4.9")
			}
			if _, err := Load(); err == nil {
				t.Errorf("expected error for %s=%s", tt.key, tt.value)
			}
		})
	}
}

func TestLoad_Home(t *testing.T) {
	t.Setenv("WV_HOME_LAT", "52.0907")
	t.Setenv("WV_HOME_LON", "5.1214")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.HasHome || cfg.HomeLat != 52.0907 || cfg.HomeLon != 5.1214 {
		t.Errorf("unexpected home %+v", cfg)
	}
}
