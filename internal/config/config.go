package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/i474232898/weathervision/internal/geocode"
	"github.com/i474232898/weathervision/internal/weather/providers"
)

type AppConfig struct {
	// DataPath is the sqlite file holding preferences and the saved forecast.
	DataPath string

	// RefreshInterval is the auto-refresh period; RefreshTimeout bounds one cycle.
	RefreshInterval time.Duration
	RefreshTimeout  time.Duration
	HTTPTimeout     time.Duration
	ForecastDays    int

	ProbeURL      string
	ProbeInterval time.Duration

	GeocodeRPS             float64
	GoogleGeocoderAPIKey   string
	HomeLat, HomeLon       float64
	HasHome                bool
	ForecastURL, AirURL    string
	GeocodeURL, ReverseURL string

	LogLevel string
	DevLog   bool

	Port string
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}

	cfg.DataPath = getenvDefault("WV_DATA_PATH", "weathervision.db")

	var err error
	if cfg.RefreshInterval, err = getenvDuration("WV_REFRESH_INTERVAL", "30m"); err != nil {
		return nil, err
	}
	if cfg.RefreshTimeout, err = getenvDuration("WV_REFRESH_TIMEOUT", "15s"); err != nil {
		return nil, err
	}
	if cfg.HTTPTimeout, err = getenvDuration("WV_HTTP_TIMEOUT", "10s"); err != nil {
		return nil, err
	}
	if cfg.ProbeInterval, err = getenvDuration("WV_PROBE_INTERVAL", "30s"); err != nil {
		return nil, err
	}

	cfg.ForecastDays = getenvInt("WV_FORECAST_DAYS", 10)
	if cfg.ForecastDays < 7 || cfg.ForecastDays > 10 {
		return nil, fmt.Errorf("invalid WV_FORECAST_DAYS: %d not in 7..10", cfg.ForecastDays)
	}

	cfg.ProbeURL = getenvDefault("WV_PROBE_URL", "https://api.open-meteo.com")
	cfg.GeocodeRPS = getenvFloat("WV_GEOCODE_RPS", 5)
	cfg.GoogleGeocoderAPIKey = os.Getenv("WV_GOOGLE_GEOCODER_API_KEY")

	if lat, lon := os.Getenv("WV_HOME_LAT"), os.Getenv("WV_HOME_LON"); lat != "" || lon != "" {
		if cfg.HomeLat, err = strconv.ParseFloat(lat, 64); err != nil || cfg.HomeLat < -90 || cfg.HomeLat > 90 {
			return nil, fmt.Errorf("invalid WV_HOME_LAT: %q", lat)
		}
		if cfg.HomeLon, err = strconv.ParseFloat(lon, 64); err != nil || cfg.HomeLon < -180 || cfg.HomeLon > 180 {
			return nil, fmt.Errorf("invalid WV_HOME_LON: %q", lon)
		}
		cfg.HasHome = true
	}

	cfg.ForecastURL = getenvDefault("WV_FORECAST_URL", providers.DefaultForecastURL)
	cfg.AirURL = getenvDefault("WV_AIR_URL", providers.DefaultAirURL)
	cfg.GeocodeURL = getenvDefault("WV_GEOCODE_URL", geocode.DefaultSearchURL)
	cfg.ReverseURL = getenvDefault("WV_REVERSE_URL", geocode.DefaultReverseURL)

	cfg.LogLevel = getenvDefault("WV_LOG_LEVEL", "info")
	cfg.DevLog = getenvBool("WV_DEV_LOG", false)
	cfg.Port = getenvDefault("PORT", "8080")

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err == nil {
			return f
		}
	}
	return def
}

func getenvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getenvDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s: must be positive", key)
	}
	return d, nil
}
