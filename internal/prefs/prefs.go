// Package prefs is the namespaced preference store. Reads never fail: a
// missing key, malformed value or unusable store yields the default.
package prefs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/i474232898/weathervision/internal/store"
	"github.com/i474232898/weathervision/internal/weather"
	"go.uber.org/zap"
)

// Prefix namespaces every key.
const Prefix = "wv:"

const (
	KeyUnit         = "unit"
	KeyTheme        = "theme"
	KeySound        = "sound"
	KeyA11y         = "a11y"
	KeyAutoRefresh  = "autoRefresh"
	KeyFavorites    = "favorites"
	KeyLastPlace    = "lastPlace"
	KeyLastForecast = "lastForecast"
)

// Theme is the colour scheme preference.
type Theme string

const (
	ThemeAuto  Theme = "auto"
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

// Next cycles auto → dark → light → auto.
func (t Theme) Next() Theme {
	switch t {
	case ThemeAuto:
		return ThemeDark
	case ThemeDark:
		return ThemeLight
	default:
		return ThemeAuto
	}
}

func parseTheme(s string) Theme {
	switch Theme(s) {
	case ThemeDark, ThemeLight:
		return Theme(s)
	default:
		return ThemeAuto
	}
}

// Flags are the boolean preferences.
type Flags struct {
	Sound       bool `json:"sound"`
	A11y        bool `json:"a11y"`
	AutoRefresh bool `json:"autoRefresh"`
}

// Store reads and writes preferences over a Storage.
type Store struct {
	s   store.Storage
	log *zap.Logger
}

func New(s store.Storage, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{s: s, log: log.Named("prefs")}
}

func (p *Store) get(ctx context.Context, key string) (string, bool) {
	v, err := p.s.Get(ctx, Prefix+key)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			p.log.Warn("preference read failed", zap.String("key", key), zap.Error(err))
		}
		return "", false
	}
	return v, true
}

func (p *Store) set(ctx context.Context, key, value string) error {
	if err := p.s.Set(ctx, Prefix+key, value); err != nil {
		p.log.Warn("preference write failed", zap.String("key", key), zap.Error(err))
		return err
	}
	return nil
}

// GetJSON decodes the value at key into out. It reports false when the key
// is missing or does not decode.
func (p *Store) GetJSON(ctx context.Context, key string, out any) bool {
	raw, ok := p.get(ctx, key)
	if !ok {
		return false
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		p.log.Warn("discarding malformed preference", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (p *Store) SetJSON(ctx context.Context, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return p.set(ctx, key, string(b))
}

func (p *Store) Delete(ctx context.Context, key string) error {
	if err := p.s.Delete(ctx, Prefix+key); err != nil {
		p.log.Warn("preference delete failed", zap.String("key", key), zap.Error(err))
		return err
	}
	return nil
}

func (p *Store) Unit(ctx context.Context) weather.Unit {
	v, _ := p.get(ctx, KeyUnit)
	return weather.ParseUnit(v)
}

func (p *Store) SetUnit(ctx context.Context, u weather.Unit) error {
	return p.set(ctx, KeyUnit, string(u))
}

func (p *Store) Theme(ctx context.Context) Theme {
	v, _ := p.get(ctx, KeyTheme)
	return parseTheme(v)
}

func (p *Store) SetTheme(ctx context.Context, t Theme) error {
	return p.set(ctx, KeyTheme, string(t))
}

// Flag reads a "1"/"0" flag, returning def when unset or unrecognised.
func (p *Store) Flag(ctx context.Context, key string, def bool) bool {
	v, ok := p.get(ctx, key)
	if !ok {
		return def
	}
	switch v {
	case "1":
		return true
	case "0":
		return false
	default:
		return def
	}
}

func (p *Store) SetFlag(ctx context.Context, key string, on bool) error {
	v := "0"
	if on {
		v = "1"
	}
	return p.set(ctx, key, v)
}

// Flags loads all boolean preferences. Auto-refresh defaults on.
func (p *Store) Flags(ctx context.Context) Flags {
	return Flags{
		Sound:       p.Flag(ctx, KeySound, false),
		A11y:        p.Flag(ctx, KeyA11y, false),
		AutoRefresh: p.Flag(ctx, KeyAutoRefresh, true),
	}
}

// Favorites returns the stored list, deduplicated and capped.
func (p *Store) Favorites(ctx context.Context) []weather.Place {
	var list []weather.Place
	if !p.GetJSON(ctx, KeyFavorites, &list) {
		return []weather.Place{}
	}
	return weather.NormalizeFavorites(list)
}

func (p *Store) SetFavorites(ctx context.Context, list []weather.Place) error {
	if list == nil {
		list = []weather.Place{}
	}
	return p.SetJSON(ctx, KeyFavorites, list)
}

// LastPlace returns the last selected place, if a valid one was stored.
func (p *Store) LastPlace(ctx context.Context) (weather.Place, bool) {
	var pl weather.Place
	if !p.GetJSON(ctx, KeyLastPlace, &pl) {
		return weather.Place{}, false
	}
	if pl.Latitude < -90 || pl.Latitude > 90 || pl.Longitude < -180 || pl.Longitude > 180 {
		return weather.Place{}, false
	}
	return pl, true
}

func (p *Store) SetLastPlace(ctx context.Context, pl weather.Place) error {
	return p.SetJSON(ctx, KeyLastPlace, pl)
}
