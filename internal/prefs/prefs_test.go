package prefs

import (
	"context"
	"errors"
	"testing"

	"github.com/i474232898/weathervision/internal/store"
	"github.com/i474232898/weathervision/internal/weather"
)

type brokenStorage struct{}

func (brokenStorage) Get(context.Context, string) (string, error) { return "", store.ErrUnavailable }
func (brokenStorage) Set(context.Context, string, string) error   { return store.ErrUnavailable }
func (brokenStorage) Delete(context.Context, string) error        { return store.ErrUnavailable }

func TestDefaults(t *testing.T) {
	ctx := context.Background()
	for name, s := range map[string]store.Storage{
		"empty":  store.NewMemoryStore(0),
		"broken": brokenStorage{},
	} {
		t.Run(name, func(t *testing.T) {
			p := New(s, nil)
			if p.Unit(ctx) != weather.UnitMetric {
				t.Error("expected metric default")
			}
			if p.Theme(ctx) != ThemeAuto {
				t.Error("expected auto theme default")
			}
			f := p.Flags(ctx)
			if f.Sound || f.A11y || !f.AutoRefresh {
				t.Errorf("unexpected default flags %+v", f)
			}
			if favs := p.Favorites(ctx); favs == nil || len(favs) != 0 {
				t.Errorf("expected empty favorites, got %v", favs)
			}
			if _, ok := p.LastPlace(ctx); ok {
				t.Error("expected no last place")
			}
		})
	}
}

func TestMalformedValuesFallBackToDefault(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemoryStore(0)
	_ = mem.Set(ctx, Prefix+KeyFavorites, "{not json")
	_ = mem.Set(ctx, Prefix+KeyLastPlace, `{"name":"Nowhere","lat":123,"lon":0}`)
	_ = mem.Set(ctx, Prefix+KeyTheme, "purple")
	_ = mem.Set(ctx, Prefix+KeyAutoRefresh, "maybe")

	p := New(mem, nil)
	if len(p.Favorites(ctx)) != 0 {
		t.Error("expected malformed favorites to read as empty")
	}
	if _, ok := p.LastPlace(ctx); ok {
		t.Error("expected out-of-range place to be rejected")
	}
	if p.Theme(ctx) != ThemeAuto {
		t.Error("expected unknown theme to read as auto")
	}
	if !p.Flags(ctx).AutoRefresh {
		t.Error("expected unrecognised flag to read as default")
	}
}

func TestFlagsAndThemeRoundTrip(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemoryStore(0)
	p := New(mem, nil)

	if err := p.SetFlag(ctx, KeyAutoRefresh, false); err != nil {
		t.Fatal(err)
	}
	if v, _ := mem.Get(ctx, "wv:autoRefresh"); v != "0" {
		t.Errorf("expected flag stored as \"0\", got %q", v)
	}
	if p.Flags(ctx).AutoRefresh {
		t.Error("expected auto-refresh off")
	}

	th := p.Theme(ctx)
	for _, want := range []Theme{ThemeDark, ThemeLight, ThemeAuto} {
		th = th.Next()
		if th != want {
			t.Fatalf("Next() = %q, want %q", th, want)
		}
	}
	if err := p.SetTheme(ctx, ThemeLight); err != nil || p.Theme(ctx) != ThemeLight {
		t.Errorf("theme round trip failed: %v", err)
	}
}

func TestFavoritesRoundTrip(t *testing.T) {
	ctx := context.Background()
	p := New(store.NewMemoryStore(0), nil)

	oslo := weather.Place{Name: "Oslo", Latitude: 59.9139, Longitude: 10.7522}
	if err := p.SetFavorites(ctx, []weather.Place{oslo, oslo}); err != nil {
		t.Fatal(err)
	}
	got := p.Favorites(ctx)
	if len(got) != 1 || got[0].Name != "Oslo" {
		t.Errorf("expected deduplicated favorites, got %v", got)
	}
}

func TestWriteFailureIsReported(t *testing.T) {
	p := New(brokenStorage{}, nil)
	if err := p.SetUnit(context.Background(), weather.UnitImperial); !errors.Is(err, store.ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
}
