package render

import (
	"sync"

	"github.com/i474232898/weathervision/internal/controller"
	"github.com/i474232898/weathervision/internal/format"
	"go.uber.org/zap"
)

// Profile is the ambient sound target for the current conditions. It only
// describes the mix; playing it is up to the subscriber.
type Profile struct {
	Gain     float64 `json:"gain"`
	FilterHz float64 `json:"filterHz"`
	Thunder  bool    `json:"thunder"`
}

// ProfileFor maps a weather code to a profile. Disabled sound is silent.
func ProfileFor(code *int, enabled bool) Profile {
	p := Profile{FilterHz: 1200}
	switch format.CategoryOf(code) {
	case format.CategoryRain, format.CategoryStorm:
		p = Profile{Gain: 0.28, FilterHz: 900}
	case format.CategorySnow:
		p = Profile{Gain: 0.18, FilterHz: 1500}
	case format.CategoryFog:
		p = Profile{Gain: 0.12, FilterHz: 700}
	}
	p.Thunder = format.IsStorm(code)
	if !enabled {
		p.Gain, p.Thunder = 0, false
	}
	return p
}

// Soundscape is a renderer that tracks the target profile and reports
// changes to onChange. A panicking subscriber is contained.
type Soundscape struct {
	log      *zap.Logger
	onChange func(Profile)

	mu      sync.Mutex
	profile Profile
}

func NewSoundscape(onChange func(Profile), log *zap.Logger) *Soundscape {
	if log == nil {
		log = zap.NewNop()
	}
	return &Soundscape{log: log.Named("soundscape"), onChange: onChange, profile: ProfileFor(nil, false)}
}

func (s *Soundscape) Render(v controller.View) {
	var code *int
	if v.Snapshot != nil {
		code = v.Snapshot.Current.WeatherCode
	}
	p := ProfileFor(code, v.Flags.Sound && v.Snapshot != nil && !v.Blocked())

	s.mu.Lock()
	changed := p != s.profile
	s.profile = p
	s.mu.Unlock()

	if changed && s.onChange != nil {
		s.notify(p)
	}
}

func (s *Soundscape) notify(p Profile) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Warn("sound subscriber failed", zap.Any("panic", r))
		}
	}()
	s.onChange(p)
}

// Profile returns the current target.
func (s *Soundscape) Profile() Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile
}
