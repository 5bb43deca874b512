package terramap

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
)

func TestDefaultSettingsValid(t *testing.T) {
	cfg := DefaultSettings()

	err := cfg.Validate()

	if err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
	if cfg.pointCount() != 500*500 {
		t.Errorf("expected %d points got %d", 500*500, cfg.pointCount())
	}
}

func TestLoadSettings(t *testing.T) {
	fpath := filepath.Join(t.TempDir(), "settings.yaml")
	doc := []byte(`
seed: 42
area: {min_x: 0, min_y: 0, max_x: 20, max_y: 10}
resolution: 2
sampler: poisson
flow_policy: slope
hills:
  - {count: 2, strength: 1.5, radius: 3}
`)
	if err := os.WriteFile(fpath, doc, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadSettings(fpath)

	if err != nil {
		t.Fatal(err)
	}
	if cfg.Seed != 42 {
		t.Errorf("expected seed 42 got %d", cfg.Seed)
	}
	if cfg.Area.Width() != 20 || cfg.Area.Height() != 10 {
		t.Errorf("unexpected area %+v", cfg.Area)
	}
	if cfg.sampler() != SamplerPoisson {
		t.Errorf("expected poisson sampler got %s", cfg.sampler())
	}
	if len(cfg.Hills) != 1 || cfg.Hills[0].Radius != 3 {
		t.Errorf("unexpected hills %+v", cfg.Hills)
	}
	// untouched fields keep their defaults
	if cfg.Rainfall != DefaultSettings().Rainfall {
		t.Errorf("expected default rainfall got %v", cfg.Rainfall)
	}
}

func TestLoadSettingsMissing(t *testing.T) {
	_, err := LoadSettings(filepath.Join(t.TempDir(), "nope.yaml"))

	if !os.IsNotExist(errors.Cause(err)) {
		t.Errorf("expected not exist error got %v", err)
	}
}

func TestValidateRejects(t *testing.T) {
	cases := []struct {
		Name   string
		Modify func(s *Settings)
	}{
		{"zero resolution", func(s *Settings) { s.Resolution = 0 }},
		{"negative rainfall", func(s *Settings) { s.Rainfall = -1 }},
		{"unknown sampler", func(s *Settings) { s.Sampler = "hexagonal" }},
		{"unknown policy", func(s *Settings) { s.FlowPolicy = "steepest" }},
		{"inverted area", func(s *Settings) { s.Area = Area{MinX: 10, MinY: 0, MaxX: 0, MaxY: 10} }},
		{"too few points", func(s *Settings) { s.Area = Area{MaxX: 1, MaxY: 1} }},
		{"flat fill", func(s *Settings) { s.MinPDSlope = 0 }},
		{"river threshold", func(s *Settings) { s.RiverThreshold = 1.5 }},
		{"moisture zone", func(s *Settings) { s.MoistureZone = 6 }},
		{"hill radius", func(s *Settings) { s.Hills = []HillTier{{Count: 1, Strength: 1}} }},
	}

	for _, tt := range cases {
		t.Run(tt.Name, func(t *testing.T) {
			cfg := DefaultSettings()
			tt.Modify(cfg)

			err := cfg.Validate()

			if !errors.Is(err, ErrInvalidSettings) {
				t.Errorf("expected ErrInvalidSettings got %v", err)
			}
		})
	}
}
