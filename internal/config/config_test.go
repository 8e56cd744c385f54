package config

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestDefaultCalculator(t *testing.T) {
	c := DefaultCalculator()

	if c.EvolutionSteps != 100 {
		t.Errorf("expected 100 evolution steps, got %d", c.EvolutionSteps)
	}
	if c.ConvergenceThreshold != 0.01 {
		t.Errorf("expected threshold 0.01, got %g", c.ConvergenceThreshold)
	}
	if c.StabilityWindow != 10 {
		t.Errorf("expected stability window 10, got %d", c.StabilityWindow)
	}
	if c.ResonanceDepth != 5 {
		t.Errorf("expected resonance depth 5, got %d", c.ResonanceDepth)
	}
	if err := c.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }

func TestResolveOverrides(t *testing.T) {
	c, err := Resolve(Overrides{
		EvolutionSteps:       intPtr(200),
		ConvergenceThreshold: floatPtr(0.005),
	})
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if c.EvolutionSteps != 200 {
		t.Errorf("expected 200 steps, got %d", c.EvolutionSteps)
	}
	if c.ConvergenceThreshold != 0.005 {
		t.Errorf("expected threshold 0.005, got %g", c.ConvergenceThreshold)
	}
	if c.StabilityWindow != DefaultStabilityWindow {
		t.Errorf("expected default window, got %d", c.StabilityWindow)
	}
}

func TestResolveInvalid(t *testing.T) {
	tests := []struct {
		name string
		o    Overrides
	}{
		{"steps below minimum", Overrides{EvolutionSteps: intPtr(9)}},
		{"steps above maximum", Overrides{EvolutionSteps: intPtr(1001)}},
		{"zero threshold", Overrides{ConvergenceThreshold: floatPtr(0)}},
		{"negative threshold", Overrides{ConvergenceThreshold: floatPtr(-0.01)}},
		{"zero window", Overrides{StabilityWindow: intPtr(0)}},
		{"window exceeds steps", Overrides{EvolutionSteps: intPtr(10), StabilityWindow: intPtr(11)}},
		{"zero depth", Overrides{ResonanceDepth: intPtr(0)}},
		{"depth exceeds steps", Overrides{EvolutionSteps: intPtr(10), ResonanceDepth: intPtr(11)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Resolve(tt.o)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestBoundarySteps(t *testing.T) {
	for _, steps := range []int{MinEvolutionSteps, MaxEvolutionSteps} {
		if _, err := Resolve(Overrides{EvolutionSteps: intPtr(steps)}); err != nil {
			t.Errorf("steps=%d should resolve: %v", steps, err)
		}
	}
}

func TestGetPreset(t *testing.T) {
	c := GetPreset("fast")
	if c == nil {
		t.Fatal("expected preset, got nil")
	}
	if c.EvolutionSteps != 50 {
		t.Errorf("expected 50 steps, got %d", c.EvolutionSteps)
	}
	if err := c.Validate(); err != nil {
		t.Errorf("preset should validate: %v", err)
	}

	if GetPreset("nonexistent") != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestListPresets(t *testing.T) {
	names := ListPresets()
	if len(names) == 0 {
		t.Error("expected preset names")
	}
}

func TestAllPresetsValidate(t *testing.T) {
	for _, name := range ListPresets() {
		if err := GetPreset(name).Validate(); err != nil {
			t.Errorf("preset %s: %v", name, err)
		}
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "qdtlab.yaml")

	cfg := DefaultFile()
	cfg.Calculator.EvolutionSteps = 250
	cfg.Server.Addr = ":9090"

	if err := Save(path, cfg); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.Calculator.EvolutionSteps != 250 {
		t.Errorf("expected 250 steps, got %d", loaded.Calculator.EvolutionSteps)
	}
	if loaded.Server.Addr != ":9090" {
		t.Errorf("expected :9090, got %s", loaded.Server.Addr)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "qdtlab.yaml")

	cfg := DefaultFile()
	cfg.Calculator.EvolutionSteps = 5
	if err := Save(path, cfg); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Error("expected load to reject out-of-range steps")
	}
}
