package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultEvolutionSteps       = 100
	DefaultConvergenceThreshold = 0.01
	DefaultStabilityWindow      = 10
	DefaultResonanceDepth       = 5

	MinEvolutionSteps = 10
	MaxEvolutionSteps = 1000
)

// ErrInvalidConfig marks calculator parameters outside their documented ranges.
var ErrInvalidConfig = errors.New("config: invalid calculator parameters")

// Calculator holds the four tunable parameters of an evolution run.
// A resolved Calculator is immutable for the lifetime of a request.
type Calculator struct {
	EvolutionSteps       int     `yaml:"evolution_steps" json:"evolution_steps"`
	ConvergenceThreshold float64 `yaml:"convergence_threshold" json:"convergence_threshold"`
	StabilityWindow      int     `yaml:"stability_window" json:"stability_window"`
	ResonanceDepth       int     `yaml:"resonance_depth" json:"resonance_depth"`
}

// Overrides carries optional caller-supplied parameter values.
// Nil fields keep their defaults.
type Overrides struct {
	EvolutionSteps       *int
	ConvergenceThreshold *float64
	StabilityWindow      *int
	ResonanceDepth       *int
}

func DefaultCalculator() Calculator {
	return Calculator{
		EvolutionSteps:       DefaultEvolutionSteps,
		ConvergenceThreshold: DefaultConvergenceThreshold,
		StabilityWindow:      DefaultStabilityWindow,
		ResonanceDepth:       DefaultResonanceDepth,
	}
}

// Resolve merges overrides onto the defaults and validates the result.
// It is a pure function; the returned Calculator is safe to share.
func Resolve(o Overrides) (Calculator, error) {
	c := DefaultCalculator()
	if o.EvolutionSteps != nil {
		c.EvolutionSteps = *o.EvolutionSteps
	}
	if o.ConvergenceThreshold != nil {
		c.ConvergenceThreshold = *o.ConvergenceThreshold
	}
	if o.StabilityWindow != nil {
		c.StabilityWindow = *o.StabilityWindow
	}
	if o.ResonanceDepth != nil {
		c.ResonanceDepth = *o.ResonanceDepth
	}
	if err := c.Validate(); err != nil {
		return Calculator{}, err
	}
	return c, nil
}

func (c Calculator) Validate() error {
	if c.EvolutionSteps < MinEvolutionSteps || c.EvolutionSteps > MaxEvolutionSteps {
		return fmt.Errorf("%w: evolution_steps must be in [%d,%d], got %d",
			ErrInvalidConfig, MinEvolutionSteps, MaxEvolutionSteps, c.EvolutionSteps)
	}
	if c.ConvergenceThreshold <= 0 {
		return fmt.Errorf("%w: convergence_threshold must be positive, got %g",
			ErrInvalidConfig, c.ConvergenceThreshold)
	}
	if c.StabilityWindow < 1 || c.StabilityWindow > c.EvolutionSteps {
		return fmt.Errorf("%w: stability_window must be in [1,%d], got %d",
			ErrInvalidConfig, c.EvolutionSteps, c.StabilityWindow)
	}
	if c.ResonanceDepth < 1 || c.ResonanceDepth > c.EvolutionSteps {
		return fmt.Errorf("%w: resonance_depth must be in [1,%d], got %d",
			ErrInvalidConfig, c.EvolutionSteps, c.ResonanceDepth)
	}
	return nil
}

// Server holds the HTTP layer settings.
type Server struct {
	Addr           string        `yaml:"addr"`
	RateLimit      int           `yaml:"rate_limit"`
	RateWindow     time.Duration `yaml:"rate_window"`
	CacheSize      int           `yaml:"cache_size"`
	AssistantURL   string        `yaml:"assistant_url"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
}

func DefaultServer() Server {
	return Server{
		Addr:       ":8080",
		RateLimit:  30,
		RateWindow: time.Minute,
		CacheSize:  256,
	}
}

// File is the on-disk configuration layout.
type File struct {
	Calculator Calculator `yaml:"calculator"`
	Server     Server     `yaml:"server"`
}

func DefaultFile() *File {
	return &File{
		Calculator: DefaultCalculator(),
		Server:     DefaultServer(),
	}
}

func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultFile()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Calculator.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *File) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
