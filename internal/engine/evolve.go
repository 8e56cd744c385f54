package engine

import (
	"fmt"
	"math"

	"github.com/quantumduality/qdtlab/internal/config"
	"github.com/quantumduality/qdtlab/internal/qdt"
)

// Engine runs dual-scale evolutions against one immutable constant set.
// Engines are stateless between calls and safe for concurrent use.
type Engine struct {
	constants qdt.Constants
}

func New(constants qdt.Constants) *Engine {
	return &Engine{constants: constants}
}

// Constants returns the injected constant set.
func (e *Engine) Constants() qdt.Constants {
	return e.constants
}

// Evolve runs the step recurrence for one (value, type) pair.
//
// The recurrence for step i with t = i/N:
//
//	phase     = (2π·φ·i) mod 2π
//	crystal   = sin(phase) · exp(−γ·t)
//	void      = value · λ · exp(−γ·t) · (1 + β·sin(phase))
//	filament  = value · (1−λ) · (1 − exp(−η·t))
//	emergence = η · sqrt(|void · filament|)
//	resonance = crystal · (void + filament) / (value + ε)
//	combined  = void + filament + emergence
//
// convergence(i) is the relative change of the combined estimate, with
// convergence(0) = 1. Probability runs clip the energies and the combined
// estimate into [0,1] at every step before convergence is evaluated.
func (e *Engine) Evolve(value float64, calcType CalcType, cfg config.Calculator) (*Result, error) {
	if !isFinite(value) {
		return nil, fmt.Errorf("%w: value must be finite, got %v", ErrInvalidInput, value)
	}
	if !calcType.valid() {
		return nil, fmt.Errorf("%w: unrecognized calculation type %d", ErrInvalidInput, int(calcType))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := e.constants
	n := cfg.EvolutionSteps

	res := &Result{
		OriginalValue: value,
		Type:          calcType,
		Series:        newTimeSeries(n),
		Combined:      make([]float64, n),
	}

	twoPi := 2 * math.Pi
	prevCombined := 0.0
	belowThreshold := 0
	computed := n

	for i := 0; i < n; i++ {
		t := float64(i) / float64(n)

		phase := math.Mod(twoPi*c.Phi*float64(i), twoPi)
		decay := math.Exp(-c.Gamma * t)

		crystal := math.Sin(phase) * decay
		void := value * c.Lambda * decay * (1 + c.Beta*math.Sin(phase))
		filament := value * (1 - c.Lambda) * (1 - math.Exp(-c.Eta*t))
		emergence := c.Eta * math.Sqrt(math.Abs(void*filament))
		resonance := crystal * (void + filament) / (value + c.Epsilon)

		if calcType == Probability {
			void = clip01(void)
			filament = clip01(filament)
			emergence = clip01(emergence)
		}

		combined := void + filament + emergence
		if calcType == Probability {
			combined = clip01(combined)
		}

		if !isFinite(void) || !isFinite(filament) || !isFinite(emergence) || !isFinite(combined) {
			return nil, &EvolutionError{Step: i, Wrapped: ErrNumericOverflow}
		}

		convergence := 1.0
		if i > 0 {
			convergence = math.Abs(combined-prevCombined) / (math.Abs(prevCombined) + c.Epsilon)
		}
		prevCombined = combined

		res.Series.Void[i] = void
		res.Series.Filament[i] = filament
		res.Series.Emergence[i] = emergence
		res.Series.Resonance[i] = resonance
		res.Series.CrystalPhase[i] = crystal
		res.Series.Convergence[i] = convergence
		res.Combined[i] = combined

		if convergence < cfg.ConvergenceThreshold {
			belowThreshold++
		} else {
			belowThreshold = 0
		}

		// Converged for a full window: stop iterating, hold the last
		// values so every series keeps its full requested length.
		if belowThreshold >= cfg.StabilityWindow && i < n-1 {
			holdFrom(res, i)
			computed = i + 1
			break
		}
	}

	res.StepsComputed = computed

	last := n - 1
	res.VoidEnergy = res.Series.Void[last]
	res.FilamentEnergy = res.Series.Filament[last]
	res.EmergenceEnergy = res.Series.Emergence[last]
	res.QDTValue = res.Combined[last]

	return res, nil
}

func holdFrom(res *Result, i int) {
	n := len(res.Combined)
	for j := i + 1; j < n; j++ {
		res.Series.Void[j] = res.Series.Void[i]
		res.Series.Filament[j] = res.Series.Filament[i]
		res.Series.Emergence[j] = res.Series.Emergence[i]
		res.Series.Resonance[j] = res.Series.Resonance[i]
		res.Series.CrystalPhase[j] = res.Series.CrystalPhase[i]
		res.Series.Convergence[j] = res.Series.Convergence[i]
		res.Combined[j] = res.Combined[i]
	}
}

func clip01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
