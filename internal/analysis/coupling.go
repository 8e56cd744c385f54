package analysis

import (
	"fmt"

	"github.com/quantumduality/qdtlab/internal/engine"
)

// couplingTailWindow caps the convergence-stability window.
const couplingTailWindow = 10

// PathAnalysis holds cross-series coupling statistics derived purely from
// caller-supplied series.
type PathAnalysis struct {
	VoidFilamentCoupling     float64 `json:"void_filament_coupling"`
	CrystalResonanceCoupling float64 `json:"crystal_resonance_coupling"`
	ConvergenceStability     float64 `json:"convergence_stability"`
	EffectiveDimensionality  float64 `json:"effective_dimensionality"`
	FinalConvergence         float64 `json:"final_convergence"`
}

// AnalyzePaths computes coupling statistics over six equal-length series.
// The series need not come from this process; any externally produced set
// with the right shape is accepted.
func AnalyzePaths(ts *engine.TimeSeries) (PathAnalysis, error) {
	if err := validateSeries(ts); err != nil {
		return PathAnalysis{}, err
	}

	n := ts.Len()
	w := couplingTailWindow
	if w > n {
		w = n
	}
	convergenceTail := ts.Convergence[n-w:]

	return PathAnalysis{
		VoidFilamentCoupling:     pearson(ts.Void, ts.Filament),
		CrystalResonanceCoupling: pearson(ts.CrystalPhase, ts.Resonance),
		ConvergenceStability:     1 / (1 + variance(convergenceTail)),
		EffectiveDimensionality:  participationRatio(ts),
		FinalConvergence:         ts.Convergence[n-1],
	}, nil
}

func validateSeries(ts *engine.TimeSeries) error {
	if ts == nil {
		return fmt.Errorf("%w: missing time series", engine.ErrInvalidInput)
	}

	series := map[string][]float64{
		"void":          ts.Void,
		"filament":      ts.Filament,
		"emergence":     ts.Emergence,
		"resonance":     ts.Resonance,
		"crystal_phase": ts.CrystalPhase,
		"convergence":   ts.Convergence,
	}

	n := len(ts.Void)
	for name, s := range series {
		if s == nil {
			return fmt.Errorf("%w: missing series %q", engine.ErrInvalidInput, name)
		}
		if len(s) != n {
			return fmt.Errorf("%w: series %q has length %d, expected %d",
				engine.ErrInvalidInput, name, len(s), n)
		}
	}
	if n < 2 {
		return fmt.Errorf("%w: series length %d, need at least 2", engine.ErrInvalidInput, n)
	}
	return nil
}

// participationRatio measures how variance spreads across the six series:
// (Σ var_k)² / Σ var_k². 1 means one series carries all variance, 6 means
// an even spread. Zero total variance yields 0.
func participationRatio(ts *engine.TimeSeries) float64 {
	vars := []float64{
		variance(ts.Void),
		variance(ts.Filament),
		variance(ts.Emergence),
		variance(ts.Resonance),
		variance(ts.CrystalPhase),
		variance(ts.Convergence),
	}

	sum := 0.0
	sumSq := 0.0
	for _, v := range vars {
		sum += v
		sumSq += v * v
	}
	if sumSq == 0 {
		return 0
	}
	return sum * sum / sumSq
}
