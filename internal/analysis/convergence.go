package analysis

import (
	"fmt"

	"github.com/quantumduality/qdtlab/internal/config"
	"github.com/quantumduality/qdtlab/internal/engine"
)

// ConvergenceMetrics summarizes the stability of one evolution. All fields
// are bounded to [0,1] except ConvergenceRate, which is negative while the
// combined estimate is still settling.
type ConvergenceMetrics struct {
	StabilityScore     float64 `json:"stability_score"`
	ConvergenceRate    float64 `json:"convergence_rate"`
	FinalConvergence   float64 `json:"final_convergence"`
	PhaseCoherence     float64 `json:"phase_coherence"`
	AmplitudeStability float64 `json:"amplitude_stability"`
}

// Convergence reduces an evolution result to five scalar metrics, looking
// only at the final StabilityWindow entries of each series.
func Convergence(res *engine.Result, cfg config.Calculator) (ConvergenceMetrics, error) {
	n := res.Series.Len()
	w := cfg.StabilityWindow
	if n < w || len(res.Combined) < w {
		// The engine's fixed-length invariant makes this unreachable from
		// Evolve output, but externally constructed results are checked.
		return ConvergenceMetrics{}, fmt.Errorf("%w: series length %d, window %d",
			engine.ErrInsufficientData, n, w)
	}

	combinedTail := res.Combined[n-w:]
	convergenceTail := res.Series.Convergence[n-w:]
	filamentTail := res.Series.Filament[n-w:]

	stability := clamp01(1 - variance(combinedTail)/(mean(combinedTail)+epsilon))

	lag := cfg.ResonanceDepth
	if lag > n-1 {
		lag = n - 1
	}
	coherence := clamp01(autocorr(res.Series.CrystalPhase, lag))

	minFil, maxFil := filamentTail[0], filamentTail[0]
	for _, v := range filamentTail {
		if v < minFil {
			minFil = v
		}
		if v > maxFil {
			maxFil = v
		}
	}
	amplitude := clamp01(1 - (maxFil-minFil)/(mean(filamentTail)+epsilon))

	return ConvergenceMetrics{
		StabilityScore:     stability,
		ConvergenceRate:    slope(convergenceTail),
		FinalConvergence:   res.Series.Convergence[n-1],
		PhaseCoherence:     coherence,
		AmplitudeStability: amplitude,
	}, nil
}
