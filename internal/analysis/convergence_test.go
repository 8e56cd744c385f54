package analysis_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/quantumduality/qdtlab/internal/analysis"
	"github.com/quantumduality/qdtlab/internal/config"
	"github.com/quantumduality/qdtlab/internal/engine"
	"github.com/quantumduality/qdtlab/internal/qdt"
)

// syntheticResult builds a result with constant series except for the
// supplied convergence tail values.
func syntheticResult(n int, convergence []float64) *engine.Result {
	res := &engine.Result{
		Series: engine.TimeSeries{
			Void:         constant(n, 1),
			Filament:     constant(n, 2),
			Emergence:    constant(n, 0.5),
			Resonance:    constant(n, 0),
			CrystalPhase: ramp(n, 0.1),
			Convergence:  constant(n, 0.01),
		},
		Combined: constant(n, 3.5),
	}
	copy(res.Series.Convergence[n-len(convergence):], convergence)
	return res
}

var _ = Describe("Convergence", func() {
	var (
		eng *engine.Engine
		cfg config.Calculator
	)

	BeforeEach(func() {
		eng = engine.New(qdt.Default())
		cfg = config.DefaultCalculator()
	})

	It("bounds every metric except the rate to [0,1]", func() {
		res, err := eng.Evolve(100.0, engine.Currency, cfg)
		Expect(err).NotTo(HaveOccurred())

		m, err := analysis.Convergence(res, cfg)
		Expect(err).NotTo(HaveOccurred())

		Expect(m.StabilityScore).To(And(BeNumerically(">=", 0), BeNumerically("<=", 1)))
		Expect(m.PhaseCoherence).To(And(BeNumerically(">=", 0), BeNumerically("<=", 1)))
		Expect(m.AmplitudeStability).To(And(BeNumerically(">=", 0), BeNumerically("<=", 1)))
	})

	It("is deterministic across runs", func() {
		res1, err := eng.Evolve(100.0, engine.Currency, cfg)
		Expect(err).NotTo(HaveOccurred())
		res2, err := eng.Evolve(100.0, engine.Currency, cfg)
		Expect(err).NotTo(HaveOccurred())

		m1, err := analysis.Convergence(res1, cfg)
		Expect(err).NotTo(HaveOccurred())
		m2, err := analysis.Convergence(res2, cfg)
		Expect(err).NotTo(HaveOccurred())

		Expect(m1).To(Equal(m2))
	})

	It("reports the final convergence entry", func() {
		res := syntheticResult(50, []float64{0.5, 0.4, 0.3})

		m, err := analysis.Convergence(res, cfg)
		Expect(err).NotTo(HaveOccurred())
		Expect(m.FinalConvergence).To(Equal(0.3))
	})

	It("reports a negative rate for a decreasing tail", func() {
		tail := []float64{1.0, 0.9, 0.8, 0.7, 0.6, 0.5, 0.4, 0.3, 0.2, 0.1}
		res := syntheticResult(50, tail)

		m, err := analysis.Convergence(res, cfg)
		Expect(err).NotTo(HaveOccurred())
		Expect(m.ConvergenceRate).To(BeNumerically("~", -0.1, 1e-12))
	})

	It("scores a flat combined tail as fully stable", func() {
		res := syntheticResult(50, []float64{0.01})

		m, err := analysis.Convergence(res, cfg)
		Expect(err).NotTo(HaveOccurred())
		Expect(m.StabilityScore).To(BeNumerically("~", 1.0, 1e-9))
	})

	It("fails with InsufficientData when the series is shorter than the window", func() {
		res := syntheticResult(5, []float64{0.01})

		_, err := analysis.Convergence(res, cfg)
		Expect(err).To(MatchError(engine.ErrInsufficientData))
	})

	It("caps the coherence lag at the series length", func() {
		short := config.Calculator{
			EvolutionSteps:       10,
			ConvergenceThreshold: 0.01,
			StabilityWindow:      10,
			ResonanceDepth:       10,
		}
		res, err := eng.Evolve(5.0, engine.Energy, short)
		Expect(err).NotTo(HaveOccurred())

		m, err := analysis.Convergence(res, short)
		Expect(err).NotTo(HaveOccurred())
		Expect(m.PhaseCoherence).To(And(BeNumerically(">=", 0), BeNumerically("<=", 1)))
	})
})
