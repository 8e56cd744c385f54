package analysis_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/quantumduality/qdtlab/internal/analysis"
	"github.com/quantumduality/qdtlab/internal/engine"
)

// ramp returns 0, step, 2*step, ...
func ramp(n int, step float64) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = float64(i) * step
	}
	return s
}

func constant(n int, v float64) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = v
	}
	return s
}

func negate(in []float64) []float64 {
	s := make([]float64, len(in))
	for i, v := range in {
		s[i] = -v
	}
	return s
}

var _ = Describe("AnalyzePaths", func() {
	newSeries := func(n int) *engine.TimeSeries {
		return &engine.TimeSeries{
			Void:         ramp(n, 1),
			Filament:     ramp(n, 2),
			Emergence:    ramp(n, 0.5),
			Resonance:    ramp(n, -1),
			CrystalPhase: ramp(n, 3),
			Convergence:  constant(n, 0.25),
		}
	}

	It("reports coupling 1 for an identical pair", func() {
		ts := newSeries(20)
		ts.Filament = ramp(20, 1)

		out, err := analysis.AnalyzePaths(ts)
		Expect(err).NotTo(HaveOccurred())
		Expect(out.VoidFilamentCoupling).To(BeNumerically("~", 1.0, 1e-12))
	})

	It("reports coupling -1 for an exact negation", func() {
		ts := newSeries(20)
		ts.Resonance = negate(ts.CrystalPhase)

		out, err := analysis.AnalyzePaths(ts)
		Expect(err).NotTo(HaveOccurred())
		Expect(out.CrystalResonanceCoupling).To(BeNumerically("~", -1.0, 1e-12))
	})

	It("defines coupling as 0 when one series has zero variance", func() {
		ts := newSeries(20)
		ts.Void = constant(20, 4.2)

		out, err := analysis.AnalyzePaths(ts)
		Expect(err).NotTo(HaveOccurred())
		Expect(out.VoidFilamentCoupling).To(BeZero())
	})

	It("returns the last convergence entry", func() {
		ts := newSeries(20)
		ts.Convergence[19] = 0.875

		out, err := analysis.AnalyzePaths(ts)
		Expect(err).NotTo(HaveOccurred())
		Expect(out.FinalConvergence).To(Equal(0.875))
	})

	It("reports stability 1 for constant convergence", func() {
		out, err := analysis.AnalyzePaths(newSeries(20))
		Expect(err).NotTo(HaveOccurred())
		Expect(out.ConvergenceStability).To(BeNumerically("~", 1.0, 1e-12))
	})

	Describe("effective dimensionality", func() {
		It("approaches 6 when variance spreads evenly", func() {
			n := 20
			ts := &engine.TimeSeries{
				Void:         ramp(n, 1),
				Filament:     ramp(n, 1),
				Emergence:    ramp(n, 1),
				Resonance:    ramp(n, 1),
				CrystalPhase: ramp(n, 1),
				Convergence:  ramp(n, 1),
			}

			out, err := analysis.AnalyzePaths(ts)
			Expect(err).NotTo(HaveOccurred())
			Expect(out.EffectiveDimensionality).To(BeNumerically("~", 6.0, 1e-9))
		})

		It("collapses to 1 when one series carries all variance", func() {
			n := 20
			ts := &engine.TimeSeries{
				Void:         ramp(n, 1),
				Filament:     constant(n, 1),
				Emergence:    constant(n, 2),
				Resonance:    constant(n, 3),
				CrystalPhase: constant(n, 4),
				Convergence:  constant(n, 5),
			}

			out, err := analysis.AnalyzePaths(ts)
			Expect(err).NotTo(HaveOccurred())
			Expect(out.EffectiveDimensionality).To(BeNumerically("~", 1.0, 1e-9))
		})
	})

	Describe("input validation", func() {
		It("rejects a nil series set", func() {
			_, err := analysis.AnalyzePaths(nil)
			Expect(err).To(MatchError(engine.ErrInvalidInput))
		})

		It("rejects a missing series", func() {
			ts := newSeries(20)
			ts.Emergence = nil

			_, err := analysis.AnalyzePaths(ts)
			Expect(err).To(MatchError(engine.ErrInvalidInput))
		})

		It("rejects mismatched lengths", func() {
			ts := newSeries(20)
			ts.Resonance = ramp(19, 1)

			_, err := analysis.AnalyzePaths(ts)
			Expect(err).To(MatchError(engine.ErrInvalidInput))
		})

		It("rejects series shorter than 2", func() {
			_, err := analysis.AnalyzePaths(newSeries(1))
			Expect(err).To(MatchError(engine.ErrInvalidInput))
		})
	})
})
