package engine

import (
	"fmt"
	"math"
)

// CalcType is the closed set of recognized calculation types. Unknown
// tags are rejected at the boundary, before the recurrence runs.
type CalcType int

const (
	Currency CalcType = iota
	Energy
	Probability
)

var calcTypeNames = map[CalcType]string{
	Currency:    "currency",
	Energy:      "energy",
	Probability: "probability",
}

func (t CalcType) String() string {
	if name, ok := calcTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("CalcType(%d)", int(t))
}

func (t CalcType) valid() bool {
	_, ok := calcTypeNames[t]
	return ok
}

// ParseCalcType maps a wire tag to a CalcType.
func ParseCalcType(s string) (CalcType, error) {
	for t, name := range calcTypeNames {
		if name == s {
			return t, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown calculation type %q", ErrInvalidInput, s)
}

// TimeSeries holds the six equal-length series produced by an evolution,
// indexed by step. Entries are never mutated after the run completes.
type TimeSeries struct {
	Void         []float64 `json:"void"`
	Filament     []float64 `json:"filament"`
	Emergence    []float64 `json:"emergence"`
	Resonance    []float64 `json:"resonance"`
	CrystalPhase []float64 `json:"crystal_phase"`
	Convergence  []float64 `json:"convergence"`
}

func (ts *TimeSeries) Len() int {
	return len(ts.Void)
}

func newTimeSeries(n int) TimeSeries {
	return TimeSeries{
		Void:         make([]float64, n),
		Filament:     make([]float64, n),
		Emergence:    make([]float64, n),
		Resonance:    make([]float64, n),
		CrystalPhase: make([]float64, n),
		Convergence:  make([]float64, n),
	}
}

// Result is the immutable outcome of one evolution.
type Result struct {
	OriginalValue   float64
	Type            CalcType
	QDTValue        float64
	VoidEnergy      float64
	FilamentEnergy  float64
	EmergenceEnergy float64
	Series          TimeSeries

	// Combined is the per-step combined energy estimate. For probability
	// runs the entries are clipped into [0,1] like the energies they sum.
	Combined []float64

	// StepsComputed is the number of steps actually iterated before the
	// convergence criterion stopped the run. Always <= Series.Len().
	StepsComputed int
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
