// Package qdt holds the physical constants of the dual-scale energy model.
// The values are fixed at startup and never derived from input; every
// calculation receives the same immutable set.
package qdt

// Constants couples the void and filament scales of the model.
type Constants struct {
	// Lambda is the void/filament coupling parameter.
	Lambda float64

	// Gamma is the damping parameter for the void-scale decay envelope.
	Gamma float64

	// Beta is the fractal exponent modulating the phase oscillation.
	Beta float64

	// Eta is the energy transfer rate between the two scales.
	Eta float64

	// Phi is the golden ratio, driving the crystal phase angle.
	Phi float64

	// Epsilon guards divisions against zero denominators.
	Epsilon float64
}

// Default returns the reference constant set.
func Default() Constants {
	return Constants{
		Lambda:  0.867,
		Gamma:   0.4497,
		Beta:    0.310,
		Eta:     0.520,
		Phi:     1.618033988749895,
		Epsilon: 1e-10,
	}
}
