// Package engine implements the dual-scale energy evolution.
//
// A single evolution takes a scalar input and a resolved calculator
// configuration and iterates a fixed recurrence over discrete steps:
//
//   - [CalcType]: closed set of recognized calculation types
//   - [Engine]: runs the per-step recurrence
//   - [Result]: six parallel time series plus final energies
//
// # Determinism
//
// Evolve is a pure function of (value, type, config) and the injected
// constants. Identical inputs always produce bit-identical outputs, so
// callers may cache results keyed on the input alone.
//
// # Fixed-length output
//
// All six series always contain exactly config.EvolutionSteps entries.
// When the convergence criterion is met early, the engine stops iterating
// and holds the last computed values for the remaining indices.
package engine
