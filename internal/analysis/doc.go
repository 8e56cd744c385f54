// Package analysis derives scalar statistics from evolution time series.
//
// Two analyzers operate on different inputs:
//
//   - [Convergence]: reduces one evolution result to five stability and
//     convergence metrics over the tail window
//   - [AnalyzePaths]: computes cross-series couplings and an effective
//     dimensionality estimate from six caller-supplied series
//
// Both are pure functions; they never mutate their inputs.
package analysis
