package config

// Named calculator presets for common trade-offs between run time and
// convergence resolution.
var presets = map[string]Calculator{
	"default": DefaultCalculator(),
	"fast": {
		EvolutionSteps:       50,
		ConvergenceThreshold: 0.05,
		StabilityWindow:      5,
		ResonanceDepth:       3,
	},
	"fine": {
		EvolutionSteps:       500,
		ConvergenceThreshold: 0.001,
		StabilityWindow:      25,
		ResonanceDepth:       5,
	},
	"deep": {
		EvolutionSteps:       200,
		ConvergenceThreshold: 0.01,
		StabilityWindow:      10,
		ResonanceDepth:       20,
	},
}

// GetPreset returns a copy of the named preset, or nil if unknown.
func GetPreset(name string) *Calculator {
	c, ok := presets[name]
	if !ok {
		return nil
	}
	return &c
}

// ListPresets returns the available preset names.
func ListPresets() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	return names
}
