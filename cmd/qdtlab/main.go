// Command qdtlab runs dual-scale energy calculations from the terminal
// and serves them over HTTP.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"text/tabwriter"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"github.com/quantumduality/qdtlab/internal/analysis"
	"github.com/quantumduality/qdtlab/internal/batch"
	"github.com/quantumduality/qdtlab/internal/config"
	"github.com/quantumduality/qdtlab/internal/engine"
	"github.com/quantumduality/qdtlab/internal/llm"
	"github.com/quantumduality/qdtlab/internal/qdt"
	"github.com/quantumduality/qdtlab/internal/server"
	"github.com/quantumduality/qdtlab/internal/viz"
)

var (
	value      float64
	calcType   string
	steps      int
	threshold  float64
	window     int
	depth      int
	preset     string
	configFile string
	plot       bool
	asJSON     bool
	addr       string
)

func main() {
	slog.SetDefault(slog.New(
		tint.NewHandler(os.Stderr, &tint.Options{
			Level:      slog.LevelInfo,
			TimeFormat: "15:04:05",
		}),
	))

	rootCmd := &cobra.Command{
		Use:   "qdtlab",
		Short: "dual-scale energy calculation lab",
	}
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")

	calcCmd := &cobra.Command{
		Use:   "calculate",
		Short: "run one evolution and print its metrics",
		RunE:  runCalculate,
	}
	addCalcFlags(calcCmd)
	calcCmd.Flags().BoolVar(&plot, "plot", false, "plot the time series")
	calcCmd.Flags().BoolVar(&asJSON, "json", false, "emit the full result as JSON")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [file]",
		Short: "coupling analysis of a time series file",
		Args:  cobra.ExactArgs(1),
		RunE:  runAnalyze,
	}

	batchCmd := &cobra.Command{
		Use:   "batch [file]",
		Short: "run a batch of calculations from a JSON file",
		Args:  cobra.ExactArgs(1),
		RunE:  runBatch,
	}

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "watch an evolution step by step",
		RunE:  runLive,
	}
	addCalcFlags(liveCmd)

	constantsCmd := &cobra.Command{
		Use:   "constants",
		Short: "print the physical constants",
		Run: func(cmd *cobra.Command, args []string) {
			c := qdt.Default()
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "lambda\t%.3f\tcoupling\n", c.Lambda)
			fmt.Fprintf(w, "gamma\t%.4f\tdamping\n", c.Gamma)
			fmt.Fprintf(w, "beta\t%.3f\tfractal exponent\n", c.Beta)
			fmt.Fprintf(w, "eta\t%.3f\ttransfer rate\n", c.Eta)
			fmt.Fprintf(w, "phi\t%.15f\tphase constant\n", c.Phi)
			w.Flush()
		},
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list calculator presets",
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range config.ListPresets() {
				c := config.GetPreset(name)
				fmt.Printf("%-10s steps=%-5d threshold=%-7g window=%-4d depth=%d\n",
					name, c.EvolutionSteps, c.ConvergenceThreshold, c.StabilityWindow, c.ResonanceDepth)
			}
		},
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "serve the calculator HTTP API",
		RunE:  runServe,
	}
	serveCmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")

	rootCmd.AddCommand(calcCmd, analyzeCmd, batchCmd, liveCmd, constantsCmd, presetsCmd, serveCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addCalcFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&value, "value", 100.0, "input value")
	cmd.Flags().StringVar(&calcType, "type", "currency", "calculation type (currency|energy|probability)")
	cmd.Flags().IntVar(&steps, "steps", config.DefaultEvolutionSteps, "evolution steps")
	cmd.Flags().Float64Var(&threshold, "threshold", config.DefaultConvergenceThreshold, "convergence threshold")
	cmd.Flags().IntVar(&window, "window", config.DefaultStabilityWindow, "stability window")
	cmd.Flags().IntVar(&depth, "depth", config.DefaultResonanceDepth, "resonance depth")
	cmd.Flags().StringVar(&preset, "preset", "", "use a named preset")
}

// resolveCalcConfig layers preset, config file, and explicit flags, with
// flags winning.
func resolveCalcConfig(cmd *cobra.Command) (config.Calculator, error) {
	cfg := config.DefaultCalculator()

	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return cfg, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		cfg = *p
	}

	if configFile != "" {
		file, err := config.Load(configFile)
		if err != nil {
			return cfg, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = file.Calculator
	}

	if cmd.Flags().Changed("steps") {
		cfg.EvolutionSteps = steps
	}
	if cmd.Flags().Changed("threshold") {
		cfg.ConvergenceThreshold = threshold
	}
	if cmd.Flags().Changed("window") {
		cfg.StabilityWindow = window
	}
	if cmd.Flags().Changed("depth") {
		cfg.ResonanceDepth = depth
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

type resultDocument struct {
	Result             float64                     `json:"result"`
	OriginalValue      float64                     `json:"original_value"`
	CalculationType    string                      `json:"calculation_type"`
	VoidEnergy         float64                     `json:"void_energy"`
	FilamentEnergy     float64                     `json:"filament_energy"`
	EmergenceEnergy    float64                     `json:"emergence_energy"`
	TimeSeries         engine.TimeSeries           `json:"time_series"`
	ConvergenceMetrics analysis.ConvergenceMetrics `json:"convergence_metrics"`
}

func runCalculate(cmd *cobra.Command, args []string) error {
	cfg, err := resolveCalcConfig(cmd)
	if err != nil {
		return err
	}

	ct, err := engine.ParseCalcType(calcType)
	if err != nil {
		return err
	}

	eng := engine.New(qdt.Default())
	res, err := eng.Evolve(value, ct, cfg)
	if err != nil {
		return err
	}
	metrics, err := analysis.Convergence(res, cfg)
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(resultDocument{
			Result:             res.QDTValue,
			OriginalValue:      res.OriginalValue,
			CalculationType:    res.Type.String(),
			VoidEnergy:         res.VoidEnergy,
			FilamentEnergy:     res.FilamentEnergy,
			EmergenceEnergy:    res.EmergenceEnergy,
			TimeSeries:         res.Series,
			ConvergenceMetrics: metrics,
		})
	}

	fmt.Printf("qdt value: %.6f (from %s %g)\n", res.QDTValue, res.Type, res.OriginalValue)
	fmt.Printf("computed steps: %d of %d\n\n", res.StepsComputed, cfg.EvolutionSteps)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "void energy\t%.6f\n", res.VoidEnergy)
	fmt.Fprintf(w, "filament energy\t%.6f\n", res.FilamentEnergy)
	fmt.Fprintf(w, "emergence energy\t%.6f\n", res.EmergenceEnergy)
	fmt.Fprintf(w, "stability score\t%.4f\n", metrics.StabilityScore)
	fmt.Fprintf(w, "convergence rate\t%.6f\n", metrics.ConvergenceRate)
	fmt.Fprintf(w, "final convergence\t%.6f\n", metrics.FinalConvergence)
	fmt.Fprintf(w, "phase coherence\t%.4f\n", metrics.PhaseCoherence)
	fmt.Fprintf(w, "amplitude stability\t%.4f\n", metrics.AmplitudeStability)
	w.Flush()

	if plot {
		fmt.Println()
		fmt.Print(viz.RenderSeries(res))
	}

	return nil
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	// Accept both the wrapped API shape and a bare series object.
	var wrapped struct {
		TimeSeries *engine.TimeSeries `json:"time_series"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return fmt.Errorf("failed to parse %s: %w", args[0], err)
	}
	ts := wrapped.TimeSeries
	if ts == nil {
		ts = &engine.TimeSeries{}
		if err := json.Unmarshal(data, ts); err != nil {
			return fmt.Errorf("failed to parse %s: %w", args[0], err)
		}
	}

	out, err := analysis.AnalyzePaths(ts)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "void/filament coupling\t%.4f\n", out.VoidFilamentCoupling)
	fmt.Fprintf(w, "crystal/resonance coupling\t%.4f\n", out.CrystalResonanceCoupling)
	fmt.Fprintf(w, "convergence stability\t%.4f\n", out.ConvergenceStability)
	fmt.Fprintf(w, "effective dimensionality\t%.2f\n", out.EffectiveDimensionality)
	fmt.Fprintf(w, "final convergence\t%.6f\n", out.FinalConvergence)
	return w.Flush()
}

func runBatch(cmd *cobra.Command, args []string) error {
	cfg, err := resolveCalcConfig(cmd)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	var req struct {
		Calculations []struct {
			Value           float64 `json:"value"`
			CalculationType string  `json:"calculation_type"`
		} `json:"calculations"`
	}
	if err := json.Unmarshal(data, &req); err != nil {
		return fmt.Errorf("failed to parse %s: %w", args[0], err)
	}
	if len(req.Calculations) > batch.MaxItems {
		return fmt.Errorf("batch size %d exceeds limit %d", len(req.Calculations), batch.MaxItems)
	}

	items := make([]batch.Item, 0, len(req.Calculations))
	slots := make([]int, 0, len(req.Calculations))
	itemErrs := make([]error, len(req.Calculations))
	for i, c := range req.Calculations {
		ct, err := engine.ParseCalcType(c.CalculationType)
		if err != nil {
			itemErrs[i] = err
			continue
		}
		items = append(items, batch.Item{Value: c.Value, Type: ct})
		slots = append(slots, i)
	}

	coord := batch.New(engine.New(qdt.Default()), runtime.NumCPU())
	outcomes, err := coord.Run(context.Background(), items, cfg)
	if err != nil {
		return err
	}

	rows := make([]string, len(req.Calculations))
	for i, c := range req.Calculations {
		if itemErrs[i] != nil {
			rows[i] = fmt.Sprintf("%d\t%g\t%s\t-\t-\t%v", i, c.Value, c.CalculationType, itemErrs[i])
		}
	}
	for k, out := range outcomes {
		i := slots[k]
		if out.Err != nil {
			rows[i] = fmt.Sprintf("%d\t%g\t%s\t-\t-\t%v", i, out.Item.Value, out.Item.Type, out.Err)
			continue
		}
		rows[i] = fmt.Sprintf("%d\t%g\t%s\t%.6f\t%.4f\t", i, out.Item.Value, out.Item.Type, out.Result.QDTValue, out.Metrics.StabilityScore)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tINPUT\tTYPE\tQDT VALUE\tSTABILITY\tERROR")
	for _, row := range rows {
		fmt.Fprintln(w, row)
	}
	return w.Flush()
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveCalcConfig(cmd)
	if err != nil {
		return err
	}
	ct, err := engine.ParseCalcType(calcType)
	if err != nil {
		return err
	}

	m := viz.NewModel(engine.New(qdt.Default()), value, ct, cfg)
	p := tea.NewProgram(m)
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.DefaultFile()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}
	if addr != "" {
		cfg.Server.Addr = addr
	}

	assistant := llm.NewClient(cfg.Server.AssistantURL)
	srv := server.New(cfg, engine.New(qdt.Default()), assistant, slog.Default())
	return srv.ListenAndServe()
}
