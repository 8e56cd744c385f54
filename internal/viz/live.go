package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/quantumduality/qdtlab/internal/analysis"
	"github.com/quantumduality/qdtlab/internal/config"
	"github.com/quantumduality/qdtlab/internal/engine"
)

// TickMsg advances the live playback.
type TickMsg time.Time

// Model replays a completed evolution step by step. The run itself is
// computed up front (it is deterministic and fast); the viewer only
// controls how much of it is revealed.
type Model struct {
	res     *engine.Result
	metrics analysis.ConvergenceMetrics
	cfg     config.Calculator

	cursor  int
	running bool
	err     error
}

// NewModel evolves the given input and prepares the playback.
func NewModel(eng *engine.Engine, value float64, calcType engine.CalcType, cfg config.Calculator) Model {
	m := Model{cfg: cfg, running: true, cursor: 2}

	res, err := eng.Evolve(value, calcType, cfg)
	if err != nil {
		m.err = err
		return m
	}
	metrics, err := analysis.Convergence(res, cfg)
	if err != nil {
		m.err = err
		return m
	}
	m.res = res
	m.metrics = metrics
	return m
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/30, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.cursor = 2
			m.running = true
		}
	case TickMsg:
		if m.err != nil {
			return m, nil
		}
		if m.running && m.cursor < m.res.Series.Len() {
			m.cursor++
		}
		return m, tick()
	}
	return m, nil
}

func (m Model) View() string {
	if m.err != nil {
		return fmt.Sprintf("evolution failed: %v\n\npress q to quit\n", m.err)
	}

	var b strings.Builder

	b.WriteString(headerStyle.Render(fmt.Sprintf("qdt evolution — %s(%g)", m.res.Type, m.res.OriginalValue)))
	b.WriteString("\n")
	b.WriteString(graphStyle.Render(RenderCombined(m.res, m.cursor)))
	b.WriteString("\n")

	i := m.cursor - 1
	rows := []struct {
		label string
		value float64
	}{
		{"void energy", m.res.Series.Void[i]},
		{"filament energy", m.res.Series.Filament[i]},
		{"emergence energy", m.res.Series.Emergence[i]},
		{"combined estimate", m.res.Combined[i]},
		{"convergence", m.res.Series.Convergence[i]},
	}
	fmt.Fprintf(&b, "%s%s\n", labelStyle.Render("step"),
		valueStyle.Render(fmt.Sprintf("%d / %d", m.cursor, m.res.Series.Len())))
	for _, row := range rows {
		fmt.Fprintf(&b, "%s%s\n", labelStyle.Render(row.label),
			valueStyle.Render(fmt.Sprintf("%.6f", row.value)))
	}

	if m.cursor >= m.res.Series.Len() {
		b.WriteString("\n")
		b.WriteString(doneStyle.Render("evolution complete"))
		b.WriteString("\n")
		fmt.Fprintf(&b, "%s%s\n", labelStyle.Render("qdt value"),
			valueStyle.Render(fmt.Sprintf("%.6f", m.res.QDTValue)))
		fmt.Fprintf(&b, "%s%s\n", labelStyle.Render("stability score"),
			valueStyle.Render(fmt.Sprintf("%.4f", m.metrics.StabilityScore)))
		fmt.Fprintf(&b, "%s%s\n", labelStyle.Render("phase coherence"),
			valueStyle.Render(fmt.Sprintf("%.4f", m.metrics.PhaseCoherence)))
	}

	b.WriteString(helpStyle.Render("space pause/resume · r restart · q quit"))
	b.WriteString("\n")
	return b.String()
}
