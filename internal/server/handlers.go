package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/quantumduality/qdtlab/internal/analysis"
	"github.com/quantumduality/qdtlab/internal/batch"
	"github.com/quantumduality/qdtlab/internal/config"
	"github.com/quantumduality/qdtlab/internal/engine"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeDomainError maps core errors onto status codes. Every error in the
// taxonomy is a caller problem and maps to 400; anything else is a 500.
func (s *Server) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, engine.ErrInvalidInput),
		errors.Is(err, config.ErrInvalidConfig),
		errors.Is(err, engine.ErrInsufficientData),
		errors.Is(err, engine.ErrNumericOverflow):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.log.Error("internal error", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"version":   Version,
	})
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.calcCfg)
}

type calculateRequest struct {
	Value           *float64 `json:"value"`
	CalculationType string   `json:"calculation_type"`
	EvolutionSteps  *int     `json:"evolution_steps"`
}

type calculateResponse struct {
	Result             float64                     `json:"result"`
	OriginalValue      float64                     `json:"original_value"`
	CalculationType    string                      `json:"calculation_type"`
	VoidEnergy         float64                     `json:"void_energy"`
	FilamentEnergy     float64                     `json:"filament_energy"`
	EmergenceEnergy    float64                     `json:"emergence_energy"`
	TimeSeries         engine.TimeSeries           `json:"time_series"`
	ConvergenceMetrics analysis.ConvergenceMetrics `json:"convergence_metrics"`
}

func (s *Server) handleCalculate(w http.ResponseWriter, r *http.Request) {
	var req calculateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Value == nil || req.CalculationType == "" {
		writeError(w, http.StatusBadRequest, "missing required fields: value, calculation_type")
		return
	}

	calcType, err := engine.ParseCalcType(req.CalculationType)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	cfg := s.calcCfg
	if req.EvolutionSteps != nil {
		cfg.EvolutionSteps = *req.EvolutionSteps
		if err := cfg.Validate(); err != nil {
			s.writeDomainError(w, err)
			return
		}
	}

	key := calcKey{value: *req.Value, typ: calcType, cfg: cfg}
	entry, ok := s.cache.get(key)
	if !ok {
		res, err := s.engine.Evolve(*req.Value, calcType, cfg)
		if err != nil {
			s.writeDomainError(w, err)
			return
		}
		metrics, err := analysis.Convergence(res, cfg)
		if err != nil {
			s.writeDomainError(w, err)
			return
		}
		entry = calcEntry{result: res, metrics: metrics}
		s.cache.put(key, entry)
	}

	writeJSON(w, http.StatusOK, calculateResponse{
		Result:             entry.result.QDTValue,
		OriginalValue:      entry.result.OriginalValue,
		CalculationType:    entry.result.Type.String(),
		VoidEnergy:         entry.result.VoidEnergy,
		FilamentEnergy:     entry.result.FilamentEnergy,
		EmergenceEnergy:    entry.result.EmergenceEnergy,
		TimeSeries:         entry.result.Series,
		ConvergenceMetrics: entry.metrics,
	})
}

type analyzeRequest struct {
	TimeSeries *engine.TimeSeries `json:"time_series"`
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.TimeSeries == nil {
		writeError(w, http.StatusBadRequest, "missing required fields: time_series")
		return
	}

	out, err := analysis.AnalyzePaths(req.TimeSeries)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

type batchRequest struct {
	Calculations []struct {
		Value           *float64 `json:"value"`
		CalculationType string   `json:"calculation_type"`
	} `json:"calculations"`
}

type batchItemResponse struct {
	Result             *float64                     `json:"result,omitempty"`
	ConvergenceMetrics *analysis.ConvergenceMetrics `json:"convergence_metrics,omitempty"`
	Error              string                       `json:"error,omitempty"`
}

type batchResponse struct {
	Results []batchItemResponse `json:"results"`
}

func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Calculations) == 0 {
		writeError(w, http.StatusBadRequest, "missing required fields: calculations")
		return
	}
	if len(req.Calculations) > batch.MaxItems {
		writeError(w, http.StatusBadRequest, "batch size exceeds limit of 10")
		return
	}

	// Per-item boundary validation. A malformed item becomes a per-item
	// error in its slot, never a batch-level failure, and is not dispatched
	// to the coordinator at all.
	items := make([]batch.Item, 0, len(req.Calculations))
	slots := make([]int, 0, len(req.Calculations))
	itemErrs := make([]error, len(req.Calculations))
	for i, c := range req.Calculations {
		if c.Value == nil {
			itemErrs[i] = errors.New("missing value")
			continue
		}
		calcType, err := engine.ParseCalcType(c.CalculationType)
		if err != nil {
			itemErrs[i] = err
			continue
		}
		items = append(items, batch.Item{Value: *c.Value, Type: calcType})
		slots = append(slots, i)
	}

	outcomes, err := s.coord.Run(r.Context(), items, s.calcCfg)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	resp := batchResponse{Results: make([]batchItemResponse, len(req.Calculations))}
	for i, parseErr := range itemErrs {
		if parseErr != nil {
			resp.Results[i] = batchItemResponse{Error: parseErr.Error()}
		}
	}
	for k, out := range outcomes {
		i := slots[k]
		if out.Err != nil {
			resp.Results[i] = batchItemResponse{Error: out.Err.Error()}
			continue
		}
		result := out.Result.QDTValue
		metrics := out.Metrics
		resp.Results[i] = batchItemResponse{Result: &result, ConvergenceMetrics: &metrics}
	}
	writeJSON(w, http.StatusOK, resp)
}

type askRequest struct {
	Question string `json:"question"`
}

type askResponse struct {
	Answer         string             `json:"answer"`
	Confidence     float64            `json:"confidence"`
	CrystalMetrics map[string]float64 `json:"crystal_metrics"`
	ProcessingTime float64            `json:"processing_time"`
}

// handleAsk forwards a question plus freshly computed crystal metrics to
// the external assistant. The answer text is entirely the assistant's.
func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(strings.TrimSpace(req.Question)) < 3 {
		writeError(w, http.StatusBadRequest, "question must be at least 3 characters long")
		return
	}
	if !s.assistant.Enabled() {
		writeError(w, http.StatusServiceUnavailable, "assistant not configured")
		return
	}

	// A reference evolution gives the assistant current system behavior
	// to ground its answer in.
	res, err := s.engine.Evolve(1.0, engine.Currency, s.calcCfg)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	metrics, err := analysis.Convergence(res, s.calcCfg)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	paths, err := analysis.AnalyzePaths(&res.Series)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	crystal := map[string]float64{
		"phase_coherence": metrics.PhaseCoherence,
		"stability":       metrics.StabilityScore,
		"resonance":       paths.CrystalResonanceCoupling,
	}

	answer, err := s.assistant.Ask(r.Context(), req.Question, crystal)
	if err != nil {
		s.log.Error("assistant call failed", "error", err)
		writeError(w, http.StatusBadGateway, "assistant unavailable")
		return
	}

	writeJSON(w, http.StatusOK, askResponse{
		Answer:         answer.Answer,
		Confidence:     answer.Confidence,
		CrystalMetrics: crystal,
		ProcessingTime: time.Since(start).Seconds(),
	})
}
