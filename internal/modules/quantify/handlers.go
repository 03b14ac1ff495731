package quantify

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/aristath/riskquant/internal/modules/metrics"
	"github.com/aristath/riskquant/internal/modules/register"
	"github.com/aristath/riskquant/internal/modules/simulation"
)

// Handler handles quantification HTTP requests
type Handler struct {
	service     *Service
	defaultSims int
	maxSims     int
	log         zerolog.Logger
}

// NewHandler creates a new quantification handler
func NewHandler(service *Service, defaultSims, maxSims int, log zerolog.Logger) *Handler {
	return &Handler{
		service:     service,
		defaultSims: defaultSims,
		maxSims:     maxSims,
		log:         log.With().Str("handler", "quantify").Logger(),
	}
}

// RegisterRoutes registers quantification routes on the router
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/quantify", h.HandleQuantify)
	r.Post("/tornado", h.HandleTornado)
	r.Post("/scenarios", h.HandleScenarios)
}

// QuantifyRequest carries a register plus simulation controls.
type QuantifyRequest struct {
	Risks       []register.Risk `json:"risks"`
	NSims       int             `json:"n_sims"`
	Seed        *uint64         `json:"seed,omitempty"`
	IncludeKPIs bool            `json:"include_kpis"`
}

// QuantifyResponse holds the quantified records, in register order with the
// portfolio total last, plus the optional KPI summary.
type QuantifyResponse struct {
	NSims   int         `json:"n_sims"`
	Seed    uint64      `json:"seed"`
	Records []Record    `json:"records"`
	KPIs    *KPISummary `json:"kpis,omitempty"`
}

// HandleQuantify handles POST /api/quantify
func (h *Handler) HandleQuantify(w http.ResponseWriter, r *http.Request) {
	var req QuantifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Error().Err(err).Msg("Failed to decode request body")
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	nSims, seed, err := h.resolveRun(req.NSims, req.Seed)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	reg, err := register.New(req.Risks)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	records, err := h.service.Quantify(reg, nSims, seed)
	if err != nil {
		h.log.Error().Err(err).Msg("Quantification failed")
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	resp := QuantifyResponse{NSims: nSims, Seed: seed, Records: records}
	if req.IncludeKPIs {
		kpis, err := SummarizeKPIs(reg, records)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		resp.KPIs = &kpis
	}

	h.writeJSON(w, resp)
}

// TornadoRequest carries a register plus tail-ranking controls.
type TornadoRequest struct {
	Risks []register.Risk `json:"risks"`
	NSims int             `json:"n_sims"`
	Seed  *uint64         `json:"seed,omitempty"`
	Q     float64         `json:"q"`
	TopN  int             `json:"top_n"`
}

// TornadoResponse holds the ranked tornado rows.
type TornadoResponse struct {
	NSims int                  `json:"n_sims"`
	Seed  uint64               `json:"seed"`
	Q     float64              `json:"q"`
	Rows  []metrics.TornadoRow `json:"rows"`
}

// HandleTornado handles POST /api/tornado
func (h *Handler) HandleTornado(w http.ResponseWriter, r *http.Request) {
	var req TornadoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Error().Err(err).Msg("Failed to decode request body")
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	nSims, seed, err := h.resolveRun(req.NSims, req.Seed)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Q == 0 {
		req.Q = 0.95
	}

	reg, err := register.New(req.Risks)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := simulation.SimulatePortfolio(reg, nSims, seed)
	if err != nil {
		h.log.Error().Err(err).Msg("Portfolio simulation failed")
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	rows, err := metrics.TornadoData(reg, result.Portfolio, result.ByRisk, req.Q, req.TopN)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	h.writeJSON(w, TornadoResponse{NSims: nSims, Seed: seed, Q: req.Q, Rows: rows})
}

// ScenariosRequest carries a register plus named what-if scenarios.
type ScenariosRequest struct {
	Risks     []register.Risk `json:"risks"`
	Scenarios []Scenario      `json:"scenarios"`
	NSims     int             `json:"n_sims"`
	Seed      *uint64         `json:"seed,omitempty"`
}

// ScenariosResponse holds one portfolio-metrics row per scenario, base first.
type ScenariosResponse struct {
	NSims   int              `json:"n_sims"`
	Seed    uint64           `json:"seed"`
	Results []ScenarioResult `json:"results"`
}

// HandleScenarios handles POST /api/scenarios
func (h *Handler) HandleScenarios(w http.ResponseWriter, r *http.Request) {
	var req ScenariosRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Error().Err(err).Msg("Failed to decode request body")
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	nSims, seed, err := h.resolveRun(req.NSims, req.Seed)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	reg, err := register.New(req.Risks)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	results, err := h.service.CompareScenarios(reg, req.Scenarios, nSims, seed)
	if err != nil {
		h.log.Error().Err(err).Msg("Scenario comparison failed")
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	h.writeJSON(w, ScenariosResponse{NSims: nSims, Seed: seed, Results: results})
}

func (h *Handler) resolveRun(nSims int, seed *uint64) (int, uint64, error) {
	if nSims == 0 {
		nSims = h.defaultSims
	}
	if nSims <= 0 {
		return 0, 0, errors.New("n_sims must be > 0")
	}
	if h.maxSims > 0 && nSims > h.maxSims {
		return 0, 0, errors.New("n_sims exceeds the configured maximum")
	}

	if seed != nil {
		return nSims, *seed, nil
	}
	return nSims, uint64(time.Now().UnixNano()), nil
}

func (h *Handler) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode response")
	}
}
