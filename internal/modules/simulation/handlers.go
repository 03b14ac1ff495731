package simulation

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/aristath/riskquant/internal/modules/metrics"
	"github.com/aristath/riskquant/internal/modules/register"
)

// Handler handles simulation HTTP requests
type Handler struct {
	defaultSims int
	maxSims     int
	log         zerolog.Logger
}

// NewHandler creates a new simulation handler
func NewHandler(defaultSims, maxSims int, log zerolog.Logger) *Handler {
	return &Handler{
		defaultSims: defaultSims,
		maxSims:     maxSims,
		log:         log.With().Str("handler", "simulation").Logger(),
	}
}

// RegisterRoutes registers simulation routes on the router
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/simulation/portfolio", h.HandleSimulatePortfolio)
}

// SimulatePortfolioRequest carries a register plus simulation controls. When
// seed is omitted the run is seeded from the clock and is not reproducible.
type SimulatePortfolioRequest struct {
	Risks         []register.Risk `json:"risks"`
	NSims         int             `json:"n_sims"`
	Seed          *uint64         `json:"seed,omitempty"`
	IncludeLosses bool            `json:"include_losses"`
}

// SimulatePortfolioResponse summarizes a portfolio run. Raw loss arrays are
// included only on request because they are n_sims values per risk.
type SimulatePortfolioResponse struct {
	NSims            int                        `json:"n_sims"`
	Seed             uint64                     `json:"seed"`
	PortfolioSummary metrics.Summary            `json:"portfolio_summary"`
	RiskSummaries    map[string]metrics.Summary `json:"risk_summaries"`
	PortfolioLosses  []float64                  `json:"portfolio_losses,omitempty"`
	RiskLosses       map[string][]float64       `json:"risk_losses,omitempty"`
}

// HandleSimulatePortfolio handles POST /api/simulation/portfolio
func (h *Handler) HandleSimulatePortfolio(w http.ResponseWriter, r *http.Request) {
	var req SimulatePortfolioRequest
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

	result, err := SimulatePortfolio(reg, nSims, seed)
	if err != nil {
		h.log.Error().Err(err).Msg("Portfolio simulation failed")
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	portfolioSummary, err := metrics.Summarize(result.Portfolio)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	resp := SimulatePortfolioResponse{
		NSims:            nSims,
		Seed:             seed,
		PortfolioSummary: portfolioSummary,
		RiskSummaries:    make(map[string]metrics.Summary, len(result.ByRisk)),
	}
	for id, losses := range result.ByRisk {
		summary, err := metrics.Summarize(losses)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		resp.RiskSummaries[id] = summary
	}
	if req.IncludeLosses {
		resp.PortfolioLosses = result.Portfolio
		resp.RiskLosses = result.ByRisk
	}

	writeJSON(w, h.log, resp)
}

// resolveRun applies defaults and bounds to the requested trial count and
// seed.
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

func writeJSON(w http.ResponseWriter, log zerolog.Logger, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}
