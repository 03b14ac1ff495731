package lec

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Handler handles loss-exceedance curve HTTP requests
type Handler struct {
	log zerolog.Logger
}

// NewHandler creates a new LEC handler
func NewHandler(log zerolog.Logger) *Handler {
	return &Handler{
		log: log.With().Str("handler", "lec").Logger(),
	}
}

// RegisterRoutes registers LEC routes on the router
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/lec", h.HandleCurve)
}

// CurveRequest carries a loss array plus either explicit exceedance
// probabilities or a number of evenly spaced threshold points.
type CurveRequest struct {
	Losses  []float64 `json:"losses"`
	Probs   []float64 `json:"probs,omitempty"`
	NPoints int       `json:"n_points,omitempty"`
}

// CurveResponse is the ordered list of curve points.
type CurveResponse struct {
	Points []Point `json:"points"`
}

// HandleCurve handles POST /api/lec
func (h *Handler) HandleCurve(w http.ResponseWriter, r *http.Request) {
	var req CurveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Error().Err(err).Msg("Failed to decode request body")
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	var (
		points []Point
		err    error
	)
	if len(req.Probs) > 0 {
		points, err = AtProbabilities(req.Losses, req.Probs)
	} else {
		points, err = Points(req.Losses, req.NPoints)
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(CurveResponse{Points: points}); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode response")
	}
}
