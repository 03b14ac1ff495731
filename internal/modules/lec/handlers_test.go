package lec

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleCurve_EvenlySpaced(t *testing.T) {
	handler := NewHandler(zerolog.Nop())

	body := `{"losses": [10, 20, 30, 40, 50, 60, 70, 80, 90, 100], "n_points": 10}`
	req := httptest.NewRequest("POST", "/lec", strings.NewReader(body))
	w := httptest.NewRecorder()
	handler.HandleCurve(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var resp CurveResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	require.Len(t, resp.Points, 10)

	for i := 1; i < len(resp.Points); i++ {
		assert.LessOrEqual(t, resp.Points[i].Prob, resp.Points[i-1].Prob)
	}
}

func TestHandleCurve_AtProbabilities(t *testing.T) {
	handler := NewHandler(zerolog.Nop())

	body := `{"losses": [10, 20, 30, 40, 50, 60, 70, 80, 90, 100], "probs": [0.5, 0.1]}`
	req := httptest.NewRequest("POST", "/lec", strings.NewReader(body))
	w := httptest.NewRecorder()
	handler.HandleCurve(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp CurveResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	require.Len(t, resp.Points, 2)
	assert.Equal(t, 0.5, resp.Points[0].Prob)
	assert.Equal(t, 0.1, resp.Points[1].Prob)
}

func TestHandleCurve_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "malformed json", body: `{broken`},
		{name: "empty losses", body: `{"losses": [], "n_points": 10}`},
		{name: "probability out of range", body: `{"losses": [1, 2], "probs": [1.5]}`},
	}

	handler := NewHandler(zerolog.Nop())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/lec", strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			handler.HandleCurve(w, req)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}
