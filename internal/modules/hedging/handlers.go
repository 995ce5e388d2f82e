package hedging

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/aristath/fx-sentinel/internal/domain"
	"github.com/aristath/fx-sentinel/internal/modules/risk"
)

// Handler handles hedging recommendation HTTP requests
type Handler struct {
	riskService *risk.Service
	service     *Service
	log         zerolog.Logger
}

// NewHandler creates a new hedging handler
func NewHandler(riskService *risk.Service, service *Service, log zerolog.Logger) *Handler {
	return &Handler{
		riskService: riskService,
		service:     service,
		log:         log.With().Str("handler", "hedging").Logger(),
	}
}

// HandleRecommend runs a fresh assessment for the posted portfolio and
// returns the ranked strategy bundle. Recommendations always reflect the
// just-computed risk figures, never a stale cached assessment.
func (h *Handler) HandleRecommend(w http.ResponseWriter, r *http.Request) {
	var portfolio domain.Portfolio
	if err := json.NewDecoder(r.Body).Decode(&portfolio); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid portfolio payload")
		return
	}
	if portfolio.UserID == "" {
		h.writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}
	if portfolio.BaseCurrency == "" {
		portfolio.BaseCurrency = domain.CurrencyEUR
	}

	outcome, err := h.riskService.Calculate(r.Context(), portfolio)
	if err != nil {
		switch {
		case errors.Is(err, context.Canceled):
			h.writeError(w, http.StatusConflict, "assessment superseded by a newer request")
		case domain.IsDataUnavailable(err):
			h.writeError(w, http.StatusUnprocessableEntity, err.Error())
		default:
			h.log.Error().Err(err).Str("user_id", portfolio.UserID).Msg("assessment failed")
			h.writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	bundle, err := h.service.Recommend(r.Context(), outcome.Assessment, outcome.Profiles, outcome.Matrix)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", portfolio.UserID).Msg("recommendation failed")
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, bundle)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
