package risk

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/aristath/fx-sentinel/internal/domain"
)

// Handler handles risk assessment HTTP requests
type Handler struct {
	service *Service
	log     zerolog.Logger
}

// NewHandler creates a new risk handler
func NewHandler(service *Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "risk").Logger(),
	}
}

// HandleAssess runs a full risk assessment for the posted portfolio
func (h *Handler) HandleAssess(w http.ResponseWriter, r *http.Request) {
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

	outcome, err := h.service.Calculate(r.Context(), portfolio)
	if err != nil {
		switch {
		case errors.Is(err, context.Canceled):
			// Superseded by a newer assessment for the same user
			h.writeError(w, http.StatusConflict, "assessment superseded by a newer request")
		case domain.IsDataUnavailable(err):
			h.writeError(w, http.StatusUnprocessableEntity, err.Error())
		default:
			h.log.Error().Err(err).Str("user_id", portfolio.UserID).Msg("assessment failed")
			h.writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	h.writeJSON(w, http.StatusOK, outcome.Assessment)
}

// HandleGetAssessment returns the latest cached assessment for a user
func (h *Handler) HandleGetAssessment(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	assessment, ok, err := h.service.Latest(userID)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !ok {
		h.writeError(w, http.StatusNotFound, "no assessment for user")
		return
	}

	h.writeJSON(w, http.StatusOK, assessment)
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
