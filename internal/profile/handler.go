package profile

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"
)

// Handler exposes the personality inference endpoint.
type Handler struct {
	Service Service
}

// PersonalityProducts handles POST /api/personality-products.
func (h Handler) PersonalityProducts(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserAnswers []SurveyAnswer `json:"userAnswers"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.UserAnswers) == 0 {
		writeError(w, http.StatusBadRequest, "invalid_payload", "")
		return
	}

	result, err := h.Service.Infer(r.Context(), req.UserAnswers)
	if err != nil {
		log.Warn().Err(err).Msg("personality inference failed")
		switch {
		case errors.Is(err, ErrNoJSON), errors.Is(err, ErrBadOutput):
			writeError(w, http.StatusBadGateway, "bad_llm_output", err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "llm_failed", err.Error())
		}
		return
	}

	writeJSON(w, result)
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeError(w http.ResponseWriter, status int, tag, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	body := map[string]string{"error": tag}
	if message != "" {
		body["message"] = message
	}
	_ = json.NewEncoder(w).Encode(body)
}
