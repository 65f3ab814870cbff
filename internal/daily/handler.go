package daily

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"dreamroom/internal/profile"
)

// Handler exposes the daily question generation endpoint.
type Handler struct {
	Generator Generator
}

// GenerateDailyQuestions handles POST /api/generate-daily-questions.
func (h Handler) GenerateDailyQuestions(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserAnswers            []profile.SurveyAnswer `json:"userAnswers"`
		PreviousDailyQuestions []DayQuestions         `json:"previousDailyQuestions"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.UserAnswers) == 0 {
		writeError(w, http.StatusBadRequest, map[string]string{"error": "userAnswers is required"})
		return
	}

	result, err := h.Generator.Generate(r.Context(), req.UserAnswers, req.PreviousDailyQuestions)
	if err != nil {
		log.Warn().Err(err).Msg("daily question generation failed")

		var invalid *InvalidResponseError
		switch {
		case errors.Is(err, ErrNoResponse):
			writeError(w, http.StatusInternalServerError, map[string]string{"error": "no_response_from_openai"})
		case errors.As(err, &invalid):
			writeError(w, http.StatusInternalServerError, map[string]string{
				"error":       "invalid_ai_response",
				"message":     "Failed to parse AI response",
				"rawResponse": invalid.Raw,
			})
		default:
			writeError(w, http.StatusInternalServerError, map[string]string{
				"error":   "generation_failed",
				"message": err.Error(),
			})
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(result)
}

func writeError(w http.ResponseWriter, status int, body map[string]string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
