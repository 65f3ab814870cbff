package rooms

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"dreamroom/internal/storage"
)

// Handler exposes room record endpoints over the store.
type Handler struct {
	Store storage.Store
}

// Create handles POST /api/rooms.
func (h Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Seed            *int64          `json:"seed"`
		ImageURL        string          `json:"imageUrl"`
		Boxes           []storage.Box   `json:"boxes"`
		ProductIDs      []string        `json:"productIds"`
		PersonalityType string          `json:"personalityType"`
		Theme           json.RawMessage `json:"theme"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Seed == nil || strings.TrimSpace(req.ImageURL) == "" {
		writeError(w, http.StatusBadRequest, "invalid_payload", "seed and imageUrl are required")
		return
	}

	room, err := h.Store.CreateRoom(r.Context(), storage.Room{
		Seed:            *req.Seed,
		ImageURL:        req.ImageURL,
		Boxes:           req.Boxes,
		ProductIDs:      req.ProductIDs,
		PersonalityType: req.PersonalityType,
		Theme:           req.Theme,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "store_failed", err.Error())
		return
	}

	writeJSON(w, map[string]string{"roomId": room.ID})
}

// Get handles GET /api/rooms/{id}.
func (h Handler) Get(w http.ResponseWriter, r *http.Request) {
	room, err := h.Store.GetRoom(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "")
			return
		}
		writeError(w, http.StatusInternalServerError, "store_failed", err.Error())
		return
	}

	writeJSON(w, room)
}

// Share handles POST /api/rooms/{id}/share. The share token is the room id
// itself; a signed or expiring scheme belongs to a future auth service.
func (h Handler) Share(w http.ResponseWriter, r *http.Request) {
	room, err := h.Store.GetRoom(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "")
			return
		}
		writeError(w, http.StatusInternalServerError, "store_failed", err.Error())
		return
	}

	writeJSON(w, map[string]string{"shareToken": room.ID})
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
