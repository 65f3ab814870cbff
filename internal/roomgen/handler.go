package roomgen

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"dreamroom/internal/config"
	"dreamroom/internal/imagegen"
	"dreamroom/internal/media"
	"dreamroom/internal/storage"
)

const (
	maxComposedProducts = MaxSprites
	seedRange           = 10_000_000
)

// Handler bundles the phased room-generation endpoints.
type Handler struct {
	Base     BaseGenerator
	Stylizer Stylizer
	Composer Composer
	Uploader media.Uploader
	// ImageProvider names the wired image backend ("openai", "gemini") so
	// model overrides carrying a conflicting provider prefix can be rejected
	// instead of silently routing a foreign model name.
	ImageProvider string
}

// GenerateRoom handles POST /api/generate-room: a single-call generation with
// optional reference images.
func (h Handler) GenerateRoom(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Prompt         string        `json:"prompt"`
		NegativePrompt string        `json:"negativePrompt"`
		Seed           *int64        `json:"seed"`
		ImageURLs      []string      `json:"imageUrls"`
		Boxes          []storage.Box `json:"boxes"`
		Model          string        `json:"model"`
		Steps          int           `json:"steps"`
		Guidance       float64       `json:"guidance"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_payload", "")
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		writeError(w, http.StatusBadRequest, "prompt is required", "")
		return
	}

	seed := rand.Int64N(seedRange)
	if req.Seed != nil {
		seed = *req.Seed
	}

	ctx := r.Context()
	if req.Model != "" {
		provider, model := config.ParseImageModel(req.Model)
		if strings.Contains(req.Model, ":") && h.ImageProvider != "" && provider != h.ImageProvider {
			writeError(w, http.StatusBadRequest, "invalid_payload",
				fmt.Sprintf("model provider %q does not match configured backend %q", provider, h.ImageProvider))
			return
		}
		ctx = imagegen.WithModel(ctx, model)
	}

	data, err := h.Base.Generate(ctx, BaseRequest{
		Prompt:         req.Prompt,
		NegativePrompt: req.NegativePrompt,
		ReferenceURLs:  req.ImageURLs,
	})
	if err != nil {
		log.Error().Err(err).Msg("room generation failed")
		if errors.Is(err, imagegen.ErrNoImage) {
			writeError(w, http.StatusBadGateway, "no_image_returned", err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "generation_failed", err.Error())
		return
	}

	writeJSON(w, map[string]any{
		"imageUrl": h.publish(r, data),
		"seed":     seed,
	})
}

// BaseRoom handles POST /api/base-room: phase one of the phased pipeline.
func (h Handler) BaseRoom(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Prompt      string `json:"prompt"`
		PaletteHint string `json:"paletteHint"`
		Size        string `json:"size"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Prompt) == "" {
		writeError(w, http.StatusBadRequest, "invalid_payload", "")
		return
	}

	data, err := h.Base.Generate(r.Context(), BaseRequest{
		Prompt: withPalette(req.Prompt, req.PaletteHint),
		Size:   req.Size,
	})
	if err != nil {
		log.Error().Err(err).Msg("base room generation failed")
		writeError(w, http.StatusInternalServerError, "base_failed", err.Error())
		return
	}

	writeJSON(w, map[string]string{"baseB64": base64.StdEncoding.EncodeToString(data)})
}

// StylizeProduct handles POST /api/stylize-product: phase two, one call per
// product.
func (h Handler) StylizeProduct(w http.ResponseWriter, r *http.Request) {
	var req struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.URL) == "" {
		writeError(w, http.StatusBadRequest, "invalid_payload", "")
		return
	}

	sprite, err := h.Stylizer.Stylize(r.Context(), req.URL)
	if err != nil {
		log.Error().Err(err).Str("url", req.URL).Msg("product stylization failed")
		writeError(w, http.StatusInternalServerError, "stylize_failed", err.Error())
		return
	}

	writeJSON(w, map[string]string{"spriteB64": base64.StdEncoding.EncodeToString(sprite)})
}

// ComposeFinal handles POST /api/compose-final: phase three, deterministic
// composition of the already-generated layers.
func (h Handler) ComposeFinal(w http.ResponseWriter, r *http.Request) {
	var req struct {
		BaseB64    string   `json:"baseB64"`
		SpriteB64s []string `json:"spriteB64s"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.BaseB64 == "" || req.SpriteB64s == nil {
		writeError(w, http.StatusBadRequest, "invalid_payload", "")
		return
	}

	base, err := decodeImagePayload(req.BaseB64)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "compose_failed", err.Error())
		return
	}
	sprites := make([][]byte, 0, len(req.SpriteB64s))
	for _, s := range req.SpriteB64s {
		sprite, err := decodeImagePayload(s)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "compose_failed", err.Error())
			return
		}
		sprites = append(sprites, sprite)
	}

	final, err := h.Composer.Compose(base, sprites)
	if err != nil {
		log.Error().Err(err).Msg("composition failed")
		writeError(w, http.StatusInternalServerError, "compose_failed", err.Error())
		return
	}

	writeJSON(w, map[string]string{"imageUrl": h.publish(r, final)})
}

// ComposeRoom handles POST /api/compose-room: the one-shot pipeline running
// base generation, stylization with per-item failure isolation, and
// composition in a single request.
func (h Handler) ComposeRoom(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Prompt      string   `json:"prompt"`
		ProductURLs []string `json:"productUrls"`
		PaletteHint string   `json:"paletteHint"`
		Size        string   `json:"size"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Prompt) == "" || req.ProductURLs == nil {
		writeError(w, http.StatusBadRequest, "invalid_payload", "")
		return
	}

	base, err := h.Base.Generate(r.Context(), BaseRequest{
		Prompt: withPalette(req.Prompt, req.PaletteHint),
		Size:   req.Size,
	})
	if err != nil {
		log.Error().Err(err).Msg("compose room: base generation failed")
		writeError(w, http.StatusInternalServerError, "compose_failed", err.Error())
		return
	}

	sprites := h.Stylizer.StylizeAll(r.Context(), req.ProductURLs, maxComposedProducts)

	final, err := h.Composer.Compose(base, sprites)
	if err != nil {
		log.Error().Err(err).Msg("compose room: composition failed")
		writeError(w, http.StatusInternalServerError, "compose_failed", err.Error())
		return
	}

	writeJSON(w, map[string]string{"imageUrl": h.publish(r, final)})
}

// publish uploads the PNG when media storage is configured, otherwise returns
// a data URI. Upload failures degrade to the data URI so the pipeline result
// is never lost to a storage hiccup.
func (h Handler) publish(r *http.Request, data []byte) string {
	if h.Uploader != nil {
		result, err := h.Uploader.Upload(r.Context(), media.UploadInput{
			Filename:    "room.png",
			ContentType: "image/png",
			Body:        bytes.NewReader(data),
			Size:        int64(len(data)),
		})
		if err == nil && result.URL != "" {
			return result.URL
		}
		if err != nil && !errors.Is(err, media.ErrUploaderDisabled) {
			log.Warn().Err(err).Msg("media upload failed, returning data URI")
		}
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(data)
}

// decodeImagePayload accepts both raw base64 and data:image/...;base64 URIs.
func decodeImagePayload(payload string) ([]byte, error) {
	if strings.HasPrefix(payload, "data:") {
		if idx := strings.Index(payload, ","); idx >= 0 {
			payload = payload[idx+1:]
		}
	}
	return base64.StdEncoding.DecodeString(payload)
}

func withPalette(prompt, paletteHint string) string {
	if strings.TrimSpace(paletteHint) == "" {
		return prompt
	}
	return prompt + " (palette: " + paletteHint + ")"
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
