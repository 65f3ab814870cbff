package roomgen

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"dreamroom/internal/imagegen"
)

func newHandler(images *fakeImages) Handler {
	fetcher := imagegen.NewFetcher(time.Second)
	return Handler{
		Base:     BaseGenerator{Images: images, Fetcher: fetcher},
		Stylizer: Stylizer{Images: images, Fetcher: fetcher},
		Composer: Composer{},
	}
}

func postJSON(t *testing.T, handler http.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func dataURIBytes(t *testing.T, uri string) []byte {
	t.Helper()
	require.True(t, strings.HasPrefix(uri, "data:image/png;base64,"))
	data, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(uri, "data:image/png;base64,"))
	require.NoError(t, err)
	return data
}

func TestGenerateRoomRequiresPrompt(t *testing.T) {
	h := newHandler(&fakeImages{})
	rec := postJSON(t, h.GenerateRoom, `{"prompt": "  "}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "prompt is required", decodeBody(t, rec)["error"])
}

func TestGenerateRoomEchoesSeed(t *testing.T) {
	h := newHandler(&fakeImages{generateData: []byte("png-bytes")})
	rec := postJSON(t, h.GenerateRoom, `{"prompt": "cozy bedroom", "seed": 42}`)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	require.EqualValues(t, 42, body["seed"])
	require.Contains(t, body["imageUrl"], "data:image/png;base64,")
}

func TestGenerateRoomDefaultsSeed(t *testing.T) {
	h := newHandler(&fakeImages{generateData: []byte("png-bytes")})
	rec := postJSON(t, h.GenerateRoom, `{"prompt": "cozy bedroom"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	seed, ok := decodeBody(t, rec)["seed"].(float64)
	require.True(t, ok)
	require.GreaterOrEqual(t, seed, float64(0))
	require.Less(t, seed, float64(seedRange))
}

func TestGenerateRoomRejectsMismatchedModelProvider(t *testing.T) {
	h := newHandler(&fakeImages{generateData: []byte("png-bytes")})
	h.ImageProvider = "openai"

	rec := postJSON(t, h.GenerateRoom, `{"prompt": "p", "model": "gemini:imagen-3"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	body := decodeBody(t, rec)
	require.Equal(t, "invalid_payload", body["error"])
	require.Contains(t, body["message"], "gemini")
}

func TestGenerateRoomAcceptsMatchingModelProvider(t *testing.T) {
	h := newHandler(&fakeImages{generateData: []byte("png-bytes")})
	h.ImageProvider = "openai"

	rec := postJSON(t, h.GenerateRoom, `{"prompt": "p", "model": "openai:dall-e-3"}`)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestGenerateRoomBareModelSkipsProviderCheck(t *testing.T) {
	// Without a provider prefix the override is a plain model name for the
	// configured backend, whatever that is.
	h := newHandler(&fakeImages{generateData: []byte("png-bytes")})
	h.ImageProvider = "gemini"

	rec := postJSON(t, h.GenerateRoom, `{"prompt": "p", "model": "imagen-3"}`)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestGenerateRoomNoImageIsBadGateway(t *testing.T) {
	srv := refServer(t)
	h := newHandler(&fakeImages{editErr: imagegen.ErrNoImage})
	rec := postJSON(t, h.GenerateRoom, `{"prompt": "p", "imageUrls": ["`+srv.URL+`/ok.png"]}`)
	require.Equal(t, http.StatusBadGateway, rec.Code)
	require.Equal(t, "no_image_returned", decodeBody(t, rec)["error"])
}

func TestBaseRoomReturnsBase64(t *testing.T) {
	images := &fakeImages{generateData: []byte("base-image")}
	h := newHandler(images)
	rec := postJSON(t, h.BaseRoom, `{"prompt": "bedroom", "paletteHint": "warm beige"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	b64, ok := decodeBody(t, rec)["baseB64"].(string)
	require.True(t, ok)
	decoded, err := base64.StdEncoding.DecodeString(b64)
	require.NoError(t, err)
	require.Equal(t, []byte("base-image"), decoded)
	require.Equal(t, "bedroom (palette: warm beige)", images.lastPrompt)
}

func TestStylizeProductRequiresURL(t *testing.T) {
	h := newHandler(&fakeImages{})
	rec := postJSON(t, h.StylizeProduct, `{}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "invalid_payload", decodeBody(t, rec)["error"])
}

func TestComposeFinalRequiresSprites(t *testing.T) {
	h := newHandler(&fakeImages{})
	rec := postJSON(t, h.ComposeFinal, `{"baseB64": "aGk="}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "invalid_payload", decodeBody(t, rec)["error"])
}

func TestComposeFinalEmptySpriteList(t *testing.T) {
	base := solidPNG(t, 64, 32, white)
	h := newHandler(&fakeImages{})

	payload, err := json.Marshal(map[string]any{
		"baseB64":    base64.StdEncoding.EncodeToString(base),
		"spriteB64s": []string{},
	})
	require.NoError(t, err)

	rec := postJSON(t, h.ComposeFinal, string(payload))
	require.Equal(t, http.StatusOK, rec.Code)

	img := decodePNG(t, dataURIBytes(t, decodeBody(t, rec)["imageUrl"].(string)))
	require.Equal(t, 64, img.Bounds().Dx())
	require.Equal(t, 32, img.Bounds().Dy())
}

func TestComposeFinalAcceptsDataURIs(t *testing.T) {
	base := solidPNG(t, 64, 64, white)
	sprite := solidPNG(t, 8, 8, red)
	h := newHandler(&fakeImages{})

	payload, err := json.Marshal(map[string]any{
		"baseB64":    "data:image/png;base64," + base64.StdEncoding.EncodeToString(base),
		"spriteB64s": []string{"data:image/png;base64," + base64.StdEncoding.EncodeToString(sprite)},
	})
	require.NoError(t, err)

	rec := postJSON(t, h.ComposeFinal, string(payload))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestComposeRoomRunsFullPipeline(t *testing.T) {
	srv := refServer(t)
	base := solidPNG(t, 100, 100, white)
	sprite := solidPNG(t, 20, 20, red)
	h := newHandler(&fakeImages{generateData: base, editData: sprite})

	payload, err := json.Marshal(map[string]any{
		"prompt":      "cozy bedroom",
		"productUrls": []string{srv.URL + "/a.png", srv.URL + "/missing.png"},
	})
	require.NoError(t, err)

	rec := postJSON(t, h.ComposeRoom, string(payload))
	require.Equal(t, http.StatusOK, rec.Code)

	img := decodePNG(t, dataURIBytes(t, decodeBody(t, rec)["imageUrl"].(string)))
	require.Equal(t, 100, img.Bounds().Dx())
}

func TestComposeRoomRequiresProductURLs(t *testing.T) {
	h := newHandler(&fakeImages{})
	rec := postJSON(t, h.ComposeRoom, `{"prompt": "bedroom"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "invalid_payload", decodeBody(t, rec)["error"])
}

func TestDecodeImagePayloadRejectsGarbage(t *testing.T) {
	_, err := decodeImagePayload("%%%not-base64%%%")
	require.Error(t, err)
}
