package imagegen

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"time"
)

// OpenAIImages talks to the OpenAI Images API.
type OpenAIImages struct {
	apiKey string
	model  string
	client *http.Client
}

// NewOpenAIImages constructs a client using the provided API key and default model.
func NewOpenAIImages(apiKey, model string) *OpenAIImages {
	if model == "" {
		model = "gpt-image-1"
	}
	return &OpenAIImages{
		apiKey: apiKey,
		model:  model,
		client: &http.Client{Timeout: 120 * time.Second},
	}
}

// Generate runs a text-to-image call and returns the decoded PNG bytes.
func (c *OpenAIImages) Generate(ctx context.Context, prompt, size string) ([]byte, error) {
	payload := map[string]any{
		"model":  c.resolveModel(ctx),
		"prompt": prompt,
		"size":   NormalizeSize(size),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal images payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, "https://api.openai.com/v1/images/generations", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	return c.doImageRequest(req)
}

// Edit runs an image-edit call with one or more input images.
func (c *OpenAIImages) Edit(ctx context.Context, editReq EditRequest) ([]byte, error) {
	if len(editReq.Images) == 0 {
		return nil, fmt.Errorf("edit requires at least one input image")
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	_ = writer.WriteField("model", c.resolveModel(ctx))
	_ = writer.WriteField("prompt", editReq.Prompt)
	_ = writer.WriteField("size", NormalizeSize(editReq.Size))
	if editReq.Transparent {
		_ = writer.WriteField("background", "transparent")
	}

	for _, img := range editReq.Images {
		header := textproto.MIMEHeader{}
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image[]"; filename=%q`, img.Name))
		header.Set("Content-Type", img.ContentType)
		part, err := writer.CreatePart(header)
		if err != nil {
			return nil, fmt.Errorf("create multipart field: %w", err)
		}
		if _, err := part.Write(img.Data); err != nil {
			return nil, fmt.Errorf("write multipart field: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("finalize multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, "https://api.openai.com/v1/images/edits", &buf)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	return c.doImageRequest(req)
}

func (c *OpenAIImages) resolveModel(ctx context.Context) string {
	if override := modelFromContext(ctx); override != "" {
		return override
	}
	return c.model
}

func (c *OpenAIImages) doImageRequest(req *http.Request) ([]byte, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("perform request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var failure struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		body, _ := io.ReadAll(resp.Body)
		_ = json.Unmarshal(body, &failure)
		return nil, fmt.Errorf("openai images status %d: %s", resp.StatusCode, failure.Error.Message)
	}

	var result struct {
		Data []struct {
			B64JSON string `json:"b64_json"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if len(result.Data) == 0 || result.Data[0].B64JSON == "" {
		return nil, ErrNoImage
	}

	data, err := base64.StdEncoding.DecodeString(result.Data[0].B64JSON)
	if err != nil {
		return nil, fmt.Errorf("decode image data: %w", err)
	}
	return data, nil
}
