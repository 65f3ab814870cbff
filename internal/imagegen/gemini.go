package imagegen

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"
)

const defaultGeminiImageModel = "gemini-2.5-flash-image"

// GeminiImages renders and edits images via Gemini inline-image outputs.
type GeminiImages struct {
	apiKey  string
	model   string
	timeout time.Duration
}

// NewGeminiImages constructs a generator able to request inline images.
func NewGeminiImages(apiKey, model string, timeout time.Duration) *GeminiImages {
	if strings.TrimSpace(model) == "" {
		model = defaultGeminiImageModel
	}
	model = strings.TrimPrefix(strings.TrimSpace(model), "models/")
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &GeminiImages{
		apiKey:  apiKey,
		model:   model,
		timeout: timeout,
	}
}

// Generate requests an image for the given prompt. The size hint is carried in
// the prompt since the model has no explicit dimension parameter.
func (g *GeminiImages) Generate(ctx context.Context, prompt, size string) ([]byte, error) {
	if g == nil || strings.TrimSpace(g.apiKey) == "" {
		return nil, fmt.Errorf("gemini images: generator unavailable")
	}
	if strings.TrimSpace(prompt) == "" {
		return nil, fmt.Errorf("gemini images: prompt is required")
	}
	return g.request(ctx, genai.Text(prompt))
}

// Edit sends the prompt together with the input images as inline parts.
func (g *GeminiImages) Edit(ctx context.Context, req EditRequest) ([]byte, error) {
	if g == nil || strings.TrimSpace(g.apiKey) == "" {
		return nil, fmt.Errorf("gemini images: generator unavailable")
	}
	if len(req.Images) == 0 {
		return nil, fmt.Errorf("gemini images: edit requires input images")
	}

	prompt := req.Prompt
	if req.Transparent {
		prompt += "\nThe output must have a fully transparent background."
	}

	parts := []*genai.Part{{Text: prompt}}
	for _, img := range req.Images {
		parts = append(parts, &genai.Part{
			InlineData: &genai.Blob{
				MIMEType: img.ContentType,
				Data:     img.Data,
			},
		})
	}

	return g.request(ctx, []*genai.Content{{Parts: parts}})
}

func (g *GeminiImages) request(ctx context.Context, contents []*genai.Content) ([]byte, error) {
	childCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	client, err := genai.NewClient(childCtx, &genai.ClientConfig{
		APIKey: g.apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini images: create client: %w", err)
	}

	model := g.model
	if override := modelFromContext(ctx); override != "" {
		model = override
	}

	resp, err := client.Models.GenerateContent(childCtx, model, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("gemini images: request failed: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, ErrNoImage
	}

	for _, part := range resp.Candidates[0].Content.Parts {
		if part.InlineData == nil || len(part.InlineData.Data) == 0 {
			continue
		}
		return part.InlineData.Data, nil
	}
	return nil, ErrNoImage
}
