package roomgen

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"dreamroom/internal/imagegen"
)

const maxReferenceImages = 6

// BaseRequest describes one base-image generation.
type BaseRequest struct {
	Prompt         string
	NegativePrompt string
	ReferenceURLs  []string
	Size           string
}

// BaseGenerator produces the base room image. With reference images it tries
// an edit call first and falls back to plain text-to-image generation; without
// references it generates directly.
type BaseGenerator struct {
	Images  imagegen.Client
	Fetcher *imagegen.Fetcher
}

// Generate runs one base-image generation and returns the PNG bytes.
func (g BaseGenerator) Generate(ctx context.Context, req BaseRequest) ([]byte, error) {
	prompt := combinePrompt(req.Prompt, req.NegativePrompt)

	if refs := g.collectReferences(ctx, req.ReferenceURLs); len(refs) > 0 {
		data, err := g.Images.Edit(ctx, imagegen.EditRequest{
			Prompt: prompt,
			Images: refs,
			Size:   req.Size,
		})
		if err == nil {
			return data, nil
		}
		// A response without image data is a contract violation, not a
		// trigger for the generate fallback.
		if errors.Is(err, imagegen.ErrNoImage) {
			return nil, err
		}
		log.Warn().Err(err).Msg("edit call failed, falling back to generate")
	}

	return g.Images.Generate(ctx, prompt, req.Size)
}

// collectReferences downloads up to maxReferenceImages reference images,
// skipping any that fail without aborting the batch.
func (g BaseGenerator) collectReferences(ctx context.Context, urls []string) []imagegen.SourceImage {
	if len(urls) > maxReferenceImages {
		urls = urls[:maxReferenceImages]
	}

	var refs []imagegen.SourceImage
	for i, url := range urls {
		fetched, err := g.Fetcher.Fetch(ctx, url)
		if err != nil {
			log.Warn().Err(err).Str("url", url).Msg("failed to fetch reference image")
			continue
		}
		refs = append(refs, imagegen.SourceImage{
			Name:        fmt.Sprintf("ref-%d.%s", i, imagegen.ExtensionFor(fetched.ContentType)),
			ContentType: fetched.ContentType,
			Data:        fetched.Data,
		})
	}
	return refs
}

func combinePrompt(prompt, negative string) string {
	if negative == "" {
		return prompt
	}
	return prompt + "\nAvoid: " + negative
}
