package roomgen

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"dreamroom/internal/imagegen"
)

// ErrProductFetch indicates the product photo could not be downloaded. There
// is no fallback sprite.
var ErrProductFetch = errors.New("product_fetch_failed")

// ErrNoSprite indicates the edit call returned no image data.
var ErrNoSprite = errors.New("no_sprite_image")

const stylizePrompt = "Convert this product into a clean isometric pixel-art sprite with transparent background, consistent with retro game style."

// Stylizer converts product photos into transparent-background sprites.
type Stylizer struct {
	Images  imagegen.Client
	Fetcher *imagegen.Fetcher
}

// Stylize downloads the product image and runs a single edit call on it. Each
// invocation is independently failable; callers own sequencing.
func (s Stylizer) Stylize(ctx context.Context, productImageURL string) ([]byte, error) {
	fetched, err := s.Fetcher.Fetch(ctx, productImageURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProductFetch, err)
	}

	data, err := s.Images.Edit(ctx, imagegen.EditRequest{
		Prompt: stylizePrompt,
		Images: []imagegen.SourceImage{{
			Name:        "product." + imagegen.ExtensionFor(fetched.ContentType),
			ContentType: fetched.ContentType,
			Data:        fetched.Data,
		}},
		Size:        "1024x1024",
		Transparent: true,
	})
	if errors.Is(err, imagegen.ErrNoImage) {
		return nil, ErrNoSprite
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

// StylizeAll attempts up to limit independent stylizations and collects the
// successes. Individual failures are logged and skipped; the composer simply
// receives fewer sprites.
func (s Stylizer) StylizeAll(ctx context.Context, urls []string, limit int) [][]byte {
	if len(urls) > limit {
		urls = urls[:limit]
	}

	var sprites [][]byte
	for _, url := range urls {
		sprite, err := s.Stylize(ctx, url)
		if err != nil {
			log.Warn().Err(err).Str("url", url).Msg("sprite stylize failed")
			continue
		}
		sprites = append(sprites, sprite)
	}
	return sprites
}
