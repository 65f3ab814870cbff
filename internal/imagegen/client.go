package imagegen

import (
	"context"
	"errors"
	"strings"
)

// ErrNoImage indicates the backend answered without any image payload.
var ErrNoImage = errors.New("no image returned")

// SourceImage is an input image for an edit call. Name carries the upload
// filename whose extension must match the content type.
type SourceImage struct {
	Name        string
	ContentType string
	Data        []byte
}

// EditRequest describes an image-edit call.
type EditRequest struct {
	Prompt string
	Images []SourceImage
	Size   string
	// Transparent requests a transparent background in the output.
	Transparent bool
}

// Client renders images from prompts and edits existing images.
type Client interface {
	Generate(ctx context.Context, prompt, size string) ([]byte, error)
	Edit(ctx context.Context, req EditRequest) ([]byte, error)
}

// NormalizeSize maps a requested size onto the supported set, defaulting to a
// square canvas.
func NormalizeSize(size string) string {
	switch strings.TrimSpace(size) {
	case "1536x1024":
		return "1536x1024"
	case "1024x1536":
		return "1024x1536"
	default:
		return "1024x1024"
	}
}

type editOverride struct {
	base   Client
	editor Client
}

// WithEditor routes edit calls to a dedicated editor backend while keeping the
// base client for text-to-image generation.
func WithEditor(base, editor Client) Client {
	return editOverride{base: base, editor: editor}
}

func (c editOverride) Generate(ctx context.Context, prompt, size string) ([]byte, error) {
	return c.base.Generate(ctx, prompt, size)
}

func (c editOverride) Edit(ctx context.Context, req EditRequest) ([]byte, error) {
	return c.editor.Edit(ctx, req)
}
