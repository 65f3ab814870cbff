package roomgen

import (
	"bytes"
	"fmt"
	"image"
	stddraw "image/draw"
	_ "image/jpeg"
	"image/png"
	"math"

	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// spriteAnchors are the fixed top-left placement corners for composited
// sprites, as fractions of the base dimensions. Sprite i goes to anchor i;
// anything past the last anchor is dropped.
var spriteAnchors = [...]struct{ x, y float64 }{
	{0.15, 0.55},
	{0.60, 0.55},
	{0.20, 0.80},
	{0.65, 0.80},
}

const (
	// spriteScale is the bounding-box edge for each sprite relative to the
	// base dimensions.
	spriteScale = 0.28
	// fallbackEdge is used when the base dimensions cannot be read.
	fallbackEdge = 1024
)

// MaxSprites is the number of placement anchors available to the composer.
const MaxSprites = len(spriteAnchors)

// Composer overlays stylized sprites onto a base room image at fixed
// normalized anchors.
type Composer struct{}

// Compose draws up to MaxSprites sprites over the base image, in order, each
// scaled to fit inside a spriteScale-sized box without upscaling or cropping.
// The output is always PNG, also when no sprites are given.
func (Composer) Compose(base []byte, sprites [][]byte) ([]byte, error) {
	width, height := fallbackEdge, fallbackEdge
	if cfg, _, err := image.DecodeConfig(bytes.NewReader(base)); err == nil {
		width, height = cfg.Width, cfg.Height
	}

	baseImg, _, err := image.Decode(bytes.NewReader(base))
	if err != nil {
		return nil, fmt.Errorf("decode base image: %w", err)
	}

	canvas := image.NewRGBA(image.Rect(0, 0, width, height))
	stddraw.Draw(canvas, canvas.Bounds(), baseImg, baseImg.Bounds().Min, stddraw.Src)

	boxW := roundFrac(width, spriteScale)
	boxH := roundFrac(height, spriteScale)

	for i, spriteData := range sprites {
		if i >= MaxSprites {
			break
		}
		sprite, _, err := image.Decode(bytes.NewReader(spriteData))
		if err != nil {
			return nil, fmt.Errorf("decode sprite %d: %w", i, err)
		}

		w, h := fitInside(sprite.Bounds().Dx(), sprite.Bounds().Dy(), boxW, boxH)
		left := roundFrac(width, spriteAnchors[i].x)
		top := roundFrac(height, spriteAnchors[i].y)
		target := image.Rect(left, top, left+w, top+h)

		xdraw.CatmullRom.Scale(canvas, target, sprite, sprite.Bounds(), xdraw.Over, nil)
	}

	var out bytes.Buffer
	if err := png.Encode(&out, canvas); err != nil {
		return nil, fmt.Errorf("encode composed image: %w", err)
	}
	return out.Bytes(), nil
}

// fitInside scales (w,h) down to fit the box preserving aspect ratio. Images
// already smaller than the box keep their size.
func fitInside(w, h, boxW, boxH int) (int, int) {
	if w <= 0 || h <= 0 {
		return 0, 0
	}
	scale := math.Min(float64(boxW)/float64(w), float64(boxH)/float64(h))
	if scale >= 1 {
		return w, h
	}
	fw := int(math.Round(float64(w) * scale))
	fh := int(math.Round(float64(h) * scale))
	if fw < 1 {
		fw = 1
	}
	if fh < 1 {
		fh = 1
	}
	return fw, fh
}

func roundFrac(total int, frac float64) int {
	return int(math.Round(float64(total) * frac))
}
