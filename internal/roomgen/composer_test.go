package roomgen

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/require"
)

func solidPNG(t *testing.T, w, h int, c color.RGBA) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func decodePNG(t *testing.T, data []byte) image.Image {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	return img
}

var (
	white = color.RGBA{255, 255, 255, 255}
	red   = color.RGBA{255, 0, 0, 255}
	blue  = color.RGBA{0, 0, 255, 255}
)

func TestComposeNoSpritesKeepsBase(t *testing.T) {
	base := solidPNG(t, 200, 100, white)

	out, err := Composer{}.Compose(base, nil)
	require.NoError(t, err)

	img := decodePNG(t, out)
	require.Equal(t, 200, img.Bounds().Dx())
	require.Equal(t, 100, img.Bounds().Dy())
	r, g, b, _ := img.At(50, 50).RGBA()
	require.Equal(t, uint32(0xffff), r)
	require.Equal(t, uint32(0xffff), g)
	require.Equal(t, uint32(0xffff), b)
}

func TestComposePlacesSpriteAtFirstAnchor(t *testing.T) {
	base := solidPNG(t, 200, 100, white)
	sprite := solidPNG(t, 400, 400, red)

	out, err := Composer{}.Compose(base, [][]byte{sprite})
	require.NoError(t, err)

	img := decodePNG(t, out)
	// Sprite box is 56x28; the 400x400 sprite scales to 28x28 at (30,55).
	r, g, _, _ := img.At(30+14, 55+14).RGBA()
	require.Equal(t, uint32(0xffff), r)
	require.Equal(t, uint32(0), g)

	// Far corner stays untouched.
	r, g, b, _ := img.At(5, 5).RGBA()
	require.Equal(t, uint32(0xffff), r)
	require.Equal(t, uint32(0xffff), g)
	require.Equal(t, uint32(0xffff), b)
}

func TestComposeNeverUpscalesSmallSprite(t *testing.T) {
	base := solidPNG(t, 200, 100, white)
	sprite := solidPNG(t, 10, 8, blue)

	out, err := Composer{}.Compose(base, [][]byte{sprite})
	require.NoError(t, err)

	img := decodePNG(t, out)
	// Placed at (30,55) with its native 10x8 size.
	_, _, b, _ := img.At(30+5, 55+4).RGBA()
	require.Equal(t, uint32(0xffff), b)

	// Just outside the 10px width the base shows through.
	r, g, b2, _ := img.At(30+14, 55+4).RGBA()
	require.Equal(t, uint32(0xffff), r)
	require.Equal(t, uint32(0xffff), g)
	require.Equal(t, uint32(0xffff), b2)
}

func TestComposeDropsFifthSprite(t *testing.T) {
	base := solidPNG(t, 400, 400, white)
	sprites := make([][]byte, 5)
	for i := range sprites {
		sprites[i] = solidPNG(t, 100, 100, red)
	}

	out, err := Composer{}.Compose(base, sprites)
	require.NoError(t, err)

	img := decodePNG(t, out)
	require.Equal(t, 400, img.Bounds().Dx())

	// All four anchors received a sprite.
	for _, anchor := range spriteAnchors {
		left := roundFrac(400, anchor.x)
		top := roundFrac(400, anchor.y)
		r, g, _, _ := img.At(left+20, top+20).RGBA()
		require.Equal(t, uint32(0xffff), r)
		require.Equal(t, uint32(0), g)
	}
}

func TestComposeFailsOnBadBase(t *testing.T) {
	_, err := Composer{}.Compose([]byte("not an image"), nil)
	require.Error(t, err)
}

func TestComposeFailsOnBadSprite(t *testing.T) {
	base := solidPNG(t, 64, 64, white)
	_, err := Composer{}.Compose(base, [][]byte{[]byte("junk")})
	require.Error(t, err)
}

func TestFitInside(t *testing.T) {
	w, h := fitInside(400, 200, 56, 28)
	require.Equal(t, 56, w)
	require.Equal(t, 28, h)

	w, h = fitInside(10, 8, 56, 28)
	require.Equal(t, 10, w)
	require.Equal(t, 8, h)

	w, h = fitInside(1000, 10, 56, 28)
	require.Equal(t, 56, w)
	require.Equal(t, 1, h)
}
