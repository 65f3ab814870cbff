package roomgen

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"dreamroom/internal/imagegen"
)

func TestStylizeSendsTransparentEdit(t *testing.T) {
	srv := refServer(t)
	images := &fakeImages{editData: []byte("sprite")}
	stylizer := Stylizer{Images: images, Fetcher: imagegen.NewFetcher(time.Second)}

	sprite, err := stylizer.Stylize(context.Background(), srv.URL+"/product.png")
	require.NoError(t, err)
	require.Equal(t, []byte("sprite"), sprite)
	require.True(t, images.lastEdit.Transparent)
	require.Equal(t, "1024x1024", images.lastEdit.Size)
	require.Len(t, images.lastEdit.Images, 1)
	require.Equal(t, "image/png", images.lastEdit.Images[0].ContentType)
}

func TestStylizeFetchFailure(t *testing.T) {
	srv := refServer(t)
	images := &fakeImages{editData: []byte("sprite")}
	stylizer := Stylizer{Images: images, Fetcher: imagegen.NewFetcher(time.Second)}

	_, err := stylizer.Stylize(context.Background(), srv.URL+"/missing.png")
	require.ErrorIs(t, err, ErrProductFetch)
	require.Zero(t, images.editCalls)
}

func TestStylizeNoImageBecomesNoSprite(t *testing.T) {
	srv := refServer(t)
	images := &fakeImages{editErr: imagegen.ErrNoImage}
	stylizer := Stylizer{Images: images, Fetcher: imagegen.NewFetcher(time.Second)}

	_, err := stylizer.Stylize(context.Background(), srv.URL+"/product.png")
	require.ErrorIs(t, err, ErrNoSprite)
}

func TestStylizeAllIsolatesFailures(t *testing.T) {
	srv := refServer(t)
	images := &fakeImages{editData: []byte("sprite")}
	stylizer := Stylizer{Images: images, Fetcher: imagegen.NewFetcher(time.Second)}

	sprites := stylizer.StylizeAll(context.Background(), []string{
		srv.URL + "/a.png",
		srv.URL + "/missing.png",
		srv.URL + "/b.png",
	}, 4)
	require.Len(t, sprites, 2)
}

func TestStylizeAllHonorsLimit(t *testing.T) {
	srv := refServer(t)
	images := &fakeImages{editData: []byte("sprite")}
	stylizer := Stylizer{Images: images, Fetcher: imagegen.NewFetcher(time.Second)}

	urls := make([]string, 6)
	for i := range urls {
		urls[i] = srv.URL + "/ok.png"
	}
	sprites := stylizer.StylizeAll(context.Background(), urls, 4)
	require.Len(t, sprites, 4)
	require.Equal(t, 4, images.editCalls)
}

func TestStylizeAllAllFailed(t *testing.T) {
	srv := refServer(t)
	images := &fakeImages{editErr: errors.New("boom")}
	stylizer := Stylizer{Images: images, Fetcher: imagegen.NewFetcher(time.Second)}

	sprites := stylizer.StylizeAll(context.Background(), []string{srv.URL + "/a.png"}, 4)
	require.Empty(t, sprites)
}
