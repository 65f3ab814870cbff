package media

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLocalUploaderWritesFile(t *testing.T) {
	dir := t.TempDir()
	uploader, err := NewLocalUploader(dir, "/media/")
	require.NoError(t, err)

	result, err := uploader.Upload(context.Background(), UploadInput{
		Filename:    "room.png",
		ContentType: "image/png",
		Body:        strings.NewReader("png-bytes"),
		Size:        9,
	})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(result.URL, "/media/"))
	require.True(t, strings.HasSuffix(result.URL, ".png"))

	data, err := os.ReadFile(filepath.Join(dir, strings.TrimPrefix(result.URL, "/media/")))
	require.NoError(t, err)
	require.Equal(t, "png-bytes", string(data))
}

func TestLocalUploaderRequiresDir(t *testing.T) {
	_, err := NewLocalUploader("", "/media/")
	require.Error(t, err)
}

func TestLocalUploaderNormalizesPrefix(t *testing.T) {
	uploader, err := NewLocalUploader(t.TempDir(), "/assets")
	require.NoError(t, err)
	require.Equal(t, "/assets/", uploader.PublicPrefix)
}

func TestLocalUploaderRequiresBody(t *testing.T) {
	uploader, err := NewLocalUploader(t.TempDir(), "")
	require.NoError(t, err)
	_, err = uploader.Upload(context.Background(), UploadInput{Filename: "x.png"})
	require.Error(t, err)
}
