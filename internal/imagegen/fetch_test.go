package imagegen

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFetchReturnsDataAndContentType(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "image/webp")
		_, _ = w.Write([]byte("webp-bytes"))
	}))
	t.Cleanup(srv.Close)

	fetched, err := NewFetcher(time.Second).Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	require.Equal(t, []byte("webp-bytes"), fetched.Data)
	require.Equal(t, "image/webp", fetched.ContentType)
}

func TestFetchDefaultsContentType(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header()["Content-Type"] = nil
		_, _ = w.Write([]byte{0x01})
	}))
	t.Cleanup(srv.Close)

	fetched, err := NewFetcher(time.Second).Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	require.Equal(t, "image/jpeg", fetched.ContentType)
}

func TestFetchNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)

	_, err := NewFetcher(time.Second).Fetch(context.Background(), srv.URL)
	require.Error(t, err)
	require.Contains(t, err.Error(), "status 404")
}

func TestExtensionFor(t *testing.T) {
	require.Equal(t, "png", ExtensionFor("image/png"))
	require.Equal(t, "webp", ExtensionFor("image/webp"))
	require.Equal(t, "jpg", ExtensionFor("image/jpeg"))
	require.Equal(t, "jpg", ExtensionFor("application/octet-stream"))
}
