package imagegen

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Fetched is a downloaded remote image.
type Fetched struct {
	Data        []byte
	ContentType string
}

// Fetcher downloads remote images for reference and stylization inputs.
type Fetcher struct {
	client *http.Client
}

// NewFetcher constructs a fetcher with the given per-request timeout.
func NewFetcher(timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Fetcher{client: &http.Client{Timeout: timeout}}
}

// Fetch downloads the image at url. Non-2xx responses are errors.
func (f *Fetcher) Fetch(ctx context.Context, url string) (Fetched, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Fetched{}, fmt.Errorf("fetch image: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return Fetched{}, fmt.Errorf("fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return Fetched{}, fmt.Errorf("fetch image: status %d from %s", resp.StatusCode, url)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Fetched{}, fmt.Errorf("fetch image: read body: %w", err)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/jpeg"
	}
	return Fetched{Data: data, ContentType: contentType}, nil
}

// ExtensionFor maps a content type onto the upload filename extension expected
// by the edit API.
func ExtensionFor(contentType string) string {
	switch {
	case strings.Contains(contentType, "png"):
		return "png"
	case strings.Contains(contentType, "webp"):
		return "webp"
	default:
		return "jpg"
	}
}
