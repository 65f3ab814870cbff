package media

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// LocalUploader stores files in a directory served by the HTTP server under a
// public prefix (typically /media/).
type LocalUploader struct {
	BaseDir      string
	PublicPrefix string
}

// NewLocalUploader constructs an uploader that writes to the provided directory.
func NewLocalUploader(baseDir, publicPrefix string) (*LocalUploader, error) {
	if baseDir == "" {
		return nil, fmt.Errorf("media dir is required")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create local media dir: %w", err)
	}
	if publicPrefix == "" {
		publicPrefix = "/media/"
	}
	if !strings.HasSuffix(publicPrefix, "/") {
		publicPrefix += "/"
	}
	return &LocalUploader{BaseDir: baseDir, PublicPrefix: publicPrefix}, nil
}

// Upload writes the incoming content under a random name and returns its
// public URL.
func (l *LocalUploader) Upload(_ context.Context, input UploadInput) (UploadResult, error) {
	if input.Body == nil {
		return UploadResult{}, fmt.Errorf("upload body is required")
	}

	ext := filepath.Ext(input.Filename)
	if len(ext) > 10 {
		ext = ext[:10]
	}
	name := uuid.NewString() + ext
	target := filepath.Join(l.BaseDir, name)

	file, err := os.Create(target)
	if err != nil {
		return UploadResult{}, fmt.Errorf("create media file: %w", err)
	}
	defer file.Close()

	if _, err := file.ReadFrom(input.Body); err != nil {
		os.Remove(target)
		return UploadResult{}, fmt.Errorf("write media file: %w", err)
	}

	return UploadResult{
		Key: target,
		URL: l.PublicPrefix + name,
	}, nil
}
