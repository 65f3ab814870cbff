package media

import (
	"context"
	"errors"
	"io"
)

// ErrUploaderDisabled signals that no media backend is configured. Room
// handlers fall back to inline data URIs when they see it.
var ErrUploaderDisabled = errors.New("media uploader disabled")

// UploadInput is one composed room render to persist. The pipeline always
// produces PNG, so ContentType and the Filename extension default to PNG when
// left empty.
type UploadInput struct {
	Filename    string
	ContentType string
	Body        io.Reader
	Size        int64
}

// UploadResult carries the stored object key and the URL handed back in
// imageUrl responses.
type UploadResult struct {
	Key string
	URL string
}

// Uploader persists composed room images and yields a URL clients can load.
type Uploader interface {
	Upload(ctx context.Context, input UploadInput) (UploadResult, error)
}

type disabledUploader struct{}

func (disabledUploader) Upload(_ context.Context, _ UploadInput) (UploadResult, error) {
	return UploadResult{}, ErrUploaderDisabled
}

// Disabled returns an uploader that always signals disabled uploads.
func Disabled() Uploader {
	return disabledUploader{}
}
