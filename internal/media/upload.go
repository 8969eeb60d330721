// Package media defines the injected collaborator contracts for image
// upload and link previews. The engine is agnostic to the backing store
// and never retries on its own; retry is host policy.
package media

import (
	"context"
	"errors"
	"io"
)

// Upload failure taxonomy. Callers distinguish these with errors.Is.
var (
	// ErrConfig means the uploader is missing or misconfigured.
	ErrConfig = errors.New("uploader not configured")
	// ErrTooLarge means the file exceeds the provider's size limit.
	ErrTooLarge = errors.New("file too large")
	// ErrWrongType means the file's format is not accepted.
	ErrWrongType = errors.New("unsupported file type")
	// ErrNetwork means the transfer failed.
	ErrNetwork = errors.New("upload transfer failed")
)

// UploadResult describes a stored file.
type UploadResult struct {
	URL    string
	Width  int
	Height int
	Format string
	Size   int64
}

// ProgressFunc reports upload progress in [0, 1].
type ProgressFunc func(fraction float64)

// Uploader is the injected upload collaborator.
type Uploader interface {
	// Upload stores the file and returns its descriptor. progress may
	// be nil. Implementations classify failures with the sentinel
	// errors above.
	Upload(ctx context.Context, file io.Reader, name string, progress ProgressFunc) (*UploadResult, error)
}

// NopUploader rejects every upload with ErrConfig. Used when the host
// injected no provider.
type NopUploader struct{}

func (NopUploader) Upload(ctx context.Context, file io.Reader, name string, progress ProgressFunc) (*UploadResult, error) {
	return nil, ErrConfig
}
