package storage

import (
	"context"
	"io"
	"time"

	"github.com/pliro-dev/pliro/internal/config"
)

// Client is the object-storage surface the application depends on. Upload
// returns an opaque locator that is stored on the owning row and later handed
// back to Delete or PresignedURL unchanged.
type Client interface {
	Upload(ctx context.Context, reader io.Reader, size int64, filename string, contentType string) (string, error)
	Delete(ctx context.Context, filePath string) error
	PresignedURL(ctx context.Context, filePath string, expiry time.Duration) (string, error)
}

// Default is the process-wide storage client, set by Init and replaced with a
// fake in tests.
var Default Client

func Init(cfg *config.Config) error {
	client, err := NewSpacesClient(cfg)

	if err != nil {
		return err
	}

	Default = client

	return nil
}
