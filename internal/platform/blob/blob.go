// Package blob defines the blob-storage collaborator contract. The CRM only
// ever persists the returned URL and format, never raw file bytes.
package blob

import (
	"context"
	"io"
)

// Object describes a stored blob.
type Object struct {
	URL    string `json:"url"`
	Format string `json:"format"`
}

// Store accepts file uploads and returns addressable objects.
type Store interface {
	Upload(ctx context.Context, content io.Reader, filename, folder string) (Object, error)
}
