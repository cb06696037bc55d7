// Package uploader defines the contract with the external media store and
// its S3-backed implementation.  The rest of the application only depends
// on the Uploader interface, so tests substitute a fake.
package uploader

import (
	"context"
	"io"
)

// Asset is an uploaded file handle taken from the request.  A nil *Asset
// means the field was absent; handlers never pass a zero-valued Asset.
type Asset struct {
	Filename    string
	ContentType string
	Size        int64
	Content     io.Reader
}

// Reference is the stable result of a successful upload.  URL is what gets
// persisted on the user; ProviderID is the provider-side key needed to
// delete the object later.
type Reference struct {
	URL        string `json:"url"`
	ProviderID string `json:"providerId"`
}

// Uploader resolves local file handles into durable references.  An
// implementation returning an empty URL without an error is treated as a
// failure by callers.
type Uploader interface {
	Upload(ctx context.Context, asset *Asset) (Reference, error)
	Remove(ctx context.Context, providerID string) error
}
