package storage

import (
	"context"
	"io"
	"time"
)

// Uploader archives raw uploads. The extracted text in Postgres is the
// source of truth; the archived original exists for re-extraction.
type Uploader interface {
	Upload(ctx context.Context, objectName string, contentType string, r io.Reader) (storedPath string, err error)
	Delete(ctx context.Context, objectName string) error
}

type Signer interface {
	SignedGetURL(ctx context.Context, objectName string, ttl time.Duration) (string, error)
}
