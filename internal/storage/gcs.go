package storage

import (
	"context"
	"errors"
	"io"
	"time"

	gcs "cloud.google.com/go/storage"
)

// GCSUploader archives the original upload next to the extracted text in
// Postgres. Objects stay private; reads go through signed URLs.
type GCSUploader struct {
	client *gcs.Client
	bucket string
}

func NewGCSUploader(ctx context.Context, bucket string) (*GCSUploader, error) {
	c, err := gcs.NewClient(ctx)
	if err != nil {
		return nil, err
	}
	return &GCSUploader{client: c, bucket: bucket}, nil
}

func (u *GCSUploader) Close() error { return u.client.Close() }

func (u *GCSUploader) Upload(ctx context.Context, objectName string, contentType string, r io.Reader) (string, error) {
	obj := u.client.Bucket(u.bucket).Object(objectName)

	w := obj.NewWriter(ctx)
	w.ContentType = contentType

	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return "", err
	}
	if err := w.Close(); err != nil {
		return "", err
	}

	return objectName, nil
}

func (u *GCSUploader) Delete(ctx context.Context, objectName string) error {
	err := u.client.Bucket(u.bucket).Object(objectName).Delete(ctx)
	if errors.Is(err, gcs.ErrObjectNotExist) {
		return nil
	}
	return err
}

func (u *GCSUploader) SignedGetURL(ctx context.Context, objectName string, ttl time.Duration) (string, error) {
	return u.client.Bucket(u.bucket).SignedURL(objectName, &gcs.SignedURLOptions{
		Method:  "GET",
		Expires: time.Now().Add(ttl),
		Scheme:  gcs.SigningSchemeV4,
	})
}
