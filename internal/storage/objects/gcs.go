package objects

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/storage"
	firebase "firebase.google.com/go/v4"
)

// GCSStore keeps objects in the Firebase Storage bucket of the project.
type GCSStore struct {
	bucket *storage.BucketHandle
	base   urlBase
}

// NewGCSStore opens bucketName, or the app's default bucket when it is empty.
// publicBase overrides https://storage.googleapis.com/<bucket>.
func NewGCSStore(ctx context.Context, app *firebase.App, bucketName, publicBase string) (*GCSStore, error) {
	client, err := app.Storage(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase storage client: %w", err)
	}

	var bucket *storage.BucketHandle
	if bucketName == "" {
		bucket, err = client.DefaultBucket()
	} else {
		bucket, err = client.Bucket(bucketName)
	}
	if err != nil {
		return nil, fmt.Errorf("firebase storage bucket: %w", err)
	}

	if publicBase == "" {
		publicBase = "https://storage.googleapis.com/" + bucket.BucketName()
	}
	return &GCSStore{bucket: bucket, base: newURLBase(publicBase)}, nil
}

func (s *GCSStore) Put(ctx context.Context, key, contentType string, body []byte) (string, error) {
	w := s.bucket.Object(key).NewWriter(ctx)
	w.ContentType = contentType
	w.CacheControl = "public, max-age=31536000"

	if _, err := w.Write(body); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("write object %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("close object %s: %w", key, err)
	}
	return s.base.url(key), nil
}

// Delete removes the object behind publicURL. An already missing object is
// not an error.
func (s *GCSStore) Delete(ctx context.Context, publicURL string) error {
	key, err := s.base.key(publicURL)
	if err != nil {
		return err
	}
	if err := s.bucket.Object(key).Delete(ctx); err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("delete object %s: %w", key, err)
	}
	return nil
}
