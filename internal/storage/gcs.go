// GCS-backed Store implementation.
//
// Objects live in a single bucket and are served publicly through a CDN
// domain, so PublicURL is a plain string concatenation rather than a signed
// URL. Credentials come from the environment (Application Default
// Credentials or GOOGLE_APPLICATION_CREDENTIALS).
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

const (
	uploadTimeout = 2 * time.Minute
	deleteTimeout = 30 * time.Second
)

// GCSStore implements Store on top of a Google Cloud Storage bucket.
type GCSStore struct {
	client    *gcs.Client
	bucket    string
	cdnDomain string
}

// NewGCSStore connects to GCS and binds the store to bucket, serving public
// URLs from cdnDomain (e.g. "images.example.com").
func NewGCSStore(ctx context.Context, bucket, cdnDomain string, opts ...option.ClientOption) (*GCSStore, error) {
	if strings.TrimSpace(bucket) == "" {
		return nil, errors.New("storage: bucket name must not be empty")
	}
	if strings.TrimSpace(cdnDomain) == "" {
		return nil, errors.New("storage: CDN domain must not be empty")
	}
	client, err := gcs.NewClient(ctx, append(opts, option.WithScopes(gcs.ScopeReadWrite))...)
	if err != nil {
		return nil, fmt.Errorf("storage: create client: %w", err)
	}
	return &GCSStore{client: client, bucket: bucket, cdnDomain: cdnDomain}, nil
}

// Upload writes r under key and returns the public URL.
func (s *GCSStore) Upload(ctx context.Context, key string, r io.Reader) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	w := s.client.Bucket(s.bucket).Object(key).NewWriter(ctx)
	if ct := contentTypeForKey(key); ct != "" {
		w.ContentType = ct
	}
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("storage: write %q: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("storage: close writer for %q: %w", key, err)
	}
	return s.PublicURL(key), nil
}

// Copy duplicates srcKey to dstKey within the bucket.
func (s *GCSStore) Copy(ctx context.Context, srcKey, dstKey string) error {
	ctx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	src := s.client.Bucket(s.bucket).Object(srcKey)
	dst := s.client.Bucket(s.bucket).Object(dstKey)
	if _, err := dst.CopierFrom(src).Run(ctx); err != nil {
		return fmt.Errorf("storage: copy %s -> %s: %w", srcKey, dstKey, err)
	}
	return nil
}

// Delete removes the object at key. A missing object is treated as already
// deleted so that move retries converge.
func (s *GCSStore) Delete(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, deleteTimeout)
	defer cancel()

	err := s.client.Bucket(s.bucket).Object(key).Delete(ctx)
	if err != nil && !errors.Is(err, gcs.ErrObjectNotExist) {
		return fmt.Errorf("storage: delete %q: %w", key, err)
	}
	return nil
}

// PublicURL returns the CDN-fronted URL for key.
func (s *GCSStore) PublicURL(key string) string {
	return fmt.Sprintf("https://%s/%s", s.cdnDomain, key)
}

// Close releases the underlying client.
func (s *GCSStore) Close() error { return s.client.Close() }

// contentTypeForKey guesses a Content-Type from the key's extension; the
// writer falls back to GCS sniffing when it returns "".
func contentTypeForKey(key string) string {
	k := strings.ToLower(strings.TrimSpace(key))
	switch {
	case strings.HasSuffix(k, ".png"):
		return "image/png"
	case strings.HasSuffix(k, ".jpg"), strings.HasSuffix(k, ".jpeg"):
		return "image/jpeg"
	case strings.HasSuffix(k, ".webp"):
		return "image/webp"
	case strings.HasSuffix(k, ".gif"):
		return "image/gif"
	case strings.HasSuffix(k, ".svg"):
		return "image/svg+xml"
	default:
		return ""
	}
}
