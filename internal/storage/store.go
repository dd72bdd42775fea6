// Package storage abstracts the bucket-style object store that holds TIL
// images. Components depend on the narrow Store interface so tests can swap
// in fakes; the production implementation is the GCS-backed client in gcs.go.
package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
)

// Store is a key-addressed blob store.
//
// Implementations must make Delete a no-op when the key does not exist, so
// that the copy-then-delete move sequence is safe to retry.
type Store interface {
	// Upload writes the reader's contents under key and returns the public URL.
	Upload(ctx context.Context, key string, r io.Reader) (string, error)
	// Copy duplicates the object at srcKey to dstKey within the same bucket.
	Copy(ctx context.Context, srcKey, dstKey string) error
	// Delete removes the object at key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// PublicURL returns the public URL an object at key is served from.
	PublicURL(key string) string
}

// Move relocates an object from srcKey to dstKey as copy-then-delete.
// The two phases are independent: the copy is idempotent and the delete of a
// missing source is a no-op, so a retry after partial failure converges. A
// failure between the phases leaves a duplicate object behind, never a
// missing one.
func Move(ctx context.Context, s Store, srcKey, dstKey string) error {
	if err := s.Copy(ctx, srcKey, dstKey); err != nil {
		return fmt.Errorf("copy %s -> %s: %w", srcKey, dstKey, err)
	}
	if err := s.Delete(ctx, srcKey); err != nil {
		return fmt.Errorf("delete %s after copy: %w", srcKey, err)
	}
	return nil
}

// TempKey builds the storage key for a fresh temporary upload: a random
// namespace keeps concurrent uploads of identically named files apart.
func TempKey(filename string) string {
	return fmt.Sprintf("temp/%s/%s", uuid.NewString(), filename)
}

// TILKey builds the permanent storage key for an image attached to a TIL.
func TILKey(tilID, filename string) string {
	return fmt.Sprintf("til/%s/%s", tilID, filename)
}

// KeyFromURL derives the storage key from a public object URL by stripping
// the first three path segments (scheme, empty authority separator, domain).
// For "https://cdn.example.com/temp/abc/cat.png" it returns "temp/abc/cat.png".
func KeyFromURL(url string) string {
	parts := strings.SplitN(url, "/", 4)
	if len(parts) < 4 {
		return url
	}
	return parts[3]
}

// Filename returns the last path segment of a key or URL.
func Filename(keyOrURL string) string {
	if i := strings.LastIndex(keyOrURL, "/"); i >= 0 {
		return keyOrURL[i+1:]
	}
	return keyOrURL
}
