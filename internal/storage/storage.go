// Package storage keeps uploaded files in S3-compatible object storage.
package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ObjectStore stores and serves uploaded files.
type ObjectStore interface {
	// Put uploads body under key and returns its public URL.
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error)

	Delete(ctx context.Context, key string) error

	// PresignGet returns a time-limited URL for reading key.
	PresignGet(ctx context.Context, key string) (string, error)

	// KeyFromURL returns the object key behind a URL produced by Put.
	KeyFromURL(url string) (string, bool)

	// URL returns the public URL of key.
	URL(key string) string
}

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// sanitizeName keeps the base name of an uploaded file usable as a key segment.
func sanitizeName(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	name = unsafeName.ReplaceAllString(name, "_")
	if name == "" || name == "." || name == "/" {
		return "file"
	}
	return name
}

// ProfilePictureKey returns users/{id}/profile-{unixms}-{name}.
func ProfilePictureKey(userID uuid.UUID, filename string, now time.Time) string {
	return fmt.Sprintf("users/%s/profile-%d-%s", userID, now.UnixMilli(), sanitizeName(filename))
}

// ProductImageKey returns products/{id}/image-{unixms}-{name}.
func ProductImageKey(productID uuid.UUID, filename string, now time.Time) string {
	return fmt.Sprintf("products/%s/image-%d-%s", productID, now.UnixMilli(), sanitizeName(filename))
}
