/*
Package storage keeps user profile photos in an S3-compatible bucket.
*/
package storage

import (
	"context"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
)

// ServiceConfig holds the connection settings of the bucket.
type ServiceConfig struct {
	S3BucketName      string
	S3Endpoint        string
	S3AccessKeyID     string
	S3SecretAccessKey string

	// PublicBaseURL is the public prefix objects are served from, e.g. a CDN origin.
	PublicBaseURL string
}

// PhotoStore uploads and removes profile photos.
type PhotoStore interface {
	// Upload stores body under key and returns the object's public URL.
	Upload(ctx context.Context, key, contentType string, body io.Reader) (string, error)

	// Delete removes key. Deleting a missing object is not an error.
	Delete(ctx context.Context, key string) error
}

// NewPhotoStore returns the S3 implementation of PhotoStore.
func NewPhotoStore(ctx context.Context, cfg ServiceConfig) (PhotoStore, error) {
	return newS3Client(ctx, cfg)
}

// AvatarKey returns a fresh object key for a photo of userID with the given file extension.
func AvatarKey(userID, ext string) string {
	ext = strings.ToLower(ext)
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return path.Join("avatars", userID, uuid.NewString()+ext)
}

// PublicURL joins base and key into the object's public URL.
func PublicURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(key, "/")
}
