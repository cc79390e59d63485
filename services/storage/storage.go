package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ErrInvalidImage marks uploads rejected by ValidateImage.
var ErrInvalidImage = errors.New("invalid image")

// ObjectStorage is the narrow capability entity logic depends on:
// upload a blob under a key, delete by key. Nothing here knows which
// provider sits behind it.
type ObjectStorage interface {
	Upload(ctx context.Context, key string, data io.Reader, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}

// MaxImageSize caps room image uploads at 50 MB.
const MaxImageSize = 50 * 1024 * 1024

var imageContentTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
}

// ValidateImage rejects uploads that are not JPEG/PNG or exceed the
// size cap, returning the content type to store the object with.
func ValidateImage(file *multipart.FileHeader) (string, error) {
	if file.Size > MaxImageSize {
		return "", fmt.Errorf("%w: image exceeds the %d MB limit", ErrInvalidImage, MaxImageSize/(1024*1024))
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	contentType, ok := imageContentTypes[ext]
	if !ok {
		return "", fmt.Errorf("%w: only images (jpeg, jpg, png) are allowed", ErrInvalidImage)
	}

	// The declared content type must agree with the extension.
	if declared := file.Header.Get("Content-Type"); declared != "" && declared != contentType {
		return "", fmt.Errorf("%w: only images (jpeg, jpg, png) are allowed", ErrInvalidImage)
	}

	return contentType, nil
}

// GenerateKey generates a unique object key under the given prefix,
// keeping the original file extension.
func GenerateKey(prefix, filename string) string {
	return fmt.Sprintf("%s/%s%s", prefix, uuid.New().String(), strings.ToLower(filepath.Ext(filename)))
}

// KeyFromURL recovers the object key from a stored public URL.
func KeyFromURL(objectURL string) (string, error) {
	u, err := url.Parse(objectURL)
	if err != nil {
		return "", fmt.Errorf("parse object URL %q: %w", objectURL, err)
	}
	key := strings.TrimPrefix(u.Path, "/")
	if key == "" {
		return "", fmt.Errorf("object URL %q has no key", objectURL)
	}
	return key, nil
}
