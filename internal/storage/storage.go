package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"regexp"
	"strings"
	"time"

	"restaurant-orders/internal/model"
)

// MaxImageSize is the largest product image accepted for upload.
const MaxImageSize = 5 << 20

// ImageUploader stores a product image and returns its public URL.
type ImageUploader interface {
	Upload(ctx context.Context, filename, contentType string, body io.Reader) (string, error)
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// ObjectKey builds the storage key {prefix}{unixMillis}_{filename}. The filename is reduced
// to a safe base name.
func ObjectKey(prefix string, now time.Time, filename string) string {
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	name = unsafeChars.ReplaceAllString(name, "_")
	name = strings.Trim(name, "._")
	if name == "" {
		name = "imagen"
	}
	return fmt.Sprintf("%s%d_%s", prefix, now.UnixMilli(), name)
}

// PublicURL joins the public base URL and an object key.
func PublicURL(baseURL, key string) string {
	return strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(key, "/")
}

// readLimited buffers an upload, rejecting empty and oversized images with validation errors.
func readLimited(body io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(body, MaxImageSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	if len(data) > MaxImageSize {
		return nil, model.ErrImageTooLarge
	}
	if len(data) == 0 {
		return nil, model.ErrImageEmpty
	}
	return data, nil
}
