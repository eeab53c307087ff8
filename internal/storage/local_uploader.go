package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// localUploader implements ImageUploader on the local file system. Files are served by the
// HTTP server under the public base URL.
type localUploader struct {
	dir     string
	prefix  string
	baseURL string
	now     func() time.Time
	logger  zerolog.Logger
}

// NewLocalUploader creates a directory-backed image uploader.
func NewLocalUploader(dir, prefix, baseURL string, logger zerolog.Logger) ImageUploader {
	return &localUploader{
		dir:     dir,
		prefix:  prefix,
		baseURL: baseURL,
		now:     time.Now,
		logger:  logger.With().Str("component", "local-image-uploader").Logger(),
	}
}

// Upload writes the image under a timestamped key and returns its public URL.
func (u *localUploader) Upload(ctx context.Context, filename, contentType string, body io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	data, err := readLimited(body)
	if err != nil {
		return "", err
	}

	key := ObjectKey(u.prefix, u.now(), filename)
	target := filepath.Join(u.dir, filepath.FromSlash(key))

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("failed to create media directory: %w", err)
	}
	if err := os.WriteFile(target, data, 0o644); err != nil {
		u.logger.Error().Err(err).Str("path", target).Msg("failed to write image")
		return "", fmt.Errorf("failed to write image: %w", err)
	}

	u.logger.Info().Str("path", target).Int("bytes", len(data)).Msg("image stored locally")

	return PublicURL(u.baseURL, key), nil
}
