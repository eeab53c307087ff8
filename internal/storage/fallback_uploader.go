package storage

import (
	"bytes"
	"context"
	"io"

	"github.com/rs/zerolog"
)

// fallbackUploader tries S3 first and falls back to the local file system.
type fallbackUploader struct {
	primary   ImageUploader
	secondary ImageUploader
	logger    zerolog.Logger
}

// NewFallbackUploader creates an uploader that tries primary first, then secondary. If
// primary is nil only secondary is used.
func NewFallbackUploader(primary, secondary ImageUploader, logger zerolog.Logger) ImageUploader {
	if primary == nil {
		return secondary
	}
	return &fallbackUploader{
		primary:   primary,
		secondary: secondary,
		logger:    logger.With().Str("component", "fallback-uploader").Logger(),
	}
}

func (u *fallbackUploader) Upload(ctx context.Context, filename, contentType string, body io.Reader) (string, error) {
	data, err := readLimited(body)
	if err != nil {
		return "", err
	}

	url, err := u.primary.Upload(ctx, filename, contentType, bytes.NewReader(data))
	if err == nil {
		return url, nil
	}

	u.logger.Warn().
		Err(err).
		Str("filename", filename).
		Msg("primary upload failed, falling back to local storage")

	return u.secondary.Upload(ctx, filename, contentType, bytes.NewReader(data))
}
