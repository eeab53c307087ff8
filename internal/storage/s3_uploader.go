package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
)

// objectPutter is the subset of the S3 client used for uploads.
type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// s3Uploader implements ImageUploader on AWS S3.
type s3Uploader struct {
	client  objectPutter
	bucket  string
	prefix  string
	baseURL string
	now     func() time.Time
	logger  zerolog.Logger
}

// NewS3Uploader creates an S3-backed image uploader.
func NewS3Uploader(ctx context.Context, bucket, region, prefix, baseURL string, logger zerolog.Logger) (ImageUploader, error) {
	logger = logger.With().Str("component", "s3-image-uploader").Logger()

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		logger.Error().Err(err).Msg("failed to load AWS configuration")
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	logger.Info().
		Str("bucket", bucket).
		Str("region", region).
		Msg("S3 uploader initialised")

	return newS3Uploader(s3.NewFromConfig(cfg), bucket, prefix, baseURL, logger), nil
}

func newS3Uploader(client objectPutter, bucket, prefix, baseURL string, logger zerolog.Logger) *s3Uploader {
	return &s3Uploader{
		client:  client,
		bucket:  bucket,
		prefix:  prefix,
		baseURL: baseURL,
		now:     time.Now,
		logger:  logger,
	}
}

// Upload puts the image under a timestamped key and returns its public URL.
func (u *s3Uploader) Upload(ctx context.Context, filename, contentType string, body io.Reader) (string, error) {
	data, err := readLimited(body)
	if err != nil {
		return "", err
	}

	key := ObjectKey(u.prefix, u.now(), filename)
	input := &s3.PutObjectInput{
		Bucket:        aws.String(u.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	if _, err := u.client.PutObject(ctx, input); err != nil {
		u.logger.Error().
			Err(err).
			Str("bucket", u.bucket).
			Str("key", key).
			Msg("failed to put object to S3")
		return "", fmt.Errorf("failed to upload image to S3 (bucket=%s, key=%s): %w", u.bucket, key, err)
	}

	u.logger.Info().
		Str("bucket", u.bucket).
		Str("key", key).
		Int("bytes", len(data)).
		Msg("image uploaded to S3")

	return PublicURL(u.baseURL, key), nil
}
