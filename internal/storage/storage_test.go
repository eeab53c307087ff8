package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"restaurant-orders/internal/model"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.UnixMilli(1700000000123)

func TestObjectKey(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		expected string
	}{
		{name: "plain name", filename: "arepa.png", expected: "productos/1700000000123_arepa.png"},
		{name: "spaces are replaced", filename: "bandeja paisa.jpg", expected: "productos/1700000000123_bandeja_paisa.jpg"},
		{name: "directories are stripped", filename: "../../etc/passwd", expected: "productos/1700000000123_passwd"},
		{name: "windows path", filename: `C:\fotos\ajiaco.webp`, expected: "productos/1700000000123_ajiaco.webp"},
		{name: "empty name", filename: "", expected: "productos/1700000000123_imagen"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ObjectKey("productos/", fixedNow, tt.filename))
		})
	}
}

func TestPublicURL(t *testing.T) {
	assert.Equal(t, "https://cdn.example.com/productos/1_a.png", PublicURL("https://cdn.example.com/", "/productos/1_a.png"))
}

type mockPutter struct {
	input *s3.PutObjectInput
	body  []byte
	err   error
}

func (m *mockPutter) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	m.input = params
	if params.Body != nil {
		m.body, _ = io.ReadAll(params.Body)
	}
	if m.err != nil {
		return nil, m.err
	}
	return &s3.PutObjectOutput{}, nil
}

func TestS3Uploader_Upload(t *testing.T) {
	putter := &mockPutter{}
	uploader := newS3Uploader(putter, "menu-bucket", "productos/", "https://cdn.example.com", zerolog.Nop())
	uploader.now = func() time.Time { return fixedNow }

	url, err := uploader.Upload(context.Background(), "arepa.png", "image/png", strings.NewReader("png-bytes"))
	require.NoError(t, err)

	assert.Equal(t, "https://cdn.example.com/productos/1700000000123_arepa.png", url)
	assert.Equal(t, "menu-bucket", aws.ToString(putter.input.Bucket))
	assert.Equal(t, "productos/1700000000123_arepa.png", aws.ToString(putter.input.Key))
	assert.Equal(t, "image/png", aws.ToString(putter.input.ContentType))
	assert.Equal(t, []byte("png-bytes"), putter.body)
}

func TestS3Uploader_Errors(t *testing.T) {
	putter := &mockPutter{err: errors.New("access denied")}
	uploader := newS3Uploader(putter, "menu-bucket", "productos/", "https://cdn.example.com", zerolog.Nop())

	_, err := uploader.Upload(context.Background(), "arepa.png", "image/png", strings.NewReader("png"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access denied")

}

func TestUploaders_RejectInvalidImages(t *testing.T) {
	big := bytes.Repeat([]byte("x"), MaxImageSize+1)
	uploaders := map[string]ImageUploader{
		"s3":       newS3Uploader(&mockPutter{}, "menu-bucket", "productos/", "https://cdn.example.com", zerolog.Nop()),
		"local":    NewLocalUploader(t.TempDir(), "productos/", "http://localhost:8080/media", zerolog.Nop()),
		"fallback": NewFallbackUploader(&stubUploader{url: "s3-url"}, &stubUploader{url: "local-url"}, zerolog.Nop()),
	}

	tests := []struct {
		name     string
		body     []byte
		expected error
	}{
		{name: "empty", body: nil, expected: model.ErrImageEmpty},
		{name: "too large", body: big, expected: model.ErrImageTooLarge},
	}

	for kind, uploader := range uploaders {
		for _, tt := range tests {
			t.Run(kind+" "+tt.name, func(t *testing.T) {
				url, err := uploader.Upload(context.Background(), "foto.png", "image/png", bytes.NewReader(tt.body))

				assert.ErrorIs(t, err, tt.expected)
				assert.Empty(t, url)

				var domainErr *model.DomainError
				require.ErrorAs(t, err, &domainErr)
				assert.Equal(t, model.ErrCodeValidation, domainErr.Code)
			})
		}
	}
}

func TestLocalUploader_Upload(t *testing.T) {
	dir := t.TempDir()
	uploader := NewLocalUploader(dir, "productos/", "http://localhost:8080/media", zerolog.Nop()).(*localUploader)
	uploader.now = func() time.Time { return fixedNow }

	url, err := uploader.Upload(context.Background(), "tamales.jpg", "image/jpeg", strings.NewReader("jpeg"))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/media/productos/1700000000123_tamales.jpg", url)

	data, err := os.ReadFile(filepath.Join(dir, "productos", "1700000000123_tamales.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", string(data))
}

type stubUploader struct {
	url   string
	err   error
	calls int
	got   string
}

func (s *stubUploader) Upload(ctx context.Context, filename, contentType string, body io.Reader) (string, error) {
	s.calls++
	data, _ := io.ReadAll(body)
	s.got = string(data)
	return s.url, s.err
}

func TestFallbackUploader(t *testing.T) {
	ctx := context.Background()

	t.Run("primary success", func(t *testing.T) {
		primary := &stubUploader{url: "s3-url"}
		secondary := &stubUploader{url: "local-url"}
		uploader := NewFallbackUploader(primary, secondary, zerolog.Nop())

		url, err := uploader.Upload(ctx, "a.png", "image/png", strings.NewReader("img"))
		require.NoError(t, err)
		assert.Equal(t, "s3-url", url)
		assert.Equal(t, 0, secondary.calls)
	})

	t.Run("primary failure falls back with the same bytes", func(t *testing.T) {
		primary := &stubUploader{err: errors.New("S3 down")}
		secondary := &stubUploader{url: "local-url"}
		uploader := NewFallbackUploader(primary, secondary, zerolog.Nop())

		url, err := uploader.Upload(ctx, "a.png", "image/png", strings.NewReader("img"))
		require.NoError(t, err)
		assert.Equal(t, "local-url", url)
		assert.Equal(t, "img", secondary.got)
	})

	t.Run("nil primary uses secondary directly", func(t *testing.T) {
		secondary := &stubUploader{url: "local-url"}
		uploader := NewFallbackUploader(nil, secondary, zerolog.Nop())
		assert.Same(t, secondary, uploader)
	})
}
