package storage

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/andresuchdata/joyeria/backend-go/internal/config"
	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: 200, G: 170, B: 40, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestThumbnail_ResizesWideImages(t *testing.T) {
	out, err := Thumbnail(pngBytes(t, 1200, 600), ThumbnailWidth)
	require.NoError(t, err)

	img, err := imaging.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 400, img.Bounds().Dx())
	assert.Equal(t, 200, img.Bounds().Dy())
}

func TestThumbnail_KeepsSmallImages(t *testing.T) {
	out, err := Thumbnail(pngBytes(t, 120, 80), ThumbnailWidth)
	require.NoError(t, err)

	img, err := imaging.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 120, img.Bounds().Dx())
}

func TestThumbnail_RejectsGarbage(t *testing.T) {
	_, err := Thumbnail([]byte("not an image"), ThumbnailWidth)
	assert.Error(t, err)
}

func TestPublicURL(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.StorageConfig
		want string
	}{
		{
			name: "public base url wins",
			cfg:  config.StorageConfig{Endpoint: "s3.local:9000", Bucket: "img", PublicBaseURL: "https://cdn.example.com/"},
			want: "https://cdn.example.com/products/a.jpg",
		},
		{
			name: "bare host without ssl",
			cfg:  config.StorageConfig{Endpoint: "s3.local:9000", Bucket: "img"},
			want: "http://s3.local:9000/img/products/a.jpg",
		},
		{
			name: "endpoint with scheme",
			cfg:  config.StorageConfig{Endpoint: "https://s3.example.com/", Bucket: "img"},
			want: "https://s3.example.com/img/products/a.jpg",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, publicURL(tt.cfg, "/products/a.jpg"))
		})
	}
}

func TestNew_RequiresEndpoint(t *testing.T) {
	_, err := New(config.StorageConfig{})
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = New(config.StorageConfig{Endpoint: "s3.local", Bucket: "b", AccessKey: "a", SecretKey: "s", Provider: "ftp"})
	assert.Error(t, err)
}

func TestProductImageKey(t *testing.T) {
	a := ProductImageKey("p1")
	b := ProductImageKey("p1")
	assert.True(t, strings.HasPrefix(a, "products/p1/"))
	assert.True(t, strings.HasSuffix(a, ".jpg"))
	assert.NotEqual(t, a, b)
}
