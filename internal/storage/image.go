package storage

import (
	"bytes"
	"fmt"
	"path"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

const (
	ThumbnailWidth   = 400
	thumbnailQuality = 85
)

// Thumbnail decodes an uploaded image and re-encodes it as a JPEG scaled
// to width, keeping the aspect ratio. Images narrower than width are not
// enlarged.
func Thumbnail(data []byte, width int) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	if img.Bounds().Dx() > width {
		img = imaging.Resize(img, width, 0, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(thumbnailQuality)); err != nil {
		return nil, fmt.Errorf("encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}

// ProductImageKey returns a fresh object key for a product image.
func ProductImageKey(productID string) string {
	return path.Join("products", strings.TrimSpace(productID), uuid.NewString()+".jpg")
}
