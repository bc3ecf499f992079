package service

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"net/http"
	"strings"
	"time"

	"craftery/internal/models"
	"craftery/internal/storage"

	"github.com/chai2010/webp"
	"github.com/google/uuid"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // register WebP decoder
)

const (
	imageMaxUploadBytes = 10 * 1024 * 1024
	imageMaxDimension   = 2048
	webpQuality         = 75
)

// ImageService is the upload collaborator: it validates an uploaded file,
// normalizes it to a bounded-size WebP, stores it, and hands back the secure
// URL the request pipeline attaches for the post handlers.
type ImageService struct {
	store storage.ObjectStore
}

func NewImageService(store storage.ObjectStore) *ImageService {
	return &ImageService{store: store}
}

// Upload processes and stores one image, returning its public URL.
func (s *ImageService) Upload(ctx context.Context, filename string, content []byte) (string, error) {
	if len(content) == 0 {
		return "", models.NewValidationError("No file uploaded")
	}
	if int64(len(content)) > imageMaxUploadBytes {
		return "", models.NewValidationError(fmt.Sprintf("File too large (max %dMB)", imageMaxUploadBytes/(1024*1024)))
	}

	detectedType := http.DetectContentType(content)
	if !strings.HasPrefix(detectedType, "image/") {
		return "", models.NewValidationError("Invalid image type")
	}

	decoded, _, err := image.Decode(bytes.NewReader(content))
	if err != nil {
		return "", models.NewValidationError("Invalid image file")
	}

	decoded = capDimensions(decoded)

	var buf bytes.Buffer
	if err := webp.Encode(&buf, decoded, &webp.Options{Quality: webpQuality}); err != nil {
		return "", models.NewStoreError(err)
	}

	now := time.Now()
	objectName := fmt.Sprintf("crafts/%d/%02d/%s.webp", now.Year(), now.Month(), uuid.New().String())

	url, err := s.store.Put(ctx, objectName, &buf, int64(buf.Len()), "image/webp")
	if err != nil {
		return "", models.NewStoreError(err)
	}
	return url, nil
}

// capDimensions downscales images whose longest edge exceeds the maximum,
// preserving aspect ratio.
func capDimensions(src image.Image) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= imageMaxDimension && h <= imageMaxDimension {
		return src
	}

	scale := float64(imageMaxDimension) / float64(w)
	if h > w {
		scale = float64(imageMaxDimension) / float64(h)
	}
	dw := int(float64(w) * scale)
	dh := int(float64(h) * scale)

	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, b, xdraw.Over, nil)
	return dst
}
