package service

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const sourceImageURLTTL = 15 * time.Minute

var sourceImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/heic": ".heic",
}

// ObjectStore is the blob storage behind source images.
type ObjectStore interface {
	PutObject(ctx context.Context, key, contentType string, body io.Reader) error
	GeneratePresignedURL(ctx context.Context, key string, expiration time.Duration) (string, error)
}

// ImageService stores photographed or scanned recipe sources. The returned
// object key is what an image recipe keeps as its source.
type ImageService struct {
	objects ObjectStore
	logger  *zap.Logger
}

func NewImageService(objects ObjectStore, logger *zap.Logger) *ImageService {
	return &ImageService{objects: objects, logger: logger}
}

func sourceImagePrefix(uid string) string {
	return "source-images/" + uid + "/"
}

// UploadSourceImage stores body under the caller's prefix and returns its key.
func (s *ImageService) UploadSourceImage(ctx context.Context, uid, contentType string, body io.Reader) (string, error) {
	if uid == "" {
		return "", ErrUnauthenticated
	}
	contentType = strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
	ext, ok := sourceImageTypes[contentType]
	if !ok {
		return "", invalid("file", "unsupported image type %q", contentType)
	}
	key := sourceImagePrefix(uid) + uuid.NewString() + ext
	if err := s.objects.PutObject(ctx, key, contentType, body); err != nil {
		return "", fmt.Errorf("upload source image: %w", err)
	}
	s.logger.Info("source image uploaded", zap.String("uid", uid), zap.String("key", key))
	return key, nil
}

// SourceImageURL returns a short-lived download URL for one of the caller's
// source images.
func (s *ImageService) SourceImageURL(ctx context.Context, uid, key string) (string, error) {
	if uid == "" {
		return "", ErrUnauthenticated
	}
	if path.Clean(key) != key || !strings.HasPrefix(key, sourceImagePrefix(uid)) {
		return "", invalid("source", "not a source image of this user")
	}
	url, err := s.objects.GeneratePresignedURL(ctx, key, sourceImageURLTTL)
	if err != nil {
		return "", fmt.Errorf("presign source image: %w", err)
	}
	return url, nil
}
