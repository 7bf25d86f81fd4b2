package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pageza/foodtracking/backend/internal/model"
)

const (
	MaxImageBytes       = 8 << 20
	imageKeyPrefix      = "entry-images/"
	DefaultImageURLLife = 15 * time.Minute
)

var ErrUnsupportedImage = errors.New("unsupported image")

var imageExtensions = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/heic": "heic",
	"image/webp": "webp",
}

// ObjectStore stores entry photos. *config.S3Config satisfies it.
type ObjectStore interface {
	PutObject(ctx context.Context, key string, data []byte, contentType string) (string, error)
	GeneratePresignedURL(ctx context.Context, objectKey string, expiration time.Duration) (string, error)
}

// ImageService attaches captured photos to entries.
type ImageService struct {
	objects ObjectStore
	entries EntryRepository
}

// NewImageService creates a new ImageService instance
func NewImageService(objects ObjectStore, entries EntryRepository) *ImageService {
	return &ImageService{objects: objects, entries: entries}
}

// Attach uploads data and records its URI on the entry.
func (s *ImageService) Attach(ctx context.Context, entryID uint, data []byte, contentType string) (*model.FoodEntry, error) {
	ext, ok := imageExtensions[strings.ToLower(contentType)]
	if !ok {
		return nil, fmt.Errorf("%w: content type %q", ErrUnsupportedImage, contentType)
	}
	if len(data) == 0 || len(data) > MaxImageBytes {
		return nil, fmt.Errorf("%w: size %d bytes", ErrUnsupportedImage, len(data))
	}

	entry, err := s.entries.Get(ctx, entryID)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("%s%s.%s", imageKeyPrefix, uuid.New().String(), ext)
	uri, err := s.objects.PutObject(ctx, key, data, contentType)
	if err != nil {
		return nil, err
	}
	entry.ImageURI = &uri
	if err := s.entries.Update(ctx, entry); err != nil {
		return nil, fmt.Errorf("store image uri: %w", err)
	}
	log.Printf("[ImageService] Attached %s to entry %d", uri, entry.ID)
	return entry, nil
}

// URL returns a short-lived download URL for the entry's photo. Entries whose
// image URI is not an object key, such as on-device file paths, are returned
// as stored.
func (s *ImageService) URL(ctx context.Context, entry *model.FoodEntry) (string, error) {
	if entry.ImageURI == nil {
		return "", nil
	}
	idx := strings.Index(*entry.ImageURI, imageKeyPrefix)
	if !strings.HasPrefix(*entry.ImageURI, "s3://") || idx < 0 {
		return *entry.ImageURI, nil
	}
	return s.objects.GeneratePresignedURL(ctx, (*entry.ImageURI)[idx:], DefaultImageURLLife)
}
