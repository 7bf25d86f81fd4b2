package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/pageza/foodtracking/backend/internal/testhelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeObjectStore struct {
	puts   map[string][]byte
	putErr error
}

func (f *fakeObjectStore) PutObject(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	if f.putErr != nil {
		return "", f.putErr
	}
	if f.puts == nil {
		f.puts = make(map[string][]byte)
	}
	f.puts[key] = data
	return "s3://bucket/" + key, nil
}

func (f *fakeObjectStore) GeneratePresignedURL(ctx context.Context, objectKey string, expiration time.Duration) (string, error) {
	return "https://bucket.example/" + objectKey + "?sig=1", nil
}

func TestImageService_Attach(t *testing.T) {
	repo := newMemEntries(testhelpers.Entry("Salad", 90))
	objects := &fakeObjectStore{}
	svc := NewImageService(objects, repo)
	ctx := context.Background()

	entry, err := svc.Attach(ctx, 1, []byte{0xff, 0xd8, 0xff}, "image/jpeg")
	require.NoError(t, err)
	require.NotNil(t, entry.ImageURI)
	assert.True(t, strings.HasPrefix(*entry.ImageURI, "s3://bucket/entry-images/"))
	assert.True(t, strings.HasSuffix(*entry.ImageURI, ".jpg"))
	assert.Len(t, objects.puts, 1)

	stored := repo.row(t, 1)
	assert.Equal(t, entry.ImageURI, stored.ImageURI)

	url, err := svc.URL(ctx, &stored)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "https://bucket.example/entry-images/"))
}

func TestImageService_AttachRejects(t *testing.T) {
	repo := newMemEntries(testhelpers.Entry("Salad", 90))
	svc := NewImageService(&fakeObjectStore{}, repo)
	ctx := context.Background()

	_, err := svc.Attach(ctx, 1, []byte("GIF89a"), "image/gif")
	assert.ErrorIs(t, err, ErrUnsupportedImage)

	_, err = svc.Attach(ctx, 1, nil, "image/png")
	assert.ErrorIs(t, err, ErrUnsupportedImage)

	_, err = svc.Attach(ctx, 42, []byte{1}, "image/png")
	assert.ErrorIs(t, err, ErrEntryNotFound)

	failing := NewImageService(&fakeObjectStore{putErr: errors.New("denied")}, repo)
	_, err = failing.Attach(ctx, 1, []byte{1}, "image/png")
	assert.Error(t, err)
	assert.Nil(t, repo.row(t, 1).ImageURI)
}

func TestImageService_URLPassesThroughDevicePaths(t *testing.T) {
	svc := NewImageService(&fakeObjectStore{}, newMemEntries())
	entry := testhelpers.Entry("Photo", 1)

	url, err := svc.URL(context.Background(), &entry)
	require.NoError(t, err)
	assert.Empty(t, url)

	path := "/data/user/0/app/files/meal.jpg"
	entry.ImageURI = &path
	url, err = svc.URL(context.Background(), &entry)
	require.NoError(t, err)
	assert.Equal(t, path, url)
}
