package services

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"testing"

	"github.com/franciscosanchezn/gin-recipe-api/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPublicPrefix = "http://localhost:8080/api/v1/recipes/images"

type failingStore struct {
	*storage.MemoryStore
}

func (f failingStore) Put(ctx context.Context, key string, data []byte, contentType string) error {
	return errors.New("disk full")
}

func TestResolveUpload(t *testing.T) {
	store := storage.NewMemoryStore()
	images := NewImageService(store, testPublicPrefix, 0)

	resolved, err := images.Resolve(bg, ImageInput{
		Upload:   &UploadedFile{Filename: "photo.png", Data: pngBytes},
		ImageURL: "https://example.com/ignored.png",
	})
	require.NoError(t, err)
	assert.Equal(t, ImageSourceUpload, resolved.Source)
	require.NotNil(t, resolved.Image)
	assert.True(t, strings.HasPrefix(*resolved.Image, ImagesArea+"/"))
	assert.True(t, strings.HasSuffix(*resolved.Image, ".png"))
	assert.Equal(t, *resolved.Image, resolved.Key)

	stored, err := store.Get(bg, resolved.Key)
	require.NoError(t, err)
	assert.Equal(t, pngBytes, stored)

	publicURL := images.PublicURL(resolved.Image)
	require.NotNil(t, publicURL)
	assert.Equal(t, testPublicPrefix+"/"+strings.TrimPrefix(resolved.Key, ImagesArea+"/"), *publicURL)
}

func TestResolveUploadRejectsNonImages(t *testing.T) {
	images := NewImageService(storage.NewMemoryStore(), testPublicPrefix, 0)

	_, err := images.Resolve(bg, ImageInput{Upload: &UploadedFile{Filename: "notes.txt", Data: []byte("plain text")}})
	var validation *ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Contains(t, validation.Fields, "image")
}

func TestResolveUploadEnforcesMaxSize(t *testing.T) {
	images := NewImageService(storage.NewMemoryStore(), testPublicPrefix, 16)

	_, err := images.Resolve(bg, ImageInput{Upload: &UploadedFile{Filename: "big.png", Data: pngBytes}})
	var validation *ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Contains(t, validation.Fields["image"], "kilobytes")
}

func TestResolveDataURI(t *testing.T) {
	store := storage.NewMemoryStore()
	images := NewImageService(store, testPublicPrefix, 0)

	payload := base64.StdEncoding.EncodeToString(pngBytes)
	resolved, err := images.Resolve(bg, ImageInput{ImageURL: "data:image/png;base64," + payload})
	require.NoError(t, err)
	assert.Equal(t, ImageSourceDataURI, resolved.Source)
	assert.True(t, strings.HasSuffix(resolved.Key, ".png"))

	stored, err := store.Get(bg, resolved.Key)
	require.NoError(t, err)
	decoded, err := base64.StdEncoding.DecodeString(payload)
	require.NoError(t, err)
	assert.Equal(t, decoded, stored)
}

func TestResolveDataURIRejectsMalformedInput(t *testing.T) {
	images := NewImageService(storage.NewMemoryStore(), testPublicPrefix, 0)

	for _, input := range []string{
		"data:image/png;base64",
		"data:text/plain;base64,aGVsbG8=",
		"data:image/png,rawbytes",
		"data:image/png;base64,!!!not-base64!!!",
		"data:image/png;base64,",
	} {
		_, err := images.Resolve(bg, ImageInput{ImageURL: input})
		var validation *ValidationError
		require.ErrorAs(t, err, &validation, "input %q", input)
		assert.Contains(t, validation.Fields, "image_url")
	}
}

func TestResolvePlainURLPassesThrough(t *testing.T) {
	store := storage.NewMemoryStore()
	images := NewImageService(store, testPublicPrefix, 0)

	resolved, err := images.Resolve(bg, ImageInput{ImageURL: "https://cdn.example.com/cake.jpg"})
	require.NoError(t, err)
	assert.Equal(t, ImageSourceURL, resolved.Source)
	require.NotNil(t, resolved.Image)
	assert.Equal(t, "https://cdn.example.com/cake.jpg", *resolved.Image)
	assert.Empty(t, resolved.Key)
	assert.Nil(t, images.PublicURL(resolved.Image))
	assert.Equal(t, 0, store.Len())
}

func TestResolveRejectsUnsupportedURL(t *testing.T) {
	images := NewImageService(storage.NewMemoryStore(), testPublicPrefix, 0)

	for _, input := range []string{"ftp://example.com/cake.jpg", "cake.jpg", "javascript:alert(1)"} {
		_, err := images.Resolve(bg, ImageInput{ImageURL: input})
		var validation *ValidationError
		assert.ErrorAs(t, err, &validation, "input %q", input)
	}
}

func TestResolveWithoutImage(t *testing.T) {
	images := NewImageService(storage.NewMemoryStore(), testPublicPrefix, 0)

	resolved, err := images.Resolve(bg, ImageInput{})
	require.NoError(t, err)
	assert.Equal(t, ImageSourceNone, resolved.Source)
	assert.Nil(t, resolved.Image)
	assert.Nil(t, images.PublicURL(resolved.Image))
}

func TestResolveStorageFailure(t *testing.T) {
	images := NewImageService(failingStore{storage.NewMemoryStore()}, testPublicPrefix, 0)

	_, err := images.Resolve(bg, ImageInput{Upload: &UploadedFile{Filename: "a.png", Data: pngBytes}})
	require.Error(t, err)
	var validation *ValidationError
	assert.False(t, errors.As(err, &validation))
}

func TestOpenImage(t *testing.T) {
	store := storage.NewMemoryStore()
	images := NewImageService(store, testPublicPrefix, 0)
	require.NoError(t, store.Put(bg, ImagesArea+"/known.png", pngBytes, "image/png"))

	data, contentType, err := images.Open(bg, "known.png")
	require.NoError(t, err)
	assert.Equal(t, pngBytes, data)
	assert.Equal(t, "image/png", contentType)

	for _, name := range []string{"unknown.png", "", "..", "../secret", "a/b.png"} {
		_, _, err := images.Open(bg, name)
		assert.ErrorIs(t, err, ErrImageNotFound, "name %q", name)
	}
}

func TestRemoveOnlyTouchesStoredImages(t *testing.T) {
	store := storage.NewMemoryStore()
	images := NewImageService(store, testPublicPrefix, 0)
	require.NoError(t, store.Put(bg, ImagesArea+"/gone.png", pngBytes, "image/png"))

	require.NoError(t, images.Remove(bg, strPtr(ImagesArea+"/gone.png")))
	assert.Equal(t, 0, store.Len())

	assert.NoError(t, images.Remove(bg, strPtr("https://cdn.example.com/cake.jpg")))
	assert.NoError(t, images.Remove(bg, nil))
}

func TestExtensionForMediaType(t *testing.T) {
	assert.Equal(t, "png", extensionForMediaType("image/png"))
	assert.Equal(t, "jpeg", extensionForMediaType("image/jpeg"))
	assert.Equal(t, "svg", extensionForMediaType("image/svg+xml"))
	assert.Equal(t, "xicon", extensionForMediaType("image/x-icon"))
}
