package services

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/franciscosanchezn/gin-recipe-api/internal/storage"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// ImagesArea is the blob key prefix under which recipe images are stored
const ImagesArea = "recipe_images"

// DefaultMaxImageSize is the upload limit used when none is configured (2 MiB)
const DefaultMaxImageSize int64 = 2048 * 1024

// ImageSource tells where a resolved image came from
type ImageSource string

const (
	ImageSourceNone    ImageSource = "none"
	ImageSourceUpload  ImageSource = "upload"
	ImageSourceDataURI ImageSource = "data_uri"
	ImageSourceURL     ImageSource = "url"
)

// allowedUploadTypes maps accepted upload content types to their stored extension
var allowedUploadTypes = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/gif":  "gif",
}

// UploadedFile is a binary image attached to a multipart request
type UploadedFile struct {
	Filename string
	Data     []byte
}

// ImageInput carries the image related fields of a create or update request
type ImageInput struct {
	Upload   *UploadedFile
	ImageURL string
}

// IsEmpty reports whether the request carried no image at all
func (in ImageInput) IsEmpty() bool {
	return in.Upload == nil && strings.TrimSpace(in.ImageURL) == ""
}

// ResolvedImage is the outcome of image resolution
type ResolvedImage struct {
	// Image is the value to persist on the recipe, nil when there is no image
	Image *string
	// Key is the blob key written, empty unless the image was stored by us
	Key    string
	Source ImageSource
}

// ImageService resolves, stores and serves recipe images
type ImageService interface {
	// Resolve stores an uploaded or data URI image, or passes an external URL through
	Resolve(ctx context.Context, input ImageInput) (ResolvedImage, error)
	// Open returns the bytes and sniffed content type of a stored image
	Open(ctx context.Context, filename string) ([]byte, string, error)
	// PublicURL derives the public URL of a stored image, nil for external or missing images
	PublicURL(image *string) *string
	// Remove deletes a stored image. External URLs are left alone.
	Remove(ctx context.Context, image *string) error
}

type imageService struct {
	store        storage.BlobStore
	publicPrefix string
	maxSize      int64
}

// NewImageService creates an ImageService.
// publicPrefix is the absolute URL under which stored images are served.
func NewImageService(store storage.BlobStore, publicPrefix string, maxSize int64) ImageService {
	if maxSize <= 0 {
		maxSize = DefaultMaxImageSize
	}
	return &imageService{
		store:        store,
		publicPrefix: strings.TrimRight(publicPrefix, "/"),
		maxSize:      maxSize,
	}
}

func (s *imageService) Resolve(ctx context.Context, input ImageInput) (ResolvedImage, error) {
	var (
		resolved ResolvedImage
		err      error
	)

	imageURL := strings.TrimSpace(input.ImageURL)
	switch {
	case input.Upload != nil:
		resolved, err = s.storeUpload(ctx, input.Upload)
	case strings.HasPrefix(strings.ToLower(imageURL), "data:"):
		resolved, err = s.storeDataURI(ctx, imageURL)
	case imageURL != "":
		if !isHTTPURL(imageURL) {
			return ResolvedImage{}, NewValidationError("image_url", "must be a valid http(s) URL or a base64 data URI")
		}
		resolved = ResolvedImage{Image: &imageURL, Source: ImageSourceURL}
	default:
		resolved = ResolvedImage{Source: ImageSourceNone}
	}
	if err != nil {
		return ResolvedImage{}, err
	}

	imagesResolved.WithLabelValues(string(resolved.Source)).Inc()
	return resolved, nil
}

func (s *imageService) storeUpload(ctx context.Context, upload *UploadedFile) (ResolvedImage, error) {
	if len(upload.Data) == 0 {
		return ResolvedImage{}, NewValidationError("image", "must be an image")
	}
	if int64(len(upload.Data)) > s.maxSize {
		return ResolvedImage{}, NewValidationError("image", fmt.Sprintf("may not be greater than %d kilobytes", s.maxSize/1024))
	}

	mtype := mimetype.Detect(upload.Data)
	ext, ok := allowedUploadTypes[mtype.String()]
	if !ok {
		return ResolvedImage{}, NewValidationError("image", "must be a file of type: jpeg, png, jpg, gif")
	}

	return s.put(ctx, upload.Data, ext, mtype.String(), ImageSourceUpload)
}

func (s *imageService) storeDataURI(ctx context.Context, dataURI string) (ResolvedImage, error) {
	mediaType, data, err := ParseDataURI(dataURI)
	if err != nil {
		return ResolvedImage{}, NewValidationError("image_url", err.Error())
	}
	if int64(len(data)) > s.maxSize {
		return ResolvedImage{}, NewValidationError("image_url", fmt.Sprintf("may not be greater than %d kilobytes", s.maxSize/1024))
	}

	return s.put(ctx, data, extensionForMediaType(mediaType), mediaType, ImageSourceDataURI)
}

func (s *imageService) put(ctx context.Context, data []byte, ext, contentType string, source ImageSource) (ResolvedImage, error) {
	key := fmt.Sprintf("%s/%s.%s", ImagesArea, uuid.New().String(), ext)
	if err := s.store.Put(ctx, key, data, contentType); err != nil {
		return ResolvedImage{}, fmt.Errorf("failed to store recipe image: %w", err)
	}

	log.WithFields(log.Fields{
		"key":    key,
		"source": source,
		"bytes":  len(data),
	}).Debug("Stored recipe image")

	return ResolvedImage{Image: &key, Key: key, Source: source}, nil
}

func (s *imageService) Open(ctx context.Context, filename string) ([]byte, string, error) {
	if !isPlainFilename(filename) {
		return nil, "", ErrImageNotFound
	}

	data, err := s.store.Get(ctx, ImagesArea+"/"+filename)
	if errors.Is(err, storage.ErrObjectNotFound) {
		return nil, "", ErrImageNotFound
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to read recipe image: %w", err)
	}

	return data, mimetype.Detect(data).String(), nil
}

func (s *imageService) PublicURL(image *string) *string {
	name, ok := storedImageName(image)
	if !ok {
		return nil
	}
	publicURL := s.publicPrefix + "/" + url.PathEscape(name)
	return &publicURL
}

func (s *imageService) Remove(ctx context.Context, image *string) error {
	if _, ok := storedImageName(image); !ok {
		return nil
	}
	if err := s.store.Delete(ctx, *image); err != nil {
		return fmt.Errorf("failed to remove recipe image: %w", err)
	}
	return nil
}

// ParseDataURI decodes a "data:<mime>;base64,<payload>" string.
// Only base64 encoded image media types are accepted.
func ParseDataURI(dataURI string) (string, []byte, error) {
	header, payload, found := strings.Cut(dataURI, ",")
	if !found || !strings.HasPrefix(strings.ToLower(header), "data:") {
		return "", nil, errors.New("must be a data URI of the form data:<mime>;base64,<payload>")
	}

	params := strings.Split(header[len("data:"):], ";")
	mediaType := strings.ToLower(strings.TrimSpace(params[0]))
	if !strings.HasPrefix(mediaType, "image/") || len(mediaType) == len("image/") {
		return "", nil, errors.New("data URI must declare an image media type")
	}
	if len(params) < 2 || !strings.EqualFold(strings.TrimSpace(params[len(params)-1]), "base64") {
		return "", nil, errors.New("data URI must be base64 encoded")
	}

	payload = strings.TrimSpace(payload)
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
	}
	if err != nil {
		return "", nil, errors.New("data URI payload is not valid base64")
	}
	if len(data) == 0 {
		return "", nil, errors.New("data URI payload is empty")
	}

	return mediaType, data, nil
}

// extensionForMediaType derives a file extension from the MIME subtype,
// e.g. image/png -> png, image/svg+xml -> svg
func extensionForMediaType(mediaType string) string {
	_, subtype, _ := strings.Cut(mediaType, "/")
	subtype, _, _ = strings.Cut(subtype, "+")

	var b strings.Builder
	for _, r := range subtype {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "img"
	}
	return b.String()
}

func isHTTPURL(raw string) bool {
	parsed, err := url.ParseRequestURI(raw)
	if err != nil {
		return false
	}
	return (parsed.Scheme == "http" || parsed.Scheme == "https") && parsed.Host != ""
}

func isPlainFilename(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, "/\\")
}

// storedImageName returns the file name of an image we store ourselves
func storedImageName(image *string) (string, bool) {
	if image == nil {
		return "", false
	}
	name, found := strings.CutPrefix(*image, ImagesArea+"/")
	if !found || !isPlainFilename(name) {
		return "", false
	}
	return name, true
}
