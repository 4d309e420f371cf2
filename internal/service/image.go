package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/apperror"
	"github.com/pageza/foodgram/backend/internal/logger"
)

const (
	maxImageSize      = 5 << 20
	recipeImagePrefix = "recipes/images"
)

var dataURIPattern = regexp.MustCompile(`^data:(image/(png|jpe?g|gif|webp));base64,(.+)$`)

// decodedImage is a recipe image parsed from a base64 data URI.
type decodedImage struct {
	Data        []byte
	ContentType string
	Ext         string
}

// decodeImage parses "data:image/<fmt>;base64,<payload>".
func decodeImage(uri string) (*decodedImage, error) {
	if strings.TrimSpace(uri) == "" {
		return nil, apperror.ValidationFailed("image", "image is required")
	}
	m := dataURIPattern.FindStringSubmatch(uri)
	if m == nil {
		return nil, apperror.ValidationFailed("image", "image must be a base64 encoded data URI")
	}
	data, err := base64.StdEncoding.DecodeString(m[3])
	if err != nil {
		return nil, apperror.ValidationFailed("image", "image is not valid base64")
	}
	if len(data) == 0 {
		return nil, apperror.ValidationFailed("image", "image is empty")
	}
	if len(data) > maxImageSize {
		return nil, apperror.ValidationFailed("image", "image must be at most 5MB")
	}
	ext := m[2]
	if ext == "jpeg" {
		ext = "jpg"
	}
	return &decodedImage{Data: data, ContentType: m[1], Ext: ext}, nil
}

func newImageKey(ext string) string {
	return fmt.Sprintf("%s/%s.%s", recipeImagePrefix, uuid.NewString(), ext)
}

// storeImage decodes and persists a recipe image, returning its URL.
func storeImage(ctx context.Context, store ImageStore, uri string) (string, error) {
	img, err := decodeImage(uri)
	if err != nil {
		return "", err
	}
	url, err := store.Save(ctx, newImageKey(img.Ext), img.Data, img.ContentType)
	if err != nil {
		return "", fmt.Errorf("saving image: %w", err)
	}
	return url, nil
}

// discardImage removes an image that is no longer referenced. Failures are only logged.
func discardImage(ctx context.Context, store ImageStore, url string) {
	if url == "" {
		return
	}
	if err := store.Delete(ctx, url); err != nil {
		logger.Component(nil, "recipe_service").Warn("failed to delete recipe image",
			slog.String("url", url), slog.Any("error", err))
	}
}

// S3ImageStore keeps recipe images in an S3 compatible bucket.
type S3ImageStore struct {
	s3Config *config.S3Config
	uploader *manager.Uploader
}

// NewS3ImageStore creates a new S3ImageStore instance
func NewS3ImageStore(s3Config *config.S3Config) *S3ImageStore {
	return &S3ImageStore{
		s3Config: s3Config,
		uploader: manager.NewUploader(s3Config.Client),
	}
}

func (s *S3ImageStore) Save(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.s3Config.BucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}
	return s.s3Config.ObjectURL(key), nil
}

func (s *S3ImageStore) Delete(ctx context.Context, url string) error {
	key := strings.TrimPrefix(url, s.s3Config.PublicURL+"/")
	if key == url {
		return fmt.Errorf("image %q is not stored in bucket %s", url, s.s3Config.BucketName)
	}
	_, err := s.s3Config.Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.s3Config.BucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete from S3: %w", err)
	}
	return nil
}

// LocalImageStore writes images below a media directory served by the API itself.
type LocalImageStore struct {
	root    string
	baseURL string
}

func NewLocalImageStore(root, baseURL string) *LocalImageStore {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &LocalImageStore{root: root, baseURL: baseURL}
}

func (s *LocalImageStore) Save(_ context.Context, key string, data []byte, _ string) (string, error) {
	path := filepath.Join(s.root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("creating media directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing image: %w", err)
	}
	return s.baseURL + key, nil
}

func (s *LocalImageStore) Delete(_ context.Context, url string) error {
	key := strings.TrimPrefix(url, s.baseURL)
	if key == url || strings.Contains(key, "..") {
		return fmt.Errorf("image %q is not in local media", url)
	}
	err := os.Remove(filepath.Join(s.root, filepath.FromSlash(key)))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
