package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/pliro-dev/pliro/internal/config"
)

// SpacesClient stores blobs in a DigitalOcean Space (or any S3-compatible
// bucket). Locators have the form {endpoint}/{bucket}/standards/{uuid}{ext},
// which keeps responses renderable as plain links while staying parseable for
// delete and presign.
type SpacesClient struct {
	client   *minio.Client
	endpoint string
	bucket   string
}

func NewSpacesClient(cfg *config.Config) (*SpacesClient, error) {
	parsed, err := url.Parse(cfg.SpaceEndpoint)

	if err != nil {
		return nil, fmt.Errorf("invalid storage endpoint %q: %w", cfg.SpaceEndpoint, err)
	}

	if parsed.Host == "" {
		return nil, fmt.Errorf("invalid storage endpoint %q: missing host", cfg.SpaceEndpoint)
	}

	client, err := minio.New(parsed.Host, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.SpaceAccessKey, cfg.SpaceSecretKey, ""),
		Secure: parsed.Scheme == "https",
		Region: cfg.SpaceRegion,
	})

	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	return &SpacesClient{
		client:   client,
		endpoint: strings.TrimSuffix(cfg.SpaceEndpoint, "/"),
		bucket:   cfg.SpaceName,
	}, nil
}

func (s *SpacesClient) Upload(ctx context.Context, reader io.Reader, size int64, filename string, contentType string) (string, error) {
	extension := filepath.Ext(filename)
	objectPath := fmt.Sprintf("standards/%s%s", uuid.New().String(), extension)

	_, err := s.client.PutObject(ctx, s.bucket, objectPath, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})

	if err != nil {
		return "", fmt.Errorf("failed to upload file: %w", err)
	}

	return fmt.Sprintf("%s/%s/%s", s.endpoint, s.bucket, objectPath), nil
}

func (s *SpacesClient) Delete(ctx context.Context, filePath string) error {
	objectKey, err := s.objectKey(filePath)

	if err != nil {
		return err
	}

	if err := s.client.RemoveObject(ctx, s.bucket, objectKey, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}

	return nil
}

func (s *SpacesClient) PresignedURL(ctx context.Context, filePath string, expiry time.Duration) (string, error) {
	objectKey, err := s.objectKey(filePath)

	if err != nil {
		return "", err
	}

	presigned, err := s.client.PresignedGetObject(ctx, s.bucket, objectKey, expiry, nil)

	if err != nil {
		return "", fmt.Errorf("failed to presign file: %w", err)
	}

	return presigned.String(), nil
}

// objectKey extracts the bucket-relative key from a stored locator.
func (s *SpacesClient) objectKey(filePath string) (string, error) {
	parts := strings.Split(filePath, s.endpoint+"/"+s.bucket+"/")

	if len(parts) != 2 || parts[1] == "" {
		return "", fmt.Errorf("invalid file path format: %s", filePath)
	}

	return parts[1], nil
}
