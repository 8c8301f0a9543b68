package media

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"

	"github.com/guudweb/judicial-backend/internal/config"
	"github.com/guudweb/judicial-backend/internal/domain"
)

const (
	NewsPrefix     = config.PublicPrefix
	DocumentPrefix = "documents/"

	presignExpiry = time.Hour
)

// ErrStorageUnavailable is returned when the server started without object storage.
var ErrStorageUnavailable = errors.New("object storage is not configured")

// Service stores uploaded files in object storage. Objects under the public
// prefix are served directly; everything else needs a presigned URL.
type Service interface {
	Put(ctx context.Context, prefix string, file domain.FileUpload) (string, error)
	Remove(ctx context.Context, key string) error
	URL(ctx context.Context, key string) (string, error)
}

type service struct {
	minioClient *minio.Client
	cfg         *config.Config
}

func NewService(minioClient *minio.Client, cfg *config.Config) Service {
	return &service{
		minioClient: minioClient,
		cfg:         cfg,
	}
}

func (s *service) Put(ctx context.Context, prefix string, file domain.FileUpload) (string, error) {
	if s.minioClient == nil {
		return "", ErrStorageUnavailable
	}
	key := fmt.Sprintf("%s%s/%s%s", prefix, time.Now().Format("2006/01"), uuid.New().String(), strings.ToLower(path.Ext(file.FileName)))

	_, err := s.minioClient.PutObject(ctx, s.cfg.MinIOBucket, key, file.Reader, file.Size, minio.PutObjectOptions{
		ContentType: file.ContentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to MinIO: %w", err)
	}
	return key, nil
}

func (s *service) Remove(ctx context.Context, key string) error {
	if s.minioClient == nil {
		return ErrStorageUnavailable
	}
	if err := s.minioClient.RemoveObject(ctx, s.cfg.MinIOBucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to remove %s from MinIO: %w", key, err)
	}
	return nil
}

func (s *service) URL(ctx context.Context, key string) (string, error) {
	if strings.HasPrefix(key, NewsPrefix) {
		return PublicURL(s.cfg, key), nil
	}
	if s.minioClient == nil {
		return "", ErrStorageUnavailable
	}

	u, err := s.minioClient.PresignedGetObject(ctx, s.cfg.MinIOBucket, key, presignExpiry, url.Values{})
	if err != nil {
		return "", fmt.Errorf("failed to presign %s: %w", key, err)
	}
	return u.String(), nil
}

func PublicURL(cfg *config.Config, key string) string {
	scheme := "http"
	if cfg.MinIOPublicUseSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, cfg.MinIOPublicEndpoint, cfg.MinIOBucket, key)
}
