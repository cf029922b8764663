package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	storageport "github.com/marcos-nsantos/asset-pipeline/internal/adapter/storage"
	"github.com/marcos-nsantos/asset-pipeline/internal/domain"
	"github.com/marcos-nsantos/asset-pipeline/internal/infrastructure/config"
)

var _ storageport.Provider = (*MinioStorage)(nil)

// MinioStorage talks to a self-hosted S3-compatible server through the MinIO SDK.
type MinioStorage struct {
	client    *minio.Client
	bucket    string
	publicURL string
}

func NewMinioStorage(cfg config.MinioConfig, bucket string) (*MinioStorage, error) {
	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio new client: %w", err)
	}

	publicURL := strings.TrimRight(cfg.PublicURL, "/")
	if publicURL == "" {
		publicURL = fmt.Sprintf("%s/%s", strings.TrimRight(mc.EndpointURL().String(), "/"), bucket)
	}

	return &MinioStorage{
		client:    mc,
		bucket:    bucket,
		publicURL: publicURL,
	}, nil
}

// EnsureBucket creates the bucket if it does not already exist.
func (s *MinioStorage) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket: %w", err)
	}
	if exists {
		return nil
	}

	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("make bucket: %w", err)
	}
	return nil
}

func (s *MinioStorage) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("put object %q: %w", key, err)
	}
	return s.URL(key), nil
}

func (s *MinioStorage) Download(ctx context.Context, key string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, s.readError(key, err)
	}
	defer obj.Close()

	info, err := obj.Stat()
	if err != nil {
		return nil, s.readError(key, err)
	}

	data, err := readCapped(obj, key, info.Size)
	if err != nil {
		return nil, s.readError(key, err)
	}
	return data, nil
}

func (s *MinioStorage) readError(key string, err error) error {
	if minio.ToErrorResponse(err).Code == "NoSuchKey" {
		return fmt.Errorf("get object %q: %w", key, domain.ErrObjectNotFound)
	}
	return fmt.Errorf("get object %q: %w", key, err)
}

func (s *MinioStorage) Delete(ctx context.Context, key string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove object %q: %w", key, err)
	}
	return nil
}

func (s *MinioStorage) DeleteMany(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}

	objects := make(chan minio.ObjectInfo, len(keys))
	for _, key := range keys {
		objects <- minio.ObjectInfo{Key: key}
	}
	close(objects)

	var errs []error
	for rerr := range s.client.RemoveObjects(ctx, s.bucket, objects, minio.RemoveObjectsOptions{}) {
		errs = append(errs, fmt.Errorf("remove object %q: %w", rerr.ObjectName, rerr.Err))
	}
	return errors.Join(errs...)
}

func (s *MinioStorage) PresignPut(ctx context.Context, key, contentType string, size int64, ttl time.Duration) (*storageport.UploadTarget, error) {
	length := strconv.FormatInt(size, 10)
	signed := http.Header{}
	signed.Set("Content-Type", contentType)
	signed.Set("Content-Length", length)

	u, err := s.client.PresignHeader(ctx, http.MethodPut, s.bucket, key, ttl, nil, signed)
	if err != nil {
		return nil, fmt.Errorf("presign put %q: %w", key, err)
	}

	return &storageport.UploadTarget{
		URL:       u.String(),
		Method:    http.MethodPut,
		Headers:   map[string]string{"Content-Type": contentType, "Content-Length": length},
		ExpiresAt: time.Now().UTC().Add(ttl),
	}, nil
}

func (s *MinioStorage) URL(key string) string {
	return fmt.Sprintf("%s/%s", s.publicURL, key)
}

func (s *MinioStorage) Bucket() string {
	return s.bucket
}
