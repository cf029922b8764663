package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/option"

	storageport "github.com/marcos-nsantos/asset-pipeline/internal/adapter/storage"
	"github.com/marcos-nsantos/asset-pipeline/internal/domain"
	"github.com/marcos-nsantos/asset-pipeline/internal/infrastructure/config"
)

const gcsLengthRangeHeader = "x-goog-content-length-range"

var _ storageport.Provider = (*GCSStorage)(nil)

type GCSStorage struct {
	client              *gcs.Client
	bucket              string
	publicURL           string
	serviceAccountEmail string
	privateKey          []byte
}

func NewGCSStorage(ctx context.Context, cfg config.GCSConfig, bucket string) (*GCSStorage, error) {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating gcs client: %w", err)
	}

	publicURL := strings.TrimRight(cfg.PublicURL, "/")
	if publicURL == "" {
		publicURL = fmt.Sprintf("https://storage.googleapis.com/%s", bucket)
	}

	return &GCSStorage{
		client:              client,
		bucket:              bucket,
		publicURL:           publicURL,
		serviceAccountEmail: cfg.ServiceAccountEmail,
		// Keys from env usually carry literal \n sequences.
		privateKey: []byte(strings.ReplaceAll(cfg.PrivateKey, `\n`, "\n")),
	}, nil
}

func (s *GCSStorage) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	w := s.client.Bucket(s.bucket).Object(key).NewWriter(ctx)
	w.ContentType = contentType

	if _, err := w.Write(data); err != nil {
		w.Close()
		return "", fmt.Errorf("writing %q to gcs: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("closing gcs writer for %q: %w", key, err)
	}
	return s.URL(key), nil
}

func (s *GCSStorage) Download(ctx context.Context, key string) ([]byte, error) {
	r, err := s.client.Bucket(s.bucket).Object(key).NewReader(ctx)
	if err != nil {
		if errors.Is(err, gcs.ErrObjectNotExist) {
			return nil, fmt.Errorf("reading %q from gcs: %w", key, domain.ErrObjectNotFound)
		}
		return nil, fmt.Errorf("reading %q from gcs: %w", key, err)
	}
	defer r.Close()

	data, err := readCapped(r, key, r.Attrs.Size)
	if err != nil {
		return nil, fmt.Errorf("reading %q from gcs: %w", key, err)
	}
	return data, nil
}

func (s *GCSStorage) Delete(ctx context.Context, key string) error {
	err := s.client.Bucket(s.bucket).Object(key).Delete(ctx)
	if err != nil && !errors.Is(err, gcs.ErrObjectNotExist) {
		return fmt.Errorf("deleting %q from gcs: %w", key, err)
	}
	return nil
}

func (s *GCSStorage) DeleteMany(ctx context.Context, keys []string) error {
	var errs []error
	for _, key := range keys {
		if err := s.Delete(ctx, key); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// PresignPut binds the declared size through x-goog-content-length-range, so
// GCS rejects a larger body.
func (s *GCSStorage) PresignPut(_ context.Context, key, contentType string, size int64, ttl time.Duration) (*storageport.UploadTarget, error) {
	expiresAt := time.Now().UTC().Add(ttl)
	lengthRange := fmt.Sprintf("0,%d", size)

	u, err := gcs.SignedURL(s.bucket, key, &gcs.SignedURLOptions{
		Scheme:         gcs.SigningSchemeV4,
		Method:         "PUT",
		ContentType:    contentType,
		Expires:        expiresAt,
		Headers:        []string{gcsLengthRangeHeader + ":" + lengthRange},
		GoogleAccessID: s.serviceAccountEmail,
		PrivateKey:     s.privateKey,
	})
	if err != nil {
		return nil, fmt.Errorf("signing gcs upload url: %w", err)
	}

	return &storageport.UploadTarget{
		URL:       u,
		Method:    "PUT",
		Headers:   map[string]string{"Content-Type": contentType, gcsLengthRangeHeader: lengthRange},
		ExpiresAt: expiresAt,
	}, nil
}

func (s *GCSStorage) URL(key string) string {
	return fmt.Sprintf("%s/%s", s.publicURL, key)
}

func (s *GCSStorage) Bucket() string {
	return s.bucket
}

func (s *GCSStorage) Close() error {
	return s.client.Close()
}
