package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	storageport "github.com/marcos-nsantos/asset-pipeline/internal/adapter/storage"
	"github.com/marcos-nsantos/asset-pipeline/internal/domain"
	"github.com/marcos-nsantos/asset-pipeline/internal/infrastructure/auth"
	"github.com/marcos-nsantos/asset-pipeline/internal/infrastructure/config"
)

var _ storageport.Provider = (*LocalStorage)(nil)

// LocalStorage keeps objects as files under {root}/{bucket}. Direct uploads go
// through the API's direct-upload route, authorized by a signed token.
type LocalStorage struct {
	dir       string
	bucket    string
	publicURL string
	uploadURL string
	signer    *auth.UploadTokenSigner
}

func NewLocalStorage(cfg config.LocalStorageConfig, bucket string) (*LocalStorage, error) {
	dir, err := filepath.Abs(filepath.Join(cfg.Root, bucket))
	if err != nil {
		return nil, fmt.Errorf("resolving storage root: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating storage root: %w", err)
	}

	return &LocalStorage{
		dir:       dir,
		bucket:    bucket,
		publicURL: strings.TrimRight(cfg.PublicURL, "/"),
		uploadURL: strings.TrimRight(cfg.UploadURL, "/"),
		signer:    auth.NewUploadTokenSigner(cfg.TokenSecret),
	}, nil
}

func (s *LocalStorage) Upload(_ context.Context, key string, data []byte, _ string) (string, error) {
	path, err := s.path(key)
	if err != nil {
		return "", err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating directory for %q: %w", key, err)
	}

	tmp, err := os.CreateTemp(dir, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("creating temp file for %q: %w", key, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("writing %q: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("closing %q: %w", key, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("renaming %q: %w", key, err)
	}

	return s.URL(key), nil
}

func (s *LocalStorage) Download(_ context.Context, key string) ([]byte, error) {
	path, err := s.path(key)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("reading %q: %w", key, domain.ErrObjectNotFound)
		}
		return nil, fmt.Errorf("reading %q: %w", key, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("reading %q: %w", key, err)
	}

	data, err := readCapped(f, key, info.Size())
	if err != nil {
		return nil, fmt.Errorf("reading %q: %w", key, err)
	}
	return data, nil
}

func (s *LocalStorage) Delete(_ context.Context, key string) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing %q: %w", key, err)
	}
	return nil
}

func (s *LocalStorage) DeleteMany(ctx context.Context, keys []string) error {
	var errs []error
	for _, key := range keys {
		if err := s.Delete(ctx, key); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// PresignPut ignores the declared size; the direct-upload route caps the body
// at MaxUploadBytes instead.
func (s *LocalStorage) PresignPut(_ context.Context, key, contentType string, _ int64, ttl time.Duration) (*storageport.UploadTarget, error) {
	if _, err := s.path(key); err != nil {
		return nil, err
	}

	expiresAt := time.Now().UTC().Add(ttl)
	token, err := s.signer.Sign(key, contentType, expiresAt)
	if err != nil {
		return nil, err
	}

	return &storageport.UploadTarget{
		URL:       fmt.Sprintf("%s/%s?token=%s", s.uploadURL, key, url.QueryEscape(token)),
		Method:    "PUT",
		Headers:   map[string]string{"Content-Type": contentType},
		ExpiresAt: expiresAt,
	}, nil
}

// AcceptSignedPut stores bytes a client PUT to the URL issued by PresignPut.
func (s *LocalStorage) AcceptSignedPut(ctx context.Context, key, token, contentType string, data []byte) error {
	if err := s.signer.Verify(token, key, contentType); err != nil {
		return err
	}
	_, err := s.Upload(ctx, key, data, contentType)
	return err
}

func (s *LocalStorage) URL(key string) string {
	return fmt.Sprintf("%s/%s", s.publicURL, key)
}

func (s *LocalStorage) Bucket() string {
	return s.bucket
}

// Dir is the directory served read-only under the public URL.
func (s *LocalStorage) Dir() string {
	return s.dir
}

func (s *LocalStorage) path(key string) (string, error) {
	if key == "" || strings.HasPrefix(key, "/") {
		return "", fmt.Errorf("invalid key %q", key)
	}

	path := filepath.Join(s.dir, filepath.FromSlash(key))
	rel, err := filepath.Rel(s.dir, path)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("invalid key %q", key)
	}
	return path, nil
}
