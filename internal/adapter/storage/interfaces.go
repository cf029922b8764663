package storage

import (
	"context"
	"time"

	"github.com/marcos-nsantos/asset-pipeline/internal/domain/valueobject"
)

//go:generate mockgen -source=interfaces.go -destination=../../mocks/storage_mocks.go -package=mocks

// Provider is the byte store behind every asset. Implementations must be safe
// for concurrent use and treat overwrites and deletes of missing keys as
// successful. Download refuses objects above valueobject.MaxUploadBytes with
// a *domain.ValidationError.
type Provider interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Download(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
	DeleteMany(ctx context.Context, keys []string) error
	PresignPut(ctx context.Context, key, contentType string, size int64, ttl time.Duration) (*UploadTarget, error)
	URL(key string) string
	Bucket() string
}

// UploadTarget is everything a client needs to PUT bytes straight to storage.
type UploadTarget struct {
	URL       string
	Method    string
	Headers   map[string]string
	ExpiresAt time.Time
}

type ImageProcessor interface {
	Process(ctx context.Context, input []byte, codec valueobject.Codec) (*ProcessResult, error)
}

// Artifact is one encoded image ready to be stored.
type Artifact struct {
	Suffix string
	Width  int
	Height int
	Data   []byte
}

type ProcessResult struct {
	Original    Artifact
	Derivatives []Artifact
	Skipped     []valueobject.SizeClass
	BlurHash    string
	AvgColor    string
}
