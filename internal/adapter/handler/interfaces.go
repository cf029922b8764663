package handler

import (
	"context"

	"github.com/google/uuid"

	"github.com/marcos-nsantos/asset-pipeline/internal/domain/entity"
	"github.com/marcos-nsantos/asset-pipeline/internal/pkg/pagination"
	"github.com/marcos-nsantos/asset-pipeline/internal/usecase/upload"
)

//go:generate mockgen -source=interfaces.go -destination=../../mocks/handler_mocks.go -package=mocks

type UploadService interface {
	Sign(ctx context.Context, input upload.SignInput) (*upload.SignResult, error)
	Complete(ctx context.Context, input upload.CompleteInput) (*upload.CompleteResult, error)
	Cancel(ctx context.Context, uploadID uuid.UUID) error
}

type AssetService interface {
	Get(ctx context.Context, assetID uuid.UUID) (*entity.ImageAsset, error)
	List(ctx context.Context, input upload.ListInput) ([]entity.ImageAsset, *pagination.Info, error)
	Delete(ctx context.Context, assetID uuid.UUID) error
}

// DirectUploader accepts bytes PUT against a locally signed upload URL.
type DirectUploader interface {
	AcceptSignedPut(ctx context.Context, key, token, contentType string, data []byte) error
}
