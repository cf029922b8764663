package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/marcos-nsantos/asset-pipeline/internal/domain/entity"
	"github.com/marcos-nsantos/asset-pipeline/internal/pkg/pagination"
)

//go:generate mockgen -source=interfaces.go -destination=../../mocks/repository_mocks.go -package=mocks

type AssetRepository interface {
	// Create persists the asset and all of its derivatives atomically.
	Create(ctx context.Context, asset *entity.ImageAsset) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.ImageAsset, error)
	List(ctx context.Context, params AssetListParams) ([]entity.ImageAsset, *pagination.Info, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type AssetListParams struct {
	Pagination pagination.Params
	Kind       string
	EntitySlug string
}
