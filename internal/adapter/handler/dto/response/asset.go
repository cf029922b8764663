package response

import (
	"time"

	"github.com/google/uuid"

	"github.com/marcos-nsantos/asset-pipeline/internal/domain/entity"
	"github.com/marcos-nsantos/asset-pipeline/internal/pkg/pagination"
)

type ImageAssetResponse struct {
	ID          uuid.UUID           `json:"id"`
	Bucket      string              `json:"bucket"`
	Key         string              `json:"key"`
	MimeType    string              `json:"mime_type"`
	Width       int                 `json:"width"`
	Height      int                 `json:"height"`
	Bytes       int64               `json:"bytes"`
	Format      string              `json:"format"`
	BlurHash    string              `json:"blurhash"`
	AvgColor    string              `json:"avg_color"`
	Alt         string              `json:"alt"`
	Kind        string              `json:"kind"`
	EntitySlug  string              `json:"entity_slug"`
	Derivatives DerivativesResponse `json:"derivatives"`
	CreatedAt   time.Time           `json:"created_at"`
}

type DerivativesResponse struct {
	Original OriginalResponse     `json:"original"`
	Sizes    []DerivativeResponse `json:"sizes"`
}

type OriginalResponse struct {
	Key       string `json:"key"`
	URL       string `json:"url"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	SizeBytes int64  `json:"size_bytes"`
}

type DerivativeResponse struct {
	Key       string `json:"key"`
	URL       string `json:"url"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	SizeBytes int64  `json:"size_bytes"`
	Suffix    string `json:"suffix"`
}

type PaginationResponse struct {
	Page       int  `json:"page"`
	PerPage    int  `json:"per_page"`
	TotalItems int  `json:"total_items"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
	HasPrev    bool `json:"has_prev"`
}

type AssetsListResponse struct {
	Assets     []ImageAssetResponse `json:"assets"`
	Pagination PaginationResponse   `json:"pagination"`
}

func ImageAssetFromEntity(a *entity.ImageAsset) ImageAssetResponse {
	resp := ImageAssetResponse{
		ID:         a.ID,
		Bucket:     a.Bucket,
		Key:        a.Key,
		MimeType:   a.MimeType,
		Width:      a.Width,
		Height:     a.Height,
		Bytes:      a.Size,
		Format:     a.Format.String(),
		BlurHash:   a.BlurHash,
		AvgColor:   a.AvgColor,
		Alt:        a.Alt,
		Kind:       a.Kind,
		EntitySlug: a.EntitySlug,
		CreatedAt:  a.CreatedAt,
	}

	if orig, ok := a.Original(); ok {
		resp.Derivatives.Original = OriginalResponse{
			Key:       orig.Key,
			URL:       orig.URL,
			Width:     orig.Width,
			Height:    orig.Height,
			SizeBytes: orig.Size,
		}
	}

	sizes := a.Sizes()
	resp.Derivatives.Sizes = make([]DerivativeResponse, 0, len(sizes))
	for _, d := range sizes {
		resp.Derivatives.Sizes = append(resp.Derivatives.Sizes, DerivativeResponse{
			Key:       d.Key,
			URL:       d.URL,
			Width:     d.Width,
			Height:    d.Height,
			SizeBytes: d.Size,
			Suffix:    d.Suffix,
		})
	}

	return resp
}

func ImageAssetsFromEntities(assets []entity.ImageAsset) []ImageAssetResponse {
	result := make([]ImageAssetResponse, 0, len(assets))
	for _, a := range assets {
		result = append(result, ImageAssetFromEntity(&a))
	}
	return result
}

func PaginationFromInfo(info *pagination.Info) PaginationResponse {
	return PaginationResponse{
		Page:       info.Page,
		PerPage:    info.PerPage,
		TotalItems: info.TotalItems,
		TotalPages: info.TotalPages,
		HasNext:    info.HasNext,
		HasPrev:    info.HasPrev,
	}
}
