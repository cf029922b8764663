package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/marcos-nsantos/asset-pipeline/internal/domain/valueobject"
)

// ImageAsset is the manifest of one processed upload. It is never updated: an
// edit produces a new asset.
type ImageAsset struct {
	ID          uuid.UUID
	Bucket      string
	Key         string
	MimeType    string
	Width       int
	Height      int
	Size        int64
	Format      valueobject.Codec
	BlurHash    string
	AvgColor    string
	Alt         string
	Kind        string
	EntitySlug  string
	Derivatives []Derivative
	CreatedAt   time.Time
}

type Derivative struct {
	Key    string
	URL    string
	Width  int
	Height int
	Size   int64
	Suffix string
}

type NewImageAssetParams struct {
	ID          uuid.UUID
	Bucket      string
	MimeType    string
	Format      valueobject.Codec
	BlurHash    string
	AvgColor    string
	Alt         string
	Kind        string
	EntitySlug  string
	Derivatives []Derivative
}

// NewImageAsset takes the original's key, dimensions and size from the
// derivative tagged "original".
func NewImageAsset(p NewImageAssetParams) *ImageAsset {
	asset := &ImageAsset{
		ID:          p.ID,
		Bucket:      p.Bucket,
		MimeType:    p.MimeType,
		Format:      p.Format,
		BlurHash:    p.BlurHash,
		AvgColor:    p.AvgColor,
		Alt:         p.Alt,
		Kind:        p.Kind,
		EntitySlug:  p.EntitySlug,
		Derivatives: p.Derivatives,
		CreatedAt:   time.Now().UTC(),
	}
	if asset.ID == uuid.Nil {
		asset.ID = uuid.New()
	}

	if orig, ok := asset.Original(); ok {
		asset.Key = orig.Key
		asset.Width = orig.Width
		asset.Height = orig.Height
		asset.Size = orig.Size
	}

	return asset
}

func (a *ImageAsset) Original() (Derivative, bool) {
	for _, d := range a.Derivatives {
		if d.Suffix == valueobject.OriginalSuffix {
			return d, true
		}
	}
	return Derivative{}, false
}

// Sizes returns the resized derivatives, excluding the original.
func (a *ImageAsset) Sizes() []Derivative {
	sizes := make([]Derivative, 0, len(a.Derivatives))
	for _, d := range a.Derivatives {
		if d.Suffix != valueobject.OriginalSuffix {
			sizes = append(sizes, d)
		}
	}
	return sizes
}

func (a *ImageAsset) Keys() []string {
	keys := make([]string, 0, len(a.Derivatives))
	for _, d := range a.Derivatives {
		keys = append(keys, d.Key)
	}
	return keys
}
