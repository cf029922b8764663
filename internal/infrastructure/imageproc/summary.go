package imageproc

import (
	"fmt"
	"image"

	"github.com/buckket/go-blurhash"
	"github.com/disintegration/imaging"
)

const (
	PlaceholderSize = 32
	BlurHashX       = 4
	BlurHashY       = 3
)

// PlaceholderSample is a small square of raw interleaved RGBA pixels.
type PlaceholderSample struct {
	Width  int
	Height int
	Pix    []byte
}

// BlurHasher turns a placeholder sample into a compact placeholder string.
type BlurHasher func(sample PlaceholderSample) (string, error)

func SamplePlaceholder(img image.Image) PlaceholderSample {
	small := imaging.Resize(img, PlaceholderSize, PlaceholderSize, imaging.Box)
	return PlaceholderSample{
		Width:  small.Rect.Dx(),
		Height: small.Rect.Dy(),
		Pix:    small.Pix,
	}
}

func EncodeBlurHash(sample PlaceholderSample) (string, error) {
	img := &image.NRGBA{
		Pix:    sample.Pix,
		Stride: sample.Width * 4,
		Rect:   image.Rect(0, 0, sample.Width, sample.Height),
	}

	hash, err := blurhash.Encode(BlurHashX, BlurHashY, img)
	if err != nil {
		return "", fmt.Errorf("encoding blurhash: %w", err)
	}
	return hash, nil
}

// AverageColor downsamples to a single pixel and formats it as #rrggbb.
func AverageColor(img image.Image) string {
	px := imaging.Resize(img, 1, 1, imaging.Box).Pix
	return fmt.Sprintf("#%02x%02x%02x", px[0], px[1], px[2])
}
