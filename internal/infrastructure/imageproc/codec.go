package imageproc

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"io"

	"github.com/disintegration/imaging"
	"github.com/gen2brain/avif"
	"github.com/gen2brain/webp"

	"github.com/marcos-nsantos/asset-pipeline/internal/domain/valueobject"
)

// DefaultMaxPixels bounds the decoded size of an upload (50 megapixels).
const DefaultMaxPixels = 50_000_000

const (
	WebPQuality = 85
	AVIFQuality = 70
	JPEGQuality = 90
	AVIFSpeed   = 8
	WebPMethod  = 4
)

type Decoder interface {
	Decode(data []byte) (image.Image, error)
}

type Encoder interface {
	Encode(w io.Writer, img image.Image, codec valueobject.Codec) error
}

// CodecDecoder decodes JPEG, PNG, WEBP and AVIF, applying EXIF orientation.
// Importing the webp and avif packages registers them with image.Decode.
// The header is read first and images above MaxPixels are refused before any
// pixel buffer is allocated. Zero means DefaultMaxPixels.
type CodecDecoder struct {
	MaxPixels int
}

func (d CodecDecoder) Decode(data []byte) (image.Image, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("reading image header: %w", err)
	}

	limit := d.MaxPixels
	if limit <= 0 {
		limit = DefaultMaxPixels
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("%s image has no dimensions", format)
	}
	if int64(cfg.Width)*int64(cfg.Height) > int64(limit) {
		return nil, fmt.Errorf("%s image is %dx%d, over the %d pixel limit", format, cfg.Width, cfg.Height, limit)
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}
	return img, nil
}

// CodecEncoder encodes with one fixed quality setting per codec.
type CodecEncoder struct{}

func (CodecEncoder) Encode(w io.Writer, img image.Image, codec valueobject.Codec) error {
	switch codec {
	case valueobject.CodecWebP:
		return webp.Encode(w, img, webp.Options{Quality: WebPQuality, Method: WebPMethod})
	case valueobject.CodecAVIF:
		return avif.Encode(w, img, avif.Options{Quality: AVIFQuality, QualityAlpha: AVIFQuality, Speed: AVIFSpeed})
	case valueobject.CodecJPEG:
		return imaging.Encode(w, img, imaging.JPEG, imaging.JPEGQuality(JPEGQuality))
	case valueobject.CodecPNG:
		return imaging.Encode(w, img, imaging.PNG, imaging.PNGCompressionLevel(png.BestCompression))
	default:
		return fmt.Errorf("unsupported codec %q", codec)
	}
}
