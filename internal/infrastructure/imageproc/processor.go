package imageproc

import (
	"bytes"
	"context"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	"golang.org/x/sync/errgroup"

	storageport "github.com/marcos-nsantos/asset-pipeline/internal/adapter/storage"
	"github.com/marcos-nsantos/asset-pipeline/internal/domain"
	"github.com/marcos-nsantos/asset-pipeline/internal/domain/valueobject"
)

var _ storageport.ImageProcessor = (*Processor)(nil)

type Processor struct {
	decoder     Decoder
	encoder     Encoder
	blurHasher  BlurHasher
	policy      []valueobject.SizeClass
	concurrency int
}

type Option func(*Processor)

func WithDecoder(d Decoder) Option {
	return func(p *Processor) { p.decoder = d }
}

func WithEncoder(e Encoder) Option {
	return func(p *Processor) { p.encoder = e }
}

func WithBlurHasher(h BlurHasher) Option {
	return func(p *Processor) { p.blurHasher = h }
}

func WithPolicy(policy []valueobject.SizeClass) Option {
	return func(p *Processor) { p.policy = policy }
}

func WithConcurrency(n int) Option {
	return func(p *Processor) {
		if n > 0 {
			p.concurrency = n
		}
	}
}

func NewProcessor(opts ...Option) *Processor {
	p := &Processor{
		decoder:     CodecDecoder{},
		encoder:     CodecEncoder{},
		blurHasher:  EncodeBlurHash,
		policy:      valueobject.DefaultSizePolicy,
		concurrency: 4,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// PolicyFromBounds builds a size policy from pixel bounds, largest first.
func PolicyFromBounds(bounds []int) []valueobject.SizeClass {
	policy := make([]valueobject.SizeClass, 0, len(bounds))
	for _, b := range bounds {
		policy = append(policy, valueobject.NewSizeClass(b))
	}
	return policy
}

// Process decodes input once and derives every artifact and summary from that
// single decoded image. Any failure discards the whole result.
func (p *Processor) Process(ctx context.Context, input []byte, codec valueobject.Codec) (*storageport.ProcessResult, error) {
	img, err := p.decoder.Decode(input)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrDecode, err)
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: image has no dimensions", domain.ErrDecode)
	}

	plan := valueobject.PlanDerivatives(width, height, p.policy)

	result := &storageport.ProcessResult{
		Derivatives: make([]storageport.Artifact, len(plan.Produce)),
		Skipped:     plan.Skipped,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)

	g.Go(func() error {
		data, err := p.encode(gctx, img, codec)
		if err != nil {
			return fmt.Errorf("original: %w", err)
		}
		result.Original = storageport.Artifact{
			Suffix: valueobject.OriginalSuffix,
			Width:  width,
			Height: height,
			Data:   data,
		}
		return nil
	})

	for i, planned := range plan.Produce {
		g.Go(func() error {
			resized := imaging.Resize(img, planned.Width, planned.Height, imaging.Lanczos)
			data, err := p.encode(gctx, resized, codec)
			if err != nil {
				return fmt.Errorf("%s: %w", planned.Class.Suffix, err)
			}
			result.Derivatives[i] = storageport.Artifact{
				Suffix: planned.Class.Suffix,
				Width:  resized.Bounds().Dx(),
				Height: resized.Bounds().Dy(),
				Data:   data,
			}
			return nil
		})
	}

	g.Go(func() error {
		hash, err := p.blurHasher(SamplePlaceholder(img))
		if err != nil {
			return fmt.Errorf("%w: placeholder: %w", domain.ErrEncode, err)
		}
		result.BlurHash = hash
		return nil
	})

	g.Go(func() error {
		result.AvgColor = AverageColor(img)
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return result, nil
}

func (p *Processor) encode(ctx context.Context, img image.Image, codec valueobject.Codec) ([]byte, error) {
	// A sibling already failed; the result will be discarded anyway.
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEncode, err)
	}

	var buf bytes.Buffer
	if err := p.encoder.Encode(&buf, img, codec); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrEncode, codec, err)
	}
	return buf.Bytes(), nil
}
