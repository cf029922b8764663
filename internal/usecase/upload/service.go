package upload

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/marcos-nsantos/asset-pipeline/internal/adapter/repository"
	"github.com/marcos-nsantos/asset-pipeline/internal/adapter/session"
	"github.com/marcos-nsantos/asset-pipeline/internal/adapter/storage"
	"github.com/marcos-nsantos/asset-pipeline/internal/domain"
	"github.com/marcos-nsantos/asset-pipeline/internal/domain/entity"
	"github.com/marcos-nsantos/asset-pipeline/internal/domain/valueobject"
	"github.com/marcos-nsantos/asset-pipeline/internal/pkg/pagination"
)

type Options struct {
	SessionTTL        time.Duration
	PresignTTL        time.Duration
	Kinds             []string
	DefaultFormat     valueobject.Codec
	UploadConcurrency int
	CleanupTimeout    time.Duration
}

type Service struct {
	assets    repository.AssetRepository
	sessions  session.Store
	storage   storage.Provider
	processor storage.ImageProcessor
	opts      Options
	logger    *zap.Logger
}

func NewService(
	assets repository.AssetRepository,
	sessions session.Store,
	provider storage.Provider,
	processor storage.ImageProcessor,
	opts Options,
	logger *zap.Logger,
) *Service {
	if opts.UploadConcurrency < 1 {
		opts.UploadConcurrency = 1
	}
	if opts.CleanupTimeout <= 0 {
		opts.CleanupTimeout = 30 * time.Second
	}
	if opts.DefaultFormat == "" {
		opts.DefaultFormat = valueobject.CodecWebP
	}
	return &Service{
		assets:    assets,
		sessions:  sessions,
		storage:   provider,
		processor: processor,
		opts:      opts,
		logger:    logger,
	}
}

type SignInput struct {
	Filename    string
	ContentType string
	Size        int64
	Kind        string
	EntitySlug  string
}

type SignResult struct {
	UploadID  uuid.UUID
	Target    *storage.UploadTarget
	ExpiresAt time.Time
}

// Sign validates what the client declares and hands back a target it can PUT
// the bytes to. Nothing is written to storage here.
func (s *Service) Sign(ctx context.Context, input SignInput) (*SignResult, error) {
	decl := valueobject.NewUploadDeclaration(input.Filename, input.ContentType, input.Size)
	if err := decl.Validate(); err != nil {
		return nil, err
	}
	if err := valueobject.ValidateScope(input.Kind, input.EntitySlug, s.opts.Kinds); err != nil {
		return nil, err
	}

	id := uuid.New()
	key := fmt.Sprintf("incoming/%s/%s/%s.%s", input.Kind, input.EntitySlug, id, decl.Extension())

	target, err := s.storage.PresignPut(ctx, key, input.ContentType, input.Size, s.opts.PresignTTL)
	if err != nil {
		return nil, fmt.Errorf("%w: presigning upload: %w", domain.ErrStorage, err)
	}

	sess := entity.NewUploadSession(entity.NewUploadSessionParams{
		ID:             id,
		Filename:       input.Filename,
		ContentType:    input.ContentType,
		Size:           input.Size,
		Kind:           input.Kind,
		EntitySlug:     input.EntitySlug,
		DestinationKey: key,
		TTL:            s.opts.SessionTTL,
	})
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("saving upload session: %w", err)
	}

	s.logger.Info("upload signed",
		zap.String("upload_id", id.String()),
		zap.String("key", key),
		zap.String("content_type", input.ContentType),
		zap.Int64("size", input.Size),
	)

	return &SignResult{
		UploadID:  id,
		Target:    target,
		ExpiresAt: sess.ExpiresAt,
	}, nil
}

type CompleteInput struct {
	UploadID uuid.UUID
	Alt      string
	Format   string
}

type CompleteResult struct {
	Asset    *entity.ImageAsset
	Warnings []string
}

// Complete turns a received upload into an asset. The session is consumed
// before any artifact is written, so at most one manifest exists per upload.
func (s *Service) Complete(ctx context.Context, input CompleteInput) (*CompleteResult, error) {
	codec := s.opts.DefaultFormat
	if input.Format != "" {
		c, err := valueobject.ParseCodec(input.Format)
		if err != nil {
			return nil, domain.NewValidationError("format", err.Error())
		}
		codec = c
	}

	sess, err := s.sessions.Get(ctx, input.UploadID)
	if err != nil {
		return nil, err
	}

	raw, err := s.storage.Download(ctx, sess.DestinationKey)
	if err != nil {
		if errors.Is(err, domain.ErrObjectNotFound) {
			return nil, fmt.Errorf("%w: nothing stored at %q", domain.ErrUploadNotReceived, sess.DestinationKey)
		}
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			return nil, verr
		}
		return nil, fmt.Errorf("%w: fetching upload: %w", domain.ErrStorage, err)
	}
	sess.Transition(entity.UploadStatusUploaded)

	decl := valueobject.NewUploadDeclaration(sess.Filename, sess.ContentType, int64(len(raw)))
	if err := decl.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.sessions.Consume(ctx, sess.ID); err != nil {
		return nil, err
	}
	sess.Transition(entity.UploadStatusProcessing)

	asset, skipped, err := s.materialize(ctx, sess, raw, codec, input.Alt)
	if err != nil {
		sess.Transition(entity.UploadStatusFailed)
		s.logger.Error("upload failed",
			zap.String("upload_id", sess.ID.String()),
			zap.String("status", string(sess.Status)),
			zap.Error(err),
		)
		return nil, err
	}
	sess.Transition(entity.UploadStatusCompleted)

	if err := s.storage.Delete(ctx, sess.DestinationKey); err != nil {
		s.logger.Warn("failed to delete raw upload",
			zap.String("upload_id", sess.ID.String()),
			zap.String("key", sess.DestinationKey),
			zap.Error(err),
		)
	}

	s.logger.Info("upload completed",
		zap.String("upload_id", sess.ID.String()),
		zap.String("asset_id", asset.ID.String()),
		zap.Int("derivatives", len(asset.Derivatives)),
	)

	return &CompleteResult{
		Asset:    asset,
		Warnings: skippedWarnings(skipped, asset.Width, asset.Height),
	}, nil
}

// materialize processes the raw bytes, stores every artifact and commits the
// manifest. On any error it removes what it wrote plus the raw upload.
func (s *Service) materialize(
	ctx context.Context,
	sess *entity.UploadSession,
	raw []byte,
	codec valueobject.Codec,
	alt string,
) (*entity.ImageAsset, []valueobject.SizeClass, error) {
	result, err := s.processor.Process(ctx, raw, codec)
	if err != nil {
		s.cleanup(ctx, sess, []string{sess.DestinationKey})
		return nil, nil, fmt.Errorf("processing image: %w", err)
	}

	base := fmt.Sprintf("assets/%s/%s/%s", sess.Kind, sess.EntitySlug, uuid.NewString())
	artifacts := append([]storage.Artifact{result.Original}, result.Derivatives...)
	derivatives := make([]entity.Derivative, len(artifacts))
	for i, a := range artifacts {
		key := base + "." + codec.Extension()
		if a.Suffix != valueobject.OriginalSuffix {
			key = fmt.Sprintf("%s__%s.%s", base, a.Suffix, codec.Extension())
		}
		derivatives[i] = entity.Derivative{
			Key:    key,
			Width:  a.Width,
			Height: a.Height,
			Size:   int64(len(a.Data)),
			Suffix: a.Suffix,
		}
	}

	written := make([]string, 0, len(derivatives)+1)
	for _, d := range derivatives {
		written = append(written, d.Key)
	}
	written = append(written, sess.DestinationKey)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.UploadConcurrency)
	for i := range artifacts {
		g.Go(func() error {
			url, err := s.storage.Upload(gctx, derivatives[i].Key, artifacts[i].Data, codec.MimeType())
			if err != nil {
				return fmt.Errorf("%w: uploading %q: %w", domain.ErrStorage, derivatives[i].Key, err)
			}
			derivatives[i].URL = url
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.cleanup(ctx, sess, written)
		return nil, nil, err
	}

	asset := entity.NewImageAsset(entity.NewImageAssetParams{
		Bucket:      s.storage.Bucket(),
		MimeType:    sess.ContentType,
		Format:      codec,
		BlurHash:    result.BlurHash,
		AvgColor:    result.AvgColor,
		Alt:         alt,
		Kind:        sess.Kind,
		EntitySlug:  sess.EntitySlug,
		Derivatives: derivatives,
	})

	if err := s.assets.Create(ctx, asset); err != nil {
		s.cleanup(ctx, sess, written)
		return nil, nil, fmt.Errorf("saving asset: %w", err)
	}

	return asset, result.Skipped, nil
}

// cleanup runs detached from the request so a cancelled client still gets its
// partial artifacts removed.
func (s *Service) cleanup(ctx context.Context, sess *entity.UploadSession, keys []string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.opts.CleanupTimeout)
	defer cancel()

	if err := s.storage.DeleteMany(ctx, keys); err != nil {
		s.logger.Error("failed to clean up upload artifacts",
			zap.String("upload_id", sess.ID.String()),
			zap.Strings("keys", keys),
			zap.Error(err),
		)
	}
}

func skippedWarnings(skipped []valueobject.SizeClass, width, height int) []string {
	if len(skipped) == 0 {
		return nil
	}
	suffixes := make([]string, len(skipped))
	for i, c := range skipped {
		suffixes[i] = c.Suffix
	}
	return []string{fmt.Sprintf("skipped sizes %s: source %dx%d is smaller than the bound",
		strings.Join(suffixes, ", "), width, height)}
}

// Cancel abandons a signed upload and drops whatever the client already PUT.
func (s *Service) Cancel(ctx context.Context, uploadID uuid.UUID) error {
	sess, err := s.sessions.Consume(ctx, uploadID)
	if err != nil {
		return err
	}
	sess.Transition(entity.UploadStatusAbandoned)

	if err := s.storage.Delete(ctx, sess.DestinationKey); err != nil {
		return fmt.Errorf("%w: deleting raw upload: %w", domain.ErrStorage, err)
	}

	s.logger.Info("upload cancelled",
		zap.String("upload_id", uploadID.String()),
		zap.String("status", string(sess.Status)),
	)
	return nil
}

func (s *Service) Get(ctx context.Context, assetID uuid.UUID) (*entity.ImageAsset, error) {
	return s.assets.GetByID(ctx, assetID)
}

type ListInput struct {
	Kind       string
	EntitySlug string
	Page       int
	PerPage    int
}

func (s *Service) List(ctx context.Context, input ListInput) ([]entity.ImageAsset, *pagination.Info, error) {
	params := repository.AssetListParams{
		Pagination: pagination.NewParams(input.Page, input.PerPage),
		Kind:       input.Kind,
		EntitySlug: input.EntitySlug,
	}

	assets, pageInfo, err := s.assets.List(ctx, params)
	if err != nil {
		return nil, nil, fmt.Errorf("listing assets: %w", err)
	}
	return assets, pageInfo, nil
}

// Delete removes the stored artifacts first; the row survives a storage error
// so the call can be retried.
func (s *Service) Delete(ctx context.Context, assetID uuid.UUID) error {
	asset, err := s.assets.GetByID(ctx, assetID)
	if err != nil {
		return err
	}

	if err := s.storage.DeleteMany(ctx, asset.Keys()); err != nil {
		return fmt.Errorf("%w: deleting artifacts: %w", domain.ErrStorage, err)
	}

	if err := s.assets.Delete(ctx, assetID); err != nil {
		return fmt.Errorf("deleting asset record: %w", err)
	}

	s.logger.Info("asset deleted", zap.String("asset_id", assetID.String()))
	return nil
}
