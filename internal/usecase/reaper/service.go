package reaper

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/marcos-nsantos/asset-pipeline/internal/adapter/session"
	"github.com/marcos-nsantos/asset-pipeline/internal/adapter/storage"
	"github.com/marcos-nsantos/asset-pipeline/internal/domain/entity"
)

type Options struct {
	Grace     time.Duration
	BatchSize int
}

// Service reclaims raw uploads whose session expired without being completed
// or cancelled.
type Service struct {
	sessions session.Store
	storage  storage.Provider
	opts     Options
	logger   *zap.Logger
	now      func() time.Time
}

func NewService(sessions session.Store, provider storage.Provider, opts Options, logger *zap.Logger) *Service {
	if opts.BatchSize < 1 {
		opts.BatchSize = 100
	}
	return &Service{
		sessions: sessions,
		storage:  provider,
		opts:     opts,
		logger:   logger,
		now:      time.Now,
	}
}

// Sweep claims expired sessions batch by batch and deletes their raw uploads.
// It returns how many sessions were abandoned. A batch whose deletion fails is
// put back into the expiry index and the sweep stops, so the next run retries
// the same keys.
func (s *Service) Sweep(ctx context.Context) (int, error) {
	before := s.now().Add(-s.opts.Grace)
	total := 0

	for {
		claimed, err := s.sessions.ClaimExpired(ctx, before, s.opts.BatchSize)
		if err != nil {
			return total, fmt.Errorf("claiming expired sessions: %w", err)
		}
		if len(claimed) == 0 {
			return total, nil
		}

		keys := make([]string, 0, len(claimed))
		for i := range claimed {
			claimed[i].Transition(entity.UploadStatusAbandoned)
			if claimed[i].DestinationKey != "" {
				keys = append(keys, claimed[i].DestinationKey)
			}
		}

		if err := s.storage.DeleteMany(ctx, keys); err != nil {
			s.logger.Error("failed to delete abandoned uploads",
				zap.Strings("keys", keys),
				zap.Error(err),
			)
			if rerr := s.sessions.Requeue(ctx, claimed, before); rerr != nil {
				s.logger.Error("failed to requeue abandoned uploads",
					zap.Strings("keys", keys),
					zap.Error(rerr),
				)
				return total, fmt.Errorf("requeueing after delete failure: %w", errors.Join(err, rerr))
			}
			return total, fmt.Errorf("deleting abandoned uploads: %w", err)
		}

		for _, sess := range claimed {
			s.logger.Info("upload abandoned",
				zap.String("upload_id", sess.ID.String()),
				zap.String("key", sess.DestinationKey),
				zap.Time("expired_at", sess.ExpiresAt),
				zap.String("status", string(sess.Status)),
			)
		}
		total += len(claimed)

		if len(claimed) < s.opts.BatchSize {
			return total, nil
		}
	}
}
