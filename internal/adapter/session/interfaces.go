package session

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/marcos-nsantos/asset-pipeline/internal/domain/entity"
)

//go:generate mockgen -source=interfaces.go -destination=../../mocks/session_mocks.go -package=mocks

// Store holds upload sessions between sign and complete.
type Store interface {
	Save(ctx context.Context, s *entity.UploadSession) error
	// Get returns domain.ErrUploadSessionNotFound for unknown or expired ids.
	Get(ctx context.Context, id uuid.UUID) (*entity.UploadSession, error)
	// Consume removes the session and returns it. Only one caller can consume a
	// given session; every other caller gets domain.ErrUploadSessionNotFound.
	Consume(ctx context.Context, id uuid.UUID) (*entity.UploadSession, error)
	// ClaimExpired removes and returns up to limit sessions that expired before
	// the given time.
	ClaimExpired(ctx context.Context, before time.Time, limit int) ([]entity.UploadSession, error)
	// Requeue returns claimed sessions to the expiry index as expired at the
	// given time, so a later ClaimExpired hands them out again. They stay
	// invisible to Get and Consume.
	Requeue(ctx context.Context, sessions []entity.UploadSession, expiredAt time.Time) error
}
