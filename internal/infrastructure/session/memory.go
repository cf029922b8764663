package session

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	sessionport "github.com/marcos-nsantos/asset-pipeline/internal/adapter/session"
	"github.com/marcos-nsantos/asset-pipeline/internal/domain"
	"github.com/marcos-nsantos/asset-pipeline/internal/domain/entity"
)

var _ sessionport.Store = (*MemoryStore)(nil)

// MemoryStore is a single-process store for development and tests.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]entity.UploadSession
	now      func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[uuid.UUID]entity.UploadSession),
		now:      time.Now,
	}
}

func (s *MemoryStore) Save(_ context.Context, sess *entity.UploadSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = *sess
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id uuid.UUID) (*entity.UploadSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok || sess.IsExpired(s.now()) {
		return nil, domain.ErrUploadSessionNotFound
	}
	return &sess, nil
}

func (s *MemoryStore) Consume(_ context.Context, id uuid.UUID) (*entity.UploadSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok || sess.IsExpired(s.now()) {
		return nil, domain.ErrUploadSessionNotFound
	}
	delete(s.sessions, id)
	return &sess, nil
}

func (s *MemoryStore) ClaimExpired(_ context.Context, before time.Time, limit int) ([]entity.UploadSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var expired []entity.UploadSession
	for _, sess := range s.sessions {
		if sess.ExpiresAt.Before(before) {
			expired = append(expired, sess)
		}
	}

	sort.Slice(expired, func(i, j int) bool {
		return expired[i].ExpiresAt.Before(expired[j].ExpiresAt)
	})
	if limit > 0 && len(expired) > limit {
		expired = expired[:limit]
	}

	for i := range expired {
		delete(s.sessions, expired[i].ID)
		expired[i].Status = entity.UploadStatusAbandoned
	}
	return expired, nil
}

func (s *MemoryStore) Requeue(_ context.Context, sessions []entity.UploadSession, expiredAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, sess := range sessions {
		sess.ExpiresAt = expiredAt
		s.sessions[sess.ID] = sess
	}
	return nil
}
