package reaper_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"

	"github.com/marcos-nsantos/asset-pipeline/internal/domain"
	"github.com/marcos-nsantos/asset-pipeline/internal/domain/entity"
	"github.com/marcos-nsantos/asset-pipeline/internal/infrastructure/session"
	"github.com/marcos-nsantos/asset-pipeline/internal/mocks"
	"github.com/marcos-nsantos/asset-pipeline/internal/usecase/reaper"
)

func expiredSession(key string) entity.UploadSession {
	return entity.UploadSession{
		ID:             uuid.New(),
		DestinationKey: key,
		Status:         entity.UploadStatusSigned,
		ExpiresAt:      time.Now().Add(-time.Hour),
	}
}

func TestService_Sweep(t *testing.T) {
	t.Run("deletes raw uploads of expired sessions", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		sessions := mocks.NewMockStore(ctrl)
		storage := mocks.NewMockProvider(ctrl)
		svc := reaper.NewService(sessions, storage, reaper.Options{Grace: 10 * time.Minute, BatchSize: 10}, zap.NewNop())

		claimed := []entity.UploadSession{expiredSession("incoming/a.jpg"), expiredSession("incoming/b.png")}
		sessions.EXPECT().ClaimExpired(gomock.Any(), gomock.Any(), 10).
			DoAndReturn(func(_ context.Context, before time.Time, _ int) ([]entity.UploadSession, error) {
				assert.WithinDuration(t, time.Now().Add(-10*time.Minute), before, 5*time.Second)
				return claimed, nil
			})
		storage.EXPECT().DeleteMany(gomock.Any(), []string{"incoming/a.jpg", "incoming/b.png"}).Return(nil)

		n, err := svc.Sweep(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 2, n)
	})

	t.Run("drains full batches", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		sessions := mocks.NewMockStore(ctrl)
		storage := mocks.NewMockProvider(ctrl)
		svc := reaper.NewService(sessions, storage, reaper.Options{BatchSize: 2}, zap.NewNop())

		gomock.InOrder(
			sessions.EXPECT().ClaimExpired(gomock.Any(), gomock.Any(), 2).
				Return([]entity.UploadSession{expiredSession("a"), expiredSession("b")}, nil),
			sessions.EXPECT().ClaimExpired(gomock.Any(), gomock.Any(), 2).
				Return([]entity.UploadSession{expiredSession("c")}, nil),
		)
		storage.EXPECT().DeleteMany(gomock.Any(), gomock.Any()).Return(nil).Times(2)

		n, err := svc.Sweep(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 3, n)
	})

	t.Run("does nothing when no session expired", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		sessions := mocks.NewMockStore(ctrl)
		storage := mocks.NewMockProvider(ctrl)
		svc := reaper.NewService(sessions, storage, reaper.Options{BatchSize: 10}, zap.NewNop())

		sessions.EXPECT().ClaimExpired(gomock.Any(), gomock.Any(), 10).Return(nil, nil)

		n, err := svc.Sweep(context.Background())

		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("requeues the batch when storage deletion fails", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		sessions := mocks.NewMockStore(ctrl)
		storage := mocks.NewMockProvider(ctrl)
		svc := reaper.NewService(sessions, storage, reaper.Options{Grace: time.Minute, BatchSize: 1}, zap.NewNop())

		claimed := []entity.UploadSession{expiredSession("a")}
		sessions.EXPECT().ClaimExpired(gomock.Any(), gomock.Any(), 1).Return(claimed, nil)
		storage.EXPECT().DeleteMany(gomock.Any(), []string{"a"}).Return(errors.New("bucket unreachable"))
		sessions.EXPECT().Requeue(gomock.Any(), gomock.Len(1), gomock.Any()).
			DoAndReturn(func(_ context.Context, got []entity.UploadSession, expiredAt time.Time) error {
				assert.Equal(t, claimed[0].ID, got[0].ID)
				assert.Equal(t, "a", got[0].DestinationKey)
				assert.WithinDuration(t, time.Now().Add(-time.Minute), expiredAt, 5*time.Second)
				return nil
			})

		n, err := svc.Sweep(context.Background())

		assert.Error(t, err)
		assert.Zero(t, n)
	})

	t.Run("reports both errors when requeue fails", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		sessions := mocks.NewMockStore(ctrl)
		storage := mocks.NewMockProvider(ctrl)
		svc := reaper.NewService(sessions, storage, reaper.Options{BatchSize: 10}, zap.NewNop())

		sessions.EXPECT().ClaimExpired(gomock.Any(), gomock.Any(), 10).
			Return([]entity.UploadSession{expiredSession("a")}, nil)
		storage.EXPECT().DeleteMany(gomock.Any(), gomock.Any()).Return(errors.New("bucket unreachable"))
		sessions.EXPECT().Requeue(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("redis down"))

		_, err := svc.Sweep(context.Background())

		require.Error(t, err)
		assert.Contains(t, err.Error(), "bucket unreachable")
		assert.Contains(t, err.Error(), "redis down")
	})

	t.Run("skips sessions without a destination", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		sessions := mocks.NewMockStore(ctrl)
		storage := mocks.NewMockProvider(ctrl)
		svc := reaper.NewService(sessions, storage, reaper.Options{BatchSize: 10}, zap.NewNop())

		sessions.EXPECT().ClaimExpired(gomock.Any(), gomock.Any(), 10).
			Return([]entity.UploadSession{expiredSession(""), expiredSession("b")}, nil)
		storage.EXPECT().DeleteMany(gomock.Any(), []string{"b"}).Return(nil)

		n, err := svc.Sweep(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 2, n)
	})

	t.Run("returns claim errors", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		sessions := mocks.NewMockStore(ctrl)
		storage := mocks.NewMockProvider(ctrl)
		svc := reaper.NewService(sessions, storage, reaper.Options{BatchSize: 10}, zap.NewNop())

		sessions.EXPECT().ClaimExpired(gomock.Any(), gomock.Any(), 10).Return(nil, errors.New("redis down"))

		_, err := svc.Sweep(context.Background())

		assert.Error(t, err)
	})
}

type flakyProvider struct {
	*mocks.MockProvider
	failures int
	deleted  [][]string
}

func (p *flakyProvider) DeleteMany(_ context.Context, keys []string) error {
	if p.failures > 0 {
		p.failures--
		return errors.New("bucket unreachable")
	}
	p.deleted = append(p.deleted, keys)
	return nil
}

func TestService_SweepRetriesWithMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := session.NewMemoryStore()
	sess := entity.NewUploadSession(entity.NewUploadSessionParams{
		ID:             uuid.New(),
		Filename:       "a.jpg",
		ContentType:    "image/jpeg",
		Size:           10,
		Kind:           "category",
		EntitySlug:     "phones",
		DestinationKey: "incoming/category/phones/a.jpg",
		TTL:            -time.Hour,
	})
	require.NoError(t, store.Save(ctx, sess))

	provider := &flakyProvider{MockProvider: mocks.NewMockProvider(gomock.NewController(t)), failures: 1}
	svc := reaper.NewService(store, provider, reaper.Options{BatchSize: 10}, zap.NewNop())

	n, err := svc.Sweep(ctx)
	require.Error(t, err)
	assert.Zero(t, n)
	assert.Empty(t, provider.deleted)

	_, err = store.Get(ctx, sess.ID)
	assert.ErrorIs(t, err, domain.ErrUploadSessionNotFound)

	n, err = svc.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, [][]string{{"incoming/category/phones/a.jpg"}}, provider.deleted)

	n, err = svc.Sweep(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}
