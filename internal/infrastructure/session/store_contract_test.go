package session_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sessionport "github.com/marcos-nsantos/asset-pipeline/internal/adapter/session"
	"github.com/marcos-nsantos/asset-pipeline/internal/domain"
	"github.com/marcos-nsantos/asset-pipeline/internal/domain/entity"
)

func newTestSession(ttl time.Duration) *entity.UploadSession {
	id := uuid.New()
	return entity.NewUploadSession(entity.NewUploadSessionParams{
		ID:             id,
		Filename:       "photo.jpg",
		ContentType:    "image/jpeg",
		Size:           1024,
		Kind:           "category",
		EntitySlug:     "phones",
		DestinationKey: "incoming/category/phones/" + id.String() + ".jpg",
		TTL:            ttl,
	})
}

func runStoreContract(t *testing.T, newStore func(t *testing.T) sessionport.Store) {
	ctx := context.Background()

	t.Run("get returns what was saved", func(t *testing.T) {
		store := newStore(t)
		sess := newTestSession(time.Minute)
		require.NoError(t, store.Save(ctx, sess))

		got, err := store.Get(ctx, sess.ID)

		require.NoError(t, err)
		assert.Equal(t, sess.ID, got.ID)
		assert.Equal(t, sess.DestinationKey, got.DestinationKey)
		assert.Equal(t, entity.UploadStatusSigned, got.Status)
		assert.Equal(t, int64(1024), got.Size)
	})

	t.Run("unknown id is not found", func(t *testing.T) {
		store := newStore(t)

		_, err := store.Get(ctx, uuid.New())

		assert.ErrorIs(t, err, domain.ErrUploadSessionNotFound)
	})

	t.Run("consume succeeds exactly once", func(t *testing.T) {
		store := newStore(t)
		sess := newTestSession(time.Minute)
		require.NoError(t, store.Save(ctx, sess))

		got, err := store.Consume(ctx, sess.ID)
		require.NoError(t, err)
		assert.Equal(t, sess.ID, got.ID)

		_, err = store.Consume(ctx, sess.ID)
		assert.ErrorIs(t, err, domain.ErrUploadSessionNotFound)
		_, err = store.Get(ctx, sess.ID)
		assert.ErrorIs(t, err, domain.ErrUploadSessionNotFound)
	})

	t.Run("concurrent consumers get one winner", func(t *testing.T) {
		store := newStore(t)
		sess := newTestSession(time.Minute)
		require.NoError(t, store.Save(ctx, sess))

		var wins atomic.Int32
		var wg sync.WaitGroup
		for range 8 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := store.Consume(ctx, sess.ID); err == nil {
					wins.Add(1)
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, int32(1), wins.Load())
	})

	t.Run("claim expired returns destinations once", func(t *testing.T) {
		store := newStore(t)
		first := newTestSession(time.Minute)
		second := newTestSession(2 * time.Minute)
		later := newTestSession(time.Hour)
		for _, s := range []*entity.UploadSession{first, second, later} {
			require.NoError(t, store.Save(ctx, s))
		}

		claimed, err := store.ClaimExpired(ctx, time.Now().Add(10*time.Minute), 10)
		require.NoError(t, err)

		dests := make([]string, 0, len(claimed))
		for _, c := range claimed {
			assert.Equal(t, entity.UploadStatusAbandoned, c.Status)
			dests = append(dests, c.DestinationKey)
		}
		assert.ElementsMatch(t, []string{first.DestinationKey, second.DestinationKey}, dests)

		again, err := store.ClaimExpired(ctx, time.Now().Add(10*time.Minute), 10)
		require.NoError(t, err)
		assert.Empty(t, again)

		_, err = store.Get(ctx, first.ID)
		assert.ErrorIs(t, err, domain.ErrUploadSessionNotFound)
		_, err = store.Get(ctx, later.ID)
		assert.NoError(t, err)
	})

	t.Run("claim respects the limit", func(t *testing.T) {
		store := newStore(t)
		for range 3 {
			require.NoError(t, store.Save(ctx, newTestSession(time.Minute)))
		}

		claimed, err := store.ClaimExpired(ctx, time.Now().Add(time.Hour), 2)

		require.NoError(t, err)
		assert.Len(t, claimed, 2)
	})

	t.Run("consumed sessions are never claimed", func(t *testing.T) {
		store := newStore(t)
		sess := newTestSession(time.Minute)
		require.NoError(t, store.Save(ctx, sess))
		_, err := store.Consume(ctx, sess.ID)
		require.NoError(t, err)

		claimed, err := store.ClaimExpired(ctx, time.Now().Add(time.Hour), 10)

		require.NoError(t, err)
		assert.Empty(t, claimed)
	})

	t.Run("requeued sessions are claimed again but stay unreadable", func(t *testing.T) {
		store := newStore(t)
		sess := newTestSession(time.Minute)
		require.NoError(t, store.Save(ctx, sess))

		claimed, err := store.ClaimExpired(ctx, time.Now().Add(10*time.Minute), 10)
		require.NoError(t, err)
		require.Len(t, claimed, 1)

		require.NoError(t, store.Requeue(ctx, claimed, time.Now()))

		_, err = store.Get(ctx, sess.ID)
		assert.ErrorIs(t, err, domain.ErrUploadSessionNotFound)
		_, err = store.Consume(ctx, sess.ID)
		assert.ErrorIs(t, err, domain.ErrUploadSessionNotFound)

		again, err := store.ClaimExpired(ctx, time.Now().Add(10*time.Minute), 10)
		require.NoError(t, err)
		require.Len(t, again, 1)
		assert.Equal(t, sess.ID, again[0].ID)
		assert.Equal(t, sess.DestinationKey, again[0].DestinationKey)
	})

	t.Run("requeue of nothing is a no-op", func(t *testing.T) {
		store := newStore(t)

		assert.NoError(t, store.Requeue(ctx, nil, time.Now()))
	})
}
