package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	sessionport "github.com/marcos-nsantos/asset-pipeline/internal/adapter/session"
	"github.com/marcos-nsantos/asset-pipeline/internal/domain"
	"github.com/marcos-nsantos/asset-pipeline/internal/domain/entity"
)

const (
	sessionKeyPrefix = "upload_session:"
	expiryIndexKey   = "upload_sessions:expiry"
	destIndexKey     = "upload_sessions:dest"
)

var _ sessionport.Store = (*RedisStore)(nil)

// RedisStore keeps each session under its own key with a TTL. A sorted set of
// expiry times and a hash of destination keys outlive the TTL so abandoned
// uploads can still be found and reclaimed.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func sessionKey(id uuid.UUID) string {
	return sessionKeyPrefix + id.String()
}

func (s *RedisStore) Save(ctx context.Context, sess *entity.UploadSession) error {
	payload, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}

	ttl := time.Until(sess.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("session %s already expired", sess.ID)
	}

	id := sess.ID.String()
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, sessionKey(sess.ID), payload, ttl)
	pipe.ZAdd(ctx, expiryIndexKey, redis.Z{
		Score:  float64(sess.ExpiresAt.UnixMilli()),
		Member: id,
	})
	pipe.HSet(ctx, destIndexKey, id, sess.DestinationKey)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, id uuid.UUID) (*entity.UploadSession, error) {
	payload, err := s.client.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrUploadSessionNotFound
		}
		return nil, fmt.Errorf("reading session: %w", err)
	}
	return decodeSession(payload)
}

func (s *RedisStore) Consume(ctx context.Context, id uuid.UUID) (*entity.UploadSession, error) {
	payload, err := s.client.GetDel(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrUploadSessionNotFound
		}
		return nil, fmt.Errorf("consuming session: %w", err)
	}

	pipe := s.client.Pipeline()
	pipe.ZRem(ctx, expiryIndexKey, id.String())
	pipe.HDel(ctx, destIndexKey, id.String())
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("clearing session index: %w", err)
	}

	return decodeSession(payload)
}

func (s *RedisStore) ClaimExpired(ctx context.Context, before time.Time, limit int) ([]entity.UploadSession, error) {
	ids, err := s.client.ZRangeByScore(ctx, expiryIndexKey, &redis.ZRangeBy{
		Min:   "-inf",
		Max:   strconv.FormatInt(before.UnixMilli(), 10),
		Count: int64(limit),
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("listing expired sessions: %w", err)
	}

	claimed := make([]entity.UploadSession, 0, len(ids))
	for _, raw := range ids {
		// Another replica may have claimed it in the meantime.
		removed, err := s.client.ZRem(ctx, expiryIndexKey, raw).Result()
		if err != nil {
			return claimed, fmt.Errorf("claiming session %s: %w", raw, err)
		}
		if removed == 0 {
			continue
		}

		dest, err := s.client.HGet(ctx, destIndexKey, raw).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return claimed, fmt.Errorf("reading destination of %s: %w", raw, err)
		}

		id, err := uuid.Parse(raw)
		if err != nil {
			continue
		}

		pipe := s.client.Pipeline()
		pipe.HDel(ctx, destIndexKey, raw)
		pipe.Del(ctx, sessionKey(id))
		if _, err := pipe.Exec(ctx); err != nil {
			return claimed, fmt.Errorf("removing session %s: %w", raw, err)
		}

		// Nothing to reclaim without a destination.
		if dest == "" {
			continue
		}

		claimed = append(claimed, entity.UploadSession{
			ID:             id,
			DestinationKey: dest,
			Status:         entity.UploadStatusAbandoned,
		})
	}

	return claimed, nil
}

func (s *RedisStore) Requeue(ctx context.Context, sessions []entity.UploadSession, expiredAt time.Time) error {
	if len(sessions) == 0 {
		return nil
	}

	pipe := s.client.TxPipeline()
	for _, sess := range sessions {
		id := sess.ID.String()
		pipe.ZAdd(ctx, expiryIndexKey, redis.Z{
			Score:  float64(expiredAt.UnixMilli()),
			Member: id,
		})
		pipe.HSet(ctx, destIndexKey, id, sess.DestinationKey)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("requeueing sessions: %w", err)
	}
	return nil
}

func decodeSession(payload []byte) (*entity.UploadSession, error) {
	var sess entity.UploadSession
	if err := json.Unmarshal(payload, &sess); err != nil {
		return nil, fmt.Errorf("decoding session: %w", err)
	}
	return &sess, nil
}
