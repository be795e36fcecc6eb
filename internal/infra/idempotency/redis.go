package idempotency

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"study-room-booking/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisStore claims keys with SETNX. A key holds "processing|<fingerprint>"
// while the create runs and "<reservation id>|<fingerprint>" afterwards.
type RedisStore struct {
	rdb redis.UniversalClient
	ttl time.Duration
}

func NewRedisStore(rdb redis.UniversalClient, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func (s *RedisStore) Begin(ctx context.Context, key, fingerprint string) (uuid.UUID, error) {
	k := fmt.Sprintf(KeyReservationCreate, key)

	claimed, err := s.rdb.SetNX(ctx, k, entry(processingMarker, fingerprint), s.ttl).Result()
	if err != nil {
		return uuid.Nil, errs.Wrap(err, "claim idempotency key")
	}
	if claimed {
		return uuid.Nil, nil
	}

	v, err := s.rdb.Get(ctx, k).Result()
	switch {
	case errors.Is(err, redis.Nil):
		// expired between SETNX and GET; try once more
		return s.retryClaim(ctx, k, fingerprint)
	case err != nil:
		return uuid.Nil, errs.Wrap(err, "read idempotency key")
	}

	state, stored, ok := strings.Cut(v, entrySeparator)
	if !ok {
		return uuid.Nil, errs.New("corrupt idempotency value for " + k)
	}
	if stored != fingerprint {
		return uuid.Nil, errs.ErrIdempotencyKeyMismatch
	}
	if state == processingMarker {
		return uuid.Nil, errs.ErrIdempotencyInProgress
	}

	id, err := uuid.Parse(state)
	if err != nil {
		return uuid.Nil, errs.Wrapf(err, "corrupt idempotency value for %s", k)
	}
	return id, nil
}

func (s *RedisStore) retryClaim(ctx context.Context, k, fingerprint string) (uuid.UUID, error) {
	claimed, err := s.rdb.SetNX(ctx, k, entry(processingMarker, fingerprint), s.ttl).Result()
	if err != nil {
		return uuid.Nil, errs.Wrap(err, "claim idempotency key")
	}
	if !claimed {
		return uuid.Nil, errs.ErrIdempotencyInProgress
	}
	return uuid.Nil, nil
}

func (s *RedisStore) Complete(ctx context.Context, key, fingerprint string, reservationID uuid.UUID) error {
	k := fmt.Sprintf(KeyReservationCreate, key)
	return errs.Wrap(s.rdb.Set(ctx, k, entry(reservationID.String(), fingerprint), s.ttl).Err(), "record idempotency result")
}

func (s *RedisStore) Release(ctx context.Context, key string) error {
	k := fmt.Sprintf(KeyReservationCreate, key)
	return errs.Wrap(s.rdb.Del(ctx, k).Err(), "release idempotency key")
}

func entry(state, fingerprint string) string {
	return state + entrySeparator + fingerprint
}
