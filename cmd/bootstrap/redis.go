package bootstrap

import (
	"context"
	"log/slog"
	"time"

	"study-room-booking/internal/infra/idempotency"
	"study-room-booking/internal/pkg/config"
	"study-room-booking/internal/usecase/commands"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

var RedisModule = fx.Module("redis",
	fx.Provide(
		NewIdempotencyStore,
	),
)

// NewIdempotencyStore falls back to a no-op store when REDIS_ADDR is unset.
func NewIdempotencyStore(lc fx.Lifecycle, cfg config.Config, logger *slog.Logger) commands.IdempotencyStore {
	if cfg.Redis.Addr == "" {
		logger.Info("REDIS_ADDR が未設定のため冪等キーは無効です")
		return idempotency.NoopStore{}
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Redis.Addr,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			// unreachable Redis only disables replay protection
			if err := rdb.Ping(ctx).Err(); err != nil {
				logger.Warn("Redis に接続できません", "addr", cfg.Redis.Addr, "error", err)
			}
			return nil
		},
		OnStop: func(_ context.Context) error {
			return rdb.Close()
		},
	})

	return idempotency.NewRedisStore(rdb, cfg.Redis.IdempotencyTTL)
}
