package app

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	_ "github.com/lib/pq"

	"github.com/SW2-receipt/SW-2-backend/internal/config"
	"github.com/SW2-receipt/SW-2-backend/internal/db"
	"github.com/SW2-receipt/SW-2-backend/internal/logger"
	"github.com/SW2-receipt/SW-2-backend/internal/user"
)

type Infra struct {
	Store   user.Store
	cleanup func() error
}

func setupInfra(ctx context.Context, cfg config.Config) (*Infra, error) {
	if cfg.StoreDriver == "memory" {
		logger.Warn("using in-memory user store; data is lost on restart", nil)
		return &Infra{
			Store:   user.NewMemoryStore(),
			cleanup: func() error { return nil },
		}, nil
	}

	sqlDB, err := sql.Open("postgres", cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("database unreachable: %w", err)
	}

	if err := db.RunUsersMigration(ctx, sqlDB); err != nil {
		return nil, fmt.Errorf("users migration failed: %w", err)
	}

	logger.Info("database ready", nil)

	var store user.Store = user.NewPostgresStore(sqlDB)

	if cfg.RedisAddr != "" {
		redisClient, err := newRedisClient(cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			return nil, fmt.Errorf("redis unreachable: %w", err)
		}
		store = user.NewCachedStore(store, redisClient)
		logger.Info("redis user cache ready", nil)
	}

	return &Infra{
		Store:   store,
		cleanup: sqlDB.Close,
	}, nil
}

func newRedisClient(addr, password string) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return client, nil
}
