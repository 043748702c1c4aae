package cli

import (
	"context"
	"fmt"

	"exambank/internal/config"
	"exambank/internal/infra/memory"
	"exambank/internal/infra/mongo"
	"exambank/internal/infra/postgres"
	redisstore "exambank/internal/infra/redis"
	"exambank/internal/store"
	"github.com/redis/go-redis/v9"
)

// backendOpener returns a store.Opener for the configured driver. An empty
// configuration selects the in-memory backend.
func backendOpener(cfg config.Config) (store.Opener, error) {
	switch cfg.Store.Driver {
	case "", "memory":
		return func(context.Context) (store.Backend, error) {
			return memory.NewExamStore(), nil
		}, nil
	case "postgres":
		return func(ctx context.Context) (store.Backend, error) {
			if cfg.Postgres.URL == "" {
				return nil, fmt.Errorf("postgres url not configured")
			}
			return postgres.Connect(ctx, cfg.Postgres.URL)
		}, nil
	case "redis":
		return func(context.Context) (store.Backend, error) {
			if cfg.Redis.Addr == "" {
				return nil, fmt.Errorf("redis addr not configured")
			}
			client := redis.NewClient(&redis.Options{
				Addr:     cfg.Redis.Addr,
				Password: cfg.Redis.Password,
				DB:       cfg.Redis.DB,
			})
			return redisstore.NewExamStore(client, config.StringOr(cfg.Redis.Prefix, "exambank:")), nil
		}, nil
	case "mongo":
		return func(ctx context.Context) (store.Backend, error) {
			if cfg.Mongo.URI == "" {
				return nil, fmt.Errorf("mongo uri not configured")
			}
			return mongo.Connect(ctx, cfg.Mongo.URI,
				config.StringOr(cfg.Mongo.Database, "exambank"),
				config.StringOr(cfg.Mongo.Collection, "exams"))
		}, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}
