// Package bootstrap connects the backing services a server or CLI needs.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"devconnect/internal/cache"
	"devconnect/internal/config"
	"devconnect/internal/database"
	"devconnect/internal/events"
	"devconnect/internal/middleware"
	"devconnect/internal/repository"
	"devconnect/internal/seed"

	"github.com/redis/go-redis/v9"
)

// Options control runtime initialization behavior.
type Options struct {
	// SeedDemo fills an empty store with demo accounts, profiles and posts.
	SeedDemo bool
}

// Runtime holds the connected backing services.
type Runtime struct {
	Store  *repository.Store
	Redis  *redis.Client
	Events events.Publisher
}

// OpenStore connects the document store selected by DB_DRIVER.
func OpenStore(ctx context.Context, cfg *config.Config) (*repository.Store, error) {
	if cfg.DBDriver == config.DriverMongo {
		client, db, err := database.ConnectMongo(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("mongo connection failed: %w", err)
		}
		return repository.NewMongoStore(client, db), nil
	}

	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}
	return repository.NewGormStore(db), nil
}

// InitRuntime connects the store, Redis and the event broker. Only the store is
// required; Redis and the broker degrade to disabled when unreachable.
func InitRuntime(ctx context.Context, cfg *config.Config, opts Options) (*Runtime, error) {
	store, err := OpenStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	rt := &Runtime{Store: store, Events: events.Noop{}}

	if cfg.RedisURL != "" {
		rt.Redis = cache.InitRedis(cfg.RedisURL)
	}

	publisher, err := events.NewAMQPPublisher(cfg.RabbitMQURI)
	if err != nil {
		middleware.Logger.Warn("event broker unavailable, domain events disabled", slog.String("error", err.Error()))
	} else {
		rt.Events = publisher
	}

	if opts.SeedDemo {
		if _, err := seed.Demo(ctx, store, seed.DefaultOptions()); err != nil {
			_ = rt.Close(ctx)
			return nil, fmt.Errorf("failed to seed demo data: %w", err)
		}
	}

	return rt, nil
}

// Close releases every connection the runtime opened.
func (rt *Runtime) Close(ctx context.Context) error {
	var errs []error
	if rt.Events != nil {
		errs = append(errs, rt.Events.Close())
	}
	if rt.Redis != nil {
		errs = append(errs, rt.Redis.Close())
	}
	if rt.Store != nil {
		errs = append(errs, rt.Store.Close(ctx))
	}
	return errors.Join(errs...)
}
