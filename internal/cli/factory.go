package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/canopy"
	"github.com/aretw0/canopy/internal/config"
	"github.com/aretw0/canopy/internal/logging"
	"github.com/aretw0/canopy/pkg/adapters/file"
	"github.com/aretw0/canopy/pkg/adapters/memory"
	"github.com/aretw0/canopy/pkg/adapters/redis"
	"github.com/aretw0/canopy/pkg/domain"
	"github.com/aretw0/canopy/pkg/persistence/middleware"
	"github.com/aretw0/canopy/pkg/ports"
)

// NewLogger configures the application logger for the configured level.
func NewLogger(cfg *config.Config) (*slog.Logger, error) {
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	return logging.New(level), nil
}

// NewEngine initializes an engine with standard CLI conventions.
func NewEngine(cfg *config.Config, logger *slog.Logger, opts ...canopy.Option) (*canopy.Engine, error) {
	engineOpts := []canopy.Option{
		canopy.WithLogger(logger),
		canopy.WithMaxConcurrency(cfg.Props.MaxConcurrency),
		canopy.WithLifecycleHooks(debugHooks(logger)),
	}
	engine, err := canopy.New(append(engineOpts, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("error initializing engine: %w", err)
	}
	return engine, nil
}

// NewEditingStore builds the configured editing data store, wrapped with context
// masking and encryption when configured. The returned closer releases its connections.
func NewEditingStore(ctx context.Context, cfg *config.Config) (ports.EditingDataStore, func() error, error) {
	store, closeStore, err := newBackend(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	var mws []middleware.Middleware
	if len(cfg.Editing.MaskContextKeys) > 0 {
		pii, err := middleware.NewPIIMiddleware(cfg.Editing.MaskContextKeys)
		if err != nil {
			_ = closeStore()
			return nil, nil, err
		}
		mws = append(mws, pii)
	}
	active, fallback, err := cfg.Editing.Keys()
	if err != nil {
		_ = closeStore()
		return nil, nil, err
	}
	if active != nil {
		enc, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: active, FallbackKeys: fallback})
		if err != nil {
			_ = closeStore()
			return nil, nil, err
		}
		mws = append(mws, enc)
	}
	return middleware.Chain(store, mws...), closeStore, nil
}

func newBackend(ctx context.Context, cfg *config.Config) (ports.EditingDataStore, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Editing.Store {
	case config.StoreMemory, "":
		return memory.NewStore(), noop, nil
	case config.StoreFile:
		return file.New(cfg.File.Dir, cfg.File.TTL), noop, nil
	case config.StoreRedis:
		opts := []redis.Option{redis.WithTTL(cfg.Redis.TTL)}
		if cfg.Redis.Prefix != "" {
			opts = append(opts, redis.WithPrefix(cfg.Redis.Prefix))
		}
		store := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, opts...)
		if err := store.Ping(ctx); err != nil {
			_ = store.Close()
			return nil, nil, fmt.Errorf("redis store unavailable at %s: %w", cfg.Redis.Addr, err)
		}
		return store, store.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown editing store %q", cfg.Editing.Store)
	}
}

func debugHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnLoaderCall: func(ctx context.Context, e *domain.LoaderEvent) {
			logger.Debug("Loader Call", "uid", e.UID, "component", e.ComponentName, "kind", e.Kind)
		},
		OnLoaderReturn: func(ctx context.Context, e *domain.LoaderEvent) {
			if e.IsError {
				logger.Debug("Loader Return (Error)", "uid", e.UID, "duration", e.Duration, "err", e.Error)
			} else {
				logger.Debug("Loader Return (Success)", "uid", e.UID, "duration", e.Duration)
			}
		},
		OnPersonalize: func(e *domain.PersonalizeEvent) {
			logger.Debug("Personalize", "uid", e.UID, "component", e.ComponentName, "segment", e.Segment, "outcome", e.Outcome)
		},
	}
}
