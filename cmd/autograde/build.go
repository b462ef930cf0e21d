package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/autograde"
	"github.com/aretw0/autograde/internal/config"
	"github.com/aretw0/autograde/pkg/adapters/file"
	"github.com/aretw0/autograde/pkg/adapters/memory"
	"github.com/aretw0/autograde/pkg/adapters/process"
	"github.com/aretw0/autograde/pkg/adapters/redis"
	"github.com/aretw0/autograde/pkg/adapters/sqlite"
	"github.com/aretw0/autograde/pkg/feedback"
	"github.com/aretw0/autograde/pkg/hooks"
	"github.com/aretw0/autograde/pkg/observability"
	"github.com/aretw0/autograde/pkg/persistence/middleware"
	"github.com/aretw0/autograde/pkg/ports"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// backend bundles the store with what must be released on exit.
type backend struct {
	store  ports.ProgressStore
	locker ports.DistributedLocker
	close  func() error
}

func openBackend(cfg *config.Config) (*backend, error) {
	be, err := openStore(cfg)
	if err != nil {
		return nil, err
	}
	if cfg.StoreKey == "" {
		return be, nil
	}

	keys, err := middleware.ParseKeys(cfg.StoreKey, cfg.StoreFallbackKeys)
	if err != nil {
		_ = be.close()
		return nil, err
	}
	encrypt, err := middleware.NewEncryptionMiddleware(keys)
	if err != nil {
		_ = be.close()
		return nil, err
	}
	be.store = middleware.Chain(be.store, encrypt)
	return be, nil
}

func openStore(cfg *config.Config) (*backend, error) {
	switch cfg.Store {
	case config.StoreFile:
		return &backend{store: file.New(cfg.StorePath), close: noClose}, nil
	case config.StoreRedis:
		var opts []redis.Option
		if cfg.SessionTTL > 0 {
			opts = append(opts, redis.WithTTL(cfg.SessionTTL))
		}
		s := redis.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, opts...)
		return &backend{
			store:  s,
			locker: redis.NewLocker(s.Client(), redis.DefaultPrefix),
			close:  s.Close,
		}, nil
	case config.StoreSQLite:
		s, err := sqlite.New(cfg.StorePath)
		if err != nil {
			return nil, err
		}
		return &backend{store: s, close: s.Close}, nil
	default:
		return &backend{store: memory.NewStore(), close: noClose}, nil
	}
}

func noClose() error { return nil }

// newRenderer picks a colour profile for out. Colour is dropped when out is
// not a terminal or when disabled by configuration.
func newRenderer(cfg *config.Config, out *os.File, logger *slog.Logger) *feedback.Renderer {
	profile := termenv.Ascii
	if cfg.Color && term.IsTerminal(int(out.Fd())) {
		profile = termenv.NewOutput(out).ColorProfile()
	}
	return feedback.New(
		feedback.WithProfile(profile),
		feedback.WithMarkdown(cfg.Markdown),
		feedback.WithLogger(logger),
	)
}

// openTutor loads the configured catalogue and wires every ambient concern.
func openTutor(ctx context.Context, cfg *config.Config, out *os.File, metrics *observability.Metrics) (*autograde.Tutor, *backend, error) {
	logger := cfg.Logger()

	be, err := openBackend(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s store: %w", cfg.Store, err)
	}

	opts := []autograde.Option{
		autograde.WithLogger(logger),
		autograde.WithStore(be.store),
		autograde.WithHookTimeout(cfg.HookTimeout),
		autograde.WithRenderer(newRenderer(cfg, out, logger)),
		autograde.WithLifecycleHooks(observability.LogHooks(logger)),
	}
	if be.locker != nil {
		opts = append(opts, autograde.WithLocker(be.locker))
	}
	if cfg.Home != "" {
		opts = append(opts, autograde.WithHomeDir(cfg.Home))
	}
	if metrics != nil {
		opts = append(opts, autograde.WithLifecycleHooks(metrics.Hooks()))
	}

	hookRegistry, err := loadHooks(cfg)
	if err != nil {
		_ = be.close()
		return nil, nil, err
	}

	tutor, err := autograde.Open(ctx, cfg.Catalog, hookRegistry, opts...)
	if err != nil {
		_ = be.close()
		return nil, nil, err
	}
	return tutor, be, nil
}

// loadHooks registers the external programs named in the hooks file.
// Catalogues can only reference programs listed there.
func loadHooks(cfg *config.Config) (*hooks.Registry, error) {
	reg := hooks.NewRegistry()
	if cfg.Hooks == "" {
		return reg, nil
	}
	configs, err := process.LoadHooks(cfg.Hooks)
	if err != nil {
		return nil, err
	}
	var opts []process.Option
	if wd, err := os.Getwd(); err == nil {
		opts = append(opts, process.WithBaseDir(wd))
	}
	process.Register(reg, configs, opts...)
	return reg, nil
}
