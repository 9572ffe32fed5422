package daemon

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/matheus3301/eventd/internal/bus"
	"github.com/matheus3301/eventd/internal/catalog"
	"github.com/matheus3301/eventd/internal/config"
	"github.com/matheus3301/eventd/internal/dispatch"
	"github.com/matheus3301/eventd/internal/logging"
	"github.com/matheus3301/eventd/internal/sink"
)

// Params holds the resolved daemon configuration passed to the fx module.
type Params struct {
	Config     *config.Config
	ListenAddr string // optional override for testing; empty = use config
}

// Module returns the fx module for the daemon, composing all providers and lifecycle hooks.
func Module(p Params) fx.Option {
	return fx.Module("daemon",
		fx.Supply(p),
		fx.Provide(
			provideConfig,
			provideLogger,
			provideCatalog,
			provideBus,
			provideSink,
			provideDispatcher,
			NewServer,
		),
		fx.Invoke(registerLifecycle),
	)
}

func provideConfig(p Params) *config.Config {
	return p.Config
}

func provideLogger(cfg *config.Config) (*zap.Logger, error) {
	return logging.New(cfg.LogPath, cfg.LogLevel)
}

func provideCatalog(cfg *config.Config, logger *zap.Logger) (*catalog.Catalog, error) {
	c, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		return nil, err
	}
	logger.Info("catalog loaded",
		zap.String("path", cfg.CatalogPath),
		zap.Int("kinds", c.Len()),
	)
	return c, nil
}

func provideBus() *bus.Bus {
	return bus.New()
}

// provideSink assembles the delivery chain: structured log, in-process
// fan-out, and optionally Redis pub/sub. The Redis client is nil when
// the sink is disabled.
func provideSink(cfg *config.Config, b *bus.Bus, logger *zap.Logger) (dispatch.Sink, *redis.Client) {
	sinks := []dispatch.Sink{sink.NewLog(logger), sink.NewBus(b)}
	var client *redis.Client
	if cfg.Redis.Enabled {
		client = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		sinks = append(sinks, sink.NewRedis(client, sink.PrefixResolver{Prefix: cfg.Redis.ChannelPrefix}))
	}
	return sink.NewMulti(sinks...), client
}

func provideDispatcher(cfg *config.Config, cat *catalog.Catalog, snk dispatch.Sink) *dispatch.Dispatcher {
	var opts []dispatch.Option
	if cfg.Dispatch.LenientFields {
		opts = append(opts, dispatch.WithLenientFields())
	}
	return dispatch.New(cat, snk, opts...)
}

func registerLifecycle(lc fx.Lifecycle, srv *Server, client *redis.Client, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			// Fail startup if the Redis sink is enabled but unreachable;
			// otherwise every send would 502.
			if client != nil {
				pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
				defer cancel()
				if err := client.Ping(pingCtx).Err(); err != nil {
					return fmt.Errorf("redis ping: %w", err)
				}
				logger.Info("redis sink connected")
			}

			// Start HTTP server in background.
			go func() {
				if err := srv.Start(); err != nil {
					logger.Error("http server error", zap.Error(err))
				}
			}()

			return nil
		},
		OnStop: func(ctx context.Context) error {
			srv.Stop(ctx)
			if client != nil {
				if err := client.Close(); err != nil {
					logger.Warn("error closing redis client", zap.Error(err))
				}
			}
			logger.Info("daemon stopped")
			return nil
		},
	})
}
