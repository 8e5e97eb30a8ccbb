package cli

import (
	"fmt"
	"io"
	"log/slog"

	goSession "github.com/MrEthical07/goSession"
	"github.com/MrEthical07/goSession/gateway"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

// openStore wires a Store from cfg. The returned cleanup closes the store
// and anything opened for it.
func openStore(cfg goSession.Config, logger *slog.Logger, auditOut io.Writer) (*goSession.Store, func(), error) {
	client, err := gateway.NewClient(cfg.Gateway, gateway.WithLogger(logger))
	if err != nil {
		return nil, nil, err
	}

	b := goSession.New().
		WithConfig(cfg).
		WithGateway(client).
		WithLogger(logger)

	if cfg.Audit.Enabled {
		b = b.WithAuditSink(goSession.NewJSONWriterSink(auditOut))
	}

	cleanup := func() {}
	if cfg.Storage.Backend == goSession.StorageRedis && cfg.Storage.RedisAddr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			return nil, nil, fmt.Errorf("start miniredis: %w", err)
		}
		rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), DB: cfg.Storage.RedisDB})
		logger.Warn("no redis address configured; using in-process miniredis", slog.String("addr", mr.Addr()))
		b = b.WithRedis(rdb)
		cleanup = func() {
			_ = rdb.Close()
			mr.Close()
		}
	}

	store, err := b.Build()
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	if cfg.Storage.Backend == goSession.StorageMemory {
		logger.Debug("memory storage backend: the session ends with the process")
	}

	return store, func() {
		store.Close()
		cleanup()
	}, nil
}
