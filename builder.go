package goSession

import (
	"errors"
	"log/slog"

	"github.com/MrEthical07/goSession/jwt"
	"github.com/MrEthical07/goSession/storage"
	"github.com/redis/go-redis/v9"
)

// Builder assembles a [Store]. A Builder is single use.
type Builder struct {
	config Config

	gateway   Gateway
	tokens    TokenStore
	codec     *jwt.Codec
	logger    *slog.Logger
	auditSink AuditSink
	redis     redis.UniversalClient

	built bool
}

// New returns a Builder seeded with [DefaultConfig].
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

// WithConfig replaces the whole configuration. Build validates it.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithGateway sets the identity service client. Required.
func (b *Builder) WithGateway(gw Gateway) *Builder {
	b.gateway = gw
	return b
}

// WithTokenStore overrides the backend selected by Config.Storage.
func (b *Builder) WithTokenStore(ts TokenStore) *Builder {
	b.tokens = ts
	return b
}

// WithRedis supplies the client used when Config.Storage.Backend is "redis".
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithCodec overrides the default token codec.
func (b *Builder) WithCodec(c *jwt.Codec) *Builder {
	b.codec = c
	return b
}

// WithLogger sets the Store logger. Defaults to slog.Default.
func (b *Builder) WithLogger(l *slog.Logger) *Builder {
	b.logger = l
	return b
}

// WithAuditSink sets where audit events go when Config.Audit is enabled.
// Defaults to a [SlogSink] over the Store logger.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithMetricsEnabled toggles Config.Metrics.Enabled.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms toggles the gateway latency histogram.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration and returns a Store in
// StatusBootstrapping. Call [Store.Bootstrap] next.
func (b *Builder) Build() (*Store, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := b.config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if b.gateway == nil {
		return nil, errors.New("gateway required")
	}

	tokens := b.tokens
	if tokens == nil {
		var err error
		tokens, err = b.defaultTokenStore(cfg.Storage)
		if err != nil {
			return nil, err
		}
	}

	codec := b.codec
	if codec == nil {
		codec = jwt.NewCodec(jwt.Config{})
	}

	logger := b.logger
	if logger == nil {
		logger = slog.Default()
	}

	b.built = true

	return newStore(cfg, b.gateway, tokens, codec, logger, b.auditSink), nil
}

func (b *Builder) defaultTokenStore(cfg StorageConfig) (TokenStore, error) {
	switch cfg.Backend {
	case StorageFile:
		return storage.NewFile(cfg.FilePath, cfg.Key), nil
	case StorageRedis:
		client := b.redis
		if client == nil {
			if cfg.RedisAddr == "" {
				return nil, errors.New("redis storage requires RedisAddr or WithRedis")
			}
			client = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, DB: cfg.RedisDB})
		}
		return storage.NewRedis(client, cfg.RedisPrefix, cfg.Key), nil
	default:
		return storage.NewMemory(cfg.Key), nil
	}
}
