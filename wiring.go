package main

import (
	"context"
	"fmt"
	"innbot/internal/adapters/cache"
	"innbot/internal/adapters/registry"
	"innbot/internal/core/port"
	"innbot/internal/core/service"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// pipeline is the lookup side of the bot, shared by the serve and lookup commands.
type pipeline struct {
	lookup *service.BatchLookup
	finder registry.Finder
	redis  *cache.Redis
}

func (p *pipeline) Close() {
	if p.finder != nil {
		if err := p.finder.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close registry client")
		}
	}
	if p.redis != nil {
		if err := p.redis.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close redis client")
		}
	}
}

func newPipeline(ctx context.Context, metrics port.Metrics) (*pipeline, error) {
	cfg := registry.ConfigFromViper()
	finder, err := registry.NewFinder(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed initializing registry client: %w", err)
	}

	fetchTimeout, err := time.ParseDuration(viper.GetString("lookup.fetch_timeout"))
	if err != nil {
		_ = finder.Close()
		return nil, fmt.Errorf("invalid lookup fetch timeout in config: %w", err)
	}

	log.Info().Str("driver", cfg.Driver).Str("search_url", cfg.SearchURL).Msg("initializing registry client")
	p := &pipeline{finder: finder}

	outcomeCache, err := p.newCache(ctx)
	if err != nil {
		p.Close()
		return nil, err
	}

	p.lookup = service.NewBatchLookup(service.BatchLookupParams{
		Finder:       finder,
		Cache:        outcomeCache,
		Metrics:      metrics,
		FetchTimeout: fetchTimeout,
	})

	return p, nil
}

func (p *pipeline) newCache(ctx context.Context) (port.OutcomeCache, error) {
	ttl, err := time.ParseDuration(viper.GetString("cache.ttl"))
	if err != nil {
		return nil, fmt.Errorf("invalid cache ttl in config: %w", err)
	}

	backend := viper.GetString("cache.backend")
	log.Info().Str("backend", backend).Dur("ttl", ttl).Msg("initializing outcome cache")

	switch backend {
	case "none":
		return nil, nil
	case "memory", "":
		return cache.NewMemory(ttl), nil
	case "redis":
		opts := []cache.Option{cache.WithTTL(ttl)}
		if prefix := viper.GetString("redis.prefix"); prefix != "" {
			opts = append(opts, cache.WithPrefix(prefix))
		}

		p.redis = cache.NewRedis(
			viper.GetString("redis.addr"),
			viper.GetString("redis.password"),
			viper.GetInt("redis.db"),
			opts...)

		if err := p.redis.Ping(ctx); err != nil {
			log.Warn().Err(err).Msg("redis not reachable, lookups continue without a working cache")
		}

		return p.redis, nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", backend)
	}
}
