package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"innbot/internal/core/domain"
	"time"

	backend "github.com/redis/go-redis/v9"
)

const DefaultPrefix = "innbot:company:"

// Redis stores found companies as JSON under prefix+identifier.
type Redis struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

type Option func(*Redis)

// WithTTL sets the expiration for cached companies.
func WithTTL(ttl time.Duration) Option {
	return func(r *Redis) {
		r.ttl = ttl
	}
}

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(r *Redis) {
		r.prefix = prefix
	}
}

func NewRedis(address, password string, db int, opts ...Option) *Redis {
	return NewRedisFromClient(backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	}), opts...)
}

func NewRedisFromClient(client *backend.Client, opts ...Option) *Redis {
	r := &Redis{
		client: client,
		prefix: DefaultPrefix,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

func (r *Redis) key(identifier string) string {
	return r.prefix + identifier
}

func (r *Redis) Get(ctx context.Context, identifier string) (domain.Company, bool, error) {
	val, err := r.client.Get(ctx, r.key(identifier)).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return domain.Company{}, false, nil
		}
		return domain.Company{}, false, fmt.Errorf("failed to read from redis: %w", err)
	}

	var company domain.Company
	if err := json.Unmarshal(val, &company); err != nil {
		return domain.Company{}, false, fmt.Errorf("failed to unmarshal company: %w", err)
	}

	return company, true, nil
}

func (r *Redis) Set(ctx context.Context, identifier string, company domain.Company) error {
	data, err := json.Marshal(company)
	if err != nil {
		return fmt.Errorf("failed to marshal company: %w", err)
	}

	if err := r.client.Set(ctx, r.key(identifier), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}

	return nil
}

func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *Redis) Close() error {
	return r.client.Close()
}
