// Package redisstore backs the key-value store with Redis, for clinic
// deployments where several kiosk terminals share one session host.
package redisstore

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/rxdesk/sessionkeeper/kvstore"
)

const opTimeout = 2 * time.Second

// Options configures the Redis connection.
type Options struct {
	Addr     string
	Password string
	DB       int
}

// RedisStore adapts a go-redis client to the kvstore contract.
type RedisStore struct {
	client *redis.Client
	log    zerolog.Logger
}

var _ kvstore.Store = (*RedisStore)(nil)

// New connects to Redis. Connectivity problems are logged rather than
// fatal; the first failing operation surfaces the real error.
func New(opts Options, log zerolog.Logger) *RedisStore {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Warn().Err(err).Str("addr", opts.Addr).Msg("unable to reach redis")
	} else {
		log.Info().Str("addr", opts.Addr).Msg("connected to redis")
	}

	return &RedisStore{client: client, log: log}
}

func (rs *RedisStore) Get(key string) (string, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	value, err := rs.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrap(err, "[RedisStore.Get]")
	}
	return value, true, nil
}

func (rs *RedisStore) Set(key, value string) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	if err := rs.client.Set(ctx, key, value, 0).Err(); err != nil {
		return errors.Wrap(err, "[RedisStore.Set]")
	}
	return nil
}

func (rs *RedisStore) Delete(key string) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	if err := rs.client.Del(ctx, key).Err(); err != nil {
		return errors.Wrap(err, "[RedisStore.Delete]")
	}
	return nil
}

// Close releases the underlying client.
func (rs *RedisStore) Close() {
	if rs != nil && rs.client != nil {
		_ = rs.client.Close()
	}
}
