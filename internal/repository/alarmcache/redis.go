package alarmcache

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	domain "github.com/cofrn/cofrn-monitor/internal/domain/alarm"
)

const (
	redisDataField    = "data"
	redisVersionField = "version"
)

// RedisRepository stores the alarm cache in a Redis hash holding the JSON
// document and a version counter. Saves run in a WATCH transaction.
type RedisRepository struct {
	client *redis.Client
	key    string
}

// NewRedisRepository creates a repository for the hash at key.
func NewRedisRepository(client *redis.Client, key string) *RedisRepository {
	return &RedisRepository{
		client: client,
		key:    key,
	}
}

// ConnectRedis creates and validates a Redis connection.
func ConnectRedis(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis at %s: %w", addr, err)
	}

	return client, nil
}

// Load reads the cache hash.
func (r *RedisRepository) Load(ctx context.Context) (*domain.Document, error) {
	fields, err := r.client.HGetAll(ctx, r.key).Result()
	if err != nil {
		return nil, fmt.Errorf("read redis key %s: %w", r.key, err)
	}

	if len(fields) == 0 {
		return nil, ErrNotFound
	}

	cache, err := decode([]byte(fields[redisDataField]))
	if err != nil {
		return corrupt(fields[redisVersionField], err)
	}

	return &domain.Document{
		Cache:   cache,
		Version: fields[redisVersionField],
	}, nil
}

// Save writes the cache if the stored version still equals doc.Version.
func (r *RedisRepository) Save(ctx context.Context, doc *domain.Document) error {
	data, err := encode(doc.Cache)
	if err != nil {
		return err
	}

	var next string

	txf := func(tx *redis.Tx) error {
		current, err := tx.HGet(ctx, r.key, redisVersionField).Result()

		switch {
		case errors.Is(err, redis.Nil):
			current = ""
		case err != nil:
			return fmt.Errorf("read redis version: %w", err)
		}

		if current != doc.Version {
			return ErrConflict
		}

		version, _ := strconv.ParseInt(current, 10, 64)
		next = strconv.FormatInt(version+1, 10)

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, r.key, redisDataField, data, redisVersionField, next)
			return nil
		})

		return err
	}

	err = r.client.Watch(ctx, txf, r.key)

	switch {
	case errors.Is(err, redis.TxFailedErr), errors.Is(err, ErrConflict):
		return ErrConflict
	case err != nil:
		return fmt.Errorf("write redis key %s: %w", r.key, err)
	}

	doc.Version = next

	return nil
}
