package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"pizza_back_end/internal/apperr"
)

// RedisStore : un document JSON par clé "<namespace>:<clé>".
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// ConnectRedis ouvre le client et vérifie la connexion par un PING.
func ConnectRedis(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	if addr == "" {
		return nil, errors.New("REDIS_HOST non configuré")
	}
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("impossible de se connecter à Redis: %w", err)
	}
	return client, nil
}

func redisKey(ns Namespace, key string) string {
	return string(ns) + ":" + key
}

func (s *RedisStore) Create(ctx context.Context, ns Namespace, key string, value any) error {
	if err := checkArgs(ctx, ns, key); err != nil {
		return err
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", ns, err)
	}
	if ns.exclusiveCreate() {
		ok, err := s.client.SetNX(ctx, redisKey(ns, key), data, 0).Result()
		if err != nil {
			return fmt.Errorf("create %s: %w", ns, err)
		}
		if !ok {
			return apperr.ErrAlreadyExists
		}
		return nil
	}
	if err := s.client.Set(ctx, redisKey(ns, key), data, 0).Err(); err != nil {
		return fmt.Errorf("create %s: %w", ns, err)
	}
	return nil
}

func (s *RedisStore) Read(ctx context.Context, ns Namespace, key string, out any) error {
	if err := checkArgs(ctx, ns, key); err != nil {
		return err
	}
	data, err := s.client.Get(ctx, redisKey(ns, key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return apperr.ErrNotFound
		}
		return fmt.Errorf("read %s: %w", ns, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s: %w", ns, err)
	}
	return nil
}

func (s *RedisStore) Update(ctx context.Context, ns Namespace, key string, value any) error {
	if err := checkArgs(ctx, ns, key); err != nil {
		return err
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", ns, err)
	}
	ok, err := s.client.SetXX(ctx, redisKey(ns, key), data, 0).Result()
	if err != nil {
		return fmt.Errorf("update %s: %w", ns, err)
	}
	if !ok {
		return apperr.ErrNotFound
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, ns Namespace, key string) error {
	if err := checkArgs(ctx, ns, key); err != nil {
		return err
	}
	n, err := s.client.Del(ctx, redisKey(ns, key)).Result()
	if err != nil {
		return fmt.Errorf("delete %s: %w", ns, err)
	}
	if n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
