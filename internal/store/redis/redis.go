package redis

import (
	"context"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"comanda/backend/internal/store"
)

const DefaultKeyPrefix = "comanda:"

// Store keeps each collection under one string key, so a restart of the API keeps
// its state as long as the redis instance does.
type Store struct {
	client *goredis.Client
	prefix string
}

func New(addr string, password string, db int, prefix string) *Store {
	client := goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}

	return &Store{client: client, prefix: prefix}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return val, nil
}

func (s *Store) Put(ctx context.Context, key string, payload []byte) error {
	return s.PutAll(ctx, map[string][]byte{key: payload})
}

// PutAll sets every key inside one MULTI/EXEC block.
func (s *Store) PutAll(ctx context.Context, payloads map[string][]byte) error {
	_, err := s.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		for key, payload := range payloads {
			pipe.Set(ctx, s.prefix+key, payload, 0)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis set %d keys: %w", len(payloads), err)
	}
	return nil
}
