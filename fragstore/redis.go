package fragstore

import (
	"context"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// RedisStore persists fragment bodies as byte ranges of a single Redis
// string value, addressed with SETRANGE/GETRANGE — a natural fit when
// the "external block storage" is a shared cache reachable from a
// gateway-side decoder rather than on-device flash.
type RedisStore struct {
	client redis.UniversalClient
	key    string
	ctx    context.Context
}

// NewRedisStore returns a Store backed by the given key on client. ctx
// governs every Redis round-trip issued by Read/Write.
func NewRedisStore(ctx context.Context, client redis.UniversalClient, key string) *RedisStore {
	return &RedisStore{client: client, key: key, ctx: ctx}
}

// Write implements Store.
func (s *RedisStore) Write(offset uint32, buf []byte) error {
	if err := s.client.SetRange(s.ctx, s.key, int64(offset), string(buf)).Err(); err != nil {
		return errors.Wrapf(err, "fragstore: redis SETRANGE %d bytes at offset %d", len(buf), offset)
	}
	return nil
}

// Read implements Store.
func (s *RedisStore) Read(offset uint32, buf []byte) error {
	if len(buf) == 0 {
		return nil
	}
	start := int64(offset)
	end := start + int64(len(buf)) - 1
	got, err := s.client.GetRange(s.ctx, s.key, start, end).Result()
	if err != nil {
		return errors.Wrapf(err, "fragstore: redis GETRANGE %d bytes at offset %d", len(buf), offset)
	}
	if len(got) != len(buf) {
		return errors.Errorf("fragstore: redis GETRANGE returned %d bytes, expected %d", len(got), len(buf))
	}
	copy(buf, got)
	return nil
}
