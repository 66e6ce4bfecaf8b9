// internal/app/system/deadletter/deadletter.go
package deadletter

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// DefaultKey is the Redis set holding property IDs whose index write failed.
const DefaultKey = "listinghub:index:deadletter"

// Set records IDs in a Redis set. Adding an ID twice keeps one entry.
type Set struct {
	rdb redis.Cmdable
	key string
}

// New returns a Set stored under key (DefaultKey when empty).
func New(rdb redis.Cmdable, key string) *Set {
	if key == "" {
		key = DefaultKey
	}
	return &Set{rdb: rdb, key: key}
}

// Connect opens a Redis client and pings it.
func Connect(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return rdb, nil
}

func (s *Set) Add(ctx context.Context, id string) error {
	return s.rdb.SAdd(ctx, s.key, id).Err()
}

func (s *Set) Members(ctx context.Context) ([]string, error) {
	return s.rdb.SMembers(ctx, s.key).Result()
}

func (s *Set) Remove(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	members := make([]any, len(ids))
	for i, id := range ids {
		members[i] = id
	}
	return s.rdb.SRem(ctx, s.key, members...).Err()
}
