package msgcache

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const ttlGameMessages = 24 * time.Hour

// RedisStore keeps per-game sent messages in a Redis list with a key TTL,
// for deployments where the bot process is restarted mid-game. Entries
// expire with the game key; no per-entry cleanup is performed.
type RedisStore struct{ rdb *redis.Client }

func NewRedisStore(rdb *redis.Client) *RedisStore { return &RedisStore{rdb: rdb} }

// NewRedisStoreFromURL parses a redis:// URL and pings the server.
func NewRedisStoreFromURL(ctx context.Context, rawURL string) (*RedisStore, error) {
	opt, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return NewRedisStore(rdb), nil
}

func (s *RedisStore) key(gameID string) string { return "hb:sent:" + strings.TrimSpace(gameID) }

func (s *RedisStore) Append(ctx context.Context, gameID, text string) error {
	if strings.TrimSpace(gameID) == "" || text == "" {
		return nil
	}
	k := s.key(gameID)
	if err := s.rdb.RPush(ctx, k, text).Err(); err != nil {
		return err
	}
	return s.rdb.Expire(ctx, k, ttlGameMessages).Err()
}

func (s *RedisStore) Recent(ctx context.Context, gameID string, n int) ([]string, error) {
	if n <= 0 {
		return nil, nil
	}
	out, err := s.rdb.LRange(ctx, s.key(gameID), int64(-n), -1).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *RedisStore) Close() error { return s.rdb.Close() }
