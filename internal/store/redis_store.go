package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// DefaultRedisPrefix namespaces every key the Redis store writes.
const DefaultRedisPrefix = "bookmarks:"

// RedisStore keeps each bookmark as a JSON value and maintains a sorted set
// of ids scored by an insertion counter so List preserves creation order.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

func NewRedisStore(client redis.UniversalClient, prefix string) *RedisStore {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisStore{client: client, prefix: prefix}
}

// bookmarkKey returns the Redis key for a bookmark.
func (s *RedisStore) bookmarkKey(id string) string {
	return s.prefix + "bookmark:" + id
}

// seqKey returns the Redis key of the insertion counter.
func (s *RedisStore) seqKey() string {
	return s.prefix + "seq"
}

// indexKey returns the Redis key of the sorted set of all bookmark ids.
func (s *RedisStore) indexKey() string {
	return s.prefix + "index"
}

func (s *RedisStore) List(ctx context.Context) ([]*Bookmark, error) {
	ids, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list bookmark ids: %w", err)
	}
	bookmarks := make([]*Bookmark, 0, len(ids))
	if len(ids) == 0 {
		return bookmarks, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.bookmarkKey(id)
	}
	vals, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("load bookmarks: %w", err)
	}
	for _, v := range vals {
		// Deleted between ZRANGE and MGET.
		raw, ok := v.(string)
		if !ok {
			continue
		}
		var b Bookmark
		if err := json.Unmarshal([]byte(raw), &b); err != nil {
			return nil, fmt.Errorf("decode bookmark: %w", err)
		}
		bookmarks = append(bookmarks, &b)
	}
	return bookmarks, nil
}

func (s *RedisStore) GetByID(ctx context.Context, id string) (*Bookmark, error) {
	data, err := s.client.Get(ctx, s.bookmarkKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get bookmark %s: %w", id, err)
	}
	var b Bookmark
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("decode bookmark %s: %w", id, err)
	}
	return &b, nil
}

func (s *RedisStore) Insert(ctx context.Context, b *Bookmark) (*Bookmark, error) {
	now := time.Now().UTC()
	rec := *b
	rec.ID = uuid.New().String()
	rec.CreatedAt = now
	rec.UpdatedAt = now

	data, err := json.Marshal(&rec)
	if err != nil {
		return nil, fmt.Errorf("encode bookmark: %w", err)
	}

	seq, err := s.client.Incr(ctx, s.seqKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("next bookmark sequence: %w", err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.bookmarkKey(rec.ID), data, 0)
		pipe.ZAdd(ctx, s.indexKey(), redis.Z{Score: float64(seq), Member: rec.ID})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("insert bookmark: %w", err)
	}
	return &rec, nil
}

func (s *RedisStore) Update(ctx context.Context, b *Bookmark) (*Bookmark, error) {
	rec := *b
	rec.UpdatedAt = time.Now().UTC()

	data, err := json.Marshal(&rec)
	if err != nil {
		return nil, fmt.Errorf("encode bookmark: %w", err)
	}

	// XX only overwrites an existing key.
	err = s.client.SetArgs(ctx, s.bookmarkKey(rec.ID), data, redis.SetArgs{Mode: "XX"}).Err()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update bookmark %s: %w", rec.ID, err)
	}
	return &rec, nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	var del *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		del = pipe.Del(ctx, s.bookmarkKey(id))
		pipe.ZRem(ctx, s.indexKey(), id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete bookmark %s: %w", id, err)
	}
	if del.Val() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
