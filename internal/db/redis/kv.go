package redis

import (
	"context"
	"time"

	"github.com/redis/rueidis"

	"github.com/nyaybodh/nyaybodh/internal/db"
)

const (
	scanCount = 200
	// delBatch caps the keys sent in one DEL.
	delBatch = 500
)

// Get returns the value stored at key or db.ErrKeyNotFound.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Do(ctx, s.client.B().Get().Key(key).Build()).AsBytes()
	switch {
	case rueidis.IsRedisNil(err):
		return nil, db.ErrKeyNotFound
	case err != nil:
		return nil, &db.Error{Op: db.OpGet, Key: key, Err: err}
	}
	return data, nil
}

// SetWithTTL stores value at key, expiring after ttl when ttl is positive.
func (s *Store) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	set := s.client.B().Set().Key(key).Value(rueidis.BinaryString(value))
	var cmd rueidis.Completed
	if ttl > 0 {
		cmd = set.Px(ttl).Build()
	} else {
		cmd = set.Build()
	}
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		return &db.Error{Op: db.OpSet, Key: key, Err: err}
	}
	return nil
}

// Del removes keys in batches and returns how many existed.
func (s *Store) Del(ctx context.Context, keys ...string) (int, error) {
	removed := 0
	for start := 0; start < len(keys); start += delBatch {
		batch := keys[start:min(start+delBatch, len(keys))]
		n, err := s.client.Do(ctx, s.client.B().Del().Key(batch...).Build()).AsInt64()
		if err != nil {
			return removed, &db.Error{Op: db.OpDel, Key: batch[0], Err: err}
		}
		removed += int(n)
	}
	return removed, nil
}

// Keys walks SCAN cursors and returns every key matching pattern.
func (s *Store) Keys(ctx context.Context, pattern string) ([]string, error) {
	var keys []string
	var cursor uint64
	for {
		cmd := s.client.B().Scan().Cursor(cursor).Match(pattern).Count(scanCount).Build()
		entry, err := s.client.Do(ctx, cmd).AsScanEntry()
		if err != nil {
			return nil, &db.Error{Op: db.OpScan, Key: pattern, Err: err}
		}
		keys = append(keys, entry.Elements...)
		if cursor = entry.Cursor; cursor == 0 {
			return keys, nil
		}
	}
}
