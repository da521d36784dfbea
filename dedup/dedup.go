// SPDX-License-Identifier: GPL-3.0-or-later
package dedup

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	DefaultTTL = 30 * 24 * time.Hour

	keyPrefix = "historian:seen:"
)

// Filter remembers message identity hashes in Redis so scheduled imports skip messages fetched
// before.
type Filter struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewFilter(rdb *redis.Client, ttl time.Duration) *Filter {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Filter{
		rdb: rdb,
		ttl: ttl,
	}
}

// Connect parses a redis:// url and checks the server is reachable.
func Connect(ctx context.Context, url string) (*Filter, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("could not parse redis url: %w", err)
	}

	rdb := redis.NewClient(opts)
	err = rdb.Ping(ctx).Err()
	if err != nil {
		rdb.Close()
		return nil, fmt.Errorf("could not connect to redis: %w", err)
	}

	return NewFilter(rdb, DefaultTTL), nil
}

func seenKey(mailIdHash string) string {
	return keyPrefix + mailIdHash
}

// IsNew reports whether the hash has not been seen before and marks it as seen.
func (f *Filter) IsNew(ctx context.Context, mailIdHash string) (bool, error) {
	set, err := f.rdb.SetNX(ctx, seenKey(mailIdHash), 1, f.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("could not mark mail as seen: %w", err)
	}

	return set, nil
}

// Forget removes the hash, so the message is fetched again by the next import.
func (f *Filter) Forget(ctx context.Context, mailIdHash string) error {
	err := f.rdb.Del(ctx, seenKey(mailIdHash)).Err()
	if err != nil {
		return fmt.Errorf("could not forget mail: %w", err)
	}
	return nil
}

func (f *Filter) Close() error {
	return f.rdb.Close()
}
