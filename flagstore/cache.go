// Copyright (C) 2025-2026 CardinalHQ, Inc
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, version 3.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.

// Package flagstore produces a project's flag list from a low-latency Redis
// cache backed by the authoritative Postgres store, and owns the
// serialization and consistency contract between the two.
package flagstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/cardinalhq/flagrunner/flagmodel"
)

// ProjectFlagsCachePrefix is the fixed key prefix for a project's cached
// flag list. The full key is the prefix plus the decimal project id.
const ProjectFlagsCachePrefix = "flags:project:"

// Cache reads and writes a project's serialized flag list in Redis. The
// value is a JSON array of flags; each write replaces the whole key in a
// single SET, so concurrent readers see the pre- or post-update list, never
// a partial one. No TTL is managed here.
type Cache struct {
	client redis.UniversalClient
	prefix string
}

// NewCache wraps a Redis client. prefix overrides the default key prefix
// when non-empty; production callers leave it empty.
func NewCache(client redis.UniversalClient, prefix string) *Cache {
	if prefix == "" {
		prefix = ProjectFlagsCachePrefix
	}
	return &Cache{client: client, prefix: prefix}
}

func (c *Cache) key(projectID int64) string {
	return c.prefix + strconv.FormatInt(projectID, 10)
}

// LoadFromCache returns the project's cached flag list. A missing key yields
// ErrCacheMiss and an unreachable cache yields ErrCacheUnavailable, both
// recoverable by falling back to the store. A payload that fails to decode
// yields ErrCachePayloadCorrupt, which is a hard error.
//
// The cache is a raw mirror of what was written: deleted or inactive flags
// written by a producer are returned as-is. Liveness filtering happens at
// store-query time only.
func (c *Cache) LoadFromCache(ctx context.Context, projectID int64) ([]flagmodel.Flag, error) {
	key := c.key(projectID)
	slog.Debug("reading flags from cache", slog.String("key", key))

	payload, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: key %q", ErrCacheMiss, key)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get %q: %w", ErrCacheUnavailable, key, err)
	}

	var flags []flagmodel.Flag
	if err := json.Unmarshal(payload, &flags); err != nil {
		slog.Error("failed to decode cached flags for project",
			slog.Int64("projectID", projectID),
			slog.Any("error", err))
		return nil, fmt.Errorf("%w: key %q: %w", ErrCachePayloadCorrupt, key, err)
	}

	slog.Debug("read flags from cache", slog.String("key", key), slog.Int("count", len(flags)))
	return flags, nil
}

// WriteBackToCache serializes the full flag list and overwrites the
// project's cache key. A write failure is returned to the caller rather
// than swallowed: it means subsequent readers will serve stale data.
func (c *Cache) WriteBackToCache(ctx context.Context, projectID int64, flags []flagmodel.Flag) error {
	payload, err := json.Marshal(flags)
	if err != nil {
		return fmt.Errorf("serialize %d flags for project %d: %w", len(flags), projectID, err)
	}

	key := c.key(projectID)
	slog.Info("writing flags to cache", slog.String("key", key), slog.Int("count", len(flags)))

	if err := c.client.Set(ctx, key, payload, 0).Err(); err != nil {
		return fmt.Errorf("update cache for project %d: %w", projectID, err)
	}
	return nil
}
