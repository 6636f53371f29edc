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

package flagstore

import (
	"context"
	"sort"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/cardinalhq/flagrunner/flagmodel"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCache(client, ""), mr
}

func TestCacheRoundTrip(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	flags := []flagmodel.Flag{
		{ID: 1, TeamID: 5, Key: "alpha", Active: true},
		{ID: 2, TeamID: 5, Key: "beta", Active: false, Deleted: true},
	}
	require.NoError(t, cache.WriteBackToCache(ctx, 42, flags))

	got, err := cache.LoadFromCache(ctx, 42)
	require.NoError(t, err)
	// The cache is a raw mirror: deleted and inactive flags written by a
	// producer come back as written.
	require.Equal(t, flags, got)
}

func TestCacheMiss(t *testing.T) {
	cache, _ := newTestCache(t)

	_, err := cache.LoadFromCache(context.Background(), 999)
	require.ErrorIs(t, err, ErrCacheMiss)
	require.NotErrorIs(t, err, ErrCacheUnavailable)
}

func TestCacheUnavailable(t *testing.T) {
	cache, mr := newTestCache(t)
	mr.Close()

	_, err := cache.LoadFromCache(context.Background(), 42)
	require.ErrorIs(t, err, ErrCacheUnavailable)
	require.NotErrorIs(t, err, ErrCacheMiss)
}

func TestCacheCorruptPayload(t *testing.T) {
	cache, mr := newTestCache(t)
	require.NoError(t, mr.Set(ProjectFlagsCachePrefix+"42", `{"this is": "not a flag array"`))

	_, err := cache.LoadFromCache(context.Background(), 42)
	require.ErrorIs(t, err, ErrCachePayloadCorrupt)
}

func TestCacheEmptyListIsNotAMiss(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.WriteBackToCache(ctx, 7, []flagmodel.Flag{}))

	got, err := cache.LoadFromCache(ctx, 7)
	require.NoError(t, err)
	require.Len(t, got, 0)
}

func TestCacheKeyPrefix(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	cache := NewCache(client, "staging:flags:")
	ctx := context.Background()

	require.NoError(t, cache.WriteBackToCache(ctx, 3, []flagmodel.Flag{{ID: 1, Key: "k"}}))
	require.True(t, mr.Exists("staging:flags:3"))
	require.False(t, mr.Exists(ProjectFlagsCachePrefix+"3"))
}

func TestCacheAndStorePathsAgree(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	name := "Rollout"
	rollout := 25.0
	stored := []flagmodel.Flag{
		{
			ID: 10, TeamID: 2, Name: &name, Key: "a-flag", Active: true,
			Filters: flagmodel.FilterSpec{
				Groups: []flagmodel.PropertyGroup{{RolloutPercentage: &rollout}},
			},
		},
		{ID: 11, TeamID: 2, Key: "b-flag", Active: true},
	}
	store := &fakeQuerier{flags: stored}
	resolver := NewResolver(cache, store)

	// First read misses and falls through to the store.
	viaStore, err := resolver.GetProjectFlags(ctx, 2)
	require.NoError(t, err)

	// Second read is served from the write-back.
	viaCache, err := resolver.GetProjectFlags(ctx, 2)
	require.NoError(t, err)

	require.Equal(t, 1, store.queries)
	sortByKey := func(flags []flagmodel.Flag) {
		sort.Slice(flags, func(i, j int) bool { return flags[i].Key < flags[j].Key })
	}
	sortByKey(viaStore)
	sortByKey(viaCache)
	require.Equal(t, viaStore, viaCache)
}

func TestCacheWriteOverwritesWholeKey(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.WriteBackToCache(ctx, 42, []flagmodel.Flag{
		{ID: 1, Key: "old-a"},
		{ID: 2, Key: "old-b"},
	}))
	require.NoError(t, cache.WriteBackToCache(ctx, 42, []flagmodel.Flag{
		{ID: 3, Key: "new"},
	}))

	got, err := cache.LoadFromCache(ctx, 42)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "new", got[0].Key)
}
