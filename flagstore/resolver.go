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
	"errors"
	"log/slog"

	"github.com/cardinalhq/flagrunner/flagmodel"
)

// FlagQuerier is the slice of the authoritative store the resolver needs.
// flagdb.Store satisfies it.
type FlagQuerier interface {
	ListProjectFlags(ctx context.Context, projectID int64) ([]flagmodel.Flag, error)
}

// FlagCache is the cache surface the resolver needs. Cache satisfies it.
type FlagCache interface {
	LoadFromCache(ctx context.Context, projectID int64) ([]flagmodel.Flag, error)
	WriteBackToCache(ctx context.Context, projectID int64, flags []flagmodel.Flag) error
}

// Resolver produces a project's flag list, preferring the cache and falling
// back to the authoritative store. It is safe for concurrent use; reads for
// the same project are not deduplicated, so a cache-miss stampede falls
// through to the store once per caller. Request coalescing, if wanted, is a
// collaborator's job.
type Resolver struct {
	cache FlagCache
	store FlagQuerier
}

// NewResolver composes a cache and an authoritative store.
func NewResolver(cache FlagCache, store FlagQuerier) *Resolver {
	return &Resolver{cache: cache, store: store}
}

// GetProjectFlags returns the project's flag list from the cache when
// possible. A miss or unreachable cache falls back to the store, and the
// fetched list is written back best-effort: a write-back failure is logged
// and counted but does not fail the read, since the flags are in hand. A
// corrupt cache payload is returned as a hard error.
func (r *Resolver) GetProjectFlags(ctx context.Context, projectID int64) ([]flagmodel.Flag, error) {
	flags, err := r.cache.LoadFromCache(ctx, projectID)
	if err == nil {
		recordCacheHit(ctx)
		return flags, nil
	}
	if !errors.Is(err, ErrCacheMiss) && !errors.Is(err, ErrCacheUnavailable) {
		return nil, err
	}

	recordCacheFallback(ctx, err)
	slog.Debug("flag cache fallback to store", slog.Int64("projectID", projectID), slog.Any("reason", err))

	flags, err = r.store.ListProjectFlags(ctx, projectID)
	if err != nil {
		return nil, err
	}

	if werr := r.cache.WriteBackToCache(ctx, projectID, flags); werr != nil {
		recordWriteBackFailure(ctx)
		slog.Warn("failed to write flags back to cache",
			slog.Int64("projectID", projectID),
			slog.Any("error", werr))
	}
	return flags, nil
}

// RefreshProjectFlags reads the project's live flags from the authoritative
// store and writes them through to the cache. This is the operation the
// external refresh cadence invokes to bound cache-store divergence; a write
// failure is the returned error.
func (r *Resolver) RefreshProjectFlags(ctx context.Context, projectID int64) ([]flagmodel.Flag, error) {
	flags, err := r.store.ListProjectFlags(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if err := r.cache.WriteBackToCache(ctx, projectID, flags); err != nil {
		recordWriteBackFailure(ctx)
		return nil, err
	}
	return flags, nil
}
