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

import "errors"

var (
	// ErrCacheMiss indicates the cache is reachable but holds no entry for
	// the project. Callers fall back to the authoritative store.
	ErrCacheMiss = errors.New("flag cache miss")

	// ErrCacheUnavailable indicates the cache service could not be reached.
	// Treated like a miss for fallback purposes, but kept distinct so the
	// two conditions can be alerted on separately.
	ErrCacheUnavailable = errors.New("flag cache unavailable")

	// ErrCachePayloadCorrupt indicates the cache key exists but its payload
	// did not decode. This is never treated as a miss: a corrupt payload
	// means a producer bug and must surface.
	ErrCachePayloadCorrupt = errors.New("flag cache payload corrupt")
)
