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

// Package flagdb provides the authoritative Postgres store for flag
// definitions, property definitions, and per-team property index records.
package flagdb

import (
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store provides all functions to execute flag database queries and
// transactions. The underlying pool is safe for concurrent use.
type Store struct {
	connPool *pgxpool.Pool
}

// NewStore creates a new Store over an existing connection pool.
func NewStore(connPool *pgxpool.Pool) *Store {
	return &Store{connPool: connPool}
}

func (store *Store) Pool() *pgxpool.Pool {
	return store.connPool
}

// Close closes the connection pool.
func (store *Store) Close() {
	if store.connPool != nil {
		store.connPool.Close()
	}
}
