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

package flagdb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// TeamPropertyIndex is the per-team property membership index record. One
// row per team, rebuilt wholesale by each successful builder run. TrieBytes
// may be nil, meaning an empty index. Once Blocked is set the team's
// property cardinality has exceeded the cap and further builder passes are
// skipped.
type TeamPropertyIndex struct {
	TeamID          int64
	TrieBytes       []byte
	DefinitionCount int32
	Blocked         bool
	LastBuiltAt     time.Time
}

// GetTeamPropertyIndex returns the team's index record, or (nil, nil) when
// no record exists yet.
func (store *Store) GetTeamPropertyIndex(ctx context.Context, teamID int64) (*TeamPropertyIndex, error) {
	const q = `
SELECT team_id, trie_bytes, definition_count, blocked, last_built_at
  FROM team_property_index
 WHERE team_id = $1`

	var rec TeamPropertyIndex
	err := store.connPool.QueryRow(ctx, q, teamID).Scan(
		&rec.TeamID,
		&rec.TrieBytes,
		&rec.DefinitionCount,
		&rec.Blocked,
		&rec.LastBuiltAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get property index for team %d: %w", teamID, err)
	}
	return &rec, nil
}

// UpsertTeamPropertyIndex replaces the team's index record. The write is a
// single statement; concurrent builder runs for the same team race here with
// last-writer-wins, which is why runs are serialized per team by the
// scheduler.
func (store *Store) UpsertTeamPropertyIndex(ctx context.Context, rec TeamPropertyIndex) error {
	const q = `
INSERT INTO team_property_index (team_id, trie_bytes, definition_count, blocked, last_built_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (team_id) DO UPDATE
   SET trie_bytes = EXCLUDED.trie_bytes,
       definition_count = EXCLUDED.definition_count,
       blocked = EXCLUDED.blocked,
       last_built_at = EXCLUDED.last_built_at`

	_, err := store.connPool.Exec(ctx, q, rec.TeamID, rec.TrieBytes, rec.DefinitionCount, rec.Blocked, rec.LastBuiltAt)
	if err != nil {
		return fmt.Errorf("upsert property index for team %d: %w", rec.TeamID, err)
	}
	return nil
}
