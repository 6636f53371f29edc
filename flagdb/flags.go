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
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/cardinalhq/flagrunner/flagmodel"
)

const listProjectFlagsQuery = `
SELECT f.id,
       f.team_id,
       f.name,
       f.key,
       f.filters,
       f.deleted,
       f.active,
       f.ensure_experience_continuity,
       f.version
  FROM feature_flags AS f
  JOIN teams AS t ON (f.team_id = t.id)
 WHERE t.project_id = $1
   AND f.deleted = false
   AND f.active = true`

// ListProjectFlags returns every live (not deleted, active) flag for the
// project. A project may span multiple teams; the join resolves project to
// team. Zero rows is success with an empty list, even for an unknown
// project id. A single row with undecodable filters aborts the whole fetch:
// the project's flag set is all-or-nothing.
func (store *Store) ListProjectFlags(ctx context.Context, projectID int64) ([]flagmodel.Flag, error) {
	conn, err := store.connPool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: acquire connection for project %d: %w", ErrStoreUnavailable, projectID, err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, listProjectFlagsQuery, projectID)
	if err != nil {
		return nil, fmt.Errorf("query flags for project %d: %w", projectID, err)
	}
	defer rows.Close()

	flags := []flagmodel.Flag{}
	for rows.Next() {
		var (
			flag       flagmodel.Flag
			rawFilters []byte
		)
		if err := rows.Scan(
			&flag.ID,
			&flag.TeamID,
			&flag.Name,
			&flag.Key,
			&rawFilters,
			&flag.Deleted,
			&flag.Active,
			&flag.EnsureExperienceContinuity,
			&flag.Version,
		); err != nil {
			return nil, fmt.Errorf("scan flag row for project %d: %w", projectID, err)
		}
		if err := json.Unmarshal(rawFilters, &flag.Filters); err != nil {
			slog.Error("failed to decode filters for flag",
				slog.String("key", flag.Key),
				slog.Int64("projectID", projectID),
				slog.Int64("teamID", flag.TeamID),
				slog.Any("error", err))
			return nil, &FilterDecodeError{FlagKey: flag.Key, TeamID: flag.TeamID, Err: err}
		}
		flags = append(flags, flag)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read flag rows for project %d: %w", projectID, err)
	}
	return flags, nil
}

// ListProjectIDs returns every distinct project id that has at least one
// team, for sweep-style refreshes across the whole deployment.
func (store *Store) ListProjectIDs(ctx context.Context) ([]int64, error) {
	rows, err := store.connPool.Query(ctx, `SELECT DISTINCT project_id FROM teams ORDER BY project_id`)
	if err != nil {
		return nil, fmt.Errorf("query project ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan project id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read project id rows: %w", err)
	}
	return ids, nil
}
