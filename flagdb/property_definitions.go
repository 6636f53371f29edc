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
	"fmt"
)

// PropertyDefinitionRow is one team-scoped property declaration. Type is a
// small discriminant enumerating person/event/group property kinds;
// GroupTypeIndex is only set for group properties.
type PropertyDefinitionRow struct {
	TeamID         int64
	Name           string
	Type           int16
	GroupTypeIndex *int16
}

const listPropertyDefinitionsPageQuery = `
SELECT team_id, name, type, group_type_index
  FROM property_definitions
 WHERE team_id = $1
 ORDER BY id
 LIMIT $2 OFFSET $3`

// ListPropertyDefinitionsPage returns one page of a team's property
// definitions. Pagination is offset-based over a stable sort by definition
// id, which guarantees no skipped or duplicated rows only while the table is
// not concurrently mutated; that approximation is an accepted limitation of
// the index builder.
func (store *Store) ListPropertyDefinitionsPage(ctx context.Context, teamID int64, limit, offset int64) ([]PropertyDefinitionRow, error) {
	rows, err := store.connPool.Query(ctx, listPropertyDefinitionsPageQuery, teamID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("query property definitions for team %d at offset %d: %w", teamID, offset, err)
	}
	defer rows.Close()

	var defs []PropertyDefinitionRow
	for rows.Next() {
		var row PropertyDefinitionRow
		if err := rows.Scan(&row.TeamID, &row.Name, &row.Type, &row.GroupTypeIndex); err != nil {
			return nil, fmt.Errorf("scan property definition for team %d: %w", teamID, err)
		}
		defs = append(defs, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read property definitions for team %d: %w", teamID, err)
	}
	return defs, nil
}

// ListTeamIDs returns every team id known to the store, feeding the index
// builder scheduler.
func (store *Store) ListTeamIDs(ctx context.Context) ([]int64, error) {
	rows, err := store.connPool.Query(ctx, `SELECT id FROM teams ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query team ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan team id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read team ids: %w", err)
	}
	return ids, nil
}
