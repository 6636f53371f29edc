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

package propindex

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cardinalhq/flagrunner/flagdb"
)

func gtiPtr(v int16) *int16 {
	return &v
}

func TestEntryFromDefinition(t *testing.T) {
	tests := []struct {
		name    string
		row     flagdb.PropertyDefinitionRow
		wantKey string
		wantErr bool
	}{
		{
			name:    "no group type index",
			row:     flagdb.PropertyDefinitionRow{Name: "email", Type: 1},
			wantKey: "1Xemail",
		},
		{
			name:    "with group type index",
			row:     flagdb.PropertyDefinitionRow{Name: "plan", Type: 3, GroupTypeIndex: gtiPtr(2)},
			wantKey: "32plan",
		},
		{
			name:    "empty name is a valid key",
			row:     flagdb.PropertyDefinitionRow{Name: "", Type: 0},
			wantKey: "0X",
		},
		{
			name:    "type out of digit range",
			row:     flagdb.PropertyDefinitionRow{Name: "x", Type: 12},
			wantErr: true,
		},
		{
			name:    "negative group type index",
			row:     flagdb.PropertyDefinitionRow{Name: "x", Type: 1, GroupTypeIndex: gtiPtr(-1)},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry, err := EntryFromDefinition(tt.row)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.wantKey, entry.Key())
		})
	}
}

func TestKeysAreCollisionFree(t *testing.T) {
	// The discriminators are fixed width, so a name starting with a digit
	// can never masquerade as a different partition.
	a, err := EntryFromDefinition(flagdb.PropertyDefinitionRow{Name: "2foo", Type: 1})
	require.NoError(t, err)
	b, err := EntryFromDefinition(flagdb.PropertyDefinitionRow{Name: "foo", Type: 1, GroupTypeIndex: gtiPtr(2)})
	require.NoError(t, err)
	require.NotEqual(t, a.Key(), b.Key())
}

func TestPartitionPrefix(t *testing.T) {
	prefix, err := PartitionPrefix(1, nil)
	require.NoError(t, err)
	require.Equal(t, "1X", prefix)

	prefix, err = PartitionPrefix(3, gtiPtr(7))
	require.NoError(t, err)
	require.Equal(t, "37", prefix)

	_, err = PartitionPrefix(10, nil)
	require.Error(t, err)
}
