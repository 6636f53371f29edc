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

// Package propindex maintains a compact per-team membership index over the
// property-definition table. The index answers "has this team ever declared
// this property" and bounds total property cardinality per team.
package propindex

import (
	"fmt"

	"github.com/cardinalhq/flagrunner/flagdb"
)

// groupTypeIndexAbsent is the sentinel discriminator for definitions with no
// group type index. It must stay outside the '0'-'9' range used for present
// indexes.
const groupTypeIndexAbsent = 'X'

// Entry is a property definition's index key parts: two fixed-width
// single-byte discriminators followed by the free-form property name. The
// fixed width is what makes the concatenation collision-free; two distinct
// (type, name) pairs can never encode to the same key.
type Entry struct {
	PropertyType   byte
	GroupTypeIndex byte
	Name           string
}

// EntryFromDefinition maps a definition row to its index key parts. The
// property type must be a single decimal digit; the group type index is the
// same, or the absent sentinel.
func EntryFromDefinition(row flagdb.PropertyDefinitionRow) (Entry, error) {
	pt, err := digitDiscriminant(row.Type)
	if err != nil {
		return Entry{}, fmt.Errorf("property type for %q: %w", row.Name, err)
	}
	gti := byte(groupTypeIndexAbsent)
	if row.GroupTypeIndex != nil {
		gti, err = digitDiscriminant(*row.GroupTypeIndex)
		if err != nil {
			return Entry{}, fmt.Errorf("group type index for %q: %w", row.Name, err)
		}
	}
	return Entry{PropertyType: pt, GroupTypeIndex: gti, Name: row.Name}, nil
}

// Key concatenates the discriminators and the name into the trie key. Keys
// sharing a (type, group type index) prefix cluster together in the trie,
// which is what enables partitioned prefix lookups.
func (e Entry) Key() string {
	return string([]byte{e.PropertyType, e.GroupTypeIndex}) + e.Name
}

// PartitionPrefix returns the two-byte key prefix for a (type, group type
// index) partition, for use with prefix queries.
func PartitionPrefix(propertyType int16, groupTypeIndex *int16) (string, error) {
	pt, err := digitDiscriminant(propertyType)
	if err != nil {
		return "", err
	}
	gti := byte(groupTypeIndexAbsent)
	if groupTypeIndex != nil {
		gti, err = digitDiscriminant(*groupTypeIndex)
		if err != nil {
			return "", err
		}
	}
	return string([]byte{pt, gti}), nil
}

func digitDiscriminant(n int16) (byte, error) {
	if n < 0 || n > 9 {
		return 0, fmt.Errorf("discriminant %d out of single-digit range", n)
	}
	return '0' + byte(n), nil
}
