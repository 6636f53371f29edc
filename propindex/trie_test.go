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
)

func TestIndexInsertAndContains(t *testing.T) {
	ix := NewIndex()
	require.Equal(t, 0, ix.Len())
	require.False(t, ix.Contains("1Xemail"))

	ix.Insert("1Xemail")
	ix.Insert("1Xname")
	ix.Insert("1Xemail") // duplicate is a no-op

	require.Equal(t, 2, ix.Len())
	require.True(t, ix.Contains("1Xemail"))
	require.True(t, ix.Contains("1Xname"))
	require.False(t, ix.Contains("1Xemai"))
}

func TestWalkPartition(t *testing.T) {
	ix := NewIndex()
	ix.Insert("1Xemail")
	ix.Insert("1Xname")
	ix.Insert("12plan")
	ix.Insert("2Xevent_prop")

	var names []string
	err := ix.WalkPartition(1, nil, func(name string) bool {
		names = append(names, name)
		return false
	})
	require.NoError(t, err)
	require.Equal(t, []string{"email", "name"}, names)

	names = nil
	err = ix.WalkPartition(1, gtiPtr(2), func(name string) bool {
		names = append(names, name)
		return false
	})
	require.NoError(t, err)
	require.Equal(t, []string{"plan"}, names)

	names = nil
	err = ix.WalkPartition(9, nil, func(name string) bool {
		names = append(names, name)
		return false
	})
	require.NoError(t, err)
	require.Empty(t, names)
}

func TestWalkPartitionEarlyStop(t *testing.T) {
	ix := NewIndex()
	ix.Insert("1Xa")
	ix.Insert("1Xb")
	ix.Insert("1Xc")

	var seen int
	err := ix.WalkPartition(1, nil, func(string) bool {
		seen++
		return seen == 2
	})
	require.NoError(t, err)
	require.Equal(t, 2, seen)
}

func TestSerializeRoundTrip(t *testing.T) {
	ix := NewIndex()
	ix.Insert("1Xemail")
	ix.Insert("32plan")
	ix.Insert("1Xутф-свойство")

	data, err := ix.Serialize()
	require.NoError(t, err)

	got, err := DeserializeIndex(data)
	require.NoError(t, err)
	require.Equal(t, ix.Keys(), got.Keys())
	require.True(t, got.Contains("1Xутф-свойство"))
}

func TestDeserializeEmptyBlob(t *testing.T) {
	ix, err := DeserializeIndex(nil)
	require.NoError(t, err)
	require.Equal(t, 0, ix.Len())

	ix, err = DeserializeIndex([]byte{})
	require.NoError(t, err)
	require.Equal(t, 0, ix.Len())
}

func TestDeserializeGarbage(t *testing.T) {
	_, err := DeserializeIndex([]byte("not cbor at all"))
	require.Error(t, err)
}
