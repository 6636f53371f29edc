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
	"fmt"

	radix "github.com/armon/go-radix"
	"github.com/fxamacker/cbor/v2"
)

// Index is a radix-trie membership index over encoded property keys. It is
// used purely for membership and prefix queries; no values are stored. Not
// safe for concurrent mutation; each builder run owns its index
// exclusively.
type Index struct {
	tree *radix.Tree
}

// NewIndex returns an empty index.
func NewIndex() *Index {
	return &Index{tree: radix.New()}
}

// Insert adds an encoded key. Inserting an existing key is a no-op.
func (ix *Index) Insert(key string) {
	ix.tree.Insert(key, struct{}{})
}

// Contains reports whether the exact key is present.
func (ix *Index) Contains(key string) bool {
	_, ok := ix.tree.Get(key)
	return ok
}

// Len returns the number of distinct keys.
func (ix *Index) Len() int {
	return ix.tree.Len()
}

// WalkPartition visits every property name in one (type, group type index)
// partition in lexical order. The walk stops early when fn returns true.
func (ix *Index) WalkPartition(propertyType int16, groupTypeIndex *int16, fn func(name string) bool) error {
	prefix, err := PartitionPrefix(propertyType, groupTypeIndex)
	if err != nil {
		return err
	}
	ix.tree.WalkPrefix(prefix, func(key string, _ interface{}) bool {
		return fn(key[len(prefix):])
	})
	return nil
}

// Keys returns all keys in lexical order.
func (ix *Index) Keys() []string {
	keys := make([]string, 0, ix.tree.Len())
	ix.tree.Walk(func(key string, _ interface{}) bool {
		keys = append(keys, key)
		return false
	})
	return keys
}

// Serialize encodes the index as a CBOR array of its keys.
func (ix *Index) Serialize() ([]byte, error) {
	data, err := cbor.Marshal(ix.Keys())
	if err != nil {
		return nil, fmt.Errorf("serialize index: %w", err)
	}
	return data, nil
}

// DeserializeIndex rebuilds an index from a serialized blob. A nil or empty
// blob is an empty index, matching a record that has never been built.
func DeserializeIndex(data []byte) (*Index, error) {
	ix := NewIndex()
	if len(data) == 0 {
		return ix, nil
	}
	var keys []string
	if err := cbor.Unmarshal(data, &keys); err != nil {
		return nil, fmt.Errorf("deserialize index: %w", err)
	}
	for _, key := range keys {
		ix.Insert(key)
	}
	return ix, nil
}
