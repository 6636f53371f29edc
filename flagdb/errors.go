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
	"errors"
	"fmt"
)

var (
	// ErrStoreUnavailable indicates the authoritative store could not be
	// reached. Distinct from a reachable store returning zero rows, which
	// is success.
	ErrStoreUnavailable = errors.New("flag store unavailable")

	// ErrFilterDecode indicates a flag row's filters JSON did not match the
	// FilterSpec shape. One bad row aborts the whole project fetch; partial
	// flag lists are never returned.
	ErrFilterDecode = errors.New("flag filters failed to decode")
)

// FilterDecodeError identifies the row that poisoned a project fetch.
type FilterDecodeError struct {
	FlagKey string
	TeamID  int64
	Err     error
}

func (e *FilterDecodeError) Error() string {
	return fmt.Sprintf("decode filters for flag %q (team %d): %v", e.FlagKey, e.TeamID, e.Err)
}

func (e *FilterDecodeError) Unwrap() []error {
	return []error{ErrFilterDecode, e.Err}
}
