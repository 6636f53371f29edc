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

// Package instanceid mints per-process instance identifiers for telemetry
// attribution. IDs increase roughly in time order so log and metric streams
// from restarts sort naturally.
package instanceid

import (
	"math/rand/v2"
	"time"

	"github.com/sony/sonyflake"
)

var generator *sonyflake.Sonyflake

func init() {
	generator, _ = sonyflake.New(sonyflake.Settings{
		StartTime: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
	})
}

// Next returns a positive int64 instance id. When the flake generator is
// unavailable (no usable machine id, exhausted sequence) it falls back to a
// random id rather than failing; uniqueness here is best effort.
func Next() int64 {
	if generator != nil {
		if v, err := generator.NextID(); err == nil {
			return int64(v)
		}
	}
	return rand.Int64()
}
