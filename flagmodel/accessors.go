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

package flagmodel

import (
	"encoding/json"
	"strconv"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/cardinalhq/flagrunner/depgraph"
)

// IsCohort reports whether the filter is a cohort reference: the key is the
// literal "id" and the type is cohort. Any other shape, including a cohort
// type with a different key, is a plain value filter.
func (f PropertyFilter) IsCohort() bool {
	return f.Key == "id" && f.Type == PropertyTypeCohort
}

// CohortID returns the referenced cohort id. A filter that is not a cohort
// reference, or whose value is absent or non-numeric, yields (0, false);
// malformed references are non-matching, never fatal.
func (f PropertyFilter) CohortID() (int64, bool) {
	if !f.IsCohort() {
		return 0, false
	}
	return parseIntValue(f.Value)
}

// DependsOnFlag reports whether the filter references another feature flag.
func (f PropertyFilter) DependsOnFlag() bool {
	return f.Type == PropertyTypeFlag
}

// DependentFlagID returns the referenced flag id, parsed from the filter key.
// (0, false) when the filter is not a flag reference or the key is not an
// integer.
func (f PropertyFilter) DependentFlagID() (int64, bool) {
	if !f.DependsOnFlag() {
		return 0, false
	}
	id, err := strconv.ParseInt(f.Key, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// parseIntValue accepts a JSON number or a numeric JSON string. Anything
// else yields false.
func parseIntValue(raw json.RawMessage) (int64, bool) {
	if len(raw) == 0 {
		return 0, false
	}
	var n int64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, false
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// GroupTypeIndex returns the entity type the flag aggregates over, or nil
// for person-based flags.
func (fl *Flag) GroupTypeIndex() *int {
	return fl.Filters.AggregationGroupTypeIndex
}

// Conditions returns the flag's rollout condition groups in authoring order.
func (fl *Flag) Conditions() []PropertyGroup {
	return fl.Filters.Groups
}

// Variants returns the multivariate variant list, or an empty slice for a
// boolean flag. Never nil.
func (fl *Flag) Variants() []Variant {
	if fl.Filters.Multivariate == nil {
		return []Variant{}
	}
	return fl.Filters.Multivariate.Variants
}

// Payload returns the payload keyed by matchValue (a variant key or the
// boolean-match literal). The second return is false when no payloads exist
// or the key is absent.
func (fl *Flag) Payload(matchValue string) (json.RawMessage, bool) {
	if fl.Filters.Payloads == nil {
		return nil, false
	}
	p, ok := fl.Filters.Payloads[matchValue]
	return p, ok
}

// ExtractDependencies collects the deduplicated set of flag ids this flag's
// property filters reference, across every condition group. Cohort
// references are a different id space and are never merged in. Malformed
// flag references degrade to "no dependency"; the error return is reserved
// for stricter parsing and is currently always nil.
func (fl *Flag) ExtractDependencies() (mapset.Set[int64], error) {
	deps := mapset.NewSet[int64]()
	for _, group := range fl.Filters.Groups {
		for _, filter := range group.Properties {
			if id, ok := filter.DependentFlagID(); ok {
				deps.Add(id)
			}
		}
	}
	return deps, nil
}

// Flag satisfies depgraph.DependencyProvider so the external graph builder
// can order flag evaluation without any flag-specific code.
var _ depgraph.DependencyProvider[int64] = (*Flag)(nil)

func (fl *Flag) DependencyID() int64 {
	return fl.ID
}

func (fl *Flag) Dependencies() (mapset.Set[int64], error) {
	return fl.ExtractDependencies()
}

func (fl *Flag) DependencyKind() depgraph.Kind {
	return depgraph.KindFlag
}
