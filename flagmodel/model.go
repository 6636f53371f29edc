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

// Package flagmodel defines the immutable value types describing a feature
// flag and its filter tree, plus the pure accessors used by the rest of the
// control plane. Nothing in this package touches the network or a database.
package flagmodel

import "encoding/json"

// Operator enumerates the comparison operators a property filter may carry.
// Unknown operators are preserved as-is on decode so that newer authoring
// systems do not break older readers.
type Operator string

const (
	OperatorExact        Operator = "exact"
	OperatorIsNot        Operator = "is_not"
	OperatorIcontains    Operator = "icontains"
	OperatorNotIcontains Operator = "not_icontains"
	OperatorRegex        Operator = "regex"
	OperatorNotRegex     Operator = "not_regex"
	OperatorGt           Operator = "gt"
	OperatorLt           Operator = "lt"
	OperatorGte          Operator = "gte"
	OperatorLte          Operator = "lte"
	OperatorIsSet        Operator = "is_set"
	OperatorIsNotSet     Operator = "is_not_set"
	OperatorIsDateExact  Operator = "is_date_exact"
	OperatorIsDateAfter  Operator = "is_date_after"
	OperatorIsDateBefore Operator = "is_date_before"
)

// PropertyType enumerates what kind of entity a property filter predicates
// over. The cohort and flag types are structural: they turn a filter into a
// reference to another entity rather than a value comparison.
type PropertyType string

const (
	PropertyTypePerson PropertyType = "person"
	PropertyTypeEvent  PropertyType = "event"
	PropertyTypeGroup  PropertyType = "group"
	PropertyTypeCohort PropertyType = "cohort"
	PropertyTypeFlag   PropertyType = "flag"
)

// PropertyFilter is a single predicate over a person/group/event attribute,
// or a reference to a cohort or another flag.
type PropertyFilter struct {
	Key            string          `json:"key"`
	Value          json.RawMessage `json:"value,omitempty"`
	Operator       *Operator       `json:"operator,omitempty"`
	Type           PropertyType    `json:"type"`
	GroupTypeIndex *int            `json:"group_type_index,omitempty"`
}

// PropertyGroup is one rollout condition set. Properties may be absent
// entirely, which is not the same thing as an empty list and is never an
// error. RolloutPercentage is in [0,100]; nil means no explicit rollout gate.
type PropertyGroup struct {
	Properties        []PropertyFilter `json:"properties"`
	RolloutPercentage *float64         `json:"rollout_percentage,omitempty"`
}

// Variant is one multivariate treatment. Rollout percentages are not
// validated to sum to 100 here; that is an authoring-side concern.
type Variant struct {
	Key               string  `json:"key"`
	Name              *string `json:"name,omitempty"`
	RolloutPercentage float64 `json:"rollout_percentage"`
}

// Multivariate holds the ordered variant list for a multivariate flag.
type Multivariate struct {
	Variants []Variant `json:"variants"`
}

// FilterSpec is the full filter tree owned by a flag. super_groups and
// holdout_groups are carried for the external evaluator's override/rollback
// semantics; this core only guarantees round-trip fidelity for them.
type FilterSpec struct {
	Groups                    []PropertyGroup            `json:"groups"`
	Multivariate              *Multivariate              `json:"multivariate,omitempty"`
	AggregationGroupTypeIndex *int                       `json:"aggregation_group_type_index,omitempty"`
	Payloads                  map[string]json.RawMessage `json:"payloads,omitempty"`
	SuperGroups               []PropertyGroup            `json:"super_groups,omitempty"`
	HoldoutGroups             []PropertyGroup            `json:"holdout_groups,omitempty"`
}

// Flag is a team-scoped configuration toggle with rollout rules. Keys are
// unique within a team, at most 400 bytes, and may be arbitrary Unicode.
type Flag struct {
	ID                         int64      `json:"id"`
	TeamID                     int64      `json:"team_id"`
	Name                       *string    `json:"name,omitempty"`
	Key                        string     `json:"key"`
	Filters                    FilterSpec `json:"filters"`
	Deleted                    bool       `json:"deleted"`
	Active                     bool       `json:"active"`
	EnsureExperienceContinuity bool       `json:"ensure_experience_continuity"`
	Version                    *int64     `json:"version,omitempty"`
}

// FlagList is the flag set for one project. Ordering is not meaningful and
// is not stable across the cache and the authoritative store; callers that
// need determinism must sort.
type FlagList struct {
	Flags []Flag `json:"flags"`
}
