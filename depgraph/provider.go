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

// Package depgraph defines the capability contract between reference-carrying
// entities (flags today, cohorts later) and the generic dependency-graph
// builder that enforces acyclic, correctly-ordered evaluation. The graph and
// cycle-detection machinery itself lives outside this module; keeping the
// contract entity-agnostic is what lets it stay that way.
package depgraph

import (
	mapset "github.com/deckarep/golang-set/v2"
)

// Kind tags which reference relation a provider's dependencies describe.
type Kind string

const (
	// KindFlag marks flag-on-flag references.
	KindFlag Kind = "flag"
	// KindCohort is reserved for cohort-on-cohort references.
	KindCohort Kind = "cohort"
)

// DependencyProvider is implemented once per entity kind. Dependencies
// returns the set of ids the entity references; the error return is part of
// the contract so that stricter parsers can report malformed reference
// structure without an interface change.
type DependencyProvider[ID comparable] interface {
	DependencyID() ID
	Dependencies() (mapset.Set[ID], error)
	DependencyKind() Kind
}
