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

package flagstore

import (
	"context"
	"errors"
	"log"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	cacheReads        metric.Int64Counter
	writeBackFailures metric.Int64Counter
)

func init() {
	meter := otel.Meter("github.com/cardinalhq/flagrunner/flagstore")

	var err error

	cacheReads, err = meter.Int64Counter(
		"flagrunner.flags.cache_reads",
		metric.WithDescription("Flag cache read outcomes, by result"),
	)
	if err != nil {
		log.Fatalf("failed to create flags.cache_reads counter: %v", err)
	}

	writeBackFailures, err = meter.Int64Counter(
		"flagrunner.flags.cache_write_back_failures",
		metric.WithDescription("Number of failed flag cache write-backs"),
	)
	if err != nil {
		log.Fatalf("failed to create flags.cache_write_back_failures counter: %v", err)
	}
}

func recordCacheHit(ctx context.Context) {
	cacheReads.Add(ctx, 1, metric.WithAttributes(attribute.String("result", "hit")))
}

func recordCacheFallback(ctx context.Context, err error) {
	reason := "miss"
	if errors.Is(err, ErrCacheUnavailable) {
		reason = "unavailable"
	}
	cacheReads.Add(ctx, 1, metric.WithAttributes(attribute.String("result", reason)))
}

func recordWriteBackFailure(ctx context.Context) {
	writeBackFailures.Add(ctx, 1)
}
