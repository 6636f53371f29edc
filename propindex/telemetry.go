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
	"context"
	"log"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	batchFetchAttempts metric.Int64Counter
	runsFinished       metric.Int64Counter
)

func init() {
	meter := otel.Meter("github.com/cardinalhq/flagrunner/propindex")

	var err error

	batchFetchAttempts, err = meter.Int64Counter(
		"flagrunner.propindex.batch_fetch_attempts",
		metric.WithDescription("Property definition page fetch attempts, by result"),
	)
	if err != nil {
		log.Fatalf("failed to create propindex.batch_fetch_attempts counter: %v", err)
	}

	runsFinished, err = meter.Int64Counter(
		"flagrunner.propindex.runs_finished",
		metric.WithDescription("Index builder runs finished, by terminal status"),
	)
	if err != nil {
		log.Fatalf("failed to create propindex.runs_finished counter: %v", err)
	}
}

// OTelMetricsSink records batch-fetch outcomes on the package meter. It is
// the production MetricsSink.
type OTelMetricsSink struct{}

// NewOTelMetricsSink returns the production metrics sink.
func NewOTelMetricsSink() OTelMetricsSink {
	return OTelMetricsSink{}
}

func (OTelMetricsSink) RecordBatchFetchAttempt(ctx context.Context, result string) {
	batchFetchAttempts.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
}

func recordRunFinished(ctx context.Context, status Status) {
	runsFinished.Add(ctx, 1, metric.WithAttributes(attribute.String("status", string(status))))
}
