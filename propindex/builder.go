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
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/cardinalhq/flagrunner/flagdb"
)

const (
	// DefaultBatchSize is the fixed page size for property-definition scans.
	DefaultBatchSize int64 = 1000

	// DefaultCardinalityCap bounds how many definitions one team may index.
	// Teams past the cap are outliers and get demoted to blocked; further
	// passes for them are skipped.
	DefaultCardinalityCap int64 = 100_000

	// DefaultMaxFetchAttempts is the per-page retry budget.
	DefaultMaxFetchAttempts = 5

	// DefaultRetryDelay is the base inter-attempt delay; the actual delay
	// grows linearly with the attempt number.
	DefaultRetryDelay = 100 * time.Millisecond
)

// PageFetcher fetches one bounded page of a team's property definitions.
// flagdb.Store satisfies it.
type PageFetcher interface {
	ListPropertyDefinitionsPage(ctx context.Context, teamID int64, limit, offset int64) ([]flagdb.PropertyDefinitionRow, error)
}

// RecordWriter persists the per-team index record. flagdb.Store satisfies
// it.
type RecordWriter interface {
	UpsertTeamPropertyIndex(ctx context.Context, rec flagdb.TeamPropertyIndex) error
}

// MetricsSink receives batch-fetch attempt outcomes. Injected rather than
// global so callers own metric wiring; see NewOTelMetricsSink.
type MetricsSink interface {
	RecordBatchFetchAttempt(ctx context.Context, result string)
}

// NopMetricsSink discards all observations.
type NopMetricsSink struct{}

func (NopMetricsSink) RecordBatchFetchAttempt(context.Context, string) {}

// Status is the terminal state of one builder run.
type Status string

const (
	// StatusComplete means the scan exhausted the table and the record was
	// upserted with blocked=false.
	StatusComplete Status = "complete"
	// StatusCapped means the scan hit the cardinality cap first; the record
	// reflects the point-in-time index with blocked=true.
	StatusCapped Status = "capped"
	// StatusFailed means a page fetch exhausted its retry budget or the
	// record write failed; nothing was persisted and the prior record, if
	// any, remains authoritative.
	StatusFailed Status = "failed"
)

// RunResult summarizes one per-team builder run.
type RunResult struct {
	TeamID          int64
	Status          Status
	DefinitionCount int32
	Index           *Index
}

// Config holds the builder's scan and retry policy.
type Config struct {
	BatchSize        int64         `mapstructure:"batch_size"`
	CardinalityCap   int64         `mapstructure:"cardinality_cap"`
	MaxFetchAttempts int           `mapstructure:"max_fetch_attempts"`
	RetryDelay       time.Duration `mapstructure:"retry_delay"`
}

// DefaultConfig returns the production policy.
func DefaultConfig() Config {
	return Config{
		BatchSize:        DefaultBatchSize,
		CardinalityCap:   DefaultCardinalityCap,
		MaxFetchAttempts: DefaultMaxFetchAttempts,
		RetryDelay:       DefaultRetryDelay,
	}
}

// Builder rebuilds one team's property index per run: a full offset scan
// from zero to exhaustion, cap, or failure. Runs for the same team must be
// serialized externally; concurrent runs race on the final upsert with
// last-writer-wins.
type Builder struct {
	fetcher PageFetcher
	records RecordWriter
	metrics MetricsSink
	cfg     Config
}

// NewBuilder wires a builder. A nil metrics sink falls back to
// NopMetricsSink.
func NewBuilder(fetcher PageFetcher, records RecordWriter, metrics MetricsSink, cfg Config) *Builder {
	if metrics == nil {
		metrics = NopMetricsSink{}
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.CardinalityCap <= 0 {
		cfg.CardinalityCap = DefaultCardinalityCap
	}
	if cfg.MaxFetchAttempts <= 0 {
		cfg.MaxFetchAttempts = DefaultMaxFetchAttempts
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = DefaultRetryDelay
	}
	return &Builder{fetcher: fetcher, records: records, metrics: metrics, cfg: cfg}
}

// BuildTeam runs one full index-building pass for the team. On complete or
// capped the freshly built trie is serialized and the team's record is
// upserted wholesale; on failure nothing is persisted and the partial trie
// is discarded. Cancellation is honored at every page fetch and inter-retry
// delay, and a cancelled run never mutates the record.
func (b *Builder) BuildTeam(ctx context.Context, teamID int64) (RunResult, error) {
	idx := NewIndex()
	var offset int64
	var rowsScanned int64
	capped := false

	for {
		if offset >= b.cfg.CardinalityCap {
			slog.Warn("property index construction exceeded cardinality cap; marking team as blocked",
				slog.Int64("teamID", teamID),
				slog.Int64("cap", b.cfg.CardinalityCap))
			capped = true
			break
		}

		rows, err := b.fetchPage(ctx, teamID, offset)
		if err != nil {
			return RunResult{TeamID: teamID, Status: StatusFailed}, err
		}
		if len(rows) == 0 {
			break
		}

		for _, row := range rows {
			entry, err := EntryFromDefinition(row)
			if err != nil {
				slog.Warn("skipping unencodable property definition",
					slog.Int64("teamID", teamID),
					slog.Any("error", err))
				continue
			}
			idx.Insert(entry.Key())
		}
		rowsScanned += int64(len(rows))
		offset += b.cfg.BatchSize
	}

	definitionCount := rowsScanned
	if capped {
		// The record reflects the cap boundary, not the true larger total.
		definitionCount = b.cfg.CardinalityCap
	}

	trieBytes, err := idx.Serialize()
	if err != nil {
		return RunResult{TeamID: teamID, Status: StatusFailed}, err
	}

	rec := flagdb.TeamPropertyIndex{
		TeamID:          teamID,
		TrieBytes:       trieBytes,
		DefinitionCount: int32(definitionCount),
		Blocked:         capped,
		LastBuiltAt:     time.Now().UTC(),
	}
	if err := b.records.UpsertTeamPropertyIndex(ctx, rec); err != nil {
		return RunResult{TeamID: teamID, Status: StatusFailed}, err
	}

	status := StatusComplete
	if capped {
		status = StatusCapped
	}
	return RunResult{
		TeamID:          teamID,
		Status:          status,
		DefinitionCount: int32(definitionCount),
		Index:           idx,
	}, nil
}

// fetchPage retries transient failures up to the attempt budget. The delay
// before attempt n+1 is n times the base delay plus a jitter of at most half
// the base unit, so many teams' concurrent runs do not retry in lockstep.
func (b *Builder) fetchPage(ctx context.Context, teamID, offset int64) ([]flagdb.PropertyDefinitionRow, error) {
	for attempt := 1; ; attempt++ {
		rows, err := b.fetcher.ListPropertyDefinitionsPage(ctx, teamID, b.cfg.BatchSize, offset)
		if err == nil {
			b.metrics.RecordBatchFetchAttempt(ctx, "success")
			return rows, nil
		}
		if ctx.Err() != nil {
			b.metrics.RecordBatchFetchAttempt(ctx, "failed")
			return nil, fmt.Errorf("fetch page for team %d at offset %d: %w", teamID, offset, ctx.Err())
		}
		if attempt >= b.cfg.MaxFetchAttempts {
			b.metrics.RecordBatchFetchAttempt(ctx, "failed")
			slog.Error("failed to fetch property definition page past retry budget",
				slog.Int64("teamID", teamID),
				slog.Int64("offset", offset),
				slog.Int("attempts", attempt),
				slog.Any("error", err))
			return nil, fmt.Errorf("fetch page for team %d at offset %d after %d attempts: %w", teamID, offset, attempt, err)
		}

		b.metrics.RecordBatchFetchAttempt(ctx, "retry")
		delay := time.Duration(attempt)*b.cfg.RetryDelay + rand.N(b.cfg.RetryDelay/2+1)
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			b.metrics.RecordBatchFetchAttempt(ctx, "failed")
			return nil, fmt.Errorf("fetch page for team %d at offset %d: %w", teamID, offset, ctx.Err())
		case <-timer.C:
		}
	}
}
