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
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/cardinalhq/flagrunner/flagdb"
)

// testConfig keeps retries fast so failure paths do not slow the suite.
func testConfig() Config {
	return Config{
		BatchSize:        10,
		CardinalityCap:   100,
		MaxFetchAttempts: 5,
		RetryDelay:       time.Millisecond,
	}
}

type fakeFetcher struct {
	mu       sync.Mutex
	rows     []flagdb.PropertyDefinitionRow
	failures int // fail this many calls before succeeding
	calls    int
}

func (f *fakeFetcher) ListPropertyDefinitionsPage(_ context.Context, _ int64, limit, offset int64) ([]flagdb.PropertyDefinitionRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.failures > 0 {
		f.failures--
		return nil, errors.New("connection reset")
	}
	if offset >= int64(len(f.rows)) {
		return nil, nil
	}
	end := offset + limit
	if end > int64(len(f.rows)) {
		end = int64(len(f.rows))
	}
	return f.rows[offset:end], nil
}

type fakeWriter struct {
	mu      sync.Mutex
	records []flagdb.TeamPropertyIndex
	err     error
}

func (w *fakeWriter) UpsertTeamPropertyIndex(_ context.Context, rec flagdb.TeamPropertyIndex) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.records = append(w.records, rec)
	return nil
}

type countingSink struct {
	mu     sync.Mutex
	counts map[string]int
}

func newCountingSink() *countingSink {
	return &countingSink{counts: map[string]int{}}
}

func (s *countingSink) RecordBatchFetchAttempt(_ context.Context, result string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counts[result]++
}

func definitionRows(n int) []flagdb.PropertyDefinitionRow {
	rows := make([]flagdb.PropertyDefinitionRow, 0, n)
	for i := 0; i < n; i++ {
		rows = append(rows, flagdb.PropertyDefinitionRow{
			TeamID: 1,
			Name:   fmt.Sprintf("prop_%03d", i),
			Type:   1,
		})
	}
	return rows
}

func TestBuildTeamComplete(t *testing.T) {
	fetcher := &fakeFetcher{rows: definitionRows(25)}
	writer := &fakeWriter{}
	builder := NewBuilder(fetcher, writer, nil, testConfig())

	result, err := builder.BuildTeam(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, StatusComplete, result.Status)
	require.Equal(t, int32(25), result.DefinitionCount)
	require.Equal(t, 25, result.Index.Len())
	require.True(t, result.Index.Contains("1Xprop_000"))

	require.Len(t, writer.records, 1)
	rec := writer.records[0]
	require.Equal(t, int64(1), rec.TeamID)
	require.False(t, rec.Blocked)
	require.Equal(t, int32(25), rec.DefinitionCount)
	require.False(t, rec.LastBuiltAt.IsZero())

	// The persisted blob rebuilds the same index.
	got, err := DeserializeIndex(rec.TrieBytes)
	require.NoError(t, err)
	require.Equal(t, result.Index.Keys(), got.Keys())
}

func TestBuildTeamEmptyTeam(t *testing.T) {
	fetcher := &fakeFetcher{}
	writer := &fakeWriter{}
	builder := NewBuilder(fetcher, writer, nil, testConfig())

	result, err := builder.BuildTeam(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, StatusComplete, result.Status)
	require.Equal(t, int32(0), result.DefinitionCount)
	require.Len(t, writer.records, 1)
}

func TestBuildTeamCapped(t *testing.T) {
	// 150 rows against a cap of 100: offsets 0..90 scan a full hundred, and
	// the next iteration trips the cap check before fetching.
	fetcher := &fakeFetcher{rows: definitionRows(150)}
	writer := &fakeWriter{}
	builder := NewBuilder(fetcher, writer, nil, testConfig())

	result, err := builder.BuildTeam(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, StatusCapped, result.Status)
	// The recorded count is the cap boundary, not the true table size.
	require.Equal(t, int32(100), result.DefinitionCount)
	require.Equal(t, 100, result.Index.Len())

	require.Len(t, writer.records, 1)
	require.True(t, writer.records[0].Blocked)
	require.Equal(t, int32(100), writer.records[0].DefinitionCount)
}

func TestBuildTeamRetriesThenSucceeds(t *testing.T) {
	fetcher := &fakeFetcher{rows: definitionRows(5), failures: 4}
	writer := &fakeWriter{}
	sink := newCountingSink()
	builder := NewBuilder(fetcher, writer, sink, testConfig())

	result, err := builder.BuildTeam(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, StatusComplete, result.Status)
	require.Equal(t, int32(5), result.DefinitionCount)

	require.Equal(t, 4, sink.counts["retry"])
	require.Equal(t, 0, sink.counts["failed"])
	// One success for the data page, one for the terminating empty page.
	require.Equal(t, 2, sink.counts["success"])
}

func TestBuildTeamRetryBudgetExhausted(t *testing.T) {
	fetcher := &fakeFetcher{rows: definitionRows(5), failures: 5}
	writer := &fakeWriter{}
	sink := newCountingSink()
	builder := NewBuilder(fetcher, writer, sink, testConfig())

	result, err := builder.BuildTeam(context.Background(), 1)
	require.Error(t, err)
	require.Equal(t, StatusFailed, result.Status)
	require.Nil(t, result.Index)

	// A failed run never mutates the record.
	require.Empty(t, writer.records)
	require.Equal(t, 4, sink.counts["retry"])
	require.Equal(t, 1, sink.counts["failed"])
}

func TestBuildTeamCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fetcher := &fakeFetcher{rows: definitionRows(5), failures: 1}
	writer := &fakeWriter{}
	builder := NewBuilder(fetcher, writer, nil, testConfig())

	result, err := builder.BuildTeam(ctx, 1)
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, StatusFailed, result.Status)
	require.Empty(t, writer.records)
}

func TestBuildTeamRecordWriteFailure(t *testing.T) {
	writeErr := errors.New("record table unavailable")
	fetcher := &fakeFetcher{rows: definitionRows(5)}
	writer := &fakeWriter{err: writeErr}
	builder := NewBuilder(fetcher, writer, nil, testConfig())

	result, err := builder.BuildTeam(context.Background(), 1)
	require.ErrorIs(t, err, writeErr)
	require.Equal(t, StatusFailed, result.Status)
}

func TestBuildTeamSkipsUnencodableRows(t *testing.T) {
	rows := definitionRows(3)
	rows[1].Type = 12 // outside the single-digit discriminator range
	fetcher := &fakeFetcher{rows: rows}
	writer := &fakeWriter{}
	builder := NewBuilder(fetcher, writer, nil, testConfig())

	result, err := builder.BuildTeam(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, StatusComplete, result.Status)
	// The scan count includes the skipped row; only the trie excludes it.
	require.Equal(t, int32(3), result.DefinitionCount)
	require.Equal(t, 2, result.Index.Len())
}

func TestNewBuilderDefaults(t *testing.T) {
	builder := NewBuilder(&fakeFetcher{}, &fakeWriter{}, nil, Config{})
	require.Equal(t, DefaultBatchSize, builder.cfg.BatchSize)
	require.Equal(t, DefaultCardinalityCap, builder.cfg.CardinalityCap)
	require.Equal(t, DefaultMaxFetchAttempts, builder.cfg.MaxFetchAttempts)
	require.Equal(t, DefaultRetryDelay, builder.cfg.RetryDelay)
	require.NotNil(t, builder.metrics)
}
