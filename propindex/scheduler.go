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
	"log/slog"
	"time"

	"github.com/jellydator/ttlcache/v3"
	"golang.org/x/sync/errgroup"

	"github.com/cardinalhq/flagrunner/flagdb"
)

const (
	// DefaultScanInterval is how often the scheduler sweeps all teams.
	DefaultScanInterval = 6 * time.Hour

	// DefaultParallelism bounds concurrent per-team builder runs.
	DefaultParallelism = 4

	// DefaultBlockedTTL is how long a team stays in the blocked skip cache
	// before its record is consulted again.
	DefaultBlockedTTL = 24 * time.Hour
)

// TeamLister enumerates all team ids. flagdb.Store satisfies it.
type TeamLister interface {
	ListTeamIDs(ctx context.Context) ([]int64, error)
}

// RecordReader loads a team's index record. flagdb.Store satisfies it.
type RecordReader interface {
	GetTeamPropertyIndex(ctx context.Context, teamID int64) (*flagdb.TeamPropertyIndex, error)
}

// SchedulerConfig holds the sweep policy.
type SchedulerConfig struct {
	ScanInterval time.Duration `mapstructure:"scan_interval"`
	Parallelism  int           `mapstructure:"parallelism"`
	BlockedTTL   time.Duration `mapstructure:"blocked_ttl"`
}

// DefaultSchedulerConfig returns the production sweep policy.
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		ScanInterval: DefaultScanInterval,
		Parallelism:  DefaultParallelism,
		BlockedTTL:   DefaultBlockedTTL,
	}
}

// Scheduler sweeps all teams and rebuilds each team's property index with
// bounded parallelism. Teams whose record is blocked are skipped for a TTL
// window instead of being rescanned every sweep. One team's failed run is
// logged and never blocks other teams.
type Scheduler struct {
	teams   TeamLister
	records RecordReader
	builder *Builder
	cfg     SchedulerConfig

	blocked *ttlcache.Cache[int64, struct{}]
}

// NewScheduler wires a scheduler around an existing builder.
func NewScheduler(teams TeamLister, records RecordReader, builder *Builder, cfg SchedulerConfig) *Scheduler {
	if cfg.ScanInterval <= 0 {
		cfg.ScanInterval = DefaultScanInterval
	}
	if cfg.Parallelism <= 0 {
		cfg.Parallelism = DefaultParallelism
	}
	if cfg.BlockedTTL <= 0 {
		cfg.BlockedTTL = DefaultBlockedTTL
	}
	blocked := ttlcache.New(
		ttlcache.WithTTL[int64, struct{}](cfg.BlockedTTL),
		ttlcache.WithDisableTouchOnHit[int64, struct{}](),
	)
	go blocked.Start()
	return &Scheduler{
		teams:   teams,
		records: records,
		builder: builder,
		cfg:     cfg,
		blocked: blocked,
	}
}

// Run sweeps immediately and then on every scan interval tick until the
// context is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	defer s.blocked.Stop()

	ticker := time.NewTicker(s.cfg.ScanInterval)
	defer ticker.Stop()

	for {
		if err := s.RunOnce(ctx); err != nil {
			slog.Error("property index sweep failed", slog.Any("error", err))
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// RunOnce sweeps every team exactly once. It returns an error only when the
// team listing itself fails or the context is cancelled; per-team run
// failures are logged and counted but do not abort the sweep.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	teamIDs, err := s.teams.ListTeamIDs(ctx)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Parallelism)
	for _, teamID := range teamIDs {
		g.Go(func() error {
			s.sweepTeam(gctx, teamID)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

func (s *Scheduler) sweepTeam(ctx context.Context, teamID int64) {
	if ctx.Err() != nil {
		return
	}
	if s.blocked.Has(teamID) {
		return
	}

	rec, err := s.records.GetTeamPropertyIndex(ctx, teamID)
	if err != nil {
		slog.Error("failed to load property index record",
			slog.Int64("teamID", teamID),
			slog.Any("error", err))
		return
	}
	if rec != nil && rec.Blocked {
		s.blocked.Set(teamID, struct{}{}, ttlcache.DefaultTTL)
		return
	}

	result, err := s.builder.BuildTeam(ctx, teamID)
	recordRunFinished(ctx, result.Status)
	if err != nil {
		slog.Error("property index run failed",
			slog.Int64("teamID", teamID),
			slog.Any("error", err))
		return
	}
	if result.Status == StatusCapped {
		s.blocked.Set(teamID, struct{}{}, ttlcache.DefaultTTL)
	}
	slog.Info("property index run finished",
		slog.Int64("teamID", teamID),
		slog.String("status", string(result.Status)),
		slog.Int("definitions", int(result.DefinitionCount)))
}
