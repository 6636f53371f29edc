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

package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/cardinalhq/flagrunner/config"
	"github.com/cardinalhq/flagrunner/flagdb"
	"github.com/cardinalhq/flagrunner/flagstore"
)

func init() {
	cmd := &cobra.Command{
		Use:   "sync-flags",
		Short: "Periodically refresh the flag cache from the database",
		RunE: func(_ *cobra.Command, _ []string) error {
			servicename := "flagrunner-sync-flags"
			doneCtx, doneFx, err := setupTelemetry(servicename)
			if err != nil {
				return fmt.Errorf("failed to setup telemetry: %w", err)
			}

			defer func() {
				if err := doneFx(); err != nil {
					slog.Error("Error shutting down telemetry", slog.Any("error", err))
				}
			}()

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			store, err := flagdb.FlagDBStore(doneCtx)
			if err != nil {
				return fmt.Errorf("failed to connect to flagdb: %w", err)
			}
			defer store.Close()

			client := redis.NewClient(&redis.Options{
				Addr:     cfg.Redis.Addr,
				Password: cfg.Redis.Password,
				DB:       cfg.Redis.DB,
			})
			defer func() {
				_ = client.Close()
			}()

			resolver := flagstore.NewResolver(flagstore.NewCache(client, cfg.Redis.KeyPrefix), store)
			return runFlagSync(doneCtx, store, resolver, cfg.FlagSync.Interval)
		},
	}

	rootCmd.AddCommand(cmd)
}

// runFlagSync refreshes every project's cached flag list on each tick. One
// project's refresh failure is logged and does not stop the sweep or the
// loop; the cache keeps serving that project's previous payload until a
// later pass succeeds.
func runFlagSync(ctx context.Context, store *flagdb.Store, resolver *flagstore.Resolver, interval time.Duration) error {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		projectIDs, err := store.ListProjectIDs(ctx)
		if err != nil {
			slog.Error("failed to list project ids", slog.Any("error", err))
		}
		for _, projectID := range projectIDs {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			flags, err := resolver.RefreshProjectFlags(ctx, projectID)
			if err != nil {
				slog.Error("failed to refresh project flags",
					slog.Int64("projectID", projectID),
					slog.Any("error", err))
				continue
			}
			slog.Debug("refreshed project flags",
				slog.Int64("projectID", projectID),
				slog.Int("count", len(flags)))
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
