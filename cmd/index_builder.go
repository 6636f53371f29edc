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
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/cardinalhq/flagrunner/config"
	"github.com/cardinalhq/flagrunner/flagdb"
	"github.com/cardinalhq/flagrunner/propindex"
)

func init() {
	cmd := &cobra.Command{
		Use:   "index-builder",
		Short: "Maintain per-team property definition indexes",
		RunE: func(_ *cobra.Command, _ []string) error {
			servicename := "flagrunner-index-builder"
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

			builder := propindex.NewBuilder(store, store, propindex.NewOTelMetricsSink(), cfg.PropertyIndex.Builder)
			scheduler := propindex.NewScheduler(store, store, builder, cfg.PropertyIndex.Scheduler)
			return scheduler.Run(doneCtx)
		},
	}

	rootCmd.AddCommand(cmd)
}
