// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/AleutianPlan/services/planner/bench"
	"github.com/AleutianAI/AleutianPlan/services/planner/solver"
	"github.com/AleutianAI/AleutianPlan/services/planner/storage/badger"
)

func (c *cli) newBenchCmd() *cobra.Command {
	var (
		out         string
		storeDir    string
		concurrency int
		planners    []string
	)
	cmd := &cobra.Command{
		Use:   "bench <task-or-dir>...",
		Short: "Run planners over a set of tasks and write results.csv",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			bc := c.cfg.Bench
			if cmd.Flags().Changed("out") {
				bc.Out = out
			}
			if cmd.Flags().Changed("store") {
				bc.StoreDir = storeDir
			}
			if cmd.Flags().Changed("concurrency") {
				bc.Concurrency = concurrency
			}
			if cmd.Flags().Changed("planners") {
				bc.Planners = planners
			}

			paths, err := bench.ExpandPaths(args)
			if err != nil {
				return &exitCodeError{code: exitInvalid, err: err}
			}
			tasks, err := bench.LoadTasks(paths)
			if err != nil {
				return &exitCodeError{code: exitInvalid, err: err}
			}

			runnerOpts := []bench.RunnerOption{
				bench.WithOptions(c.cfg.ToOptions),
				bench.WithConcurrency(bc.Concurrency),
				bench.WithLogger(c.logger),
			}
			if bc.StoreDir != "" {
				dbCfg := badger.DefaultConfig(bc.StoreDir)
				db, err := badger.Open(dbCfg)
				if err != nil {
					return err
				}
				defer db.Close()
				runnerOpts = append(runnerOpts, bench.WithStore(bench.NewBadgerStore(db)))
			}

			s := solver.New(solver.WithLogger(c.logger), solver.WithMetrics(c.metrics))
			records, err := bench.NewRunner(s, runnerOpts...).Run(ctx, tasks, bc.Planners)
			if err != nil {
				c.logger.Error("benchmark interrupted", slog.String("error", err.Error()), slog.Int("completed", len(records)))
			}

			if bc.Out != "" {
				f, ferr := os.Create(bc.Out)
				if ferr != nil {
					return fmt.Errorf("create %s: %w", bc.Out, ferr)
				}
				if werr := bench.WriteCSV(f, records); werr != nil {
					f.Close()
					return werr
				}
				if cerr := f.Close(); cerr != nil {
					return cerr
				}
			}
			if werr := bench.WriteSummary(c.stdout, bench.Summarize(records)); werr != nil {
				return werr
			}
			return err
		},
	}
	cmd.Flags().StringVar(&out, "out", "results.csv", "CSV output path, empty to skip")
	cmd.Flags().StringVar(&storeDir, "store", "", "BadgerDB directory for run records")
	cmd.Flags().IntVar(&concurrency, "concurrency", 1, "runs in flight")
	cmd.Flags().StringSliceVar(&planners, "planners", []string{solver.PlannerAStar, solver.PlannerRollout}, "planners to run")
	return cmd
}
