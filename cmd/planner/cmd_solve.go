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
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/AleutianPlan/services/planner/plan"
	"github.com/AleutianAI/AleutianPlan/services/planner/problem"
	"github.com/AleutianAI/AleutianPlan/services/planner/solver"
	"github.com/AleutianAI/AleutianPlan/services/planner/telemetry"
)

// solveFlags holds per-invocation overrides of the loaded config.
type solveFlags struct {
	weight      float64
	heuristic   string
	timeout     int
	rollouts    int
	depth       int
	maxSteps    int
	seed        int64
	parallelism int
	planOut     string
}

func (c *cli) newSolveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "solve",
		Short: "Solve a task with one of the planners",
	}
	cmd.AddCommand(c.newSolveAStarCmd(), c.newSolveRolloutCmd(), c.newSolveBFSCmd())
	return cmd
}

func (c *cli) newSolveAStarCmd() *cobra.Command {
	f := &solveFlags{}
	cmd := &cobra.Command{
		Use:   "astar <task>",
		Short: "Weighted A* with a goal distance heuristic",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.solve(cmd, args[0], solver.PlannerAStar, f)
		},
	}
	cmd.Flags().Float64VarP(&f.weight, "weight", "w", 1.0, "heuristic weight, > 0")
	cmd.Flags().StringVarP(&f.heuristic, "heuristic", "e", "fast_forward", "heuristic: blind, goal_count, max, sum or fast_forward")
	addTimeoutFlags(cmd, f)
	return cmd
}

func (c *cli) newSolveRolloutCmd() *cobra.Command {
	f := &solveFlags{}
	cmd := &cobra.Command{
		Use:   "rollout <task>",
		Short: "Online planning by random rollouts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.solve(cmd, args[0], solver.PlannerRollout, f)
		},
	}
	cmd.Flags().IntVarP(&f.rollouts, "rollouts", "n", 200, "rollouts per candidate action")
	cmd.Flags().IntVarP(&f.depth, "depth", "d", 60, "maximum rollout depth")
	cmd.Flags().IntVarP(&f.maxSteps, "max-plan-steps", "p", 200, "maximum committed plan length")
	cmd.Flags().Int64VarP(&f.seed, "seed", "s", 0, "random seed, 0 derives one from the clock")
	cmd.Flags().IntVar(&f.parallelism, "parallelism", 0, "candidate actions evaluated concurrently")
	addTimeoutFlags(cmd, f)
	return cmd
}

func (c *cli) newSolveBFSCmd() *cobra.Command {
	f := &solveFlags{}
	cmd := &cobra.Command{
		Use:   "bfs <task>",
		Short: "Breadth-first search, returns a shortest plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.solve(cmd, args[0], solver.PlannerBFS, f)
		},
	}
	addTimeoutFlags(cmd, f)
	return cmd
}

func addTimeoutFlags(cmd *cobra.Command, f *solveFlags) {
	cmd.Flags().IntVarP(&f.timeout, "timeout", "t", 600, "time limit in seconds, 0 means the default")
	cmd.Flags().StringVarP(&f.planOut, "out", "o", "", "also write the plan to this file")
}

// options starts from the config and applies flags the user set.
func (c *cli) options(cmd *cobra.Command, planner string, f *solveFlags) solver.Options {
	o := c.cfg.ToOptions(planner)
	changed := cmd.Flags().Changed
	if changed("weight") {
		o.Weight = f.weight
	}
	if changed("heuristic") {
		o.Heuristic = f.heuristic
	}
	if changed("timeout") {
		o.TimeoutSeconds = f.timeout
	}
	if changed("rollouts") {
		o.RolloutsPerAction = f.rollouts
	}
	if changed("depth") {
		o.MaxRolloutDepth = f.depth
	}
	if changed("max-plan-steps") {
		o.MaxPlanSteps = f.maxSteps
	}
	if changed("seed") {
		o.Seed = f.seed
	}
	if changed("parallelism") {
		o.Parallelism = f.parallelism
	}
	return o
}

func (c *cli) solve(cmd *cobra.Command, taskPath, planner string, f *solveFlags) error {
	ctx := cmd.Context()
	p, err := problem.DecodeFile(taskPath)
	if err != nil {
		return &exitCodeError{code: exitInvalid, err: err}
	}

	s := solver.New(solver.WithLogger(c.logger), solver.WithMetrics(c.metrics))
	result, err := s.Solve(ctx, p, c.options(cmd, planner, f))
	if err != nil {
		return &exitCodeError{code: solveExitCode(err), err: err}
	}

	log := telemetry.LoggerWithTrace(ctx, c.logger)
	if !result.Solved() {
		log.Info("search finished without a plan",
			slog.String("planner", planner),
			slog.String("status", result.Status.String()),
			slog.Duration("elapsed", result.Stats.Elapsed))
		return &exitCodeError{code: exitNoPlan, err: result.Failure()}
	}

	formatted := plan.Format(p, result.Plan)
	fmt.Fprint(c.stdout, formatted)
	fmt.Fprintf(c.stdout, "plan found (%d steps)\n", len(result.Plan))
	log.Info("search finished",
		slog.String("planner", planner),
		slog.Int("steps", len(result.Plan)),
		slog.Int("expanded", result.Stats.NodesExpanded),
		slog.Int("rollouts", result.Stats.Rollouts),
		slog.Duration("elapsed", result.Stats.Elapsed))

	if f.planOut != "" {
		if err := os.WriteFile(f.planOut, []byte(formatted), 0o644); err != nil {
			return fmt.Errorf("write plan: %w", err)
		}
	}
	return nil
}

// solveExitCode maps a Solve error to an exit code. Rejected input exits
// with exitInvalid; anything else, including an unsound plan, is a runtime
// failure.
func solveExitCode(err error) int {
	switch {
	case errors.Is(err, solver.ErrInvalidConfiguration), errors.Is(err, solver.ErrUnsupportedProblem):
		return exitInvalid
	default:
		return exitError
	}
}
