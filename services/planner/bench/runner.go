// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package bench

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/AleutianAI/AleutianPlan/services/planner/problem"
	"github.com/AleutianAI/AleutianPlan/services/planner/search"
	"github.com/AleutianAI/AleutianPlan/services/planner/solver"
)

// ErrNoWork is returned by Run when there are no tasks or no planners.
var ErrNoWork = errors.New("nothing to run")

// Solver runs one planning request. *solver.Solver implements it.
type Solver interface {
	Solve(ctx context.Context, p *problem.Problem, o solver.Options) (*search.Result, error)
}

// Runner runs every planner on every task.
//
// Thread Safety: Safe for concurrent use; each Run is independent.
type Runner struct {
	solver      Solver
	options     func(planner string) solver.Options
	concurrency int
	store       Store
	logger      *slog.Logger
	now         func() time.Time
	newID       func() uuid.UUID
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithOptions sets the solver options used for each planner. The default
// is solver.DefaultOptions.
func WithOptions(fn func(planner string) solver.Options) RunnerOption {
	return func(r *Runner) { r.options = fn }
}

// WithConcurrency bounds the number of runs in flight. Values below 1
// mean 1.
func WithConcurrency(n int) RunnerOption {
	return func(r *Runner) { r.concurrency = max(1, n) }
}

// WithStore saves every record as it completes.
func WithStore(s Store) RunnerOption {
	return func(r *Runner) { r.store = s }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) RunnerOption {
	return func(r *Runner) { r.logger = logger }
}

// WithClock sets the clock used for StartedAt.
func WithClock(now func() time.Time) RunnerOption {
	return func(r *Runner) { r.now = now }
}

// NewRunner creates a Runner around s.
func NewRunner(s Solver, opts ...RunnerOption) *Runner {
	r := &Runner{
		solver:      s,
		options:     solver.DefaultOptions,
		concurrency: 1,
		logger:      slog.Default().With(slog.String("component", "bench")),
		now:         time.Now,
		newID:       uuid.New,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

type job struct {
	task    Task
	planner string
}

// Run solves every task with every planner.
//
// Description:
//
//	Runs are ordered task-major: all planners on the first task, then the
//	second task, and so on. Records come back in that order regardless of
//	concurrency. A run the solver rejects is recorded with status "error"
//	and does not stop the benchmark.
//
// Outputs:
//
//	[]Record - One record per (task, planner), including failures.
//	error - ErrNoWork, a store error, or the context error. Records
//	        completed before the failure are still returned.
func (r *Runner) Run(ctx context.Context, tasks []Task, planners []string) ([]Record, error) {
	if len(tasks) == 0 || len(planners) == 0 {
		return nil, ErrNoWork
	}

	jobs := make([]job, 0, len(tasks)*len(planners))
	for _, t := range tasks {
		for _, p := range planners {
			jobs = append(jobs, job{task: t, planner: p})
		}
	}

	records := make([]Record, len(jobs))
	done := make([]bool, len(jobs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for i, j := range jobs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rec := r.runOne(gctx, j)
			if r.store != nil {
				if err := r.store.Save(gctx, rec); err != nil {
					return fmt.Errorf("save record %s: %w", rec.ID, err)
				}
			}
			records[i] = rec
			done[i] = true
			return nil
		})
	}
	err := g.Wait()

	out := make([]Record, 0, len(records))
	for i, rec := range records {
		if done[i] {
			out = append(out, rec)
		}
	}
	if err == nil {
		err = ctx.Err()
	}
	return out, err
}

func (r *Runner) runOne(ctx context.Context, j job) Record {
	rec := Record{
		ID:        r.newID(),
		Domain:    j.task.Domain,
		Task:      j.task.Name,
		Planner:   j.planner,
		StartedAt: r.now(),
	}

	start := time.Now()
	res, err := r.solver.Solve(ctx, j.task.Problem, r.options(j.planner))
	if err != nil {
		rec.Status = StatusError
		rec.Error = err.Error()
		rec.Duration = time.Since(start)
		r.logger.Warn("run rejected",
			slog.String("task", j.task.Name),
			slog.String("planner", j.planner),
			slog.String("error", err.Error()))
		return rec
	}

	rec.Success = res.Solved()
	rec.Status = res.Status.String()
	rec.Duration = res.Stats.Elapsed
	rec.NodesExpanded = res.Stats.NodesExpanded
	rec.Rollouts = res.Stats.Rollouts
	if rec.Success {
		rec.PlanLength = len(res.Plan)
	}
	r.logger.Info("run finished",
		slog.String("task", j.task.Name),
		slog.String("planner", j.planner),
		slog.String("status", rec.Status),
		slog.Int("plan_length", rec.PlanLength),
		slog.Duration("elapsed", rec.Duration))
	return rec
}
