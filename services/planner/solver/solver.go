// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package solver is the entry point for planning: it validates options,
// gates unsupported problems, runs the selected engine and replay-checks
// the plan it returns.
package solver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/AleutianAI/AleutianPlan/services/planner/heuristic"
	"github.com/AleutianAI/AleutianPlan/services/planner/plan"
	"github.com/AleutianAI/AleutianPlan/services/planner/problem"
	"github.com/AleutianAI/AleutianPlan/services/planner/search"
	"github.com/AleutianAI/AleutianPlan/services/planner/search/astar"
	"github.com/AleutianAI/AleutianPlan/services/planner/search/bfs"
	"github.com/AleutianAI/AleutianPlan/services/planner/search/rollout"
)

// TracerName is the instrumentation scope of solver spans.
const TracerName = "aleutianplan.solver"

// Error kinds passed to Recorder.RecordError.
const (
	KindInvalidConfig = "invalid_config"
	KindUnsupported   = "unsupported"
	KindUnsoundPlan   = "unsound_plan"
)

// Recorder receives search outcomes. telemetry.Metrics implements it.
type Recorder interface {
	RecordSearch(ctx context.Context, r *search.Result)
	RecordError(ctx context.Context, planner, kind string)
}

// Solver runs planning requests.
//
// Thread Safety: Safe for concurrent use.
type Solver struct {
	logger  *slog.Logger
	tracer  trace.Tracer
	metrics Recorder
	clock   search.Clock
}

// Option configures a Solver.
type Option func(*Solver)

// WithLogger sets the logger handed to the solver and its engines.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Solver) { s.logger = logger }
}

// WithTracer sets the tracer handed to the solver and its engines.
func WithTracer(tracer trace.Tracer) Option {
	return func(s *Solver) { s.tracer = tracer }
}

// WithMetrics sets the outcome recorder.
func WithMetrics(r Recorder) Option {
	return func(s *Solver) { s.metrics = r }
}

// WithClock sets the clock used for deadlines and derived seeds.
func WithClock(clock search.Clock) Option {
	return func(s *Solver) { s.clock = clock }
}

// New creates a Solver.
func New(opts ...Option) *Solver {
	s := &Solver{
		logger: slog.Default().With(slog.String("component", "solver")),
		tracer: otel.Tracer(TracerName),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Solve plans p with the default Solver.
func Solve(ctx context.Context, p *problem.Problem, o Options) (*search.Result, error) {
	return New().Solve(ctx, p, o)
}

// Solve runs the planner selected by o on p.
//
// Description:
//
//	Options are validated and the problem is checked against the supported
//	fragment before any search work. A solved result's plan has been
//	replayed from the initial state and reaches the goal.
//
// Inputs:
//
//	ctx - Cancellation is observed by the engines and reported as a
//	      timeout.
//	p - The problem to solve.
//	o - Planner selection and parameters.
//
// Outputs:
//
//	*search.Result - The engine result. Not solved is not an error; use
//	                 Result.Failure for the reason.
//	error - Wraps ErrInvalidConfiguration, ErrUnsupportedProblem,
//	        search.ErrNilProblem or ErrUnsoundPlan.
func (s *Solver) Solve(ctx context.Context, p *problem.Problem, o Options) (*search.Result, error) {
	if p == nil {
		return nil, fmt.Errorf("solve: %w", search.ErrNilProblem)
	}
	if err := o.Validate(); err != nil {
		s.reject(ctx, o.Planner, KindInvalidConfig, err)
		return nil, err
	}
	if err := p.CheckSupported(); err != nil {
		err = fmt.Errorf("%w: %w", ErrUnsupportedProblem, err)
		s.reject(ctx, o.Planner, KindUnsupported, err)
		return nil, err
	}

	ctx, span := s.tracer.Start(ctx, "solver.solve", trace.WithAttributes(
		attribute.String("planner.engine", o.Planner),
		attribute.String("planner.problem", p.Name()),
	))
	defer span.End()

	result, err := s.dispatch(ctx, p, o)
	if err != nil {
		if errors.Is(err, search.ErrInvalidConfig) || errors.Is(err, heuristic.ErrUnknownHeuristic) {
			err = fmt.Errorf("%w: %w", ErrInvalidConfiguration, err)
			s.reject(ctx, o.Planner, KindInvalidConfig, err)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if result.Solved() {
		if _, err := plan.Validate(p, result.Plan); err != nil {
			err = fmt.Errorf("%w: %s: %w", ErrUnsoundPlan, o.Planner, err)
			s.reject(ctx, o.Planner, KindUnsoundPlan, err)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
	}

	span.SetAttributes(
		attribute.String("planner.status", result.Status.String()),
		attribute.Int("planner.plan_length", len(result.Plan)),
	)
	if s.metrics != nil {
		s.metrics.RecordSearch(ctx, result)
	}
	return result, nil
}

func (s *Solver) dispatch(ctx context.Context, p *problem.Problem, o Options) (*search.Result, error) {
	switch o.Planner {
	case PlannerAStar:
		name, err := o.HeuristicName()
		if err != nil {
			return nil, err
		}
		h, err := heuristic.New(name, p)
		if err != nil {
			return nil, err
		}
		engine, err := astar.New(o.astarConfig(),
			astar.WithLogger(s.logger.With(slog.String("engine", astar.EngineName))),
			astar.WithTracer(s.tracer),
			astar.WithClock(s.clock),
		)
		if err != nil {
			return nil, err
		}
		return engine.Search(ctx, p, h)

	case PlannerRollout:
		engine, err := rollout.New(o.rolloutConfig(),
			rollout.WithLogger(s.logger.With(slog.String("engine", rollout.EngineName))),
			rollout.WithTracer(s.tracer),
			rollout.WithClock(s.clock),
		)
		if err != nil {
			return nil, err
		}
		return engine.Search(ctx, p)

	case PlannerBFS:
		engine, err := bfs.New(o.bfsConfig(),
			bfs.WithLogger(s.logger.With(slog.String("engine", bfs.EngineName))),
			bfs.WithTracer(s.tracer),
			bfs.WithClock(s.clock),
		)
		if err != nil {
			return nil, err
		}
		return engine.Search(ctx, p)

	default:
		return nil, fmt.Errorf("%w: unknown planner %q", search.ErrInvalidConfig, o.Planner)
	}
}

func (s *Solver) reject(ctx context.Context, planner, kind string, err error) {
	s.logger.Warn("solve rejected",
		slog.String("planner", planner),
		slog.String("kind", kind),
		slog.String("error", err.Error()),
	)
	if s.metrics != nil {
		s.metrics.RecordError(ctx, planner, kind)
	}
}
