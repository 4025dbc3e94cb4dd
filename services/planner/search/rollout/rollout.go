// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package rollout implements an online Monte-Carlo planner.
//
// At every live state the planner scores each applicable action by running
// uniform random walks from its successor, commits to the best-scoring
// action and repeats from the resulting state. No search tree is kept
// between steps.
//
// A rollout that reaches the goal after d steps scores 1 - min(1, d/D),
// where D is the rollout depth limit. Failed rollouts score 0. Actions are
// ranked by mean score, then success rate, then mean length of successful
// rollouts; values closer than 1e-12 count as equal and a full tie keeps
// the action that comes first in problem order.
package rollout

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/AleutianAI/AleutianPlan/services/planner/plan"
	"github.com/AleutianAI/AleutianPlan/services/planner/problem"
	"github.com/AleutianAI/AleutianPlan/services/planner/search"
)

// EngineName identifies the engine in results, logs and spans.
const EngineName = "rollout"

// pcgStream is mixed into the seed to derive the second PCG word.
const pcgStream = 0x9e3779b97f4a7c15

// Planner is the Monte-Carlo rollout planner.
//
// Thread Safety: A Planner may run concurrent searches. Each search owns
// its random source.
type Planner struct {
	config Config
	logger *slog.Logger
	tracer trace.Tracer
	clock  search.Clock
}

// Option configures a Planner.
type Option func(*Planner)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Planner) {
		p.logger = logger
	}
}

// WithTracer sets the tracer.
func WithTracer(tracer trace.Tracer) Option {
	return func(p *Planner) {
		p.tracer = tracer
	}
}

// WithClock sets the clock used by the deadline and by seed derivation.
func WithClock(clock search.Clock) Option {
	return func(p *Planner) {
		p.clock = clock
	}
}

// New creates a Planner.
//
// Outputs:
//
//	*Planner - Ready to use planner.
//	error - Wraps search.ErrInvalidConfig when config is invalid.
func New(config Config, opts ...Option) (*Planner, error) {
	if err := config.Validate(); err != nil {
		return nil, &search.EngineError{Engine: EngineName, Operation: "New", Err: err}
	}
	pl := &Planner{
		config: config,
		logger: slog.Default().With(slog.String("component", "rollout")),
		tracer: search.DefaultTracer(),
	}
	for _, opt := range opts {
		opt(pl)
	}
	return pl, nil
}

// Config returns the planner configuration.
func (pl *Planner) Config() Config {
	return pl.config
}

// Search plans online from the initial state.
//
// Outputs:
//
//	*search.Result - Solved with the committed actions, or one of
//	                 TimedOut, DeadEnd, PlanLengthExceeded and
//	                 EvaluationExhausted.
//	error - Non-nil only for invalid input (nil or unsupported problem).
func (pl *Planner) Search(ctx context.Context, p *problem.Problem) (*search.Result, error) {
	if p == nil {
		return nil, &search.EngineError{Engine: EngineName, Operation: "Search", Err: search.ErrNilProblem}
	}
	if err := p.CheckSupported(); err != nil {
		return nil, &search.EngineError{Engine: EngineName, Operation: "Search", Err: err}
	}

	seed := pl.effectiveSeed()
	ctx, span := search.StartRun(ctx, pl.tracer, EngineName, p,
		attribute.Int("planner.rollout.rollouts_per_action", pl.config.RolloutsPerAction),
		attribute.Int("planner.rollout.max_depth", pl.config.MaxRolloutDepth),
		attribute.Int("planner.rollout.max_plan_steps", pl.config.MaxPlanSteps),
		attribute.Int64("planner.rollout.seed", seed),
		attribute.Int("planner.rollout.parallelism", pl.config.Parallelism),
		attribute.String("planner.timeout", search.EffectiveTimeout(pl.config.Timeout).String()),
	)
	result := pl.run(ctx, p, seed, span)
	search.EndRun(span, result, nil)
	return result, nil
}

func (pl *Planner) effectiveSeed() int64 {
	if pl.config.Seed != 0 {
		return pl.config.Seed
	}
	now := time.Now
	if pl.clock != nil {
		now = pl.clock
	}
	if seed := now().UnixNano(); seed != 0 {
		return seed
	}
	return 1
}

func (pl *Planner) run(ctx context.Context, p *problem.Problem, seed int64, span trace.Span) *search.Result {
	deadline := search.NewDeadline(search.EffectiveTimeout(pl.config.Timeout), pl.clock)
	rng := rand.New(rand.NewPCG(uint64(seed), uint64(seed)^pcgStream))
	goal := p.Goal()
	actions := p.Actions()
	w := newWalker(p, pl.config.MaxRolloutDepth)

	result := &search.Result{Planner: EngineName, Plan: plan.Plan{}}
	stats := &result.Stats
	stats.Seed = seed
	defer func() { stats.Elapsed = deadline.Elapsed() }()

	pl.logger.DebugContext(ctx, "rollout search started",
		slog.String("problem", p.Name()),
		slog.Int64("seed", seed),
		slog.Int("rollouts_per_action", pl.config.RolloutsPerAction),
		slog.Int("max_depth", pl.config.MaxRolloutDepth))

	state := p.InitialState()
	for !state.Satisfy(goal) {
		if len(result.Plan) >= pl.config.MaxPlanSteps {
			result.Status = search.StatusPlanLengthExceeded
			return pl.fail(ctx, p, result)
		}
		if deadline.Exceeded() || ctx.Err() != nil {
			result.Status = search.StatusTimedOut
			return pl.fail(ctx, p, result)
		}

		candidates := append([]int(nil), w.applicable(state)...)
		if len(candidates) == 0 {
			result.Status = search.StatusDeadEnd
			return pl.fail(ctx, p, result)
		}

		evaluated := pl.evaluateAll(ctx, p, state, candidates, rng, deadline)
		for i := range evaluated {
			stats.Rollouts += evaluated[i].trials
			stats.RolloutSteps += evaluated[i].steps
		}
		best := selectBest(evaluated)
		if best < 0 {
			result.Status = search.StatusEvaluationExhausted
			return pl.fail(ctx, p, result)
		}

		chosen := &evaluated[best]
		a := &actions[chosen.action]
		state = a.Successor(state)
		result.Plan = append(result.Plan, a.Index)
		stats.Steps++

		span.AddEvent("commit", trace.WithAttributes(
			attribute.Int("step", stats.Steps),
			attribute.String("action", a.Name),
			attribute.Float64("avg_score", chosen.avgScore()),
			attribute.Float64("success_rate", chosen.successRate()),
		))
		pl.logger.DebugContext(ctx, "action committed",
			slog.Int("step", stats.Steps),
			slog.String("action", a.Name),
			slog.Int("candidates", len(candidates)),
			slog.Float64("avg_score", chosen.avgScore()),
			slog.Float64("success_rate", chosen.successRate()),
			slog.Int("trials", chosen.trials))
	}

	result.Status = search.StatusSolved
	pl.logger.InfoContext(ctx, "plan found",
		slog.String("problem", p.Name()),
		slog.Int("steps", len(result.Plan)),
		slog.Int("rollouts", stats.Rollouts),
		slog.Int64("seed", seed))
	return result
}

// fail logs the outcome and drops the partial plan; Stats.Steps keeps the
// number of committed actions.
func (pl *Planner) fail(ctx context.Context, p *problem.Problem, result *search.Result) *search.Result {
	result.Plan = nil
	pl.logger.InfoContext(ctx, "no plan found",
		slog.String("problem", p.Name()),
		slog.String("status", result.Status.String()),
		slog.Int("steps", result.Stats.Steps),
		slog.Int("rollouts", result.Stats.Rollouts),
		slog.Int64("seed", result.Stats.Seed))
	return result
}
