// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package astar implements weighted A* over the forward state space.
package astar

import (
	"context"
	"log/slog"
	"math"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/AleutianAI/AleutianPlan/services/planner/heuristic"
	"github.com/AleutianAI/AleutianPlan/services/planner/problem"
	"github.com/AleutianAI/AleutianPlan/services/planner/search"
)

// EngineName identifies the engine in results, logs and spans.
const EngineName = "astar"

// Searcher runs weighted A*.
//
// Description:
//
//	Nodes are ordered by f = g + Weight*h on a binary heap. Equal f values
//	are popped in insertion order. States are closed when popped; a popped
//	node whose state is already closed is a stale duplicate and is
//	discarded. Successors whose state is closed are not generated, and
//	successors the estimator marks unreachable (+Inf) are pruned. There is
//	no duplicate detection on the open list. All actions cost 1.
//
// Thread Safety: A Searcher may run concurrent searches. Each search owns
// its arena, open list and closed set.
type Searcher struct {
	config Config
	logger *slog.Logger
	tracer trace.Tracer
	clock  search.Clock
}

// Option configures a Searcher.
type Option func(*Searcher)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) {
		s.logger = logger
	}
}

// WithTracer sets the tracer.
func WithTracer(tracer trace.Tracer) Option {
	return func(s *Searcher) {
		s.tracer = tracer
	}
}

// WithClock sets the clock used by the deadline.
func WithClock(clock search.Clock) Option {
	return func(s *Searcher) {
		s.clock = clock
	}
}

// New creates a Searcher.
//
// Outputs:
//
//	*Searcher - Ready to use searcher.
//	error - Wraps search.ErrInvalidConfig when config is invalid.
func New(config Config, opts ...Option) (*Searcher, error) {
	if err := config.Validate(); err != nil {
		return nil, &search.EngineError{Engine: EngineName, Operation: "New", Err: err}
	}
	s := &Searcher{
		config: config,
		logger: slog.Default().With(slog.String("component", "astar")),
		tracer: search.DefaultTracer(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Config returns the searcher configuration.
func (s *Searcher) Config() Config {
	return s.config
}

// Search looks for a plan from the problem's initial state to its goal.
//
// Inputs:
//
//	ctx - Carries the trace span. Cancellation is polled with the deadline
//	      and reported as a timeout.
//	p - The problem. Must pass the supported-fragment gate.
//	h - Goal distance estimator.
//
// Outputs:
//
//	*search.Result - Solved with a plan, or Exhausted/TimedOut.
//	error - Non-nil only for invalid input (nil arguments, unsupported
//	        problem). A missing plan is not an error.
func (s *Searcher) Search(ctx context.Context, p *problem.Problem, h heuristic.Estimator) (*search.Result, error) {
	if p == nil {
		return nil, &search.EngineError{Engine: EngineName, Operation: "Search", Err: search.ErrNilProblem}
	}
	if h == nil {
		return nil, &search.EngineError{Engine: EngineName, Operation: "Search", Err: search.ErrNilEstimator}
	}
	if err := p.CheckSupported(); err != nil {
		return nil, &search.EngineError{Engine: EngineName, Operation: "Search", Err: err}
	}

	ctx, span := search.StartRun(ctx, s.tracer, EngineName, p,
		attribute.Float64("planner.astar.weight", s.config.Weight),
		attribute.String("planner.timeout", search.EffectiveTimeout(s.config.Timeout).String()),
	)
	result := s.run(ctx, p, h)
	search.EndRun(span, result, nil)
	return result, nil
}

func (s *Searcher) run(ctx context.Context, p *problem.Problem, h heuristic.Estimator) *search.Result {
	deadline := search.NewDeadline(search.EffectiveTimeout(s.config.Timeout), s.clock)
	goal := p.Goal()
	actions := p.Actions()
	w := s.config.Weight

	result := &search.Result{Planner: EngineName, Status: search.StatusExhausted}
	stats := &result.Stats
	defer func() { stats.Elapsed = deadline.Elapsed() }()

	var nodes arena
	var open openList
	closed := make(map[string]struct{})
	var seq uint64

	rootState := p.InitialState()
	rootH := h.Estimate(rootState, goal)
	root := nodes.add(node{state: rootState, parent: noParent, action: -1, h: rootH})
	open.push(openItem{f: w * rootH, seq: seq, node: root})
	seq++

	for open.Len() > 0 {
		if deadline.Exceeded() || ctx.Err() != nil {
			result.Status = search.StatusTimedOut
			break
		}

		item := open.pop()
		cur := nodes.nodes[item.node]
		key := cur.state.Key()
		if _, done := closed[key]; done {
			stats.StaleSkipped++
			continue
		}
		closed[key] = struct{}{}

		if cur.state.Satisfy(goal) {
			result.Status = search.StatusSolved
			result.Plan = nodes.plan(item.node)
			s.logger.InfoContext(ctx, "plan found",
				slog.String("problem", p.Name()),
				slog.Int("steps", len(result.Plan)),
				slog.Int("expanded", stats.NodesExpanded),
				slog.Duration("elapsed", deadline.Elapsed()))
			return result
		}
		stats.NodesExpanded++

		for i := range actions {
			a := &actions[i]
			if !a.IsApplicable(cur.state) {
				continue
			}
			next := a.Successor(cur.state)
			if _, done := closed[next.Key()]; done {
				continue
			}
			nh := h.Estimate(next, goal)
			if math.IsInf(nh, 1) {
				continue
			}
			child := nodes.add(node{
				state:  next,
				parent: item.node,
				action: a.Index,
				g:      cur.g + 1,
				h:      nh,
				depth:  cur.depth + 1,
			})
			open.push(openItem{f: cur.g + 1 + w*nh, seq: seq, node: child})
			seq++
			stats.NodesGenerated++
		}
	}

	s.logger.InfoContext(ctx, "no plan found",
		slog.String("problem", p.Name()),
		slog.String("status", result.Status.String()),
		slog.Int("expanded", stats.NodesExpanded),
		slog.Duration("elapsed", deadline.Elapsed()))
	return result
}
