// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package bfs implements uninformed breadth-first search. Its plans are
// shortest in number of actions, which makes it the reference for
// checking A* optimality.
package bfs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/AleutianAI/AleutianPlan/services/planner/plan"
	"github.com/AleutianAI/AleutianPlan/services/planner/problem"
	"github.com/AleutianAI/AleutianPlan/services/planner/search"
)

// EngineName identifies the engine in results, logs and spans.
const EngineName = "bfs"

// Config configures breadth-first search.
type Config struct {
	// Timeout bounds the search wall time. 0 uses search.DefaultTimeout.
	Timeout time.Duration
}

// Searcher runs breadth-first search with duplicate detection at
// generation time.
//
// Thread Safety: Safe for concurrent use.
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
	return func(s *Searcher) { s.logger = logger }
}

// WithTracer sets the tracer.
func WithTracer(tracer trace.Tracer) Option {
	return func(s *Searcher) { s.tracer = tracer }
}

// WithClock sets the clock used by the deadline.
func WithClock(clock search.Clock) Option {
	return func(s *Searcher) { s.clock = clock }
}

// New creates a Searcher.
func New(config Config, opts ...Option) (*Searcher, error) {
	if config.Timeout < 0 {
		return nil, &search.EngineError{
			Engine:    EngineName,
			Operation: "New",
			Err:       fmt.Errorf("%w: timeout must be >= 0, got %v", search.ErrInvalidConfig, config.Timeout),
		}
	}
	s := &Searcher{
		config: config,
		logger: slog.Default().With(slog.String("component", "bfs")),
		tracer: search.DefaultTracer(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

type entry struct {
	state  problem.State
	parent int
	action int
}

// Search runs breadth-first search from the initial state.
func (s *Searcher) Search(ctx context.Context, p *problem.Problem) (*search.Result, error) {
	if p == nil {
		return nil, &search.EngineError{Engine: EngineName, Operation: "Search", Err: search.ErrNilProblem}
	}
	if err := p.CheckSupported(); err != nil {
		return nil, &search.EngineError{Engine: EngineName, Operation: "Search", Err: err}
	}

	ctx, span := search.StartRun(ctx, s.tracer, EngineName, p)
	result := s.run(ctx, p)
	search.EndRun(span, result, nil)
	return result, nil
}

func (s *Searcher) run(ctx context.Context, p *problem.Problem) *search.Result {
	deadline := search.NewDeadline(search.EffectiveTimeout(s.config.Timeout), s.clock)
	goal := p.Goal()
	actions := p.Actions()

	result := &search.Result{Planner: EngineName, Status: search.StatusExhausted}
	defer func() { result.Stats.Elapsed = deadline.Elapsed() }()

	entries := []entry{{state: p.InitialState(), parent: -1, action: -1}}
	seen := map[string]struct{}{p.InitialState().Key(): {}}

	for head := 0; head < len(entries); head++ {
		if deadline.Exceeded() || ctx.Err() != nil {
			result.Status = search.StatusTimedOut
			break
		}
		cur := entries[head]
		if cur.state.Satisfy(goal) {
			result.Status = search.StatusSolved
			result.Plan = walk(entries, head)
			s.logger.InfoContext(ctx, "plan found",
				slog.String("problem", p.Name()),
				slog.Int("steps", len(result.Plan)),
				slog.Int("expanded", result.Stats.NodesExpanded))
			return result
		}
		result.Stats.NodesExpanded++

		for i := range actions {
			a := &actions[i]
			if !a.IsApplicable(cur.state) {
				continue
			}
			next := a.Successor(cur.state)
			key := next.Key()
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			entries = append(entries, entry{state: next, parent: head, action: a.Index})
			result.Stats.NodesGenerated++
		}
	}

	s.logger.InfoContext(ctx, "no plan found",
		slog.String("problem", p.Name()),
		slog.String("status", result.Status.String()),
		slog.Int("expanded", result.Stats.NodesExpanded))
	return result
}

func walk(entries []entry, idx int) plan.Plan {
	var out plan.Plan
	for i := idx; entries[i].parent >= 0; i = entries[i].parent {
		out = append(out, entries[i].action)
	}
	for l, r := 0, len(out)-1; l < r; l, r = l+1, r-1 {
		out[l], out[r] = out[r], out[l]
	}
	if out == nil {
		out = plan.Plan{}
	}
	return out
}
