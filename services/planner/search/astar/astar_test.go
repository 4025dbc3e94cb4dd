// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package astar

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/AleutianAI/AleutianPlan/services/planner/heuristic"
	"github.com/AleutianAI/AleutianPlan/services/planner/plan"
	"github.com/AleutianAI/AleutianPlan/services/planner/problem"
	"github.com/AleutianAI/AleutianPlan/services/planner/problem/problemtest"
	"github.com/AleutianAI/AleutianPlan/services/planner/search"
	"github.com/AleutianAI/AleutianPlan/services/planner/search/bfs"
	"github.com/AleutianAI/AleutianPlan/services/planner/search/searchtest"
)

func solve(t *testing.T, spec problem.TaskSpec, name heuristic.Name, cfg Config, opts ...Option) (*problem.Problem, *search.Result) {
	t.Helper()
	p := problemtest.MustBuild(t, spec)
	h, err := heuristic.New(name, p)
	require.NoError(t, err)
	s, err := New(cfg, opts...)
	require.NoError(t, err)
	r, err := s.Search(context.Background(), p, h)
	require.NoError(t, err)
	return p, r
}

func TestSearch_Move(t *testing.T) {
	p, r := solve(t, problemtest.Move(), heuristic.FastForward, DefaultConfig())
	require.True(t, r.Solved())
	assert.Equal(t, plan.Plan{0}, r.Plan)
	assert.Equal(t, []string{"move-a-b"}, plan.Names(p, r.Plan))
	assert.Equal(t, EngineName, r.Planner)
}

func TestSearch_TrivialGoalGivesEmptyPlan(t *testing.T) {
	for _, name := range heuristic.Names() {
		t.Run(string(name), func(t *testing.T) {
			_, r := solve(t, problemtest.Trivial(), name, DefaultConfig())
			require.True(t, r.Solved())
			assert.Empty(t, r.Plan)
			assert.Equal(t, 0, r.Stats.NodesExpanded)
		})
	}
}

func TestSearch_UnreachableGoalExhausts(t *testing.T) {
	for _, name := range []heuristic.Name{heuristic.Blind, heuristic.Max, heuristic.FastForward} {
		t.Run(string(name), func(t *testing.T) {
			_, r := solve(t, problemtest.Unreachable(), name, DefaultConfig())
			assert.False(t, r.Solved())
			assert.Equal(t, search.StatusExhausted, r.Status)
			assert.ErrorIs(t, r.Failure(), search.ErrNoPlanFound)
		})
	}
}

func TestSearch_ReplaySound(t *testing.T) {
	specs := []problem.TaskSpec{
		problemtest.Move(),
		problemtest.Line(6),
		problemtest.Gripper(2),
		problemtest.Gripper(3),
		problemtest.Switches(4),
	}
	for _, spec := range specs {
		for _, name := range heuristic.Names() {
			t.Run(spec.Name+"/"+string(name), func(t *testing.T) {
				p, r := solve(t, spec, name, Config{Weight: 2})
				require.True(t, r.Solved())
				_, err := plan.Validate(p, r.Plan)
				assert.NoError(t, err)
			})
		}
	}
}

func TestSearch_AdmissibleMatchesBreadthFirst(t *testing.T) {
	specs := []problem.TaskSpec{
		problemtest.Line(7),
		problemtest.Gripper(1),
		problemtest.Gripper(2),
		problemtest.Gripper(3),
		problemtest.Switches(3),
	}
	for _, spec := range specs {
		t.Run(spec.Name, func(t *testing.T) {
			p, r := solve(t, spec, heuristic.Max, Config{Weight: 1})
			require.True(t, r.Solved())

			b, err := bfs.New(bfs.Config{})
			require.NoError(t, err)
			ref, err := b.Search(context.Background(), p)
			require.NoError(t, err)
			require.True(t, ref.Solved())

			assert.Equal(t, len(ref.Plan), len(r.Plan))
		})
	}
}

func TestSearch_EqualFPopsInInsertionOrder(t *testing.T) {
	spec := problem.TaskSpec{
		Name: "twins",
		Init: []string{"start"},
		Goal: problem.LiteralSpec{Pos: []string{"done"}},
		Actions: []problem.ActionSpec{
			{Name: "first", Pre: problem.LiteralSpec{Pos: []string{"start"}}, Effects: []problem.EffectSpec{{Add: []string{"done"}}}},
			{Name: "second", Pre: problem.LiteralSpec{Pos: []string{"start"}}, Effects: []problem.EffectSpec{{Add: []string{"done"}}}},
		},
	}
	_, r := solve(t, spec, heuristic.Blind, DefaultConfig())
	require.True(t, r.Solved())
	assert.Equal(t, plan.Plan{0}, r.Plan)
}

func TestSearch_Timeout(t *testing.T) {
	clock := searchtest.NewStepClock(time.Second)
	_, r := solve(t, problemtest.Gripper(3), heuristic.Blind,
		Config{Weight: 1, Timeout: time.Second}, WithClock(clock.Clock()))

	assert.Equal(t, search.StatusTimedOut, r.Status)
	assert.ErrorIs(t, r.Failure(), search.ErrTimeoutExceeded)
	assert.Equal(t, 0, r.Stats.NodesExpanded)
}

func TestSearch_MonotonicUnderTimeoutReduction(t *testing.T) {
	// With a clock that ticks once per poll, the timeout is a poll count.
	solvedAt := -1
	for polls := 1; polls <= 400; polls++ {
		clock := searchtest.NewStepClock(time.Millisecond)
		_, r := solve(t, problemtest.Gripper(2), heuristic.Blind,
			Config{Weight: 1, Timeout: time.Duration(polls) * time.Millisecond}, WithClock(clock.Clock()))
		if solvedAt < 0 {
			if r.Solved() {
				solvedAt = polls
			} else {
				assert.Equal(t, search.StatusTimedOut, r.Status)
			}
			continue
		}
		assert.True(t, r.Solved(), "solved at %d polls but not at %d", solvedAt, polls)
	}
	require.Greater(t, solvedAt, 1, "gripper-2 should need more than one poll")
}

func TestSearch_CancelledContextReportsTimeout(t *testing.T) {
	p := problemtest.MustBuild(t, problemtest.Gripper(2))
	s, err := New(DefaultConfig())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	h, _ := heuristic.New(heuristic.Blind, p)
	r, err := s.Search(ctx, p, h)
	require.NoError(t, err)
	assert.Equal(t, search.StatusTimedOut, r.Status)
}

func TestSearch_RejectsUnsupportedProblem(t *testing.T) {
	p := problemtest.MustBuild(t, problemtest.Unsupported())
	s, err := New(DefaultConfig())
	require.NoError(t, err)

	calls := 0
	h := heuristic.EstimatorFunc(func(problem.State, problem.Condition) float64 {
		calls++
		return 0
	})
	r, err := s.Search(context.Background(), p, h)
	assert.Nil(t, r)
	assert.ErrorIs(t, err, problem.ErrUnsupported)
	assert.Zero(t, calls, "no search work before the support check")
}

func TestSearch_NilArguments(t *testing.T) {
	s, err := New(DefaultConfig())
	require.NoError(t, err)
	p := problemtest.MustBuild(t, problemtest.Move())

	_, err = s.Search(context.Background(), p, nil)
	assert.ErrorIs(t, err, search.ErrNilEstimator)

	_, err = s.Search(context.Background(), nil, heuristic.EstimatorFunc(func(problem.State, problem.Condition) float64 { return 0 }))
	assert.ErrorIs(t, err, search.ErrNilProblem)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		ok   bool
	}{
		{"default", DefaultConfig(), true},
		{"zero timeout", Config{Weight: 1.5}, true},
		{"zero weight", Config{Weight: 0}, false},
		{"negative weight", Config{Weight: -1}, false},
		{"nan weight", Config{Weight: math.NaN()}, false},
		{"inf weight", Config{Weight: math.Inf(1)}, false},
		{"negative timeout", Config{Weight: 1, Timeout: -time.Second}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cfg)
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, search.ErrInvalidConfig)
		})
	}
}

func TestSearch_Span(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	defer func() { _ = tp.Shutdown(context.Background()) }()

	_, r := solve(t, problemtest.Move(), heuristic.Max, DefaultConfig(), WithTracer(tp.Tracer("test")))
	require.True(t, r.Solved())

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "astar.search", spans[0].Name())
}

func TestArenaPlan(t *testing.T) {
	var a arena
	root := a.add(node{parent: noParent, action: -1})
	c1 := a.add(node{parent: root, action: 4, depth: 1})
	c2 := a.add(node{parent: c1, action: 7, depth: 2})

	assert.Equal(t, plan.Plan{4, 7}, a.plan(c2))
	assert.Empty(t, a.plan(root))
}

func TestOpenList_Order(t *testing.T) {
	var o openList
	o.push(openItem{f: 2, seq: 0, node: 0})
	o.push(openItem{f: 1, seq: 1, node: 1})
	o.push(openItem{f: 1, seq: 2, node: 2})
	o.push(openItem{f: 0.5, seq: 3, node: 3})

	var got []int
	for o.Len() > 0 {
		got = append(got, o.pop().node)
	}
	assert.Equal(t, []int{3, 1, 2, 0}, got)
}
