// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package heuristic

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/AleutianPlan/services/planner/problem"
	"github.com/AleutianAI/AleutianPlan/services/planner/problem/problemtest"
)

func estimate(t *testing.T, name Name, spec problem.TaskSpec) float64 {
	t.Helper()
	p := problemtest.MustBuild(t, spec)
	h, err := New(name, p)
	require.NoError(t, err)
	return h.Estimate(p.InitialState(), p.Goal())
}

func TestParseName(t *testing.T) {
	tests := []struct {
		in   string
		want Name
	}{
		{"fast_forward", FastForward},
		{"FAST_FORWARD", FastForward},
		{"fast-forward", FastForward},
		{"MAX", Max},
		{" sum ", Sum},
		{"goal_count", GoalCount},
		{"Blind", Blind},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseName(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseName("SET_LEVEL")
	assert.ErrorIs(t, err, ErrUnknownHeuristic)
}

func TestNew_Unknown(t *testing.T) {
	p := problemtest.MustBuild(t, problemtest.Move())
	_, err := New(Name("combo"), p)
	assert.ErrorIs(t, err, ErrUnknownHeuristic)
}

func TestAdmissible(t *testing.T) {
	assert.True(t, Blind.Admissible())
	assert.True(t, Max.Admissible())
	assert.False(t, Sum.Admissible())
	assert.False(t, FastForward.Admissible())
	assert.False(t, GoalCount.Admissible())
}

func TestEstimate_ZeroAtGoal(t *testing.T) {
	for _, name := range Names() {
		t.Run(string(name), func(t *testing.T) {
			assert.Equal(t, 0.0, estimate(t, name, problemtest.Trivial()))
		})
	}
}

func TestEstimate_Gripper(t *testing.T) {
	tests := []struct {
		name Name
		want float64
	}{
		{Blind, 1},
		{GoalCount, 1},
		{Max, 2},
		{Sum, 3},
		{FastForward, 3},
	}
	for _, tt := range tests {
		t.Run(string(tt.name), func(t *testing.T) {
			assert.Equal(t, tt.want, estimate(t, tt.name, problemtest.Gripper(1)))
		})
	}
}

func TestEstimate_Line(t *testing.T) {
	for _, name := range []Name{Max, Sum, FastForward} {
		t.Run(string(name), func(t *testing.T) {
			assert.Equal(t, 4.0, estimate(t, name, problemtest.Line(5)))
		})
	}
}

func TestEstimate_ConditionalEffects(t *testing.T) {
	assert.Equal(t, 1.0, estimate(t, Max, problemtest.Switches(2)))
	assert.Equal(t, 2.0, estimate(t, Sum, problemtest.Switches(2)))
	assert.Equal(t, 2.0, estimate(t, FastForward, problemtest.Switches(2)))
	assert.Equal(t, 2.0, estimate(t, GoalCount, problemtest.Switches(2)))
}

func TestEstimate_Unreachable(t *testing.T) {
	for _, name := range []Name{Max, Sum, FastForward} {
		t.Run(string(name), func(t *testing.T) {
			h := estimate(t, name, problemtest.DeadEnd())
			assert.True(t, math.IsInf(h, 1))
			assert.True(t, IsUnreachable(h))
		})
	}
}

func TestEstimate_NegativeGoalOnly(t *testing.T) {
	spec := problemtest.Move()
	spec.Goal = problem.LiteralSpec{Neg: []string{"at-a"}}
	for _, name := range Names() {
		t.Run(string(name), func(t *testing.T) {
			assert.Equal(t, 1.0, estimate(t, name, spec))
		})
	}
}

func TestEstimate_MaxNeverExceedsOptimal(t *testing.T) {
	// Optimal plan lengths for gripper: 3 (1 ball), 5 (2 balls), 9 (3 balls).
	optimal := map[int]float64{1: 3, 2: 5, 3: 9}
	for balls, opt := range optimal {
		h := estimate(t, Max, problemtest.Gripper(balls))
		assert.LessOrEqual(t, h, opt)
	}
}
