// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package problemtest provides small ground tasks shared by planner tests.
package problemtest

import (
	"fmt"
	"testing"

	"github.com/AleutianAI/AleutianPlan/services/planner/problem"
)

// MustBuild builds spec or fails the test.
func MustBuild(tb testing.TB, spec problem.TaskSpec) *problem.Problem {
	tb.Helper()
	p, err := problem.Build(spec)
	if err != nil {
		tb.Fatalf("building %q: %v", spec.Name, err)
	}
	return p
}

// Move is the one-step task: at-a holds, move-a-b reaches at-b.
func Move() problem.TaskSpec {
	return problem.TaskSpec{
		Name:         "move",
		Requirements: []problem.Requirement{problem.ReqStrips},
		Facts:        []string{"at-a", "at-b"},
		Init:         []string{"at-a"},
		Goal:         problem.LiteralSpec{Pos: []string{"at-b"}},
		Actions: []problem.ActionSpec{{
			Name:    "move-a-b",
			Pre:     problem.LiteralSpec{Pos: []string{"at-a"}},
			Effects: []problem.EffectSpec{{Add: []string{"at-b"}, Del: []string{"at-a"}}},
		}},
	}
}

// Unreachable is Move with the goal {at-a, at-b}, which no state satisfies.
func Unreachable() problem.TaskSpec {
	spec := Move()
	spec.Name = "unreachable"
	spec.Goal = problem.LiteralSpec{Pos: []string{"at-a", "at-b"}}
	return spec
}

// Trivial is Move with a goal already true in the initial state.
func Trivial() problem.TaskSpec {
	spec := Move()
	spec.Name = "trivial"
	spec.Goal = problem.LiteralSpec{Pos: []string{"at-a"}, Neg: []string{"at-b"}}
	return spec
}

// DeadEnd has a single applicable action that leads to a state with no
// applicable actions and no goal.
func DeadEnd() problem.TaskSpec {
	return problem.TaskSpec{
		Name:  "dead-end",
		Facts: []string{"at-a", "in-pit", "at-b"},
		Init:  []string{"at-a"},
		Goal:  problem.LiteralSpec{Pos: []string{"at-b"}},
		Actions: []problem.ActionSpec{{
			Name:    "fall",
			Pre:     problem.LiteralSpec{Pos: []string{"at-a"}},
			Effects: []problem.EffectSpec{{Add: []string{"in-pit"}, Del: []string{"at-a"}}},
		}},
	}
}

// Unsupported declares a requirement outside the supported fragment.
func Unsupported() problem.TaskSpec {
	spec := Move()
	spec.Name = "durative"
	spec.Requirements = []problem.Requirement{problem.ReqStrips, problem.ReqDurativeActions}
	return spec
}

// Line is a corridor of n cells with moves in both directions. The goal
// is the last cell; the optimal plan has n-1 steps.
func Line(n int) problem.TaskSpec {
	spec := problem.TaskSpec{
		Name: fmt.Sprintf("line-%d", n),
		Init: []string{cell(0)},
		Goal: problem.LiteralSpec{Pos: []string{cell(n - 1)}},
	}
	for i := 0; i < n; i++ {
		spec.Facts = append(spec.Facts, cell(i))
	}
	for i := 0; i+1 < n; i++ {
		spec.Actions = append(spec.Actions,
			step(cell(i), cell(i+1)),
			step(cell(i+1), cell(i)),
		)
	}
	return spec
}

// Gripper is the classic two-room, two-gripper task with the given number
// of balls, all starting in room a and wanted in room b.
func Gripper(balls int) problem.TaskSpec {
	rooms := []string{"a", "b"}
	grippers := []string{"left", "right"}

	spec := problem.TaskSpec{
		Name:         fmt.Sprintf("gripper-%d", balls),
		Requirements: []problem.Requirement{problem.ReqStrips},
		Init:         []string{"at-robby-a", "free-left", "free-right"},
	}
	for i := 0; i < balls; i++ {
		b := fmt.Sprintf("ball%d", i+1)
		spec.Init = append(spec.Init, "at-"+b+"-a")
		spec.Goal.Pos = append(spec.Goal.Pos, "at-"+b+"-b")
	}

	for _, from := range rooms {
		for _, to := range rooms {
			if from == to {
				continue
			}
			spec.Actions = append(spec.Actions, problem.ActionSpec{
				Name: "move " + from + " " + to,
				Pre:  problem.LiteralSpec{Pos: []string{"at-robby-" + from}},
				Effects: []problem.EffectSpec{{
					Add: []string{"at-robby-" + to},
					Del: []string{"at-robby-" + from},
				}},
			})
		}
	}
	for i := 0; i < balls; i++ {
		b := fmt.Sprintf("ball%d", i+1)
		for _, r := range rooms {
			for _, g := range grippers {
				spec.Actions = append(spec.Actions,
					problem.ActionSpec{
						Name: "pick " + b + " " + r + " " + g,
						Pre:  problem.LiteralSpec{Pos: []string{"at-" + b + "-" + r, "at-robby-" + r, "free-" + g}},
						Effects: []problem.EffectSpec{{
							Add: []string{"carry-" + b + "-" + g},
							Del: []string{"at-" + b + "-" + r, "free-" + g},
						}},
					},
					problem.ActionSpec{
						Name: "drop " + b + " " + r + " " + g,
						Pre:  problem.LiteralSpec{Pos: []string{"carry-" + b + "-" + g, "at-robby-" + r}},
						Effects: []problem.EffectSpec{{
							Add: []string{"at-" + b + "-" + r, "free-" + g},
							Del: []string{"carry-" + b + "-" + g},
						}},
					},
				)
			}
		}
	}
	return spec
}

// Switches has n lamps and one toggle action per lamp implemented with
// conditional effects and a negative-precondition guard. The goal is all
// lamps on; the optimal plan toggles each lamp once.
func Switches(n int) problem.TaskSpec {
	spec := problem.TaskSpec{
		Name:         fmt.Sprintf("switches-%d", n),
		Requirements: []problem.Requirement{problem.ReqConditionalEffects, problem.ReqNegativePreconditions},
		Facts:        []string{"broken"},
	}
	for i := 0; i < n; i++ {
		on := fmt.Sprintf("on-%d", i)
		spec.Goal.Pos = append(spec.Goal.Pos, on)
		spec.Actions = append(spec.Actions, problem.ActionSpec{
			Name: fmt.Sprintf("toggle %d", i),
			Pre:  problem.LiteralSpec{Neg: []string{"broken"}},
			Effects: []problem.EffectSpec{
				{When: problem.LiteralSpec{Neg: []string{on}}, Add: []string{on}},
				{When: problem.LiteralSpec{Pos: []string{on}}, Del: []string{on}},
			},
		})
	}
	return spec
}

func cell(i int) string {
	return fmt.Sprintf("at-%d", i)
}

func step(from, to string) problem.ActionSpec {
	return problem.ActionSpec{
		Name:    "step " + from + " " + to,
		Pre:     problem.LiteralSpec{Pos: []string{from}},
		Effects: []problem.EffectSpec{{Add: []string{to}, Del: []string{from}}},
	}
}
