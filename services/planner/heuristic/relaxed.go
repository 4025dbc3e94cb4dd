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

	"github.com/AleutianAI/AleutianPlan/services/planner/problem"
)

// relaxedOp is one conditional effect of one action with deletes and
// negative literals dropped.
type relaxedOp struct {
	action int
	pre    []problem.Fact
	add    []problem.Fact
}

type combineFunc func(acc, c float64) float64

func combineMax(acc, c float64) float64 { return math.Max(acc, c) }
func combineSum(acc, c float64) float64 { return acc + c }

// relaxed computes h_max, h_add or the FF relaxed-plan size.
//
// Each call allocates its own cost tables, so one relaxed estimator can
// be shared by concurrent searches.
type relaxed struct {
	facts       int
	ops         []relaxedOp
	combine     combineFunc
	relaxedPlan bool
}

func newRelaxed(p *problem.Problem, combine combineFunc, relaxedPlan bool) *relaxed {
	r := &relaxed{facts: p.FactCount(), combine: combine, relaxedPlan: relaxedPlan}
	for _, a := range p.Actions() {
		for _, ce := range a.Effects {
			add := ce.Effect.Add.Facts()
			if len(add) == 0 {
				continue
			}
			pre := a.Precondition.Positive.Clone()
			pre.Union(ce.Condition.Positive)
			r.ops = append(r.ops, relaxedOp{action: a.Index, pre: pre.Facts(), add: add})
		}
	}
	return r
}

// Estimate implements Estimator.
func (r *relaxed) Estimate(s problem.State, goal problem.Condition) float64 {
	if s.Satisfy(goal) {
		return 0
	}
	cost, supporter := r.propagate(s)

	var h float64
	if r.relaxedPlan {
		h = r.extract(s, goal, cost, supporter)
	} else {
		for _, g := range goal.Positive.Facts() {
			h = r.combine(h, cost[g])
		}
	}
	if h == 0 {
		// Only negative goals are violated; at least one action is needed.
		h = 1
	}
	return h
}

// propagate runs the relaxed reachability fixpoint from s. supporter[f] is
// the operator that last lowered cost[f], or -1.
func (r *relaxed) propagate(s problem.State) ([]float64, []int) {
	cost := make([]float64, r.facts)
	supporter := make([]int, r.facts)
	for f := range cost {
		supporter[f] = -1
		if s.Holds(problem.Fact(f)) {
			cost[f] = 0
		} else {
			cost[f] = math.Inf(1)
		}
	}

	for changed := true; changed; {
		changed = false
		for i := range r.ops {
			op := &r.ops[i]
			c := 0.0
			for _, f := range op.pre {
				c = r.combine(c, cost[f])
				if math.IsInf(c, 1) {
					break
				}
			}
			if math.IsInf(c, 1) {
				continue
			}
			c++
			for _, f := range op.add {
				if c < cost[f] {
					cost[f] = c
					supporter[f] = i
					changed = true
				}
			}
		}
	}
	return cost, supporter
}

// extract counts the distinct actions of a relaxed plan built backwards
// from the goal through best supporters.
func (r *relaxed) extract(s problem.State, goal problem.Condition, cost []float64, supporter []int) float64 {
	var open []problem.Fact
	for _, g := range goal.Positive.Facts() {
		if math.IsInf(cost[g], 1) {
			return math.Inf(1)
		}
		if !s.Holds(g) {
			open = append(open, g)
		}
	}

	achieved := make([]bool, r.facts)
	actions := make(map[int]struct{})
	for len(open) > 0 {
		f := open[len(open)-1]
		open = open[:len(open)-1]
		if achieved[f] {
			continue
		}
		achieved[f] = true

		op := &r.ops[supporter[f]]
		actions[op.action] = struct{}{}
		for _, pf := range op.pre {
			if !achieved[pf] && !s.Holds(pf) {
				open = append(open, pf)
			}
		}
	}
	return float64(len(actions))
}
