// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package heuristic provides goal-distance estimators for informed search.
//
// # Catalog
//
//   - blind: 0 at the goal, 1 elsewhere.
//   - goal_count: number of goal literals not yet satisfied.
//   - max: h_max over the delete relaxation. Admissible.
//   - sum: h_add over the delete relaxation.
//   - fast_forward: size of a relaxed plan extracted from h_add best
//     supporters.
//
// The relaxed estimators ignore delete lists and negative literals and
// treat every conditional effect as its own relaxed operator, whose
// precondition is the action precondition joined with the effect
// condition. An unreachable goal estimates to +Inf.
package heuristic

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/AleutianAI/AleutianPlan/services/planner/problem"
)

// ErrUnknownHeuristic indicates a heuristic name outside the catalog.
var ErrUnknownHeuristic = errors.New("unknown heuristic")

// Estimator estimates the number of actions from a state to the goal.
//
// Estimate must return a value >= 0. +Inf means the goal is unreachable
// from the state.
type Estimator interface {
	Estimate(s problem.State, goal problem.Condition) float64
}

// EstimatorFunc adapts a function to the Estimator interface.
type EstimatorFunc func(s problem.State, goal problem.Condition) float64

// Estimate calls f(s, goal).
func (f EstimatorFunc) Estimate(s problem.State, goal problem.Condition) float64 {
	return f(s, goal)
}

// Name identifies an estimator in the catalog.
type Name string

// Catalog names.
const (
	Blind       Name = "blind"
	GoalCount   Name = "goal_count"
	Max         Name = "max"
	Sum         Name = "sum"
	FastForward Name = "fast_forward"
)

// DefaultName is used when no heuristic is configured.
const DefaultName = FastForward

// Names lists the catalog in display order.
func Names() []Name {
	return []Name{Blind, GoalCount, Max, Sum, FastForward}
}

// ParseName accepts catalog names case-insensitively, with '-' or '_'
// separators, so "FAST_FORWARD", "fast-forward" and "fast_forward" are
// the same heuristic.
func ParseName(s string) (Name, error) {
	n := Name(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_"))
	for _, known := range Names() {
		if n == known {
			return n, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownHeuristic, s)
}

// Admissible reports whether the estimator never overestimates the
// optimal unit-cost plan length.
func (n Name) Admissible() bool {
	return n == Blind || n == Max
}

// New builds the named estimator for p.
func New(name Name, p *problem.Problem) (Estimator, error) {
	switch name {
	case Blind:
		return EstimatorFunc(blind), nil
	case GoalCount:
		return EstimatorFunc(goalCount), nil
	case Max:
		return newRelaxed(p, combineMax, false), nil
	case Sum:
		return newRelaxed(p, combineSum, false), nil
	case FastForward:
		return newRelaxed(p, combineSum, true), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownHeuristic, name)
	}
}

func blind(s problem.State, goal problem.Condition) float64 {
	if s.Satisfy(goal) {
		return 0
	}
	return 1
}

func goalCount(s problem.State, goal problem.Condition) float64 {
	n := 0
	for _, f := range goal.Positive.Facts() {
		if !s.Holds(f) {
			n++
		}
	}
	for _, f := range goal.Negative.Facts() {
		if s.Holds(f) {
			n++
		}
	}
	return float64(n)
}

// IsUnreachable reports whether h marks a dead end.
func IsUnreachable(h float64) bool {
	return math.IsInf(h, 1)
}
