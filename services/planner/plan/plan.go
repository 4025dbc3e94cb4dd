// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package plan holds sequential plans and replays them against a problem.
package plan

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/AleutianAI/AleutianPlan/services/planner/problem"
)

// ErrInvalidPlan indicates a plan that does not solve its problem.
var ErrInvalidPlan = errors.New("invalid plan")

// Plan is an ordered list of action indices into Problem.Actions.
type Plan []int

// Len returns the number of steps.
func (p Plan) Len() int {
	return len(p)
}

// Validate replays p from the initial state.
//
// Description:
//
//	Every step must reference an existing action that is applicable in
//	the state reached so far, and the final state must satisfy the goal.
//
// Outputs:
//
//	problem.State - The final state reached by the replay.
//	error - Wraps ErrInvalidPlan naming the failing step, or nil.
func Validate(pr *problem.Problem, p Plan) (problem.State, error) {
	s := pr.InitialState()
	for step, idx := range p {
		a, ok := pr.Action(idx)
		if !ok {
			return s, fmt.Errorf("%w: step %d: no action with index %d", ErrInvalidPlan, step, idx)
		}
		if !a.IsApplicable(s) {
			return s, fmt.Errorf("%w: step %d: action %q not applicable", ErrInvalidPlan, step, a.Name)
		}
		s = a.Successor(s)
	}
	if !s.Satisfy(pr.Goal()) {
		return s, fmt.Errorf("%w: final state does not satisfy goal %s",
			ErrInvalidPlan, pr.DescribeCondition(pr.Goal()))
	}
	return s, nil
}

// Format renders one "NN: (action name)" line per step.
func Format(pr *problem.Problem, p Plan) string {
	width := max(2, len(strconv.Itoa(len(p)-1)))
	var sb strings.Builder
	for step, idx := range p {
		name := "?"
		if a, ok := pr.Action(idx); ok {
			name = a.Name
		}
		fmt.Fprintf(&sb, "%0*d: (%s)\n", width, step, name)
	}
	return sb.String()
}

// Names returns the action names of p.
func Names(pr *problem.Problem, p Plan) []string {
	out := make([]string, len(p))
	for i, idx := range p {
		if a, ok := pr.Action(idx); ok {
			out[i] = a.Name
		}
	}
	return out
}

// Parse reads a plan written by Format, or one action name per line with
// or without the step prefix and parentheses. Blank lines and lines
// starting with ';' are skipped.
func Parse(pr *problem.Problem, r io.Reader) (Plan, error) {
	index := make(map[string]int, len(pr.Actions()))
	for _, a := range pr.Actions() {
		index[a.Name] = a.Index
	}

	var p Plan
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, ";") {
			continue
		}
		if i := strings.Index(text, ":"); i >= 0 {
			if _, err := strconv.Atoi(strings.TrimSpace(text[:i])); err == nil {
				text = strings.TrimSpace(text[i+1:])
			}
		}
		text = strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(text, "("), ")"))
		idx, ok := index[text]
		if !ok {
			return nil, fmt.Errorf("%w: line %d: unknown action %q", ErrInvalidPlan, line, text)
		}
		p = append(p, idx)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading plan: %w", err)
	}
	return p, nil
}
