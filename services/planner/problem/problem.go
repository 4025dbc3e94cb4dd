// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package problem

import (
	"fmt"
	"strings"
)

// Requirement is a declared language requirement flag.
type Requirement string

// Requirements inside the supported fragment.
const (
	ReqStrips                   Requirement = "strips"
	ReqTyping                   Requirement = "typing"
	ReqNegativePreconditions    Requirement = "negative-preconditions"
	ReqDisjunctivePreconditions Requirement = "disjunctive-preconditions"
	ReqEquality                 Requirement = "equality"
	ReqExistentialPrecondition  Requirement = "existential-preconditions"
	ReqUniversalPreconditions   Requirement = "universal-preconditions"
	ReqQuantifiedPreconditions  Requirement = "quantified-preconditions"
	ReqConditionalEffects       Requirement = "conditional-effects"
	ReqADL                      Requirement = "adl"
)

// Requirements outside the supported fragment.
const (
	ReqActionCosts          Requirement = "action-costs"
	ReqConstraints          Requirement = "constraints"
	ReqContinuousEffects    Requirement = "continuous-effects"
	ReqDerivedPredicates    Requirement = "derived-predicates"
	ReqDurativeActions      Requirement = "durative-actions"
	ReqDurationInequalities Requirement = "duration-inequalities"
	ReqFluents              Requirement = "fluents"
	ReqGoalUtilities        Requirement = "goal-utilities"
	ReqMethodConstraints    Requirement = "method-constraints"
	ReqNumericFluents       Requirement = "numeric-fluents"
	ReqObjectFluents        Requirement = "object-fluents"
	ReqPreferences          Requirement = "preferences"
	ReqTimedInitialLiterals Requirement = "timed-initial-literals"
	ReqHierarchy            Requirement = "hierarchy"
)

var requirementSupport = map[Requirement]bool{
	ReqStrips:                   true,
	ReqTyping:                   true,
	ReqNegativePreconditions:    true,
	ReqDisjunctivePreconditions: true,
	ReqEquality:                 true,
	ReqExistentialPrecondition:  true,
	ReqUniversalPreconditions:   true,
	ReqQuantifiedPreconditions:  true,
	ReqConditionalEffects:       true,
	ReqADL:                      true,

	ReqActionCosts:          false,
	ReqConstraints:          false,
	ReqContinuousEffects:    false,
	ReqDerivedPredicates:    false,
	ReqDurativeActions:      false,
	ReqDurationInequalities: false,
	ReqFluents:              false,
	ReqGoalUtilities:        false,
	ReqMethodConstraints:    false,
	ReqNumericFluents:       false,
	ReqObjectFluents:        false,
	ReqPreferences:          false,
	ReqTimedInitialLiterals: false,
	ReqHierarchy:            false,
}

// Known reports whether r is a recognised requirement flag.
func (r Requirement) Known() bool {
	_, ok := requirementSupport[r]
	return ok
}

// Supported reports whether r lies inside the supported fragment.
func (r Requirement) Supported() bool {
	return requirementSupport[r]
}

// Problem is a ground planning task.
//
// Description:
//
//	A Problem owns the fact table, the initial state, the goal condition
//	and the ordered ground actions. Action indices are stable and are the
//	identifiers used in plans. A Problem is immutable once built; both
//	planners read it concurrently without locking.
//
// Thread Safety: Safe for concurrent use.
type Problem struct {
	name         string
	facts        []string
	factIndex    map[string]Fact
	init         State
	goal         Condition
	actions      []Action
	requirements []Requirement
}

// Name returns the task name.
func (p *Problem) Name() string {
	return p.name
}

// FactCount returns the size of the fact table.
func (p *Problem) FactCount() int {
	return len(p.facts)
}

// FactName returns the name of fact f, or "" if f is out of range.
func (p *Problem) FactName(f Fact) string {
	if f < 0 || int(f) >= len(p.facts) {
		return ""
	}
	return p.facts[f]
}

// FactByName looks up a fact by name.
func (p *Problem) FactByName(name string) (Fact, bool) {
	f, ok := p.factIndex[name]
	return f, ok
}

// InitialState returns the initial state.
func (p *Problem) InitialState() State {
	return p.init
}

// Goal returns the goal condition.
func (p *Problem) Goal() Condition {
	return p.goal
}

// Actions returns the ordered ground actions. Callers must not modify
// the returned slice.
func (p *Problem) Actions() []Action {
	return p.actions
}

// Action returns the action at index i.
func (p *Problem) Action(i int) (*Action, bool) {
	if i < 0 || i >= len(p.actions) {
		return nil, false
	}
	return &p.actions[i], true
}

// Requirements returns a copy of the declared requirement flags.
func (p *Problem) Requirements() []Requirement {
	out := make([]Requirement, len(p.requirements))
	copy(out, p.requirements)
	return out
}

// Supported reports whether every declared requirement is inside the
// supported fragment.
func (p *Problem) Supported() bool {
	return p.CheckSupported() == nil
}

// CheckSupported returns an error wrapping ErrUnsupported that names the
// offending requirements, or nil.
func (p *Problem) CheckSupported() error {
	var bad []string
	for _, r := range p.requirements {
		if !r.Supported() {
			bad = append(bad, string(r))
		}
	}
	if len(bad) == 0 {
		return nil
	}
	return fmt.Errorf("%w: requirements %s", ErrUnsupported, strings.Join(bad, ", "))
}

// DescribeCondition renders a condition with fact names, e.g.
// "(and at-b (not at-a))".
func (p *Problem) DescribeCondition(c Condition) string {
	var parts []string
	for _, f := range c.Positive.Facts() {
		parts = append(parts, p.FactName(f))
	}
	for _, f := range c.Negative.Facts() {
		parts = append(parts, "(not "+p.FactName(f)+")")
	}
	if len(parts) == 0 {
		return "(and)"
	}
	return "(and " + strings.Join(parts, " ") + ")"
}
