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

// Action is a ground action.
//
// Actions are built once per problem and shared read-only by every search
// node and rollout.
type Action struct {
	// Name is the printable ground name, e.g. "move a b".
	Name string

	// Index is the position of the action in Problem.Actions.
	Index int

	// Precondition must hold for the action to be applicable.
	Precondition Condition

	// Effects are applied in order; each only if its condition holds in the
	// originating state.
	Effects []ConditionalEffect
}

// IsApplicable reports whether the precondition holds in s.
func (a *Action) IsApplicable(s State) bool {
	return s.Satisfy(a.Precondition)
}

// Successor applies every conditional effect whose condition holds in s,
// in list order, and returns the resulting state. Applicability is not
// checked.
func (a *Action) Successor(s State) State {
	next := s.facts.Clone()
	for i := range a.Effects {
		ce := &a.Effects[i]
		if !s.Satisfy(ce.Condition) {
			continue
		}
		next.Difference(ce.Effect.Delete)
		next.Union(ce.Effect.Add)
	}
	return State{facts: next}
}
