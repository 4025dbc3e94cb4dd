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

// Condition is a conjunction of fact literals.
//
// A state satisfies the condition when every Positive fact holds and no
// Negative fact holds. The zero Condition is always satisfied.
type Condition struct {
	Positive FactSet
	Negative FactSet
}

// IsTrivial reports whether the condition has no literals.
func (c Condition) IsTrivial() bool {
	return c.Positive.IsEmpty() && c.Negative.IsEmpty()
}

// Effect adds and deletes facts.
type Effect struct {
	Add    FactSet
	Delete FactSet
}

// ConditionalEffect applies Effect only when Condition holds in the state
// being expanded.
type ConditionalEffect struct {
	Condition Condition
	Effect    Effect
}

// State is the set of facts true in a world state.
//
// Description:
//
//	States are values. Equality and hashing are structural over the fact
//	bitset, which is what the A* closed list relies on. A State is never
//	mutated after creation; Apply and Successor always return a new State.
//
// Thread Safety: Safe for concurrent use.
type State struct {
	facts FactSet
}

// NewState creates a state holding a private copy of facts.
func NewState(facts FactSet) State {
	return State{facts: facts.Clone()}
}

// Facts returns a copy of the facts true in the state.
func (s State) Facts() FactSet {
	return s.facts.Clone()
}

// Holds reports whether fact f is true.
func (s State) Holds(f Fact) bool {
	return s.facts.Has(f)
}

// Satisfy reports whether the state satisfies the condition.
func (s State) Satisfy(c Condition) bool {
	return s.facts.ContainsAll(c.Positive) && !s.facts.Intersects(c.Negative)
}

// Apply returns a new state with the effect applied, deletes first.
func (s State) Apply(e Effect) State {
	next := s.facts.Clone()
	next.Difference(e.Delete)
	next.Union(e.Add)
	return State{facts: next}
}

// Equal reports structural equality.
func (s State) Equal(o State) bool {
	return s.facts.Equal(o.facts)
}

// Key returns the hashable identity of the state.
func (s State) Key() string {
	return s.facts.Key()
}

// String renders the true facts by index.
func (s State) String() string {
	return s.facts.String()
}
