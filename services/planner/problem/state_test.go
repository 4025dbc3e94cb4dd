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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestState_Satisfy(t *testing.T) {
	s := NewState(FactSetOf(8, 1, 2))

	tests := []struct {
		name string
		cond Condition
		want bool
	}{
		{"empty condition", Condition{}, true},
		{"positive subset", Condition{Positive: FactSetOf(8, 1)}, true},
		{"positive missing", Condition{Positive: FactSetOf(8, 1, 3)}, false},
		{"negative absent", Condition{Negative: FactSetOf(8, 4)}, true},
		{"negative present", Condition{Negative: FactSetOf(8, 2)}, false},
		{"mixed", Condition{Positive: FactSetOf(8, 1, 2), Negative: FactSetOf(8, 0, 5)}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.Satisfy(tt.cond))
		})
	}
}

func TestState_ApplyDeletesBeforeAdds(t *testing.T) {
	s := NewState(FactSetOf(8, 1))
	// Fact 2 is both deleted and added: adds win.
	next := s.Apply(Effect{Add: FactSetOf(8, 2), Delete: FactSetOf(8, 1, 2)})

	assert.Equal(t, []Fact{2}, next.Facts().Facts())
	assert.True(t, s.Holds(1), "original state must be unchanged")
	assert.False(t, s.Holds(2))
}

func TestState_NewStateCopies(t *testing.T) {
	facts := FactSetOf(8, 1)
	s := NewState(facts)
	facts.Add(5)
	assert.False(t, s.Holds(5))

	out := s.Facts()
	out.Add(6)
	assert.False(t, s.Holds(6))
}

func TestState_EqualAndKey(t *testing.T) {
	a := NewState(FactSetOf(8, 1, 3))
	b := NewState(FactSetOf(8, 3)).Apply(Effect{Add: FactSetOf(8, 1)})
	assert.True(t, a.Equal(b))
	assert.Equal(t, a.Key(), b.Key())
	assert.Equal(t, "{1, 3}", a.String())
}

func TestAction_SuccessorConditionalEffects(t *testing.T) {
	const (
		p Fact = iota
		q
		r
		s
	)
	a := Action{
		Name:         "act",
		Precondition: Condition{Positive: FactSetOf(4, p)},
		Effects: []ConditionalEffect{
			// Unconditional: delete p, add q.
			{Effect: Effect{Add: FactSetOf(4, q), Delete: FactSetOf(4, p)}},
			// Condition evaluated on the originating state, where q is false.
			{Condition: Condition{Positive: FactSetOf(4, q)}, Effect: Effect{Add: FactSetOf(4, r)}},
			// p holds in the originating state even though the first effect deletes it.
			{Condition: Condition{Positive: FactSetOf(4, p)}, Effect: Effect{Add: FactSetOf(4, s)}},
		},
	}

	start := NewState(FactSetOf(4, p))
	assert.True(t, a.IsApplicable(start))
	assert.False(t, a.IsApplicable(NewState(NewFactSet(4))))

	next := a.Successor(start)
	assert.Equal(t, []Fact{q, s}, next.Facts().Facts())
	assert.True(t, start.Holds(p), "successor must not mutate its parent")
}

func TestAction_SuccessorEffectOrder(t *testing.T) {
	// Later effects override earlier ones on the same fact.
	a := Action{
		Effects: []ConditionalEffect{
			{Effect: Effect{Add: FactSetOf(2, 0)}},
			{Effect: Effect{Delete: FactSetOf(2, 0)}},
		},
	}
	next := a.Successor(NewState(NewFactSet(2)))
	assert.False(t, next.Holds(0))
}
