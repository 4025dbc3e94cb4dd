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
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// LiteralSpec lists positive and negative fact names.
type LiteralSpec struct {
	Pos []string `yaml:"pos,omitempty" json:"pos,omitempty"`
	Neg []string `yaml:"neg,omitempty" json:"neg,omitempty"`
}

// EffectSpec is a conditional effect by fact name. An empty When is an
// unconditional effect.
type EffectSpec struct {
	When LiteralSpec `yaml:"when,omitempty" json:"when,omitempty"`
	Add  []string    `yaml:"add,omitempty" json:"add,omitempty"`
	Del  []string    `yaml:"del,omitempty" json:"del,omitempty"`
}

// ActionSpec is a ground action by fact name.
type ActionSpec struct {
	Name    string       `yaml:"name" json:"name"`
	Pre     LiteralSpec  `yaml:"pre,omitempty" json:"pre,omitempty"`
	Effects []EffectSpec `yaml:"effects,omitempty" json:"effects,omitempty"`
}

// TaskSpec is the serialized form of a ground task.
//
// Description:
//
//	Facts lists the fact table in order. It is optional: facts referenced
//	by init, goal or actions that are not listed are appended in the order
//	they are first seen. YAML and JSON documents decode into the same
//	structure.
type TaskSpec struct {
	Name         string        `yaml:"name" json:"name"`
	Requirements []Requirement `yaml:"requirements,omitempty" json:"requirements,omitempty"`
	Facts        []string      `yaml:"facts,omitempty" json:"facts,omitempty"`
	Init         []string      `yaml:"init,omitempty" json:"init,omitempty"`
	Goal         LiteralSpec   `yaml:"goal" json:"goal"`
	Actions      []ActionSpec  `yaml:"actions" json:"actions"`
}

// Build turns a task spec into a Problem.
//
// Outputs:
//
//	*Problem - The built problem.
//	error - Wraps ErrInvalidTask for empty or duplicate action names,
//	        duplicate fact names and unknown requirement flags.
//
// Limitations:
//
//	Build does not check the supported fragment; see Problem.CheckSupported.
func Build(spec TaskSpec) (*Problem, error) {
	t := &table{index: make(map[string]Fact)}
	for _, name := range spec.Facts {
		if name == "" {
			return nil, fmt.Errorf("%w: empty fact name", ErrInvalidTask)
		}
		if _, dup := t.index[name]; dup {
			return nil, fmt.Errorf("%w: duplicate fact %q", ErrInvalidTask, name)
		}
		t.intern(name)
	}
	for _, r := range spec.Requirements {
		if !r.Known() {
			return nil, fmt.Errorf("%w: unknown requirement %q", ErrInvalidTask, r)
		}
	}

	// Intern every referenced fact first so all sets share one capacity.
	t.internAll(spec.Init)
	t.internLiterals(spec.Goal)
	seen := make(map[string]struct{}, len(spec.Actions))
	for _, a := range spec.Actions {
		if a.Name == "" {
			return nil, fmt.Errorf("%w: action with empty name", ErrInvalidTask)
		}
		if _, dup := seen[a.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate action %q", ErrInvalidTask, a.Name)
		}
		seen[a.Name] = struct{}{}
		t.internLiterals(a.Pre)
		for _, e := range a.Effects {
			t.internLiterals(e.When)
			t.internAll(e.Add)
			t.internAll(e.Del)
		}
	}

	p := &Problem{
		name:         spec.Name,
		facts:        t.names,
		factIndex:    t.index,
		init:         State{facts: t.set(spec.Init)},
		goal:         t.condition(spec.Goal),
		actions:      make([]Action, len(spec.Actions)),
		requirements: append([]Requirement(nil), spec.Requirements...),
	}
	for i, a := range spec.Actions {
		effects := make([]ConditionalEffect, len(a.Effects))
		for j, e := range a.Effects {
			effects[j] = ConditionalEffect{
				Condition: t.condition(e.When),
				Effect:    Effect{Add: t.set(e.Add), Delete: t.set(e.Del)},
			}
		}
		p.actions[i] = Action{
			Name:         a.Name,
			Index:        i,
			Precondition: t.condition(a.Pre),
			Effects:      effects,
		}
	}
	return p, nil
}

// Spec converts the problem back into its serializable form.
func (p *Problem) Spec() TaskSpec {
	spec := TaskSpec{
		Name:         p.name,
		Requirements: p.Requirements(),
		Facts:        append([]string(nil), p.facts...),
		Init:         p.names(p.init.facts),
		Goal:         p.literals(p.goal),
		Actions:      make([]ActionSpec, len(p.actions)),
	}
	for i := range p.actions {
		a := &p.actions[i]
		as := ActionSpec{Name: a.Name, Pre: p.literals(a.Precondition)}
		for _, ce := range a.Effects {
			as.Effects = append(as.Effects, EffectSpec{
				When: p.literals(ce.Condition),
				Add:  p.names(ce.Effect.Add),
				Del:  p.names(ce.Effect.Delete),
			})
		}
		spec.Actions[i] = as
	}
	return spec
}

// Decode reads a YAML or JSON task document and builds the Problem.
func Decode(r io.Reader) (*Problem, error) {
	var spec TaskSpec
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&spec); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", ErrInvalidTask)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidTask, err)
	}
	return Build(spec)
}

// DecodeFile reads a task document from path.
func DecodeFile(path string) (*Problem, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening task file: %w", err)
	}
	defer f.Close()

	p, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return p, nil
}

// Encode writes the problem as a YAML task document.
func Encode(w io.Writer, p *Problem) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(p.Spec()); err != nil {
		return fmt.Errorf("encoding task: %w", err)
	}
	return enc.Close()
}

func (p *Problem) names(s FactSet) []string {
	facts := s.Facts()
	if len(facts) == 0 {
		return nil
	}
	out := make([]string, len(facts))
	for i, f := range facts {
		out[i] = p.facts[f]
	}
	return out
}

func (p *Problem) literals(c Condition) LiteralSpec {
	return LiteralSpec{Pos: p.names(c.Positive), Neg: p.names(c.Negative)}
}

// table interns fact names in first-seen order.
type table struct {
	names []string
	index map[string]Fact
}

func (t *table) intern(name string) Fact {
	if f, ok := t.index[name]; ok {
		return f
	}
	f := Fact(len(t.names))
	t.names = append(t.names, name)
	t.index[name] = f
	return f
}

func (t *table) internAll(names []string) {
	for _, n := range names {
		t.intern(n)
	}
}

func (t *table) internLiterals(l LiteralSpec) {
	t.internAll(l.Pos)
	t.internAll(l.Neg)
}

func (t *table) set(names []string) FactSet {
	s := NewFactSet(len(t.names))
	for _, n := range names {
		s.Add(t.index[n])
	}
	return s
}

func (t *table) condition(l LiteralSpec) Condition {
	return Condition{Positive: t.set(l.Pos), Negative: t.set(l.Neg)}
}
