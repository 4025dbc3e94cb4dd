// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package search holds the types shared by the planning engines: results,
// outcome statuses, run statistics and the cooperative deadline.
package search

import (
	"fmt"
	"time"

	"github.com/AleutianAI/AleutianPlan/services/planner/plan"
)

// Status is the outcome of a search run.
type Status int

const (
	// StatusSolved means a plan reaching the goal was found.
	StatusSolved Status = iota

	// StatusExhausted means the A* or BFS open list emptied.
	StatusExhausted

	// StatusTimedOut means the deadline was reached.
	StatusTimedOut

	// StatusDeadEnd means the rollout planner reached a state with no
	// applicable action.
	StatusDeadEnd

	// StatusPlanLengthExceeded means the rollout planner committed the
	// maximum number of steps without reaching the goal.
	StatusPlanLengthExceeded

	// StatusEvaluationExhausted means no candidate action completed a
	// rollout before the deadline.
	StatusEvaluationExhausted
)

var statusNames = map[Status]string{
	StatusSolved:              "solved",
	StatusExhausted:           "exhausted",
	StatusTimedOut:            "timed_out",
	StatusDeadEnd:             "dead_end",
	StatusPlanLengthExceeded:  "plan_length_exceeded",
	StatusEvaluationExhausted: "evaluation_exhausted",
}

// String returns the snake_case status name.
func (s Status) String() string {
	if n, ok := statusNames[s]; ok {
		return n
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Status) UnmarshalText(b []byte) error {
	for k, v := range statusNames {
		if v == string(b) {
			*s = k
			return nil
		}
	}
	return fmt.Errorf("unknown status %q", string(b))
}

// Stats are counters collected during a run. Engines fill the fields that
// apply to them and leave the rest zero.
type Stats struct {
	// NodesExpanded counts states popped and expanded (A*, BFS).
	NodesExpanded int `json:"nodes_expanded"`

	// NodesGenerated counts successors pushed onto the open list.
	NodesGenerated int `json:"nodes_generated"`

	// StaleSkipped counts popped nodes whose state was already closed.
	StaleSkipped int `json:"stale_skipped"`

	// Rollouts counts completed random walks (rollout planner).
	Rollouts int `json:"rollouts"`

	// RolloutSteps counts actions applied inside rollouts.
	RolloutSteps int `json:"rollout_steps"`

	// Steps counts actions committed by the rollout planner.
	Steps int `json:"steps"`

	// Seed is the effective random seed (rollout planner).
	Seed int64 `json:"seed,omitempty"`

	// Elapsed is the wall time of the run.
	Elapsed time.Duration `json:"elapsed"`
}

// Result is the outcome of one engine run.
//
// A non-solved Status is a normal outcome, not a Go error. Use Failure to
// turn it into an error wrapping ErrNoPlanFound or ErrTimeoutExceeded.
type Result struct {
	Planner string    `json:"planner"`
	Status  Status    `json:"status"`
	Plan    plan.Plan `json:"plan,omitempty"`
	Stats   Stats     `json:"stats"`
}

// Solved reports whether the run produced a plan.
func (r *Result) Solved() bool {
	return r != nil && r.Status == StatusSolved
}

// Failure returns nil for a solved run, an error wrapping
// ErrTimeoutExceeded for a timeout, and an error wrapping ErrNoPlanFound
// otherwise.
func (r *Result) Failure() error {
	switch {
	case r == nil:
		return ErrNoPlanFound
	case r.Status == StatusSolved:
		return nil
	case r.Status == StatusTimedOut:
		return fmt.Errorf("%s: %w", r.Planner, ErrTimeoutExceeded)
	default:
		return fmt.Errorf("%s: %w (%s)", r.Planner, ErrNoPlanFound, r.Status)
	}
}
