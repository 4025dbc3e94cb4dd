// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package searchtest provides deterministic clocks for deadline tests.
package searchtest

import (
	"sync"
	"time"

	"github.com/AleutianAI/AleutianPlan/services/planner/search"
)

// StepClock is a clock that advances by a fixed step on every reading.
//
// A deadline of n*step built on a StepClock expires on exactly the n-th
// poll after creation, which makes timeout behavior independent of host
// speed.
type StepClock struct {
	mu   sync.Mutex
	now  time.Time
	step time.Duration
}

// NewStepClock creates a StepClock starting at a fixed instant.
func NewStepClock(step time.Duration) *StepClock {
	return &StepClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), step: step}
}

// Now returns the current reading and advances the clock.
func (c *StepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.now
	c.now = c.now.Add(c.step)
	return t
}

// Clock returns c as a search.Clock.
func (c *StepClock) Clock() search.Clock {
	return c.Now
}
