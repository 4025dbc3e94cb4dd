// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package rollout

import (
	"fmt"
	"time"

	"github.com/AleutianAI/AleutianPlan/services/planner/search"
)

// Config configures the Monte-Carlo rollout planner.
type Config struct {
	// RolloutsPerAction is the number of random walks run from each
	// candidate successor. Must be > 0.
	RolloutsPerAction int

	// MaxRolloutDepth caps the length of one random walk. Must be > 0.
	MaxRolloutDepth int

	// MaxPlanSteps caps the number of committed actions. Must be > 0.
	MaxPlanSteps int

	// Seed for the random source. 0 derives a seed from the clock; the
	// effective seed is reported in the result stats.
	Seed int64

	// Timeout bounds the search wall time. 0 uses search.DefaultTimeout.
	Timeout time.Duration

	// Parallelism is the number of candidates evaluated concurrently.
	// 0 and 1 evaluate sequentially from a single random stream.
	Parallelism int
}

// DefaultConfig returns 200 rollouts of depth 60 and at most 200 steps.
func DefaultConfig() Config {
	return Config{
		RolloutsPerAction: 200,
		MaxRolloutDepth:   60,
		MaxPlanSteps:      200,
		Seed:              0,
		Timeout:           search.DefaultTimeout,
		Parallelism:       0,
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.RolloutsPerAction <= 0 {
		return fmt.Errorf("%w: rollouts per action must be > 0, got %d", search.ErrInvalidConfig, c.RolloutsPerAction)
	}
	if c.MaxRolloutDepth <= 0 {
		return fmt.Errorf("%w: max rollout depth must be > 0, got %d", search.ErrInvalidConfig, c.MaxRolloutDepth)
	}
	if c.MaxPlanSteps <= 0 {
		return fmt.Errorf("%w: max plan steps must be > 0, got %d", search.ErrInvalidConfig, c.MaxPlanSteps)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("%w: timeout must be >= 0, got %v", search.ErrInvalidConfig, c.Timeout)
	}
	if c.Parallelism < 0 {
		return fmt.Errorf("%w: parallelism must be >= 0, got %d", search.ErrInvalidConfig, c.Parallelism)
	}
	return nil
}
