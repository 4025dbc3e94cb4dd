// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package astar

import (
	"fmt"
	"math"
	"time"

	"github.com/AleutianAI/AleutianPlan/services/planner/search"
)

// Config configures the weighted A* engine.
type Config struct {
	// Weight multiplies the heuristic in f = g + Weight*h. Must be > 0.
	// Weight 1 with an admissible estimator gives optimal plans.
	Weight float64

	// Timeout bounds the search wall time. 0 uses search.DefaultTimeout.
	Timeout time.Duration
}

// DefaultConfig returns weight 1 and the default timeout.
func DefaultConfig() Config {
	return Config{
		Weight:  1.0,
		Timeout: search.DefaultTimeout,
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if !(c.Weight > 0) || math.IsInf(c.Weight, 0) {
		return fmt.Errorf("%w: weight must be a positive finite number, got %v", search.ErrInvalidConfig, c.Weight)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("%w: timeout must be >= 0, got %v", search.ErrInvalidConfig, c.Timeout)
	}
	return nil
}
