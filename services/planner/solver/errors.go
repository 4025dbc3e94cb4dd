// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package solver

import "errors"

// Sentinel errors for the solver.
var (
	// ErrInvalidConfiguration is returned for options rejected before any
	// search work starts.
	ErrInvalidConfiguration = errors.New("invalid planner configuration")

	// ErrUnsupportedProblem is returned for problems outside the supported
	// fragment. It also matches problem.ErrUnsupported.
	ErrUnsupportedProblem = errors.New("unsupported problem")

	// ErrUnsoundPlan is returned when a found plan fails replay. It
	// indicates an engine defect.
	ErrUnsoundPlan = errors.New("plan failed replay validation")
)
