// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package search

import "errors"

// Sentinel errors for the search engines.
var (
	// Outcome errors, returned by Result.Failure.
	ErrNoPlanFound     = errors.New("no plan found")
	ErrTimeoutExceeded = errors.New("search timeout exceeded")

	// Configuration errors
	ErrInvalidConfig = errors.New("invalid search configuration")
	ErrNilEstimator  = errors.New("estimator must not be nil")
	ErrNilProblem    = errors.New("problem must not be nil")
)

// EngineError wraps an error with the engine and operation that raised it.
type EngineError struct {
	Engine    string
	Operation string
	Err       error
}

func (e *EngineError) Error() string {
	return e.Engine + "." + e.Operation + ": " + e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *EngineError) Unwrap() error {
	return e.Err
}
