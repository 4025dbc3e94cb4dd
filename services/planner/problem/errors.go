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

import "errors"

// Sentinel errors for the problem package.
var (
	// ErrUnsupported indicates the problem declares a requirement outside
	// the fragment the planners handle.
	ErrUnsupported = errors.New("problem not supported")

	// ErrInvalidTask indicates a malformed task description.
	ErrInvalidTask = errors.New("invalid task")
)
