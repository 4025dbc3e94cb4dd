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

import "time"

// DefaultTimeout applies when an engine is configured with a zero timeout.
const DefaultTimeout = 600 * time.Second

// Clock returns the current time. Tests inject a fake clock.
type Clock func() time.Time

// Deadline is a cooperative wall-clock limit polled at loop heads.
//
// Description:
//
//	Engines call Exceeded at the top of their main loop (and the rollout
//	planner before each rollout). Nothing is interrupted asynchronously; a
//	single expansion or rollout always runs to completion.
//
// Thread Safety: Safe for concurrent reads once created.
type Deadline struct {
	start time.Time
	limit time.Duration
	now   Clock
}

// NewDeadline starts a deadline of limit from now. A limit <= 0 never
// expires. A nil clock uses time.Now.
func NewDeadline(limit time.Duration, now Clock) *Deadline {
	if now == nil {
		now = time.Now
	}
	return &Deadline{start: now(), limit: limit, now: now}
}

// Exceeded reports whether the limit has been reached.
func (d *Deadline) Exceeded() bool {
	return d.limit > 0 && d.now().Sub(d.start) >= d.limit
}

// Elapsed returns the time since the deadline started.
func (d *Deadline) Elapsed() time.Duration {
	return d.now().Sub(d.start)
}

// Remaining returns the time left, or 0 once exceeded. It returns -1 for
// a deadline that never expires.
func (d *Deadline) Remaining() time.Duration {
	if d.limit <= 0 {
		return -1
	}
	return max(0, d.limit-d.Elapsed())
}

// Limit returns the configured limit.
func (d *Deadline) Limit() time.Duration {
	return d.limit
}

// EffectiveTimeout maps a zero timeout to DefaultTimeout.
func EffectiveTimeout(t time.Duration) time.Duration {
	if t == 0 {
		return DefaultTimeout
	}
	return t
}
