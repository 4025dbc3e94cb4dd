// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/AleutianAI/AleutianPlan/services/planner/search"
)

// MeterName is the instrumentation scope of planner metrics.
const MeterName = "aleutianplan.planner"

// Metrics holds the planner's metric instruments.
//
// Thread Safety: Safe for concurrent use after creation.
type Metrics struct {
	// SearchesTotal counts finished searches by planner and status.
	SearchesTotal metric.Int64Counter

	// SearchDuration records search wall time in seconds.
	SearchDuration metric.Float64Histogram

	// NodesExpanded counts states expanded by A* and BFS.
	NodesExpanded metric.Int64Counter

	// RolloutsTotal counts random walks run by the rollout planner.
	RolloutsTotal metric.Int64Counter

	// PlanLength records the length of found plans.
	PlanLength metric.Int64Histogram

	// ErrorsTotal counts rejected searches by planner and kind.
	ErrorsTotal metric.Int64Counter
}

// NewMetrics registers the planner instruments with meter.
//
// Example:
//
//	metrics, err := telemetry.NewMetrics(otel.Meter(telemetry.MeterName))
//	if err != nil {
//	    return fmt.Errorf("create metrics: %w", err)
//	}
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}
	var err error

	m.SearchesTotal, err = meter.Int64Counter(
		"planner_searches_total",
		metric.WithDescription("Total finished searches"),
		metric.WithUnit("{search}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create searches_total: %w", err)
	}

	m.SearchDuration, err = meter.Float64Histogram(
		"planner_search_duration_seconds",
		metric.WithDescription("Search wall time in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.01, 0.1, 0.5, 1, 5, 10, 30, 60, 300, 600),
	)
	if err != nil {
		return nil, fmt.Errorf("create search_duration: %w", err)
	}

	m.NodesExpanded, err = meter.Int64Counter(
		"planner_nodes_expanded_total",
		metric.WithDescription("Total states expanded"),
		metric.WithUnit("{node}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create nodes_expanded_total: %w", err)
	}

	m.RolloutsTotal, err = meter.Int64Counter(
		"planner_rollouts_total",
		metric.WithDescription("Total random walks"),
		metric.WithUnit("{rollout}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create rollouts_total: %w", err)
	}

	m.PlanLength, err = meter.Int64Histogram(
		"planner_plan_length",
		metric.WithDescription("Length of found plans"),
		metric.WithUnit("{action}"),
		metric.WithExplicitBucketBoundaries(0, 1, 2, 5, 10, 20, 50, 100, 200),
	)
	if err != nil {
		return nil, fmt.Errorf("create plan_length: %w", err)
	}

	m.ErrorsTotal, err = meter.Int64Counter(
		"planner_errors_total",
		metric.WithDescription("Total rejected searches"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create errors_total: %w", err)
	}

	return m, nil
}

// RecordSearch records the outcome of one search.
func (m *Metrics) RecordSearch(ctx context.Context, r *search.Result) {
	if m == nil || r == nil {
		return
	}
	planner := attribute.String("planner", r.Planner)
	m.SearchesTotal.Add(ctx, 1, metric.WithAttributes(planner, attribute.String("status", r.Status.String())))
	m.SearchDuration.Record(ctx, r.Stats.Elapsed.Seconds(), metric.WithAttributes(planner))
	if r.Stats.NodesExpanded > 0 {
		m.NodesExpanded.Add(ctx, int64(r.Stats.NodesExpanded), metric.WithAttributes(planner))
	}
	if r.Stats.Rollouts > 0 {
		m.RolloutsTotal.Add(ctx, int64(r.Stats.Rollouts), metric.WithAttributes(planner))
	}
	if r.Solved() {
		m.PlanLength.Record(ctx, int64(len(r.Plan)), metric.WithAttributes(planner))
	}
}

// RecordError records a search rejected before it ran.
func (m *Metrics) RecordError(ctx context.Context, planner, kind string) {
	if m == nil {
		return
	}
	m.ErrorsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("planner", planner),
		attribute.String("kind", kind),
	))
}
