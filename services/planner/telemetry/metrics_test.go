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
	"testing"
	"time"

	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/AleutianAI/AleutianPlan/services/planner/plan"
	"github.com/AleutianAI/AleutianPlan/services/planner/search"
)

func newTestMetrics(t *testing.T) (*Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	m, err := NewMetrics(mp.Meter(MeterName))
	if err != nil {
		t.Fatalf("NewMetrics() error = %v", err)
	}
	return m, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	out := make(map[string]metricdata.Metrics)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func sumOf(t *testing.T, m metricdata.Metrics) int64 {
	t.Helper()
	sum, ok := m.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("%s: data is %T, want Sum[int64]", m.Name, m.Data)
	}
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func TestNewMetrics(t *testing.T) {
	m, _ := newTestMetrics(t)
	if m.SearchesTotal == nil || m.SearchDuration == nil || m.NodesExpanded == nil ||
		m.RolloutsTotal == nil || m.PlanLength == nil || m.ErrorsTotal == nil {
		t.Error("NewMetrics() left an instrument nil")
	}
}

func TestRecordSearch_Solved(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordSearch(ctx, &search.Result{
		Planner: "astar",
		Status:  search.StatusSolved,
		Plan:    plan.Plan{0, 1, 2},
		Stats:   search.Stats{NodesExpanded: 17, Elapsed: 250 * time.Millisecond},
	})

	got := collect(t, reader)
	if v := sumOf(t, got["planner_searches_total"]); v != 1 {
		t.Errorf("searches_total = %d, want 1", v)
	}
	if v := sumOf(t, got["planner_nodes_expanded_total"]); v != 17 {
		t.Errorf("nodes_expanded_total = %d, want 17", v)
	}
	if _, ok := got["planner_rollouts_total"]; ok {
		t.Error("rollouts_total recorded for an A* search")
	}

	hist, ok := got["planner_plan_length"].Data.(metricdata.Histogram[int64])
	if !ok || len(hist.DataPoints) != 1 {
		t.Fatalf("plan_length data = %#v", got["planner_plan_length"].Data)
	}
	if hist.DataPoints[0].Sum != 3 {
		t.Errorf("plan_length sum = %d, want 3", hist.DataPoints[0].Sum)
	}

	sum := got["planner_searches_total"].Data.(metricdata.Sum[int64])
	status, _ := sum.DataPoints[0].Attributes.Value(attribute.Key("status"))
	if status.AsString() != "solved" {
		t.Errorf("status attribute = %q, want solved", status.AsString())
	}
}

func TestRecordSearch_FailedRollout(t *testing.T) {
	m, reader := newTestMetrics(t)

	m.RecordSearch(context.Background(), &search.Result{
		Planner: "rollout",
		Status:  search.StatusDeadEnd,
		Stats:   search.Stats{Rollouts: 400, Steps: 2},
	})

	got := collect(t, reader)
	if v := sumOf(t, got["planner_rollouts_total"]); v != 400 {
		t.Errorf("rollouts_total = %d, want 400", v)
	}
	if _, ok := got["planner_plan_length"]; ok {
		t.Error("plan_length recorded for a failed search")
	}
}

func TestRecordError(t *testing.T) {
	m, reader := newTestMetrics(t)
	m.RecordError(context.Background(), "bfs", "unsupported")
	m.RecordError(context.Background(), "bfs", "unsupported")

	got := collect(t, reader)
	if v := sumOf(t, got["planner_errors_total"]); v != 2 {
		t.Errorf("errors_total = %d, want 2", v)
	}
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	m.RecordSearch(context.Background(), &search.Result{})
	m.RecordError(context.Background(), "astar", "x")
}
