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

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/AleutianAI/AleutianPlan/services/planner/problem"
)

// TracerName is the instrumentation scope of engine spans.
const TracerName = "aleutianplan.search"

// DefaultTracer returns the tracer from the global provider.
func DefaultTracer() trace.Tracer {
	return otel.Tracer(TracerName)
}

// StartRun starts the span covering one engine run.
func StartRun(ctx context.Context, tracer trace.Tracer, engine string, p *problem.Problem, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	base := []attribute.KeyValue{
		attribute.String("planner.engine", engine),
		attribute.String("planner.problem", p.Name()),
		attribute.Int("planner.problem.facts", p.FactCount()),
		attribute.Int("planner.problem.actions", len(p.Actions())),
	}
	return tracer.Start(ctx, engine+".search",
		trace.WithAttributes(append(base, attrs...)...),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// EndRun records the outcome on span and ends it.
func EndRun(span trace.Span, r *Result, err error) {
	defer span.End()

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return
	}
	span.SetAttributes(
		attribute.String("planner.status", r.Status.String()),
		attribute.Int("planner.plan_length", len(r.Plan)),
		attribute.Int("planner.nodes_expanded", r.Stats.NodesExpanded),
		attribute.Int("planner.rollouts", r.Stats.Rollouts),
		attribute.String("planner.elapsed", r.Stats.Elapsed.String()),
	)
	switch r.Status {
	case StatusSolved:
		span.AddEvent("goal_reached")
	case StatusTimedOut:
		span.AddEvent("timeout")
	}
	span.SetStatus(codes.Ok, "")
}
