// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package telemetry provides OpenTelemetry-based observability for the
// planner.
//
// Engines and the solver use the OTel APIs directly; this package only
// installs the SDK providers and defines the planner's metric instruments.
// Backends are chosen by configuration, not code.
//
// # Traces
//
// Exporters: "stdout" (pretty printed spans, handy with the CLI --trace
// flag), "otlp" (gRPC to a collector) or "none".
//
// # Metrics
//
// Exporters: "prometheus" (served by the CLI at --metrics-addr), "stdout"
// or "none". Instruments carry the "planner_" prefix.
//
// # Logging
//
// Uses slog. LoggerWithTrace adds trace_id and span_id to a logger so log
// lines correlate with spans.
//
// # Environment Variables
//
//   - OTEL_TRACES_EXPORTER: stdout, otlp or none (default: none)
//   - OTEL_METRICS_EXPORTER: prometheus, stdout or none (default: none)
//   - OTEL_EXPORTER_OTLP_ENDPOINT: OTLP endpoint (default: localhost:4317)
//   - PLANNER_ENV: environment name (default: development)
package telemetry
