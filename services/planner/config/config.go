// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package config loads planner settings from defaults, a YAML or JSON
// file and PLANNER_* environment variables, in increasing priority.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/AleutianAI/AleutianPlan/services/planner/heuristic"
	"github.com/AleutianAI/AleutianPlan/services/planner/solver"
	"github.com/AleutianAI/AleutianPlan/services/planner/telemetry"
)

// ErrInvalidConfig is returned by Validate and Load.
var ErrInvalidConfig = errors.New("invalid config")

// Config is the complete planner configuration.
type Config struct {
	// TimeoutSeconds bounds each search. 0 selects the 600 s default.
	TimeoutSeconds int `json:"timeout_seconds" yaml:"timeout_seconds"`

	AStar         AStarConfig         `json:"astar" yaml:"astar"`
	Rollout       RolloutConfig       `json:"rollout" yaml:"rollout"`
	Bench         BenchConfig         `json:"bench" yaml:"bench"`
	Observability ObservabilityConfig `json:"observability" yaml:"observability"`
}

// AStarConfig configures weighted A*.
type AStarConfig struct {
	Weight    float64 `json:"weight" yaml:"weight"`
	Heuristic string  `json:"heuristic" yaml:"heuristic"`
}

// RolloutConfig configures the rollout planner.
type RolloutConfig struct {
	RolloutsPerAction int   `json:"rollouts_per_action" yaml:"rollouts_per_action"`
	MaxRolloutDepth   int   `json:"max_rollout_depth" yaml:"max_rollout_depth"`
	MaxPlanSteps      int   `json:"max_plan_steps" yaml:"max_plan_steps"`
	Seed              int64 `json:"seed" yaml:"seed"`
	Parallelism       int   `json:"parallelism" yaml:"parallelism"`
}

// BenchConfig configures the benchmark harness.
type BenchConfig struct {
	Concurrency int      `json:"concurrency" yaml:"concurrency"`
	Planners    []string `json:"planners" yaml:"planners"`
	StoreDir    string   `json:"store_dir" yaml:"store_dir"`
	Out         string   `json:"out" yaml:"out"`
}

// ObservabilityConfig configures logging, tracing and metrics.
type ObservabilityConfig struct {
	LogLevel       string `json:"log_level" yaml:"log_level"`
	ServiceName    string `json:"service_name" yaml:"service_name"`
	TraceExporter  string `json:"trace_exporter" yaml:"trace_exporter"`
	MetricExporter string `json:"metric_exporter" yaml:"metric_exporter"`
	OTLPEndpoint   string `json:"otlp_endpoint" yaml:"otlp_endpoint"`
	MetricsAddr    string `json:"metrics_addr" yaml:"metrics_addr"`
}

// Default returns the built-in configuration.
func Default() Config {
	astarDefaults := solver.DefaultOptions(solver.PlannerAStar)
	rolloutDefaults := solver.DefaultOptions(solver.PlannerRollout)
	tel := telemetry.DefaultConfig()
	return Config{
		AStar: AStarConfig{
			Weight:    astarDefaults.Weight,
			Heuristic: astarDefaults.Heuristic,
		},
		Rollout: RolloutConfig{
			RolloutsPerAction: rolloutDefaults.RolloutsPerAction,
			MaxRolloutDepth:   rolloutDefaults.MaxRolloutDepth,
			MaxPlanSteps:      rolloutDefaults.MaxPlanSteps,
			Seed:              rolloutDefaults.Seed,
			Parallelism:       rolloutDefaults.Parallelism,
		},
		Bench: BenchConfig{
			Concurrency: 1,
			Planners:    []string{solver.PlannerAStar, solver.PlannerRollout},
			Out:         "results.csv",
		},
		Observability: ObservabilityConfig{
			LogLevel:       "info",
			ServiceName:    tel.ServiceName,
			TraceExporter:  tel.TraceExporter,
			MetricExporter: tel.MetricExporter,
			OTLPEndpoint:   tel.OTLPEndpoint,
		},
	}
}

// Load loads configuration with priority: env > file > defaults.
//
// Inputs:
//   - path: Path to a YAML/JSON config file (optional, can be empty).
//
// Outputs:
//   - Config: Merged configuration.
//   - error: Non-nil if the file exists but is invalid, a PLANNER_* value
//     does not parse, or the merged configuration fails Validate.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("load config file: %w", err)
		}
	}

	if err := loadFromEnv(&cfg); err != nil {
		return cfg, err
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	// Try YAML first, then JSON
	if err := yaml.Unmarshal(data, cfg); err != nil {
		if jsonErr := json.Unmarshal(data, cfg); jsonErr != nil {
			return fmt.Errorf("%w: parse %s (tried YAML and JSON): YAML error: %v, JSON error: %w", ErrInvalidConfig, path, err, jsonErr)
		}
	}
	return nil
}

func loadFromEnv(cfg *Config) error {
	var errs []error
	envInt("PLANNER_TIMEOUT", &cfg.TimeoutSeconds, &errs)

	if v := os.Getenv("PLANNER_WEIGHT"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			errs = append(errs, envError("PLANNER_WEIGHT", v))
		} else {
			cfg.AStar.Weight = f
		}
	}
	if v := os.Getenv("PLANNER_HEURISTIC"); v != "" {
		cfg.AStar.Heuristic = v
	}

	envInt("PLANNER_ROLLOUTS", &cfg.Rollout.RolloutsPerAction, &errs)
	envInt("PLANNER_MAX_ROLLOUT_DEPTH", &cfg.Rollout.MaxRolloutDepth, &errs)
	envInt("PLANNER_MAX_PLAN_STEPS", &cfg.Rollout.MaxPlanSteps, &errs)
	envInt("PLANNER_PARALLELISM", &cfg.Rollout.Parallelism, &errs)
	if v := os.Getenv("PLANNER_SEED"); v != "" {
		i, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			errs = append(errs, envError("PLANNER_SEED", v))
		} else {
			cfg.Rollout.Seed = i
		}
	}

	envInt("PLANNER_BENCH_CONCURRENCY", &cfg.Bench.Concurrency, &errs)
	if v := os.Getenv("PLANNER_BENCH_STORE"); v != "" {
		cfg.Bench.StoreDir = v
	}

	if v := os.Getenv("PLANNER_LOG_LEVEL"); v != "" {
		cfg.Observability.LogLevel = v
	}
	if v := os.Getenv("PLANNER_METRICS_ADDR"); v != "" {
		cfg.Observability.MetricsAddr = v
	}
	return errors.Join(errs...)
}

func envInt(key string, dst *int, errs *[]error) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		*errs = append(*errs, envError(key, v))
		return
	}
	*dst = i
}

func envError(key, value string) error {
	return fmt.Errorf("%w: %s=%q is not a number", ErrInvalidConfig, key, value)
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	if c.TimeoutSeconds < 0 {
		return fmt.Errorf("%w: timeout_seconds must be >= 0", ErrInvalidConfig)
	}
	if c.AStar.Heuristic != "" {
		if _, err := heuristic.ParseName(c.AStar.Heuristic); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
	}
	if c.Bench.Concurrency < 1 {
		return fmt.Errorf("%w: bench.concurrency must be >= 1", ErrInvalidConfig)
	}
	if len(c.Bench.Planners) == 0 {
		return fmt.Errorf("%w: bench.planners must not be empty", ErrInvalidConfig)
	}
	if _, err := ParseLevel(c.Observability.LogLevel); err != nil {
		return err
	}
	for _, planner := range c.Bench.Planners {
		switch planner {
		case solver.PlannerAStar, solver.PlannerRollout, solver.PlannerBFS:
		default:
			return fmt.Errorf("%w: bench.planners: unknown planner %q", ErrInvalidConfig, planner)
		}
	}
	for _, planner := range []string{solver.PlannerAStar, solver.PlannerRollout} {
		if err := c.ToOptions(planner).Validate(); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
	}
	return nil
}

// ToOptions returns solver options for planner.
func (c Config) ToOptions(planner string) solver.Options {
	return solver.Options{
		Planner:           planner,
		Heuristic:         c.AStar.Heuristic,
		Weight:            c.AStar.Weight,
		TimeoutSeconds:    c.TimeoutSeconds,
		RolloutsPerAction: c.Rollout.RolloutsPerAction,
		MaxRolloutDepth:   c.Rollout.MaxRolloutDepth,
		MaxPlanSteps:      c.Rollout.MaxPlanSteps,
		Seed:              c.Rollout.Seed,
		Parallelism:       c.Rollout.Parallelism,
	}
}

// Telemetry returns the telemetry settings.
func (c Config) Telemetry() telemetry.Config {
	tel := telemetry.DefaultConfig()
	if c.Observability.ServiceName != "" {
		tel.ServiceName = c.Observability.ServiceName
	}
	if c.Observability.TraceExporter != "" {
		tel.TraceExporter = c.Observability.TraceExporter
	}
	if c.Observability.MetricExporter != "" {
		tel.MetricExporter = c.Observability.MetricExporter
	}
	if c.Observability.OTLPEndpoint != "" {
		tel.OTLPEndpoint = c.Observability.OTLPEndpoint
	}
	return tel
}

// ParseLevel maps debug, info, warn and error to slog levels.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("%w: log_level %q", ErrInvalidConfig, s)
	}
	return level, nil
}
