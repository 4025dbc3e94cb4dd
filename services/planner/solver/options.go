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

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/AleutianAI/AleutianPlan/services/planner/heuristic"
	"github.com/AleutianAI/AleutianPlan/services/planner/search/astar"
	"github.com/AleutianAI/AleutianPlan/services/planner/search/bfs"
	"github.com/AleutianAI/AleutianPlan/services/planner/search/rollout"
)

// Planner names accepted by Options.Planner.
const (
	PlannerAStar   = astar.EngineName
	PlannerRollout = rollout.EngineName
	PlannerBFS     = bfs.EngineName
)

var optionsValidate *validator.Validate

func init() {
	optionsValidate = validator.New()
	_ = optionsValidate.RegisterValidation("heuristic", validateHeuristic)
}

func validateHeuristic(fl validator.FieldLevel) bool {
	_, err := heuristic.ParseName(fl.Field().String())
	return err == nil
}

// Options selects a planner and its parameters.
//
// # Validation
//
// Uses go-playground/validator:
//   - Planner: one of astar, rollout, bfs
//   - Heuristic: empty (fast_forward) or a catalog name
//   - Weight: > 0 for astar, otherwise unused and only required >= 0
//   - TimeoutSeconds: >= 0, 0 means the 600 s default
//   - RolloutsPerAction, MaxRolloutDepth, MaxPlanSteps: > 0 for rollout,
//     otherwise unused and only required >= 0
//   - Parallelism: >= 0
//
// Seed 0 derives a seed from the clock.
type Options struct {
	Planner           string  `json:"planner" yaml:"planner" validate:"required,oneof=astar rollout bfs"`
	Heuristic         string  `json:"heuristic" yaml:"heuristic" validate:"omitempty,heuristic"`
	Weight            float64 `json:"weight" yaml:"weight" validate:"required_if=Planner astar,gte=0"`
	TimeoutSeconds    int     `json:"timeout_seconds" yaml:"timeout_seconds" validate:"gte=0"`
	RolloutsPerAction int     `json:"rollouts_per_action" yaml:"rollouts_per_action" validate:"required_if=Planner rollout,gte=0"`
	MaxRolloutDepth   int     `json:"max_rollout_depth" yaml:"max_rollout_depth" validate:"required_if=Planner rollout,gte=0"`
	MaxPlanSteps      int     `json:"max_plan_steps" yaml:"max_plan_steps" validate:"required_if=Planner rollout,gte=0"`
	Seed              int64   `json:"seed" yaml:"seed"`
	Parallelism       int     `json:"parallelism" yaml:"parallelism" validate:"gte=0"`
}

// DefaultOptions returns the defaults for planner.
func DefaultOptions(planner string) Options {
	ac := astar.DefaultConfig()
	rc := rollout.DefaultConfig()
	return Options{
		Planner:           planner,
		Heuristic:         string(heuristic.DefaultName),
		Weight:            ac.Weight,
		RolloutsPerAction: rc.RolloutsPerAction,
		MaxRolloutDepth:   rc.MaxRolloutDepth,
		MaxPlanSteps:      rc.MaxPlanSteps,
		Seed:              rc.Seed,
		Parallelism:       rc.Parallelism,
	}
}

// Validate checks o. Errors wrap ErrInvalidConfiguration and name every
// rejected field.
func (o Options) Validate() error {
	err := optionsValidate.Struct(o)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidConfiguration, err)
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fmt.Sprintf("%s (%s=%v)", fe.Field(), fe.Tag(), fe.Value()))
	}
	return fmt.Errorf("%w: %s", ErrInvalidConfiguration, strings.Join(fields, ", "))
}

// Timeout returns the search timeout. 0 selects the engine default.
func (o Options) Timeout() time.Duration {
	return time.Duration(o.TimeoutSeconds) * time.Second
}

// HeuristicName returns the parsed heuristic, defaulting to fast_forward.
func (o Options) HeuristicName() (heuristic.Name, error) {
	if o.Heuristic == "" {
		return heuristic.DefaultName, nil
	}
	return heuristic.ParseName(o.Heuristic)
}

func (o Options) astarConfig() astar.Config {
	return astar.Config{Weight: o.Weight, Timeout: o.Timeout()}
}

func (o Options) rolloutConfig() rollout.Config {
	return rollout.Config{
		RolloutsPerAction: o.RolloutsPerAction,
		MaxRolloutDepth:   o.MaxRolloutDepth,
		MaxPlanSteps:      o.MaxPlanSteps,
		Seed:              o.Seed,
		Timeout:           o.Timeout(),
		Parallelism:       o.Parallelism,
	}
}

func (o Options) bfsConfig() bfs.Config {
	return bfs.Config{Timeout: o.Timeout()}
}
