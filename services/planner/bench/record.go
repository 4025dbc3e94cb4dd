// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package bench runs planners over a set of tasks and collects one
// Record per run.
//
// Records go to a Store (BadgerDB or memory), a results CSV with the
// columns domain, problem, planner, success, time_s and plan_len, and a
// per-planner Summary.
package bench

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/AleutianAI/AleutianPlan/services/planner/problem"
)

// StatusError is the Record status of a run the solver rejected.
const StatusError = "error"

// Task is one benchmark problem.
type Task struct {
	Domain  string
	Name    string
	Problem *problem.Problem
}

// Record is the outcome of one planner run on one task.
type Record struct {
	ID            uuid.UUID     `json:"id"`
	Domain        string        `json:"domain"`
	Task          string        `json:"task"`
	Planner       string        `json:"planner"`
	Success       bool          `json:"success"`
	Status        string        `json:"status"`
	Error         string        `json:"error,omitempty"`
	Duration      time.Duration `json:"duration"`
	PlanLength    int           `json:"plan_length"`
	NodesExpanded int           `json:"nodes_expanded"`
	Rollouts      int           `json:"rollouts"`
	StartedAt     time.Time     `json:"started_at"`
}

// LoadTasks decodes each task file. The domain is the name of the
// file's directory and the task name is the file name without extension.
func LoadTasks(paths []string) ([]Task, error) {
	tasks := make([]Task, 0, len(paths))
	for _, path := range paths {
		p, err := problem.DecodeFile(path)
		if err != nil {
			return nil, err
		}
		base := filepath.Base(path)
		tasks = append(tasks, Task{
			Domain:  filepath.Base(filepath.Dir(path)),
			Name:    strings.TrimSuffix(base, filepath.Ext(base)),
			Problem: p,
		})
	}
	return tasks, nil
}

// ExpandPaths replaces each directory in paths by the .yaml, .yml and
// .json files directly inside it.
func ExpandPaths(paths []string) ([]string, error) {
	var out []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			out = append(out, path)
			continue
		}
		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			switch filepath.Ext(e.Name()) {
			case ".yaml", ".yml", ".json":
				if !e.IsDir() {
					out = append(out, filepath.Join(path, e.Name()))
				}
			}
		}
	}
	return out, nil
}
