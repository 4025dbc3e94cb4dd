// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/AleutianPlan/services/planner/problem"
	"github.com/AleutianAI/AleutianPlan/services/planner/problem/problemtest"
	"github.com/AleutianAI/AleutianPlan/services/planner/solver"
)

func writeTask(t *testing.T, dir string, spec problem.TaskSpec) string {
	t.Helper()
	p := problemtest.MustBuild(t, spec)
	path := filepath.Join(dir, spec.Name+".yaml")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, problem.Encode(f, p))
	require.NoError(t, f.Close())
	return path
}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestSolve_AStarMove(t *testing.T) {
	task := writeTask(t, t.TempDir(), problemtest.Move())

	code, out, _ := runCLI(t, "solve", "astar", task, "-e", "max", "-w", "1")
	require.Equal(t, exitOK, code)
	assert.Contains(t, out, "00: (move-a-b)")
	assert.Contains(t, out, "plan found (1 steps)")
}

func TestSolve_RolloutWritesPlan(t *testing.T) {
	dir := t.TempDir()
	task := writeTask(t, dir, problemtest.Gripper(1))
	planFile := filepath.Join(dir, "plan.txt")

	code, out, _ := runCLI(t, "solve", "rollout", task, "-n", "100", "-s", "42", "-o", planFile)
	require.Equal(t, exitOK, code)
	assert.Contains(t, out, "plan found")

	code, out, _ = runCLI(t, "validate", task, planFile)
	require.Equal(t, exitOK, code)
	assert.Contains(t, out, "plan valid")
}

func TestSolve_BFSNoPlan(t *testing.T) {
	task := writeTask(t, t.TempDir(), problemtest.Unreachable())

	code, out, errOut := runCLI(t, "solve", "bfs", task)
	assert.Equal(t, exitNoPlan, code)
	assert.NotContains(t, out, "plan found")
	assert.Contains(t, errOut, "no plan found")
}

func TestSolve_InvalidOptions(t *testing.T) {
	task := writeTask(t, t.TempDir(), problemtest.Move())

	code, _, errOut := runCLI(t, "solve", "astar", task, "-e", "combo")
	assert.Equal(t, exitInvalid, code)
	assert.Contains(t, errOut, "invalid planner configuration")

	code, _, _ = runCLI(t, "solve", "astar", task, "-w", "0")
	assert.Equal(t, exitInvalid, code)
}

func TestSolve_UnsupportedTask(t *testing.T) {
	task := writeTask(t, t.TempDir(), problemtest.Unsupported())

	code, _, errOut := runCLI(t, "solve", "astar", task)
	assert.Equal(t, exitInvalid, code)
	assert.Contains(t, errOut, "unsupported problem")
}

func TestSolve_MissingTask(t *testing.T) {
	code, _, _ := runCLI(t, "solve", "astar", filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Equal(t, exitInvalid, code)
}

func TestSolve_TraceFlagWritesSpans(t *testing.T) {
	task := writeTask(t, t.TempDir(), problemtest.Move())

	code, _, errOut := runCLI(t, "--trace", "solve", "bfs", task)
	require.Equal(t, exitOK, code)
	assert.Contains(t, errOut, "solver.solve")
	assert.Contains(t, errOut, "bfs.search")
}

func TestValidate_RejectsBadPlan(t *testing.T) {
	dir := t.TempDir()
	task := writeTask(t, dir, problemtest.Move())
	planFile := filepath.Join(dir, "empty.txt")
	require.NoError(t, os.WriteFile(planFile, []byte("; nothing\n"), 0o600))

	code, _, errOut := runCLI(t, "validate", task, planFile)
	assert.Equal(t, exitNoPlan, code)
	assert.Contains(t, errOut, "goal")
}

func TestBench_WritesCSVAndSummary(t *testing.T) {
	dir := t.TempDir()
	tasksDir := filepath.Join(dir, "toy")
	require.NoError(t, os.MkdirAll(tasksDir, 0o750))
	writeTask(t, tasksDir, problemtest.Move())
	writeTask(t, tasksDir, problemtest.Gripper(1))
	out := filepath.Join(dir, "results.csv")
	store := filepath.Join(dir, "runs")

	code, stdout, _ := runCLI(t, "bench", tasksDir,
		"--out", out, "--store", store, "--concurrency", "2", "--planners", "astar,bfs")
	require.Equal(t, exitOK, code)
	assert.Contains(t, stdout, "astar")
	assert.Contains(t, stdout, "bfs")

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 5)
	for _, row := range rows[1:] {
		assert.Equal(t, "toy", row[0])
		assert.Equal(t, "true", row[3], strings.Join(row, ","))
	}

	_, err = os.Stat(store)
	assert.NoError(t, err)
}

func TestConfigFlagRejectsBadFile(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "planner.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("astar:\n  weight: -2\n"), 0o600))
	task := writeTask(t, dir, problemtest.Move())

	code, _, _ := runCLI(t, "--config", cfg, "solve", "astar", task)
	assert.Equal(t, exitInvalid, code)
}

func TestSolveExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid options", fmt.Errorf("%w: Weight (gt=0)", solver.ErrInvalidConfiguration), exitInvalid},
		{"unsupported task", fmt.Errorf("%w: %w", solver.ErrUnsupportedProblem, problem.ErrUnsupported), exitInvalid},
		{"unsound plan", fmt.Errorf("%w: step 3", solver.ErrUnsoundPlan), exitError},
		{"other", errors.New("boom"), exitError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, solveExitCode(tt.err))
		})
	}
}
