// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package bench

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/AleutianPlan/services/planner/problem"
	"github.com/AleutianAI/AleutianPlan/services/planner/problem/problemtest"
	"github.com/AleutianAI/AleutianPlan/services/planner/search"
	"github.com/AleutianAI/AleutianPlan/services/planner/solver"
	"github.com/AleutianAI/AleutianPlan/services/planner/storage/badger"
)

func fixtureTasks(t *testing.T) []Task {
	t.Helper()
	return []Task{
		{Domain: "gripper", Name: "gripper-1", Problem: problemtest.MustBuild(t, problemtest.Gripper(1))},
		{Domain: "toy", Name: "unreachable", Problem: problemtest.MustBuild(t, problemtest.Unreachable())},
	}
}

func seededOptions(planner string) solver.Options {
	o := solver.DefaultOptions(planner)
	o.Seed = 5
	o.RolloutsPerAction = 40
	return o
}

func TestRunner_Run(t *testing.T) {
	store := NewMemoryStore()
	runner := NewRunner(solver.New(),
		WithOptions(seededOptions),
		WithConcurrency(4),
		WithStore(store),
	)

	records, err := runner.Run(context.Background(), fixtureTasks(t), []string{solver.PlannerAStar, solver.PlannerBFS})
	require.NoError(t, err)
	require.Len(t, records, 4)

	order := make([]string, 0, len(records))
	for _, rec := range records {
		order = append(order, rec.Task+"/"+rec.Planner)
		assert.NotEqual(t, uuid.Nil, rec.ID)
		assert.False(t, rec.StartedAt.IsZero())
	}
	assert.Equal(t, []string{
		"gripper-1/astar", "gripper-1/bfs",
		"unreachable/astar", "unreachable/bfs",
	}, order)

	assert.True(t, records[0].Success)
	assert.Equal(t, "solved", records[0].Status)
	assert.Equal(t, 3, records[0].PlanLength)
	assert.Equal(t, 3, records[1].PlanLength)
	assert.False(t, records[2].Success)
	assert.Equal(t, "exhausted", records[2].Status)
	assert.Zero(t, records[2].PlanLength)

	saved, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, saved, 4)
}

func TestRunner_NoWork(t *testing.T) {
	runner := NewRunner(solver.New())
	_, err := runner.Run(context.Background(), nil, []string{"astar"})
	assert.ErrorIs(t, err, ErrNoWork)
	_, err = runner.Run(context.Background(), fixtureTasks(t), nil)
	assert.ErrorIs(t, err, ErrNoWork)
}

func TestRunner_RejectedRunIsRecorded(t *testing.T) {
	runner := NewRunner(solver.New(), WithOptions(seededOptions))
	tasks := []Task{{Domain: "toy", Name: "durative", Problem: problemtest.MustBuild(t, problemtest.Unsupported())}}

	records, err := runner.Run(context.Background(), tasks, []string{solver.PlannerAStar})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.False(t, records[0].Success)
	assert.Equal(t, StatusError, records[0].Status)
	assert.Contains(t, records[0].Error, "unsupported")
}

type failingStore struct{ err error }

func (f failingStore) Save(context.Context, Record) error     { return f.err }
func (f failingStore) List(context.Context) ([]Record, error) { return nil, f.err }

func TestRunner_StoreErrorStopsRun(t *testing.T) {
	boom := errors.New("disk full")
	runner := NewRunner(solver.New(), WithOptions(seededOptions), WithStore(failingStore{err: boom}))

	records, err := runner.Run(context.Background(), fixtureTasks(t), []string{solver.PlannerBFS})
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, records)
}

type stubSolver struct {
	result *search.Result
}

func (s stubSolver) Solve(context.Context, *problem.Problem, solver.Options) (*search.Result, error) {
	return s.result, nil
}

func TestRunner_RecordFields(t *testing.T) {
	started := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	stub := stubSolver{result: &search.Result{
		Planner: "rollout",
		Status:  search.StatusDeadEnd,
		Stats:   search.Stats{Rollouts: 120, Elapsed: 1500 * time.Millisecond},
	}}
	runner := NewRunner(stub, WithClock(func() time.Time { return started }))

	records, err := runner.Run(context.Background(), fixtureTasks(t)[:1], []string{"rollout"})
	require.NoError(t, err)
	require.Len(t, records, 1)
	rec := records[0]
	assert.Equal(t, "gripper", rec.Domain)
	assert.Equal(t, "dead_end", rec.Status)
	assert.Equal(t, 120, rec.Rollouts)
	assert.Equal(t, 1500*time.Millisecond, rec.Duration)
	assert.Equal(t, started, rec.StartedAt)
}

func TestRunner_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewRunner(solver.New()).Run(ctx, fixtureTasks(t), []string{solver.PlannerBFS})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBadgerStore(t *testing.T) {
	db, err := badger.OpenInMemory()
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	store := NewBadgerStore(db)
	recs := []Record{
		{ID: uuid.New(), Task: "gripper-1", Planner: "astar", Success: true, PlanLength: 3, Status: "solved"},
		{ID: uuid.New(), Task: "gripper-1", Planner: "rollout", Status: "dead_end"},
		{ID: uuid.New(), Task: "line-4", Planner: "astar", Success: true, PlanLength: 3, Status: "solved"},
	}
	for _, rec := range recs {
		require.NoError(t, store.Save(ctx, rec))
	}

	all, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	gripper, err := store.ListTask(ctx, "gripper-1")
	require.NoError(t, err)
	require.Len(t, gripper, 2)
	assert.Equal(t, "astar", gripper[0].Planner)
	assert.Equal(t, "rollout", gripper[1].Planner)
	assert.Equal(t, recs[0].ID, gripper[0].ID)
}

func TestMemoryStore_ListSortedByKey(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Save(ctx, Record{ID: uuid.New(), Task: "b", Planner: "astar"}))
	require.NoError(t, store.Save(ctx, Record{ID: uuid.New(), Task: "a", Planner: "rollout"}))
	require.NoError(t, store.Save(ctx, Record{ID: uuid.New(), Task: "a", Planner: "astar"}))

	got, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "a", got[0].Task)
	assert.Equal(t, "astar", got[0].Planner)
	assert.Equal(t, "rollout", got[1].Planner)
	assert.Equal(t, "b", got[2].Task)
}

func TestWriteCSV(t *testing.T) {
	id := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	records := []Record{{
		ID: id, Domain: "gripper", Task: "gripper-1", Planner: "astar",
		Success: true, Status: "solved", Duration: 1234 * time.Millisecond,
		PlanLength: 3, NodesExpanded: 11,
	}}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, records))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"domain", "problem", "planner", "success", "time_s", "plan_len"}, rows[0][:6])
	assert.Equal(t, []string{"gripper", "gripper-1", "astar", "true", "1.234", "3", "solved", "11", "0", id.String()}, rows[1])
}

func TestSummarize(t *testing.T) {
	records := []Record{
		{Planner: "rollout", Success: true, PlanLength: 4, Duration: 2 * time.Second},
		{Planner: "astar", Success: true, PlanLength: 3, Duration: 1 * time.Second},
		{Planner: "astar", Success: true, PlanLength: 5, Duration: 3 * time.Second},
		{Planner: "astar", Success: false, Duration: 5 * time.Second},
	}

	got := Summarize(records)
	require.Len(t, got, 2)

	a := got[0]
	assert.Equal(t, "astar", a.Planner)
	assert.Equal(t, 3, a.Runs)
	assert.Equal(t, 2, a.Solved)
	assert.InDelta(t, 2.0/3, a.SuccessRate, 1e-9)
	assert.InDelta(t, 3.0, a.MeanTime, 1e-9)
	assert.InDelta(t, 2.0, a.StdDevTime, 1e-9)
	assert.InDelta(t, 4.0, a.MeanPlanLength, 1e-9)
	assert.InDelta(t, 1.4142135, a.StdDevPlanLen, 1e-6)

	r := got[1]
	assert.Equal(t, "rollout", r.Planner)
	assert.Equal(t, 1, r.Solved)
	assert.InDelta(t, 4.0, r.MeanPlanLength, 1e-9)
	assert.Zero(t, r.StdDevPlanLen)
	assert.InDelta(t, 4.0, r.MedianPlanLen, 1e-9)

	var buf bytes.Buffer
	require.NoError(t, WriteSummary(&buf, got))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[1], "astar"))
}

func TestSummarize_NoSolvedRuns(t *testing.T) {
	got := Summarize([]Record{{Planner: "bfs", Duration: time.Second}})
	require.Len(t, got, 1)
	assert.Zero(t, got[0].SuccessRate)
	assert.Zero(t, got[0].MeanPlanLength)
	assert.Zero(t, got[0].MedianPlanLen)
}

func TestLoadTasks(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "gripper")
	require.NoError(t, os.MkdirAll(dir, 0o750))

	p := problemtest.MustBuild(t, problemtest.Gripper(1))
	f, err := os.Create(filepath.Join(dir, "p01.yaml"))
	require.NoError(t, err)
	require.NoError(t, problem.Encode(f, p))
	require.NoError(t, f.Close())
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("notes"), 0o600))

	paths, err := ExpandPaths([]string{dir})
	require.NoError(t, err)
	require.Len(t, paths, 1)

	tasks, err := LoadTasks(paths)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "gripper", tasks[0].Domain)
	assert.Equal(t, "p01", tasks[0].Name)
	assert.Equal(t, p.FactCount(), tasks[0].Problem.FactCount())

	_, err = ExpandPaths([]string{filepath.Join(dir, "absent")})
	assert.Error(t, err)
}
