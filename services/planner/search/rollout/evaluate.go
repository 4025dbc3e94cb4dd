// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package rollout

import (
	"context"
	"math"
	"math/rand/v2"

	"golang.org/x/sync/errgroup"

	"github.com/AleutianAI/AleutianPlan/services/planner/problem"
	"github.com/AleutianAI/AleutianPlan/services/planner/search"
)

const epsilon = 1e-12

// candidateStats aggregates the rollouts run from one candidate successor.
type candidateStats struct {
	action    int
	trials    int
	successes int
	scoreSum  float64
	lenSum    int
	steps     int
}

func (c *candidateStats) record(success bool, length, maxDepth int) {
	c.trials++
	c.steps += length
	if !success {
		return
	}
	c.successes++
	c.lenSum += length
	c.scoreSum += 1 - math.Min(1, float64(length)/float64(maxDepth))
}

func (c *candidateStats) successRate() float64 {
	if c.trials == 0 {
		return 0
	}
	return float64(c.successes) / float64(c.trials)
}

func (c *candidateStats) avgScore() float64 {
	if c.trials == 0 {
		return 0
	}
	return c.scoreSum / float64(c.trials)
}

func (c *candidateStats) avgLenOnSuccess() float64 {
	if c.successes == 0 {
		return math.Inf(1)
	}
	return float64(c.lenSum) / float64(c.successes)
}

func almostEqual(a, b float64) bool {
	return a == b || math.Abs(a-b) < epsilon
}

// better reports whether c should replace the current best b: higher
// average score, then higher success rate, then shorter average success
// length. Full ties keep b.
func better(c, b *candidateStats) bool {
	if !almostEqual(c.avgScore(), b.avgScore()) {
		return c.avgScore() > b.avgScore()
	}
	if !almostEqual(c.successRate(), b.successRate()) {
		return c.successRate() > b.successRate()
	}
	if !almostEqual(c.avgLenOnSuccess(), b.avgLenOnSuccess()) {
		return c.avgLenOnSuccess() < b.avgLenOnSuccess()
	}
	return false
}

// selectBest returns the index into stats of the best candidate, or -1 if
// no candidate has a completed trial.
func selectBest(stats []candidateStats) int {
	best := -1
	for i := range stats {
		if stats[i].trials == 0 {
			continue
		}
		if best < 0 || better(&stats[i], &stats[best]) {
			best = i
		}
	}
	return best
}

// walker runs random walks over one problem.
type walker struct {
	goal     problem.Condition
	actions  []problem.Action
	maxDepth int
	buf      []int
}

func newWalker(p *problem.Problem, maxDepth int) *walker {
	return &walker{goal: p.Goal(), actions: p.Actions(), maxDepth: maxDepth}
}

// applicable fills w.buf with the indices of actions applicable in s.
func (w *walker) applicable(s problem.State) []int {
	w.buf = w.buf[:0]
	for i := range w.actions {
		if w.actions[i].IsApplicable(s) {
			w.buf = append(w.buf, i)
		}
	}
	return w.buf
}

// walk performs one uniform random walk from s.
//
// It returns (true, d) when the goal holds after d steps, (false, d) when
// no action is applicable after d steps, and (goal holds, maxDepth) when
// the depth limit is reached.
func (w *walker) walk(s problem.State, rng *rand.Rand) (bool, int) {
	for d := 0; d < w.maxDepth; d++ {
		if s.Satisfy(w.goal) {
			return true, d
		}
		app := w.applicable(s)
		if len(app) == 0 {
			return false, d
		}
		s = w.actions[app[rng.IntN(len(app))]].Successor(s)
	}
	return s.Satisfy(w.goal), w.maxDepth
}

// evaluate runs up to n rollouts from succ, polling the deadline before
// each one.
func (w *walker) evaluate(action int, succ problem.State, n int, rng *rand.Rand, deadline *search.Deadline) candidateStats {
	st := candidateStats{action: action}
	for k := 0; k < n; k++ {
		if deadline.Exceeded() {
			break
		}
		ok, length := w.walk(succ, rng)
		st.record(ok, length, w.maxDepth)
	}
	return st
}

// evaluateAll scores every candidate of the current state.
//
// Sequential mode draws every rollout from rng in candidate order. Parallel
// mode first draws one seed per candidate from rng, in candidate order, so
// the outcome does not depend on scheduling.
func (pl *Planner) evaluateAll(ctx context.Context, p *problem.Problem, s problem.State, candidates []int, rng *rand.Rand, deadline *search.Deadline) []candidateStats {
	actions := p.Actions()
	stats := make([]candidateStats, len(candidates))
	n := pl.config.RolloutsPerAction

	if pl.config.Parallelism <= 1 || len(candidates) == 1 {
		w := newWalker(p, pl.config.MaxRolloutDepth)
		for i, a := range candidates {
			stats[i] = w.evaluate(a, actions[a].Successor(s), n, rng, deadline)
		}
		return stats
	}

	seeds := make([]uint64, len(candidates))
	for i := range seeds {
		seeds[i] = rng.Uint64()
	}

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(pl.config.Parallelism)
	for i, a := range candidates {
		g.Go(func() error {
			w := newWalker(p, pl.config.MaxRolloutDepth)
			local := rand.New(rand.NewPCG(seeds[i], seeds[i]^pcgStream))
			stats[i] = w.evaluate(a, actions[a].Successor(s), n, local, deadline)
			return nil
		})
	}
	_ = g.Wait()
	return stats
}
