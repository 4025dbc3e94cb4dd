// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package astar

import (
	"container/heap"

	"github.com/AleutianAI/AleutianPlan/services/planner/plan"
	"github.com/AleutianAI/AleutianPlan/services/planner/problem"
)

const noParent = -1

// node is one search tree entry. Nodes live in an arena and refer to
// their parent by index.
type node struct {
	state  problem.State
	parent int
	action int
	g      float64
	h      float64
	depth  int
}

type arena struct {
	nodes []node
}

func (a *arena) add(n node) int {
	a.nodes = append(a.nodes, n)
	return len(a.nodes) - 1
}

// plan walks parent handles from idx back to the root.
func (a *arena) plan(idx int) plan.Plan {
	out := make(plan.Plan, 0, a.nodes[idx].depth)
	for i := idx; a.nodes[i].parent != noParent; i = a.nodes[i].parent {
		out = append(out, a.nodes[i].action)
	}
	for l, r := 0, len(out)-1; l < r; l, r = l+1, r-1 {
		out[l], out[r] = out[r], out[l]
	}
	return out
}

// openItem orders the open list by f, then by insertion sequence.
type openItem struct {
	f    float64
	seq  uint64
	node int
}

// openList is a binary min-heap of openItem.
type openList []openItem

func (o openList) Len() int { return len(o) }

func (o openList) Less(i, j int) bool {
	if o[i].f != o[j].f {
		return o[i].f < o[j].f
	}
	return o[i].seq < o[j].seq
}

func (o openList) Swap(i, j int) { o[i], o[j] = o[j], o[i] }

func (o *openList) Push(x any) { *o = append(*o, x.(openItem)) }

func (o *openList) Pop() any {
	old := *o
	n := len(old)
	it := old[n-1]
	*o = old[:n-1]
	return it
}

func (o *openList) push(it openItem) { heap.Push(o, it) }

func (o *openList) pop() openItem { return heap.Pop(o).(openItem) }
