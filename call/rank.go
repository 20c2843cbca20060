// Copyright ©2021 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package call

import (
	"container/heap"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/kortschak/exprcall/condition"
)

// FilterAndOrderByRank returns the ranked calls in calls ordered so that
// every call follows the calls at more precise conditions, and otherwise
// by ascending mean rank. Calls without a rank are dropped. Remaining ties
// are broken by condition, gene and then input order, so the result is
// reproducible.
//
// If propagateRank is true, the rank used for ordering a call is the best
// of its own mean rank and those of same gene calls at more precise
// conditions.
//
// All call conditions must be members of g.
func FilterAndOrderByRank(calls []*ExpressionCall, g *condition.Graph, propagateRank bool) ([]*ExpressionCall, error) {
	var ranked []*ExpressionCall
	for _, c := range calls {
		if c == nil || !c.HasRank() {
			continue
		}
		if !g.Contains(c.Condition) {
			return nil, fmt.Errorf("call: %s: %w: %v", c.GeneID, condition.ErrNotMember, c.Condition)
		}
		ranked = append(ranked, c)
	}

	n := len(ranked)
	keys := make([]decimal.Decimal, n)
	for i, c := range ranked {
		keys[i] = c.MeanRank
	}
	// before[i] holds the calls that ranked[i] must precede.
	before := make([][]int, n)
	indegree := make([]int, n)
	for i, a := range ranked {
		for j, b := range ranked {
			if i == j || a.Condition == b.Condition {
				continue
			}
			more, err := g.IsMorePrecise(a.Condition, b.Condition)
			if err != nil {
				return nil, err
			}
			if !more {
				continue
			}
			before[i] = append(before[i], j)
			indegree[j]++
			if propagateRank && a.GeneID == b.GeneID && a.MeanRank.LessThan(keys[j]) {
				keys[j] = a.MeanRank
			}
		}
	}

	q := &queue{less: func(i, j int) bool {
		if c := keys[i].Cmp(keys[j]); c != 0 {
			return c < 0
		}
		ci, cj := ranked[i].Condition, ranked[j].Condition
		if ci != cj {
			return condition.Less(ci, cj)
		}
		if ranked[i].GeneID != ranked[j].GeneID {
			return ranked[i].GeneID < ranked[j].GeneID
		}
		return i < j
	}}
	for i, d := range indegree {
		if d == 0 {
			q.idx = append(q.idx, i)
		}
	}
	heap.Init(q)

	done := make([]bool, n)
	ordered := make([]*ExpressionCall, 0, n)
	for len(ordered) < n {
		if q.Len() == 0 {
			// Only reachable if the precision relation is not
			// acyclic; release the best remaining call.
			best := -1
			for i := range ranked {
				if !done[i] && (best < 0 || q.less(i, best)) {
					best = i
				}
			}
			indegree[best] = 0
			heap.Push(q, best)
		}
		i := heap.Pop(q).(int)
		done[i] = true
		ordered = append(ordered, ranked[i])
		for _, j := range before[i] {
			if done[j] {
				continue
			}
			indegree[j]--
			if indegree[j] == 0 {
				heap.Push(q, j)
			}
		}
	}
	return ordered, nil
}

// queue is a priority queue of call indices.
type queue struct {
	idx  []int
	less func(i, j int) bool
}

func (q *queue) Len() int           { return len(q.idx) }
func (q *queue) Less(i, j int) bool { return q.less(q.idx[i], q.idx[j]) }
func (q *queue) Swap(i, j int)      { q.idx[i], q.idx[j] = q.idx[j], q.idx[i] }
func (q *queue) Push(x interface{}) { q.idx = append(q.idx, x.(int)) }

func (q *queue) Pop() interface{} {
	n := len(q.idx) - 1
	i := q.idx[n]
	q.idx = q.idx[:n]
	return i
}
