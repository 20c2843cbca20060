// Copyright ©2021 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package call_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/kortschak/exprcall/call"
	"github.com/kortschak/exprcall/condition"
	"github.com/kortschak/exprcall/internal/fixture"
)

var (
	organism = fixture.Cond("ANAT:1", "")
	nervous  = fixture.Cond("ANAT:2", "")
	head     = fixture.Cond("ANAT:3", "")
	liver    = fixture.Cond("ANAT:4", "")
	brain    = fixture.Cond("ANAT:5", "")
)

func TestFilterAndOrderByRank(t *testing.T) {
	g := fixture.MustGraph(organism, nervous, head, liver, brain)

	var (
		g1Organism = newCall("g1", organism, "1")
		g1Nervous  = newCall("g1", nervous, "3")
		g1Head     = newCall("g1", head, "2")
		g1Brain    = newCall("g1", brain, "10")
		g2Nervous  = newCall("g2", nervous, "1")
		g2Liver    = newCall("g2", liver, "1")
		unranked   = newCall("g2", head, "0")
	)
	for _, test := range []struct {
		name          string
		calls         []*call.ExpressionCall
		propagateRank bool
		want          []*call.ExpressionCall
	}{
		{
			name:  "empty",
			calls: nil,
			want:  nil,
		},
		{
			name:  "single gene",
			calls: []*call.ExpressionCall{g1Organism, g1Nervous, g1Head, g1Brain},
			want:  []*call.ExpressionCall{g1Brain, g1Head, g1Nervous, g1Organism},
		},
		{
			name:  "two genes",
			calls: []*call.ExpressionCall{g1Organism, g2Nervous, g1Nervous, g1Head, g1Brain, g2Liver},
			want:  []*call.ExpressionCall{g2Liver, g1Brain, g2Nervous, g1Head, g1Nervous, g1Organism},
		},
		{
			name:  "unranked",
			calls: []*call.ExpressionCall{unranked, g1Head, nil},
			want:  []*call.ExpressionCall{g1Head},
		},
	} {
		got, err := call.FilterAndOrderByRank(test.calls, g, test.propagateRank)
		if err != nil {
			t.Errorf("unexpected error for %s: %v", test.name, err)
			continue
		}
		diffCalls(t, test.name, got, test.want)
	}
}

func TestFilterAndOrderByRankTies(t *testing.T) {
	g := fixture.MustGraph(nervous, head)

	a := newCall("g1", head, "2.0")
	b := newCall("g1", nervous, "2")
	c := newCall("g0", nervous, "2.00")
	got, err := call.FilterAndOrderByRank([]*call.ExpressionCall{a, b, c}, g, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	diffCalls(t, "ties", got, []*call.ExpressionCall{c, b, a})
}

func TestFilterAndOrderByRankPropagate(t *testing.T) {
	g := fixture.MustGraph(nervous, liver, brain)

	parent := newCall("g1", nervous, "10")
	child := newCall("g1", brain, "1")
	other := newCall("g1", liver, "5")
	calls := []*call.ExpressionCall{parent, child, other}

	for _, test := range []struct {
		propagateRank bool
		want          []*call.ExpressionCall
	}{
		{propagateRank: false, want: []*call.ExpressionCall{child, other, parent}},
		{propagateRank: true, want: []*call.ExpressionCall{child, parent, other}},
	} {
		got, err := call.FilterAndOrderByRank(calls, g, test.propagateRank)
		if err != nil {
			t.Errorf("unexpected error for propagateRank=%t: %v", test.propagateRank, err)
			continue
		}
		diffCalls(t, fmt.Sprintf("propagateRank=%t", test.propagateRank), got, test.want)
	}
}

func TestFilterAndOrderByRankPartialOrder(t *testing.T) {
	conds := fixture.Conditions(
		[]string{"ANAT:1", "ANAT:2", "ANAT:3", "ANAT:4", "ANAT:5"},
		[]string{"STAGE:1", "STAGE:2", "STAGE:3"},
	)
	g := fixture.MustGraph(conds...)

	var calls []*call.ExpressionCall
	for i, c := range conds {
		for _, gene := range []string{"g1", "g2"} {
			calls = append(calls, newCall(gene, c, fmt.Sprint((i*7)%11+1)))
		}
	}
	for _, propagateRank := range []bool{false, true} {
		got, err := call.FilterAndOrderByRank(calls, g, propagateRank)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != len(calls) {
			t.Fatalf("unexpected number of calls: got:%d want:%d", len(got), len(calls))
		}
		seen := make(map[*call.ExpressionCall]bool)
		for _, c := range got {
			if seen[c] {
				t.Errorf("call repeated in ordering: %v", c)
			}
			seen[c] = true
		}
		for i, a := range got {
			for _, b := range got[i+1:] {
				more, err := g.IsMorePrecise(b.Condition, a.Condition)
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if more {
					t.Errorf("call at %v ordered before more precise %v with propagateRank=%t",
						a.Condition, b.Condition, propagateRank)
				}
			}
		}
	}
}

func TestFilterAndOrderByRankNotMember(t *testing.T) {
	g := fixture.MustGraph(nervous)
	_, err := call.FilterAndOrderByRank([]*call.ExpressionCall{newCall("g1", brain, "1")}, g, false)
	if !errors.Is(err, condition.ErrNotMember) {
		t.Errorf("unexpected error: got:%v want:%v", err, condition.ErrNotMember)
	}
}
