// Copyright ©2021 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package condition provides biological conditions and the precision
// partial order between them.
package condition

import (
	"errors"
	"fmt"
	"log"
	"math/big"
	"sort"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/kortschak/exprcall/ontology"
)

var (
	// ErrNotMember is returned when a graph is queried with a
	// condition that it was not built from.
	ErrNotMember = errors.New("condition: not a member of the graph")

	// ErrNoSpecies is returned by Build for conditions without
	// a species.
	ErrNoSpecies = errors.New("condition: missing species")

	// ErrCyclic is returned by Build when wildcard parameters make
	// the precision relation between the conditions cyclic.
	ErrCyclic = errors.New("condition: cyclic precision relation")
)

// Graph holds the precision partial order over a fixed set of conditions.
// A Graph is immutable after construction and is safe for concurrent use.
type Graph struct {
	conds []Condition
	index map[Condition]int

	// ancestors[i] has bit j set when conds[i] is more
	// precise than conds[j], and descendants[j] has bit i
	// set for the same relation.
	ancestors   []big.Int
	descendants []big.Int

	// parents and children hold the covering relation
	// of the partial order, the direct links.
	parents  [][]int
	children [][]int

	// dag holds the covering relation with edges from
	// more precise to less precise conditions.
	dag *simple.DirectedGraph

	bottomUp []int
}

// Build returns the condition graph for conds. Anatomical entity and cell
// type parameters are related through anat and developmental stage
// parameters through stage, each following ISA_PARTOF relations. Sex and
// strain parameters are only related by identity.
//
// Entities that are not present in their ontology are logged and compared
// by identity only; conditions referring to them remain graph members.
// Conditions whose direct ancestor condition is not in conds are linked
// to the closest ancestor condition that is.
func Build(conds []Condition, anat, stage ontology.Ontology) (*Graph, error) {
	g := &Graph{index: make(map[Condition]int)}
	for _, c := range conds {
		if c.SpeciesID == 0 {
			return nil, fmt.Errorf("%w: %v", ErrNoSpecies, c)
		}
		if _, ok := g.index[c]; ok {
			continue
		}
		g.index[c] = -1
		g.conds = append(g.conds, c)
	}
	sort.Slice(g.conds, func(i, j int) bool { return Less(g.conds[i], g.conds[j]) })
	for i, c := range g.conds {
		g.index[c] = i
	}

	var anatIDs, stageIDs []string
	for _, c := range g.conds {
		anatIDs = append(anatIDs, c.AnatEntityID, c.CellTypeID)
		stageIDs = append(stageIDs, c.DevStageID)
	}
	rel := relater{
		AnatEntity: closures(anat, anatIDs),
		DevStage:   closures(stage, stageIDs),
	}
	rel[CellType] = rel[AnatEntity]

	n := len(g.conds)
	g.ancestors = make([]big.Int, n)
	g.descendants = make([]big.Int, n)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			switch {
			case rel.morePrecise(g.conds[i], g.conds[j]):
				g.link(i, j)
			case rel.morePrecise(g.conds[j], g.conds[i]):
				g.link(j, i)
			}
		}
	}

	g.parents = make([][]int, n)
	g.children = make([][]int, n)
	g.dag = simple.NewDirectedGraph()
	for i := 0; i < n; i++ {
		g.dag.AddNode(simple.Node(i))
	}
	var between big.Int
	for i := range g.conds {
		for _, j := range members(&g.ancestors[i]) {
			// conds[j] is a direct ancestor of conds[i] when no
			// ancestor of conds[i] is also a descendant of conds[j].
			between.And(&g.ancestors[i], &g.descendants[j])
			if between.BitLen() != 0 {
				continue
			}
			g.parents[i] = append(g.parents[i], j)
			g.children[j] = append(g.children[j], i)
			g.dag.SetEdge(simple.Edge{F: simple.Node(i), T: simple.Node(j)})
		}
	}

	order, err := topo.SortStabilized(g.dag, byID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCyclic, err)
	}
	g.bottomUp = make([]int, len(order))
	for i, n := range order {
		g.bottomUp[i] = int(n.ID())
	}

	return g, nil
}

func (g *Graph) link(finer, coarser int) {
	g.ancestors[finer].SetBit(&g.ancestors[finer], coarser, 1)
	g.descendants[coarser].SetBit(&g.descendants[coarser], finer, 1)
}

// Len returns the number of conditions in the graph.
func (g *Graph) Len() int { return len(g.conds) }

// Contains returns whether c is a member of the graph.
func (g *Graph) Contains(c Condition) bool {
	_, ok := g.index[c]
	return ok
}

// Conditions returns the members of the graph in a stable order.
func (g *Graph) Conditions() []Condition {
	c := make([]Condition, len(g.conds))
	copy(c, g.conds)
	return c
}

// IsMorePrecise returns whether a is more precise than b. A condition
// is more precise than another when, for every parameter set in both,
// its value is equal to or an ontology descendant of the other's value,
// with at least one parameter being a strict descendant. Parameters
// unset in either condition do not take part in the comparison.
// Conditions of different species are never related.
func (g *Graph) IsMorePrecise(a, b Condition) (bool, error) {
	i, err := g.lookup(a)
	if err != nil {
		return false, err
	}
	j, err := g.lookup(b)
	if err != nil {
		return false, err
	}
	return g.ancestors[i].Bit(j) != 0, nil
}

// Ancestors returns the members of the graph that c is more precise
// than. If directOnly is true, only the closest ancestors are returned.
func (g *Graph) Ancestors(c Condition, directOnly bool) ([]Condition, error) {
	i, err := g.lookup(c)
	if err != nil {
		return nil, err
	}
	if directOnly {
		return g.conditionsOf(g.parents[i]), nil
	}
	return g.conditionsOf(members(&g.ancestors[i])), nil
}

// Descendants returns the members of the graph that are more precise
// than c. If directOnly is true, only the closest descendants are returned.
func (g *Graph) Descendants(c Condition, directOnly bool) ([]Condition, error) {
	i, err := g.lookup(c)
	if err != nil {
		return nil, err
	}
	if directOnly {
		return g.conditionsOf(g.children[i]), nil
	}
	return g.conditionsOf(members(&g.descendants[i])), nil
}

// BottomUp returns the members of the graph ordered so that every
// condition follows all the conditions that are more precise than it.
func (g *Graph) BottomUp() []Condition {
	return g.conditionsOf(g.bottomUp)
}

func (g *Graph) lookup(c Condition) (int, error) {
	i, ok := g.index[c]
	if !ok {
		return -1, fmt.Errorf("%w: %v", ErrNotMember, c)
	}
	return i, nil
}

func (g *Graph) conditionsOf(idx []int) []Condition {
	if len(idx) == 0 {
		return nil
	}
	c := make([]Condition, len(idx))
	for k, i := range idx {
		c[k] = g.conds[i]
	}
	return c
}

// members returns the indices of the set bits in v in ascending order.
func members(v *big.Int) []int {
	var idx []int
	for i := 0; i < v.BitLen(); i++ {
		if v.Bit(i) != 0 {
			idx = append(idx, i)
		}
	}
	return idx
}

func byID(nodes []graph.Node) {
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID() < nodes[j].ID() })
}

// closures returns the ancestor sets of the terms in ids. Ancestor
// closures pass through deleted terms, so conditions below a deleted term
// are related to its existing ancestors. A deleted term in ids is itself
// an ancestor of the terms in ids below it.
func closures(o ontology.Ontology, ids []string) map[string]map[string]bool {
	anc := make(map[string]map[string]bool)
	if o == nil {
		return anc
	}
	var deleted []string
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := anc[id]; ok {
			continue
		}
		set := make(map[string]bool)
		for _, e := range o.Ancestors(id, false) {
			set[e.ID] = true
		}
		anc[id] = set
		if _, ok := o.Element(id); !ok {
			deleted = append(deleted, id)
		}
	}
	// Terms that are not ontology elements are never returned as
	// ancestors, so link them to the referenced terms below them.
	for _, id := range deleted {
		desc := o.Descendants(id, false)
		if len(desc) == 0 && len(anc[id]) == 0 {
			log.Printf("condition: %s not found in ontology", id)
			continue
		}
		for _, e := range desc {
			if set, ok := anc[e.ID]; ok {
				set[id] = true
			}
		}
	}
	return anc
}

type relation int

const (
	unrelated relation = iota
	wildcard
	equal
	finer
	coarser
)

// relater holds the ancestor closures used to relate each parameter.
// Parameters without closures are related by identity.
type relater map[Param]map[string]map[string]bool

func (r relater) compare(p Param, a, b string) relation {
	switch {
	case a == "" || b == "":
		return wildcard
	case a == b:
		return equal
	case r[p][a][b]:
		return finer
	case r[p][b][a]:
		return coarser
	default:
		return unrelated
	}
}

func (r relater) morePrecise(a, b Condition) bool {
	if a.SpeciesID != b.SpeciesID {
		return false
	}
	var strict bool
	for _, p := range Params {
		switch r.compare(p, a.Value(p), b.Value(p)) {
		case unrelated, coarser:
			return false
		case finer:
			strict = true
		}
	}
	return strict
}
