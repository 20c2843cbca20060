// Copyright ©2021 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package condition

import (
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/encoding"
	"gonum.org/v1/gonum/graph/encoding/dot"
	"gonum.org/v1/gonum/graph/iterator"
)

// MarshalDOT returns a DOT encoding of the direct precision links of g
// for debugging. Edges point from more precise to less precise conditions
// and are laid out bottom to top.
func (g *Graph) MarshalDOT(name string) ([]byte, error) {
	return dot.Marshal(dotGraph{g}, name, "", "\t")
}

// dotGraph implements graph.Directed over the covering relation
// of a Graph, with condition labelled nodes.
type dotGraph struct {
	g *Graph
}

func (d dotGraph) DOTAttributers() (graph, node, edge encoding.Attributer) {
	return attr{{Key: "rankdir", Value: "BT"}}, attr{}, attr{}
}

type attr []encoding.Attribute

func (a attr) Attributes() []encoding.Attribute {
	return a
}

func (d dotGraph) Node(id int64) graph.Node {
	if id < 0 || id >= int64(len(d.g.conds)) {
		return nil
	}
	return dotNode{id: id, c: d.g.conds[id]}
}

func (d dotGraph) Nodes() graph.Nodes {
	if len(d.g.conds) == 0 {
		return graph.Empty
	}
	nodes := make([]graph.Node, len(d.g.conds))
	for i, c := range d.g.conds {
		nodes[i] = dotNode{id: int64(i), c: c}
	}
	return iterator.NewOrderedNodes(nodes)
}

func (d dotGraph) From(id int64) graph.Nodes { return d.nodesOf(d.g.parents, id) }
func (d dotGraph) To(id int64) graph.Nodes   { return d.nodesOf(d.g.children, id) }

func (d dotGraph) nodesOf(adj [][]int, id int64) graph.Nodes {
	if id < 0 || id >= int64(len(adj)) || len(adj[id]) == 0 {
		return graph.Empty
	}
	nodes := make([]graph.Node, len(adj[id]))
	for i, j := range adj[id] {
		nodes[i] = dotNode{id: int64(j), c: d.g.conds[j]}
	}
	return iterator.NewOrderedNodes(nodes)
}

func (d dotGraph) HasEdgeBetween(xid, yid int64) bool {
	return d.HasEdgeFromTo(xid, yid) || d.HasEdgeFromTo(yid, xid)
}

func (d dotGraph) HasEdgeFromTo(uid, vid int64) bool {
	return d.g.dag.HasEdgeFromTo(uid, vid)
}

func (d dotGraph) Edge(uid, vid int64) graph.Edge {
	if !d.HasEdgeFromTo(uid, vid) {
		return nil
	}
	return dotEdge{
		f: dotNode{id: uid, c: d.g.conds[uid]},
		t: dotNode{id: vid, c: d.g.conds[vid]},
	}
}

// dotNode implements graph.Node and dot.Node to allow the
// condition text to be given to the DOT encoder.
type dotNode struct {
	id int64
	c  Condition
}

func (n dotNode) ID() int64     { return n.id }
func (n dotNode) DOTID() string { return n.c.String() }

type dotEdge struct {
	f, t dotNode
}

func (e dotEdge) From() graph.Node         { return e.f }
func (e dotEdge) To() graph.Node           { return e.t }
func (e dotEdge) ReversedEdge() graph.Edge { return dotEdge{f: e.t, t: e.f} }
