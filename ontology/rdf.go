// Copyright ©2021 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ontology

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/formats/rdf"
	"gonum.org/v1/gonum/graph/traverse"

	"github.com/kortschak/gogo"
)

// Predicates and objects used by RDF ontologies. Term values are held
// with local namespace prefixes rather than full IRIs.
const (
	SubClassOf = "<rdfs:subClassOf>"
	PartOf     = "<obo:BFO_0000050>"
	Label      = "<rdfs:label>"
	Type       = "<rdf:type>"
	Class      = "<owl:Class>"
	Deprecated = "<owl:deprecated>"
)

// RDF is an Ontology held in an RDF graph. The elements of the ontology
// are the subjects of
//
//	<ID> <rdf:type> <owl:Class> .
//
// statements that are not marked deprecated. Terms that take part in
// subClassOf or part_of statements without being elements are treated
// as deleted; closures are computed through them so that descendants of
// a deleted term remain connected to its existing ancestors.
type RDF struct {
	g *gogo.Graph

	elements map[string]Entity
	ids      []string
}

// NewRDF returns a new RDF ontology holding the provided statements.
func NewRDF(statements []*rdf.Statement) *RDF {
	g := gogo.NewGraph()
	for _, s := range statements {
		s.Subject.UID = 0
		s.Predicate.UID = 0
		s.Object.UID = 0
		g.AddStatement(s)
	}

	o := &RDF{g: g, elements: make(map[string]Entity)}
	nodes := g.Nodes()
	for nodes.Next() {
		t := nodes.Node().(rdf.Term)
		if !o.isClass(t) || o.isDeprecated(t) {
			continue
		}
		id := idOf(t)
		o.elements[id] = Entity{ID: id, Name: o.labelOf(t)}
		o.ids = append(o.ids, id)
	}
	sort.Strings(o.ids)

	return o
}

// DecodeRDF returns an RDF ontology read from N-Triples or N-Quads in r.
func DecodeRDF(r io.Reader) (*RDF, error) {
	dec := rdf.NewDecoder(r)
	var statements []*rdf.Statement
	for {
		s, err := dec.Unmarshal()
		if err != nil {
			if err != io.EOF {
				return nil, fmt.Errorf("ontology: error during decoding: %w", err)
			}
			break
		}
		statements = append(statements, s)
	}
	return NewRDF(statements), nil
}

// Element returns the entity with the given ID.
func (o *RDF) Element(id string) (Entity, bool) {
	e, ok := o.elements[id]
	return e, ok
}

// Elements returns all the elements of the ontology sorted by ID.
func (o *RDF) Elements() []Entity {
	elements := make([]Entity, len(o.ids))
	for i, id := range o.ids {
		elements[i] = o.elements[id]
	}
	return elements
}

// Ancestors returns the existing ancestors of id. Deleted terms on a path
// are skipped, so a direct ancestor query through a deleted term returns
// the deleted term's closest existing ancestors.
func (o *RDF) Ancestors(id string, directOnly bool) []Entity {
	t, ok := o.g.TermFor(iriOf(id))
	if !ok {
		return nil
	}
	if directOnly {
		return o.closest(t, true)
	}
	return o.closure(o.g, t)
}

// Descendants returns the existing descendants of id with the same
// treatment of deleted terms as Ancestors.
func (o *RDF) Descendants(id string, directOnly bool) []Entity {
	t, ok := o.g.TermFor(iriOf(id))
	if !ok {
		return nil
	}
	if directOnly {
		return o.closest(t, false)
	}
	return o.closure(reverse{o.g}, t)
}

// closest returns the nearest elements reachable from t, walking up the
// hierarchy if up is true and down otherwise, passing through non-element
// terms.
func (o *RDF) closest(t rdf.Term, up bool) []Entity {
	seen := map[int64]bool{t.UID: true}
	found := make(map[string]bool)
	var result []Entity
	frontier := []rdf.Term{t}
	for len(frontier) != 0 {
		var next []rdf.Term
		for _, f := range frontier {
			var nodes []rdf.Term
			if up {
				nodes = o.g.Query(f).Out(isISAPartOfStatement).Result()
			} else {
				nodes = o.g.Query(f).In(isISAPartOfStatement).Result()
			}
			for _, n := range nodes {
				if seen[n.UID] {
					continue
				}
				seen[n.UID] = true
				id := idOf(n)
				if e, ok := o.elements[id]; ok {
					if !found[id] {
						found[id] = true
						result = append(result, e)
					}
					continue
				}
				next = append(next, n)
			}
		}
		frontier = next
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

// closure returns all the elements reachable from t in g.
func (o *RDF) closure(g traverse.Graph, t rdf.Term) []Entity {
	var result []Entity
	bf := traverse.BreadthFirst{Traverse: isISAPartOf}
	bf.Walk(g, t, func(n graph.Node, _ int) bool {
		if n.ID() == t.ID() {
			return false
		}
		if e, ok := o.elements[idOf(n.(rdf.Term))]; ok {
			result = append(result, e)
		}
		return false
	})
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

func (o *RDF) isClass(t rdf.Term) bool {
	_, _, kind, err := t.Parts()
	if err != nil || kind != rdf.IRI {
		return false
	}
	return len(o.g.Query(t).Out(func(s *rdf.Statement) bool {
		return s.Predicate.Value == Type && s.Object.Value == Class
	}).Result()) != 0
}

func (o *RDF) isDeprecated(t rdf.Term) bool {
	for _, v := range o.g.Query(t).Out(func(s *rdf.Statement) bool {
		return s.Predicate.Value == Deprecated
	}).Result() {
		text, _, _, err := v.Parts()
		if err == nil && text == "true" {
			return true
		}
	}
	return false
}

func (o *RDF) labelOf(t rdf.Term) string {
	labels := o.g.Query(t).Out(func(s *rdf.Statement) bool {
		return s.Predicate.Value == Label
	}).Result()
	if len(labels) == 0 {
		return ""
	}
	text, _, kind, err := labels[0].Parts()
	if err != nil || kind != rdf.Literal {
		return ""
	}
	return text
}

// isISAPartOf is a traverse edge filter. It accepts statements where
//
//	any -- <rdfs:subClassOf>|<obo:BFO_0000050> -> any
func isISAPartOf(e graph.Edge) bool {
	return gogo.ConnectedByAny(e, isISAPartOfStatement)
}

func isISAPartOfStatement(s *rdf.Statement) bool {
	return s.Predicate.Value == SubClassOf || s.Predicate.Value == PartOf
}

// reverse implements the traverse.Graph reversing the direction of edges.
type reverse struct {
	*gogo.Graph
}

func (g reverse) From(id int64) graph.Nodes      { return g.Graph.To(id) }
func (g reverse) Edge(uid, vid int64) graph.Edge { return g.Graph.Edge(vid, uid) }

func iriOf(id string) string { return "<" + id + ">" }

func idOf(t rdf.Term) string {
	return strings.TrimSuffix(strings.TrimPrefix(t.Value, "<"), ">")
}
