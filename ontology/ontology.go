// Copyright ©2021 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ontology defines the ontology collaborator consumed by condition
// graphs and provides an in-memory implementation held in an RDF triple
// store.
//
// Ontologies are scoped to a single species and to the ISA_PARTOF relation
// family: is_a (rdfs:subClassOf) and part_of (BFO:0000050) edges are both
// followed when computing ancestor and descendant closures.
package ontology

// Entity is an ontology element.
type Entity struct {
	ID   string
	Name string
}

// Ontology is the ontology service used to relate condition parameters.
// Implementations must be safe for concurrent read use.
type Ontology interface {
	// Element returns the entity with the given ID and whether
	// it exists in the ontology.
	Element(id string) (Entity, bool)

	// Elements returns all the entities in the ontology.
	Elements() []Entity

	// Ancestors returns the entities related to id by an ISA_PARTOF
	// path, excluding id itself. If directOnly is true only the
	// closest existing ancestors are returned.
	Ancestors(id string, directOnly bool) []Entity

	// Descendants is the inverse of Ancestors.
	Descendants(id string, directOnly bool) []Entity
}
