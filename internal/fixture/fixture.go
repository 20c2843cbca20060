// Copyright ©2021 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package fixture provides ontologies and conditions shared by tests.
package fixture

import (
	"strings"

	"github.com/kortschak/exprcall/condition"
	"github.com/kortschak/exprcall/ontology"
)

// Species is the species of all fixture conditions.
const Species = 9606

// Anat is an anatomical ontology in N-Triples. ANAT:MISSING has been
// deleted from the ontology but still links ANAT:4 to ANAT:1. ANAT:5
// has two parents, one by is_a and one by part_of.
//
//	ANAT:1
//	├── ANAT:2 ──┐
//	├── ANAT:3 ──┴── ANAT:5 (part_of ANAT:3)
//	└── [ANAT:MISSING]
//	    └── ANAT:4
const Anat = `<ANAT:1> <rdf:type> <owl:Class> .
<ANAT:1> <rdfs:label> "organism" .
<ANAT:2> <rdf:type> <owl:Class> .
<ANAT:2> <rdfs:label> "nervous system" .
<ANAT:2> <rdfs:subClassOf> <ANAT:1> .
<ANAT:3> <rdf:type> <owl:Class> .
<ANAT:3> <rdfs:label> "head" .
<ANAT:3> <rdfs:subClassOf> <ANAT:1> .
<ANAT:MISSING> <rdfs:subClassOf> <ANAT:1> .
<ANAT:4> <rdf:type> <owl:Class> .
<ANAT:4> <rdfs:label> "liver" .
<ANAT:4> <rdfs:subClassOf> <ANAT:MISSING> .
<ANAT:5> <rdf:type> <owl:Class> .
<ANAT:5> <rdfs:label> "brain" .
<ANAT:5> <rdfs:subClassOf> <ANAT:2> .
<ANAT:5> <obo:BFO_0000050> <ANAT:3> .
<ANAT:OLD> <rdf:type> <owl:Class> .
<ANAT:OLD> <owl:deprecated> "true" .
<ANAT:OLD> <rdfs:subClassOf> <ANAT:1> .
`

// Stage is a developmental stage ontology in N-Triples.
//
//	STAGE:1
//	└── STAGE:2
//	    └── STAGE:3
const Stage = `<STAGE:1> <rdf:type> <owl:Class> .
<STAGE:1> <rdfs:label> "life cycle" .
<STAGE:2> <rdf:type> <owl:Class> .
<STAGE:2> <rdfs:label> "embryo stage" .
<STAGE:2> <obo:BFO_0000050> <STAGE:1> .
<STAGE:3> <rdf:type> <owl:Class> .
<STAGE:3> <rdfs:label> "gastrula stage" .
<STAGE:3> <obo:BFO_0000050> <STAGE:2> .
`

// MustOntology returns the ontology held in the N-Triples text nt.
// It panics if nt cannot be decoded.
func MustOntology(nt string) *ontology.RDF {
	o, err := ontology.DecodeRDF(strings.NewReader(nt))
	if err != nil {
		panic(err)
	}
	return o
}

// Cond returns a fixture species condition for the anatomical entity
// and stage.
func Cond(anat, stage string) condition.Condition {
	return condition.Condition{AnatEntityID: anat, DevStageID: stage, SpeciesID: Species}
}

// Conditions returns the conditions over every pair of the given
// anatomical entities and stages.
func Conditions(anats, stages []string) []condition.Condition {
	var conds []condition.Condition
	for _, a := range anats {
		for _, s := range stages {
			conds = append(conds, Cond(a, s))
		}
	}
	return conds
}

// MustGraph returns a condition graph over conds using the Anat and Stage
// ontologies. It panics if the graph cannot be built.
func MustGraph(conds ...condition.Condition) *condition.Graph {
	g, err := condition.Build(conds, MustOntology(Anat), MustOntology(Stage))
	if err != nil {
		panic(err)
	}
	return g
}
