// Copyright ©2021 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ontology_test

import (
	"reflect"
	"strings"
	"testing"

	"github.com/kortschak/exprcall/internal/fixture"
	"github.com/kortschak/exprcall/ontology"
)

func ids(entities []ontology.Entity) []string {
	if len(entities) == 0 {
		return nil
	}
	s := make([]string, len(entities))
	for i, e := range entities {
		s[i] = e.ID
	}
	return s
}

func TestElements(t *testing.T) {
	o := fixture.MustOntology(fixture.Anat)

	got := ids(o.Elements())
	want := []string{"ANAT:1", "ANAT:2", "ANAT:3", "ANAT:4", "ANAT:5"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("unexpected elements: got:%v want:%v", got, want)
	}

	e, ok := o.Element("ANAT:5")
	if !ok {
		t.Fatal("expected ANAT:5 to be an element")
	}
	if e.Name != "brain" {
		t.Errorf("unexpected name for ANAT:5: got:%q want:%q", e.Name, "brain")
	}
	for _, id := range []string{"ANAT:MISSING", "ANAT:OLD", "ANAT:99"} {
		if _, ok := o.Element(id); ok {
			t.Errorf("unexpected element %s", id)
		}
	}
}

var relationTests = []struct {
	id         string
	directOnly bool

	ancestors   []string
	descendants []string
}{
	{
		id:          "ANAT:1",
		directOnly:  true,
		descendants: []string{"ANAT:2", "ANAT:3", "ANAT:4"},
	},
	{
		id:          "ANAT:1",
		directOnly:  false,
		descendants: []string{"ANAT:2", "ANAT:3", "ANAT:4", "ANAT:5"},
	},
	{
		id:         "ANAT:4",
		directOnly: true,
		ancestors:  []string{"ANAT:1"},
	},
	{
		id:         "ANAT:4",
		directOnly: false,
		ancestors:  []string{"ANAT:1"},
	},
	{
		id:         "ANAT:5",
		directOnly: true,
		ancestors:  []string{"ANAT:2", "ANAT:3"},
	},
	{
		id:         "ANAT:5",
		directOnly: false,
		ancestors:  []string{"ANAT:1", "ANAT:2", "ANAT:3"},
	},
	{
		id:          "ANAT:2",
		directOnly:  false,
		ancestors:   []string{"ANAT:1"},
		descendants: []string{"ANAT:5"},
	},
	{
		// Absent terms have no relations.
		id:         "ANAT:99",
		directOnly: false,
	},
}

func TestRelations(t *testing.T) {
	o := fixture.MustOntology(fixture.Anat)
	for _, test := range relationTests {
		got := ids(o.Ancestors(test.id, test.directOnly))
		if !reflect.DeepEqual(got, test.ancestors) {
			t.Errorf("unexpected ancestors for %s direct=%t: got:%v want:%v",
				test.id, test.directOnly, got, test.ancestors)
		}
		got = ids(o.Descendants(test.id, test.directOnly))
		if !reflect.DeepEqual(got, test.descendants) {
			t.Errorf("unexpected descendants for %s direct=%t: got:%v want:%v",
				test.id, test.directOnly, got, test.descendants)
		}
	}
}

func TestDecodeRDFError(t *testing.T) {
	_, err := ontology.DecodeRDF(strings.NewReader("<ANAT:1> <rdf:type>\n"))
	if err == nil {
		t.Error("expected error for truncated statement")
	}
}
