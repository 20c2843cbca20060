// Copyright ©2021 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package condition

import (
	"fmt"
	"strings"
)

// Param is a biological condition parameter.
type Param int

const (
	AnatEntity Param = iota
	DevStage
	CellType
	Sex
	Strain
)

// Params is the complete set of condition parameters in
// comparison order.
var Params = []Param{AnatEntity, DevStage, CellType, Sex, Strain}

func (p Param) String() string {
	switch p {
	case AnatEntity:
		return "anat"
	case DevStage:
		return "stage"
	case CellType:
		return "cell"
	case Sex:
		return "sex"
	case Strain:
		return "strain"
	default:
		return fmt.Sprintf("Param(%d)", int(p))
	}
}

// Condition is a biological context in which a gene is observed.
// An empty parameter value is a wildcard; the parameter was not
// requested. Condition values are comparable and may be used as
// map keys.
type Condition struct {
	AnatEntityID string
	DevStageID   string
	CellTypeID   string
	SexID        string
	StrainID     string
	SpeciesID    int
}

// Value returns the value of the parameter p of c.
func (c Condition) Value(p Param) string {
	switch p {
	case AnatEntity:
		return c.AnatEntityID
	case DevStage:
		return c.DevStageID
	case CellType:
		return c.CellTypeID
	case Sex:
		return c.SexID
	case Strain:
		return c.StrainID
	default:
		panic(fmt.Sprintf("condition: invalid parameter: %v", p))
	}
}

// String returns a stable text representation of c.
func (c Condition) String() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "%d", c.SpeciesID)
	for _, p := range Params {
		v := c.Value(p)
		if v == "" {
			continue
		}
		fmt.Fprintf(&buf, ";%s=%s", p, v)
	}
	return buf.String()
}

// Less returns whether a sorts before b in a total order over conditions
// that is independent of precision. It is used for tie-breaking.
func Less(a, b Condition) bool {
	if a.SpeciesID != b.SpeciesID {
		return a.SpeciesID < b.SpeciesID
	}
	for _, p := range Params {
		av, bv := a.Value(p), b.Value(p)
		if av != bv {
			return av < bv
		}
	}
	return false
}
