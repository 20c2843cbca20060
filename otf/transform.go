// Copyright ©2021 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package otf

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/kortschak/exprcall/call"
	"github.com/kortschak/exprcall/condition"
)

// ErrUnmappedCondition is returned when a raw call source's raw condition
// has no condition to be reduced to.
var ErrUnmappedCondition = errors.New("otf: raw condition not mapped")

// RawCondition is the condition an assay was annotated to, before
// reduction to the parameters of a condition graph.
type RawCondition struct {
	AnatEntityID string
	DevStageID   string
	CellTypeID   string
	SexID        string
	StrainID     string
	SpeciesID    int
}

// RawCallSource is a raw call and the assay that produced it. The assay
// is a probeset, an RNA-Seq library annotated sample, in situ evidence
// or an EST, depending on the data type.
type RawCallSource struct {
	AssayID      string
	RawCondition RawCondition
	Call         call.RawCall
}

// RawDataContainer holds the raw call sources of a single data type.
type RawDataContainer struct {
	DataType call.DataType

	// MaxRank is the highest rank of the data type
	// in the species.
	MaxRank decimal.Decimal

	Sources []RawCallSource
}

// RawData holds the raw call sources of a condition by data type.
type RawData map[call.DataType][]RawCallSource

// TransformToRawDataPerCondition regroups the raw call sources held in
// containers by the condition their raw condition reduces to in reduce.
// Sources from distinct raw conditions reducing to the same condition are
// merged. Every source is kept, in input order within a data type.
func TransformToRawDataPerCondition(reduce map[RawCondition]condition.Condition, containers []RawDataContainer) (map[condition.Condition]RawData, error) {
	perCond := make(map[condition.Condition]RawData)
	for _, c := range containers {
		for _, s := range c.Sources {
			cond, ok := reduce[s.RawCondition]
			if !ok {
				return nil, fmt.Errorf("%w: %s %s: %+v", ErrUnmappedCondition, c.DataType, s.AssayID, s.RawCondition)
			}
			data, ok := perCond[cond]
			if !ok {
				data = make(RawData)
				perCond[cond] = data
			}
			data[c.DataType] = append(data[c.DataType], s)
		}
	}
	return perCond, nil
}

// MaxRanks returns the maximum rank of each data type held in containers.
func MaxRanks(containers []RawDataContainer) map[call.DataType]decimal.Decimal {
	max := make(map[call.DataType]decimal.Decimal)
	for _, c := range containers {
		if m, ok := max[c.DataType]; !ok || c.MaxRank.GreaterThan(m) {
			max[c.DataType] = c.MaxRank
		}
	}
	return max
}
