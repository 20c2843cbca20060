// Copyright ©2021 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package call provides raw and aggregated gene expression calls and the
// ranking, redundancy and clustering operations over aggregated calls.
//
// All p-value, rank and score arithmetic is performed with decimal values
// so that results are reproducible to the digit.
package call

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/kortschak/exprcall/condition"
)

// DataType is a kind of expression experiment.
type DataType int

const (
	Affymetrix DataType = iota
	EST
	InSitu
	RNASeq
	FullLengthRNASeq
)

// DataTypes is the complete set of data types.
var DataTypes = []DataType{Affymetrix, EST, InSitu, RNASeq, FullLengthRNASeq}

func (d DataType) String() string {
	switch d {
	case Affymetrix:
		return "AFFYMETRIX"
	case EST:
		return "EST"
	case InSitu:
		return "IN_SITU"
	case RNASeq:
		return "RNA_SEQ"
	case FullLengthRNASeq:
		return "FULL_LENGTH"
	default:
		return fmt.Sprintf("DataType(%d)", int(d))
	}
}

// Quality is the quality of a raw call.
type Quality int

const (
	NoQuality Quality = iota
	Low
	High
)

func (q Quality) String() string {
	switch q {
	case NoQuality:
		return "NODATA"
	case Low:
		return "LOW"
	case High:
		return "HIGH"
	default:
		return fmt.Sprintf("Quality(%d)", int(q))
	}
}

// ExclusionReason records why a raw call is excluded from aggregation.
type ExclusionReason int

const (
	NotExcluded ExclusionReason = iota
	PreFiltering
	Undefined
	AbsentNotReliable
)

func (e ExclusionReason) String() string {
	switch e {
	case NotExcluded:
		return "NOT_EXCLUDED"
	case PreFiltering:
		return "PRE_FILTERING"
	case Undefined:
		return "UNDEFINED"
	case AbsentNotReliable:
		return "ABSENT_NOT_RELIABLE"
	default:
		return fmt.Sprintf("ExclusionReason(%d)", int(e))
	}
}

// RawCall is a single assay measurement for a gene.
type RawCall struct {
	GeneID    string
	PValue    decimal.Decimal
	Quality   Quality
	Exclusion ExclusionReason

	// Rank is the rank of the gene in the assay,
	// 1 being the best.
	Rank decimal.Decimal
}

// PropagationState records where the evidence for a call comes from.
type PropagationState int

const (
	Self PropagationState = iota + 1
	Descendant
	SelfAndDescendant
)

func (p PropagationState) String() string {
	switch p {
	case Self:
		return "SELF"
	case Descendant:
		return "DESCENDANT"
	case SelfAndDescendant:
		return "SELF_AND_DESCENDANT"
	default:
		return fmt.Sprintf("PropagationState(%d)", int(p))
	}
}

// ExpressionCall is the aggregated expression call for a gene in a
// condition.
type ExpressionCall struct {
	GeneID    string
	Condition condition.Condition

	// DataTypes is the sorted set of data types supporting
	// the call, including those of descendant conditions.
	DataTypes []DataType

	// TrustedPValue and AllPValue are the combined p-values
	// of the condition's own trusted and complete data types.
	// They are not valid when the condition has no evidence
	// of its own or no trusted evidence.
	TrustedPValue decimal.NullDecimal
	AllPValue     decimal.NullDecimal

	// BestDescendantTrustedPValue and BestDescendantAllPValue
	// are the most significant p-values found in descendant
	// conditions.
	BestDescendantTrustedPValue decimal.NullDecimal
	BestDescendantAllPValue     decimal.NullDecimal

	// Score is the expression score in (0, 100] and
	// ScoreWeight is the number of raw records it
	// was derived from.
	Score       decimal.Decimal
	ScoreWeight decimal.Decimal

	BestDescendantScore       decimal.NullDecimal
	BestDescendantScoreWeight decimal.NullDecimal

	Propagation PropagationState

	// MeanRank is the rank of the gene in the condition,
	// lower being better. A call without a rank has a
	// zero MeanRank.
	MeanRank decimal.Decimal
}

// HasRank returns whether the call has a mean rank.
func (c *ExpressionCall) HasRank() bool {
	return c.MeanRank.Sign() > 0
}

// Equal returns whether c and o hold the same gene, condition and values.
// Decimal values are compared numerically.
func (c *ExpressionCall) Equal(o *ExpressionCall) bool {
	if c == o {
		return true
	}
	if c == nil || o == nil {
		return false
	}
	if c.GeneID != o.GeneID || c.Condition != o.Condition || c.Propagation != o.Propagation {
		return false
	}
	if len(c.DataTypes) != len(o.DataTypes) {
		return false
	}
	for i, d := range c.DataTypes {
		if o.DataTypes[i] != d {
			return false
		}
	}
	return equalNull(c.TrustedPValue, o.TrustedPValue) &&
		equalNull(c.AllPValue, o.AllPValue) &&
		equalNull(c.BestDescendantTrustedPValue, o.BestDescendantTrustedPValue) &&
		equalNull(c.BestDescendantAllPValue, o.BestDescendantAllPValue) &&
		c.Score.Equal(o.Score) &&
		c.ScoreWeight.Equal(o.ScoreWeight) &&
		equalNull(c.BestDescendantScore, o.BestDescendantScore) &&
		equalNull(c.BestDescendantScoreWeight, o.BestDescendantScoreWeight) &&
		c.MeanRank.Equal(o.MeanRank)
}

func equalNull(a, b decimal.NullDecimal) bool {
	if a.Valid != b.Valid {
		return false
	}
	return !a.Valid || a.Decimal.Equal(b.Decimal)
}

func (c *ExpressionCall) String() string {
	types := make([]string, len(c.DataTypes))
	for i, d := range c.DataTypes {
		types[i] = d.String()
	}
	return fmt.Sprintf("%s@%v[%s] rank=%s score=%s %v",
		c.GeneID, c.Condition, strings.Join(types, ","), c.MeanRank, c.Score, c.Propagation)
}

// SortDataTypes sorts d in place and removes duplicates, returning
// the resulting set.
func SortDataTypes(d []DataType) []DataType {
	if len(d) == 0 {
		return nil
	}
	sort.Slice(d, func(i, j int) bool { return d[i] < d[j] })
	set := d[:1]
	for _, t := range d[1:] {
		if t != set[len(set)-1] {
			set = append(set, t)
		}
	}
	return set
}
