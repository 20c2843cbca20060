// Copyright ©2021 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package otf aggregates raw assay calls into expression calls on the fly.
//
// Raw calls are regrouped from the fine grained conditions they were
// annotated to into the conditions of a condition graph, and each
// condition's call is then computed from its own raw data and the calls
// already computed for its more precise conditions.
package otf

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Scale is the number of decimal places of computed scores, p-values
// and ranks. Rounding is half-up.
const Scale = 5

// ErrInvalidRank is returned when a rank is outside [1, maxRank].
var ErrInvalidRank = errors.New("otf: invalid rank")

var (
	one        = decimal.NewFromInt(1)
	two        = decimal.NewFromInt(2)
	ninetyNine = decimal.NewFromInt(99)
	hundred    = decimal.NewFromInt(100)
)

// ExpressionScore returns the expression score of a rank given the maximum
// rank of its data type. Scores decrease linearly from 100 at rank 1 to 1
// at maxRank:
//
//	score = 100 - (rank-1)×99/(maxRank-1)
//
// rounded half-up to Scale decimal places. When maxRank is 1 the score is
// 100.
func ExpressionScore(rank, maxRank decimal.Decimal) (decimal.Decimal, error) {
	if maxRank.LessThan(one) {
		return decimal.Decimal{}, fmt.Errorf("%w: max rank %s less than 1", ErrInvalidRank, maxRank)
	}
	if rank.LessThan(one) || rank.GreaterThan(maxRank) {
		return decimal.Decimal{}, fmt.Errorf("%w: rank %s not in [1,%s]", ErrInvalidRank, rank, maxRank)
	}
	if maxRank.Equal(one) {
		return hundred, nil
	}
	drop := rank.Sub(one).Mul(ninetyNine).Div(maxRank.Sub(one))
	return hundred.Sub(drop).Round(Scale), nil
}
