// Copyright ©2021 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package call

import (
	"fmt"

	"github.com/kortschak/exprcall/condition"
)

// IdentifyRedundant returns the calls in calls that are made redundant by
// a call for the same gene at a more precise condition with an equal or
// better mean rank. Ranks are compared exactly. Calls without a rank are
// never redundant and never make another call redundant. The returned
// calls are in input order.
//
// All call conditions must be members of g.
func IdentifyRedundant(calls []*ExpressionCall, g *condition.Graph) ([]*ExpressionCall, error) {
	byGene := make(map[string][]*ExpressionCall)
	for _, c := range calls {
		if c == nil {
			continue
		}
		if !g.Contains(c.Condition) {
			return nil, fmt.Errorf("call: %s: %w: %v", c.GeneID, condition.ErrNotMember, c.Condition)
		}
		if !c.HasRank() {
			continue
		}
		byGene[c.GeneID] = append(byGene[c.GeneID], c)
	}

	redundant := make(map[*ExpressionCall]bool)
	for _, gene := range byGene {
		for _, broad := range gene {
			for _, precise := range gene {
				if precise == broad || precise.MeanRank.GreaterThan(broad.MeanRank) {
					continue
				}
				more, err := g.IsMorePrecise(precise.Condition, broad.Condition)
				if err != nil {
					return nil, err
				}
				if more {
					redundant[broad] = true
					break
				}
			}
		}
	}

	var result []*ExpressionCall
	for _, c := range calls {
		if redundant[c] {
			result = append(result, c)
			delete(redundant, c)
		}
	}
	return result, nil
}
