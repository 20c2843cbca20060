// Copyright ©2021 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package otf

import (
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// ErrInvalidPValue is returned when a p-value is outside (0, 1].
var ErrInvalidPValue = errors.New("otf: invalid p-value")

// Median returns twice the median of the p-values in pValues, capped at 1.
// A single p-value is returned unchanged. pValues is not modified.
func Median(pValues []decimal.Decimal) (decimal.Decimal, error) {
	for _, p := range pValues {
		if p.Sign() <= 0 || p.GreaterThan(one) {
			return decimal.Decimal{}, fmt.Errorf("%w: %s not in (0,1]", ErrInvalidPValue, p)
		}
	}
	switch len(pValues) {
	case 0:
		return decimal.Decimal{}, errors.New("otf: median of no p-values")
	case 1:
		return pValues[0], nil
	}
	p := make([]decimal.Decimal, len(pValues))
	copy(p, pValues)
	sort.Slice(p, func(i, j int) bool { return p[i].LessThan(p[j]) })

	n := len(p)
	var m decimal.Decimal
	if n%2 == 1 {
		m = p[n/2].Mul(two)
	} else {
		// Twice the mean of the two central values.
		m = p[n/2-1].Add(p[n/2])
	}
	return decimal.Min(m, one), nil
}
