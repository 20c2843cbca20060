// Copyright ©2021 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package call

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ErrInvalidThreshold is returned when a clustering threshold is outside
// the domain of the clustering method's distance.
var ErrInvalidThreshold = errors.New("call: invalid clustering threshold")

// ClusteringMethod is a one-dimensional clustering of mean ranks. Calls
// are taken in ascending rank order and a new cluster is started when the
// distance between a reference value of the current cluster and the next
// rank exceeds a threshold.
type ClusteringMethod int

const (
	// BgeeDistToMax, BgeeDistToMean and BgeeDistToMin use
	// BgeeRankDistance with the current cluster's maximum,
	// mean or minimum rank as the reference.
	BgeeDistToMax ClusteringMethod = iota
	BgeeDistToMean
	BgeeDistToMin

	// CanberraDistToMax, CanberraDistToMean and CanberraDistToMin
	// use CanberraDistance with the current cluster's maximum,
	// mean or minimum rank as the reference.
	CanberraDistToMax
	CanberraDistToMean
	CanberraDistToMin
)

func (m ClusteringMethod) String() string {
	switch m {
	case BgeeDistToMax:
		return "BGEE_DIST_TO_MAX"
	case BgeeDistToMean:
		return "BGEE_DIST_TO_MEAN"
	case BgeeDistToMin:
		return "BGEE_DIST_TO_MIN"
	case CanberraDistToMax:
		return "CANBERRA_DIST_TO_MAX"
	case CanberraDistToMean:
		return "CANBERRA_DIST_TO_MEAN"
	case CanberraDistToMin:
		return "CANBERRA_DIST_TO_MIN"
	default:
		return fmt.Sprintf("ClusteringMethod(%d)", int(m))
	}
}

func (m ClusteringMethod) valid() bool {
	return BgeeDistToMax <= m && m <= CanberraDistToMin
}

// IsDistanceAboveOne returns whether the method's distances, and so its
// thresholds, are absolute values greater than one. Otherwise thresholds
// are relative values in [0, 1].
func (m ClusteringMethod) IsDistanceAboveOne() bool {
	switch m {
	case BgeeDistToMax, BgeeDistToMean, BgeeDistToMin:
		return true
	default:
		return false
	}
}

// Distance returns the distance between the ranks low and high, with
// low <= high.
func (m ClusteringMethod) Distance(low, high float64) float64 {
	if m.IsDistanceAboveOne() {
		return BgeeRankDistance(low, high)
	}
	return CanberraDistance(low, high)
}

func (m ClusteringMethod) reference(cluster []float64) float64 {
	switch m {
	case BgeeDistToMax, CanberraDistToMax:
		return floats.Max(cluster)
	case BgeeDistToMin, CanberraDistToMin:
		return floats.Min(cluster)
	default:
		return stat.Mean(cluster, nil)
	}
}

// BgeeRankDistance returns high^1.03 / low. The distance weights rank
// differences between good ranks more heavily than the same differences
// between poor ranks.
func BgeeRankDistance(low, high float64) float64 {
	return math.Pow(high, 1.03) / low
}

// CanberraDistance returns |high-low| / (|low|+|high|).
func CanberraDistance(low, high float64) float64 {
	d := math.Abs(low) + math.Abs(high)
	if d == 0 {
		return 0
	}
	return math.Abs(high-low) / d
}

// ClusterByMeanRank assigns the ranked calls in calls to clusters by
// mean rank using method and threshold. Cluster indices are consecutive
// from zero in ascending rank order, and calls with equal ranks are
// always in the same cluster. Calls without a rank are not assigned.
//
// For BgeeDistToMax and CanberraDistToMax, no two consecutive ranks
// within a cluster are further apart than threshold, and the ranks either
// side of a cluster boundary are.
func ClusterByMeanRank(calls []*ExpressionCall, method ClusteringMethod, threshold float64) (map[*ExpressionCall]int, error) {
	if !method.valid() {
		return nil, fmt.Errorf("call: invalid clustering method: %v", method)
	}
	switch {
	case method.IsDistanceAboveOne() && !(threshold > 1):
		return nil, fmt.Errorf("%w: %v requires threshold > 1: %v", ErrInvalidThreshold, method, threshold)
	case !method.IsDistanceAboveOne() && !(0 <= threshold && threshold <= 1):
		return nil, fmt.Errorf("%w: %v requires threshold in [0,1]: %v", ErrInvalidThreshold, method, threshold)
	}

	var ranked []*ExpressionCall
	for _, c := range calls {
		if c != nil && c.HasRank() {
			ranked = append(ranked, c)
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].MeanRank.LessThan(ranked[j].MeanRank)
	})

	clusters := make(map[*ExpressionCall]int, len(ranked))
	var (
		cluster int
		members []float64
	)
	for i, c := range ranked {
		r := c.MeanRank.InexactFloat64()
		if i != 0 && !c.MeanRank.Equal(ranked[i-1].MeanRank) {
			if method.Distance(method.reference(members), r) > threshold {
				cluster++
				members = members[:0]
			}
		}
		members = append(members, r)
		clusters[c] = cluster
	}
	return clusters, nil
}
