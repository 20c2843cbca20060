// Copyright ©2021 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package call_test

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/kortschak/exprcall/call"
	"github.com/kortschak/exprcall/internal/fixture"
)

func rankedCalls(ranks ...string) []*call.ExpressionCall {
	calls := make([]*call.ExpressionCall, len(ranks))
	for i, r := range ranks {
		calls[i] = newCall("g1", fixture.Cond("ANAT:1", ""), r)
	}
	return calls
}

var clusterTests = []struct {
	name      string
	ranks     []string
	method    call.ClusteringMethod
	threshold float64
	want      []int
}{
	{
		name:      "bgee max",
		ranks:     []string{"1", "1", "1.02", "2", "2.05", "10", "10.5", "100"},
		method:    call.BgeeDistToMax,
		threshold: 1.2,
		want:      []int{0, 0, 0, 1, 1, 2, 2, 3},
	},
	{
		name:      "canberra max",
		ranks:     []string{"1", "1", "1.02", "2", "2.05", "10", "10.5", "100"},
		method:    call.CanberraDistToMax,
		threshold: 0.1,
		want:      []int{0, 0, 0, 1, 1, 2, 2, 3},
	},
	{
		name:      "canberra max chain",
		ranks:     []string{"10", "10.5", "11", "11.5", "12"},
		method:    call.CanberraDistToMax,
		threshold: 0.03,
		want:      []int{0, 0, 0, 0, 0},
	},
	{
		name:      "canberra min chain",
		ranks:     []string{"10", "10.5", "11", "11.5", "12"},
		method:    call.CanberraDistToMin,
		threshold: 0.03,
		want:      []int{0, 0, 1, 1, 2},
	},
	{
		name:      "canberra mean chain",
		ranks:     []string{"10", "10.5", "11", "11.5", "12"},
		method:    call.CanberraDistToMean,
		threshold: 0.03,
		want:      []int{0, 0, 1, 1, 2},
	},
	{
		name:      "unordered input",
		ranks:     []string{"100", "2", "1"},
		method:    call.BgeeDistToMin,
		threshold: 2.5,
		want:      []int{1, 0, 0},
	},
	{
		name:      "equal large ranks",
		ranks:     []string{"1000", "1000.0"},
		method:    call.BgeeDistToMean,
		threshold: 1.01,
		want:      []int{0, 0},
	},
}

func TestClusterByMeanRank(t *testing.T) {
	for _, test := range clusterTests {
		calls := rankedCalls(test.ranks...)
		clusters, err := call.ClusterByMeanRank(calls, test.method, test.threshold)
		if err != nil {
			t.Errorf("unexpected error for %s: %v", test.name, err)
			continue
		}
		got := make([]int, len(calls))
		for i, c := range calls {
			got[i] = clusters[c]
		}
		if !reflect.DeepEqual(got, test.want) {
			t.Errorf("unexpected clusters for %s: got:%v want:%v", test.name, got, test.want)
		}
	}
}

func TestClusterByMeanRankUnranked(t *testing.T) {
	calls := rankedCalls("1", "0", "2")
	clusters, err := call.ClusterByMeanRank(calls, call.CanberraDistToMax, 0.5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(clusters) != 2 {
		t.Errorf("unexpected number of clustered calls: got:%d want:2", len(clusters))
	}
	if _, ok := clusters[calls[1]]; ok {
		t.Error("unexpected cluster for unranked call")
	}
}

func TestClusterThreshold(t *testing.T) {
	calls := rankedCalls("1", "2")
	for _, test := range []struct {
		method    call.ClusteringMethod
		threshold float64
		wantErr   bool
	}{
		{method: call.BgeeDistToMax, threshold: 1, wantErr: true},
		{method: call.BgeeDistToMin, threshold: 0.5, wantErr: true},
		{method: call.BgeeDistToMean, threshold: 1.0001, wantErr: false},
		{method: call.CanberraDistToMax, threshold: 1.1, wantErr: true},
		{method: call.CanberraDistToMin, threshold: -0.1, wantErr: true},
		{method: call.CanberraDistToMean, threshold: 0, wantErr: false},
		{method: call.CanberraDistToMean, threshold: 1, wantErr: false},
		{method: call.CanberraDistToMax, threshold: math.NaN(), wantErr: true},
	} {
		_, err := call.ClusterByMeanRank(calls, test.method, test.threshold)
		if gotErr := errors.Is(err, call.ErrInvalidThreshold); gotErr != test.wantErr {
			t.Errorf("unexpected error for %v with threshold %v: %v", test.method, test.threshold, err)
		}
	}
	_, err := call.ClusterByMeanRank(calls, call.ClusteringMethod(-1), 2)
	if err == nil {
		t.Error("expected error for invalid clustering method")
	}
}

func TestDistances(t *testing.T) {
	const tol = 1e-12
	for _, test := range []struct {
		name string
		got  float64
		want float64
	}{
		{name: "bgee", got: call.BgeeRankDistance(2, 2), want: math.Pow(2, 0.03)},
		{name: "bgee one", got: call.BgeeRankDistance(1, 1), want: 1},
		{name: "canberra", got: call.CanberraDistance(1, 3), want: 0.5},
		{name: "canberra equal", got: call.CanberraDistance(4, 4), want: 0},
		{name: "canberra zero", got: call.CanberraDistance(0, 0), want: 0},
	} {
		if math.Abs(test.got-test.want) > tol {
			t.Errorf("unexpected %s distance: got:%v want:%v", test.name, test.got, test.want)
		}
	}
}
