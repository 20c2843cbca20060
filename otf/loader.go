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

var (
	// ErrNoData is returned when a call is requested for a
	// condition without raw data or descendant calls for the gene.
	ErrNoData = errors.New("otf: no raw data or descendant calls")

	// ErrEmptyDataType is returned when raw data holds a data
	// type without any raw call sources.
	ErrEmptyDataType = errors.New("otf: data type without raw calls")

	// ErrNoRank is returned when neither the raw data of a
	// condition nor its descendant calls hold a ranked call.
	ErrNoRank = errors.New("otf: no ranked raw calls or descendant calls")
)

// Config holds the aggregation parameters of a Loader.
type Config struct {
	// TrustedDataTypes are the data types contributing to
	// trusted p-values. If nil, all data types except EST
	// are trusted.
	TrustedDataTypes []call.DataType

	// MaxRanks holds the maximum rank of each ranked data
	// type in the species. See the MaxRanks function.
	MaxRanks map[call.DataType]decimal.Decimal

	// ScoreScale is the number of decimal places of combined
	// scores and mean ranks. If zero, Scale is used.
	ScoreScale int32
}

// Loader computes expression calls from raw data. A Loader is safe for
// concurrent use.
type Loader struct {
	trusted  map[call.DataType]bool
	maxRanks map[call.DataType]decimal.Decimal
	scale    int32
}

// NewLoader returns a new Loader using the parameters in cfg.
func NewLoader(cfg Config) *Loader {
	l := &Loader{
		trusted:  make(map[call.DataType]bool),
		maxRanks: cfg.MaxRanks,
		scale:    cfg.ScoreScale,
	}
	if l.scale == 0 {
		l.scale = Scale
	}
	if cfg.TrustedDataTypes == nil {
		for _, d := range call.DataTypes {
			l.trusted[d] = d != call.EST
		}
	} else {
		for _, d := range cfg.TrustedDataTypes {
			l.trusted[d] = true
		}
	}
	return l
}

// summary is the aggregate of the raw calls of a single data type.
// meanRank, score and weight are zero when no raw call is ranked.
type summary struct {
	dataType call.DataType
	pValue   decimal.Decimal
	meanRank decimal.Decimal
	score    decimal.Decimal
	weight   decimal.Decimal
}

// summarize returns the aggregate of the raw calls for gene in sources.
// It returns false if no raw call for the gene has been retained.
func (l *Loader) summarize(gene string, d call.DataType, sources []RawCallSource) (summary, bool, error) {
	if len(sources) == 0 {
		return summary{}, false, fmt.Errorf("%w: %v", ErrEmptyDataType, d)
	}
	var (
		pValues []decimal.Decimal
		rankSum decimal.Decimal
		ranked  int64
	)
	for _, s := range sources {
		if s.Call.GeneID != gene || s.Call.Exclusion != call.NotExcluded {
			continue
		}
		pValues = append(pValues, s.Call.PValue)
		if s.Call.Rank.Sign() > 0 {
			rankSum = rankSum.Add(s.Call.Rank)
			ranked++
		}
	}
	if len(pValues) == 0 {
		return summary{}, false, nil
	}

	p, err := Median(pValues)
	if err != nil {
		return summary{}, false, err
	}
	s := summary{dataType: d, pValue: p}
	if ranked == 0 {
		return s, true, nil
	}
	maxRank, ok := l.maxRanks[d]
	if !ok {
		return summary{}, false, fmt.Errorf("%w: no max rank for %v", ErrInvalidRank, d)
	}
	s.weight = decimal.NewFromInt(ranked)
	s.meanRank = rankSum.DivRound(s.weight, l.scale)
	s.score, err = ExpressionScore(s.meanRank, maxRank)
	if err != nil {
		return summary{}, false, fmt.Errorf("otf: %s %v: %w", gene, d, err)
	}
	return s, true, nil
}

// LoadCall returns the expression call for gene at condition c computed
// from the raw data of c and the calls for gene at conditions more precise
// than c.
//
// Per data type, p-values of retained raw calls are combined with Median
// and ranks are averaged and converted to an expression score. The trusted
// and all data type p-values are the Median of the per data type values,
// and the call's score and mean rank are averages weighted by the number
// of ranked raw calls of each data type.
//
// A call without ranked raw data of its own takes its score, weight and
// mean rank from the highest scoring ranked descendant call, ties going
// to the lower mean rank. It is an error for neither the raw data nor the
// descendants to hold a ranked call.
func (l *Loader) LoadCall(gene string, c condition.Condition, data RawData, descendants []*call.ExpressionCall) (*call.ExpressionCall, error) {
	types := make([]call.DataType, 0, len(data))
	for d := range data {
		types = append(types, d)
	}
	types = call.SortDataTypes(types)
	var own []summary
	for _, d := range types {
		s, ok, err := l.summarize(gene, d, data[d])
		if err != nil {
			return nil, fmt.Errorf("otf: %s at %v: %w", gene, c, err)
		}
		if ok {
			own = append(own, s)
		}
	}
	for _, d := range descendants {
		if d.GeneID != gene {
			return nil, fmt.Errorf("otf: descendant call for %s used for %s at %v", d.GeneID, gene, c)
		}
	}
	if len(own) == 0 && len(descendants) == 0 {
		return nil, fmt.Errorf("%w: %s at %v", ErrNoData, gene, c)
	}

	ec := &call.ExpressionCall{GeneID: gene, Condition: c}
	var dataTypes []call.DataType
	if len(own) != 0 {
		var (
			all, trusted      []decimal.Decimal
			scoreSum, rankSum decimal.Decimal
			weight            decimal.Decimal
		)
		for _, s := range own {
			dataTypes = append(dataTypes, s.dataType)
			all = append(all, s.pValue)
			if l.trusted[s.dataType] {
				trusted = append(trusted, s.pValue)
			}
			scoreSum = scoreSum.Add(s.score.Mul(s.weight))
			rankSum = rankSum.Add(s.meanRank.Mul(s.weight))
			weight = weight.Add(s.weight)
		}
		p, err := Median(all)
		if err != nil {
			return nil, err
		}
		ec.AllPValue = decimal.NewNullDecimal(p)
		if len(trusted) != 0 {
			p, err = Median(trusted)
			if err != nil {
				return nil, err
			}
			ec.TrustedPValue = decimal.NewNullDecimal(p)
		}
		if weight.Sign() > 0 {
			ec.Score = scoreSum.DivRound(weight, l.scale)
			ec.MeanRank = rankSum.DivRound(weight, l.scale)
			ec.ScoreWeight = weight
		}
	}

	var fallback *call.ExpressionCall
	for _, d := range descendants {
		dataTypes = append(dataTypes, d.DataTypes...)
		ec.BestDescendantTrustedPValue = minNull(ec.BestDescendantTrustedPValue, d.TrustedPValue, d.BestDescendantTrustedPValue)
		ec.BestDescendantAllPValue = minNull(ec.BestDescendantAllPValue, d.AllPValue, d.BestDescendantAllPValue)
		if d.ScoreWeight.Sign() > 0 {
			betterScore(ec, d.Score, d.ScoreWeight)
		}
		if d.BestDescendantScore.Valid {
			betterScore(ec, d.BestDescendantScore.Decimal, d.BestDescendantScoreWeight.Decimal)
		}
		if d.HasRank() && d.ScoreWeight.Sign() > 0 && (fallback == nil ||
			d.Score.GreaterThan(fallback.Score) ||
			(d.Score.Equal(fallback.Score) && d.MeanRank.LessThan(fallback.MeanRank))) {
			fallback = d
		}
	}
	ec.DataTypes = call.SortDataTypes(dataTypes)

	if ec.ScoreWeight.Sign() == 0 {
		if fallback == nil {
			return nil, fmt.Errorf("%w: %s at %v", ErrNoRank, gene, c)
		}
		ec.Score = fallback.Score
		ec.ScoreWeight = fallback.ScoreWeight
		ec.MeanRank = fallback.MeanRank
	}

	switch {
	case len(own) == 0:
		ec.Propagation = call.Descendant
	case len(descendants) == 0:
		ec.Propagation = call.Self
	default:
		ec.Propagation = call.SelfAndDescendant
	}
	return ec, nil
}

// betterScore sets the best descendant score of ec to score with the
// given weight if it is higher than the current best.
func betterScore(ec *call.ExpressionCall, score, weight decimal.Decimal) {
	if ec.BestDescendantScore.Valid && !score.GreaterThan(ec.BestDescendantScore.Decimal) {
		return
	}
	ec.BestDescendantScore = decimal.NewNullDecimal(score)
	ec.BestDescendantScoreWeight = decimal.NewNullDecimal(weight)
}

// minNull returns the smallest valid value of cur and vals.
func minNull(cur decimal.NullDecimal, vals ...decimal.NullDecimal) decimal.NullDecimal {
	for _, v := range vals {
		if v.Valid && (!cur.Valid || v.Decimal.LessThan(cur.Decimal)) {
			cur = v
		}
	}
	return cur
}

// LoadAll returns the calls for gene at every condition of g that has raw
// data for the gene in data or is less precise than a condition that has.
// Calls are computed and returned with every condition following all its
// more precise conditions, each call being loaded with the calls of all
// its more precise conditions.
//
// Every condition in data must be a member of g.
func (l *Loader) LoadAll(gene string, g *condition.Graph, data map[condition.Condition]RawData) ([]*call.ExpressionCall, error) {
	for c, raw := range data {
		if !g.Contains(c) {
			return nil, fmt.Errorf("otf: %s: %w: %v", gene, condition.ErrNotMember, c)
		}
		for d, sources := range raw {
			if len(sources) == 0 {
				return nil, fmt.Errorf("otf: %s at %v: %w: %v", gene, c, ErrEmptyDataType, d)
			}
		}
	}

	loaded := make(map[condition.Condition]*call.ExpressionCall)
	var calls []*call.ExpressionCall
	for _, c := range g.BottomUp() {
		desc, err := g.Descendants(c, false)
		if err != nil {
			return nil, err
		}
		var below []*call.ExpressionCall
		for _, d := range desc {
			if dc, ok := loaded[d]; ok {
				below = append(below, dc)
			}
		}
		if len(below) == 0 && !hasCalls(gene, data[c]) {
			continue
		}
		ec, err := l.LoadCall(gene, c, data[c], below)
		if err != nil {
			return nil, err
		}
		loaded[c] = ec
		calls = append(calls, ec)
	}
	return calls, nil
}

// hasCalls returns whether data holds a retained raw call for gene.
func hasCalls(gene string, data RawData) bool {
	for _, sources := range data {
		for _, s := range sources {
			if s.Call.GeneID == gene && s.Call.Exclusion == call.NotExcluded {
				return true
			}
		}
	}
	return false
}
