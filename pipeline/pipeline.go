// Copyright ©2021 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package pipeline computes ranked and clustered expression calls for
// batches of genes in parallel.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/kortschak/exprcall/call"
	"github.com/kortschak/exprcall/condition"
	"github.com/kortschak/exprcall/ontology"
	"github.com/kortschak/exprcall/otf"
)

// Gene is a gene of a species.
type Gene struct {
	ID        string
	SpeciesID int
}

// Source provides the ontologies and raw data of a species.
type Source interface {
	// Ontologies returns the anatomical entity and the
	// developmental stage ontologies for the species.
	Ontologies(ctx context.Context, species int) (anat, stage ontology.Ontology, err error)

	// Conditions returns the reduction of the species'
	// raw conditions to the conditions calls are made for.
	Conditions(ctx context.Context, species int) (map[otf.RawCondition]condition.Condition, error)

	// RawData returns the raw call sources for the gene.
	RawData(ctx context.Context, species int, gene string) ([]otf.RawDataContainer, error)
}

// Config holds the parameters of a Run.
type Config struct {
	// Workers is the maximum number of genes processed
	// concurrently. If zero, GOMAXPROCS is used.
	Workers int

	// Method and Threshold are the mean rank clustering
	// parameters. See call.ClusterByMeanRank.
	Method    call.ClusteringMethod
	Threshold float64

	// PropagateRank specifies whether calls are ordered using
	// the best rank of same gene calls at more precise
	// conditions.
	PropagateRank bool

	// TrustedDataTypes and ScoreScale are passed to
	// the call loader. See otf.Config.
	TrustedDataTypes []call.DataType
	ScoreScale       int32

	// Logger is used to report genes without data. If nil,
	// the log package's standard logger is used.
	Logger *log.Logger
}

// Result holds the calls computed for a gene.
type Result struct {
	Gene Gene

	// Calls holds the ranked calls for the gene
	// ordered by call.FilterAndOrderByRank.
	Calls []*call.ExpressionCall

	// Redundant holds the calls in Calls that are
	// made redundant by a more precise call.
	Redundant []*call.ExpressionCall

	// Clusters holds the mean rank cluster of each
	// call in Calls.
	Clusters map[*call.ExpressionCall]int
}

// scope is the condition universe of a species, shared read-only by
// all the species' genes.
type scope struct {
	reduce map[otf.RawCondition]condition.Condition
	graph  *condition.Graph
}

// Run computes the calls for each of the genes using the ontologies and
// raw data in src. A single condition graph is built for each species and
// shared by its genes. Results are returned in the order of genes. Run
// returns the first error encountered and abandons genes that have not
// been started.
func Run(ctx context.Context, cfg Config, src Source, genes []Gene) ([]Result, error) {
	_, err := call.ClusterByMeanRank(nil, cfg.Method, cfg.Threshold)
	if err != nil {
		return nil, err
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}

	scopes := make(map[int]*scope)
	for _, g := range genes {
		if _, ok := scopes[g.SpeciesID]; ok {
			continue
		}
		sc, err := newScope(ctx, src, g.SpeciesID)
		if err != nil {
			return nil, err
		}
		logger.Printf("species %d: %d conditions", g.SpeciesID, sc.graph.Len())
		scopes[g.SpeciesID] = sc
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	results := make([]Result, len(genes))
	grp, ctx := errgroup.WithContext(ctx)
	grp.SetLimit(workers)
	for i, g := range genes {
		i := i
		g := g
		grp.Go(func() error {
			err := ctx.Err()
			if err != nil {
				return err
			}
			results[i], err = process(ctx, cfg, logger, src, scopes[g.SpeciesID], g)
			return err
		})
	}
	err = grp.Wait()
	if err != nil {
		return nil, err
	}
	return results, nil
}

func newScope(ctx context.Context, src Source, species int) (*scope, error) {
	anat, stage, err := src.Ontologies(ctx, species)
	if err != nil {
		return nil, fmt.Errorf("pipeline: ontologies for species %d: %w", species, err)
	}
	reduce, err := src.Conditions(ctx, species)
	if err != nil {
		return nil, fmt.Errorf("pipeline: conditions for species %d: %w", species, err)
	}
	conds := make([]condition.Condition, 0, len(reduce))
	for _, c := range reduce {
		conds = append(conds, c)
	}
	g, err := condition.Build(conds, anat, stage)
	if err != nil {
		return nil, fmt.Errorf("pipeline: species %d: %w", species, err)
	}
	return &scope{reduce: reduce, graph: g}, nil
}

func process(ctx context.Context, cfg Config, logger *log.Logger, src Source, sc *scope, g Gene) (Result, error) {
	res := Result{Gene: g}
	containers, err := src.RawData(ctx, g.SpeciesID, g.ID)
	if err != nil {
		return res, fmt.Errorf("pipeline: raw data for %s: %w", g.ID, err)
	}
	data, err := otf.TransformToRawDataPerCondition(sc.reduce, containers)
	if err != nil {
		return res, fmt.Errorf("pipeline: %s: %w", g.ID, err)
	}
	l := otf.NewLoader(otf.Config{
		TrustedDataTypes: cfg.TrustedDataTypes,
		MaxRanks:         otf.MaxRanks(containers),
		ScoreScale:       cfg.ScoreScale,
	})
	calls, err := l.LoadAll(g.ID, sc.graph, data)
	if err != nil {
		return res, err
	}
	if len(calls) == 0 {
		logger.Printf("no expression data for %s in species %d", g.ID, g.SpeciesID)
		return res, nil
	}

	res.Calls, err = call.FilterAndOrderByRank(calls, sc.graph, cfg.PropagateRank)
	if err != nil {
		return res, err
	}
	res.Redundant, err = call.IdentifyRedundant(res.Calls, sc.graph)
	if err != nil {
		return res, err
	}
	res.Clusters, err = call.ClusterByMeanRank(res.Calls, cfg.Method, cfg.Threshold)
	return res, err
}
