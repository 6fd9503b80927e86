// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline runs the full clustering job: features, citation
// network, blended distances, hierarchy, labels, assembly. One batch run
// per invocation; no state survives between runs.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/pdiddy/stream-mapper/internal/assemble"
	"github.com/pdiddy/stream-mapper/internal/citations"
	"github.com/pdiddy/stream-mapper/internal/cluster"
	"github.com/pdiddy/stream-mapper/internal/features"
	"github.com/pdiddy/stream-mapper/internal/labels"
	"github.com/pdiddy/stream-mapper/internal/similarity"
	"github.com/pdiddy/stream-mapper/pkg/types"
)

// Pipeline executes clustering runs under a fixed configuration.
type Pipeline struct {
	cfg types.PipelineConfig
	log zerolog.Logger
}

// New returns a Pipeline with the given configuration and logger.
func New(cfg types.PipelineConfig, log zerolog.Logger) *Pipeline {
	return &Pipeline{cfg: cfg, log: log}
}

// Run clusters the corpus and returns the assembled output. Cancellation is
// coarse-grained: the context is checked between stages, and aborting
// abandons all in-flight work.
func (p *Pipeline) Run(ctx context.Context, docs []types.Document) (*assemble.Output, error) {
	start := time.Now()
	p.log.Info().
		Int("docs", len(docs)).
		Int64("seed", p.cfg.Cluster.Seed).
		Msg("starting clustering run")

	model, err := features.Build(docs, p.cfg.Features)
	if err != nil {
		return nil, fmt.Errorf("feature builder: %w", err)
	}
	n, d := model.Dims()
	p.log.Info().
		Int("docs", n).
		Int("vocabulary", len(model.Vocabulary)).
		Int("dims", d).
		Msg("features built")

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	net := citations.Build(docs, p.cfg.Citation)
	p.log.Info().
		Bool("has_citations", net.Stats.HasCitations).
		Int("docs_with_refs", net.Stats.DocsWithRefs).
		Int("edges", net.Stats.EdgeCount).
		Float64("avg_strength", net.Stats.AvgStrength).
		Msg("citation network built")

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mode, blendCfg := similarity.SelectMode(net, p.cfg.Blend)
	p.log.Info().
		Stringer("mode", mode).
		Float64("text_weight", blendCfg.TextWeight).
		Float64("citation_weight", blendCfg.CitationWeight).
		Msg("similarity mode selected")

	dist := similarity.Build(model.Vectors, net, mode, blendCfg)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tree, err := cluster.BuildHierarchy(dist, p.cfg.Cluster)
	if err != nil {
		return nil, fmt.Errorf("hierarchical clusterer: %w", err)
	}
	for li, level := range tree.Levels {
		p.log.Info().
			Int("level", li+1).
			Int("clusters", len(level)).
			Float64("silhouette", tree.LevelScores[li]).
			Msg("level clustered")
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	labels.NewSynthesizer(model.Weights, model.Vocabulary, p.cfg.Labels).Apply(tree.Levels)

	out, err := assemble.Assemble(docs, tree, net.Stats)
	if err != nil {
		return nil, fmt.Errorf("result assembler: %w", err)
	}

	p.log.Info().
		Dur("elapsed", time.Since(start)).
		Int("docs", out.Docs).
		Int("l1_clusters", out.Levels[0].Clusters).
		Msg("clustering run complete")

	return out, nil
}
