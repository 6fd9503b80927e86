// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package citations builds the bibliographic-coupling network: for every
// document pair sharing at least one reference, an edge whose strength is
// the reference intersection normalized by the geometric mean of the two
// reference-set sizes.
package citations

import (
	"math"
	"sync"

	"github.com/pdiddy/stream-mapper/pkg/types"
)

// Network is the citation signal for one run. When coverage is below the
// configured minimum, HasCitations is false and Edges is empty; downstream
// stages then run text-only. Degraded availability is a mode, not an error.
type Network struct {
	Edges []types.CouplingEdge
	Stats types.CitationStats
}

// Build computes pairwise coupling strengths across the corpus. Pair ranges
// are partitioned across a bounded worker pool; each worker emits an
// independent edge fragment and fragments are merged in row order, so the
// edge list is deterministic regardless of worker count.
func Build(docs []types.Document, cfg types.CitationConfig) *Network {
	if cfg.MinCoverage <= 0 {
		cfg.MinCoverage = 0.05
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}

	n := len(docs)
	refSets := make([]map[string]bool, n)
	withRefs := 0
	totalRefs := 0

	for i, doc := range docs {
		if len(doc.References) == 0 {
			continue
		}
		set := make(map[string]bool, len(doc.References))
		for _, ref := range doc.References {
			set[ref] = true
		}
		refSets[i] = set
		withRefs++
		totalRefs += len(doc.References)
	}

	stats := types.CitationStats{
		DocsWithRefs: withRefs,
		TotalRefs:    totalRefs,
	}
	if n > 0 {
		stats.RefCoverage = float64(withRefs) / float64(n)
	}
	if withRefs > 0 {
		stats.AvgRefs = float64(totalRefs) / float64(withRefs)
	}

	if stats.RefCoverage < cfg.MinCoverage {
		return &Network{Stats: stats}
	}

	edges := coupleAll(refSets, cfg.Workers)

	stats.HasCitations = true
	stats.EdgeCount = len(edges)
	if len(edges) > 0 {
		sum := 0.0
		for _, e := range edges {
			sum += e.Strength
		}
		stats.AvgStrength = sum / float64(len(edges))
	}

	return &Network{Edges: edges, Stats: stats}
}

// coupleAll fans the upper-triangle pair computation out over row chunks.
func coupleAll(refSets []map[string]bool, workers int) []types.CouplingEdge {
	n := len(refSets)
	if workers > n {
		workers = n
	}
	if workers < 1 {
		workers = 1
	}

	fragments := make([][]types.CouplingEdge, workers)
	var wg sync.WaitGroup

	chunk := (n + workers - 1) / workers
	for w := 0; w < workers; w++ {
		lo := w * chunk
		hi := lo + chunk
		if hi > n {
			hi = n
		}
		if lo >= hi {
			continue
		}

		wg.Add(1)
		go func(w, lo, hi int) {
			defer wg.Done()
			var frag []types.CouplingEdge
			for i := lo; i < hi; i++ {
				if refSets[i] == nil {
					continue
				}
				for j := i + 1; j < n; j++ {
					if refSets[j] == nil {
						continue
					}
					if s := couple(refSets[i], refSets[j]); s > 0 {
						frag = append(frag, types.CouplingEdge{A: i, B: j, Strength: s})
					}
				}
			}
			fragments[w] = frag
		}(w, lo, hi)
	}
	wg.Wait()

	var edges []types.CouplingEdge
	for _, frag := range fragments {
		edges = append(edges, frag...)
	}
	return edges
}

// couple returns |a ∩ b| / sqrt(|a| * |b|), clamped into [0, 1].
func couple(a, b map[string]bool) float64 {
	if len(a) > len(b) {
		a, b = b, a
	}
	shared := 0
	for ref := range a {
		if b[ref] {
			shared++
		}
	}
	if shared == 0 {
		return 0
	}

	strength := float64(shared) / math.Sqrt(float64(len(a))*float64(len(b)))
	if strength > 1 {
		strength = 1
	}
	return strength
}
