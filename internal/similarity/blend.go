// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package similarity fuses text-feature distance and citation-coupling
// distance into the single matrix the clusterer consumes. The operating
// mode (fused vs. text-only) is fixed once at the start of a run instead of
// re-checking citation availability through every downstream stage.
package similarity

import (
	"math"
	"sync"

	"gonum.org/v1/gonum/mat"

	"github.com/pdiddy/stream-mapper/internal/citations"
	"github.com/pdiddy/stream-mapper/pkg/types"
)

// Mode selects how distances are blended for a run.
type Mode int

const (
	// ModeTextOnly uses cosine text distance alone. Selected explicitly by
	// a zero citation weight, or forced when the citation network is
	// unavailable.
	ModeTextOnly Mode = iota

	// ModeFused blends text and citation distance by the configured weights.
	ModeFused
)

// String returns the mode name for logs.
func (m Mode) String() string {
	if m == ModeFused {
		return "fused"
	}
	return "text-only"
}

// SelectMode picks the run mode and returns the effective weights. When the
// network is missing or degraded, the citation weight is forced to zero and
// the text weight to one, so the result is bit-for-bit identical to an
// explicit text-only run.
func SelectMode(net *citations.Network, cfg types.BlendConfig) (Mode, types.BlendConfig) {
	if net == nil || !net.Stats.HasCitations || cfg.CitationWeight == 0 {
		cfg.TextWeight = 1
		cfg.CitationWeight = 0
		return ModeTextOnly, cfg
	}
	return ModeFused, cfg
}

// Build computes the fused distance matrix. Rows are partitioned across a
// bounded worker pool; each worker fills complete rows, so no cell is
// written by two goroutines and the output is identical for any pool size.
func Build(vectors *mat.Dense, net *citations.Network, mode Mode, cfg types.BlendConfig) *Matrix {
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}

	n, _ := vectors.Dims()
	out := NewMatrix(n)

	var coupling map[int]float64
	if mode == ModeFused {
		coupling = make(map[int]float64, 2*len(net.Edges))
		for _, e := range net.Edges {
			coupling[e.A*n+e.B] = e.Strength
			coupling[e.B*n+e.A] = e.Strength
		}
	}

	workers := cfg.Workers
	if workers > n {
		workers = n
	}
	if workers < 1 {
		workers = 1
	}
	chunk := (n + workers - 1) / workers

	var wg sync.WaitGroup
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
		go func(lo, hi int) {
			defer wg.Done()
			for i := lo; i < hi; i++ {
				vi := vectors.RawRowView(i)
				for j := 0; j < n; j++ {
					if i == j {
						continue
					}
					d := cfg.TextWeight * cosineDistance(vi, vectors.RawRowView(j))
					if mode == ModeFused {
						cd := 1.0
						if s, ok := coupling[i*n+j]; ok {
							cd = 1 - s
						}
						d += cfg.CitationWeight * cd
					}
					out.setRow(i, j, clamp01(d))
				}
			}
		}(lo, hi)
	}
	wg.Wait()

	return out
}

// cosineDistance returns 1 - cosine similarity. A zero vector is maximally
// distant from everything, so text-free documents land wherever the merge
// order puts them instead of being dropped.
func cosineDistance(a, b []float64) float64 {
	dot, na, nb := 0.0, 0.0, 0.0
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 1
	}
	return 1 - dot/(math.Sqrt(na)*math.Sqrt(nb))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
