// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package labels maps clusters back to human-readable term lists. Terms are
// ranked by their mean TF-IDF weight across cluster members, computed from
// the raw term space kept by the feature builder.
package labels

import (
	"sort"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/pdiddy/stream-mapper/pkg/types"
)

// Synthesizer derives top terms and short labels for cluster nodes.
type Synthesizer struct {
	weights *mat.Dense
	vocab   []string
	cfg     types.LabelConfig
}

// NewSynthesizer returns a Synthesizer over the corpus term weights.
func NewSynthesizer(weights *mat.Dense, vocab []string, cfg types.LabelConfig) *Synthesizer {
	if cfg.TopTerms <= 0 {
		cfg.TopTerms = 8
	}
	if cfg.LabelTerms <= 0 {
		cfg.LabelTerms = 3
	}
	return &Synthesizer{weights: weights, vocab: vocab, cfg: cfg}
}

// TopTerms returns the cluster's most distinguishing terms, most
// distinguishing first. Aggregation is a mean over members, so the result
// does not depend on member order; ties break toward the lexically smaller
// term.
func (s *Synthesizer) TopTerms(members []int) []string {
	if len(members) == 0 || len(s.vocab) == 0 {
		return nil
	}

	mean := make([]float64, len(s.vocab))
	for _, m := range members {
		row := s.weights.RawRowView(m)
		for t, w := range row {
			mean[t] += w
		}
	}
	for t := range mean {
		mean[t] /= float64(len(members))
	}

	order := make([]int, len(s.vocab))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool {
		a, b := order[i], order[j]
		if mean[a] != mean[b] {
			return mean[a] > mean[b]
		}
		return s.vocab[a] < s.vocab[b]
	})

	var terms []string
	for _, t := range order {
		if mean[t] <= 0 || len(terms) == s.cfg.TopTerms {
			break
		}
		terms = append(terms, s.vocab[t])
	}
	return terms
}

// Label joins the leading top terms into a short stream name.
func (s *Synthesizer) Label(terms []string) string {
	if len(terms) == 0 {
		return "(unlabeled)"
	}
	n := s.cfg.LabelTerms
	if n > len(terms) {
		n = len(terms)
	}
	return strings.Join(terms[:n], " / ")
}

// Apply fills in TopTerms and Label for every node of every level.
func (s *Synthesizer) Apply(levels [][]types.ClusterNode) {
	for _, level := range levels {
		for i := range level {
			terms := s.TopTerms(level[i].Members)
			level[i].TopTerms = terms
			level[i].Label = s.Label(terms)
		}
	}
}
