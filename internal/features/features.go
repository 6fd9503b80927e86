// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package features converts document text into the numeric vector space
// used for clustering: TF-IDF weighting over a bounded vocabulary, then a
// truncated singular-value projection into a latent semantic space.
package features

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/pdiddy/stream-mapper/pkg/types"
)

// ErrEmptyCorpus is returned when no document contributes any text. The
// whole run aborts in that case; there is nothing to cluster.
var ErrEmptyCorpus = errors.New("empty corpus: no document has usable text")

// Model holds the derived text features for one run. Vectors drive distance
// computation; Weights keeps the raw term space so the label synthesizer can
// map clusters back to terms.
type Model struct {
	// Vectors is the N x d reduced feature matrix, one row per document.
	// Documents without text have zero rows; N always equals the corpus size.
	Vectors *mat.Dense

	// Weights is the N x V row-normalized TF-IDF matrix.
	Weights *mat.Dense

	// Vocabulary maps column index to term, sorted lexically.
	Vocabulary []string
}

// Dims returns the corpus size and reduced dimensionality.
func (m *Model) Dims() (n, d int) {
	return m.Vectors.Dims()
}

// Build tokenizes the corpus, weights terms by TF-IDF, and projects the
// weight matrix to the configured latent dimensionality.
func Build(docs []types.Document, cfg types.FeatureConfig) (*Model, error) {
	if cfg.MaxVocabulary <= 0 {
		cfg.MaxVocabulary = 5000
	}
	if cfg.MinDocFreq <= 0 {
		cfg.MinDocFreq = 2
	}
	if cfg.LatentDims <= 0 {
		cfg.LatentDims = 100
	}
	if cfg.MinTokenLen <= 0 {
		cfg.MinTokenLen = 3
	}

	n := len(docs)
	tokenized := make([][]string, n)
	docFreq := make(map[string]int)
	withText := 0

	for i, doc := range docs {
		tokens := tokenize(doc.Text(), cfg.MinTokenLen)
		tokenized[i] = tokens
		if len(tokens) > 0 {
			withText++
		}
		seen := make(map[string]bool, len(tokens))
		for _, tok := range tokens {
			if !seen[tok] {
				seen[tok] = true
				docFreq[tok]++
			}
		}
	}

	if withText == 0 {
		return nil, fmt.Errorf("feature builder: %w", ErrEmptyCorpus)
	}

	vocab := selectVocabulary(docFreq, cfg.MinDocFreq, cfg.MaxVocabulary)
	termCol := make(map[string]int, len(vocab))
	for i, term := range vocab {
		termCol[term] = i
	}

	weights := buildTFIDF(tokenized, vocab, termCol, docFreq)
	vectors := project(weights, cfg.LatentDims)

	return &Model{Vectors: vectors, Weights: weights, Vocabulary: vocab}, nil
}

// selectVocabulary keeps terms meeting the document-frequency floor, capped
// at maxVocab by highest frequency. The returned slice is sorted lexically
// so column order is stable across runs. If the floor would empty the
// vocabulary (tiny corpora), it is relaxed to one.
func selectVocabulary(docFreq map[string]int, minDF, maxVocab int) []string {
	var terms []string
	for term, df := range docFreq {
		if df >= minDF {
			terms = append(terms, term)
		}
	}
	if len(terms) == 0 {
		for term := range docFreq {
			terms = append(terms, term)
		}
	}

	sort.Slice(terms, func(i, j int) bool {
		if docFreq[terms[i]] != docFreq[terms[j]] {
			return docFreq[terms[i]] > docFreq[terms[j]]
		}
		return terms[i] < terms[j]
	})
	if len(terms) > maxVocab {
		terms = terms[:maxVocab]
	}

	sort.Strings(terms)
	return terms
}

// buildTFIDF produces the row-normalized N x V weight matrix. TF is the
// in-document term share; IDF is log(1 + N/(1+df)).
func buildTFIDF(tokenized [][]string, vocab []string, termCol map[string]int, docFreq map[string]int) *mat.Dense {
	n := len(tokenized)
	v := len(vocab)

	idf := make([]float64, v)
	for i, term := range vocab {
		idf[i] = math.Log(1 + float64(n)/float64(1+docFreq[term]))
	}

	w := mat.NewDense(n, v, nil)
	for i, tokens := range tokenized {
		if len(tokens) == 0 {
			continue
		}
		counts := make(map[int]int)
		for _, tok := range tokens {
			if col, ok := termCol[tok]; ok {
				counts[col]++
			}
		}

		norm := 0.0
		for col, count := range counts {
			val := float64(count) / float64(len(tokens)) * idf[col]
			w.Set(i, col, val)
			norm += val * val
		}
		if norm > 0 {
			norm = math.Sqrt(norm)
			for col := range counts {
				w.Set(i, col, w.At(i, col)/norm)
			}
		}
	}
	return w
}

// project reduces the weight matrix to at most dims columns via thin SVD,
// scaling the left singular vectors by their singular values so distances
// in the reduced space track the original term space.
func project(weights *mat.Dense, dims int) *mat.Dense {
	n, v := weights.Dims()
	if dims > n {
		dims = n
	}
	if dims > v {
		dims = v
	}

	var svd mat.SVD
	if ok := svd.Factorize(weights, mat.SVDThin); !ok {
		// Factorization only fails to converge on pathological input;
		// fall back to the raw term space rather than abort the run.
		out := mat.NewDense(n, v, nil)
		out.Copy(weights)
		return out
	}

	var u mat.Dense
	svd.UTo(&u)
	values := svd.Values(nil)

	out := mat.NewDense(n, dims, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < dims; j++ {
			out.Set(i, j, u.At(i, j)*values[j])
		}
	}
	return out
}
