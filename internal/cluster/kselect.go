// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cluster

import (
	"errors"
	"fmt"
	"sort"

	"github.com/pdiddy/stream-mapper/internal/similarity"
	"github.com/pdiddy/stream-mapper/pkg/types"
)

// ErrDegenerateInput is returned when, after deduplication and bounds
// checking, no candidate k is valid for the partition being clustered.
var ErrDegenerateInput = errors.New("degenerate input: no valid k candidates")

// kChoice is one evaluated (k, partition, score) triple.
type kChoice struct {
	k         int
	partition [][]int
	score     float64
}

// selectK clusters the members once per valid candidate k, scores each
// partition, and returns the best-scoring choice. The candidate set is
// deduplicated and bounded to [2, len(members)-1]; candidates are evaluated
// in ascending order and only a strictly higher score replaces the current
// best, so ties resolve toward the smaller k.
func selectK(dist *similarity.Matrix, members []int, candidates []int, linkage types.Linkage) (kChoice, error) {
	valid := validCandidates(candidates, len(members))
	if len(valid) == 0 {
		return kChoice{}, fmt.Errorf("%w for partition of %d documents", ErrDegenerateInput, len(members))
	}

	best := kChoice{score: -2}
	for _, k := range valid {
		partition := agglomerate(dist, members, k, linkage)
		score := Silhouette(dist, partition)
		if score > best.score {
			best = kChoice{k: k, partition: partition, score: score}
		}
	}
	return best, nil
}

// validCandidates deduplicates and sorts the candidate set, keeping values
// in [2, size-1].
func validCandidates(candidates []int, size int) []int {
	seen := make(map[int]bool, len(candidates))
	var valid []int
	for _, k := range candidates {
		if k < 2 || k > size-1 || seen[k] {
			continue
		}
		seen[k] = true
		valid = append(valid, k)
	}
	sort.Ints(valid)
	return valid
}
