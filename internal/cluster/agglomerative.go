// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package cluster partitions the corpus into the nested stream hierarchy:
// agglomerative clustering on the fused distance matrix at each level,
// silhouette-scored k selection over a small candidate set, and recursive
// subdivision down to the configured depth.
package cluster

import (
	"math"
	"sort"

	"github.com/pdiddy/stream-mapper/internal/similarity"
	"github.com/pdiddy/stream-mapper/pkg/types"
)

// agglomerate merges the given members (corpus indices) from singletons up
// to k clusters using the configured linkage. Cluster-to-cluster distances
// are held in a working matrix and updated incrementally on each merge
// (Lance-Williams), which is exact for both linkages, rather than rescanned
// over member pairs. Ties always merge the first minimal pair in scan
// order, so the partition is deterministic. Returned clusters are ordered
// by size (largest first, ties by smallest member) and each cluster's
// members are sorted ascending.
func agglomerate(dist *similarity.Matrix, members []int, k int, linkage types.Linkage) [][]int {
	clusters := make([][]int, len(members))
	for i, m := range members {
		clusters[i] = []int{m}
	}

	pair := make([][]float64, len(members))
	for i := range pair {
		pair[i] = make([]float64, len(members))
		for j := range pair[i] {
			pair[i][j] = dist.At(members[i], members[j])
		}
	}

	for len(clusters) > k {
		minDist := math.Inf(1)
		mergeA, mergeB := -1, -1

		for i := 0; i < len(clusters); i++ {
			for j := i + 1; j < len(clusters); j++ {
				if pair[i][j] < minDist {
					minDist = pair[i][j]
					mergeA, mergeB = i, j
				}
			}
		}
		if mergeA < 0 {
			break
		}

		// Distances from the merged cluster to the rest: size-weighted
		// mean for average linkage, max for complete.
		sa := float64(len(clusters[mergeA]))
		sb := float64(len(clusters[mergeB]))
		for x := range clusters {
			if x == mergeA || x == mergeB {
				continue
			}
			var d float64
			if linkage == types.LinkageComplete {
				d = math.Max(pair[mergeA][x], pair[mergeB][x])
			} else {
				d = (sa*pair[mergeA][x] + sb*pair[mergeB][x]) / (sa + sb)
			}
			pair[mergeA][x] = d
			pair[x][mergeA] = d
		}

		clusters[mergeA] = append(clusters[mergeA], clusters[mergeB]...)
		clusters = append(clusters[:mergeB], clusters[mergeB+1:]...)
		pair = append(pair[:mergeB], pair[mergeB+1:]...)
		for x := range pair {
			pair[x] = append(pair[x][:mergeB], pair[x][mergeB+1:]...)
		}
	}

	for _, c := range clusters {
		sort.Ints(c)
	}
	sort.Slice(clusters, func(i, j int) bool {
		if len(clusters[i]) != len(clusters[j]) {
			return len(clusters[i]) > len(clusters[j])
		}
		return clusters[i][0] < clusters[j][0]
	})
	return clusters
}
