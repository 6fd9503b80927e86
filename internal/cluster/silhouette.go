// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cluster

import (
	"math"

	"github.com/pdiddy/stream-mapper/internal/similarity"
)

// Silhouette scores a partition on a distance matrix: per document,
// (b-a)/max(a,b) where a is the mean intra-cluster distance and b the mean
// distance to the nearest other cluster, averaged over all documents. The
// result lies in [-1, 1]. Pure function: identical inputs always yield the
// identical score. Singleton clusters contribute zero, the usual convention.
func Silhouette(dist *similarity.Matrix, clusters [][]int) float64 {
	if len(clusters) <= 1 {
		return 0
	}

	total := 0.0
	count := 0

	for ci, members := range clusters {
		for _, i := range members {
			count++
			if len(members) == 1 {
				continue
			}

			a := 0.0
			for _, j := range members {
				if j != i {
					a += dist.At(i, j)
				}
			}
			a /= float64(len(members) - 1)

			b := math.Inf(1)
			for cj, other := range clusters {
				if cj == ci || len(other) == 0 {
					continue
				}
				mean := 0.0
				for _, j := range other {
					mean += dist.At(i, j)
				}
				mean /= float64(len(other))
				if mean < b {
					b = mean
				}
			}

			if m := math.Max(a, b); m > 0 {
				total += (b - a) / m
			}
		}
	}

	if count == 0 {
		return 0
	}
	return total / float64(count)
}
