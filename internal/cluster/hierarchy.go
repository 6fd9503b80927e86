// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cluster

import (
	"fmt"
	"sync"

	"github.com/pdiddy/stream-mapper/internal/similarity"
	"github.com/pdiddy/stream-mapper/pkg/types"
)

// Tree is the stream hierarchy as flat per-level node slices. Node IDs are
// sequential within each level; Parent holds the index of the parent node
// in the previous level's slice. LevelScores holds the silhouette of each
// full-corpus level partition.
type Tree struct {
	Levels      [][]types.ClusterNode
	LevelScores []float64
}

// Depth returns the number of levels built.
func (t *Tree) Depth() int { return len(t.Levels) }

// BuildHierarchy partitions the whole corpus into L1 streams, then
// recursively subdivides each stream down to cfg.MaxDepth. A node at or
// below the minimum-size floor, or whose candidate set is degenerate, is
// carried down as a single passthrough child so every document keeps a
// valid assignment at every level; only a level-1 failure aborts the run.
// Sibling subdivisions run concurrently; once the parent partition is fixed
// they are fully independent, and children are merged in parent order so
// the tree is identical for any worker count.
func BuildHierarchy(dist *similarity.Matrix, cfg types.ClusterConfig) (*Tree, error) {
	if cfg.MinClusterSize <= 0 {
		cfg.MinClusterSize = 10
	}
	if cfg.MaxDepth < 2 {
		cfg.MaxDepth = 2
	}
	if cfg.MaxDepth > 3 {
		cfg.MaxDepth = 3
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.Linkage == "" {
		cfg.Linkage = types.LinkageAverage
	}

	n := dist.N()
	all := make([]int, n)
	for i := range all {
		all[i] = i
	}

	top, err := selectK(dist, all, cfg.Candidates(1), cfg.Linkage)
	if err != nil {
		return nil, fmt.Errorf("level 1 clustering: %w", err)
	}

	level1 := make([]types.ClusterNode, len(top.partition))
	for i, members := range top.partition {
		level1[i] = types.ClusterNode{ID: i, Level: 1, Parent: -1, Members: members}
	}

	tree := &Tree{
		Levels:      [][]types.ClusterNode{level1},
		LevelScores: []float64{top.score},
	}

	for level := 2; level <= cfg.MaxDepth; level++ {
		parents := tree.Levels[level-2]
		children := subdivideAll(dist, parents, level, cfg)

		var nodes []types.ClusterNode
		var partition [][]int
		for p := range parents {
			sub := children[p]
			parents[p].Silhouette = sub.score
			for _, members := range sub.partition {
				nodes = append(nodes, types.ClusterNode{
					ID:      len(nodes),
					Level:   level,
					Parent:  p,
					Members: members,
				})
				partition = append(partition, members)
			}
		}

		tree.Levels = append(tree.Levels, nodes)
		tree.LevelScores = append(tree.LevelScores, Silhouette(dist, partition))
	}

	return tree, nil
}

// subtree is the outcome of subdividing one parent node.
type subtree struct {
	partition [][]int
	score     float64
}

// subdivideAll splits every eligible parent concurrently under a bounded
// worker pool. Results land in a per-parent slot, so workers share no
// mutable state and the merge order is fixed by parent index.
func subdivideAll(dist *similarity.Matrix, parents []types.ClusterNode, level int, cfg types.ClusterConfig) []subtree {
	results := make([]subtree, len(parents))
	sem := make(chan struct{}, cfg.Workers)
	var wg sync.WaitGroup

	for p, parent := range parents {
		wg.Add(1)
		go func(p int, parent types.ClusterNode) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			results[p] = subdivide(dist, parent, level, cfg)
		}(p, parent)
	}
	wg.Wait()

	return results
}

// subdivide splits one parent's members, or passes them through as a single
// child when the parent is too small or its candidate set is degenerate.
// The parent keeps its current-level assignment either way.
func subdivide(dist *similarity.Matrix, parent types.ClusterNode, level int, cfg types.ClusterConfig) subtree {
	if parent.Size() <= cfg.MinClusterSize {
		return subtree{partition: [][]int{parent.Members}}
	}

	choice, err := selectK(dist, parent.Members, cfg.Candidates(level), cfg.Linkage)
	if err != nil {
		// A degenerate sub-cluster stops recursing; it keeps its
		// current-level assignment rather than aborting the run.
		return subtree{partition: [][]int{parent.Members}}
	}
	return subtree{partition: choice.partition, score: choice.score}
}
