// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package assemble joins the cluster tree, labels, and document metadata
// into the run's structured outputs. No clustering logic lives here; it is
// pure denormalization, and any count mismatch aborts the run instead of
// emitting partial output.
package assemble

import (
	"errors"
	"fmt"

	"github.com/pdiddy/stream-mapper/internal/cluster"
	"github.com/pdiddy/stream-mapper/pkg/types"
)

// ErrAssemblyInvariant is returned when assignments and corpus metadata
// disagree at output time. The output cannot be trusted, so the whole run
// aborts.
var ErrAssemblyInvariant = errors.New("assembly invariant violated")

// TopicRow is one cluster in a per-level topic table.
type TopicRow struct {
	Level      int      `json:"level" yaml:"level"`
	ID         int      `json:"id" yaml:"id"`
	Parent     int      `json:"parent" yaml:"parent"`
	Size       int      `json:"size" yaml:"size"`
	Label      string   `json:"label" yaml:"label"`
	TopTerms   []string `json:"top_terms" yaml:"top_terms"`
	Silhouette float64  `json:"silhouette,omitempty" yaml:"silhouette,omitempty"`
}

// LevelSummary reports the shape and quality of one hierarchy level.
type LevelSummary struct {
	Level      int     `json:"level" yaml:"level"`
	Clusters   int     `json:"clusters" yaml:"clusters"`
	Silhouette float64 `json:"silhouette" yaml:"silhouette"`
}

// Output is the terminal artifact of a clustering run: the per-document
// assignment table, the per-level topic tables, citation network
// statistics, and a run summary. Written once, never mutated.
type Output struct {
	Assignments []types.StreamAssignment `json:"assignments" yaml:"assignments"`
	Topics      [][]TopicRow             `json:"topics" yaml:"topics"`
	Citations   types.CitationStats      `json:"citations" yaml:"citations"`
	Docs        int                      `json:"docs" yaml:"docs"`
	Levels      []LevelSummary           `json:"levels" yaml:"levels"`
}

// Assemble flattens the labeled tree into the output tables. Every input
// document must land in exactly one node per level; rows preserve input
// order with no drops and no duplicates.
func Assemble(docs []types.Document, tree *cluster.Tree, stats types.CitationStats) (*Output, error) {
	n := len(docs)

	assignments := make([]types.StreamAssignment, n)
	for i, doc := range docs {
		assignments[i] = types.StreamAssignment{
			DocID:    doc.ID,
			Title:    doc.Title,
			Journal:  doc.Journal,
			Year:     doc.Year,
			Abstract: doc.Abstract,
			L3:       -1,
		}
	}

	out := &Output{
		Assignments: assignments,
		Citations:   stats,
		Docs:        n,
	}

	for li, level := range tree.Levels {
		levelNum := li + 1
		assigned := make([]bool, n)
		var rows []TopicRow

		// Ordinal of each node among its siblings, used for the L2 path.
		ordinal := make([]int, len(level))
		perParent := make(map[int]int)
		for i, node := range level {
			ordinal[i] = perParent[node.Parent]
			perParent[node.Parent]++
		}

		for i, node := range level {
			rows = append(rows, TopicRow{
				Level:      levelNum,
				ID:         node.ID,
				Parent:     node.Parent,
				Size:       node.Size(),
				Label:      node.Label,
				TopTerms:   node.TopTerms,
				Silhouette: node.Silhouette,
			})

			for _, m := range node.Members {
				if m < 0 || m >= n {
					return nil, fmt.Errorf("%w: level %d cluster %d references document index %d outside corpus of %d",
						ErrAssemblyInvariant, levelNum, node.ID, m, n)
				}
				if assigned[m] {
					return nil, fmt.Errorf("%w: document %s assigned twice at level %d",
						ErrAssemblyInvariant, docs[m].ID, levelNum)
				}
				assigned[m] = true

				switch levelNum {
				case 1:
					assignments[m].L1 = node.ID
					assignments[m].L1Label = node.Label
				case 2:
					assignments[m].L2 = node.ID
					assignments[m].L2Label = node.Label
					assignments[m].L2Path = fmt.Sprintf("%d.%d", assignments[m].L1, ordinal[i])
				case 3:
					assignments[m].L3 = node.ID
					assignments[m].L3Label = node.Label
				}
			}
		}

		for m, ok := range assigned {
			if !ok {
				return nil, fmt.Errorf("%w: document %s has no cluster at level %d",
					ErrAssemblyInvariant, docs[m].ID, levelNum)
			}
		}

		out.Topics = append(out.Topics, rows)
		score := 0.0
		if li < len(tree.LevelScores) {
			score = tree.LevelScores[li]
		}
		out.Levels = append(out.Levels, LevelSummary{
			Level:      levelNum,
			Clusters:   len(level),
			Silhouette: score,
		})
	}

	return out, nil
}
