// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// CouplingEdge is a bibliographic-coupling link between two documents,
// identified by their corpus indices with A < B. Strength is the shared
// reference overlap in (0, 1]; pairs with no shared reference are never
// materialized.
type CouplingEdge struct {
	A        int     `json:"a"`
	B        int     `json:"b"`
	Strength float64 `json:"strength"`
}

// CitationStats summarizes the citation network built for a run. When
// coverage falls below the configured minimum, HasCitations is false and
// the run proceeds in text-only mode; this is a documented degraded mode,
// not an error.
type CitationStats struct {
	HasCitations bool    `json:"has_citations" yaml:"has_citations"`
	DocsWithRefs int     `json:"docs_with_refs" yaml:"docs_with_refs"`
	RefCoverage  float64 `json:"ref_coverage" yaml:"ref_coverage"`
	TotalRefs    int     `json:"total_refs" yaml:"total_refs"`
	AvgRefs      float64 `json:"avg_refs" yaml:"avg_refs"`
	EdgeCount    int     `json:"edge_count" yaml:"edge_count"`
	AvgStrength  float64 `json:"avg_strength" yaml:"avg_strength"`
}

// ClusterNode is one partition unit of the stream hierarchy. Nodes are held
// in flat per-level slices; Parent is the index of the parent node in the
// previous level's slice (-1 for level 1). Members holds corpus indices.
// Sibling member sets are disjoint and union to the parent's member set.
type ClusterNode struct {
	ID       int      `json:"id" yaml:"id"`
	Level    int      `json:"level" yaml:"level"`
	Parent   int      `json:"parent" yaml:"parent"`
	Members  []int    `json:"-" yaml:"-"`
	Label    string   `json:"label" yaml:"label"`
	TopTerms []string `json:"top_terms" yaml:"top_terms"`

	// Silhouette is the quality score of this node's child partition.
	// Zero when the node was not subdivided.
	Silhouette float64 `json:"silhouette,omitempty" yaml:"silhouette,omitempty"`
}

// Size returns the number of member documents.
func (n ClusterNode) Size() int { return len(n.Members) }

// StreamAssignment is the per-document projection of the hierarchy: one row
// per input document carrying its cluster id and label at each level. L3
// fields are -1 / empty when the run depth is two.
type StreamAssignment struct {
	DocID    string `json:"doc_id" yaml:"doc_id"`
	Title    string `json:"title" yaml:"title"`
	Journal  string `json:"journal,omitempty" yaml:"journal,omitempty"`
	Year     int    `json:"year,omitempty" yaml:"year,omitempty"`
	Abstract string `json:"abstract,omitempty" yaml:"abstract,omitempty"`

	L1      int    `json:"l1" yaml:"l1"`
	L1Label string `json:"l1_label" yaml:"l1_label"`
	L2      int    `json:"l2" yaml:"l2"`
	L2Path  string `json:"l2_path" yaml:"l2_path"`
	L2Label string `json:"l2_label" yaml:"l2_label"`
	L3      int    `json:"l3" yaml:"l3"`
	L3Label string `json:"l3_label" yaml:"l3_label"`
}
