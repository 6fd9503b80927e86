package assemble

import (
	"errors"
	"testing"

	"github.com/pdiddy/stream-mapper/internal/cluster"
	"github.com/pdiddy/stream-mapper/pkg/types"
)

func testDocs() []types.Document {
	return []types.Document{
		{ID: "10.1/a", Title: "A", Journal: "J1", Year: 2021},
		{ID: "10.1/b", Title: "B", Journal: "J1", Year: 2022},
		{ID: "10.1/c", Title: "C", Journal: "J2", Year: 2023},
		{ID: "10.1/d", Title: "D", Journal: "J2", Year: 2023},
	}
}

func testTree() *cluster.Tree {
	return &cluster.Tree{
		Levels: [][]types.ClusterNode{
			{
				{ID: 0, Level: 1, Parent: -1, Members: []int{0, 1}, Label: "alpha", TopTerms: []string{"alpha"}},
				{ID: 1, Level: 1, Parent: -1, Members: []int{2, 3}, Label: "beta", TopTerms: []string{"beta"}},
			},
			{
				{ID: 0, Level: 2, Parent: 0, Members: []int{0}, Label: "alpha-1"},
				{ID: 1, Level: 2, Parent: 0, Members: []int{1}, Label: "alpha-2"},
				{ID: 2, Level: 2, Parent: 1, Members: []int{2, 3}, Label: "beta-1"},
			},
		},
		LevelScores: []float64{0.5, 0.25},
	}
}

func TestAssemble(t *testing.T) {
	out, err := Assemble(testDocs(), testTree(), types.CitationStats{HasCitations: true, EdgeCount: 2})
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}

	if out.Docs != 4 || len(out.Assignments) != 4 {
		t.Fatalf("assignment rows = %d, want 4", len(out.Assignments))
	}

	a := out.Assignments[1]
	if a.DocID != "10.1/b" || a.L1 != 0 || a.L1Label != "alpha" {
		t.Errorf("row 1 L1 assignment = %+v", a)
	}
	if a.L2 != 1 || a.L2Label != "alpha-2" || a.L2Path != "0.1" {
		t.Errorf("row 1 L2 assignment = %+v", a)
	}
	if a.L3 != -1 {
		t.Errorf("row 1 L3 = %d, want -1 for a two-level run", a.L3)
	}

	if len(out.Topics) != 2 || len(out.Topics[0]) != 2 || len(out.Topics[1]) != 3 {
		t.Fatalf("topic tables shape = %v", out.Topics)
	}
	if out.Topics[1][2].Parent != 1 || out.Topics[1][2].Size != 2 {
		t.Errorf("beta-1 topic row = %+v", out.Topics[1][2])
	}

	if len(out.Levels) != 2 || out.Levels[0].Silhouette != 0.5 || out.Levels[1].Clusters != 3 {
		t.Errorf("level summaries = %+v", out.Levels)
	}
	if !out.Citations.HasCitations {
		t.Error("citation stats not carried through")
	}
}

func TestAssembleDepthThree(t *testing.T) {
	tree := testTree()
	tree.Levels = append(tree.Levels, []types.ClusterNode{
		{ID: 0, Level: 3, Parent: 0, Members: []int{0}, Label: "alpha-1a"},
		{ID: 1, Level: 3, Parent: 1, Members: []int{1}, Label: "alpha-2a"},
		{ID: 2, Level: 3, Parent: 2, Members: []int{2}, Label: "beta-1a"},
		{ID: 3, Level: 3, Parent: 2, Members: []int{3}, Label: "beta-1b"},
	})
	tree.LevelScores = append(tree.LevelScores, 0.1)

	out, err := Assemble(testDocs(), tree, types.CitationStats{})
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}

	if len(out.Topics) != 3 || len(out.Levels) != 3 {
		t.Fatalf("levels = %d topic tables, %d summaries, want 3 each", len(out.Topics), len(out.Levels))
	}
	for _, a := range out.Assignments {
		if a.L3 < 0 {
			t.Errorf("doc %s L3 = %d, want assigned id at depth 3", a.DocID, a.L3)
		}
		if a.L3Label == "" {
			t.Errorf("doc %s has empty L3 label", a.DocID)
		}
	}
	if a := out.Assignments[0]; a.L3 != 0 || a.L3Label != "alpha-1a" {
		t.Errorf("row 0 L3 assignment = %+v", a)
	}
	if a := out.Assignments[3]; a.L3 != 3 || a.L3Label != "beta-1b" {
		t.Errorf("row 3 L3 assignment = %+v", a)
	}
}

func TestAssembleMissingDocument(t *testing.T) {
	tree := testTree()
	// Drop document 3 from its L2 node.
	tree.Levels[1][2].Members = []int{2}

	_, err := Assemble(testDocs(), tree, types.CitationStats{})
	if !errors.Is(err, ErrAssemblyInvariant) {
		t.Fatalf("err = %v, want ErrAssemblyInvariant", err)
	}
}

func TestAssembleDuplicateAssignment(t *testing.T) {
	tree := testTree()
	tree.Levels[0][1].Members = []int{1, 2, 3}

	_, err := Assemble(testDocs(), tree, types.CitationStats{})
	if !errors.Is(err, ErrAssemblyInvariant) {
		t.Fatalf("err = %v, want ErrAssemblyInvariant", err)
	}
}

func TestAssembleOutOfRangeIndex(t *testing.T) {
	tree := testTree()
	tree.Levels[0][1].Members = []int{2, 9}

	_, err := Assemble(testDocs(), tree, types.CitationStats{})
	if !errors.Is(err, ErrAssemblyInvariant) {
		t.Fatalf("err = %v, want ErrAssemblyInvariant", err)
	}
}
