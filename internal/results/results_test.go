package results

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/stream-mapper/internal/assemble"
	"github.com/pdiddy/stream-mapper/pkg/types"
)

func testOutput() *assemble.Output {
	return &assemble.Output{
		Assignments: []types.StreamAssignment{
			{DocID: "10.1/a", Title: "Alpha", Journal: "J1", Year: 2021,
				L1: 0, L1Label: "graphs", L2: 0, L2Path: "0.0", L2Label: "graphs", L3: -1},
			{DocID: "10.1/b", Title: "Beta", Journal: "J2", Year: 2022,
				L1: 1, L1Label: "proteins", L2: 1, L2Path: "1.0", L2Label: "proteins", L3: -1},
		},
		Topics: [][]assemble.TopicRow{
			{
				{Level: 1, ID: 0, Parent: -1, Size: 1, Label: "graphs", TopTerms: []string{"graphs", "clustering"}},
				{Level: 1, ID: 1, Parent: -1, Size: 1, Label: "proteins", TopTerms: []string{"proteins"}},
			},
			{
				{Level: 2, ID: 0, Parent: 0, Size: 1, Label: "graphs"},
				{Level: 2, ID: 1, Parent: 1, Size: 1, Label: "proteins"},
			},
		},
		Citations: types.CitationStats{HasCitations: true, DocsWithRefs: 2, EdgeCount: 1, AvgStrength: 0.5},
		Docs:      2,
		Levels: []assemble.LevelSummary{
			{Level: 1, Clusters: 2, Silhouette: 0.4},
			{Level: 2, Clusters: 2, Silhouette: 0.4},
		},
	}
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(types.OutputConfig{ResultsDir: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, testOutput()))

	assignments, err := store.LoadAssignments(ctx)
	require.NoError(t, err)
	require.Len(t, assignments, 2)
	assert.Equal(t, "10.1/a", assignments[0].DocID)
	assert.Equal(t, "graphs", assignments[0].L1Label)
	assert.Equal(t, "0.0", assignments[0].L2Path)
	assert.Equal(t, -1, assignments[0].L3)

	topics, err := store.LoadTopics(ctx, 1)
	require.NoError(t, err)
	require.Len(t, topics, 2)
	assert.Equal(t, []string{"graphs", "clustering"}, topics[0].TopTerms)
	assert.Equal(t, -1, topics[0].Parent)
}

func TestLoadFullOutput(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	saved := testOutput()
	require.NoError(t, store.Save(ctx, saved))

	out, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, saved.Docs, out.Docs)
	assert.Equal(t, saved.Levels, out.Levels)
	assert.Equal(t, saved.Citations, out.Citations)
	require.Len(t, out.Topics, 2)
	assert.Equal(t, saved.Topics[0][0].Label, out.Topics[0][0].Label)
}

func TestLoadWithoutRun(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Load(context.Background())
	require.Error(t, err)
}

func TestSaveReplacesPreviousRun(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, testOutput()))

	second := testOutput()
	second.Assignments = second.Assignments[:1]
	second.Docs = 1
	require.NoError(t, store.Save(ctx, second))

	assignments, err := store.LoadAssignments(ctx)
	require.NoError(t, err)
	assert.Len(t, assignments, 1)
}

func TestExportFiles(t *testing.T) {
	dir := t.TempDir()
	out := testOutput()

	require.NoError(t, ExportYAML(dir, out))
	require.NoError(t, ExportJSON(dir, out))
	require.NoError(t, ExportCSV(dir, out))

	for _, name := range []string{"export.yaml", "export.json", "assignments.csv", "topics_l1.csv", "topics_l2.csv"} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, name)
	}

	f, err := os.Open(filepath.Join(dir, "assignments.csv"))
	require.NoError(t, err)
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3) // header + 2 rows
	assert.Equal(t, "doc_id", records[0][0])
	assert.Equal(t, "10.1/a", records[1][0])
	// Two-level run: no L3 columns.
	assert.Len(t, records[0], 10)
}

func depthThreeOutput() *assemble.Output {
	out := testOutput()
	out.Assignments[0].L3 = 0
	out.Assignments[0].L3Label = "graph partitioning"
	out.Assignments[1].L3 = 1
	out.Assignments[1].L3Label = "protein folding"
	out.Topics = append(out.Topics, []assemble.TopicRow{
		{Level: 3, ID: 0, Parent: 0, Size: 1, Label: "graph partitioning"},
		{Level: 3, ID: 1, Parent: 1, Size: 1, Label: "protein folding"},
	})
	out.Levels = append(out.Levels, assemble.LevelSummary{Level: 3, Clusters: 2, Silhouette: 0.2})
	return out
}

func TestExportDepthThree(t *testing.T) {
	dir := t.TempDir()
	out := depthThreeOutput()

	require.NoError(t, ExportJSON(dir, out))
	require.NoError(t, ExportYAML(dir, out))
	require.NoError(t, ExportCSV(dir, out))

	// Cluster id 0 is a valid L3 assignment and must survive
	// serialization as an explicit key.
	data, err := os.ReadFile(filepath.Join(dir, "export.json"))
	require.NoError(t, err)
	var decoded struct {
		Assignments []map[string]any `json:"assignments"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded.Assignments, 2)
	l3, ok := decoded.Assignments[0]["l3"]
	require.True(t, ok, "l3 key missing from exported assignment")
	assert.Equal(t, float64(0), l3)
	assert.Equal(t, "graph partitioning", decoded.Assignments[0]["l3_label"])

	yamlData, err := os.ReadFile(filepath.Join(dir, "export.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(yamlData), "l3: 0")

	f, err := os.Open(filepath.Join(dir, "assignments.csv"))
	require.NoError(t, err)
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	require.Len(t, records[0], 12)
	assert.Equal(t, "l3", records[0][10])
	assert.Equal(t, "l3_label", records[0][11])
	assert.Equal(t, "0", records[1][10])
	assert.Equal(t, "1", records[2][10])

	_, err = os.Stat(filepath.Join(dir, "topics_l3.csv"))
	assert.NoError(t, err)
}

func TestSaveAndLoadDepthThree(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, depthThreeOutput()))

	assignments, err := store.LoadAssignments(ctx)
	require.NoError(t, err)
	require.Len(t, assignments, 2)
	assert.Equal(t, 0, assignments[0].L3)
	assert.Equal(t, "graph partitioning", assignments[0].L3Label)

	topics, err := store.LoadTopics(ctx, 3)
	require.NoError(t, err)
	require.Len(t, topics, 2)
}

func TestExportDeterministic(t *testing.T) {
	dirA := t.TempDir()
	dirB := t.TempDir()

	require.NoError(t, ExportYAML(dirA, testOutput()))
	require.NoError(t, ExportYAML(dirB, testOutput()))

	a, err := os.ReadFile(filepath.Join(dirA, "export.yaml"))
	require.NoError(t, err)
	b, err := os.ReadFile(filepath.Join(dirB, "export.yaml"))
	require.NoError(t, err)
	assert.Equal(t, a, b)
}
