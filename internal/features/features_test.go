package features

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/pdiddy/stream-mapper/pkg/types"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		minLen int
		want   []string
	}{
		{
			name:   "lowercase and split",
			text:   "Graph Neural Networks",
			minLen: 3,
			want:   []string{"graph", "neural", "networks"},
		},
		{
			name:   "punctuation boundaries",
			text:   "self-attention, transformers; encoders.",
			minLen: 3,
			want:   []string{"self", "attention", "transformers", "encoders"},
		},
		{
			name:   "stop terms dropped",
			text:   "the model is based on a corpus",
			minLen: 3,
			want:   []string{"model", "corpus"},
		},
		{
			name:   "short tokens and numbers dropped",
			text:   "k 12 ab clustering 2023",
			minLen: 3,
			want:   []string{"clustering"},
		},
		{
			name:   "empty text",
			text:   "",
			minLen: 3,
			want:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tokenize(tt.text, tt.minLen)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("tokenize(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestSelectVocabulary(t *testing.T) {
	docFreq := map[string]int{
		"clustering": 5,
		"citation":   3,
		"coupling":   3,
		"rare":       1,
	}

	vocab := selectVocabulary(docFreq, 2, 10)
	want := []string{"citation", "clustering", "coupling"}
	if !reflect.DeepEqual(vocab, want) {
		t.Errorf("vocabulary = %v, want %v", vocab, want)
	}

	// Cap keeps the highest-frequency terms before the lexical sort.
	capped := selectVocabulary(docFreq, 2, 1)
	if !reflect.DeepEqual(capped, []string{"clustering"}) {
		t.Errorf("capped vocabulary = %v, want [clustering]", capped)
	}

	// A floor that would empty the vocabulary relaxes to one.
	relaxed := selectVocabulary(map[string]int{"solo": 1}, 2, 10)
	if !reflect.DeepEqual(relaxed, []string{"solo"}) {
		t.Errorf("relaxed vocabulary = %v, want [solo]", relaxed)
	}
}

func testDocs() []types.Document {
	return []types.Document{
		{ID: "10.1/a", Title: "Graph clustering methods", Abstract: "hierarchical clustering of citation graphs"},
		{ID: "10.1/b", Title: "Citation graph analysis", Abstract: "clustering citation networks with graphs"},
		{ID: "10.1/c", Title: "Protein folding dynamics", Abstract: "molecular simulation of protein structures"},
		{ID: "10.1/d", Title: "Protein structures", Abstract: "predicting protein structures"},
		{ID: "10.1/e"}, // no text
	}
}

func TestBuildPreservesCorpusSize(t *testing.T) {
	model, err := Build(testDocs(), types.FeatureConfig{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	n, d := model.Dims()
	if n != 5 {
		t.Fatalf("rows = %d, want 5 (empty documents must not be dropped)", n)
	}
	if d < 1 || d > 5 {
		t.Errorf("reduced dims = %d, want within [1, 5]", d)
	}

	// The text-free document keeps a zero vector in both spaces. The
	// reduced row is checked with a tolerance since it passes through the
	// factorization.
	for j := 0; j < d; j++ {
		if math.Abs(model.Vectors.At(4, j)) > 1e-10 {
			t.Fatalf("vector row for empty document is nonzero at col %d", j)
		}
	}
	_, v := model.Weights.Dims()
	for j := 0; j < v; j++ {
		if model.Weights.At(4, j) != 0 {
			t.Fatalf("weight row for empty document is nonzero at col %d", j)
		}
	}
}

func TestBuildRowNormalization(t *testing.T) {
	model, err := Build(testDocs(), types.FeatureConfig{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	_, v := model.Weights.Dims()
	for i := 0; i < 4; i++ {
		norm := 0.0
		for j := 0; j < v; j++ {
			norm += model.Weights.At(i, j) * model.Weights.At(i, j)
		}
		if math.Abs(math.Sqrt(norm)-1) > 1e-9 {
			t.Errorf("row %d norm = %f, want 1", i, math.Sqrt(norm))
		}
	}
}

func TestBuildEmptyCorpus(t *testing.T) {
	docs := []types.Document{{ID: "x"}, {ID: "y"}}
	_, err := Build(docs, types.FeatureConfig{})
	if !errors.Is(err, ErrEmptyCorpus) {
		t.Fatalf("err = %v, want ErrEmptyCorpus", err)
	}
}

func TestBuildDeterministic(t *testing.T) {
	a, err := Build(testDocs(), types.FeatureConfig{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	b, err := Build(testDocs(), types.FeatureConfig{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if !reflect.DeepEqual(a.Vocabulary, b.Vocabulary) {
		t.Fatalf("vocabulary differs across runs")
	}
	n, d := a.Vectors.Dims()
	for i := 0; i < n; i++ {
		for j := 0; j < d; j++ {
			if a.Vectors.At(i, j) != b.Vectors.At(i, j) {
				t.Fatalf("vectors differ at (%d,%d)", i, j)
			}
		}
	}
}
