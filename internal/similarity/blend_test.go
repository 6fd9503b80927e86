package similarity

import (
	"reflect"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/pdiddy/stream-mapper/internal/citations"
	"github.com/pdiddy/stream-mapper/pkg/types"
)

func testVectors() *mat.Dense {
	return mat.NewDense(4, 3, []float64{
		1, 0, 0,
		0.9, 0.1, 0,
		0, 1, 0,
		0, 0, 0, // text-free document
	})
}

func testNetwork() *citations.Network {
	return &citations.Network{
		Edges: []types.CouplingEdge{{A: 0, B: 2, Strength: 0.8}},
		Stats: types.CitationStats{HasCitations: true, EdgeCount: 1},
	}
}

func TestSelectMode(t *testing.T) {
	cfg := types.BlendConfig{TextWeight: 0.7, CitationWeight: 0.3}

	tests := []struct {
		name     string
		net      *citations.Network
		cfg      types.BlendConfig
		wantMode Mode
		wantText float64
	}{
		{"fused", testNetwork(), cfg, ModeFused, 0.7},
		{"nil network", nil, cfg, ModeTextOnly, 1},
		{"degraded network", &citations.Network{}, cfg, ModeTextOnly, 1},
		{"explicit text-only", testNetwork(), types.BlendConfig{TextWeight: 1}, ModeTextOnly, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mode, eff := SelectMode(tt.net, tt.cfg)
			if mode != tt.wantMode {
				t.Errorf("mode = %v, want %v", mode, tt.wantMode)
			}
			if eff.TextWeight != tt.wantText {
				t.Errorf("text weight = %f, want %f", eff.TextWeight, tt.wantText)
			}
			if mode == ModeTextOnly && eff.CitationWeight != 0 {
				t.Errorf("citation weight = %f, want 0 in text-only mode", eff.CitationWeight)
			}
		})
	}
}

func TestBuildInvariants(t *testing.T) {
	mode, cfg := SelectMode(testNetwork(), types.BlendConfig{TextWeight: 0.7, CitationWeight: 0.3})
	m := Build(testVectors(), testNetwork(), mode, cfg)

	n := m.N()
	for i := 0; i < n; i++ {
		if m.At(i, i) != 0 {
			t.Errorf("diagonal (%d,%d) = %f, want 0", i, i, m.At(i, i))
		}
		for j := 0; j < n; j++ {
			if m.At(i, j) != m.At(j, i) {
				t.Errorf("asymmetry at (%d,%d): %f vs %f", i, j, m.At(i, j), m.At(j, i))
			}
			if m.At(i, j) < 0 || m.At(i, j) > 1 {
				t.Errorf("distance (%d,%d) = %f outside [0,1]", i, j, m.At(i, j))
			}
		}
	}
}

func TestBuildFusedWeighting(t *testing.T) {
	net := testNetwork()
	mode, cfg := SelectMode(net, types.BlendConfig{TextWeight: 0.7, CitationWeight: 0.3})
	m := Build(testVectors(), net, mode, cfg)

	// Docs 0 and 2 are orthogonal in text (distance 1) but strongly
	// coupled: 0.7*1 + 0.3*(1-0.8) = 0.76.
	if got, want := m.At(0, 2), 0.76; !approx(got, want) {
		t.Errorf("fused d(0,2) = %f, want %f", got, want)
	}

	// Docs 0 and 1 share no references: citation distance defaults to 1.
	text := cosineDistance([]float64{1, 0, 0}, []float64{0.9, 0.1, 0})
	if got, want := m.At(0, 1), 0.7*text+0.3; !approx(got, want) {
		t.Errorf("fused d(0,1) = %f, want %f", got, want)
	}
}

func TestBuildDegradedMatchesTextOnly(t *testing.T) {
	vecs := testVectors()
	cfg := types.BlendConfig{TextWeight: 0.7, CitationWeight: 0.3}

	degMode, degCfg := SelectMode(&citations.Network{}, cfg)
	deg := Build(vecs, &citations.Network{}, degMode, degCfg)

	textMode, textCfg := SelectMode(nil, types.BlendConfig{TextWeight: 1})
	text := Build(vecs, nil, textMode, textCfg)

	if !reflect.DeepEqual(deg.data, text.data) {
		t.Fatal("degraded-mode matrix differs from explicit text-only matrix")
	}
}

func TestBuildDeterministicAcrossWorkerCounts(t *testing.T) {
	net := testNetwork()
	mode, cfg := SelectMode(net, types.BlendConfig{TextWeight: 0.7, CitationWeight: 0.3})

	cfg.Workers = 1
	one := Build(testVectors(), net, mode, cfg)
	cfg.Workers = 8
	many := Build(testVectors(), net, mode, cfg)

	if !reflect.DeepEqual(one.data, many.data) {
		t.Fatal("matrix differs across worker counts")
	}
}

func approx(a, b float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d < 1e-12
}
