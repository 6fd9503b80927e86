package types

// CorpusConfig holds settings for the corpus store.
type CorpusConfig struct {
	// CorpusDir is the base directory for corpus data (contains records/, index/).
	CorpusDir string `json:"corpus_dir" yaml:"corpus_dir"`
}

// FeatureConfig holds settings for text feature extraction.
type FeatureConfig struct {
	// MaxVocabulary caps the number of vocabulary terms (default 5000).
	MaxVocabulary int `json:"max_vocabulary" yaml:"max_vocabulary"`

	// MinDocFreq drops terms appearing in fewer documents (default 2).
	MinDocFreq int `json:"min_doc_freq" yaml:"min_doc_freq"`

	// LatentDims is the target dimensionality of the reduced semantic
	// space (default 100). Clamped to min(N, vocabulary size).
	LatentDims int `json:"latent_dims" yaml:"latent_dims"`

	// MinTokenLen drops shorter tokens (default 3).
	MinTokenLen int `json:"min_token_len" yaml:"min_token_len"`
}

// CitationConfig holds settings for the citation signal builder.
type CitationConfig struct {
	// MinCoverage is the minimum fraction of documents that must carry
	// references for the citation network to be used (default 0.05).
	MinCoverage float64 `json:"min_coverage" yaml:"min_coverage"`

	// Workers bounds the pairwise-computation worker pool (default 4).
	Workers int `json:"workers" yaml:"workers"`
}

// BlendConfig holds settings for the similarity blender. Weights need not
// sum to one but typically do; the citation weight is forced to zero when
// the run falls back to text-only mode.
type BlendConfig struct {
	// TextWeight scales the cosine text distance (default 0.7).
	TextWeight float64 `json:"text_weight" yaml:"text_weight"`

	// CitationWeight scales the coupling distance (default 0.3).
	CitationWeight float64 `json:"citation_weight" yaml:"citation_weight"`

	// Workers bounds the pairwise-computation worker pool (default 4).
	Workers int `json:"workers" yaml:"workers"`
}

// Linkage selects the agglomerative merge criterion.
type Linkage string

const (
	LinkageAverage  Linkage = "average"
	LinkageComplete Linkage = "complete"
)

// ClusterConfig holds settings for the hierarchical clusterer.
type ClusterConfig struct {
	// L1Candidates, L2Candidates, and L3Candidates are the candidate k
	// sets evaluated at each level.
	L1Candidates []int `json:"l1_candidates" yaml:"l1_candidates"`
	L2Candidates []int `json:"l2_candidates" yaml:"l2_candidates"`
	L3Candidates []int `json:"l3_candidates" yaml:"l3_candidates"`

	// Linkage selects average or complete linkage (default average).
	Linkage Linkage `json:"linkage" yaml:"linkage"`

	// MinClusterSize is the floor below which a cluster is not subdivided
	// (default 10).
	MinClusterSize int `json:"min_cluster_size" yaml:"min_cluster_size"`

	// MaxDepth is the hierarchy depth, 2 or 3 (default 2).
	MaxDepth int `json:"max_depth" yaml:"max_depth"`

	// Workers bounds concurrent sibling subdivisions (default 4).
	Workers int `json:"workers" yaml:"workers"`

	// Seed fixes any stochastic sub-step so repeated runs on identical
	// input produce identical assignments.
	Seed int64 `json:"seed" yaml:"seed"`
}

// Candidates returns the candidate k set for a hierarchy level.
func (c ClusterConfig) Candidates(level int) []int {
	switch level {
	case 1:
		return c.L1Candidates
	case 2:
		return c.L2Candidates
	default:
		return c.L3Candidates
	}
}

// LabelConfig holds settings for stream label synthesis.
type LabelConfig struct {
	// TopTerms is the number of distinguishing terms kept per cluster
	// (default 8).
	TopTerms int `json:"top_terms" yaml:"top_terms"`

	// LabelTerms is the number of leading terms joined into the short
	// label (default 3).
	LabelTerms int `json:"label_terms" yaml:"label_terms"`
}

// OutputConfig holds settings for result persistence and export.
type OutputConfig struct {
	// ResultsDir is the base directory for run outputs (contains index/,
	// export files).
	ResultsDir string `json:"results_dir" yaml:"results_dir"`
}

// PipelineConfig groups all stage configurations for a clustering run.
type PipelineConfig struct {
	Corpus   CorpusConfig   `json:"corpus" yaml:"corpus"`
	Features FeatureConfig  `json:"features" yaml:"features"`
	Citation CitationConfig `json:"citation" yaml:"citation"`
	Blend    BlendConfig    `json:"blend" yaml:"blend"`
	Cluster  ClusterConfig  `json:"cluster" yaml:"cluster"`
	Labels   LabelConfig    `json:"labels" yaml:"labels"`
	Output   OutputConfig   `json:"output" yaml:"output"`
}

// DefaultPipelineConfig returns the configuration used when no config file
// overrides are present.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		Corpus: CorpusConfig{CorpusDir: "corpus"},
		Features: FeatureConfig{
			MaxVocabulary: 5000,
			MinDocFreq:    2,
			LatentDims:    100,
			MinTokenLen:   3,
		},
		Citation: CitationConfig{MinCoverage: 0.05, Workers: 4},
		Blend:    BlendConfig{TextWeight: 0.7, CitationWeight: 0.3, Workers: 4},
		Cluster: ClusterConfig{
			L1Candidates:   []int{8, 10, 12, 14},
			L2Candidates:   []int{2, 3, 4, 5},
			L3Candidates:   []int{2, 3},
			Linkage:        LinkageAverage,
			MinClusterSize: 10,
			MaxDepth:       2,
			Workers:        4,
			Seed:           42,
		},
		Labels: LabelConfig{TopTerms: 8, LabelTerms: 3},
		Output: OutputConfig{ResultsDir: "results"},
	}
}
