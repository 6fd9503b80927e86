// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/stream-mapper/internal/corpus"
	"github.com/pdiddy/stream-mapper/internal/pipeline"
	"github.com/pdiddy/stream-mapper/internal/results"
	"github.com/pdiddy/stream-mapper/pkg/types"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Cluster the corpus into a stream hierarchy",
	Long: `Run loads the indexed corpus, builds text and citation features,
clusters documents into a stream hierarchy, and writes the assignment and
topic tables to the results database along with YAML, JSON, and CSV
exports. Each run replaces the previous one.`,
	RunE: runCluster,
}

func runCluster(cmd *cobra.Command, args []string) error {
	cfg, err := runConfig(cmd)
	if err != nil {
		return err
	}

	ctx := context.Background()

	store, err := corpus.NewStore(cfg.Corpus)
	if err != nil {
		return err
	}
	defer store.Close()

	docs, err := store.Load(ctx)
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		return fmt.Errorf("corpus is empty: run 'stream-mapper corpus ingest' first")
	}

	out, err := pipeline.New(cfg, logger).Run(ctx, docs)
	if err != nil {
		return err
	}

	resStore, err := results.NewStore(cfg.Output)
	if err != nil {
		return err
	}
	defer resStore.Close()

	if err := resStore.Save(ctx, out); err != nil {
		return err
	}
	if err := results.ExportYAML(cfg.Output.ResultsDir, out); err != nil {
		return err
	}
	if err := results.ExportJSON(cfg.Output.ResultsDir, out); err != nil {
		return err
	}
	if err := results.ExportCSV(cfg.Output.ResultsDir, out); err != nil {
		return err
	}

	fmt.Printf("Clustered %d documents into %d streams; results in %s\n",
		out.Docs, out.Levels[0].Clusters, cfg.Output.ResultsDir)
	return nil
}

// runConfig layers run flags over the file config. Zero or unset flags keep
// the file or default values.
func runConfig(cmd *cobra.Command) (types.PipelineConfig, error) {
	cfg, err := loadPipelineConfig()
	if err != nil {
		return cfg, err
	}

	if dir, _ := cmd.Flags().GetString("corpus-dir"); dir != "" {
		cfg.Corpus.CorpusDir = dir
	}
	if dir, _ := cmd.Flags().GetString("results-dir"); dir != "" {
		cfg.Output.ResultsDir = dir
	}
	if linkage, _ := cmd.Flags().GetString("linkage"); linkage != "" {
		switch types.Linkage(linkage) {
		case types.LinkageAverage, types.LinkageComplete:
			cfg.Cluster.Linkage = types.Linkage(linkage)
		default:
			return cfg, fmt.Errorf("unsupported linkage %q: use average or complete", linkage)
		}
	}
	if depth, _ := cmd.Flags().GetInt("depth"); depth != 0 {
		cfg.Cluster.MaxDepth = depth
	}
	if w, _ := cmd.Flags().GetFloat64("text-weight"); cmd.Flags().Changed("text-weight") {
		cfg.Blend.TextWeight = w
	}
	if w, _ := cmd.Flags().GetFloat64("citation-weight"); cmd.Flags().Changed("citation-weight") {
		cfg.Blend.CitationWeight = w
	}
	if workers, _ := cmd.Flags().GetInt("workers"); workers > 0 {
		cfg.Citation.Workers = workers
		cfg.Blend.Workers = workers
		cfg.Cluster.Workers = workers
	}
	if seed, _ := cmd.Flags().GetInt64("seed"); cmd.Flags().Changed("seed") {
		cfg.Cluster.Seed = seed
	}
	return cfg, nil
}

func init() {
	runCmd.Flags().String("corpus-dir", "", "base directory for corpus data (contains records/, index/)")
	runCmd.Flags().String("results-dir", "", "base directory for run outputs (contains index/, exports)")
	runCmd.Flags().String("linkage", "", "agglomerative linkage: average or complete")
	runCmd.Flags().Int("depth", 0, "hierarchy depth, 2 or 3 (0 = use config)")
	runCmd.Flags().Float64("text-weight", 0, "weight of the text distance in the blend")
	runCmd.Flags().Float64("citation-weight", 0, "weight of the citation distance in the blend")
	runCmd.Flags().Int("workers", 0, "worker pool size for parallel stages (0 = use config)")
	runCmd.Flags().Int64("seed", 0, "random seed recorded with the run")

	rootCmd.AddCommand(runCmd)
}
