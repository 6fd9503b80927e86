// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/stream-mapper/internal/corpus"
	"github.com/pdiddy/stream-mapper/pkg/types"
)

var corpusCmd = &cobra.Command{
	Use:   "corpus",
	Short: "Manage the local document corpus",
	Long: `Corpus maintains the local SQLite document index built from YAML
records under corpus/records/. Use subcommands to ingest records or check
the index state.`,
}

// --- ingest subcommand ---

var corpusIngestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Index document records into the corpus database",
	Long: `Ingest reads document records from corpus/records/*.yaml and indexes
them into a SQLite database. Unchanged records are skipped on subsequent
runs; edited records are re-indexed.`,
	RunE: runCorpusIngest,
}

func runCorpusIngest(cmd *cobra.Command, args []string) error {
	store, err := openCorpusStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	summary, err := store.Ingest(context.Background(), os.Stdout)
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d record(s) failed indexing", summary.Failed)
	}
	return nil
}

// --- status subcommand ---

var corpusStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Report the number of indexed documents",
	RunE:  runCorpusStatus,
}

func runCorpusStatus(cmd *cobra.Command, args []string) error {
	store, err := openCorpusStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	count, err := store.Count(context.Background())
	if err != nil {
		return err
	}
	fmt.Printf("%d documents indexed\n", count)
	return nil
}

// --- shared helpers ---

func openCorpusStore(cmd *cobra.Command) (*corpus.Store, error) {
	cfg, err := loadPipelineConfig()
	if err != nil {
		return nil, err
	}
	if dir, _ := cmd.Flags().GetString("corpus-dir"); dir != "" {
		cfg.Corpus.CorpusDir = dir
	}
	return corpus.NewStore(types.CorpusConfig{CorpusDir: cfg.Corpus.CorpusDir})
}

func init() {
	corpusCmd.PersistentFlags().String("corpus-dir", "", "base directory for corpus data (contains records/, index/)")

	corpusCmd.AddCommand(corpusIngestCmd)
	corpusCmd.AddCommand(corpusStatusCmd)

	rootCmd.AddCommand(corpusCmd)
}
