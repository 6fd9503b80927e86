// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/stream-mapper/internal/assemble"
	"github.com/pdiddy/stream-mapper/internal/results"
	"github.com/pdiddy/stream-mapper/pkg/types"
)

var resultsCmd = &cobra.Command{
	Use:   "results",
	Short: "Inspect and export the stored clustering run",
	Long: `Results reads the stream assignments and topic tables written by the
most recent run. Use subcommands to print them or regenerate export files.`,
}

// --- show subcommand ---

var resultsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print stream topics or document assignments",
	Long: `Show prints the topic table for one hierarchy level, or with
--assignments the per-document assignment table. Use --json for
machine-readable output.`,
	RunE: runResultsShow,
}

func runResultsShow(cmd *cobra.Command, args []string) error {
	store, err := openResultsStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := context.Background()
	jsonOutput, _ := cmd.Flags().GetBool("json")

	if showAssignments, _ := cmd.Flags().GetBool("assignments"); showAssignments {
		assignments, err := store.LoadAssignments(ctx)
		if err != nil {
			return err
		}
		return formatAssignments(assignments, jsonOutput)
	}

	level, _ := cmd.Flags().GetInt("level")
	topics, err := store.LoadTopics(ctx, level)
	if err != nil {
		return err
	}
	return formatTopics(topics, level, jsonOutput)
}

func formatTopics(topics []assemble.TopicRow, level int, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(topics)
	}

	if len(topics) == 0 {
		fmt.Printf("No topics at level %d.\n", level)
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-4s  %-6s  %-6s  %-40s  %s\n",
		"ID", "Parent", "Size", "Label", "Top terms")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 100))
	for _, row := range topics {
		terms := strings.Join(row.TopTerms, ", ")
		if len(terms) > 40 {
			terms = terms[:37] + "..."
		}
		fmt.Fprintf(os.Stdout, "%-4d  %-6d  %-6d  %-40s  %s\n",
			row.ID, row.Parent, row.Size, row.Label, terms)
	}
	fmt.Fprintf(os.Stdout, "\n%d topics at level %d\n", len(topics), level)
	return nil
}

func formatAssignments(assignments []types.StreamAssignment, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(assignments)
	}

	if len(assignments) == 0 {
		fmt.Println("No stored run.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-20s  %-40s  %-4s  %-8s  %s\n",
		"Doc", "Title", "L1", "L2 path", "Stream")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 110))
	for _, a := range assignments {
		title := a.Title
		if len(title) > 40 {
			title = title[:37] + "..."
		}
		doc := a.DocID
		if len(doc) > 20 {
			doc = doc[:17] + "..."
		}
		fmt.Fprintf(os.Stdout, "%-20s  %-40s  %-4d  %-8s  %s\n",
			doc, title, a.L1, a.L2Path, a.L2Label)
	}
	fmt.Fprintf(os.Stdout, "\n%d documents\n", len(assignments))
	return nil
}

// --- export subcommand ---

var resultsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Regenerate export files from the stored run",
	Long: `Export rewrites the YAML, JSON, or CSV export files from the results
database, without re-running the pipeline.`,
	RunE: runResultsExport,
}

func runResultsExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")

	store, err := openResultsStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	out, err := store.Load(context.Background())
	if err != nil {
		return err
	}

	dir := resultsDir(cmd)
	switch format {
	case "yaml", "":
		if err := results.ExportYAML(dir, out); err != nil {
			return err
		}
		fmt.Printf("Exported to %s/export.yaml\n", dir)
	case "json":
		if err := results.ExportJSON(dir, out); err != nil {
			return err
		}
		fmt.Printf("Exported to %s/export.json\n", dir)
	case "csv":
		if err := results.ExportCSV(dir, out); err != nil {
			return err
		}
		fmt.Printf("Exported CSV tables to %s\n", dir)
	default:
		return fmt.Errorf("unsupported format %q: use yaml, json, or csv", format)
	}
	return nil
}

// --- shared helpers ---

func resultsDir(cmd *cobra.Command) string {
	if dir, _ := cmd.Flags().GetString("results-dir"); dir != "" {
		return dir
	}
	cfg, err := loadPipelineConfig()
	if err != nil {
		return types.DefaultPipelineConfig().Output.ResultsDir
	}
	return cfg.Output.ResultsDir
}

func openResultsStore(cmd *cobra.Command) (*results.Store, error) {
	return results.NewStore(types.OutputConfig{ResultsDir: resultsDir(cmd)})
}

func init() {
	resultsCmd.PersistentFlags().String("results-dir", "", "base directory for run outputs (contains index/, exports)")

	resultsShowCmd.Flags().Int("level", 1, "hierarchy level to show topics for")
	resultsShowCmd.Flags().Bool("assignments", false, "show the per-document assignment table")
	resultsShowCmd.Flags().Bool("json", false, "output as JSON")

	resultsExportCmd.Flags().String("format", "yaml", "export format: yaml, json, or csv")

	resultsCmd.AddCommand(resultsShowCmd)
	resultsCmd.AddCommand(resultsExportCmd)

	rootCmd.AddCommand(resultsCmd)
}
