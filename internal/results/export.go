// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package results

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/stream-mapper/internal/assemble"
)

// ExportYAML writes the full run output to resultsDir/export.yaml.
func ExportYAML(resultsDir string, out *assemble.Output) error {
	data, err := yaml.Marshal(out)
	if err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return os.WriteFile(filepath.Join(resultsDir, "export.yaml"), data, 0o644)
}

// ExportJSON writes the full run output to resultsDir/export.json.
func ExportJSON(resultsDir string, out *assemble.Output) error {
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	return os.WriteFile(filepath.Join(resultsDir, "export.json"), data, 0o644)
}

// ExportCSV writes assignments.csv plus one topics_l<level>.csv per
// hierarchy level into resultsDir.
func ExportCSV(resultsDir string, out *assemble.Output) error {
	if err := writeAssignmentsCSV(filepath.Join(resultsDir, "assignments.csv"), out); err != nil {
		return err
	}
	for _, level := range out.Topics {
		if len(level) == 0 {
			continue
		}
		name := fmt.Sprintf("topics_l%d.csv", level[0].Level)
		if err := writeTopicsCSV(filepath.Join(resultsDir, name), level); err != nil {
			return err
		}
	}
	return nil
}

func writeAssignmentsCSV(path string, out *assemble.Output) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{"doc_id", "title", "journal", "year", "abstract",
		"l1", "l1_label", "l2", "l2_path", "l2_label"}
	hasL3 := len(out.Topics) >= 3
	if hasL3 {
		header = append(header, "l3", "l3_label")
	}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for _, a := range out.Assignments {
		row := []string{
			a.DocID, a.Title, a.Journal, strconv.Itoa(a.Year), a.Abstract,
			strconv.Itoa(a.L1), a.L1Label,
			strconv.Itoa(a.L2), a.L2Path, a.L2Label,
		}
		if hasL3 {
			row = append(row, strconv.Itoa(a.L3), a.L3Label)
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("writing row %s: %w", a.DocID, err)
		}
	}

	w.Flush()
	return w.Error()
}

func writeTopicsCSV(path string, rows []assemble.TopicRow) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"id", "parent", "size", "label", "top_terms", "silhouette"}); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, row := range rows {
		rec := []string{
			strconv.Itoa(row.ID),
			strconv.Itoa(row.Parent),
			strconv.Itoa(row.Size),
			row.Label,
			strings.Join(row.TopTerms, "; "),
			strconv.FormatFloat(row.Silhouette, 'f', 4, 64),
		}
		if err := w.Write(rec); err != nil {
			return fmt.Errorf("writing row %d: %w", row.ID, err)
		}
	}

	w.Flush()
	return w.Error()
}
