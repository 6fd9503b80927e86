// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package results persists assembled run outputs to SQLite and exports them
// as YAML, JSON, and CSV for the reporting collaborator.
package results

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/stream-mapper/internal/assemble"
	"github.com/pdiddy/stream-mapper/pkg/types"
)

const (
	indexDir = "index"
	dbFile   = "streams.db"
)

// Store manages the results SQLite database.
type Store struct {
	db         *sql.DB
	resultsDir string
}

// NewStore opens or creates the results database at
// resultsDir/index/streams.db, creating the schema if it does not exist.
func NewStore(cfg types.OutputConfig) (*Store, error) {
	dbDir := filepath.Join(cfg.ResultsDir, indexDir)
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(dbDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, resultsDir: cfg.ResultsDir}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS assignments (
			doc_id TEXT PRIMARY KEY,
			title TEXT,
			journal TEXT,
			year INTEGER,
			abstract TEXT,
			l1 INTEGER NOT NULL,
			l1_label TEXT,
			l2 INTEGER NOT NULL,
			l2_path TEXT,
			l2_label TEXT,
			l3 INTEGER,
			l3_label TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS topics (
			level INTEGER NOT NULL,
			id INTEGER NOT NULL,
			parent INTEGER NOT NULL,
			size INTEGER NOT NULL,
			label TEXT,
			top_terms TEXT,
			silhouette REAL,
			PRIMARY KEY (level, id)
		)`,
		`CREATE TABLE IF NOT EXISTS levels (
			level INTEGER PRIMARY KEY,
			clusters INTEGER NOT NULL,
			silhouette REAL
		)`,
		`CREATE TABLE IF NOT EXISTS citation_stats (
			run INTEGER PRIMARY KEY CHECK (run = 0),
			has_citations INTEGER,
			docs_with_refs INTEGER,
			ref_coverage REAL,
			total_refs INTEGER,
			avg_refs REAL,
			edge_count INTEGER,
			avg_strength REAL
		)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Save replaces the stored run output in one transaction. Results are
// written once per run and never mutated afterward, so a fresh run simply
// overwrites the previous one.
func (s *Store) Save(ctx context.Context, out *assemble.Output) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"assignments", "topics", "levels", "citation_stats"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO assignments (doc_id, title, journal, year, abstract,
			l1, l1_label, l2, l2_path, l2_label, l3, l3_label)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing assignment insert: %w", err)
	}
	defer stmt.Close()

	for _, a := range out.Assignments {
		_, err := stmt.ExecContext(ctx,
			a.DocID, a.Title, a.Journal, a.Year, a.Abstract,
			a.L1, a.L1Label, a.L2, a.L2Path, a.L2Label, a.L3, a.L3Label)
		if err != nil {
			return fmt.Errorf("inserting assignment %s: %w", a.DocID, err)
		}
	}

	for _, level := range out.Topics {
		for _, row := range level {
			termsJSON, _ := json.Marshal(row.TopTerms)
			_, err := tx.ExecContext(ctx,
				`INSERT INTO topics (level, id, parent, size, label, top_terms, silhouette)
				 VALUES (?, ?, ?, ?, ?, ?, ?)`,
				row.Level, row.ID, row.Parent, row.Size, row.Label, string(termsJSON), row.Silhouette)
			if err != nil {
				return fmt.Errorf("inserting topic L%d/%d: %w", row.Level, row.ID, err)
			}
		}
	}

	for _, l := range out.Levels {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO levels (level, clusters, silhouette) VALUES (?, ?, ?)`,
			l.Level, l.Clusters, l.Silhouette)
		if err != nil {
			return fmt.Errorf("inserting level %d summary: %w", l.Level, err)
		}
	}

	c := out.Citations
	_, err = tx.ExecContext(ctx,
		`INSERT INTO citation_stats (run, has_citations, docs_with_refs, ref_coverage,
			total_refs, avg_refs, edge_count, avg_strength)
		 VALUES (0, ?, ?, ?, ?, ?, ?, ?)`,
		c.HasCitations, c.DocsWithRefs, c.RefCoverage, c.TotalRefs, c.AvgRefs, c.EdgeCount, c.AvgStrength)
	if err != nil {
		return fmt.Errorf("inserting citation stats: %w", err)
	}

	return tx.Commit()
}

// LoadAssignments returns the stored assignment table ordered by document id.
func (s *Store) LoadAssignments(ctx context.Context) ([]types.StreamAssignment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT doc_id, title, journal, year, abstract,
			l1, l1_label, l2, l2_path, l2_label, l3, l3_label
		 FROM assignments ORDER BY doc_id`)
	if err != nil {
		return nil, fmt.Errorf("querying assignments: %w", err)
	}
	defer rows.Close()

	var out []types.StreamAssignment
	for rows.Next() {
		var a types.StreamAssignment
		if err := rows.Scan(&a.DocID, &a.Title, &a.Journal, &a.Year, &a.Abstract,
			&a.L1, &a.L1Label, &a.L2, &a.L2Path, &a.L2Label, &a.L3, &a.L3Label); err != nil {
			return nil, fmt.Errorf("scanning assignment: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// LoadTopics returns the stored topic rows for one level, ordered by id.
func (s *Store) LoadTopics(ctx context.Context, level int) ([]assemble.TopicRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT level, id, parent, size, label, top_terms, silhouette
		 FROM topics WHERE level = ? ORDER BY id`, level)
	if err != nil {
		return nil, fmt.Errorf("querying topics: %w", err)
	}
	defer rows.Close()

	var out []assemble.TopicRow
	for rows.Next() {
		var row assemble.TopicRow
		var termsJSON string
		if err := rows.Scan(&row.Level, &row.ID, &row.Parent, &row.Size,
			&row.Label, &termsJSON, &row.Silhouette); err != nil {
			return nil, fmt.Errorf("scanning topic: %w", err)
		}
		if termsJSON != "" && termsJSON != "null" {
			if err := json.Unmarshal([]byte(termsJSON), &row.TopTerms); err != nil {
				return nil, fmt.Errorf("parsing top terms for L%d/%d: %w", row.Level, row.ID, err)
			}
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// Load reconstructs the full stored run output. Assignments come back in
// document-id order, which differs from the corpus order they were saved in.
func (s *Store) Load(ctx context.Context) (*assemble.Output, error) {
	assignments, err := s.LoadAssignments(ctx)
	if err != nil {
		return nil, err
	}
	if len(assignments) == 0 {
		return nil, fmt.Errorf("no stored run: run 'stream-mapper run' first")
	}

	out := &assemble.Output{
		Assignments: assignments,
		Docs:        len(assignments),
	}

	levelRows, err := s.db.QueryContext(ctx,
		`SELECT level, clusters, silhouette FROM levels ORDER BY level`)
	if err != nil {
		return nil, fmt.Errorf("querying level summaries: %w", err)
	}
	defer levelRows.Close()
	for levelRows.Next() {
		var l assemble.LevelSummary
		if err := levelRows.Scan(&l.Level, &l.Clusters, &l.Silhouette); err != nil {
			return nil, fmt.Errorf("scanning level summary: %w", err)
		}
		out.Levels = append(out.Levels, l)
	}
	if err := levelRows.Err(); err != nil {
		return nil, err
	}

	for _, l := range out.Levels {
		topics, err := s.LoadTopics(ctx, l.Level)
		if err != nil {
			return nil, err
		}
		out.Topics = append(out.Topics, topics)
	}

	c := &out.Citations
	err = s.db.QueryRowContext(ctx,
		`SELECT has_citations, docs_with_refs, ref_coverage, total_refs,
			avg_refs, edge_count, avg_strength
		 FROM citation_stats WHERE run = 0`).
		Scan(&c.HasCitations, &c.DocsWithRefs, &c.RefCoverage, &c.TotalRefs,
			&c.AvgRefs, &c.EdgeCount, &c.AvgStrength)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("querying citation stats: %w", err)
	}

	return out, nil
}
