// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package corpus persists documents and their reference lists in a SQLite
// database and loads them back for clustering runs. Ingestion is
// incremental: unchanged record files are skipped on subsequent runs.
package corpus

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/stream-mapper/pkg/types"
)

const (
	recordsDir = "records"
	indexDir   = "index"
	dbFile     = "corpus.db"
)

// Store manages the corpus SQLite database.
type Store struct {
	db        *sql.DB
	corpusDir string
}

// NewStore opens or creates the corpus database at corpusDir/index/corpus.db,
// creating the schema if it does not exist.
func NewStore(cfg types.CorpusConfig) (*Store, error) {
	dbDir := filepath.Join(cfg.CorpusDir, indexDir)
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(dbDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, corpusDir: cfg.CorpusDir}
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
		`CREATE TABLE IF NOT EXISTS documents (
			id TEXT PRIMARY KEY,
			title TEXT,
			journal TEXT,
			year INTEGER,
			abstract TEXT,
			refs TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS ingest_status (
			doc_id TEXT PRIMARY KEY,
			file_mod_time TEXT
		)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// IngestSummary holds counts from a corpus ingestion run.
type IngestSummary struct {
	Indexed int
	Updated int
	Skipped int
	Failed  int
}

// Total returns the number of record files processed.
func (s IngestSummary) Total() int {
	return s.Indexed + s.Updated + s.Skipped + s.Failed
}

// Ingest reads document record YAML files from corpusDir/records/ and
// upserts them into the database. New, changed, and unchanged files are
// detected by modification time for incremental updates.
func (s *Store) Ingest(ctx context.Context, w io.Writer) (IngestSummary, error) {
	recDir := filepath.Join(s.corpusDir, recordsDir)

	entries, err := os.ReadDir(recDir)
	if err != nil {
		return IngestSummary{}, fmt.Errorf("reading records directory %s: %w", recDir, err)
	}

	var summary IngestSummary

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}

		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		name := strings.TrimSuffix(entry.Name(), ".yaml")
		path := filepath.Join(recDir, entry.Name())

		info, err := entry.Info()
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", name, err)
			summary.Failed++
			continue
		}
		modTime := info.ModTime().UTC().Format(time.RFC3339Nano)

		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", name, err)
			summary.Failed++
			continue
		}

		var doc types.Document
		if err := yaml.Unmarshal(data, &doc); err != nil {
			fmt.Fprintf(w, "failed  %s: parse error: %v\n", name, err)
			summary.Failed++
			continue
		}
		if doc.ID == "" {
			fmt.Fprintf(w, "failed  %s: record has no id\n", name)
			summary.Failed++
			continue
		}

		var storedModTime string
		err = s.db.QueryRowContext(ctx,
			`SELECT file_mod_time FROM ingest_status WHERE doc_id = ?`, doc.ID,
		).Scan(&storedModTime)

		if err == nil && storedModTime == modTime {
			fmt.Fprintf(w, "skipped %s\n", doc.ID)
			summary.Skipped++
			continue
		}
		isUpdate := err == nil

		if err := s.upsert(ctx, doc, modTime); err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", doc.ID, err)
			summary.Failed++
			continue
		}

		if isUpdate {
			fmt.Fprintf(w, "updated %s\n", doc.ID)
			summary.Updated++
		} else {
			fmt.Fprintf(w, "indexed %s\n", doc.ID)
			summary.Indexed++
		}
	}

	fmt.Fprintf(w, "\nindexed: %d, updated: %d, skipped: %d, failed: %d\n",
		summary.Indexed, summary.Updated, summary.Skipped, summary.Failed)

	return summary, nil
}

func (s *Store) upsert(ctx context.Context, doc types.Document, modTime string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	refsJSON, _ := json.Marshal(doc.References)
	_, err = tx.ExecContext(ctx,
		`INSERT INTO documents (id, title, journal, year, abstract, refs)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			title=excluded.title, journal=excluded.journal, year=excluded.year,
			abstract=excluded.abstract, refs=excluded.refs`,
		doc.ID, doc.Title, doc.Journal, doc.Year, doc.Abstract, string(refsJSON),
	)
	if err != nil {
		return fmt.Errorf("upserting document: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO ingest_status (doc_id, file_mod_time) VALUES (?, ?)
		 ON CONFLICT(doc_id) DO UPDATE SET file_mod_time=excluded.file_mod_time`,
		doc.ID, modTime,
	)
	if err != nil {
		return fmt.Errorf("updating ingest status: %w", err)
	}

	return tx.Commit()
}

// Load returns the full corpus ordered by document id. Order must be stable
// so that repeated runs see identical corpus indices.
func (s *Store) Load(ctx context.Context) ([]types.Document, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, journal, year, abstract, refs FROM documents ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	var docs []types.Document
	for rows.Next() {
		var doc types.Document
		var refsJSON string
		if err := rows.Scan(&doc.ID, &doc.Title, &doc.Journal, &doc.Year, &doc.Abstract, &refsJSON); err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		if refsJSON != "" && refsJSON != "null" {
			if err := json.Unmarshal([]byte(refsJSON), &doc.References); err != nil {
				return nil, fmt.Errorf("parsing references for %s: %w", doc.ID, err)
			}
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// Count returns the number of stored documents.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM documents`).Scan(&n)
	return n, err
}
