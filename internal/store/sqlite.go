package store

import (
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pbaille/mdpress/internal/domain"
)

//go:embed schema.sql
var schema string

// SQLite keeps the term cache in a sqlite database
type SQLite struct {
	db       *sql.DB
	revision string
}

// New opens (or creates) the sqlite term cache at dbPath
func New(dbPath string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &SQLite{db: db}, nil
}

// Close closes the database connection
func (s *SQLite) Close() error {
	return s.db.Close()
}

// Revision returns the id of the last save, or "" when nothing was saved yet
func (s *SQLite) Revision() string {
	return s.revision
}

// Load reads every cached term
func (s *SQLite) Load() (Snapshot, error) {
	rows, err := s.db.Query(`
		SELECT taxonomy, slug, id, group_id, taxonomy_id, name, description, parent_id, count
		FROM terms
		ORDER BY taxonomy, slug
	`)
	if err != nil {
		return nil, fmt.Errorf("load terms: %w", err)
	}
	defer rows.Close()

	snap := Snapshot{}
	for rows.Next() {
		var t domain.Term
		if err := rows.Scan(&t.Taxonomy, &t.Slug, &t.ID, &t.GroupID, &t.TaxonomyID,
			&t.Name, &t.Description, &t.ParentID, &t.Count); err != nil {
			return nil, fmt.Errorf("scan term: %w", err)
		}
		if snap[t.Taxonomy] == nil {
			snap[t.Taxonomy] = map[string]domain.Term{}
		}
		snap[t.Taxonomy][t.Slug] = t
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load terms: %w", err)
	}

	err = s.db.QueryRow("SELECT id FROM revisions ORDER BY saved_at DESC LIMIT 1").Scan(&s.revision)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("load revision: %w", err)
	}

	return snap, nil
}

// Save replaces the stored terms with snap in a single transaction
func (s *SQLite) Save(snap Snapshot) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM terms"); err != nil {
		return fmt.Errorf("clear terms: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO terms (taxonomy, slug, id, group_id, taxonomy_id, name, description, parent_id, count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for taxonomy, terms := range snap {
		for slug, t := range terms {
			if _, err := stmt.Exec(taxonomy, slug, t.ID, t.GroupID, t.TaxonomyID,
				t.Name, t.Description, t.ParentID, t.Count); err != nil {
				return fmt.Errorf("insert term %s/%s: %w", taxonomy, slug, err)
			}
		}
	}

	revision := uuid.New().String()
	if _, err := tx.Exec(
		"INSERT INTO revisions (id, saved_at, term_count) VALUES (?, ?, ?)",
		revision, time.Now(), snap.Count(),
	); err != nil {
		return fmt.Errorf("insert revision: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	s.revision = revision
	return nil
}
