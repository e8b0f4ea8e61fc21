package contentindex

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"github.com/rushigund/Techligenc-website-backend/internal/listing"
)

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS documents (
		entity_type TEXT NOT NULL,
		entity_id   TEXT NOT NULL,
		document    TEXT NOT NULL,
		indexed_at  TEXT NOT NULL,
		PRIMARY KEY (entity_type, entity_id)
	)`,
	`CREATE VIRTUAL TABLE IF NOT EXISTS documents_fts USING fts5(
		entity_type UNINDEXED,
		entity_id UNINDEXED,
		title,
		facets,
		body
	)`,
	`CREATE TABLE IF NOT EXISTS tombstones (
		entity_type TEXT NOT NULL,
		entity_id   TEXT NOT NULL,
		deleted_at  TEXT NOT NULL,
		PRIMARY KEY (entity_type, entity_id)
	)`,
}

// SQLite is a file backed index using an FTS5 table for the text columns.
// Deleted ids are kept as tombstones and an upsert never replaces a document
// with an older snapshot, so syncs may arrive in any order.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the index database at path.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// one writer keeps sqlite from reporting busy under concurrent syncs
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000;"); err != nil {
		_ = db.Close()
		return nil, err
	}
	for _, stmt := range sqliteSchema {
		if _, err := db.Exec(stmt); err != nil {
			_ = db.Close()
			return nil, errors.Wrap(err, "unable to create sqlite index schema")
		}
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) Apply(ctx context.Context, entityType string, doc Document, op listing.Operation) error {
	switch op {
	case listing.OperationUpsert, listing.OperationDelete:
	default:
		return errors.Errorf("unsupported operation %s", op)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "unable to begin index transaction")
	}
	defer tx.Rollback()

	if op == listing.OperationDelete {
		_, err := tx.ExecContext(
			ctx,
			`INSERT OR IGNORE INTO tombstones (entity_type, entity_id, deleted_at) VALUES (?, ?, ?)`,
			entityType, doc.ID, time.Now().UTC().Format(time.RFC3339Nano),
		)
		if err != nil {
			return errors.Wrap(err, "unable to record index tombstone")
		}
		if err := s.remove(ctx, tx, entityType, doc.ID); err != nil {
			return err
		}
		return errors.Wrap(tx.Commit(), "unable to commit index delete")
	}

	var deleted int
	err = tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM tombstones WHERE entity_type = ? AND entity_id = ?`, entityType, doc.ID).Scan(&deleted)
	if err != nil {
		return errors.Wrap(err, "unable to read index tombstone")
	}
	if deleted > 0 {
		return nil
	}

	body, err := json.Marshal(doc)
	if err != nil {
		return errors.Wrap(err, "unable to encode index document")
	}
	var current string
	err = tx.QueryRowContext(ctx, `SELECT document FROM documents WHERE entity_type = ? AND entity_id = ?`, entityType, doc.ID).Scan(&current)
	if err != nil && err != sql.ErrNoRows {
		return errors.Wrap(err, "unable to read index entry")
	}
	if err == nil {
		if current == string(body) {
			return nil
		}
		var stored Document
		if err := json.Unmarshal([]byte(current), &stored); err != nil {
			return errors.Wrap(err, "unable to decode index entry")
		}
		if stored.UpdatedAt.After(doc.UpdatedAt) {
			return nil
		}
	}
	if err := s.remove(ctx, tx, entityType, doc.ID); err != nil {
		return err
	}
	_, err = tx.ExecContext(
		ctx,
		`INSERT INTO documents (entity_type, entity_id, document, indexed_at) VALUES (?, ?, ?, ?)`,
		entityType, doc.ID, string(body), time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return errors.Wrap(err, "unable to write index entry")
	}
	_, err = tx.ExecContext(
		ctx,
		`INSERT INTO documents_fts (entity_type, entity_id, title, facets, body) VALUES (?, ?, ?, ?, ?)`,
		entityType,
		doc.ID,
		doc.Title,
		strings.Join(append([]string{doc.Department, doc.Location, doc.Type}, doc.Skills...), " "),
		doc.DescriptionText,
	)
	if err != nil {
		return errors.Wrap(err, "unable to write index text")
	}
	return errors.Wrap(tx.Commit(), "unable to commit index upsert")
}

func (s *SQLite) remove(ctx context.Context, tx *sql.Tx, entityType, id string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM documents WHERE entity_type = ? AND entity_id = ?`, entityType, id); err != nil {
		return errors.Wrap(err, "unable to delete index entry")
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM documents_fts WHERE entity_type = ? AND entity_id = ?`, entityType, id); err != nil {
		return errors.Wrap(err, "unable to delete index text")
	}
	return nil
}

// Get returns the stored document, reporting false when there is none.
func (s *SQLite) Get(ctx context.Context, entityType, id string) (Document, bool, error) {
	var body string
	err := s.db.QueryRowContext(ctx, `SELECT document FROM documents WHERE entity_type = ? AND entity_id = ?`, entityType, id).Scan(&body)
	if err == sql.ErrNoRows {
		return Document{}, false, nil
	}
	if err != nil {
		return Document{}, false, errors.Wrap(err, "unable to load index entry")
	}
	var doc Document
	if err := json.Unmarshal([]byte(body), &doc); err != nil {
		return Document{}, false, errors.Wrap(err, "unable to decode index entry")
	}
	return doc, true, nil
}

// IndexedAt reports when the entry was last written.
func (s *SQLite) IndexedAt(ctx context.Context, entityType, id string) (time.Time, error) {
	var at string
	err := s.db.QueryRowContext(ctx, `SELECT indexed_at FROM documents WHERE entity_type = ? AND entity_id = ?`, entityType, id).Scan(&at)
	if err != nil {
		return time.Time{}, err
	}
	return time.Parse(time.RFC3339Nano, at)
}

// Count returns the number of entries of entityType.
func (s *SQLite) Count(ctx context.Context, entityType string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents WHERE entity_type = ?`, entityType).Scan(&n)
	return n, err
}
