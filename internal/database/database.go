package database

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/lib/pq"
	"github.com/pkg/errors"
)

// Table Structure:
//
// job_listing holds the authoritative listing records, job_listing_index the
// searchable projection maintained by the content index synchronizer when the
// postgres backend is selected. job_listing_index_tombstone remembers deleted
// ids so a late upsert cannot bring an entry back; ids are never reused.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS job_listing (
		id              CHAR(27) NOT NULL UNIQUE,
		title           VARCHAR(255) NOT NULL,
		department      VARCHAR(255) NOT NULL,
		location        VARCHAR(255) NOT NULL,
		employment_type VARCHAR(100) NOT NULL,
		salary          VARCHAR(255) NOT NULL,
		description     TEXT NOT NULL,
		skills          TEXT[] NOT NULL,
		created_at      TIMESTAMP NOT NULL,
		updated_at      TIMESTAMP NOT NULL,
		PRIMARY KEY(id)
	)`,
	`CREATE INDEX IF NOT EXISTS job_listing_created_at_idx ON job_listing (created_at)`,
	`CREATE TABLE IF NOT EXISTS job_listing_index (
		entity_type VARCHAR(50) NOT NULL,
		entity_id   VARCHAR(64) NOT NULL,
		document    JSONB NOT NULL,
		search      TSVECTOR NOT NULL,
		indexed_at  TIMESTAMP NOT NULL,
		PRIMARY KEY(entity_type, entity_id)
	)`,
	`CREATE INDEX IF NOT EXISTS job_listing_index_search_idx ON job_listing_index USING GIN (search)`,
	`CREATE TABLE IF NOT EXISTS job_listing_index_tombstone (
		entity_type VARCHAR(50) NOT NULL,
		entity_id   VARCHAR(64) NOT NULL,
		deleted_at  TIMESTAMP NOT NULL,
		PRIMARY KEY(entity_type, entity_id)
	)`,
}

// GetDbConn tries to establish a connection to postgres and return the connection handler
func GetDbConn(databaseURL string) (*sql.DB, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, err
	}
	err = db.Ping()
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(20)
	db.SetConnMaxLifetime(5 * time.Minute)
	return db, nil
}

// CloseDbConn closes db conn
func CloseDbConn(conn *sql.DB) {
	conn.Close()
}

// Migrate creates the tables this service owns. Every statement is idempotent.
func Migrate(ctx context.Context, conn *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := conn.ExecContext(ctx, stmt); err != nil {
			return errors.Wrapf(err, "migration %d failed", i)
		}
	}
	return nil
}
