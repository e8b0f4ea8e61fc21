package contentindex

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/rushigund/Techligenc-website-backend/internal/listing"
)

// Postgres keeps documents in the job_listing_index table next to a weighted
// tsvector. Rows are only rewritten by a newer, different document, and ids
// in job_listing_index_tombstone are never indexed again.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (p *Postgres) Apply(ctx context.Context, entityType string, doc Document, op listing.Operation) error {
	switch op {
	case listing.OperationUpsert:
		return p.upsert(ctx, entityType, doc)
	case listing.OperationDelete:
		return p.remove(ctx, entityType, doc.ID)
	default:
		return errors.Errorf("unsupported operation %s", op)
	}
}

func (p *Postgres) remove(ctx context.Context, entityType, id string) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "unable to begin index transaction")
	}
	defer tx.Rollback()
	_, err = tx.ExecContext(
		ctx,
		`INSERT INTO job_listing_index_tombstone (entity_type, entity_id, deleted_at) VALUES ($1, $2, $3)
		ON CONFLICT (entity_type, entity_id) DO NOTHING`,
		entityType, id, time.Now().UTC(),
	)
	if err != nil {
		return errors.Wrap(err, "unable to record index tombstone")
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM job_listing_index WHERE entity_type = $1 AND entity_id = $2`, entityType, id); err != nil {
		return errors.Wrap(err, "unable to delete index entry")
	}
	return errors.Wrap(tx.Commit(), "unable to commit index delete")
}

func (p *Postgres) upsert(ctx context.Context, entityType string, doc Document) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return errors.Wrap(err, "unable to encode index document")
	}
	_, err = p.db.ExecContext(
		ctx,
		`INSERT INTO job_listing_index (entity_type, entity_id, document, search, indexed_at)
		SELECT $1::varchar, $2::varchar, $3::jsonb,
			setweight(to_tsvector('english', $4::text), 'A') ||
			setweight(to_tsvector('english', $5::text), 'B') ||
			setweight(to_tsvector('english', $6::text), 'C'),
			$7::timestamp
		WHERE NOT EXISTS (
			SELECT 1 FROM job_listing_index_tombstone t WHERE t.entity_type = $1::varchar AND t.entity_id = $2::varchar
		)
		ON CONFLICT (entity_type, entity_id) DO UPDATE
		SET document = EXCLUDED.document, search = EXCLUDED.search, indexed_at = EXCLUDED.indexed_at
		WHERE job_listing_index.document IS DISTINCT FROM EXCLUDED.document
		AND (job_listing_index.document->>'updatedAt')::timestamptz <= (EXCLUDED.document->>'updatedAt')::timestamptz`,
		entityType,
		doc.ID,
		string(body),
		doc.Title,
		strings.Join(append([]string{doc.Department, doc.Location}, doc.Skills...), " "),
		doc.DescriptionText,
		time.Now().UTC(),
	)
	return errors.Wrap(err, "unable to upsert index entry")
}

// Get returns the stored document, reporting false when there is none.
func (p *Postgres) Get(ctx context.Context, entityType, id string) (Document, bool, error) {
	var body []byte
	err := p.db.QueryRowContext(ctx, `SELECT document FROM job_listing_index WHERE entity_type = $1 AND entity_id = $2`, entityType, id).Scan(&body)
	if err == sql.ErrNoRows {
		return Document{}, false, nil
	}
	if err != nil {
		return Document{}, false, errors.Wrap(err, "unable to load index entry")
	}
	var doc Document
	if err := json.Unmarshal(body, &doc); err != nil {
		return Document{}, false, errors.Wrap(err, "unable to decode index entry")
	}
	return doc, true, nil
}
