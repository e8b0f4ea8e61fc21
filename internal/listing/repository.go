package listing

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/segmentio/ksuid"

	"github.com/rushigund/Techligenc-website-backend/internal/apperror"
)

// Table Structure:
//
// CREATE TABLE IF NOT EXISTS job_listing (
// 	id              CHAR(27) NOT NULL UNIQUE,
// 	title           VARCHAR(255) NOT NULL,
// 	department      VARCHAR(255) NOT NULL,
// 	location        VARCHAR(255) NOT NULL,
// 	employment_type VARCHAR(100) NOT NULL,
// 	salary          VARCHAR(255) NOT NULL,
// 	description     TEXT NOT NULL,
// 	skills          TEXT[] NOT NULL,
// 	created_at      TIMESTAMP NOT NULL,
// 	updated_at      TIMESTAMP NOT NULL,
// 	PRIMARY KEY(id)
// );
// CREATE INDEX IF NOT EXISTS job_listing_created_at_idx ON job_listing (created_at);

const listingColumns = `id, title, department, location, employment_type, salary, description, skills, created_at, updated_at`

// Repository is the Postgres backed listing store.
type Repository struct {
	db  *sql.DB
	now func() time.Time
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db, now: time.Now}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanListing(row rowScanner) (Listing, error) {
	var l Listing
	err := row.Scan(
		&l.ID,
		&l.Title,
		&l.Department,
		&l.Location,
		&l.Type,
		&l.Salary,
		&l.Description,
		pq.Array(&l.Skills),
		&l.CreatedAt,
		&l.UpdatedAt,
	)
	l.ID = strings.TrimSpace(l.ID)
	return l, err
}

func (r *Repository) timestamp() time.Time {
	// postgres keeps microseconds
	return r.now().UTC().Truncate(time.Microsecond)
}

func (r *Repository) Create(ctx context.Context, f Fields) (Listing, error) {
	if err := Validate(f); err != nil {
		return Listing{}, err
	}
	now := r.timestamp()
	l := Listing{
		ID:          ksuid.New().String(),
		Title:       f.Title,
		Department:  f.Department,
		Location:    f.Location,
		Type:        f.Type,
		Salary:      f.Salary,
		Description: f.Description,
		Skills:      f.Skills,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	_, err := r.db.ExecContext(
		ctx,
		`INSERT INTO job_listing (`+listingColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		l.ID,
		l.Title,
		l.Department,
		l.Location,
		l.Type,
		l.Salary,
		l.Description,
		pq.Array(l.Skills),
		l.CreatedAt,
		l.UpdatedAt,
	)
	if err != nil {
		return Listing{}, apperror.Wrap(err, apperror.KindPersistenceFailed, "unable to save job listing")
	}
	return l, nil
}

func (r *Repository) Get(ctx context.Context, id string) (Listing, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+listingColumns+` FROM job_listing WHERE id = $1`, id)
	l, err := scanListing(row)
	if err == sql.ErrNoRows {
		return Listing{}, notFound(id)
	}
	if err != nil {
		return Listing{}, apperror.Wrap(err, apperror.KindPersistenceFailed, "unable to load job listing")
	}
	return l, nil
}

// Update merges p onto the stored row under a row lock and validates the
// result before writing. Nothing changes when validation fails.
func (r *Repository) Update(ctx context.Context, id string, p Patch) (Listing, error) {
	if p.Empty() {
		return Listing{}, apperror.Validation("no fields supplied for update")
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return Listing{}, apperror.Wrap(err, apperror.KindPersistenceFailed, "unable to update job listing")
	}
	defer tx.Rollback()

	current, err := scanListing(tx.QueryRowContext(ctx, `SELECT `+listingColumns+` FROM job_listing WHERE id = $1 FOR UPDATE`, id))
	if err == sql.ErrNoRows {
		return Listing{}, notFound(id)
	}
	if err != nil {
		return Listing{}, apperror.Wrap(err, apperror.KindPersistenceFailed, "unable to update job listing")
	}

	merged := p.Apply(current.Fields())
	if err := Validate(merged); err != nil {
		return Listing{}, err
	}
	updated := Listing{
		ID:          current.ID,
		Title:       merged.Title,
		Department:  merged.Department,
		Location:    merged.Location,
		Type:        merged.Type,
		Salary:      merged.Salary,
		Description: merged.Description,
		Skills:      merged.Skills,
		CreatedAt:   current.CreatedAt,
		UpdatedAt:   r.timestamp(),
	}
	_, err = tx.ExecContext(
		ctx,
		`UPDATE job_listing SET title = $1, department = $2, location = $3, employment_type = $4, salary = $5, description = $6, skills = $7, updated_at = $8 WHERE id = $9`,
		updated.Title,
		updated.Department,
		updated.Location,
		updated.Type,
		updated.Salary,
		updated.Description,
		pq.Array(updated.Skills),
		updated.UpdatedAt,
		updated.ID,
	)
	if err != nil {
		return Listing{}, apperror.Wrap(err, apperror.KindPersistenceFailed, "unable to update job listing")
	}
	if err := tx.Commit(); err != nil {
		return Listing{}, apperror.Wrap(err, apperror.KindPersistenceFailed, "unable to update job listing")
	}
	return updated, nil
}

// Delete removes the listing and returns its last state.
func (r *Repository) Delete(ctx context.Context, id string) (Listing, error) {
	row := r.db.QueryRowContext(ctx, `DELETE FROM job_listing WHERE id = $1 RETURNING `+listingColumns, id)
	l, err := scanListing(row)
	if err == sql.ErrNoRows {
		return Listing{}, notFound(id)
	}
	if err != nil {
		return Listing{}, apperror.Wrap(err, apperror.KindPersistenceFailed, "unable to delete job listing")
	}
	return l, nil
}

func (r *Repository) ListAll(ctx context.Context) ([]Listing, error) {
	listings := []Listing{}
	rows, err := r.db.QueryContext(ctx, `SELECT `+listingColumns+` FROM job_listing ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return listings, apperror.Wrap(err, apperror.KindPersistenceFailed, "unable to list job listings")
	}
	defer rows.Close()
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return listings, apperror.Wrap(err, apperror.KindPersistenceFailed, "unable to list job listings")
		}
		listings = append(listings, l)
	}
	if err := rows.Err(); err != nil {
		return listings, apperror.Wrap(err, apperror.KindPersistenceFailed, "unable to list job listings")
	}
	return listings, nil
}

func notFound(id string) error {
	return apperror.New(apperror.KindNotFound, "job listing "+id+" not found")
}
