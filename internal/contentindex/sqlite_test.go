package contentindex_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushigund/Techligenc-website-backend/internal/contentindex"
	"github.com/rushigund/Techligenc-website-backend/internal/listing"
)

func openSQLite(t *testing.T) *contentindex.SQLite {
	t.Helper()
	idx, err := contentindex.OpenSQLite(filepath.Join(t.TempDir(), "index.db"))
	require.NoError(t, err)
	t.Cleanup(func() { idx.Close() })
	return idx
}

func TestSQLiteUpsertIsIdempotent(t *testing.T) {
	idx := openSQLite(t)
	ctx := context.Background()
	doc, err := contentindex.NewDocument(sampleListing())
	require.NoError(t, err)

	require.NoError(t, idx.Apply(ctx, listing.EntityType, doc, listing.OperationUpsert))
	first, err := idx.IndexedAt(ctx, listing.EntityType, doc.ID)
	require.NoError(t, err)

	require.NoError(t, idx.Apply(ctx, listing.EntityType, doc, listing.OperationUpsert))
	second, err := idx.IndexedAt(ctx, listing.EntityType, doc.ID)
	require.NoError(t, err)
	assert.True(t, first.Equal(second), "unchanged document is not rewritten")

	n, err := idx.Count(ctx, listing.EntityType)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, ok, err := idx.Get(ctx, listing.EntityType, doc.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, doc, got)
}

func TestSQLiteUpsertReplacesChangedDocument(t *testing.T) {
	idx := openSQLite(t)
	ctx := context.Background()
	l := sampleListing()
	doc, err := contentindex.NewDocument(l)
	require.NoError(t, err)
	require.NoError(t, idx.Apply(ctx, listing.EntityType, doc, listing.OperationUpsert))

	l.Salary = "140k"
	doc, err = contentindex.NewDocument(l)
	require.NoError(t, err)
	require.NoError(t, idx.Apply(ctx, listing.EntityType, doc, listing.OperationUpsert))

	got, ok, err := idx.Get(ctx, listing.EntityType, l.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "140k", got.Salary)
	n, err := idx.Count(ctx, listing.EntityType)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestSQLiteDeleteRemovesAndToleratesAbsent(t *testing.T) {
	idx := openSQLite(t)
	ctx := context.Background()
	doc, err := contentindex.NewDocument(sampleListing())
	require.NoError(t, err)
	require.NoError(t, idx.Apply(ctx, listing.EntityType, doc, listing.OperationUpsert))

	require.NoError(t, idx.Apply(ctx, listing.EntityType, doc, listing.OperationDelete))
	_, ok, err := idx.Get(ctx, listing.EntityType, doc.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	// deleting again is fine
	assert.NoError(t, idx.Apply(ctx, listing.EntityType, doc, listing.OperationDelete))
}

func TestSQLiteIgnoresOlderSnapshot(t *testing.T) {
	idx := openSQLite(t)
	ctx := context.Background()
	older := sampleListing()
	newer := older
	newer.Salary = "140k"
	newer.UpdatedAt = older.UpdatedAt.Add(time.Minute)

	newerDoc, err := contentindex.NewDocument(newer)
	require.NoError(t, err)
	olderDoc, err := contentindex.NewDocument(older)
	require.NoError(t, err)

	require.NoError(t, idx.Apply(ctx, listing.EntityType, newerDoc, listing.OperationUpsert))
	require.NoError(t, idx.Apply(ctx, listing.EntityType, olderDoc, listing.OperationUpsert))

	got, ok, err := idx.Get(ctx, listing.EntityType, newer.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "140k", got.Salary)
}

func TestSQLiteUpsertAfterDeleteStaysDeleted(t *testing.T) {
	idx := openSQLite(t)
	ctx := context.Background()
	l := sampleListing()
	updated := l
	updated.Title = "Staff Go Engineer"
	updated.UpdatedAt = l.UpdatedAt.Add(time.Minute)

	createdDoc, err := contentindex.NewDocument(l)
	require.NoError(t, err)
	updatedDoc, err := contentindex.NewDocument(updated)
	require.NoError(t, err)

	require.NoError(t, idx.Apply(ctx, listing.EntityType, createdDoc, listing.OperationUpsert))
	// the delete sync overtakes the update sync issued before it
	require.NoError(t, idx.Apply(ctx, listing.EntityType, updatedDoc, listing.OperationDelete))
	require.NoError(t, idx.Apply(ctx, listing.EntityType, updatedDoc, listing.OperationUpsert))
	require.NoError(t, idx.Apply(ctx, listing.EntityType, createdDoc, listing.OperationUpsert))

	_, ok, err := idx.Get(ctx, listing.EntityType, l.ID)
	require.NoError(t, err)
	assert.False(t, ok)
	n, err := idx.Count(ctx, listing.EntityType)
	require.NoError(t, err)
	assert.Zero(t, n)
}
