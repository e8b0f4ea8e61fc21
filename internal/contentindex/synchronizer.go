package contentindex

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/rushigund/Techligenc-website-backend/internal/apperror"
	"github.com/rushigund/Techligenc-website-backend/internal/listing"
)

const DefaultTimeout = 10 * time.Second

// Index is the secondary content index. Upserting the same document twice
// must leave it unchanged and deleting an absent entry is not an error.
type Index interface {
	Apply(ctx context.Context, entityType string, doc Document, op listing.Operation) error
}

// Synchronizer propagates committed listing changes to an Index.
type Synchronizer struct {
	index   Index
	timeout time.Duration
	log     zerolog.Logger
}

func NewSynchronizer(index Index, timeout time.Duration, logger zerolog.Logger) *Synchronizer {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Synchronizer{index: index, timeout: timeout, log: logger}
}

// Sync applies op for l. Failures come back as SyncFailed and are not retried.
func (s *Synchronizer) Sync(ctx context.Context, l listing.Listing, op listing.Operation) error {
	if op != listing.OperationUpsert && op != listing.OperationDelete {
		return apperror.New(apperror.KindSyncFailed, "unknown index operation "+string(op))
	}
	doc, err := NewDocument(l)
	if err != nil {
		return apperror.Wrap(err, apperror.KindSyncFailed, "unable to build index document")
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	if err := s.index.Apply(ctx, listing.EntityType, doc, op); err != nil {
		return apperror.Wrap(err, apperror.KindSyncFailed, "content index rejected "+string(op)+" of "+l.ID)
	}
	s.log.Debug().
		Str("listing_id", l.ID).
		Str("op", string(op)).
		Dur("took", time.Since(start)).
		Msg("content index synced")
	return nil
}
