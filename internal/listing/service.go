package listing

import (
	"bytes"
	"context"
	"encoding/gob"
	"sync"

	"github.com/rs/zerolog"

	"github.com/rushigund/Techligenc-website-backend/internal/apperror"
)

const CacheKeyAllListings = "allJobListings"

// Store is the authoritative listing record store.
type Store interface {
	Create(ctx context.Context, f Fields) (Listing, error)
	Get(ctx context.Context, id string) (Listing, error)
	Update(ctx context.Context, id string, p Patch) (Listing, error)
	Delete(ctx context.Context, id string) (Listing, error)
	ListAll(ctx context.Context) ([]Listing, error)
}

// Syncer propagates a committed change to the content index.
type Syncer interface {
	Sync(ctx context.Context, l Listing, op Operation) error
}

// Cache is satisfied by *bigcache.BigCache.
type Cache interface {
	Get(key string) ([]byte, error)
	Set(key string, entry []byte) error
	Delete(key string) error
}

type Outcome int

const (
	PersistFailed Outcome = iota
	Persisted
	PersistedSyncFailed
)

func (o Outcome) String() string {
	switch o {
	case Persisted:
		return "persisted"
	case PersistedSyncFailed:
		return "persisted_sync_failed"
	default:
		return "persist_failed"
	}
}

// Result is what every mutation reports. Listing is set whenever the primary
// write happened, including when the sync afterwards failed.
type Result struct {
	Outcome Outcome
	Listing Listing
	Err     error
}

func (r Result) Written() bool {
	return r.Outcome != PersistFailed
}

type Service struct {
	store  Store
	syncer Syncer
	cache  Cache
	log    zerolog.Logger

	// generation counts invalidations. List only fills the cache when no
	// write was committed while it was reading the store.
	mu         sync.Mutex
	generation uint64
}

// NewService wires the store and syncer. cache may be nil.
func NewService(store Store, syncer Syncer, cache Cache, logger zerolog.Logger) *Service {
	return &Service{store: store, syncer: syncer, cache: cache, log: logger}
}

func (s *Service) List(ctx context.Context) ([]Listing, error) {
	if s.cache == nil {
		return s.store.ListAll(ctx)
	}
	if cached, err := s.cache.Get(CacheKeyAllListings); err == nil {
		var listings []Listing
		if err := gob.NewDecoder(bytes.NewReader(cached)).Decode(&listings); err == nil {
			return listings, nil
		}
		s.log.Warn().Msg("discarding undecodable listings cache entry")
	}

	s.mu.Lock()
	generation := s.generation
	s.mu.Unlock()

	listings, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	buf := &bytes.Buffer{}
	if err := gob.NewEncoder(buf).Encode(listings); err != nil {
		s.log.Error().Err(err).Msg("unable to encode listings for cache")
		return listings, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != generation {
		// a write landed after the snapshot was taken
		return listings, nil
	}
	if err := s.cache.Set(CacheKeyAllListings, buf.Bytes()); err != nil {
		s.log.Error().Err(err).Msg("unable to cache listings")
	}
	return listings, nil
}

func (s *Service) Get(ctx context.Context, id string) (Listing, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, f Fields) Result {
	l, err := s.store.Create(ctx, f.Sanitized())
	if err != nil {
		return s.persistFailed("create", "", err)
	}
	return s.afterWrite(ctx, l, OperationUpsert)
}

func (s *Service) Update(ctx context.Context, id string, p Patch) Result {
	l, err := s.store.Update(ctx, id, p.Sanitized())
	if err != nil {
		return s.persistFailed("update", id, err)
	}
	return s.afterWrite(ctx, l, OperationUpsert)
}

func (s *Service) Delete(ctx context.Context, id string) Result {
	l, err := s.store.Delete(ctx, id)
	if err != nil {
		return s.persistFailed("delete", id, err)
	}
	return s.afterWrite(ctx, l, OperationDelete)
}

// Resync upserts every stored listing into the content index. It keeps going
// past individual failures and returns the number synced with the last error.
func (s *Service) Resync(ctx context.Context) (int, error) {
	listings, err := s.store.ListAll(ctx)
	if err != nil {
		return 0, err
	}
	var (
		synced  int
		lastErr error
	)
	for _, l := range listings {
		if err := ctx.Err(); err != nil {
			return synced, err
		}
		if err := s.syncer.Sync(ctx, l, OperationUpsert); err != nil {
			s.log.Error().Err(err).Str("listing_id", l.ID).Msg("resync failed")
			lastErr = asSyncFailure(err)
			continue
		}
		synced++
	}
	return synced, lastErr
}

func (s *Service) persistFailed(op, id string, err error) Result {
	ev := s.log.Warn()
	if !apperror.KindOf(err).ClientCaused() {
		ev = s.log.Error()
	}
	ev.Err(err).Str("op", op).Str("listing_id", id).Msg("job listing write rejected")
	return Result{Outcome: PersistFailed, Err: err}
}

func (s *Service) afterWrite(ctx context.Context, l Listing, op Operation) Result {
	s.invalidate()
	if err := s.syncer.Sync(ctx, l, op); err != nil {
		s.log.Error().Err(err).Str("listing_id", l.ID).Str("op", string(op)).Msg("content index sync failed")
		return Result{Outcome: PersistedSyncFailed, Listing: l, Err: asSyncFailure(err)}
	}
	return Result{Outcome: Persisted, Listing: l}
}

func (s *Service) invalidate() {
	if s.cache == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	// a missing entry is fine
	_ = s.cache.Delete(CacheKeyAllListings)
}

func asSyncFailure(err error) error {
	if apperror.KindOf(err) == apperror.KindSyncFailed {
		return err
	}
	return apperror.Wrap(err, apperror.KindSyncFailed, "content index sync failed")
}
