// Package listingtest provides in-memory collaborators for listing tests.
package listingtest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/segmentio/ksuid"

	"github.com/rushigund/Techligenc-website-backend/internal/apperror"
	"github.com/rushigund/Techligenc-website-backend/internal/listing"
)

// Store is an in-memory listing.Store with the same validation and error
// kinds as the Postgres repository.
type Store struct {
	mu       sync.Mutex
	listings map[string]listing.Listing
	calls    int

	// FailWith makes every call fail with the given error when set.
	FailWith error
	// OnWrite runs after each successful write, before returning.
	OnWrite func(op listing.Operation, l listing.Listing)
	// OnList runs after ListAll took its snapshot, without the store lock
	// held, so it may write to the store.
	OnList func()
}

func NewStore() *Store {
	return &Store{listings: map[string]listing.Listing{}}
}

func (s *Store) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.listings)
}

// Put stores l as is, bypassing validation.
func (s *Store) Put(l listing.Listing) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listings[l.ID] = l
}

func (s *Store) begin() error {
	s.mu.Lock()
	s.calls++
	return s.FailWith
}

func (s *Store) Create(ctx context.Context, f listing.Fields) (listing.Listing, error) {
	if err := s.begin(); err != nil {
		s.mu.Unlock()
		return listing.Listing{}, err
	}
	defer s.mu.Unlock()
	if err := listing.Validate(f); err != nil {
		return listing.Listing{}, err
	}
	now := time.Now().UTC()
	l := listing.Listing{
		ID:          ksuid.New().String(),
		Title:       f.Title,
		Department:  f.Department,
		Location:    f.Location,
		Type:        f.Type,
		Salary:      f.Salary,
		Description: f.Description,
		Skills:      append([]string(nil), f.Skills...),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.listings[l.ID] = l
	s.written(listing.OperationUpsert, l)
	return l, nil
}

func (s *Store) Get(ctx context.Context, id string) (listing.Listing, error) {
	if err := s.begin(); err != nil {
		s.mu.Unlock()
		return listing.Listing{}, err
	}
	defer s.mu.Unlock()
	l, ok := s.listings[id]
	if !ok {
		return listing.Listing{}, apperror.New(apperror.KindNotFound, "job listing "+id+" not found")
	}
	return l, nil
}

func (s *Store) Update(ctx context.Context, id string, p listing.Patch) (listing.Listing, error) {
	if err := s.begin(); err != nil {
		s.mu.Unlock()
		return listing.Listing{}, err
	}
	defer s.mu.Unlock()
	if p.Empty() {
		return listing.Listing{}, apperror.Validation("no fields supplied for update")
	}
	current, ok := s.listings[id]
	if !ok {
		return listing.Listing{}, apperror.New(apperror.KindNotFound, "job listing "+id+" not found")
	}
	merged := p.Apply(current.Fields())
	if err := listing.Validate(merged); err != nil {
		return listing.Listing{}, err
	}
	updated := current
	updated.Title = merged.Title
	updated.Department = merged.Department
	updated.Location = merged.Location
	updated.Type = merged.Type
	updated.Salary = merged.Salary
	updated.Description = merged.Description
	updated.Skills = merged.Skills
	updated.UpdatedAt = time.Now().UTC()
	s.listings[id] = updated
	s.written(listing.OperationUpsert, updated)
	return updated, nil
}

func (s *Store) Delete(ctx context.Context, id string) (listing.Listing, error) {
	if err := s.begin(); err != nil {
		s.mu.Unlock()
		return listing.Listing{}, err
	}
	defer s.mu.Unlock()
	l, ok := s.listings[id]
	if !ok {
		return listing.Listing{}, apperror.New(apperror.KindNotFound, "job listing "+id+" not found")
	}
	delete(s.listings, id)
	s.written(listing.OperationDelete, l)
	return l, nil
}

func (s *Store) ListAll(ctx context.Context) ([]listing.Listing, error) {
	if err := s.begin(); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	out := make([]listing.Listing, 0, len(s.listings))
	for _, l := range s.listings {
		out = append(out, l)
	}
	onList := s.OnList
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if onList != nil {
		onList()
	}
	return out, nil
}

func (s *Store) written(op listing.Operation, l listing.Listing) {
	if s.OnWrite != nil {
		s.OnWrite(op, l)
	}
}

// SyncCall is one recorded Sync invocation.
type SyncCall struct {
	Listing   listing.Listing
	Operation listing.Operation
}

// Syncer records Sync calls and optionally fails them.
type Syncer struct {
	mu    sync.Mutex
	calls []SyncCall

	FailWith error
	// OnSync runs before the call is recorded.
	OnSync func(l listing.Listing, op listing.Operation)
}

func (s *Syncer) Sync(ctx context.Context, l listing.Listing, op listing.Operation) error {
	if s.OnSync != nil {
		s.OnSync(l, op)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, SyncCall{Listing: l, Operation: op})
	return s.FailWith
}

func (s *Syncer) Calls() []SyncCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]SyncCall(nil), s.calls...)
}
