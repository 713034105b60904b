package draft

import (
	"errors"
	"sync"
	"time"

	"supply-desk/internal/model"

	"github.com/google/uuid"
)

// Store keeps drafts in memory. Every draft has its own lock so mutations of
// one draft apply in arrival order while different drafts proceed in parallel.
type Store struct {
	mu      sync.Mutex
	entries map[uuid.UUID]*entry
	now     func() time.Time
}

type entry struct {
	mu      sync.Mutex
	draft   Draft
	removed bool
}

// NewStore creates an empty draft store.
func NewStore() *Store {
	return &Store{
		entries: make(map[uuid.UUID]*entry),
		now:     time.Now,
	}
}

// Create stores d under a fresh id and returns the stored draft.
func (s *Store) Create(d Draft) Draft {
	now := s.now()
	d.ID = uuid.New()
	d.CreatedAt = now
	d.UpdatedAt = now

	s.mu.Lock()
	s.entries[d.ID] = &entry{draft: d}
	s.mu.Unlock()

	return d
}

// Get returns a snapshot of the draft.
func (s *Store) Get(id uuid.UUID) (Draft, error) {
	e, err := s.lookup(id)
	if err != nil {
		return Draft{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.removed {
		return Draft{}, model.ErrDraftNotFound
	}
	return e.draft, nil
}

// Update applies fn to the draft under its lock. When fn fails the stored
// draft is left as it was.
func (s *Store) Update(id uuid.UUID, fn func(Draft) (Draft, error)) (Draft, error) {
	e, err := s.lookup(id)
	if err != nil {
		return Draft{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.removed {
		return Draft{}, model.ErrDraftNotFound
	}

	next, err := fn(e.draft)
	if err != nil {
		return e.draft, err
	}
	next.ID = e.draft.ID
	next.CreatedAt = e.draft.CreatedAt
	next.UpdatedAt = s.now()
	e.draft = next
	return next, nil
}

// Consume runs fn with the draft under its lock and removes the draft when fn
// succeeds. Updates queued behind it observe ErrDraftNotFound.
func (s *Store) Consume(id uuid.UUID, fn func(Draft) error) error {
	e, err := s.lookup(id)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.removed {
		return model.ErrDraftNotFound
	}

	if err := fn(e.draft); err != nil {
		return err
	}

	e.removed = true
	s.mu.Lock()
	delete(s.entries, id)
	s.mu.Unlock()
	return nil
}

// Delete discards the draft.
func (s *Store) Delete(id uuid.UUID) error {
	return s.Consume(id, func(Draft) error { return nil })
}

// Prune discards drafts not updated since before and returns how many were removed.
func (s *Store) Prune(before time.Time) int {
	s.mu.Lock()
	candidates := make([]uuid.UUID, 0, len(s.entries))
	for id := range s.entries {
		candidates = append(candidates, id)
	}
	s.mu.Unlock()

	removed := 0
	for _, id := range candidates {
		err := s.Consume(id, func(d Draft) error {
			if !d.UpdatedAt.Before(before) {
				return errKeep
			}
			return nil
		})
		if err == nil {
			removed++
		}
	}
	return removed
}

// Len returns the number of live drafts.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *Store) lookup(id uuid.UUID) (*entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		return nil, model.ErrDraftNotFound
	}
	return e, nil
}

var errKeep = errors.New("draft still active")
