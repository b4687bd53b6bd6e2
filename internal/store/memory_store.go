package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore keeps bookmarks in process memory. It is used by the "memory"
// driver and in tests. Safe for concurrent use.
type MemoryStore struct {
	mu    sync.RWMutex
	byID  map[string]*Bookmark
	order []string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byID: make(map[string]*Bookmark)}
}

func (s *MemoryStore) List(ctx context.Context) ([]*Bookmark, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Bookmark, 0, len(s.order))
	for _, id := range s.order {
		b := *s.byID[id]
		out = append(out, &b)
	}
	return out, nil
}

func (s *MemoryStore) GetByID(ctx context.Context, id string) (*Bookmark, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := *b
	return &out, nil
}

func (s *MemoryStore) Insert(ctx context.Context, b *Bookmark) (*Bookmark, error) {
	now := time.Now().UTC()
	rec := *b
	rec.ID = uuid.New().String()
	rec.CreatedAt = now
	rec.UpdatedAt = now

	s.mu.Lock()
	s.byID[rec.ID] = &rec
	s.order = append(s.order, rec.ID)
	s.mu.Unlock()

	out := rec
	return &out, nil
}

func (s *MemoryStore) Update(ctx context.Context, b *Bookmark) (*Bookmark, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.byID[b.ID]
	if !ok {
		return nil, ErrNotFound
	}
	cur.Title = b.Title
	cur.URL = b.URL
	cur.Description = b.Description
	cur.Rating = b.Rating
	cur.UpdatedAt = time.Now().UTC()

	out := *cur
	return &out, nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[id]; !ok {
		return ErrNotFound
	}
	delete(s.byID, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *MemoryStore) Ping(ctx context.Context) error {
	return nil
}
