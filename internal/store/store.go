package store

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when a requested bookmark does not exist.
	ErrNotFound = errors.New("not found")
)

// Bookmark represents a row in the bookmarks table.
type Bookmark struct {
	ID          string    `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	URL         string    `db:"url" json:"url"`
	Description string    `db:"description" json:"description"`
	Rating      int       `db:"rating" json:"rating"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// Store exposes all bookmark data operations.
// Handlers never talk to a backend directly; every backend (SQL, memory, Redis)
// satisfies this interface with the same semantics.
type Store interface {
	// List returns every bookmark in creation order.
	List(ctx context.Context) ([]*Bookmark, error)
	// GetByID returns the bookmark with the given id, or ErrNotFound.
	GetByID(ctx context.Context, id string) (*Bookmark, error)
	// Insert assigns a fresh id and timestamps to b, persists it and returns
	// the stored record.
	Insert(ctx context.Context, b *Bookmark) (*Bookmark, error)
	// Update overwrites title, url, description and rating of the bookmark
	// identified by b.ID. Returns ErrNotFound if it does not exist.
	Update(ctx context.Context, b *Bookmark) (*Bookmark, error)
	// Delete removes a bookmark by id. Returns ErrNotFound if it does not exist.
	Delete(ctx context.Context, id string) error
	// Ping reports whether the backend is reachable.
	Ping(ctx context.Context) error
}
