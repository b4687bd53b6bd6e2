package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const bookmarkColumns = `id, title, url, description, rating, created_at, updated_at`

// SQLStore is the sqlx-backed implementation of Store. Queries are written
// with ? placeholders and rebound for the connected driver.
type SQLStore struct {
	db *sqlx.DB
}

func NewSQLStore(db *sqlx.DB) *SQLStore {
	return &SQLStore{db: db}
}

// List returns all bookmarks ordered by creation time.
func (s *SQLStore) List(ctx context.Context) ([]*Bookmark, error) {
	bookmarks := []*Bookmark{}
	err := s.db.SelectContext(ctx, &bookmarks, s.db.Rebind(`
		SELECT `+bookmarkColumns+` FROM bookmarks ORDER BY created_at ASC, id ASC
	`))
	if err != nil {
		return nil, fmt.Errorf("list bookmarks: %w", err)
	}
	return bookmarks, nil
}

// GetByID returns the bookmark matching id, or ErrNotFound.
func (s *SQLStore) GetByID(ctx context.Context, id string) (*Bookmark, error) {
	var b Bookmark
	err := s.db.GetContext(ctx, &b, s.db.Rebind(`SELECT `+bookmarkColumns+` FROM bookmarks WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get bookmark %s: %w", id, err)
	}
	return &b, nil
}

// Insert stores a new bookmark under a freshly generated UUID.
func (s *SQLStore) Insert(ctx context.Context, b *Bookmark) (*Bookmark, error) {
	now := time.Now().UTC()
	rec := *b
	rec.ID = uuid.New().String()
	rec.CreatedAt = now
	rec.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, s.db.Rebind(`
		INSERT INTO bookmarks (id, title, url, description, rating, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`), rec.ID, rec.Title, rec.URL, rec.Description, rec.Rating, rec.CreatedAt, rec.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert bookmark: %w", err)
	}
	return &rec, nil
}

// Update overwrites the mutable fields of the bookmark identified by b.ID.
func (s *SQLStore) Update(ctx context.Context, b *Bookmark) (*Bookmark, error) {
	rec := *b
	rec.UpdatedAt = time.Now().UTC()

	res, err := s.db.ExecContext(ctx, s.db.Rebind(`
		UPDATE bookmarks SET title = ?, url = ?, description = ?, rating = ?, updated_at = ? WHERE id = ?
	`), rec.Title, rec.URL, rec.Description, rec.Rating, rec.UpdatedAt, rec.ID)
	if err != nil {
		return nil, fmt.Errorf("update bookmark %s: %w", rec.ID, err)
	}
	if err := expectAffected(res); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Delete removes a bookmark by ID.
func (s *SQLStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM bookmarks WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("delete bookmark %s: %w", id, err)
	}
	return expectAffected(res)
}

func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// expectAffected maps a zero-row write to ErrNotFound.
// MySQL counts changed rather than matched rows; Update always bumps
// updated_at so a matched row is never reported as unchanged.
func expectAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
