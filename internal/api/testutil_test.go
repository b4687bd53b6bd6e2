package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/joestump/bookmarks/internal/api"
	"github.com/joestump/bookmarks/internal/bookmark"
	"github.com/joestump/bookmarks/internal/store"
	"github.com/joestump/bookmarks/internal/testutil"
)

// spyStore wraps a Store and counts write calls.
type spyStore struct {
	store.Store

	mu      sync.Mutex
	inserts int
	updates int
	deletes int
}

func (s *spyStore) Insert(ctx context.Context, b *store.Bookmark) (*store.Bookmark, error) {
	s.mu.Lock()
	s.inserts++
	s.mu.Unlock()
	return s.Store.Insert(ctx, b)
}

func (s *spyStore) Update(ctx context.Context, b *store.Bookmark) (*store.Bookmark, error) {
	s.mu.Lock()
	s.updates++
	s.mu.Unlock()
	return s.Store.Update(ctx, b)
}

func (s *spyStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	s.deletes++
	s.mu.Unlock()
	return s.Store.Delete(ctx, id)
}

func (s *spyStore) writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inserts + s.updates + s.deletes
}

// failingStore fails every call with err.
type failingStore struct{ err error }

func (f failingStore) List(context.Context) ([]*store.Bookmark, error) { return nil, f.err }
func (f failingStore) GetByID(context.Context, string) (*store.Bookmark, error) {
	return nil, f.err
}
func (f failingStore) Insert(context.Context, *store.Bookmark) (*store.Bookmark, error) {
	return nil, f.err
}
func (f failingStore) Update(context.Context, *store.Bookmark) (*store.Bookmark, error) {
	return nil, f.err
}
func (f failingStore) Delete(context.Context, string) error { return f.err }
func (f failingStore) Ping(context.Context) error          { return f.err }

var errBackend = errors.New("backend exploded")

// testEnv holds the router under test and the store behind it.
type testEnv struct {
	Router http.Handler
	Store  *spyStore
}

// newTestEnv wires the API router to an in-memory SQLite store.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWith(t, false)
}

func newTestEnvWith(t *testing.T, revalidatePatch bool) *testEnv {
	t.Helper()
	spy := &spyStore{Store: store.NewSQLStore(testutil.NewTestDB(t))}
	router := api.NewAPIRouter(api.Deps{
		Store:     spy,
		Validator: bookmark.NewValidator(revalidatePatch),
	})
	return &testEnv{Router: router, Store: spy}
}

func (env *testEnv) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	env.Router.ServeHTTP(rec, req)
	return rec
}

// seed inserts a bookmark directly through the store.
func seed(t *testing.T, env *testEnv, title string, rating int) *store.Bookmark {
	t.Helper()
	b, err := env.Store.Store.Insert(context.Background(), &store.Bookmark{
		Title:       title,
		URL:         "https://example.com/" + title,
		Description: title + " description",
		Rating:      rating,
	})
	if err != nil {
		t.Fatalf("seed bookmark: %v", err)
	}
	return b
}

func decodeBookmark(t *testing.T, rec *httptest.ResponseRecorder) bookmark.Response {
	t.Helper()
	var resp bookmark.Response
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v; body: %s", err, rec.Body.String())
	}
	return resp
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp api.ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode error body: %v; body: %s", err, rec.Body.String())
	}
	return resp.Error.Message
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("status = %d, want %d; body: %s", rec.Code, want, rec.Body.String())
	}
}
