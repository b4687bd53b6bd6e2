package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joestump/bookmarks/internal/handler"
	"github.com/joestump/bookmarks/internal/logger"
	"github.com/joestump/bookmarks/internal/store"
)

// recordingLogger keeps the messages and fields it is given.
type recordingLogger struct {
	mu      sync.Mutex
	entries []entry
}

type entry struct {
	level  string
	msg    string
	fields []logger.Field
}

func (l *recordingLogger) add(level, msg string, fields []logger.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, entry{level: level, msg: msg, fields: fields})
}

func (l *recordingLogger) Debug(msg string, f ...logger.Field) { l.add("debug", msg, f) }
func (l *recordingLogger) Info(msg string, f ...logger.Field)  { l.add("info", msg, f) }
func (l *recordingLogger) Warn(msg string, f ...logger.Field)  { l.add("warn", msg, f) }
func (l *recordingLogger) Error(msg string, f ...logger.Field) { l.add("error", msg, f) }
func (l *recordingLogger) Fatal(msg string, f ...logger.Field) { l.add("fatal", msg, f) }
func (l *recordingLogger) Infof(string, ...interface{})        {}
func (l *recordingLogger) With(...logger.Field) logger.Logger  { return l }
func (l *recordingLogger) Sync() error                         { return nil }

func (l *recordingLogger) find(msg string) (entry, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, e := range l.entries {
		if e.msg == msg {
			return e, true
		}
	}
	return entry{}, false
}

func fieldInt(e entry, key string) int64 {
	for _, f := range e.fields {
		if f.Key == key {
			return f.Integer
		}
	}
	return -1
}

type downStore struct{ store.Store }

func (downStore) Ping(context.Context) error { return errors.New("connection refused") }

func serve(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRouter_Healthz(t *testing.T) {
	r := handler.NewRouter(handler.Deps{Store: downStore{store.NewMemoryStore()}, StartTime: time.Now()})

	rec := serve(r, "GET", "/healthz", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
	assert.Contains(t, body, "uptime_seconds")
}

func TestRouter_Readyz(t *testing.T) {
	r := handler.NewRouter(handler.Deps{Store: store.NewMemoryStore()})
	rec := serve(r, "GET", "/readyz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ready":true}`, rec.Body.String())
}

func TestRouter_ReadyzStoreDown(t *testing.T) {
	r := handler.NewRouter(handler.Deps{Store: downStore{store.NewMemoryStore()}})
	rec := serve(r, "GET", "/readyz", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"ready":false,"error":"store unavailable"}`, rec.Body.String())
}

func TestRouter_MountsBookmarkAPI(t *testing.T) {
	r := handler.NewRouter(handler.Deps{Store: store.NewMemoryStore()})

	rec := serve(r, "POST", "/bookmark", `{"title":"Go","url":"https://go.dev","rating":5}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	loc := rec.Header().Get("Location")
	require.True(t, strings.HasPrefix(loc, "/bookmark/"), loc)

	rec = serve(r, "GET", loc, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_Metrics(t *testing.T) {
	r := handler.NewRouter(handler.Deps{Store: store.NewMemoryStore()})
	serve(r, "GET", "/bookmark", "")

	rec := serve(r, "GET", "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `bookmarks_api_requests_total{operation="list",status="200"}`)
}

func TestRouter_AccessLog(t *testing.T) {
	log := &recordingLogger{}
	r := handler.NewRouter(handler.Deps{Store: store.NewMemoryStore(), Logger: log})

	serve(r, "GET", "/bookmark/missing", "")

	e, ok := log.find("http_request")
	require.True(t, ok, "expected an access log entry")
	assert.Equal(t, "info", e.level)
	assert.EqualValues(t, http.StatusNotFound, fieldInt(e, "status"))
}

func TestAccessLog_ServerErrorsAtErrorLevel(t *testing.T) {
	log := &recordingLogger{}
	h := handler.AccessLog(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))

	serve(h, "GET", "/", "")

	e, ok := log.find("http_request")
	require.True(t, ok)
	assert.Equal(t, "error", e.level)
	assert.EqualValues(t, http.StatusBadGateway, fieldInt(e, "status"))
}

func TestAccessLog_ImplicitOK(t *testing.T) {
	log := &recordingLogger{}
	h := handler.AccessLog(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("hello"))
	}))

	serve(h, "GET", "/", "")

	e, ok := log.find("http_request")
	require.True(t, ok)
	assert.EqualValues(t, http.StatusOK, fieldInt(e, "status"))
	assert.EqualValues(t, 5, fieldInt(e, "bytes"))
}
