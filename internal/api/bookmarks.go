package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/joestump/bookmarks/internal/bookmark"
	"github.com/joestump/bookmarks/internal/logger"
	"github.com/joestump/bookmarks/internal/metrics"
	"github.com/joestump/bookmarks/internal/store"
)

// maxBodyBytes caps request bodies; bookmarks are small.
const maxBodyBytes = 1 << 20

// bookmarksAPIHandler provides REST handlers for bookmark management.
type bookmarksAPIHandler struct {
	store     store.Store
	validator *bookmark.Validator
	log       logger.Logger
}

// bookmarkHandlerFunc is a handler step that runs after the lookup gate has
// resolved {id} to an existing bookmark.
type bookmarkHandlerFunc func(w http.ResponseWriter, r *http.Request, b *store.Bookmark)

// registerBookmarkRoutes registers the collection and single-bookmark routes on r.
func registerBookmarkRoutes(r chi.Router, s store.Store, v *bookmark.Validator, log logger.Logger) {
	h := &bookmarksAPIHandler{store: s, validator: v, log: log}
	// Every method on a single bookmark passes the lookup gate first, so an
	// unknown id is 404 whatever the method. Registered before the specific
	// methods, which override it.
	r.HandleFunc(BasePath+"/{id}", instrument("other", h.withBookmark(methodNotAllowed)))
	r.Get(BasePath, instrument("list", h.List))
	r.Post(BasePath, instrument("create", h.Create))
	r.Get(BasePath+"/{id}", instrument("get", h.withBookmark(h.Get)))
	r.Patch(BasePath+"/{id}", instrument("update", h.withBookmark(h.Update)))
	r.Delete(BasePath+"/{id}", instrument("delete", h.withBookmark(h.Delete)))
}

// List returns every bookmark.
// GET /bookmark
//
// @Summary      List bookmarks
// @Description  Returns all bookmarks with title, url and description sanitized.
// @Tags         Bookmarks
// @Produce      json
// @Success      200  {array}   bookmark.Response
// @Failure      500  {object}  ErrorResponse
// @Router       /bookmark [get]
func (h *bookmarksAPIHandler) List(w http.ResponseWriter, r *http.Request) {
	bookmarks, err := h.store.List(r.Context())
	if err != nil {
		h.storeFailure(w, r, "list", err)
		return
	}
	writeJSON(w, http.StatusOK, bookmark.SerializeAll(bookmarks))
}

// Create validates the payload and stores a new bookmark.
// POST /bookmark
//
// @Summary      Create a bookmark
// @Description  title, url and rating are required; rating is an integer from 1 to 5.
// @Tags         Bookmarks
// @Accept       json
// @Produce      json
// @Success      201  {object}  bookmark.Response
// @Header       201  {string}  Location  "/bookmark/{id}"
// @Failure      400  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /bookmark [post]
func (h *bookmarksAPIHandler) Create(w http.ResponseWriter, r *http.Request) {
	fields, err := decodeFields(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidJSON)
		return
	}

	draft, err := h.validator.ValidateCreate(fields)
	if err != nil {
		h.rejectPayload(w, r, err)
		return
	}

	created, err := h.store.Insert(r.Context(), draft)
	if err != nil {
		h.storeFailure(w, r, "insert", err)
		return
	}

	h.log.Info("bookmark created",
		logger.String("id", created.ID),
		logger.String("request_id", middleware.GetReqID(r.Context())),
	)

	w.Header().Set("Location", BasePath+"/"+created.ID)
	writeJSON(w, http.StatusCreated, bookmark.Serialize(created))
}

// Get returns a single bookmark.
// GET /bookmark/{id}
//
// @Summary      Get a bookmark
// @Tags         Bookmarks
// @Produce      json
// @Param        id   path      string  true  "Bookmark ID"
// @Success      200  {object}  bookmark.Response
// @Failure      404  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /bookmark/{id} [get]
func (h *bookmarksAPIHandler) Get(w http.ResponseWriter, r *http.Request, b *store.Bookmark) {
	writeJSON(w, http.StatusOK, bookmark.Serialize(b))
}

// Update merges a partial payload into an existing bookmark.
// PATCH /bookmark/{id}
//
// @Summary      Update a bookmark
// @Description  Overwrites only the fields present in the body. At least one of title, url, description or rating is required.
// @Tags         Bookmarks
// @Accept       json
// @Param        id   path      string  true  "Bookmark ID"
// @Success      204  "No Content"
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /bookmark/{id} [patch]
func (h *bookmarksAPIHandler) Update(w http.ResponseWriter, r *http.Request, b *store.Bookmark) {
	fields, err := decodeFields(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidJSON)
		return
	}

	patch, err := h.validator.ValidatePatch(fields)
	if err != nil {
		h.rejectPayload(w, r, err)
		return
	}

	if _, err := h.store.Update(r.Context(), patch.Apply(b)); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, msgNotFound)
			return
		}
		h.storeFailure(w, r, "update", err)
		return
	}

	h.log.Info("bookmark updated",
		logger.String("id", b.ID),
		logger.Strings("fields", patch.Fields()),
		logger.String("request_id", middleware.GetReqID(r.Context())),
	)
	w.WriteHeader(http.StatusNoContent)
}

// Delete removes a bookmark.
// DELETE /bookmark/{id}
//
// @Summary      Delete a bookmark
// @Tags         Bookmarks
// @Param        id   path      string  true  "Bookmark ID"
// @Success      204  "No Content"
// @Failure      404  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /bookmark/{id} [delete]
func (h *bookmarksAPIHandler) Delete(w http.ResponseWriter, r *http.Request, b *store.Bookmark) {
	if err := h.store.Delete(r.Context(), b.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, msgNotFound)
			return
		}
		h.storeFailure(w, r, "delete", err)
		return
	}

	h.log.Info("bookmark deleted",
		logger.String("id", b.ID),
		logger.String("request_id", middleware.GetReqID(r.Context())),
	)
	w.WriteHeader(http.StatusNoContent)
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request, _ *store.Bookmark) {
	writeError(w, http.StatusMethodNotAllowed, msgMethodNotAllowed)
}

// withBookmark is the lookup gate for single-bookmark routes. Unknown ids get
// a 404 and next is never called, so nothing is written to the store.
func (h *bookmarksAPIHandler) withBookmark(next bookmarkHandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		b, err := h.store.GetByID(r.Context(), id)
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, msgNotFound)
			return
		}
		if err != nil {
			h.storeFailure(w, r, "get", err)
			return
		}
		next(w, r, b)
	}
}

// rejectPayload answers a validation failure with 400 and the validator's message.
func (h *bookmarksAPIHandler) rejectPayload(w http.ResponseWriter, r *http.Request, err error) {
	var verr *bookmark.ValidationError
	if !errors.As(err, &verr) {
		h.storeFailure(w, r, "validate", err)
		return
	}

	metrics.ValidationFailuresTotal.WithLabelValues(string(verr.Kind)).Inc()
	h.log.Warn("bookmark rejected",
		logger.String("kind", string(verr.Kind)),
		logger.String("field", verr.Field),
		logger.String("request_id", middleware.GetReqID(r.Context())),
	)
	writeError(w, http.StatusBadRequest, verr.Message)
}

// storeFailure logs err and answers 500 without leaking details.
func (h *bookmarksAPIHandler) storeFailure(w http.ResponseWriter, r *http.Request, op string, err error) {
	metrics.StoreErrorsTotal.WithLabelValues(op).Inc()
	h.log.Error("store failure",
		logger.String("operation", op),
		logger.String("request_id", middleware.GetReqID(r.Context())),
		logger.Error(err),
	)
	writeError(w, http.StatusInternalServerError, msgServerError)
}

// decodeFields reads a JSON object body into an untyped field bag. An empty
// body decodes to an empty bag so it fails validation rather than parsing.
func decodeFields(w http.ResponseWriter, r *http.Request) (map[string]any, error) {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.UseNumber()

	fields := map[string]any{}
	if err := dec.Decode(&fields); err != nil {
		if errors.Is(err, io.EOF) {
			return map[string]any{}, nil
		}
		return nil, err
	}
	if fields == nil {
		// Body was the literal null.
		return nil, errors.New("request body is not a JSON object")
	}
	return fields, nil
}

// instrument records request count and latency for one API operation.
func instrument(op string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		metrics.RequestsTotal.WithLabelValues(op, strconv.Itoa(status)).Inc()
		metrics.RequestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	}
}
