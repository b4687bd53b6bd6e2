package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/joestump/bookmarks/internal/bookmark"
	"github.com/joestump/bookmarks/internal/logger"
	"github.com/joestump/bookmarks/internal/store"
)

// BasePath is the collection path; single bookmarks live at BasePath/{id}.
const BasePath = "/bookmark"

// Deps holds all dependencies required to build the API router.
type Deps struct {
	Store     store.Store
	Validator *bookmark.Validator
	Logger    logger.Logger
}

// NewAPIRouter creates the chi router serving the bookmark routes.
// All responses are application/json.
func NewAPIRouter(deps Deps) chi.Router {
	if deps.Validator == nil {
		deps.Validator = bookmark.NewValidator(false)
	}
	if deps.Logger == nil {
		deps.Logger = logger.NewNop()
	}

	r := chi.NewRouter()
	r.Use(jsonContentType)
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, msgMethodNotAllowed)
	})

	registerBookmarkRoutes(r, deps.Store, deps.Validator, deps.Logger)

	return r
}

// jsonContentType is a middleware that sets Content-Type: application/json on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}
