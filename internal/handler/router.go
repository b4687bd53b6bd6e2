package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/joestump/bookmarks/internal/api"
	"github.com/joestump/bookmarks/internal/bookmark"
	"github.com/joestump/bookmarks/internal/logger"
	"github.com/joestump/bookmarks/internal/store"
)

// requestTimeout bounds how long a single request may hold a store call.
const requestTimeout = 15 * time.Second

// Deps holds all dependencies required to build the HTTP router.
type Deps struct {
	Store     store.Store
	Validator *bookmark.Validator
	Logger    logger.Logger
	StartTime time.Time
}

// NewRouter assembles the full chi router with all middleware and routes.
func NewRouter(deps Deps) http.Handler {
	if deps.Logger == nil {
		deps.Logger = logger.NewNop()
	}
	if deps.StartTime.IsZero() {
		deps.StartTime = time.Now()
	}

	r := chi.NewRouter()

	// Standard middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(AccessLog(deps.Logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))

	// Operational endpoints, outside the bookmark API.
	r.Get("/healthz", Healthz(deps.StartTime))
	r.Get("/readyz", Readyz(deps.Store, deps.Logger))
	r.Handle("/metrics", promhttp.Handler())

	r.Mount("/", api.NewAPIRouter(api.Deps{
		Store:     deps.Store,
		Validator: deps.Validator,
		Logger:    deps.Logger,
	}))

	return r
}
