package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/ahsanfayaz52/notesapi/internal/middleware"
	"github.com/ahsanfayaz52/notesapi/internal/validation"
)

type RouterConfig struct {
	APIPrefix   string
	Service     NoteService
	Gate        *validation.Gate
	Errors      *middleware.ErrorResponder
	Metrics     *middleware.Metrics // nil disables /metrics
	Logger      *slog.Logger
	Development bool
	CORSOrigins []string
}

// NewRouter mounts the note routes under <APIPrefix>/notes and wraps them in
// the middleware chain.
func NewRouter(cfg RouterConfig) http.Handler {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Errors == nil {
		cfg.Errors = middleware.NewErrorResponder(cfg.Logger, cfg.Development)
	}
	prefix := "/" + strings.Trim(cfg.APIPrefix, "/")
	if prefix == "/" {
		prefix = ""
	}
	er := cfg.Errors
	h := NewNoteHandler(cfg.Service, cfg.Gate)

	r := mux.NewRouter()
	notFound := er.NotFound()
	if cfg.Metrics != nil {
		// Use only wraps matched routes; misses are counted as unmatched.
		notFound = cfg.Metrics.Middleware(notFound)
		r.Use(cfg.Metrics.Middleware)
		r.Handle("/metrics", cfg.Metrics.Handler()).Methods(http.MethodGet)
	}
	r.NotFoundHandler = notFound
	r.MethodNotAllowedHandler = notFound

	r.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, prefix+"/notes/all", http.StatusFound)
	}).Methods(http.MethodGet)
	r.HandleFunc("/healthz", er.Handle(h.Health)).Methods(http.MethodGet)

	notes := r.PathPrefix(prefix + "/notes").Subrouter()
	notes.HandleFunc("/all", er.Handle(h.List)).Methods(http.MethodGet)
	notes.HandleFunc("", er.Handle(h.Create)).Methods(http.MethodPost)
	notes.HandleFunc("/", er.Handle(h.Create)).Methods(http.MethodPost)
	notes.HandleFunc("/api/{id}", er.Handle(h.Update)).Methods(http.MethodPatch)
	notes.HandleFunc("/{id}", er.Handle(h.Get)).Methods(http.MethodGet)
	notes.HandleFunc("/{id}", er.Handle(h.Delete)).Methods(http.MethodDelete)

	origins := cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	cors := handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type", middleware.RequestIDHeader}),
		handlers.ExposedHeaders([]string{middleware.RequestIDHeader}),
	)

	var handler http.Handler = r
	handler = cors(handler)
	handler = middleware.SecurityHeaders(handler)
	handler = middleware.Recover(er)(handler)
	handler = middleware.AccessLog(cfg.Logger, cfg.Development)(handler)
	handler = middleware.RequestID(handler)
	return handler
}
