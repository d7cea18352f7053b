package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server is the read-only preview API over an output directory.
type Server struct {
	router  chi.Router
	catalog *Catalog
	log     *slog.Logger
	apiKey  string
}

// NewServer creates and configures the HTTP server. An empty apiKey leaves
// the API endpoints open.
func NewServer(catalog *Catalog, log *slog.Logger, apiKey string) *Server {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	s := &Server{
		catalog: catalog,
		log:     log,
		apiKey:  apiKey,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	r.Group(func(r chi.Router) {
		if s.apiKey != "" {
			r.Use(AuthMiddleware(s.apiKey, s.log))
		}

		r.Get("/api/details", s.handleListDetails)
		r.Get("/api/details/{code}", s.handleGetDetail)
		r.Get("/api/standards", s.handleListStandards)
		r.Get("/api/warnings", s.handleListWarnings)
		r.Get("/api/run", s.handleRun)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
